package executor_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-ingestion/internal/api/shared/executor"
	apierrors "github.com/feral-file/ff-ingestion/internal/api/shared/errors"
	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/mocks"
	"github.com/feral-file/ff-ingestion/internal/store/schema"
)

func TestGetPerson(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2024, 1, 1, 8, 0, 0, 0, time.FixedZone("ICT", 7*3600))

	t.Run("found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		st := mocks.NewMockStore(ctrl)

		st.EXPECT().FetchPerson(ctx, domain.TeamID(2), "user-1", false).Return(&schema.Person{
			ID:                      7,
			UUID:                    "0190b7a4-0000-7000-8000-000000000007",
			TeamID:                  2,
			Properties:              datatypes.NewJSONType(domain.Properties{"plan": json.RawMessage(`"pro"`)}),
			PropertiesLastUpdatedAt: datatypes.NewJSONType(domain.PropertiesLastUpdatedAt{"plan": "2024-01-01T00:00:00.000Z"}),
			PropertiesLastOperation: datatypes.NewJSONType(domain.PropertiesLastOperation{"plan": domain.OperationSet}),
			IsIdentified:            true,
			CreatedAt:               createdAt,
			Version:                 2,
		}, nil)
		st.EXPECT().GetDistinctIDs(ctx, int64(7)).Return([]string{"user-1", "anon-1"}, nil)

		person, err := executor.NewExecutor(st).GetPerson(ctx, 2, "user-1")

		require.NoError(t, err)
		require.NotNil(t, person)
		assert.Equal(t, []string{"user-1", "anon-1"}, person.DistinctIDs)
		assert.Equal(t, domain.OperationSet, person.PropertiesLastOperation["plan"])
		assert.Equal(t, time.UTC, person.CreatedAt.Location())
		assert.True(t, person.CreatedAt.Equal(createdAt))
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		st := mocks.NewMockStore(ctrl)
		st.EXPECT().FetchPerson(ctx, domain.TeamID(2), "ghost", false).Return(nil, nil)

		person, err := executor.NewExecutor(st).GetPerson(ctx, 2, "ghost")

		require.NoError(t, err)
		assert.Nil(t, person)
	})

	t.Run("distinct id lookup fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		st := mocks.NewMockStore(ctrl)
		st.EXPECT().FetchPerson(ctx, domain.TeamID(2), "user-1", false).Return(&schema.Person{ID: 7}, nil)
		st.EXPECT().GetDistinctIDs(ctx, int64(7)).Return(nil, errors.New("db down"))

		_, err := executor.NewExecutor(st).GetPerson(ctx, 2, "user-1")

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, apierrors.ErrCodeDatabaseError, apiErr.Code)
	})
}

func TestGetGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("found with empty properties", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		st := mocks.NewMockStore(ctrl)
		st.EXPECT().FetchGroup(ctx, domain.TeamID(2), domain.GroupTypeIndex(0), "acme", false).Return(&schema.Group{
			ID:             10,
			TeamID:         2,
			GroupTypeIndex: 0,
			GroupKey:       "acme",
			Version:        1,
		}, nil)

		group, err := executor.NewExecutor(st).GetGroup(ctx, 2, 0, "acme")

		require.NoError(t, err)
		require.NotNil(t, group)
		assert.Equal(t, "acme", group.GroupKey)
		assert.NotNil(t, group.GroupProperties)
		assert.Empty(t, group.GroupProperties)
	})

	t.Run("store error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		st := mocks.NewMockStore(ctrl)
		st.EXPECT().FetchGroup(ctx, gomock.Any(), gomock.Any(), gomock.Any(), false).Return(nil, errors.New("db down"))

		group, err := executor.NewExecutor(st).GetGroup(ctx, 2, 0, "acme")

		assert.Error(t, err)
		assert.Nil(t, group)
	})
}
