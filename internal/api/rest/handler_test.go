package rest_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-ingestion/internal/api/middleware"
	"github.com/feral-file/ff-ingestion/internal/api/rest"
	"github.com/feral-file/ff-ingestion/internal/api/shared/dto"
	apierrors "github.com/feral-file/ff-ingestion/internal/api/shared/errors"
	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/logger"
	"github.com/feral-file/ff-ingestion/internal/mocks"
)

const testAPIKey = "test-api-key"

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(t *testing.T) (*gin.Engine, *mocks.MockAPIExecutor) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockAPIExecutor(ctrl)

	router := gin.New()
	rest.SetupRoutes(router, rest.NewHandler("ff-ingestion-api", exec), middleware.AuthConfig{APIKeys: []string{testAPIKey}})
	return router, exec
}

func doRequest(router *gin.Engine, path string, authorized bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorized {
		req.Header.Set("Authorization", "ApiKey "+testAPIKey)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *apierrors.APIError {
	var body apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error
}

func TestHealthCheck(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, "/healthz", false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"ff-ingestion-api"}`, w.Body.String())
}

func TestGetPerson(t *testing.T) {
	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		router, exec := setupRouter(t)
		exec.EXPECT().GetPerson(gomock.Any(), domain.TeamID(2), "user-1").Return(&dto.PersonResponse{
			UUID:         "0190b7a4-0000-7000-8000-000000000001",
			TeamID:       2,
			DistinctIDs:  []string{"user-1", "anon-1"},
			Properties:   domain.Properties{"plan": json.RawMessage(`"pro"`)},
			IsIdentified: true,
			CreatedAt:    createdAt,
			Version:      3,
		}, nil)

		w := doRequest(router, "/v1/teams/2/persons/user-1", true)

		require.Equal(t, http.StatusOK, w.Code)
		var body dto.PersonResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, []string{"user-1", "anon-1"}, body.DistinctIDs)
		assert.JSONEq(t, `"pro"`, string(body.Properties["plan"]))
		assert.True(t, body.IsIdentified)
		assert.Equal(t, int64(3), body.Version)
	})

	t.Run("not found", func(t *testing.T) {
		router, exec := setupRouter(t)
		exec.EXPECT().GetPerson(gomock.Any(), domain.TeamID(2), "ghost").Return(nil, nil)

		w := doRequest(router, "/v1/teams/2/persons/ghost", true)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, apierrors.ErrCodeNotFound, decodeError(t, w).Code)
	})

	t.Run("invalid team id", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doRequest(router, "/v1/teams/abc/persons/user-1", true)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apierrors.ErrCodeBadRequest, decodeError(t, w).Code)
	})

	t.Run("database error", func(t *testing.T) {
		router, exec := setupRouter(t)
		exec.EXPECT().GetPerson(gomock.Any(), domain.TeamID(2), "user-1").
			Return(nil, apierrors.NewDatabaseError("Failed to get person: connection refused"))

		w := doRequest(router, "/v1/teams/2/persons/user-1", true)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, apierrors.ErrCodeDatabaseError, decodeError(t, w).Code)
	})

	t.Run("unauthorized", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doRequest(router, "/v1/teams/2/persons/user-1", false)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apierrors.ErrCodeUnauthorized, decodeError(t, w).Code)
	})
}

func TestGetGroup(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		router, exec := setupRouter(t)
		exec.EXPECT().GetGroup(gomock.Any(), domain.TeamID(2), domain.GroupTypeIndex(1), "acme").Return(&dto.GroupResponse{
			TeamID:          2,
			GroupTypeIndex:  1,
			GroupKey:        "acme",
			GroupProperties: domain.Properties{"industry": json.RawMessage(`"retail"`)},
			Version:         4,
		}, nil)

		w := doRequest(router, "/v1/teams/2/groups/1/acme", true)

		require.Equal(t, http.StatusOK, w.Code)
		var body dto.GroupResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "acme", body.GroupKey)
		assert.Equal(t, int64(4), body.Version)
	})

	t.Run("not found", func(t *testing.T) {
		router, exec := setupRouter(t)
		exec.EXPECT().GetGroup(gomock.Any(), domain.TeamID(2), domain.GroupTypeIndex(0), "missing").Return(nil, nil)

		w := doRequest(router, "/v1/teams/2/groups/0/missing", true)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("group type index out of range", func(t *testing.T) {
		router, _ := setupRouter(t)

		for _, index := range []string{"-1", "5", "x"} {
			w := doRequest(router, "/v1/teams/2/groups/"+index+"/acme", true)
			assert.Equal(t, http.StatusBadRequest, w.Code, index)
		}
	})

	t.Run("unexpected error", func(t *testing.T) {
		router, exec := setupRouter(t)
		exec.EXPECT().GetGroup(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, assert.AnError)

		w := doRequest(router, "/v1/teams/2/groups/1/acme", true)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, apierrors.ErrCodeInternalError, decodeError(t, w).Code)
	})
}
