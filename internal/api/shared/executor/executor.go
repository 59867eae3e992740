package executor

import (
	"context"
	"fmt"

	"github.com/feral-file/ff-ingestion/internal/api/shared/dto"
	apierrors "github.com/feral-file/ff-ingestion/internal/api/shared/errors"
	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/store"
)

// Executor is the interface for the API executor
//
//go:generate mockgen -source=executor.go -destination=../../../mocks/api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// GetPerson retrieves the person owning a distinct id, or nil if none exists
	GetPerson(ctx context.Context, teamID domain.TeamID, distinctID string) (*dto.PersonResponse, error)

	// GetGroup retrieves a group by its composite key, or nil if none exists
	GetGroup(ctx context.Context, teamID domain.TeamID, groupTypeIndex domain.GroupTypeIndex, groupKey string) (*dto.GroupResponse, error)
}

type executor struct {
	store store.Store
}

func NewExecutor(store store.Store) Executor {
	return &executor{store: store}
}

func (e *executor) GetPerson(ctx context.Context, teamID domain.TeamID, distinctID string) (*dto.PersonResponse, error) {
	person, err := e.store.FetchPerson(ctx, teamID, distinctID, false)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get person: %v", err))
	}

	if person == nil {
		return nil, nil
	}

	distinctIDs, err := e.store.GetDistinctIDs(ctx, person.ID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get distinct ids: %v", err))
	}

	return dto.MapPersonToDTO(person.ToDomain(), distinctIDs), nil
}

func (e *executor) GetGroup(ctx context.Context, teamID domain.TeamID, groupTypeIndex domain.GroupTypeIndex, groupKey string) (*dto.GroupResponse, error) {
	group, err := e.store.FetchGroup(ctx, teamID, groupTypeIndex, groupKey, false)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get group: %v", err))
	}

	if group == nil {
		return nil, nil
	}

	return dto.MapGroupToDTO(group.ToDomain()), nil
}
