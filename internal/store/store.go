package store

import (
	"context"
	"time"

	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/store/schema"
)

// CreatePersonInput represents the data needed to create a person with its distinct ids
type CreatePersonInput struct {
	UUID                    string
	TeamID                  domain.TeamID
	Properties              domain.Properties
	PropertiesLastUpdatedAt domain.PropertiesLastUpdatedAt
	PropertiesLastOperation domain.PropertiesLastOperation
	IsIdentified            bool
	CreatedAt               time.Time
	DistinctIDs             []string
}

// UpdatePersonInput represents a full replacement of a person's reconciled state.
// The version is always incremented by the store.
type UpdatePersonInput struct {
	PersonID                int64
	CreatedAt               time.Time
	Properties              domain.Properties
	PropertiesLastUpdatedAt domain.PropertiesLastUpdatedAt
	PropertiesLastOperation domain.PropertiesLastOperation
	// IsIdentified leaves the column untouched when nil
	IsIdentified *bool
}

// UpsertGroupInput represents the state written for a group at a given version
type UpsertGroupInput struct {
	TeamID                  domain.TeamID
	GroupTypeIndex          domain.GroupTypeIndex
	GroupKey                string
	GroupProperties         domain.Properties
	PropertiesLastUpdatedAt domain.PropertiesLastUpdatedAt
	PropertiesLastOperation domain.PropertiesLastOperation
	CreatedAt               time.Time
	Version                 int64
}

// Store defines the interface for relational store operations.
// Row-level locks taken with forUpdate are held until the enclosing WithTx returns.
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// WithTx runs fn inside a transaction; fn receives a Store bound to that transaction
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// FetchPerson retrieves the person owning a distinct id, or nil if none exists
	FetchPerson(ctx context.Context, teamID domain.TeamID, distinctID string, forUpdate bool) (*schema.Person, error)
	// FetchPersonByID retrieves a person by its internal id, or nil if none exists
	FetchPersonByID(ctx context.Context, personID int64, forUpdate bool) (*schema.Person, error)
	// GetDistinctIDs returns every distinct id attached to a person
	GetDistinctIDs(ctx context.Context, personID int64) ([]string, error)
	// CreatePerson inserts a person and its distinct ids; returns domain.ErrRaceCondition on collision
	CreatePerson(ctx context.Context, input CreatePersonInput) (*schema.Person, error)
	// UpdatePerson overwrites a person's reconciled state and returns the new version
	UpdatePerson(ctx context.Context, input UpdatePersonInput) (int64, error)
	// AddDistinctID attaches a distinct id to a person; returns domain.ErrRaceCondition on collision
	AddDistinctID(ctx context.Context, teamID domain.TeamID, personID int64, distinctID string) error
	// MoveDistinctIDs reassigns every distinct id of one person to another
	MoveDistinctIDs(ctx context.Context, fromPersonID int64, toPersonID int64) error
	// DeletePerson removes a person row
	DeletePerson(ctx context.Context, personID int64) error

	// FetchGroup retrieves a group, or nil if none exists
	FetchGroup(ctx context.Context, teamID domain.TeamID, groupTypeIndex domain.GroupTypeIndex, groupKey string, forUpdate bool) (*schema.Group, error)
	// InsertGroup creates a group and returns its id; returns domain.ErrRaceCondition if it was inserted concurrently
	InsertGroup(ctx context.Context, input UpsertGroupInput) (int64, error)
	// UpdateGroup overwrites an existing group's state
	UpdateGroup(ctx context.Context, input UpsertGroupInput) error
	// GetOrCreateGroupTypeIndex resolves a group type name to the team's type index
	GetOrCreateGroupTypeIndex(ctx context.Context, teamID domain.TeamID, groupType string) (domain.GroupTypeIndex, error)

	// GetTeamActions returns a team's live actions with their steps
	GetTeamActions(ctx context.Context, teamID domain.TeamID) ([]schema.Action, error)
	// RegisterActionMatch persists the association between an event and matched actions
	RegisterActionMatch(ctx context.Context, eventID int64, actions []domain.Action) error
	// GetHooksForActions returns the team's action_performed hooks subscribed to any of the actions
	GetHooksForActions(ctx context.Context, teamID domain.TeamID, actionIDs []int64) ([]schema.Hook, error)
	// GetTeam retrieves a team, or nil if none exists
	GetTeam(ctx context.Context, teamID domain.TeamID) (*schema.Team, error)
}
