// Package updater owns every write to person and group rows. Each mutation runs
// under a row lock in one transaction and is published only after commit.
package updater

import (
	"context"
	"time"

	"github.com/feral-file/ff-ingestion/internal/adapter"
	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/messaging"
	"github.com/feral-file/ff-ingestion/internal/metrics"
	"github.com/feral-file/ff-ingestion/internal/properties"
	"github.com/feral-file/ff-ingestion/internal/store"
	"github.com/feral-file/ff-ingestion/internal/store/schema"
)

// DefaultMaxGroupUpsertAttempts bounds re-attempts of a group upsert that lost an insert race
const DefaultMaxGroupUpsertAttempts = 5

// Config holds the updater settings
type Config struct {
	// MaxGroupUpsertAttempts is the number of full upsert attempts before giving up
	MaxGroupUpsertAttempts int
}

// PersonUpdate is the outcome of a person property update
type PersonUpdate struct {
	// Person is the state after the update; nil when there was nothing to apply
	Person  *domain.Person
	Updated bool
}

// GroupUpsert is the outcome of a group upsert
type GroupUpsert struct {
	Group   *domain.Group
	Updated bool
}

// Updater defines the entity mutation operations
//
//go:generate mockgen -source=updater.go -destination=../mocks/updater.go -package=mocks -mock_names=Updater=MockUpdater
type Updater interface {
	// EnsurePerson returns the person owning distinctID, creating it when absent
	EnsurePerson(ctx context.Context, teamID domain.TeamID, distinctID string, timestamp time.Time) (*domain.Person, bool, error)
	// AddDistinctID attaches distinctID to the person owning existingDistinctID
	AddDistinctID(ctx context.Context, teamID domain.TeamID, existingDistinctID string, distinctID string) error
	// MarkIdentified sets is_identified on the person owning distinctID
	MarkIdentified(ctx context.Context, teamID domain.TeamID, distinctID string, timestamp time.Time) error

	// UpdatePersonProperties reconciles $set and $set_once updates into a person
	UpdatePersonProperties(ctx context.Context, teamID domain.TeamID, distinctID string, set, setOnce domain.Properties, timestamp time.Time) (*PersonUpdate, error)
	// UpsertGroup reconciles $group_set updates into a group, creating it when absent
	UpsertGroup(ctx context.Context, teamID domain.TeamID, groupTypeIndex domain.GroupTypeIndex, groupKey string, props domain.Properties, timestamp time.Time) (*GroupUpsert, error)
	// MergePeople collapses the secondary person into the primary one
	MergePeople(ctx context.Context, teamID domain.TeamID, primaryDistinctID, secondaryDistinctID string, timestamp time.Time) (*domain.Person, error)
}

type updater struct {
	store     store.Store
	publisher messaging.Publisher
	clock     adapter.Clock
	metrics   *metrics.Metrics
	cfg       Config
}

// New creates a new updater
func New(st store.Store, publisher messaging.Publisher, clock adapter.Clock, m *metrics.Metrics, cfg Config) Updater {
	if cfg.MaxGroupUpsertAttempts <= 0 {
		cfg.MaxGroupUpsertAttempts = DefaultMaxGroupUpsertAttempts
	}
	return &updater{
		store:     st,
		publisher: publisher,
		clock:     clock,
		metrics:   m,
		cfg:       cfg,
	}
}

func personState(p *schema.Person) properties.State {
	return properties.State{
		Properties:              p.Properties.Data(),
		PropertiesLastUpdatedAt: p.PropertiesLastUpdatedAt.Data(),
		PropertiesLastOperation: p.PropertiesLastOperation.Data(),
	}
}

func groupState(g *schema.Group) properties.State {
	if g == nil {
		return properties.State{}
	}
	return properties.State{
		Properties:              g.GroupProperties.Data(),
		PropertiesLastUpdatedAt: g.PropertiesLastUpdatedAt.Data(),
		PropertiesLastOperation: g.PropertiesLastOperation.Data(),
	}
}

func personChange(p *domain.Person, timestamp time.Time) *domain.PersonChange {
	return &domain.PersonChange{
		UUID:         p.UUID,
		TeamID:       p.TeamID,
		Properties:   p.Properties,
		IsIdentified: p.IsIdentified,
		Timestamp:    timestamp.UTC(),
		Version:      p.Version,
	}
}

func minTime(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}
