package actions

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/logger"
	"github.com/feral-file/ff-ingestion/internal/store"
	"github.com/feral-file/ff-ingestion/internal/store/schema"
)

// Matcher evaluates a team's actions against an ingested event
//
//go:generate mockgen -source=matcher.go -destination=../mocks/matcher.go -package=mocks -mock_names=Matcher=MockActionMatcher
type Matcher interface {
	// Match returns the actions the event satisfies. person may be nil.
	Match(ctx context.Context, event *domain.Event, person *domain.Person, elements []domain.Element) ([]domain.Action, error)
}

type matcher struct {
	store store.Store
}

// NewMatcher creates a matcher backed by the team's stored actions
func NewMatcher(st store.Store) Matcher {
	return &matcher{store: st}
}

// Match returns every live action with at least one step matching the event name.
// A step without an event name matches every event.
func (m *matcher) Match(ctx context.Context, event *domain.Event, person *domain.Person, elements []domain.Element) ([]domain.Action, error) {
	teamActions, err := m.store.GetTeamActions(ctx, event.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load actions: %w", err)
	}

	matches := make([]domain.Action, 0)
	for i := range teamActions {
		action := &teamActions[i]
		if matchesAnyStep(action.Steps, event) {
			matches = append(matches, action.ToDomain())
		}
	}

	if len(matches) > 0 {
		logger.DebugCtx(ctx, "Matched actions",
			zap.String("eventUUID", event.UUID),
			zap.String("event", event.Event),
			zap.Int("count", len(matches)))
	}

	return matches, nil
}

func matchesAnyStep(steps []schema.ActionStep, event *domain.Event) bool {
	for _, step := range steps {
		if step.Event == "" || step.Event == event.Event {
			return true
		}
	}
	return false
}
