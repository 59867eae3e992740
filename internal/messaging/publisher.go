package messaging

import (
	"context"

	"github.com/feral-file/ff-ingestion/internal/domain"
)

// Subjects holds the subjects each kind of message is published on
type Subjects struct {
	// PersonChanges receives committed person mutations
	PersonChanges string
	// GroupChanges receives committed group upserts for the analytical store
	GroupChanges string
	// DeadLetter receives events that exhausted ingestion
	DeadLetter string
	// AnalyticsEvents receives successfully processed events
	AnalyticsEvents string
}

// Publisher defines the interface for publishing ingestion messages to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishPersonChange publishes a committed person mutation
	PublishPersonChange(ctx context.Context, change *domain.PersonChange) error
	// PublishGroupChange publishes a committed group upsert
	PublishGroupChange(ctx context.Context, change *domain.GroupChange) error
	// PublishDeadLetter publishes an event that could not be ingested
	PublishDeadLetter(ctx context.Context, deadLetter *domain.DeadLetter) error
	// PublishAnalyticsEvent publishes a processed event
	PublishAnalyticsEvent(ctx context.Context, event *domain.Event) error
	// Close closes the connection
	Close()
}
