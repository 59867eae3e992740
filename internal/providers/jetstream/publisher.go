package jetstream

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ingestion/internal/adapter"
	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/logger"
	"github.com/feral-file/ff-ingestion/internal/messaging"
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	Subjects       messaging.Subjects
}

type publisher struct {
	nc       adapter.NatsConn
	js       adapter.JetStream
	subjects messaging.Subjects
	json     adapter.JSON
}

// ConnectionOptions returns the nats options shared by publishers and consumers
func ConnectionOptions(cfg Config) []nats.Option {
	return []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}
}

// NewPublisher creates a new NATS JetStream publisher
func NewPublisher(cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	nc, js, err := natsJS.Connect(cfg.URL, ConnectionOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	return newPublisher(nc, js, cfg.Subjects, jsonAdapter), nil
}

func newPublisher(nc adapter.NatsConn, js adapter.JetStream, subjects messaging.Subjects, jsonAdapter adapter.JSON) *publisher {
	return &publisher{
		nc:       nc,
		js:       js,
		subjects: subjects,
		json:     jsonAdapter,
	}
}

// EnsureStream creates or updates the stream holding every ingestion subject
func EnsureStream(ctx context.Context, js adapter.JetStream, streamName string, subjects []string) error {
	err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  subjects,
		Retention: jetstream.LimitsPolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to create or update stream %s: %w", streamName, err)
	}
	return nil
}

// PublishPersonChange publishes a committed person mutation
func (p *publisher) PublishPersonChange(ctx context.Context, change *domain.PersonChange) error {
	// Message id dedupes redelivery of the same version
	msgID := fmt.Sprintf("person:%s:%d", change.UUID, change.Version)
	return p.publish(ctx, p.subjects.PersonChanges, change, jetstream.WithMsgID(msgID))
}

// PublishGroupChange publishes a committed group upsert
func (p *publisher) PublishGroupChange(ctx context.Context, change *domain.GroupChange) error {
	msgID := fmt.Sprintf("group:%d:%d:%s:%d", change.TeamID, change.GroupTypeIndex, change.GroupKey, change.Version)
	return p.publish(ctx, p.subjects.GroupChanges, change, jetstream.WithMsgID(msgID))
}

// PublishDeadLetter publishes an event that could not be ingested
func (p *publisher) PublishDeadLetter(ctx context.Context, deadLetter *domain.DeadLetter) error {
	return p.publish(ctx, p.subjects.DeadLetter, deadLetter)
}

// PublishAnalyticsEvent publishes a processed event
func (p *publisher) PublishAnalyticsEvent(ctx context.Context, event *domain.Event) error {
	return p.publish(ctx, p.subjects.AnalyticsEvents, event, jetstream.WithMsgID(event.UUID))
}

func (p *publisher) publish(ctx context.Context, subject string, v interface{}, opts ...jetstream.PublishOpt) error {
	logger.DebugCtx(ctx, "Publishing Nats message", zap.String("subject", subject))

	data, err := p.json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	_, err = p.js.Publish(ctx, subject, data, opts...)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	return nil
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
