package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ingestion/internal/adapter"
	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/ingestion"
	"github.com/feral-file/ff-ingestion/internal/logger"
	jsprovider "github.com/feral-file/ff-ingestion/internal/providers/jetstream"
)

// Config holds the configuration for the event bridge
type Config struct {
	JetStream jsprovider.Config
	// ConsumerName is the durable consumer name
	ConsumerName string
	// Subject is the inbound event subject
	Subject string
	// StreamSubjects are the subjects the stream is created with; empty leaves the stream untouched
	StreamSubjects []string
	AckWaitTimeout time.Duration
	MaxDeliver     int
	// PoolSize is the number of events ingested concurrently
	PoolSize int
	// QueueSize bounds events waiting for a worker
	QueueSize int
	// ShutdownGracePeriod is how long in-flight events keep running once Run's context is done
	ShutdownGracePeriod time.Duration
}

const (
	defaultAckWait             = 30 * time.Second
	defaultShutdownGracePeriod = 20 * time.Second
)

// Bridge defines the interface for the event bridge
type Bridge interface {
	// Run consumes inbound events until ctx is done
	Run(ctx context.Context) error
	// Close closes the bridge and cleans up resources
	Close()
}

type bridge struct {
	nc       adapter.NatsConn
	js       adapter.JetStream
	ingester ingestion.Ingester
	json     adapter.JSON
	config   Config
}

// NewBridge creates a new event bridge
func NewBridge(
	cfg Config,
	natsJS adapter.NatsJetStream,
	ingester ingestion.Ingester,
	jsonAdapter adapter.JSON,
) (Bridge, error) {
	nc, js, err := natsJS.Connect(cfg.JetStream.URL, jsprovider.ConnectionOptions(cfg.JetStream)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 20
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 2048
	}
	if cfg.AckWaitTimeout <= 0 {
		cfg.AckWaitTimeout = defaultAckWait
	}
	if cfg.ShutdownGracePeriod <= 0 {
		cfg.ShutdownGracePeriod = defaultShutdownGracePeriod
	}

	return &bridge{
		nc:       nc,
		js:       js,
		ingester: ingester,
		json:     jsonAdapter,
		config:   cfg,
	}, nil
}

// Run starts the event bridge
func (b *bridge) Run(ctx context.Context) error {
	streamName := b.config.JetStream.StreamName
	logger.InfoCtx(ctx, "Starting event bridge",
		zap.String("stream", streamName),
		zap.String("consumer", b.config.ConsumerName),
		zap.String("subject", b.config.Subject))

	if len(b.config.StreamSubjects) > 0 {
		if err := jsprovider.EnsureStream(ctx, b.js, streamName, b.config.StreamSubjects); err != nil {
			return err
		}
	}

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       b.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       b.config.AckWaitTimeout,
		MaxDeliver:    b.config.MaxDeliver,
		FilterSubject: b.config.Subject,
	}

	consumer, err := b.js.CreateOrUpdateConsumer(ctx, streamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	consumerInfo, err := consumer.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}
	logger.InfoCtx(ctx, "Consumer created/retrieved", zap.String("consumer", consumerInfo.Name))

	pool := pond.NewPool(
		b.config.PoolSize,
		pond.WithQueueSize(b.config.QueueSize),
		pond.WithContext(ctx),
	)
	defer func() {
		logger.InfoCtx(ctx, "Shutting down ingestion worker pool",
			zap.Uint64("submitted", pool.SubmittedTasks()),
			zap.Uint64("waiting", pool.WaitingTasks()))
		pool.StopAndWait()
		logger.InfoCtx(ctx, "Ingestion worker pool shutdown complete",
			zap.Uint64("total_completed", pool.CompletedTasks()),
			zap.Uint64("total_failed", pool.FailedTasks()))
	}()

	sub, err := consumer.Consume(func(msg adapter.Message) {
		// Submit blocks while the queue is full, which pauses the pull consumer
		pool.Submit(func() {
			b.handleMessage(ctx, msg)
		})
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.InfoCtx(ctx, "Started consuming messages")

	<-ctx.Done()
	logger.InfoCtx(ctx, "Shutting down event bridge")
	return ctx.Err()
}

// handleMessage ingests a single NATS message. The message is acked once the event was
// ingested or dead-lettered and nak'ed otherwise, so it is never dropped unrecorded.
func (b *bridge) handleMessage(ctx context.Context, msg adapter.Message) {
	deliveryCount := adapter.DeliveryCount(msg)

	var event domain.Event
	if err := b.json.Unmarshal(msg.Data(), &event); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to unmarshal event"), zap.String("subject", msg.Subject()))
		// Terminate message for unparseable data
		if err := msg.Term(); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to terminate message"))
		}
		return
	}

	logger.DebugCtx(ctx, "Received event",
		zap.String("eventUUID", event.UUID),
		zap.String("event", event.Event),
		zap.Int64("teamID", int64(event.TeamID)),
		zap.Uint64("deliveryCount", deliveryCount))

	ingestCtx, release := b.ingestContext(ctx)
	defer release()

	stopHeartbeat := b.startHeartbeat(ingestCtx, msg, event.UUID)
	result := b.ingester.IngestEvent(ingestCtx, &event)
	stopHeartbeat()

	switch {
	case result.Success:
		b.ack(ctx, msg, event.UUID)
	case result.DeadLettered:
		logger.WarnCtx(ctx, "Event ingestion failed, event was dead-lettered",
			zap.String("eventUUID", event.UUID),
			zap.String("error", result.Error))
		b.ack(ctx, msg, event.UUID)
	default:
		if b.config.MaxDeliver > 0 && deliveryCount >= uint64(b.config.MaxDeliver) {
			logger.ErrorCtx(ctx, errors.New("event failed on its last delivery without a dead letter"),
				zap.String("eventUUID", event.UUID),
				zap.Uint64("deliveryCount", deliveryCount),
				zap.String("error", result.Error))
		} else {
			logger.WarnCtx(ctx, "Event ingestion failed without a dead letter, requesting redelivery",
				zap.String("eventUUID", event.UUID),
				zap.Uint64("deliveryCount", deliveryCount),
				zap.String("error", result.Error))
		}
		if err := msg.Nak(); err != nil {
			logger.ErrorCtx(ctx, errors.New("failed to NAK message"), zap.Error(err), zap.String("eventUUID", event.UUID))
		}
	}
}

func (b *bridge) ack(ctx context.Context, msg adapter.Message, eventUUID string) {
	if err := msg.Ack(); err != nil {
		logger.ErrorCtx(ctx, errors.New("failed to ACK message"), zap.Error(err), zap.String("eventUUID", eventUUID))
	}
}

// ingestContext detaches ingestion from ctx so shutdown does not abort in-flight events;
// they are cancelled ShutdownGracePeriod after ctx is done.
func (b *bridge) ingestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ingestCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(ctx, func() {
		timer := time.AfterFunc(b.config.ShutdownGracePeriod, cancel)
		<-ingestCtx.Done()
		timer.Stop()
	})
	return ingestCtx, func() {
		stop()
		cancel()
	}
}

// startHeartbeat marks msg in progress at half the ack wait until the returned func is called,
// so a long retry run is not redelivered to another worker
func (b *bridge) startHeartbeat(ctx context.Context, msg adapter.Message, eventUUID string) func() {
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(b.config.AckWaitTimeout / 2)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := msg.InProgress(); err != nil {
					logger.WarnCtx(ctx, "Failed to mark message in progress",
						zap.String("eventUUID", eventUUID),
						zap.Error(err))
				}
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}

// Close closes the bridge and cleans up resources
func (b *bridge) Close() {
	if b.nc == nil {
		return
	}

	b.nc.Close()
}
