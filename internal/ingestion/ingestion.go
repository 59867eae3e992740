// Package ingestion drives a single event through processing, action matching and hook
// delivery, and converts every failure into a dead-lettered error result.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ingestion/internal/actions"
	"github.com/feral-file/ff-ingestion/internal/adapter"
	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/logger"
	"github.com/feral-file/ff-ingestion/internal/messaging"
	"github.com/feral-file/ff-ingestion/internal/metrics"
	"github.com/feral-file/ff-ingestion/internal/processor"
	"github.com/feral-file/ff-ingestion/internal/store"
	"github.com/feral-file/ff-ingestion/internal/webhook"
)

const (
	// DefaultMaxTries is the number of processing attempts per event
	DefaultMaxTries = 20
	// DefaultInitialRetryDelay is the delay after the first failed attempt; it doubles each retry
	DefaultInitialRetryDelay = 5 * time.Millisecond
	// DefaultTimeoutWarning is the age at which a still running ingestion is reported
	DefaultTimeoutWarning = 30 * time.Second
	// DefaultDeadLetterTimeout bounds the dead-letter publish, which outlives caller cancellation
	DefaultDeadLetterTimeout = 10 * time.Second

	maxIntervalShift = 30
)

// Config holds the orchestrator settings
type Config struct {
	MaxTries          int
	InitialRetryDelay time.Duration
	TimeoutWarning    time.Duration
	DeadLetterTimeout time.Duration
	// SiteURL is put in hook payloads for events that carry none
	SiteURL string
}

// Ingester ingests events one at a time; concurrent calls are independent
//
//go:generate mockgen -source=ingestion.go -destination=../mocks/ingestion.go -package=mocks -mock_names=Ingester=MockIngester
type Ingester interface {
	// IngestEvent never returns an error; failures are reported in the result
	IngestEvent(ctx context.Context, event *domain.Event) domain.IngestionResult
}

// Deps holds the collaborators of the orchestrator
type Deps struct {
	Store        store.Store
	Processor    processor.EventsProcessor
	Matcher      actions.Matcher
	HookCannon   webhook.HookCannon
	Publisher    messaging.Publisher
	ErrorTracker adapter.ErrorTracker
	Clock        adapter.Clock
	Metrics      *metrics.Metrics
	// Timer drives the retry backoff; nil uses a real timer
	Timer backoff.Timer
}

type ingester struct {
	Deps
	cfg Config
}

// New creates a new ingestion orchestrator
func New(deps Deps, cfg Config) Ingester {
	if cfg.MaxTries <= 0 {
		cfg.MaxTries = DefaultMaxTries
	}
	if cfg.InitialRetryDelay <= 0 {
		cfg.InitialRetryDelay = DefaultInitialRetryDelay
	}
	if cfg.TimeoutWarning <= 0 {
		cfg.TimeoutWarning = DefaultTimeoutWarning
	}
	if cfg.DeadLetterTimeout <= 0 {
		cfg.DeadLetterTimeout = DefaultDeadLetterTimeout
	}
	return &ingester{Deps: deps, cfg: cfg}
}

// IngestEvent processes the event with retries, matches actions, fires hooks and
// records action matches. Any failure is tracked, dead-lettered and returned as data.
func (i *ingester) IngestEvent(ctx context.Context, event *domain.Event) domain.IngestionResult {
	guard := startTimeoutGuard(ctx, i.Clock, i.Metrics, i.cfg.TimeoutWarning, event)
	defer guard.Stop()

	start := i.Clock.Now()
	defer func() {
		i.Metrics.IngestionDuration.Observe(i.Clock.Since(start).Seconds())
	}()

	matches, err := i.ingestRecovered(ctx, event)
	if err != nil {
		deadLettered := i.handleFailure(ctx, event, err)
		i.Metrics.EventsIngested.WithLabelValues(metrics.OutcomeFailure).Inc()
		return domain.IngestionResult{Error: err.Error(), DeadLettered: deadLettered}
	}

	i.Metrics.EventsIngested.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return domain.IngestionResult{Success: true, ActionMatches: matches}
}

// ingestRecovered runs ingest, converting a collaborator panic into an error
func (i *ingester) ingestRecovered(ctx context.Context, event *domain.Event) (matches []domain.Action, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCtx(ctx, errors.New("panic while ingesting event"),
				zap.String("eventUUID", event.UUID),
				zap.Any("panic", r),
				zap.Stack("stack"))
			matches = nil
			err = fmt.Errorf("panic while ingesting event: %v", r)
		}
	}()

	return i.ingest(ctx, event)
}

func (i *ingester) ingest(ctx context.Context, event *domain.Event) ([]domain.Action, error) {
	result, err := i.processWithRetry(ctx, event)
	if err != nil {
		return nil, err
	}

	matches := make([]domain.Action, 0)
	if result == nil {
		return matches, nil
	}

	var person *domain.Person
	row, err := i.Store.FetchPerson(ctx, event.TeamID, event.DistinctID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch person: %w", err)
	}
	if row != nil {
		person = row.ToDomain()
	}

	matches, err = i.Matcher.Match(ctx, event, person, result.Elements)
	if err != nil {
		return nil, fmt.Errorf("failed to match actions: %w", err)
	}

	siteURL := event.SiteURL
	if siteURL == "" {
		siteURL = i.cfg.SiteURL
	}
	if err := i.HookCannon.FindAndFireHooks(ctx, event, person, siteURL, matches); err != nil {
		return nil, fmt.Errorf("failed to fire hooks: %w", err)
	}

	// Backends that match actions asynchronously leave the event id unset
	if len(matches) > 0 && result.EventID != nil {
		if err := i.Store.RegisterActionMatch(ctx, *result.EventID, matches); err != nil {
			return nil, fmt.Errorf("failed to register action match: %w", err)
		}
	}

	return matches, nil
}

// processWithRetry calls the events processor up to MaxTries times, doubling the delay
// from InitialRetryDelay after every failure. The last attempt's error is returned.
// Invalid events fail on the first attempt.
func (i *ingester) processWithRetry(ctx context.Context, event *domain.Event) (*domain.ProcessingResult, error) {
	var result *domain.ProcessingResult

	operation := func() error {
		r, err := i.Processor.ProcessEvent(ctx, event)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidEvent) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = r
		return nil
	}

	notify := func(err error, next time.Duration) {
		i.Metrics.ProcessingRetries.Inc()
		logger.DebugCtx(ctx, "Event processing failed, retrying",
			zap.String("eventUUID", event.UUID),
			zap.Duration("retryIn", next),
			zap.Error(err))
	}

	err := backoff.RetryNotifyWithTimer(operation, i.newBackOff(ctx), notify, i.Timer)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// newBackOff builds a deterministic doubling schedule: InitialRetryDelay, 2x, 4x, ...
// for MaxTries-1 retries.
func (i *ingester) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = i.cfg.InitialRetryDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	// Never capped within MaxTries
	shift := i.cfg.MaxTries
	if shift > maxIntervalShift {
		shift = maxIntervalShift
	}
	b.MaxInterval = i.cfg.InitialRetryDelay << uint(shift)
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(i.cfg.MaxTries-1)), ctx)
}

// handleFailure reports err and dead-letters the event, reporting whether the dead letter
// was published. A dead-letter failure is reported and swallowed.
func (i *ingester) handleFailure(ctx context.Context, event *domain.Event, err error) bool {
	logger.InfoCtx(ctx, "Event ingestion failed",
		zap.String("eventUUID", event.UUID),
		zap.String("event", event.Event),
		zap.Int64("teamID", int64(event.TeamID)),
		zap.Error(err))

	i.ErrorTracker.CaptureException(err, map[string]string{
		"event": event.Event,
	}, map[string]interface{}{
		"event": event,
	})

	// The dead letter must still go out when the caller is shutting down
	dlqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), i.cfg.DeadLetterTimeout)
	defer cancel()

	deadLetter := domain.NewDeadLetter(event, err, i.Clock.Now())
	if dlqErr := i.Publisher.PublishDeadLetter(dlqCtx, deadLetter); dlqErr != nil {
		i.Metrics.DeadLetters.WithLabelValues(metrics.OutcomeFailure).Inc()
		logger.ErrorCtx(ctx, errors.New("failed to add event to dead letter queue"),
			zap.String("eventUUID", event.UUID),
			zap.String("event", event.Event),
			zap.Error(dlqErr))
		i.ErrorTracker.CaptureException(dlqErr, map[string]string{
			"event": event.Event,
		}, map[string]interface{}{
			"event": event,
		})
		return false
	}

	i.Metrics.DeadLetters.WithLabelValues(metrics.OutcomePublished).Inc()
	return true
}
