package ingestion_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-ingestion/internal/adapter"
	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/ingestion"
	"github.com/feral-file/ff-ingestion/internal/logger"
	"github.com/feral-file/ff-ingestion/internal/metrics"
	"github.com/feral-file/ff-ingestion/internal/mocks"
	"github.com/feral-file/ff-ingestion/internal/store/schema"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// recordingTimer fires immediately and records every requested delay
type recordingTimer struct {
	durations []time.Duration
	c         chan time.Time
}

func (t *recordingTimer) Start(d time.Duration) {
	t.durations = append(t.durations, d)
	t.c = make(chan time.Time, 1)
	t.c <- now.Add(d)
}

func (t *recordingTimer) Stop() {}

func (t *recordingTimer) C() <-chan time.Time {
	return t.c
}

func (t *recordingTimer) total() time.Duration {
	var sum time.Duration
	for _, d := range t.durations {
		sum += d
	}
	return sum
}

// testIngesterMocks contains all the mocks needed for testing the orchestrator
type testIngesterMocks struct {
	ctrl         *gomock.Controller
	store        *mocks.MockStore
	processor    *mocks.MockEventsProcessor
	matcher      *mocks.MockActionMatcher
	hookCannon   *mocks.MockHookCannon
	publisher    *mocks.MockPublisher
	errorTracker *mocks.MockErrorTracker
	clock        *mocks.MockClock
	guard        *mocks.MockStopper
	timer        *recordingTimer
	metrics      *metrics.Metrics
	ingester     ingestion.Ingester
	guardFunc    func()
}

func setupTestIngester(t *testing.T, cfg ingestion.Config) *testIngesterMocks {
	ctrl := gomock.NewController(t)

	tm := &testIngesterMocks{
		ctrl:         ctrl,
		store:        mocks.NewMockStore(ctrl),
		processor:    mocks.NewMockEventsProcessor(ctrl),
		matcher:      mocks.NewMockActionMatcher(ctrl),
		hookCannon:   mocks.NewMockHookCannon(ctrl),
		publisher:    mocks.NewMockPublisher(ctrl),
		errorTracker: mocks.NewMockErrorTracker(ctrl),
		clock:        mocks.NewMockClock(ctrl),
		guard:        mocks.NewMockStopper(ctrl),
		timer:        &recordingTimer{},
		metrics:      metrics.NewNop(),
	}

	tm.clock.EXPECT().Now().Return(now).AnyTimes()
	tm.clock.EXPECT().Since(now).Return(10 * time.Millisecond).AnyTimes()
	tm.clock.EXPECT().
		AfterFunc(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ time.Duration, f func()) adapter.Stopper {
			tm.guardFunc = f
			return tm.guard
		}).
		Times(1)
	// The guard is released on every path
	tm.guard.EXPECT().Stop().Return(true).Times(1)

	tm.ingester = ingestion.New(ingestion.Deps{
		Store:        tm.store,
		Processor:    tm.processor,
		Matcher:      tm.matcher,
		HookCannon:   tm.hookCannon,
		Publisher:    tm.publisher,
		ErrorTracker: tm.errorTracker,
		Clock:        tm.clock,
		Metrics:      tm.metrics,
		Timer:        tm.timer,
	}, cfg)

	return tm
}

func testEvent() *domain.Event {
	return &domain.Event{
		UUID:       "0190b7a4-1111-7000-8000-000000000001",
		Event:      "$pageview",
		DistinctID: "user-1",
		TeamID:     2,
		SiteURL:    "https://app.example.com",
		Now:        now,
	}
}

func personRow() *schema.Person {
	return &schema.Person{ID: 1, UUID: "0190b7a4-0000-7000-8000-000000000001", TeamID: 2, CreatedAt: now}
}

func TestIngestEvent_Success(t *testing.T) {
	tm := setupTestIngester(t, ingestion.Config{})
	ctx := context.Background()
	event := testEvent()

	eventID := int64(99)
	matches := []domain.Action{{ID: 7, TeamID: 2, Name: "Signed up", PostToSlack: true}}
	elements := []domain.Element{{TagName: "button"}}

	tm.processor.EXPECT().ProcessEvent(ctx, event).Return(&domain.ProcessingResult{EventID: &eventID, Elements: elements}, nil)
	tm.store.EXPECT().FetchPerson(ctx, domain.TeamID(2), "user-1", false).Return(personRow(), nil)
	tm.matcher.EXPECT().
		Match(ctx, event, gomock.Any(), elements).
		DoAndReturn(func(_ context.Context, _ *domain.Event, person *domain.Person, _ []domain.Element) ([]domain.Action, error) {
			require.NotNil(t, person)
			assert.Equal(t, int64(1), person.ID)
			return matches, nil
		})
	tm.hookCannon.EXPECT().FindAndFireHooks(ctx, event, gomock.Any(), "https://app.example.com", matches).Return(nil)
	tm.store.EXPECT().RegisterActionMatch(ctx, eventID, matches).Return(nil)

	result := tm.ingester.IngestEvent(ctx, event)

	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.Equal(t, matches, result.ActionMatches)
	assert.Empty(t, tm.timer.durations)
	assert.Equal(t, float64(1), testutil.ToFloat64(tm.metrics.EventsIngested.WithLabelValues(metrics.OutcomeSuccess)))
}

func TestIngestEvent_SkipsRegistrationWithoutEventID(t *testing.T) {
	tm := setupTestIngester(t, ingestion.Config{})
	ctx := context.Background()
	event := testEvent()

	matches := []domain.Action{{ID: 7, TeamID: 2, Name: "Signed up"}}

	tm.processor.EXPECT().ProcessEvent(ctx, event).Return(&domain.ProcessingResult{}, nil)
	tm.store.EXPECT().FetchPerson(ctx, domain.TeamID(2), "user-1", false).Return(nil, nil)
	tm.matcher.EXPECT().Match(ctx, event, nil, gomock.Any()).Return(matches, nil)
	tm.hookCannon.EXPECT().FindAndFireHooks(ctx, event, nil, gomock.Any(), matches).Return(nil)

	result := tm.ingester.IngestEvent(ctx, event)

	assert.True(t, result.Success)
	assert.Equal(t, matches, result.ActionMatches)
}

func TestIngestEvent_FallsBackToConfiguredSiteURL(t *testing.T) {
	tm := setupTestIngester(t, ingestion.Config{SiteURL: "https://posthog.example.com"})
	ctx := context.Background()
	event := testEvent()
	event.SiteURL = ""

	matches := []domain.Action{{ID: 7, TeamID: 2, Name: "Signed up"}}

	tm.processor.EXPECT().ProcessEvent(ctx, event).Return(&domain.ProcessingResult{}, nil)
	tm.store.EXPECT().FetchPerson(ctx, domain.TeamID(2), "user-1", false).Return(nil, nil)
	tm.matcher.EXPECT().Match(ctx, event, nil, gomock.Any()).Return(matches, nil)
	tm.hookCannon.EXPECT().FindAndFireHooks(ctx, event, nil, "https://posthog.example.com", matches).Return(nil)

	result := tm.ingester.IngestEvent(ctx, event)

	assert.True(t, result.Success)
}

func TestIngestEvent_NilProcessingResult(t *testing.T) {
	tm := setupTestIngester(t, ingestion.Config{})
	ctx := context.Background()
	event := testEvent()

	tm.processor.EXPECT().ProcessEvent(ctx, event).Return(nil, nil)

	result := tm.ingester.IngestEvent(ctx, event)

	assert.True(t, result.Success)
	assert.NotNil(t, result.ActionMatches)
	assert.Empty(t, result.ActionMatches)
}

func TestIngestEvent_SucceedsOnLastAttempt(t *testing.T) {
	tm := setupTestIngester(t, ingestion.Config{})
	ctx := context.Background()
	event := testEvent()

	gomock.InOrder(
		tm.processor.EXPECT().ProcessEvent(ctx, event).Return(nil, errors.New("temporary")).Times(19),
		tm.processor.EXPECT().ProcessEvent(ctx, event).Return(nil, nil).Times(1),
	)

	result := tm.ingester.IngestEvent(ctx, event)

	assert.True(t, result.Success)
	require.Len(t, tm.timer.durations, 19)
	for n, d := range tm.timer.durations {
		assert.Equal(t, 5*time.Millisecond<<uint(n), d, "delay before attempt %d", n+2)
	}
	assert.Equal(t, 5*time.Millisecond*time.Duration(1<<19-1), tm.timer.total())
	assert.Equal(t, float64(19), testutil.ToFloat64(tm.metrics.ProcessingRetries))
}

func TestIngestEvent_ExhaustsRetries(t *testing.T) {
	tm := setupTestIngester(t, ingestion.Config{MaxTries: 3, InitialRetryDelay: time.Millisecond})
	ctx := context.Background()
	event := testEvent()

	gomock.InOrder(
		tm.processor.EXPECT().ProcessEvent(ctx, event).Return(nil, errors.New("first")),
		tm.processor.EXPECT().ProcessEvent(ctx, event).Return(nil, errors.New("second")),
		tm.processor.EXPECT().ProcessEvent(ctx, event).Return(nil, errors.New("last")),
	)
	tm.errorTracker.EXPECT().CaptureException(gomock.Any(), gomock.Any(), gomock.Any()).Times(1)
	tm.publisher.EXPECT().
		PublishDeadLetter(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, dl *domain.DeadLetter) error {
			assert.Equal(t, event.UUID, dl.EventUUID)
			assert.Equal(t, "last", dl.Error)
			assert.Equal(t, domain.DEAD_LETTER_ERROR_LOCATION, dl.ErrorLocation)
			assert.Equal(t, now, dl.ErrorTimestamp)
			return nil
		})

	result := tm.ingester.IngestEvent(ctx, event)

	assert.False(t, result.Success)
	assert.True(t, result.DeadLettered)
	assert.Equal(t, "last", result.Error)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, tm.timer.durations)
	assert.Equal(t, float64(1), testutil.ToFloat64(tm.metrics.DeadLetters.WithLabelValues(metrics.OutcomePublished)))
	assert.Equal(t, float64(1), testutil.ToFloat64(tm.metrics.EventsIngested.WithLabelValues(metrics.OutcomeFailure)))
}

func TestIngestEvent_DeadLetterFailure(t *testing.T) {
	tm := setupTestIngester(t, ingestion.Config{MaxTries: 1})
	ctx := context.Background()
	event := testEvent()

	processErr := errors.New("database unavailable")
	dlqErr := errors.New("stream unavailable")

	tm.processor.EXPECT().ProcessEvent(ctx, event).Return(nil, processErr)
	gomock.InOrder(
		tm.errorTracker.EXPECT().CaptureException(processErr, gomock.Any(), gomock.Any()),
		tm.publisher.EXPECT().PublishDeadLetter(gomock.Any(), gomock.Any()).Return(dlqErr),
		tm.errorTracker.EXPECT().CaptureException(dlqErr, gomock.Any(), gomock.Any()),
	)

	result := tm.ingester.IngestEvent(ctx, event)

	assert.False(t, result.Success)
	assert.False(t, result.DeadLettered)
	assert.Equal(t, "database unavailable", result.Error)
	assert.Empty(t, tm.timer.durations)
	assert.Equal(t, float64(1), testutil.ToFloat64(tm.metrics.DeadLetters.WithLabelValues(metrics.OutcomeFailure)))
}

func TestIngestEvent_HookFailureNotRetried(t *testing.T) {
	tm := setupTestIngester(t, ingestion.Config{})
	ctx := context.Background()
	event := testEvent()

	tm.processor.EXPECT().ProcessEvent(ctx, event).Return(&domain.ProcessingResult{}, nil).Times(1)
	tm.store.EXPECT().FetchPerson(ctx, domain.TeamID(2), "user-1", false).Return(personRow(), nil)
	tm.matcher.EXPECT().Match(ctx, event, gomock.Any(), gomock.Any()).Return(nil, nil)
	tm.hookCannon.EXPECT().FindAndFireHooks(ctx, event, gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("hooks lookup failed"))
	tm.errorTracker.EXPECT().CaptureException(gomock.Any(), gomock.Any(), gomock.Any())
	tm.publisher.EXPECT().PublishDeadLetter(gomock.Any(), gomock.Any()).Return(nil)

	result := tm.ingester.IngestEvent(ctx, event)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "hooks lookup failed")
	assert.Empty(t, tm.timer.durations)
}

func TestIngestEvent_RegisterActionMatchFailure(t *testing.T) {
	tm := setupTestIngester(t, ingestion.Config{})
	ctx := context.Background()
	event := testEvent()

	eventID := int64(99)
	matches := []domain.Action{{ID: 7, TeamID: 2}}

	tm.processor.EXPECT().ProcessEvent(ctx, event).Return(&domain.ProcessingResult{EventID: &eventID}, nil)
	tm.store.EXPECT().FetchPerson(ctx, domain.TeamID(2), "user-1", false).Return(personRow(), nil)
	tm.matcher.EXPECT().Match(ctx, event, gomock.Any(), gomock.Any()).Return(matches, nil)
	tm.hookCannon.EXPECT().FindAndFireHooks(ctx, event, gomock.Any(), gomock.Any(), matches).Return(nil)
	tm.store.EXPECT().RegisterActionMatch(ctx, eventID, matches).Return(errors.New("insert failed"))
	tm.errorTracker.EXPECT().CaptureException(gomock.Any(), gomock.Any(), gomock.Any())
	tm.publisher.EXPECT().PublishDeadLetter(gomock.Any(), gomock.Any()).Return(nil)

	result := tm.ingester.IngestEvent(ctx, event)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "insert failed")
}

func TestIngestEvent_TimeoutWarning(t *testing.T) {
	tm := setupTestIngester(t, ingestion.Config{TimeoutWarning: time.Second})
	ctx := context.Background()
	event := testEvent()

	tm.processor.EXPECT().
		ProcessEvent(ctx, event).
		DoAndReturn(func(context.Context, *domain.Event) (*domain.ProcessingResult, error) {
			// Simulate the guard firing while processing is still running
			require.NotNil(t, tm.guardFunc)
			tm.guardFunc()
			return nil, nil
		})

	result := tm.ingester.IngestEvent(ctx, event)

	assert.True(t, result.Success)
	assert.Equal(t, float64(1), testutil.ToFloat64(tm.metrics.TimeoutWarnings))
}

func TestIngestEvent_ContextCancelled(t *testing.T) {
	tm := setupTestIngester(t, ingestion.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	event := testEvent()

	tm.processor.EXPECT().
		ProcessEvent(ctx, event).
		DoAndReturn(func(c context.Context, _ *domain.Event) (*domain.ProcessingResult, error) {
			cancel()
			return nil, c.Err()
		})
	tm.errorTracker.EXPECT().CaptureException(gomock.Any(), gomock.Any(), gomock.Any())
	tm.publisher.EXPECT().
		PublishDeadLetter(gomock.Any(), gomock.Any()).
		DoAndReturn(func(c context.Context, dl *domain.DeadLetter) error {
			// The dead letter is published on a context detached from the cancelled caller
			if err := c.Err(); err != nil {
				return err
			}
			_, hasDeadline := c.Deadline()
			assert.True(t, hasDeadline)
			assert.Equal(t, event.UUID, dl.EventUUID)
			return nil
		})

	result := tm.ingester.IngestEvent(ctx, event)

	assert.False(t, result.Success)
	assert.True(t, result.DeadLettered)
	assert.Equal(t, float64(1), testutil.ToFloat64(tm.metrics.DeadLetters.WithLabelValues(metrics.OutcomePublished)))
}

func TestIngestEvent_RecoversFromPanic(t *testing.T) {
	tm := setupTestIngester(t, ingestion.Config{})
	ctx := context.Background()
	event := testEvent()

	tm.processor.EXPECT().
		ProcessEvent(ctx, event).
		DoAndReturn(func(context.Context, *domain.Event) (*domain.ProcessingResult, error) {
			var counts map[string]int
			counts["boom"]++
			return nil, nil
		})
	tm.errorTracker.EXPECT().CaptureException(gomock.Any(), gomock.Any(), gomock.Any())
	tm.publisher.EXPECT().
		PublishDeadLetter(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, dl *domain.DeadLetter) error {
			assert.Contains(t, dl.Error, "panic while ingesting event")
			return nil
		})

	var result domain.IngestionResult
	require.NotPanics(t, func() {
		result = tm.ingester.IngestEvent(ctx, event)
	})

	assert.False(t, result.Success)
	assert.True(t, result.DeadLettered)
	assert.Contains(t, result.Error, "assignment to entry in nil map")
	assert.Equal(t, float64(1), testutil.ToFloat64(tm.metrics.EventsIngested.WithLabelValues(metrics.OutcomeFailure)))
}

func TestIngestEvent_RecoversFromHookCannonPanic(t *testing.T) {
	tm := setupTestIngester(t, ingestion.Config{})
	ctx := context.Background()
	event := testEvent()

	tm.processor.EXPECT().ProcessEvent(ctx, event).Return(&domain.ProcessingResult{}, nil)
	tm.store.EXPECT().FetchPerson(ctx, domain.TeamID(2), "user-1", false).Return(personRow(), nil)
	tm.matcher.EXPECT().Match(ctx, event, gomock.Any(), gomock.Any()).Return(nil, nil)
	tm.hookCannon.EXPECT().
		FindAndFireHooks(ctx, event, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *domain.Event, *domain.Person, string, []domain.Action) error {
			panic("hook cannon exploded")
		})
	tm.errorTracker.EXPECT().CaptureException(gomock.Any(), gomock.Any(), gomock.Any())
	tm.publisher.EXPECT().PublishDeadLetter(gomock.Any(), gomock.Any()).Return(nil)

	result := tm.ingester.IngestEvent(ctx, event)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "hook cannon exploded")
}

func TestIngestEvent_InvalidEventNotRetried(t *testing.T) {
	tm := setupTestIngester(t, ingestion.Config{})
	ctx := context.Background()
	event := testEvent()

	tm.processor.EXPECT().ProcessEvent(ctx, event).Return(nil, domain.ErrMissingEventUUID).Times(1)
	tm.errorTracker.EXPECT().CaptureException(gomock.Any(), gomock.Any(), gomock.Any())
	tm.publisher.EXPECT().PublishDeadLetter(gomock.Any(), gomock.Any()).Return(nil)

	result := tm.ingester.IngestEvent(ctx, event)

	assert.False(t, result.Success)
	assert.True(t, result.DeadLettered)
	assert.Equal(t, domain.ErrMissingEventUUID.Error(), result.Error)
	assert.Empty(t, tm.timer.durations)
	assert.Zero(t, testutil.ToFloat64(tm.metrics.ProcessingRetries))
}
