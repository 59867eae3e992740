package webhook

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ingestion/internal/adapter"
	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/logger"
	"github.com/feral-file/ff-ingestion/internal/metrics"
	"github.com/feral-file/ff-ingestion/internal/store"
	"github.com/feral-file/ff-ingestion/internal/store/schema"
)

const userAgent = "FF-Ingestion-Webhook/1.0"

// Config holds the hook delivery settings
type Config struct {
	// BreakerMaxRequests is the number of trial requests allowed while half-open
	BreakerMaxRequests uint32
	// BreakerInterval is the closed-state window after which failure counts reset
	BreakerInterval time.Duration
	// BreakerTimeout is how long a breaker stays open before probing again
	BreakerTimeout time.Duration
	// BreakerFailureThreshold is the consecutive failures that open a breaker
	BreakerFailureThreshold uint32
	// BreakerIdleTTL is how long an unused breaker is kept before it is evicted
	BreakerIdleTTL time.Duration
}

type breakerEntry struct {
	cb       *gobreaker.CircuitBreaker[int]
	lastUsed time.Time
}

// HookCannon delivers matched actions to REST hooks and team Slack webhooks
//
//go:generate mockgen -source=cannon.go -destination=../mocks/cannon.go -package=mocks -mock_names=HookCannon=MockHookCannon
type HookCannon interface {
	// FindAndFireHooks delivers every matched action and returns once all deliveries completed.
	// Delivery failures are logged and counted; only lookup failures are returned.
	FindAndFireHooks(ctx context.Context, event *domain.Event, person *domain.Person, siteURL string, actions []domain.Action) error
}

type cannon struct {
	store    store.Store
	http     adapter.HTTPClient
	jcs      adapter.JCS
	json     adapter.JSON
	clock    adapter.Clock
	metrics  *metrics.Metrics
	cfg      Config

	mu        sync.Mutex
	breakers  map[string]*breakerEntry
	lastSweep time.Time
}

// NewHookCannon creates a new hook cannon
func NewHookCannon(st store.Store, httpClient adapter.HTTPClient, jcs adapter.JCS, jsonAdapter adapter.JSON, clock adapter.Clock, m *metrics.Metrics, cfg Config) HookCannon {
	if cfg.BreakerMaxRequests == 0 {
		cfg.BreakerMaxRequests = 1
	}
	if cfg.BreakerInterval == 0 {
		cfg.BreakerInterval = time.Minute
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if cfg.BreakerFailureThreshold == 0 {
		cfg.BreakerFailureThreshold = 5
	}
	if cfg.BreakerIdleTTL == 0 {
		cfg.BreakerIdleTTL = time.Hour
	}

	return &cannon{
		store:    st,
		http:     httpClient,
		jcs:      jcs,
		json:     jsonAdapter,
		clock:    clock,
		metrics:  m,
		cfg:      cfg,
		breakers: make(map[string]*breakerEntry),
	}
}

// FindAndFireHooks delivers the matched actions to subscribed hooks and the team's Slack webhook
func (c *cannon) FindAndFireHooks(ctx context.Context, event *domain.Event, person *domain.Person, siteURL string, actions []domain.Action) error {
	if len(actions) == 0 {
		return nil
	}

	actionIDs := make([]int64, 0, len(actions))
	actionsByID := make(map[int64]domain.Action, len(actions))
	postToSlack := false
	for _, action := range actions {
		actionIDs = append(actionIDs, action.ID)
		actionsByID[action.ID] = action
		postToSlack = postToSlack || action.PostToSlack
	}

	hooks, err := c.store.GetHooksForActions(ctx, event.TeamID, actionIDs)
	if err != nil {
		return fmt.Errorf("failed to find hooks: %w", err)
	}

	for i := range hooks {
		hook := &hooks[i]
		action, ok := actionsByID[hook.ResourceID]
		if !ok {
			continue
		}
		c.postRestHook(ctx, hook, event, person, siteURL, action)
	}

	if !postToSlack {
		return nil
	}

	team, err := c.store.GetTeam(ctx, event.TeamID)
	if err != nil {
		return fmt.Errorf("failed to get team: %w", err)
	}
	if team == nil || team.SlackIncomingWebhook == nil || *team.SlackIncomingWebhook == "" {
		return nil
	}

	for _, action := range actions {
		if action.PostToSlack {
			c.postSlack(ctx, *team.SlackIncomingWebhook, event, siteURL, action)
		}
	}

	return nil
}

func (c *cannon) postRestHook(ctx context.Context, hook *schema.Hook, event *domain.Event, person *domain.Person, siteURL string, action domain.Action) {
	now := c.clock.Now()
	hookEvent := HookEvent{
		EventID:   ulid.MustNewDefault(now).String(),
		EventType: EventTypeActionPerformed,
		Timestamp: now.UTC(),
		Hook: HookInfo{
			ID:     hook.ID,
			Event:  hook.Event,
			Target: hook.Target,
		},
		Data: HookData{
			EventUUID:  event.UUID,
			Event:      event.Event,
			DistinctID: event.DistinctID,
			TeamID:     event.TeamID,
			Timestamp:  event.Timestamp,
			Properties: event.Properties,
			SiteURL:    siteURL,
			Action:     ActionData{ID: action.ID, Name: action.Name},
			Person:     personData(person),
		},
	}

	payload, signature, timestamp, err := GenerateSignedPayload(hook.Secret, hookEvent, c.jcs, now)
	if err != nil {
		logger.ErrorCtx(ctx, errors.New("failed to generate signed payload"),
			zap.Error(err), zap.String("hookID", hook.ID))
		c.metrics.WebhookDeliveries.WithLabelValues(metrics.OutcomeFailure).Inc()
		return
	}

	headers := map[string]string{
		"Content-Type":         "application/json",
		"X-Webhook-Event-ID":   hookEvent.EventID,
		"X-Webhook-Event-Type": hookEvent.EventType,
		"X-Webhook-Timestamp":  strconv.FormatInt(timestamp, 10),
		"User-Agent":           userAgent,
	}
	if hook.Secret != "" {
		headers["X-Webhook-Signature"] = signature
	}

	result := c.deliver(ctx, "hook:"+hook.ID, hook.Target, headers, payload)
	if !result.Success {
		logger.WarnCtx(ctx, "Webhook delivery failed",
			zap.String("hookID", hook.ID),
			zap.String("target", hook.Target),
			zap.Int("statusCode", result.StatusCode),
			zap.String("error", result.Error))
		return
	}

	logger.DebugCtx(ctx, "Webhook delivered",
		zap.String("hookID", hook.ID),
		zap.String("eventID", hookEvent.EventID))
}

func (c *cannon) postSlack(ctx context.Context, webhookURL string, event *domain.Event, siteURL string, action domain.Action) {
	message := SlackMessage{Text: FormatSlackText(event, siteURL, action)}

	body, err := c.json.Marshal(message)
	if err != nil {
		logger.ErrorCtx(ctx, errors.New("failed to marshal slack message"), zap.Error(err))
		c.metrics.WebhookDeliveries.WithLabelValues(metrics.OutcomeFailure).Inc()
		return
	}

	result := c.deliver(ctx, fmt.Sprintf("slack:%d", event.TeamID), webhookURL, map[string]string{"Content-Type": "application/json"}, body)
	if !result.Success {
		logger.WarnCtx(ctx, "Slack delivery failed",
			zap.Int64("actionID", action.ID),
			zap.Int("statusCode", result.StatusCode),
			zap.String("error", result.Error))
	}
}

// deliver posts body to target through the circuit breaker named breakerKey.
// Breakers are keyed by hook or team so target URLs never reach the metrics.
func (c *cannon) deliver(ctx context.Context, breakerKey, target string, headers map[string]string, body []byte) DeliveryResult {
	breaker := c.breakerFor(breakerKey)

	statusCode, err := breaker.Execute(func() (int, error) {
		status, _, err := c.http.Post(ctx, target, headers, body)
		return status, err
	})
	if err != nil {
		outcome := metrics.OutcomeFailure
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = metrics.OutcomeRejected
		}
		c.metrics.WebhookDeliveries.WithLabelValues(outcome).Inc()

		var statusErr *adapter.HTTPStatusError
		if errors.As(err, &statusErr) {
			statusCode = statusErr.StatusCode
		}
		return DeliveryResult{Success: false, StatusCode: statusCode, Error: err.Error()}
	}

	c.metrics.WebhookDeliveries.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return DeliveryResult{Success: true, StatusCode: statusCode}
}

func (c *cannon) breakerFor(key string) *gobreaker.CircuitBreaker[int] {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	c.evictIdleBreakers(now)

	if entry, ok := c.breakers[key]; ok {
		entry.lastUsed = now
		return entry.cb
	}

	threshold := c.cfg.BreakerFailureThreshold
	cb := gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:        key,
		MaxRequests: c.cfg.BreakerMaxRequests,
		Interval:    c.cfg.BreakerInterval,
		Timeout:     c.cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Webhook circuit breaker state transition",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			c.metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	c.breakers[key] = &breakerEntry{cb: cb, lastUsed: now}
	c.metrics.CircuitBreakerState.WithLabelValues(key).Set(0)

	return cb
}

// evictIdleBreakers drops breakers unused for BreakerIdleTTL, at most once per TTL.
// c.mu must be held.
func (c *cannon) evictIdleBreakers(now time.Time) {
	if now.Sub(c.lastSweep) < c.cfg.BreakerIdleTTL {
		return
	}
	c.lastSweep = now

	for key, entry := range c.breakers {
		if now.Sub(entry.lastUsed) >= c.cfg.BreakerIdleTTL {
			delete(c.breakers, key)
			c.metrics.CircuitBreakerState.DeleteLabelValues(key)
		}
	}
}

// FormatSlackText renders the Slack message for a performed action
func FormatSlackText(event *domain.Event, siteURL string, action domain.Action) string {
	if siteURL == "" {
		return fmt.Sprintf("%s was triggered by %s", action.Name, event.DistinctID)
	}
	return fmt.Sprintf("<%s/action/%d|%s> was triggered by <%s/person/%s|%s>",
		siteURL, action.ID, action.Name, siteURL, event.DistinctID, event.DistinctID)
}

func personData(person *domain.Person) *PersonData {
	if person == nil {
		return nil
	}
	return &PersonData{
		UUID:         person.UUID,
		Properties:   person.Properties,
		IsIdentified: person.IsIdentified,
		CreatedAt:    person.CreatedAt,
	}
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
