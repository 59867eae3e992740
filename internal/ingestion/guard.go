package ingestion

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-ingestion/internal/adapter"
	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/logger"
	"github.com/feral-file/ff-ingestion/internal/metrics"
)

// timeoutGuard warns once when an ingestion runs longer than its threshold.
// It never cancels the ingestion.
type timeoutGuard struct {
	timer adapter.Stopper
}

func startTimeoutGuard(ctx context.Context, clock adapter.Clock, m *metrics.Metrics, threshold time.Duration, event *domain.Event) *timeoutGuard {
	timer := clock.AfterFunc(threshold, func() {
		m.TimeoutWarnings.Inc()
		logger.WarnCtx(ctx, "Still ingesting event inside worker",
			zap.Duration("threshold", threshold),
			zap.String("eventUUID", event.UUID),
			zap.String("event", event.Event),
			zap.Int64("teamID", int64(event.TeamID)),
			zap.String("distinctID", event.DistinctID))
	})
	return &timeoutGuard{timer: timer}
}

// Stop releases the guard; safe to call more than once
func (g *timeoutGuard) Stop() {
	if g == nil || g.timer == nil {
		return
	}
	g.timer.Stop()
}
