package adapter

import (
	"github.com/getsentry/sentry-go"
)

// ErrorTracker reports errors to an external exception tracker
//
//go:generate mockgen -source=sentry.go -destination=../mocks/sentry.go -package=mocks -mock_names=ErrorTracker=MockErrorTracker
type ErrorTracker interface {
	CaptureException(err error, tags map[string]string, extra map[string]interface{})
}

// SentryErrorTracker implements ErrorTracker with a sentry hub
type SentryErrorTracker struct {
	hub *sentry.Hub
}

// NewSentryErrorTracker creates an error tracker reporting through hub.
// A nil hub uses the current global hub.
func NewSentryErrorTracker(hub *sentry.Hub) ErrorTracker {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &SentryErrorTracker{hub: hub}
}

func (s *SentryErrorTracker) CaptureException(err error, tags map[string]string, extra map[string]interface{}) {
	if err == nil {
		return
	}

	hub := s.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		scope.SetExtras(extra)
		hub.CaptureException(err)
	})
}
