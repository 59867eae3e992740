package webhook

import (
	"time"

	"github.com/feral-file/ff-ingestion/internal/domain"
)

// EventTypeActionPerformed is sent when an ingested event matched an action a hook subscribes to
const EventTypeActionPerformed = "action_performed"

// HookEvent is the envelope delivered to a REST hook target
type HookEvent struct {
	// EventID is a unique identifier for this delivery (ULID for time-sortable uniqueness)
	EventID string `json:"event_id"`
	// EventType is the hook event (e.g., "action_performed")
	EventType string `json:"event_type"`
	// Timestamp is when the delivery was generated
	Timestamp time.Time `json:"timestamp"`
	// Hook identifies the subscription being fired
	Hook HookInfo `json:"hook"`
	// Data contains the event-specific payload
	Data HookData `json:"data"`
}

// HookInfo identifies a REST hook subscription
type HookInfo struct {
	ID     string `json:"id"`
	Event  string `json:"event"`
	Target string `json:"target"`
}

// HookData describes the ingested event that performed the action
type HookData struct {
	EventUUID  string            `json:"uuid"`
	Event      string            `json:"event"`
	DistinctID string            `json:"distinct_id"`
	TeamID     domain.TeamID     `json:"team_id"`
	Timestamp  *time.Time        `json:"timestamp,omitempty"`
	Properties domain.Properties `json:"properties,omitempty"`
	SiteURL    string            `json:"site_url,omitempty"`
	Action     ActionData        `json:"action"`
	// Person is nil when the event's person could not be loaded
	Person *PersonData `json:"person,omitempty"`
}

// ActionData identifies the action that matched
type ActionData struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PersonData is the person snapshot attached to a hook payload
type PersonData struct {
	UUID         string            `json:"uuid"`
	Properties   domain.Properties `json:"properties"`
	IsIdentified bool              `json:"is_identified"`
	CreatedAt    time.Time         `json:"created_at"`
}

// SlackMessage is the body posted to a team's incoming webhook
type SlackMessage struct {
	Text string `json:"text"`
}

// DeliveryResult represents the result of a webhook delivery attempt
type DeliveryResult struct {
	// Success indicates whether the delivery was successful
	Success bool
	// StatusCode is the HTTP status code returned by the webhook endpoint
	StatusCode int
	// Error contains error details if delivery failed
	Error string
}
