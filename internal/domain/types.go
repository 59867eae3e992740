package domain

import (
	"encoding/json"
	"time"
)

// TeamID identifies the tenant that owns an entity
type TeamID int64

// GroupTypeIndex is the per-team slot of a group type (0..4)
type GroupTypeIndex int

// Operation is the kind of update that last won for a property key
type Operation string

const (
	// OperationSet is an unconditional last-write-wins update by event time
	OperationSet Operation = "set"
	// OperationSetOnce only establishes a value when none exists, or when an earlier one is discovered
	OperationSetOnce Operation = "set_once"
)

// Properties maps property keys to opaque JSON values.
// Values are never inspected by the reconciliation engine.
type Properties map[string]json.RawMessage

// PropertiesLastUpdatedAt maps property keys to the ISO-8601 event time the value was accepted at
type PropertiesLastUpdatedAt map[string]string

// PropertiesLastOperation maps property keys to the operation that last won for that key
type PropertiesLastOperation map[string]Operation

// Clone returns a shallow copy of the properties
func (p Properties) Clone() Properties {
	c := make(Properties, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Clone returns a copy of the timestamps
func (p PropertiesLastUpdatedAt) Clone() PropertiesLastUpdatedAt {
	c := make(PropertiesLastUpdatedAt, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Clone returns a copy of the operations
func (p PropertiesLastOperation) Clone() PropertiesLastOperation {
	c := make(PropertiesLastOperation, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Event is an analytics event that has already been deserialized from the wire
type Event struct {
	UUID       string     `json:"uuid"`
	Event      string     `json:"event"`
	DistinctID string     `json:"distinct_id"`
	TeamID     TeamID     `json:"team_id"`
	IP         string     `json:"ip,omitempty"`
	SiteURL    string     `json:"site_url,omitempty"`
	Now        time.Time  `json:"now"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	Properties Properties `json:"properties,omitempty"`
	Set        Properties `json:"$set,omitempty"`
	SetOnce    Properties `json:"$set_once,omitempty"`
}

// Element is a DOM element captured with an autocapture event
type Element struct {
	TagName    string            `json:"tag_name,omitempty"`
	Text       string            `json:"$el_text,omitempty"`
	Href       string            `json:"attr__href,omitempty"`
	AttrID     string            `json:"attr_id,omitempty"`
	AttrClass  []string          `json:"attr_class,omitempty"`
	NthChild   int               `json:"nth_child,omitempty"`
	NthOfType  int               `json:"nth_of_type,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Order      int               `json:"order,omitempty"`
}

// ProcessingResult is what the events processor returns for a processed event
type ProcessingResult struct {
	// EventID is the internal id of the stored event; nil when action matches are computed elsewhere
	EventID  *int64
	Elements []Element
}

// Action is a team-defined rule that matched an event
type Action struct {
	ID          int64  `json:"id"`
	TeamID      TeamID `json:"team_id"`
	Name        string `json:"name"`
	PostToSlack bool   `json:"post_to_slack"`
}

// Person is the reconciled identity state of a real-world actor
type Person struct {
	ID                      int64                   `json:"id"`
	UUID                    string                  `json:"uuid"`
	TeamID                  TeamID                  `json:"team_id"`
	Properties              Properties              `json:"properties"`
	PropertiesLastUpdatedAt PropertiesLastUpdatedAt `json:"properties_last_updated_at"`
	PropertiesLastOperation PropertiesLastOperation `json:"properties_last_operation"`
	IsIdentified            bool                    `json:"is_identified"`
	CreatedAt               time.Time               `json:"created_at"`
	Version                 int64                   `json:"version"`
	DistinctIDs             []string                `json:"distinct_ids,omitempty"`
}

// Group is the reconciled state of a group entity
type Group struct {
	ID                      int64                   `json:"id"`
	TeamID                  TeamID                  `json:"team_id"`
	GroupTypeIndex          GroupTypeIndex          `json:"group_type_index"`
	GroupKey                string                  `json:"group_key"`
	GroupProperties         Properties              `json:"group_properties"`
	PropertiesLastUpdatedAt PropertiesLastUpdatedAt `json:"properties_last_updated_at"`
	PropertiesLastOperation PropertiesLastOperation `json:"properties_last_operation"`
	CreatedAt               time.Time               `json:"created_at"`
	Version                 int64                   `json:"version"`
}

// PersonChange is the downstream record published after a committed person mutation.
// Consumers order records for the same person by Version.
type PersonChange struct {
	UUID         string     `json:"id"`
	TeamID       TeamID     `json:"team_id"`
	Properties   Properties `json:"properties"`
	IsIdentified bool       `json:"is_identified"`
	IsDeleted    bool       `json:"is_deleted"`
	Timestamp    time.Time  `json:"timestamp"`
	Version      int64      `json:"version"`
}

// GroupChange is the group state pushed to the analytical read store after a committed upsert
type GroupChange struct {
	TeamID          TeamID         `json:"team_id"`
	GroupTypeIndex  GroupTypeIndex `json:"group_type_index"`
	GroupKey        string         `json:"group_key"`
	GroupProperties Properties     `json:"group_properties"`
	CreatedAt       time.Time      `json:"created_at"`
	Version         int64          `json:"version"`
}

// DeadLetter describes an event that could not be ingested
type DeadLetter struct {
	EventUUID      string     `json:"event_uuid"`
	Event          string     `json:"event"`
	DistinctID     string     `json:"distinct_id"`
	TeamID         TeamID     `json:"team_id"`
	IP             string     `json:"ip,omitempty"`
	SiteURL        string     `json:"site_url,omitempty"`
	Now            time.Time  `json:"now"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	Properties     Properties `json:"properties,omitempty"`
	ErrorTimestamp time.Time  `json:"error_timestamp"`
	ErrorLocation  string     `json:"error_location"`
	Error          string     `json:"error"`
}

// NewDeadLetter builds the dead-letter record for an event that failed with err
func NewDeadLetter(event *Event, err error, at time.Time) *DeadLetter {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &DeadLetter{
		EventUUID:      event.UUID,
		Event:          event.Event,
		DistinctID:     event.DistinctID,
		TeamID:         event.TeamID,
		IP:             event.IP,
		SiteURL:        event.SiteURL,
		Now:            event.Now,
		SentAt:         event.SentAt,
		Properties:     event.Properties,
		ErrorTimestamp: at.UTC(),
		ErrorLocation:  DEAD_LETTER_ERROR_LOCATION,
		Error:          msg,
	}
}

// IngestionResult is returned for every ingested event; failures are carried as data
type IngestionResult struct {
	Success       bool     `json:"success"`
	ActionMatches []Action `json:"action_matches,omitempty"`
	Error         string   `json:"error,omitempty"`
	// DeadLettered is set on failure once the event was published to the dead-letter subject
	DeadLettered bool `json:"dead_lettered,omitempty"`
}
