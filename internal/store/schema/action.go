package schema

import (
	"time"

	"github.com/feral-file/ff-ingestion/internal/domain"
)

// Action represents the posthog_action table - team-defined rules matched against events
type Action struct {
	ID          int64         `gorm:"column:id;primaryKey;autoIncrement"`
	TeamID      domain.TeamID `gorm:"column:team_id;not null;index"`
	Name        string        `gorm:"column:name;type:varchar(400)"`
	PostToSlack bool          `gorm:"column:post_to_slack;not null;default:false"`
	Deleted     bool          `gorm:"column:deleted;not null;default:false"`
	CreatedAt   time.Time     `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	Steps []ActionStep `gorm:"foreignKey:ActionID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Action model
func (Action) TableName() string {
	return "posthog_action"
}

// ToDomain converts the row to a domain action
func (a *Action) ToDomain() domain.Action {
	return domain.Action{
		ID:          a.ID,
		TeamID:      a.TeamID,
		Name:        a.Name,
		PostToSlack: a.PostToSlack,
	}
}

// ActionStep represents the posthog_actionstep table - one matching step of an action
type ActionStep struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ActionID int64  `gorm:"column:action_id;not null;index"`
	Event    string `gorm:"column:event;type:varchar(400)"`
}

// TableName specifies the table name for the ActionStep model
func (ActionStep) TableName() string {
	return "posthog_actionstep"
}

// ActionEvent represents the posthog_action_events table - persisted action matches
type ActionEvent struct {
	ID       int64 `gorm:"column:id;primaryKey;autoIncrement"`
	ActionID int64 `gorm:"column:action_id;not null;uniqueIndex:idx_action_events_action_event,priority:1"`
	EventID  int64 `gorm:"column:event_id;not null;uniqueIndex:idx_action_events_action_event,priority:2"`
}

// TableName specifies the table name for the ActionEvent model
func (ActionEvent) TableName() string {
	return "posthog_action_events"
}
