package schema

import (
	"time"

	"github.com/feral-file/ff-ingestion/internal/domain"
)

// HookEventActionPerformed is the only hook event fired by ingestion
const HookEventActionPerformed = "action_performed"

// Hook represents the posthog_hook table - REST hooks subscribed to an action
type Hook struct {
	// ID is a unique identifier for the hook
	ID string `gorm:"column:id;primaryKey;type:varchar(50)"`
	// TeamID is the owning tenant
	TeamID domain.TeamID `gorm:"column:team_id;not null;index"`
	// Event is the hook event type, always action_performed for action hooks
	Event string `gorm:"column:event;not null;type:varchar(50)"`
	// ResourceID is the action id the hook is subscribed to
	ResourceID int64 `gorm:"column:resource_id;index"`
	// Target is the HTTPS endpoint the payload is delivered to
	Target string `gorm:"column:target;not null;type:text"`
	// Secret is used for HMAC-SHA256 payload signatures; empty disables signing
	Secret    string    `gorm:"column:secret;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Hook model
func (Hook) TableName() string {
	return "posthog_hook"
}

// Team represents the subset of posthog_team needed for webhook delivery
type Team struct {
	ID                   domain.TeamID `gorm:"column:id;primaryKey"`
	Name                 string        `gorm:"column:name;type:varchar(200)"`
	SlackIncomingWebhook *string       `gorm:"column:slack_incoming_webhook;type:varchar(500)"`
}

// TableName specifies the table name for the Team model
func (Team) TableName() string {
	return "posthog_team"
}
