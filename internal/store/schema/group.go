package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-ingestion/internal/domain"
)

// Group represents the posthog_group table - keyed by (team_id, group_type_index, group_key)
type Group struct {
	ID                      int64                                              `gorm:"column:id;primaryKey;autoIncrement"`
	TeamID                  domain.TeamID                                      `gorm:"column:team_id;not null;uniqueIndex:idx_group_team_type_key,priority:1"`
	GroupTypeIndex          domain.GroupTypeIndex                              `gorm:"column:group_type_index;not null;uniqueIndex:idx_group_team_type_key,priority:2"`
	GroupKey                string                                             `gorm:"column:group_key;not null;type:varchar(400);uniqueIndex:idx_group_team_type_key,priority:3"`
	GroupProperties         datatypes.JSONType[domain.Properties]              `gorm:"column:group_properties;not null;type:jsonb"`
	PropertiesLastUpdatedAt datatypes.JSONType[domain.PropertiesLastUpdatedAt] `gorm:"column:properties_last_updated_at;not null;type:jsonb"`
	PropertiesLastOperation datatypes.JSONType[domain.PropertiesLastOperation] `gorm:"column:properties_last_operation;not null;type:jsonb"`
	CreatedAt               time.Time                                          `gorm:"column:created_at;not null;type:timestamptz"`
	Version                 int64                                              `gorm:"column:version;not null"`
}

// TableName specifies the table name for the Group model
func (Group) TableName() string {
	return "posthog_group"
}

// ToDomain converts the row to a domain group
func (g *Group) ToDomain() *domain.Group {
	return &domain.Group{
		ID:                      g.ID,
		TeamID:                  g.TeamID,
		GroupTypeIndex:          g.GroupTypeIndex,
		GroupKey:                g.GroupKey,
		GroupProperties:         orEmptyProperties(g.GroupProperties.Data()),
		PropertiesLastUpdatedAt: orEmptyUpdatedAt(g.PropertiesLastUpdatedAt.Data()),
		PropertiesLastOperation: orEmptyOperation(g.PropertiesLastOperation.Data()),
		CreatedAt:               g.CreatedAt,
		Version:                 g.Version,
	}
}

// GroupTypeMapping represents the posthog_grouptypemapping table - names for a team's group type slots
type GroupTypeMapping struct {
	ID             int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	TeamID         domain.TeamID         `gorm:"column:team_id;not null;uniqueIndex:idx_grouptype_team_type,priority:1;uniqueIndex:idx_grouptype_team_index,priority:1"`
	GroupType      string                `gorm:"column:group_type;not null;type:varchar(400);uniqueIndex:idx_grouptype_team_type,priority:2"`
	GroupTypeIndex domain.GroupTypeIndex `gorm:"column:group_type_index;not null;uniqueIndex:idx_grouptype_team_index,priority:2"`
}

// TableName specifies the table name for the GroupTypeMapping model
func (GroupTypeMapping) TableName() string {
	return "posthog_grouptypemapping"
}
