package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-ingestion/internal/domain"
)

// Person represents the posthog_person table - the reconciled identity state of one actor
type Person struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UUID is the stable external identifier used by downstream consumers
	UUID string `gorm:"column:uuid;not null;uniqueIndex;type:uuid"`
	// TeamID is the owning tenant
	TeamID domain.TeamID `gorm:"column:team_id;not null;index"`
	// Properties is the reconciled property bag
	Properties datatypes.JSONType[domain.Properties] `gorm:"column:properties;not null;type:jsonb"`
	// PropertiesLastUpdatedAt records the event time each key was accepted at
	PropertiesLastUpdatedAt datatypes.JSONType[domain.PropertiesLastUpdatedAt] `gorm:"column:properties_last_updated_at;not null;type:jsonb"`
	// PropertiesLastOperation records the operation that last won for each key
	PropertiesLastOperation datatypes.JSONType[domain.PropertiesLastOperation] `gorm:"column:properties_last_operation;not null;type:jsonb"`
	// IsIdentified is sticky once any contributing identity was identified
	IsIdentified bool `gorm:"column:is_identified;not null;default:false"`
	// CreatedAt is the earliest event time observed for this person
	CreatedAt time.Time `gorm:"column:created_at;not null;type:timestamptz"`
	// Version is incremented once per committed mutation
	Version int64 `gorm:"column:version;not null;default:0"`
}

// TableName specifies the table name for the Person model
func (Person) TableName() string {
	return "posthog_person"
}

// ToDomain converts the row to a domain person
func (p *Person) ToDomain() *domain.Person {
	return &domain.Person{
		ID:                      p.ID,
		UUID:                    p.UUID,
		TeamID:                  p.TeamID,
		Properties:              orEmptyProperties(p.Properties.Data()),
		PropertiesLastUpdatedAt: orEmptyUpdatedAt(p.PropertiesLastUpdatedAt.Data()),
		PropertiesLastOperation: orEmptyOperation(p.PropertiesLastOperation.Data()),
		IsIdentified:            p.IsIdentified,
		CreatedAt:               p.CreatedAt,
		Version:                 p.Version,
	}
}

// PersonDistinctID represents the posthog_persondistinctid table - maps distinct ids to persons
type PersonDistinctID struct {
	ID         int64         `gorm:"column:id;primaryKey;autoIncrement"`
	TeamID     domain.TeamID `gorm:"column:team_id;not null;uniqueIndex:idx_persondistinctid_team_distinct,priority:1"`
	DistinctID string        `gorm:"column:distinct_id;not null;type:varchar(400);uniqueIndex:idx_persondistinctid_team_distinct,priority:2"`
	PersonID   int64         `gorm:"column:person_id;not null;index"`
	Version    int64         `gorm:"column:version;not null;default:0"`
}

// TableName specifies the table name for the PersonDistinctID model
func (PersonDistinctID) TableName() string {
	return "posthog_persondistinctid"
}

func orEmptyProperties(p domain.Properties) domain.Properties {
	if p == nil {
		return domain.Properties{}
	}
	return p
}

func orEmptyUpdatedAt(p domain.PropertiesLastUpdatedAt) domain.PropertiesLastUpdatedAt {
	if p == nil {
		return domain.PropertiesLastUpdatedAt{}
	}
	return p
}

func orEmptyOperation(p domain.PropertiesLastOperation) domain.PropertiesLastOperation {
	if p == nil {
		return domain.PropertiesLastOperation{}
	}
	return p
}
