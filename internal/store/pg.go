package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/store/schema"
)

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// Zero values fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Idle connections never exceed open connections
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// isUniqueViolation reports whether err was caused by a unique constraint
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// WithTx runs fn inside a transaction
func (s *pgStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pgStore{db: tx})
	})
}

func (s *pgStore) query(ctx context.Context, forUpdate bool) *gorm.DB {
	db := s.db.WithContext(ctx)
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// FetchPerson retrieves the person owning a distinct id
func (s *pgStore) FetchPerson(ctx context.Context, teamID domain.TeamID, distinctID string, forUpdate bool) (*schema.Person, error) {
	var person schema.Person
	db := s.db.WithContext(ctx)
	if forUpdate {
		// Lock only the person row, not the distinct id row
		db = db.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: schema.Person{}.TableName()}})
	}
	err := db.
		Select("posthog_person.*").
		Joins("JOIN posthog_persondistinctid ON posthog_persondistinctid.person_id = posthog_person.id").
		Where("posthog_persondistinctid.team_id = ? AND posthog_persondistinctid.distinct_id = ?", teamID, distinctID).
		First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch person: %w", err)
	}
	return &person, nil
}

// FetchPersonByID retrieves a person by its internal id
func (s *pgStore) FetchPersonByID(ctx context.Context, personID int64, forUpdate bool) (*schema.Person, error) {
	var person schema.Person
	err := s.query(ctx, forUpdate).Where("id = ?", personID).First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch person by id: %w", err)
	}
	return &person, nil
}

// GetDistinctIDs returns every distinct id attached to a person
func (s *pgStore) GetDistinctIDs(ctx context.Context, personID int64) ([]string, error) {
	var distinctIDs []string
	err := s.db.WithContext(ctx).
		Model(&schema.PersonDistinctID{}).
		Where("person_id = ?", personID).
		Order("id ASC").
		Pluck("distinct_id", &distinctIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct ids: %w", err)
	}
	return distinctIDs, nil
}

// CreatePerson inserts a person and its distinct ids in one transaction
func (s *pgStore) CreatePerson(ctx context.Context, input CreatePersonInput) (*schema.Person, error) {
	person := schema.Person{
		UUID:                    input.UUID,
		TeamID:                  input.TeamID,
		Properties:              datatypes.NewJSONType(orEmptyProperties(input.Properties)),
		PropertiesLastUpdatedAt: datatypes.NewJSONType(orEmptyUpdatedAt(input.PropertiesLastUpdatedAt)),
		PropertiesLastOperation: datatypes.NewJSONType(orEmptyOperation(input.PropertiesLastOperation)),
		IsIdentified:            input.IsIdentified,
		CreatedAt:               input.CreatedAt.UTC(),
		Version:                 0,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&person).Error; err != nil {
			return fmt.Errorf("failed to create person: %w", err)
		}

		for _, distinctID := range input.DistinctIDs {
			pdi := schema.PersonDistinctID{
				TeamID:     input.TeamID,
				DistinctID: distinctID,
				PersonID:   person.ID,
			}
			if err := tx.Create(&pdi).Error; err != nil {
				return fmt.Errorf("failed to create distinct id %q: %w", distinctID, err)
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrRaceCondition, err)
		}
		return nil, err
	}

	return &person, nil
}

// UpdatePerson overwrites a person's reconciled state and returns the new version
func (s *pgStore) UpdatePerson(ctx context.Context, input UpdatePersonInput) (int64, error) {
	updates := map[string]interface{}{
		"created_at":                input.CreatedAt.UTC(),
		"properties":                datatypes.NewJSONType(orEmptyProperties(input.Properties)),
		"properties_last_updated_at": datatypes.NewJSONType(orEmptyUpdatedAt(input.PropertiesLastUpdatedAt)),
		"properties_last_operation":  datatypes.NewJSONType(orEmptyOperation(input.PropertiesLastOperation)),
		"version":                   gorm.Expr("COALESCE(version, 0) + 1"),
	}
	if input.IsIdentified != nil {
		updates["is_identified"] = *input.IsIdentified
	}

	person := schema.Person{ID: input.PersonID}
	result := s.db.WithContext(ctx).
		Model(&person).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "version"}}}).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update person: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: person id %d", domain.ErrPersonNotFound, input.PersonID)
	}

	return person.Version, nil
}

// AddDistinctID attaches a distinct id to a person
func (s *pgStore) AddDistinctID(ctx context.Context, teamID domain.TeamID, personID int64, distinctID string) error {
	pdi := schema.PersonDistinctID{
		TeamID:     teamID,
		DistinctID: distinctID,
		PersonID:   personID,
	}
	if err := s.createInSavepoint(ctx, &pdi); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrRaceCondition, err)
		}
		return fmt.Errorf("failed to add distinct id: %w", err)
	}
	return nil
}

// createInSavepoint inserts a row so that a constraint violation leaves an enclosing transaction usable
func (s *pgStore) createInSavepoint(ctx context.Context, value interface{}) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(value).Error
	})
}

// MoveDistinctIDs reassigns every distinct id of one person to another
func (s *pgStore) MoveDistinctIDs(ctx context.Context, fromPersonID int64, toPersonID int64) error {
	err := s.db.WithContext(ctx).
		Model(&schema.PersonDistinctID{}).
		Where("person_id = ?", fromPersonID).
		Updates(map[string]interface{}{
			"person_id": toPersonID,
			"version":   gorm.Expr("COALESCE(version, 0) + 1"),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to move distinct ids: %w", err)
	}
	return nil
}

// DeletePerson removes a person row
func (s *pgStore) DeletePerson(ctx context.Context, personID int64) error {
	if err := s.db.WithContext(ctx).Delete(&schema.Person{}, personID).Error; err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return nil
}

// FetchGroup retrieves a group by its natural key
func (s *pgStore) FetchGroup(ctx context.Context, teamID domain.TeamID, groupTypeIndex domain.GroupTypeIndex, groupKey string, forUpdate bool) (*schema.Group, error) {
	var group schema.Group
	err := s.query(ctx, forUpdate).
		Where("team_id = ? AND group_type_index = ? AND group_key = ?", teamID, groupTypeIndex, groupKey).
		First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}
	return &group, nil
}

// InsertGroup creates a group and returns its id
func (s *pgStore) InsertGroup(ctx context.Context, input UpsertGroupInput) (int64, error) {
	group := schema.Group{
		TeamID:                  input.TeamID,
		GroupTypeIndex:          input.GroupTypeIndex,
		GroupKey:                input.GroupKey,
		GroupProperties:         datatypes.NewJSONType(orEmptyProperties(input.GroupProperties)),
		PropertiesLastUpdatedAt: datatypes.NewJSONType(orEmptyUpdatedAt(input.PropertiesLastUpdatedAt)),
		PropertiesLastOperation: datatypes.NewJSONType(orEmptyOperation(input.PropertiesLastOperation)),
		CreatedAt:               input.CreatedAt.UTC(),
		Version:                 input.Version,
	}

	// ON CONFLICT DO NOTHING keeps the enclosing transaction usable; a skipped row is the race
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "team_id"}, {Name: "group_type_index"}, {Name: "group_key"}},
			DoNothing: true,
		}).
		Create(&group)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return 0, fmt.Errorf("%w: %v", domain.ErrRaceCondition, result.Error)
		}
		return 0, fmt.Errorf("failed to insert group: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: group %d/%s already exists", domain.ErrRaceCondition, input.GroupTypeIndex, input.GroupKey)
	}

	return group.ID, nil
}

// UpdateGroup overwrites an existing group's state
func (s *pgStore) UpdateGroup(ctx context.Context, input UpsertGroupInput) error {
	result := s.db.WithContext(ctx).
		Model(&schema.Group{}).
		Where("team_id = ? AND group_type_index = ? AND group_key = ?", input.TeamID, input.GroupTypeIndex, input.GroupKey).
		Updates(map[string]interface{}{
			"group_properties":          datatypes.NewJSONType(orEmptyProperties(input.GroupProperties)),
			"properties_last_updated_at": datatypes.NewJSONType(orEmptyUpdatedAt(input.PropertiesLastUpdatedAt)),
			"properties_last_operation":  datatypes.NewJSONType(orEmptyOperation(input.PropertiesLastOperation)),
			"created_at":                input.CreatedAt.UTC(),
			"version":                   input.Version,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update group: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update group %d/%s: row not found", input.GroupTypeIndex, input.GroupKey)
	}
	return nil
}

// GetOrCreateGroupTypeIndex resolves a group type name to the team's type index,
// claiming the lowest free index for unseen types
func (s *pgStore) GetOrCreateGroupTypeIndex(ctx context.Context, teamID domain.TeamID, groupType string) (domain.GroupTypeIndex, error) {
	var mapping schema.GroupTypeMapping
	err := s.db.WithContext(ctx).
		Where("team_id = ? AND group_type = ?", teamID, groupType).
		First(&mapping).Error
	if err == nil {
		return mapping.GroupTypeIndex, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("failed to get group type mapping: %w", err)
	}

	var used []domain.GroupTypeIndex
	if err := s.db.WithContext(ctx).
		Model(&schema.GroupTypeMapping{}).
		Where("team_id = ?", teamID).
		Pluck("group_type_index", &used).Error; err != nil {
		return 0, fmt.Errorf("failed to list group type indexes: %w", err)
	}

	next, ok := lowestFreeGroupTypeIndex(used)
	if !ok {
		return 0, domain.ErrTooManyGroupTypes
	}

	mapping = schema.GroupTypeMapping{
		TeamID:         teamID,
		GroupType:      groupType,
		GroupTypeIndex: next,
	}
	if err := s.createInSavepoint(ctx, &mapping); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %v", domain.ErrRaceCondition, err)
		}
		return 0, fmt.Errorf("failed to create group type mapping: %w", err)
	}

	return next, nil
}

func lowestFreeGroupTypeIndex(used []domain.GroupTypeIndex) (domain.GroupTypeIndex, bool) {
	taken := make(map[domain.GroupTypeIndex]bool, len(used))
	for _, idx := range used {
		taken[idx] = true
	}
	for i := 0; i < domain.MAX_GROUP_TYPES_PER_TEAM; i++ {
		if !taken[domain.GroupTypeIndex(i)] {
			return domain.GroupTypeIndex(i), true
		}
	}
	return 0, false
}

// GetTeamActions returns a team's live actions with their steps
func (s *pgStore) GetTeamActions(ctx context.Context, teamID domain.TeamID) ([]schema.Action, error) {
	var actions []schema.Action
	err := s.db.WithContext(ctx).
		Preload("Steps").
		Where("team_id = ? AND deleted = ?", teamID, false).
		Order("id ASC").
		Find(&actions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get team actions: %w", err)
	}
	return actions, nil
}

// RegisterActionMatch persists the association between an event and matched actions
func (s *pgStore) RegisterActionMatch(ctx context.Context, eventID int64, actions []domain.Action) error {
	if len(actions) == 0 {
		return nil
	}

	rows := make([]schema.ActionEvent, 0, len(actions))
	for _, action := range actions {
		rows = append(rows, schema.ActionEvent{ActionID: action.ID, EventID: eventID})
	}

	// Retried ingestions may register the same match twice
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "action_id"}, {Name: "event_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to register action match: %w", err)
	}
	return nil
}

// GetHooksForActions returns the team's action_performed hooks subscribed to any of the actions
func (s *pgStore) GetHooksForActions(ctx context.Context, teamID domain.TeamID, actionIDs []int64) ([]schema.Hook, error) {
	if len(actionIDs) == 0 {
		return []schema.Hook{}, nil
	}

	var hooks []schema.Hook
	err := s.db.WithContext(ctx).
		Where("team_id = ? AND event = ? AND resource_id IN ?", teamID, schema.HookEventActionPerformed, actionIDs).
		Order("created_at ASC").
		Find(&hooks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get hooks: %w", err)
	}
	return hooks, nil
}

// GetTeam retrieves a team
func (s *pgStore) GetTeam(ctx context.Context, teamID domain.TeamID) (*schema.Team, error) {
	var team schema.Team
	err := s.db.WithContext(ctx).Where("id = ?", teamID).First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &team, nil
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
