package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/logger"
	"github.com/feral-file/ff-ingestion/internal/properties"
	"github.com/feral-file/ff-ingestion/internal/store"
)

// UpsertGroup reconciles props into a group, creating the row on first sight.
// An attempt that loses the first-insert race is re-run from the locked read,
// up to Config.MaxGroupUpsertAttempts times.
func (u *updater) UpsertGroup(ctx context.Context, teamID domain.TeamID, groupTypeIndex domain.GroupTypeIndex, groupKey string, props domain.Properties, timestamp time.Time) (*GroupUpsert, error) {
	var lastErr error

	for attempt := 1; attempt <= u.cfg.MaxGroupUpsertAttempts; attempt++ {
		result, err := u.upsertGroupOnce(ctx, teamID, groupTypeIndex, groupKey, props, timestamp)
		if err == nil {
			if result.Updated {
				if err := u.publisher.PublishGroupChange(ctx, &domain.GroupChange{
					TeamID:          result.Group.TeamID,
					GroupTypeIndex:  result.Group.GroupTypeIndex,
					GroupKey:        result.Group.GroupKey,
					GroupProperties: result.Group.GroupProperties,
					CreatedAt:       result.Group.CreatedAt,
					Version:         result.Group.Version,
				}); err != nil {
					return nil, fmt.Errorf("failed to publish group change: %w", err)
				}
			}
			return result, nil
		}

		if !errors.Is(err, domain.ErrRaceCondition) {
			return nil, fmt.Errorf("failed to upsert group: %w", err)
		}

		lastErr = err
		u.metrics.GroupUpsertRaces.Inc()
		logger.DebugCtx(ctx, "Group inserted concurrently, retrying upsert",
			zap.Int64("teamID", int64(teamID)),
			zap.Int("groupTypeIndex", int(groupTypeIndex)),
			zap.String("groupKey", groupKey),
			zap.Int("attempt", attempt))
	}

	return nil, fmt.Errorf("%w: team %d group %d/%s after %d attempts: %v",
		domain.ErrGroupUpsertContention, teamID, groupTypeIndex, groupKey, u.cfg.MaxGroupUpsertAttempts, lastErr)
}

func (u *updater) upsertGroupOnce(ctx context.Context, teamID domain.TeamID, groupTypeIndex domain.GroupTypeIndex, groupKey string, props domain.Properties, timestamp time.Time) (*GroupUpsert, error) {
	var result *GroupUpsert

	err := u.store.WithTx(ctx, func(tx store.Store) error {
		row, err := tx.FetchGroup(ctx, teamID, groupTypeIndex, groupKey, true)
		if err != nil {
			return err
		}

		createdAt := minTime(u.clock.Now(), timestamp)
		if row != nil {
			createdAt = minTime(row.CreatedAt, timestamp)
		}

		update := properties.CalculateUpdate(groupState(row), props, nil, timestamp)

		// A rejected update still persists an earlier created_at; only accepted
		// properties are published
		if row != nil && !update.Updated && !timestamp.Before(row.CreatedAt) {
			result = &GroupUpsert{Group: row.ToDomain(), Updated: false}
			return nil
		}

		group := &domain.Group{
			TeamID:                  teamID,
			GroupTypeIndex:          groupTypeIndex,
			GroupKey:                groupKey,
			GroupProperties:         update.Properties,
			PropertiesLastUpdatedAt: update.PropertiesLastUpdatedAt,
			PropertiesLastOperation: update.PropertiesLastOperation,
			CreatedAt:               createdAt,
			Version:                 1,
		}
		input := store.UpsertGroupInput{
			TeamID:                  teamID,
			GroupTypeIndex:          groupTypeIndex,
			GroupKey:                groupKey,
			GroupProperties:         update.Properties,
			PropertiesLastUpdatedAt: update.PropertiesLastUpdatedAt,
			PropertiesLastOperation: update.PropertiesLastOperation,
			CreatedAt:               createdAt,
			Version:                 1,
		}

		if row == nil {
			// First write always persists so the row comes into existence
			id, err := tx.InsertGroup(ctx, input)
			if err != nil {
				return err
			}
			group.ID = id
			result = &GroupUpsert{Group: group, Updated: true}
			return nil
		}

		input.Version = row.Version + 1
		if err := tx.UpdateGroup(ctx, input); err != nil {
			return err
		}
		group.ID = row.ID
		group.Version = input.Version

		result = &GroupUpsert{Group: group, Updated: update.Updated}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
