package updater

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/logger"
	"github.com/feral-file/ff-ingestion/internal/properties"
	"github.com/feral-file/ff-ingestion/internal/store"
	"github.com/feral-file/ff-ingestion/internal/store/schema"
)

// MergePeople collapses the person owning secondaryDistinctID into the one owning primaryDistinctID.
// Both rows are locked in ascending id order, the secondary's distinct ids move to the primary and
// the secondary row is deleted. Changes for both persons are published after commit.
func (u *updater) MergePeople(ctx context.Context, teamID domain.TeamID, primaryDistinctID, secondaryDistinctID string, timestamp time.Time) (*domain.Person, error) {
	var (
		merged  *domain.Person
		deleted *domain.Person
	)

	err := u.store.WithTx(ctx, func(tx store.Store) error {
		primaryRef, err := tx.FetchPerson(ctx, teamID, primaryDistinctID, false)
		if err != nil {
			return err
		}
		secondaryRef, err := tx.FetchPerson(ctx, teamID, secondaryDistinctID, false)
		if err != nil {
			return err
		}
		if primaryRef == nil || secondaryRef == nil {
			return fmt.Errorf("%w: cannot merge %q into %q in team %d",
				domain.ErrPersonNotFound, secondaryDistinctID, primaryDistinctID, teamID)
		}
		if primaryRef.ID == secondaryRef.ID {
			merged = primaryRef.ToDomain()
			return nil
		}

		primary, secondary, err := lockPair(ctx, tx, primaryRef.ID, secondaryRef.ID)
		if err != nil {
			return err
		}

		merged, err = u.MergePersonProperties(ctx, tx, primary, secondary)
		if err != nil {
			return err
		}

		if err := tx.MoveDistinctIDs(ctx, secondary.ID, primary.ID); err != nil {
			return err
		}
		if err := tx.DeletePerson(ctx, secondary.ID); err != nil {
			return err
		}

		deleted = secondary.ToDomain()
		deleted.Version++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to merge people: %w", err)
	}

	if deleted == nil {
		return merged, nil
	}

	logger.InfoCtx(ctx, "Merged people",
		zap.Int64("teamID", int64(teamID)),
		zap.String("primaryUUID", merged.UUID),
		zap.String("secondaryUUID", deleted.UUID))

	if err := u.publisher.PublishPersonChange(ctx, personChange(merged, timestamp)); err != nil {
		return nil, fmt.Errorf("failed to publish person change: %w", err)
	}

	deletion := personChange(deleted, timestamp)
	deletion.IsDeleted = true
	if err := u.publisher.PublishPersonChange(ctx, deletion); err != nil {
		return nil, fmt.Errorf("failed to publish person deletion: %w", err)
	}

	return merged, nil
}

// MergePersonProperties folds the secondary's property history into the primary and writes the
// primary row. Both rows must already be locked by tx. The created_at of the result is the
// earlier of the two and is_identified is sticky.
func (u *updater) MergePersonProperties(ctx context.Context, tx store.Store, primary, secondary *schema.Person) (*domain.Person, error) {
	update := properties.CalculateUpdateForMerge(personState(primary), personState(secondary))

	createdAt := minTime(primary.CreatedAt, secondary.CreatedAt)
	identified := primary.IsIdentified || secondary.IsIdentified

	version, err := tx.UpdatePerson(ctx, store.UpdatePersonInput{
		PersonID:                primary.ID,
		CreatedAt:               createdAt,
		Properties:              update.Properties,
		PropertiesLastUpdatedAt: update.PropertiesLastUpdatedAt,
		PropertiesLastOperation: update.PropertiesLastOperation,
		IsIdentified:            &identified,
	})
	if err != nil {
		return nil, err
	}

	person := primary.ToDomain()
	person.CreatedAt = createdAt
	person.IsIdentified = identified
	person.Properties = update.Properties
	person.PropertiesLastUpdatedAt = update.PropertiesLastUpdatedAt
	person.PropertiesLastOperation = update.PropertiesLastOperation
	person.Version = version

	return person, nil
}

// lockPair locks two person rows in ascending id order and returns them as (first, second)
func lockPair(ctx context.Context, tx store.Store, firstID, secondID int64) (*schema.Person, *schema.Person, error) {
	ids := []int64{firstID, secondID}
	if secondID < firstID {
		ids = []int64{secondID, firstID}
	}

	locked := make(map[int64]*schema.Person, 2)
	for _, id := range ids {
		person, err := tx.FetchPersonByID(ctx, id, true)
		if err != nil {
			return nil, nil, err
		}
		if person == nil {
			return nil, nil, fmt.Errorf("%w: person id %d", domain.ErrPersonNotFound, id)
		}
		locked[id] = person
	}

	return locked[firstID], locked[secondID], nil
}
