package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/logger"
	"github.com/feral-file/ff-ingestion/internal/properties"
	"github.com/feral-file/ff-ingestion/internal/store"
)

// EnsurePerson returns the person owning distinctID, creating it when absent.
// A concurrent creation surfaces as domain.ErrRaceCondition.
func (u *updater) EnsurePerson(ctx context.Context, teamID domain.TeamID, distinctID string, timestamp time.Time) (*domain.Person, bool, error) {
	existing, err := u.store.FetchPerson(ctx, teamID, distinctID, false)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing.ToDomain(), false, nil
	}

	row, err := u.store.CreatePerson(ctx, store.CreatePersonInput{
		UUID:        uuid.NewString(),
		TeamID:      teamID,
		CreatedAt:   timestamp,
		DistinctIDs: []string{distinctID},
	})
	if err != nil {
		return nil, false, err
	}

	person := row.ToDomain()
	person.DistinctIDs = []string{distinctID}

	logger.DebugCtx(ctx, "Created person",
		zap.Int64("teamID", int64(teamID)),
		zap.String("distinctID", distinctID),
		zap.String("uuid", person.UUID))

	if err := u.publisher.PublishPersonChange(ctx, personChange(person, timestamp)); err != nil {
		return nil, false, fmt.Errorf("failed to publish person change: %w", err)
	}

	return person, true, nil
}

// AddDistinctID attaches distinctID to the person owning existingDistinctID
func (u *updater) AddDistinctID(ctx context.Context, teamID domain.TeamID, existingDistinctID string, distinctID string) error {
	return u.store.WithTx(ctx, func(tx store.Store) error {
		person, err := tx.FetchPerson(ctx, teamID, existingDistinctID, true)
		if err != nil {
			return err
		}
		if person == nil {
			return fmt.Errorf("%w: distinct id %q in team %d", domain.ErrPersonNotFound, existingDistinctID, teamID)
		}

		return tx.AddDistinctID(ctx, teamID, person.ID, distinctID)
	})
}

// MarkIdentified sets is_identified on the person owning distinctID.
// It is a no-op for a person that is already identified.
func (u *updater) MarkIdentified(ctx context.Context, teamID domain.TeamID, distinctID string, timestamp time.Time) error {
	var changed *domain.Person

	err := u.store.WithTx(ctx, func(tx store.Store) error {
		row, err := tx.FetchPerson(ctx, teamID, distinctID, true)
		if err != nil {
			return err
		}
		if row == nil {
			return fmt.Errorf("%w: distinct id %q in team %d", domain.ErrPersonNotFound, distinctID, teamID)
		}
		if row.IsIdentified {
			return nil
		}

		person := row.ToDomain()
		identified := true
		version, err := tx.UpdatePerson(ctx, store.UpdatePersonInput{
			PersonID:                person.ID,
			CreatedAt:               person.CreatedAt,
			Properties:              person.Properties,
			PropertiesLastUpdatedAt: person.PropertiesLastUpdatedAt,
			PropertiesLastOperation: person.PropertiesLastOperation,
			IsIdentified:            &identified,
		})
		if err != nil {
			return err
		}

		person.IsIdentified = true
		person.Version = version
		changed = person
		return nil
	})
	if err != nil {
		return err
	}

	if changed == nil {
		return nil
	}

	if err := u.publisher.PublishPersonChange(ctx, personChange(changed, timestamp)); err != nil {
		return fmt.Errorf("failed to publish person change: %w", err)
	}
	return nil
}

// UpdatePersonProperties reconciles set and setOnce into the person owning distinctID.
// The person must already exist; a missing person fails with domain.ErrPersonNotFound.
// The change is published after commit and only when a property was accepted.
func (u *updater) UpdatePersonProperties(ctx context.Context, teamID domain.TeamID, distinctID string, set, setOnce domain.Properties, timestamp time.Time) (*PersonUpdate, error) {
	if len(set) == 0 && len(setOnce) == 0 {
		return &PersonUpdate{}, nil
	}

	var result PersonUpdate

	err := u.store.WithTx(ctx, func(tx store.Store) error {
		row, err := tx.FetchPerson(ctx, teamID, distinctID, true)
		if err != nil {
			return err
		}
		if row == nil {
			return fmt.Errorf("%w: could not find person with distinct id %q in team %d to update props",
				domain.ErrPersonNotFound, distinctID, teamID)
		}

		update := properties.CalculateUpdate(personState(row), set, setOnce, timestamp)
		person := row.ToDomain()

		if update.Updated || timestamp.Before(row.CreatedAt) {
			createdAt := minTime(row.CreatedAt, timestamp)
			version, err := tx.UpdatePerson(ctx, store.UpdatePersonInput{
				PersonID:                row.ID,
				CreatedAt:               createdAt,
				Properties:              update.Properties,
				PropertiesLastUpdatedAt: update.PropertiesLastUpdatedAt,
				PropertiesLastOperation: update.PropertiesLastOperation,
			})
			if err != nil {
				return err
			}

			person.CreatedAt = createdAt
			person.Properties = update.Properties
			person.PropertiesLastUpdatedAt = update.PropertiesLastUpdatedAt
			person.PropertiesLastOperation = update.PropertiesLastOperation
			person.Version = version
		}

		result = PersonUpdate{Person: person, Updated: update.Updated}
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrPersonNotFound) {
			err = fmt.Errorf("failed to update person properties: %w", err)
		}
		return nil, err
	}

	if !result.Updated {
		return &result, nil
	}

	if err := u.publisher.PublishPersonChange(ctx, personChange(result.Person, timestamp)); err != nil {
		return nil, fmt.Errorf("failed to publish person change: %w", err)
	}

	return &result, nil
}
