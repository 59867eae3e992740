package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPersonNotFound is returned when a property update targets a distinct id with no person
	ErrPersonNotFound = errors.New("person not found")

	// ErrRaceCondition is returned when a concurrent first insert won against the current attempt
	ErrRaceCondition = errors.New("race condition: entity was inserted concurrently")

	// ErrGroupUpsertContention is returned when a group upsert keeps losing insert races
	ErrGroupUpsertContention = errors.New("group upsert exhausted attempts under contention")

	// ErrTooManyGroupTypes is returned when a team already uses every group type index
	ErrTooManyGroupTypes = errors.New("team has reached the maximum number of group types")

	// ErrInvalidEvent marks malformed input; retrying the same event cannot succeed
	ErrInvalidEvent = errors.New("invalid event")

	// ErrMissingEventUUID is returned when an event arrives without a uuid
	ErrMissingEventUUID = fmt.Errorf("%w: event uuid is required", ErrInvalidEvent)
)
