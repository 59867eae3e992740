// Package properties reconciles property bags under out-of-order, at-least-once delivery.
//
// Each property key carries provenance: the operation that last won for it and the event time it
// was accepted at. Conflicts are resolved from that provenance rather than from processing order,
// so applying the same set of updates in any order converges to the same winners per key.
package properties

import (
	"time"

	"github.com/feral-file/ff-ingestion/internal/domain"
)

// TimestampLayout is the layout used to record when a key was last accepted
const TimestampLayout = time.RFC3339Nano

// Update is the result of reconciling incoming values against the current state
type Update struct {
	Updated                 bool
	Properties              domain.Properties
	PropertiesLastUpdatedAt domain.PropertiesLastUpdatedAt
	PropertiesLastOperation domain.PropertiesLastOperation
}

// State is the current reconciled state of an entity's properties
type State struct {
	Properties              domain.Properties
	PropertiesLastUpdatedAt domain.PropertiesLastUpdatedAt
	PropertiesLastOperation domain.PropertiesLastOperation
}

// ShouldUpdateProperty decides whether an incoming operation at timestamp overrides the stored one.
// The caller handles keys that are absent from the current properties.
func ShouldUpdateProperty(operation domain.Operation, timestamp time.Time, lastOperation domain.Operation, lastTimestamp time.Time) bool {
	if operation == domain.OperationSetOnce &&
		lastOperation == domain.OperationSetOnce &&
		lastTimestamp.After(timestamp) {
		return true
	}
	if operation == domain.OperationSet &&
		(lastOperation == domain.OperationSetOnce || lastTimestamp.Before(timestamp)) {
		return true
	}
	return false
}

// CalculateUpdate applies set_once values and then set values, all at timestamp, against current.
// The current state is never mutated.
func CalculateUpdate(current State, set, setOnce domain.Properties, timestamp time.Time) Update {
	result := newUpdate(current)

	batches := []struct {
		props     domain.Properties
		operation domain.Operation
	}{
		{setOnce, domain.OperationSetOnce},
		{set, domain.OperationSet},
	}
	for _, batch := range batches {
		for key, value := range batch.props {
			calculateUpdateSingleProperty(&result, current, key, value, batch.operation, timestamp)
		}
	}

	return result
}

// CalculateUpdateForMerge folds another entity's history into current.
// Every key of incoming is replayed with its own recorded operation and timestamp.
func CalculateUpdateForMerge(current State, incoming State) Update {
	result := newUpdate(current)

	for key, value := range incoming.Properties {
		operation := lastOperationOrSet(incoming.PropertiesLastOperation, key)
		timestamp := lastUpdatedAtOrEpoch(incoming.PropertiesLastUpdatedAt, key)
		calculateUpdateSingleProperty(&result, current, key, value, operation, timestamp)
	}

	return result
}

// FormatTimestamp renders t the way it is stored in properties_last_updated_at
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func newUpdate(current State) Update {
	return Update{
		Properties:              cloneOrEmpty(current.Properties),
		PropertiesLastUpdatedAt: current.PropertiesLastUpdatedAt.Clone(),
		PropertiesLastOperation: current.PropertiesLastOperation.Clone(),
	}
}

// calculateUpdateSingleProperty checks presence against the result being built, but compares
// provenance against the state as it was before this batch.
func calculateUpdateSingleProperty(
	result *Update,
	current State,
	key string,
	value []byte,
	operation domain.Operation,
	timestamp time.Time,
) {
	_, exists := result.Properties[key]
	if exists && !ShouldUpdateProperty(
		operation,
		timestamp,
		lastOperationOrSet(current.PropertiesLastOperation, key),
		lastUpdatedAtOrEpoch(current.PropertiesLastUpdatedAt, key),
	) {
		return
	}

	result.Updated = true
	result.Properties[key] = value
	result.PropertiesLastOperation[key] = operation
	result.PropertiesLastUpdatedAt[key] = FormatTimestamp(timestamp)
}

func lastUpdatedAtOrEpoch(lastUpdatedAt domain.PropertiesLastUpdatedAt, key string) time.Time {
	raw, ok := lastUpdatedAt[key]
	if !ok || raw == "" {
		return time.UnixMilli(0).UTC()
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.UnixMilli(0).UTC()
	}
	return t
}

func lastOperationOrSet(lastOperation domain.PropertiesLastOperation, key string) domain.Operation {
	op, ok := lastOperation[key]
	if !ok {
		return domain.OperationSet
	}
	return op
}

func cloneOrEmpty(p domain.Properties) domain.Properties {
	if p == nil {
		return domain.Properties{}
	}
	return p.Clone()
}
