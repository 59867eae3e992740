// Package processor turns an analytics event into person, group and identity mutations
// and hands the event to the analytics backend.
package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-ingestion/internal/adapter"
	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/logger"
	"github.com/feral-file/ff-ingestion/internal/messaging"
	"github.com/feral-file/ff-ingestion/internal/store"
	"github.com/feral-file/ff-ingestion/internal/updater"
)

// EventsProcessor processes a single event. It must be safe to call again with the same event uuid.
//
//go:generate mockgen -source=processor.go -destination=../mocks/processor.go -package=mocks -mock_names=EventsProcessor=MockEventsProcessor
type EventsProcessor interface {
	// ProcessEvent applies the event's side effects. A nil result means there is nothing to match actions against.
	ProcessEvent(ctx context.Context, event *domain.Event) (*domain.ProcessingResult, error)
}

type processor struct {
	store     store.Store
	updater   updater.Updater
	publisher messaging.Publisher
	json      adapter.JSON
}

// New creates the default events processor
func New(st store.Store, u updater.Updater, publisher messaging.Publisher, jsonAdapter adapter.JSON) EventsProcessor {
	return &processor{
		store:     st,
		updater:   u,
		publisher: publisher,
		json:      jsonAdapter,
	}
}

// ProcessEvent resolves the event time, applies identity changes and property updates,
// and publishes the event for the analytics backend
func (p *processor) ProcessEvent(ctx context.Context, event *domain.Event) (*domain.ProcessingResult, error) {
	if event.UUID == "" {
		return nil, domain.ErrMissingEventUUID
	}

	timestamp := ResolveTimestamp(event)
	teamID := event.TeamID
	distinctID := event.DistinctID

	switch event.Event {
	case domain.EVENT_CREATE_ALIAS:
		if alias, ok := p.stringProperty(event.Properties, domain.PROPERTY_ALIAS); ok {
			if err := p.alias(ctx, teamID, alias, distinctID, timestamp); err != nil {
				return nil, err
			}
		}
	case domain.EVENT_IDENTIFY:
		if anonID, ok := p.stringProperty(event.Properties, domain.PROPERTY_ANON_DISTINCT); ok {
			if err := p.alias(ctx, teamID, anonID, distinctID, timestamp); err != nil {
				return nil, err
			}
		}
	}

	if _, _, err := p.updater.EnsurePerson(ctx, teamID, distinctID, timestamp); err != nil {
		return nil, err
	}

	if event.Event == domain.EVENT_IDENTIFY {
		if err := p.updater.MarkIdentified(ctx, teamID, distinctID, timestamp); err != nil {
			return nil, err
		}
	}

	set, err := p.mergedProperties(event.Properties, domain.PROPERTY_SET, event.Set)
	if err != nil {
		return nil, err
	}
	setOnce, err := p.mergedProperties(event.Properties, domain.PROPERTY_SET_ONCE, event.SetOnce)
	if err != nil {
		return nil, err
	}
	if _, err := p.updater.UpdatePersonProperties(ctx, teamID, distinctID, set, setOnce, timestamp); err != nil {
		return nil, err
	}

	if event.Event == domain.EVENT_GROUP_IDENTIFY {
		if err := p.groupIdentify(ctx, event, timestamp); err != nil {
			return nil, err
		}
	}

	ingested := *event
	ingested.Timestamp = &timestamp
	if err := p.publisher.PublishAnalyticsEvent(ctx, &ingested); err != nil {
		return nil, fmt.Errorf("failed to publish analytics event: %w", err)
	}

	return &domain.ProcessingResult{
		// The analytics backend matches actions asynchronously, so no event id is stored here
		EventID:  nil,
		Elements: p.elements(ctx, event),
	}, nil
}

// ResolveTimestamp returns the authoritative event time.
// A client timestamp is corrected for client clock skew using sent_at and the server receive time.
func ResolveTimestamp(event *domain.Event) time.Time {
	if event.Timestamp == nil {
		return event.Now.UTC()
	}
	if event.SentAt == nil {
		return event.Timestamp.UTC()
	}

	skew := event.Now.Sub(*event.SentAt)
	return event.Timestamp.Add(skew).UTC()
}

// alias links previousID to distinctID, merging their persons when both exist
func (p *processor) alias(ctx context.Context, teamID domain.TeamID, previousID, distinctID string, timestamp time.Time) error {
	if previousID == distinctID {
		return nil
	}

	oldPerson, err := p.store.FetchPerson(ctx, teamID, previousID, false)
	if err != nil {
		return err
	}
	newPerson, err := p.store.FetchPerson(ctx, teamID, distinctID, false)
	if err != nil {
		return err
	}

	switch {
	case oldPerson != nil && newPerson == nil:
		return p.updater.AddDistinctID(ctx, teamID, previousID, distinctID)
	case oldPerson == nil && newPerson != nil:
		return p.updater.AddDistinctID(ctx, teamID, distinctID, previousID)
	case oldPerson == nil && newPerson == nil:
		if _, _, err := p.updater.EnsurePerson(ctx, teamID, distinctID, timestamp); err != nil {
			return err
		}
		return p.updater.AddDistinctID(ctx, teamID, distinctID, previousID)
	case oldPerson.ID != newPerson.ID:
		_, err := p.updater.MergePeople(ctx, teamID, distinctID, previousID, timestamp)
		return err
	}

	return nil
}

func (p *processor) groupIdentify(ctx context.Context, event *domain.Event, timestamp time.Time) error {
	groupType, ok := p.stringProperty(event.Properties, domain.PROPERTY_GROUP_TYPE)
	if !ok {
		return nil
	}
	groupKey, ok := p.stringProperty(event.Properties, domain.PROPERTY_GROUP_KEY)
	if !ok {
		return nil
	}

	groupTypeIndex, err := p.store.GetOrCreateGroupTypeIndex(ctx, event.TeamID, groupType)
	if err != nil {
		if errors.Is(err, domain.ErrTooManyGroupTypes) {
			logger.WarnCtx(ctx, "Skipping group update, team has no free group type index",
				zap.Int64("teamID", int64(event.TeamID)),
				zap.String("groupType", groupType))
			return nil
		}
		return err
	}

	groupSet, err := p.propertiesValue(event.Properties, domain.PROPERTY_GROUP_SET)
	if err != nil {
		return err
	}

	_, err = p.updater.UpsertGroup(ctx, event.TeamID, groupTypeIndex, groupKey, groupSet, timestamp)
	return err
}

// mergedProperties combines the nested properties[key] object with the top level field; top level wins
func (p *processor) mergedProperties(props domain.Properties, key string, topLevel domain.Properties) (domain.Properties, error) {
	nested, err := p.propertiesValue(props, key)
	if err != nil {
		return nil, err
	}
	if len(topLevel) == 0 {
		return nested, nil
	}

	merged := nested.Clone()
	for k, v := range topLevel {
		merged[k] = v
	}
	return merged, nil
}

func (p *processor) propertiesValue(props domain.Properties, key string) (domain.Properties, error) {
	raw, ok := props[key]
	if !ok || isJSONNull(raw) {
		return domain.Properties{}, nil
	}

	var value domain.Properties
	if err := p.json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", domain.ErrInvalidEvent, key, err)
	}
	if value == nil {
		value = domain.Properties{}
	}
	return value, nil
}

// stringProperty reads a property as a string; non-string scalars are used in their JSON form
func (p *processor) stringProperty(props domain.Properties, key string) (string, bool) {
	raw, ok := props[key]
	if !ok || isJSONNull(raw) {
		return "", false
	}

	var s string
	if err := p.json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}

	text := strings.TrimSpace(string(raw))
	return text, text != ""
}

func (p *processor) elements(ctx context.Context, event *domain.Event) []domain.Element {
	raw, ok := event.Properties[domain.PROPERTY_ELEMENTS]
	if !ok || isJSONNull(raw) {
		return nil
	}

	var elements []domain.Element
	if err := p.json.Unmarshal(raw, &elements); err != nil {
		logger.WarnCtx(ctx, "Ignoring malformed elements",
			zap.String("eventUUID", event.UUID),
			zap.Error(err))
		return nil
	}
	return elements
}

func isJSONNull(raw []byte) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
