package properties_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-ingestion/internal/domain"
	"github.com/feral-file/ff-ingestion/internal/properties"
)

var (
	jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan2 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	jan3 = time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
)

func raw(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// stateWith builds a single-key state
func stateWith(key string, value interface{}, op domain.Operation, at time.Time) properties.State {
	return properties.State{
		Properties:              domain.Properties{key: raw(value)},
		PropertiesLastUpdatedAt: domain.PropertiesLastUpdatedAt{key: properties.FormatTimestamp(at)},
		PropertiesLastOperation: domain.PropertiesLastOperation{key: op},
	}
}

func TestShouldUpdateProperty(t *testing.T) {
	tests := []struct {
		name          string
		operation     domain.Operation
		timestamp     time.Time
		lastOperation domain.Operation
		lastTimestamp time.Time
		expected      bool
	}{
		{"set after set", domain.OperationSet, jan2, domain.OperationSet, jan1, true},
		{"set before set", domain.OperationSet, jan1, domain.OperationSet, jan2, false},
		{"set equal to set", domain.OperationSet, jan1, domain.OperationSet, jan1, false},
		{"set after set_once", domain.OperationSet, jan2, domain.OperationSetOnce, jan1, true},
		{"set before set_once", domain.OperationSet, jan1, domain.OperationSetOnce, jan2, true},
		{"set_once before set_once", domain.OperationSetOnce, jan1, domain.OperationSetOnce, jan2, true},
		{"set_once after set_once", domain.OperationSetOnce, jan2, domain.OperationSetOnce, jan1, false},
		{"set_once equal to set_once", domain.OperationSetOnce, jan1, domain.OperationSetOnce, jan1, false},
		{"set_once before set", domain.OperationSetOnce, jan1, domain.OperationSet, jan2, false},
		{"set_once after set", domain.OperationSetOnce, jan3, domain.OperationSet, jan1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := properties.ShouldUpdateProperty(tt.operation, tt.timestamp, tt.lastOperation, tt.lastTimestamp)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCalculateUpdate_NewKeysAlwaysAccepted(t *testing.T) {
	for _, op := range []domain.Operation{domain.OperationSet, domain.OperationSetOnce} {
		t.Run(string(op), func(t *testing.T) {
			incoming := domain.Properties{"plan": raw("free")}
			var set, setOnce domain.Properties
			if op == domain.OperationSet {
				set = incoming
			} else {
				setOnce = incoming
			}

			update := properties.CalculateUpdate(properties.State{}, set, setOnce, jan1)

			assert.True(t, update.Updated)
			assert.JSONEq(t, `"free"`, string(update.Properties["plan"]))
			assert.Equal(t, op, update.PropertiesLastOperation["plan"])
			assert.Equal(t, properties.FormatTimestamp(jan1), update.PropertiesLastUpdatedAt["plan"])
		})
	}
}

func TestCalculateUpdate_Scenarios(t *testing.T) {
	current := stateWith("plan", "free", domain.OperationSet, jan1)

	// later set wins
	update := properties.CalculateUpdate(current, domain.Properties{"plan": raw("pro")}, nil, jan2)
	require.True(t, update.Updated)
	assert.JSONEq(t, `"pro"`, string(update.Properties["plan"]))
	assert.Equal(t, domain.OperationSet, update.PropertiesLastOperation["plan"])

	// a set_once never overrides a set
	next := properties.State{
		Properties:              update.Properties,
		PropertiesLastUpdatedAt: update.PropertiesLastUpdatedAt,
		PropertiesLastOperation: update.PropertiesLastOperation,
	}
	update = properties.CalculateUpdate(next, nil, domain.Properties{"plan": raw("trial")}, jan3)
	assert.False(t, update.Updated)
	assert.JSONEq(t, `"pro"`, string(update.Properties["plan"]))
	assert.Equal(t, properties.FormatTimestamp(jan2), update.PropertiesLastUpdatedAt["plan"])
}

func TestCalculateUpdate_SetOnceEarlierWins(t *testing.T) {
	current := stateWith("source", "ads", domain.OperationSetOnce, jan2)

	update := properties.CalculateUpdate(current, nil, domain.Properties{"source": raw("organic")}, jan1)
	assert.True(t, update.Updated)
	assert.JSONEq(t, `"organic"`, string(update.Properties["source"]))
	assert.Equal(t, properties.FormatTimestamp(jan1), update.PropertiesLastUpdatedAt["source"])

	update = properties.CalculateUpdate(current, nil, domain.Properties{"source": raw("organic")}, jan3)
	assert.False(t, update.Updated)
	assert.JSONEq(t, `"ads"`, string(update.Properties["source"]))
}

func TestCalculateUpdate_SetAlwaysBeatsSetOnce(t *testing.T) {
	current := stateWith("email", "a@example.com", domain.OperationSetOnce, jan3)

	update := properties.CalculateUpdate(current, domain.Properties{"email": raw("b@example.com")}, nil, jan1)
	assert.True(t, update.Updated)
	assert.JSONEq(t, `"b@example.com"`, string(update.Properties["email"]))
	assert.Equal(t, domain.OperationSet, update.PropertiesLastOperation["email"])
}

func TestCalculateUpdate_SetOverridesSetOnceInSameBatch(t *testing.T) {
	update := properties.CalculateUpdate(
		properties.State{},
		domain.Properties{"name": raw("set")},
		domain.Properties{"name": raw("once")},
		jan1,
	)

	assert.True(t, update.Updated)
	assert.JSONEq(t, `"set"`, string(update.Properties["name"]))
	assert.Equal(t, domain.OperationSet, update.PropertiesLastOperation["name"])
}

func TestCalculateUpdate_Idempotent(t *testing.T) {
	start := stateWith("plan", "free", domain.OperationSet, jan1)
	set := domain.Properties{"plan": raw("pro"), "seats": raw(3)}
	setOnce := domain.Properties{"first_seen": raw("2024-01-02"), "seats": raw(1)}

	first := properties.CalculateUpdate(start, set, setOnce, jan2)
	require.True(t, first.Updated)

	second := properties.CalculateUpdate(properties.State{
		Properties:              first.Properties,
		PropertiesLastUpdatedAt: first.PropertiesLastUpdatedAt,
		PropertiesLastOperation: first.PropertiesLastOperation,
	}, set, setOnce, jan2)

	assert.False(t, second.Updated)
	assert.Equal(t, first.Properties, second.Properties)
	assert.Equal(t, first.PropertiesLastUpdatedAt, second.PropertiesLastUpdatedAt)
	assert.Equal(t, first.PropertiesLastOperation, second.PropertiesLastOperation)
}

func TestCalculateUpdate_DoesNotMutateCurrent(t *testing.T) {
	current := stateWith("plan", "free", domain.OperationSet, jan1)

	_ = properties.CalculateUpdate(current, domain.Properties{"plan": raw("pro"), "new": raw(true)}, nil, jan2)

	assert.Len(t, current.Properties, 1)
	assert.JSONEq(t, `"free"`, string(current.Properties["plan"]))
	assert.Equal(t, properties.FormatTimestamp(jan1), current.PropertiesLastUpdatedAt["plan"])
}

func TestCalculateUpdate_MissingProvenanceDefaultsToSetAtEpoch(t *testing.T) {
	// legacy rows may have values without companion metadata
	current := properties.State{Properties: domain.Properties{"legacy": raw("old")}}

	update := properties.CalculateUpdate(current, nil, domain.Properties{"legacy": raw("once")}, jan1)
	assert.False(t, update.Updated)

	update = properties.CalculateUpdate(current, domain.Properties{"legacy": raw("new")}, nil, jan1)
	assert.True(t, update.Updated)
	assert.JSONEq(t, `"new"`, string(update.Properties["legacy"]))
}

func TestCalculateUpdate_ConsistentTriplePerKey(t *testing.T) {
	update := properties.CalculateUpdate(
		stateWith("a", 1, domain.OperationSet, jan1),
		domain.Properties{"b": raw(2), "c": raw(3)},
		domain.Properties{"d": raw(4)},
		jan2,
	)

	for key := range update.PropertiesLastOperation {
		assert.Contains(t, update.Properties, key)
	}
	for key := range update.PropertiesLastUpdatedAt {
		assert.Contains(t, update.Properties, key)
	}
	assert.Len(t, update.PropertiesLastOperation, 4)
	assert.Len(t, update.PropertiesLastUpdatedAt, 4)
}

func TestCalculateUpdate_OrderIndependent(t *testing.T) {
	updates := []struct {
		set     domain.Properties
		setOnce domain.Properties
		at      time.Time
	}{
		{domain.Properties{"plan": raw("free")}, domain.Properties{"ref": raw("a")}, jan1},
		{domain.Properties{"plan": raw("pro")}, domain.Properties{"ref": raw("b")}, jan3},
		{domain.Properties{"plan": raw("trial")}, domain.Properties{"ref": raw("c")}, jan2},
	}

	apply := func(order []int) properties.State {
		state := properties.State{}
		for _, i := range order {
			u := properties.CalculateUpdate(state, updates[i].set, updates[i].setOnce, updates[i].at)
			state = properties.State{
				Properties:              u.Properties,
				PropertiesLastUpdatedAt: u.PropertiesLastUpdatedAt,
				PropertiesLastOperation: u.PropertiesLastOperation,
			}
		}
		return state
	}

	expected := apply([]int{0, 1, 2})
	for _, order := range [][]int{{2, 1, 0}, {1, 0, 2}, {2, 0, 1}} {
		got := apply(order)
		assert.Equal(t, expected.Properties, got.Properties)
		assert.Equal(t, expected.PropertiesLastUpdatedAt, got.PropertiesLastUpdatedAt)
	}
	assert.JSONEq(t, `"pro"`, string(expected.Properties["plan"]))
	assert.JSONEq(t, `"a"`, string(expected.Properties["ref"]))
}

func TestCalculateUpdateForMerge(t *testing.T) {
	primary := properties.State{
		Properties: domain.Properties{
			"plan":   raw("free"),
			"source": raw("ads"),
			"email":  raw("p@example.com"),
		},
		PropertiesLastUpdatedAt: domain.PropertiesLastUpdatedAt{
			"plan":   properties.FormatTimestamp(jan1),
			"source": properties.FormatTimestamp(jan2),
			"email":  properties.FormatTimestamp(jan3),
		},
		PropertiesLastOperation: domain.PropertiesLastOperation{
			"plan":   domain.OperationSet,
			"source": domain.OperationSetOnce,
			"email":  domain.OperationSet,
		},
	}
	secondary := properties.State{
		Properties: domain.Properties{
			"plan":   raw("pro"),
			"source": raw("organic"),
			"email":  raw("s@example.com"),
			"city":   raw("Taipei"),
		},
		PropertiesLastUpdatedAt: domain.PropertiesLastUpdatedAt{
			"plan":   properties.FormatTimestamp(jan2),
			"source": properties.FormatTimestamp(jan1),
			"email":  properties.FormatTimestamp(jan1),
			"city":   properties.FormatTimestamp(jan1),
		},
		PropertiesLastOperation: domain.PropertiesLastOperation{
			"plan":   domain.OperationSet,
			"source": domain.OperationSetOnce,
			"email":  domain.OperationSet,
			"city":   domain.OperationSetOnce,
		},
	}

	update := properties.CalculateUpdateForMerge(primary, secondary)

	require.True(t, update.Updated)
	assert.JSONEq(t, `"pro"`, string(update.Properties["plan"]))
	assert.JSONEq(t, `"organic"`, string(update.Properties["source"]))
	assert.JSONEq(t, `"p@example.com"`, string(update.Properties["email"]))
	assert.JSONEq(t, `"Taipei"`, string(update.Properties["city"]))
	assert.Equal(t, domain.OperationSetOnce, update.PropertiesLastOperation["city"])
	assert.Equal(t, properties.FormatTimestamp(jan1), update.PropertiesLastUpdatedAt["source"])

	t.Run("merge direction does not change winners", func(t *testing.T) {
		reverse := properties.CalculateUpdateForMerge(secondary, primary)
		assert.Equal(t, update.Properties, reverse.Properties)
		assert.Equal(t, update.PropertiesLastUpdatedAt, reverse.PropertiesLastUpdatedAt)
		assert.Equal(t, update.PropertiesLastOperation, reverse.PropertiesLastOperation)
	})

	t.Run("merging an identical history is a no-op", func(t *testing.T) {
		again := properties.CalculateUpdateForMerge(properties.State{
			Properties:              update.Properties,
			PropertiesLastUpdatedAt: update.PropertiesLastUpdatedAt,
			PropertiesLastOperation: update.PropertiesLastOperation,
		}, secondary)
		assert.False(t, again.Updated)
	})
}
