package webhook_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-ingestion/internal/adapter"
	"github.com/feral-file/ff-ingestion/internal/mocks"
	"github.com/feral-file/ff-ingestion/internal/webhook"
)

var signedAt = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func sampleHookEvent(eventID string) webhook.HookEvent {
	return webhook.HookEvent{
		EventID:   eventID,
		EventType: webhook.EventTypeActionPerformed,
		Timestamp: signedAt,
		Hook: webhook.HookInfo{
			ID:     "hook-1",
			Event:  "action_performed",
			Target: "https://hooks.example.com/ingest",
		},
		Data: webhook.HookData{
			EventUUID:  "0190b7a4-1111-7000-8000-000000000001",
			Event:      "$pageview",
			DistinctID: "user-1",
			TeamID:     2,
			SiteURL:    "https://app.example.com",
			Action:     webhook.ActionData{ID: 7, Name: "Visited pricing"},
		},
	}
}

func TestGenerateSignedPayload(t *testing.T) {
	jcs := adapter.NewJCS(adapter.NewJSON())

	t.Run("generates valid payload and signature", func(t *testing.T) {
		secret := "test-secret-key"
		event := sampleHookEvent("01JG8XAMPLE1234567890123456")

		payload, signature, timestamp, err := webhook.GenerateSignedPayload(secret, event, jcs, signedAt)
		require.NoError(t, err)

		// Verify payload is valid JSON
		var parsedEvent webhook.HookEvent
		err = json.Unmarshal(payload, &parsedEvent)
		require.NoError(t, err)
		assert.Equal(t, event.EventID, parsedEvent.EventID)
		assert.Equal(t, event.EventType, parsedEvent.EventType)
		assert.Equal(t, event.Data.Action, parsedEvent.Data.Action)

		assert.Equal(t, signedAt.Unix(), timestamp)

		// Verify signature can be validated
		signaturePayload := fmt.Sprintf("%d.%s.%s", timestamp, event.EventID, string(payload))
		h := hmac.New(sha256.New, []byte(secret))
		h.Write([]byte(signaturePayload))
		expectedSignature := "sha256=" + hex.EncodeToString(h.Sum(nil))
		assert.Equal(t, expectedSignature, signature)
	})

	t.Run("payload is canonical", func(t *testing.T) {
		event := sampleHookEvent("01JG8XAMPLE1234567890123456")

		payload, _, _, err := webhook.GenerateSignedPayload("secret", event, jcs, signedAt)
		require.NoError(t, err)

		canonical, err := jcs.Transform(payload)
		require.NoError(t, err)
		assert.Equal(t, string(canonical), string(payload))
	})

	t.Run("different events produce different signatures", func(t *testing.T) {
		secret := "test-secret-key"

		_, sig1, _, err := webhook.GenerateSignedPayload(secret, sampleHookEvent("01JG8XAMPLE1111111111111111"), jcs, signedAt)
		require.NoError(t, err)
		_, sig2, _, err := webhook.GenerateSignedPayload(secret, sampleHookEvent("01JG8XAMPLE2222222222222222"), jcs, signedAt)
		require.NoError(t, err)

		assert.NotEqual(t, sig1, sig2)
	})

	t.Run("different secrets produce different signatures", func(t *testing.T) {
		event := sampleHookEvent("01JG8XAMPLE1234567890123456")

		_, sig1, _, err := webhook.GenerateSignedPayload("secret-one", event, jcs, signedAt)
		require.NoError(t, err)
		_, sig2, _, err := webhook.GenerateSignedPayload("secret-two", event, jcs, signedAt)
		require.NoError(t, err)

		assert.NotEqual(t, sig1, sig2)
	})

	t.Run("canonicalization failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockJCS := mocks.NewMockJCS(ctrl)
		mockJCS.EXPECT().Canonicalize(gomock.Any()).Return(nil, errors.New("boom"))

		_, _, _, err := webhook.GenerateSignedPayload("secret", sampleHookEvent("id"), mockJCS, signedAt)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to canonicalize event")
	})
}

func TestVerify(t *testing.T) {
	payload := []byte(`{"event":"$pageview"}`)
	timestamp := signedAt.Unix()
	signature := webhook.Sign("secret", timestamp, "event-1", payload)

	tests := []struct {
		name      string
		secret    string
		timestamp int64
		eventID   string
		payload   []byte
		signature string
		expected  bool
	}{
		{"valid signature", "secret", timestamp, "event-1", payload, signature, true},
		{"wrong secret", "other", timestamp, "event-1", payload, signature, false},
		{"wrong timestamp", "secret", timestamp + 1, "event-1", payload, signature, false},
		{"wrong event id", "secret", timestamp, "event-2", payload, signature, false},
		{"tampered payload", "secret", timestamp, "event-1", []byte(`{"event":"$identify"}`), signature, false},
		{"missing prefix", "secret", timestamp, "event-1", payload, signature[len(webhook.SignaturePrefix):], false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, webhook.Verify(tt.secret, tt.timestamp, tt.eventID, tt.payload, tt.signature))
		})
	}
}
