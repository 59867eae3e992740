package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/feral-file/ff-ingestion/internal/adapter"
)

// SignaturePrefix is prepended to the hex encoded HMAC
const SignaturePrefix = "sha256="

// GenerateSignedPayload canonicalizes event and signs it with HMAC-SHA256.
// Returns the JSON payload, signature header value, timestamp, and any error.
func GenerateSignedPayload(secret string, event HookEvent, canonicalizer adapter.JCS, now time.Time) (payload []byte, signature string, timestamp int64, err error) {
	// Canonical JSON keeps the signed bytes independent of map ordering
	payload, err = canonicalizer.Canonicalize(event)
	if err != nil {
		return nil, "", 0, fmt.Errorf("failed to canonicalize event: %w", err)
	}

	timestamp = now.Unix()
	signature = Sign(secret, timestamp, event.EventID, payload)

	return payload, signature, timestamp, nil
}

// Sign computes the signature header value over {timestamp}.{event_id}.{payload}
func Sign(secret string, timestamp int64, eventID string, payload []byte) string {
	signaturePayload := fmt.Sprintf("%d.%s.%s", timestamp, eventID, string(payload))

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(signaturePayload))

	return SignaturePrefix + hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether signature matches the payload
func Verify(secret string, timestamp int64, eventID string, payload []byte, signature string) bool {
	expected := Sign(secret, timestamp, eventID, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
