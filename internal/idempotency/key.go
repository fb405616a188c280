// Package idempotency derives deterministic, time-bucketed keys for
// side-effecting actions so that client retries of the same submission can be
// recognised and deduplicated.
package idempotency

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultWindowSeconds is the bucket width used when none is given.
const DefaultWindowSeconds = 600

// MaxWindowSeconds is the widest accepted bucket, one year.
const MaxWindowSeconds = 365 * 24 * 60 * 60

// ErrWindowTooLarge is returned for windows wider than MaxWindowSeconds.
var ErrWindowTooLarge = errors.New("idempotency window too large")

// keyVersion is mixed into every payload; bump it to invalidate all keys.
const keyVersion = 1

// minKeyLength is the shortest key ever returned.
const minKeyLength = 24

// Payload describes an action: name, actor, amount, destination, chain, asset
// and so on. Values may be any JSON-encodable Go value.
type Payload map[string]any

// Deriver computes keys against a clock.
type Deriver struct {
	Now func() time.Time
}

// DeriveKey derives a key for payload using the wall clock. windowSeconds <= 0
// selects DefaultWindowSeconds; windows above MaxWindowSeconds are rejected.
func DeriveKey(payload Payload, windowSeconds int) (string, error) {
	return Deriver{}.Derive(payload, windowSeconds)
}

// Derive returns the key for payload in the bucket containing d.Now().
//
// Identical payloads inside one bucket yield identical keys regardless of map
// ordering; the same payload in the next bucket yields a different key.
func (d Deriver) Derive(payload Payload, windowSeconds int) (string, error) {
	if windowSeconds <= 0 {
		windowSeconds = DefaultWindowSeconds
	}
	if windowSeconds > MaxWindowSeconds {
		return "", fmt.Errorf("%w: %d seconds", ErrWindowTooLarge, windowSeconds)
	}

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	merged := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		merged[k] = v
	}
	merged["bucket"] = Bucket(now(), windowSeconds)
	merged["version"] = keyVersion

	canonical, err := Canonicalize(merged)
	if err != nil {
		return "", fmt.Errorf("canonicalize payload: %w", err)
	}

	sum := sha256.Sum256(canonical)
	key := base64.RawURLEncoding.EncodeToString(sum[:])
	if len(key) < minKeyLength {
		key += strings.Repeat("0", minKeyLength-len(key))
	}
	return key, nil
}

// Bucket returns floor(unixMillis / (windowSeconds * 1000)). Windows outside
// (0, MaxWindowSeconds] are replaced by DefaultWindowSeconds.
func Bucket(t time.Time, windowSeconds int) int64 {
	if windowSeconds <= 0 || windowSeconds > MaxWindowSeconds {
		windowSeconds = DefaultWindowSeconds
	}
	ms := t.UnixMilli()
	width := int64(windowSeconds) * 1000
	b := ms / width
	// Go truncates toward zero; floor for instants before the epoch.
	if ms%width != 0 && ms < 0 {
		b--
	}
	return b
}
