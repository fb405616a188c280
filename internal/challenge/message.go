// Package challenge renders the text a wallet signs to prove ownership of an
// address during wallet linking.
//
// The rendered layout is a wire contract shared with signing clients: the
// server rebuilds the exact same string when a signature comes back, so any
// change to labels, order or whitespace invalidates every in-flight session.
package challenge

import (
	"strings"
	"time"
)

// TimeLayout renders timestamps in UTC with millisecond precision, matching
// the ISO-8601 form browsers produce.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Params are the inputs of a challenge message. Empty fields are rendered as
// empty strings rather than rejected.
type Params struct {
	Origin        string
	UserID        string
	WalletAddress string
	SessionID     string
	Nonce         string
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// Build returns the canonical challenge for p. It is pure and deterministic.
func Build(p Params) string {
	lines := []string{
		p.Origin + " wants you to link your wallet.",
		"",
		"User: " + p.UserID,
		"Wallet: " + p.WalletAddress,
		"Session: " + p.SessionID,
		"Nonce: " + p.Nonce,
		"Issued At: " + formatTime(p.IssuedAt),
		"Expires At: " + formatTime(p.ExpiresAt),
	}
	return strings.Join(lines, "\n")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}
