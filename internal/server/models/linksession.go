// Package models defines server-side data models persisted in the database.
package models

import "time"

// LinkSession is one attempt to prove control of a wallet. It is created by
// start and consumed at most once by complete.
type LinkSession struct {
	ID            string
	UserID        string
	WalletAddress string // as submitted, original casing
	WalletType    string
	Nonce         string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	IsActive      bool
	Signature     *string // nil until activated
}

// Expired reports whether now is past the session's expiry. A session is
// still valid at exactly ExpiresAt.
func (s *LinkSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
