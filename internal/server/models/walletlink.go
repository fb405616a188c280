package models

import "time"

// WalletLink is the durable association between a user and a verified wallet.
// A user has at most one link per address, compared case-insensitively.
type WalletLink struct {
	ID            string
	UserID        string
	WalletAddress string
	WalletType    string
	SessionID     string
	LinkedAt      time.Time
	UpdatedAt     time.Time
}
