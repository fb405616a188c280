// Package walletlinks declares the repository contract for verified
// user-to-wallet associations.
package walletlinks

import (
	"context"

	"github.com/dmitrijs2005/walletlink/internal/server/models"
)

// Repository stores wallet links.
type Repository interface {
	// Upsert records the link. When the user already linked the same address
	// (case-insensitively) only updated_at changes and the stored casing wins.
	// The returned link reflects the persisted row.
	Upsert(ctx context.Context, link *models.WalletLink) (*models.WalletLink, error)

	// ListByUser returns the user's links, oldest first.
	ListByUser(ctx context.Context, userID string) ([]*models.WalletLink, error)
}
