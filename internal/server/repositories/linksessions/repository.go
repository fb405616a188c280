// Package linksessions declares the server-side repository contract for
// wallet-link challenge sessions.
package linksessions

import (
	"context"

	"github.com/dmitrijs2005/walletlink/internal/server/models"
)

// Repository stores link sessions and performs their one-way activation.
type Repository interface {
	// Create persists a session whose id, nonce and timestamps were already
	// generated by the caller.
	Create(ctx context.Context, s *models.LinkSession) (*models.LinkSession, error)

	// Get returns the session with sessionID owned by userID. Missing sessions,
	// sessions of other users and malformed ids all yield common.ErrorNotFound.
	Get(ctx context.Context, sessionID, userID string) (*models.LinkSession, error)

	// Activate flips is_active from false to true and records the signature.
	// It reports true only for the call that performed the flip; a session that
	// was already active yields (false, nil) and keeps its original signature.
	Activate(ctx context.Context, sessionID, userID, signature string) (bool, error)
}
