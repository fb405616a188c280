// Package services contains server-side business logic. This file implements
// WalletLinkService, the challenge-response protocol that binds a wallet
// address to an authenticated user.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/walletlink/internal/challenge"
	"github.com/dmitrijs2005/walletlink/internal/common"
	"github.com/dmitrijs2005/walletlink/internal/dbx"
	"github.com/dmitrijs2005/walletlink/internal/logging"
	"github.com/dmitrijs2005/walletlink/internal/server/config"
	"github.com/dmitrijs2005/walletlink/internal/server/models"
	"github.com/dmitrijs2005/walletlink/internal/server/receipts"
	"github.com/dmitrijs2005/walletlink/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/walletlink/internal/sigverify"
	"github.com/google/uuid"
)

// StartResult is returned to the client that opened a link session.
type StartResult struct {
	SessionID     string
	Nonce         string
	MessageToSign string
	ExpiresAt     time.Time
}

// CompleteResult describes a successful completion. AlreadyLinked is set when
// the session had been activated before this call.
type CompleteResult struct {
	OK            bool
	AlreadyLinked bool
	WalletAddress string
}

// WalletLinkService runs the two-step wallet-link protocol:
//   - Start: issue a nonce-bearing session and the message to sign
//   - Complete: verify the signature and activate the session exactly once
type WalletLinkService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	verifiers   *sigverify.Registry
	archive     receipts.Archive
	logger      logging.Logger
	origin      string
	sessionTTL  time.Duration
	now         func() time.Time
}

// NewWalletLinkService constructs a WalletLinkService using repositories and
// server config. A nil archive disables receipts.
func NewWalletLinkService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	verifiers *sigverify.Registry, archive receipts.Archive, logger logging.Logger) *WalletLinkService {
	if archive == nil {
		archive = receipts.Nop{}
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = common.DefaultSessionTTL
	}
	return &WalletLinkService{
		db:          db,
		repomanager: m,
		verifiers:   verifiers,
		archive:     archive,
		logger:      logger.With("module", "walletlink"),
		origin:      cfg.LinkOrigin,
		sessionTTL:  ttl,
		now:         time.Now,
	}
}

// WithClock replaces the service clock. It returns s for chaining.
func (s *WalletLinkService) WithClock(now func() time.Time) *WalletLinkService {
	s.now = now
	return s
}

// clock returns the current time in UTC truncated to milliseconds, the
// precision of the rendered challenge.
func (s *WalletLinkService) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Start opens a link session for userID and walletAddress and returns the
// message the wallet must sign. walletType defaults to "evm".
func (s *WalletLinkService) Start(ctx context.Context, userID, walletAddress, walletType string) (*StartResult, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		return nil, common.ErrWalletAddressRequired
	}
	walletType = strings.ToLower(strings.TrimSpace(walletType))
	if walletType == "" {
		walletType = common.DefaultWalletType
	}
	if !s.verifiers.Supports(walletType) {
		return nil, common.ErrUnsupportedWalletType
	}

	nonce, err := common.MakeRandHexString(common.NonceSize)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %w", common.ErrorInternal, err)
	}

	now := s.clock()
	session := &models.LinkSession{
		ID:            uuid.NewString(),
		UserID:        userID,
		WalletAddress: walletAddress,
		WalletType:    walletType,
		Nonce:         nonce,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.sessionTTL),
	}

	created, err := s.repomanager.LinkSessions(s.db).Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("%w: create session: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "link session started",
		"user_id", userID, "session_id", created.ID, "wallet_type", walletType)

	return &StartResult{
		SessionID:     created.ID,
		Nonce:         created.Nonce,
		MessageToSign: challenge.Build(challengeParams(s.origin, created)),
		ExpiresAt:     created.ExpiresAt,
	}, nil
}

// Complete verifies signature over the session's challenge and, on success,
// activates the session and records the wallet link in one transaction.
//
// Checks run in a fixed order: session lookup, already-active short circuit,
// address match, expiry, signature. A session is activated at most once; a
// caller that loses the activation race gets AlreadyLinked and writes nothing.
func (s *WalletLinkService) Complete(ctx context.Context, sessionID, userID, walletAddress, signature string) (*CompleteResult, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	sessionID = strings.TrimSpace(sessionID)
	walletAddress = strings.TrimSpace(walletAddress)
	signature = strings.TrimSpace(signature)
	if sessionID == "" || walletAddress == "" || signature == "" {
		return nil, common.ErrCompleteFieldsMissing
	}

	session, err := s.repomanager.LinkSessions(s.db).Get(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: load session: %w", common.ErrorInternal, err)
	}

	if session.IsActive {
		return &CompleteResult{OK: true, AlreadyLinked: true, WalletAddress: session.WalletAddress}, nil
	}

	if !sigverify.SameAddress(session.WalletAddress, walletAddress) {
		return nil, common.ErrWalletMismatch
	}

	now := s.clock()
	if session.Expired(now) {
		return nil, common.ErrSessionExpired
	}

	message := challenge.Build(challengeParams(s.origin, session))
	if !s.verifiers.Verify(session.WalletType, message, signature, session.WalletAddress) {
		s.logger.Warn(ctx, "signature verification failed",
			"user_id", userID, "session_id", sessionID)
		return nil, common.ErrSignatureVerification
	}

	var activated bool
	var link *models.WalletLink
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		activated, err = s.repomanager.LinkSessions(tx).Activate(ctx, session.ID, userID, signature)
		if err != nil || !activated {
			return err
		}
		link, err = s.repomanager.WalletLinks(tx).Upsert(ctx, &models.WalletLink{
			UserID:        userID,
			WalletAddress: session.WalletAddress,
			WalletType:    session.WalletType,
			SessionID:     session.ID,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: activate session: %w", common.ErrorInternal, err)
	}

	if !activated {
		return &CompleteResult{OK: true, AlreadyLinked: true, WalletAddress: session.WalletAddress}, nil
	}

	s.logger.Info(ctx, "wallet linked",
		"user_id", userID, "session_id", session.ID, "wallet_type", session.WalletType)

	s.archiveReceipt(ctx, session, link, message, signature, now)

	return &CompleteResult{OK: true, WalletAddress: session.WalletAddress}, nil
}

// ListLinks returns the wallets linked to userID.
func (s *WalletLinkService) ListLinks(ctx context.Context, userID string) ([]*models.WalletLink, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	links, err := s.repomanager.WalletLinks(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list links: %w", common.ErrorInternal, err)
	}
	return links, nil
}

// archiveReceipt stores the link receipt. Failures are logged only.
func (s *WalletLinkService) archiveReceipt(ctx context.Context, session *models.LinkSession,
	link *models.WalletLink, message, signature string, now time.Time) {
	linkedAt := now
	if link != nil && !link.UpdatedAt.IsZero() {
		linkedAt = link.UpdatedAt
	}
	err := s.archive.Put(ctx, &receipts.Receipt{
		UserID:        session.UserID,
		WalletAddress: session.WalletAddress,
		WalletType:    session.WalletType,
		SessionID:     session.ID,
		Nonce:         session.Nonce,
		Message:       message,
		Signature:     signature,
		LinkedAt:      linkedAt,
	})
	if err != nil {
		s.logger.Warn(ctx, "link receipt not archived",
			"session_id", session.ID, "error", err)
	}
}

// challengeParams derives the message parameters from a persisted session so
// that start and complete render byte-identical text.
func challengeParams(origin string, s *models.LinkSession) challenge.Params {
	return challenge.Params{
		Origin:        origin,
		UserID:        s.UserID,
		WalletAddress: s.WalletAddress,
		SessionID:     s.ID,
		Nonce:         s.Nonce,
		IssuedAt:      s.CreatedAt,
		ExpiresAt:     s.ExpiresAt,
	}
}
