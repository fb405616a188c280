package linksessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletlink/internal/common"
	"github.com/dmitrijs2005/walletlink/internal/dbx"
	"github.com/dmitrijs2005/walletlink/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.LinkSession) (*models.LinkSession, error) {
	query := `
		INSERT INTO link_sessions (id, user_id, wallet_address, wallet_type, nonce, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.WalletAddress, s.WalletType, s.Nonce, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Get(ctx context.Context, sessionID, userID string) (*models.LinkSession, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `
		SELECT id, user_id, wallet_address, wallet_type, nonce, created_at, expires_at, is_active, signature
		FROM link_sessions
		WHERE id = $1 AND user_id = $2
	`
	s := &models.LinkSession{}
	var signature sql.NullString
	err := r.db.QueryRowContext(ctx, query, sessionID, userID).Scan(
		&s.ID, &s.UserID, &s.WalletAddress, &s.WalletType, &s.Nonce,
		&s.CreatedAt, &s.ExpiresAt, &s.IsActive, &signature)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	s.CreatedAt = s.CreatedAt.UTC()
	s.ExpiresAt = s.ExpiresAt.UTC()
	if signature.Valid {
		s.Signature = &signature.String
	}
	return s, nil
}

func (r *PostgresRepository) Activate(ctx context.Context, sessionID, userID, signature string) (bool, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return false, common.ErrorNotFound
	}

	query := `
		UPDATE link_sessions
		SET is_active = true, signature = $3
		WHERE id = $1 AND user_id = $2 AND is_active = false
	`
	res, err := r.db.ExecContext(ctx, query, sessionID, userID, signature)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	// Nothing changed: either someone else activated it first or it is gone.
	var active bool
	err = r.db.QueryRowContext(ctx,
		`SELECT is_active FROM link_sessions WHERE id = $1 AND user_id = $2`,
		sessionID, userID).Scan(&active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	if !active {
		return false, fmt.Errorf("%w: session %s was not activated", common.ErrorInternal, sessionID)
	}
	return false, nil
}
