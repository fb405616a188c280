package walletlinks

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/walletlink/internal/dbx"
	"github.com/dmitrijs2005/walletlink/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, link *models.WalletLink) (*models.WalletLink, error) {
	query := `
		INSERT INTO wallet_links (user_id, wallet_address, wallet_type, session_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, (lower(wallet_address)))
		DO UPDATE SET updated_at = now()
		RETURNING id, wallet_address, wallet_type, session_id, linked_at, updated_at
	`
	out := &models.WalletLink{UserID: link.UserID}
	err := r.db.QueryRowContext(ctx, query,
		link.UserID, link.WalletAddress, link.WalletType, link.SessionID).
		Scan(&out.ID, &out.WalletAddress, &out.WalletType, &out.SessionID, &out.LinkedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	out.LinkedAt = out.LinkedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()
	return out, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.WalletLink, error) {
	query := `
		SELECT id, user_id, wallet_address, wallet_type, session_id, linked_at, updated_at
		FROM wallet_links
		WHERE user_id = $1
		ORDER BY linked_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	links := make([]*models.WalletLink, 0)
	for rows.Next() {
		l := &models.WalletLink{}
		if err := rows.Scan(&l.ID, &l.UserID, &l.WalletAddress, &l.WalletType, &l.SessionID, &l.LinkedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		l.LinkedAt = l.LinkedAt.UTC()
		l.UpdatedAt = l.UpdatedAt.UTC()
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return links, nil
}
