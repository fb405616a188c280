package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/walletlink/internal/dbx"
	"github.com/dmitrijs2005/walletlink/internal/server/repositories/linksessions"
	"github.com/dmitrijs2005/walletlink/internal/server/repositories/walletlinks"
)

// RepositoryManager vends repositories bound to a DBTX, so the same service
// code runs against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	LinkSessions(db dbx.DBTX) linksessions.Repository
	WalletLinks(db dbx.DBTX) walletlinks.Repository
}
