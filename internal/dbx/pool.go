package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// OpenFunc opens a database handle. Open is the production implementation.
type OpenFunc func(ctx context.Context) (*sql.DB, error)

// Open returns an OpenFunc that connects to PostgreSQL through pgx and
// verifies the connection with a ping.
func Open(dsn string) OpenFunc {
	return func(ctx context.Context) (*sql.DB, error) {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db ping error: %w", err)
		}
		return db, nil
	}
}

// Pool lazily creates one *sql.DB and hands it to every caller.
// A failed open is not cached; the next GetOrInit tries again.
type Pool struct {
	mu sync.Mutex
	db *sql.DB
}

// GetOrInit returns the pooled handle, calling open on first use.
func (p *Pool) GetOrInit(ctx context.Context, open OpenFunc) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return p.db, nil
	}
	db, err := open(ctx)
	if err != nil {
		return nil, err
	}
	p.db = db
	return db, nil
}

// Close closes the pooled handle, if any.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

// ResetForTesting forgets the pooled handle without closing it.
func (p *Pool) ResetForTesting() {
	p.mu.Lock()
	p.db = nil
	p.mu.Unlock()
}
