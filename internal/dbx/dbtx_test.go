package dbx

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// openSessions returns an in-memory table shaped like a link session: a row
// that may be activated once.
func openSessions(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sessions (id TEXT PRIMARY KEY, is_active INTEGER NOT NULL DEFAULT 0, signature TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT OR IGNORE INTO sessions(id) VALUES ('s1')`)
	require.NoError(t, err)
	return db
}

func isActive(t *testing.T, db *sql.DB) bool {
	t.Helper()
	var active bool
	require.NoError(t, db.QueryRow(`SELECT is_active FROM sessions WHERE id = 's1'`).Scan(&active))
	return active
}

func activate(ctx context.Context, tx DBTX, sig string) (bool, error) {
	res, err := tx.ExecContext(ctx, `UPDATE sessions SET is_active = 1, signature = ? WHERE id = 's1' AND is_active = 0`, sig)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := openSessions(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		ok, err := activate(ctx, tx, "0xsig")
		require.True(t, ok)
		return err
	})
	require.NoError(t, err)
	assert.True(t, isActive(t, db))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := openSessions(t)
	boom := errors.New("link write failed")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := activate(ctx, tx, "0xsig")
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, isActive(t, db), "activation must not survive a failed transaction")
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db := openSessions(t)

	defer func() {
		require.NotNil(t, recover(), "panic must propagate")
		assert.False(t, isActive(t, db))
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := activate(ctx, tx, "0xsig")
		require.NoError(t, err)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := openSessions(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		t.Fatal("fn must not run without a transaction")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}

func TestWithTx_ConditionalUpdateActivatesOnce(t *testing.T) {
	db := openSessions(t)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
				ok, err := activate(ctx, tx, "0xsig")
				if ok {
					mu.Lock()
					wins++
					mu.Unlock()
				}
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.True(t, isActive(t, db))
}
