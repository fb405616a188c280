package migrations

import (
	"database/sql"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// upSection returns the statements between the goose Up and Down markers.
func upSection(t *testing.T, name string) string {
	t.Helper()
	raw, err := fs.ReadFile(Migrations, name)
	require.NoError(t, err)
	text := string(raw)
	start := strings.Index(text, "-- +goose Up")
	end := strings.Index(text, "-- +goose Down")
	require.True(t, start >= 0 && end > start, "%s lacks goose markers", name)
	return text[start+len("-- +goose Up") : end]
}

func TestLinkSessions_NonceIsUnique(t *testing.T) {
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range strings.Split(upSection(t, "00001_link_sessions.sql"), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	insert := `INSERT INTO link_sessions (id, user_id, wallet_address, wallet_type, nonce, created_at, expires_at)
		VALUES (?, 'u1', '0xabc', 'evm', ?, '2025-01-01T12:00:00Z', '2025-01-01T12:10:00Z')`

	_, err = db.Exec(insert, "3f1c1f7e-8a8e-4c1a-9b51-2a3e9f0d6c11", "n1")
	require.NoError(t, err)
	_, err = db.Exec(insert, "5b0e6a2d-1c4f-4d8e-8f3a-7e9b2c1d0a44", "n2")
	require.NoError(t, err)

	_, err = db.Exec(insert, "9a7d3c1b-2e4f-4a6b-8c0d-1e2f3a4b5c6d", "n1")
	assert.Error(t, err, "a reused nonce must be rejected")
}

func TestMigrations_HaveUpAndDown(t *testing.T) {
	names, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	for _, name := range names {
		assert.NotEmpty(t, strings.TrimSpace(upSection(t, name)), name)
	}
}
