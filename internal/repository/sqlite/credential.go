package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mfekih/jobtrack/internal/repository"
)

// Compile-time check that *DB satisfies the store interface.
var _ repository.CredentialStore = (*DB)(nil)

// Set replaces the stored credential. The single-row upsert means a second
// login simply overwrites the first token.
func (db *DB) Set(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("sqlite: refusing to store an empty credential")
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO credential (id, token, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		token, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: storing credential: %w", err)
	}
	return nil
}

// Get returns the stored credential, or "" when none is stored.
func (db *DB) Get(ctx context.Context) (string, error) {
	var token string
	err := db.conn.QueryRowContext(ctx,
		`SELECT token FROM credential WHERE id = 1`,
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: reading credential: %w", err)
	}
	return token, nil
}

// Clear removes the stored credential. Clearing an empty store is a no-op.
func (db *DB) Clear(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM credential WHERE id = 1`); err != nil {
		return fmt.Errorf("sqlite: clearing credential: %w", err)
	}
	return nil
}
