package database

import (
	"context"
	"database/sql"
	"fmt"
)

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise, so a group of writes either all
// land or none do. fn must not make external calls; keep the unit as
// short as the writes themselves.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
