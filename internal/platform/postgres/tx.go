package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	txcontext "voluntr/pkg/platform/tx"
)

// TxRunner runs a block inside a database transaction carried through ctx.
type TxRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db, timeout: txcontext.DefaultTimeout}
}

// RunInTx begins a transaction, stores it in ctx for postgres stores, and
// commits when fn succeeds. A transaction already present in ctx is reused.
func (t *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}

	ctx, cancel, err := txcontext.Bound(ctx, t.timeout)
	if err != nil {
		return err
	}
	defer cancel()

	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
