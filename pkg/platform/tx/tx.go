// Package tx carries a *sql.Tx through context so stores can join a caller's
// transaction without changing their signatures. The workflow finalize path
// relies on this: the attempt CAS, the decision insert, and the audit append
// must commit or roll back together.
package tx

import (
	"context"
	"database/sql"
	"fmt"
)

type txKey struct{}

// With returns a context carrying the transaction.
func With(ctx context.Context, t *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, t)
}

// From extracts the transaction from the context, if any.
func From(ctx context.Context) (*sql.Tx, bool) {
	t, ok := ctx.Value(txKey{}).(*sql.Tx)
	return t, ok
}

// Runner executes functions within a database transaction boundary.
type Runner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SQLRunner is the database-backed Runner. The function receives a context
// carrying the open transaction; stores pick it up via From.
type SQLRunner struct {
	db *sql.DB
}

func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

func (r *SQLRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(With(ctx, t)); err != nil {
		_ = t.Rollback()
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// NoopRunner satisfies Runner for in-memory stores, which provide their own
// atomicity via locks. It simply invokes the function.
type NoopRunner struct{}

func (NoopRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
