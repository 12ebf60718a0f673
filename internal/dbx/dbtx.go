// Package dbx holds the database plumbing shared by the Postgres
// repositories: the DBTX handle they are built on and a transaction
// wrapper for the few multi-statement writes.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is what a repository needs from database/sql. Satisfied by *sql.DB
// and *sql.Tx, so the same query code runs inside and outside a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction: commit when fn returns nil, roll
// back when it returns an error or panics (the panic is rethrown). Used
// for writes that must land together, like superseding and inserting
// recovery tokens.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
