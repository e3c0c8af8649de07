package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the query surface repositories run on. *pgxpool.Pool, pgx.Tx
// and pgxmock pools all satisfy it, so the same repository code serves plain
// calls, transactions and tests.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxDatabase additionally opens transactions. Repositories that bundle an
// atomic unit of work (order reception, reference allocation) require it.
type TxDatabase interface {
	Database
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ErrStaleVersion signals that a version-guarded update matched no row because
// the caller's version is out of date. Services translate it into a state
// conflict carrying expected/actual.
var ErrStaleVersion = errors.New("stale version")

// inTx runs fn inside a transaction, rolling back on error or panic.
func inTx(ctx context.Context, db TxDatabase, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
