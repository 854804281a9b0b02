// Package postgres implements the repository ports on PostgreSQL via pgx.
//
// Transactions are carried in the context: TxManager.RunInTx stores the
// pgx.Tx, and every repository method uses it when present.
//
// Import Path: eventforge.io/eventforge/internal/repository/postgres
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL is embedded so the service can bootstrap its own tables.
//
//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// titleConstraint names the unique constraint on events.title.
const titleConstraint = "events_title_key"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKeyType struct{}

var txKey = txKeyType{}

// ContextWithTx returns a ctx that makes repositories use tx.
func ContextWithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// TxFromContext returns the transaction opened by RunInTx, if any.
// River uses it to enqueue jobs atomically with the event rows.
func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok && tx != nil
}

func conn(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return pool
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply event schema: %w", err)
	}
	return nil
}

// TxManager opens pgx transactions on a pool.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a TxManager.
func NewTxManager(pool *pgxpool.Pool) TxManager {
	return TxManager{pool: pool}
}

// RunInTx commits when fn returns nil and rolls back otherwise. A ctx that
// already carries a transaction is reused as is.
func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ContextWithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Pinger checks pool connectivity.
type Pinger struct {
	pool *pgxpool.Pool
}

// NewPinger creates a Pinger.
func NewPinger(pool *pgxpool.Pool) Pinger {
	return Pinger{pool: pool}
}

// Ping round-trips to the database.
func (p Pinger) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func isTitleViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && pgErr.ConstraintName == titleConstraint
}
