package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rayanh/salary-tracker/internal/pkg/ctxlog"
)

// Querier is the subset of database operations that both *pgxpool.Pool
// and pgx.Tx implement. Repositories run all statements through it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// ErrNestedTx is returned when RunInTx is called inside an already
// open unit of work. Service methods must not call each other across
// transaction boundaries.
var ErrNestedTx = errors.New("nested unit of work")

// QuerierFrom returns the transaction carried by ctx, or pool when no
// unit of work is open. This is how repositories observe the unit of
// work opened by the service layer without parameter threading.
func QuerierFrom(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// InTx reports whether ctx carries an open unit of work.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(pgx.Tx)
	return ok
}

// Manager opens units of work on a pool. Services depend on it through
// a local interface so tests can substitute a passthrough.
type Manager struct {
	pool *pgxpool.Pool
}

// NewManager creates a unit-of-work manager.
func NewManager(pool *pgxpool.Pool) *Manager {
	return &Manager{pool: pool}
}

// RunInTx runs fn inside a transaction on the manager's pool.
func (m *Manager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return RunInTx(ctx, m.pool, fn)
}

// RunInTx brackets fn in a transaction: begin, run, commit on success or
// rollback on failure. The connection is released on every path; the
// deferred rollback is a no-op after commit. Context cancellation (client
// disconnect, host timeout) takes the rollback path.
func RunInTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fmt.Errorf("run in tx: %w", ErrNestedTx)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			ctxlog.FromContext(ctx).Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
