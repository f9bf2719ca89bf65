package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrLockOutsideTransaction is returned by every Lock* repository method
// called without a transaction in the context. A row lock taken on a pooled
// connection would be released immediately.
var ErrLockOutsideTransaction = errors.New("row lock requested outside a transaction")

type txContextKey struct{}

type txStarter interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TransactionManager implements database.Transactor on top of pgx.
type TransactionManager struct {
	pool        txStarter
	lockTimeout time.Duration
}

var _ database.Transactor = (*TransactionManager)(nil)

// NewTransactionManager creates a manager. A positive lockTimeout bounds
// every row-lock wait inside the transaction.
func NewTransactionManager(pool txStarter, lockTimeout time.Duration) *TransactionManager {
	return &TransactionManager{pool: pool, lockTimeout: lockTimeout}
}

// WithinTransaction executes fn inside a database transaction
func (m *TransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("transaction function is required")
	}

	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return translatePgError(fmt.Errorf("begin transaction: %w", err))
	}

	finished := false
	defer func() {
		if !finished {
			_ = tx.Rollback(ctx)
		}
	}()

	if m.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	if err := fn(context.WithValue(ctx, txContextKey{}, tx)); err != nil {
		finished = true
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	finished = true
	if err := tx.Commit(ctx); err != nil {
		return translatePgError(fmt.Errorf("commit transaction: %w", err))
	}

	return nil
}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(txContextKey{}).(pgx.Tx)
	return tx, ok
}

// GetQuerier returns either transaction or pool
// Used in repositories to support both transactional and non-transactional operations
func GetQuerier(ctx context.Context, db database.Querier) database.Querier {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return db
}

// lockingQuerier returns the transaction in ctx or ErrLockOutsideTransaction.
func lockingQuerier(ctx context.Context) (database.Querier, error) {
	tx, ok := txFromContext(ctx)
	if !ok {
		return nil, ErrLockOutsideTransaction
	}
	return tx, nil
}

const (
	uniqueViolationCode      = "23505"
	foreignKeyViolationCode  = "23503"
	invalidTextCode          = "22P02"
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"
	lockNotAvailableCode     = "55P03"
	queryCanceledCode        = "57014"
)

// translatePgError maps contention, uniqueness and malformed-reference
// failures onto apperror kinds.
func translatePgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %w", apperror.ErrConflict, err)
		case foreignKeyViolationCode, invalidTextCode:
			return fmt.Errorf("%w: %w", apperror.ErrInvalidArgument, err)
		case serializationFailureCode, deadlockDetectedCode, lockNotAvailableCode, queryCanceledCode:
			return fmt.Errorf("%w: %w", apperror.ErrConcurrency, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", apperror.ErrConcurrency, err)
	}

	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
