package postgresql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/apperror"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionManager_Commit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tm := NewTransactionManager(mock, 0)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCommit()

	err = tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
		_, ok := txFromContext(ctx)
		assert.True(t, ok, "transaction not injected into context")
		return nil
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_SetsLockTimeout(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tm := NewTransactionManager(mock, 3*time.Second)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectExec("SET LOCAL lock_timeout = '3000ms'").WillReturnResult(pgxmock.NewResult("SET", 0))
	mock.ExpectCommit()

	err = tm.WithinTransaction(context.Background(), func(ctx context.Context) error { return nil })

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_RollbackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tm := NewTransactionManager(mock, 0)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectRollback()

	expectedErr := errors.New("usecase error")
	err = tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return expectedErr
	})

	assert.ErrorIs(t, err, expectedErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_NestedReuse(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tm := NewTransactionManager(mock, 0)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCommit()

	err = tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
		outer, _ := txFromContext(ctx)
		return tm.WithinTransaction(ctx, func(inner context.Context) error {
			tx, ok := txFromContext(inner)
			assert.True(t, ok, "nested transaction lost context")
			assert.Same(t, outer, tx)
			return nil
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_CommitContentionIsRetryable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tm := NewTransactionManager(mock, 0)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: serializationFailureCode})

	err = tm.WithinTransaction(context.Background(), func(ctx context.Context) error { return nil })

	assert.ErrorIs(t, err, apperror.ErrConcurrency)
	assert.True(t, apperror.IsRetryable(err))
}

func TestLockingQuerierRequiresTransaction(t *testing.T) {
	_, err := lockingQuerier(context.Background())
	assert.ErrorIs(t, err, ErrLockOutsideTransaction)
}

func TestTranslatePgError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"unique", &pgconn.PgError{Code: uniqueViolationCode}, apperror.ErrConflict},
		{"deadlock", &pgconn.PgError{Code: deadlockDetectedCode}, apperror.ErrConcurrency},
		{"lock timeout", &pgconn.PgError{Code: lockNotAvailableCode}, apperror.ErrConcurrency},
		{"statement timeout", &pgconn.PgError{Code: queryCanceledCode}, apperror.ErrConcurrency},
		{"foreign key", &pgconn.PgError{Code: foreignKeyViolationCode}, apperror.ErrInvalidArgument},
		{"malformed uuid", &pgconn.PgError{Code: invalidTextCode}, apperror.ErrInvalidArgument},
		{"deadline", context.DeadlineExceeded, apperror.ErrConcurrency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, translatePgError(tc.err), tc.want)
		})
	}

	plain := errors.New("random")
	assert.Equal(t, plain, translatePgError(plain))
	assert.Nil(t, translatePgError(nil))
}
