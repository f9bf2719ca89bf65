// Package dbtest provides an in-memory database.Transactor with row locks
// for service tests.
package dbtest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
)

var ErrNoTransaction = errors.New("dbtest: row lock requested outside a transaction")

type txKey struct{}

type txState struct {
	held  map[string]chan struct{}
	order []string
	undo  []func()
}

// Transactor runs units of work and hands out exclusive row locks that are
// held until the outermost transaction returns. Writes registered through
// OnRollback are undone when fn fails.
type Transactor struct {
	mu   sync.Mutex
	rows map[string]chan struct{}

	Commits   atomic.Int64
	Rollbacks atomic.Int64
}

var _ database.Transactor = (*Transactor)(nil)

func NewTransactor() *Transactor {
	return &Transactor{rows: make(map[string]chan struct{})}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := stateFrom(ctx); ok {
		return fn(ctx)
	}

	st := &txState{held: make(map[string]chan struct{})}
	defer st.release()

	if err := fn(context.WithValue(ctx, txKey{}, st)); err != nil {
		for i := len(st.undo) - 1; i >= 0; i-- {
			st.undo[i]()
		}
		t.Rollbacks.Add(1)
		return err
	}

	t.Commits.Add(1)
	return nil
}

// Lock takes the exclusive lock named key for the transaction in ctx. It
// waits until the holder finishes or ctx is done, in which case the
// failure is an apperror.ErrConcurrency.
func (t *Transactor) Lock(ctx context.Context, key string) error {
	st, ok := stateFrom(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if _, held := st.held[key]; held {
		return nil
	}

	sem := t.row(key)
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("%w: lock %s: %w", apperror.ErrConcurrency, key, ctx.Err())
	}

	st.held[key] = sem
	st.order = append(st.order, key)
	return nil
}

// OnRollback registers undo to run if the transaction in ctx fails. Outside
// a transaction it is a no-op.
func OnRollback(ctx context.Context, undo func()) {
	if st, ok := stateFrom(ctx); ok {
		st.undo = append(st.undo, undo)
	}
}

// InTransaction reports whether ctx carries a transaction.
func InTransaction(ctx context.Context) bool {
	_, ok := stateFrom(ctx)
	return ok
}

// Held lists the lock keys taken by the transaction in ctx, in order.
func Held(ctx context.Context) []string {
	st, ok := stateFrom(ctx)
	if !ok {
		return nil
	}
	return append([]string(nil), st.order...)
}

func (t *Transactor) row(key string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	sem, ok := t.rows[key]
	if !ok {
		sem = make(chan struct{}, 1)
		t.rows[key] = sem
	}
	return sem
}

func (s *txState) release() {
	for _, key := range s.order {
		<-s.held[key]
	}
}

func stateFrom(ctx context.Context) (*txState, bool) {
	st, ok := ctx.Value(txKey{}).(*txState)
	return st, ok
}
