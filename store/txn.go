package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrTxnClosed is returned when a committed or discarded Txn is used again.
var ErrTxnClosed = errors.New("store: transaction closed")

// Txn stages every write of one contract call in memory. Reads see the
// staged overlay first and fall through to the backend. Nothing reaches the
// backend until Commit, so a failed call leaves no trace.
type Txn struct {
	ctx     context.Context
	backend Backend
	writes  map[string]*string
	order   []string
	err     error
	closed  bool
}

// Begin opens a staged transaction on top of backend.
func Begin(ctx context.Context, backend Backend) *Txn {
	return &Txn{
		ctx:     ctx,
		backend: backend,
		writes:  make(map[string]*string),
	}
}

func (t *Txn) stage(key string, value *string) {
	if t.closed {
		t.fail(ErrTxnClosed)
		return
	}
	if _, seen := t.writes[key]; !seen {
		t.order = append(t.order, key)
	}
	t.writes[key] = value
}

// Set stages key=value.
func (t *Txn) Set(key, value string) {
	v := value
	t.stage(key, &v)
}

// Delete stages the removal of key.
func (t *Txn) Delete(key string) {
	t.stage(key, nil)
}

// Get returns the staged value when the key was touched in this call,
// otherwise the committed one. Backend failures are remembered and
// surface from Err and Commit.
func (t *Txn) Get(key string) *string {
	if v, ok := t.writes[key]; ok {
		if v == nil {
			return nil
		}
		cp := *v
		return &cp
	}
	if t.closed {
		t.fail(ErrTxnClosed)
		return nil
	}
	v, err := t.backend.Load(t.ctx, key)
	if err != nil {
		t.fail(fmt.Errorf("load %q: %w", key, err))
		return nil
	}
	return v
}

func (t *Txn) fail(err error) {
	if t.err == nil {
		t.err = err
	}
}

// Err reports the first backend failure seen by this transaction.
func (t *Txn) Err() error {
	return t.err
}

// Pending returns the staged writes in first-touch order.
func (t *Txn) Pending() []Write {
	out := make([]Write, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, Write{Key: k, Value: t.writes[k]})
	}
	return out
}

// Commit applies all staged writes atomically. A transaction that saw a
// backend error refuses to commit.
func (t *Txn) Commit() error {
	if t.closed {
		return ErrTxnClosed
	}
	t.closed = true
	if t.err != nil {
		return t.err
	}
	if len(t.order) == 0 {
		return nil
	}
	if err := t.backend.Apply(t.ctx, t.Pending()); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Discard drops every staged write.
func (t *Txn) Discard() {
	t.closed = true
	t.writes = nil
	t.order = nil
}
