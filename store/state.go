package store

import "context"

// State is the key/value surface contract code reads and writes through.
// Keys are opaque byte strings, values are whatever the caller encoded.
type State interface {
	Set(key, value string)
	Get(key string) *string
	Delete(key string)
}

// Write is one staged mutation. A nil Value deletes the key.
type Write struct {
	Key   string
	Value *string
}

// Backend persists committed state. Apply must be all-or-nothing.
type Backend interface {
	Load(ctx context.Context, key string) (*string, error)
	Apply(ctx context.Context, writes []Write) error
	Close() error
}
