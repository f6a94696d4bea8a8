package db

import (
	"context"
	"time"
)

// Store is the database facade combining all sub-interfaces.
// Consumers depend on the narrow sub-interfaces.
type Store interface {
	Pinger
	KVStore
	ListStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// ListStore provides capped list operations.
type ListStore interface {
	// PushCapped prepends value and trims the list to the newest keep entries in one round-trip.
	PushCapped(ctx context.Context, key string, value []byte, keep int) error
	// Range returns list elements between start and stop inclusive (LRANGE semantics).
	Range(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}
