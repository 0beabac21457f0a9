package contextutil

import (
	"context"
	"sync"
	"time"
)

// Timeouts holds the deadlines applied to database work.
type Timeouts struct {
	Query       time.Duration
	Transaction time.Duration
	Migration   time.Duration
}

// DefaultTimeouts returns the built-in deadlines
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Query:       5 * time.Second,
		Transaction: 30 * time.Second,
		Migration:   5 * time.Minute,
	}
}

var (
	mu      sync.RWMutex
	current = DefaultTimeouts()
)

// Configure replaces the active timeouts. Zero fields keep their previous value.
func Configure(t Timeouts) {
	mu.Lock()
	defer mu.Unlock()
	if t.Query > 0 {
		current.Query = t.Query
	}
	if t.Transaction > 0 {
		current.Transaction = t.Transaction
	}
	if t.Migration > 0 {
		current.Migration = t.Migration
	}
}

// Current returns the active timeouts
func Current() Timeouts {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// WithQueryTimeout bounds a single statement
func WithQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, Current().Query)
}

// WithTransactionTimeout bounds the start of a transaction
func WithTransactionTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, Current().Transaction)
}

// WithMigrationTimeout bounds a migration run
func WithMigrationTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, Current().Migration)
}
