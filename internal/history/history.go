// Package history keeps the most recent completed countdowns.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/verte-zerg/liftkit/internal/store"
)

// Key is the storage key for the history array.
const Key = "timerHistory"

// Capacity is the number of entries retained.
const Capacity = 5

// Entry is one completed countdown.
type Entry struct {
	DurationMs  int64 `json:"duration"`
	CompletedAt int64 `json:"completedAt"`
}

// Duration returns the countdown length.
func (e Entry) Duration() time.Duration {
	return time.Duration(e.DurationMs) * time.Millisecond
}

// Time returns the completion wall-clock time.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.CompletedAt)
}

// Log is an append-only list with capacity eviction.
type Log struct {
	kv    store.KV
	clock clockwork.Clock
}

// New returns a Log backed by kv.
func New(kv store.KV, clock clockwork.Clock) *Log {
	return &Log{kv: kv, clock: clock}
}

// Append records a completed countdown stamped with the current time.
func (l *Log) Append(ctx context.Context, durationMs int64) (Entry, error) {
	entries, err := l.List(ctx)
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{DurationMs: durationMs, CompletedAt: l.clock.Now().UnixMilli()}
	entries = append([]Entry{entry}, entries...)
	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode history: %w", err)
	}
	if err := l.kv.Set(ctx, Key, string(data)); err != nil {
		return Entry{}, fmt.Errorf("failed to save history: %w", err)
	}
	return entry, nil
}

// List returns entries newest first. Malformed data reads as empty.
func (l *Log) List(ctx context.Context) ([]Entry, error) {
	value, ok, err := l.kv.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(value), &entries); err != nil {
		return nil, nil
	}
	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}
	return entries, nil
}
