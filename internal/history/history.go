// Package history keeps the rotation log the engine reads for flip-flop checks.
// The log is append-only and bounded; the oldest entries fall off first.
package history

import (
	"sync"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
)

// DefaultCapacity is how many entries a log keeps when none is configured.
const DefaultCapacity = 20

// Log is safe for concurrent use.
type Log struct {
	mu       sync.RWMutex
	capacity int
	entries  []model.RotationRecord
}

// New returns an empty log. A non-positive capacity falls back to DefaultCapacity.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity, entries: make([]model.RotationRecord, 0, capacity)}
}

// Append adds rec, dropping the oldest entry once the log is full.
func (l *Log) Append(rec model.RotationRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, rec)
}

// Recent returns entries recorded within window seconds of now, oldest first.
func (l *Log) Recent(now, window int) []model.RotationRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Within(l.entries, now, window)
}

// All returns a copy of every retained entry, oldest first.
func (l *Log) All() []model.RotationRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.RotationRecord(nil), l.entries...)
}

// Len reports how many entries are retained.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Within filters records to those no older than window seconds at now.
// Records stamped after now (a clock that was rolled back) are kept.
func Within(records []model.RotationRecord, now, window int) []model.RotationRecord {
	out := make([]model.RotationRecord, 0, len(records))
	for _, r := range records {
		if now-r.GameTime <= window {
			out = append(out, r)
		}
	}
	return out
}
