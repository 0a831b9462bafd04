// Package logbuf keeps a bounded in-process history of log records so the
// MCP server-logs resource can expose recent activity without touching disk.
package logbuf

import (
	"sync"
	"time"
)

// Entry is one captured log record.
type Entry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// Buffer is a fixed-size ring of log entries, safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	count   int
}

// New creates a buffer holding up to size entries.
func New(size int) *Buffer {
	return &Buffer{entries: make([]Entry, size)}
}

// Append records an entry, evicting the oldest when full.
func (b *Buffer) Append(e Entry) {
	b.mu.Lock()
	b.entries[b.pos] = e
	b.pos = (b.pos + 1) % len(b.entries)
	if b.count < len(b.entries) {
		b.count++
	}
	b.mu.Unlock()
}

// Recent returns up to limit entries, oldest first. limit <= 0 returns all.
func (b *Buffer) Recent(limit int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := 0
	if b.count == len(b.entries) {
		start = b.pos
	}

	out := make([]Entry, 0, b.count)
	for i := 0; i < b.count; i++ {
		out = append(out, b.entries[(start+i)%len(b.entries)])
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Len returns the number of entries currently held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
