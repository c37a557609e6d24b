// Package notice keeps the transient acknowledgement shown next to the status panel.
package notice

import (
	"sync"
	"time"
)

// Lifetime is how long a notice stays visible.
const Lifetime = 3 * time.Second

// Board holds at most one notice. A newer notice replaces an older one and restarts
// the lifetime; expiry is evaluated on read.
type Board struct {
	mu       sync.Mutex
	text     string
	expires  time.Time
	lifetime time.Duration
	now      func() time.Time
}

// NewBoard returns a board with the standard lifetime.
func NewBoard() *Board {
	return NewBoardWithClock(Lifetime, time.Now)
}

// NewBoardWithClock is NewBoard with an injectable lifetime and clock.
func NewBoardWithClock(lifetime time.Duration, now func() time.Time) *Board {
	return &Board{lifetime: lifetime, now: now}
}

// Show posts msg.
func (b *Board) Show(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = msg
	b.expires = b.now().Add(b.lifetime)
}

// Current returns the visible notice, or "" once it has expired.
func (b *Board) Current() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.text == "" {
		return ""
	}
	if !b.now().Before(b.expires) {
		b.text = ""
		return ""
	}
	return b.text
}
