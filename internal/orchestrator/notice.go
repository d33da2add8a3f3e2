package orchestrator

import (
	"sync"
	"time"
)

// NoticeTTL is how long a compute failure notice stays up.
const NoticeTTL = 5 * time.Second

// Notice is a transient, dismissible message.
type Notice struct {
	ID      uint64        `json:"id"`
	Message string        `json:"message"`
	TTL     time.Duration `json:"-"`
	Expires time.Time     `json:"expires"`
}

// Notices holds the notices currently on screen. Expired ones are dropped
// on every read.
type Notices struct {
	mu    sync.Mutex
	now   func() time.Time
	next  uint64
	items []Notice
}

// NewNotices returns an empty board. A nil clock means time.Now.
func NewNotices(now func() time.Time) *Notices {
	if now == nil {
		now = time.Now
	}
	return &Notices{now: now}
}

// Add posts n, assigning its ID and expiry.
func (b *Notices) Add(n Notice) Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	n.ID = b.next
	if n.TTL <= 0 {
		n.TTL = NoticeTTL
	}
	n.Expires = b.now().Add(n.TTL)
	b.items = append(b.items, n)
	return n
}

// Active returns the notices that have not expired, oldest first.
func (b *Notices) Active() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pruneLocked()
	out := make([]Notice, len(b.items))
	copy(out, b.items)
	return out
}

// Dismiss removes a notice before it expires.
func (b *Notices) Dismiss(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, n := range b.items {
		if n.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Notices) pruneLocked() {
	now := b.now()
	kept := b.items[:0]
	for _, n := range b.items {
		if now.Before(n.Expires) {
			kept = append(kept, n)
		}
	}
	b.items = kept
}
