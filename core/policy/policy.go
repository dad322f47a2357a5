package policy

import (
	"fmt"
	"sync"
	"time"
)

const (
	freshnessWindow = 5 * time.Minute
	maxSeenIDs      = 10000
	pruneCount      = 1000
)

// Policy admits inbound updates. It drops stale and duplicate updates and,
// when an allowlist is configured, updates from chats not on it.
type Policy struct {
	mu        sync.Mutex
	allowed   map[int64]bool
	seen      map[int64]bool
	seenOrder []int64
	now       func() time.Time
}

// New creates a Policy. An empty chatIDs list admits every chat.
func New(chatIDs []int64) *Policy {
	p := &Policy{
		seen: make(map[int64]bool),
		now:  time.Now,
	}
	p.SetAllowed(chatIDs)
	return p
}

// SetAllowed replaces the chat allowlist. An empty list admits every chat.
func (p *Policy) SetAllowed(chatIDs []int64) {
	allowed := make(map[int64]bool, len(chatIDs))
	for _, id := range chatIDs {
		allowed[id] = true
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.allowed = allowed
}

// Restricted reports whether an allowlist is in effect.
func (p *Policy) Restricted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.allowed) > 0
}

// Authorize checks whether an update should be processed.
func (p *Policy) Authorize(chatID int64, updateID int64, timestamp time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.allowed) > 0 && !p.allowed[chatID] {
		return fmt.Errorf("unauthorized chat: %d", chatID)
	}

	if age := p.now().Sub(timestamp); age > freshnessWindow {
		return fmt.Errorf("stale message: %v old", age.Truncate(time.Second))
	}

	if p.seen[updateID] {
		return fmt.Errorf("duplicate update: %d", updateID)
	}

	if len(p.seen) >= maxSeenIDs {
		n := min(pruneCount, len(p.seenOrder))
		for _, id := range p.seenOrder[:n] {
			delete(p.seen, id)
		}
		p.seenOrder = p.seenOrder[n:]
	}

	p.seen[updateID] = true
	p.seenOrder = append(p.seenOrder, updateID)

	return nil
}
