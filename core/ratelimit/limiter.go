// Package ratelimit locks out chats that keep sending links the bot cannot
// fetch.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Limits configures a Limiter.
type Limits struct {
	// MaxFailures within Window starts a lockout.
	MaxFailures int
	Window      time.Duration
	Lockout     time.Duration
}

// DefaultLimits: five failed requests in ten minutes lock a chat out for
// ten minutes.
var DefaultLimits = Limits{
	MaxFailures: 5,
	Window:      10 * time.Minute,
	Lockout:     10 * time.Minute,
}

// LockedError is returned by Check while a chat is locked out.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("too many failed requests, try again in %s", e.Remaining.Truncate(time.Second))
}

type chatState struct {
	failures    []time.Time
	lockedUntil time.Time
}

// Limiter counts failed requests per chat.
type Limiter struct {
	limits Limits
	now    func() time.Time

	mu    sync.Mutex
	chats map[int64]*chatState
}

// New creates a Limiter with DefaultLimits.
func New() *Limiter {
	return NewWithLimits(DefaultLimits)
}

// NewWithLimits creates a Limiter. Zero fields fall back to DefaultLimits.
func NewWithLimits(lim Limits) *Limiter {
	if lim.MaxFailures <= 0 {
		lim.MaxFailures = DefaultLimits.MaxFailures
	}
	if lim.Window <= 0 {
		lim.Window = DefaultLimits.Window
	}
	if lim.Lockout <= 0 {
		lim.Lockout = DefaultLimits.Lockout
	}
	return &Limiter{
		limits: lim,
		now:    time.Now,
		chats:  make(map[int64]*chatState),
	}
}

// Check returns a *LockedError if the chat is currently locked out.
func (l *Limiter) Check(chatID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.chats[chatID]
	if st == nil || st.lockedUntil.IsZero() {
		return nil
	}
	if remaining := st.lockedUntil.Sub(l.now()); remaining > 0 {
		return &LockedError{Remaining: remaining}
	}
	// Lockout served, start over.
	delete(l.chats, chatID)
	return nil
}

// RecordFailure counts a failed request. Failures older than the window
// are forgotten.
func (l *Limiter) RecordFailure(chatID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	st, ok := l.chats[chatID]
	if !ok {
		st = &chatState{}
		l.chats[chatID] = st
	}

	cutoff := now.Add(-l.limits.Window)
	kept := st.failures[:0]
	for _, at := range st.failures {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	st.failures = append(kept, now)

	if len(st.failures) >= l.limits.MaxFailures {
		st.lockedUntil = now.Add(l.limits.Lockout)
		st.failures = nil
	}
}

// Reset forgets the chat's failures, e.g. after a successful delivery.
func (l *Limiter) Reset(chatID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.chats, chatID)
}

// Sweep drops chats with no live lockout and no failures inside the window.
// It returns how many were dropped.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.limits.Window)
	dropped := 0
	for id, st := range l.chats {
		if st.lockedUntil.After(now) {
			continue
		}
		if n := len(st.failures); n > 0 && st.failures[n-1].After(cutoff) {
			continue
		}
		delete(l.chats, id)
		dropped++
	}
	return dropped
}
