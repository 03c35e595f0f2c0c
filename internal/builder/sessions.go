package builder

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultSessionIdleTTL is how long an untouched session pipeline is kept.
const DefaultSessionIdleTTL = 30 * time.Minute

// DefaultMaxSessions bounds how many session pipelines are tracked at once.
const DefaultMaxSessions = 10000

type sessionEntry struct {
	pipeline *Pipeline
	lastSeen time.Time
}

// Sessions keeps one Pipeline per builder session so rapid requests from the
// same client supersede each other. Idle sessions are dropped on access.
type Sessions struct {
	resolver PriceResolver
	taxRate  decimal.Decimal
	idleTTL  time.Duration
	maxSize  int
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

// SessionsOption configures optional session behavior.
type SessionsOption func(*Sessions)

// WithMaxSessions overrides DefaultMaxSessions.
func WithMaxSessions(n int) SessionsOption {
	return func(s *Sessions) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// WithSessionClock overrides the time source.
func WithSessionClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) {
		if now != nil {
			s.now = now
		}
	}
}

func NewSessions(resolver PriceResolver, taxRate decimal.Decimal, idleTTL time.Duration, opts ...SessionsOption) (*Sessions, error) {
	// Validates the arguments once so per-session construction cannot fail.
	if _, err := NewPipeline(resolver, taxRate); err != nil {
		return nil, err
	}
	if idleTTL <= 0 {
		idleTTL = DefaultSessionIdleTTL
	}
	s := &Sessions{
		resolver: resolver,
		taxRate:  taxRate,
		idleTTL:  idleTTL,
		maxSize:  DefaultMaxSessions,
		now:      time.Now,
		entries:  make(map[string]*sessionEntry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Quote runs a cycle on the session's pipeline. An empty session id runs a
// one-off cycle that nothing can supersede. The returned bool reports whether
// another cycle for the session is still resolving.
func (s *Sessions) Quote(ctx context.Context, sessionID string, cfg Configuration) (*Result, bool, error) {
	pipeline := s.pipeline(strings.TrimSpace(sessionID))
	result, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return nil, false, err
	}
	return result, pipeline.InFlight(), nil
}

func (s *Sessions) pipeline(sessionID string) *Pipeline {
	if sessionID == "" {
		return &Pipeline{resolver: s.resolver, taxRate: s.taxRate}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, entry := range s.entries {
		if id != sessionID && now.Sub(entry.lastSeen) >= s.idleTTL {
			delete(s.entries, id)
		}
	}

	entry, ok := s.entries[sessionID]
	if !ok || now.Sub(entry.lastSeen) >= s.idleTTL {
		if !ok {
			s.evictOldestLocked(sessionID)
		}
		entry = &sessionEntry{pipeline: &Pipeline{resolver: s.resolver, taxRate: s.taxRate}}
		s.entries[sessionID] = entry
	}
	entry.lastSeen = now
	return entry.pipeline
}

// evictOldestLocked drops least recently seen sessions until there is room for
// one more. Their in-flight cycles keep running but can no longer be superseded.
func (s *Sessions) evictOldestLocked(keep string) {
	for len(s.entries) >= s.maxSize {
		var oldestID string
		var oldest time.Time
		for id, entry := range s.entries {
			if id == keep {
				continue
			}
			if oldestID == "" || entry.lastSeen.Before(oldest) {
				oldestID, oldest = id, entry.lastSeen
			}
		}
		if oldestID == "" {
			return
		}
		delete(s.entries, oldestID)
	}
}

// Len reports the number of tracked sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
