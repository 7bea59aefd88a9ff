package storefront

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultMaxSessions bounds the registry when no limit is configured
const DefaultMaxSessions = 10000

// Registry hands out one Session per visitor id. When full, starting a new
// session closes the least recently seen one.
type Registry struct {
	deps        Deps
	now         func() time.Time
	maxSessions int

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry validates deps and returns an empty registry
func NewRegistry(deps Deps) (*Registry, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Registry{
		deps:        deps,
		now:         time.Now,
		maxSessions: DefaultMaxSessions,
		sessions:    make(map[string]*Session),
	}, nil
}

// WithMaxSessions overrides how many live sessions the registry keeps
func (r *Registry) WithMaxSessions(n int) *Registry {
	if n > 0 {
		r.maxSessions = n
	}
	return r
}

// Session returns the visitor's session, creating and restoring it on first use.
// When two first requests race, both restore but only one session is kept.
func (r *Registry) Session(ctx context.Context, visitorID, clientIP string) (*Session, error) {
	if s, ok := r.lookup(visitorID); ok {
		return s, nil
	}

	created, err := NewSession(ctx, visitorID, clientIP, r.deps)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if s, ok := r.sessions[visitorID]; ok {
		r.mu.Unlock()
		created.Close()
		s.touch(r.now())
		return s, nil
	}
	var displaced *Session
	if len(r.sessions) >= r.maxSessions {
		displaced = r.oldestLocked()
		delete(r.sessions, displaced.ID)
	}
	created.touch(r.now())
	r.sessions[visitorID] = created
	r.mu.Unlock()

	if displaced != nil {
		displaced.Close()
		log.Printf("[Storefront] Registry full, closed session for visitor %s", displaced.ID)
	}
	log.Printf("[Storefront] Session started for visitor %s (region %s)", visitorID, created.Region.Region())
	return created, nil
}

func (r *Registry) oldestLocked() *Session {
	var oldest *Session
	for _, s := range r.sessions {
		if oldest == nil || s.LastSeen().Before(oldest.LastSeen()) {
			oldest = s
		}
	}
	return oldest
}

func (r *Registry) lookup(visitorID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[visitorID]
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// Len is the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict closes and forgets sessions idle for longer than maxIdle. Persisted
// state survives, so an evicted visitor resumes their region and login.
func (r *Registry) Evict(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		log.Printf("[Storefront] Evicted %d idle sessions", len(idle))
	}
	return len(idle)
}

// Run evicts idle sessions every interval until ctx is done
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict(maxIdle)
		}
	}
}

// Close stops every session
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
