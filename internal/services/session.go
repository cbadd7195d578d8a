package services

import (
	"context"
	"sync"
	"time"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
)

// State of a session's most recent search.
type State int

const (
	StateIdle State = iota
	StateGeocoding
	StateRoutesFetching
	StateScoring
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGeocoding:
		return "geocoding"
	case StateRoutesFetching:
		return "routes_fetching"
	case StateScoring:
		return "scoring"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session serializes searches for one client. Each search bumps the
// generation; a run whose generation is no longer current is discarded and
// never overwrites newer state.
type Session struct {
	id     string
	engine *Engine
	shares *ShareService

	mu         sync.Mutex
	generation uint64
	state      State
	result     *domain.SearchResult
	failure    error
	lastUsed   time.Time
}

func newSession(id string, engine *Engine, shares *ShareService, now time.Time) *Session {
	return &Session{id: id, engine: engine, shares: shares, lastUsed: now}
}

func (s *Session) ID() string { return s.id }

// Search resets the session, runs the pipeline and records the outcome.
// A run superseded by a newer Search returns a Superseded error.
func (s *Session) Search(ctx context.Context, origin, destination string) (*domain.SearchResult, error) {
	gen := s.begin()

	result, err := s.engine.run(ctx, origin, destination, func(st State) error {
		return s.advance(gen, st)
	})
	if err != nil {
		return nil, s.fail(gen, err)
	}
	return s.complete(gen, result)
}

// Status returns the current state, a copy of the last ready result (nil
// unless Ready) and the last failure (nil unless Failed).
func (s *Session) Status() (State, *domain.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.result.Clone(), s.failure
}

// Publish shares the current result. Only allowed from Ready.
func (s *Session) Publish(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.state != StateReady || s.result == nil {
		st := s.state
		s.mu.Unlock()
		return "", apperr.New(apperr.KindNotReady, "session is "+st.String()+", not ready").WithOp("publish session")
	}
	result := s.result.Clone()
	s.mu.Unlock()

	return s.shares.Publish(ctx, result)
}

func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.state = StateIdle
	s.result = nil
	s.failure = nil
	return s.generation
}

func (s *Session) advance(gen uint64, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return superseded()
	}
	s.state = st
	return nil
}

func (s *Session) fail(gen uint64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return superseded()
	}
	s.state = StateFailed
	s.failure = err
	return err
}

func (s *Session) complete(gen uint64, result *domain.SearchResult) (*domain.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return nil, superseded()
	}
	s.state = StateReady
	s.result = result
	return result.Clone(), nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed)
}

func superseded() error {
	return apperr.New(apperr.KindSuperseded, "search superseded by a newer request").WithOp("search")
}

// Sessions holds sessions by client-chosen id and drops those idle longer
// than the TTL.
type Sessions struct {
	engine *Engine
	shares *ShareService
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessions(engine *Engine, shares *ShareService, ttl time.Duration) *Sessions {
	return &Sessions{
		engine:   engine,
		shares:   shares,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id, creating it on first use.
func (r *Sessions) Get(id string) *Session {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(now)

	s, ok := r.sessions[id]
	if !ok {
		s = newSession(id, r.engine, r.shares, now)
		r.sessions[id] = s
		return s
	}
	s.touch(now)
	return s
}

// Lookup returns an existing session without creating one.
func (r *Sessions) Lookup(id string) (*Session, bool) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(now)

	s, ok := r.sessions[id]
	if ok {
		s.touch(now)
	}
	return s, ok
}

// Len returns the number of live sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Sessions) pruneLocked(now time.Time) {
	if r.ttl <= 0 {
		return
	}
	for id, s := range r.sessions {
		if s.idleSince(now) > r.ttl {
			delete(r.sessions, id)
		}
	}
}
