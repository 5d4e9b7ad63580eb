package web

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/proposals/internal/core"
)

var (
	// ErrFormNotFound is returned for unknown or expired form IDs.
	ErrFormNotFound = errors.New("form not found")

	// ErrTooManyForms is returned when the session cap is reached.
	ErrTooManyForms = errors.New("too many open forms")
)

// SessionStore holds live form controllers in memory, keyed by form ID.
// Forms idle for longer than the TTL are dropped by Sweep.
type SessionStore struct {
	mu    sync.Mutex
	forms map[uuid.UUID]*session

	ttl      time.Duration
	max      int
	now      func() time.Time
	factory  func(id uuid.UUID) *core.Controller
	onChange func(n int)
}

type session struct {
	ctrl     *core.Controller
	lastSeen time.Time
}

// NewSessionStore returns a store that builds controllers with factory.
// onChange, if set, receives the session count after every change.
func NewSessionStore(ttl time.Duration, max int, factory func(uuid.UUID) *core.Controller, onChange func(int)) *SessionStore {
	return &SessionStore{
		forms:    make(map[uuid.UUID]*session),
		ttl:      ttl,
		max:      max,
		now:      time.Now,
		factory:  factory,
		onChange: onChange,
	}
}

// Create opens a new form.
func (s *SessionStore) Create() (*core.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.forms) >= s.max {
		return nil, ErrTooManyForms
	}

	ctrl := s.factory(uuid.New())
	s.forms[ctrl.ID()] = &session{ctrl: ctrl, lastSeen: s.now()}
	s.changed()
	return ctrl, nil
}

// Get returns the form and marks it as recently used.
func (s *SessionStore) Get(id uuid.UUID) (*core.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.forms[id]
	if !ok {
		return nil, ErrFormNotFound
	}
	sess.lastSeen = s.now()
	return sess.ctrl, nil
}

// Delete drops a form. Unknown IDs return ErrFormNotFound.
func (s *SessionStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.forms[id]; !ok {
		return ErrFormNotFound
	}
	delete(s.forms, id)
	s.changed()
	return nil
}

// Len returns the number of live forms.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}

// Sweep drops idle forms and returns how many were removed. A form with a
// submission in flight is kept until it settles.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.forms {
		if sess.lastSeen.After(cutoff) {
			continue
		}
		if state := sess.ctrl.State(); state.Submitting() {
			continue
		}
		delete(s.forms, id)
		removed++
	}
	if removed > 0 {
		s.changed()
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (s *SessionStore) Run(ctx context.Context) {
	interval := s.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// changed must be called with mu held.
func (s *SessionStore) changed() {
	if s.onChange != nil {
		s.onChange(len(s.forms))
	}
}
