// Package session keeps the per-client stores of the HTTP API.
//
// Each session owns one [store.Store] over one layout. Sessions live in
// process memory; they expire after a period without use and are dropped
// by [Registry.Cleanup] or lazily on lookup.
//
// # Concurrency
//
// A store is not safe for concurrent use, so every access to a session's
// store goes through [Session.Do], which serializes calls per session.
// Different sessions proceed in parallel.
//
// # Usage
//
//	reg := session.NewRegistry(session.DefaultTTL)
//	sess := reg.Create(s, result.LayoutHash)
//
//	err := sess.Do(func(s *store.Store[string, geom.Box]) error {
//	    s.Set(store.Update[string, geom.Box]{ScrollPosition: &pos})
//	    return nil
//	})
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/virtgrid/pkg/errors"
	"github.com/matzehuels/virtgrid/pkg/geom"
	"github.com/matzehuels/virtgrid/pkg/store"
)

// DefaultTTL is how long an unused session is kept.
const DefaultTTL = 30 * time.Minute

// Store is the store type held by a session.
type Store = store.Store[string, geom.Box]

// Session is one client's view over a layout.
type Session struct {
	ID         string
	LayoutHash string
	CreatedAt  time.Time

	mu        sync.Mutex
	expiresAt time.Time
	store     *Store
}

// Do runs fn with exclusive access to the session's store.
func (s *Session) Do(fn func(*Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store)
}

// ExpiresAt returns when the session expires unless used again.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

func (s *Session) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.After(s.expiresAt)
}

func (s *Session) touch(now time.Time, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = now.Add(ttl)
}

// Registry holds the live sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewRegistry creates an empty registry. A non-positive ttl uses DefaultTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new session around s and returns it.
func (r *Registry) Create(s *Store, layoutHash string) *Session {
	now := r.now()
	sess := &Session{
		ID:         uuid.NewString(),
		LayoutHash: layoutHash,
		CreatedAt:  now,
		expiresAt:  now.Add(r.ttl),
		store:      s,
	}

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()
	return sess
}

// Get returns a live session and extends its lifetime. Unknown, malformed
// and expired ids yield a SESSION_NOT_FOUND error.
func (r *Registry) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}

	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()

	now := r.now()
	if !ok || sess.expired(now) {
		if ok {
			r.remove(id, sess)
		}
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	sess.touch(now, r.ttl)
	return sess, nil
}

// Delete removes a session. Deleting an unknown session is an error.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of registered sessions, expired ones included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Cleanup removes expired sessions and returns how many were removed.
func (r *Registry) Cleanup() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, sess := range r.sessions {
		if sess.expired(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Run calls Cleanup every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			r.Cleanup()
		}
	}
}

func (r *Registry) remove(id string, sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[id] == sess {
		delete(r.sessions, id)
	}
}
