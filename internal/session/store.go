// ABOUTME: TTL session store for the HTTP and MCP surfaces, backed by go-cache
// ABOUTME: Each session has its own mutex so messages for one session are processed in order
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/harper/wodsmith/internal/core"
	"github.com/patrickmn/go-cache"
)

// ErrNotFound is returned for unknown or expired session IDs
var ErrNotFound = errors.New("session not found")

// Gauge receives the number of live sessions
type Gauge interface {
	SetActiveSessions(n int)
}

type entry struct {
	mu      sync.Mutex
	session *core.Session
}

// Store keeps sessions in memory until they sit idle for the TTL
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
	gauge Gauge
	now   func() time.Time
}

// NewStore creates a store whose sessions expire after ttl without activity
func NewStore(ttl time.Duration, gauge Gauge) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	s := &Store{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
		gauge: gauge,
		now:   time.Now,
	}
	s.cache.OnEvicted(func(string, interface{}) { s.report() })
	return s
}

// Create starts a new session and returns a snapshot of it
func (s *Store) Create() *core.Session {
	sess := core.NewSession(s.now())
	s.cache.Set(sess.ID, &entry{session: sess}, cache.DefaultExpiration)
	s.report()
	return sess.Clone()
}

// Get returns a snapshot of the session
func (s *Store) Get(id string) (*core.Session, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

// With runs fn against the live session while holding its lock and refreshes its TTL
func (s *Store) With(id string, fn func(*core.Session)) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	fn(e.session)
	s.cache.Set(id, e, cache.DefaultExpiration)
	return nil
}

// Reset replaces the session with a fresh one under the same ID
func (s *Store) Reset(id string) (*core.Session, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	fresh := core.NewSession(s.now())
	fresh.ID = id
	e.session = fresh
	s.cache.Set(id, e, cache.DefaultExpiration)
	return fresh.Clone(), nil
}

// Delete drops the session
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Count returns the number of live sessions
func (s *Store) Count() int {
	return s.cache.ItemCount()
}

func (s *Store) entry(id string) (*entry, error) {
	v, found := s.cache.Get(id)
	if !found {
		return nil, ErrNotFound
	}
	return v.(*entry), nil
}

func (s *Store) report() {
	if s.gauge != nil {
		s.gauge.SetActiveSessions(s.cache.ItemCount())
	}
}
