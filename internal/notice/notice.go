// Package notice keeps one-shot admin notices between a bulk action and the next
// render of the listing screen.
package notice

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Notice kinds, matching the admin notice classes they render with.
const (
	KindSuccess = "success"
	KindError   = "error"
	KindInfo    = "info"
)

// DefaultTTL bounds how long an unread notice survives.
const DefaultTTL = 10 * time.Minute

// Notice is a message shown once at the top of the listing screen.
type Notice struct {
	Kind    string
	Message string
}

// Store queues notices per user. Expired entries are dropped lazily on read,
// so the store runs no background goroutine.
type Store struct {
	mu    sync.Mutex
	cache *cache.Cache
	ttl   time.Duration
}

// NewStore creates a store whose notices expire after ttl.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: cache.New(ttl, 0), ttl: ttl}
}

// Add queues n for userID.
func (s *Store) Add(userID int64, n Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strconv.FormatInt(userID, 10)
	var queued []Notice
	if v, ok := s.cache.Get(key); ok {
		queued = v.([]Notice)
	}
	s.cache.Set(key, append(queued, n), s.ttl)
}

// Pop returns and clears the notices queued for userID.
func (s *Store) Pop(userID int64) []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strconv.FormatInt(userID, 10)
	v, ok := s.cache.Get(key)
	if !ok {
		return nil
	}
	s.cache.Delete(key)
	return v.([]Notice)
}
