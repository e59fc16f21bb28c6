package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spec-kit/embed-login/internal/auth"
	"github.com/spec-kit/embed-login/internal/domain"
)

// sweepInterval bounds how often writes and reads scan for expired records.
const sweepInterval = time.Minute

// MemoryStore keeps session records in process memory. Expired records are
// evicted when read and by a sweep that runs at most once per sweepInterval.
type MemoryStore struct {
	mu        sync.Mutex
	items     map[string]memoryItem
	now       func() time.Time
	lastSweep time.Time
}

type memoryItem struct {
	record    domain.SessionRecord
	expiresAt time.Time
}

// NewMemoryStore creates an empty store. A nil clock uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{items: make(map[string]memoryItem), now: now, lastSweep: now()}
}

// sweepLocked drops expired records. Callers hold s.mu.
func (s *MemoryStore) sweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) <= sweepInterval {
		return
	}
	for id, item := range s.items {
		if !now.Before(item.expiresAt) {
			delete(s.items, id)
		}
	}
	s.lastSweep = now
}

func (s *MemoryStore) Put(_ context.Context, record domain.SessionRecord, ttl time.Duration) error {
	if record.ID == "" {
		return errors.New("session id required")
	}
	if ttl <= 0 {
		return errors.New("session ttl must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	s.items[record.ID] = memoryItem{record: record, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	item, ok := s.items[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	if !now.Before(item.expiresAt) {
		delete(s.items, id)
		return nil, auth.ErrNotFound
	}
	record := item.record
	return &record, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Len returns the number of records held, including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
