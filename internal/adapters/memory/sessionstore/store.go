package sessionstore

import (
	"context"
	"sync"

	"github.com/foodswipe/foodswipe-edge/internal/domain"
	"github.com/foodswipe/foodswipe-edge/internal/ports/out/sessionstore"
)

// Store is an in-memory implementation of sessionstore.Store.
// It is safe for concurrent use. Expired sessions are left for the caller to evict.
type Store struct {
	mu sync.RWMutex
	m  map[domain.SessionID]domain.Session
}

func NewStore() *Store {
	return &Store{
		m: make(map[domain.SessionID]domain.Session),
	}
}

func (s *Store) Get(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.m[id]
	if !ok {
		return domain.Session{}, sessionstore.ErrNotFound
	}
	return sess, nil
}

func (s *Store) Put(ctx context.Context, sess domain.Session) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.ID] = sess
	return nil
}

func (s *Store) Delete(ctx context.Context, id domain.SessionID) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}
