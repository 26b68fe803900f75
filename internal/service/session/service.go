package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service keeps chat transcripts in memory. Nothing survives a restart.
type Service struct {
	sessions map[string]*Session
	mtx      sync.RWMutex
}

func (s *Service) CreateSession(ctx context.Context, id string) (*Session, error) {
	if len(strings.TrimSpace(id)) == 0 {
		id = uuid.New().String()
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if session, ok := s.sessions[id]; ok {
		return session, nil
	}

	session := &Session{
		id:      id,
		turns:   []Turn{},
		touched: time.Now().UTC(),
	}

	s.sessions[id] = session

	return session, nil
}

func (s *Service) ListSessionIds(ctx context.Context) []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Service) GetSession(ctx context.Context, id string) (*Session, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return session, nil
}

func (s *Service) DeleteSession(ctx context.Context, id string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.sessions, id)
}

// Expire drops sessions idle for longer than ttl and reports how many went.
func (s *Service) Expire(ctx context.Context, ttl time.Duration) int {
	cutoff := time.Now().UTC().Add(-ttl)

	s.mtx.Lock()
	defer s.mtx.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.lastTouched().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}

	return removed
}

func New() *Service {
	return &Service{
		sessions: map[string]*Session{},
		mtx:      sync.RWMutex{},
	}
}
