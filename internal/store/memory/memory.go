// Package memory is an in-process store.Store used by tests and local
// development. Watch subscribers get the same snapshot-per-change contract as
// the MongoDB backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skydentango/ping-social-app/internal/apperr"
	"github.com/skydentango/ping-social-app/internal/models"
)

type Store struct {
	mu     sync.RWMutex
	users  map[string]models.User
	groups map[string]models.Group
	pings  map[string]models.Ping

	subMu   sync.Mutex
	subs    map[int]chan []models.Ping
	nextSub int
}

func New() *Store {
	return &Store{
		users:  make(map[string]models.User),
		groups: make(map[string]models.Group),
		pings:  make(map[string]models.Ping),
		subs:   make(map[int]chan []models.Ping),
	}
}

func (s *Store) Close(ctx context.Context) error { return nil }

// --- users ---

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) GetUsers(ctx context.Context, ids []string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return apperr.ErrUserNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = *u
	return nil
}

// --- groups ---

func (s *Store) CreateGroup(ctx context.Context, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = uuid.NewString()
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	s.groups[g.ID] = *g
	return nil
}

func (s *Store) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, apperr.ErrGroupNotFound
	}
	cp := g
	cp.Members = append([]string(nil), g.Members...)
	return &cp, nil
}

func (s *Store) UpdateGroup(ctx context.Context, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[g.ID]; !ok {
		return apperr.ErrGroupNotFound
	}
	g.UpdatedAt = time.Now().UTC()
	s.groups[g.ID] = *g
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[id]; !ok {
		return apperr.ErrGroupNotFound
	}
	delete(s.groups, id)
	return nil
}

func (s *Store) ListGroupsFor(ctx context.Context, userID string) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Group
	for _, g := range s.groups {
		if g.HasMember(userID) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- pings ---

func (s *Store) CreatePing(ctx context.Context, p *models.Ping) error {
	s.mu.Lock()
	p.ID = uuid.NewString()
	s.pings[p.ID] = *p
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) GetPing(ctx context.Context, id string) (*models.Ping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pings[id]
	if !ok {
		return nil, apperr.ErrPingNotFound
	}
	cp := p
	cp.Recipients = append([]string(nil), p.Recipients...)
	cp.Responses = append([]models.PingResponse(nil), p.Responses...)
	return &cp, nil
}

func (s *Store) SetResponses(ctx context.Context, pingID string, responses []models.PingResponse) error {
	s.mu.Lock()
	p, ok := s.pings[pingID]
	if !ok {
		s.mu.Unlock()
		return apperr.ErrPingNotFound
	}
	p.Responses = append([]models.PingResponse(nil), responses...)
	s.pings[pingID] = p
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) DeletePing(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.pings[id]; !ok {
		s.mu.Unlock()
		return apperr.ErrPingNotFound
	}
	delete(s.pings, id)
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) ListPings(ctx context.Context) ([]models.Ping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(), nil
}

func (s *Store) WatchPings(ctx context.Context) (<-chan []models.Ping, error) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan []models.Ping, 16)
	s.subs[id] = ch
	s.subMu.Unlock()

	s.mu.RLock()
	ch <- s.snapshotLocked()
	s.mu.RUnlock()

	go func() {
		<-ctx.Done()
		s.subMu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.subMu.Unlock()
	}()
	return ch, nil
}

func (s *Store) snapshotLocked() []models.Ping {
	out := make([]models.Ping, 0, len(s.pings))
	for _, p := range s.pings {
		cp := p
		cp.Recipients = append([]string(nil), p.Recipients...)
		cp.Responses = append([]models.PingResponse(nil), p.Responses...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	return out
}

func (s *Store) notify() {
	s.mu.RLock()
	snap := s.snapshotLocked()
	s.mu.RUnlock()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default: // slow subscriber, it will catch up on the next change
		}
	}
}
