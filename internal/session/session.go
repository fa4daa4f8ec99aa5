// Package session holds the per-screen read model: the latest snapshot the
// store delivered plus any optimistic mutations that have not been confirmed
// yet. Snapshots are folded in through a pure rebuild, so the same inputs
// always produce the same model, and a rollback restores exactly the state
// from before the mutation was applied.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/skydentango/ping-social-app/internal/models"
)

// Mutation is one optimistic local change. Implementations must be pure:
// apply the change to the given model and nothing else.
type Mutation interface {
	apply(pings []models.Ping) []models.Ping
}

// SetResponses replaces a ping's response collection.
type SetResponses struct {
	PingID    string
	Responses []models.PingResponse
}

func (m SetResponses) apply(pings []models.Ping) []models.Ping {
	for i := range pings {
		if pings[i].ID == m.PingID {
			pings[i].Responses = append([]models.PingResponse(nil), m.Responses...)
		}
	}
	return pings
}

// RemovePing drops a ping from the model.
type RemovePing struct {
	PingID string
}

func (m RemovePing) apply(pings []models.Ping) []models.Ping {
	out := pings[:0]
	for _, p := range pings {
		if p.ID != m.PingID {
			out = append(out, p)
		}
	}
	return out
}

// Token identifies a pending mutation for Confirm/Rollback.
type Token string

type pending struct {
	tok Token
	mut Mutation
}

// Session is owned by a single screen/connection. Methods are safe to call
// from the feed goroutine and the request goroutine concurrently.
type Session struct {
	mu      sync.Mutex
	base    []models.Ping
	overlay []pending
	current []models.Ping
}

func New() *Session {
	return &Session{}
}

// Fold replaces the base snapshot and re-applies all pending mutations.
func (s *Session) Fold(snapshot []models.Ping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = clonePings(snapshot)
	s.rebuild()
}

// Apply records an optimistic mutation and makes it immediately visible.
// The returned token must later be passed to Confirm or Rollback.
func (s *Session) Apply(m Mutation) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok := Token(uuid.NewString())
	s.overlay = append(s.overlay, pending{tok: tok, mut: m})
	s.rebuild()
	return tok
}

// Confirm folds a confirmed mutation into the base so the view stays stable
// until the store's own snapshot echoes the write back.
func (s *Session) Confirm(tok Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.overlay {
		if p.tok == tok {
			s.base = p.mut.apply(clonePings(s.base))
			s.overlay = append(s.overlay[:i], s.overlay[i+1:]...)
			s.rebuild()
			return
		}
	}
}

// Rollback discards a pending mutation. If no snapshot arrived in between,
// the model is restored exactly to its pre-Apply state.
func (s *Session) Rollback(tok Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.overlay {
		if p.tok == tok {
			s.overlay = append(s.overlay[:i], s.overlay[i+1:]...)
			s.rebuild()
			return
		}
	}
}

// Current returns a copy of the derived model, newest ping first.
func (s *Session) Current() []models.Ping {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePings(s.current)
}

// Ping looks up a single ping in the derived model.
func (s *Session) Ping(id string) (models.Ping, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.current {
		if p.ID == id {
			return clonePing(p), true
		}
	}
	return models.Ping{}, false
}

func (s *Session) rebuild() {
	cur := clonePings(s.base)
	for _, p := range s.overlay {
		cur = p.mut.apply(cur)
	}
	s.current = cur
}

func clonePings(in []models.Ping) []models.Ping {
	out := make([]models.Ping, len(in))
	for i, p := range in {
		out[i] = clonePing(p)
	}
	return out
}

func clonePing(p models.Ping) models.Ping {
	cp := p
	cp.Recipients = append([]string(nil), p.Recipients...)
	cp.Responses = append([]models.PingResponse(nil), p.Responses...)
	if p.ExpiresAt != nil {
		t := *p.ExpiresAt
		cp.ExpiresAt = &t
	}
	return cp
}
