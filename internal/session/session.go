// Package session carries the signed-in user's identity. A Session is
// created at sign-in, ended at sign-out and never mutated by consumers.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var ErrNoSession = errors.New("no active session")

type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) HasRole(roles ...string) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

type ctxKey struct{}

// ContextKey is the gin context key the auth middleware stores the session under.
const ContextKey = "session"

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	if !ok || s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}

// Revocations remembers tokens ended by sign-out until they would have
// expired anyway.
type Revocations struct {
	tokens *cache.Cache
}

func NewRevocations(cleanup time.Duration) *Revocations {
	return &Revocations{tokens: cache.New(cache.NoExpiration, cleanup)}
}

func (r *Revocations) Revoke(s *Session, now time.Time) {
	ttl := s.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return
	}
	r.tokens.Set(s.Token, struct{}{}, ttl)
}

func (r *Revocations) Revoked(token string) bool {
	_, found := r.tokens.Get(token)
	return found
}
