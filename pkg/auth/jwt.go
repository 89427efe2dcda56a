package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session holds the bearer token of the signed-in user. Signature checks are
// the API's job; the console only reads the expiry so that it stops sending a
// token the server will reject anyway.
type Session struct {
	mu    sync.RWMutex
	token string
	exp   time.Time
	now   func() time.Time
}

func NewSession() *Session {
	return &Session{now: time.Now}
}

// SetToken replaces the token. Tokens without an exp claim never expire
// client-side; opaque (non-JWT) tokens are accepted as is.
func (s *Session) SetToken(token string) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))

	var exp time.Time
	if token != "" {
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
			if e, err := claims.GetExpirationTime(); err == nil && e != nil {
				exp = e.Time
			}
		}
	}

	s.mu.Lock()
	s.token = token
	s.exp = exp
	s.mu.Unlock()
}

func (s *Session) Clear() {
	s.SetToken("")
}

// Token implements api.TokenSource.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", false
	}
	if !s.exp.IsZero() && !s.now().Before(s.exp) {
		return "", false
	}
	return s.token, true
}

// ExpiresAt is zero when the token carries no expiry.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exp
}
