// README: Bearer-token session; the auth collaborator the API client reads from.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSessionExpired means the caller must send the user back to sign-in.
var ErrSessionExpired = errors.New("session expired, sign in again")

type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session holds the current bearer token and user identity. The token is
// issued and verified by the backend; the session only inspects the exp
// claim to fail fast on an expired token instead of bouncing off a 401.
type Session struct {
	mu    sync.RWMutex
	token string
	user  User
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) SignIn(token string, user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}

func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = User{}
}

func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Token returns the bearer token, or ErrSessionExpired when there is no
// token or its exp claim has passed.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrSessionExpired
	}
	if expired(s.token, time.Now()) {
		return "", ErrSessionExpired
	}
	return s.token, nil
}

// expired parses the token without verifying the signature; verification
// belongs to the backend. A token that cannot be parsed at all is left for
// the backend to reject.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
