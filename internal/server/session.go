package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/events"
)

// sessionKey is the context key carrying the authenticated session ID.
type contextKey string

const sessionKey contextKey = "sessionID"

// SessionClaims are the JWT claims of an API session token. Authentication
// itself lives in the external backend; this service only validates the
// tokens it hands out so the local API is not an open relay.
type SessionClaims struct {
	SessionID uuid.UUID `json:"session_id"`
	jwt.RegisteredClaims
}

// SessionService issues and validates API session tokens.
type SessionService struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionService creates a session service. A 24 hour TTL is used when
// ttl is zero.
func NewSessionService(secret string, ttl time.Duration) *SessionService {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{secret: []byte(secret), ttl: ttl}
}

// IssueToken generates a signed token for a new session.
func (s *SessionService) IssueToken() (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		SessionID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a session token and returns its claims.
func (s *SessionService) ValidateToken(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}

// withSession validates the bearer token on every request and publishes a
// session invalidation event on failure so interested components can react
// without a shared global flag.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			s.invalidateSession(err.Error())
			s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		claims, err := s.sessions.ValidateToken(token)
		if err != nil {
			s.invalidateSession("invalid session token")
			s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, claims.SessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) invalidateSession(reason string) {
	if s.bus != nil {
		s.bus.Publish(events.SessionInvalidated{Reason: reason, At: time.Now()})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("malformed authorization header")
	}
	return parts[1], nil
}

// SessionID extracts the authenticated session ID from the request context.
func SessionID(r *http.Request) (uuid.UUID, error) {
	id, ok := r.Context().Value(sessionKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("session ID not found in request context")
	}
	return id, nil
}
