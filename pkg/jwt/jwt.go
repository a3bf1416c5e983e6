package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the server-side token claims Stream expects
type Claims struct {
	Server bool `json:"server"`
	jwt.RegisteredClaims
}

// Manager handles JWT operations
type Manager struct {
	secret string
}

// NewManager creates new JWT manager
func NewManager(secret string) *Manager {
	return &Manager{secret: secret}
}

// GenerateServerToken generates a short-lived server token
func (m *Manager) GenerateServerToken(ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Server: true,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

