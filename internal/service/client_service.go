package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/quizora/quizora-backend/internal/config"
)

// ErrInvalidToken is returned when a client token fails validation.
var ErrInvalidToken = errors.New("invalid client token")

// Claims extends JWT standard claims with the client (device) identity.
// There are no user accounts: a token identifies an anonymous client whose
// sessions and credits live under its client_id.
type Claims struct {
	jwt.RegisteredClaims
	ClientID string `json:"client_id"`
}

// Registration is the result of minting a new client identity.
type Registration struct {
	ClientID  string    `json:"client_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ClientService mints and validates anonymous client tokens.
type ClientService struct {
	cfg *config.Config
}

// NewClientService creates a new ClientService.
func NewClientService(cfg *config.Config) *ClientService {
	return &ClientService{cfg: cfg}
}

// Register mints a fresh client identity and a signed token for it.
func (s *ClientService) Register() (*Registration, error) {
	clientID := uuid.New().String()
	now := time.Now()
	expires := now.Add(s.cfg.JWTExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   clientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		ClientID: clientID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Registration{ClientID: clientID, Token: signed, ExpiresAt: expires}, nil
}

// Renew issues a fresh token for an existing client identity, keeping its
// sessions and credits.
func (s *ClientService) Renew(clientID string) (*Registration, error) {
	if clientID == "" {
		return nil, ErrInvalidToken
	}
	now := time.Now()
	expires := now.Add(s.cfg.JWTExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   clientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		ClientID: clientID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Registration{ClientID: clientID, Token: signed, ExpiresAt: expires}, nil
}

// ValidateToken parses and validates a client token, returning the claims.
func (s *ClientService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ClientID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
