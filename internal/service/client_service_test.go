package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizora/quizora-backend/internal/config"
)

func newTestClientService() *ClientService {
	return NewClientService(&config.Config{
		JWTSecret: "unit-test-jwt-secret",
		JWTExpiry: time.Hour,
	})
}

func TestRegisterAndValidate(t *testing.T) {
	svc := newTestClientService()

	reg, err := svc.Register()
	require.NoError(t, err)
	assert.NotEmpty(t, reg.ClientID)
	assert.NotEmpty(t, reg.Token)

	claims, err := svc.ValidateToken(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.ClientID, claims.ClientID)
}

func TestRegisterMintsDistinctClients(t *testing.T) {
	svc := newTestClientService()

	a, err := svc.Register()
	require.NoError(t, err)
	b, err := svc.Register()
	require.NoError(t, err)
	assert.NotEqual(t, a.ClientID, b.ClientID)
}

func TestRenewKeepsClientID(t *testing.T) {
	svc := newTestClientService()

	reg, err := svc.Register()
	require.NoError(t, err)

	renewed, err := svc.Renew(reg.ClientID)
	require.NoError(t, err)
	assert.Equal(t, reg.ClientID, renewed.ClientID)

	claims, err := svc.ValidateToken(renewed.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.ClientID, claims.ClientID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestClientService()

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := newTestClientService()
	other := NewClientService(&config.Config{JWTSecret: "different-secret", JWTExpiry: time.Hour})

	reg, err := svc.Register()
	require.NoError(t, err)

	_, err = other.ValidateToken(reg.Token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewClientService(&config.Config{
		JWTSecret: "unit-test-jwt-secret",
		JWTExpiry: -time.Minute,
	})

	reg, err := svc.Register()
	require.NoError(t, err)

	_, err = svc.ValidateToken(reg.Token)
	assert.Error(t, err)
}
