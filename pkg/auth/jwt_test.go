package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/example/fooddash/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *TokenManager {
	return NewTokenManager(config.AuthConfig{JWTSecret: "s3cret", TokenTTL: time.Hour, Issuer: "fooddash"})
}

func TestIssueAndParse(t *testing.T) {
	m := testManager()

	token, err := m.Issue("user-1", "customer")
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, "fooddash", claims.Issuer)
}

func TestParseRejectsExpired(t *testing.T) {
	m := testManager()
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.Issue("user-1", "customer")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParseRejectsForeignSecret(t *testing.T) {
	other := NewTokenManager(config.AuthConfig{JWTSecret: "other", TokenTTL: time.Hour, Issuer: "fooddash"})
	token, err := other.Issue("user-1", "customer")
	require.NoError(t, err)

	_, err = testManager().Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := testManager().Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
