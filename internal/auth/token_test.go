package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-32-characters-long"

func TestTokenManager_IssueAndValidate(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	token, err := m.Issue("bob", nil)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.True(t, m.Validate(token, "bob"))
	assert.False(t, m.Validate(token, "alice"))

	subject, err := m.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "bob", subject)
}

func TestTokenManager_IssueWithScopes(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	token, err := m.IssueWithScopes("bob", "role_user")
	require.NoError(t, err)

	scopes, err := m.Scopes(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"role_user"}, scopes)
}

func TestTokenManager_IssueMergesCallerClaims(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	token, err := m.Issue("bob", map[string]any{"tenant": "acme"})
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "acme", claims["tenant"])
	assert.Equal(t, Issuer, claims["iss"])
	assert.Equal(t, "bob", claims["sub"])
	assert.NotNil(t, claims["iat"])
	assert.NotNil(t, claims["exp"])
}

func TestTokenManager_CallerCannotOverrideSubject(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	token, err := m.Issue("bob", map[string]any{"sub": "mallory"})
	require.NoError(t, err)

	subject, err := m.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "bob", subject)
}

func TestTokenManager_ValidateTampered(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	token, err := m.Issue("bob", nil)
	require.NoError(t, err)

	tampered := token[:len(token)-3] + "xxx"
	assert.False(t, m.Validate(tampered, "bob"))

	_, err = m.Subject(tampered)
	require.Error(t, err)
}

func TestTokenManager_ValidateGarbage(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	assert.False(t, m.Validate("", "bob"))
	assert.False(t, m.Validate("not-a-jwt", "bob"))
	assert.False(t, m.Validate("a.b.c", "bob"))
}

func TestTokenManager_ValidateExpired(t *testing.T) {
	m := NewTokenManager(testSecret, -time.Minute)

	// ttl <= 0 falls back to the default, so sign an expired token by hand.
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": "bob",
		"iss": Issuer,
		"iat": jwt.NewNumericDate(now.Add(-2 * time.Hour)),
		"exp": jwt.NewNumericDate(now.Add(-time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	assert.False(t, m.Validate(signed, "bob"))
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	other := NewTokenManager("a-completely-different-secret-value!!", time.Hour)
	token, err := other.Issue("bob", nil)
	require.NoError(t, err)

	m := NewTokenManager(testSecret, time.Hour)
	assert.False(t, m.Validate(token, "bob"))
}

func TestTokenManager_RejectsWrongIssuer(t *testing.T) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": "bob",
		"iss": "someone-else",
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	m := NewTokenManager(testSecret, time.Hour)
	assert.False(t, m.Validate(signed, "bob"))
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	m := NewTokenManager(testSecret, 0)
	assert.Equal(t, DefaultTTL, m.ttl)
}
