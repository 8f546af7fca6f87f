package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the fixed issuer claim on every token this service signs.
const Issuer = "customer-service"

// DefaultTTL is the token lifetime when none is configured.
const DefaultTTL = 120 * time.Hour

// TokenManager issues and validates HS256 bearer tokens. Validation is
// stateless: a token stays valid until it expires, even if the customer it
// names has been deleted.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a manager signing with the given secret. A
// non-positive ttl falls back to DefaultTTL.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for subject with the given extra claims merged in.
// Reserved claims (sub, iss, iat, exp) always come from the manager.
func (m *TokenManager) Issue(subject string, claims map[string]any) (string, error) {
	now := time.Now().UTC()

	all := jwt.MapClaims{}
	for k, v := range claims {
		all[k] = v
	}
	all["sub"] = subject
	all["iss"] = Issuer
	all["iat"] = jwt.NewNumericDate(now)
	all["exp"] = jwt.NewNumericDate(now.Add(m.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, all)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IssueWithScopes signs a token whose "scopes" claim holds the given list.
func (m *TokenManager) IssueWithScopes(subject string, scopes ...string) (string, error) {
	return m.Issue(subject, map[string]any{"scopes": scopes})
}

// Validate reports whether tokenString carries a valid signature, is not
// expired, and names expectedSubject. It never returns an error: any failure
// is simply false.
func (m *TokenManager) Validate(tokenString, expectedSubject string) bool {
	subject, err := m.Subject(tokenString)
	if err != nil {
		return false
	}
	return subject == expectedSubject
}

// Subject parses and verifies tokenString and returns its subject claim.
func (m *TokenManager) Subject(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return subject, nil
}

// Scopes returns the "scopes" claim of a verified token, or nil when absent.
func (m *TokenManager) Scopes(tokenString string) ([]string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil
	}
	raw, ok := claims["scopes"].([]any)
	if !ok {
		return nil, nil
	}
	scopes := make([]string, 0, len(raw))
	for _, s := range raw {
		if str, ok := s.(string); ok {
			scopes = append(scopes, str)
		}
	}
	return scopes, nil
}
