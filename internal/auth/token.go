package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"relay/internal/domain"
)

const (
	defaultIssuer = "relay-auth"
	defaultTTL    = 12 * time.Hour
	defaultLeeway = 30 * time.Second
)

var (
	// ErrInvalidToken covers expired, malformed, or badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carries the verified caller identity. Subject holds the contact id.
type Claims struct {
	Name string      `json:"name,omitempty"`
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	leeway time.Duration
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	trimmedSecret := strings.TrimSpace(secret)
	if trimmedSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &TokenService{
		secret: []byte(trimmedSecret),
		issuer: defaultIssuer,
		ttl:    ttl,
		leeway: defaultLeeway,
	}, nil
}

// Issue signs a token for the subject with the given role.
func (s *TokenService) Issue(subjectID, name string, role domain.Role) (string, error) {
	if strings.TrimSpace(subjectID) == "" {
		return "", errors.New("subject id is required")
	}
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role %q", role)
	}

	now := time.Now().UTC()
	claims := Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        randomHexID(12),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates signature, expiry, and issuer, and returns the claims.
func (s *TokenService) Verify(token string) (Claims, error) {
	claims := Claims{}

	token = strings.TrimSpace(token)
	if token == "" {
		return claims, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(s.leeway),
	)
	if err != nil || !parsed.Valid {
		return claims, ErrInvalidToken
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return claims, ErrInvalidToken
	}
	if !claims.Role.IsValid() {
		return claims, ErrInvalidToken
	}

	return claims, nil
}

func randomHexID(nBytes int) string {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", buf)
}
