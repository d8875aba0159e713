package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wandertrails/tours-api/internal/core/domain"
)

// TokenService issues and verifies signed bearer tokens. It is stateless:
// there is no revocation list, only the password-changed check performed by
// the caller after user lookup.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token carrying the user id as subject, with issued-at and
// expiry claims.
func (s *TokenService) Issue(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify parses and validates a token, returning the user id and the time it
// was issued. Any parse, signature or expiry failure yields
// domain.ErrInvalidToken; user existence is the caller's concern.
func (s *TokenService) Verify(token string) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", time.Time{}, domain.ErrInvalidToken
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	return claims.Subject, issuedAt, nil
}
