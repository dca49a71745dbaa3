// Package recovery issues and verifies the short-lived tokens that prove a
// user just completed the MFA recovery flow.
package recovery

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "riskgate/pkg/domain-errors"
)

const (
	Purpose    = "mfa_recovery"
	DefaultTTL = 15 * time.Minute
	issuer     = "riskgate"
)

type Claims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService signs recovery tokens with HS256.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
}

func NewTokenService(signingKey string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenService{signingKey: []byte(signingKey), ttl: ttl}
}

// Issue records that userID completed recovery at completedAt.
func (s *TokenService) Issue(userID string, completedAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Purpose: Purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(completedAt),
			ExpiresAt: jwt.NewNumericDate(completedAt.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign recovery token")
	}
	return signed, nil
}

// VerifyRecovery validates the token against now and returns the completion
// time. Tokens for another user or purpose are rejected.
func (s *TokenService) VerifyRecovery(tokenString, userID string, now time.Time) (time.Time, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(userID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	var claims Claims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return time.Time{}, dErrors.New(dErrors.CodeUnauthorized, "recovery token has expired")
		}
		return time.Time{}, dErrors.New(dErrors.CodeUnauthorized, "invalid recovery token")
	}
	if claims.Purpose != Purpose || claims.IssuedAt == nil {
		return time.Time{}, dErrors.New(dErrors.CodeUnauthorized, "invalid recovery token")
	}
	return claims.IssuedAt.Time, nil
}
