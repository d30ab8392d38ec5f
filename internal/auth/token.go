package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

const TokenValidity = time.Hour

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// TokenClaims carries the identity asserted by a signed token. The email is
// only an attestation of who the token was issued to; role checks always go
// back to the users collection.
type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: TokenValidity}
}

// Issue signs a token embedding the email claim. Callers must have confirmed
// that a user record exists for the email first.
func (s *TokenService) Issue(email string) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Verify validates signature and expiry and returns the embedded email.
func (s *TokenService) Verify(tokenstr string) (string, error) {
	if tokenstr == "" {
		return "", ErrMissingToken
	}
	var claims TokenClaims
	token, err := jwt.ParseWithClaims(tokenstr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}

// Secret exposes the signing key for the echo-jwt middleware config.
func (s *TokenService) Secret() []byte {
	return s.secret
}
