package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenValidator checks access tokens minted by the auth service. Only HS256
// tokens of type "access" are accepted; the learner id is the "sub" claim.
type TokenValidator struct {
	accessSecret []byte
}

func NewTokenValidator(accessSecret string) *TokenValidator {
	return &TokenValidator{accessSecret: []byte(accessSecret)}
}

// Sign mints an access token in the auth service's format. Used by tests and
// local tooling.
func (v *TokenValidator) Sign(userID string, ttl time.Duration) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"exp":  time.Now().Add(ttl).Unix(),
		"type": "access",
	})
	return t.SignedString(v.accessSecret)
}

func (v *TokenValidator) ValidateAccessToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.accessSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if typ, _ := claims["type"].(string); typ != "" && typ != "access" {
		return "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
