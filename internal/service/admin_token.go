package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminRole = "admin"

// AdminTokens issues and checks operator JWTs (HS256).
type AdminTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewAdminTokens returns nil when secret is empty; admin endpoints then answer NotConfigured.
func NewAdminTokens(secret string, ttl time.Duration) *AdminTokens {
	if secret == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AdminTokens{secret: []byte(secret), ttl: ttl}
}

func (a *AdminTokens) Issue(subject string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": adminRole,
		"exp":  now.Add(a.ttl).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Parse validates the token and returns its subject.
func (a *AdminTokens) Parse(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", newError(ErrUnauthorized, "invalid token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", newError(ErrUnauthorized, "invalid claims", nil)
	}
	if role, _ := claims["role"].(string); role != adminRole {
		return "", newError(ErrUnauthorized, "not an admin token", nil)
	}

	sub, _ := claims["sub"].(string)
	return sub, nil
}
