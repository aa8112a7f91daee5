package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"repairdesk/internal/workflow"
)

var (
	ErrNoToken      = errors.New("auth: empty token")
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrUnknownRole  = errors.New("auth: unknown role")
)

// Claims — токен сотрудника мастерской: sub = id пользователя.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParseJWT проверяет HS256-токен и возвращает claims.
func ParseJWT(tokenString string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}
	if len(secret) == 0 {
		return nil, errors.New("auth: empty secret")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// User — пользователь из claims; неизвестная роль — ошибка.
func (c *Claims) User() (workflow.User, error) {
	role, err := workflow.ParseRole(c.Role)
	if err != nil {
		return workflow.User{}, ErrUnknownRole
	}
	return workflow.User{ID: c.Subject, Role: role}, nil
}

// Issue подписывает токен (утилиты и тесты).
func Issue(secret []byte, u workflow.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: u.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
