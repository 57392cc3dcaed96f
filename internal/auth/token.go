package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ModeVerified   = "verified"
	ModeUnverified = "unverified"
)

var (
	ErrNoToken      = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenVerifier извлекает идентификатор пользователя (claim "sub") из токена
type TokenVerifier interface {
	Subject(token string) (string, error)
}

// NewVerifier выбирает стратегию проверки по конфигурации.
// Режим unverified нужно запрашивать явно, по умолчанию подпись проверяется.
func NewVerifier(mode, secret string) (TokenVerifier, error) {
	switch mode {
	case ModeVerified:
		if secret == "" {
			return nil, errors.New("auth: JWT_SECRET is required in verified mode")
		}
		return NewHMACVerifier(secret), nil
	case ModeUnverified:
		return UnverifiedParser{}, nil
	default:
		return nil, fmt.Errorf("auth: unknown mode %q", mode)
	}
}

// HMACVerifier проверяет подпись HS256 общим секретом
type HMACVerifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256"}),
			jwt.WithExpirationRequired(),
		),
	}
}

func (v *HMACVerifier) Subject(tokenString string) (string, error) {
	token, err := v.parser.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// UnverifiedParser декодирует claims без проверки подписи.
// Только для тестовых стендов: sub и exp все равно обязательны.
type UnverifiedParser struct{}

func (UnverifiedParser) Subject(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return "", ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return "", ErrInvalidToken
	}
	if claims.ExpiresAt.Before(time.Now()) {
		return "", ErrExpiredToken
	}
	return claims.Subject, nil
}
