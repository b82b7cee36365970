package jwt

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Права, которые проверяются обработчиками API
const (
	CapEditGalleries = "edit_galleries"
	CapUploadFiles   = "upload_files"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims — полезная нагрузка токена редактора
type Claims struct {
	Caps []string `json:"caps"`
	jwt.RegisteredClaims
}

// Can сообщает, есть ли у владельца токена указанное право
func (c *Claims) Can(capability string) bool {
	return slices.Contains(c.Caps, capability)
}

// NewToken подписывает HS256 токен для subject с набором прав
func NewToken(subject string, caps []string, duration time.Duration, secret string) (string, error) {
	now := time.Now()

	claims := &Claims{
		Caps: caps,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken проверяет подпись и срок действия токена
func ParseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
