package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Principal is the identity carried by a token.
type Principal struct {
	ID    uuid.UUID
	Email string
	Role  string
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

func (t *Tokens) GenerateToken(p Principal) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    p.ID.String(),
		"email": p.Email,
		"role":  p.Role,
		"exp":   time.Now().Add(t.ttl).Unix(),
	})
	return token.SignedString(t.secret)
}

// VerifyToken checks signature and expiry and returns the principal.
func (t *Tokens) VerifyToken(token string) (Principal, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if errors.Is(err, jwt.ErrTokenExpired) {
		return Principal{}, ErrTokenExpired
	}
	if err != nil || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrInvalidToken
	}
	rawID, _ := claims["id"].(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return Principal{ID: id, Email: email, Role: role}, nil
}
