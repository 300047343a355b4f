package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenIlegible = errors.New("el token no es un JWT legible")

// TokenInfo is what can be read from an access token without its signing
// key. Nothing here is verified.
type TokenInfo struct {
	Subject   string    `json:"sub,omitempty"`
	Usuario   string    `json:"usuario,omitempty"`
	Rol       string    `json:"rol,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
}

func (t TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

func DescribeToken(raw string) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("%w: %w", ErrTokenIlegible, err)
	}

	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	for _, key := range []string{"usuario", "username", "email"} {
		if v, ok := claims[key].(string); ok && v != "" {
			info.Usuario = v
			break
		}
	}
	if v, ok := claims["rol"].(string); ok {
		info.Rol = v
	}
	return info, nil
}
