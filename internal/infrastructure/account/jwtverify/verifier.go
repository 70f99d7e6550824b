package jwtverify

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/crickarena/fantasy-cricket/internal/domain/user"
	"github.com/crickarena/fantasy-cricket/internal/usecase"
)

// Verifier validates self-issued HS256 access tokens locally. Deployments
// without an introspection endpoint select it via AUTH_MODE=jwt.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &Verifier{secret: []byte(secret), issuer: strings.TrimSpace(issuer)}, nil
}

type accessClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

func (v *Verifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %v", usecase.ErrUnauthorized, err)
	}
	if !parsed.Valid {
		return user.Principal{}, fmt.Errorf("%w: invalid token", usecase.ErrUnauthorized)
	}
	if v.issuer != "" && claims.Issuer != v.issuer {
		return user.Principal{}, fmt.Errorf("%w: unexpected issuer", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return user.Principal{}, fmt.Errorf("%w: missing subject", usecase.ErrUnauthorized)
	}

	return user.Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}
