package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/localloop/classifieds-service/internal/classified/domain"
)

// claims is the token shape minted by the identity provider.
type claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Verifier validates HMAC-signed bearer tokens from the identity provider.
// It never mints tokens itself.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: JWT secret is empty", domain.ErrNotConfigured)
	}
	return &Verifier{secret: []byte(secret)}, nil
}

func (v *Verifier) Verify(ctx context.Context, credential string) (*domain.Identity, error) {
	if credential == "" {
		return nil, fmt.Errorf("%w: no credential provided", domain.ErrUnauthenticated)
	}

	c := &claims{}
	token, err := jwt.ParseWithClaims(credential, c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token has expired", domain.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: token is not valid", domain.ErrUnauthenticated)
	}

	uid := c.UserID
	if uid == "" {
		uid = c.Subject
	}
	if uid == "" {
		return nil, fmt.Errorf("%w: token carries no user id", domain.ErrUnauthenticated)
	}

	return &domain.Identity{UID: uid, Email: c.Email, Name: c.Name}, nil
}
