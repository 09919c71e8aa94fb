package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localloop/classifieds-service/internal/classified/domain"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, secret string, c claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerifyValidToken(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	token := mintToken(t, testSecret, claims{
		UserID: "u1",
		Email:  "u1@example.com",
		Name:   "Uli",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	identity, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UID)
	assert.Equal(t, "u1@example.com", identity.Email)
	assert.Equal(t, "Uli", identity.Name)
}

func TestVerifyFallsBackToSubjectClaim(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	token := mintToken(t, testSecret, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u2",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	identity, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u2", identity.UID)
}

func TestVerifyRejectsEmptyCredential(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	token := mintToken(t, testSecret, claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	token := mintToken(t, "other-secret", claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVerifyRejectsTokenWithoutUserID(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	token := mintToken(t, testSecret, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	_, err := NewVerifier("")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
