package token_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/dependable-verification-backend/internal/domain/errors"
	"github.com/davidleathers/dependable-verification-backend/internal/infrastructure/token"
)

func TestNewIssuer_RequiresSecret(t *testing.T) {
	issuer, err := token.NewIssuer("", "dvb", time.Minute)

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))
	assert.Nil(t, issuer)
}

func TestIssuer_Issue(t *testing.T) {
	issuer, err := token.NewIssuer("test-secret", "dvb", 10*time.Minute)
	require.NoError(t, err)

	submittedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	signed, err := issuer.Issue(context.Background(), "+15551234567", submittedAt)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	// Compact JWS form: header.payload.signature.
	assert.Len(t, strings.Split(signed, "."), 3)
	assert.True(t, strings.HasPrefix(signed, "ey"))

	// The service never validates issued tokens, but the claims must bind
	// the attempt: number as subject, submission instant as a claim.
	var claims token.Claims
	parsed, err := jwt.ParseWithClaims(signed, &claims, func(tk *jwt.Token) (interface{}, error) {
		require.IsType(t, jwt.SigningMethodHS256, tk.Method)
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, "dvb", claims.Issuer)
	assert.Equal(t, "+15551234567", claims.Subject)
	assert.Equal(t, submittedAt.UnixMilli(), claims.SubmittedAt)
	assert.Equal(t, claims.IssuedAt.Add(10*time.Minute), claims.ExpiresAt.Time)

	_, err = uuid.Parse(claims.ID)
	assert.NoError(t, err, "jti must be a UUID")
}

func TestIssuer_Issue_UniquePerAttempt(t *testing.T) {
	issuer, err := token.NewIssuer("test-secret", "dvb", time.Minute)
	require.NoError(t, err)

	at := time.Now()
	first, err := issuer.Issue(context.Background(), "+15551234567", at)
	require.NoError(t, err)
	second, err := issuer.Issue(context.Background(), "+15551234567", at)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each attempt mints a fresh token")
}

func TestNewIssuer_DefaultsTTL(t *testing.T) {
	issuer, err := token.NewIssuer("test-secret", "dvb", 0)
	require.NoError(t, err)

	signed, err := issuer.Issue(context.Background(), "+15551234567", time.Now())
	require.NoError(t, err)

	var claims token.Claims
	_, err = jwt.ParseWithClaims(signed, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}
