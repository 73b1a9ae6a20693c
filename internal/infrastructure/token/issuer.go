package token

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/davidleathers/dependable-verification-backend/internal/domain/errors"
	"github.com/davidleathers/dependable-verification-backend/internal/service/dispatch"
)

const defaultTTL = 15 * time.Minute

// Claims carried by a verification token. The token is an opaque receipt:
// nothing in this system parses or validates it after issuance.
type Claims struct {
	jwt.RegisteredClaims
	SubmittedAt int64 `json:"submitted_at"`
}

// Issuer mints HS256-signed verification tokens bound to a phone number and
// the submission time of its attempt.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

var _ dispatch.TokenIssuer = (*Issuer)(nil)

// NewIssuer creates a token issuer. The signing secret must be non-empty; a
// non-positive TTL falls back to the default.
func NewIssuer(secret, issuer string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.NewConfigurationError("INVALID_TOKEN_SECRET", "token signing secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// Issue mints a token for a verified attempt
func (i *Issuer) Issue(ctx context.Context, number string, submittedAt time.Time) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   number,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		SubmittedAt: submittedAt.UTC().UnixMilli(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", errors.NewInternalError("failed to sign verification token").WithCause(err)
	}
	return signed, nil
}
