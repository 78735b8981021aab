// Package jwt implements the token codec: stateless HS256 tokens carrying
// the principal's identity and role.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/rayanh/salary-tracker/internal/domain"
)

const signingMethod = "HS256"

// Claims is the token payload. Subject carries the email.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	gojwt.RegisteredClaims
}

// Codec issues and verifies bearer tokens with a single shared key.
// Verification pins the algorithm: a token signed with anything but
// HS256 is rejected regardless of its header.
type Codec struct {
	key    []byte
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

// NewCodec builds a codec. leeway absorbs clock skew between issuer and
// verifier in both directions.
func NewCodec(key []byte, ttl, leeway time.Duration) *Codec {
	return &Codec{key: key, ttl: ttl, leeway: leeway, now: time.Now}
}

// Issue signs a token for the user, valid from now until now+ttl.
func (c *Codec) Issue(user *domain.User) (string, error) {
	now := c.now()
	claims := Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify parses and validates a token string, returning the principal it
// encodes. Errors are always one of the domain token kinds; parser
// details never leak past this boundary.
func (c *Codec) Verify(tokenString string) (*domain.Principal, error) {
	var claims Claims
	token, err := gojwt.ParseWithClaims(tokenString, &claims,
		func(*gojwt.Token) (interface{}, error) { return c.key, nil },
		gojwt.WithValidMethods([]string{signingMethod}),
		gojwt.WithLeeway(c.leeway),
		gojwt.WithIssuedAt(),
		gojwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	if err != nil {
		switch {
		case errors.Is(err, gojwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, gojwt.ErrTokenUsedBeforeIssued),
			errors.Is(err, gojwt.ErrTokenNotValidYet):
			return nil, domain.ErrTokenNotYet
		default:
			return nil, domain.ErrTokenInvalid
		}
	}
	if !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	role := domain.Role(claims.Role)
	if claims.UserID == 0 || !role.IsValid() {
		return nil, domain.ErrTokenInvalid
	}

	return &domain.Principal{
		UserID: claims.UserID,
		Email:  claims.Subject,
		Role:   role,
	}, nil
}
