// Package auth implements the token codec (signed, expiring, scoped JWTs)
// and password hashing used by the session service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"contactsvc/internal/common"
)

// Scope restricts which operation a token may be redeemed for.
type Scope string

const (
	ScopeAccess  Scope = "access_token"
	ScopeRefresh Scope = "refresh_token"
	// ScopeNone marks tokens that carry no scope claim (email verification).
	ScopeNone Scope = ""
)

// Claims are the assertions carried by every issued token. Subject is the
// user's email.
type Claims struct {
	jwt.RegisteredClaims
	Scope Scope `json:"scope,omitempty"`
}

// Codec signs and verifies tokens under one HMAC key and one signing method,
// both fixed at construction.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
}

// NewCodec resolves the signing method by name (HS256, HS384, HS512) and
// binds it together with the secret key.
func NewCodec(secret []byte, algorithm string) (*Codec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &Codec{secret: secret, method: method}, nil
}

// Issue creates a signed token for subject with the given scope and validity.
// ScopeNone omits the scope claim entirely. The jti claim makes every issued
// token unique even when two are minted within the same second; refresh
// rotation relies on that to tell a superseded token from the current one.
func (c *Codec) Issue(subject string, scope Scope, validity time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
			ID:        uuid.NewString(),
		},
		Scope: scope,
	}

	tokenString, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// Decode verifies the signature and expiry of tokenString and returns its
// claims. Failures map to common.ErrTokenExpired, common.ErrInvalidSignature
// or common.ErrMalformedToken. Tokens signed under any method other than the
// configured one fail signature verification.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{c.method.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, common.ErrInvalidSignature
		default:
			return nil, common.ErrMalformedToken
		}
	}

	// Expiry is an absolute wall-clock comparison at verification time; a
	// token presented at the exact expiry instant is already invalid.
	if claims.ExpiresAt == nil || !time.Now().Before(claims.ExpiresAt.Time) {
		return nil, common.ErrTokenExpired
	}

	return claims, nil
}
