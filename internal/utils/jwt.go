package utils // package utils provides helper functions for session tokens and password hashing

import (
	"errors" // sentinel errors for verification failures
	"time"   // expiry calculation

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

	"github.com/iliyamo/auth-service/internal/model" // identity carried inside the token
)

// Verification failures.  Callers compare with errors.Is.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// SessionClaims is the payload of a session token.  Besides the registered
// claims (sub, iat, exp) it carries the identity snapshot of the user at
// issuance time.
type SessionClaims struct {
	Username string         `json:"username"`
	Email    string         `json:"email"`
	FullName model.FullName `json:"fullName"`
	Role     model.Role     `json:"role"`
	jwt.RegisteredClaims
}

// Identity converts the claims back into the identity they were built from.
func (c SessionClaims) Identity() model.Identity {
	return model.Identity{
		ID:       c.Subject,
		Username: c.Username,
		Email:    c.Email,
		FullName: c.FullName,
		Role:     c.Role,
	}
}

// SessionToken represents a signed session JWT along with its expiry.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenCodec signs and verifies HS256 session tokens.  The secret is handed
// in by the caller once at startup; the codec never reads the environment.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec builds a codec that issues tokens valid for ttl.
func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the codec that reads the current time from
// now.  Issue and Verify both use it.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	cp := *c
	cp.now = now
	return &cp
}

// TTL is the nominal lifetime of every token issued by this codec.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token for identity that expires after the codec's TTL.
func (c *TokenCodec) Issue(identity model.Identity) (SessionToken, error) {
	return c.IssueWithTTL(identity, c.ttl)
}

// IssueWithTTL signs a token for identity that expires after ttl.  Given the
// same identity, ttl and clock reading the output is byte-identical.
func (c *TokenCodec) IssueWithTTL(identity model.Identity, ttl time.Duration) (SessionToken, error) {
	now := c.now().UTC().Truncate(time.Second)
	exp := now.Add(ttl)
	claims := SessionClaims{
		Username: identity.Username,
		Email:    identity.Email,
		FullName: identity.FullName,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// Verify checks the signature first and the expiry second, and returns the
// claims only when both pass.  Structural problems (wrong segment count,
// undecodable JSON, missing exp or sub, unknown role) yield ErrTokenMalformed.
func (c *TokenCodec) Verify(raw string) (SessionClaims, error) {
	claims := SessionClaims{}
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return SessionClaims{}, classify(err)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return SessionClaims{}, ErrTokenMalformed
	}
	return claims, nil
}

// classify maps jwt parser errors onto the three codec failures.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		// also returned when the header names a non-HS256 algorithm
		return ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenMalformed
	}
}
