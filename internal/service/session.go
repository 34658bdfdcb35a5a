package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/utils"
)

// TokenCookieName is the cookie that carries the session token.
const TokenCookieName = "token"

// RevocationStore is the denylist the session authority consults on every
// request.  repository.RevocationRepo implements it on Redis.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// TokenVerifier is the verifying half of utils.TokenCodec.
type TokenVerifier interface {
	Verify(raw string) (utils.SessionClaims, error)
}

// SessionAuthority decides whether a raw session token authenticates a
// request, and revokes tokens on logout.
type SessionAuthority struct {
	revocations RevocationStore
	codec       TokenVerifier
	revokeTTL   time.Duration
}

// NewSessionAuthority wires the denylist and the codec.  revokeTTL is the
// nominal token lifetime: every logout blacklists the token for that long,
// whatever time the token actually has left.
func NewSessionAuthority(revocations RevocationStore, codec TokenVerifier, revokeTTL time.Duration) *SessionAuthority {
	if revocations == nil || codec == nil {
		panic("nil dependency passed to NewSessionAuthority")
	}
	return &SessionAuthority{revocations: revocations, codec: codec, revokeTTL: revokeTTL}
}

// TokenFromRequest extracts the raw session token.  The token cookie wins
// over an Authorization bearer header when both are present.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(TokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return ""
}

// Authenticate runs the checks in a fixed order and stops at the first
// failure: presence, denylist, then signature and expiry.  The denylist is
// consulted before the signature so a logged-out token stays rejected even
// though it still verifies.
func (a *SessionAuthority) Authenticate(ctx context.Context, raw string) (model.Identity, error) {
	if raw == "" {
		return model.Identity{}, ErrMissingToken
	}

	revoked, err := a.revocations.IsRevoked(ctx, raw)
	if err != nil {
		return model.Identity{}, wrapInternal(err, "revocation lookup")
	}
	if revoked {
		return model.Identity{}, ErrRevoked
	}

	claims, err := a.codec.Verify(raw)
	if err != nil {
		if errors.Is(err, ErrMalformed) || errors.Is(err, ErrInvalidSignature) || errors.Is(err, ErrExpired) {
			return model.Identity{}, err
		}
		return model.Identity{}, ErrMalformed
	}
	return claims.Identity(), nil
}

// AuthenticateRequest is Authenticate applied to the token found in r.  It
// also returns the raw token so logout can revoke exactly what was used.
func (a *SessionAuthority) AuthenticateRequest(r *http.Request) (model.Identity, string, error) {
	raw := TokenFromRequest(r)
	id, err := a.Authenticate(r.Context(), raw)
	return id, raw, err
}

// Logout blacklists raw for the full nominal token lifetime.
func (a *SessionAuthority) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return ErrMissingToken
	}
	if err := a.revocations.Revoke(ctx, raw, a.revokeTTL); err != nil {
		return wrapInternal(err, "revoke token")
	}
	return nil
}
