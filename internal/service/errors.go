package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/auth-service/internal/utils"
)

// Authentication failures.  Every one of them is rendered to the client as
// the same 401 so callers cannot tell which check rejected the token.
var (
	ErrMissingToken     = errors.New("missing token")
	ErrRevoked          = errors.New("token revoked")
	ErrMalformed        = utils.ErrTokenMalformed
	ErrInvalidSignature = utils.ErrTokenSignatureInvalid
	ErrExpired          = utils.ErrTokenExpired
)

// Business failures.
var (
	ErrConflict           = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrAddressNotFound    = fmt.Errorf("address %w", ErrNotFound)
	ErrInternal           = errors.New("internal error")
)

// IsUnauthorized reports whether err is one of the authentication failures.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrRevoked) ||
		errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrExpired)
}

// wrapInternal tags err as ErrInternal while keeping the cause for logs.
func wrapInternal(err error, op string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}
