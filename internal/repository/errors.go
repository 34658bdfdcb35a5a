// Package repository defines the persistence adapters of the service and the
// error values they share.  Handlers and services never see driver errors:
// every adapter translates them into one of the sentinels below or wraps
// them with context.
package repository

import "errors"

// ErrUserNotFound is returned when no user matches the lookup.  Services
// translate it into a 404.
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists is returned when an insert or update collides with the
// unique username or email index.  Services translate it into a 409.
var ErrUserExists = errors.New("user already exists")
