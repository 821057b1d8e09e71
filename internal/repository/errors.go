// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// each one to a stable HTTP status. All of them are terminal for the
// request except ErrUnavailable, which marks store timeouts and other
// transient conditions that the caller may retry with the same input.
package repository

import (
	"context"
	"errors"
)

// ErrInvalidInput is returned when a field fails validation before it
// reaches the store (bad email shape, unknown membership tier, and so
// on). Handlers translate it into HTTP 400.
var ErrInvalidInput = errors.New("invalid input")

// ErrUserExists is returned when registration collides with an
// existing username or email. Handlers translate it into HTTP 400 per
// the public contract (the response body names the conflict).
var ErrUserExists = errors.New("username or email already exists")

// ErrInvalidCredentials is returned for an unknown username and for a
// wrong password alike. The two cases are deliberately
// indistinguishable so that login cannot be used to enumerate
// accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNotFound is returned when an entity id does not resolve to a
// row. Handlers translate it into the status the original contract
// mandates for the route (400 for the user CRUD routes).
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own and they lack the admin role. Handlers
// should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrUnavailable is returned when the store did not answer in time or
// the connection failed. Unlike the other sentinels it is retry-safe.
var ErrUnavailable = errors.New("store unavailable")

// asStoreErr folds context cancellation and deadline expiry into
// ErrUnavailable so callers see a single transient sentinel, and
// passes every other error through untouched.
func asStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrUnavailable
	}
	return err
}
