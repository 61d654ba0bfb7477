// Package common defines shared constants and sentinel errors used across
// client and server layers of notesync. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrVersionConflict = errors.New("version conflict")

	// Reached only if version comparison falls through every branch.
	ErrUnhandledSyncCase = errors.New("unhandled sync case")

	// Validation errors (malformed batch or note).
	ErrInvalidPayload = errors.New("invalid payload")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Snapshot export is not configured on this server.
	ErrSnapshotsDisabled = errors.New("snapshots are not configured")
)
