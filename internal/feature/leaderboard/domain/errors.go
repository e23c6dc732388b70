// Package domain defines domain-level errors for the leaderboard feature.
package domain

import "errors"

// Domain errors for leaderboard operations.
// These errors represent business logic failures and should be handled appropriately by upper layers.
var (
	// ErrUserNotFound indicates that no user exists with the given id.
	// This is the only expected user-facing error of the claim operation.
	ErrUserNotFound = errors.New("user not found")

	// ErrNameTooShort indicates that the submitted name is shorter than
	// two characters after trimming whitespace.
	ErrNameTooShort = errors.New("name is required and must be at least 2 characters long")

	// ErrNameTooLong indicates that the submitted name exceeds fifty
	// characters after trimming whitespace.
	ErrNameTooLong = errors.New("name must be at most 50 characters long")

	// ErrNameTaken indicates that a user with the same name already
	// exists. The comparison is case-insensitive.
	ErrNameTaken = errors.New("user with this name already exists")
)
