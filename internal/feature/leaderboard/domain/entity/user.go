// Package entity defines the domain entities for the leaderboard feature.
package entity

import "time"

// User represents a participant on the leaderboard.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey" json:"id"`

	// Name is the user's display name. It must be unique across all users
	// regardless of letter case; the case-insensitive check lives in the
	// usecase, the unique index is a backstop for the exact spelling.
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`

	// TotalPoints is the user's accumulated point total. Points are only
	// ever added in this system, so the value never decreases.
	TotalPoints int `gorm:"not null;default:0;index:idx_users_total_points" json:"totalPoints"`

	// Rank is the user's 1-based position in the descending-points order.
	// It is rewritten on every ranking pass and is not authoritative
	// between passes.
	Rank int `gorm:"not null;default:0" json:"rank"`

	// CreatedAt is the timestamp when the user was created. It doubles as
	// the deterministic tie-breaker for equal point totals.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updatedAt"`
}
