package entity

import "time"

// PointHistory is an immutable record of one point claim. Entries form an
// append-only log; nothing in the system mutates or deletes them.
type PointHistory struct {
	// ID is the unique identifier for the history entry.
	ID uint `gorm:"primaryKey" json:"id"`

	// UserID references the user the claim belongs to.
	UserID uint `gorm:"not null;index:idx_point_histories_user_claimed,priority:1" json:"userId"`

	// UserName is the user's name captured at claim time. It is
	// denormalized on purpose and never updated afterwards.
	UserName string `gorm:"size:50;not null" json:"userName"`

	// PointsAwarded is the random award for this claim, always in [1,10].
	PointsAwarded int `gorm:"not null" json:"pointsAwarded"`

	// PreviousTotal is the user's point total before the claim.
	PreviousTotal int `gorm:"not null" json:"previousTotal"`

	// NewTotal is the user's point total after the claim.
	// Invariant: NewTotal == PreviousTotal + PointsAwarded.
	NewTotal int `gorm:"not null" json:"newTotal"`

	// ClaimedAt is the timestamp of the claim.
	ClaimedAt time.Time `gorm:"not null;index:idx_point_histories_user_claimed,priority:2;index" json:"claimedAt"`

	// CreatedAt is the timestamp when the record was written.
	CreatedAt time.Time `json:"createdAt"`
}
