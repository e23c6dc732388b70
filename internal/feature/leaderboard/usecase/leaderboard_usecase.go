// Package usecase implements the business logic for the leaderboard feature:
// user creation, point claims, rank recomputation and paginated queries.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"leaderboard_backend/internal/feature/leaderboard/domain"
	"leaderboard_backend/internal/feature/leaderboard/domain/entity"
)

const (
	// minNameLength and maxNameLength bound a user name after trimming.
	minNameLength = 2
	maxNameLength = 50

	// maxAwardPoints is the upper bound of a single random award.
	maxAwardPoints = 10

	// defaultLeaderboardLimit and defaultHistoryLimit apply when the
	// caller omits a page size.
	defaultLeaderboardLimit = 10
	defaultHistoryLimit     = 20

	// maxPageLimit caps caller-supplied page sizes. The original service
	// accepted unbounded limits; clamping is a deliberate deviation.
	maxPageLimit = 100
)

const (
	// RoomLeaderboard is the logical channel live clients join to receive
	// leaderboard updates.
	RoomLeaderboard = "leaderboard"

	// EventLeaderboardUpdate is emitted to RoomLeaderboard once per
	// successful claim.
	EventLeaderboardUpdate = "leaderboardUpdate"
)

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user to the storage.
	Create(ctx context.Context, user *entity.User) error

	// FindByID retrieves a user by id. It returns domain.ErrUserNotFound
	// if no such user exists.
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindByNameFold retrieves a user whose name matches case-insensitively.
	// It returns domain.ErrUserNotFound if no such user exists.
	FindByNameFold(ctx context.Context, name string) (*entity.User, error)

	// ListRanked returns all users ordered by total points descending,
	// with ties broken by creation time then id.
	ListRanked(ctx context.Context) ([]entity.User, error)

	// ListPage returns one page of users in the same order as ListRanked.
	ListPage(ctx context.Context, offset, limit int) ([]entity.User, error)

	// Count returns the total number of users.
	Count(ctx context.Context) (int64, error)

	// UpdateRank writes a user's rank without touching other columns.
	UpdateRank(ctx context.Context, id uint, rank int) error

	// AddPoints atomically increments a user's total points at the store
	// and returns the refreshed row. It returns domain.ErrUserNotFound if
	// no such user exists.
	AddPoints(ctx context.Context, id uint, points int) (*entity.User, error)
}

// HistoryRepository abstracts the persistence layer for the append-only
// point claim log.
type HistoryRepository interface {
	// Create persists a new history entry.
	Create(ctx context.Context, entry *entity.PointHistory) error

	// List returns one page of entries ordered by claim time descending,
	// optionally filtered to a single user.
	List(ctx context.Context, userID *uint, offset, limit int) ([]entity.PointHistory, error)

	// Count returns the number of entries, optionally filtered to a
	// single user.
	Count(ctx context.Context, userID *uint) (int64, error)
}

// Broadcaster pushes events to live subscribers of a named room. The hub is
// injected here so the usecase never touches connection state directly.
type Broadcaster interface {
	// Publish delivers an event to every current subscriber of the room.
	// Delivery is best effort and must never block the caller.
	Publish(room, event string, data any)
}

// ClaimResult is the payload returned by a successful claim.
type ClaimResult struct {
	User          *entity.User `json:"user"`
	PointsAwarded int          `json:"pointsAwarded"`
	PreviousTotal int          `json:"previousTotal"`
	NewTotal      int          `json:"newTotal"`
	HistoryID     uint         `json:"historyId"`
}

// LastClaim summarizes the most recent claim inside a broadcast event.
type LastClaim struct {
	User          *entity.User `json:"user"`
	PointsAwarded int          `json:"pointsAwarded"`
	Timestamp     time.Time    `json:"timestamp"`
}

// LeaderboardUpdate is the event body broadcast to RoomLeaderboard after
// each successful claim.
type LeaderboardUpdate struct {
	Users     []entity.User `json:"users"`
	LastClaim LastClaim     `json:"lastClaim"`
}

// PageInfo carries pagination metadata for list queries.
type PageInfo struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	HasNextPage bool
	HasPrevPage bool
}

// LeaderboardUsecase orchestrates claims, ranking and queries over the
// injected repositories and broadcaster.
type LeaderboardUsecase struct {
	users       UserRepository
	history     HistoryRepository
	broadcaster Broadcaster

	// award draws one claim award. Uniform over [1,10] in production;
	// overridable in tests.
	award func() int
}

// NewLeaderboardUsecase creates a new LeaderboardUsecase. The broadcaster
// may be nil, in which case claims complete without emitting live updates.
func NewLeaderboardUsecase(users UserRepository, history HistoryRepository, broadcaster Broadcaster) *LeaderboardUsecase {
	return &LeaderboardUsecase{
		users:       users,
		history:     history,
		broadcaster: broadcaster,
		award:       func() int { return rand.Intn(maxAwardPoints) + 1 },
	}
}

// CreateUser validates and persists a new user with zero points, then runs a
// ranking pass so the newcomer is ranked immediately.
func (u *LeaderboardUsecase) CreateUser(ctx context.Context, name string) (*entity.User, error) {
	name = strings.TrimSpace(name)
	switch n := utf8.RuneCountInString(name); {
	case n < minNameLength:
		return nil, domain.ErrNameTooShort
	case n > maxNameLength:
		return nil, domain.ErrNameTooLong
	}

	// Names are unique regardless of letter case: "Alice" blocks "alice".
	if _, err := u.users.FindByNameFold(ctx, name); err == nil {
		return nil, domain.ErrNameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check name uniqueness: %w", err)
	}

	user := &entity.User{Name: name, TotalPoints: 0}
	if err := u.users.Create(ctx, user); err != nil {
		// The store enforces the same uniqueness rule, so a create racing
		// past the pre-check still surfaces as a name conflict.
		if errors.Is(err, domain.ErrNameTaken) {
			return nil, domain.ErrNameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	ranked, err := u.RecomputeRanks(ctx)
	if err != nil {
		return nil, err
	}
	if fresh := findByID(ranked, user.ID); fresh != nil {
		return fresh, nil
	}
	return user, nil
}

// ListUsers returns every user, freshly ranked. A full ranking pass runs
// first so the response is consistent with the latest point totals.
func (u *LeaderboardUsecase) ListUsers(ctx context.Context) ([]entity.User, error) {
	return u.RecomputeRanks(ctx)
}

// Claim awards a random number of points to the given user, appends a
// history entry, recomputes all ranks and notifies live subscribers.
//
// The returned rank reflects the post-recomputation state, not the rank the
// user held before the claim.
func (u *LeaderboardUsecase) Claim(ctx context.Context, userID uint) (*ClaimResult, error) {
	points := u.award()

	// The increment happens at the store so concurrent claims for the same
	// user cannot overwrite each other's award.
	updated, err := u.users.AddPoints(ctx, userID, points)
	if err != nil {
		return nil, err
	}

	entry := &entity.PointHistory{
		UserID:        updated.ID,
		UserName:      updated.Name,
		PointsAwarded: points,
		PreviousTotal: updated.TotalPoints - points,
		NewTotal:      updated.TotalPoints,
		ClaimedAt:     time.Now(),
	}
	if err := u.history.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record claim history: %w", err)
	}

	ranked, err := u.RecomputeRanks(ctx)
	if err != nil {
		return nil, err
	}
	if fresh := findByID(ranked, updated.ID); fresh != nil {
		updated = fresh
	}

	result := &ClaimResult{
		User:          updated,
		PointsAwarded: points,
		PreviousTotal: entry.PreviousTotal,
		NewTotal:      entry.NewTotal,
		HistoryID:     entry.ID,
	}

	// Fire-and-forget: the claim response never waits on delivery and a
	// failed or unheard broadcast is not an error.
	if u.broadcaster != nil {
		u.broadcaster.Publish(RoomLeaderboard, EventLeaderboardUpdate, LeaderboardUpdate{
			Users: ranked,
			LastClaim: LastClaim{
				User:          updated,
				PointsAwarded: points,
				Timestamp:     entry.ClaimedAt,
			},
		})
	}

	return result, nil
}

// RecomputeRanks reads the full user set in descending-points order, assigns
// dense 1-based ranks and writes each rank through to the store.
//
// Rank writes are not wrapped in a transaction: if one write fails the pass
// aborts and ranks already written stay in place. Every pass rewrites all
// ranks, so the next successful pass heals a partial one.
func (u *LeaderboardUsecase) RecomputeRanks(ctx context.Context) ([]entity.User, error) {
	users, err := u.users.ListRanked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users for ranking: %w", err)
	}

	for i := range users {
		rank := i + 1
		if users[i].Rank == rank {
			continue
		}
		if err := u.users.UpdateRank(ctx, users[i].ID, rank); err != nil {
			return nil, fmt.Errorf("failed to update rank for user %d: %w", users[i].ID, err)
		}
		users[i].Rank = rank
	}

	return users, nil
}

// GetLeaderboard returns one page of users sorted by total points descending
// together with pagination metadata.
func (u *LeaderboardUsecase) GetLeaderboard(ctx context.Context, page, limit int) ([]entity.User, PageInfo, error) {
	page, limit = normalizePage(page, limit, defaultLeaderboardLimit)

	users, err := u.users.ListPage(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to list leaderboard page: %w", err)
	}
	total, err := u.users.Count(ctx)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to count users: %w", err)
	}

	return users, buildPageInfo(page, limit, total), nil
}

// GetHistory returns one page of claim history sorted by claim time
// descending, optionally filtered to a single user.
func (u *LeaderboardUsecase) GetHistory(ctx context.Context, userID *uint, page, limit int) ([]entity.PointHistory, PageInfo, error) {
	page, limit = normalizePage(page, limit, defaultHistoryLimit)

	entries, err := u.history.List(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to list history page: %w", err)
	}
	total, err := u.history.Count(ctx, userID)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to count history: %w", err)
	}

	return entries, buildPageInfo(page, limit, total), nil
}

// normalizePage replaces non-positive page/limit values with defaults and
// clamps the limit to maxPageLimit.
func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// buildPageInfo derives pagination metadata from a page, limit and total.
func buildPageInfo(page, limit int, total int64) PageInfo {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return PageInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// findByID returns a pointer into users for the matching id, or nil.
func findByID(users []entity.User, id uint) *entity.User {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}
