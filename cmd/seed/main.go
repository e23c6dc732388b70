package main

import (
	"context"
	"errors"
	"log"
	"time"

	"leaderboard_backend/internal/feature/leaderboard/adapters"
	"leaderboard_backend/internal/feature/leaderboard/domain"
	"leaderboard_backend/internal/feature/leaderboard/domain/entity"
	"leaderboard_backend/internal/feature/leaderboard/usecase"
	infradb "leaderboard_backend/internal/platform/db"
)

// initialUsers is the canonical starting roster. Seeding is idempotent:
// users that already exist are left untouched.
var initialUsers = []string{
	"Rahul", "Kamal", "Sanak", "Priya", "Amit",
	"Sneha", "Vikram", "Anita", "Rajesh", "Meera",
}

func main() {
	db := infradb.OpenDB()

	userRepo := adapters.NewUserGorm(db)
	historyRepo := adapters.NewHistoryGorm(db)
	uc := usecase.NewLeaderboardUsecase(userRepo, historyRepo, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created := 0
	for _, name := range initialUsers {
		if _, err := userRepo.FindByNameFold(ctx, name); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			log.Fatal("failed to check existing user:", err)
		}
		if err := userRepo.Create(ctx, &entity.User{Name: name}); err != nil {
			log.Fatal("failed to seed user:", err)
		}
		created++
	}

	if _, err := uc.RecomputeRanks(ctx); err != nil {
		log.Fatal("failed to rank seeded users:", err)
	}

	log.Printf("seed ok: %d users created, %d already present", created, len(initialUsers)-created)
}
