package main

import (
	"log"
	"os"

	redisv9 "github.com/redis/go-redis/v9"

	"leaderboard_backend/internal/app/router"
	"leaderboard_backend/internal/feature/leaderboard/adapters"
	lbhandler "leaderboard_backend/internal/feature/leaderboard/transport/handler"
	"leaderboard_backend/internal/feature/leaderboard/usecase"
	"leaderboard_backend/internal/platform/cache"
	infradb "leaderboard_backend/internal/platform/db"
	infraredis "leaderboard_backend/internal/platform/redis"
	"leaderboard_backend/internal/platform/ws"
)

func main() {
	// db
	db := infradb.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	userRepo := adapters.NewUserGorm(db)
	historyRepo := adapters.NewHistoryGorm(db)

	// Leaderboard pages served through the Redis cache
	cachedUserRepo := cache.NewCachingUserRepository(rdb, 0, userRepo, "leaderboard")

	// Websocket hub for live updates
	hub := ws.NewHub()

	// Usecase
	leaderboardUC := usecase.NewLeaderboardUsecase(cachedUserRepo, historyRepo, hub)

	// Handler
	leaderboardH := lbhandler.NewLeaderboardHandler(leaderboardUC)

	// Router
	router := router.NewRouter(leaderboardH, hub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
