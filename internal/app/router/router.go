// Package router wires the HTTP routes of the leaderboard service.
package router

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	lbhandler "leaderboard_backend/internal/feature/leaderboard/transport/handler"
	"leaderboard_backend/internal/platform/http/handler"
	"leaderboard_backend/internal/platform/ws"
)

// NewRouter builds the gin engine with CORS for the frontend origin, the
// REST endpoints and the websocket entry point.
func NewRouter(leaderboard *lbhandler.LeaderboardHandler, hub *ws.Hub) *gin.Engine {
	r := gin.Default()

	origin := os.Getenv("CORS_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000"
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{origin},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")
	{
		// Liveness probe
		api.GET("/health", handler.Health)

		// All users, freshly ranked on every read
		api.GET("/users", leaderboard.ListUsers)
		// Create a user
		api.POST("/users", leaderboard.CreateUser)
		// Claim random points for a user
		api.POST("/users/:userId/claim", leaderboard.Claim)
		// Paginated ranked leaderboard
		api.GET("/users/leaderboard", leaderboard.GetLeaderboard)
		// Paginated claim history, optionally filtered by user
		api.GET("/users/history", leaderboard.GetHistory)
	}

	// Live updates: clients join the leaderboard room over this connection
	r.GET("/ws", ws.ServeWS(hub))

	return r
}
