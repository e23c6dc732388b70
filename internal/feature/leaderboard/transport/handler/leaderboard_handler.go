// Package handler provides the HTTP handlers for the leaderboard feature.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"leaderboard_backend/internal/feature/leaderboard/domain"
	"leaderboard_backend/internal/feature/leaderboard/domain/entity"
	"leaderboard_backend/internal/feature/leaderboard/transport/http/dto"
	"leaderboard_backend/internal/feature/leaderboard/usecase"
)

// LeaderboardUsecase defines the operations this handler needs.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type LeaderboardUsecase interface {
	CreateUser(ctx context.Context, name string) (*entity.User, error)
	ListUsers(ctx context.Context) ([]entity.User, error)
	Claim(ctx context.Context, userID uint) (*usecase.ClaimResult, error)
	GetLeaderboard(ctx context.Context, page, limit int) ([]entity.User, usecase.PageInfo, error)
	GetHistory(ctx context.Context, userID *uint, page, limit int) ([]entity.PointHistory, usecase.PageInfo, error)
}

// LeaderboardHandler translates HTTP requests into usecase calls and maps
// errors onto the response envelope.
type LeaderboardHandler struct {
	uc LeaderboardUsecase
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(uc LeaderboardUsecase) *LeaderboardHandler {
	return &LeaderboardHandler{uc: uc}
}

// ListUsers handles GET /api/users. The list is freshly ranked on every call.
func (h *LeaderboardHandler) ListUsers(c *gin.Context) {
	users, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.internalError(c, "Error fetching users", err)
		return
	}

	count := len(users)
	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Data:    users,
		Count:   &count,
	})
}

// CreateUser handles POST /api/users.
// - 400 when the body is malformed, the name is too short/long, or a user
//   with the same name (any letter case) already exists
// - 201 with the created, freshly ranked user on success
func (h *LeaderboardHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Response{
			Success: false,
			Message: domain.ErrNameTooShort.Error(),
		})
		return
	}

	user, err := h.uc.CreateUser(c.Request.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNameTooShort),
			errors.Is(err, domain.ErrNameTooLong),
			errors.Is(err, domain.ErrNameTaken):
			c.JSON(http.StatusBadRequest, dto.Response{Success: false, Message: err.Error()})
		default:
			h.internalError(c, "Error creating user", err)
		}
		return
	}

	slog.Info("user created", "id", user.ID, "name", user.Name)
	c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Message: "User created successfully",
		Data:    user,
	})
}

// Claim handles POST /api/users/:userId/claim.
// - 400 when the id is not a positive integer
// - 404 when no user has that id (nothing is persisted in that case)
// - 200 with the claim payload on success
func (h *LeaderboardHandler) Claim(c *gin.Context) {
	userID, err := parseID(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Response{
			Success: false,
			Message: "User ID must be a positive integer",
		})
		return
	}

	result, err := h.uc.Claim(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, dto.Response{Success: false, Message: "User not found"})
			return
		}
		h.internalError(c, "Error claiming points", err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: fmt.Sprintf("%d points awarded to %s!", result.PointsAwarded, result.User.Name),
		Data:    result,
	})
}

// GetLeaderboard handles GET /api/users/leaderboard?page=&limit=.
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	users, info, err := h.uc.GetLeaderboard(c.Request.Context(), page, limit)
	if err != nil {
		h.internalError(c, "Error fetching leaderboard", err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Data:    users,
		Pagination: dto.UserPagination{
			CurrentPage: info.CurrentPage,
			TotalPages:  info.TotalPages,
			TotalUsers:  info.TotalItems,
			HasNextPage: info.HasNextPage,
			HasPrevPage: info.HasPrevPage,
		},
	})
}

// GetHistory handles GET /api/users/history?userId=&page=&limit=.
func (h *LeaderboardHandler) GetHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	var userID *uint
	if raw := c.Query("userId"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.Response{
				Success: false,
				Message: "User ID must be a positive integer",
			})
			return
		}
		userID = &id
	}

	entries, info, err := h.uc.GetHistory(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.internalError(c, "Error fetching point history", err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Data:    entries,
		Pagination: dto.HistoryPagination{
			CurrentPage:  info.CurrentPage,
			TotalPages:   info.TotalPages,
			TotalHistory: info.TotalItems,
			HasNextPage:  info.HasNextPage,
			HasPrevPage:  info.HasPrevPage,
		},
	})
}

// internalError logs the cause and answers with a generic 500 envelope.
// The underlying error is never exposed to the caller.
func (h *LeaderboardHandler) internalError(c *gin.Context, message string, err error) {
	slog.Error(message, "error", err, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, dto.Response{
		Success: false,
		Message: message,
		Error:   "internal server error",
	})
}

// parseID parses a decimal user id from a path or query parameter.
func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return uint(id), nil
}
