package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

// Users is the user directory as seen by the HTTP layer.
type Users interface {
	Search(ctx context.Context, term string, limit int) ([]model.User, error)
	Stats(ctx context.Context) (*model.UserStats, error)
}

type userSearchQuery struct {
	Term  string `form:"q"`
	Limit int    `form:"limit" binding:"min=0"`
}

type UserHandler struct {
	Users Users
}

func (h *UserHandler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/users", h.Search)
	public.GET("/stats/users", h.Stats)
}

// GET /api/users?q=...&limit=...
func (h *UserHandler) Search(c *gin.Context) {
	var q userSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "limit must be a positive number")
		return
	}
	users, err := h.Users.Search(c.Request.Context(), q.Term, q.Limit)
	if err != nil {
		failure{action: "Failed to search users."}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GET /api/stats/users
func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.Users.Stats(c.Request.Context())
	if err != nil {
		failure{action: "Failed to load statistics."}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
