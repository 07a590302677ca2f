package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aayush4jha/kirayawale-beta-version/internal/middleware"
	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

// Ratings is the rating service as seen by the HTTP layer.
type Ratings interface {
	CreateRating(ctx context.Context, raterID, listingID string, score int, review string) (*model.Rating, error)
	GetRatings(ctx context.Context, listingID string) ([]model.Rating, error)
	UserRatings(ctx context.Context, userID string) ([]model.Rating, error)
	UserSummary(ctx context.Context, userID string) (*model.RatingSummary, error)
}

// RatingRequestDTO is the JSON payload for rating a listing. The rater is
// taken from the bearer token.
type RatingRequestDTO struct {
	Rating int    `json:"rating" binding:"required"`
	Review string `json:"review"`
}

type RatingHandler struct {
	ratings Ratings
}

func NewRatingHandler(rs Ratings) *RatingHandler {
	return &RatingHandler{ratings: rs}
}

// RegisterRoutes registers:
//
//	GET  /api/listings/:id/ratings
//	POST /api/listings/:id/ratings
//	GET  /api/users/:id/rating
//	GET  /api/users/:id/ratings
func (h *RatingHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/listings/:id/ratings", h.GetRatings)
	public.GET("/users/:id/rating", h.UserRating)
	public.GET("/users/:id/ratings", h.UserRatings)
	protected.POST("/listings/:id/ratings", h.CreateRating)
}

func (h *RatingHandler) GetRatings(c *gin.Context) {
	ratings, err := h.ratings.GetRatings(c.Request.Context(), c.Param("id"))
	if err != nil {
		failure{action: "Failed to load ratings.", notFound: listingNotFound}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}

func (h *RatingHandler) CreateRating(c *gin.Context) {
	var req RatingRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Rating must be between 1 and 5")
		return
	}
	r, err := h.ratings.CreateRating(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Rating, req.Review)
	if err != nil {
		failure{action: "Failed to save rating.", notFound: listingNotFound}.write(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *RatingHandler) UserRating(c *gin.Context) {
	sum, err := h.ratings.UserSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		failure{action: "Failed to load rating."}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *RatingHandler) UserRatings(c *gin.Context) {
	ratings, err := h.ratings.UserRatings(c.Request.Context(), c.Param("id"))
	if err != nil {
		failure{action: "Failed to load ratings."}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}
