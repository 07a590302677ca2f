package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aayush4jha/kirayawale-beta-version/internal/contact"
	"github.com/aayush4jha/kirayawale-beta-version/internal/middleware"
	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
	"github.com/aayush4jha/kirayawale-beta-version/internal/service"
)

// Listings is the listing service as seen by the HTTP layer.
type Listings interface {
	Browse(ctx context.Context, c model.FilterCriteria) ([]model.Listing, error)
	Featured(ctx context.Context, limit int) ([]model.Listing, error)
	Stats(ctx context.Context) (*model.ListingStats, error)
	Get(ctx context.Context, id string) (*model.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error)
	Create(ctx context.Context, actorID string, in service.ListingInput) (*model.Listing, error)
	Update(ctx context.Context, actorID, id string, u model.ListingUpdate) (*model.Listing, error)
	Delete(ctx context.Context, actorID, id string) error
	AddPhoto(ctx context.Context, actorID, id, url string) error
	CheckOwner(ctx context.Context, actorID, id string) error
}

const listingNotFound = "Listing not found."

// limitQuery binds an optional ?limit=. Zero means the service default.
type limitQuery struct {
	Limit int `form:"limit" binding:"min=0"`
}

// ListingHandler serves browse, detail and owner CRUD for listings.
type ListingHandler struct {
	Listings     Listings
	ContactPhone string
}

// RegisterRoutes registers the public routes on public and the
// owner-only routes on protected.
func (h *ListingHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/listings", h.Browse)
	public.GET("/featured/listings", h.Featured)
	public.GET("/listings/:id", h.GetListingByID)
	public.GET("/listings/:id/contact", h.Contact)
	public.GET("/users/:id/listings", h.ListByOwner)
	public.GET("/stats/listings", h.Stats)
	public.GET("/categories", h.Categories)

	protected.POST("/listings", h.CreateListing)
	protected.PUT("/listings/:id", h.UpdateListing)
	protected.DELETE("/listings/:id", h.DeleteListing)
}

// GET /api/listings?q=...&category=...&location=...&min_price=...&max_price=...
func (h *ListingHandler) Browse(c *gin.Context) {
	var criteria model.FilterCriteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		badRequest(c, "invalid filters")
		return
	}
	list, err := h.Listings.Browse(c.Request.Context(), criteria)
	if err != nil {
		failure{action: "Failed to load listings."}.write(c, err)
		return
	}
	if list == nil {
		list = []model.Listing{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/featured/listings?limit=...
func (h *ListingHandler) Featured(c *gin.Context) {
	var q limitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "limit must be a positive number")
		return
	}
	list, err := h.Listings.Featured(c.Request.Context(), q.Limit)
	if err != nil {
		failure{action: "Failed to load listings."}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/listings/:id
func (h *ListingHandler) GetListingByID(c *gin.Context) {
	l, err := h.Listings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failure{action: "Failed to load listing.", notFound: listingNotFound}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// GET /api/listings/:id/contact returns a pre-filled message link to the
// owner, or to the marketplace number when the owner left no phone.
func (h *ListingHandler) Contact(c *gin.Context) {
	l, err := h.Listings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failure{action: "Failed to load listing.", notFound: listingNotFound}.write(c, err)
		return
	}
	phone := h.ContactPhone
	if l.Owner != nil && l.Owner.PhoneNumber != "" {
		phone = l.Owner.PhoneNumber
	}
	c.JSON(http.StatusOK, gin.H{
		"url":     contact.OwnerLink(phone, *l),
		"message": contact.OwnerMessage(*l),
	})
}

// GET /api/users/:id/listings
func (h *ListingHandler) ListByOwner(c *gin.Context) {
	list, err := h.Listings.ListByOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		failure{action: "Failed to load listings."}.write(c, err)
		return
	}
	if list == nil {
		list = []model.Listing{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/stats/listings
func (h *ListingHandler) Stats(c *gin.Context) {
	stats, err := h.Listings.Stats(c.Request.Context())
	if err != nil {
		failure{action: "Failed to load statistics."}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /api/categories
func (h *ListingHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, model.Categories)
}

// POST /api/listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var req service.ListingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	l, err := h.Listings.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		failure{
			action:          "Failed to create listing.",
			conflict:        "Your listing is already being created. Please wait.",
			unauthenticated: "You must be signed in to create a listing. Please sign in and try again.",
		}.write(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// PUT /api/listings/:id
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	var req model.ListingUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	l, err := h.Listings.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		failure{action: "Failed to update listing.", notFound: listingNotFound}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// DELETE /api/listings/:id
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	if err := h.Listings.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		failure{action: "Failed to delete listing.", notFound: listingNotFound}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
