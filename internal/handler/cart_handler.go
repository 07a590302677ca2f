package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aayush4jha/kirayawale-beta-version/internal/cart"
	"github.com/aayush4jha/kirayawale-beta-version/internal/contact"
	"github.com/aayush4jha/kirayawale-beta-version/internal/middleware"
	"github.com/aayush4jha/kirayawale-beta-version/internal/service"
)

const (
	cartCookie    = "cart_session"
	cartCookieAge = 30 * 24 * 60 * 60
)

// Carts is the cart service as seen by the HTTP layer.
type Carts interface {
	Cart(sessionID string) (*cart.Cart, error)
	Add(ctx context.Context, sessionID, listingID string, rentalDays int) (*cart.Cart, error)
	Remove(sessionID, listingID string) (*cart.Cart, error)
	UpdateQuantity(sessionID, listingID string, quantity int) (*cart.Cart, error)
	UpdateRentalDays(sessionID, listingID string, days int) (*cart.Cart, error)
	Clear(sessionID string) (*cart.Cart, error)
}

type CartResponse struct {
	Items      []cart.Entry `json:"items"`
	TotalPrice float64      `json:"total_price"`
	TotalItems int          `json:"total_items"`
	Warning    string       `json:"warning,omitempty"`
}

type AddToCartRequest struct {
	ListingID  string `json:"listing_id" binding:"required"`
	RentalDays int    `json:"rental_days"`
}

type QuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type RentalDaysRequest struct {
	RentalDays *int `json:"rental_days" binding:"required"`
}

// CartHandler exposes the caller's cart. Signed-in users are keyed by
// user id, everyone else by a cart_session cookie.
type CartHandler struct {
	Carts        Carts
	ContactPhone string
	SecureCookie bool
}

func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cart", h.GetCart)
	rg.DELETE("/cart", h.ClearCart)
	rg.POST("/cart/items", h.AddItem)
	rg.DELETE("/cart/items/:id", h.RemoveItem)
	rg.PATCH("/cart/items/:id/quantity", h.UpdateQuantity)
	rg.PATCH("/cart/items/:id/days", h.UpdateRentalDays)
	rg.GET("/cart/checkout", h.Checkout)
}

func (h *CartHandler) GetCart(c *gin.Context) {
	crt, err := h.Carts.Cart(h.session(c))
	if err != nil {
		failure{action: "Failed to load cart."}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(crt))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "listing_id is required")
		return
	}
	crt, err := h.Carts.Add(c.Request.Context(), h.session(c), req.ListingID, req.RentalDays)
	h.respond(c, crt, err, failure{
		action:   "Failed to add to cart.",
		notFound: listingNotFound,
		conflict: "This item is no longer available for rent.",
	})
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	crt, err := h.Carts.Remove(h.session(c), c.Param("id"))
	h.respond(c, crt, err, failure{action: "Failed to update cart."})
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity is required")
		return
	}
	crt, err := h.Carts.UpdateQuantity(h.session(c), c.Param("id"), *req.Quantity)
	h.respond(c, crt, err, failure{action: "Failed to update cart."})
}

func (h *CartHandler) UpdateRentalDays(c *gin.Context) {
	var req RentalDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "rental_days is required")
		return
	}
	crt, err := h.Carts.UpdateRentalDays(h.session(c), c.Param("id"), *req.RentalDays)
	h.respond(c, crt, err, failure{action: "Failed to update cart."})
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	crt, err := h.Carts.Clear(h.session(c))
	h.respond(c, crt, err, failure{action: "Failed to clear cart."})
}

// GET /api/cart/checkout returns the messaging link that hands the cart
// over to the marketplace.
func (h *CartHandler) Checkout(c *gin.Context) {
	crt, err := h.Carts.Cart(h.session(c))
	if err != nil {
		failure{action: "Failed to load cart."}.write(c, err)
		return
	}
	entries := crt.Entries()
	url, ok := contact.CheckoutLink(h.ContactPhone, entries, crt.TotalPrice())
	if !ok {
		badRequest(c, "Your cart is empty.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":         url,
		"message":     contact.CheckoutMessage(entries, crt.TotalPrice()),
		"total_price": crt.TotalPrice(),
	})
}

// respond reports the cart even when only persisting it failed: the
// change is kept in memory.
func (h *CartHandler) respond(c *gin.Context, crt *cart.Cart, err error, fail failure) {
	if err != nil && !(crt != nil && errors.Is(err, service.ErrUnavailable)) {
		fail.write(c, err)
		return
	}
	resp := cartResponse(crt)
	if err != nil {
		_ = c.Error(err)
		resp.Warning = "Your cart could not be saved. Changes may be lost."
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) session(c *gin.Context) string {
	if uid := middleware.UserID(c); uid != "" {
		return "user:" + uid
	}
	if id, err := c.Cookie(cartCookie); err == nil && uuid.Validate(id) == nil {
		return "anon:" + id
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cartCookie, id, cartCookieAge, "/", "", h.SecureCookie, true)
	return "anon:" + id
}

func cartResponse(crt *cart.Cart) CartResponse {
	return CartResponse{
		Items:      crt.Entries(),
		TotalPrice: crt.TotalPrice(),
		TotalItems: crt.TotalItems(),
	}
}
