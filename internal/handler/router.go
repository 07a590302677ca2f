package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aayush4jha/kirayawale-beta-version/internal/middleware"
)

// Handlers groups every HTTP handler of the service. Nil handlers are
// not routed.
type Handlers struct {
	Health   *HealthHandler
	Auth     *AuthHandler
	Listings *ListingHandler
	Photos   *PhotoHandler
	Ratings  *RatingHandler
	Users    *UserHandler
	Cart     *CartHandler
}

// NewRouter builds the gin engine. Routes under /api are public,
// bearer-only, or (for the cart) optionally authenticated.
func NewRouter(log *zap.Logger, authn middleware.Authenticator, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	if h.Health != nil {
		r.GET("/health", h.Health.Health)
	}

	api := r.Group("/api")
	public := api.Group("/")
	protected := api.Group("/")
	protected.Use(middleware.JWTAuthMiddleware(authn))

	if h.Auth != nil {
		h.Auth.RegisterRoutes(public, protected)
	}
	if h.Listings != nil {
		h.Listings.RegisterRoutes(public, protected)
	}
	if h.Photos != nil {
		h.Photos.RegisterRoutes(public, protected)
	}
	if h.Ratings != nil {
		h.Ratings.RegisterRoutes(public, protected)
	}
	if h.Users != nil {
		h.Users.RegisterRoutes(public)
	}
	if h.Cart != nil {
		carts := api.Group("/")
		carts.Use(middleware.OptionalAuth(authn))
		h.Cart.RegisterRoutes(carts)
	}
	return r
}
