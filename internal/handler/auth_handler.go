package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aayush4jha/kirayawale-beta-version/internal/auth"
	"github.com/aayush4jha/kirayawale-beta-version/internal/middleware"
	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

const oauthStateCookie = "oauth_state"

// Sessions is the identity collaborator as seen by the HTTP layer.
type Sessions interface {
	SignUp(ctx context.Context, email, password string, fields auth.ProfileFields) (*auth.SignedIn, error)
	SignIn(ctx context.Context, email, password string) (*auth.SignedIn, error)
	SignInWithProvider(ctx context.Context, p auth.ProviderProfile) (*auth.SignedIn, error)
	SignOut(ctx context.Context, p auth.Principal) error
	Profile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, p model.ProfileUpdate) (*model.User, error)
}

// Provider is an external OAuth2 identity provider.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.ProviderProfile, error)
}

type SignUpRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	auth.ProfileFields
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthHandler struct {
	Sessions     Sessions
	Google       Provider // nil when provider sign-in is not configured
	SecureCookie bool
	Log          *zap.Logger
}

func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/signup", h.SignUp)
	public.POST("/auth/signin", h.SignIn)
	public.GET("/auth/google/login", h.GoogleLogin)
	public.GET("/auth/google/callback", h.GoogleCallback)

	protected.POST("/auth/signout", h.SignOut)
	protected.GET("/me", h.Me)
	protected.PUT("/me", h.UpdateMe)
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and password are required")
		return
	}
	if req.FullName == "" {
		badRequest(c, "Please enter your full name")
		return
	}
	out, err := h.Sessions.SignUp(c.Request.Context(), req.Email, req.Password, req.ProfileFields)
	if err != nil {
		failure{action: "Failed to sign up."}.write(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and password are required")
		return
	}
	out, err := h.Sessions.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failure{action: "Failed to sign in."}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		failure{}.write(c, auth.ErrNoUser)
		return
	}
	if err := h.Sessions.SignOut(c.Request.Context(), *p); err != nil {
		failure{action: "Failed to sign out."}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// GET /api/auth/google/login redirects to the provider's consent page.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google sign-in is not configured"})
		return
	}
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/api/auth/google", "", h.SecureCookie, true)
	c.Redirect(http.StatusTemporaryRedirect, h.Google.AuthCodeURL(state))
}

// GET /api/auth/google/callback?state=...&code=...
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google sign-in is not configured"})
		return
	}
	if c.Query("error") != "" {
		badRequest(c, "Sign-in was cancelled. Please try again.")
		return
	}
	want, err := c.Cookie(oauthStateCookie)
	if err != nil || want == "" || c.Query("state") != want {
		badRequest(c, "Sign-in expired. Please try again.")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/api/auth/google", "", h.SecureCookie, true)

	profile, err := h.Google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.Log.Warn("google code exchange failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google sign-in failed. Please try again."})
		return
	}
	out, err := h.Sessions.SignInWithProvider(c.Request.Context(), *profile)
	if err != nil {
		failure{action: "Failed to sign in."}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Sessions.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		failure{action: "Failed to load profile.", notFound: "Profile not found."}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// PUT /api/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req model.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	u, err := h.Sessions.UpdateProfile(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		failure{action: "Failed to update profile.", notFound: "Profile not found."}.write(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
