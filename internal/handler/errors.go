package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aayush4jha/kirayawale-beta-version/internal/auth"
	"github.com/aayush4jha/kirayawale-beta-version/internal/repository"
	"github.com/aayush4jha/kirayawale-beta-version/internal/service"
)

const (
	msgUnavailable      = "Service temporarily unavailable. Please try again in a moment."
	msgPermissionDenied = "Permission denied. Please sign out, sign back in, and try again."
	msgSignInRequired   = "You must be signed in. Please sign in and try again."
	msgConflict         = "This request conflicts with the current state. Please refresh and try again."
	msgInternal         = "Something went wrong. Please try again."
)

// failure describes how one endpoint reports errors. Empty fields fall
// back to the generic messages above.
type failure struct {
	action          string // "Failed to load listings."
	notFound        string
	conflict        string
	unauthenticated string
}

func (f failure) write(c *gin.Context, err error) {
	_ = c.Error(err)
	status, msg := f.translate(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (f failure) translate(err error) (int, string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message

	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, capitalize(err.Error())
	case errors.Is(err, auth.ErrEmailInUse):
		return http.StatusConflict, "This email is already registered. Please sign in instead."
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password."
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrNoUser),
		errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, or(f.unauthenticated, msgSignInRequired)

	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden, msgPermissionDenied
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, or(f.notFound, "Not found.")
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, or(f.conflict, msgConflict)
	case errors.Is(err, service.ErrUnavailable):
		if f.action != "" {
			return http.StatusServiceUnavailable, f.action + " " + msgUnavailable
		}
		return http.StatusServiceUnavailable, msgUnavailable
	}
	if f.action != "" {
		return http.StatusInternalServerError, f.action + " " + msgInternal
	}
	return http.StatusInternalServerError, msgInternal
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func or(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b) + "."
}
