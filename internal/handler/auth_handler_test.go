package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aayush4jha/kirayawale-beta-version/internal/auth"
	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

type fakeSessions struct {
	users      map[string]*model.User
	signedOut  []auth.Principal
	fromGoogle []auth.ProviderProfile
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{users: map[string]*model.User{
		"alice": {ID: "alice", Email: "alice@example.com", FullName: "Alice"},
	}}
}

func (f *fakeSessions) SignUp(ctx context.Context, email, password string, fields auth.ProfileFields) (*auth.SignedIn, error) {
	if email == "alice@example.com" {
		return nil, auth.ErrEmailInUse
	}
	if len(password) < 6 {
		return nil, auth.ErrWeakPassword
	}
	u := &model.User{ID: "new", Email: email, FullName: fields.FullName}
	return &auth.SignedIn{Principal: auth.Principal{UserID: u.ID, Email: email}, Token: "new-token", Profile: u}, nil
}

func (f *fakeSessions) SignIn(ctx context.Context, email, password string) (*auth.SignedIn, error) {
	if email != "alice@example.com" || password != "secret1" {
		return nil, auth.ErrInvalidCredentials
	}
	return &auth.SignedIn{Principal: auth.Principal{UserID: "alice", Email: email}, Token: "alice-token", Profile: f.users["alice"]}, nil
}

func (f *fakeSessions) SignInWithProvider(ctx context.Context, p auth.ProviderProfile) (*auth.SignedIn, error) {
	f.fromGoogle = append(f.fromGoogle, p)
	return &auth.SignedIn{Principal: auth.Principal{UserID: "g1", Email: p.Email}, Token: "g-token"}, nil
}

func (f *fakeSessions) SignOut(ctx context.Context, p auth.Principal) error {
	f.signedOut = append(f.signedOut, p)
	return nil
}

func (f *fakeSessions) Profile(ctx context.Context, userID string) (*model.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, auth.ErrNoUser
	}
	return u, nil
}

func (f *fakeSessions) UpdateProfile(ctx context.Context, userID string, p model.ProfileUpdate) (*model.User, error) {
	u := f.users[userID]
	if p.City != nil {
		u.City = *p.City
	}
	return u, nil
}

type fakeProvider struct{}

func (fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (fakeProvider) Exchange(ctx context.Context, code string) (*auth.ProviderProfile, error) {
	if code != "good-code" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.ProviderProfile{Subject: "g-sub", Email: "gina@example.com", Name: "Gina"}, nil
}

func TestSignUpAndSignIn(t *testing.T) {
	sessions := newFakeSessions()
	env := newTestEnv(t, Handlers{Auth: &AuthHandler{Sessions: sessions, Log: zap.NewNop()}})

	tests := []struct {
		name   string
		path   string
		body   map[string]any
		status int
		errMsg string
	}{
		{"missing password", "/api/auth/signup", map[string]any{"email": "x@example.com"}, http.StatusBadRequest, "Email and password are required"},
		{"missing full name", "/api/auth/signup", map[string]any{"email": "x@example.com", "password": "secret1"}, http.StatusBadRequest, "Please enter your full name"},
		{"weak password", "/api/auth/signup", map[string]any{"email": "x@example.com", "password": "123", "full_name": "X"}, http.StatusBadRequest, "Password must be at least 6 characters."},
		{"email taken", "/api/auth/signup", map[string]any{"email": "alice@example.com", "password": "secret1", "full_name": "A"}, http.StatusConflict, "This email is already registered. Please sign in instead."},
		{"signed up", "/api/auth/signup", map[string]any{"email": "x@example.com", "password": "secret1", "full_name": "X"}, http.StatusCreated, ""},
		{"bad credentials", "/api/auth/signin", map[string]any{"email": "alice@example.com", "password": "nope"}, http.StatusUnauthorized, "Invalid email or password."},
		{"signed in", "/api/auth/signin", map[string]any{"email": "alice@example.com", "password": "secret1"}, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, request{method: http.MethodPost, path: tt.path, body: tt.body})
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.errMsg != "" {
				assert.Equal(t, tt.errMsg, errorMessage(t, w))
				return
			}
			out := decode[auth.SignedIn](t, w)
			assert.NotEmpty(t, out.Token)
			assert.NotEmpty(t, out.Principal.UserID)
		})
	}
}

func TestSignOutAndProfile(t *testing.T) {
	sessions := newFakeSessions()
	env := newTestEnv(t, Handlers{Auth: &AuthHandler{Sessions: sessions, Log: zap.NewNop()}})

	w := env.do(t, request{method: http.MethodGet, path: "/api/me"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, request{method: http.MethodGet, path: "/api/me", token: "alice-token"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", decode[model.User](t, w).FullName)

	w = env.do(t, request{method: http.MethodPut, path: "/api/me", token: "alice-token",
		body: map[string]any{"city": "Nagpur"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Nagpur", decode[model.User](t, w).City)

	w = env.do(t, request{method: http.MethodPost, path: "/api/auth/signout", token: "alice-token"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, sessions.signedOut, 1)
	assert.Equal(t, "alice", sessions.signedOut[0].UserID)
}

func TestGoogleSignIn(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		env := newTestEnv(t, Handlers{Auth: &AuthHandler{Sessions: newFakeSessions(), Log: zap.NewNop()}})
		w := env.do(t, request{method: http.MethodGet, path: "/api/auth/google/login"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	sessions := newFakeSessions()
	env := newTestEnv(t, Handlers{Auth: &AuthHandler{Sessions: sessions, Google: fakeProvider{}, Log: zap.NewNop()}})

	w := env.do(t, request{method: http.MethodGet, path: "/api/auth/google/login"})
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	var state *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == oauthStateCookie {
			state = c
		}
	}
	require.NotNil(t, state)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, state.Value, loc.Query().Get("state"))

	w = env.do(t, request{method: http.MethodGet, path: "/api/auth/google/callback?state=forged&code=good-code",
		cookies: []*http.Cookie{state}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, request{method: http.MethodGet, path: "/api/auth/google/callback?state=" + state.Value + "&code=bad",
		cookies: []*http.Cookie{state}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, request{method: http.MethodGet, path: "/api/auth/google/callback?state=" + state.Value + "&code=good-code",
		cookies: []*http.Cookie{state}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "g-token", decode[auth.SignedIn](t, w).Token)
	require.Len(t, sessions.fromGoogle, 1)
	assert.Equal(t, "gina@example.com", sessions.fromGoogle[0].Email)
}
