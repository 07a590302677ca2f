// Package auth is the identity collaborator: it signs users up and in,
// issues and revokes session tokens, and publishes principal changes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/aayush4jha/kirayawale-beta-version/internal/events"
	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
	"github.com/aayush4jha/kirayawale-beta-version/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNoUser             = errors.New("no user signed in")
)

const minPasswordLen = 6

var bcryptCost = bcrypt.DefaultCost

// UserStore persists user profiles.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, p model.ProfileUpdate) error
}

// Principal is an authenticated user as carried by a session token.
type Principal struct {
	UserID    string    `json:"id"`
	Email     string    `json:"email"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProfileFields are the optional profile values supplied at sign-up.
type ProfileFields struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	City        string `json:"city"`
}

// SignedIn is returned by every successful sign-in path.
type SignedIn struct {
	Principal Principal   `json:"principal"`
	Token     string      `json:"access_token"`
	Profile   *model.User `json:"profile"`
}

// PrincipalEvent is published whenever a user signs in or out.
type PrincipalEvent struct {
	Principal Principal
	SignedIn  bool
}

// Session is the process-wide identity context. It is built once at
// start-up and handed to every component that needs the current principal.
type Session struct {
	users      UserStore
	secret     []byte
	ttl        time.Duration
	principals *events.Bus[PrincipalEvent]
	log        *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	revoked  map[string]time.Time
	profiles map[string]*model.User
}

func NewSession(users UserStore, secret string, ttl time.Duration, log *zap.Logger) *Session {
	s := &Session{
		users:      users,
		secret:     []byte(secret),
		ttl:        ttl,
		principals: events.NewBus[PrincipalEvent](),
		log:        log,
		now:        time.Now,
		revoked:    map[string]time.Time{},
		profiles:   map[string]*model.User{},
	}
	s.principals.Subscribe(func(e PrincipalEvent) {
		if !e.SignedIn {
			s.mu.Lock()
			delete(s.profiles, e.Principal.UserID)
			s.mu.Unlock()
		}
	})
	return s
}

// Subscribe registers fn for principal changes.
func (s *Session) Subscribe(fn func(PrincipalEvent)) (unsubscribe func()) {
	return s.principals.Subscribe(fn)
}

// SignUp registers a new email/password user and signs them in.
func (s *Session) SignUp(ctx context.Context, email, password string, fields ProfileFields) (*SignedIn, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("Session.SignUp: hash: %w", err)
	}

	id := uuid.NewString()
	u := newProfile(id, email, fields.FullName, "", "")
	u.PhoneNumber = strings.TrimSpace(fields.PhoneNumber)
	u.City = strings.TrimSpace(fields.City)
	u.PasswordHash = string(hash)

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("Session.SignUp: %w", err)
	}
	s.log.Info("user signed up", zap.String("user_id", id))
	return s.signIn(u)
}

// SignIn checks an email/password pair.
func (s *Session) SignIn(ctx context.Context, email, password string) (*SignedIn, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("Session.SignIn: %w", err)
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.signIn(u)
}

// ProviderProfile is what an external identity provider reports.
type ProviderProfile struct {
	Subject    string
	Email      string
	Name       string
	PictureURL string
}

// SignInWithProvider signs in a provider-verified user, creating their
// profile on first sign-in.
func (s *Session) SignInWithProvider(ctx context.Context, p ProviderProfile) (*SignedIn, error) {
	email, err := normalizeEmail(p.Email)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		u = newProfile(uuid.NewString(), email, "", p.Name, p.PictureURL)
		if err := s.users.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("Session.SignInWithProvider: %w", err)
		}
		s.log.Info("user created from provider", zap.String("user_id", u.ID), zap.String("subject", p.Subject))
	} else if err != nil {
		return nil, fmt.Errorf("Session.SignInWithProvider: %w", err)
	}
	return s.signIn(u)
}

// SignOut revokes the principal's token until it would have expired.
func (s *Session) SignOut(ctx context.Context, p Principal) error {
	if p.TokenID == "" {
		return ErrNoUser
	}
	s.mu.Lock()
	now := s.now()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[p.TokenID] = p.ExpiresAt
	s.mu.Unlock()

	s.principals.Publish(PrincipalEvent{Principal: p, SignedIn: false})
	s.log.Info("user signed out", zap.String("user_id", p.UserID))
	return nil
}

// Authenticate resolves a bearer token to its principal.
func (s *Session) Authenticate(token string) (*Principal, error) {
	p, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	_, revoked := s.revoked[p.TokenID]
	s.mu.Unlock()
	if revoked {
		return nil, ErrInvalidToken
	}
	return p, nil
}

// Profile returns the user's profile, cached while they are signed in.
func (s *Session) Profile(ctx context.Context, userID string) (*model.User, error) {
	s.mu.Lock()
	u, ok := s.profiles[userID]
	s.mu.Unlock()
	if ok {
		return u, nil
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Session.Profile: %w", err)
	}
	s.mu.Lock()
	s.profiles[userID] = u
	s.mu.Unlock()
	return u, nil
}

// UpdateProfile writes the changes and returns the refreshed profile.
func (s *Session) UpdateProfile(ctx context.Context, userID string, p model.ProfileUpdate) (*model.User, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	if err := s.users.UpdateProfile(ctx, userID, p); err != nil {
		return nil, fmt.Errorf("Session.UpdateProfile: %w", err)
	}
	s.mu.Lock()
	delete(s.profiles, userID)
	s.mu.Unlock()
	return s.Profile(ctx, userID)
}

func (s *Session) signIn(u *model.User) (*SignedIn, error) {
	token, p, err := s.issueToken(u)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.profiles[u.ID] = u
	s.mu.Unlock()
	s.principals.Publish(PrincipalEvent{Principal: *p, SignedIn: true})
	return &SignedIn{Principal: *p, Token: token, Profile: u}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
