package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

// UserDirectory is the user lookup collaborator behind search and stats.
type UserDirectory interface {
	Search(ctx context.Context, term string, limit int) ([]model.User, error)
	Count(ctx context.Context) (int, error)
}

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// UserService answers public questions about users.
type UserService struct {
	users    UserDirectory
	listings ListingStore
}

func NewUserService(users UserDirectory, listings ListingStore) *UserService {
	return &UserService{users: users, listings: listings}
}

// Search finds users whose full name or username contains term. Results
// are public profiles: email is left out.
func (s *UserService) Search(ctx context.Context, term string, limit int) ([]model.User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, invalid("q", "Search term is required")
	}
	if limit < 1 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	users, err := s.users.Search(ctx, term, limit)
	if err != nil {
		return nil, fmt.Errorf("UserService.Search: %w: %w", ErrUnavailable, err)
	}
	out := make([]model.User, len(users))
	for i, u := range users {
		u.Email = ""
		out[i] = u
	}
	return out, nil
}

// Stats counts all users, the distinct owners of any listing, and the
// distinct owners of a rented listing.
func (s *UserService) Stats(ctx context.Context) (*model.UserStats, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("UserService.Stats: %w: %w", ErrUnavailable, err)
	}
	all, err := s.listings.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("UserService.Stats: %w: %w", ErrUnavailable, err)
	}
	owners := map[string]struct{}{}
	renting := map[string]struct{}{}
	for _, l := range all {
		owners[l.OwnerID] = struct{}{}
		if l.IsRented {
			renting[l.OwnerID] = struct{}{}
		}
	}
	return &model.UserStats{
		TotalUsers:        total,
		UsersWithListings: len(owners),
		UsersWithRentals:  len(renting),
	}, nil
}
