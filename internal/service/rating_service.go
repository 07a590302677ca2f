package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

// RatingStore is the ratings collaborator.
type RatingStore interface {
	Insert(ctx context.Context, r *model.Rating) error
	FindByListing(ctx context.Context, listingID string) ([]model.Rating, error)
	FindByRatedUser(ctx context.Context, userID string) ([]model.Rating, error)
	UserSummary(ctx context.Context, userID string) (*model.RatingSummary, error)
}

// RatingService contains business logic for ratings.
type RatingService struct {
	ratings  RatingStore
	listings ListingStore
}

func NewRatingService(rs RatingStore, ls ListingStore) *RatingService {
	return &RatingService{ratings: rs, listings: ls}
}

// CreateRating checks that the listing exists, stores the rating against
// the listing's owner, and returns it. Owners cannot rate themselves.
func (s *RatingService) CreateRating(ctx context.Context, raterID, listingID string, score int, review string) (*model.Rating, error) {
	if raterID == "" {
		return nil, fmt.Errorf("RatingService.CreateRating: %w", ErrUnauthenticated)
	}
	if score < 1 || score > 5 {
		return nil, invalid("rating", "Rating must be between 1 and 5")
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("RatingService.CreateRating: %w", lookupErr(err))
	}
	if listing.OwnerID == raterID {
		return nil, fmt.Errorf("RatingService.CreateRating: own listing: %w", ErrPermissionDenied)
	}

	r := &model.Rating{
		ListingID:   listingID,
		RaterID:     raterID,
		RatedUserID: listing.OwnerID,
		Rating:      score,
		Review:      strings.TrimSpace(review),
	}
	if err := s.ratings.Insert(ctx, r); err != nil {
		return nil, fmt.Errorf("RatingService.CreateRating: insert: %w: %w", ErrUnavailable, err)
	}
	return r, nil
}

// GetRatings returns the listing's ratings, newest first.
func (s *RatingService) GetRatings(ctx context.Context, listingID string) ([]model.Rating, error) {
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return nil, fmt.Errorf("RatingService.GetRatings: %w", lookupErr(err))
	}
	ratings, err := s.ratings.FindByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("RatingService.GetRatings: %w: %w", ErrUnavailable, err)
	}
	if ratings == nil {
		ratings = []model.Rating{}
	}
	return ratings, nil
}

// UserRatings returns the ratings a user received, newest first.
func (s *RatingService) UserRatings(ctx context.Context, userID string) ([]model.Rating, error) {
	ratings, err := s.ratings.FindByRatedUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("RatingService.UserRatings: %w: %w", ErrUnavailable, err)
	}
	if ratings == nil {
		ratings = []model.Rating{}
	}
	return ratings, nil
}

// UserSummary returns the average rating a user received.
func (s *RatingService) UserSummary(ctx context.Context, userID string) (*model.RatingSummary, error) {
	sum, err := s.ratings.UserSummary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("RatingService.UserSummary: %w: %w", ErrUnavailable, err)
	}
	return sum, nil
}
