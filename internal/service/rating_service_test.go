package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

func TestCreateRating(t *testing.T) {
	listings := newFakeListingStore(model.Listing{ID: "a", OwnerID: "owner"})
	ratings := &fakeRatingStore{}
	svc := NewRatingService(ratings, listings)
	ctx := context.Background()

	r, err := svc.CreateRating(ctx, "rater", "a", 4, "  good  ")
	require.NoError(t, err)
	assert.Equal(t, "owner", r.RatedUserID)
	assert.Equal(t, "good", r.Review)
	assert.NotEmpty(t, r.ID)

	_, err = svc.CreateRating(ctx, "rater", "a", 6, "")
	assert.True(t, IsValidation(err))

	_, err = svc.CreateRating(ctx, "owner", "a", 5, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.CreateRating(ctx, "rater", "missing", 5, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CreateRating(ctx, "", "a", 5, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	list, err := svc.GetRatings(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetRatingsEmptyIsNotNil(t *testing.T) {
	svc := NewRatingService(&fakeRatingStore{}, newFakeListingStore(model.Listing{ID: "a"}))

	list, err := svc.GetRatings(context.Background(), "a")

	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestUserRatingsNewestFirst(t *testing.T) {
	listings := newFakeListingStore(
		model.Listing{ID: "a", OwnerID: "owner"},
		model.Listing{ID: "b", OwnerID: "owner"},
		model.Listing{ID: "c", OwnerID: "other"},
	)
	svc := NewRatingService(&fakeRatingStore{}, listings)
	ctx := context.Background()
	for _, id := range []string{"a", "c", "b"} {
		_, err := svc.CreateRating(ctx, "rater", id, 3, "")
		require.NoError(t, err)
	}

	list, err := svc.UserRatings(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ListingID)
	assert.Equal(t, "a", list[1].ListingID)

	none, err := svc.UserRatings(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
