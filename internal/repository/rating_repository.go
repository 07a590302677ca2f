package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

type RatingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Insert saves a rating, recalculates the listing's average_rating in the
// same transaction, and fills the rating's id and created_at.
func (r *RatingRepository) Insert(ctx context.Context, rating *model.Rating) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("RatingRepository.BeginTxx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	rating.ID = uuid.NewString()
	const insertQuery = `
		INSERT INTO ratings (id, listing_id, rater_id, rated_user_id, rating, review)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	if err = tx.QueryRowxContext(ctx, insertQuery,
		rating.ID, rating.ListingID, rating.RaterID, rating.RatedUserID, rating.Rating, rating.Review,
	).Scan(&rating.CreatedAt); err != nil {
		return fmt.Errorf("RatingRepository.Insert: %w", err)
	}

	const updateQuery = `
		UPDATE listings
		SET average_rating = (
			SELECT COALESCE(AVG(rating)::numeric(3,2), 0) FROM ratings WHERE listing_id = $1
		)
		WHERE id = $1
	`
	if _, err = tx.ExecContext(ctx, updateQuery, rating.ListingID); err != nil {
		return fmt.Errorf("RatingRepository update avg: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("RatingRepository commit: %w", err)
	}
	return nil
}

// FindByListing returns a listing's ratings, newest first.
func (r *RatingRepository) FindByListing(ctx context.Context, listingID string) ([]model.Rating, error) {
	const q = `
		SELECT id, listing_id, rater_id, rated_user_id, rating, review, created_at
		FROM ratings
		WHERE listing_id = $1
		ORDER BY created_at DESC
	`
	var ratings []model.Rating
	if err := r.db.SelectContext(ctx, &ratings, q, listingID); err != nil {
		return nil, fmt.Errorf("RatingRepository.FindByListing: %w", err)
	}
	return ratings, nil
}

// FindByRatedUser returns the ratings a user received, newest first.
func (r *RatingRepository) FindByRatedUser(ctx context.Context, userID string) ([]model.Rating, error) {
	const q = `
		SELECT id, listing_id, rater_id, rated_user_id, rating, review, created_at
		FROM ratings
		WHERE rated_user_id = $1
		ORDER BY created_at DESC
	`
	var ratings []model.Rating
	if err := r.db.SelectContext(ctx, &ratings, q, userID); err != nil {
		return nil, fmt.Errorf("RatingRepository.FindByRatedUser: %w", err)
	}
	return ratings, nil
}

// UserSummary averages the ratings a user received, rounded to one decimal.
func (r *RatingRepository) UserSummary(ctx context.Context, userID string) (*model.RatingSummary, error) {
	var row struct {
		Avg   float64 `db:"avg"`
		Count int     `db:"count"`
	}
	const q = `
		SELECT COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count
		FROM ratings
		WHERE rated_user_id = $1
	`
	if err := r.db.GetContext(ctx, &row, q, userID); err != nil {
		return nil, fmt.Errorf("RatingRepository.UserSummary: %w", err)
	}
	return &model.RatingSummary{
		Average: math.Round(row.Avg*10) / 10,
		Count:   row.Count,
	}, nil
}
