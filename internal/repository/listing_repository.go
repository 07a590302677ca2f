package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

// ErrNotFound is returned when a keyed record does not exist.
var ErrNotFound = errors.New("record not found")

type ListingRepository struct {
	DB *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{DB: db}
}

const listingColumns = `id, user_id, title, category, description, price_per_day,
	availability_start_date, availability_end_date, location, photos,
	is_rented, is_active, average_rating, created_at, updated_at`

// Все объявления, новые первыми
func (r *ListingRepository) FetchAll(ctx context.Context) ([]model.Listing, error) {
	var rows []listingRow
	err := r.DB.SelectContext(ctx, &rows, `
		SELECT `+listingColumns+` FROM listings
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.FetchAll: %w", err)
	}
	return normalizeListings(rows), nil
}

// Объявления одного владельца
func (r *ListingRepository) FetchByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	var rows []listingRow
	err := r.DB.SelectContext(ctx, &rows, `
		SELECT `+listingColumns+` FROM listings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.FetchByOwner: %w", err)
	}
	return normalizeListings(rows), nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	var row listingRow
	err := r.DB.GetContext(ctx, &row, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ListingRepository.GetByID %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.GetByID: %w", err)
	}
	l := normalizeListing(row, time.Now().UTC())
	return &l, nil
}

// Create inserts l with a fresh id and server timestamps, and returns the id.
func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) (string, error) {
	id := uuid.NewString()
	err := r.DB.QueryRowxContext(ctx, `
		INSERT INTO listings
			(id, user_id, title, category, description, price_per_day,
			 availability_start_date, availability_end_date, location, photos,
			 is_rented, is_active, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING created_at, updated_at
	`,
		id, l.OwnerID, l.Title, string(l.Category), l.Description, l.PricePerDay,
		l.AvailabilityStartDate, l.AvailabilityEndDate, l.Location, pq.StringArray(l.Photos),
		l.IsRented, l.IsActive,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("ListingRepository.Create: %w", err)
	}
	return id, nil
}

// Update writes only the fields set in u and bumps updated_at.
func (r *ListingRepository) Update(ctx context.Context, id string, u model.ListingUpdate) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(column string, v interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, v)
		idx++
	}

	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Category != nil {
		add("category", string(*u.Category))
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.PricePerDay != nil {
		add("price_per_day", *u.PricePerDay)
	}
	if u.AvailabilityStartDate != nil {
		add("availability_start_date", *u.AvailabilityStartDate)
	}
	if u.AvailabilityEndDate != nil {
		add("availability_end_date", *u.AvailabilityEndDate)
	}
	if u.Location != nil {
		add("location", *u.Location)
	}
	if u.Photos != nil {
		add("photos", pq.StringArray(u.Photos))
	}
	if u.IsRented != nil {
		add("is_rented", *u.IsRented)
	}
	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}
	sets = append(sets, "updated_at = now()")

	query := fmt.Sprintf("UPDATE listings SET %s WHERE id = $%d", strings.Join(sets, ", "), idx)
	args = append(args, id)

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ListingRepository.Update: %w", err)
	}
	return expectOne(res, "ListingRepository.Update", id)
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ListingRepository.Delete: %w", err)
	}
	return expectOne(res, "ListingRepository.Delete", id)
}

// AppendPhoto adds a photo URL to the end of the listing's photos.
func (r *ListingRepository) AppendPhoto(ctx context.Context, listingID, url string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE listings
		SET photos = array_append(COALESCE(photos, '{}'), $1), updated_at = now()
		WHERE id = $2
	`, url, listingID)
	if err != nil {
		return fmt.Errorf("ListingRepository.AppendPhoto: %w", err)
	}
	return expectOne(res, "ListingRepository.AppendPhoto", listingID)
}

func expectOne(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return nil
}
