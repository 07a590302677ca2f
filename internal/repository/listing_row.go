package repository

import (
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

// listingRow mirrors the listings table with every column nullable, so
// older or hand-edited rows still load.
type listingRow struct {
	ID                    string          `db:"id"`
	UserID                sql.NullString  `db:"user_id"`
	Title                 sql.NullString  `db:"title"`
	Category              sql.NullString  `db:"category"`
	Description           sql.NullString  `db:"description"`
	PricePerDay           sql.NullFloat64 `db:"price_per_day"`
	AvailabilityStartDate sql.NullTime    `db:"availability_start_date"`
	AvailabilityEndDate   sql.NullTime    `db:"availability_end_date"`
	Location              sql.NullString  `db:"location"`
	Photos                pq.StringArray  `db:"photos"`
	IsRented              sql.NullBool    `db:"is_rented"`
	IsActive              sql.NullBool    `db:"is_active"`
	AverageRating         sql.NullFloat64 `db:"average_rating"`
	CreatedAt             sql.NullTime    `db:"created_at"`
	UpdatedAt             sql.NullTime    `db:"updated_at"`
}

// normalizeListing is the single place row shape drift is absorbed.
// Missing values get the marketplace defaults: untitled, category Other,
// price 0, available from now, no photos, active and not rented.
func normalizeListing(row listingRow, now time.Time) model.Listing {
	l := model.Listing{
		ID:                    row.ID,
		OwnerID:               row.UserID.String,
		Title:                 "Untitled",
		Category:              model.CategoryOther,
		Description:           row.Description.String,
		AvailabilityStartDate: now,
		Location:              row.Location.String,
		Photos:                []string{},
		IsRented:              row.IsRented.Valid && row.IsRented.Bool,
		IsActive:              !row.IsActive.Valid || row.IsActive.Bool,
		AverageRating:         row.AverageRating.Float64,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if t := strings.TrimSpace(row.Title.String); t != "" {
		l.Title = t
	}
	if c := strings.TrimSpace(row.Category.String); c != "" {
		l.Category = model.Category(c)
	}
	if row.PricePerDay.Valid {
		l.PricePerDay = row.PricePerDay.Float64
	}
	if row.AvailabilityStartDate.Valid {
		l.AvailabilityStartDate = row.AvailabilityStartDate.Time
	}
	if row.AvailabilityEndDate.Valid {
		end := row.AvailabilityEndDate.Time
		l.AvailabilityEndDate = &end
	}
	if len(row.Photos) > 0 {
		l.Photos = []string(row.Photos)
	}
	if row.CreatedAt.Valid {
		l.CreatedAt = row.CreatedAt.Time
	}
	if row.UpdatedAt.Valid {
		l.UpdatedAt = row.UpdatedAt.Time
	}
	return l
}

func normalizeListings(rows []listingRow) []model.Listing {
	now := time.Now().UTC()
	out := make([]model.Listing, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeListing(row, now))
	}
	return out
}
