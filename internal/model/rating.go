package model

import "time"

// Rating is a user's score for a listing and, through it, for the listing's owner.
type Rating struct {
	ID          string    `db:"id" json:"id"`
	ListingID   string    `db:"listing_id" json:"listingId"`
	RaterID     string    `db:"rater_id" json:"raterId"`
	RatedUserID string    `db:"rated_user_id" json:"ratedUserId"`
	Rating      int       `db:"rating" json:"rating"`
	Review      string    `db:"review" json:"review,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// RatingSummary is the rounded average over a user's ratings.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}
