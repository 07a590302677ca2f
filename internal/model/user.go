package model

import "time"

type User struct {
	ID                string    `db:"id" json:"id"`
	Username          string    `db:"username" json:"username"`
	FullName          string    `db:"full_name" json:"full_name"`
	Email             string    `db:"email" json:"email"`
	PhoneNumber       string    `db:"phone_number" json:"phone_number,omitempty"`
	City              string    `db:"city" json:"city,omitempty"`
	ProfilePictureURL string    `db:"profile_picture_url" json:"profile_picture_url,omitempty"`
	PasswordHash      string    `db:"password_hash" json:"-"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left untouched.
type ProfileUpdate struct {
	FullName          *string `json:"full_name,omitempty"`
	PhoneNumber       *string `json:"phone_number,omitempty"`
	City              *string `json:"city,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
}

// UserStats counts users and how many of them list or have rented out items.
type UserStats struct {
	TotalUsers        int `json:"totalUsers"`
	UsersWithListings int `json:"usersWithListings"`
	UsersWithRentals  int `json:"usersWithRentals"`
}
