package model

import "time"

// Category is one of the fixed listing categories.
type Category string

const (
	CategoryElectronics        Category = "Electronics"
	CategoryFurniture          Category = "Furniture"
	CategoryVehicles           Category = "Vehicles"
	CategoryTools              Category = "Tools"
	CategorySportsEquipment    Category = "Sports Equipment"
	CategoryMusicalInstruments Category = "Musical Instruments"
	CategoryCameras            Category = "Cameras"
	CategoryBooks              Category = "Books"
	CategoryClothing           Category = "Clothing"
	CategoryHomeAppliances     Category = "Home Appliances"
	CategoryOther              Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryFurniture,
	CategoryVehicles,
	CategoryTools,
	CategorySportsEquipment,
	CategoryMusicalInstruments,
	CategoryCameras,
	CategoryBooks,
	CategoryClothing,
	CategoryHomeAppliances,
	CategoryOther,
}

// Valid reports whether c is one of Categories. Matching is exact.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Listing struct {
	ID                    string     `json:"id"`
	OwnerID               string     `json:"user_id"`
	Title                 string     `json:"title"`
	Category              Category   `json:"category"`
	Description           string     `json:"description"`
	PricePerDay           float64    `json:"price_per_day"`
	AvailabilityStartDate time.Time  `json:"availability_start_date"`
	AvailabilityEndDate   *time.Time `json:"availability_end_date,omitempty"`
	Location              string     `json:"location"`
	Photos                []string   `json:"photos"`
	IsRented              bool       `json:"is_rented"`
	IsActive              bool       `json:"is_active"`
	AverageRating         float64    `json:"average_rating"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	Owner                 *User      `json:"user,omitempty"`
}

// Eligible reports whether the listing can be shown and rented.
func (l Listing) Eligible() bool {
	return l.IsActive && !l.IsRented
}

// ListingUpdate carries a partial update. Nil fields are left untouched.
type ListingUpdate struct {
	Title                 *string    `json:"title,omitempty"`
	Category              *Category  `json:"category,omitempty"`
	Description           *string    `json:"description,omitempty"`
	PricePerDay           *float64   `json:"price_per_day,omitempty"`
	AvailabilityStartDate *time.Time `json:"availability_start_date,omitempty"`
	AvailabilityEndDate   *time.Time `json:"availability_end_date,omitempty"`
	Location              *string    `json:"location,omitempty"`
	Photos                []string   `json:"photos,omitempty"`
	IsRented              *bool      `json:"is_rented,omitempty"`
	IsActive              *bool      `json:"is_active,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ListingUpdate) Empty() bool {
	return u.Title == nil && u.Category == nil && u.Description == nil &&
		u.PricePerDay == nil && u.AvailabilityStartDate == nil &&
		u.AvailabilityEndDate == nil && u.Location == nil && u.Photos == nil &&
		u.IsRented == nil && u.IsActive == nil
}

// FilterCriteria holds the browse filters exactly as the user typed them.
type FilterCriteria struct {
	SearchQuery string   `form:"q" json:"searchQuery"`
	Category    Category `form:"category" json:"category"`
	Location    string   `form:"location" json:"location"`
	MinPrice    string   `form:"min_price" json:"minPrice"`
	MaxPrice    string   `form:"max_price" json:"maxPrice"`
}

// ListingStats summarises the whole listings collection.
type ListingStats struct {
	TotalListings  int              `json:"totalListings"`
	ActiveListings int              `json:"activeListings"`
	RentedListings int              `json:"rentedListings"`
	CategoryCounts map[Category]int `json:"categoryCounts"`
}
