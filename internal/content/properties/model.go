package properties

import "time"

// Listing statuses.
const (
	StatusAvailable = "available"
	StatusSold      = "sold"
	StatusRented    = "rented"
	StatusDraft     = "draft"
)

// Statuses lists every listing status in display order.
var Statuses = []string{StatusAvailable, StatusSold, StatusRented, StatusDraft}

// Property represents a real-estate listing.
type Property struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	PropertyTypeID int64     `json:"property_type_id"`
	Status         string    `json:"status"`
	Price          float64   `json:"price"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	Bedrooms       int       `json:"bedrooms"`
	Bathrooms      int       `json:"bathrooms"`
	IsActive       bool      `json:"is_active"`
	IsFeatured     bool      `json:"is_featured"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PropertyType is a listing category such as house or apartment.
type PropertyType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
