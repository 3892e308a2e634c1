package projects

import "time"

// Project represents a portfolio entry.
type Project struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Client    string    `json:"client"`
	Year      int       `json:"year"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
