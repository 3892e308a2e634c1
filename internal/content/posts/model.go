package posts

import "time"

// Post statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Statuses lists every post status in display order.
var Statuses = []string{StatusDraft, StatusPublished, StatusArchived}

// Post represents a blog post.
type Post struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	IsFeatured  bool       `json:"is_featured"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
