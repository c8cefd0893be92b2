package entities

import "time"

// Link represents a short-code to original-URL mapping in the database
type Link struct {
	ID          string    `json:"id"` // UUID
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	UserID      *string   `json:"user_id,omitempty"` // Pointer allows nil (for anonymous links), UUID
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClickBucket is one aggregated time bucket of redirect events
type ClickBucket struct {
	Time  time.Time `json:"time"`
	Count int64     `json:"count"`
}
