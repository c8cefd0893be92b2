package models

import "time"

// ShortenResponse represents the response after creating (or re-submitting) a short link
type ShortenResponse struct {
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"` // Full short URL (base URL + short code)
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatsResponse represents the response for link statistics
type StatsResponse struct {
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
}

// TimelineBucket is one time bucket in the click timeline response
type TimelineBucket struct {
	Time  time.Time `json:"time"`
	Count int64     `json:"count"`
}
