package models

// ShortenRequest represents the request body for creating a short link
type ShortenRequest struct {
	URL   string  `json:"url" binding:"required"`
	Alias *string `json:"alias,omitempty"` // Optional custom short code
}
