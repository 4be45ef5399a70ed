package shortener

import "time"

// Code represents a short URL code.
type Code string

// URLHash represents a SHA-256 hash of a long URL, hex encoded.
type URLHash string

// ShortURL is the persisted mapping between a short code and its long URL.
type ShortURL struct {
	Code      Code
	LongURL   string
	URLHash   URLHash
	CreatedAt time.Time
}
