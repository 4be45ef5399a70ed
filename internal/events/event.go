package events

import "time"

// TopicURLShortened is the topic new mappings are announced on.
const TopicURLShortened = "url.shortened"

// URLShortened is emitted once when a new mapping is written.
// Reused mappings do not emit it.
type URLShortened struct {
	Code      string    `json:"code"`
	LongURL   string    `json:"longUrl"`
	CreatedAt time.Time `json:"createdAt"`
	RequestID string    `json:"requestId,omitempty"`
}
