// Package queue defines the review event payload and the background
// consumer that records those events in a log file.
package queue

// ReviewCreatedQueue is the durable queue review events are routed to.
const ReviewCreatedQueue = "review.created"

// ReviewCreatedEvent is published after a review is stored.  It carries
// enough for a consumer to log or notify without reading the database.
type ReviewCreatedEvent struct {
	ReviewID    uint64 `json:"review_id"`
	UserID      uint64 `json:"user_id"`
	Username    string `json:"username"`
	StationID   uint64 `json:"station_id"`
	StationName string `json:"station_name"`
	Rating      int    `json:"rating"`
	ImageURL    string `json:"image_url,omitempty"`
	CreatedAt   string `json:"created_at"`
}
