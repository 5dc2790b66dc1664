package model

import "time"

// Rating bounds accepted for reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// MaxCommentLength is the longest review comment accepted, in characters.
const MaxCommentLength = 2000

// Review represents a row of the `reviews` table.
type Review struct {
	ID        uint64
	UserID    uint64
	StationID uint64
	Rating    int
	Comment   string
	ImageURL  string // empty when no image was uploaded
	CreatedAt time.Time
}

// ReviewView is a review joined with the names shown next to it.  Which
// name fields are filled depends on the listing: station pages carry the
// author's username, the profile page carries the station name and the
// admin panel carries both.
type ReviewView struct {
	Review
	Username    string
	StationName string
}

// ValidRating reports whether r lies within the accepted rating bounds.
func ValidRating(r int) bool { return r >= MinRating && r <= MaxRating }
