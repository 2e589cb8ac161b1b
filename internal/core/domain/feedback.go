package domain

import "time"

// Rating is a user's judgement of an answer.
type Rating string

// Available ratings.
const (
	RatingGood Rating = "good"
	RatingBad  Rating = "bad"
)

// IsValid returns true if the rating is recognised.
func (r Rating) IsValid() bool {
	return r == RatingGood || r == RatingBad
}

// Label returns the label written to the feedback log.
func (r Rating) Label() string {
	switch r {
	case RatingGood:
		return "👍 Buena respuesta"
	case RatingBad:
		return "👎 Mala respuesta"
	default:
		return string(r)
	}
}

// ParseRating accepts the CLI spellings of a rating.
func ParseRating(s string) (Rating, bool) {
	switch s {
	case "good", "g", "up", "+", "y", "yes", "👍":
		return RatingGood, true
	case "bad", "b", "down", "-", "n", "no", "👎":
		return RatingBad, true
	default:
		return "", false
	}
}

// FeedbackEntry is one row of the feedback log.
type FeedbackEntry struct {
	Timestamp time.Time
	Question  string
	Answer    string
	Context   string
	Rating    string
}
