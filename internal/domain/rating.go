package domain

import "time"

// Rating score bounds.
const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

// Rating represents one reviewer's rating of a provider. At most one rating
// exists per (reviewer, provider) pair; resubmission updates the row in place.
type Rating struct {
	ID         string    `json:"id"`
	ReviewerID string    `json:"reviewer_id"`
	ProviderID string    `json:"provider_id"`
	Score      int       `json:"score"`
	Review     string    `json:"review,omitempty"`
	Experience string    `json:"experience"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RatingSummary holds the derived aggregate for a provider's rating set.
type RatingSummary struct {
	ProviderID   string  `json:"provider_id"`
	AverageScore float64 `json:"average_score"`
	TotalRatings int     `json:"total_ratings"`
}

// IsValidScore checks that a score is within the allowed range.
func IsValidScore(score int) bool {
	return score >= MinRatingScore && score <= MaxRatingScore
}
