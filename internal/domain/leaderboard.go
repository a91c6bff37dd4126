package domain

type LeaderboardType string

const (
	LeaderboardTopScore     LeaderboardType = "top_score"
	LeaderboardBestAccuracy LeaderboardType = "best_accuracy"
)

// LeaderboardEntry is a ranked row. AvgDelta is set only for best_accuracy.
type LeaderboardEntry struct {
	Rank            int      `json:"rank"`
	CanonicalUserID string   `db:"canonical_user_id" json:"canonical_user_id"`
	DisplayName     *string  `db:"display_name" json:"display_name"`
	AvatarURL       *string  `db:"avatar_url" json:"avatar_url"`
	Score           int      `db:"score" json:"score"`
	AvgDelta        *float64 `db:"avg_delta" json:"avg_delta,omitempty"`
}
