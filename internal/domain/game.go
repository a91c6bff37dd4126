package domain

import "time"

const (
	RoundsPerGame = 5
	MaxRoundScore = 1000
	MaxGameScore  = RoundsPerGame * MaxRoundScore
)

// ScoreClaim is what the validator signs. Player is lower-cased.
type ScoreClaim struct {
	GameID string
	Score  uint64
	Player string
}

// ValidatorSignature is returned to the client and passed to mintScore.
type ValidatorSignature struct {
	Signature        string `json:"signature"`
	ValidatorAddress string `json:"validatorAddress"`
}

// Game is the persisted, immutable record of a finished and minted play session.
type Game struct {
	ID              string    `db:"id" json:"id"`
	CanonicalUserID string    `db:"canonical_user_id" json:"canonical_user_id"`
	TotalScore      int       `db:"total_score" json:"total_score"`
	EndedAt         time.Time `db:"ended_at" json:"ended_at"`
}

// Round is the optional per-round detail of a game.
type Round struct {
	ID         int64     `db:"id" json:"id"`
	GameID     string    `db:"game_id" json:"game_id"`
	PhotoID    *string   `db:"photo_id" json:"photo_id,omitempty"`
	RoundIndex int       `db:"round_index" json:"round_index"`
	YearGuess  int       `db:"year_guess" json:"year_guess"`
	YearTrue   int       `db:"year_true" json:"year_true"`
	DeltaYears int       `db:"delta_years" json:"delta_years"`
	Score      int       `db:"score" json:"score"`
	AnsweredAt time.Time `db:"answered_at" json:"answered_at"`
}

// ScoreEvent is published after a game has been persisted.
type ScoreEvent struct {
	GameID          string    `json:"gameId"`
	CanonicalUserID string    `json:"canonicalUserId"`
	DisplayName     string    `json:"displayName,omitempty"`
	Score           int       `json:"score"`
	Verified        bool      `json:"verified"`
	At              time.Time `json:"at"`
}
