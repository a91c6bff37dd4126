package repository

import (
	"context"

	"timeguesser/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeaderboardRepository struct {
	db *pgxpool.Pool
}

func NewLeaderboardRepository(db *pgxpool.Pool) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// TopScore ranks users by their best game score.
func (r *LeaderboardRepository) TopScore(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT canonical_user_id, display_name, avatar_url, score, NULL::float8
		 FROM leaderboard_top_score
		 ORDER BY score DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeaderboard(rows)
}

// BestAccuracy ranks users by lowest average year delta.
func (r *LeaderboardRepository) BestAccuracy(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT canonical_user_id, display_name, avatar_url, score, avg_delta
		 FROM leaderboard_best_accuracy
		 ORDER BY avg_delta ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeaderboard(rows)
}

func scanLeaderboard(rows pgx.Rows) ([]domain.LeaderboardEntry, error) {
	res := make([]domain.LeaderboardEntry, 0)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.CanonicalUserID, &e.DisplayName, &e.AvatarURL, &e.Score, &e.AvgDelta); err != nil {
			return nil, err
		}
		e.Rank = len(res) + 1
		res = append(res, e)
	}
	return res, rows.Err()
}
