package repository

import (
	"context"
	"fmt"

	"timeguesser/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoundRepository struct {
	db *pgxpool.Pool
}

func NewRoundRepository(db *pgxpool.Pool) *RoundRepository {
	return &RoundRepository{db: db}
}

// CreateBatch inserts all rounds of a game in one round trip.
func (r *RoundRepository) CreateBatch(ctx context.Context, rounds []domain.Round) error {
	if len(rounds) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rd := range rounds {
		batch.Queue(
			`INSERT INTO rounds (game_id, photo_id, round_index, year_guess, year_true, delta_years, score, answered_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (game_id, round_index) DO NOTHING`,
			rd.GameID, rd.PhotoID, rd.RoundIndex, rd.YearGuess, rd.YearTrue, rd.DeltaYears, rd.Score, rd.AnsweredAt,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := range rounds {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert round %d: %w", rounds[i].RoundIndex, err)
		}
	}
	return nil
}

func (r *RoundRepository) GetByGame(ctx context.Context, gameID string) ([]domain.Round, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, game_id, photo_id, round_index, year_guess, year_true, delta_years, score, answered_at
		 FROM rounds
		 WHERE game_id = $1
		 ORDER BY round_index`,
		gameID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Round
	for rows.Next() {
		var rd domain.Round
		if err := rows.Scan(&rd.ID, &rd.GameID, &rd.PhotoID, &rd.RoundIndex, &rd.YearGuess,
			&rd.YearTrue, &rd.DeltaYears, &rd.Score, &rd.AnsweredAt); err != nil {
			return nil, err
		}
		res = append(res, rd)
	}
	return res, rows.Err()
}
