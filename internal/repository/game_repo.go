package repository

import (
	"context"
	"errors"

	"timeguesser/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GameRepository struct {
	db *pgxpool.Pool
}

func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db}
}

// Create inserts an immutable game row. A second insert for the same id
// returns ErrDuplicateGame and leaves the first row untouched.
func (r *GameRepository) Create(ctx context.Context, g *domain.Game) error {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO games (id, canonical_user_id, total_score, ended_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		g.ID,
		g.CanonicalUserID,
		g.TotalScore,
		g.EndedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateGame
	}
	return nil
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	var g domain.Game
	err := r.db.QueryRow(ctx,
		`SELECT id, canonical_user_id, total_score, ended_at
		 FROM games
		 WHERE id = $1`,
		id,
	).Scan(&g.ID, &g.CanonicalUserID, &g.TotalScore, &g.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Delete removes a game and its rounds. Games with a mint are kept by the
// foreign key.
func (r *GameRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	return err
}
