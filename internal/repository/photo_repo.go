package repository

import (
	"context"

	"timeguesser/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PhotoRepository struct {
	db *pgxpool.Pool
}

func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func (r *PhotoRepository) List(ctx context.Context) ([]domain.Photo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, image_url, title, year_true, year_min, year_max
		 FROM photos`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Photo
	for rows.Next() {
		var p domain.Photo
		if err := rows.Scan(&p.ID, &p.ImageURL, &p.Title, &p.YearTrue, &p.YearMin, &p.YearMax); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
