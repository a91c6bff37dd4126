package repository

import (
	"context"
	"errors"

	"timeguesser/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert creates the user or refreshes its profile. Profile columns are only
// overwritten with non-null values so a bare wallet submission keeps an earlier
// Farcaster profile.
func (r *UserRepository) Upsert(ctx context.Context, u *domain.User) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO users (canonical_user_id, wallet, farcaster_fid, display_name, avatar_url)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (canonical_user_id) DO UPDATE SET
		     wallet        = EXCLUDED.wallet,
		     farcaster_fid = COALESCE(EXCLUDED.farcaster_fid, users.farcaster_fid),
		     display_name  = COALESCE(EXCLUDED.display_name, users.display_name),
		     avatar_url    = COALESCE(EXCLUDED.avatar_url, users.avatar_url),
		     updated_at    = now()
		 RETURNING created_at, updated_at`,
		u.CanonicalUserID,
		u.Wallet,
		u.FarcasterFID,
		u.DisplayName,
		u.AvatarURL,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, canonicalUserID string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx,
		`SELECT canonical_user_id, wallet, farcaster_fid, display_name, avatar_url, created_at, updated_at
		 FROM users
		 WHERE canonical_user_id = $1`,
		canonicalUserID,
	).Scan(
		&u.CanonicalUserID,
		&u.Wallet,
		&u.FarcasterFID,
		&u.DisplayName,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
