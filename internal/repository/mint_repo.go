package repository

import (
	"context"

	"timeguesser/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MintRepository struct {
	db *pgxpool.Pool
}

func NewMintRepository(db *pgxpool.Pool) *MintRepository {
	return &MintRepository{db: db}
}

func (r *MintRepository) Create(ctx context.Context, m *domain.Mint) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO mints (game_id, tx_hash, chain_id, status, verified_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		m.GameID,
		m.TxHash,
		m.ChainID,
		m.Status,
		m.VerifiedAt,
	).Scan(&m.ID, &m.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateMint
	}
	return err
}

func (r *MintRepository) GetByGameID(ctx context.Context, gameID string) (*domain.Mint, error) {
	rows, err := r.db.Query(ctx,
		`SELECT m.id, m.game_id, m.tx_hash, m.chain_id, m.status, m.created_at, m.verified_at, m.checked_at, g.canonical_user_id
		 FROM mints m
		 JOIN games g ON g.id = m.game_id
		 WHERE m.game_id = $1`,
		gameID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mints, err := scanMints(rows)
	if err != nil {
		return nil, err
	}
	if len(mints) == 0 {
		return nil, ErrNotFound
	}
	return mints[0], nil
}

func (r *MintRepository) GetByTxHash(ctx context.Context, txHash string) (*domain.Mint, error) {
	rows, err := r.db.Query(ctx,
		`SELECT m.id, m.game_id, m.tx_hash, m.chain_id, m.status, m.created_at, m.verified_at, m.checked_at, g.canonical_user_id
		 FROM mints m
		 JOIN games g ON g.id = m.game_id
		 WHERE m.tx_hash = lower($1)`,
		txHash,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mints, err := scanMints(rows)
	if err != nil {
		return nil, err
	}
	if len(mints) == 0 {
		return nil, ErrNotFound
	}
	return mints[0], nil
}

// ListForReconcile returns unverified mints, never-checked first and then
// the least recently checked, so mints that never settle do not starve the rest.
func (r *MintRepository) ListForReconcile(ctx context.Context, limit int) ([]*domain.Mint, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT m.id, m.game_id, m.tx_hash, m.chain_id, m.status, m.created_at, m.verified_at, m.checked_at, g.canonical_user_id
		 FROM mints m
		 JOIN games g ON g.id = m.game_id
		 WHERE m.status = $1
		 ORDER BY m.checked_at ASC NULLS FIRST, m.created_at ASC
		 LIMIT $2`,
		domain.MintUnverified, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMints(rows)
}

// MarkChecked records a reconciliation attempt that left the mint unsettled.
func (r *MintRepository) MarkChecked(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE mints SET checked_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByStatus returns the oldest mints in status first.
func (r *MintRepository) ListByStatus(ctx context.Context, status domain.MintStatus, limit int) ([]*domain.Mint, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT m.id, m.game_id, m.tx_hash, m.chain_id, m.status, m.created_at, m.verified_at, m.checked_at, g.canonical_user_id
		 FROM mints m
		 JOIN games g ON g.id = m.game_id
		 WHERE m.status = $1
		 ORDER BY m.created_at ASC
		 LIMIT $2`,
		status, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMints(rows)
}

// UpdateStatus moves a mint out of a previous status. Setting success stamps verified_at.
func (r *MintRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.MintStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE mints
		 SET status = $3,
		     verified_at = CASE WHEN $3 = 'success' THEN now() ELSE verified_at END
		 WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMints(rows pgx.Rows) ([]*domain.Mint, error) {
	var res []*domain.Mint
	for rows.Next() {
		var m domain.Mint
		if err := rows.Scan(&m.ID, &m.GameID, &m.TxHash, &m.ChainID, &m.Status, &m.CreatedAt, &m.VerifiedAt, &m.CheckedAt, &m.Player); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
