package domain

import "time"

// MintStatus tracks the on-chain confirmation of a persisted game.
type MintStatus string

const (
	// MintSuccess: receipt fetched and matched.
	MintSuccess MintStatus = "success"
	// MintUnverified: receipt unavailable at submit time, accepted on the client's word.
	MintUnverified MintStatus = "unverified"
	// MintFailed: reconciliation found a receipt that does not match.
	MintFailed MintStatus = "failed"
)

func (s MintStatus) Valid() bool {
	switch s {
	case MintSuccess, MintUnverified, MintFailed:
		return true
	}
	return false
}

type Mint struct {
	ID         int64      `db:"id" json:"id"`
	GameID     string     `db:"game_id" json:"game_id"`
	TxHash     string     `db:"tx_hash" json:"tx_hash"`
	ChainID    int64      `db:"chain_id" json:"chain_id"`
	Status     MintStatus `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	VerifiedAt *time.Time `db:"verified_at" json:"verified_at,omitempty"`
	// CheckedAt is the last reconciliation attempt that found no receipt.
	CheckedAt *time.Time `db:"checked_at" json:"checked_at,omitempty"`

	// Player is joined from games.canonical_user_id on reads.
	Player string `db:"canonical_user_id" json:"player,omitempty"`
}
