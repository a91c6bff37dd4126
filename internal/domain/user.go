package domain

import "time"

// User is keyed by the lower-cased wallet address.
type User struct {
	CanonicalUserID string    `db:"canonical_user_id" json:"canonical_user_id"`
	Wallet          string    `db:"wallet" json:"wallet"`
	FarcasterFID    *int64    `db:"farcaster_fid" json:"farcaster_fid,omitempty"`
	DisplayName     *string   `db:"display_name" json:"display_name,omitempty"`
	AvatarURL       *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// FarcasterProfile is the optional mini app context sent with a score.
type FarcasterProfile struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	PfpURL      string `json:"pfpUrl"`
}
