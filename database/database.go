package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type DB interface {
	GetConn() *sqlx.DB
	Close() error

	FetchUserConfigs(ctx context.Context) ([]*UserConfig, error)
	UpsertUserConfig(ctx context.Context, userID int64) (*UserConfig, error)
	UpdateColour(ctx context.Context, userID int64, colour string) (*UserConfig, error)
	UpdateTimezone(ctx context.Context, userID int64, timezone string) (*UserConfig, error)
	UpdateTimezonePrivate(ctx context.Context, userID int64, private bool) (*UserConfig, error)
	UpdateBlacklist(ctx context.Context, userID int64, blacklisted bool, reason string) (*UserConfig, error)
	UpdateXP(ctx context.Context, userID int64, xp int64) error
}

type Config struct {
	Log     *zap.Logger
	ConnStr string
}

// Column defaults, mirrored in schema.sql.
const (
	DefaultColour            = "0xF1C40F"
	DefaultTimezone          = "UTC"
	DefaultBlacklistedReason = "None"
)

// UserConfig is one row of the user_configs table. Colour is stored as a
// hex string ('0xF1C40F') so rows stay readable in psql.
type UserConfig struct {
	UserID            int64  `json:"user_id" db:"user_id"`
	XP                int64  `json:"xp" db:"xp"`
	Colour            string `json:"colour" db:"colour"`
	Timezone          string `json:"timezone" db:"timezone"`
	TimezonePrivate   bool   `json:"timezone_private" db:"timezone_private"`
	Blacklisted       bool   `json:"blacklisted" db:"blacklisted"`
	BlacklistedReason string `json:"blacklisted_reason" db:"blacklisted_reason"`
}
