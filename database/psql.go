package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type PsqlDB struct {
	pool    *sqlx.DB
	log     *zap.Logger
	connStr string
}

func NewPSQLDatabase(c *Config) (*PsqlDB, error) {
	db := &PsqlDB{
		log:     c.Log,
		connStr: c.ConnStr,
	}

	pool, err := sqlx.Connect("postgres", db.connStr)
	if err != nil {
		db.log.Error("unable to connect to db", zap.Error(err))
		return nil, err
	}

	db.pool = pool

	return db, nil
}

func (p *PsqlDB) GetConn() *sqlx.DB {
	return p.pool
}

func (p *PsqlDB) Close() error {
	return p.pool.Close()
}

func (p *PsqlDB) FetchUserConfigs(ctx context.Context) ([]*UserConfig, error) {
	var configs []*UserConfig
	err := p.pool.SelectContext(ctx, &configs, "SELECT * FROM user_configs;")
	if err != nil {
		return nil, err
	}
	return configs, nil
}

func (p *PsqlDB) UpsertUserConfig(ctx context.Context, userID int64) (*UserConfig, error) {
	var uc UserConfig
	err := p.pool.GetContext(ctx, &uc,
		"INSERT INTO user_configs (user_id) VALUES ($1) ON CONFLICT (user_id) DO UPDATE SET user_id = excluded.user_id RETURNING *;", userID)
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

func (p *PsqlDB) UpdateColour(ctx context.Context, userID int64, colour string) (*UserConfig, error) {
	var uc UserConfig
	err := p.pool.GetContext(ctx, &uc,
		"UPDATE user_configs SET colour = $2 WHERE user_id = $1 RETURNING *;", userID, colour)
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

func (p *PsqlDB) UpdateTimezone(ctx context.Context, userID int64, timezone string) (*UserConfig, error) {
	var uc UserConfig
	err := p.pool.GetContext(ctx, &uc,
		"UPDATE user_configs SET timezone = $2 WHERE user_id = $1 RETURNING *;", userID, timezone)
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

func (p *PsqlDB) UpdateTimezonePrivate(ctx context.Context, userID int64, private bool) (*UserConfig, error) {
	var uc UserConfig
	err := p.pool.GetContext(ctx, &uc,
		"UPDATE user_configs SET timezone_private = $2 WHERE user_id = $1 RETURNING *;", userID, private)
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

func (p *PsqlDB) UpdateBlacklist(ctx context.Context, userID int64, blacklisted bool, reason string) (*UserConfig, error) {
	var uc UserConfig
	err := p.pool.GetContext(ctx, &uc,
		"UPDATE user_configs SET blacklisted = $2, blacklisted_reason = $3 WHERE user_id = $1 RETURNING *;", userID, blacklisted, reason)
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

func (p *PsqlDB) UpdateXP(ctx context.Context, userID int64, xp int64) error {
	_, err := p.pool.ExecContext(ctx, "UPDATE user_configs SET xp = $2 WHERE user_id = $1;", userID, xp)
	return err
}
