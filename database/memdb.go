package database

import (
	"context"
	"errors"
	"sync"

	"github.com/jmoiron/sqlx"
)

// ErrRowNotFound is returned by MemDB updates for users that were never upserted.
var ErrRowNotFound = errors.New("row does not exist")

// MemDB implements DB with a locked map. It backs the bot when no connection
// string is configured and stands in for Postgres in tests.
type MemDB struct {
	sync.Mutex
	configs map[int64]*UserConfig
}

func NewMemDatabase() *MemDB {
	return &MemDB{
		configs: make(map[int64]*UserConfig),
	}
}

func (m *MemDB) GetConn() *sqlx.DB {
	return nil
}

func (m *MemDB) Close() error {
	return nil
}

func (m *MemDB) FetchUserConfigs(ctx context.Context) ([]*UserConfig, error) {
	m.Lock()
	defer m.Unlock()
	configs := make([]*UserConfig, 0, len(m.configs))
	for _, uc := range m.configs {
		cp := *uc
		configs = append(configs, &cp)
	}
	return configs, nil
}

func (m *MemDB) UpsertUserConfig(ctx context.Context, userID int64) (*UserConfig, error) {
	m.Lock()
	defer m.Unlock()
	if uc, ok := m.configs[userID]; ok {
		cp := *uc
		return &cp, nil
	}
	uc := &UserConfig{
		UserID:            userID,
		Colour:            DefaultColour,
		Timezone:          DefaultTimezone,
		BlacklistedReason: DefaultBlacklistedReason,
	}
	m.configs[userID] = uc
	cp := *uc
	return &cp, nil
}

func (m *MemDB) UpdateColour(ctx context.Context, userID int64, colour string) (*UserConfig, error) {
	return m.update(userID, func(uc *UserConfig) {
		uc.Colour = colour
	})
}

func (m *MemDB) UpdateTimezone(ctx context.Context, userID int64, timezone string) (*UserConfig, error) {
	return m.update(userID, func(uc *UserConfig) {
		uc.Timezone = timezone
	})
}

func (m *MemDB) UpdateTimezonePrivate(ctx context.Context, userID int64, private bool) (*UserConfig, error) {
	return m.update(userID, func(uc *UserConfig) {
		uc.TimezonePrivate = private
	})
}

func (m *MemDB) UpdateBlacklist(ctx context.Context, userID int64, blacklisted bool, reason string) (*UserConfig, error) {
	return m.update(userID, func(uc *UserConfig) {
		uc.Blacklisted = blacklisted
		uc.BlacklistedReason = reason
	})
}

func (m *MemDB) UpdateXP(ctx context.Context, userID int64, xp int64) error {
	_, err := m.update(userID, func(uc *UserConfig) {
		uc.XP = xp
	})
	return err
}

func (m *MemDB) update(userID int64, fn func(*UserConfig)) (*UserConfig, error) {
	m.Lock()
	defer m.Unlock()
	uc, ok := m.configs[userID]
	if !ok {
		return nil, ErrRowNotFound
	}
	fn(uc)
	cp := *uc
	return &cp, nil
}
