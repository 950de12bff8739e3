package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemDBUpsertDefaults(t *testing.T) {
	db := NewMemDatabase()
	ctx := context.Background()

	uc, err := db.UpsertUserConfig(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), uc.UserID)
	assert.Equal(t, int64(0), uc.XP)
	assert.Equal(t, DefaultColour, uc.Colour)
	assert.Equal(t, DefaultTimezone, uc.Timezone)
	assert.False(t, uc.TimezonePrivate)
	assert.False(t, uc.Blacklisted)
	assert.Equal(t, DefaultBlacklistedReason, uc.BlacklistedReason)
}

func TestMemDBUpsertKeepsExistingRow(t *testing.T) {
	db := NewMemDatabase()
	ctx := context.Background()

	_, err := db.UpsertUserConfig(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, db.UpdateXP(ctx, 1, 100))

	uc, err := db.UpsertUserConfig(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), uc.XP)

	rows, err := db.FetchUserConfigs(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMemDBUpdateUnknownRow(t *testing.T) {
	db := NewMemDatabase()
	ctx := context.Background()

	_, err := db.UpdateTimezone(ctx, 1, "Europe/Oslo")
	require.ErrorIs(t, err, ErrRowNotFound)
	require.ErrorIs(t, db.UpdateXP(ctx, 1, 10), ErrRowNotFound)
}

func TestMemDBReturnsCopies(t *testing.T) {
	db := NewMemDatabase()
	ctx := context.Background()

	first, err := db.UpsertUserConfig(ctx, 1)
	require.NoError(t, err)
	first.XP = 9001

	second, err := db.UpsertUserConfig(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.XP, "mutating a returned row must not touch the store")
}

func TestMemDBUpdateBlacklist(t *testing.T) {
	db := NewMemDatabase()
	ctx := context.Background()

	_, err := db.UpsertUserConfig(ctx, 1)
	require.NoError(t, err)

	uc, err := db.UpdateBlacklist(ctx, 1, true, "spamming")
	require.NoError(t, err)
	assert.True(t, uc.Blacklisted)
	assert.Equal(t, "spamming", uc.BlacklistedReason)
}
