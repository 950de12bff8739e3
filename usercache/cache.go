package usercache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/intrntsrfr/life/database"
	"go.uber.org/zap"
)

var (
	// ErrInvalidOperation means the operation does not apply to the edited
	// attribute, e.g. Add on a timezone.
	ErrInvalidOperation = errors.New("invalid operation for attribute")
	// ErrNotFound means no record matched the requested scope.
	ErrNotFound = errors.New("no user config found")
)

const (
	flushInterval = 2 * time.Minute
	storeTimeout  = 300 * time.Second
)

// Sort picks the attribute a leaderboard is ordered by.
type Sort int

const (
	SortXP Sort = iota
	SortLevel
)

// Cache owns every in-memory user config. All mutations go through Create
// and Edit; a background loop flushes batched xp writes back to the
// database. Lookups for users without a row share a single read-only
// default record.
type Cache struct {
	sync.RWMutex
	db      database.DB
	log     *zap.Logger
	def     *UserConfig
	configs map[int64]*UserConfig
}

func NewCache(db database.DB, log *zap.Logger) *Cache {
	return &Cache{
		db:  db,
		log: log,
		def: newUserConfig(&database.UserConfig{
			Colour:            database.DefaultColour,
			Timezone:          database.DefaultTimezone,
			BlacklistedReason: database.DefaultBlacklistedReason,
		}),
		configs: make(map[int64]*UserConfig),
	}
}

// Load replaces the cache contents with every persisted row. It must run
// to completion before the bot serves commands; a failure here is fatal,
// serving from an empty cache would silently zero everyone's xp.
func (c *Cache) Load(ctx context.Context) error {
	rows, err := c.db.FetchUserConfigs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load user configs: %w", err)
	}

	configs := make(map[int64]*UserConfig, len(rows))
	for _, row := range rows {
		configs[row.UserID] = newUserConfig(row)
	}

	c.Lock()
	c.configs = configs
	c.Unlock()

	c.log.Info("loaded user configs", zap.Int("users", len(rows)))
	return nil
}

// Get returns the user's record, or the shared default record when the
// user has no row yet. The default must never be mutated; Edit swaps it
// for a real record before applying anything.
func (c *Cache) Get(userID int64) *UserConfig {
	c.RLock()
	uc, ok := c.configs[userID]
	c.RUnlock()
	if !ok {
		return c.def
	}
	return uc
}

// Create upserts the user's row and materializes it in memory. Calling it
// twice for the same user returns the same persisted row.
func (c *Cache) Create(ctx context.Context, userID int64) (*UserConfig, error) {
	row, err := c.db.UpsertUserConfig(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user config: %w", err)
	}

	uc := newUserConfig(row)
	c.Lock()
	c.configs[userID] = uc
	c.Unlock()

	return uc, nil
}

// Edit is the sole mutation entry point. Colour, timezone, timezone
// privacy and blacklist edits are written through to the database before
// memory is updated from the returned row; xp edits touch memory only and
// are persisted by the flush loop. A failed write-through leaves the
// record unchanged.
func (c *Cache) Edit(ctx context.Context, userID int64, edit Edit) (*UserConfig, error) {
	uc := c.Get(userID)
	if uc == c.def {
		var err error
		if uc, err = c.Create(ctx, userID); err != nil {
			return nil, err
		}
	}

	switch e := edit.(type) {
	case ColourEdit:
		colour := formatColour(e.Colour)
		if e.Op == OpReset {
			colour = database.DefaultColour
		} else if e.Op != OpSet {
			return nil, ErrInvalidOperation
		}
		row, err := c.db.UpdateColour(ctx, userID, colour)
		if err != nil {
			return nil, err
		}
		uc.setColour(parseColour(row.Colour))

	case TimezoneEdit:
		timezone := e.Timezone
		if e.Op == OpReset {
			timezone = database.DefaultTimezone
		} else if e.Op != OpSet {
			return nil, ErrInvalidOperation
		}
		row, err := c.db.UpdateTimezone(ctx, userID, timezone)
		if err != nil {
			return nil, err
		}
		uc.setTimezone(row.Timezone)

	case TimezonePrivateEdit:
		if e.Op != OpSet && e.Op != OpReset {
			return nil, ErrInvalidOperation
		}
		row, err := c.db.UpdateTimezonePrivate(ctx, userID, e.Op == OpSet)
		if err != nil {
			return nil, err
		}
		uc.setTimezonePrivate(row.TimezonePrivate)

	case BlacklistEdit:
		blacklisted, reason := true, e.Reason
		if e.Op == OpReset {
			blacklisted, reason = false, database.DefaultBlacklistedReason
		} else if e.Op != OpSet {
			return nil, ErrInvalidOperation
		}
		row, err := c.db.UpdateBlacklist(ctx, userID, blacklisted, reason)
		if err != nil {
			return nil, err
		}
		uc.setBlacklist(row.Blacklisted, row.BlacklistedReason)

	case XPEdit:
		switch e.Op {
		case OpSet:
			uc.setXP(e.Value)
		case OpAdd:
			uc.addXP(e.Value)
		case OpMinus:
			uc.addXP(-e.Value)
		default:
			return nil, ErrInvalidOperation
		}
	}

	return uc, nil
}

type flushEntry struct {
	uc     *UserConfig
	userID int64
	xp     int64
	seq    uint64
}

// FlushDirty writes the xp of every dirty record back to the database. A
// record stays dirty when its write fails, or when it was mutated again
// after the snapshot was taken, so nothing is lost across cycles. Errors
// never escape; failed records are retried on the next run.
func (c *Cache) FlushDirty(ctx context.Context) {
	c.RLock()
	var dirty []flushEntry
	for userID, uc := range c.configs {
		if xp, seq, ok := uc.flushState(); ok {
			dirty = append(dirty, flushEntry{uc: uc, userID: userID, xp: xp, seq: seq})
		}
	}
	c.RUnlock()

	if len(dirty) == 0 {
		return
	}

	// a started batch runs to completion even if ctx is cancelled mid-way,
	// only the per-write timeout bounds it
	base := context.WithoutCancel(ctx)
	for _, e := range dirty {
		wctx, cancel := context.WithTimeout(base, storeTimeout)
		err := c.db.UpdateXP(wctx, e.userID, e.xp)
		cancel()
		if err != nil {
			c.log.Error("failed to flush xp", zap.Int64("userID", e.userID), zap.Error(err))
			continue
		}
		e.uc.clearDirty(e.seq)
	}

	c.log.Debug("flushed dirty user configs", zap.Int("count", len(dirty)))
}

// Run blocks until the ready gate fires, then flushes dirty records every
// two minutes until ctx is cancelled. One last flush runs on the way out
// so pending xp survives a clean shutdown.
func (c *Cache) Run(ctx context.Context, ready <-chan struct{}) {
	select {
	case <-ready:
	case <-ctx.Done():
		return
	}

	t := time.NewTicker(flushInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			c.FlushDirty(ctx)
			return
		case <-t.C:
			c.FlushDirty(ctx)
		}
	}
}

type rankEntry struct {
	uc    *UserConfig
	xp    int64
	level int
}

// snapshot captures the records in scope, with their sort keys fixed at
// capture time, in the order the scope lists them. Sorting happens on the
// snapshot so a concurrent xp edit cannot shuffle a sort in progress.
func (c *Cache) snapshot(scopeIDs []int64) []rankEntry {
	c.RLock()
	defer c.RUnlock()
	entries := make([]rankEntry, 0, len(scopeIDs))
	for _, id := range scopeIDs {
		uc, ok := c.configs[id]
		if !ok {
			continue
		}
		entries = append(entries, rankEntry{uc: uc, xp: uc.XP(), level: uc.Level()})
	}
	return entries
}

// Rank returns the user's 1-based position among the scoped records,
// ordered by level descending. Ties keep the scope's order.
func (c *Cache) Rank(scopeIDs []int64, userID int64) (int, error) {
	entries := c.snapshot(scopeIDs)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].level > entries[j].level
	})
	for i, e := range entries {
		if e.uc.UserID() == userID {
			return i + 1, nil
		}
	}
	return 0, ErrNotFound
}

// Leaderboard returns the scoped records ordered by the requested
// attribute descending. Ties keep the scope's order.
func (c *Cache) Leaderboard(scopeIDs []int64, by Sort) ([]*UserConfig, error) {
	entries := c.snapshot(scopeIDs)
	if len(entries) == 0 {
		return nil, ErrNotFound
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if by == SortLevel {
			return entries[i].level > entries[j].level
		}
		return entries[i].xp > entries[j].xp
	})

	configs := make([]*UserConfig, 0, len(entries))
	for _, e := range entries {
		configs = append(configs, e.uc)
	}
	return configs, nil
}

// Snapshot returns the scoped records in scope order, unsorted. The
// timecard renderer groups these by timezone.
func (c *Cache) Snapshot(scopeIDs []int64) []*UserConfig {
	entries := c.snapshot(scopeIDs)
	configs := make([]*UserConfig, 0, len(entries))
	for _, e := range entries {
		configs = append(configs, e.uc)
	}
	return configs
}
