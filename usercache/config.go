package usercache

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/intrntsrfr/life/database"
)

// UserConfig is the in-memory view of one user's row. Fields are unexported
// so callers outside this package can read but never mutate a record; in
// particular the shared default record handed out for unknown users can not
// be written to.
type UserConfig struct {
	mu sync.RWMutex

	userID            int64
	xp                int64
	colour            int
	timezone          string
	timezonePrivate   bool
	blacklisted       bool
	blacklistedReason string

	// dirty marks xp as ahead of the database. seq bumps on every xp
	// mutation so a flush only clears dirty for the value it wrote.
	dirty bool
	seq   uint64
}

func newUserConfig(row *database.UserConfig) *UserConfig {
	return &UserConfig{
		userID:            row.UserID,
		xp:                row.XP,
		colour:            parseColour(row.Colour),
		timezone:          row.Timezone,
		timezonePrivate:   row.TimezonePrivate,
		blacklisted:       row.Blacklisted,
		blacklistedReason: row.BlacklistedReason,
	}
}

func (uc *UserConfig) UserID() int64 {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.userID
}

func (uc *UserConfig) XP() int64 {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.xp
}

// Level is derived from xp; every level takes cubically more xp than the last.
func (uc *UserConfig) Level() int {
	return int(math.Cbrt(float64(uc.XP())))
}

func (uc *UserConfig) Colour() int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.colour
}

func (uc *UserConfig) Timezone() string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.timezone
}

func (uc *UserConfig) TimezonePrivate() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.timezonePrivate
}

func (uc *UserConfig) Blacklisted() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.blacklisted
}

func (uc *UserConfig) BlacklistedReason() string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.blacklistedReason
}

func (uc *UserConfig) Dirty() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.dirty
}

func (uc *UserConfig) setColour(colour int) {
	uc.mu.Lock()
	uc.colour = colour
	uc.mu.Unlock()
}

func (uc *UserConfig) setTimezone(timezone string) {
	uc.mu.Lock()
	uc.timezone = timezone
	uc.mu.Unlock()
}

func (uc *UserConfig) setTimezonePrivate(private bool) {
	uc.mu.Lock()
	uc.timezonePrivate = private
	uc.mu.Unlock()
}

func (uc *UserConfig) setBlacklist(blacklisted bool, reason string) {
	uc.mu.Lock()
	uc.blacklisted = blacklisted
	uc.blacklistedReason = reason
	uc.mu.Unlock()
}

// setXP mutates memory only; the next flush cycle persists it. xp never
// drops below zero.
func (uc *UserConfig) setXP(xp int64) {
	uc.mu.Lock()
	if xp < 0 {
		xp = 0
	}
	uc.xp = xp
	uc.dirty = true
	uc.seq++
	uc.mu.Unlock()
}

func (uc *UserConfig) addXP(delta int64) {
	uc.mu.Lock()
	uc.xp += delta
	if uc.xp < 0 {
		uc.xp = 0
	}
	uc.dirty = true
	uc.seq++
	uc.mu.Unlock()
}

// flushState reports what a flush cycle should write for this record.
func (uc *UserConfig) flushState() (xp int64, seq uint64, dirty bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.xp, uc.seq, uc.dirty
}

// clearDirty clears the dirty flag, but only if no xp mutation happened
// since the flush snapshot was taken.
func (uc *UserConfig) clearDirty(seq uint64) {
	uc.mu.Lock()
	if uc.seq == seq {
		uc.dirty = false
	}
	uc.mu.Unlock()
}

func parseColour(s string) int {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	n, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0
	}
	return int(n)
}

func formatColour(c int) string {
	return fmt.Sprintf("0x%06X", c)
}
