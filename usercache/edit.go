package usercache

// Operation says how an Edit applies its value.
type Operation int

const (
	OpSet Operation = iota
	OpReset
	OpAdd
	OpMinus
)

// Edit is the closed set of mutations Cache.Edit accepts. Each attribute
// carries its own typed value, so an unsupported attribute cannot be
// expressed at all and an unsupported operation fails with
// ErrInvalidOperation.
type Edit interface {
	isEdit()
}

// ColourEdit sets (or resets to gold) the user's embed colour. Set and
// Reset only.
type ColourEdit struct {
	Op     Operation
	Colour int
}

// TimezoneEdit sets (or resets to UTC) the user's IANA timezone name. Set
// and Reset only.
type TimezoneEdit struct {
	Op       Operation
	Timezone string
}

// TimezonePrivateEdit hides (Set) or shows (Reset) the user's timezone on
// timecards.
type TimezonePrivateEdit struct {
	Op Operation
}

// BlacklistEdit blacklists the user with a reason (Set) or lifts the
// blacklist (Reset).
type BlacklistEdit struct {
	Op     Operation
	Reason string
}

// XPEdit replaces, increments or decrements xp. Unlike the other edits it
// is not written through; it marks the record dirty for the next flush.
type XPEdit struct {
	Op    Operation
	Value int64
}

func (ColourEdit) isEdit()          {}
func (TimezoneEdit) isEdit()        {}
func (TimezonePrivateEdit) isEdit() {}
func (BlacklistEdit) isEdit()       {}
func (XPEdit) isEdit()              {}
