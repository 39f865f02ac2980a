package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// HoursPerDay is the number of slots in every group.
const HoursPerDay = 24

// State is the per-hour status of a group as published by the oblenergo site.
// The site's wording is inverted: "в" (StateOn) marks an active outage.
type State int

const (
	StateOff State = iota
	StateOn
	StateMaybeOff
)

// Source symbols used in the schedule markup.
const (
	symbolOn       = "в"
	symbolOff      = "з"
	symbolMaybeOff = "мз"
)

// ParseState maps a source symbol to a State.
func ParseState(symbol string) (State, bool) {
	switch symbol {
	case symbolOn:
		return StateOn, true
	case symbolOff:
		return StateOff, true
	case symbolMaybeOff:
		return StateMaybeOff, true
	}
	return 0, false
}

// String returns the source symbol.
func (s State) String() string {
	switch s {
	case StateOn:
		return symbolOn
	case StateOff:
		return symbolOff
	case StateMaybeOff:
		return symbolMaybeOff
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var symbol string
	if err := json.Unmarshal(data, &symbol); err != nil {
		return err
	}
	st, ok := ParseState(symbol)
	if !ok {
		return fmt.Errorf("unknown state symbol %q", symbol)
	}
	*s = st
	return nil
}

// Group is one feed group's day: HoursPerDay states, one per hour.
type Group []State

// Table holds every group in site order. Index i is user-facing group i+1.
// Tables are treated as immutable once parsed.
type Table []Group

// Group returns the group with the given 1-based number.
func (t Table) Group(n int) (Group, error) {
	if n < 1 || n > len(t) {
		return nil, fmt.Errorf("group %d of %d: %w", n, len(t), ErrNoSuchGroup)
	}
	return t[n-1], nil
}

// Intervals extracts outage intervals for the 1-based group n.
func (t Table) Intervals(n int) ([]Interval, error) {
	g, err := t.Group(n)
	if err != nil {
		return nil, err
	}
	return ExtractIntervals(g), nil
}

// Validate checks that every group has exactly HoursPerDay slots.
func (t Table) Validate() error {
	for i, g := range t {
		if len(g) != HoursPerDay {
			return fmt.Errorf("group %d has %d slots, want %d", i+1, len(g), HoursPerDay)
		}
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i, g := range t {
		out[i] = append(Group(nil), g...)
	}
	return out
}

// Interval is one outage window. End is nil when the outage is still running
// at the end of the observed day.
type Interval struct {
	Start int  `json:"start"`
	End   *int `json:"end"`
}

// IsOpen reports whether the interval has no known end.
func (iv Interval) IsOpen() bool {
	return iv.End == nil
}

func (iv Interval) String() string {
	if iv.End == nil {
		return fmt.Sprintf("%02d:00-", iv.Start)
	}
	return fmt.Sprintf("%02d:00-%02d:00", iv.Start, *iv.End)
}

// Snapshot is a parsed table together with the time it was fetched.
type Snapshot struct {
	Table     Table     `json:"table"`
	FetchedAt time.Time `json:"fetched_at"`
}
