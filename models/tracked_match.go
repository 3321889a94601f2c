package models

import (
	"time"
)

// MatchState represents the lifecycle state of a tracked match
type MatchState string

const (
	MatchStateDiscovered MatchState = "discovered"
	MatchStateOpen       MatchState = "open"
	MatchStateLocked     MatchState = "locked"
	MatchStateSettled    MatchState = "settled"
	MatchStateVoided     MatchState = "voided"
)

// TrackedMatch is one match under lifecycle tracking. The match ID is the
// upstream Esportal ID and is immutable once discovered. All mutation goes
// through the tracker's lock.
type TrackedMatch struct {
	ID           int64
	Data         *Match
	DiscoveredAt time.Time
	State        MatchState
	ThreadID     string
	Book         *Book
}

// NewTrackedMatch registers a freshly discovered match
func NewTrackedMatch(data *Match, discoveredAt time.Time) *TrackedMatch {
	return &TrackedMatch{
		ID:           data.ID,
		Data:         data,
		DiscoveredAt: discoveredAt,
		State:        MatchStateDiscovered,
		Book:         NewBook(),
	}
}

// IsTerminal reports whether the match has reached a final state
func (m *TrackedMatch) IsTerminal() bool {
	return m.State == MatchStateSettled || m.State == MatchStateVoided
}

// CanAcceptStakes reports whether new or replacement stakes are allowed
func (m *TrackedMatch) CanAcceptStakes() bool {
	return m.State == MatchStateOpen
}

// NeedsAnnouncement reports whether the match is waiting for a map pick
// before the wagering window can open
func (m *TrackedMatch) NeedsAnnouncement() bool {
	return m.ThreadID == "" && !m.IsTerminal()
}
