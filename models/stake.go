package models

import "fmt"

// Team identifies one of the two sides of a match
type Team string

const (
	Team1 Team = "team1"
	Team2 Team = "team2"
)

// ParseTeam converts user input into a Team
func ParseTeam(s string) (Team, error) {
	switch Team(s) {
	case Team1:
		return Team1, nil
	case Team2:
		return Team2, nil
	}
	return "", fmt.Errorf("unknown team %q", s)
}

// Stake is a participant's currency commitment to one side of one match
type Stake struct {
	ParticipantID string
	Team          Team
	Amount        int64
}

// Payout is the settlement result for a single winning stake
type Payout struct {
	ParticipantID string
	Amount        int64
}

// Book holds the active stakes of a single match, at most one per participant
type Book struct {
	stakes map[string]*Stake
}

// NewBook creates an empty betting book
func NewBook() *Book {
	return &Book{stakes: make(map[string]*Stake)}
}

// Stake returns the participant's active stake, or nil
func (b *Book) Stake(participantID string) *Stake {
	return b.stakes[participantID]
}

// Put records a stake, replacing any previous one from the same participant
func (b *Book) Put(stake *Stake) {
	b.stakes[stake.ParticipantID] = stake
}

// All returns every active stake in the book
func (b *Book) All() []*Stake {
	stakes := make([]*Stake, 0, len(b.stakes))
	for _, s := range b.stakes {
		stakes = append(stakes, s)
	}
	return stakes
}

// Clear removes every stake from the book
func (b *Book) Clear() {
	b.stakes = make(map[string]*Stake)
}

// Size returns the number of active stakes
func (b *Book) Size() int {
	return len(b.stakes)
}
