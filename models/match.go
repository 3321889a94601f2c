package models

// OnlineStatus represents a friend's presence as reported by Esportal
type OnlineStatus int

const (
	StatusOffline OnlineStatus = 0
	StatusInGame  OnlineStatus = 1
	StatusAFK     OnlineStatus = 2
	StatusOnline  OnlineStatus = 5
)

// FriendStatus is one entry of the watched friend list
type FriendStatus struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	OnlineStatus OnlineStatus `json:"online_status"`
}

// Match is the upstream snapshot of an Esportal match. Fields beyond the ones
// used for lifecycle decisions and display are intentionally not mapped.
type Match struct {
	ID              int64         `json:"id"`
	Active          bool          `json:"active"`
	MapID           int64         `json:"map_id"`
	Team1Score      int           `json:"team1_score"`
	Team2Score      int           `json:"team2_score"`
	Team1WinChance  float64       `json:"team1_win_chance"`
	Team2WinChance  float64       `json:"team2_win_chance"`
	Players         []MatchPlayer `json:"players"`
	Inserted        int64         `json:"inserted"`
	DurationSeconds int           `json:"duration"`
}

// MatchPlayer is one roster entry of an upstream match
type MatchPlayer struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Elo      int    `json:"elo"`
	Team     int    `json:"team"`
}

// PlayersOnTeam returns the roster entries belonging to the given team number (1 or 2)
func (m *Match) PlayersOnTeam(team int) []MatchPlayer {
	var players []MatchPlayer
	for _, p := range m.Players {
		if p.Team == team {
			players = append(players, p)
		}
	}
	return players
}

// Tied reports whether the final scores are level
func (m *Match) Tied() bool {
	return m.Team1Score == m.Team2Score
}

// WinningTeam returns the side with the higher score. Only meaningful when
// the match is inactive and not tied.
func (m *Match) WinningTeam() Team {
	if m.Team1Score > m.Team2Score {
		return Team1
	}
	return Team2
}

// WinChance returns the upstream win probability for a side
func (m *Match) WinChance(team Team) float64 {
	if team == Team1 {
		return m.Team1WinChance
	}
	return m.Team2WinChance
}

// Odds returns the payout multiplier for a side, defined as 2 minus the
// side's win probability
func (m *Match) Odds(team Team) float64 {
	return 2 - m.WinChance(team)
}
