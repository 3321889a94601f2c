package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/oamaok/esportal-bets/models"
)

const embedColor = 0x5700a2

// matchEmbed builds the announcement embed with rosters and odds
func matchEmbed(match *models.Match, window time.Duration) *discordgo.MessageEmbed {
	minutes := int(window.Minutes())

	return &discordgo.MessageEmbed{
		Color: embedColor,
		Title: fmt.Sprintf("🎮 New match! #%d 🎮", match.ID),
		URL:   fmt.Sprintf("https://esportal.com/en/match/%d", match.ID),
		Description: fmt.Sprintf(
			"Place your bets in the thread! You have %d minutes from this message.", minutes),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Team1",
				Value:  rosterList(match.PlayersOnTeam(1)),
				Inline: true,
			},
			{
				Name:   "Team2",
				Value:  rosterList(match.PlayersOnTeam(2)),
				Inline: true,
			},
			{
				Name: "Odds",
				Value: fmt.Sprintf("Team1: %.2fx • Team2: %.2fx",
					match.Odds(models.Team1), match.Odds(models.Team2)),
			},
		},
	}
}

func rosterList(players []models.MatchPlayer) string {
	if len(players) == 0 {
		return "unknown"
	}
	lines := make([]string, 0, len(players))
	for _, player := range players {
		lines = append(lines, fmt.Sprintf(" • %s", player.Username))
	}
	return strings.Join(lines, "\n")
}
