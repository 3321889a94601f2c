package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/oamaok/esportal-bets/models"
	"github.com/oamaok/esportal-bets/service"
)

const leaderboardSize = 3

var betPattern = regexp.MustCompile(`^!bet (team1|team2) (\d+)$`)

var medals = []string{"🥇", "🥈", "🥉"}

// handleMessage routes free-text commands. Balance and leaderboard commands
// work anywhere; bet commands only inside a match's betting thread.
func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	switch m.Content {
	case "!balance", "!saldo":
		b.handleBalance(s, m)
		return
	case "!top":
		b.handleLeaderboard(s, m, true)
		return
	case "!bottom":
		b.handleLeaderboard(s, m, false)
		return
	}

	if strings.HasPrefix(m.Content, "!bet") {
		b.handleBet(s, m)
	}
}

func (b *Bot) handleBalance(s *discordgo.Session, m *discordgo.MessageCreate) {
	balance := b.ledger.Balance(m.Author.ID)
	message := fmt.Sprintf("💰 Your balance is %d shillings, %s 💰", balance, m.Author.Mention())
	if _, err := s.ChannelMessageSend(m.ChannelID, message); err != nil {
		log.Errorf("Failed to send balance reply: %v", err)
	}
}

func (b *Bot) handleLeaderboard(s *discordgo.Session, m *discordgo.MessageCreate, top bool) {
	var entries []service.LedgerEntry
	var title string
	if top {
		entries = b.ledger.Top(leaderboardSize)
		title = "Top shillings:"
	} else {
		entries = b.ledger.Bottom(leaderboardSize)
		title = "Bottom shillings:"
	}

	if len(entries) == 0 {
		if _, err := s.ChannelMessageSend(m.ChannelID, "Nobody has a balance yet."); err != nil {
			log.Errorf("Failed to send leaderboard reply: %v", err)
		}
		return
	}

	lines := []string{title}
	for i, entry := range entries {
		lines = append(lines, fmt.Sprintf("%s <@%s>: %d shillings", medals[i], entry.ParticipantID, entry.Balance))
	}

	if _, err := s.ChannelMessageSend(m.ChannelID, strings.Join(lines, "\n")); err != nil {
		log.Errorf("Failed to send leaderboard reply: %v", err)
	}
}

// handleBet parses and places a stake. Every outcome gets a reaction: ✅ on
// success, ❌ plus an explanatory message on rejection. Messages in threads
// that do not belong to a tracked match are ignored.
func (b *Bot) handleBet(s *discordgo.Session, m *discordgo.MessageCreate) {
	if b.tracker == nil {
		return
	}

	groups := betPattern.FindStringSubmatch(m.Content)
	if groups == nil {
		b.rejectStake(s, m, "❌ That stake doesn't parse. Use `!bet team1|team2 <amount>`.")
		return
	}

	team, err := models.ParseTeam(groups[1])
	if err != nil {
		b.rejectStake(s, m, "❌ That stake doesn't parse. Use `!bet team1|team2 <amount>`.")
		return
	}

	amount, err := strconv.ParseInt(groups[2], 10, 64)
	if err != nil || amount <= 0 {
		b.rejectStake(s, m, "❌ That stake doesn't parse. Use `!bet team1|team2 <amount>`.")
		return
	}

	err = b.tracker.PlaceStake(context.Background(), m.ChannelID, m.Author.ID, team, amount)
	switch {
	case err == nil:
		if reactErr := s.MessageReactionAdd(m.ChannelID, m.ID, "✅"); reactErr != nil {
			log.Errorf("Failed to acknowledge stake: %v", reactErr)
		}
	case errors.Is(err, service.ErrNoSuchMatch):
		// Not a betting thread; stay silent like any other channel
	case errors.Is(err, service.ErrWindowClosed):
		b.rejectStake(s, m, fmt.Sprintf("⌛ Too late, the window is closed %s ⌛", m.Author.Mention()))
	case errors.Is(err, service.ErrInsufficientFunds):
		b.rejectStake(s, m, fmt.Sprintf("💸 Not enough shillings for that, %s 💸", m.Author.Mention()))
	case errors.Is(err, service.ErrMalformedStake):
		b.rejectStake(s, m, "❌ That stake doesn't parse. Use `!bet team1|team2 <amount>`.")
	default:
		log.Errorf("Failed to place stake: %v", err)
		b.rejectStake(s, m, "❌ Something went wrong placing that stake.")
	}
}

func (b *Bot) rejectStake(s *discordgo.Session, m *discordgo.MessageCreate, reason string) {
	if err := s.MessageReactionAdd(m.ChannelID, m.ID, "❌"); err != nil {
		log.Errorf("Failed to add rejection reaction: %v", err)
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, reason); err != nil {
		log.Errorf("Failed to send rejection message: %v", err)
	}
}
