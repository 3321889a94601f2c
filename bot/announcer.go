package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/oamaok/esportal-bets/models"
)

const threadAutoArchiveMinutes = 60

// Announcer implements service.Notifier on top of a Discord session. All
// methods are network calls; the tracker invokes them outside its lock.
type Announcer struct {
	session   *discordgo.Session
	channelID string
}

// AnnounceMatch posts the match embed to the main channel and starts the
// betting thread under it
func (a *Announcer) AnnounceMatch(_ context.Context, match *models.Match, window time.Duration) (string, error) {
	message, err := a.session.ChannelMessageSendComplex(a.channelID, &discordgo.MessageSend{
		Content: "🎮 @here 🎮",
		Embeds:  []*discordgo.MessageEmbed{matchEmbed(match, window)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to post match announcement: %w", err)
	}

	thread, err := a.session.MessageThreadStartComplex(a.channelID, message.ID, &discordgo.ThreadStart{
		Name:                fmt.Sprintf("Match #%d", match.ID),
		AutoArchiveDuration: threadAutoArchiveMinutes,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start betting thread: %w", err)
	}

	log.WithFields(log.Fields{
		"match":  match.ID,
		"thread": thread.ID,
	}).Info("Match announced")
	return thread.ID, nil
}

// NoticeOneMinuteLeft warns the thread the window is about to close
func (a *Announcer) NoticeOneMinuteLeft(_ context.Context, threadID string) error {
	_, err := a.session.ChannelMessageSend(threadID, "⌛ One minute left to bet! ⌛")
	return err
}

// NoticeLocked tells the thread no further stakes are accepted
func (a *Announcer) NoticeLocked(_ context.Context, threadID string) error {
	_, err := a.session.ChannelMessageSend(threadID, "🔒 Stakes are locked. 🔒")
	return err
}

// NoticeVoided tells the thread the match was voided and stakes refunded
func (a *Announcer) NoticeVoided(_ context.Context, threadID string) error {
	_, err := a.session.ChannelMessageSend(threadID, "❌ Match voided. All stakes have been refunded. ❌")
	return err
}

// PostSettlement posts the payout summary for a settled match
func (a *Announcer) PostSettlement(_ context.Context, threadID string, winner models.Team, payouts []models.Payout) error {
	lines := []string{fmt.Sprintf("💰 Match over, %s takes it. Shillings went out to the winners: 💰", winner)}
	if len(payouts) == 0 {
		lines = append(lines, " • nobody backed the winner this time")
	}
	for _, payout := range payouts {
		lines = append(lines, fmt.Sprintf(" • <@%s> +%d shillings", payout.ParticipantID, payout.Amount))
	}

	_, err := a.session.ChannelMessageSend(threadID, strings.Join(lines, "\n"))
	return err
}

// ArchiveThread requests archival of a finished match thread
func (a *Announcer) ArchiveThread(_ context.Context, threadID string) error {
	archived := true
	_, err := a.session.ChannelEditComplex(threadID, &discordgo.ChannelEdit{
		Archived: &archived,
	})
	return err
}
