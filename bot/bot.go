package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/oamaok/esportal-bets/events"
	"github.com/oamaok/esportal-bets/service"
)

// Config holds bot configuration
type Config struct {
	Token     string
	ChannelID string
}

// Bot owns the Discord session. It routes free-text commands to the ledger
// and tracker, and implements the tracker's outbound notification surface
// through its Announcer.
type Bot struct {
	config   Config
	session  *discordgo.Session
	ledger   *service.Ledger
	tracker  *service.Tracker
	eventBus *events.Bus
}

// New creates the bot, opens the gateway connection and registers handlers.
// The tracker is attached separately via SetTracker because the tracker needs
// the bot's Announcer first.
func New(config Config, ledger *service.Ledger, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	bot := &Bot{
		config:   config,
		session:  dg,
		ledger:   ledger,
		eventBus: eventBus,
	}

	dg.AddHandler(bot.handleMessage)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Announce the daily stipend in the main channel
	eventBus.Subscribe(events.EventTypeStipendApplied, func(ctx context.Context, event events.Event) {
		stipend, ok := event.(events.StipendAppliedEvent)
		if !ok {
			return
		}
		message := fmt.Sprintf("💰 Everyone's balance has been topped up with %d shillings! 💰", stipend.Amount)
		if _, err := bot.session.ChannelMessageSend(bot.config.ChannelID, message); err != nil {
			log.Errorf("Failed to announce stipend: %v", err)
		}
	})

	log.Info("Discord bot connected")
	return bot, nil
}

// SetTracker attaches the tracker that bet commands are routed to
func (b *Bot) SetTracker(tracker *service.Tracker) {
	b.tracker = tracker
}

// Announcer returns the service.Notifier implementation bound to this session
func (b *Bot) Announcer() *Announcer {
	return &Announcer{session: b.session, channelID: b.config.ChannelID}
}

// Close shuts down the Discord session
func (b *Bot) Close() error {
	return b.session.Close()
}
