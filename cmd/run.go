package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/oamaok/esportal-bets/bot"
	"github.com/oamaok/esportal-bets/config"
	"github.com/oamaok/esportal-bets/database"
	"github.com/oamaok/esportal-bets/esportal"
	"github.com/oamaok/esportal-bets/events"
	"github.com/oamaok/esportal-bets/service"
	"github.com/oamaok/esportal-bets/storage"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting esportal-bets...")

	// Load configuration
	cfg := config.Get()

	// Pick the ledger snapshot store
	var store service.SnapshotStore
	var db *database.DB
	if cfg.DatabaseURL != "" {
		log.Println("Connecting to database...")
		var err error
		db, err = database.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		store = storage.NewPostgresStore(db)
		log.Println("Using Postgres ledger snapshot store")
	} else {
		store = storage.NewFileStore(cfg.LedgerFile)
		log.Printf("Using file ledger snapshot store at %s", cfg.LedgerFile)
	}

	// Restore the ledger
	ledger := service.NewLedger(cfg.StartingBalance)
	balances, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ledger snapshot: %w", err)
	}
	ledger.Restore(balances)
	log.Printf("Ledger restored with %d participants", len(balances))

	// Initialize event bus and snapshot persistence
	eventBus := events.NewBus()
	persist := func(ctx context.Context, _ events.Event) {
		if err := store.Save(ctx, ledger.Snapshot()); err != nil {
			// The in-memory ledger stays authoritative until the next
			// successful write
			log.Printf("Failed to persist ledger snapshot: %v", err)
		}
	}
	eventBus.Subscribe(events.EventTypeMatchSettled, persist)
	eventBus.Subscribe(events.EventTypeMatchVoided, persist)
	eventBus.Subscribe(events.EventTypeStipendApplied, persist)

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:     cfg.DiscordToken,
		ChannelID: cfg.ChannelID,
	}, ledger, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	// Start the match tracker
	client := esportal.NewClient(cfg.EsportalBaseURL, cfg.EsportalUsername)
	tracker := service.NewTracker(ledger, client, discordBot.Announcer(), eventBus, service.TrackerConfig{
		PollInterval: cfg.PollInterval,
		BetWindow:    cfg.BetWindow,
	})
	discordBot.SetTracker(tracker)
	go tracker.Run(ctx)

	// Start the daily stipend worker
	stipendWorker := service.NewStipendWorker(ledger, eventBus, cfg.StipendAmount, cfg.StipendHour, cfg.Location())
	stopStipend := stipendWorker.Start(ctx)

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down...")
	stopStipend()

	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Final snapshot so nothing credited since the last settlement is lost
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Save(shutdownCtx, ledger.Snapshot()); err != nil {
		log.Printf("Failed to write final ledger snapshot: %v", err)
	}

	if db != nil {
		log.Println("Closing database connection...")
		db.Close()
	}

	log.Println("Shutdown completed")
	return nil
}
