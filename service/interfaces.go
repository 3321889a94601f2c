package service

import (
	"context"
	"time"

	"github.com/oamaok/esportal-bets/events"
	"github.com/oamaok/esportal-bets/models"
)

// MatchProvider defines the interface for the upstream match data source
type MatchProvider interface {
	// WatchedStatuses returns the current online status of every watched player
	WatchedStatuses(ctx context.Context) ([]models.FriendStatus, error)

	// CurrentMatchID returns the id of the match a player is currently in
	CurrentMatchID(ctx context.Context, playerID int64) (int64, error)

	// Match returns the full snapshot of a match by id
	Match(ctx context.Context, id int64) (*models.Match, error)
}

// Notifier defines the outbound chat surface of the tracker. Implementations
// perform network calls; the tracker never invokes them while holding its lock.
type Notifier interface {
	// AnnounceMatch posts the match announcement and opens its betting
	// thread, returning the thread handle
	AnnounceMatch(ctx context.Context, match *models.Match, window time.Duration) (threadID string, err error)

	// NoticeOneMinuteLeft warns the thread that the window is about to close
	NoticeOneMinuteLeft(ctx context.Context, threadID string) error

	// NoticeLocked tells the thread that no further stakes are accepted
	NoticeLocked(ctx context.Context, threadID string) error

	// NoticeVoided tells the thread the match was voided and stakes refunded
	NoticeVoided(ctx context.Context, threadID string) error

	// PostSettlement posts the payout summary for a settled match
	PostSettlement(ctx context.Context, threadID string, winner models.Team, payouts []models.Payout) error

	// ArchiveThread requests archival of a finished match thread
	ArchiveThread(ctx context.Context, threadID string) error
}

// SnapshotStore defines the interface for ledger snapshot persistence
type SnapshotStore interface {
	// Load reads the persisted balance map; a missing snapshot yields an
	// empty map, not an error
	Load(ctx context.Context) (map[string]int64, error)

	// Save atomically replaces the persisted balance map
	Save(ctx context.Context, balances map[string]int64) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}
