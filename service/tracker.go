package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/oamaok/esportal-bets/events"
	"github.com/oamaok/esportal-bets/models"
)

const (
	oneMinuteWarning  = time.Minute
	archiveAfter      = 5 * time.Minute
	archiveRetryAfter = 10 * time.Minute
)

// TrackerConfig holds tracker configuration
type TrackerConfig struct {
	PollInterval time.Duration
	BetWindow    time.Duration
}

// Tracker owns the registry of tracked matches and drives their lifecycle
// from periodic upstream polling. It is the single owner of all mutable
// betting state: every compound mutation of a match's book and the ledger
// happens inside its lock. Network calls (upstream fetches, Discord posts)
// are always made outside the lock.
type Tracker struct {
	mu       sync.Mutex
	matches  map[int64]*models.TrackedMatch
	statuses map[int64]models.OnlineStatus

	ledger   *Ledger
	provider MatchProvider
	notifier Notifier
	eventBus EventPublisher
	config   TrackerConfig

	cycleRunning atomic.Bool
}

// NewTracker creates a tracker over the given collaborators
func NewTracker(ledger *Ledger, provider MatchProvider, notifier Notifier, eventBus EventPublisher, config TrackerConfig) *Tracker {
	return &Tracker{
		matches:  make(map[int64]*models.TrackedMatch),
		statuses: make(map[int64]models.OnlineStatus),
		ledger:   ledger,
		provider: provider,
		notifier: notifier,
		eventBus: eventBus,
		config:   config,
	}
}

// Run polls upstream on the configured interval until the context is
// cancelled. A tick that fires while the previous cycle is still running is
// skipped; two reconciliation cycles never run concurrently.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.config.PollInterval)
	defer ticker.Stop()

	log.WithFields(log.Fields{
		"interval": t.config.PollInterval,
		"window":   t.config.BetWindow,
	}).Info("Match tracker started")

	t.Reconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("Match tracker shutting down")
			return
		case <-ticker.C:
			t.Reconcile(ctx)
		}
	}
}

// Reconcile performs one poll cycle: watched-player discovery followed by a
// refresh of every tracked, non-terminal match
func (t *Tracker) Reconcile(ctx context.Context) {
	if !t.cycleRunning.CompareAndSwap(false, true) {
		log.Warn("Previous reconcile cycle still running, skipping tick")
		return
	}
	defer t.cycleRunning.Store(false)

	t.discover(ctx)
	t.refresh(ctx)
}

// discover fetches watched-player statuses and registers matches of players
// whose status just transitioned into in-game
func (t *Tracker) discover(ctx context.Context) {
	statuses, err := t.provider.WatchedStatuses(ctx)
	if err != nil {
		log.WithField("error", err).Warn("Failed to fetch watched player statuses")
		return
	}

	for _, player := range statuses {
		if t.lastStatus(player.ID) != models.StatusInGame && player.OnlineStatus == models.StatusInGame {
			if err := t.discoverMatchFor(ctx, player); err != nil {
				log.WithFields(log.Fields{
					"player": player.Username,
					"error":  err,
				}).Warn("Failed to resolve newly started match, retrying next cycle")
				// Leave the stored status untouched so the in-game edge
				// triggers again on the next cycle
				continue
			}
		}
		t.setStatus(player.ID, player.OnlineStatus)
	}
}

func (t *Tracker) discoverMatchFor(ctx context.Context, player models.FriendStatus) error {
	matchID, err := t.provider.CurrentMatchID(ctx, player.ID)
	if err != nil {
		return err
	}

	if t.isTracked(matchID) {
		return nil
	}

	match, err := t.provider.Match(ctx, matchID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.matches[match.ID]; ok {
		return nil
	}
	t.matches[match.ID] = models.NewTrackedMatch(match, time.Now())

	log.WithFields(log.Fields{
		"match":  match.ID,
		"player": player.Username,
	}).Info("Discovered new match")
	return nil
}

// refresh re-fetches every tracked, non-terminal match and advances its
// lifecycle
func (t *Tracker) refresh(ctx context.Context) {
	t.mu.Lock()
	ids := make([]int64, 0, len(t.matches))
	for id, m := range t.matches {
		if !m.IsTerminal() {
			ids = append(ids, id)
		}
	}
	t.mu.Unlock()

	for _, id := range ids {
		data, err := t.provider.Match(ctx, id)
		if err != nil {
			log.WithFields(log.Fields{
				"match": id,
				"error": err,
			}).Warn("Failed to refresh match, retrying next cycle")
			continue
		}
		t.advance(ctx, id, data)
	}
}

// advance applies a fresh upstream snapshot to a tracked match
func (t *Tracker) advance(ctx context.Context, id int64, data *models.Match) {
	t.mu.Lock()
	match, ok := t.matches[id]
	if !ok || match.IsTerminal() {
		t.mu.Unlock()
		return
	}
	match.Data = data
	needsOpen := match.NeedsAnnouncement() && data.MapID != 0
	ended := !data.Active
	t.mu.Unlock()

	if needsOpen {
		t.open(ctx, id, data)
	}
	if ended {
		t.finish(ctx, id, data)
	}
}

// open announces the match and starts the wagering window. The announcement
// is a network call, so it happens before the state transition; if it fails
// the match stays discovered and the next cycle retries.
func (t *Tracker) open(ctx context.Context, id int64, data *models.Match) {
	threadID, err := t.notifier.AnnounceMatch(ctx, data, t.config.BetWindow)
	if err != nil {
		log.WithFields(log.Fields{
			"match": id,
			"error": err,
		}).Error("Failed to announce match, retrying next cycle")
		return
	}

	t.mu.Lock()
	match, ok := t.matches[id]
	if !ok || match.State != models.MatchStateDiscovered {
		t.mu.Unlock()
		return
	}
	match.ThreadID = threadID
	match.State = models.MatchStateOpen
	t.mu.Unlock()

	log.WithFields(log.Fields{
		"match":  id,
		"thread": threadID,
	}).Info("Wagering window opened")

	if t.config.BetWindow > oneMinuteWarning {
		time.AfterFunc(t.config.BetWindow-oneMinuteWarning, func() {
			t.warnWindowClosing(id)
		})
	}
	time.AfterFunc(t.config.BetWindow, func() {
		t.LockMatch(id)
	})

	t.eventBus.Emit(ctx, events.MatchOpenedEvent{MatchID: id, ThreadID: threadID})
}

// warnWindowClosing posts the one-minute-left notice if the window is still open
func (t *Tracker) warnWindowClosing(id int64) {
	t.mu.Lock()
	match, ok := t.matches[id]
	if !ok || match.State != models.MatchStateOpen {
		t.mu.Unlock()
		return
	}
	threadID := match.ThreadID
	t.mu.Unlock()

	if err := t.notifier.NoticeOneMinuteLeft(context.Background(), threadID); err != nil {
		log.WithFields(log.Fields{"match": id, "error": err}).Warn("Failed to post window warning")
	}
}

// LockMatch closes the wagering window. New placements are rejected from the
// moment the state flips, regardless of whether the lock notice has been
// delivered yet. Firing against an already locked or terminal match is a no-op.
func (t *Tracker) LockMatch(id int64) {
	t.mu.Lock()
	match, ok := t.matches[id]
	if !ok || match.State != models.MatchStateOpen {
		t.mu.Unlock()
		return
	}
	match.State = models.MatchStateLocked
	threadID := match.ThreadID
	t.mu.Unlock()

	log.WithField("match", id).Info("Wagering window locked")

	if err := t.notifier.NoticeLocked(context.Background(), threadID); err != nil {
		log.WithFields(log.Fields{"match": id, "error": err}).Warn("Failed to post lock notice")
	}
}

// finish settles or voids a match that upstream reports as no longer active.
// The terminal-state check and the ledger mutation happen inside one critical
// section, so replaying an already finished match is a no-op and payouts are
// applied exactly once.
func (t *Tracker) finish(ctx context.Context, id int64, data *models.Match) {
	t.mu.Lock()
	match, ok := t.matches[id]
	if !ok || match.IsTerminal() {
		t.mu.Unlock()
		return
	}

	// A match can end before a map was ever picked; nothing was announced
	// and nothing could have been staked
	threadID := match.ThreadID

	if data.Tied() {
		refunded := voidBook(match, t.ledger)
		match.State = models.MatchStateVoided
		t.mu.Unlock()

		log.WithFields(log.Fields{
			"match":    id,
			"refunded": refunded,
		}).Info("Match voided, stakes refunded")

		if threadID != "" {
			if err := t.notifier.NoticeVoided(ctx, threadID); err != nil {
				log.WithFields(log.Fields{"match": id, "error": err}).Warn("Failed to post void notice")
			}
		}
		t.eventBus.Emit(ctx, events.MatchVoidedEvent{MatchID: id, RefundTotal: refunded})
		return
	}

	winner := data.WinningTeam()
	payouts := settleBook(match, t.ledger, winner, data.WinChance(winner))
	match.State = models.MatchStateSettled
	t.mu.Unlock()

	var total int64
	for _, p := range payouts {
		total += p.Amount
	}

	log.WithFields(log.Fields{
		"match":   id,
		"winner":  winner,
		"payouts": len(payouts),
		"total":   total,
	}).Info("Match settled")

	if threadID != "" {
		if err := t.notifier.PostSettlement(ctx, threadID, winner, payouts); err != nil {
			log.WithFields(log.Fields{"match": id, "error": err}).Warn("Failed to post settlement summary")
		}
		t.scheduleArchival(threadID)
	}

	t.eventBus.Emit(ctx, events.MatchSettledEvent{
		MatchID:     id,
		Winner:      string(winner),
		PayoutTotal: total,
	})
}

// scheduleArchival archives the thread a while after settlement, with one
// retry in case Discord unarchives it on late activity
func (t *Tracker) scheduleArchival(threadID string) {
	archive := func() {
		if err := t.notifier.ArchiveThread(context.Background(), threadID); err != nil {
			log.WithFields(log.Fields{"thread": threadID, "error": err}).Warn("Failed to archive thread")
		}
	}
	time.AfterFunc(archiveAfter, archive)
	time.AfterFunc(archiveRetryAfter, archive)
}

// PlaceStake places or replaces a participant's stake on the match whose
// betting thread is threadID. Returns ErrNoSuchMatch when the thread does not
// belong to a tracked match, ErrWindowClosed past the window, and
// ErrInsufficientFunds when the amount exceeds the participant's balance
// after refunding any stake being replaced.
func (t *Tracker) PlaceStake(ctx context.Context, threadID, participantID string, team models.Team, amount int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, match := range t.matches {
		if match.ThreadID == threadID {
			return placeStake(match, t.ledger, participantID, team, amount)
		}
	}
	return ErrNoSuchMatch
}

// MatchCount returns the number of tracked matches, terminal included
func (t *Tracker) MatchCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.matches)
}

// MatchState returns the lifecycle state of a tracked match
func (t *Tracker) MatchState(id int64) (models.MatchState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	match, ok := t.matches[id]
	if !ok {
		return "", false
	}
	return match.State, true
}

func (t *Tracker) lastStatus(playerID int64) models.OnlineStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statuses[playerID]
}

func (t *Tracker) setStatus(playerID int64, status models.OnlineStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses[playerID] = status
}

func (t *Tracker) isTracked(matchID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.matches[matchID]
	return ok
}
