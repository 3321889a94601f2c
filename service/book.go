package service

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/oamaok/esportal-bets/models"
)

var (
	// ErrWindowClosed is returned for placements after the wagering window
	// has closed
	ErrWindowClosed = errors.New("wagering window is closed")

	// ErrMalformedStake is returned for placements that fail validation
	// before touching the ledger
	ErrMalformedStake = errors.New("malformed stake")

	// ErrNoSuchMatch is returned when a thread does not belong to a
	// tracked match
	ErrNoSuchMatch = errors.New("no tracked match for thread")
)

// placeStake applies the replace-not-stack placement rules to a match's book.
// An existing stake from the same participant is refunded before the new
// amount is debited, so after any number of replacements only the most recent
// amount is held. The caller holds the tracker lock; that lock is what makes
// check-balance-then-debit-then-write one critical section.
func placeStake(match *models.TrackedMatch, ledger *Ledger, participantID string, team models.Team, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", ErrMalformedStake, amount)
	}
	if !match.CanAcceptStakes() {
		return ErrWindowClosed
	}

	var refundable int64
	if existing := match.Book.Stake(participantID); existing != nil {
		refundable = existing.Amount
	}

	// Validate against the balance the participant would have after the
	// refund, without mutating anything yet
	if amount > ledger.Balance(participantID)+refundable {
		return fmt.Errorf("%w: have %d, need %d",
			ErrInsufficientFunds, ledger.Balance(participantID)+refundable, amount)
	}

	if refundable > 0 {
		if _, err := ledger.Credit(participantID, refundable); err != nil {
			return err
		}
	}
	if _, err := ledger.Debit(participantID, amount); err != nil {
		// Unreachable given the validation above, but never leave the
		// refund applied without the replacement stake
		return err
	}

	match.Book.Put(&models.Stake{
		ParticipantID: participantID,
		Team:          team,
		Amount:        amount,
	})

	log.WithFields(log.Fields{
		"match":       match.ID,
		"participant": participantID,
		"team":        team,
		"amount":      amount,
		"replaced":    refundable,
	}).Info("Stake placed")

	return nil
}

// settleBook credits the payout of every winning stake and returns the payout
// list. The caller holds the tracker lock and has already verified the match
// is not terminal.
func settleBook(match *models.TrackedMatch, ledger *Ledger, winner models.Team, winnerWinChance float64) []models.Payout {
	payouts := ComputePayouts(match.Book.All(), winner, winnerWinChance)
	for _, payout := range payouts {
		if _, err := ledger.Credit(payout.ParticipantID, payout.Amount); err != nil {
			log.WithFields(log.Fields{
				"match":       match.ID,
				"participant": payout.ParticipantID,
				"amount":      payout.Amount,
				"error":       err,
			}).Error("Failed to credit payout")
		}
	}
	return payouts
}

// voidBook refunds every active stake's amount and clears the book, returning
// the total refunded. The caller holds the tracker lock.
func voidBook(match *models.TrackedMatch, ledger *Ledger) int64 {
	var total int64
	for _, stake := range match.Book.All() {
		if _, err := ledger.Credit(stake.ParticipantID, stake.Amount); err != nil {
			log.WithFields(log.Fields{
				"match":       match.ID,
				"participant": stake.ParticipantID,
				"amount":      stake.Amount,
				"error":       err,
			}).Error("Failed to refund stake")
			continue
		}
		total += stake.Amount
	}
	match.Book.Clear()
	return total
}
