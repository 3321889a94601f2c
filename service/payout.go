package service

import (
	"math"
	"sort"

	"github.com/oamaok/esportal-bets/models"
)

// ComputePayouts calculates the settlement payouts for every stake on the
// winning side. The payout multiplier is 2 minus the winning side's upstream
// win probability, rounded half away from zero. Losing stakes get nothing;
// their debit already happened at placement. Pure function; applying the
// result to the ledger is the caller's job.
func ComputePayouts(stakes []*models.Stake, winner models.Team, winnerWinChance float64) []models.Payout {
	odds := 2 - winnerWinChance

	var payouts []models.Payout
	for _, stake := range stakes {
		if stake.Team != winner {
			continue
		}
		payouts = append(payouts, models.Payout{
			ParticipantID: stake.ParticipantID,
			Amount:        roundHalfAwayFromZero(float64(stake.Amount) * odds),
		})
	}

	// Book iteration order is not stable; keep the summary deterministic
	sort.Slice(payouts, func(i, j int) bool {
		return payouts[i].ParticipantID < payouts[j].ParticipantID
	})
	return payouts
}

func roundHalfAwayFromZero(f float64) int64 {
	return int64(math.Round(f))
}
