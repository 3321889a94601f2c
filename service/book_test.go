package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oamaok/esportal-bets/models"
)

func openMatch(t *testing.T, id int64) *models.TrackedMatch {
	t.Helper()
	match := models.NewTrackedMatch(&models.Match{ID: id, Active: true, MapID: 1}, time.Now())
	match.State = models.MatchStateOpen
	match.ThreadID = "thread-1"
	return match
}

func TestPlaceStake_DebitsLedger(t *testing.T) {
	ledger := NewLedger(1000)
	match := openMatch(t, 1)

	err := placeStake(match, ledger, "alice", models.Team1, 300)
	require.NoError(t, err)

	assert.Equal(t, int64(700), ledger.Balance("alice"))
	stake := match.Book.Stake("alice")
	require.NotNil(t, stake)
	assert.Equal(t, models.Team1, stake.Team)
	assert.Equal(t, int64(300), stake.Amount)
}

func TestPlaceStake_ReplaceRefundsPriorAmount(t *testing.T) {
	ledger := NewLedger(1000)
	match := openMatch(t, 1)

	// A chain of replacements must net out to the last amount only
	require.NoError(t, placeStake(match, ledger, "alice", models.Team1, 300))
	require.NoError(t, placeStake(match, ledger, "alice", models.Team2, 800))
	require.NoError(t, placeStake(match, ledger, "alice", models.Team1, 50))

	assert.Equal(t, int64(950), ledger.Balance("alice"))
	assert.Equal(t, 1, match.Book.Size())

	stake := match.Book.Stake("alice")
	require.NotNil(t, stake)
	assert.Equal(t, models.Team1, stake.Team)
	assert.Equal(t, int64(50), stake.Amount)
}

func TestPlaceStake_ReplacementCanUseRefundedFunds(t *testing.T) {
	ledger := NewLedger(1000)
	match := openMatch(t, 1)

	require.NoError(t, placeStake(match, ledger, "alice", models.Team1, 900))

	// 1000 total: 100 free + 900 refundable covers the full 1000
	require.NoError(t, placeStake(match, ledger, "alice", models.Team1, 1000))
	assert.Equal(t, int64(0), ledger.Balance("alice"))
}

func TestPlaceStake_InsufficientFundsLeavesStateUntouched(t *testing.T) {
	ledger := NewLedger(1000)
	match := openMatch(t, 1)

	require.NoError(t, placeStake(match, ledger, "alice", models.Team1, 300))

	err := placeStake(match, ledger, "alice", models.Team2, 1500)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))

	// The original stake and its debit survive the failed replacement
	assert.Equal(t, int64(700), ledger.Balance("alice"))
	stake := match.Book.Stake("alice")
	require.NotNil(t, stake)
	assert.Equal(t, models.Team1, stake.Team)
	assert.Equal(t, int64(300), stake.Amount)
}

func TestPlaceStake_RejectedWhenNotOpen(t *testing.T) {
	ledger := NewLedger(1000)

	for _, state := range []models.MatchState{
		models.MatchStateDiscovered,
		models.MatchStateLocked,
		models.MatchStateSettled,
		models.MatchStateVoided,
	} {
		match := openMatch(t, 1)
		match.State = state

		err := placeStake(match, ledger, "alice", models.Team1, 100)
		require.Error(t, err, "state %s", state)
		assert.True(t, errors.Is(err, ErrWindowClosed), "state %s", state)
	}

	assert.Equal(t, int64(1000), ledger.Balance("alice"))
}

func TestPlaceStake_RejectsNonPositiveAmount(t *testing.T) {
	ledger := NewLedger(1000)
	match := openMatch(t, 1)

	err := placeStake(match, ledger, "alice", models.Team1, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedStake))

	err = placeStake(match, ledger, "alice", models.Team1, -10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedStake))
}

func TestSettleBook_CreditsOnlyWinners(t *testing.T) {
	ledger := NewLedger(1000)
	match := openMatch(t, 1)

	require.NoError(t, placeStake(match, ledger, "alice", models.Team1, 300))
	require.NoError(t, placeStake(match, ledger, "bob", models.Team2, 400))

	payouts := settleBook(match, ledger, models.Team1, 0.5)
	require.Len(t, payouts, 1)
	assert.Equal(t, "alice", payouts[0].ParticipantID)
	assert.Equal(t, int64(450), payouts[0].Amount)

	assert.Equal(t, int64(1150), ledger.Balance("alice"))
	// Bob's debit stands, no further action on the losing side
	assert.Equal(t, int64(600), ledger.Balance("bob"))
}

func TestVoidBook_RefundsExactlyTheStakedAmounts(t *testing.T) {
	ledger := NewLedger(1000)
	match := openMatch(t, 1)

	require.NoError(t, placeStake(match, ledger, "alice", models.Team1, 300))
	require.NoError(t, placeStake(match, ledger, "bob", models.Team2, 400))

	refunded := voidBook(match, ledger)
	assert.Equal(t, int64(700), refunded)

	// Net balance change for the round is zero
	assert.Equal(t, int64(1000), ledger.Balance("alice"))
	assert.Equal(t, int64(1000), ledger.Balance("bob"))
	assert.Equal(t, 0, match.Book.Size())
}
