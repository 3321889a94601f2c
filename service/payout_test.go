package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oamaok/esportal-bets/models"
)

func TestComputePayouts_OddsRounding(t *testing.T) {
	stakes := []*models.Stake{
		{ParticipantID: "alice", Team: models.Team1, Amount: 100},
	}

	// win chance 0.40 -> odds 1.60 -> payout round(160) = 160
	payouts := ComputePayouts(stakes, models.Team1, 0.40)
	require.Len(t, payouts, 1)
	assert.Equal(t, int64(160), payouts[0].Amount)
}

func TestComputePayouts_EvenOdds(t *testing.T) {
	stakes := []*models.Stake{
		{ParticipantID: "alice", Team: models.Team1, Amount: 300},
	}

	// win chance 0.5 -> odds 1.5 -> payout round(450) = 450
	payouts := ComputePayouts(stakes, models.Team1, 0.5)
	require.Len(t, payouts, 1)
	assert.Equal(t, int64(450), payouts[0].Amount)
}

func TestComputePayouts_HalfRoundsAwayFromZero(t *testing.T) {
	stakes := []*models.Stake{
		{ParticipantID: "alice", Team: models.Team2, Amount: 5},
	}

	// 5 * 1.5 = 7.5 -> rounds to 8, not 7
	payouts := ComputePayouts(stakes, models.Team2, 0.5)
	require.Len(t, payouts, 1)
	assert.Equal(t, int64(8), payouts[0].Amount)
}

func TestComputePayouts_LosersGetNothing(t *testing.T) {
	stakes := []*models.Stake{
		{ParticipantID: "alice", Team: models.Team1, Amount: 100},
		{ParticipantID: "bob", Team: models.Team2, Amount: 500},
	}

	payouts := ComputePayouts(stakes, models.Team1, 0.5)
	require.Len(t, payouts, 1)
	assert.Equal(t, "alice", payouts[0].ParticipantID)
}

func TestComputePayouts_EmptyBook(t *testing.T) {
	payouts := ComputePayouts(nil, models.Team1, 0.5)
	assert.Empty(t, payouts)
}

func TestComputePayouts_DeterministicOrder(t *testing.T) {
	stakes := []*models.Stake{
		{ParticipantID: "zed", Team: models.Team1, Amount: 100},
		{ParticipantID: "amy", Team: models.Team1, Amount: 100},
		{ParticipantID: "mel", Team: models.Team1, Amount: 100},
	}

	payouts := ComputePayouts(stakes, models.Team1, 0.5)
	require.Len(t, payouts, 3)
	assert.Equal(t, "amy", payouts[0].ParticipantID)
	assert.Equal(t, "mel", payouts[1].ParticipantID)
	assert.Equal(t, "zed", payouts[2].ParticipantID)
}
