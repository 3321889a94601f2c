package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oamaok/esportal-bets/events"
)

func newStipendWorker(t *testing.T, ledger *Ledger, bus EventPublisher) *StipendWorker {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Helsinki")
	require.NoError(t, err)
	return NewStipendWorker(ledger, bus, 100, 6, loc)
}

func TestStipendWorker_NextRunLaterToday(t *testing.T) {
	worker := newStipendWorker(t, NewLedger(1000), new(MockEventPublisher))

	now := time.Date(2024, 3, 10, 4, 30, 0, 0, worker.location)
	next := worker.nextRun(now)

	assert.Equal(t, time.Date(2024, 3, 10, 6, 0, 0, 0, worker.location), next)
}

func TestStipendWorker_NextRunRollsToTomorrow(t *testing.T) {
	worker := newStipendWorker(t, NewLedger(1000), new(MockEventPublisher))

	now := time.Date(2024, 3, 10, 9, 0, 0, 0, worker.location)
	next := worker.nextRun(now)

	assert.Equal(t, time.Date(2024, 3, 11, 6, 0, 0, 0, worker.location), next)
}

func TestStipendWorker_NextRunExactHourRollsOver(t *testing.T) {
	worker := newStipendWorker(t, NewLedger(1000), new(MockEventPublisher))

	// A run at exactly the configured hour schedules the next one a full
	// day out, never immediately again
	now := time.Date(2024, 3, 10, 6, 0, 0, 0, worker.location)
	next := worker.nextRun(now)

	assert.Equal(t, time.Date(2024, 3, 11, 6, 0, 0, 0, worker.location), next)
}

func TestStipendWorker_NextRunHonorsZoneOfCaller(t *testing.T) {
	worker := newStipendWorker(t, NewLedger(1000), new(MockEventPublisher))

	// 04:00 UTC is 06:00 in Helsinki during winter, so the run is due a
	// full day out, not in two hours
	now := time.Date(2024, 1, 15, 4, 0, 0, 0, time.UTC)
	next := worker.nextRun(now)

	assert.Equal(t, time.Date(2024, 1, 16, 6, 0, 0, 0, worker.location), next)
}

func TestStipendWorker_ApplyCreditsAndAnnounces(t *testing.T) {
	ledger := NewLedger(1000)
	ledger.Balance("alice")
	ledger.Balance("bob")

	bus := new(MockEventPublisher)
	bus.On("Emit", mock.Anything, events.StipendAppliedEvent{Amount: 100, Participants: 2}).Once()

	worker := newStipendWorker(t, ledger, bus)
	worker.apply(context.Background())

	assert.Equal(t, int64(1100), ledger.Balance("alice"))
	assert.Equal(t, int64(1100), ledger.Balance("bob"))
	bus.AssertExpectations(t)
}

func TestStipendWorker_StopBeforeFirstRun(t *testing.T) {
	ledger := NewLedger(1000)
	ledger.Balance("alice")

	bus := new(MockEventPublisher)
	worker := newStipendWorker(t, ledger, bus)

	stop := worker.Start(context.Background())
	stop()

	// The worker never got to apply anything
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1000), ledger.Balance("alice"))
	bus.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
}
