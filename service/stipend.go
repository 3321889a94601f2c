package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/oamaok/esportal-bets/events"
)

// StipendWorker credits every known participant a fixed flat amount once a
// day at a fixed local-time hour
type StipendWorker struct {
	ledger   *Ledger
	eventBus EventPublisher
	amount   int64
	hour     int
	location *time.Location
}

// NewStipendWorker creates a stipend worker
func NewStipendWorker(ledger *Ledger, eventBus EventPublisher, amount int64, hour int, location *time.Location) *StipendWorker {
	return &StipendWorker{
		ledger:   ledger,
		eventBus: eventBus,
		amount:   amount,
		hour:     hour,
		location: location,
	}
}

// Start begins the worker and returns a stop function
func (w *StipendWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.WithFields(log.Fields{
			"amount": w.amount,
			"hour":   w.hour,
			"zone":   w.location.String(),
		}).Info("Stipend worker started")

		for {
			wait := time.Until(w.nextRun(time.Now()))
			log.WithField("wait", wait).Info("Stipend worker waiting until next run")

			select {
			case <-ctx.Done():
				log.Info("Stipend worker shutting down (context cancelled)")
				return
			case <-stopChan:
				log.Info("Stipend worker shutting down (stop requested)")
				return
			case <-time.After(wait):
				w.apply(ctx)
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// apply credits the stipend and announces it through the event bus
func (w *StipendWorker) apply(ctx context.Context) {
	credited := w.ledger.ApplyStipend(w.amount)

	log.WithFields(log.Fields{
		"amount":       w.amount,
		"participants": credited,
	}).Info("Daily stipend applied")

	w.eventBus.Emit(ctx, events.StipendAppliedEvent{
		Amount:       w.amount,
		Participants: credited,
	})
}

// nextRun returns the next occurrence of the configured hour in the
// configured zone, strictly after now
func (w *StipendWorker) nextRun(now time.Time) time.Time {
	local := now.In(w.location)
	next := time.Date(local.Year(), local.Month(), local.Day(), w.hour, 0, 0, 0, w.location)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
