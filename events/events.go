package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeMatchOpened    EventType = "match_opened"
	EventTypeMatchSettled   EventType = "match_settled"
	EventTypeMatchVoided    EventType = "match_voided"
	EventTypeStipendApplied EventType = "stipend_applied"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// MatchOpenedEvent fires when a match's wagering window opens
type MatchOpenedEvent struct {
	MatchID  int64
	ThreadID string
}

func (e MatchOpenedEvent) Type() EventType {
	return EventTypeMatchOpened
}

// MatchSettledEvent fires after payouts have been applied to the ledger
type MatchSettledEvent struct {
	MatchID     int64
	Winner      string
	PayoutTotal int64
}

func (e MatchSettledEvent) Type() EventType {
	return EventTypeMatchSettled
}

// MatchVoidedEvent fires after a tied match has refunded all stakes
type MatchVoidedEvent struct {
	MatchID     int64
	RefundTotal int64
}

func (e MatchVoidedEvent) Type() EventType {
	return EventTypeMatchVoided
}

// StipendAppliedEvent fires after the daily stipend has been credited
type StipendAppliedEvent struct {
	Amount       int64
	Participants int
}

func (e StipendAppliedEvent) Type() EventType {
	return EventTypeStipendApplied
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously; the emitter may be inside the tracker's
	// critical section
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}
