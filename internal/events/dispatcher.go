package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// queueDispatcher decouples publishers from subscribers through a buffered
// queue so a slow or failing subscriber never blocks a state transition.
type queueDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	queue     chan Event
	logger    *zap.Logger
}

// NewQueueDispatcher creates a dispatcher with the given queue capacity.
// Run must be started for events to be delivered.
func NewQueueDispatcher(capacity int, logger *zap.Logger) *queueDispatcher {
	if capacity <= 0 {
		capacity = 256
	}
	return &queueDispatcher{
		listeners: make(map[EventType][]EventHandler),
		queue:     make(chan Event, capacity),
		logger:    logger,
	}
}

// Publish enqueues the event. When the queue is full the event is dropped
// with a warning: outbound delivery is best-effort and must not block or
// roll back the mutation that produced it.
func (d *queueDispatcher) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	select {
	case d.queue <- event:
	default:
		d.logger.Warn("event queue full, dropping event",
			zap.String("type", string(event.Type)),
			zap.String("ticket_id", event.TicketID))
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *queueDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Run drains the queue until ctx is cancelled. Handler errors are logged
// and do not stop delivery to remaining handlers.
func (d *queueDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.queue:
			d.deliver(ctx, event)
		}
	}
}

func (d *queueDispatcher) deliver(ctx context.Context, event Event) {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			d.logger.Warn("event handler failed",
				zap.String("type", string(event.Type)),
				zap.String("ticket_id", event.TicketID),
				zap.Error(err))
		}
	}
}
