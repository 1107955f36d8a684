package sla

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/helpdeskops/helpdesk-engine/internal/domain"
	"github.com/helpdeskops/helpdesk-engine/internal/events"
)

// TicketSource lists consistent snapshots of tickets still subject to SLA
// monitoring (status not Resolved/Closed).
type TicketSource interface {
	ListActive(ctx context.Context) ([]domain.Ticket, error)
}

// StateStore remembers the last emitted classification per ticket so a
// re-scan of an unchanged ticket emits no duplicate alert.
type StateStore interface {
	LastClassification(ctx context.Context, ticketID string) (string, error)
	SetClassification(ctx context.Context, ticketID, classification string) error
}

// Escalator is invoked when a ticket reaches breach and is not already
// escalated.
type Escalator interface {
	EvaluateEscalation(ctx context.Context, ticketID string) error
}

// Monitor periodically classifies open tickets against their resolution
// deadlines and emits at most one alert per classification change.
type Monitor struct {
	source     TicketSource
	states     StateStore
	escalator  Escalator
	dispatcher events.Dispatcher
	thresholds Thresholds
	logger     *zap.Logger
	now        func() time.Time
}

// MonitorDependencies bundles collaborators for the monitor.
type MonitorDependencies struct {
	Source     TicketSource
	States     StateStore
	Escalator  Escalator
	Dispatcher events.Dispatcher
	Thresholds Thresholds
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewMonitor constructs the monitor.
func NewMonitor(deps MonitorDependencies) *Monitor {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Monitor{
		source:     deps.Source,
		states:     deps.States,
		escalator:  deps.Escalator,
		dispatcher: deps.Dispatcher,
		thresholds: deps.Thresholds,
		logger:     deps.Logger,
		now:        now,
	}
}

// ScanStats summarizes one scan cycle.
type ScanStats struct {
	Checked   int
	Alerts    int
	Breaches  int
	Errors    int
	Interrupt bool
}

// Scan evaluates every active ticket once. A single ticket's evaluation
// error is logged and skipped rather than aborting the scan. The scan is
// interruptible between tickets; unscanned tickets are picked up next cycle
// since alert state is tracked per ticket.
func (m *Monitor) Scan(ctx context.Context) (ScanStats, error) {
	stats := ScanStats{}

	tickets, err := m.source.ListActive(ctx)
	if err != nil {
		return stats, err
	}

	for i := range tickets {
		select {
		case <-ctx.Done():
			stats.Interrupt = true
			return stats, ctx.Err()
		default:
		}

		stats.Checked++
		if err := m.evaluate(ctx, &tickets[i], &stats); err != nil {
			stats.Errors++
			m.logger.Warn("sla evaluation failed",
				zap.String("ticket_id", tickets[i].ID), zap.Error(err))
		}
	}
	return stats, nil
}

func (m *Monitor) evaluate(ctx context.Context, ticket *domain.Ticket, stats *ScanStats) error {
	ratio := ticket.ElapsedRatio(m.now())
	classification := Classify(ratio, m.thresholds)

	last, err := m.states.LastClassification(ctx, ticket.ID)
	if err != nil {
		return err
	}
	if last != string(classification) {
		stats.Alerts++
		m.publishAlert(ctx, ticket.ID, classification, ratio)
		if err := m.states.SetClassification(ctx, ticket.ID, string(classification)); err != nil {
			return err
		}
	}

	if classification == ClassificationBreach {
		stats.Breaches++
		if ticket.Status != domain.TicketStatusEscalated && m.escalator != nil {
			if err := m.escalator.EvaluateEscalation(ctx, ticket.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Monitor) publishAlert(ctx context.Context, ticketID string, classification Classification, ratio float64) {
	if m.dispatcher == nil {
		return
	}
	_ = m.dispatcher.Publish(ctx, events.Event{
		Type:      events.EventSLAAlert,
		TicketID:  ticketID,
		Actor:     domain.ActorSystem,
		Timestamp: m.now(),
		Payload: events.SLAAlertPayload{
			Classification: string(classification),
			ElapsedRatio:   ratio,
		},
	})
}
