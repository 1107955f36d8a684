package sla

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpdeskops/helpdesk-engine/internal/domain"
)

type stubSource struct {
	tickets []domain.Ticket
}

func (s *stubSource) ListActive(context.Context) ([]domain.Ticket, error) {
	return s.tickets, nil
}

type stubStates struct {
	mu    sync.Mutex
	state map[string]string
}

func newStubStates() *stubStates {
	return &stubStates{state: make(map[string]string)}
}

func (s *stubStates) LastClassification(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[id], nil
}

func (s *stubStates) SetClassification(_ context.Context, id, classification string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[id] = classification
	return nil
}

type stubEscalator struct {
	calls []string
}

func (s *stubEscalator) EvaluateEscalation(_ context.Context, ticketID string) error {
	s.calls = append(s.calls, ticketID)
	return nil
}

func monitorTicket(id string, status domain.TicketStatus, createdAt time.Time, window time.Duration) domain.Ticket {
	return domain.Ticket{
		ID:                 id,
		Status:             status,
		Priority:           domain.TicketPriorityCritical,
		Category:           domain.CategoryHardware,
		CreatedAt:          createdAt,
		ResponseDeadline:   createdAt.Add(window / 4),
		ResolutionDeadline: createdAt.Add(window),
	}
}

func TestScanAlertsOnceAndOnChange(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	source := &stubSource{tickets: []domain.Ticket{
		monitorTicket("TICKET-20250310-AAAA0001", domain.TicketStatusOpen, createdAt, 4*time.Hour),
	}}
	states := newStubStates()
	now := createdAt.Add(3*time.Hour + 48*time.Minute) // ratio 0.95

	monitor := NewMonitor(MonitorDependencies{
		Source:     source,
		States:     states,
		Thresholds: DefaultThresholds(),
		Logger:     zap.NewNop(),
		Now:        func() time.Time { return now },
	})

	stats, err := monitor.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Checked)
	assert.Equal(t, 1, stats.Alerts)

	// unchanged classification, no second alert
	stats, err = monitor.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Alerts)

	// crossing into breach alerts again
	now = createdAt.Add(5 * time.Hour)
	stats, err = monitor.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Alerts)
	assert.Equal(t, 1, stats.Breaches)
}

func TestScanBreachTriggersEscalation(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	source := &stubSource{tickets: []domain.Ticket{
		monitorTicket("TICKET-20250310-AAAA0001", domain.TicketStatusInProgress, createdAt, 4*time.Hour),
		monitorTicket("TICKET-20250310-AAAA0002", domain.TicketStatusEscalated, createdAt, 4*time.Hour),
	}}
	escalator := &stubEscalator{}
	now := createdAt.Add(6 * time.Hour)

	monitor := NewMonitor(MonitorDependencies{
		Source:     source,
		States:     newStubStates(),
		Escalator:  escalator,
		Thresholds: DefaultThresholds(),
		Logger:     zap.NewNop(),
		Now:        func() time.Time { return now },
	})

	stats, err := monitor.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Breaches)
	// the already escalated ticket is not re-evaluated
	assert.Equal(t, []string{"TICKET-20250310-AAAA0001"}, escalator.calls)
}

func TestScanInterruptible(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	source := &stubSource{tickets: []domain.Ticket{
		monitorTicket("TICKET-20250310-AAAA0001", domain.TicketStatusOpen, createdAt, 4*time.Hour),
		monitorTicket("TICKET-20250310-AAAA0002", domain.TicketStatusOpen, createdAt, 4*time.Hour),
	}}

	monitor := NewMonitor(MonitorDependencies{
		Source:     source,
		States:     newStubStates(),
		Thresholds: DefaultThresholds(),
		Logger:     zap.NewNop(),
		Now:        func() time.Time { return createdAt },
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := monitor.Scan(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, stats.Interrupt)
	assert.Equal(t, 0, stats.Checked)
}
