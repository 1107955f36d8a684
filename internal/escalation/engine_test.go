package escalation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/helpdeskops/helpdesk-engine/internal/domain"
)

func engineAt(now time.Time) *Engine {
	return NewEngine(DefaultRouting(), DefaultRules(), func() time.Time { return now })
}

func baseTicket(category domain.TicketCategory, priority domain.TicketPriority, createdAt time.Time) *domain.Ticket {
	return &domain.Ticket{
		ID:                 "TICKET-20250310-AAAA0001",
		Status:             domain.TicketStatusInProgress,
		Priority:           priority,
		Category:           category,
		CreatedAt:          createdAt,
		ResolutionDeadline: createdAt.Add(8 * time.Hour),
	}
}

func TestDecideSecurityCritical(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	engine := engineAt(createdAt)

	decision := engine.Decide(baseTicket(domain.CategorySecurity, domain.TicketPriorityCritical, createdAt))
	assert.True(t, decision.ShouldEscalate)
	assert.Equal(t, domain.TeamSecurity, decision.Team)
	assert.Equal(t, domain.LevelEmergency, decision.Level)
	assert.Equal(t, "security incident", decision.Reason)
}

func TestDecideSecurityNonCritical(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	engine := engineAt(createdAt)

	decision := engine.Decide(baseTicket(domain.CategorySecurity, domain.TicketPriorityMedium, createdAt))
	assert.True(t, decision.ShouldEscalate)
	assert.Equal(t, domain.TeamSecurity, decision.Team)
	assert.Equal(t, domain.LevelL2, decision.Level)
}

func TestDecideThreeFailedAttempts(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	engine := engineAt(createdAt)

	ticket := baseTicket(domain.CategoryNetwork, domain.TicketPriorityHigh, createdAt)
	for i := 1; i <= 3; i++ {
		ticket.Attempts = append(ticket.Attempts, domain.Attempt{AttemptNumber: i, Verdict: domain.VerdictFailure})
	}

	decision := engine.Decide(ticket)
	assert.True(t, decision.ShouldEscalate)
	assert.Equal(t, domain.TeamNetwork, decision.Team)
	assert.Equal(t, domain.LevelL1, decision.Level)
	assert.Equal(t, "3 failed attempts", decision.Reason)
}

func TestDecideFailedAttemptsReasonTracksThreshold(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	engine := NewEngine(DefaultRouting(), Rules{MaxFailedAttempts: 2, BreachRatio: 0.9},
		func() time.Time { return createdAt })

	ticket := baseTicket(domain.CategoryNetwork, domain.TicketPriorityHigh, createdAt)
	ticket.Attempts = []domain.Attempt{
		{AttemptNumber: 1, Verdict: domain.VerdictFailure},
		{AttemptNumber: 2, Verdict: domain.VerdictFailure},
	}

	decision := engine.Decide(ticket)
	assert.True(t, decision.ShouldEscalate)
	assert.Equal(t, "2 failed attempts", decision.Reason)
}

func TestDecideTwoFailedAttemptsNotEnough(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	engine := engineAt(createdAt)

	ticket := baseTicket(domain.CategoryNetwork, domain.TicketPriorityHigh, createdAt)
	ticket.Attempts = []domain.Attempt{
		{AttemptNumber: 1, Verdict: domain.VerdictFailure},
		{AttemptNumber: 2, Verdict: domain.VerdictFailure},
		{AttemptNumber: 3, Verdict: domain.VerdictPending},
	}

	assert.False(t, engine.Decide(ticket).ShouldEscalate)
}

func TestDecideApproachingBreach(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	// 7.5h into an 8h window, ratio ~0.94
	engine := engineAt(createdAt.Add(7*time.Hour + 30*time.Minute))

	decision := engine.Decide(baseTicket(domain.CategorySoftware, domain.TicketPriorityHigh, createdAt))
	assert.True(t, decision.ShouldEscalate)
	assert.Equal(t, domain.TeamSoftware, decision.Team)
	assert.Equal(t, domain.LevelL2, decision.Level)
	assert.Equal(t, "approaching SLA breach", decision.Reason)
}

func TestDecideNoRuleMatches(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	engine := engineAt(createdAt.Add(time.Hour))

	decision := engine.Decide(baseTicket(domain.CategoryHardware, domain.TicketPriorityHigh, createdAt))
	assert.False(t, decision.ShouldEscalate)
	assert.Empty(t, decision.Team)
}

func TestSecurityRuleWinsOverAttempts(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	engine := engineAt(createdAt)

	ticket := baseTicket(domain.CategorySecurity, domain.TicketPriorityHigh, createdAt)
	for i := 1; i <= 4; i++ {
		ticket.Attempts = append(ticket.Attempts, domain.Attempt{AttemptNumber: i, Verdict: domain.VerdictFailure})
	}

	decision := engine.Decide(ticket)
	assert.Equal(t, "security incident", decision.Reason)
	assert.Equal(t, domain.TeamSecurity, decision.Team)
}

func TestRoutingFallback(t *testing.T) {
	routing := DefaultRouting()
	assert.Equal(t, domain.TeamGeneral, routing.TeamFor(domain.CategoryEmail))
	assert.Equal(t, domain.TeamGeneral, routing.TeamFor(domain.TicketCategory("UNKNOWN")))
	assert.Equal(t, domain.TeamAccess, routing.TeamFor(domain.CategoryAccess))
}
