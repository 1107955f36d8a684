package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicketIDFormat(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^TICKET-20250310-[0-9A-F]{8}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTicketID(createdAt)
		require.Regexp(t, pattern, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestElapsedRatio(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	ticket := Ticket{
		CreatedAt:          createdAt,
		ResolutionDeadline: createdAt.Add(4 * time.Hour),
	}

	assert.InDelta(t, 0.0, ticket.ElapsedRatio(createdAt), 1e-9)
	assert.InDelta(t, 0.5, ticket.ElapsedRatio(createdAt.Add(2*time.Hour)), 1e-9)
	assert.InDelta(t, 1.0, ticket.ElapsedRatio(createdAt.Add(4*time.Hour)), 1e-9)
	assert.InDelta(t, 1.25, ticket.ElapsedRatio(createdAt.Add(5*time.Hour)), 1e-9)
}

func TestFailedAttempts(t *testing.T) {
	ticket := Ticket{Attempts: []Attempt{
		{AttemptNumber: 1, Verdict: VerdictFailure},
		{AttemptNumber: 2, Verdict: VerdictSuccess},
		{AttemptNumber: 3, Verdict: VerdictPending},
		{AttemptNumber: 4, Verdict: VerdictFailure},
	}}
	assert.Equal(t, 2, ticket.FailedAttempts())
}

func TestCloneIsIndependent(t *testing.T) {
	team := TeamHardware
	feedbackText := "still broken"
	ticket := &Ticket{
		ID:           "TICKET-20250310-AAAA0001",
		Status:       TicketStatusEscalated,
		AssignedTeam: &team,
		Attempts: []Attempt{
			{AttemptNumber: 1, Verdict: VerdictFailure, UserFeedback: &feedbackText},
		},
		History: []StatusChange{
			{Seq: 0, Status: TicketStatusOpen, Actor: ActorSystem},
		},
	}

	clone := ticket.Clone()
	*clone.AssignedTeam = TeamNetwork
	*clone.Attempts[0].UserFeedback = "mutated"
	clone.History = append(clone.History, StatusChange{Seq: 1, Status: TicketStatusEscalated})

	assert.Equal(t, TeamHardware, *ticket.AssignedTeam)
	assert.Equal(t, "still broken", *ticket.Attempts[0].UserFeedback)
	assert.Len(t, ticket.History, 1)
}

func TestParsePriority(t *testing.T) {
	for raw, want := range map[string]TicketPriority{
		"critical": TicketPriorityCritical,
		"HIGH":     TicketPriorityHigh,
		" medium ": TicketPriorityMedium,
		"Low":      TicketPriorityLow,
	} {
		got, ok := ParsePriority(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got)
	}

	_, ok := ParsePriority("urgent")
	assert.False(t, ok)
}

func TestParseCategoryFallsBackToGeneral(t *testing.T) {
	assert.Equal(t, CategorySecurity, ParseCategory("security"))
	assert.Equal(t, CategoryGeneral, ParseCategory("printer"))
	assert.Equal(t, CategoryGeneral, ParseCategory(""))
}
