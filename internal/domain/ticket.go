package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusEscalated  TicketStatus = "ESCALATED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityCritical TicketPriority = "CRITICAL"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityLow      TicketPriority = "LOW"
)

// ParsePriority maps free-form input to a known priority.
func ParsePriority(raw string) (TicketPriority, bool) {
	switch TicketPriority(strings.ToUpper(strings.TrimSpace(raw))) {
	case TicketPriorityCritical:
		return TicketPriorityCritical, true
	case TicketPriorityHigh:
		return TicketPriorityHigh, true
	case TicketPriorityMedium:
		return TicketPriorityMedium, true
	case TicketPriorityLow:
		return TicketPriorityLow, true
	}
	return "", false
}

// TicketCategory enumerates problem domains produced by the classifier.
type TicketCategory string

const (
	CategoryHardware TicketCategory = "HARDWARE"
	CategorySoftware TicketCategory = "SOFTWARE"
	CategoryNetwork  TicketCategory = "NETWORK"
	CategoryAccess   TicketCategory = "ACCESS"
	CategorySecurity TicketCategory = "SECURITY"
	CategoryEmail    TicketCategory = "EMAIL"
	CategoryGeneral  TicketCategory = "GENERAL"
)

// ParseCategory maps free-form input to a known category, falling back to
// GENERAL for anything unrecognized.
func ParseCategory(raw string) TicketCategory {
	switch TicketCategory(strings.ToUpper(strings.TrimSpace(raw))) {
	case CategoryHardware:
		return CategoryHardware
	case CategorySoftware:
		return CategorySoftware
	case CategoryNetwork:
		return CategoryNetwork
	case CategoryAccess:
		return CategoryAccess
	case CategorySecurity:
		return CategorySecurity
	case CategoryEmail:
		return CategoryEmail
	default:
		return CategoryGeneral
	}
}

// Ticket is the aggregate for support requests. Mutations go through the
// service layer only; Version backs optimistic concurrency in the store.
type Ticket struct {
	ID                 string
	Subject            string
	Description        string
	UserEmail          string
	Status             TicketStatus
	Priority           TicketPriority
	Category           TicketCategory
	AssignedTeam       *string
	EscalationLevel    *EscalationLevel
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ResponseDeadline   time.Time
	ResolutionDeadline time.Time
	ResolvedAt         *time.Time
	ClosedAt           *time.Time
	Version            int64
	Attempts           []Attempt
	History            []StatusChange
}

// NewTicketID generates a ticket identifier of the form
// TICKET-YYYYMMDD-XXXXXXXX.
func NewTicketID(createdAt time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "TICKET-" + createdAt.Format("20060102") + "-" + suffix
}

// ElapsedRatio is the fraction of the resolution window consumed at now.
// A closed window (should not happen given deadline invariants) yields 0.
func (t *Ticket) ElapsedRatio(now time.Time) float64 {
	window := t.ResolutionDeadline.Sub(t.CreatedAt)
	if window <= 0 {
		return 0
	}
	return float64(now.Sub(t.CreatedAt)) / float64(window)
}

// FailedAttempts counts attempts with a Failure verdict.
func (t *Ticket) FailedAttempts() int {
	failed := 0
	for _, attempt := range t.Attempts {
		if attempt.Verdict == VerdictFailure {
			failed++
		}
	}
	return failed
}

// AttemptByNumber returns the attempt with the given 1-based number.
func (t *Ticket) AttemptByNumber(n int) *Attempt {
	for i := range t.Attempts {
		if t.Attempts[i].AttemptNumber == n {
			return &t.Attempts[i]
		}
	}
	return nil
}

// IsActive reports whether the ticket is still subject to SLA monitoring.
func (t *Ticket) IsActive() bool {
	return t.Status != TicketStatusResolved && t.Status != TicketStatusClosed
}

// Clone returns a deep copy for consistent snapshot reads.
func (t *Ticket) Clone() *Ticket {
	copied := *t
	if t.AssignedTeam != nil {
		team := *t.AssignedTeam
		copied.AssignedTeam = &team
	}
	if t.EscalationLevel != nil {
		level := *t.EscalationLevel
		copied.EscalationLevel = &level
	}
	if t.ResolvedAt != nil {
		at := *t.ResolvedAt
		copied.ResolvedAt = &at
	}
	if t.ClosedAt != nil {
		at := *t.ClosedAt
		copied.ClosedAt = &at
	}
	copied.Attempts = make([]Attempt, len(t.Attempts))
	for i, attempt := range t.Attempts {
		copied.Attempts[i] = attempt
		if attempt.UserFeedback != nil {
			feedback := *attempt.UserFeedback
			copied.Attempts[i].UserFeedback = &feedback
		}
		if attempt.ResolvedAt != nil {
			at := *attempt.ResolvedAt
			copied.Attempts[i].ResolvedAt = &at
		}
	}
	copied.History = append([]StatusChange(nil), t.History...)
	return &copied
}
