package events

import (
	"time"

	"github.com/helpdeskops/helpdesk-engine/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventStatusChanged   EventType = "ticket_status_changed"
	EventAttemptRecorded EventType = "attempt_recorded"
	EventFeedbackApplied EventType = "feedback_applied"
	EventTicketEscalated EventType = "ticket_escalated"
	EventSLAAlert        EventType = "sla_alert"
)

// Event represents a domain event emitted by the lifecycle engine.
type Event struct {
	ID        string       `json:"id"`
	Type      EventType    `json:"type"`
	TicketID  string       `json:"ticket_id"`
	Actor     domain.Actor `json:"actor"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   interface{}  `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Category           domain.TicketCategory `json:"category"`
	Priority           domain.TicketPriority `json:"priority"`
	Subject            string                `json:"subject"`
	UserEmail          string                `json:"user_email"`
	ResponseDeadline   time.Time             `json:"response_deadline"`
	ResolutionDeadline time.Time             `json:"resolution_deadline"`
}

// StatusChangedPayload is the lifecycle event consumed by audit/dashboard.
type StatusChangedPayload struct {
	FromStatus domain.TicketStatus `json:"from_status"`
	ToStatus   domain.TicketStatus `json:"to_status"`
	Message    string              `json:"message,omitempty"`
}

// AttemptRecordedPayload payload.
type AttemptRecordedPayload struct {
	AttemptNumber   int    `json:"attempt_number"`
	SolutionPreview string `json:"solution_preview"`
}

// FeedbackAppliedPayload payload.
type FeedbackAppliedPayload struct {
	AttemptNumber int                   `json:"attempt_number"`
	Verdict       domain.AttemptVerdict `json:"verdict"`
}

// EscalationRequestedPayload is consumed by the notification dispatcher.
type EscalationRequestedPayload struct {
	Team   string                 `json:"team"`
	Level  domain.EscalationLevel `json:"level"`
	Reason string                 `json:"reason"`
}

// SLAAlertPayload is consumed by monitoring/dashboard.
type SLAAlertPayload struct {
	Classification string  `json:"classification"`
	ElapsedRatio   float64 `json:"elapsed_ratio"`
}
