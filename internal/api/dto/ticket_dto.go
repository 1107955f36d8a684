package dto

import (
	"time"

	"github.com/helpdeskops/helpdesk-engine/internal/domain"
)

// CreateTicketRequest carries a classification result into the engine.
type CreateTicketRequest struct {
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	Confidence  float64 `json:"confidence"`
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	UserEmail   string  `json:"user_email"`
}

// RecordAttemptRequest payload.
type RecordAttemptRequest struct {
	SolutionProvided string `json:"solution_provided"`
}

// ApplyFeedbackRequest payload.
type ApplyFeedbackRequest struct {
	FeedbackText string `json:"feedback_text"`
}

// TransitionRequest carries an optional note for collaborator-driven
// transitions (resolve, reopen).
type TransitionRequest struct {
	Note string `json:"note"`
}

// TokenRequest exchanges a collaborator API key for a bearer token.
type TokenRequest struct {
	Service string `json:"service"`
	APIKey  string `json:"api_key"`
}

// TokenResponse payload.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TicketSummary response.
type TicketSummary struct {
	ID                 string                  `json:"id"`
	Subject            string                  `json:"subject"`
	Status             domain.TicketStatus     `json:"status"`
	Priority           domain.TicketPriority   `json:"priority"`
	Category           domain.TicketCategory   `json:"category"`
	AssignedTeam       *string                 `json:"assigned_team"`
	EscalationLevel    *domain.EscalationLevel `json:"escalation_level,omitempty"`
	UserEmail          string                  `json:"user_email"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
	ResponseDeadline   time.Time               `json:"response_deadline"`
	ResolutionDeadline time.Time               `json:"resolution_deadline"`
}

// AttemptResponse payload.
type AttemptResponse struct {
	AttemptNumber    int                   `json:"attempt_number"`
	SolutionProvided string                `json:"solution_provided"`
	UserFeedback     *string               `json:"user_feedback"`
	Verdict          domain.AttemptVerdict `json:"verdict"`
	CreatedAt        time.Time             `json:"created_at"`
	ResolvedAt       *time.Time            `json:"resolved_at"`
}

// HistoryEntryResponse payload.
type HistoryEntryResponse struct {
	Seq       int                 `json:"seq"`
	Status    domain.TicketStatus `json:"status"`
	Actor     domain.Actor        `json:"actor"`
	Message   string              `json:"message"`
	CreatedAt time.Time           `json:"created_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string                 `json:"description"`
	ResolvedAt  *time.Time             `json:"resolved_at"`
	ClosedAt    *time.Time             `json:"closed_at"`
	Attempts    []AttemptResponse      `json:"attempts"`
	History     []HistoryEntryResponse `json:"history"`
}

// EscalationResponse reports a decision-engine outcome.
type EscalationResponse struct {
	ShouldEscalate bool                   `json:"should_escalate"`
	Team           string                 `json:"team,omitempty"`
	Level          domain.EscalationLevel `json:"level,omitempty"`
	Reason         string                 `json:"reason,omitempty"`
}
