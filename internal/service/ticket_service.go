package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helpdeskops/helpdesk-engine/internal/domain"
	"github.com/helpdeskops/helpdesk-engine/internal/escalation"
	"github.com/helpdeskops/helpdesk-engine/internal/events"
	"github.com/helpdeskops/helpdesk-engine/internal/feedback"
	"github.com/helpdeskops/helpdesk-engine/internal/repository"
	"github.com/helpdeskops/helpdesk-engine/internal/sla"
	apperrors "github.com/helpdeskops/helpdesk-engine/pkg/util"
)

// TicketService coordinates the ticket lifecycle: creation, state
// transitions, resolution attempts, feedback and escalation. All mutations
// are serialized per ticket id and persisted through an atomic versioned
// write before events are published.
type TicketService struct {
	tickets       repository.TicketRepository
	dispatcher    events.Dispatcher
	calculator    *sla.Calculator
	engine        *escalation.Engine
	routing       escalation.Routing
	classifier    feedback.Classifier
	logger        *zap.Logger
	locks         keyedLocks
	minConfidence float64
	now           func() time.Time
}

// TicketDependencies bundles collaborators for the service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Calculator *sla.Calculator
	Engine     *escalation.Engine
	Routing    escalation.Routing
	Classifier feedback.Classifier
	Logger     *zap.Logger
	// MinConfidence triggers immediate escalation of critical tickets whose
	// classification confidence falls below it. Zero disables the check.
	MinConfidence float64
	Now           func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:       deps.TicketRepo,
		dispatcher:    deps.Dispatcher,
		calculator:    deps.Calculator,
		engine:        deps.Engine,
		routing:       deps.Routing,
		classifier:    deps.Classifier,
		logger:        deps.Logger,
		minConfidence: deps.MinConfidence,
		now:           now,
	}
}

// CreateTicket creates a ticket from a classification result, stamps SLA
// deadlines and escalates immediately when the decision engine says so
// (security category, or a low-confidence critical classification).
func (s *TicketService) CreateTicket(ctx context.Context, result domain.ClassificationResult) (*domain.Ticket, error) {
	priority, ok := domain.ParsePriority(result.Priority)
	if !ok {
		return nil, apperrors.NewInvalidPriority(result.Priority)
	}
	if strings.TrimSpace(result.Description) == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}
	if strings.TrimSpace(result.UserEmail) == "" {
		return nil, apperrors.NewValidationError("user_email required", nil)
	}

	now := s.now()
	responseDeadline, resolutionDeadline, err := s.calculator.Deadlines(priority, now)
	if err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(result.Subject)
	if subject == "" {
		subject = preview(result.Description, 80)
	}

	ticket := &domain.Ticket{
		ID:                 domain.NewTicketID(now),
		Subject:            subject,
		Description:        strings.TrimSpace(result.Description),
		UserEmail:          strings.TrimSpace(result.UserEmail),
		Status:             domain.TicketStatusOpen,
		Priority:           priority,
		Category:           domain.ParseCategory(result.Category),
		CreatedAt:          now,
		UpdatedAt:          now,
		ResponseDeadline:   responseDeadline,
		ResolutionDeadline: resolutionDeadline,
		History: []domain.StatusChange{{
			Seq:       0,
			Status:    domain.TicketStatusOpen,
			Actor:     domain.ActorSystem,
			Message:   "ticket created",
			CreatedAt: now,
		}},
	}

	pending := []events.Event{{
		Type:      events.EventTicketCreated,
		TicketID:  ticket.ID,
		Actor:     domain.ActorSystem,
		Timestamp: now,
		Payload: events.TicketCreatedPayload{
			Category:           ticket.Category,
			Priority:           ticket.Priority,
			Subject:            ticket.Subject,
			UserEmail:          ticket.UserEmail,
			ResponseDeadline:   responseDeadline,
			ResolutionDeadline: resolutionDeadline,
		},
	}}

	if decision := s.creationDecision(ticket, result.Confidence); decision.ShouldEscalate {
		escalated, more, err := s.applyEscalation(ticket, decision, now)
		if err != nil {
			return nil, err
		}
		if escalated {
			pending = append(pending, more...)
		}
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, pending)
	return ticket, nil
}

// creationDecision runs the engine at creation time, plus the
// low-confidence rule for critical classifications.
func (s *TicketService) creationDecision(ticket *domain.Ticket, confidence float64) escalation.Decision {
	decision := s.engine.Decide(ticket)
	if decision.ShouldEscalate {
		return decision
	}
	if s.minConfidence > 0 && confidence > 0 && confidence < s.minConfidence &&
		ticket.Priority == domain.TicketPriorityCritical {
		return escalation.Decision{
			ShouldEscalate: true,
			Team:           s.routing.TeamFor(ticket.Category),
			Level:          domain.LevelL2,
			Reason:         "low-confidence critical classification",
		}
	}
	return escalation.Decision{}
}

// GetTicket fetches a ticket snapshot.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, ticketID)
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return s.tickets.List(ctx, filter)
}

// RecordAttempt appends a pending resolution attempt with the next
// sequential number and moves an Open ticket to InProgress.
func (s *TicketService) RecordAttempt(ctx context.Context, ticketID, solutionText string) (*domain.Attempt, error) {
	if strings.TrimSpace(solutionText) == "" {
		return nil, apperrors.NewValidationError("solution text required", nil)
	}
	unlock := s.locks.acquire(ticketID)
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketStatusOpen && ticket.Status != domain.TicketStatusInProgress {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusInProgress))
	}

	now := s.now()
	attempt := domain.Attempt{
		AttemptNumber:    len(ticket.Attempts) + 1,
		SolutionProvided: solutionText,
		Verdict:          domain.VerdictPending,
		CreatedAt:        now,
	}
	ticket.Attempts = append(ticket.Attempts, attempt)
	ticket.UpdatedAt = now

	var pending []events.Event
	if ticket.Status == domain.TicketStatusOpen {
		more, err := s.transition(ticket, domain.TicketStatusInProgress, domain.ActorSystem, "resolution attempt started", now)
		if err != nil {
			return nil, err
		}
		pending = append(pending, more...)
	}
	pending = append(pending, events.Event{
		Type:      events.EventAttemptRecorded,
		TicketID:  ticket.ID,
		Actor:     domain.ActorSystem,
		Timestamp: now,
		Payload: events.AttemptRecordedPayload{
			AttemptNumber:   attempt.AttemptNumber,
			SolutionPreview: preview(solutionText, 120),
		},
	})

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, pending)
	return &ticket.Attempts[len(ticket.Attempts)-1], nil
}

// ApplyFeedback classifies user feedback for an attempt and advances the
// lifecycle: Success resolves the ticket, Failure triggers escalation
// evaluation, Inconclusive leaves the verdict pending. Re-applying
// identical feedback to the same attempt is a no-op.
func (s *TicketService) ApplyFeedback(ctx context.Context, ticketID string, attemptNumber int, feedbackText string) (domain.AttemptVerdict, error) {
	unlock := s.locks.acquire(ticketID)
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return "", err
	}
	attempt := ticket.AttemptByNumber(attemptNumber)
	if attempt == nil {
		return "", apperrors.NewAttemptNotFound(ticketID, attemptNumber)
	}
	if attempt.UserFeedback != nil && *attempt.UserFeedback == feedbackText {
		return attempt.Verdict, nil
	}

	now := s.now()
	attempt.UserFeedback = &feedbackText
	ticket.UpdatedAt = now

	var pending []events.Event
	outcome := s.classifier.Classify(feedbackText)
	switch outcome {
	case feedback.OutcomeSuccess:
		attempt.Verdict = domain.VerdictSuccess
		attempt.ResolvedAt = &now
		if ticket.Status == domain.TicketStatusInProgress {
			more, err := s.transition(ticket, domain.TicketStatusResolved, domain.ActorUser, "solution confirmed by user", now)
			if err != nil {
				return "", err
			}
			pending = append(pending, more...)
		}
	case feedback.OutcomeFailure:
		attempt.Verdict = domain.VerdictFailure
		switch ticket.Status {
		case domain.TicketStatusResolved:
			// negative follow-up on a resolved ticket reopens it
			more, err := s.transition(ticket, domain.TicketStatusOpen, domain.ActorUser, "reopened on follow-up feedback", now)
			if err != nil {
				return "", err
			}
			pending = append(pending, more...)
		case domain.TicketStatusClosed:
			// terminal; the verdict is kept for the record
		default:
			if decision := s.engine.Decide(ticket); decision.ShouldEscalate {
				_, more, err := s.applyEscalation(ticket, decision, now)
				if err != nil {
					return "", err
				}
				pending = append(pending, more...)
			}
		}
	default:
		// inconclusive feedback keeps the verdict pending
	}

	pending = append(pending, events.Event{
		Type:      events.EventFeedbackApplied,
		TicketID:  ticket.ID,
		Actor:     domain.ActorUser,
		Timestamp: now,
		Payload: events.FeedbackAppliedPayload{
			AttemptNumber: attemptNumber,
			Verdict:       attempt.Verdict,
		},
	})

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return "", err
	}
	s.publish(ctx, pending)
	return attempt.Verdict, nil
}

// Escalate runs the decision engine against the ticket and applies the
// outcome. Re-escalation with an unchanged team and level is idempotent.
func (s *TicketService) Escalate(ctx context.Context, ticketID string) (escalation.Decision, error) {
	unlock := s.locks.acquire(ticketID)
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return escalation.Decision{}, err
	}
	decision := s.engine.Decide(ticket)
	if !decision.ShouldEscalate {
		return decision, nil
	}

	now := s.now()
	changed, pending, err := s.applyEscalation(ticket, decision, now)
	if err != nil {
		return escalation.Decision{}, err
	}
	if !changed {
		return decision, nil
	}
	ticket.UpdatedAt = now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return escalation.Decision{}, err
	}
	s.publish(ctx, pending)
	return decision, nil
}

// EvaluateEscalation adapts Escalate for the SLA monitor's breach hook.
func (s *TicketService) EvaluateEscalation(ctx context.Context, ticketID string) error {
	_, err := s.Escalate(ctx, ticketID)
	return err
}

// BeginTeamWork marks an escalated ticket as picked up by the human team.
func (s *TicketService) BeginTeamWork(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.simpleTransition(ctx, ticketID, domain.TicketStatusInProgress, domain.ActorTeam, "human team began work")
}

// ResolveByTeam marks a ticket resolved by the human team.
func (s *TicketService) ResolveByTeam(ctx context.Context, ticketID, note string) (*domain.Ticket, error) {
	message := "resolved by team"
	if strings.TrimSpace(note) != "" {
		message = note
	}
	return s.simpleTransition(ctx, ticketID, domain.TicketStatusResolved, domain.ActorTeam, message)
}

// CloseTicket closes a resolved ticket.
func (s *TicketService) CloseTicket(ctx context.Context, ticketID string, actor domain.Actor) (*domain.Ticket, error) {
	return s.simpleTransition(ctx, ticketID, domain.TicketStatusClosed, actor, "ticket closed")
}

// ReopenTicket reopens a resolved ticket on negative follow-up feedback.
func (s *TicketService) ReopenTicket(ctx context.Context, ticketID, reason string) (*domain.Ticket, error) {
	message := "reopened on follow-up feedback"
	if strings.TrimSpace(reason) != "" {
		message = reason
	}
	return s.simpleTransition(ctx, ticketID, domain.TicketStatusOpen, domain.ActorUser, message)
}

// RequeueTicket explicitly returns an in-progress ticket to the queue while
// feedback is pending.
func (s *TicketService) RequeueTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.simpleTransition(ctx, ticketID, domain.TicketStatusOpen, domain.ActorSystem, "returned to queue, feedback pending")
}

// CloseStaleResolved closes tickets that have sat in Resolved longer than
// olderThan without the user reopening them. Returns the number closed; a
// single ticket's failure is logged and skipped.
func (s *TicketService) CloseStaleResolved(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	resolved, err := s.tickets.List(ctx, repository.TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusResolved},
		Limit:    500,
	})
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-olderThan)
	closed := 0
	for i := range resolved {
		ticket := &resolved[i]
		if ticket.ResolvedAt == nil || ticket.ResolvedAt.After(cutoff) {
			continue
		}
		if _, err := s.simpleTransition(ctx, ticket.ID, domain.TicketStatusClosed, domain.ActorSystem, "auto-closed after resolution"); err != nil {
			s.logger.Warn("auto-close failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		closed++
	}
	return closed, nil
}

func (s *TicketService) simpleTransition(ctx context.Context, ticketID string, to domain.TicketStatus, actor domain.Actor, message string) (*domain.Ticket, error) {
	unlock := s.locks.acquire(ticketID)
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	pending, err := s.transition(ticket, to, actor, message, now)
	if err != nil {
		return nil, err
	}
	ticket.UpdatedAt = now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, pending)
	return ticket, nil
}

// transition validates and applies a status change, appending the audit
// entry and returning the lifecycle event to publish after persist. An
// invalid transition leaves the ticket unchanged.
func (s *TicketService) transition(ticket *domain.Ticket, to domain.TicketStatus, actor domain.Actor, message string, at time.Time) ([]events.Event, error) {
	if !domain.CanTransition(ticket.Status, to) {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(to))
	}
	from := ticket.Status
	ticket.Status = to

	switch to {
	case domain.TicketStatusResolved:
		ticket.ResolvedAt = &at
		ticket.AssignedTeam = nil
		ticket.EscalationLevel = nil
	case domain.TicketStatusClosed:
		ticket.ClosedAt = &at
	case domain.TicketStatusOpen:
		ticket.ResolvedAt = nil
		ticket.AssignedTeam = nil
		ticket.EscalationLevel = nil
	}

	ticket.History = append(ticket.History, domain.StatusChange{
		Seq:       len(ticket.History),
		Status:    to,
		Actor:     actor,
		Message:   message,
		CreatedAt: at,
	})

	return []events.Event{{
		Type:      events.EventStatusChanged,
		TicketID:  ticket.ID,
		Actor:     actor,
		Timestamp: at,
		Payload: events.StatusChangedPayload{
			FromStatus: from,
			ToStatus:   to,
			Message:    message,
		},
	}}, nil
}

// applyEscalation transitions the ticket to Escalated (or re-routes an
// already escalated ticket). Returns changed=false when the ticket is
// already escalated to the same team and level, in which case no history
// entry is appended.
func (s *TicketService) applyEscalation(ticket *domain.Ticket, decision escalation.Decision, at time.Time) (bool, []events.Event, error) {
	if ticket.Status == domain.TicketStatusEscalated {
		if ticket.AssignedTeam != nil && *ticket.AssignedTeam == decision.Team &&
			ticket.EscalationLevel != nil && *ticket.EscalationLevel == decision.Level {
			return false, nil, nil
		}
		// changed team or level: record a new escalation event
		ticket.AssignedTeam = &decision.Team
		ticket.EscalationLevel = &decision.Level
		ticket.History = append(ticket.History, domain.StatusChange{
			Seq:       len(ticket.History),
			Status:    domain.TicketStatusEscalated,
			Actor:     domain.ActorSystem,
			Message:   "re-escalated to " + decision.Team + " (" + string(decision.Level) + "): " + decision.Reason,
			CreatedAt: at,
		})
		return true, []events.Event{s.escalationEvent(ticket.ID, decision, at)}, nil
	}

	pending, err := s.transition(ticket, domain.TicketStatusEscalated, domain.ActorSystem,
		"escalated to "+decision.Team+" ("+string(decision.Level)+"): "+decision.Reason, at)
	if err != nil {
		return false, nil, err
	}
	ticket.AssignedTeam = &decision.Team
	ticket.EscalationLevel = &decision.Level
	pending = append(pending, s.escalationEvent(ticket.ID, decision, at))
	return true, pending, nil
}

func (s *TicketService) escalationEvent(ticketID string, decision escalation.Decision, at time.Time) events.Event {
	return events.Event{
		Type:      events.EventTicketEscalated,
		TicketID:  ticketID,
		Actor:     domain.ActorSystem,
		Timestamp: at,
		Payload: events.EscalationRequestedPayload{
			Team:   decision.Team,
			Level:  decision.Level,
			Reason: decision.Reason,
		},
	}
}

// publish dispatches events after a successful persist. Delivery is
// best-effort and never affects the committed mutation.
func (s *TicketService) publish(ctx context.Context, pending []events.Event) {
	if s.dispatcher == nil {
		return
	}
	for _, event := range pending {
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("event publish failed",
				zap.String("type", string(event.Type)),
				zap.String("ticket_id", event.TicketID),
				zap.Error(err))
		}
	}
}

// preview truncates body to at most max runes, never splitting a rune.
func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
