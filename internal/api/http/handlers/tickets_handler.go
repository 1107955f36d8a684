package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdeskops/helpdesk-engine/internal/api/dto"
	"github.com/helpdeskops/helpdesk-engine/internal/domain"
	"github.com/helpdeskops/helpdesk-engine/internal/repository"
	"github.com/helpdeskops/helpdesk-engine/internal/service"
	apperrors "github.com/helpdeskops/helpdesk-engine/pkg/util"
)

// TicketsHandler exposes the lifecycle engine over HTTP.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), domain.ClassificationResult{
		Category:    req.Category,
		Priority:    req.Priority,
		Confidence:  req.Confidence,
		Subject:     req.Subject,
		Description: req.Description,
		UserEmail:   req.UserEmail,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.UserContext(), parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// GetHistory GET /tickets/:id/history.
func (h *TicketsHandler) GetHistory(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	entries := make([]dto.HistoryEntryResponse, 0, len(ticket.History))
	for _, entry := range ticket.History {
		entries = append(entries, historyEntry(entry))
	}
	return c.JSON(fiber.Map{"data": entries})
}

// RecordAttempt POST /tickets/:id/attempts.
func (h *TicketsHandler) RecordAttempt(c *fiber.Ctx) error {
	var req dto.RecordAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	attempt, err := h.service.RecordAttempt(c.UserContext(), c.Params("id"), req.SolutionProvided)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": attemptResponse(*attempt)})
}

// ApplyFeedback POST /tickets/:id/attempts/:number/feedback.
func (h *TicketsHandler) ApplyFeedback(c *fiber.Ctx) error {
	attemptNumber, err := strconv.Atoi(c.Params("number"))
	if err != nil || attemptNumber < 1 {
		return apperrors.NewValidationError("invalid attempt number", nil)
	}
	var req dto.ApplyFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.FeedbackText) == "" {
		return apperrors.NewValidationError("feedback_text required", nil)
	}
	verdict, err := h.service.ApplyFeedback(c.UserContext(), c.Params("id"), attemptNumber, req.FeedbackText)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"verdict": verdict}})
}

// Escalate POST /tickets/:id/escalate.
func (h *TicketsHandler) Escalate(c *fiber.Ctx) error {
	decision, err := h.service.Escalate(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EscalationResponse{
		ShouldEscalate: decision.ShouldEscalate,
		Team:           decision.Team,
		Level:          decision.Level,
		Reason:         decision.Reason,
	}})
}

// BeginWork POST /tickets/:id/begin-work.
func (h *TicketsHandler) BeginWork(c *fiber.Ctx) error {
	ticket, err := h.service.BeginTeamWork(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Resolve POST /tickets/:id/resolve.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	var req dto.TransitionRequest
	_ = c.BodyParser(&req)
	ticket, err := h.service.ResolveByTeam(c.UserContext(), c.Params("id"), req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Close POST /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	ticket, err := h.service.CloseTicket(c.UserContext(), c.Params("id"), domain.ActorUser)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Reopen POST /tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	var req dto.TransitionRequest
	_ = c.BodyParser(&req)
	ticket, err := h.service.ReopenTicket(c.UserContext(), c.Params("id"), req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Requeue POST /tickets/:id/requeue.
func (h *TicketsHandler) Requeue(c *fiber.Ctx) error {
	ticket, err := h.service.RequeueTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		for _, part := range strings.Split(categoryStr, ",") {
			filter.Categories = append(filter.Categories, domain.TicketCategory(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if team := c.Query("team"); team != "" {
		filter.Team = &team
	}
	if email := c.Query("user_email"); email != "" {
		filter.UserEmail = &email
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:                 ticket.ID,
		Subject:            ticket.Subject,
		Status:             ticket.Status,
		Priority:           ticket.Priority,
		Category:           ticket.Category,
		AssignedTeam:       ticket.AssignedTeam,
		EscalationLevel:    ticket.EscalationLevel,
		UserEmail:          ticket.UserEmail,
		CreatedAt:          ticket.CreatedAt,
		UpdatedAt:          ticket.UpdatedAt,
		ResponseDeadline:   ticket.ResponseDeadline,
		ResolutionDeadline: ticket.ResolutionDeadline,
	}
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetailResponse {
	detail := dto.TicketDetailResponse{
		TicketSummary: ticketSummary(ticket),
		Description:   ticket.Description,
		ResolvedAt:    ticket.ResolvedAt,
		ClosedAt:      ticket.ClosedAt,
		Attempts:      make([]dto.AttemptResponse, 0, len(ticket.Attempts)),
		History:       make([]dto.HistoryEntryResponse, 0, len(ticket.History)),
	}
	for _, attempt := range ticket.Attempts {
		detail.Attempts = append(detail.Attempts, attemptResponse(attempt))
	}
	for _, entry := range ticket.History {
		detail.History = append(detail.History, historyEntry(entry))
	}
	return detail
}

func attemptResponse(attempt domain.Attempt) dto.AttemptResponse {
	return dto.AttemptResponse{
		AttemptNumber:    attempt.AttemptNumber,
		SolutionProvided: attempt.SolutionProvided,
		UserFeedback:     attempt.UserFeedback,
		Verdict:          attempt.Verdict,
		CreatedAt:        attempt.CreatedAt,
		ResolvedAt:       attempt.ResolvedAt,
	}
}

func historyEntry(entry domain.StatusChange) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		Seq:       entry.Seq,
		Status:    entry.Status,
		Actor:     entry.Actor,
		Message:   entry.Message,
		CreatedAt: entry.CreatedAt,
	}
}
