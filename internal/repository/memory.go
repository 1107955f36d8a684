package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/helpdeskops/helpdesk-engine/internal/domain"
	apperrors "github.com/helpdeskops/helpdesk-engine/pkg/util"
)

// memoryTicketRepository is an in-memory TicketRepository used when no
// postgres DSN is configured and by tests. It enforces the same versioning
// contract as the postgres store and hands out deep copies so readers get
// consistent snapshots.
type memoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
}

// NewMemoryTicketRepository builds the in-memory store.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{tickets: make(map[string]*domain.Ticket)}
}

func (r *memoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tickets[ticket.ID]; exists {
		return apperrors.NewValidationError("ticket id already exists", map[string]any{"ticket_id": ticket.ID})
	}
	r.tickets[ticket.ID] = ticket.Clone()
	return nil
}

func (r *memoryTicketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return apperrors.NewTicketNotFound(ticket.ID)
	}
	if stored.Version != ticket.Version {
		return apperrors.NewConcurrentModification(ticket.ID)
	}
	updated := ticket.Clone()
	updated.Version++
	r.tickets[ticket.ID] = updated
	ticket.Version++
	return nil
}

func (r *memoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.tickets[id]
	if !ok {
		return nil, apperrors.NewTicketNotFound(id)
	}
	return stored.Clone(), nil
}

func (r *memoryTicketRepository) List(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Ticket
	for _, stored := range r.tickets {
		if !matchesFilter(stored, filter) {
			continue
		}
		result = append(result, *stored.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(result) {
		return []domain.Ticket{}, nil
	}
	result = result[offset:]

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (r *memoryTicketRepository) ListActive(_ context.Context) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Ticket
	for _, stored := range r.tickets {
		if !stored.IsActive() {
			continue
		}
		result = append(result, *stored.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func matchesFilter(ticket *domain.Ticket, filter TicketFilter) bool {
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, ticket.Priority) {
		return false
	}
	if len(filter.Categories) > 0 && !containsCategory(filter.Categories, ticket.Category) {
		return false
	}
	if filter.Team != nil && (ticket.AssignedTeam == nil || *ticket.AssignedTeam != *filter.Team) {
		return false
	}
	if filter.UserEmail != nil && ticket.UserEmail != *filter.UserEmail {
		return false
	}
	return true
}

func containsStatus(list []domain.TicketStatus, v domain.TicketStatus) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.TicketPriority, v domain.TicketPriority) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsCategory(list []domain.TicketCategory, v domain.TicketCategory) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
