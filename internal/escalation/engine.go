package escalation

import (
	"strconv"
	"time"

	"github.com/helpdeskops/helpdesk-engine/internal/domain"
)

// Routing is the immutable category -> team table. Unmapped categories fall
// back to general IT support, never an error.
type Routing struct {
	Teams    map[domain.TicketCategory]string
	Fallback string
}

// DefaultRouting returns the standard helpdesk routing table.
func DefaultRouting() Routing {
	return Routing{
		Teams: map[domain.TicketCategory]string{
			domain.CategoryHardware: domain.TeamHardware,
			domain.CategorySoftware: domain.TeamSoftware,
			domain.CategoryNetwork:  domain.TeamNetwork,
			domain.CategoryAccess:   domain.TeamAccess,
			domain.CategorySecurity: domain.TeamSecurity,
			domain.CategoryEmail:    domain.TeamGeneral,
			domain.CategoryGeneral:  domain.TeamGeneral,
		},
		Fallback: domain.TeamGeneral,
	}
}

// TeamFor resolves the owning team for a category.
func (r Routing) TeamFor(category domain.TicketCategory) string {
	if team, ok := r.Teams[category]; ok {
		return team
	}
	return r.Fallback
}

// Decision is the outcome of evaluating a ticket for escalation.
type Decision struct {
	ShouldEscalate bool
	Team           string
	Level          domain.EscalationLevel
	Reason         string
}

// Rules tunes the engine's thresholds.
type Rules struct {
	MaxFailedAttempts int
	BreachRatio       float64
}

// DefaultRules escalates after 3 failed attempts or at 90% of the SLA
// window.
func DefaultRules() Rules {
	return Rules{MaxFailedAttempts: 3, BreachRatio: 0.9}
}

// Engine decides whether, where and at what severity a ticket escalates.
type Engine struct {
	routing Routing
	rules   Rules
	now     func() time.Time
}

// NewEngine constructs the engine. now defaults to time.Now.
func NewEngine(routing Routing, rules Rules, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{routing: routing, rules: rules, now: now}
}

// Decide evaluates the escalation rules in order; first match wins.
func (e *Engine) Decide(ticket *domain.Ticket) Decision {
	if ticket.Category == domain.CategorySecurity {
		level := domain.LevelL2
		if ticket.Priority == domain.TicketPriorityCritical {
			level = domain.LevelEmergency
		}
		return Decision{
			ShouldEscalate: true,
			Team:           domain.TeamSecurity,
			Level:          level,
			Reason:         "security incident",
		}
	}

	if ticket.FailedAttempts() >= e.rules.MaxFailedAttempts {
		return Decision{
			ShouldEscalate: true,
			Team:           e.routing.TeamFor(ticket.Category),
			Level:          domain.LevelL1,
			Reason:         strconv.Itoa(e.rules.MaxFailedAttempts) + " failed attempts",
		}
	}

	if ticket.ElapsedRatio(e.now()) >= e.rules.BreachRatio {
		return Decision{
			ShouldEscalate: true,
			Team:           e.routing.TeamFor(ticket.Category),
			Level:          domain.LevelL2,
			Reason:         "approaching SLA breach",
		}
	}

	return Decision{}
}
