package sla

import (
	"time"

	"github.com/helpdeskops/helpdesk-engine/internal/domain"
	apperrors "github.com/helpdeskops/helpdesk-engine/pkg/util"
)

// Target is the pair of SLA windows for one priority.
type Target struct {
	Response   time.Duration
	Resolution time.Duration
}

// Policy is the immutable priority -> SLA target table. It is built once at
// process start and passed explicitly to the calculator and monitor.
type Policy struct {
	Targets map[domain.TicketPriority]Target
}

// DefaultPolicy returns the standard helpdesk SLA table.
func DefaultPolicy() Policy {
	return Policy{Targets: map[domain.TicketPriority]Target{
		domain.TicketPriorityCritical: {Response: time.Hour, Resolution: 4 * time.Hour},
		domain.TicketPriorityHigh:     {Response: 2 * time.Hour, Resolution: 8 * time.Hour},
		domain.TicketPriorityMedium:   {Response: 4 * time.Hour, Resolution: 24 * time.Hour},
		domain.TicketPriorityLow:      {Response: 8 * time.Hour, Resolution: 72 * time.Hour},
	}}
}

// Calculator derives deadlines from the policy table. Pure and
// deterministic.
type Calculator struct {
	policy Policy
}

// NewCalculator builds a calculator over the given policy.
func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

// Deadlines returns the response and resolution deadlines for a ticket
// created at createdAt. An unknown priority fails with INVALID_PRIORITY and
// the caller must not proceed to ticket creation.
func (c *Calculator) Deadlines(priority domain.TicketPriority, createdAt time.Time) (time.Time, time.Time, error) {
	target, ok := c.policy.Targets[priority]
	if !ok {
		return time.Time{}, time.Time{}, apperrors.NewInvalidPriority(string(priority))
	}
	return createdAt.Add(target.Response), createdAt.Add(target.Resolution), nil
}
