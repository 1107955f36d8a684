package domain

import "time"

// Actor identifies who triggered a status change.
type Actor string

const (
	ActorSystem Actor = "system"
	ActorUser   Actor = "user"
	ActorTeam   Actor = "team"
)

// StatusChange is an immutable audit trail entry. Entries are append-only
// and ordered; Seq is 0-based insertion order within the ticket.
type StatusChange struct {
	Seq       int
	Status    TicketStatus
	Actor     Actor
	Message   string
	CreatedAt time.Time
}
