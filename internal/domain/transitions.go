package domain

// allowedTransitions is the canonical lifecycle table. Open is initial,
// Closed is terminal. Transition validity is enforced here centrally; the
// service layer never mutates Status directly.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusEscalated},
	TicketStatusInProgress: {TicketStatusResolved, TicketStatusEscalated, TicketStatusOpen},
	TicketStatusResolved:   {TicketStatusClosed, TicketStatusOpen},
	TicketStatusEscalated:  {TicketStatusInProgress, TicketStatusResolved},
	TicketStatusClosed:     {},
}

// CanTransition reports whether current -> next is a legal transition.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
