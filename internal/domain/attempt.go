package domain

import "time"

// AttemptVerdict classifies the outcome of a resolution attempt based on
// user feedback.
type AttemptVerdict string

const (
	VerdictPending AttemptVerdict = "PENDING"
	VerdictSuccess AttemptVerdict = "SUCCESS"
	VerdictFailure AttemptVerdict = "FAILURE"
)

// Attempt records one self-service resolution attempt on a ticket.
// AttemptNumber is 1-based and sequential per ticket.
type Attempt struct {
	AttemptNumber    int
	SolutionProvided string
	UserFeedback     *string
	Verdict          AttemptVerdict
	CreatedAt        time.Time
	ResolvedAt       *time.Time
}
