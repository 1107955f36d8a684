package feedback

import "strings"

// Outcome is the classifier's reading of a piece of user feedback.
type Outcome string

const (
	OutcomeSuccess      Outcome = "SUCCESS"
	OutcomeFailure      Outcome = "FAILURE"
	OutcomeInconclusive Outcome = "INCONCLUSIVE"
)

// Classifier turns free-text user feedback into an outcome. The lifecycle
// engine treats it as a pluggable collaborator so a stronger (e.g. LLM
// based) classifier can be substituted without touching lifecycle logic.
type Classifier interface {
	Classify(feedbackText string) Outcome
}

// KeywordClassifier scores feedback against positive, negative and
// escalation indicator lists. An explicit escalation request counts as a
// failed attempt so the decision engine sees it.
type KeywordClassifier struct{}

// NewKeywordClassifier constructs the default classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var positiveIndicators = []string{
	"worked", "solved", "fixed", "resolved", "yes", "good", "thanks",
	"thank you", "perfect", "great", "okay", "ok", "fine", "successful",
	"working", "better", "improved", "helped", "useful",
}

var negativeIndicators = []string{
	"didn't work", "not working", "still broken", "no", "failed",
	"doesn't work", "can't", "unable", "error", "problem", "issue",
	"same", "still", "worse", "useless", "didn't help", "not fixed",
}

var escalationIndicators = []string{
	"escalate", "human", "support", "team", "expert", "specialist",
	"complex", "complicated", "urgent", "critical", "emergency",
}

// Classify scores the feedback text. Escalation requests win outright,
// otherwise the dominant indicator count decides; a tie is inconclusive.
func (c *KeywordClassifier) Classify(feedbackText string) Outcome {
	lowered := strings.ToLower(feedbackText)

	for _, indicator := range escalationIndicators {
		if strings.Contains(lowered, indicator) {
			return OutcomeFailure
		}
	}

	positive := countMatches(lowered, positiveIndicators)
	negative := countMatches(lowered, negativeIndicators)

	switch {
	case positive > negative:
		return OutcomeSuccess
	case negative > positive:
		return OutcomeFailure
	default:
		return OutcomeInconclusive
	}
}

func countMatches(text string, indicators []string) int {
	count := 0
	for _, indicator := range indicators {
		if strings.Contains(text, indicator) {
			count++
		}
	}
	return count
}
