package sla

// Classification buckets a ticket's consumed resolution window.
type Classification string

const (
	ClassificationOK       Classification = "ok"
	ClassificationWarning  Classification = "warning"
	ClassificationCritical Classification = "critical"
	ClassificationBreach   Classification = "breach"
)

// Thresholds are the elapsed-ratio cutoffs for warning and critical
// classifications. Breach is always ratio >= 1.0.
type Thresholds struct {
	Warning  float64
	Critical float64
}

// DefaultThresholds warns at 80% and goes critical at 90% of the window.
func DefaultThresholds() Thresholds {
	return Thresholds{Warning: 0.8, Critical: 0.9}
}

// Classify maps an elapsed ratio to a classification.
func Classify(ratio float64, t Thresholds) Classification {
	switch {
	case ratio >= 1.0:
		return ClassificationBreach
	case ratio >= t.Critical:
		return ClassificationCritical
	case ratio >= t.Warning:
		return ClassificationWarning
	default:
		return ClassificationOK
	}
}
