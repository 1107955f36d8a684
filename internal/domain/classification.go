package domain

// ClassificationResult is the already-parsed output of the external
// problem-classification collaborator. The engine consumes it as-is.
type ClassificationResult struct {
	Category    string
	Priority    string
	Confidence  float64
	Subject     string
	Description string
	UserEmail   string
}
