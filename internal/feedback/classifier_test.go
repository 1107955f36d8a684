package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	classifier := NewKeywordClassifier()

	cases := []struct {
		name string
		text string
		want Outcome
	}{
		{"positive", "that worked, thanks!", OutcomeSuccess},
		{"positive single", "fixed", OutcomeSuccess},
		{"negative", "didn't work, still broken", OutcomeFailure},
		{"negative single", "no", OutcomeFailure},
		{"escalation request", "please escalate this to a human", OutcomeFailure},
		{"urgent wins over positive", "it's better but this is urgent", OutcomeFailure},
		{"mixed tie", "it worked but then the error came back", OutcomeInconclusive},
		{"no indicators", "I will check again tomorrow", OutcomeInconclusive},
		{"empty", "", OutcomeInconclusive},
		{"case insensitive", "SOLVED, THANK YOU", OutcomeSuccess},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifier.Classify(tc.text))
		})
	}
}
