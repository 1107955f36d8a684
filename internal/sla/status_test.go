package sla

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	thresholds := DefaultThresholds()

	cases := []struct {
		ratio float64
		want  Classification
	}{
		{0.0, ClassificationOK},
		{0.5, ClassificationOK},
		{0.79, ClassificationOK},
		{0.8, ClassificationWarning},
		{0.85, ClassificationWarning},
		{0.9, ClassificationCritical},
		{0.95, ClassificationCritical},
		{1.0, ClassificationBreach},
		{1.05, ClassificationBreach},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.ratio, thresholds), "ratio %v", tc.ratio)
	}
}
