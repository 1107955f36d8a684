package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		err       error
		code      string
		status    int
		retryable bool
	}{
		{NewInvalidPriority("urgent"), CodeInvalidPriority, http.StatusBadRequest, false},
		{NewInvalidTransition("CLOSED", "OPEN"), CodeInvalidTransition, http.StatusConflict, false},
		{NewAttemptNotFound("TICKET-20250310-AAAA0001", 4), CodeAttemptNotFound, http.StatusNotFound, false},
		{NewTicketNotFound("TICKET-20250310-AAAA0001"), CodeTicketNotFound, http.StatusNotFound, false},
		{NewConcurrentModification("TICKET-20250310-AAAA0001"), CodeConcurrentModification, http.StatusConflict, true},
		{NewValidationError("bad input", nil), CodeValidationFailed, http.StatusBadRequest, false},
		{NewUnauthorized("missing token"), CodeUnauthorized, http.StatusUnauthorized, false},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			var domainErr *DomainError
			require.ErrorAs(t, tc.err, &domainErr)
			assert.Equal(t, tc.code, domainErr.Code)
			assert.Equal(t, tc.status, domainErr.HTTPStatus)
			assert.Equal(t, tc.retryable, domainErr.Retryable)
			assert.True(t, HasCode(tc.err, tc.code))
		})
	}
}

func TestHasCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("persist: %w", NewConcurrentModification("TICKET-20250310-AAAA0001"))
	assert.True(t, HasCode(err, CodeConcurrentModification))
	assert.False(t, HasCode(err, CodeTicketNotFound))
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("connection reset")
	domainErr := ToDomainError(cause)
	assert.Equal(t, CodeInternalError, domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	assert.ErrorIs(t, domainErr, cause)

	assert.Nil(t, ToDomainError(nil))
}
