package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidationError(t *testing.T) {
	cause := errors.New("bad address: empty")
	err := NewValidationError("invalid request", cause)

	assert.Equal(t, CategoryValidation, err.Category)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Contains(t, err.Error(), "VALIDATION_ERROR")
	assert.Contains(t, err.Error(), "invalid request")
}

func TestNewRateLimitError(t *testing.T) {
	err := NewRateLimitError("too many rank runs", 30*time.Second)

	assert.Equal(t, CategoryRateLimit, err.Category)
	assert.Equal(t, http.StatusTooManyRequests, err.HTTPStatus)
	assert.Contains(t, err.Error(), "RATE_LIMIT_EXCEEDED")
}

func TestToAppErrorCategorizesCoreFailures(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCategory ErrorCategory
		wantStatus   int
	}{
		{
			name:         "malformed address",
			err:          fmt.Errorf(`bad address: unknown kind "GIST"`),
			wantCategory: CategoryValidation,
			wantStatus:   http.StatusBadRequest,
		},
		{
			name:         "bad comment parent",
			err:          fmt.Errorf(`bad comment parent type "REPO"`),
			wantCategory: CategoryValidation,
			wantStatus:   http.StatusBadRequest,
		},
		{
			name:         "dangling edge",
			err:          fmt.Errorf("missing endpoint: src x is not in the graph"),
			wantCategory: CategoryValidation,
			wantStatus:   http.StatusBadRequest,
		},
		{
			name:         "conflicting edge",
			err:          fmt.Errorf("conflicting edge: e already joins a -> b"),
			wantCategory: CategoryValidation,
			wantStatus:   http.StatusBadRequest,
		},
		{
			name:         "malformed weights",
			err:          fmt.Errorf("invalid weights: default weight -1 is negative"),
			wantCategory: CategoryValidation,
			wantStatus:   http.StatusBadRequest,
		},
		{
			name:         "empty graph",
			err:          fmt.Errorf("empty graph: no uniform initialization is definable"),
			wantCategory: CategoryValidation,
			wantStatus:   http.StatusBadRequest,
		},
		{
			name:         "empty normalization subset",
			err:          fmt.Errorf("normalize: no nodes match prefix x"),
			wantCategory: CategoryValidation,
			wantStatus:   http.StatusBadRequest,
		},
		{
			name:         "undecodable graph",
			err:          fmt.Errorf("decode graph: unsupported format version 9"),
			wantCategory: CategoryValidation,
			wantStatus:   http.StatusBadRequest,
		},
		{
			name:         "cancelled run",
			err:          fmt.Errorf("rank run cancelled after 12 iterations: %w", context.Canceled),
			wantCategory: CategoryTimeout,
			wantStatus:   http.StatusGatewayTimeout,
		},
		{
			name:         "unexpected failure",
			err:          errors.New("disk on fire"),
			wantCategory: CategoryInternal,
			wantStatus:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ToAppError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantCategory, appErr.Category)
			assert.Equal(t, tt.wantStatus, appErr.HTTPStatus)
		})
	}
}

func TestToAppErrorPassthrough(t *testing.T) {
	assert.Nil(t, ToAppError(nil))

	original := NewTimeoutError("run exceeded deadline", context.DeadlineExceeded)
	assert.Same(t, original, ToAppError(original))
}
