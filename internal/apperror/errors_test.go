package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorCodes(t *testing.T) {
	tests := []struct {
		err      *AppError
		expected ErrorCode
	}{
		{Unauthenticated("no token"), CodeUnauthenticated},
		{PermissionDenied("organizer mismatch"), CodePermissionDenied},
		{NotFound("Event", "ev-1"), CodeNotFound},
		{InvalidArgument("minutes must be positive"), CodeInvalidArgument},
		{Internal("query failed", errors.New("boom")), CodeInternal},
	}

	for _, tt := range tests {
		if tt.err.Code != tt.expected {
			t.Errorf("Expected code %s, got %s", tt.expected, tt.err.Code)
		}
	}
}

func TestWrapPassesTypedErrorsThrough(t *testing.T) {
	orig := NotFound("Stage", "st-1")
	wrapped := Wrap(fmt.Errorf("lookup: %w", orig), "stage lookup")

	if wrapped.Code != CodeNotFound {
		t.Errorf("Expected code %s, got %s", CodeNotFound, wrapped.Code)
	}
}

func TestWrapMapsUntypedToInternal(t *testing.T) {
	wrapped := Wrap(errors.New("connection reset"), "store read")

	if wrapped.Code != CodeInternal {
		t.Errorf("Expected code %s, got %s", CodeInternal, wrapped.Code)
	}
	if wrapped.Unwrap() == nil {
		t.Error("Expected cause to be preserved")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "noop") != nil {
		t.Error("Expected nil for nil error")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{Unauthenticated(""), http.StatusUnauthorized},
		{PermissionDenied(""), http.StatusForbidden},
		{NotFound("Event", "ev-1"), http.StatusNotFound},
		{InvalidArgument(""), http.StatusBadRequest},
		{Internal("", nil), http.StatusInternalServerError},
		{errors.New("raw"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.expected {
			t.Errorf("Expected status %d for %v, got %d", tt.expected, tt.err, got)
		}
	}
}
