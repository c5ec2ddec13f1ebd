package testutil

import (
	"errors"
	"testing"

	apperrors "expensetracker/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	appErr := requireAppError(t, err, expectedCode)
	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertFieldErrors checks that err is an INVALID_INPUT error with a detail
// for each of fields.
func AssertFieldErrors(t *testing.T, err error, fields ...string) {
	t.Helper()

	appErr := requireAppError(t, err, apperrors.ErrInvalidInput.Code)
	if appErr.Code != apperrors.ErrInvalidInput.Code {
		t.Fatalf("expected %s, got %s", apperrors.ErrInvalidInput.Code, appErr.Code)
	}
	got := make(map[string]bool, len(appErr.Details))
	for _, d := range appErr.Details {
		got[d.Field] = true
	}
	for _, f := range fields {
		if !got[f] {
			t.Errorf("expected a field error for %q, got %+v", f, appErr.Details)
		}
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func requireAppError(t *testing.T, err error, expectedCode string) *apperrors.AppError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	return appErr
}
