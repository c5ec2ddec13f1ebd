package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/logger"
	"expensetracker/internal/middleware"
)

const dateOnly = "2006-01-02"

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, message and field details.
// Otherwise it logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{"error": appErr})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{"error": apperrors.ErrInternalServer})
}

// bindError converts a binding failure into an INVALID_INPUT error. Validator
// failures become one detail per field; malformed bodies get a single generic detail.
func bindError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.WithDetails(apperrors.ErrInvalidInput, []apperrors.FieldError{
			{Field: "body", Message: "request body is malformed"},
		})
	}

	details := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apperrors.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return apperrors.WithDetails(apperrors.ErrInvalidInput, details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", fe.Field())
	case "transaction_type":
		return fe.Field() + " must be income or expense"
	case "budget_period":
		return fe.Field() + " must be weekly, monthly, quarterly or yearly"
	case "iso4217":
		return fe.Field() + " must be an ISO 4217 currency code"
	case "theme":
		return fe.Field() + " must be light or dark"
	case "decimal_scale":
		return fmt.Sprintf("%s must have at most %s decimal places", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}

// parseFlexibleTime accepts RFC3339 timestamps or plain YYYY-MM-DD dates (UTC midnight).
func parseFlexibleTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// parseUpperBound is parseFlexibleTime for inclusive range ends: a plain date
// covers the whole day.
func parseUpperBound(s string) (time.Time, error) {
	t, err := parseFlexibleTime(s)
	if err != nil {
		return t, err
	}
	if len(s) == len(dateOnly) {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
