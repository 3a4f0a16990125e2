package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	alertdomain "github.com/fuelsync/fuelsync/internal/alert/domain"
	cashreportdomain "github.com/fuelsync/fuelsync/internal/cashreport/domain"
	creditordomain "github.com/fuelsync/fuelsync/internal/creditor/domain"
	fuelpricedomain "github.com/fuelsync/fuelsync/internal/fuelprice/domain"
	readingdomain "github.com/fuelsync/fuelsync/internal/reading/domain"
	recondomain "github.com/fuelsync/fuelsync/internal/reconciliation/domain"
	saledomain "github.com/fuelsync/fuelsync/internal/sale/domain"
	stationdomain "github.com/fuelsync/fuelsync/internal/station/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var fieldErr *fieldError
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   fieldErr.Field,
					Code:    fieldErr.Code,
					Message: fieldErr.Message,
				},
			},
		}
	case isValidationError(err):
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// isValidationError covers malformed or business-rejected input: the
// request itself is wrong, retrying unchanged cannot succeed.
func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, stationdomain.ErrInvalidTenant),
		errors.Is(err, stationdomain.ErrInvalidName),
		errors.Is(err, stationdomain.ErrInvalidStation),
		errors.Is(err, stationdomain.ErrInvalidPump),
		errors.Is(err, stationdomain.ErrInvalidNozzle),
		errors.Is(err, stationdomain.ErrInvalidFuelType),
		errors.Is(err, stationdomain.ErrInvalidStatus),
		errors.Is(err, stationdomain.ErrInvalidID):
		return true
	case errors.Is(err, fuelpricedomain.ErrInvalidStation),
		errors.Is(err, fuelpricedomain.ErrInvalidFuelType),
		errors.Is(err, fuelpricedomain.ErrInvalidPrice),
		errors.Is(err, fuelpricedomain.ErrPriceBackdated),
		errors.Is(err, fuelpricedomain.ErrInvalidID),
		errors.Is(err, fuelpricedomain.ErrPriceMissing),
		errors.Is(err, fuelpricedomain.ErrPriceOutdated):
		return true
	case errors.Is(err, creditordomain.ErrInvalidPartyName),
		errors.Is(err, creditordomain.ErrInvalidCreditLimit),
		errors.Is(err, creditordomain.ErrInvalidAmount),
		errors.Is(err, creditordomain.ErrInvalidPayment),
		errors.Is(err, creditordomain.ErrInvalidCreditor),
		errors.Is(err, creditordomain.ErrInvalidID):
		return true
	case errors.Is(err, readingdomain.ErrInvalidNozzle),
		errors.Is(err, readingdomain.ErrInvalidReading),
		errors.Is(err, readingdomain.ErrInvalidPayment),
		errors.Is(err, readingdomain.ErrInvalidCreditor),
		errors.Is(err, readingdomain.ErrCreditorRequired),
		errors.Is(err, readingdomain.ErrInvalidReference),
		errors.Is(err, readingdomain.ErrNonMonotonic),
		errors.Is(err, readingdomain.ErrInvalidRecordedAt):
		return true
	case errors.Is(err, recondomain.ErrInvalidStation),
		errors.Is(err, recondomain.ErrInvalidDate):
		return true
	case errors.Is(err, saledomain.ErrInvalidStation),
		errors.Is(err, saledomain.ErrInvalidRange):
		return true
	case errors.Is(err, alertdomain.ErrInvalidStation),
		errors.Is(err, alertdomain.ErrInvalidID):
		return true
	case errors.Is(err, cashreportdomain.ErrInvalidStation),
		errors.Is(err, cashreportdomain.ErrInvalidDate),
		errors.Is(err, cashreportdomain.ErrInvalidAmount),
		errors.Is(err, cashreportdomain.ErrInvalidCreditor),
		errors.Is(err, cashreportdomain.ErrInvalidFuelType),
		errors.Is(err, cashreportdomain.ErrNoNozzle):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, stationdomain.ErrNotFound),
		errors.Is(err, fuelpricedomain.ErrNotFound),
		errors.Is(err, creditordomain.ErrNotFound),
		errors.Is(err, readingdomain.ErrNotFound),
		errors.Is(err, recondomain.ErrNotFound),
		errors.Is(err, alertdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// isConflictError covers state that forbids the operation right now:
// finalized days, exhausted credit, duplicate day-level records.
func isConflictError(err error) bool {
	switch {
	case errors.Is(err, recondomain.ErrAlreadyFinalized),
		errors.Is(err, readingdomain.ErrDayFinalized),
		errors.Is(err, readingdomain.ErrReadingHasSale),
		errors.Is(err, creditordomain.ErrDayFinalized),
		errors.Is(err, creditordomain.ErrCreditLimitExceeded),
		errors.Is(err, cashreportdomain.ErrDayFinalized),
		errors.Is(err, cashreportdomain.ErrDuplicateReport):
		return true
	default:
		return false
	}
}

func newValidationError(field, code, message string) error {
	return &fieldError{Field: field, Code: code, Message: message}
}

type fieldError struct {
	Field   string
	Code    string
	Message string
}

func (e *fieldError) Error() string { return e.Code }

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
