package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource conflict")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternalServer = errors.New("internal server error")

	// Business errors
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrJobNotOpen        = errors.New("job is not open")
	ErrAlreadyApplied    = errors.New("provider already applied to this job")
	ErrAlreadySettled    = errors.New("job already has a transaction")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrPaymentFailed     = errors.New("payment failed")
)

// Error kind tags. They are part of the response body so clients can
// branch on them.
const (
	KindValidation        = "validation_error"
	KindNotFound          = "not_found"
	KindConflict          = "conflict"
	KindInvalidTransition = "invalid_transition"
	KindUnauthorized      = "unauthorized"
	KindPersistence       = "persistence_error"
	KindExternalService   = "external_service_error"
	KindInternal          = "internal_error"
	KindRateLimited       = "rate_limit_exceeded"
)

// APIError represents a structured API error
type APIError struct {
	Code       string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new API error
func NewAPIError(code, message string, statusCode int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Common API errors
func NotFound(resource string) *APIError {
	return &APIError{
		Code:       KindNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
		Err:        ErrNotFound,
	}
}

func BadRequest(message string) *APIError {
	return NewAPIError(KindValidation, message, http.StatusBadRequest)
}

func Validation(message string) *APIError {
	return BadRequest(message)
}

func Conflict(message string) *APIError {
	return &APIError{
		Code:       KindConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
		Err:        ErrConflict,
	}
}

func InternalError(message string) *APIError {
	return NewAPIError(KindInternal, message, http.StatusInternalServerError)
}

func Unauthorized(message string) *APIError {
	return NewAPIError(KindUnauthorized, message, http.StatusUnauthorized)
}

func InvalidTransition(from, to string) *APIError {
	return &APIError{
		Code:       KindInvalidTransition,
		Message:    fmt.Sprintf("cannot transition from %s to %s", from, to),
		StatusCode: http.StatusConflict,
		Err:        ErrInvalidTransition,
	}
}

func JobNotOpen() *APIError {
	return &APIError{
		Code:       KindInvalidTransition,
		Message:    "job is no longer accepting applications",
		StatusCode: http.StatusConflict,
		Err:        ErrJobNotOpen,
	}
}

func AlreadyApplied() *APIError {
	return &APIError{
		Code:       KindConflict,
		Message:    "provider already applied to this job",
		StatusCode: http.StatusConflict,
		Err:        ErrAlreadyApplied,
	}
}

func AlreadySettled() *APIError {
	return &APIError{
		Code:       KindConflict,
		Message:    "job has already been completed and settled",
		StatusCode: http.StatusConflict,
		Err:        ErrAlreadySettled,
	}
}

func InvalidRating() *APIError {
	return &APIError{
		Code:       KindValidation,
		Message:    "rating must be an integer between 1 and 5",
		StatusCode: http.StatusBadRequest,
		Err:        ErrInvalidRating,
	}
}

// Persistence wraps a storage failure on the primary path of an operation.
func Persistence(op string, err error) *APIError {
	return &APIError{
		Code:       KindPersistence,
		Message:    "failed to " + op,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// ExternalService wraps a failure returned by a third-party provider.
func ExternalService(provider string, err error) *APIError {
	return &APIError{
		Code:       KindExternalService,
		Message:    provider + " request failed",
		StatusCode: http.StatusBadGateway,
		Err:        err,
	}
}

func RateLimited() *APIError {
	return NewAPIError(KindRateLimited, "too many requests, please try again later", http.StatusTooManyRequests)
}

func IdempotencyConflict() *APIError {
	return NewAPIError("idempotency_conflict", "idempotency key already used with different request", http.StatusConflict)
}

// Kind returns the error kind tag for err. Errors that are not an APIError
// are reported as internal errors.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return KindInternal
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || Kind(err) == KindNotFound
}
