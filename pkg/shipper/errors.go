package shipper

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Error codes shared by all carriers.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeAuth       = "AUTH_ERROR"
	CodeNetwork    = "NETWORK_ERROR"
	CodeRateLimit  = "RATE_LIMIT_ERROR"
	CodeAPI        = "API_ERROR"
	CodeUnknown    = "UNKNOWN_ERROR"
)

// CarrierError represents an error from a shipping carrier.
type CarrierError struct {
	Carrier    string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Details    map[string]any
	Cause      error
}

// Error implements the error interface.
func (e *CarrierError) Error() string {
	prefix := "carrier error"
	if e.Carrier != "" {
		prefix = e.Carrier + " error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", prefix, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", prefix, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CarrierError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for CarrierError.
func (e *CarrierError) Is(target error) bool {
	t, ok := target.(*CarrierError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewCarrierError creates a new CarrierError.
func NewCarrierError(carrier, code, message string) *CarrierError {
	return &CarrierError{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *CarrierError) WithCause(err error) *CarrierError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *CarrierError) WithStatusCode(code int) *CarrierError {
	e.StatusCode = code
	return e
}

// WithRetryable marks the error as retryable.
func (e *CarrierError) WithRetryable(retryable bool) *CarrierError {
	e.Retryable = retryable
	return e
}

// WithDetail attaches a diagnostic key/value.
func (e *CarrierError) WithDetail(key string, value any) *CarrierError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// ============================================================================
// Error kinds
// ============================================================================

// ValidationError reports malformed domain input or an unexpected
// third-party payload shape.
type ValidationError struct {
	CarrierError
	Violations []Violation
}

// NewValidationError creates a ValidationError carrying the violation list.
func NewValidationError(carrier, message string, violations []Violation) *ValidationError {
	return &ValidationError{
		CarrierError: CarrierError{Carrier: carrier, Code: CodeValidation, Message: message},
		Violations:   violations,
	}
}

// Error lists the first violations after the message.
func (e *ValidationError) Error() string {
	base := e.CarrierError.Error()
	if len(e.Violations) == 0 {
		return base
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return base + " [" + strings.Join(parts, "; ") + "]"
}

// AuthenticationError reports a failed token-endpoint call.
type AuthenticationError struct {
	CarrierError
}

// NewAuthenticationError creates an AuthenticationError wrapping cause.
func NewAuthenticationError(carrier, message string, cause error) *AuthenticationError {
	return &AuthenticationError{
		CarrierError: CarrierError{Carrier: carrier, Code: CodeAuth, Message: message, Cause: cause},
	}
}

// NetworkError reports that no response was received.
type NetworkError struct {
	CarrierError
}

// NewNetworkError creates a retryable NetworkError wrapping cause.
func NewNetworkError(carrier, message string, cause error) *NetworkError {
	return &NetworkError{
		CarrierError: CarrierError{Carrier: carrier, Code: CodeNetwork, Message: message, Retryable: true, Cause: cause},
	}
}

// RateLimitError reports HTTP 429 from a carrier.
type RateLimitError struct {
	CarrierError
	RetryAfter string // Raw Retry-After header value, may be empty
}

// NewRateLimitError creates a retryable RateLimitError.
func NewRateLimitError(carrier, retryAfter string) *RateLimitError {
	return &RateLimitError{
		CarrierError: CarrierError{
			Carrier:    carrier,
			Code:       CodeRateLimit,
			Message:    "rate limit exceeded",
			StatusCode: http.StatusTooManyRequests,
			Retryable:  true,
		},
		RetryAfter: retryAfter,
	}
}

// RetryAfterDuration interprets RetryAfter as delta-seconds or an HTTP date.
// It returns zero when the hint is missing or unparseable.
func (e *RateLimitError) RetryAfterDuration() time.Duration {
	return retryAfterDuration(e.RetryAfter, time.Now())
}

func retryAfterDuration(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// APIError reports any other non-2xx status from a carrier.
type APIError struct {
	CarrierError
	Body string
}

// NewAPIError creates an APIError for the given status and raw body.
func NewAPIError(carrier string, statusCode int, body string) *APIError {
	return &APIError{
		CarrierError: CarrierError{
			Carrier:    carrier,
			Code:       CodeAPI,
			Message:    fmt.Sprintf("request failed with status %d", statusCode),
			StatusCode: statusCode,
			Retryable:  statusCode >= http.StatusInternalServerError,
		},
		Body: body,
	}
}

// Sentinel errors.
var (
	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")
)

// carrierErrorOf finds the CarrierError embedded in any of the error kinds.
func carrierErrorOf(err error) *CarrierError {
	var (
		vErr  *ValidationError
		aErr  *AuthenticationError
		nErr  *NetworkError
		rlErr *RateLimitError
		apErr *APIError
		cErr  *CarrierError
	)
	switch {
	case errors.As(err, &vErr):
		return &vErr.CarrierError
	case errors.As(err, &aErr):
		return &aErr.CarrierError
	case errors.As(err, &nErr):
		return &nErr.CarrierError
	case errors.As(err, &rlErr):
		return &rlErr.CarrierError
	case errors.As(err, &apErr):
		return &apErr.CarrierError
	case errors.As(err, &cErr):
		return cErr
	}
	return nil
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	if ce := carrierErrorOf(err); ce != nil {
		return ce.Retryable
	}
	return false
}

// ErrorCode returns the taxonomy code of err, or CodeUnknown.
func ErrorCode(err error) string {
	if ce := carrierErrorOf(err); ce != nil {
		return ce.Code
	}
	return CodeUnknown
}
