package core

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrorKind identifies which stage of a request produced an error.
type ErrorKind int

// Error kinds. Every failed call ends in exactly one of them.
const (
	// KindTransport covers connection, TLS and timeout failures before a response was read.
	KindTransport ErrorKind = iota
	// KindAPI means the exchange answered and rejected the request.
	KindAPI
	// KindParse means a response body did not have the expected shape.
	KindParse
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "TRANSPORT"
	case KindAPI:
		return "API"
	case KindParse:
		return "PARSE"
	default:
		return "UNKNOWN"
	}
}

// ErrorType represents the category of an exchange error.
type ErrorType int

// Error type constants categorize errors for proper handling by callers.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork indicates a network connectivity issue.
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates the request exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeRateLimit indicates rate limit was exceeded.
	ErrorTypeRateLimit
	// ErrorTypeAuthentication indicates invalid credentials or signature.
	ErrorTypeAuthentication
	// ErrorTypeBadRequest indicates invalid request parameters.
	ErrorTypeBadRequest
	// ErrorTypeNotFound indicates the requested resource does not exist.
	ErrorTypeNotFound
	// ErrorTypeServerError indicates a server-side error.
	ErrorTypeServerError
	// ErrorTypeInsufficientFunds indicates account lacks required balance.
	ErrorTypeInsufficientFunds
	// ErrorTypeInvalidOrder indicates the order violates exchange rules.
	ErrorTypeInvalidOrder
	// ErrorTypeMalformedResponse indicates a body that could not be decoded.
	ErrorTypeMalformedResponse
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	names := [...]string{
		"UNKNOWN",
		"NETWORK",
		"TIMEOUT",
		"RATE_LIMIT",
		"AUTHENTICATION",
		"BAD_REQUEST",
		"NOT_FOUND",
		"SERVER_ERROR",
		"INSUFFICIENT_FUNDS",
		"INVALID_ORDER",
		"MALFORMED_RESPONSE",
	}
	if t < 0 || int(t) >= len(names) {
		return "UNKNOWN"
	}
	return names[t]
}

// Sentinel errors for common error conditions.
var (
	// ErrNoCredentials is returned when a signed call is made without API credentials.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrInvalidOrder is returned when an order request fails local validation.
	ErrInvalidOrder = errors.New("invalid order request")
)

// ExchangeError is the single error type returned by the client.
// Kind tells transport, API and parse failures apart; the remaining fields are
// filled according to the kind.
type ExchangeError struct {
	// Kind is the failure stage.
	Kind ErrorKind `json:"kind"`
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// Exchange identifies which exchange the request was sent to.
	Exchange string `json:"exchange"`
	// StatusCode is the HTTP status code, zero for transport failures.
	StatusCode int `json:"status_code,omitempty"`
	// Code is the exchange's numeric error code when the payload carried one.
	Code *int `json:"code,omitempty"`
	// Message is the exchange's message verbatim for API errors.
	Message string `json:"message,omitempty"`
	// Field names the field or structure that failed to decode.
	Field string `json:"field,omitempty"`
	// Err is the underlying cause for transport and parse failures.
	Err error `json:"-"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface for ExchangeError.
// API errors always render the exchange message unchanged.
func (e *ExchangeError) Error() string {
	switch e.Kind {
	case KindAPI:
		if e.Code != nil {
			return fmt.Sprintf("[%s] %s (%d/%d): %s",
				e.Exchange, e.Type, e.StatusCode, *e.Code, e.Message)
		}
		return fmt.Sprintf("[%s] %s (%d): %s",
			e.Exchange, e.Type, e.StatusCode, e.Message)
	case KindParse:
		if e.Err != nil {
			return fmt.Sprintf("[%s] parse %s: %v", e.Exchange, e.Field, e.Err)
		}
		return fmt.Sprintf("[%s] parse %s: %s", e.Exchange, e.Field, e.Message)
	default:
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s: %v", e.Exchange, e.Type, e.Err)
		}
		return fmt.Sprintf("[%s] %s: %s", e.Exchange, e.Type, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// NewAPIError creates an error for a request the exchange rejected.
// code may be nil when the payload did not carry one.
func NewAPIError(exchange string, errorType ErrorType, statusCode int, code *int, message string) *ExchangeError {
	return &ExchangeError{
		Kind:       KindAPI,
		Type:       errorType,
		Exchange:   exchange,
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Timestamp:  time.Now(),
	}
}

// NewTransportError wraps a failure that happened before a response was read.
func NewTransportError(exchange string, errorType ErrorType, err error) *ExchangeError {
	return &ExchangeError{
		Kind:      KindTransport,
		Type:      errorType,
		Exchange:  exchange,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// NewParseError reports that field could not be decoded. The message describes
// the expected shape and must not contain request secrets.
func NewParseError(exchange, field string, err error) *ExchangeError {
	return &ExchangeError{
		Kind:      KindParse,
		Type:      ErrorTypeMalformedResponse,
		Exchange:  exchange,
		Field:     field,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// WithStatus records the HTTP status on a parse error and returns e for chaining.
func (e *ExchangeError) WithStatus(statusCode int) *ExchangeError {
	e.StatusCode = statusCode
	return e
}

func asExchangeError(err error) (*ExchangeError, bool) {
	var e *ExchangeError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsAPIError reports whether err was produced by the exchange rejecting a request.
func IsAPIError(err error) bool {
	e, ok := asExchangeError(err)
	return ok && e.Kind == KindAPI
}

// IsParseError reports whether err is a response decoding failure.
func IsParseError(err error) bool {
	e, ok := asExchangeError(err)
	return ok && e.Kind == KindParse
}

// IsTransportError reports whether err happened before a response was received.
func IsTransportError(err error) bool {
	e, ok := asExchangeError(err)
	return ok && e.Kind == KindTransport
}

// IsTimeoutError returns true if the error is a timeout.
func IsTimeoutError(err error) bool {
	e, ok := asExchangeError(err)
	return ok && e.Type == ErrorTypeTimeout
}

// IsRateLimitError returns true if the error is a rate limit violation.
// Backing off is left to the caller.
func IsRateLimitError(err error) bool {
	e, ok := asExchangeError(err)
	return ok && e.Type == ErrorTypeRateLimit
}

// IsAuthenticationError returns true if the exchange rejected the key or signature.
func IsAuthenticationError(err error) bool {
	e, ok := asExchangeError(err)
	return ok && e.Type == ErrorTypeAuthentication
}

// IsTerminalError returns true if repeating the request cannot succeed.
func IsTerminalError(err error) bool {
	e, ok := asExchangeError(err)
	if !ok {
		return false
	}
	return e.Kind == KindParse ||
		e.Type == ErrorTypeInsufficientFunds ||
		e.Type == ErrorTypeInvalidOrder ||
		e.Type == ErrorTypeNotFound ||
		e.Type == ErrorTypeAuthentication
}

// APICode returns the exchange error code carried by err, if any.
func APICode(err error) (int, bool) {
	e, ok := asExchangeError(err)
	if !ok || e.Code == nil {
		return 0, false
	}
	return *e.Code, true
}

// CodeString formats an optional exchange code for logging.
func CodeString(code *int) string {
	if code == nil {
		return ""
	}
	return strconv.Itoa(*code)
}
