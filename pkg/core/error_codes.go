package core

// ErrorCode is a numeric error identifier documented by the exchange.
// Codes are passed through unmodified so callers can branch on them.
type ErrorCode int

// Documented spot API error codes the client classifies.
const (
	ErrCodeUnknown            ErrorCode = -1000
	ErrCodeDisconnected       ErrorCode = -1001
	ErrCodeUnauthorized       ErrorCode = -1002
	ErrCodeTooManyRequests    ErrorCode = -1003
	ErrCodeTimeout            ErrorCode = -1007
	ErrCodeTooManyOrders      ErrorCode = -1015
	ErrCodeInvalidTimestamp   ErrorCode = -1021
	ErrCodeInvalidSignature   ErrorCode = -1022
	ErrCodeIllegalChars       ErrorCode = -1100
	ErrCodeTooManyParameters  ErrorCode = -1101
	ErrCodeMandatoryParameter ErrorCode = -1102
	ErrCodeUnknownParameter   ErrorCode = -1103
	ErrCodeUnreadParameters   ErrorCode = -1104
	ErrCodeParameterEmpty     ErrorCode = -1105
	ErrCodeBadSymbol          ErrorCode = -1121

	// Order errors
	ErrCodeNewOrderRejected ErrorCode = -2010
	ErrCodeCancelRejected   ErrorCode = -2011
	ErrCodeNoSuchOrder      ErrorCode = -2013
	ErrCodeBadAPIKeyFormat  ErrorCode = -2014
	ErrCodeRejectedAPIKey   ErrorCode = -2015
)

// IsErrorCode checks if err carries the specified exchange error code.
func IsErrorCode(err error, code ErrorCode) bool {
	c, ok := APICode(err)
	return ok && ErrorCode(c) == code
}
