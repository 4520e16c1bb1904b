package core

import "context"

// Protocol defines the exchange-specific half of the client: which requests
// exist, how they are signed, and how their responses decode.
type Protocol interface {
	// Name returns the exchange identifier (e.g., "binance").
	Name() string

	// Version returns the API version being used.
	Version() string

	// BaseURL returns the API base URL for the given environment.
	// Sandbox mode returns the test environment URL.
	BaseURL(sandbox bool) string

	// BuildRequest constructs the request descriptor for the specified operation.
	BuildRequest(ctx context.Context, op Operation, params Params) (*Request, error)

	// ParseResponse decodes a response body for op into its canonical type,
	// or into a structured error when statusCode is not 2xx.
	ParseResponse(op Operation, statusCode int, body []byte) (any, error)

	// Sign returns the signature of payload under secret.
	Sign(payload, secret string) string

	// SupportedOperations returns the list of operations this protocol supports.
	SupportedOperations() []Operation
}
