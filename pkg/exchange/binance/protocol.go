package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"tradecore/pkg/core"
)

const (
	ProductionURL = "https://api.binance.com"
	SandboxURL    = "https://testnet.binance.vision"

	// APIKeyHeader carries the public API key on signed requests.
	APIKeyHeader = "X-MBX-APIKEY"

	pathAccount    = "/api/v3/account"
	pathPrice      = "/api/v3/ticker/price"
	pathOrder      = "/api/v3/order"
	pathOpenOrders = "/api/v3/openOrders"
)

var _ core.Protocol = (*Protocol)(nil)

// Protocol implements the core.Protocol interface for the Binance spot API.
// It is stateless and safe for concurrent use.
type Protocol struct{}

// NewProtocol creates a new Binance protocol instance.
func NewProtocol() *Protocol {
	return &Protocol{}
}

// Name returns the protocol identifier "binance".
func (p *Protocol) Name() string {
	return "binance"
}

// Version returns the Binance API version string.
func (p *Protocol) Version() string {
	return "3"
}

// BaseURL returns the base URL for the Binance API.
// If sandbox is true, returns the testnet URL; otherwise returns the production URL.
func (p *Protocol) BaseURL(sandbox bool) string {
	if sandbox {
		return SandboxURL
	}
	return ProductionURL
}

// SupportedOperations returns the list of operations supported by this protocol.
func (p *Protocol) SupportedOperations() []core.Operation {
	return []core.Operation{
		core.OpGetAccount,
		core.OpGetPrice,
		core.OpPlaceOrder,
		core.OpCancelOrder,
		core.OpGetOpenOrders,
	}
}

// Sign returns the lowercase hex HMAC-SHA256 of payload keyed by secret.
func (p *Protocol) Sign(payload, secret string) string {
	return Sign(payload, secret)
}

// Sign returns the lowercase hex HMAC-SHA256 of payload keyed by secret.
// The result is always 64 characters long.
func Sign(payload, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

// BuildRequest constructs the request descriptor for the given operation.
// It validates required parameters; timestamp and signature are added at send time.
func (p *Protocol) BuildRequest(_ context.Context, op core.Operation, params core.Params) (*core.Request, error) {
	switch op {
	case core.OpGetAccount:
		return p.buildGetAccountRequest(params)
	case core.OpGetPrice:
		return p.buildGetPriceRequest(params)
	case core.OpPlaceOrder:
		return p.buildPlaceOrderRequest(params)
	case core.OpCancelOrder:
		return p.buildCancelOrderRequest(params)
	case core.OpGetOpenOrders:
		return p.buildGetOpenOrdersRequest(params)
	default:
		return nil, fmt.Errorf("unsupported operation: %s", op)
	}
}

// ParseResponse decodes body for op. Non-2xx statuses decode as an exchange
// error; bodies matching neither shape become parse errors.
func (p *Protocol) ParseResponse(op core.Operation, statusCode int, body []byte) (any, error) {
	if statusCode < 200 || statusCode >= 300 {
		return nil, p.parseError(statusCode, body)
	}

	n := NewNormalizer()

	var (
		result any
		err    error
	)
	switch op {
	case core.OpGetAccount:
		result, err = n.DecodeAccountInfo(body)
	case core.OpGetPrice:
		result, err = n.DecodePriceTick(body)
	case core.OpPlaceOrder, core.OpCancelOrder:
		result, err = n.DecodeOrder(body)
	case core.OpGetOpenOrders:
		result, err = n.DecodeOrders(body)
	default:
		return nil, fmt.Errorf("unsupported operation: %s", op)
	}
	if err != nil {
		return nil, p.wrapParseError(statusCode, err)
	}
	return result, nil
}

func (p *Protocol) parseError(statusCode int, body []byte) error {
	apiErr, err := NewNormalizer().decodeAPIError(body)
	if err != nil {
		return p.wrapParseError(statusCode, err)
	}

	errType := mapStatus(statusCode)
	if apiErr.Code != nil {
		if t := mapBinanceErrorCode(*apiErr.Code); t != core.ErrorTypeUnknown {
			errType = t
		}
	}
	return core.NewAPIError(p.Name(), errType, statusCode, apiErr.Code, apiErr.Msg)
}

func (p *Protocol) wrapParseError(statusCode int, err error) error {
	field := "$"
	var fe *core.FieldError
	if errors.As(err, &fe) {
		field = fe.Path
		err = fe.Err
	}
	return core.NewParseError(p.Name(), field, err).WithStatus(statusCode)
}

func (p *Protocol) buildGetAccountRequest(_ core.Params) (*core.Request, error) {
	req := core.NewRequest(http.MethodGet, pathAccount)
	req.SetSigned(true)
	return req, nil
}

func (p *Protocol) buildGetPriceRequest(params core.Params) (*core.Request, error) {
	symbol, err := getRequiredParam(params, "symbol")
	if err != nil {
		return nil, err
	}

	req := core.NewRequest(http.MethodGet, pathPrice)
	req.SetParam("symbol", formatSymbol(symbol))
	return req, nil
}

func (p *Protocol) buildPlaceOrderRequest(params core.Params) (*core.Request, error) {
	symbol, err := getRequiredParam(params, "symbol")
	if err != nil {
		return nil, err
	}

	side, err := getRequiredParam(params, "side")
	if err != nil {
		return nil, err
	}

	orderType, err := getRequiredParam(params, "type")
	if err != nil {
		return nil, err
	}

	quantity, err := getRequiredParam(params, "quantity")
	if err != nil {
		return nil, err
	}

	req := core.NewRequest(http.MethodPost, pathOrder)
	req.SetParam("symbol", formatSymbol(symbol))
	req.SetParam("side", strings.ToUpper(side))
	req.SetParam("type", strings.ToUpper(orderType))
	req.SetParam("quantity", quantity)
	req.SetSigned(true)

	if price := params["price"]; price != "" {
		req.SetParam("price", price)
	}

	if timeInForce := params["time_in_force"]; timeInForce != "" {
		req.SetParam("timeInForce", strings.ToUpper(timeInForce))
	}

	if clientOrderID := params["client_order_id"]; clientOrderID != "" {
		req.SetParam("newClientOrderId", clientOrderID)
	}

	return req, nil
}

func (p *Protocol) buildCancelOrderRequest(params core.Params) (*core.Request, error) {
	symbol, err := getRequiredParam(params, "symbol")
	if err != nil {
		return nil, err
	}

	req := core.NewRequest(http.MethodDelete, pathOrder)
	req.SetParam("symbol", formatSymbol(symbol))
	req.SetSigned(true)

	orderID := params["order_id"]
	clientOrderID := params["client_order_id"]
	if orderID == "" && clientOrderID == "" {
		return nil, fmt.Errorf("missing required parameter: order_id or client_order_id")
	}
	if orderID != "" {
		req.SetParam("orderId", orderID)
	}
	if clientOrderID != "" {
		req.SetParam("origClientOrderId", clientOrderID)
	}

	return req, nil
}

func (p *Protocol) buildGetOpenOrdersRequest(params core.Params) (*core.Request, error) {
	req := core.NewRequest(http.MethodGet, pathOpenOrders)
	req.SetSigned(true)

	if symbol := params["symbol"]; symbol != "" {
		req.SetParam("symbol", formatSymbol(symbol))
	}

	return req, nil
}

// formatSymbol accepts both "BTC/USDT" and "BTCUSDT".
func formatSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}

func getRequiredParam(params core.Params, key string) (string, error) {
	val, ok := params[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter: %s", key)
	}
	if val == "" {
		return "", fmt.Errorf("parameter %s cannot be empty", key)
	}
	return val, nil
}

func mapStatus(statusCode int) core.ErrorType {
	switch {
	case statusCode == http.StatusTooManyRequests, statusCode == http.StatusTeapot:
		return core.ErrorTypeRateLimit
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return core.ErrorTypeAuthentication
	case statusCode == http.StatusNotFound:
		return core.ErrorTypeNotFound
	case statusCode >= 500:
		return core.ErrorTypeServerError
	case statusCode >= 400:
		return core.ErrorTypeBadRequest
	default:
		return core.ErrorTypeUnknown
	}
}

func mapBinanceErrorCode(code int) core.ErrorType {
	switch core.ErrorCode(code) {
	case core.ErrCodeTooManyRequests, core.ErrCodeTooManyOrders:
		return core.ErrorTypeRateLimit
	case core.ErrCodeUnauthorized, core.ErrCodeInvalidTimestamp, core.ErrCodeInvalidSignature,
		core.ErrCodeBadAPIKeyFormat, core.ErrCodeRejectedAPIKey:
		return core.ErrorTypeAuthentication
	case core.ErrCodeTimeout:
		return core.ErrorTypeTimeout
	case core.ErrCodeDisconnected, core.ErrCodeUnknown:
		return core.ErrorTypeServerError
	case core.ErrCodeNoSuchOrder:
		return core.ErrorTypeNotFound
	case core.ErrCodeNewOrderRejected:
		return core.ErrorTypeInsufficientFunds
	case core.ErrCodeCancelRejected:
		return core.ErrorTypeInvalidOrder
	case core.ErrCodeIllegalChars, core.ErrCodeTooManyParameters, core.ErrCodeMandatoryParameter,
		core.ErrCodeUnknownParameter, core.ErrCodeUnreadParameters, core.ErrCodeParameterEmpty,
		core.ErrCodeBadSymbol:
		return core.ErrorTypeBadRequest
	default:
		if code <= -1000 && code > -2000 {
			return core.ErrorTypeBadRequest
		}
		if code <= -2000 && code > -3000 {
			return core.ErrorTypeInvalidOrder
		}
		return core.ErrorTypeUnknown
	}
}
