package binance

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	httpClient "tradecore/internal/http"
	"tradecore/pkg/core"
	"tradecore/pkg/exchange"
)

const (
	formContentType = "application/x-www-form-urlencoded"
	userAgent       = "tradecore"
)

var _ exchange.Trader = (*Trader)(nil)

// Trader is a signed REST client for the Binance spot API.
//
// A Trader holds only configuration fixed at construction. Its methods never
// modify it, so one value can serve any number of concurrent calls. Use
// WithBaseURL to derive a copy aimed at another endpoint.
type Trader struct {
	apiKey     string
	secretKey  string
	baseURL    string
	recvWindow time.Duration
	clock      func() time.Time
	httpClient *httpClient.Client
	logger     zerolog.Logger
	protocol   *Protocol
}

// Option is a functional option for configuring the Trader.
type Option func(*Options)

// Options holds configuration options for the Trader.
type Options struct {
	Logger    zerolog.Logger
	Clock     func() time.Time
	Transport http.RoundTripper
}

// WithLogger returns an option that sets the logger for the trader.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithClock returns an option that replaces the clock used for request timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		o.Clock = clock
	}
}

// WithTransport returns an option that replaces the HTTP round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *Options) {
		o.Transport = rt
	}
}

// NewTrader creates a Trader for the given credentials pointed at the testnet.
// With both keys empty the Trader serves public operations only, and signed
// calls fail with core.ErrNoCredentials.
func NewTrader(apiKey, secretKey string, opts ...Option) (*Trader, error) {
	config := core.DefaultConfig()
	if apiKey != "" || secretKey != "" {
		config.WithCredentials(&core.Credentials{
			APIKey:    apiKey,
			SecretKey: secretKey,
		})
	}
	return New(config, opts...)
}

// New creates a Trader from config. Credentials may be nil, in which case only
// public operations succeed.
func New(config *core.Config, opts ...Option) (*Trader, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if config.Credentials != nil {
		if err := config.Credentials.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrNoCredentials, err)
		}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	options := &Options{
		Logger: zerolog.Nop(),
		Clock:  time.Now,
	}
	for _, opt := range opts {
		opt(options)
	}

	hc, err := httpClient.NewClient(&httpClient.Config{
		Timeout:   config.Timeout,
		Headers:   map[string]string{"User-Agent": userAgent},
		Logger:    options.Logger,
		Transport: options.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	protocol := NewProtocol()
	t := &Trader{
		baseURL:    baseURL(config, protocol),
		recvWindow: config.RecvWindow,
		clock:      options.Clock,
		httpClient: hc,
		logger:     options.Logger,
		protocol:   protocol,
	}
	if config.Credentials != nil {
		t.apiKey = config.Credentials.APIKey
		t.secretKey = config.Credentials.SecretKey
	}
	return t, nil
}

// baseURL returns the configured override, or the endpoint for the sandbox setting.
func baseURL(config *core.Config, p *Protocol) string {
	if config.BaseURL != "" {
		return strings.TrimRight(config.BaseURL, "/")
	}
	return p.BaseURL(config.Sandbox)
}

// WithBaseURL returns a copy of t that sends requests to url instead.
// The copy shares the underlying HTTP client.
func (t *Trader) WithBaseURL(url string) *Trader {
	c := *t
	c.baseURL = strings.TrimRight(url, "/")
	return &c
}

// BaseURL returns the endpoint requests are sent to.
func (t *Trader) BaseURL() string {
	return t.baseURL
}

// Name returns the exchange identifier "binance".
func (t *Trader) Name() string {
	return t.protocol.Name()
}

// Close releases resources used by the trader, including the HTTP client.
// Copies made with WithBaseURL share the client and are closed with it.
func (t *Trader) Close() error {
	if t.httpClient != nil {
		return t.httpClient.Close()
	}
	return nil
}

// GetAccountInfo retrieves balances and account permissions.
func (t *Trader) GetAccountInfo(ctx context.Context) (*core.AccountInfo, error) {
	return call[*core.AccountInfo](ctx, t, core.OpGetAccount, core.Params{})
}

// GetPrice retrieves the latest price for symbol. The endpoint is public, so
// no signature is attached.
func (t *Trader) GetPrice(ctx context.Context, symbol string) (*core.PriceTick, error) {
	return call[*core.PriceTick](ctx, t, core.OpGetPrice, core.Params{"symbol": symbol})
}

// GetCurrentPrice returns only the price for symbol.
func (t *Trader) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	tick, err := t.GetPrice(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return tick.Price, nil
}

// PlaceOrder submits a new order. Quantity and price are sent with 8 decimal places.
func (t *Trader) PlaceOrder(ctx context.Context, req *exchange.OrderRequest) (*core.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	quantity, err := core.FormatDecimal(req.Quantity, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: quantity: %w", core.ErrInvalidOrder, err)
	}

	params := core.Params{
		"symbol":   req.Symbol,
		"side":     req.Side.String(),
		"type":     req.Type.String(),
		"quantity": quantity,
	}
	if req.Type == core.TypeLimit {
		price, err := core.FormatDecimal(req.Price, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: price: %w", core.ErrInvalidOrder, err)
		}
		params["price"] = price
		params["time_in_force"] = req.TimeInForce.String()
	}
	if req.ClientOrderID != "" {
		params["client_order_id"] = req.ClientOrderID
	}

	order, err := call[*core.Order](ctx, t, core.OpPlaceOrder, params)
	if err != nil {
		t.logger.Error().Err(err).
			Str("symbol", req.Symbol).
			Str("side", req.Side.String()).
			Str("type", req.Type.String()).
			Msg("order placement failed")
		return nil, err
	}

	t.logger.Info().
		Int64("order_id", order.OrderID).
		Str("symbol", order.Symbol).
		Str("side", order.Side.String()).
		Str("type", order.Type.String()).
		Float64("quantity", req.Quantity).
		Str("status", order.Status.String()).
		Msg("order placed")
	return order, nil
}

// PlaceMarketOrder submits a market order for quantity units of symbol.
func (t *Trader) PlaceMarketOrder(ctx context.Context, symbol string, side core.OrderSide, quantity float64) (*core.Order, error) {
	return t.PlaceOrder(ctx, &exchange.OrderRequest{
		Symbol:   symbol,
		Side:     side,
		Type:     core.TypeMarket,
		Quantity: quantity,
	})
}

// PlaceLimitOrder submits a good-till-canceled limit order.
func (t *Trader) PlaceLimitOrder(ctx context.Context, symbol string, side core.OrderSide, quantity, price float64) (*core.Order, error) {
	return t.PlaceOrder(ctx, &exchange.OrderRequest{
		Symbol:      symbol,
		Side:        side,
		Type:        core.TypeLimit,
		Quantity:    quantity,
		Price:       price,
		TimeInForce: core.GTC,
	})
}

// CancelOrder cancels an open order by exchange or client order id.
func (t *Trader) CancelOrder(ctx context.Context, req *exchange.CancelRequest) (*core.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := core.Params{"symbol": req.Symbol}
	if req.OrderID != 0 {
		params["order_id"] = strconv.FormatInt(req.OrderID, 10)
	}
	if req.ClientOrderID != "" {
		params["client_order_id"] = req.ClientOrderID
	}

	order, err := call[*core.Order](ctx, t, core.OpCancelOrder, params)
	if err != nil {
		return nil, err
	}

	t.logger.Info().
		Int64("order_id", order.OrderID).
		Str("symbol", order.Symbol).
		Str("status", order.Status.String()).
		Msg("order canceled")
	return order, nil
}

// GetOpenOrders retrieves open orders, for every symbol when symbol is empty.
func (t *Trader) GetOpenOrders(ctx context.Context, symbol string) ([]core.Order, error) {
	params := core.Params{}
	if symbol != "" {
		params["symbol"] = symbol
	}
	return call[[]core.Order](ctx, t, core.OpGetOpenOrders, params)
}

// call builds, sends and decodes one operation.
func call[T any](ctx context.Context, t *Trader, op core.Operation, params core.Params) (T, error) {
	var zero T

	req, err := t.protocol.BuildRequest(ctx, op, params)
	if err != nil {
		return zero, fmt.Errorf("build request: %w", err)
	}

	resp, err := t.Execute(ctx, req)
	if err != nil {
		return zero, err
	}

	result, err := t.protocol.ParseResponse(op, resp.StatusCode, resp.Body)
	if err != nil {
		var exErr *core.ExchangeError
		if !resp.IsSuccess() && errors.As(err, &exErr) {
			t.logger.Warn().
				Str("operation", op.String()).
				Int("status", resp.StatusCode).
				Str("code", core.CodeString(exErr.Code)).
				Str("type", exErr.Type.String()).
				Msg("request rejected")
		}
		return zero, err
	}

	v, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected response type: %T", result)
	}
	return v, nil
}

// Execute sends req once and returns the raw response. Signed requests are
// timestamped and signed here, at the moment they are sent. Any failure to
// obtain a response is returned as a transport error.
func (t *Trader) Execute(ctx context.Context, req *core.Request) (*httpClient.Response, error) {
	payload := req.Params.Encode()
	headers := map[string]string{}

	if req.Signed {
		signed, err := t.signedPayload(req.Params)
		if err != nil {
			return nil, err
		}
		payload = signed
		headers[APIKeyHeader] = t.apiKey
	}

	out := &httpClient.Request{
		Method:  req.Method,
		URL:     t.baseURL + req.Path,
		Headers: headers,
	}
	if req.Method == http.MethodPost || req.Method == http.MethodPut {
		out.Body = payload
		out.ContentType = formContentType
	} else if payload != "" {
		out.URL += "?" + payload
	}

	resp, err := t.httpClient.Do(ctx, out)
	if err != nil {
		return nil, t.transportError(ctx, err)
	}
	return resp, nil
}

// signedPayload returns the canonical query for params plus timestamp (and
// recvWindow when configured), followed by its signature. params is not modified.
func (t *Trader) signedPayload(params core.Params) (string, error) {
	if t.apiKey == "" || t.secretKey == "" {
		return "", core.ErrNoCredentials
	}

	p := params.Clone()
	p.Set("timestamp", strconv.FormatInt(t.clock().UnixMilli(), 10))
	if t.recvWindow > 0 {
		p.Set("recvWindow", strconv.FormatInt(t.recvWindow.Milliseconds(), 10))
	}

	query := p.Encode()
	return query + "&signature=" + t.protocol.Sign(query, t.secretKey), nil
}

func (t *Trader) transportError(ctx context.Context, err error) error {
	errType := core.ErrorTypeNetwork

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		errType = core.ErrorTypeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		errType = core.ErrorTypeTimeout
	}
	return core.NewTransportError(t.protocol.Name(), errType, err)
}
