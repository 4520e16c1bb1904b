package binance

import (
	"context"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecore/pkg/core"
)

var _ core.Protocol = (*Protocol)(nil)

func TestProtocol_Metadata(t *testing.T) {
	p := NewProtocol()

	assert.Equal(t, "binance", p.Name())
	assert.Equal(t, "3", p.Version())
	assert.Equal(t, SandboxURL, p.BaseURL(true))
	assert.Equal(t, ProductionURL, p.BaseURL(false))
	assert.Len(t, p.SupportedOperations(), 5)
}

func TestSign_KnownVectors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		secret  string
		want    string
	}{
		{
			name:    "rfc4231_case2",
			payload: "what do ya want for nothing?",
			secret:  "Jefe",
			want:    "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843",
		},
		{
			name:    "api_docs_example",
			payload: "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559",
			secret:  "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j",
			want:    "c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sign(tt.payload, tt.secret))
			assert.Equal(t, tt.want, NewProtocol().Sign(tt.payload, tt.secret))
		})
	}
}

func TestSign_Shape(t *testing.T) {
	hex64 := regexp.MustCompile(`^[0-9a-f]{64}$`)

	for _, payload := range []string{"", "timestamp=1", "symbol=BTCUSDT&timestamp=1700000000000"} {
		sig := Sign(payload, "secret")
		assert.Regexp(t, hex64, sig)
		assert.Equal(t, sig, Sign(payload, "secret"))
		assert.NotEqual(t, sig, Sign(payload, "other"))
	}
}

func TestSign_PayloadSensitive(t *testing.T) {
	const secret = "secret"
	base := "quantity=1.00000000&side=BUY&symbol=BTCUSDT&timestamp=1700000000000"
	sig := Sign(base, secret)

	assert.NotEqual(t, Sign("timestamp=1", secret), Sign("timestamp=2", secret))

	// every single-character change of the canonical string must change the signature
	for i := range len(base) {
		b := []byte(base)
		if b[i] == 'x' {
			b[i] = 'y'
		} else {
			b[i] = 'x'
		}
		assert.NotEqual(t, sig, Sign(string(b), secret), "byte %d", i)
	}
	assert.NotEqual(t, sig, Sign(base+"0", secret))
	assert.NotEqual(t, sig, Sign(base[:len(base)-1], secret))
}

func TestBuildRequest(t *testing.T) {
	p := NewProtocol()
	ctx := context.Background()

	tests := []struct {
		name       string
		op         core.Operation
		params     core.Params
		wantMethod string
		wantPath   string
		wantSigned bool
		wantQuery  string
	}{
		{
			name:       "account",
			op:         core.OpGetAccount,
			params:     core.Params{},
			wantMethod: http.MethodGet,
			wantPath:   "/api/v3/account",
			wantSigned: true,
		},
		{
			name:       "price",
			op:         core.OpGetPrice,
			params:     core.Params{"symbol": "btc/usdt"},
			wantMethod: http.MethodGet,
			wantPath:   "/api/v3/ticker/price",
			wantQuery:  "symbol=BTCUSDT",
		},
		{
			name: "limit_order",
			op:   core.OpPlaceOrder,
			params: core.Params{
				"symbol":          "BTCUSDT",
				"side":            "buy",
				"type":            "limit",
				"quantity":        "0.00100000",
				"price":           "50000.00000000",
				"time_in_force":   "gtc",
				"client_order_id": "my-order-1",
			},
			wantMethod: http.MethodPost,
			wantPath:   "/api/v3/order",
			wantSigned: true,
			wantQuery:  "newClientOrderId=my-order-1&price=50000.00000000&quantity=0.00100000&side=BUY&symbol=BTCUSDT&timeInForce=GTC&type=LIMIT",
		},
		{
			name:       "market_order",
			op:         core.OpPlaceOrder,
			params:     core.Params{"symbol": "BTCUSDT", "side": "SELL", "type": "MARKET", "quantity": "1.00000000"},
			wantMethod: http.MethodPost,
			wantPath:   "/api/v3/order",
			wantSigned: true,
			wantQuery:  "quantity=1.00000000&side=SELL&symbol=BTCUSDT&type=MARKET",
		},
		{
			name:       "cancel_by_id",
			op:         core.OpCancelOrder,
			params:     core.Params{"symbol": "BTCUSDT", "order_id": "12345"},
			wantMethod: http.MethodDelete,
			wantPath:   "/api/v3/order",
			wantSigned: true,
			wantQuery:  "orderId=12345&symbol=BTCUSDT",
		},
		{
			name:       "cancel_by_client_id",
			op:         core.OpCancelOrder,
			params:     core.Params{"symbol": "BTCUSDT", "client_order_id": "abc"},
			wantMethod: http.MethodDelete,
			wantPath:   "/api/v3/order",
			wantSigned: true,
			wantQuery:  "origClientOrderId=abc&symbol=BTCUSDT",
		},
		{
			name:       "open_orders_all",
			op:         core.OpGetOpenOrders,
			params:     core.Params{},
			wantMethod: http.MethodGet,
			wantPath:   "/api/v3/openOrders",
			wantSigned: true,
		},
		{
			name:       "open_orders_symbol",
			op:         core.OpGetOpenOrders,
			params:     core.Params{"symbol": "ETHUSDT"},
			wantMethod: http.MethodGet,
			wantPath:   "/api/v3/openOrders",
			wantSigned: true,
			wantQuery:  "symbol=ETHUSDT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := p.BuildRequest(ctx, tt.op, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.Equal(t, tt.wantPath, req.Path)
			assert.Equal(t, tt.wantSigned, req.Signed)
			assert.Equal(t, tt.wantQuery, req.Params.Encode())
			assert.NotContains(t, req.Params, "timestamp")
			assert.NotContains(t, req.Params, "signature")
		})
	}
}

func TestBuildRequest_MissingParams(t *testing.T) {
	p := NewProtocol()
	ctx := context.Background()

	tests := []struct {
		name   string
		op     core.Operation
		params core.Params
	}{
		{"price_no_symbol", core.OpGetPrice, core.Params{}},
		{"order_no_quantity", core.OpPlaceOrder, core.Params{"symbol": "BTCUSDT", "side": "BUY", "type": "MARKET"}},
		{"order_empty_side", core.OpPlaceOrder, core.Params{"symbol": "BTCUSDT", "side": "", "type": "MARKET", "quantity": "1"}},
		{"cancel_no_id", core.OpCancelOrder, core.Params{"symbol": "BTCUSDT"}},
		{"unsupported", core.Operation(99), core.Params{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.BuildRequest(ctx, tt.op, tt.params)
			assert.Error(t, err)
		})
	}
}

func TestParseResponse_APIError(t *testing.T) {
	p := NewProtocol()

	tests := []struct {
		name     string
		status   int
		body     string
		wantType core.ErrorType
		wantCode *int
		wantMsg  string
	}{
		{
			name:     "bad_signature",
			status:   400,
			body:     `{"code":-1022,"msg":"Signature for this request is not valid."}`,
			wantType: core.ErrorTypeAuthentication,
			wantCode: intPtr(-1022),
			wantMsg:  "Signature for this request is not valid.",
		},
		{
			name:     "insufficient_balance",
			status:   400,
			body:     `{"code":-2010,"msg":"Account has insufficient balance for requested action."}`,
			wantType: core.ErrorTypeInsufficientFunds,
			wantCode: intPtr(-2010),
			wantMsg:  "Account has insufficient balance for requested action.",
		},
		{
			name:     "unknown_order",
			status:   400,
			body:     `{"code":-2013,"msg":"Order does not exist."}`,
			wantType: core.ErrorTypeNotFound,
			wantCode: intPtr(-2013),
			wantMsg:  "Order does not exist.",
		},
		{
			name:     "rate_limited",
			status:   429,
			body:     `{"code":-1003,"msg":"Too many requests."}`,
			wantType: core.ErrorTypeRateLimit,
			wantCode: intPtr(-1003),
			wantMsg:  "Too many requests.",
		},
		{
			name:     "unlisted_param_code",
			status:   400,
			body:     `{"code":-1130,"msg":"Invalid data sent for a parameter."}`,
			wantType: core.ErrorTypeBadRequest,
			wantCode: intPtr(-1130),
			wantMsg:  "Invalid data sent for a parameter.",
		},
		{
			name:     "no_code",
			status:   503,
			body:     `{"msg":"Service unavailable."}`,
			wantType: core.ErrorTypeServerError,
			wantMsg:  "Service unavailable.",
		},
		{
			name:     "positive_code_falls_back_to_status",
			status:   403,
			body:     `{"code":0,"msg":"WAF limit violated"}`,
			wantType: core.ErrorTypeAuthentication,
			wantCode: intPtr(0),
			wantMsg:  "WAF limit violated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseResponse(core.OpPlaceOrder, tt.status, []byte(tt.body))

			var exErr *core.ExchangeError
			require.ErrorAs(t, err, &exErr)
			assert.Equal(t, core.KindAPI, exErr.Kind)
			assert.Equal(t, tt.wantType, exErr.Type)
			assert.Equal(t, tt.status, exErr.StatusCode)
			assert.Equal(t, tt.wantCode, exErr.Code)
			assert.Equal(t, tt.wantMsg, exErr.Message)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseResponse_UnparseableErrorBody(t *testing.T) {
	p := NewProtocol()

	for _, body := range []string{`<html>502 Bad Gateway</html>`, ``, `{"code":-1000}`, `[]`} {
		t.Run(body, func(t *testing.T) {
			_, err := p.ParseResponse(core.OpGetAccount, http.StatusBadGateway, []byte(body))

			var exErr *core.ExchangeError
			require.ErrorAs(t, err, &exErr)
			assert.Equal(t, core.KindParse, exErr.Kind)
			assert.Equal(t, http.StatusBadGateway, exErr.StatusCode)
			assert.NotEmpty(t, exErr.Field)
		})
	}
}

func TestParseResponse_Success(t *testing.T) {
	p := NewProtocol()

	result, err := p.ParseResponse(core.OpGetPrice, http.StatusOK, []byte(`{"symbol":"BTCUSDT","price":"50000.00"}`))
	require.NoError(t, err)

	tick, ok := result.(*core.PriceTick)
	require.True(t, ok)
	assert.Equal(t, "BTCUSDT", tick.Symbol)
	assert.Equal(t, 50000.0, tick.Price)

	result, err = p.ParseResponse(core.OpGetOpenOrders, http.StatusOK, []byte(`[]`))
	require.NoError(t, err)
	orders, ok := result.([]core.Order)
	require.True(t, ok)
	assert.Empty(t, orders)
}

func TestParseResponse_MalformedSuccessBody(t *testing.T) {
	p := NewProtocol()

	_, err := p.ParseResponse(core.OpGetPrice, http.StatusOK, []byte(`{"symbol":"BTCUSDT","price":50000}`))

	var exErr *core.ExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, core.KindParse, exErr.Kind)
	assert.Equal(t, "price", exErr.Field)
	assert.Equal(t, http.StatusOK, exErr.StatusCode)
}

func TestMapBinanceErrorCode(t *testing.T) {
	tests := []struct {
		code int
		want core.ErrorType
	}{
		{-1000, core.ErrorTypeServerError},
		{-1001, core.ErrorTypeServerError},
		{-1002, core.ErrorTypeAuthentication},
		{-1003, core.ErrorTypeRateLimit},
		{-1007, core.ErrorTypeTimeout},
		{-1015, core.ErrorTypeRateLimit},
		{-1021, core.ErrorTypeAuthentication},
		{-1022, core.ErrorTypeAuthentication},
		{-1100, core.ErrorTypeBadRequest},
		{-1121, core.ErrorTypeBadRequest},
		{-1131, core.ErrorTypeBadRequest},
		{-2010, core.ErrorTypeInsufficientFunds},
		{-2011, core.ErrorTypeInvalidOrder},
		{-2013, core.ErrorTypeNotFound},
		{-2014, core.ErrorTypeAuthentication},
		{-2015, core.ErrorTypeAuthentication},
		{-2026, core.ErrorTypeInvalidOrder},
		{-4000, core.ErrorTypeUnknown},
		{0, core.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(core.CodeString(&tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, mapBinanceErrorCode(tt.code))
		})
	}
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, core.ErrorTypeRateLimit, mapStatus(429))
	assert.Equal(t, core.ErrorTypeRateLimit, mapStatus(418))
	assert.Equal(t, core.ErrorTypeAuthentication, mapStatus(401))
	assert.Equal(t, core.ErrorTypeNotFound, mapStatus(404))
	assert.Equal(t, core.ErrorTypeServerError, mapStatus(502))
	assert.Equal(t, core.ErrorTypeBadRequest, mapStatus(400))
	assert.Equal(t, core.ErrorTypeUnknown, mapStatus(302))
}

func intPtr(v int) *int { return &v }
