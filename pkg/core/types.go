package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// OrderSide represents the direction of an order (buy or sell).
type OrderSide int

// Order side constants define the direction of a trade.
const (
	// SideBuy indicates an order to purchase an asset.
	SideBuy OrderSide = iota
	// SideSell indicates an order to sell an asset.
	SideSell
)

// String returns the wire representation of the order side ("BUY" or "SELL").
func (s OrderSide) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return fmt.Sprintf("OrderSide(%d)", int(s))
	}
}

// ParseOrderSide parses "BUY" or "SELL", case-insensitively.
func ParseOrderSide(s string) (OrderSide, error) {
	switch strings.ToUpper(s) {
	case "BUY":
		return SideBuy, nil
	case "SELL":
		return SideSell, nil
	}
	return 0, fmt.Errorf("unknown order side %q", s)
}

// MarshalJSON implements json.Marshaler for OrderSide.
func (s OrderSide) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderSide.
func (s *OrderSide) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseOrderSide, s)
}

// OrderType represents the type of order to place on an exchange.
type OrderType int

// Order type constants define how an order is executed. Only TypeMarket and
// TypeLimit can be placed through this client; the rest are decoded so that
// orders created elsewhere still show up in listings.
const (
	// TypeMarket executes immediately at the best available price.
	TypeMarket OrderType = iota
	// TypeLimit executes at a specified price or better.
	TypeLimit
	// TypeLimitMaker is a limit order rejected if it would match immediately.
	TypeLimitMaker
	TypeStopLoss
	TypeStopLossLimit
	TypeTakeProfit
	TypeTakeProfitLimit
)

var orderTypeNames = [...]string{"MARKET", "LIMIT", "LIMIT_MAKER", "STOP_LOSS", "STOP_LOSS_LIMIT", "TAKE_PROFIT", "TAKE_PROFIT_LIMIT"}

// String returns the wire representation of the order type.
func (t OrderType) String() string {
	if t < 0 || int(t) >= len(orderTypeNames) {
		return fmt.Sprintf("OrderType(%d)", int(t))
	}
	return orderTypeNames[t]
}

// ParseOrderType parses an order type name.
func ParseOrderType(s string) (OrderType, error) {
	up := strings.ToUpper(s)
	for i, name := range orderTypeNames {
		if name == up {
			return OrderType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown order type %q", s)
}

// MarshalJSON implements json.Marshaler for OrderType.
func (t OrderType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderType.
func (t *OrderType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseOrderType, t)
}

// OrderStatus represents the current state of an order.
type OrderStatus int

// Order status constants define the lifecycle state of an order.
const (
	// StatusNew indicates the order has been accepted by the exchange.
	StatusNew OrderStatus = iota
	// StatusPartiallyFilled indicates the order has been partially filled.
	StatusPartiallyFilled
	// StatusFilled indicates the order has been completely filled.
	StatusFilled
	// StatusPendingCancel indicates a cancel request has been submitted.
	StatusPendingCancel
	// StatusCanceled indicates the order has been canceled.
	StatusCanceled
	// StatusRejected indicates the order was rejected by the exchange.
	StatusRejected
	// StatusExpired indicates the order has expired.
	StatusExpired
)

var orderStatusNames = [...]string{"NEW", "PARTIALLY_FILLED", "FILLED", "PENDING_CANCEL", "CANCELED", "REJECTED", "EXPIRED"}

// String returns the wire representation of the order status.
func (s OrderStatus) String() string {
	if s < 0 || int(s) >= len(orderStatusNames) {
		return fmt.Sprintf("OrderStatus(%d)", int(s))
	}
	return orderStatusNames[s]
}

// ParseOrderStatus parses an order status name.
func ParseOrderStatus(s string) (OrderStatus, error) {
	up := strings.ToUpper(s)
	for i, name := range orderStatusNames {
		if name == up {
			return OrderStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown order status %q", s)
}

// IsTerminal returns true if the order is in a terminal state (no further changes possible).
func (s OrderStatus) IsTerminal() bool {
	return s == StatusFilled || s == StatusCanceled || s == StatusRejected || s == StatusExpired
}

// MarshalJSON implements json.Marshaler for OrderStatus.
func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderStatus.
func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseOrderStatus, s)
}

// TimeInForce defines how long an order remains active.
type TimeInForce int

// Time in force constants define order lifetime behavior.
const (
	// GTC (Good Till Canceled) keeps the order active until filled or canceled.
	GTC TimeInForce = iota
	// IOC (Immediate Or Cancel) requires immediate execution; unfilled portion is canceled.
	IOC
	// FOK (Fill Or Kill) requires complete immediate execution or cancellation.
	FOK
)

// String returns the wire representation of time in force.
func (t TimeInForce) String() string {
	switch t {
	case GTC:
		return "GTC"
	case IOC:
		return "IOC"
	case FOK:
		return "FOK"
	default:
		return fmt.Sprintf("TimeInForce(%d)", int(t))
	}
}

// ParseTimeInForce parses a time in force name.
func ParseTimeInForce(s string) (TimeInForce, error) {
	switch strings.ToUpper(s) {
	case "GTC":
		return GTC, nil
	case "IOC":
		return IOC, nil
	case "FOK":
		return FOK, nil
	}
	return 0, fmt.Errorf("unknown time in force %q", s)
}

// MarshalJSON implements json.Marshaler for TimeInForce.
func (t TimeInForce) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for TimeInForce.
func (t *TimeInForce) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseTimeInForce, t)
}

func unmarshalEnum[T any](data []byte, parse func(string) (T, error), dst *T) error {
	var s string
	if err := sonic.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected string, got %s", shapeOf(data))
	}
	v, err := parse(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// Balance represents account balance for a single asset.
type Balance struct {
	// Asset is the currency or token ticker (e.g., "BTC", "USDT").
	Asset string `json:"asset"`
	// Free is the available balance for trading.
	Free float64 `json:"free"`
	// Locked is the balance locked in open orders.
	Locked float64 `json:"locked"`
}

// Total returns Free plus Locked.
func (b Balance) Total() float64 {
	return b.Free + b.Locked
}

// AccountInfo is the account snapshot returned by an account query.
type AccountInfo struct {
	// Balances keeps the order the exchange reported them in.
	Balances    []Balance `json:"balances"`
	CanTrade    bool      `json:"can_trade"`
	CanWithdraw bool      `json:"can_withdraw"`
	CanDeposit  bool      `json:"can_deposit"`
}

// Balance returns the balance for asset.
func (a *AccountInfo) Balance(asset string) (Balance, bool) {
	for _, b := range a.Balances {
		if b.Asset == asset {
			return b, true
		}
	}
	return Balance{}, false
}

// PriceTick is the latest price for a symbol.
type PriceTick struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Order represents an order as reported by the exchange.
type Order struct {
	// Symbol is the trading pair for this order.
	Symbol string `json:"symbol"`
	// OrderID is the exchange-assigned order identifier.
	OrderID int64 `json:"order_id"`
	// OrderListID is -1 unless the order belongs to an order list.
	OrderListID int64 `json:"order_list_id"`
	// ClientOrderID is the client-assigned order identifier.
	ClientOrderID string `json:"client_order_id"`
	// TransactTime is set on placement and cancel responses.
	TransactTime time.Time `json:"transact_time,omitzero"`
	// Time is set on order listings.
	Time time.Time `json:"time,omitzero"`
	// Price is the limit price; zero for market orders.
	Price float64 `json:"price"`
	// OrigQty is the total order quantity.
	OrigQty float64 `json:"orig_qty"`
	// ExecutedQty is the amount that has been executed.
	ExecutedQty float64 `json:"executed_qty"`
	// CummulativeQuoteQty is the quote amount spent or received so far.
	CummulativeQuoteQty float64     `json:"cummulative_quote_qty"`
	Status              OrderStatus `json:"status"`
	TimeInForce         TimeInForce `json:"time_in_force"`
	Type                OrderType   `json:"type"`
	Side                OrderSide   `json:"side"`
}

// RemainingQty returns the unfilled portion of the order.
func (o *Order) RemainingQty() float64 {
	return o.OrigQty - o.ExecutedQty
}
