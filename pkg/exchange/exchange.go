package exchange

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"tradecore/pkg/core"
)

// Trader defines the account, price and order operations of a signed spot
// REST client. Implementations are safe for concurrent use.
type Trader interface {
	Name() string

	GetAccountInfo(ctx context.Context) (*core.AccountInfo, error)
	GetPrice(ctx context.Context, symbol string) (*core.PriceTick, error)

	PlaceOrder(ctx context.Context, req *OrderRequest) (*core.Order, error)
	CancelOrder(ctx context.Context, req *CancelRequest) (*core.Order, error)
	GetOpenOrders(ctx context.Context, symbol string) ([]core.Order, error)
}

// OrderRequest contains the parameters required to place a new order on an exchange.
type OrderRequest struct {
	Symbol   string         `validate:"required"`
	Side     core.OrderSide `validate:"oneof=0 1"`
	Type     core.OrderType `validate:"oneof=0 1"`
	Quantity float64        `validate:"gt=0"`
	// Price is required for limit orders and ignored for market orders.
	Price         float64          `validate:"gte=0"`
	TimeInForce   core.TimeInForce `validate:"oneof=0 1 2"`
	ClientOrderID string           `validate:"omitempty,max=36"`
}

// CancelRequest contains the parameters required to cancel an existing order.
// One of OrderID and ClientOrderID must be set.
type CancelRequest struct {
	Symbol        string `validate:"required"`
	OrderID       int64  `validate:"required_without=ClientOrderID,gte=0"`
	ClientOrderID string `validate:"required_without=OrderID"`
}

var validate = validator.New()

// Validate checks r before anything is sent.
func (r *OrderRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidOrder, err)
	}
	if r.Type == core.TypeLimit && r.Price <= 0 {
		return fmt.Errorf("%w: limit order requires a positive price", core.ErrInvalidOrder)
	}
	return nil
}

// Validate checks r before anything is sent.
func (r *CancelRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidOrder, err)
	}
	return nil
}
