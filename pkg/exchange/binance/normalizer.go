package binance

import (
	"fmt"
	"time"

	"tradecore/pkg/core"
)

// apiError is the body Binance sends with non-2xx responses.
type apiError struct {
	Code *int
	Msg  string
}

// Normalizer decodes Binance wire payloads into canonical core types.
// Every field is decoded explicitly; the first failure is returned as a
// *core.FieldError naming its path and nothing is defaulted.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer instance.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// DecodeAccountInfo decodes an /api/v3/account body.
func (n *Normalizer) DecodeAccountInfo(body []byte) (*core.AccountInfo, error) {
	f, err := core.DecodeObject(body, "")
	if err != nil {
		return nil, err
	}

	items, err := f.Array("balances")
	if err != nil {
		return nil, err
	}

	info := &core.AccountInfo{Balances: make([]core.Balance, 0, len(items))}
	for i, raw := range items {
		b, err := n.DecodeBalance(raw, f.IndexPath("balances", i))
		if err != nil {
			return nil, err
		}
		info.Balances = append(info.Balances, b)
	}

	if info.CanTrade, err = f.Bool("canTrade"); err != nil {
		return nil, err
	}
	if info.CanWithdraw, err = f.Bool("canWithdraw"); err != nil {
		return nil, err
	}
	if info.CanDeposit, err = f.Bool("canDeposit"); err != nil {
		return nil, err
	}
	return info, nil
}

// DecodeBalance decodes one {asset, free, locked} entry. path locates the
// entry in the enclosing document for error messages.
func (n *Normalizer) DecodeBalance(raw []byte, path string) (core.Balance, error) {
	var b core.Balance

	f, err := core.DecodeObject(raw, path)
	if err != nil {
		return b, err
	}
	if b.Asset, err = f.String("asset"); err != nil {
		return b, err
	}
	if b.Free, err = f.Number("free"); err != nil {
		return b, err
	}
	if b.Locked, err = f.Number("locked"); err != nil {
		return b, err
	}
	return b, nil
}

// DecodePriceTick decodes an /api/v3/ticker/price body.
func (n *Normalizer) DecodePriceTick(body []byte) (*core.PriceTick, error) {
	f, err := core.DecodeObject(body, "")
	if err != nil {
		return nil, err
	}

	tick := &core.PriceTick{}
	if tick.Symbol, err = f.String("symbol"); err != nil {
		return nil, err
	}
	if tick.Price, err = f.Number("price"); err != nil {
		return nil, err
	}
	return tick, nil
}

// DecodeOrder decodes an order placement, cancel or query body.
func (n *Normalizer) DecodeOrder(body []byte) (*core.Order, error) {
	return n.decodeOrder(body, "")
}

// DecodeOrders decodes an array of orders such as /api/v3/openOrders returns.
func (n *Normalizer) DecodeOrders(body []byte) ([]core.Order, error) {
	items, err := core.DecodeArray(body, "")
	if err != nil {
		return nil, err
	}

	orders := make([]core.Order, 0, len(items))
	for i, raw := range items {
		o, err := n.decodeOrder(raw, fmt.Sprintf("[%d]", i))
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func (n *Normalizer) decodeOrder(raw []byte, path string) (*core.Order, error) {
	f, err := core.DecodeObject(raw, path)
	if err != nil {
		return nil, err
	}

	o := &core.Order{}
	if o.Symbol, err = f.String("symbol"); err != nil {
		return nil, err
	}
	if o.OrderID, err = f.Int("orderId"); err != nil {
		return nil, err
	}
	if o.OrderListID, err = f.Int("orderListId"); err != nil {
		return nil, err
	}
	if o.ClientOrderID, err = f.String("clientOrderId"); err != nil {
		return nil, err
	}
	if o.Price, err = f.Number("price"); err != nil {
		return nil, err
	}
	if o.OrigQty, err = f.Number("origQty"); err != nil {
		return nil, err
	}
	if o.ExecutedQty, err = f.Number("executedQty"); err != nil {
		return nil, err
	}
	if o.CummulativeQuoteQty, err = f.Number("cummulativeQuoteQty"); err != nil {
		return nil, err
	}

	if o.Status, err = decodeEnum(f, "status", core.ParseOrderStatus); err != nil {
		return nil, err
	}
	if o.TimeInForce, err = decodeEnum(f, "timeInForce", core.ParseTimeInForce); err != nil {
		return nil, err
	}
	if o.Type, err = decodeEnum(f, "type", core.ParseOrderType); err != nil {
		return nil, err
	}
	if o.Side, err = decodeEnum(f, "side", core.ParseOrderSide); err != nil {
		return nil, err
	}

	if ms, ok, err := f.OptionalInt("transactTime"); err != nil {
		return nil, err
	} else if ok {
		o.TransactTime = time.UnixMilli(ms)
	}
	if ms, ok, err := f.OptionalInt("time"); err != nil {
		return nil, err
	} else if ok {
		o.Time = time.UnixMilli(ms)
	}

	return o, nil
}

// decodeAPIError decodes a {code, msg} error body. code is optional; msg is not.
func (n *Normalizer) decodeAPIError(body []byte) (*apiError, error) {
	f, err := core.DecodeObject(body, "")
	if err != nil {
		return nil, err
	}

	e := &apiError{}
	if e.Msg, err = f.String("msg"); err != nil {
		return nil, err
	}
	if code, ok, err := f.OptionalInt("code"); err != nil {
		return nil, err
	} else if ok {
		c := int(code)
		e.Code = &c
	}
	return e, nil
}

func decodeEnum[T any](f *core.Fields, name string, parse func(string) (T, error)) (T, error) {
	var zero T
	s, err := f.String(name)
	if err != nil {
		return zero, err
	}
	v, err := parse(s)
	if err != nil {
		return zero, &core.FieldError{Path: f.Path(name), Err: err}
	}
	return v, nil
}
