package core

// Operation represents a type of action that can be performed on an exchange.
type Operation int

// Operation constants define all supported exchange operations.
const (
	// OpGetAccount retrieves balances and account permissions.
	OpGetAccount Operation = iota
	// OpGetPrice retrieves the latest price for a symbol.
	OpGetPrice
	// OpPlaceOrder submits a new order to the exchange.
	OpPlaceOrder
	// OpCancelOrder cancels an existing order.
	OpCancelOrder
	// OpGetOpenOrders retrieves all open orders.
	OpGetOpenOrders
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	names := [...]string{
		"GET_ACCOUNT",
		"GET_PRICE",
		"PLACE_ORDER",
		"CANCEL_ORDER",
		"GET_OPEN_ORDERS",
	}
	if o < 0 || int(o) >= len(names) {
		return "UNKNOWN"
	}
	return names[o]
}
