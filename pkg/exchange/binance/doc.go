// Package binance implements a signed REST client for the Binance spot API.
//
// The package includes:
//   - Protocol: request building, response parsing and HMAC-SHA256 signing
//   - Normalizer: field-by-field decoding of wire payloads into core types
//   - Trader: the executor that timestamps, signs and sends each request once
//
// Example usage:
//
//	trader, err := binance.NewTrader(apiKey, secretKey)
//	if err != nil {
//		return err
//	}
//	defer trader.Close()
//
//	price, err := trader.GetCurrentPrice(ctx, "BTCUSDT")
package binance
