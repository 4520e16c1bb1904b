package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"tradecore/internal/config"
	"tradecore/internal/logging"
	"tradecore/pkg/core"
	"tradecore/pkg/exchange"
	"tradecore/pkg/exchange/binance"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	symbolFlag := &cli.StringFlag{
		Name:    "symbol",
		Aliases: []string{"s"},
		Value:   "BTCUSDT",
		Usage:   "trading pair symbol",
	}

	orderFlags := []cli.Flag{
		symbolFlag,
		&cli.Float64Flag{
			Name:     "qty",
			Aliases:  []string{"q"},
			Usage:    "order quantity in base asset units",
			Required: true,
		},
		&cli.Float64Flag{
			Name:    "price",
			Aliases: []string{"p"},
			Usage:   "limit price; a market order is placed when omitted",
		},
		&cli.StringFlag{
			Name:  "client-id",
			Usage: "client order id",
		},
	}

	return &cli.App{
		Name:      "trader",
		Usage:     "signed spot trading client for the Binance testnet",
		Version:   fmt.Sprintf("%s (build: %s, commit: %s)", Version, BuildTime, GitCommit),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file path",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "override the API endpoint",
			},
			&cli.BoolFlag{
				Name:  "sandbox",
				Value: true,
				Usage: "use the testnet endpoint",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (console, json)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "account",
				Usage:  "show balances and permissions",
				Action: cmdAccount,
			},
			{
				Name:      "price",
				Usage:     "show the latest price for a symbol",
				ArgsUsage: "[SYMBOL]",
				Flags:     []cli.Flag{symbolFlag},
				Action:    cmdPrice,
			},
			{
				Name:   "buy",
				Usage:  "place a buy order",
				Flags:  orderFlags,
				Action: cmdOrder(core.SideBuy),
			},
			{
				Name:   "sell",
				Usage:  "place a sell order",
				Flags:  orderFlags,
				Action: cmdOrder(core.SideSell),
			},
			{
				Name:  "orders",
				Usage: "list open orders",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "symbol",
						Aliases: []string{"s"},
						Usage:   "restrict to one symbol",
					},
				},
				Action: cmdOrders,
			},
			{
				Name:  "cancel",
				Usage: "cancel an open order",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "symbol",
						Aliases:  []string{"s"},
						Usage:    "trading pair symbol",
						Required: true,
					},
					&cli.Int64Flag{
						Name:  "id",
						Usage: "exchange order id",
					},
					&cli.StringFlag{
						Name:  "client-id",
						Usage: "client order id",
					},
				},
				Action: cmdCancel,
			},
		},
	}
}

// newTrader builds a Trader from the config file, the environment and the global flags.
func newTrader(c *cli.Context) (*binance.Trader, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}
	if c.IsSet("sandbox") {
		cfg.Binance.Sandbox = c.Bool("sandbox")
	}
	if c.IsSet("base-url") {
		cfg.Binance.BaseURL = c.String("base-url")
	}

	logger, err := logging.NewWithWriter(c.App.ErrWriter, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	coreCfg, err := cfg.Core()
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("base_url", coreCfg.BaseURL).
		Bool("sandbox", coreCfg.Sandbox).
		Bool("credentials", coreCfg.Credentials != nil).
		Msg("trader configured")

	return binance.New(coreCfg, binance.WithLogger(logger))
}

func withTrader(fn func(ctx context.Context, c *cli.Context, t *binance.Trader) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		trader, err := newTrader(c)
		if err != nil {
			return err
		}
		defer trader.Close()
		return fn(c.Context, c, trader)
	}
}

var cmdAccount = withTrader(func(ctx context.Context, c *cli.Context, t *binance.Trader) error {
	info, err := t.GetAccountInfo(ctx)
	if err != nil {
		return fmt.Errorf("get account info: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "can trade: %t  can withdraw: %t  can deposit: %t\n",
		info.CanTrade, info.CanWithdraw, info.CanDeposit)
	for _, b := range info.Balances {
		if b.Total() <= 0 {
			continue
		}
		fmt.Fprintf(w, "%-8s %.8f (free %.8f, locked %.8f)\n", b.Asset, b.Total(), b.Free, b.Locked)
	}
	return nil
})

var cmdPrice = withTrader(func(ctx context.Context, c *cli.Context, t *binance.Trader) error {
	symbol := c.String("symbol")
	if arg := c.Args().First(); arg != "" {
		symbol = arg
	}

	tick, err := t.GetPrice(ctx, symbol)
	if err != nil {
		return fmt.Errorf("get price: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "%s %.8f\n", tick.Symbol, tick.Price)
	return nil
})

func cmdOrder(side core.OrderSide) cli.ActionFunc {
	return withTrader(func(ctx context.Context, c *cli.Context, t *binance.Trader) error {
		req := &exchange.OrderRequest{
			Symbol:        strings.ToUpper(c.String("symbol")),
			Side:          side,
			Type:          core.TypeMarket,
			Quantity:      c.Float64("qty"),
			ClientOrderID: c.String("client-id"),
		}
		if c.IsSet("price") {
			req.Type = core.TypeLimit
			req.Price = c.Float64("price")
			req.TimeInForce = core.GTC
		}

		order, err := t.PlaceOrder(ctx, req)
		if err != nil {
			return fmt.Errorf("place order: %w", err)
		}
		printOrder(c.App.Writer, order)
		return nil
	})
}

var cmdOrders = withTrader(func(ctx context.Context, c *cli.Context, t *binance.Trader) error {
	orders, err := t.GetOpenOrders(ctx, c.String("symbol"))
	if err != nil {
		return fmt.Errorf("get open orders: %w", err)
	}
	if len(orders) == 0 {
		fmt.Fprintln(c.App.Writer, "no open orders")
		return nil
	}
	for i := range orders {
		printOrder(c.App.Writer, &orders[i])
	}
	return nil
})

var cmdCancel = withTrader(func(ctx context.Context, c *cli.Context, t *binance.Trader) error {
	order, err := t.CancelOrder(ctx, &exchange.CancelRequest{
		Symbol:        strings.ToUpper(c.String("symbol")),
		OrderID:       c.Int64("id"),
		ClientOrderID: c.String("client-id"),
	})
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	printOrder(c.App.Writer, order)
	return nil
})

func printOrder(w io.Writer, o *core.Order) {
	fmt.Fprintf(w, "%d %s %s %s qty=%.8f filled=%.8f price=%.8f status=%s\n",
		o.OrderID, o.Symbol, o.Side, o.Type, o.OrigQty, o.ExecutedQty, o.Price, o.Status)
}
