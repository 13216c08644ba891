package main

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/tdex-network/tdex-auctions/internal/core/application"
	"github.com/tdex-network/tdex-auctions/pkg/pricecurve"
)

var bid = cli.Command{
	Name:      "bid",
	Usage:     "place a bid, or buy at the current price a Dutch auction",
	ArgsUsage: "<protocol>:<id>",
	Flags:     []cli.Flag{amountFlag},
	Action:    bidAction,
}

var withdraw = cli.Command{
	Name:      "withdraw",
	Usage:     "collect the proceeds, the item or the refund of an ended auction",
	ArgsUsage: "<protocol>:<id>",
	Action:    withdrawAction,
}

var preview = cli.Command{
	Name:  "preview",
	Usage: "sample the price decay of a Dutch auction under every curve",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "start",
			Usage:    "the starting price in base units",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "reserve",
			Usage:    "the reserved price in base units",
			Required: true,
		},
		&cli.DurationFlag{
			Name:     "duration",
			Usage:    "the duration of the price decay, ie. 1h",
			Required: true,
		},
		&cli.Float64Flag{
			Name:  "decay",
			Usage: "the decay factor per second of the non linear curves",
			Value: 0.001,
		},
		&cli.IntFlag{
			Name:  "points",
			Usage: "the number of samples per curve",
			Value: 11,
		},
	},
	Action: previewAction,
}

func bidAction(ctx *cli.Context) error {
	ref, err := parseRef(ctx)
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx)
	if err != nil {
		return err
	}
	services, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	account, err := getAccount()
	if err != nil {
		return err
	}

	reqCtx, cancel := commandContext()
	defer cancel()

	sub, err := services.BidService().PlaceBid(reqCtx, application.BidRequest{
		Ref:    ref,
		Bidder: account,
		Amount: amount,
	})
	if sub != nil {
		printRespJSON(newSubmissionView(sub))
	}
	return err
}

func withdrawAction(ctx *cli.Context) error {
	ref, err := parseRef(ctx)
	if err != nil {
		return err
	}
	services, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	account, err := getAccount()
	if err != nil {
		return err
	}

	reqCtx, cancel := commandContext()
	defer cancel()

	sub, err := services.BidService().Withdraw(reqCtx, application.WithdrawRequest{
		Ref:     ref,
		Account: account,
	})
	if sub != nil {
		printRespJSON(newSubmissionView(sub))
	}
	return err
}

func previewAction(ctx *cli.Context) error {
	start, err := decimal.NewFromString(ctx.String("start"))
	if err != nil {
		return errors.New("invalid start price")
	}
	reserve, err := decimal.NewFromString(ctx.String("reserve"))
	if err != nil {
		return errors.New("invalid reserved price")
	}

	series, err := pricecurve.CompareShapes(pricecurve.Params{
		StartPrice:    start,
		ReservedPrice: reserve,
		Duration:      ctx.Duration("duration").Truncate(time.Second),
		DecayFactor:   ctx.Float64("decay"),
	}, ctx.Int("points"))
	if err != nil {
		return err
	}

	printRespJSON(newSeriesViews(series))
	return nil
}
