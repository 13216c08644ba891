package main

import (
	"github.com/urfave/cli/v2"

	"github.com/tdex-network/tdex-auctions/internal/core/domain"
)

var auction = cli.Command{
	Name:      "auction",
	Usage:     "get the current state of an auction",
	ArgsUsage: "<protocol>:<id>",
	Action:    auctionAction,
}

var history = cli.Command{
	Name:      "history",
	Usage:     "list the bids of an auction, oldest first",
	ArgsUsage: "<protocol>:<id>",
	Flags:     []cli.Flag{fromBlockFlag, toBlockFlag},
	Action:    historyAction,
}

var list = cli.Command{
	Name:  "list",
	Usage: "list the auctions created on-chain",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "protocol",
			Usage: "restrict the listing to one protocol, ie. english",
		},
		fromBlockFlag,
		toBlockFlag,
	},
	Action: listAction,
}

var price = cli.Command{
	Name:      "price",
	Usage:     "get the price at which an auction currently trades",
	ArgsUsage: "<protocol>:<id>",
	Action:    priceAction,
}

func auctionAction(ctx *cli.Context) error {
	ref, err := parseRef(ctx)
	if err != nil {
		return err
	}
	services, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc, err := services.Registry().Resolve(ref)
	if err != nil {
		return err
	}

	reqCtx, cancel := commandContext()
	defer cancel()

	state, err := svc.GetAuction(reqCtx, ref)
	if err != nil {
		return err
	}

	printRespJSON(newAuctionView(*state))
	return nil
}

func historyAction(ctx *cli.Context) error {
	ref, err := parseRef(ctx)
	if err != nil {
		return err
	}
	rangeHint, err := parseRange(ctx)
	if err != nil {
		return err
	}
	services, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc, err := services.Registry().Resolve(ref)
	if err != nil {
		return err
	}

	reqCtx, cancel := commandContext()
	defer cancel()

	events, err := svc.GetBidHistory(reqCtx, ref, rangeHint)
	if err != nil {
		return err
	}

	printRespJSON(newBidViews(events))
	return nil
}

func listAction(ctx *cli.Context) error {
	rangeHint, err := parseRange(ctx)
	if err != nil {
		return err
	}
	services, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	registry := services.Registry()
	protocols := registry.Protocols()
	if code := ctx.String("protocol"); code != "" {
		tag, err := domain.ParseProtocolTag(code)
		if err != nil {
			return err
		}
		protocols = []domain.ProtocolTag{tag}
	}

	reqCtx, cancel := commandContext()
	defer cancel()

	auctions := make([]auctionView, 0)
	for _, tag := range protocols {
		svc, err := registry.ServiceFor(tag)
		if err != nil {
			return err
		}
		states, err := svc.GetAllAuctions(reqCtx, rangeHint)
		if err != nil {
			return err
		}
		auctions = append(auctions, newAuctionViews(states)...)
	}

	printRespJSON(auctions)
	return nil
}

func priceAction(ctx *cli.Context) error {
	ref, err := parseRef(ctx)
	if err != nil {
		return err
	}
	services, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	reqCtx, cancel := commandContext()
	defer cancel()

	current, err := services.BidService().CurrentPrice(reqCtx, ref)
	if err != nil {
		return err
	}

	printRespJSON(map[string]string{
		"ref":   ref.Token(),
		"price": current.String(),
	})
	return nil
}
