package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tdex-network/tdex-auctions/internal/core/domain"
)

var watch = cli.Command{
	Name:  "watch",
	Usage: "manage the watchlist of the account",
	Subcommands: []*cli.Command{
		{
			Name:      "add",
			Usage:     "add an auction to the watchlist",
			ArgsUsage: "<protocol>:<id>",
			Action:    watchAddAction,
		},
		{
			Name:      "remove",
			Usage:     "remove an auction from the watchlist",
			ArgsUsage: "<protocol>:<id>",
			Action:    watchRemoveAction,
		},
		{
			Name:   "list",
			Usage:  "list the references of the watchlist",
			Action: watchListAction,
		},
	},
}

var tracked = cli.Command{
	Name:  "tracked",
	Usage: "get the current state of the auctions tracked by the account",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "purpose",
			Usage: "the tracked list, one of created, bid or watchlist",
			Value: string(domain.ListWatchlist),
		},
	},
	Action: trackedAction,
}

var syncCreated = cli.Command{
	Name:   "sync-created",
	Usage:  "scan the chain for the auctions created by the account and track them",
	Flags:  []cli.Flag{fromBlockFlag, toBlockFlag},
	Action: syncCreatedAction,
}

func parsePurpose(purpose string) (domain.ListPurpose, error) {
	switch p := domain.ListPurpose(purpose); p {
	case domain.ListCreated, domain.ListBidOn, domain.ListWatchlist:
		return p, nil
	default:
		return "", fmt.Errorf("unknown list purpose %q", purpose)
	}
}

func watchAddAction(ctx *cli.Context) error {
	return updateWatchlist(ctx, true)
}

func watchRemoveAction(ctx *cli.Context) error {
	return updateWatchlist(ctx, false)
}

func updateWatchlist(ctx *cli.Context, add bool) error {
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

	if add {
		return services.TrackerService().Watch(reqCtx, account, ref)
	}
	return services.TrackerService().Unwatch(reqCtx, account, ref)
}

func watchListAction(ctx *cli.Context) error {
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

	refs, err := services.TrackerService().List(reqCtx, account, domain.ListWatchlist)
	if err != nil {
		return err
	}

	printRespJSON(refTokens(refs))
	return nil
}

func trackedAction(ctx *cli.Context) error {
	purpose, err := parsePurpose(ctx.String("purpose"))
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

	auctions, err := services.TrackerService().ListTracked(reqCtx, account, purpose)
	if err != nil {
		return err
	}

	printRespJSON(newAuctionViews(auctions))
	return nil
}

func syncCreatedAction(ctx *cli.Context) error {
	rangeHint, err := parseRange(ctx)
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

	added, err := services.TrackerService().SyncCreated(reqCtx, account, rangeHint)
	if err != nil {
		return err
	}

	printRespJSON(refTokens(added))
	return nil
}

func refTokens(refs []domain.AuctionRef) []string {
	tokens := make([]string, 0, len(refs))
	for _, ref := range refs {
		tokens = append(tokens, ref.Token())
	}
	return tokens
}
