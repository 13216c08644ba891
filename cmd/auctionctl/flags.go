package main

import (
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/tdex-network/tdex-auctions/internal/core/domain"
)

var (
	fromBlockFlag = &cli.Uint64Flag{
		Name:  "from",
		Usage: "the first block of the scanned range",
	}
	toBlockFlag = &cli.Uint64Flag{
		Name:  "to",
		Usage: "the last block of the scanned range",
	}
	amountFlag = &cli.StringFlag{
		Name:  "amount",
		Usage: "the amount in base units",
	}
	saltFlag = &cli.StringFlag{
		Name:  "salt",
		Usage: "the salt of the sealed bid",
	}
)

// parseRef reads the auction reference token from the first argument.
func parseRef(ctx *cli.Context) (domain.AuctionRef, error) {
	if ctx.NArg() != 1 {
		return domain.AuctionRef{}, &invalidUsageError{ctx, ctx.Command.Name}
	}
	return domain.DecodeRef(ctx.Args().First())
}

// parseRange returns nil if no flag of the range is set, so that the whole
// configured window up to the chain tip is scanned. Otherwise both bounds
// are required.
func parseRange(ctx *cli.Context) (*domain.BlockRange, error) {
	if !ctx.IsSet(fromBlockFlag.Name) && !ctx.IsSet(toBlockFlag.Name) {
		return nil, nil
	}
	if !ctx.IsSet(fromBlockFlag.Name) || !ctx.IsSet(toBlockFlag.Name) {
		return nil, &invalidUsageError{ctx, ctx.Command.Name}
	}
	r, err := domain.NewBlockRange(
		ctx.Uint64(fromBlockFlag.Name), ctx.Uint64(toBlockFlag.Name),
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func parseAmount(ctx *cli.Context) (decimal.Decimal, error) {
	if !ctx.IsSet(amountFlag.Name) {
		return decimal.Zero, &invalidUsageError{ctx, ctx.Command.Name}
	}
	return domain.ParseAmount(ctx.String(amountFlag.Name), 0)
}
