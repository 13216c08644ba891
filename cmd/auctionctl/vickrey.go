package main

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/tdex-network/tdex-auctions/internal/core/application"
)

var errVickreyNotConfigured = errors.New(
	"sealed-bid auctions not configured, set AUCTIONS_VICKREY_CONTRACT",
)

var commit = cli.Command{
	Name:      "commit",
	Usage:     "commit to a sealed bid, the secret is stored until the reveal",
	ArgsUsage: "<protocol>:<id>",
	Flags:     []cli.Flag{amountFlag, saltFlag},
	Action:    commitAction,
}

var reveal = cli.Command{
	Name:      "reveal",
	Usage:     "reveal a sealed bid with the stored secret, or with explicit amount and salt",
	ArgsUsage: "<protocol>:<id>",
	Flags:     []cli.Flag{amountFlag, saltFlag},
	Action:    revealAction,
}

var abandon = cli.Command{
	Name:      "abandon",
	Usage:     "erase the stored secret of a sealed bid, it cannot be revealed anymore",
	ArgsUsage: "<protocol>:<id>",
	Action:    abandonAction,
}

var secrets = cli.Command{
	Name:   "secrets",
	Usage:  "list the stored secrets not yet revealed",
	Action: secretsAction,
}

func getVickreyService(
	ctx *cli.Context,
) (application.VickreyService, string, func(), error) {
	services, cleanup, err := getServices(ctx)
	if err != nil {
		return nil, "", nil, err
	}
	account, err := getAccount()
	if err != nil {
		cleanup()
		return nil, "", nil, err
	}
	svc := services.VickreyService()
	if svc == nil {
		cleanup()
		return nil, "", nil, errVickreyNotConfigured
	}
	return svc, account, cleanup, nil
}

func commitAction(ctx *cli.Context) error {
	ref, err := parseRef(ctx)
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx)
	if err != nil {
		return err
	}
	svc, account, cleanup, err := getVickreyService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	reqCtx, cancel := commandContext()
	defer cancel()

	var res *application.CommitResult
	if salt := ctx.String(saltFlag.Name); salt != "" {
		res, err = svc.CommitWithSalt(reqCtx, ref, account, amount, salt)
	} else {
		res, err = svc.Commit(reqCtx, ref, account, amount)
	}
	if res != nil {
		printRespJSON(map[string]interface{}{
			"submission": newSubmissionView(res.Submission),
			"secret":     newSecretView(res.Secret),
		})
	}
	return err
}

func revealAction(ctx *cli.Context) error {
	ref, err := parseRef(ctx)
	if err != nil {
		return err
	}
	explicit := ctx.IsSet(amountFlag.Name) || ctx.IsSet(saltFlag.Name)

	var req application.RevealRequest
	if explicit {
		amount, err := parseAmount(ctx)
		if err != nil {
			return err
		}
		salt := ctx.String(saltFlag.Name)
		if salt == "" {
			return &invalidUsageError{ctx, ctx.Command.Name}
		}
		req = application.RevealRequest{Ref: ref, Amount: amount, Salt: salt}
	}

	svc, account, cleanup, err := getVickreyService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	reqCtx, cancel := commandContext()
	defer cancel()

	var sub *application.Submission
	if explicit {
		req.Bidder = account
		sub, err = svc.RevealBid(reqCtx, req)
	} else {
		sub, err = svc.Reveal(reqCtx, ref, account)
	}
	if sub != nil {
		printRespJSON(newSubmissionView(sub))
	}
	return err
}

func abandonAction(ctx *cli.Context) error {
	ref, err := parseRef(ctx)
	if err != nil {
		return err
	}
	svc, account, cleanup, err := getVickreyService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	reqCtx, cancel := commandContext()
	defer cancel()

	return svc.Abandon(reqCtx, ref, account)
}

func secretsAction(ctx *cli.Context) error {
	svc, account, cleanup, err := getVickreyService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	reqCtx, cancel := commandContext()
	defer cancel()

	pending, err := svc.PendingSecrets(reqCtx, account)
	if err != nil {
		return err
	}

	views := make([]secretView, 0, len(pending))
	for _, s := range pending {
		views = append(views, newSecretView(s))
	}
	printRespJSON(views)
	return nil
}
