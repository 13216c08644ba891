package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/tdex-network/tdex-auctions/internal/config"
	"github.com/tdex-network/tdex-auctions/internal/core/application"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/infrastructure/ledger/jsonrpc"
)

// commandTimeout bounds a whole command, receipt waiting included.
const commandTimeout = 10 * time.Minute

var accountFlag = &cli.StringFlag{
	Name:  "account",
	Usage: "the account to act on behalf of, overrides AUCTIONS_ACCOUNT",
}

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "auctionctl"
	app.Usage = "Command line interface for on-chain auctions"
	app.Flags = []cli.Flag{accountFlag}
	app.Commands = append(
		app.Commands,
		&auction,
		&history,
		&list,
		&price,
		&preview,
		&bid,
		&withdraw,
		&commit,
		&reveal,
		&abandon,
		&secrets,
		&watch,
		&tracked,
		&syncCreated,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func initConfig(ctx *cli.Context) error {
	if err := config.InitConfig(); err != nil {
		return err
	}
	if account := ctx.String(accountFlag.Name); account != "" {
		if !domain.IsValidAddress(account) {
			return fmt.Errorf("invalid account %q", account)
		}
		config.Set(config.AccountKey, account)
	}

	log.SetOutput(os.Stderr)
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
	return nil
}

// getServices builds the application layer from the environment config. The
// returned cleanup closes the local stores.
func getServices(ctx *cli.Context) (*application.Config, func(), error) {
	if err := initConfig(ctx); err != nil {
		return nil, nil, err
	}

	ledger, err := jsonrpc.NewLedger(jsonrpc.Config{
		Endpoint:            config.GetString(config.LedgerEndpointKey),
		RequestTimeout:      config.GetMilliseconds(config.LedgerRequestTimeoutKey),
		RateLimit:           config.GetFloat(config.LedgerRateLimitKey),
		RateBurst:           config.GetInt(config.LedgerRateBurstKey),
		ReceiptPollInterval: config.GetMilliseconds(config.ReceiptPollIntervalKey),
	})
	if err != nil {
		return nil, nil, err
	}

	appConfig := &application.Config{
		DBType:          config.GetString(config.DBTypeKey),
		Datadir:         config.GetDbDir(),
		SecretsPassword: config.GetString(config.SecretsPasswordKey),
		Ledger:          ledger,
		Contracts:       config.GetContracts(),
		ChainID:         config.GetUint64(config.ChainIDKey),
		Scan:            config.GetScanConfig(),
	}
	if err := appConfig.Validate(); err != nil {
		return nil, nil, err
	}

	return appConfig, appConfig.Close, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

func getAccount() (string, error) {
	account := config.GetString(config.AccountKey)
	if account == "" {
		return "", errors.New(
			"missing account, use --account or set AUCTIONS_ACCOUNT",
		)
	}
	return account, nil
}

func printRespJSON(resp interface{}) {
	jsonStr, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}

	fmt.Println(string(jsonStr))
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[auctionctl] %v\n", err)
	}
	os.Exit(1)
}
