package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/xchain-flashloan/flags"
	xlog "github.com/ethereum-optimism/xchain-flashloan/log"
	"github.com/ethereum-optimism/xchain-flashloan/metrics"
	"github.com/ethereum-optimism/xchain-flashloan/service"
)

var (
	Version   = "v0.0.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := run(ctx, os.Stdout, os.Stderr, os.Args)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(ctx context.Context, w io.Writer, ew io.Writer, args []string) error {
	xlog.SetupDefaults()

	app := cli.NewApp()
	app.Writer = w
	app.ErrWriter = ew
	app.Flags = flags.Flags()
	app.Version = service.FormatVersion(Version, GitCommit, GitDate, "")
	app.Name = "flashloan-e2e"
	app.Usage = "Cross-chain flash loan end-to-end checks against supersim."
	app.Description = "Funds a test account, deposits liquidity into the Pool on every L2,\n" +
		" then takes a flash loan across every route and checks the pools are made whole."
	app.Action = runCmd
	app.Commands = []*cli.Command{
		{
			Name:   "run",
			Usage:  "Set up every chain and loan across every route (default)",
			Action: runCmd,
		},
		{
			Name:   "setup",
			Usage:  "Fund the test account and deposit liquidity on every chain",
			Action: setupCmd,
		},
		{
			Name:  "loan",
			Usage: "Take one flash loan, lending from --to to --from",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "from", Usage: "Chain the loan is requested on", Required: true},
				&cli.StringFlag{Name: "to", Usage: "Chain that lends the liquidity", Required: true},
			},
			Action: loanCmd,
		},
		{
			Name:  "relay",
			Usage: "Relay the L2-to-L2 messages sent by a transaction",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "chain", Usage: "Chain the transaction was included on", Required: true},
				&cli.StringFlag{Name: "tx", Usage: "Transaction hash", Required: true},
			},
			Action: relayCmd,
		},
		{
			Name:   "status",
			Usage:  "Print pool liquidity and test account deposits per chain",
			Action: statusCmd,
		},
		{
			Name:   "abi",
			Usage:  "Print the Pool ABI",
			Action: abiCmd,
		},
		{
			Name:        "doc",
			Subcommands: metrics.NewSubcommands(metrics.NewMetrics("default")),
		},
	}
	return app.RunContext(ctx, args)
}
