package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ethereum-optimism/xchain-flashloan/config"
	"github.com/ethereum-optimism/xchain-flashloan/contracts/bindings"
	"github.com/ethereum-optimism/xchain-flashloan/flashloan"
	"github.com/ethereum-optimism/xchain-flashloan/interop/relayer"
	xlog "github.com/ethereum-optimism/xchain-flashloan/log"
)

var ErrRoutesFailed = errors.New("flash loan routes failed")

// setupBar tracks the fund, mint, approve and deposit steps of every chain.
type setupBar struct {
	bar *progressbar.ProgressBar
}

func (b *setupBar) start(w io.Writer, chains int) {
	b.bar = progressbar.NewOptions(chains*4,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("setup"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
}

func (b *setupBar) step(chain string, step string) {
	if b.bar == nil {
		return
	}
	b.bar.Describe(fmt.Sprintf("setup: %s %s", chain, step))
	_ = b.bar.Add(1)
}

func (b *setupBar) finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}

func runCmd(cliCtx *cli.Context) error {
	bar := new(setupBar)
	e, err := newEnv(cliCtx, flashloan.WithProgress(bar.step))
	if err != nil {
		return err
	}
	defer e.Close()
	bar.start(cliCtx.App.ErrWriter, len(e.sys.Chains()))

	report, err := e.scenario.Run(cliCtx.Context)
	bar.finish()
	if len(report.Routes) == 0 && err != nil {
		return err
	}
	out := xlog.AppOut(cliCtx)
	writeReport(out, report)
	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrRoutesFailed, failed, len(report.Routes))
	}
	return nil
}

func writeReport(w io.Writer, report *flashloan.Report) {
	fmt.Fprintf(w, "run %s\n", report.RunID)
	for _, rr := range report.Routes {
		status := color.GreenString("PASS")
		if !rr.Passed() {
			status = color.RedString("FAIL")
		}
		fmt.Fprintf(w, "%s %s (%s)\n", status, rr.Route, rr.Route.Description())
		if res := rr.Result; res != nil && res.TxHash != (common.Hash{}) {
			fmt.Fprintf(w, "     tx %s on %s\n", res.TxHash, rr.Route.Source.Name())
		}
		if res := rr.Result; res != nil && res.SourceAfter.Int != nil {
			fmt.Fprintf(w, "     pool on %s: %s -> %s, lender %s: %s -> %s, fee %s, %d relays\n",
				rr.Route.Source.Name(), res.SourceBefore.Units(res.Decimals), res.SourceAfter.Units(res.Decimals),
				rr.Route.Destination.Name(), res.DestinationBefore.Units(res.Decimals), res.DestinationAfter.Units(res.Decimals),
				res.Fee.Units(res.Decimals), len(res.Relays))
		}
		if rr.Err != nil {
			fmt.Fprintf(w, "     %s\n", color.RedString(rr.Err.Error()))
		}
	}
}

func setupCmd(cliCtx *cli.Context) error {
	bar := new(setupBar)
	e, err := newEnv(cliCtx, flashloan.WithProgress(bar.step))
	if err != nil {
		return err
	}
	defer e.Close()
	bar.start(cliCtx.App.ErrWriter, len(e.sys.Chains()))
	err = e.scenario.Setup(cliCtx.Context)
	bar.finish()
	if err != nil {
		return err
	}
	fmt.Fprintf(xlog.AppOut(cliCtx), "test account %s is set up on %d chains\n", e.scenario.TestAccount(), len(e.sys.Chains()))
	return nil
}

func loanCmd(cliCtx *cli.Context) error {
	e, err := newEnv(cliCtx)
	if err != nil {
		return err
	}
	defer e.Close()
	route, err := flashloan.FindRoute(e.sys, cliCtx.String("from"), cliCtx.String("to"))
	if err != nil {
		return err
	}
	res, err := e.scenario.Loan(cliCtx.Context, route)
	report := &flashloan.Report{RunID: e.scenario.RunID(), Routes: []flashloan.RouteReport{{Route: route, Result: res, Err: err}}}
	writeReport(xlog.AppOut(cliCtx), report)
	return err
}

func relayCmd(cliCtx *cli.Context) error {
	var txHash common.Hash
	if err := txHash.UnmarshalText([]byte(cliCtx.String("tx"))); err != nil {
		return fmt.Errorf("invalid tx hash: %w", err)
	}
	e, err := newEnv(cliCtx)
	if err != nil {
		return err
	}
	defer e.Close()
	chain, err := e.sys.Chain(cliCtx.String("chain"))
	if err != nil {
		return err
	}
	if e.scenario.Relayer().Mode() == config.RelayModeManual {
		if err := e.scenario.EnsureFunded(cliCtx.Context); err != nil {
			return err
		}
	}
	results, err := e.scenario.Relayer().RelayTx(cliCtx.Context, chain, txHash)
	writeRelays(xlog.AppOut(cliCtx), results)
	return err
}

func writeRelays(w io.Writer, results []*relayer.Result) {
	for _, res := range results {
		line := fmt.Sprintf("hop %d %s->%s message %s", res.Hop, res.Message.Source(), res.Message.Destination, res.Message.MessageHash)
		switch {
		case res.Relayed == nil:
			line += " " + color.RedString("not relayed")
		case res.Skipped:
			line += fmt.Sprintf(" already relayed in %s", res.Relayed.TxHash)
		default:
			line += fmt.Sprintf(" relayed in %s", res.Relayed.TxHash)
		}
		fmt.Fprintln(w, line)
	}
}

func statusCmd(cliCtx *cli.Context) error {
	e, err := newEnv(cliCtx)
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := cliCtx.Context
	decimals, err := e.scenario.Decimals(ctx)
	if err != nil {
		return err
	}
	// Without a configured key the test account is generated per invocation
	// and holds no deposits worth showing.
	account := e.scenario.TestAccount()
	withDeposits := e.cfg.PrivateKey != ""
	header := []string{"Chain", "ID", "Pool balance", "Max flash loan"}
	if withDeposits {
		header = append(header, "Deposits of "+account.Hex())
	}

	table := tablewriter.NewWriter(xlog.AppOut(cliCtx))
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetHeader(header)
	for _, chain := range e.sys.Chains() {
		registry := chain.ContractsRegistry()
		token, err := registry.SuperchainERC20(e.cfg.Contracts.Token)
		if err != nil {
			return err
		}
		pool, err := registry.Pool(e.cfg.Contracts.Pool)
		if err != nil {
			return err
		}
		balance, err := token.BalanceOf(pool.Address()).Call(ctx)
		if err != nil {
			return fmt.Errorf("failed to read pool balance on %s: %w", chain.Name(), err)
		}
		maxLoan, err := pool.MaxFlashLoan().Call(ctx)
		if err != nil {
			return fmt.Errorf("failed to read max flash loan on %s: %w", chain.Name(), err)
		}
		row := []string{chain.Name(), chain.ID().String(), balance.Units(decimals), maxLoan.Units(decimals)}
		if withDeposits {
			deposits, err := pool.DepositsOf(account).Call(ctx)
			if err != nil {
				return fmt.Errorf("failed to read deposits on %s: %w", chain.Name(), err)
			}
			row = append(row, deposits.Units(decimals))
		}
		table.Append(row)
	}
	table.Render()
	return nil
}

func abiCmd(cliCtx *cli.Context) error {
	return writePoolABI(xlog.AppOut(cliCtx))
}

func writePoolABI(w io.Writer) error {
	parsed, err := bindings.PoolMetaData.GetAbi()
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Kind", "Name", "Inputs", "Outputs", "Mutability"})
	table.Append([]string{"constructor", "", formatArgs(parsed.Constructor.Inputs), "", parsed.Constructor.StateMutability})
	for _, name := range slices.Sorted(maps.Keys(parsed.Methods)) {
		m := parsed.Methods[name]
		table.Append([]string{"function", m.RawName, formatArgs(m.Inputs), formatArgs(m.Outputs), m.StateMutability})
	}
	for _, name := range slices.Sorted(maps.Keys(parsed.Errors)) {
		e := parsed.Errors[name]
		table.Append([]string{"error", e.Name, formatArgs(e.Inputs), "", ""})
	}
	table.Render()
	return nil
}

func formatArgs(args abi.Arguments) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = strings.TrimSpace(arg.Type.String() + " " + arg.Name)
	}
	return strings.Join(parts, ", ")
}
