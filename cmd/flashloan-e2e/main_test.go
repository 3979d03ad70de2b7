package main

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/xchain-flashloan/interop/relayer"
	"github.com/ethereum-optimism/xchain-flashloan/system"
	"github.com/ethereum-optimism/xchain-flashloan/testutils/fakechain"
	"github.com/ethereum-optimism/xchain-flashloan/types"
)

// networkArgs points the CLI at a fake network, ahead of the given command args.
func networkArgs(t *testing.T, n *fakechain.Network, args ...string) []string {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	c := n.Contracts()
	out := []string{"flashloan-e2e",
		"--env-file", "testdata-missing.env",
		"--token", c.Token.Hex(),
		"--pool", c.Pool.Hex(),
		"--minter", c.Minter.Hex(),
		"--borrower", c.FlashBorrower.Hex(),
		"--relay.timeout", "500ms",
		"--relay.poll-interval", "20ms",
		"--private-key", hexutil.Encode(crypto.FromECDSA(key)),
		"--log.level", "warn",
	}
	for _, ch := range n.ChainConfigs() {
		out = append(out, "--chains", fmt.Sprintf("%s=%s@%d", ch.Name, ch.RPC, ch.ChainID))
	}
	return append(out, args...)
}

// withoutKey drops --private-key, so every invocation generates its own test account.
func withoutKey(args []string) []string {
	i := slices.Index(args, "--private-key")
	if i < 0 {
		return args
	}
	return slices.Delete(slices.Clone(args), i, i+2)
}

func runApp(t *testing.T, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	var out, errOut bytes.Buffer
	err := run(ctx, &out, &errOut, args)
	return out.String(), err
}

func TestABI(t *testing.T) {
	out, err := runApp(t, "flashloan-e2e", "abi")
	require.NoError(t, err)
	require.Contains(t, out, "address _borrower, uint256 _amount, uint256 _chainId")
	require.Contains(t, out, "bytes32 _messageId, bool _success")
	require.Contains(t, out, "Pool_CallbackFailed")
	require.Contains(t, out, "constructor")
	require.Contains(t, out, "pure")
	// uppercase constants sort first
	require.Less(t, strings.Index(out, "SUPERCHAIN_TOKEN_BRIDGE"), strings.Index(out, "deposit"))
}

func TestDocMetrics(t *testing.T) {
	out, err := runApp(t, "flashloan-e2e", "doc", "metrics")
	require.NoError(t, err)
	require.Contains(t, out, "flashloan_e2e_default_loans_total")
	require.Contains(t, out, "flashloan_e2e_default_relays_total")

	_, err = runApp(t, "flashloan-e2e", "doc", "metrics", "--format", "xml")
	require.ErrorContains(t, err, "invalid format")
}

func TestRun(t *testing.T) {
	n := fakechain.NewTestNetwork(t, fakechain.DefaultConfig())
	out, err := runApp(t, networkArgs(t, n, "run")...)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(out, "PASS"))
	require.Contains(t, out, "supersimL2A->supersimL2B")
	require.Contains(t, out, "supersimL2B->supersimL2A")
	require.NotContains(t, out, "FAIL")
}

func TestRunReportsFailedRoutes(t *testing.T) {
	n := fakechain.NewTestNetwork(t, fakechain.DefaultConfig())
	n.SetFailCallback(true)
	out, err := runApp(t, networkArgs(t, n)...)
	require.ErrorIs(t, err, ErrRoutesFailed)
	require.ErrorContains(t, err, "2 of 2")
	require.Equal(t, 2, strings.Count(out, "FAIL"))
}

func TestSetupThenStatus(t *testing.T) {
	n := fakechain.NewTestNetwork(t, fakechain.DefaultConfig())
	args := networkArgs(t, n)
	out, err := runApp(t, append(args, "setup")...)
	require.NoError(t, err)
	require.Contains(t, out, "is set up on 2 chains")

	out, err = runApp(t, append(args, "status")...)
	require.NoError(t, err)
	for _, ch := range n.ChainConfigs() {
		require.Contains(t, out, ch.Name)
	}
	// pool balance, max flash loan and deposits all show the deposit
	require.Equal(t, 6, strings.Count(out, " 1000 "))
	require.Contains(t, strings.ToUpper(out), "DEPOSITS OF")
}

func TestLoanAndRelay(t *testing.T) {
	n := fakechain.NewTestNetwork(t, fakechain.DefaultConfig())
	args := networkArgs(t, n)
	_, err := runApp(t, append(args, "setup")...)
	require.NoError(t, err)

	out, err := runApp(t, append(args, "loan", "--from", "supersimL2B", "--to", "supersimL2A")...)
	require.NoError(t, err)
	require.Contains(t, out, "PASS supersimL2B->supersimL2A")

	_, err = runApp(t, append(args, "loan", "--from", "supersimL2B", "--to", "nowhere")...)
	require.ErrorIs(t, err, system.ErrUnknownChain)

	_, err = runApp(t, append(args, "relay", "--chain", "supersimL2A", "--tx", "0x1234")...)
	require.ErrorContains(t, err, "invalid tx hash")
}

func TestRelayLeftoverMessagesWithoutKey(t *testing.T) {
	fcfg := fakechain.DefaultConfig()
	n := fakechain.NewTestNetwork(t, fcfg)
	args := withoutKey(networkArgs(t, n))
	_, err := runApp(t, slices.Concat(args, []string{"setup"})...)
	require.NoError(t, err)

	// the loan is sent but nobody relays its messages
	n.SetAutorelay(false)
	out, err := runApp(t, slices.Concat(args, []string{"loan", "--from", "supersimL2A", "--to", "supersimL2B"})...)
	require.ErrorIs(t, err, relayer.ErrMessageNotRelayed)
	require.Contains(t, out, "FAIL supersimL2A->supersimL2B")
	match := regexp.MustCompile(`tx (0x[0-9a-f]{64}) on supersimL2A`).FindStringSubmatch(out)
	require.NotNil(t, match, out)

	out, err = runApp(t, slices.Concat(args, []string{"--relay.mode", "manual", "relay", "--chain", "supersimL2A", "--tx", match[1]})...)
	require.NoError(t, err)
	for _, hop := range []string{"hop 1 901->902", "hop 2 902->901", "hop 3 901->902"} {
		require.Contains(t, out, hop)
	}
	require.Equal(t, 3, strings.Count(out, " relayed in 0x"))

	deposit := types.MustParseUnits("1000", fcfg.Decimals)
	pool := n.Contracts().Pool
	require.Zero(t, deposit.Cmp(types.NewBalance(n.Chain("supersimL2A").TokenBalance(pool))))
	require.Zero(t, deposit.Cmp(types.NewBalance(n.Chain("supersimL2B").TokenBalance(pool))))

	out, err = runApp(t, slices.Concat(args, []string{"status"})...)
	require.NoError(t, err)
	require.NotContains(t, strings.ToUpper(out), "DEPOSITS OF")
	// pool balance and max flash loan on both chains
	require.Equal(t, 4, strings.Count(out, " 1000 "))
}

func TestInvalidConfig(t *testing.T) {
	_, err := runApp(t, "flashloan-e2e", "--env-file", "testdata-missing.env", "--relay.mode", "carrier-pigeon", "status")
	require.ErrorContains(t, err, "unknown relay mode")
}
