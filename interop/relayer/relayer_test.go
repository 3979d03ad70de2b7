package relayer

import (
	"context"
	"math/big"
	"testing"
	"time"

	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/xchain-flashloan/config"
	"github.com/ethereum-optimism/xchain-flashloan/contracts/bindings"
	"github.com/ethereum-optimism/xchain-flashloan/metrics"
	"github.com/ethereum-optimism/xchain-flashloan/system"
	"github.com/ethereum-optimism/xchain-flashloan/testlog"
	"github.com/ethereum-optimism/xchain-flashloan/testutils/fakechain"
	"github.com/ethereum-optimism/xchain-flashloan/types"
)

var liquidity = big.NewInt(1_000_000)

type testEnv struct {
	net     *fakechain.Network
	sys     *system.System
	a, b    system.Chain
	wallets WalletFunc
	lgr     log.Logger
}

func newTestEnv(t *testing.T, cfg fakechain.Config) *testEnv {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	lgr := testlog.Logger(t, log.LevelDebug)
	n := fakechain.NewTestNetwork(t, cfg)
	sys, err := system.NewSystem(ctx, lgr, n.ChainConfigs())
	require.NoError(t, err)
	t.Cleanup(sys.Close)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	wallets := make(map[string]system.Wallet)
	for _, c := range sys.Chains() {
		w := system.NewWallet(key, c, lgr, nil)
		require.NoError(t, c.TestClient().SetBalance(ctx, w.Address(), types.NewBalance(big.NewInt(1e18))))
		wallets[c.Name()] = w
		n.Chain(c.Name()).SetTokenBalance(cfg.Pool, liquidity)
	}
	e := &testEnv{
		net:     n,
		sys:     sys,
		wallets: func(c system.Chain) system.Wallet { return wallets[c.Name()] },
		lgr:     lgr,
	}
	e.a, err = sys.Chain("supersimL2A")
	require.NoError(t, err)
	e.b, err = sys.Chain("supersimL2B")
	require.NoError(t, err)
	return e
}

func (e *testEnv) relayCfg(mode config.RelayMode) config.RelayConfig {
	return config.RelayConfig{
		Mode:         mode,
		Timeout:      time.Second,
		PollInterval: 20 * time.Millisecond,
		MaxHops:      4,
	}
}

// flashLoan borrows on a with liquidity from b, and returns the mined receipt.
func (e *testEnv) flashLoan(t *testing.T, amount int64) *coreTypes.Receipt {
	cfg := e.net.Contracts()
	pool, err := e.a.ContractsRegistry().Pool(cfg.Pool)
	require.NoError(t, err)
	call := pool.FlashLoan(cfg.FlashBorrower, types.NewBalance(big.NewInt(amount)), e.b.ID())
	receipt, err := system.SendAndWait(context.Background(), e.wallets(e.a).Transact(call))
	require.NoError(t, err)
	return receipt
}

func TestRelayManual(t *testing.T) {
	cfg := fakechain.DefaultConfig()
	cfg.Autorelay = false
	e := newTestEnv(t, cfg)
	m := metrics.NewMetrics("test")
	r, err := New(e.lgr, m, e.sys, e.relayCfg(config.RelayModeManual), e.wallets)
	require.NoError(t, err)

	receipt := e.flashLoan(t, 400)
	results, err := r.RelayReceipt(context.Background(), e.a, receipt)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, res := range results {
		require.Equal(t, i+1, res.Hop)
		require.False(t, res.Skipped)
		require.Equal(t, res.Message.MessageHash, res.Relayed.MessageHash)
		require.False(t, res.Relayed.Legacy)
	}
	require.Zero(t, results[0].Message.Destination.Cmp(e.b.ID()))
	require.Zero(t, results[1].Message.Destination.Cmp(e.a.ID()))
	require.Zero(t, results[2].Message.Destination.Cmp(e.b.ID()))

	// the loan is repaid on both sides
	require.Zero(t, liquidity.Cmp(e.net.Chain("supersimL2A").TokenBalance(cfg.Pool)))
	require.Zero(t, liquidity.Cmp(e.net.Chain("supersimL2B").TokenBalance(cfg.Pool)))
	require.Zero(t, e.net.Chain("supersimL2A").TokenBalance(cfg.FlashBorrower).Sign())

	checker := metrics.NewChecker(t, m.Registry())
	relays := checker.Family("flashloan_e2e_test_relays_total")
	require.EqualValues(t, 2, relays.Counter(map[string]string{"route": "supersimL2A->supersimL2B", "mode": "manual", "err": "success"}))
	require.EqualValues(t, 1, relays.Counter(map[string]string{"route": "supersimL2B->supersimL2A", "mode": "manual", "err": "success"}))

	// relaying the same receipt again skips everything from the cache
	again, err := r.RelayReceipt(context.Background(), e.a, receipt)
	require.NoError(t, err)
	require.Len(t, again, 1)
	require.True(t, again[0].Skipped)
	checker = metrics.NewChecker(t, m.Registry())
	skipped := checker.Family("flashloan_e2e_test_relays_skipped_total")
	require.EqualValues(t, 1, skipped.Counter(map[string]string{"route": "supersimL2A->supersimL2B"}))
}

func TestRelayManualAlreadyRelayed(t *testing.T) {
	cfg := fakechain.DefaultConfig()
	e := newTestEnv(t, cfg)
	receipt := e.flashLoan(t, 10)
	require.Empty(t, e.net.AutorelayErrors())

	// a fresh relayer finds the messages relayed by someone else and still follows the replies
	r, err := New(e.lgr, nil, e.sys, e.relayCfg(config.RelayModeManual), e.wallets)
	require.NoError(t, err)
	results, err := r.RelayTx(context.Background(), e.a, receipt.TxHash)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, res := range results {
		require.True(t, res.Skipped)
		require.NotEqual(t, receipt.TxHash, res.Relayed.TxHash)
	}
}

func TestRelayAwait(t *testing.T) {
	cfg := fakechain.DefaultConfig()
	cfg.LegacyRelayedEvent = true
	e := newTestEnv(t, cfg)
	r, err := New(e.lgr, nil, e.sys, e.relayCfg(config.RelayModeAwait), nil)
	require.NoError(t, err)
	require.Equal(t, config.RelayModeAwait, r.Mode())

	receipt := e.flashLoan(t, 1000)
	results, err := r.RelayReceipt(context.Background(), e.a, receipt)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, res := range results {
		require.True(t, res.Relayed.Legacy)
	}
	require.Zero(t, liquidity.Cmp(e.net.Chain("supersimL2A").TokenBalance(cfg.Pool)))
}

func TestRelayAwaitTimeoutReportsRevert(t *testing.T) {
	cfg := fakechain.DefaultConfig()
	e := newTestEnv(t, cfg)
	e.net.SetFailCallback(true)
	relayCfg := e.relayCfg(config.RelayModeAwait)
	relayCfg.Timeout = 200 * time.Millisecond
	r, err := New(e.lgr, nil, e.sys, relayCfg, e.wallets)
	require.NoError(t, err)

	receipt := e.flashLoan(t, 5)
	require.Len(t, e.net.AutorelayErrors(), 1)
	results, err := r.RelayReceipt(context.Background(), e.a, receipt)
	require.ErrorIs(t, err, ErrMessageNotRelayed)
	require.ErrorIs(t, err, bindings.ErrPoolCallbackFailed)
	// the first hop went through
	require.Len(t, results, 1)
}

func TestRelayManualCallbackFailure(t *testing.T) {
	cfg := fakechain.DefaultConfig()
	cfg.Autorelay = false
	e := newTestEnv(t, cfg)
	e.net.SetFailCallback(true)
	r, err := New(e.lgr, nil, e.sys, e.relayCfg(config.RelayModeManual), e.wallets)
	require.NoError(t, err)

	receipt := e.flashLoan(t, 5)
	_, err = r.RelayReceipt(context.Background(), e.a, receipt)
	require.ErrorIs(t, err, ErrMessageNotRelayed)
	require.ErrorIs(t, err, bindings.ErrPoolCallbackFailed)
}

func TestRelayMaxHops(t *testing.T) {
	cfg := fakechain.DefaultConfig()
	cfg.Autorelay = false
	e := newTestEnv(t, cfg)
	relayCfg := e.relayCfg(config.RelayModeManual)
	relayCfg.MaxHops = 2
	r, err := New(e.lgr, nil, e.sys, relayCfg, e.wallets)
	require.NoError(t, err)

	results, err := r.RelayReceipt(context.Background(), e.a, e.flashLoan(t, 5))
	require.ErrorIs(t, err, ErrTooManyHops)
	require.Len(t, results, 2)
}

func TestNewValidates(t *testing.T) {
	lgr := testlog.Logger(t, log.LevelInfo)
	_, err := New(lgr, nil, nil, config.RelayConfig{Mode: config.RelayModeManual, MaxHops: 1}, nil)
	require.ErrorContains(t, err, "wallet")
	_, err = New(lgr, nil, nil, config.RelayConfig{Mode: config.RelayModeAwait}, nil)
	require.ErrorContains(t, err, "max hops")
}
