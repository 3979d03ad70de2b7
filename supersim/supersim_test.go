package supersim

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/xchain-flashloan/testlog"
	"github.com/ethereum-optimism/xchain-flashloan/testutils/fakechain"
)

func TestNewSupersimMissingBinary(t *testing.T) {
	_, err := NewSupersim(testlog.Logger(t, log.LevelInfo), WithBinary("definitely-not-supersim"))
	require.ErrorContains(t, err, "not found in PATH")
}

func TestCommandArgs(t *testing.T) {
	s := &Supersim{
		args: map[string]string{
			"--l1.port":          "8545",
			"--l2.starting.port": "9545",
		},
		l2StartPort: DefaultL2StartingPort,
	}
	WithL2StartingPort(19545)(s)
	WithAutorelay()(s)
	require.Equal(t, []string{"--l1.port", "8545", "--l2.starting.port", "19545", "--interop.autorelay"}, s.commandArgs())
	require.Equal(t, []string{"http://127.0.0.1:19545", "http://127.0.0.1:19546"}, s.L2URLs())

	cfgs := s.ChainConfigs()
	require.Len(t, cfgs, 2)
	require.Equal(t, "supersimL2B", cfgs[1].Name)
	require.EqualValues(t, 902, cfgs[1].ChainID)
}

func TestWaitReady(t *testing.T) {
	n := fakechain.NewTestNetwork(t, fakechain.DefaultConfig())
	var urls []string
	for _, c := range n.Chains() {
		urls = append(urls, c.URL())
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, WaitReady(ctx, urls, 10*time.Millisecond))

	n.Close()
	ctx, cancel = context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, WaitReady(ctx, urls, 10*time.Millisecond), context.DeadlineExceeded)
}
