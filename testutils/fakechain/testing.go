package fakechain

import (
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/xchain-flashloan/testlog"
)

// NewTestNetwork starts a network that is closed when the test ends.
func NewTestNetwork(t testing.TB, cfg Config) *Network {
	t.Helper()
	n := New(testlog.Logger(t, log.LevelInfo).New("role", "fakechain"), cfg)
	require.NoError(t, n.Start())
	t.Cleanup(n.Close)
	return n
}
