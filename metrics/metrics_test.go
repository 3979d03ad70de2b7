package metrics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/xchain-flashloan/types"
)

func TestFlashLoanMetrics(t *testing.T) {
	m := NewMetrics("")

	require.NotEmpty(t, m.Document(), "sanity check there are generated metrics docs")

	version := "v0.1.0"
	m.RecordInfo(version)
	m.RecordUp()

	chainA := big.NewInt(901)
	chainB := big.NewInt(902)

	onDone := m.RecordTx(chainA, "deposit")
	onDone(nil)
	onDone = m.RecordTx(chainA, "deposit")
	onDone(nil)
	onDone = m.RecordTx(chainB, "flashLoan")
	onDone(errors.New("reverted"))

	onDone = m.RecordLoan("901->902")
	onDone(nil)
	onDone = m.RecordRelay("901->902", "manual")
	onDone(nil)
	m.RecordRelaySkipped("902->901")
	m.RecordPoolBalance(chainA, types.MustParseUnits("1500.5", 18), 18)

	c := NewChecker(t, m.Registry())
	prefix := Namespace + "_default_"

	record := c.Family(prefix + "txs_total").With(map[string]string{"chain": "901", "op": "deposit", "err": "success"})
	require.Equal(t, 2.0, record.Counter.GetValue())

	record = c.Family(prefix + "txs_total").With(map[string]string{"chain": "902", "err": "failed"})
	require.Equal(t, 1.0, record.Counter.GetValue())

	record = c.Family(prefix + "tx_duration_seconds").With(map[string]string{"chain": "901"})
	require.Equal(t, uint64(2), record.Histogram.GetSampleCount())

	record = c.Family(prefix + "loans_total").With(map[string]string{"route": "901->902"})
	require.Equal(t, 1.0, record.Counter.GetValue())

	record = c.Family(prefix + "relays_total").With(map[string]string{"route": "901->902", "mode": "manual", "err": "success"})
	require.Equal(t, 1.0, record.Counter.GetValue())

	record = c.Family(prefix + "relays_skipped_total").With(map[string]string{"route": "902->901"})
	require.Equal(t, 1.0, record.Counter.GetValue())

	record = c.Family(prefix + "pool_balance_tokens").With(map[string]string{"chain": "901"})
	require.Equal(t, 1500.5, record.Gauge.GetValue())

	record = c.Family(prefix + "up").With(nil)
	require.Equal(t, 1.0, record.Gauge.GetValue())

	record = c.Family(prefix + "info").With(map[string]string{"version": version})
	require.Equal(t, 1.0, record.Gauge.GetValue())
}

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	m.RecordInfo("1234")
	m.RecordUp()
	m.RecordTx(big.NewInt(1), "mint")(errors.New("test err"))
	m.RecordLoan("a->b")(nil)
	m.RecordRelay("a->b", "await")(nil)
	m.RecordRelaySkipped("a->b")
	m.RecordPoolBalance(nil, types.Balance{}, 18)
}

func TestServer(t *testing.T) {
	m := NewMetrics("srv")
	m.RecordUp()
	srv, err := StartServer(m.Registry(), "127.0.0.1", 0)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, srv.Stop(context.Background()))
	}()

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", srv.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), Namespace+"_srv_up 1")
}

func TestCLIConfig(t *testing.T) {
	require.NoError(t, DefaultCLIConfig().Check())
	require.ErrorIs(t, CLIConfig{Enabled: true, ListenPort: 70000}.Check(), ErrInvalidPort)
	require.NoError(t, CLIConfig{Enabled: false, ListenPort: 70000}.Check())
}

func TestDocSubcommand(t *testing.T) {
	var out bytes.Buffer
	app := cli.NewApp()
	app.Writer = &out
	app.Commands = cli.Commands{{Name: "doc", Subcommands: NewSubcommands(NewMetrics("default"))}}

	require.NoError(t, app.Run([]string{"app", "doc", "metrics"}))
	require.Contains(t, out.String(), Namespace+"_default_loans_total")
	require.Contains(t, out.String(), "route,err")

	out.Reset()
	require.NoError(t, app.Run([]string{"app", "doc", "metrics", "--format=json"}))
	require.Contains(t, out.String(), `"name":"`+Namespace+`_default_relays_total"`)

	require.ErrorContains(t, app.Run([]string{"app", "doc", "metrics", "--format=xml"}), "invalid format")
}
