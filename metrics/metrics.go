package metrics

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ethereum-optimism/xchain-flashloan/types"
)

const Namespace = "flashloan_e2e"

var durationBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

type Metrics struct {
	ns       string
	registry *prometheus.Registry
	factory  Factory

	txTotal    *prometheus.CounterVec
	txDuration *prometheus.HistogramVec

	loansTotal   *prometheus.CounterVec
	loanDuration *prometheus.HistogramVec

	relaysTotal   *prometheus.CounterVec
	relayDuration *prometheus.HistogramVec
	relaysSkipped *prometheus.CounterVec

	poolBalance *prometheus.GaugeVec

	info prometheus.GaugeVec
	up   prometheus.Gauge
}

var _ Metricer = (*Metrics)(nil)

func NewMetrics(procName string) *Metrics {
	return newMetrics(procName, NewRegistry())
}

func newMetrics(procName string, registry *prometheus.Registry) *Metrics {
	if procName == "" {
		procName = "default"
	}
	ns := Namespace + "_" + procName

	factory := With(registry)
	return &Metrics{
		ns:       ns,
		registry: registry,
		factory:  factory,

		info: *factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "info",
			Help:      "Pseudo-metric tracking version and config info",
		}, []string{
			"version",
		}),
		up: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "up",
			Help:      "1 if the run has finished starting up",
		}),

		txTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "txs_total",
			Help:      "Count of sent transactions",
		}, []string{"chain", "op", "err"}),
		txDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "tx_duration_seconds",
			Buckets:   durationBuckets,
			Help:      "Duration it takes to send and confirm a tx",
		}, []string{"chain", "op"}),

		loansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "loans_total",
			Help:      "Count of cross-chain flash loans",
		}, []string{"route", "err"}),
		loanDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "loan_duration_seconds",
			Buckets:   durationBuckets,
			Help:      "Duration of a flash loan, including message relays",
		}, []string{"route"}),

		relaysTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "relays_total",
			Help:      "Count of relayed cross-domain messages",
		}, []string{"route", "mode", "err"}),
		relayDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "relay_duration_seconds",
			Buckets:   durationBuckets,
			Help:      "Duration until a message is seen relayed on its destination",
		}, []string{"route", "mode"}),
		relaysSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "relays_skipped_total",
			Help:      "Count of messages found to be relayed already",
		}, []string{"route"}),

		poolBalance: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "pool_balance_tokens",
			Help:      "Token balance held by the pool, in whole tokens",
		}, []string{"chain"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Document() []DocumentedMetric {
	return m.factory.Document()
}

// RecordInfo sets a pseudo-metric that contains versioning and config info.
func (m *Metrics) RecordInfo(version string) {
	m.info.WithLabelValues(version).Set(1)
}

// RecordUp sets the up metric to 1.
func (m *Metrics) RecordUp() {
	m.up.Set(1)
}

func (m *Metrics) RecordTx(chainID types.ChainID, op string) (onDone func(err error)) {
	chain := chainLabel(chainID)
	timer := prometheus.NewTimer(m.txDuration.WithLabelValues(chain, op))
	return func(err error) {
		timer.ObserveDuration()
		m.txTotal.WithLabelValues(chain, op, errLabel(err)).Inc()
	}
}

func (m *Metrics) RecordLoan(route string) (onDone func(err error)) {
	timer := prometheus.NewTimer(m.loanDuration.WithLabelValues(route))
	return func(err error) {
		timer.ObserveDuration()
		m.loansTotal.WithLabelValues(route, errLabel(err)).Inc()
	}
}

func (m *Metrics) RecordRelay(route string, mode string) (onDone func(err error)) {
	timer := prometheus.NewTimer(m.relayDuration.WithLabelValues(route, mode))
	return func(err error) {
		timer.ObserveDuration()
		m.relaysTotal.WithLabelValues(route, mode, errLabel(err)).Inc()
	}
}

func (m *Metrics) RecordRelaySkipped(route string) {
	m.relaysSkipped.WithLabelValues(route).Inc()
}

func (m *Metrics) RecordPoolBalance(chainID types.ChainID, balance types.Balance, decimals uint8) {
	m.poolBalance.WithLabelValues(chainLabel(chainID)).Set(tokenFloat(balance, decimals))
}

func chainLabel(chainID types.ChainID) string {
	if chainID == nil {
		return "unknown"
	}
	return chainID.String()
}

func errLabel(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

func tokenFloat(balance types.Balance, decimals uint8) float64 {
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(balance.Big()), scale).Float64()
	return f
}
