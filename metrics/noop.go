package metrics

import "github.com/ethereum-optimism/xchain-flashloan/types"

type NoopMetrics struct{}

var _ Metricer = NoopMetrics{}

func (n NoopMetrics) RecordInfo(version string) {}

func (n NoopMetrics) RecordUp() {}

func (n NoopMetrics) RecordTx(chainID types.ChainID, op string) (onDone func(err error)) {
	return func(err error) {}
}

func (n NoopMetrics) RecordLoan(route string) (onDone func(err error)) {
	return func(err error) {}
}

func (n NoopMetrics) RecordRelay(route string, mode string) (onDone func(err error)) {
	return func(err error) {}
}

func (n NoopMetrics) RecordRelaySkipped(route string) {}

func (n NoopMetrics) RecordPoolBalance(chainID types.ChainID, balance types.Balance, decimals uint8) {}
