package metrics

import "github.com/ethereum-optimism/xchain-flashloan/types"

type Metricer interface {
	RecordInfo(version string)
	RecordUp()

	// RecordTx tracks a single transaction, from send until its receipt is in.
	RecordTx(chainID types.ChainID, op string) (onDone func(err error))
	// RecordLoan tracks a full flash loan round-trip on a route, relays included.
	RecordLoan(route string) (onDone func(err error))
	RecordRelay(route string, mode string) (onDone func(err error))
	RecordRelaySkipped(route string)
	RecordPoolBalance(chainID types.ChainID, balance types.Balance, decimals uint8)
}
