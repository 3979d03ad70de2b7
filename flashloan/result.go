package flashloan

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/ethereum-optimism/xchain-flashloan/interop/relayer"
	"github.com/ethereum-optimism/xchain-flashloan/types"
)

var ErrBalanceMismatch = errors.New("pool balance changed across flash loan")

// LoanResult records the pool balances around one flash loan.
type LoanResult struct {
	Route    Route
	Amount   types.Balance
	Fee      types.Balance
	Decimals uint8

	SourceBefore types.Balance
	SourceAfter  types.Balance
	// The destination pool lends the liquidity, its balance is reported but not checked.
	DestinationBefore types.Balance
	DestinationAfter  types.Balance

	TxHash common.Hash
	Relays []*relayer.Result
}

// Check fails if the source pool's token balance changed, which means the loan
// was not repaid within the flow.
func (r *LoanResult) Check() error {
	if !r.SourceBefore.Equal(r.SourceAfter) {
		return fmt.Errorf("%w: pool on %s held %s before and %s after (delta %s)",
			ErrBalanceMismatch, r.Route.Source.Name(),
			r.SourceBefore.Units(r.Decimals), r.SourceAfter.Units(r.Decimals),
			r.SourceBefore.Delta(r.SourceAfter).Units(r.Decimals))
	}
	return nil
}

// RouteReport is the outcome of one route in a run.
type RouteReport struct {
	Route  Route
	Result *LoanResult
	Err    error
}

func (r RouteReport) Passed() bool {
	return r.Err == nil
}

type Report struct {
	RunID  uuid.UUID
	Routes []RouteReport
}

func (r *Report) Failed() int {
	n := 0
	for _, rr := range r.Routes {
		if !rr.Passed() {
			n++
		}
	}
	return n
}
