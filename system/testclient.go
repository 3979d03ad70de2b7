package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ethereum-optimism/xchain-flashloan/types"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

var _ TestClient = (*anvilClient)(nil)

// anvilClient calls the anvil_* and evm_* methods supersim exposes on every L2.
type anvilClient struct {
	chain Chain
}

func (a *anvilClient) call(ctx context.Context, result any, method string, args ...any) error {
	client, err := a.chain.RPC()
	if err != nil {
		return fmt.Errorf("failed to get rpc client: %w", err)
	}
	if err := client.CallContext(ctx, result, method, args...); err != nil {
		return fmt.Errorf("%s on %s: %w", method, a.chain.Name(), err)
	}
	return nil
}

func (a *anvilClient) SetBalance(ctx context.Context, account types.Address, balance types.Balance) error {
	return a.call(ctx, nil, "anvil_setBalance", account, (*hexutil.Big)(balance.Big()))
}

func (a *anvilClient) ImpersonateAccount(ctx context.Context, account types.Address) error {
	return a.call(ctx, nil, "anvil_impersonateAccount", account)
}

func (a *anvilClient) StopImpersonatingAccount(ctx context.Context, account types.Address) error {
	return a.call(ctx, nil, "anvil_stopImpersonatingAccount", account)
}

func (a *anvilClient) Mine(ctx context.Context, blocks uint64) error {
	return a.call(ctx, nil, "anvil_mine", hexutil.Uint64(blocks))
}

func (a *anvilClient) Snapshot(ctx context.Context) (string, error) {
	var id string
	if err := a.call(ctx, &id, "evm_snapshot"); err != nil {
		return "", err
	}
	return id, nil
}

func (a *anvilClient) Revert(ctx context.Context, id string) error {
	var ok bool
	if err := a.call(ctx, &ok, "evm_revert", id); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	return nil
}
