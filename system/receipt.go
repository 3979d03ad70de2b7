package system

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/ethereum-optimism/xchain-flashloan/contracts/bindings"
)

var ErrTxFailed = errors.New("transaction failed")

const DefaultReceiptPollInterval = 100 * time.Millisecond

type ReceiptClient interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*coreTypes.Receipt, error)
}

// WaitForReceipt polls until the receipt of the transaction is available.
// It does not check the receipt status.
func WaitForReceipt(ctx context.Context, client ReceiptClient, hash common.Hash, interval time.Duration) (*coreTypes.Receipt, error) {
	if interval <= 0 {
		interval = DefaultReceiptPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("failed to get receipt of %s: %w", hash, err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for receipt of %s: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// RevertData extracts the revert data of a failed call, if the RPC returned any.
func RevertData(err error) ([]byte, bool) {
	var de rpc.DataError
	if !errors.As(err, &de) {
		return nil, false
	}
	switch v := de.ErrorData().(type) {
	case string:
		data, decErr := hexutil.Decode(v)
		if decErr != nil {
			return nil, false
		}
		return data, true
	case []byte:
		return v, true
	default:
		return nil, false
	}
}

// DecodeCallError wraps err with the decoded revert of a known contract,
// so callers can match e.g. bindings.ErrPoolCallbackFailed with errors.Is.
func DecodeCallError(err error) error {
	if err == nil {
		return nil
	}
	data, ok := RevertData(err)
	if !ok {
		return err
	}
	decoded := bindings.DecodeRevert(data)
	if decoded == nil {
		return err
	}
	return fmt.Errorf("%w: %w", err, decoded)
}

// replayFailure re-executes a mined, failed transaction on the parent state to recover the revert.
func replayFailure(ctx context.Context, client ethereum.ContractCaller, msg ethereum.CallMsg, receipt *coreTypes.Receipt) error {
	if receipt.BlockNumber == nil || receipt.BlockNumber.Sign() == 0 {
		return nil
	}
	parent := new(big.Int).Sub(receipt.BlockNumber, common.Big1)
	_, err := client.CallContract(ctx, msg, parent)
	return DecodeCallError(err)
}
