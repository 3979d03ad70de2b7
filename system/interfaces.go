package system

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/ethereum-optimism/xchain-flashloan/interfaces"
	"github.com/ethereum-optimism/xchain-flashloan/types"
)

// Chain is a single L2 of the test system, reached through one RPC endpoint.
type Chain interface {
	Name() string
	ID() types.ChainID
	RPCURL() string

	Client() (*ethclient.Client, error)
	RPC() (*rpc.Client, error)
	ContractsRegistry() interfaces.ContractsRegistry
	TestClient() TestClient

	GasPrice(ctx context.Context) (*big.Int, error)
	GasLimit(ctx context.Context, tx TransactionData) (uint64, error)
	PendingNonceAt(ctx context.Context, address common.Address) (uint64, error)
	SupportsEIP(ctx context.Context, eip uint64) bool
}

// TestClient exposes the anvil cheat codes of a development chain.
type TestClient interface {
	SetBalance(ctx context.Context, account types.Address, balance types.Balance) error
	ImpersonateAccount(ctx context.Context, account types.Address) error
	StopImpersonatingAccount(ctx context.Context, account types.Address) error
	Mine(ctx context.Context, blocks uint64) error
	Snapshot(ctx context.Context) (string, error)
	Revert(ctx context.Context, id string) error
}

// Wallet sends transactions from one account on one chain.
type Wallet interface {
	Address() types.Address
	Chain() Chain
	Balance(ctx context.Context) (types.Balance, error)

	// Transact turns a contract call into a transaction from this wallet.
	// Call simulates it and returns the raw return data, Send submits it.
	Transact(call types.Call) types.WriteInvocation[[]byte]
}

// TransactionProcessor is a helper interface for signing and sending transactions.
type TransactionProcessor interface {
	Sign(tx Transaction) (Transaction, error)
	Send(ctx context.Context, tx Transaction) error
}

// TransactionData is the input for a transaction creation.
type TransactionData interface {
	From() common.Address
	To() *common.Address
	Value() *big.Int
	Data() []byte
	AccessList() coreTypes.AccessList
}

// Transaction is the instantiated transaction object.
type Transaction interface {
	Type() uint8
	Hash() common.Hash
	TransactionData
}

// RawTransaction is implemented by transactions that wrap a geth transaction,
// which is what signing and sending operate on.
type RawTransaction interface {
	Raw() *coreTypes.Transaction
}
