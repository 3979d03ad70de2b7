package types

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
)

type Address = common.Address

type ChainID = *big.Int

type ReadInvocation[T any] interface {
	Call(ctx context.Context) (T, error)
}

type WriteInvocation[T any] interface {
	ReadInvocation[T]
	Send(ctx context.Context) InvocationResult
}

type InvocationResult interface {
	Error() error
	Wait(ctx context.Context) error
	Info() any
}

type Key = *ecdsa.PrivateKey

// Call is a contract call that can be turned into a transaction by a wallet.
type Call interface {
	To() (*common.Address, error)
	EncodeInput() ([]byte, error)
	AccessList() (coreTypes.AccessList, error)
}

// ReadFunc adapts a plain function to a ReadInvocation.
type ReadFunc[T any] func(ctx context.Context) (T, error)

func (f ReadFunc[T]) Call(ctx context.Context) (T, error) {
	return f(ctx)
}
