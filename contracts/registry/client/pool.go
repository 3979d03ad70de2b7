package client

import (
	"context"

	"github.com/ethereum-optimism/xchain-flashloan/contracts/bindings"
	"github.com/ethereum-optimism/xchain-flashloan/interfaces"
	"github.com/ethereum-optimism/xchain-flashloan/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

type PoolBinding struct {
	contractAddress types.Address
	binding         *bindings.Pool
	abi             *abi.ABI
}

var _ interfaces.Pool = (*PoolBinding)(nil)

func (b *PoolBinding) Address() types.Address {
	return b.contractAddress
}

func (b *PoolBinding) ABI() *abi.ABI {
	return b.abi
}

func (b *PoolBinding) Token() types.ReadInvocation[types.Address] {
	return types.ReadFunc[types.Address](func(ctx context.Context) (types.Address, error) {
		return b.binding.Token(&bind.CallOpts{Context: ctx})
	})
}

func (b *PoolBinding) MaxFlashLoan() types.ReadInvocation[types.Balance] {
	return types.ReadFunc[types.Balance](func(ctx context.Context) (types.Balance, error) {
		v, err := b.binding.MaxFlashLoan(&bind.CallOpts{Context: ctx})
		if err != nil {
			return types.Balance{}, err
		}
		return types.NewBalance(v), nil
	})
}

func (b *PoolBinding) FlashFee(amount types.Balance) types.ReadInvocation[types.Balance] {
	return types.ReadFunc[types.Balance](func(ctx context.Context) (types.Balance, error) {
		v, err := b.binding.FlashFee(&bind.CallOpts{Context: ctx}, amount.Big())
		if err != nil {
			return types.Balance{}, err
		}
		return types.NewBalance(v), nil
	})
}

func (b *PoolBinding) DepositsOf(account types.Address) types.ReadInvocation[types.Balance] {
	return &PoolDepositsOfImpl{contract: b, account: account}
}

type PoolDepositsOfImpl struct {
	contract *PoolBinding
	account  types.Address
}

func (i *PoolDepositsOfImpl) Call(ctx context.Context) (types.Balance, error) {
	v, err := i.contract.binding.DepositsOf(&bind.CallOpts{Context: ctx}, i.account)
	if err != nil {
		return types.Balance{}, err
	}
	return types.NewBalance(v), nil
}

func (b *PoolBinding) CallbackSuccess() types.ReadInvocation[common.Hash] {
	return types.ReadFunc[common.Hash](func(ctx context.Context) (common.Hash, error) {
		v, err := b.binding.CALLBACKSUCCESS(&bind.CallOpts{Context: ctx})
		return common.Hash(v), err
	})
}

func (b *PoolBinding) CrossDomainMessenger() types.ReadInvocation[types.Address] {
	return types.ReadFunc[types.Address](func(ctx context.Context) (types.Address, error) {
		return b.binding.CROSSDOMAINMESSENGER(&bind.CallOpts{Context: ctx})
	})
}

func (b *PoolBinding) SuperchainTokenBridge() types.ReadInvocation[types.Address] {
	return types.ReadFunc[types.Address](func(ctx context.Context) (types.Address, error) {
		return b.binding.SUPERCHAINTOKENBRIDGE(&bind.CallOpts{Context: ctx})
	})
}

func (b *PoolBinding) Deposit(amount types.Balance) types.Call {
	return newCall(b.contractAddress, b.abi, "deposit", amount.Big())
}

func (b *PoolBinding) Withdraw(amount types.Balance) types.Call {
	return newCall(b.contractAddress, b.abi, "withdraw", amount.Big())
}

// FlashLoan asks the pool on this chain to lend amount to borrower, sourcing the
// liquidity from the pool on chainID.
func (b *PoolBinding) FlashLoan(borrower types.Address, amount types.Balance, chainID types.ChainID) types.Call {
	return newCall(b.contractAddress, b.abi, "flashLoan", borrower, amount.Big(), chainID)
}
