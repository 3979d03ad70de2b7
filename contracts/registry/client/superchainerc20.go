package client

import (
	"context"

	"github.com/ethereum-optimism/xchain-flashloan/contracts/bindings"
	"github.com/ethereum-optimism/xchain-flashloan/interfaces"
	"github.com/ethereum-optimism/xchain-flashloan/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

type SuperchainERC20Binding struct {
	contractAddress types.Address
	binding         *bindings.SuperchainERC20
	abi             *abi.ABI
}

var _ interfaces.SuperchainERC20 = (*SuperchainERC20Binding)(nil)

func (b *SuperchainERC20Binding) Address() types.Address {
	return b.contractAddress
}

func (b *SuperchainERC20Binding) ABI() *abi.ABI {
	return b.abi
}

func (b *SuperchainERC20Binding) Name() types.ReadInvocation[string] {
	return types.ReadFunc[string](func(ctx context.Context) (string, error) {
		return b.binding.Name(&bind.CallOpts{Context: ctx})
	})
}

func (b *SuperchainERC20Binding) Symbol() types.ReadInvocation[string] {
	return types.ReadFunc[string](func(ctx context.Context) (string, error) {
		return b.binding.Symbol(&bind.CallOpts{Context: ctx})
	})
}

func (b *SuperchainERC20Binding) Decimals() types.ReadInvocation[uint8] {
	return types.ReadFunc[uint8](func(ctx context.Context) (uint8, error) {
		return b.binding.Decimals(&bind.CallOpts{Context: ctx})
	})
}

func (b *SuperchainERC20Binding) TotalSupply() types.ReadInvocation[types.Balance] {
	return types.ReadFunc[types.Balance](func(ctx context.Context) (types.Balance, error) {
		v, err := b.binding.TotalSupply(&bind.CallOpts{Context: ctx})
		if err != nil {
			return types.Balance{}, err
		}
		return types.NewBalance(v), nil
	})
}

func (b *SuperchainERC20Binding) BalanceOf(owner types.Address) types.ReadInvocation[types.Balance] {
	return &SuperchainERC20BalanceOfImpl{
		contract: b,
		owner:    owner,
	}
}

type SuperchainERC20BalanceOfImpl struct {
	contract *SuperchainERC20Binding
	owner    types.Address
}

func (i *SuperchainERC20BalanceOfImpl) Call(ctx context.Context) (types.Balance, error) {
	balance, err := i.contract.binding.BalanceOf(&bind.CallOpts{Context: ctx}, i.owner)
	if err != nil {
		return types.Balance{}, err
	}
	return types.NewBalance(balance), nil
}

func (b *SuperchainERC20Binding) Allowance(owner, spender types.Address) types.ReadInvocation[types.Balance] {
	return types.ReadFunc[types.Balance](func(ctx context.Context) (types.Balance, error) {
		v, err := b.binding.Allowance(&bind.CallOpts{Context: ctx}, owner, spender)
		if err != nil {
			return types.Balance{}, err
		}
		return types.NewBalance(v), nil
	})
}

func (b *SuperchainERC20Binding) Approve(spender types.Address, amount types.Balance) types.Call {
	return newCall(b.contractAddress, b.abi, "approve", spender, amount.Big())
}

func (b *SuperchainERC20Binding) Transfer(to types.Address, amount types.Balance) types.Call {
	return newCall(b.contractAddress, b.abi, "transfer", to, amount.Big())
}

func (b *SuperchainERC20Binding) MintTo(to types.Address, amount types.Balance) types.Call {
	return newCall(b.contractAddress, b.abi, "mintTo", to, amount.Big())
}
