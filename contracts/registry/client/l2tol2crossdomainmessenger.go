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

type L2ToL2CrossDomainMessengerBinding struct {
	contractAddress types.Address
	binding         *bindings.L2ToL2CrossDomainMessenger
	abi             *abi.ABI
}

var _ interfaces.L2ToL2CrossDomainMessenger = (*L2ToL2CrossDomainMessengerBinding)(nil)

func (b *L2ToL2CrossDomainMessengerBinding) Address() types.Address {
	return b.contractAddress
}

func (b *L2ToL2CrossDomainMessengerBinding) ABI() *abi.ABI {
	return b.abi
}

func (b *L2ToL2CrossDomainMessengerBinding) MessageNonce() types.ReadInvocation[types.Balance] {
	return types.ReadFunc[types.Balance](func(ctx context.Context) (types.Balance, error) {
		v, err := b.binding.MessageNonce(&bind.CallOpts{Context: ctx})
		if err != nil {
			return types.Balance{}, err
		}
		return types.NewBalance(v), nil
	})
}

func (b *L2ToL2CrossDomainMessengerBinding) SuccessfulMessages(msgHash common.Hash) types.ReadInvocation[bool] {
	return types.ReadFunc[bool](func(ctx context.Context) (bool, error) {
		return b.binding.SuccessfulMessages(&bind.CallOpts{Context: ctx}, msgHash)
	})
}

func (b *L2ToL2CrossDomainMessengerBinding) SendMessage(destination types.ChainID, target types.Address, message []byte) types.Call {
	return newCall(b.contractAddress, b.abi, "sendMessage", destination, target, message)
}
