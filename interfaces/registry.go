package interfaces

import (
	"fmt"

	"github.com/ethereum-optimism/xchain-flashloan/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrContractNotFound indicates that a contract is not available at the requested address
type ErrContractNotFound struct {
	ContractType string
	Address      types.Address
}

func (e *ErrContractNotFound) Error() string {
	return fmt.Sprintf("%s contract not found at %s", e.ContractType, e.Address)
}

// ContractsRegistry provides access to all supported contract instances
type ContractsRegistry interface {
	Pool(address types.Address) (Pool, error)
	SuperchainERC20(address types.Address) (SuperchainERC20, error)
	L2ToL2CrossDomainMessenger(address types.Address) (L2ToL2CrossDomainMessenger, error)
}

// Pool is the cross-chain flash-loan pool.
type Pool interface {
	Address() types.Address
	ABI() *abi.ABI

	Token() types.ReadInvocation[types.Address]
	MaxFlashLoan() types.ReadInvocation[types.Balance]
	FlashFee(amount types.Balance) types.ReadInvocation[types.Balance]
	DepositsOf(account types.Address) types.ReadInvocation[types.Balance]
	CallbackSuccess() types.ReadInvocation[common.Hash]
	CrossDomainMessenger() types.ReadInvocation[types.Address]
	SuperchainTokenBridge() types.ReadInvocation[types.Address]

	Deposit(amount types.Balance) types.Call
	Withdraw(amount types.Balance) types.Call
	FlashLoan(borrower types.Address, amount types.Balance, chainID types.ChainID) types.Call
}

// SuperchainERC20 is the L2NativeSuperchainERC20 token lent by the pool.
type SuperchainERC20 interface {
	Address() types.Address
	ABI() *abi.ABI

	Name() types.ReadInvocation[string]
	Symbol() types.ReadInvocation[string]
	Decimals() types.ReadInvocation[uint8]
	TotalSupply() types.ReadInvocation[types.Balance]
	BalanceOf(owner types.Address) types.ReadInvocation[types.Balance]
	Allowance(owner, spender types.Address) types.ReadInvocation[types.Balance]

	Approve(spender types.Address, amount types.Balance) types.Call
	Transfer(to types.Address, amount types.Balance) types.Call
	MintTo(to types.Address, amount types.Balance) types.Call
}

type L2ToL2CrossDomainMessenger interface {
	Address() types.Address
	ABI() *abi.ABI

	MessageNonce() types.ReadInvocation[types.Balance]
	SuccessfulMessages(msgHash common.Hash) types.ReadInvocation[bool]

	SendMessage(destination types.ChainID, target types.Address, message []byte) types.Call
}
