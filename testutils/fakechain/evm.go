package fakechain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/lmittmann/w3"

	"github.com/ethereum-optimism/xchain-flashloan/contracts/bindings"
)

var (
	poolABI      = mustABI(bindings.PoolMetaData)
	tokenABI     = mustABI(bindings.SuperchainERC20MetaData)
	messengerABI = mustABI(bindings.L2ToL2CrossDomainMessengerMetaData)

	errorStringFunc = w3.MustNewFunc("Error(string)", "")
)

func mustABI(meta interface{ GetAbi() (*abi.ABI, error) }) *abi.ABI {
	parsed, err := meta.GetAbi()
	if err != nil {
		panic(err)
	}
	return parsed
}

// revertError is returned by eth_call and eth_estimateGas for reverted executions.
// It carries the revert data the way geth does, as a JSON-RPC error with data.
type revertError struct {
	data   []byte
	reason string
}

func (e *revertError) Error() string {
	if e.reason != "" {
		return "execution reverted: " + e.reason
	}
	return "execution reverted"
}

func (e *revertError) ErrorCode() int {
	return 3
}

func (e *revertError) ErrorData() interface{} {
	return hexutil.Encode(e.data)
}

// customError reverts with a parameterless custom error of the given contract ABI.
func customError(parsed *abi.ABI, name string) *revertError {
	abiErr, ok := parsed.Errors[name]
	if !ok {
		panic(fmt.Sprintf("unknown error %s", name))
	}
	return &revertError{data: common.CopyBytes(abiErr.ID[:4]), reason: name}
}

// reasonError reverts with Error(string), like a require with a message.
func reasonError(reason string) *revertError {
	data, err := errorStringFunc.EncodeArgs(reason)
	if err != nil {
		panic(err)
	}
	return &revertError{data: data, reason: reason}
}

// frame is one execution of a transaction or call, on a copy of the chain state.
type frame struct {
	net        *Network
	chain      *Chain
	st         *state
	origin     common.Address
	accessList coreTypes.AccessList
	logs       []*coreTypes.Log

	// set while the messenger executes a relayed message
	xSource *big.Int
	xSender *common.Address
}

func (f *frame) emit(addr common.Address, topics []common.Hash, data []byte) {
	f.logs = append(f.logs, &coreTypes.Log{
		Address: addr,
		Topics:  topics,
		Data:    data,
	})
}

// call dispatches a message call to one of the emulated contracts.
// Calls to any other address succeed without effect, like calls to an EOA.
func (f *frame) call(from, to common.Address, input []byte) ([]byte, error) {
	cfg := f.net.cfg
	switch to {
	case cfg.Token:
		return f.callABI(tokenABI, from, input, f.token)
	case cfg.Pool:
		if len(input) >= 4 && isPoolMessage(input) {
			return nil, f.poolMessage(from, input)
		}
		return f.callABI(poolABI, from, input, f.pool)
	case messengerAddr:
		return f.callABI(messengerABI, from, input, f.messenger)
	default:
		return nil, nil
	}
}

type handler func(from common.Address, method *abi.Method, args []any) ([]any, error)

func (f *frame) callABI(parsed *abi.ABI, from common.Address, input []byte, h handler) ([]byte, error) {
	if len(input) < 4 {
		return nil, reasonError("missing selector")
	}
	method, err := parsed.MethodById(input[:4])
	if err != nil {
		return nil, reasonError("unknown selector")
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, reasonError(fmt.Sprintf("bad %s arguments", method.Name))
	}
	out, err := h(from, method, args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}

// token emulates L2NativeSuperchainERC20
func (f *frame) token(from common.Address, method *abi.Method, args []any) ([]any, error) {
	cfg := f.net.cfg
	st := f.st
	switch method.Name {
	case "name":
		return []any{cfg.TokenName}, nil
	case "symbol":
		return []any{cfg.TokenSymbol}, nil
	case "decimals":
		return []any{cfg.Decimals}, nil
	case "totalSupply":
		return []any{st.totalSupply}, nil
	case "balanceOf":
		return []any{get(st.tokenBalances, args[0].(common.Address))}, nil
	case "allowance":
		return []any{get(st.allowances, allowanceKey{args[0].(common.Address), args[1].(common.Address)})}, nil
	case "approve":
		spender, amount := args[0].(common.Address), args[1].(*big.Int)
		st.allowances[allowanceKey{from, spender}] = amount
		f.emitTokenEvent("Approval", from, spender, amount)
		return []any{true}, nil
	case "transfer":
		if err := f.transferToken(from, args[0].(common.Address), args[1].(*big.Int)); err != nil {
			return nil, err
		}
		return []any{true}, nil
	case "transferFrom":
		owner, to, amount := args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int)
		key := allowanceKey{owner, from}
		if get(st.allowances, key).Cmp(amount) < 0 {
			return nil, customError(tokenABI, "InsufficientAllowance")
		}
		sub(st.allowances, key, amount)
		if err := f.transferToken(owner, to, amount); err != nil {
			return nil, err
		}
		return []any{true}, nil
	case "mintTo":
		if from != cfg.Minter {
			return nil, customError(tokenABI, "Unauthorized")
		}
		f.mintToken(args[0].(common.Address), args[1].(*big.Int))
		return nil, nil
	}
	return nil, reasonError("unsupported token method " + method.Name)
}

func (f *frame) emitTokenEvent(name string, a, b common.Address, amount *big.Int) {
	ev := tokenABI.Events[name]
	data, err := ev.Inputs.NonIndexed().Pack(amount)
	if err != nil {
		panic(err)
	}
	f.emit(f.net.cfg.Token, []common.Hash{ev.ID, common.BytesToHash(a.Bytes()), common.BytesToHash(b.Bytes())}, data)
}

func (f *frame) transferToken(from, to common.Address, amount *big.Int) error {
	if get(f.st.tokenBalances, from).Cmp(amount) < 0 {
		return customError(tokenABI, "InsufficientBalance")
	}
	sub(f.st.tokenBalances, from, amount)
	add(f.st.tokenBalances, to, amount)
	f.emitTokenEvent("Transfer", from, to, amount)
	return nil
}

func (f *frame) mintToken(to common.Address, amount *big.Int) {
	add(f.st.tokenBalances, to, amount)
	f.st.totalSupply = new(big.Int).Add(f.st.totalSupply, amount)
	f.emitTokenEvent("Transfer", common.Address{}, to, amount)
}

func (f *frame) burnToken(from common.Address, amount *big.Int) error {
	if get(f.st.tokenBalances, from).Cmp(amount) < 0 {
		return customError(tokenABI, "InsufficientBalance")
	}
	sub(f.st.tokenBalances, from, amount)
	f.st.totalSupply = new(big.Int).Sub(f.st.totalSupply, amount)
	f.emitTokenEvent("Transfer", from, common.Address{}, amount)
	return nil
}

// CallbackSuccess is the value a flash borrower returns from its callback.
var CallbackSuccess = crypto.Keccak256Hash([]byte("ERC3156FlashBorrower.onFlashLoan"))
