package bindings

// This file was generated and edited by below sequences:
//   forge build src/L2NativeSuperchainERC20.sol
//   jq .abi out/L2NativeSuperchainERC20.sol/L2NativeSuperchainERC20.json > L2NativeSuperchainERC20.abi
//   abigen --abi L2NativeSuperchainERC20.abi --pkg bindings --type SuperchainERC20 --out superchainerc20.go
// Resulting superchainerc20.go was moved to this file, and only the needed implementation was left here.

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// SuperchainERC20MetaData contains all meta data concerning the SuperchainERC20 contract.
var SuperchainERC20MetaData = &bind.MetaData{
	ABI: "[{\"inputs\":[{\"internalType\":\"address\",\"name\":\"owner\",\"type\":\"address\"},{\"internalType\":\"address\",\"name\":\"spender\",\"type\":\"address\"}],\"name\":\"allowance\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"address\",\"name\":\"spender\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"amount\",\"type\":\"uint256\"}],\"name\":\"approve\",\"outputs\":[{\"internalType\":\"bool\",\"name\":\"\",\"type\":\"bool\"}],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"address\",\"name\":\"owner\",\"type\":\"address\"}],\"name\":\"balanceOf\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"decimals\",\"outputs\":[{\"internalType\":\"uint8\",\"name\":\"\",\"type\":\"uint8\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"address\",\"name\":\"_to\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"_amount\",\"type\":\"uint256\"}],\"name\":\"mintTo\",\"outputs\":[],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"name\",\"outputs\":[{\"internalType\":\"string\",\"name\":\"\",\"type\":\"string\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"symbol\",\"outputs\":[{\"internalType\":\"string\",\"name\":\"\",\"type\":\"string\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"totalSupply\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"address\",\"name\":\"to\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"amount\",\"type\":\"uint256\"}],\"name\":\"transfer\",\"outputs\":[{\"internalType\":\"bool\",\"name\":\"\",\"type\":\"bool\"}],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"address\",\"name\":\"from\",\"type\":\"address\"},{\"internalType\":\"address\",\"name\":\"to\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"amount\",\"type\":\"uint256\"}],\"name\":\"transferFrom\",\"outputs\":[{\"internalType\":\"bool\",\"name\":\"\",\"type\":\"bool\"}],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"anonymous\":false,\"inputs\":[{\"internalType\":\"address\",\"name\":\"owner\",\"type\":\"address\",\"indexed\":true},{\"internalType\":\"address\",\"name\":\"spender\",\"type\":\"address\",\"indexed\":true},{\"internalType\":\"uint256\",\"name\":\"amount\",\"type\":\"uint256\",\"indexed\":false}],\"name\":\"Approval\",\"type\":\"event\"},{\"anonymous\":false,\"inputs\":[{\"internalType\":\"address\",\"name\":\"from\",\"type\":\"address\",\"indexed\":true},{\"internalType\":\"address\",\"name\":\"to\",\"type\":\"address\",\"indexed\":true},{\"internalType\":\"uint256\",\"name\":\"amount\",\"type\":\"uint256\",\"indexed\":false}],\"name\":\"Transfer\",\"type\":\"event\"},{\"inputs\":[],\"name\":\"InsufficientAllowance\",\"type\":\"error\"},{\"inputs\":[],\"name\":\"InsufficientBalance\",\"type\":\"error\"},{\"inputs\":[],\"name\":\"Unauthorized\",\"type\":\"error\"}]",
}

// SuperchainERC20 is an auto generated Go binding around an Ethereum contract.
type SuperchainERC20 struct {
	SuperchainERC20Caller   // Read-only binding to the contract
	SuperchainERC20Filterer // Log filterer for contract events
}

// SuperchainERC20Caller is an auto generated read-only Go binding around an Ethereum contract.
type SuperchainERC20Caller struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// SuperchainERC20Filterer is an auto generated log filtering Go binding around an Ethereum contract events.
type SuperchainERC20Filterer struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// NewSuperchainERC20 creates a new instance of SuperchainERC20, bound to a specific deployed contract.
func NewSuperchainERC20(address common.Address, caller bind.ContractCaller) (*SuperchainERC20, error) {
	parsed, err := SuperchainERC20MetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, errors.New("GetABI returned nil")
	}
	contract := bind.NewBoundContract(address, *parsed, caller, nil, nil)
	return &SuperchainERC20{
		SuperchainERC20Caller:   SuperchainERC20Caller{contract: contract},
		SuperchainERC20Filterer: SuperchainERC20Filterer{contract: contract},
	}, nil
}

// Allowance is a free data retrieval call binding the contract method.
//
// Solidity: function allowance(address owner, address spender) view returns(uint256)
func (_SuperchainERC20 *SuperchainERC20Caller) Allowance(opts *bind.CallOpts, owner common.Address, spender common.Address) (*big.Int, error) {
	var out []interface{}
	err := _SuperchainERC20.contract.Call(opts, &out, "allowance", owner, spender)
	if err != nil {
		return *new(*big.Int), err
	}
	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return out0, err
}

// BalanceOf is a free data retrieval call binding the contract method.
//
// Solidity: function balanceOf(address owner) view returns(uint256)
func (_SuperchainERC20 *SuperchainERC20Caller) BalanceOf(opts *bind.CallOpts, owner common.Address) (*big.Int, error) {
	var out []interface{}
	err := _SuperchainERC20.contract.Call(opts, &out, "balanceOf", owner)
	if err != nil {
		return *new(*big.Int), err
	}
	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return out0, err
}

// Decimals is a free data retrieval call binding the contract method.
//
// Solidity: function decimals() view returns(uint8)
func (_SuperchainERC20 *SuperchainERC20Caller) Decimals(opts *bind.CallOpts) (uint8, error) {
	var out []interface{}
	err := _SuperchainERC20.contract.Call(opts, &out, "decimals")
	if err != nil {
		return *new(uint8), err
	}
	out0 := *abi.ConvertType(out[0], new(uint8)).(*uint8)
	return out0, err
}

// Name is a free data retrieval call binding the contract method.
//
// Solidity: function name() view returns(string)
func (_SuperchainERC20 *SuperchainERC20Caller) Name(opts *bind.CallOpts) (string, error) {
	var out []interface{}
	err := _SuperchainERC20.contract.Call(opts, &out, "name")
	if err != nil {
		return *new(string), err
	}
	out0 := *abi.ConvertType(out[0], new(string)).(*string)
	return out0, err
}

// Symbol is a free data retrieval call binding the contract method.
//
// Solidity: function symbol() view returns(string)
func (_SuperchainERC20 *SuperchainERC20Caller) Symbol(opts *bind.CallOpts) (string, error) {
	var out []interface{}
	err := _SuperchainERC20.contract.Call(opts, &out, "symbol")
	if err != nil {
		return *new(string), err
	}
	out0 := *abi.ConvertType(out[0], new(string)).(*string)
	return out0, err
}

// TotalSupply is a free data retrieval call binding the contract method.
//
// Solidity: function totalSupply() view returns(uint256)
func (_SuperchainERC20 *SuperchainERC20Caller) TotalSupply(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := _SuperchainERC20.contract.Call(opts, &out, "totalSupply")
	if err != nil {
		return *new(*big.Int), err
	}
	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return out0, err
}

// SuperchainERC20Transfer represents a Transfer event raised by the SuperchainERC20 contract.
type SuperchainERC20Transfer struct {
	From   common.Address
	To     common.Address
	Amount *big.Int
	Raw    types.Log // Blockchain specific contextual infos
}

// ParseTransfer is a log parse operation binding the contract event.
//
// Solidity: event Transfer(address indexed from, address indexed to, uint256 amount)
func (_SuperchainERC20 *SuperchainERC20Filterer) ParseTransfer(log types.Log) (*SuperchainERC20Transfer, error) {
	event := new(SuperchainERC20Transfer)
	if err := _SuperchainERC20.contract.UnpackLog(event, "Transfer", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

// SuperchainERC20Approval represents a Approval event raised by the SuperchainERC20 contract.
type SuperchainERC20Approval struct {
	Owner   common.Address
	Spender common.Address
	Amount  *big.Int
	Raw     types.Log // Blockchain specific contextual infos
}

// ParseApproval is a log parse operation binding the contract event.
//
// Solidity: event Approval(address indexed owner, address indexed spender, uint256 amount)
func (_SuperchainERC20 *SuperchainERC20Filterer) ParseApproval(log types.Log) (*SuperchainERC20Approval, error) {
	event := new(SuperchainERC20Approval)
	if err := _SuperchainERC20.contract.UnpackLog(event, "Approval", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}
