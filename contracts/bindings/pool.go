package bindings

// This file was generated and edited by below sequences:
//   forge build src/Pool.sol
//   jq .abi out/Pool.sol/Pool.json > Pool.abi
//   abigen --abi Pool.abi --pkg bindings --type Pool --out pool.go
// Resulting pool.go was moved to this file, and only the needed implementation was left here.

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// PoolMetaData contains all meta data concerning the Pool contract.
var PoolMetaData = &bind.MetaData{
	ABI: "[{\"inputs\":[{\"internalType\":\"contract L2NativeSuperchainERC20\",\"name\":\"_token\",\"type\":\"address\"}],\"stateMutability\":\"nonpayable\",\"type\":\"constructor\"},{\"inputs\":[],\"name\":\"CALLBACK_SUCCESS\",\"outputs\":[{\"internalType\":\"bytes32\",\"name\":\"\",\"type\":\"bytes32\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"CROSS_DOMAIN_MESSENGER\",\"outputs\":[{\"internalType\":\"contract L2ToL2CrossDomainMessenger\",\"name\":\"\",\"type\":\"address\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"SUPERCHAIN_TOKEN_BRIDGE\",\"outputs\":[{\"internalType\":\"contract SuperchainTokenBridge\",\"name\":\"\",\"type\":\"address\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"_amount\",\"type\":\"uint256\"}],\"name\":\"deposit\",\"outputs\":[],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"address\",\"name\":\"\",\"type\":\"address\"}],\"name\":\"depositsOf\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"_amount\",\"type\":\"uint256\"}],\"name\":\"flashFee\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"pure\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"address\",\"name\":\"_borrower\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"_amount\",\"type\":\"uint256\"},{\"internalType\":\"uint256\",\"name\":\"_chainId\",\"type\":\"uint256\"}],\"name\":\"flashLoan\",\"outputs\":[{\"internalType\":\"bytes32\",\"name\":\"_messageId\",\"type\":\"bytes32\"},{\"internalType\":\"bool\",\"name\":\"_success\",\"type\":\"bool\"}],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"maxFlashLoan\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"token\",\"outputs\":[{\"internalType\":\"contract L2NativeSuperchainERC20\",\"name\":\"\",\"type\":\"address\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"_amount\",\"type\":\"uint256\"}],\"name\":\"withdraw\",\"outputs\":[],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"Pool_CallbackFailed\",\"type\":\"error\"}]",
}

// PoolABI is the input ABI used to generate the binding from.
// Deprecated: Use PoolMetaData.ABI instead.
var PoolABI = PoolMetaData.ABI

// Pool is an auto generated Go binding around an Ethereum contract.
type Pool struct {
	PoolCaller // Read-only binding to the contract
}

// PoolCaller is an auto generated read-only Go binding around an Ethereum contract.
type PoolCaller struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// NewPool creates a new instance of Pool, bound to a specific deployed contract.
func NewPool(address common.Address, caller bind.ContractCaller) (*Pool, error) {
	contract, err := bindPool(address, caller, nil, nil)
	if err != nil {
		return nil, err
	}
	return &Pool{PoolCaller: PoolCaller{contract: contract}}, nil
}

// bindPool binds a generic wrapper to an already deployed contract.
func bindPool(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, filterer bind.ContractFilterer) (*bind.BoundContract, error) {
	parsed, err := PoolMetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, errors.New("GetABI returned nil")
	}
	return bind.NewBoundContract(address, *parsed, caller, transactor, filterer), nil
}

// CALLBACKSUCCESS is a free data retrieval call binding the contract method.
//
// Solidity: function CALLBACK_SUCCESS() view returns(bytes32)
func (_Pool *PoolCaller) CALLBACKSUCCESS(opts *bind.CallOpts) ([32]byte, error) {
	var out []interface{}
	err := _Pool.contract.Call(opts, &out, "CALLBACK_SUCCESS")
	if err != nil {
		return *new([32]byte), err
	}
	out0 := *abi.ConvertType(out[0], new([32]byte)).(*[32]byte)
	return out0, err
}

// CROSSDOMAINMESSENGER is a free data retrieval call binding the contract method.
//
// Solidity: function CROSS_DOMAIN_MESSENGER() view returns(address)
func (_Pool *PoolCaller) CROSSDOMAINMESSENGER(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	err := _Pool.contract.Call(opts, &out, "CROSS_DOMAIN_MESSENGER")
	if err != nil {
		return *new(common.Address), err
	}
	out0 := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	return out0, err
}

// SUPERCHAINTOKENBRIDGE is a free data retrieval call binding the contract method.
//
// Solidity: function SUPERCHAIN_TOKEN_BRIDGE() view returns(address)
func (_Pool *PoolCaller) SUPERCHAINTOKENBRIDGE(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	err := _Pool.contract.Call(opts, &out, "SUPERCHAIN_TOKEN_BRIDGE")
	if err != nil {
		return *new(common.Address), err
	}
	out0 := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	return out0, err
}

// DepositsOf is a free data retrieval call binding the contract method.
//
// Solidity: function depositsOf(address ) view returns(uint256)
func (_Pool *PoolCaller) DepositsOf(opts *bind.CallOpts, arg0 common.Address) (*big.Int, error) {
	var out []interface{}
	err := _Pool.contract.Call(opts, &out, "depositsOf", arg0)
	if err != nil {
		return *new(*big.Int), err
	}
	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return out0, err
}

// FlashFee is a free data retrieval call binding the contract method.
//
// Solidity: function flashFee(uint256 _amount) pure returns(uint256)
func (_Pool *PoolCaller) FlashFee(opts *bind.CallOpts, _amount *big.Int) (*big.Int, error) {
	var out []interface{}
	err := _Pool.contract.Call(opts, &out, "flashFee", _amount)
	if err != nil {
		return *new(*big.Int), err
	}
	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return out0, err
}

// MaxFlashLoan is a free data retrieval call binding the contract method.
//
// Solidity: function maxFlashLoan() view returns(uint256)
func (_Pool *PoolCaller) MaxFlashLoan(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := _Pool.contract.Call(opts, &out, "maxFlashLoan")
	if err != nil {
		return *new(*big.Int), err
	}
	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return out0, err
}

// Token is a free data retrieval call binding the contract method.
//
// Solidity: function token() view returns(address)
func (_Pool *PoolCaller) Token(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	err := _Pool.contract.Call(opts, &out, "token")
	if err != nil {
		return *new(common.Address), err
	}
	out0 := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	return out0, err
}

// FlashLoanResult is the named output of flashLoan.
type FlashLoanResult struct {
	MessageId [32]byte
	Success   bool
}

// UnpackFlashLoan decodes the return data of a flashLoan call.
//
// Solidity: function flashLoan(address _borrower, uint256 _amount, uint256 _chainId) returns(bytes32 _messageId, bool _success)
func UnpackFlashLoan(data []byte) (FlashLoanResult, error) {
	parsed, err := PoolMetaData.GetAbi()
	if err != nil {
		return FlashLoanResult{}, err
	}
	out, err := parsed.Unpack("flashLoan", data)
	if err != nil {
		return FlashLoanResult{}, err
	}
	return FlashLoanResult{
		MessageId: *abi.ConvertType(out[0], new([32]byte)).(*[32]byte),
		Success:   *abi.ConvertType(out[1], new(bool)).(*bool),
	}, nil
}
