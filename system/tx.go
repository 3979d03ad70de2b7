package system

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrInvalidTx = errors.New("invalid transaction options")

// TxOpts describes a transaction before nonce, fees and gas are filled in.
type TxOpts struct {
	from  common.Address
	to    *common.Address
	value *big.Int
	data  []byte
	// zero means estimate
	gasLimit   uint64
	accessList types.AccessList
}

var _ TransactionData = (*TxOpts)(nil)

type TxOption func(*TxOpts)

func NewTxOpts(options ...TxOption) *TxOpts {
	opts := new(TxOpts)
	for _, apply := range options {
		apply(opts)
	}
	return opts
}

func WithFrom(from common.Address) TxOption {
	return func(opts *TxOpts) { opts.from = from }
}

// WithTo sets the recipient. Contract creation is not supported, so it is mandatory.
func WithTo(to common.Address) TxOption {
	return func(opts *TxOpts) { opts.to = &to }
}

func WithValue(value *big.Int) TxOption {
	return func(opts *TxOpts) { opts.value = value }
}

func WithData(data []byte) TxOption {
	return func(opts *TxOpts) { opts.data = data }
}

// WithGasLimit skips estimation. Zero keeps estimation on.
func WithGasLimit(gasLimit uint64) TxOption {
	return func(opts *TxOpts) { opts.gasLimit = gasLimit }
}

// WithAccessList attaches an access list, such as the CrossL2Inbox entries of a relay.
// It forces a typed transaction.
func WithAccessList(accessList types.AccessList) TxOption {
	return func(opts *TxOpts) { opts.accessList = accessList }
}

func (opts *TxOpts) From() common.Address         { return opts.from }
func (opts *TxOpts) To() *common.Address          { return opts.to }
func (opts *TxOpts) Value() *big.Int              { return opts.value }
func (opts *TxOpts) Data() []byte                 { return opts.data }
func (opts *TxOpts) AccessList() types.AccessList { return opts.accessList }
func (opts *TxOpts) GasLimit() uint64             { return opts.gasLimit }

func (opts *TxOpts) Validate() error {
	switch {
	case opts.from == (common.Address{}):
		return fmt.Errorf("%w: from address is required", ErrInvalidTx)
	case opts.to == nil:
		return fmt.Errorf("%w: to address is required", ErrInvalidTx)
	case opts.value == nil || opts.value.Sign() < 0:
		return fmt.Errorf("%w: value must be non-negative", ErrInvalidTx)
	}
	return nil
}

// EthTx pairs a geth transaction with its sender, which an unsigned transaction cannot recover.
type EthTx struct {
	tx     *types.Transaction
	from   common.Address
	txType uint8
}

var (
	_ Transaction    = (*EthTx)(nil)
	_ RawTransaction = (*EthTx)(nil)
)

func (t *EthTx) Hash() common.Hash            { return t.tx.Hash() }
func (t *EthTx) From() common.Address         { return t.from }
func (t *EthTx) To() *common.Address          { return t.tx.To() }
func (t *EthTx) Value() *big.Int              { return t.tx.Value() }
func (t *EthTx) Data() []byte                 { return t.tx.Data() }
func (t *EthTx) AccessList() types.AccessList { return t.tx.AccessList() }
func (t *EthTx) Type() uint8                  { return t.txType }
func (t *EthTx) Raw() *types.Transaction      { return t.tx }
