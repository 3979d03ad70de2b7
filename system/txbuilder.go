package system

import (
	"context"
	"fmt"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
)

const (
	DefaultGasLimitMarginPercent = 20
	DefaultFeeCapMultiplier      = 2
)

type TxBuilderOption func(*TxBuilder)

// WithTxType pins the transaction type and skips asking the chain what it supports.
func WithTxType(txType uint8) TxBuilderOption {
	return func(b *TxBuilder) {
		b.forcedTxType = &txType
		b.supportedTxTypes = []uint8{txType}
	}
}

// WithGasLimitMargin sets the percentage added on top of the gas estimate.
func WithGasLimitMargin(marginPercent uint64) TxBuilderOption {
	return func(b *TxBuilder) {
		b.gasLimitMarginPercent = marginPercent
	}
}

// WithFeeCapMultiplier sets the fee cap of dynamic fee transactions as a multiple of the gas price.
func WithFeeCapMultiplier(multiplier uint64) TxBuilderOption {
	return func(b *TxBuilder) {
		b.feeCapMultiplier = multiplier
	}
}

func WithBuilderLogger(lgr log.Logger) TxBuilderOption {
	return func(b *TxBuilder) {
		b.log = lgr
	}
}

// TxBuilder fills in nonce, fees and gas, and picks the transaction type the chain supports.
// Chains whose head header carries a base fee get dynamic fee transactions, others get legacy ones.
type TxBuilder struct {
	ctx                   context.Context
	log                   log.Logger
	chain                 Chain
	supportedTxTypes      []uint8
	forcedTxType          *uint8
	gasLimitMarginPercent uint64
	feeCapMultiplier      uint64
}

func NewTxBuilder(ctx context.Context, chain Chain, opts ...TxBuilderOption) *TxBuilder {
	b := &TxBuilder{
		ctx:                   ctx,
		log:                   log.Root(),
		chain:                 chain,
		supportedTxTypes:      []uint8{types.LegacyTxType},
		gasLimitMarginPercent: DefaultGasLimitMarginPercent,
		feeCapMultiplier:      DefaultFeeCapMultiplier,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.forcedTxType == nil && chain.SupportsEIP(ctx, 1559) {
		b.supportedTxTypes = append(b.supportedTxTypes, types.DynamicFeeTxType, types.AccessListTxType)
	}
	return b
}

// fields every transaction type needs
type txFields struct {
	nonce    uint64
	gasPrice *big.Int
	gas      uint64
}

// BuildTx creates an unsigned transaction. Access lists rule out legacy transactions.
func (b *TxBuilder) BuildTx(options ...TxOption) (Transaction, error) {
	opts := NewTxOpts(options...)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	txType := b.chooseTxType(len(opts.accessList) > 0)
	if txType == types.LegacyTxType && len(opts.accessList) > 0 {
		return nil, fmt.Errorf("%w: access list requires a typed transaction, chain %s only supports legacy",
			ErrInvalidTx, b.chain.Name())
	}
	f, err := b.fill(opts)
	if err != nil {
		return nil, err
	}

	var inner types.TxData
	switch txType {
	case types.DynamicFeeTxType:
		inner = &types.DynamicFeeTx{
			ChainID:    b.chain.ID(),
			Nonce:      f.nonce,
			GasTipCap:  f.gasPrice,
			GasFeeCap:  new(big.Int).Mul(f.gasPrice, new(big.Int).SetUint64(b.feeCapMultiplier)),
			Gas:        f.gas,
			To:         opts.to,
			Value:      opts.value,
			Data:       opts.data,
			AccessList: opts.accessList,
		}
	case types.AccessListTxType:
		inner = &types.AccessListTx{
			ChainID:    b.chain.ID(),
			Nonce:      f.nonce,
			GasPrice:   f.gasPrice,
			Gas:        f.gas,
			To:         opts.to,
			Value:      opts.value,
			Data:       opts.data,
			AccessList: opts.accessList,
		}
	default:
		inner = &types.LegacyTx{
			Nonce:    f.nonce,
			GasPrice: f.gasPrice,
			Gas:      f.gas,
			To:       opts.to,
			Value:    opts.value,
			Data:     opts.data,
		}
	}
	b.log.Debug("Built transaction", "chain", b.chain.Name(), "type", txType,
		"from", opts.from, "nonce", f.nonce, "gas", f.gas, "gasPrice", f.gasPrice)
	return &EthTx{tx: types.NewTx(inner), from: opts.from, txType: txType}, nil
}

// chooseTxType prefers dynamic fee transactions, which carry access lists too.
func (b *TxBuilder) chooseTxType(hasAccessList bool) uint8 {
	switch {
	case b.forcedTxType != nil:
		return *b.forcedTxType
	case slices.Contains(b.supportedTxTypes, types.DynamicFeeTxType):
		return types.DynamicFeeTxType
	case hasAccessList && slices.Contains(b.supportedTxTypes, types.AccessListTxType):
		return types.AccessListTxType
	default:
		return types.LegacyTxType
	}
}

func (b *TxBuilder) fill(opts *TxOpts) (f txFields, err error) {
	if f.nonce, err = b.chain.PendingNonceAt(b.ctx, opts.from); err != nil {
		return f, fmt.Errorf("failed to get nonce: %w", err)
	}
	if f.gasPrice, err = b.chain.GasPrice(b.ctx); err != nil {
		return f, fmt.Errorf("failed to get gas price: %w", err)
	}
	if f.gas = opts.gasLimit; f.gas != 0 {
		return f, nil
	}
	estimated, err := b.chain.GasLimit(b.ctx, opts)
	if err != nil {
		return f, fmt.Errorf("failed to estimate gas: %w", err)
	}
	f.gas = estimated * (100 + b.gasLimitMarginPercent) / 100
	return f, nil
}
