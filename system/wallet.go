package system

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/xchain-flashloan/metrics"
	"github.com/ethereum-optimism/xchain-flashloan/types"
)

var (
	_ Wallet               = (*wallet)(nil)
	_ TransactionProcessor = (*wallet)(nil)
	_ Wallet               = (*impersonatedWallet)(nil)
)

// sender submits a transaction and returns its hash
type sender interface {
	sendTx(ctx context.Context, opts *TxOpts) (common.Hash, error)
}

type walletBase struct {
	address types.Address
	chain   Chain
	log     log.Logger
	m       metrics.Metricer
}

func newWalletBase(addr types.Address, chain Chain, lgr log.Logger, m metrics.Metricer) walletBase {
	if m == nil {
		m = metrics.NoopMetrics{}
	}
	return walletBase{address: addr, chain: chain, log: lgr, m: m}
}

func (w *walletBase) Address() types.Address {
	return w.address
}

func (w *walletBase) Chain() Chain {
	return w.chain
}

func (w *walletBase) Balance(ctx context.Context) (types.Balance, error) {
	client, err := w.chain.Client()
	if err != nil {
		return types.Balance{}, err
	}
	balance, err := client.BalanceAt(ctx, w.address, nil)
	if err != nil {
		return types.Balance{}, fmt.Errorf("failed to get balance of %s: %w", w.address, err)
	}
	return types.NewBalance(balance), nil
}

func (w *walletBase) transact(s sender, call types.Call) types.WriteInvocation[[]byte] {
	return &transactImpl{wallet: w, sender: s, call: call}
}

// wallet signs locally with its private key
type wallet struct {
	walletBase
	privateKey types.Key
}

// NewWallet creates a wallet that signs with key on chain.
func NewWallet(key types.Key, chain Chain, lgr log.Logger, m metrics.Metricer) *wallet {
	addr := crypto.PubkeyToAddress(key.PublicKey)
	return &wallet{
		walletBase: newWalletBase(addr, chain, lgr.New("chain", chain.Name(), "from", addr), m),
		privateKey: key,
	}
}

func (w *wallet) PrivateKey() types.Key {
	return w.privateKey
}

func (w *wallet) Transact(call types.Call) types.WriteInvocation[[]byte] {
	return w.transact(w, call)
}

func (w *wallet) sendTx(ctx context.Context, opts *TxOpts) (common.Hash, error) {
	builder := NewTxBuilder(ctx, w.chain, WithBuilderLogger(w.log))
	tx, err := builder.BuildTx(
		WithFrom(opts.from),
		WithTo(*opts.to),
		WithValue(opts.value),
		WithData(opts.data),
		WithAccessList(opts.accessList),
		WithGasLimit(opts.gasLimit),
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to build transaction: %w", err)
	}
	tx, err = w.Sign(tx)
	if err != nil {
		return common.Hash{}, err
	}
	if err := w.Send(ctx, tx); err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

func (w *wallet) Sign(tx Transaction) (Transaction, error) {
	var signer coreTypes.Signer
	switch tx.Type() {
	case coreTypes.DynamicFeeTxType:
		signer = coreTypes.NewLondonSigner(w.chain.ID())
	case coreTypes.AccessListTxType:
		signer = coreTypes.NewEIP2930Signer(w.chain.ID())
	default:
		signer = coreTypes.NewEIP155Signer(w.chain.ID())
	}

	if rt, ok := tx.(RawTransaction); ok {
		signedTx, err := coreTypes.SignTx(rt.Raw(), signer, w.privateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to sign transaction: %w", err)
		}
		return &EthTx{
			tx:     signedTx,
			from:   tx.From(),
			txType: tx.Type(),
		}, nil
	}
	return nil, fmt.Errorf("transaction does not support signing")
}

func (w *wallet) Send(ctx context.Context, tx Transaction) error {
	if st, ok := tx.(RawTransaction); ok {
		client, err := w.chain.Client()
		if err != nil {
			return fmt.Errorf("failed to get client: %w", err)
		}
		if err := client.SendTransaction(ctx, st.Raw()); err != nil {
			return fmt.Errorf("failed to send transaction: %w", DecodeCallError(err))
		}
		return nil
	}
	return fmt.Errorf("transaction is not signed")
}

// impersonatedWallet has the node sign with eth_sendTransaction.
// The account must be impersonated on the chain first.
type impersonatedWallet struct {
	walletBase
}

// NewImpersonatedWallet creates a wallet for an account the node signs for.
func NewImpersonatedWallet(addr types.Address, chain Chain, lgr log.Logger, m metrics.Metricer) *impersonatedWallet {
	return &impersonatedWallet{
		walletBase: newWalletBase(addr, chain, lgr.New("chain", chain.Name(), "from", addr, "impersonated", true), m),
	}
}

func (w *impersonatedWallet) Transact(call types.Call) types.WriteInvocation[[]byte] {
	return w.transact(w, call)
}

type sendTxArgs struct {
	From       common.Address        `json:"from"`
	To         *common.Address       `json:"to"`
	Gas        hexutil.Uint64        `json:"gas"`
	Value      *hexutil.Big          `json:"value"`
	Data       hexutil.Bytes         `json:"data"`
	AccessList *coreTypes.AccessList `json:"accessList,omitempty"`
}

func (w *impersonatedWallet) sendTx(ctx context.Context, opts *TxOpts) (common.Hash, error) {
	gas := opts.gasLimit
	if gas == 0 {
		estimated, err := w.chain.GasLimit(ctx, opts)
		if err != nil {
			return common.Hash{}, err
		}
		gas = estimated * (100 + DefaultGasLimitMarginPercent) / 100
	}
	args := sendTxArgs{
		From:  opts.from,
		To:    opts.to,
		Gas:   hexutil.Uint64(gas),
		Value: (*hexutil.Big)(opts.value),
		Data:  opts.data,
	}
	if len(opts.accessList) > 0 {
		args.AccessList = &opts.accessList
	}
	client, err := w.chain.RPC()
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get rpc client: %w", err)
	}
	var hash common.Hash
	if err := client.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", DecodeCallError(err))
	}
	return hash, nil
}

// methodNamer is implemented by calls that know their ABI method
type methodNamer interface {
	Method() string
}

type transactImpl struct {
	wallet *walletBase
	sender sender
	call   types.Call
}

func (i *transactImpl) op() string {
	if m, ok := i.call.(methodNamer); ok {
		return m.Method()
	}
	return "call"
}

func (i *transactImpl) txOpts() (*TxOpts, error) {
	to, err := i.call.To()
	if err != nil {
		return nil, fmt.Errorf("failed to get call target: %w", err)
	}
	if to == nil {
		return nil, fmt.Errorf("call has no target")
	}
	data, err := i.call.EncodeInput()
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %w", err)
	}
	accessList, err := i.call.AccessList()
	if err != nil {
		return nil, fmt.Errorf("failed to get access list: %w", err)
	}
	return NewTxOpts(
		WithFrom(i.wallet.address),
		WithTo(*to),
		WithValue(new(big.Int)),
		WithData(data),
		WithAccessList(accessList),
	), nil
}

func callMsg(opts *TxOpts) ethereum.CallMsg {
	return ethereum.CallMsg{
		From:       opts.from,
		To:         opts.to,
		Value:      opts.value,
		Data:       opts.data,
		AccessList: opts.accessList,
	}
}

// Call simulates the transaction on the latest state.
func (i *transactImpl) Call(ctx context.Context) ([]byte, error) {
	opts, err := i.txOpts()
	if err != nil {
		return nil, err
	}
	client, err := i.wallet.chain.Client()
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	out, err := client.CallContract(ctx, callMsg(opts), nil)
	if err != nil {
		return nil, fmt.Errorf("simulating %s on %s: %w", i.op(), i.wallet.chain.Name(), DecodeCallError(err))
	}
	return out, nil
}

func (i *transactImpl) Send(ctx context.Context) types.InvocationResult {
	onDone := i.wallet.m.RecordTx(i.wallet.chain.ID(), i.op())
	res := &sendResult{chain: i.wallet.chain, log: i.wallet.log, op: i.op(), onDone: onDone}
	opts, err := i.txOpts()
	if err != nil {
		res.done(err)
		return res
	}
	res.msg = callMsg(opts)
	hash, err := i.sender.sendTx(ctx, opts)
	if err != nil {
		res.done(err)
		return res
	}
	res.hash = hash
	i.wallet.log.Debug("Sent transaction", "op", res.op, "tx", hash)
	return res
}

type sendResult struct {
	chain  Chain
	log    log.Logger
	op     string
	msg    ethereum.CallMsg
	hash   common.Hash
	onDone func(error)

	mu      sync.Mutex
	once    sync.Once
	receipt *coreTypes.Receipt
	err     error
}

var _ types.InvocationResult = (*sendResult)(nil)

func (r *sendResult) done(err error) {
	r.mu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.mu.Unlock()
	r.once.Do(func() { r.onDone(err) })
}

func (r *sendResult) Error() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Wait blocks until the receipt is in. A reverted transaction fails with ErrTxFailed,
// wrapping the decoded revert when it can be recovered.
func (r *sendResult) Wait(ctx context.Context) error {
	if err := r.Error(); err != nil {
		return err
	}
	client, err := r.chain.Client()
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}
	start := time.Now()
	receipt, err := WaitForReceipt(ctx, client, r.hash, DefaultReceiptPollInterval)
	if err != nil {
		r.done(err)
		return err
	}
	r.mu.Lock()
	r.receipt = receipt
	r.mu.Unlock()
	if receipt.Status != coreTypes.ReceiptStatusSuccessful {
		err := fmt.Errorf("%w: %s %s on %s", ErrTxFailed, r.op, r.hash, r.chain.Name())
		if reason := replayFailure(ctx, client, r.msg, receipt); reason != nil {
			err = fmt.Errorf("%w: %w", err, reason)
		}
		r.log.Warn("Transaction failed", "op", r.op, "tx", r.hash, "block", receipt.BlockNumber, "err", err)
		r.done(err)
		return err
	}
	r.log.Debug("Transaction included", "op", r.op, "tx", r.hash, "block", receipt.BlockNumber, "gasUsed", receipt.GasUsed, "elapsed", time.Since(start))
	r.done(nil)
	return nil
}

// Info returns the *types.Receipt once Wait succeeded or the tx reverted.
func (r *sendResult) Info() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.receipt
}

func (r *sendResult) TxHash() common.Hash {
	return r.hash
}

// ReceiptOf returns the receipt of a waited-for invocation result.
func ReceiptOf(res types.InvocationResult) (*coreTypes.Receipt, bool) {
	receipt, ok := res.Info().(*coreTypes.Receipt)
	return receipt, ok && receipt != nil
}

// SendAndWait sends the invocation and waits for its receipt.
func SendAndWait(ctx context.Context, inv types.WriteInvocation[[]byte]) (*coreTypes.Receipt, error) {
	res := inv.Send(ctx)
	if err := res.Wait(ctx); err != nil {
		return nil, err
	}
	receipt, ok := ReceiptOf(res)
	if !ok {
		return nil, fmt.Errorf("no receipt after wait")
	}
	return receipt, nil
}
