package fakechain

import (
	"errors"
	"fmt"
	"math/big"
	"net/http/httptest"

	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/ethereum-optimism/xchain-flashloan/interop"
)

const (
	blockTime     = 2
	blockGasLimit = 30_000_000
	// gas reported by eth_estimateGas and charged per transaction
	txGas = 100_000
)

var baseFee = big.NewInt(params.GWei)

type block struct {
	header   *coreTypes.Header
	receipts []*coreTypes.Receipt
	// st is the state after the block, never mutated once sealed
	st *state
}

type snapshot struct {
	st     *state
	blocks int
}

// Chain is one emulated L2. All methods must be called with the network lock held,
// except the exported inspection helpers.
type Chain struct {
	net  *Network
	log  log.Logger
	name string
	id   *big.Int

	st        *state
	blocks    []*block
	receipts  map[common.Hash]*coreTypes.Receipt
	snapshots map[string]snapshot
	snapID    uint64

	rpc    *rpc.Server
	server *httptest.Server
}

func newChain(n *Network, spec ChainSpec) *Chain {
	c := &Chain{
		net:       n,
		log:       n.log.New("chain", spec.Name),
		name:      spec.Name,
		id:        new(big.Int).SetUint64(spec.ID),
		st:        newState(),
		receipts:  make(map[common.Hash]*coreTypes.Receipt),
		snapshots: make(map[string]snapshot),
	}
	for addr, bal := range n.cfg.Prefund {
		c.st.eth[addr] = new(big.Int).Set(bal)
	}
	genesis := &coreTypes.Header{
		ParentHash:  common.Hash{},
		UncleHash:   coreTypes.EmptyUncleHash,
		Root:        crypto.Keccak256Hash(c.id.Bytes()),
		TxHash:      coreTypes.EmptyTxsHash,
		ReceiptHash: coreTypes.EmptyReceiptsHash,
		Difficulty:  new(big.Int),
		Number:      new(big.Int),
		GasLimit:    blockGasLimit,
		Time:        n.cfg.GenesisTime,
		Extra:       []byte{},
		BaseFee:     baseFee,
	}
	c.blocks = []*block{{header: genesis, st: c.st}}
	c.st = c.st.clone()
	return c
}

func (c *Chain) Name() string {
	return c.name
}

func (c *Chain) ID() *big.Int {
	return new(big.Int).Set(c.id)
}

// URL is the HTTP RPC endpoint, available once the network started.
func (c *Chain) URL() string {
	if c.server == nil {
		panic("fakechain not started")
	}
	return c.server.URL
}

func (c *Chain) head() *block {
	return c.blocks[len(c.blocks)-1]
}

func (c *Chain) blockByHash(hash common.Hash) (*block, bool) {
	for _, b := range c.blocks {
		if b.header.Hash() == hash {
			return b, true
		}
	}
	return nil, false
}

// stateAt returns the state a call at the given block executes on.
// Latest and pending read the working state, which includes cheat code changes.
func (c *Chain) stateAt(ref *rpc.BlockNumberOrHash) (*state, error) {
	if ref == nil {
		return c.st, nil
	}
	if hash, ok := ref.Hash(); ok {
		b, ok := c.blockByHash(hash)
		if !ok {
			return nil, fmt.Errorf("header for hash %s not found", hash)
		}
		return b.st, nil
	}
	num, _ := ref.Number()
	if num < 0 {
		return c.st, nil
	}
	b, ok := c.blockAt(num)
	if !ok {
		return nil, errors.New("header not found")
	}
	return b.st, nil
}

func (c *Chain) blockAt(num rpc.BlockNumber) (*block, bool) {
	if num < 0 {
		return c.head(), true
	}
	if int(num) >= len(c.blocks) {
		return nil, false
	}
	return c.blocks[num], true
}

// execute runs a call on a copy of base and returns the resulting state and logs.
func (c *Chain) execute(base *state, from common.Address, to common.Address, value *big.Int, input []byte, al coreTypes.AccessList) (*frame, []byte, error) {
	f := &frame{
		net:        c.net,
		chain:      c,
		st:         base.clone(),
		origin:     from,
		accessList: al,
	}
	if value != nil && value.Sign() > 0 {
		if get(f.st.eth, from).Cmp(value) < 0 {
			return nil, nil, errors.New("insufficient funds for transfer")
		}
		sub(f.st.eth, from, value)
		add(f.st.eth, to, value)
	}
	ret, err := f.call(from, to, input)
	return f, ret, err
}

type txRequest struct {
	hash       common.Hash
	txType     uint8
	from       common.Address
	to         *common.Address
	nonce      uint64
	value      *big.Int
	data       []byte
	gas        uint64
	feeCap     *big.Int
	accessList coreTypes.AccessList
	// system transactions skip nonce and fee accounting, like deposits
	system bool
}

var (
	errNonceTooLow    = errors.New("nonce too low")
	errNonceTooHigh   = errors.New("nonce too high")
	errFeeCapTooLow   = errors.New("max fee per gas less than block base fee")
	errInsufficient   = errors.New("insufficient funds for gas * price + value")
	errContractCreate = errors.New("contract creation is not supported")
	errIntrinsicGas   = errors.New("intrinsic gas too low")
)

// applyTx validates and mines a transaction in its own block.
// A reverted transaction is mined with a failed receipt.
func (c *Chain) applyTx(req *txRequest) (*coreTypes.Receipt, error) {
	if req.to == nil {
		return nil, errContractCreate
	}
	base := c.st.clone()
	if !req.system {
		expected := base.nonces[req.from]
		if req.nonce < expected {
			return nil, fmt.Errorf("%w: address %s, tx: %d state: %d", errNonceTooLow, req.from, req.nonce, expected)
		} else if req.nonce > expected {
			return nil, fmt.Errorf("%w: address %s, tx: %d state: %d", errNonceTooHigh, req.from, req.nonce, expected)
		}
		if req.gas < 21_000 {
			return nil, errIntrinsicGas
		}
		if req.feeCap != nil && req.feeCap.Cmp(baseFee) < 0 {
			return nil, errFeeCapTooLow
		}
		maxCost := new(big.Int).Mul(new(big.Int).SetUint64(req.gas), baseFee)
		if req.value != nil {
			maxCost.Add(maxCost, req.value)
		}
		if get(base.eth, req.from).Cmp(maxCost) < 0 {
			return nil, fmt.Errorf("%w: address %s have %s want %s", errInsufficient, req.from, get(base.eth, req.from), maxCost)
		}
		base.nonces[req.from] = expected + 1
		sub(base.eth, req.from, new(big.Int).Mul(new(big.Int).SetUint64(min(req.gas, txGas)), baseFee))
	}

	f, _, err := c.execute(base, req.from, *req.to, req.value, req.data, req.accessList)
	status := coreTypes.ReceiptStatusSuccessful
	var logs []*coreTypes.Log
	if err != nil {
		c.log.Debug("Transaction reverted", "tx", req.hash, "from", req.from, "err", err)
		status = coreTypes.ReceiptStatusFailed
		c.st = base
	} else {
		c.st = f.st
		logs = f.logs
	}
	receipt := c.mine(req, status, logs)
	if status == coreTypes.ReceiptStatusSuccessful {
		c.net.onMined(c, receipt)
	}
	return receipt, nil
}

// mine seals a block holding a single transaction.
func (c *Chain) mine(req *txRequest, status uint64, logs []*coreTypes.Log) *coreTypes.Receipt {
	parent := c.head().header
	gasUsed := min(req.gas, txGas)
	if req.system {
		gasUsed = txGas
	}
	receipt := &coreTypes.Receipt{
		Type:              req.txType,
		Status:            status,
		CumulativeGasUsed: gasUsed,
		Logs:              logs,
		TxHash:            req.hash,
		GasUsed:           gasUsed,
		EffectiveGasPrice: baseFee,
		TransactionIndex:  0,
	}
	if receipt.Logs == nil {
		receipt.Logs = []*coreTypes.Log{}
	}
	for _, l := range receipt.Logs {
		receipt.Bloom.Add(l.Address.Bytes())
		for _, topic := range l.Topics {
			receipt.Bloom.Add(topic.Bytes())
		}
	}
	header := &coreTypes.Header{
		ParentHash:  parent.Hash(),
		UncleHash:   coreTypes.EmptyUncleHash,
		Root:        crypto.Keccak256Hash(parent.Root.Bytes(), req.hash.Bytes()),
		TxHash:      crypto.Keccak256Hash(req.hash.Bytes()),
		ReceiptHash: crypto.Keccak256Hash(req.hash.Bytes(), []byte{byte(status)}),
		Bloom:       receipt.Bloom,
		Difficulty:  new(big.Int),
		Number:      new(big.Int).Add(parent.Number, common.Big1),
		GasLimit:    blockGasLimit,
		GasUsed:     gasUsed,
		Time:        parent.Time + blockTime,
		Extra:       []byte{},
		BaseFee:     baseFee,
	}
	blockHash := header.Hash()
	receipt.BlockHash = blockHash
	receipt.BlockNumber = header.Number
	for i, l := range receipt.Logs {
		l.BlockNumber = header.Number.Uint64()
		l.BlockHash = blockHash
		l.TxHash = req.hash
		l.TxIndex = 0
		l.Index = uint(i)
	}
	c.blocks = append(c.blocks, &block{header: header, receipts: []*coreTypes.Receipt{receipt}, st: c.st})
	c.st = c.st.clone()
	c.receipts[req.hash] = receipt
	return receipt
}

// mineEmpty seals blocks without transactions.
func (c *Chain) mineEmpty(n uint64) {
	for range n {
		parent := c.head().header
		header := &coreTypes.Header{
			ParentHash:  parent.Hash(),
			UncleHash:   coreTypes.EmptyUncleHash,
			Root:        parent.Root,
			TxHash:      coreTypes.EmptyTxsHash,
			ReceiptHash: coreTypes.EmptyReceiptsHash,
			Difficulty:  new(big.Int),
			Number:      new(big.Int).Add(parent.Number, common.Big1),
			GasLimit:    blockGasLimit,
			Time:        parent.Time + blockTime,
			Extra:       []byte{},
			BaseFee:     baseFee,
		}
		c.blocks = append(c.blocks, &block{header: header, st: c.st})
		c.st = c.st.clone()
	}
}

// initiatingMessage looks up the SentMessage log an identifier points at,
// and checks it against the relayed payload.
func (c *Chain) initiatingMessage(id interop.Identifier, payload []byte) (*interop.SentMessage, bool) {
	if id.BlockNumber >= uint64(len(c.blocks)) {
		return nil, false
	}
	b := c.blocks[id.BlockNumber]
	if b.header.Time != id.Timestamp {
		return nil, false
	}
	for _, r := range b.receipts {
		for _, l := range r.Logs {
			if l.Index != uint(id.LogIndex) || l.Address != id.Origin {
				continue
			}
			if crypto.Keccak256Hash(interop.LogToMessagePayload(l)) != crypto.Keccak256Hash(payload) {
				return nil, false
			}
			msg, err := interop.SentMessageFromLog(l, c.id, b.header.Time)
			if err != nil {
				return nil, false
			}
			return msg, true
		}
	}
	return nil, false
}

func (c *Chain) takeSnapshot() string {
	c.snapID++
	id := fmt.Sprintf("0x%x", c.snapID)
	c.snapshots[id] = snapshot{st: c.st.clone(), blocks: len(c.blocks)}
	return id
}

// revertTo restores a snapshot. Like anvil, later snapshots are dropped with it.
func (c *Chain) revertTo(id string) bool {
	snap, ok := c.snapshots[id]
	if !ok {
		return false
	}
	for _, b := range c.blocks[snap.blocks:] {
		for _, r := range b.receipts {
			delete(c.receipts, r.TxHash)
		}
	}
	c.blocks = c.blocks[:snap.blocks]
	c.st = snap.st.clone()
	for other, s := range c.snapshots {
		if s.blocks >= snap.blocks {
			delete(c.snapshots, other)
		}
	}
	return true
}
