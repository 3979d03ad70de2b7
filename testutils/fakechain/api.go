package fakechain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
)

// callArgs accepts both the "input" and the legacy "data" field, like geth.
type callArgs struct {
	From                 *common.Address       `json:"from"`
	To                   *common.Address       `json:"to"`
	Gas                  *hexutil.Uint64       `json:"gas"`
	GasPrice             *hexutil.Big          `json:"gasPrice"`
	MaxFeePerGas         *hexutil.Big          `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big          `json:"maxPriorityFeePerGas"`
	Value                *hexutil.Big          `json:"value"`
	Nonce                *hexutil.Uint64       `json:"nonce"`
	Data                 *hexutil.Bytes        `json:"data"`
	Input                *hexutil.Bytes        `json:"input"`
	AccessList           *coreTypes.AccessList `json:"accessList"`
}

func (a *callArgs) from() common.Address {
	if a.From == nil {
		return common.Address{}
	}
	return *a.From
}

func (a *callArgs) data() []byte {
	if a.Input != nil {
		return *a.Input
	}
	if a.Data != nil {
		return *a.Data
	}
	return nil
}

func (a *callArgs) value() *big.Int {
	if a.Value == nil {
		return new(big.Int)
	}
	return a.Value.ToInt()
}

func (a *callArgs) accessList() coreTypes.AccessList {
	if a.AccessList == nil {
		return nil
	}
	return *a.AccessList
}

type ethAPI struct {
	c *Chain
}

func (api *ethAPI) lock() func() {
	api.c.net.mu.Lock()
	return api.c.net.mu.Unlock
}

func (api *ethAPI) ChainId() *hexutil.Big {
	return (*hexutil.Big)(api.c.ID())
}

func (api *ethAPI) BlockNumber() hexutil.Uint64 {
	defer api.lock()()
	return hexutil.Uint64(api.c.head().header.Number.Uint64())
}

func (api *ethAPI) GasPrice() *hexutil.Big {
	return (*hexutil.Big)(new(big.Int).Set(baseFee))
}

func (api *ethAPI) MaxPriorityFeePerGas() *hexutil.Big {
	return (*hexutil.Big)(new(big.Int))
}

func (api *ethAPI) GetBalance(addr common.Address, ref *rpc.BlockNumberOrHash) (*hexutil.Big, error) {
	defer api.lock()()
	st, err := api.c.stateAt(ref)
	if err != nil {
		return nil, err
	}
	return (*hexutil.Big)(new(big.Int).Set(get(st.eth, addr))), nil
}

func (api *ethAPI) GetTransactionCount(addr common.Address, ref *rpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	defer api.lock()()
	st, err := api.c.stateAt(ref)
	if err != nil {
		return 0, err
	}
	return hexutil.Uint64(st.nonces[addr]), nil
}

// GetCode reports a placeholder for the emulated contracts, so deployment checks pass.
func (api *ethAPI) GetCode(addr common.Address, ref *rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	cfg := api.c.net.cfg
	switch addr {
	case cfg.Token, cfg.Pool, messengerAddr:
		return hexutil.Bytes{0xfe}, nil
	}
	return hexutil.Bytes{}, nil
}

// GetBlockByNumber returns headers only. Full transaction bodies are not modeled.
func (api *ethAPI) GetBlockByNumber(num rpc.BlockNumber, fullTx bool) (*coreTypes.Header, error) {
	defer api.lock()()
	b, ok := api.c.blockAt(num)
	if !ok {
		return nil, nil
	}
	return b.header, nil
}

func (api *ethAPI) Call(args callArgs, ref *rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	defer api.lock()()
	st, err := api.c.stateAt(ref)
	if err != nil {
		return nil, err
	}
	if args.To == nil {
		return nil, errContractCreate
	}
	_, ret, err := api.c.execute(st, args.from(), *args.To, args.value(), args.data(), args.accessList())
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (api *ethAPI) EstimateGas(args callArgs, ref *rpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	defer api.lock()()
	st, err := api.c.stateAt(ref)
	if err != nil {
		return 0, err
	}
	if args.To == nil {
		return 0, errContractCreate
	}
	if _, _, err := api.c.execute(st, args.from(), *args.To, args.value(), args.data(), args.accessList()); err != nil {
		return 0, err
	}
	return txGas, nil
}

func (api *ethAPI) SendRawTransaction(input hexutil.Bytes) (common.Hash, error) {
	tx := new(coreTypes.Transaction)
	if err := tx.UnmarshalBinary(input); err != nil {
		return common.Hash{}, err
	}
	if tx.Protected() && tx.ChainId().Cmp(api.c.id) != 0 {
		return common.Hash{}, fmt.Errorf("invalid chain id %s, expected %s", tx.ChainId(), api.c.id)
	}
	from, err := coreTypes.Sender(coreTypes.LatestSignerForChainID(api.c.id), tx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid sender: %w", err)
	}
	defer api.lock()()
	if _, err := api.c.applyTx(&txRequest{
		hash:       tx.Hash(),
		txType:     tx.Type(),
		from:       from,
		to:         tx.To(),
		nonce:      tx.Nonce(),
		value:      tx.Value(),
		data:       tx.Data(),
		gas:        tx.Gas(),
		feeCap:     tx.GasFeeCap(),
		accessList: tx.AccessList(),
	}); err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

var errNotImpersonated = errors.New("no such account, impersonate it first")

// SendTransaction only accepts impersonated senders, as there are no unlocked keys.
func (api *ethAPI) SendTransaction(args callArgs) (common.Hash, error) {
	defer api.lock()()
	c := api.c
	if args.From == nil {
		return common.Hash{}, errors.New("missing from")
	}
	from := *args.From
	if !c.st.impersonated[from] {
		return common.Hash{}, fmt.Errorf("%w: %s", errNotImpersonated, from)
	}
	nonce := c.st.nonces[from]
	if args.Nonce != nil {
		nonce = uint64(*args.Nonce)
	}
	gas := uint64(txGas)
	if args.Gas != nil {
		gas = uint64(*args.Gas)
	}
	txType := uint8(coreTypes.DynamicFeeTxType)
	feeCap := args.MaxFeePerGas
	if args.GasPrice != nil {
		txType, feeCap = coreTypes.LegacyTxType, args.GasPrice
	}
	req := &txRequest{
		hash:       crypto.Keccak256Hash(c.id.Bytes(), from.Bytes(), new(big.Int).SetUint64(nonce).Bytes()),
		txType:     txType,
		from:       from,
		to:         args.To,
		nonce:      nonce,
		value:      args.value(),
		data:       args.data(),
		gas:        gas,
		accessList: args.accessList(),
	}
	if feeCap != nil {
		req.feeCap = feeCap.ToInt()
	}
	if _, err := c.applyTx(req); err != nil {
		return common.Hash{}, err
	}
	return req.hash, nil
}

func (api *ethAPI) GetTransactionReceipt(hash common.Hash) (*coreTypes.Receipt, error) {
	defer api.lock()()
	return api.c.receipts[hash], nil
}

type filterArgs struct {
	BlockHash *common.Hash     `json:"blockHash"`
	FromBlock *rpc.BlockNumber `json:"fromBlock"`
	ToBlock   *rpc.BlockNumber `json:"toBlock"`
	Addresses []common.Address `json:"address"`
	Topics    [][]common.Hash  `json:"topics"`
}

func (api *ethAPI) GetLogs(ctx context.Context, args filterArgs) ([]*coreTypes.Log, error) {
	defer api.lock()()
	c := api.c
	var blocks []*block
	if args.BlockHash != nil {
		b, ok := c.blockByHash(*args.BlockHash)
		if !ok {
			return nil, errors.New("unknown block")
		}
		blocks = []*block{b}
	} else {
		head := uint64(len(c.blocks) - 1)
		from, to := uint64(0), head
		if args.FromBlock != nil && *args.FromBlock >= 0 {
			from = uint64(*args.FromBlock)
		} else if args.FromBlock != nil {
			from = head
		}
		if args.ToBlock != nil && *args.ToBlock >= 0 {
			to = min(uint64(*args.ToBlock), head)
		}
		if from > to {
			return []*coreTypes.Log{}, nil
		}
		blocks = c.blocks[from : to+1]
	}
	out := []*coreTypes.Log{}
	for _, b := range blocks {
		for _, r := range b.receipts {
			for _, l := range r.Logs {
				if matchLog(l, args.Addresses, args.Topics) {
					out = append(out, l)
				}
			}
		}
	}
	return out, nil
}

func matchLog(l *coreTypes.Log, addrs []common.Address, topics [][]common.Hash) bool {
	if len(addrs) > 0 {
		found := false
		for _, a := range addrs {
			if a == l.Address {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(topics) > len(l.Topics) {
		return false
	}
	for i, alternatives := range topics {
		if len(alternatives) == 0 {
			continue
		}
		found := false
		for _, topic := range alternatives {
			if topic == l.Topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type anvilAPI struct {
	c *Chain
}

func (api *anvilAPI) SetBalance(addr common.Address, balance hexutil.Big) {
	api.c.net.mu.Lock()
	defer api.c.net.mu.Unlock()
	api.c.st = api.c.st.clone()
	api.c.st.eth[addr] = new(big.Int).Set(balance.ToInt())
}

func (api *anvilAPI) ImpersonateAccount(addr common.Address) {
	api.c.net.mu.Lock()
	defer api.c.net.mu.Unlock()
	api.c.st = api.c.st.clone()
	api.c.st.impersonated[addr] = true
}

func (api *anvilAPI) StopImpersonatingAccount(addr common.Address) {
	api.c.net.mu.Lock()
	defer api.c.net.mu.Unlock()
	api.c.st = api.c.st.clone()
	delete(api.c.st.impersonated, addr)
}

func (api *anvilAPI) Mine(blocks *hexutil.Uint64, interval *hexutil.Uint64) {
	api.c.net.mu.Lock()
	defer api.c.net.mu.Unlock()
	n := uint64(1)
	if blocks != nil {
		n = uint64(*blocks)
	}
	api.c.mineEmpty(n)
}

type evmAPI struct {
	c *Chain
}

func (api *evmAPI) Snapshot() string {
	api.c.net.mu.Lock()
	defer api.c.net.mu.Unlock()
	return api.c.takeSnapshot()
}

func (api *evmAPI) Revert(id string) bool {
	api.c.net.mu.Lock()
	defer api.c.net.mu.Unlock()
	return api.c.revertTo(id)
}
