package fakechain

import (
	"fmt"
	"math/big"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/ethereum-optimism/xchain-flashloan/config"
	"github.com/ethereum-optimism/xchain-flashloan/interop"
)

// AutorelayerAddress is the sender of the relay transactions the network executes by itself.
var AutorelayerAddress = common.HexToAddress("0x00000000000000000000000000000000000a0de1")

type ChainSpec struct {
	Name string
	ID   uint64
}

type Config struct {
	Chains []ChainSpec

	Token         common.Address
	Pool          common.Address
	Minter        common.Address
	FlashBorrower common.Address

	TokenName   string
	TokenSymbol string
	Decimals    uint8

	// Autorelay relays every SentMessage as soon as the initiating block is mined,
	// like supersim with --interop.autorelay.
	Autorelay bool
	// LegacyRelayedEvent emits RelayedMessage without the returnDataHash field.
	LegacyRelayedEvent bool

	GenesisTime uint64
	// Prefund sets the genesis ETH balance of accounts on every chain.
	Prefund map[common.Address]*big.Int
}

// DefaultConfig mirrors the default supersim setup with two L2s.
func DefaultConfig() Config {
	minter := common.HexToAddress("0x3c44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	return Config{
		Chains: []ChainSpec{
			{Name: "supersimL2A", ID: 901},
			{Name: "supersimL2B", ID: 902},
		},
		Token:         common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		Pool:          common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"),
		Minter:        minter,
		FlashBorrower: common.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"),
		TokenName:     "FlashToken",
		TokenSymbol:   "FLT",
		Decimals:      18,
		Autorelay:     true,
		GenesisTime:   1_700_000_000,
		Prefund: map[common.Address]*big.Int{
			minter: new(big.Int).Mul(big.NewInt(10_000), big.NewInt(params.Ether)),
		},
	}
}

// Network emulates a set of interop L2s behind anvil-compatible JSON-RPC endpoints.
// It models the flash-loan token, pool and messenger contracts, not a general EVM.
type Network struct {
	mu  sync.Mutex
	cfg Config
	log log.Logger

	chains []*Chain

	failCallback atomic.Bool
	autorelay    atomic.Bool

	relaying      bool
	relayQueue    []*interop.SentMessage
	autorelayErrs []error
}

func New(lgr log.Logger, cfg Config) *Network {
	n := &Network{cfg: cfg, log: lgr}
	n.autorelay.Store(cfg.Autorelay)
	for _, spec := range cfg.Chains {
		n.chains = append(n.chains, newChain(n, spec))
	}
	return n
}

// Start serves every chain on a local HTTP endpoint.
func (n *Network) Start() error {
	for _, c := range n.chains {
		srv := rpc.NewServer()
		services := map[string]any{
			"eth":   &ethAPI{c: c},
			"anvil": &anvilAPI{c: c},
			"evm":   &evmAPI{c: c},
		}
		for namespace, service := range services {
			if err := srv.RegisterName(namespace, service); err != nil {
				n.Close()
				return fmt.Errorf("failed to register %s API on %s: %w", namespace, c.name, err)
			}
		}
		c.rpc = srv
		c.server = httptest.NewServer(srv)
		n.log.Info("Started fake chain", "chain", c.name, "id", c.id, "url", c.server.URL)
	}
	return nil
}

func (n *Network) Close() {
	for _, c := range n.chains {
		if c.server != nil {
			c.server.Close()
			c.server = nil
		}
		if c.rpc != nil {
			c.rpc.Stop()
			c.rpc = nil
		}
	}
}

func (n *Network) Chains() []*Chain {
	return n.chains
}

func (n *Network) Chain(name string) *Chain {
	for _, c := range n.chains {
		if c.name == name {
			return c
		}
	}
	return nil
}

// ChainConfigs describes the running chains for the system package.
func (n *Network) ChainConfigs() []config.ChainConfig {
	out := make([]config.ChainConfig, 0, len(n.chains))
	for _, c := range n.chains {
		out = append(out, config.ChainConfig{Name: c.name, RPC: c.URL(), ChainID: c.id.Uint64()})
	}
	return out
}

// Contracts returns the emulated contract addresses.
func (n *Network) Contracts() config.Contracts {
	return config.Contracts{
		Token:         n.cfg.Token,
		Pool:          n.cfg.Pool,
		Minter:        n.cfg.Minter,
		FlashBorrower: n.cfg.FlashBorrower,
	}
}

// SetFailCallback makes the borrower callback fail on every chain.
func (n *Network) SetFailCallback(fail bool) {
	n.failCallback.Store(fail)
}

func (n *Network) SetAutorelay(enabled bool) {
	n.autorelay.Store(enabled)
}

// AutorelayErrors returns the relays the network attempted and failed.
func (n *Network) AutorelayErrors() []error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]error(nil), n.autorelayErrs...)
}

func (n *Network) chainByID(id *big.Int) (*Chain, bool) {
	for _, c := range n.chains {
		if c.id.Cmp(id) == 0 {
			return c, true
		}
	}
	return nil, false
}

// onMined queues the messages a successful transaction sent, when autorelay is on.
// Relays run in the order the messages were sent, after the initiating transaction.
func (n *Network) onMined(c *Chain, receipt *coreTypes.Receipt) {
	if !n.autorelay.Load() {
		return
	}
	msgs, err := interop.SentMessagesFromReceipt(receipt, c.id, c.head().header.Time)
	if err != nil {
		n.autorelayErrs = append(n.autorelayErrs, err)
		return
	}
	n.relayQueue = append(n.relayQueue, msgs...)
	if n.relaying {
		return
	}
	n.relaying = true
	defer func() { n.relaying = false }()
	for len(n.relayQueue) > 0 {
		msg := n.relayQueue[0]
		n.relayQueue = n.relayQueue[1:]
		if err := n.relay(msg); err != nil {
			n.log.Warn("Autorelay failed", "msg", msg.MessageHash, "err", err)
			n.autorelayErrs = append(n.autorelayErrs, err)
		}
	}
}

func (n *Network) relay(msg *interop.SentMessage) error {
	dest, ok := n.chainByID(msg.Destination)
	if !ok {
		return fmt.Errorf("no chain %s for %s", msg.Destination, msg)
	}
	call := interop.NewRelayCall(msg)
	input, err := call.EncodeInput()
	if err != nil {
		return err
	}
	al, err := call.AccessList()
	if err != nil {
		return err
	}
	to := messengerAddr
	receipt, err := dest.applyTx(&txRequest{
		hash:       crypto.Keccak256Hash(dest.id.Bytes(), msg.MessageHash.Bytes(), []byte("autorelay")),
		txType:     coreTypes.DynamicFeeTxType,
		from:       AutorelayerAddress,
		to:         &to,
		gas:        txGas,
		data:       input,
		accessList: al,
		system:     true,
	})
	if err != nil {
		return err
	}
	if receipt.Status != coreTypes.ReceiptStatusSuccessful {
		return fmt.Errorf("relay of %s reverted in tx %s", msg, receipt.TxHash)
	}
	return nil
}

// Inspection helpers for tests. They read the latest state.

func (c *Chain) TokenBalance(addr common.Address) *big.Int {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	return new(big.Int).Set(get(c.st.tokenBalances, addr))
}

func (c *Chain) Deposit(addr common.Address) *big.Int {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	return new(big.Int).Set(get(c.st.deposits, addr))
}

func (c *Chain) ETHBalance(addr common.Address) *big.Int {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	return new(big.Int).Set(get(c.st.eth, addr))
}

func (c *Chain) Relayed(msgHash common.Hash) bool {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	return c.st.successful[msgHash]
}

func (c *Chain) BlockNumber() uint64 {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	return c.head().header.Number.Uint64()
}

// SetTokenBalance overrides a token balance, adjusting the total supply.
func (c *Chain) SetTokenBalance(addr common.Address, amount *big.Int) {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	c.st = c.st.clone()
	prev := get(c.st.tokenBalances, addr)
	c.st.totalSupply = new(big.Int).Add(c.st.totalSupply, new(big.Int).Sub(amount, prev))
	c.st.tokenBalances[addr] = new(big.Int).Set(amount)
}
