package system

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/ethereum-optimism/xchain-flashloan/config"
	"github.com/ethereum-optimism/xchain-flashloan/contracts"
	"github.com/ethereum-optimism/xchain-flashloan/interfaces"
	"github.com/ethereum-optimism/xchain-flashloan/types"
)

var _ Chain = (*chain)(nil)

// conn is a dialed endpoint with the ethclient wrapping it.
type conn struct {
	rpc *rpc.Client
	eth *ethclient.Client
}

// clientManager dials each RPC URL once and hands out the shared connection.
type clientManager struct {
	mu    sync.Mutex
	conns map[string]*conn
}

func newClientManager() *clientManager {
	return &clientManager{conns: make(map[string]*conn)}
}

func (m *clientManager) get(ctx context.Context, rpcURL string) (*conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c := m.conns[rpcURL]; c != nil {
		return c, nil
	}
	rc, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}
	c := &conn{rpc: rc, eth: ethclient.NewClient(rc)}
	m.conns[rpcURL] = c
	return c, nil
}

func (m *clientManager) RPC(ctx context.Context, rpcURL string) (*rpc.Client, error) {
	c, err := m.get(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return c.rpc, nil
}

func (m *clientManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.conns {
		c.rpc.Close()
	}
	clear(m.conns)
}

type chain struct {
	name    string
	id      *big.Int
	rpcURL  string
	log     log.Logger
	clients *clientManager

	mu       sync.Mutex
	registry interfaces.ContractsRegistry
}

// newChain dials the chain and discovers its id.
// A non-zero expected id must match what the RPC reports.
func newChain(ctx context.Context, lgr log.Logger, cfg config.ChainConfig, clients *clientManager) (*chain, error) {
	c := &chain{
		name:    cfg.Name,
		rpcURL:  cfg.RPC,
		log:     lgr.New("chain", cfg.Name),
		clients: clients,
	}
	client, err := c.Client()
	if err != nil {
		return nil, err
	}
	id, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id of %s: %w", cfg.Name, err)
	}
	if cfg.ChainID != 0 && id.Uint64() != cfg.ChainID {
		return nil, fmt.Errorf("chain %s: %w: expected %d, got %s", cfg.Name, ErrChainIDMismatch, cfg.ChainID, id)
	}
	c.id = id
	c.log.Debug("Connected to chain", "id", id, "rpc", cfg.RPC)
	return c, nil
}

func (c *chain) Name() string {
	return c.name
}

func (c *chain) ID() types.ChainID {
	return new(big.Int).Set(c.id)
}

func (c *chain) RPCURL() string {
	return c.rpcURL
}

func (c *chain) String() string {
	return fmt.Sprintf("%s(%s)", c.name, c.id)
}

func (c *chain) RPC() (*rpc.Client, error) {
	return c.clients.RPC(context.Background(), c.rpcURL)
}

func (c *chain) Client() (*ethclient.Client, error) {
	cc, err := c.clients.get(context.Background(), c.rpcURL)
	if err != nil {
		return nil, err
	}
	return cc.eth, nil
}

func (c *chain) ContractsRegistry() interfaces.ContractsRegistry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.registry != nil {
		return c.registry
	}
	client, err := c.Client()
	if err != nil {
		return contracts.NewEmptyRegistry()
	}
	c.registry = contracts.NewClientRegistry(client)
	return c.registry
}

func (c *chain) TestClient() TestClient {
	return &anvilClient{chain: c}
}

func (c *chain) GasPrice(ctx context.Context) (*big.Int, error) {
	client, err := c.Client()
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client.SuggestGasPrice(ctx)
}

func (c *chain) GasLimit(ctx context.Context, tx TransactionData) (uint64, error) {
	client, err := c.Client()
	if err != nil {
		return 0, fmt.Errorf("failed to get client: %w", err)
	}
	msg := ethereum.CallMsg{
		From:       tx.From(),
		To:         tx.To(),
		Value:      tx.Value(),
		Data:       tx.Data(),
		AccessList: tx.AccessList(),
	}
	estimated, err := client.EstimateGas(ctx, msg)
	if err != nil {
		return 0, fmt.Errorf("failed to estimate gas: %w", DecodeCallError(err))
	}
	return estimated, nil
}

func (c *chain) PendingNonceAt(ctx context.Context, address common.Address) (uint64, error) {
	client, err := c.Client()
	if err != nil {
		return 0, fmt.Errorf("failed to get client: %w", err)
	}
	return client.PendingNonceAt(ctx, address)
}

// SupportsEIP reports 1559 support from the base fee of the latest header.
func (c *chain) SupportsEIP(ctx context.Context, eip uint64) bool {
	client, err := c.Client()
	if err != nil {
		return false
	}
	switch eip {
	case 1559:
		header, err := client.HeaderByNumber(ctx, nil)
		if err != nil {
			return false
		}
		return header.BaseFee != nil
	}
	return false
}
