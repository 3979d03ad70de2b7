package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"

	"github.com/ethereum-optimism/xchain-flashloan/config"
	"github.com/ethereum-optimism/xchain-flashloan/types"
)

var (
	ErrUnknownChain    = errors.New("unknown chain")
	ErrChainIDMismatch = errors.New("chain id mismatch")
)

// System is the set of chains the scenario runs against.
type System struct {
	chains  []Chain
	clients *clientManager
}

// NewSystem connects to every configured chain concurrently.
func NewSystem(ctx context.Context, lgr log.Logger, cfgs []config.ChainConfig) (*System, error) {
	clients := newClientManager()
	chains := make([]Chain, len(cfgs))
	g, gctx := errgroup.WithContext(ctx)
	for i, cfg := range cfgs {
		g.Go(func() error {
			c, err := newChain(gctx, lgr, cfg, clients)
			if err != nil {
				return err
			}
			chains[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		clients.Close()
		return nil, err
	}
	sys, err := NewSystemFromChains(chains...)
	if err != nil {
		clients.Close()
		return nil, err
	}
	sys.clients = clients
	return sys, nil
}

// NewSystemFromChains groups existing chains. Names and ids must be unique.
func NewSystemFromChains(chains ...Chain) (*System, error) {
	names := make(map[string]struct{})
	ids := make(map[string]struct{})
	for _, c := range chains {
		if _, ok := names[c.Name()]; ok {
			return nil, fmt.Errorf("duplicate chain name %q", c.Name())
		}
		if _, ok := ids[c.ID().String()]; ok {
			return nil, fmt.Errorf("duplicate chain id %s", c.ID())
		}
		names[c.Name()] = struct{}{}
		ids[c.ID().String()] = struct{}{}
	}
	return &System{chains: chains}, nil
}

func (s *System) Chains() []Chain {
	return s.chains
}

func (s *System) Chain(name string) (Chain, error) {
	for _, c := range s.chains {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownChain, name)
}

func (s *System) ChainByID(id types.ChainID) (Chain, error) {
	for _, c := range s.chains {
		if c.ID().Cmp(id) == 0 {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: id %s", ErrUnknownChain, id)
}

// Close releases the RPC connections opened by NewSystem.
func (s *System) Close() {
	if s.clients != nil {
		s.clients.Close()
	}
}
