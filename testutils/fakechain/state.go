package fakechain

import (
	"maps"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type allowanceKey struct {
	owner, spender common.Address
}

// state is the world state of one chain. Transactions execute on a copy,
// which replaces the original only on success.
type state struct {
	eth          map[common.Address]*big.Int
	nonces       map[common.Address]uint64
	impersonated map[common.Address]bool

	tokenBalances map[common.Address]*big.Int
	allowances    map[allowanceKey]*big.Int
	totalSupply   *big.Int

	deposits map[common.Address]*big.Int

	messageNonce *big.Int
	successful   map[common.Hash]bool
}

func newState() *state {
	return &state{
		eth:           make(map[common.Address]*big.Int),
		nonces:        make(map[common.Address]uint64),
		impersonated:  make(map[common.Address]bool),
		tokenBalances: make(map[common.Address]*big.Int),
		allowances:    make(map[allowanceKey]*big.Int),
		totalSupply:   new(big.Int),
		deposits:      make(map[common.Address]*big.Int),
		messageNonce:  new(big.Int),
		successful:    make(map[common.Hash]bool),
	}
}

// big.Int values are never mutated in place, so a shallow copy of each map is enough
func (s *state) clone() *state {
	return &state{
		eth:           maps.Clone(s.eth),
		nonces:        maps.Clone(s.nonces),
		impersonated:  maps.Clone(s.impersonated),
		tokenBalances: maps.Clone(s.tokenBalances),
		allowances:    maps.Clone(s.allowances),
		totalSupply:   s.totalSupply,
		deposits:      maps.Clone(s.deposits),
		messageNonce:  s.messageNonce,
		successful:    maps.Clone(s.successful),
	}
}

func get[K comparable](m map[K]*big.Int, k K) *big.Int {
	if v, ok := m[k]; ok {
		return v
	}
	return new(big.Int)
}

func add[K comparable](m map[K]*big.Int, k K, delta *big.Int) {
	m[k] = new(big.Int).Add(get(m, k), delta)
}

func sub[K comparable](m map[K]*big.Int, k K, delta *big.Int) {
	m[k] = new(big.Int).Sub(get(m, k), delta)
}
