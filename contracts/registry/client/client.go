package client

import (
	"fmt"

	"github.com/ethereum-optimism/xchain-flashloan/contracts/bindings"
	"github.com/ethereum-optimism/xchain-flashloan/interfaces"
	"github.com/ethereum-optimism/xchain-flashloan/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
)

// ClientRegistry is a Registry implementation that reads through a contract caller,
// usually an *ethclient.Client
type ClientRegistry struct {
	Client bind.ContractCaller
}

var _ interfaces.ContractsRegistry = (*ClientRegistry)(nil)

func (r *ClientRegistry) Pool(address types.Address) (interfaces.Pool, error) {
	binding, err := bindings.NewPool(address, r.Client)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pool binding: %w", err)
	}
	parsed, err := bindings.PoolMetaData.GetAbi()
	if err != nil {
		return nil, fmt.Errorf("failed to create Pool binding ABI: %w", err)
	}
	return &PoolBinding{
		contractAddress: address,
		binding:         binding,
		abi:             parsed,
	}, nil
}

func (r *ClientRegistry) SuperchainERC20(address types.Address) (interfaces.SuperchainERC20, error) {
	binding, err := bindings.NewSuperchainERC20(address, r.Client)
	if err != nil {
		return nil, fmt.Errorf("failed to create SuperchainERC20 binding: %w", err)
	}
	parsed, err := bindings.SuperchainERC20MetaData.GetAbi()
	if err != nil {
		return nil, fmt.Errorf("failed to create SuperchainERC20 binding ABI: %w", err)
	}
	return &SuperchainERC20Binding{
		contractAddress: address,
		binding:         binding,
		abi:             parsed,
	}, nil
}

func (r *ClientRegistry) L2ToL2CrossDomainMessenger(address types.Address) (interfaces.L2ToL2CrossDomainMessenger, error) {
	binding, err := bindings.NewL2ToL2CrossDomainMessenger(address, r.Client)
	if err != nil {
		return nil, fmt.Errorf("failed to create L2ToL2CrossDomainMessenger binding: %w", err)
	}
	parsed, err := bindings.L2ToL2CrossDomainMessengerMetaData.GetAbi()
	if err != nil {
		return nil, fmt.Errorf("failed to create L2ToL2CrossDomainMessenger binding ABI: %w", err)
	}
	return &L2ToL2CrossDomainMessengerBinding{
		contractAddress: address,
		binding:         binding,
		abi:             parsed,
	}, nil
}

// contractCall is a types.Call that packs a method of a bound ABI.
type contractCall struct {
	to     types.Address
	abi    *abi.ABI
	method string
	args   []any
}

var _ types.Call = (*contractCall)(nil)

func newCall(to types.Address, parsed *abi.ABI, method string, args ...any) *contractCall {
	return &contractCall{to: to, abi: parsed, method: method, args: args}
}

func (c *contractCall) To() (*common.Address, error) {
	return &c.to, nil
}

func (c *contractCall) EncodeInput() ([]byte, error) {
	data, err := c.abi.Pack(c.method, c.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", c.method, err)
	}
	return data, nil
}

func (c *contractCall) AccessList() (coreTypes.AccessList, error) {
	return nil, nil
}

// Method names the ABI method, for labelling the transaction.
func (c *contractCall) Method() string {
	return c.method
}

func (c *contractCall) String() string {
	return fmt.Sprintf("%s@%s", c.method, c.to)
}
