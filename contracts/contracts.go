package contracts

import (
	"github.com/ethereum-optimism/xchain-flashloan/contracts/registry/client"
	"github.com/ethereum-optimism/xchain-flashloan/contracts/registry/empty"
	"github.com/ethereum-optimism/xchain-flashloan/interfaces"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

// NewClientRegistry creates a new Registry that uses the provided client
func NewClientRegistry(c bind.ContractCaller) interfaces.ContractsRegistry {
	return &client.ClientRegistry{Client: c}
}

func NewEmptyRegistry() interfaces.ContractsRegistry {
	return &empty.EmptyRegistry{}
}
