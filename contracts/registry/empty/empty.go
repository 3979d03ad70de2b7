package empty

import (
	"github.com/ethereum-optimism/xchain-flashloan/interfaces"
	"github.com/ethereum-optimism/xchain-flashloan/types"
)

// EmptyRegistry represents a registry that returns not found errors for all contract accesses
type EmptyRegistry struct{}

var _ interfaces.ContractsRegistry = (*EmptyRegistry)(nil)

func (r *EmptyRegistry) Pool(address types.Address) (interfaces.Pool, error) {
	return nil, &interfaces.ErrContractNotFound{
		ContractType: "Pool",
		Address:      address,
	}
}

func (r *EmptyRegistry) SuperchainERC20(address types.Address) (interfaces.SuperchainERC20, error) {
	return nil, &interfaces.ErrContractNotFound{
		ContractType: "SuperchainERC20",
		Address:      address,
	}
}

func (r *EmptyRegistry) L2ToL2CrossDomainMessenger(address types.Address) (interfaces.L2ToL2CrossDomainMessenger, error) {
	return nil, &interfaces.ErrContractNotFound{
		ContractType: "L2ToL2CrossDomainMessenger",
		Address:      address,
	}
}
