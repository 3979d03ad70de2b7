package empty

import (
	"testing"

	"github.com/ethereum-optimism/xchain-flashloan/interfaces"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestEmptyRegistry(t *testing.T) {
	reg := &EmptyRegistry{}
	addr := common.HexToAddress("0x1234")

	_, err := reg.Pool(addr)
	var notFound *interfaces.ErrContractNotFound
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "Pool", notFound.ContractType)
	require.Equal(t, addr, notFound.Address)

	_, err = reg.SuperchainERC20(addr)
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "SuperchainERC20", notFound.ContractType)

	_, err = reg.L2ToL2CrossDomainMessenger(addr)
	require.ErrorAs(t, err, &notFound)
	require.ErrorContains(t, err, "L2ToL2CrossDomainMessenger contract not found at")
}
