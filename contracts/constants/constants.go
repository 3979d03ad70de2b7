package constants

import (
	"github.com/ethereum-optimism/xchain-flashloan/types"
	"github.com/ethereum/go-ethereum/common"
)

// Interop predeploys present on every supersim L2.
var (
	CrossL2Inbox               types.Address = common.HexToAddress("0x4200000000000000000000000000000000000022")
	L2ToL2CrossDomainMessenger types.Address = common.HexToAddress("0x4200000000000000000000000000000000000023")
	SuperchainETHBridge        types.Address = common.HexToAddress("0x4200000000000000000000000000000000000024")
	ETHLiquidity               types.Address = common.HexToAddress("0x4200000000000000000000000000000000000025")
	SuperchainTokenBridge      types.Address = common.HexToAddress("0x4200000000000000000000000000000000000028")
)

const (
	ETH  = 1e18
	Gwei = 1e9
)

// Amounts used by the flash-loan scenario, in whole units.
const (
	DefaultFundETH       = "1000"
	DefaultDepositTokens = "1000"
	DefaultLoanTokens    = "1000"
)
