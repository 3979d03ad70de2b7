package client

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum-optimism/xchain-flashloan/contracts/bindings"
	"github.com/ethereum-optimism/xchain-flashloan/contracts/constants"
	"github.com/ethereum-optimism/xchain-flashloan/interfaces"
	"github.com/ethereum-optimism/xchain-flashloan/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockCaller implements bind.ContractCaller for testing
type mockCaller struct {
	mock.Mock
}

var _ bind.ContractCaller = (*mockCaller)(nil)

func (m *mockCaller) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(ctx, contract, blockNumber)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(ctx, call, blockNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func calldataFor(t *testing.T, method string, args ...any) []byte {
	parsed, err := bindings.PoolMetaData.GetAbi()
	require.NoError(t, err)
	data, err := parsed.Pack(method, args...)
	require.NoError(t, err)
	return data
}

func TestPoolBinding_Reads(t *testing.T) {
	poolAddr := common.HexToAddress("0x1001")
	tokenAddr := common.HexToAddress("0x2002")
	account := common.HexToAddress("0x3003")
	parsed, err := bindings.PoolMetaData.GetAbi()
	require.NoError(t, err)

	caller := new(mockCaller)
	expectCall := func(input []byte, output []byte) {
		caller.On("CallContract", mock.Anything, mock.MatchedBy(func(msg ethereum.CallMsg) bool {
			return msg.To != nil && *msg.To == poolAddr && string(msg.Data) == string(input)
		}), mock.Anything).Return(output, nil).Once()
	}

	tokenOut, err := parsed.Methods["token"].Outputs.Pack(tokenAddr)
	require.NoError(t, err)
	expectCall(calldataFor(t, "token"), tokenOut)

	maxOut, err := parsed.Methods["maxFlashLoan"].Outputs.Pack(big.NewInt(5000))
	require.NoError(t, err)
	expectCall(calldataFor(t, "maxFlashLoan"), maxOut)

	depOut, err := parsed.Methods["depositsOf"].Outputs.Pack(big.NewInt(1000))
	require.NoError(t, err)
	expectCall(calldataFor(t, "depositsOf", account), depOut)

	feeOut, err := parsed.Methods["flashFee"].Outputs.Pack(big.NewInt(3))
	require.NoError(t, err)
	expectCall(calldataFor(t, "flashFee", big.NewInt(1000)), feeOut)

	msgrOut, err := parsed.Methods["CROSS_DOMAIN_MESSENGER"].Outputs.Pack(constants.L2ToL2CrossDomainMessenger)
	require.NoError(t, err)
	expectCall(calldataFor(t, "CROSS_DOMAIN_MESSENGER"), msgrOut)

	reg := &ClientRegistry{Client: caller}
	pool, err := reg.Pool(poolAddr)
	require.NoError(t, err)
	require.Equal(t, poolAddr, pool.Address())

	ctx := context.Background()
	gotToken, err := pool.Token().Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, tokenAddr, gotToken)

	gotMax, err := pool.MaxFlashLoan().Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5000", gotMax.String())

	gotDeposits, err := pool.DepositsOf(account).Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1000", gotDeposits.String())

	gotFee, err := pool.FlashFee(types.BalanceFromUint64(1000)).Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3", gotFee.String())

	gotMsgr, err := pool.CrossDomainMessenger().Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, constants.L2ToL2CrossDomainMessenger, gotMsgr)

	caller.AssertExpectations(t)
}

func TestPoolBinding_Calls(t *testing.T) {
	poolAddr := common.HexToAddress("0x1001")
	borrower := common.HexToAddress("0x4004")
	reg := &ClientRegistry{Client: new(mockCaller)}
	pool, err := reg.Pool(poolAddr)
	require.NoError(t, err)

	amount := types.MustParseUnits("1000", 18)
	call := pool.FlashLoan(borrower, amount, big.NewInt(902))

	to, err := call.To()
	require.NoError(t, err)
	require.Equal(t, poolAddr, *to)

	input, err := call.EncodeInput()
	require.NoError(t, err)
	require.Equal(t, calldataFor(t, "flashLoan", borrower, amount.Big(), big.NewInt(902)), input)

	al, err := call.AccessList()
	require.NoError(t, err)
	require.Nil(t, al)

	input, err = pool.Deposit(amount).EncodeInput()
	require.NoError(t, err)
	require.Equal(t, calldataFor(t, "deposit", amount.Big()), input)
}

func TestSuperchainERC20Binding_Calls(t *testing.T) {
	tokenAddr := common.HexToAddress("0x2002")
	spender := common.HexToAddress("0x1001")
	reg := &ClientRegistry{Client: new(mockCaller)}
	token, err := reg.SuperchainERC20(tokenAddr)
	require.NoError(t, err)

	parsed, err := bindings.SuperchainERC20MetaData.GetAbi()
	require.NoError(t, err)

	amount := types.BalanceFromUint64(42)
	input, err := token.Approve(spender, amount).EncodeInput()
	require.NoError(t, err)
	want, err := parsed.Pack("approve", spender, amount.Big())
	require.NoError(t, err)
	require.Equal(t, want, input)

	input, err = token.MintTo(spender, amount).EncodeInput()
	require.NoError(t, err)
	want, err = parsed.Pack("mintTo", spender, amount.Big())
	require.NoError(t, err)
	require.Equal(t, want, input)
}

func TestSuperchainERC20Binding_BalanceOfError(t *testing.T) {
	caller := new(mockCaller)
	caller.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)

	reg := &ClientRegistry{Client: caller}
	token, err := reg.SuperchainERC20(common.HexToAddress("0x2002"))
	require.NoError(t, err)

	_, err = token.BalanceOf(common.HexToAddress("0x1")).Call(context.Background())
	require.ErrorIs(t, err, assert.AnError)
}

func TestMessengerBinding_SendMessage(t *testing.T) {
	var reg interfaces.ContractsRegistry = &ClientRegistry{Client: new(mockCaller)}
	msgr, err := reg.L2ToL2CrossDomainMessenger(constants.L2ToL2CrossDomainMessenger)
	require.NoError(t, err)
	require.Contains(t, msgr.ABI().Methods, "relayMessage")

	input, err := msgr.SendMessage(big.NewInt(902), common.HexToAddress("0x1"), []byte{1}).EncodeInput()
	require.NoError(t, err)
	require.Equal(t, msgr.ABI().Methods["sendMessage"].ID, input[:4])
}
