package bindings

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestPoolABI(t *testing.T) {
	parsed, err := PoolMetaData.GetAbi()
	require.NoError(t, err)

	type fn struct {
		sig        string
		mutability string
		outputs    []string
	}
	want := map[string]fn{
		"CALLBACK_SUCCESS":        {"CALLBACK_SUCCESS()", "view", []string{"bytes32"}},
		"CROSS_DOMAIN_MESSENGER":  {"CROSS_DOMAIN_MESSENGER()", "view", []string{"address"}},
		"SUPERCHAIN_TOKEN_BRIDGE": {"SUPERCHAIN_TOKEN_BRIDGE()", "view", []string{"address"}},
		"deposit":                 {"deposit(uint256)", "nonpayable", nil},
		"depositsOf":              {"depositsOf(address)", "view", []string{"uint256"}},
		"flashFee":                {"flashFee(uint256)", "pure", []string{"uint256"}},
		"flashLoan":               {"flashLoan(address,uint256,uint256)", "nonpayable", []string{"bytes32", "bool"}},
		"maxFlashLoan":            {"maxFlashLoan()", "view", []string{"uint256"}},
		"token":                   {"token()", "view", []string{"address"}},
		"withdraw":                {"withdraw(uint256)", "nonpayable", nil},
	}
	require.Len(t, parsed.Methods, len(want))
	for name, w := range want {
		m, ok := parsed.Methods[name]
		require.True(t, ok, "missing method %s", name)
		require.Equal(t, w.sig, m.Sig)
		require.Equal(t, w.mutability, m.StateMutability)
		require.Equal(t, crypto.Keccak256([]byte(w.sig))[:4], m.ID)
		var outs []string
		for _, o := range m.Outputs {
			outs = append(outs, o.Type.String())
		}
		require.Equal(t, w.outputs, outs, name)
	}

	require.Len(t, parsed.Constructor.Inputs, 1)
	require.Equal(t, "_token", parsed.Constructor.Inputs[0].Name)
	require.Equal(t, abi.AddressTy, parsed.Constructor.Inputs[0].Type.T)

	require.Contains(t, parsed.Errors, "Pool_CallbackFailed")
	require.Empty(t, parsed.Errors["Pool_CallbackFailed"].Inputs)
}

func TestParsePoolError(t *testing.T) {
	parsed, err := PoolMetaData.GetAbi()
	require.NoError(t, err)
	id := parsed.Errors["Pool_CallbackFailed"].ID

	err = ParsePoolError(id[:4])
	require.ErrorIs(t, err, ErrPoolCallbackFailed)
	require.EqualError(t, err, "Pool reverted: Pool_CallbackFailed()")

	require.NoError(t, ParsePoolError([]byte{0xde, 0xad, 0xbe, 0xef}))
	require.NoError(t, ParsePoolError(nil))
}

func TestDecodeRevert(t *testing.T) {
	require.NoError(t, DecodeRevert(nil))

	msgr, err := L2ToL2CrossDomainMessengerMetaData.GetAbi()
	require.NoError(t, err)
	id := msgr.Errors["MessageAlreadyRelayed"].ID
	err = DecodeRevert(id[:4])
	var rerr *RevertError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "L2ToL2CrossDomainMessenger", rerr.Contract)
	require.Equal(t, "MessageAlreadyRelayed", rerr.Name)
	require.NotErrorIs(t, err, ErrPoolCallbackFailed)

	// Error(string) reason
	reason, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: reason}}.Pack("nope")
	require.NoError(t, err)
	data := append(crypto.Keccak256([]byte("Error(string)"))[:4], packed...)
	require.EqualError(t, DecodeRevert(data), "execution reverted: nope")

	require.ErrorContains(t, DecodeRevert([]byte{1, 2, 3, 4, 5}), "unknown data 0x0102030405")
}

func TestUnpackFlashLoan(t *testing.T) {
	parsed, err := PoolMetaData.GetAbi()
	require.NoError(t, err)
	msgID := common.HexToHash("0x1234")
	data, err := parsed.Methods["flashLoan"].Outputs.Pack(msgID, true)
	require.NoError(t, err)

	res, err := UnpackFlashLoan(data)
	require.NoError(t, err)
	require.Equal(t, [32]byte(msgID), res.MessageId)
	require.True(t, res.Success)
}

func TestParseMessengerEvents(t *testing.T) {
	msgr, err := NewL2ToL2CrossDomainMessenger(common.Address{}, nil)
	require.NoError(t, err)
	parsed, err := L2ToL2CrossDomainMessengerMetaData.GetAbi()
	require.NoError(t, err)

	sent := parsed.Events["SentMessage"]
	target := common.HexToAddress("0xbeef")
	sender := common.HexToAddress("0xcafe")
	data, err := sent.Inputs.NonIndexed().Pack(sender, []byte("hello"))
	require.NoError(t, err)
	log := types.Log{
		Topics: []common.Hash{
			sent.ID,
			common.BigToHash(big.NewInt(902)),
			common.BytesToHash(target.Bytes()),
			common.BigToHash(big.NewInt(7)),
		},
		Data: data,
	}
	ev, err := msgr.ParseSentMessage(log)
	require.NoError(t, err)
	require.Equal(t, int64(902), ev.Destination.Int64())
	require.Equal(t, target, ev.Target)
	require.Equal(t, int64(7), ev.MessageNonce.Int64())
	require.Equal(t, sender, ev.Sender)
	require.Equal(t, []byte("hello"), ev.Message)

	relayed := parsed.Events["RelayedMessage"]
	retHash := crypto.Keccak256Hash([]byte("ret"))
	data, err = relayed.Inputs.NonIndexed().Pack(retHash)
	require.NoError(t, err)
	msgHash := crypto.Keccak256Hash([]byte("msg"))
	rev, err := msgr.ParseRelayedMessage(types.Log{
		Topics: []common.Hash{relayed.ID, common.BigToHash(big.NewInt(901)), common.BigToHash(big.NewInt(7)), msgHash},
		Data:   data,
	})
	require.NoError(t, err)
	require.Equal(t, int64(901), rev.Source.Int64())
	require.Equal(t, [32]byte(msgHash), rev.MessageHash)
	require.Equal(t, [32]byte(retHash), rev.ReturnDataHash)

	_, err = msgr.ParseRelayedMessage(log)
	require.Error(t, err, "topic mismatch must not decode")
}
