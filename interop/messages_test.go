package interop

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/xchain-flashloan/contracts/bindings"
	"github.com/ethereum-optimism/xchain-flashloan/contracts/constants"
)

var (
	testSender = common.HexToAddress("0x5555")
	testTarget = common.HexToAddress("0x6666")
	testBody   = []byte{0xde, 0xad, 0xbe, 0xef}
)

func messengerABI(t *testing.T) *abi.ABI {
	parsed, err := bindings.L2ToL2CrossDomainMessengerMetaData.GetAbi()
	require.NoError(t, err)
	return parsed
}

func sentMessageLog(t *testing.T, destination, nonce *big.Int) *coreTypes.Log {
	ev := messengerABI(t).Events["SentMessage"]
	require.Equal(t, SentMessageEventSig, ev.ID)
	data, err := ev.Inputs.NonIndexed().Pack(testSender, testBody)
	require.NoError(t, err)
	return &coreTypes.Log{
		Address: constants.L2ToL2CrossDomainMessenger,
		Topics: []common.Hash{
			ev.ID,
			common.BigToHash(destination),
			common.BytesToHash(testTarget.Bytes()),
			common.BigToHash(nonce),
		},
		Data:        data,
		BlockNumber: 17,
		Index:       3,
		TxHash:      common.HexToHash("0xabcd"),
	}
}

func TestMessageHash(t *testing.T) {
	u256, _ := abi.NewType("uint256", "", nil)
	addr, _ := abi.NewType("address", "", nil)
	bytesT, _ := abi.NewType("bytes", "", nil)
	args := abi.Arguments{{Type: u256}, {Type: u256}, {Type: u256}, {Type: addr}, {Type: addr}, {Type: bytesT}}
	enc, err := args.Pack(big.NewInt(902), big.NewInt(901), big.NewInt(7), testSender, testTarget, testBody)
	require.NoError(t, err)

	got, err := MessageHash(big.NewInt(902), big.NewInt(901), big.NewInt(7), testSender, testTarget, testBody)
	require.NoError(t, err)
	require.Equal(t, crypto.Keccak256Hash(enc), got)

	other, err := MessageHash(big.NewInt(901), big.NewInt(902), big.NewInt(7), testSender, testTarget, testBody)
	require.NoError(t, err)
	require.NotEqual(t, got, other)
}

func TestSentMessagesFromReceipt(t *testing.T) {
	sent := sentMessageLog(t, big.NewInt(902), big.NewInt(7))
	unrelated := &coreTypes.Log{Address: common.HexToAddress("0x1234"), Topics: []common.Hash{SentMessageEventSig}}
	receipt := &coreTypes.Receipt{Logs: []*coreTypes.Log{unrelated, sent}}

	msgs, err := SentMessagesFromReceipt(receipt, big.NewInt(901), 1700000000)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	msg := msgs[0]

	require.Equal(t, constants.L2ToL2CrossDomainMessenger, msg.Identifier.Origin)
	require.Equal(t, uint64(17), msg.Identifier.BlockNumber)
	require.Equal(t, uint32(3), msg.Identifier.LogIndex)
	require.Equal(t, uint64(1700000000), msg.Identifier.Timestamp)
	require.Equal(t, uint64(901), msg.Identifier.ChainID.Uint64())
	require.Equal(t, LogToMessagePayload(sent), msg.Payload)

	require.Equal(t, "902", msg.Destination.String())
	require.Equal(t, "901", msg.Source().String())
	require.Equal(t, testTarget, msg.Target)
	require.Equal(t, "7", msg.Nonce.String())
	require.Equal(t, testSender, msg.Sender)
	require.Equal(t, testBody, msg.Message)

	wantHash, err := MessageHash(big.NewInt(902), big.NewInt(901), big.NewInt(7), testSender, testTarget, testBody)
	require.NoError(t, err)
	require.Equal(t, wantHash, msg.MessageHash)
	require.Equal(t, crypto.Keccak256Hash(msg.Payload), msg.ExecutingMessage().PayloadHash)
}

func TestSentMessageFromLog_Malformed(t *testing.T) {
	l := sentMessageLog(t, big.NewInt(902), big.NewInt(7))
	l.Data = []byte{1, 2, 3}
	_, err := SentMessageFromLog(l, big.NewInt(901), 0)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotSentMessage)

	_, err = SentMessagesFromReceipt(&coreTypes.Receipt{Logs: []*coreTypes.Log{l}}, big.NewInt(901), 0)
	require.Error(t, err)
}

func TestRelayedMessagesFromReceipt(t *testing.T) {
	ev := messengerABI(t).Events["RelayedMessage"]
	require.Equal(t, RelayedMessageEventSig, ev.ID)
	msgHash := common.HexToHash("0x1111")
	retHash := common.HexToHash("0x2222")
	data, err := ev.Inputs.NonIndexed().Pack(retHash)
	require.NoError(t, err)

	current := &coreTypes.Log{
		Address: constants.L2ToL2CrossDomainMessenger,
		Topics:  []common.Hash{ev.ID, common.BigToHash(big.NewInt(901)), common.BigToHash(big.NewInt(7)), msgHash},
		Data:    data,
		TxHash:  common.HexToHash("0xaa"),
	}
	legacy := &coreTypes.Log{
		Address: constants.L2ToL2CrossDomainMessenger,
		Topics:  []common.Hash{LegacyRelayedMessageEventSig, common.BigToHash(big.NewInt(902)), common.BigToHash(big.NewInt(8)), msgHash},
	}
	other := sentMessageLog(t, big.NewInt(901), big.NewInt(1))

	out, err := RelayedMessagesFromReceipt(&coreTypes.Receipt{Logs: []*coreTypes.Log{current, other, legacy}})
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.Equal(t, "901", out[0].Source.String())
	require.Equal(t, "7", out[0].Nonce.String())
	require.Equal(t, msgHash, out[0].MessageHash)
	require.Equal(t, retHash, out[0].ReturnDataHash)
	require.False(t, out[0].Legacy)
	require.Equal(t, common.HexToHash("0xaa"), out[0].TxHash)

	require.Equal(t, "902", out[1].Source.String())
	require.Equal(t, "8", out[1].Nonce.String())
	require.Equal(t, msgHash, out[1].MessageHash)
	require.Equal(t, common.Hash{}, out[1].ReturnDataHash)
	require.True(t, out[1].Legacy)

	filtered, err := RelayedMessagesFromFilterLogs([]coreTypes.Log{*legacy, *other, *current})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	require.True(t, filtered[0].Legacy)
	require.Equal(t, "902", filtered[0].Source.String())
	require.Equal(t, retHash, filtered[1].ReturnDataHash)
}

func TestRelayCall(t *testing.T) {
	msgs, err := SentMessagesFromReceipt(&coreTypes.Receipt{
		Logs: []*coreTypes.Log{sentMessageLog(t, big.NewInt(902), big.NewInt(7))},
	}, big.NewInt(901), 1700000000)
	require.NoError(t, err)
	call := NewRelayCall(msgs[0])

	to, err := call.To()
	require.NoError(t, err)
	require.Equal(t, constants.L2ToL2CrossDomainMessenger, *to)

	input, err := call.EncodeInput()
	require.NoError(t, err)
	method := messengerABI(t).Methods["relayMessage"]
	require.Equal(t, method.ID, input[:4])

	args, err := method.Inputs.Unpack(input[4:])
	require.NoError(t, err)
	require.Len(t, args, 2)
	id := *abi.ConvertType(args[0], new(bindings.Identifier)).(*bindings.Identifier)
	require.Equal(t, msgs[0].Identifier.Binding(), id)
	require.Equal(t, msgs[0].Payload, args[1].([]byte))

	al, err := call.AccessList()
	require.NoError(t, err)
	require.Len(t, al, 1)
	require.Equal(t, constants.CrossL2Inbox, al[0].Address)
	accesses, err := ParseAccessList(al[0].StorageKeys)
	require.NoError(t, err)
	require.Len(t, accesses, 1)
	exec := msgs[0].ExecutingMessage()
	require.Equal(t, exec.Checksum(), accesses[0].Checksum)
	require.Equal(t, uint64(17), accesses[0].BlockNumber)
}

func TestDecodeRelayReturnData(t *testing.T) {
	method := messengerABI(t).Methods["relayMessage"]
	out, err := method.Outputs.Pack([]byte{1, 2})
	require.NoError(t, err)
	ret, err := DecodeRelayReturnData(out)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, ret)
}
