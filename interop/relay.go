package interop

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3"

	"github.com/ethereum-optimism/xchain-flashloan/contracts/constants"
	"github.com/ethereum-optimism/xchain-flashloan/types"
)

var relayMessageFunc = w3.MustNewFunc("relayMessage((address Origin, uint256 BlockNumber, uint256 LogIndex, uint256 Timestamp, uint256 ChainId), bytes sentMessage)", "bytes returnData")

// RelayCall executes a SentMessage on its destination chain through the messenger.
// The access list declares the initiating message to the CrossL2Inbox.
type RelayCall struct {
	Msg *SentMessage
}

var _ types.Call = (*RelayCall)(nil)

func NewRelayCall(msg *SentMessage) *RelayCall {
	return &RelayCall{Msg: msg}
}

func (c *RelayCall) To() (*common.Address, error) {
	addr := constants.L2ToL2CrossDomainMessenger
	return &addr, nil
}

func (c *RelayCall) EncodeInput() ([]byte, error) {
	identifier := c.Msg.Identifier.Binding()
	calldata, err := relayMessageFunc.EncodeArgs(&identifier, c.Msg.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to construct calldata: %w", err)
	}
	return calldata, nil
}

func (c *RelayCall) AccessList() (coreTypes.AccessList, error) {
	msg := c.Msg.ExecutingMessage()
	return CrossL2InboxAccessList(msg.Access()), nil
}

func (c *RelayCall) Method() string {
	return "relayMessage"
}

func (c *RelayCall) String() string {
	return "relay " + c.Msg.String()
}

// DecodeRelayReturnData unpacks the bytes returned by relayMessage.
func DecodeRelayReturnData(output []byte) ([]byte, error) {
	var ret []byte
	if err := relayMessageFunc.DecodeReturns(output, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}
