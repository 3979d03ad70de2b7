package interop

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/lmittmann/w3"

	"github.com/ethereum-optimism/xchain-flashloan/contracts/bindings"
	"github.com/ethereum-optimism/xchain-flashloan/contracts/constants"
)

var (
	SentMessageEventSig = crypto.Keccak256Hash([]byte("SentMessage(uint256,address,uint256,address,bytes)"))
	// RelayedMessageEventSig is the current event, carrying the hash of the target's return data.
	RelayedMessageEventSig = crypto.Keccak256Hash([]byte("RelayedMessage(uint256,uint256,bytes32,bytes32)"))
	// LegacyRelayedMessageEventSig predates returnDataHash.
	LegacyRelayedMessageEventSig = crypto.Keccak256Hash([]byte("RelayedMessage(uint256,uint256,bytes32)"))

	ErrNotSentMessage    = errors.New("log is not a SentMessage event")
	ErrNotRelayedMessage = errors.New("log is not a RelayedMessage event")
)

var hashL2toL2CrossDomainMessage = w3.MustNewFunc("hashL2toL2CrossDomainMessage(uint256,uint256,uint256,address,address,bytes)", "bytes32")

// MessageHash computes the hash under which the messenger tracks a message:
// keccak256(abi.encode(destination, source, nonce, sender, target, message)).
func MessageHash(destination, source, nonce *big.Int, sender, target common.Address, message []byte) (common.Hash, error) {
	enc, err := hashL2toL2CrossDomainMessage.EncodeArgs(destination, source, nonce, sender, target, message)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode message: %w", err)
	}
	// drop the selector, the rest is the plain abi encoding of the arguments
	return crypto.Keccak256Hash(enc[4:]), nil
}

// SentMessage is an initiating L2-to-L2 message, as emitted by the messenger on the source chain.
type SentMessage struct {
	Identifier Identifier
	// Payload is the raw log payload, topics followed by data, as passed to relayMessage.
	Payload []byte

	Destination *big.Int
	Target      common.Address
	Nonce       *big.Int
	Sender      common.Address
	Message     []byte
	MessageHash common.Hash
}

// Source returns the chain ID the message was sent from.
func (m *SentMessage) Source() *big.Int {
	return m.Identifier.ChainIDBig()
}

// ExecutingMessage returns the executing-message reference for the initiating log.
func (m *SentMessage) ExecutingMessage() Message {
	return Message{
		Identifier:  m.Identifier,
		PayloadHash: crypto.Keccak256Hash(m.Payload),
	}
}

func (m *SentMessage) String() string {
	return fmt.Sprintf("message %s (nonce %s, %s -> %s, target %s)",
		m.MessageHash, m.Nonce, m.Source(), m.Destination, m.Target)
}

// SentMessageFromLog decodes a single SentMessage log emitted on the given chain.
// The block timestamp is not part of a log, so it must be provided by the caller.
func SentMessageFromLog(l *coreTypes.Log, chainID *big.Int, timestamp uint64) (*SentMessage, error) {
	if l.Address != constants.L2ToL2CrossDomainMessenger || len(l.Topics) != 4 || l.Topics[0] != SentMessageEventSig {
		return nil, ErrNotSentMessage
	}
	msgr, err := bindings.NewL2ToL2CrossDomainMessenger(l.Address, nil)
	if err != nil {
		return nil, err
	}
	ev, err := msgr.ParseSentMessage(*l)
	if err != nil {
		return nil, fmt.Errorf("failed to decode SentMessage: %w", err)
	}
	source, overflow := uint256.FromBig(chainID)
	if overflow {
		return nil, fmt.Errorf("chain ID %s overflows uint256", chainID)
	}
	if l.Index > uint(^uint32(0)) {
		return nil, fmt.Errorf("%w: %d", errLogIndexTooLarge, l.Index)
	}
	msgHash, err := MessageHash(ev.Destination, chainID, ev.MessageNonce, ev.Sender, ev.Target, ev.Message)
	if err != nil {
		return nil, err
	}
	return &SentMessage{
		Identifier: Identifier{
			Origin:      l.Address,
			BlockNumber: l.BlockNumber,
			LogIndex:    uint32(l.Index),
			Timestamp:   timestamp,
			ChainID:     *source,
		},
		Payload:     LogToMessagePayload(l),
		Destination: ev.Destination,
		Target:      ev.Target,
		Nonce:       ev.MessageNonce,
		Sender:      ev.Sender,
		Message:     ev.Message,
		MessageHash: msgHash,
	}, nil
}

// SentMessagesFromReceipt returns every SentMessage the receipt carries, in log order.
func SentMessagesFromReceipt(receipt *coreTypes.Receipt, chainID *big.Int, timestamp uint64) ([]*SentMessage, error) {
	var out []*SentMessage
	for _, l := range receipt.Logs {
		msg, err := SentMessageFromLog(l, chainID, timestamp)
		if errors.Is(err, ErrNotSentMessage) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("log %d of tx %s: %w", l.Index, receipt.TxHash, err)
		}
		out = append(out, msg)
	}
	return out, nil
}

// RelayedMessage is the destination-side acknowledgement of a relayed message.
type RelayedMessage struct {
	Source      *big.Int
	Nonce       *big.Int
	MessageHash common.Hash
	// ReturnDataHash is zero for the legacy event.
	ReturnDataHash common.Hash
	Legacy         bool

	TxHash      common.Hash
	BlockNumber uint64
}

// RelayedMessageFromLog decodes either variant of the RelayedMessage event.
func RelayedMessageFromLog(l *coreTypes.Log) (*RelayedMessage, error) {
	if l.Address != constants.L2ToL2CrossDomainMessenger || len(l.Topics) != 4 {
		return nil, ErrNotRelayedMessage
	}
	out := &RelayedMessage{
		TxHash:      l.TxHash,
		BlockNumber: l.BlockNumber,
	}
	switch l.Topics[0] {
	case RelayedMessageEventSig:
		msgr, err := bindings.NewL2ToL2CrossDomainMessenger(l.Address, nil)
		if err != nil {
			return nil, err
		}
		ev, err := msgr.ParseRelayedMessage(*l)
		if err != nil {
			return nil, fmt.Errorf("failed to decode RelayedMessage: %w", err)
		}
		out.Source = ev.Source
		out.Nonce = ev.MessageNonce
		out.MessageHash = ev.MessageHash
		out.ReturnDataHash = ev.ReturnDataHash
	case LegacyRelayedMessageEventSig:
		if len(l.Data) != 0 {
			return nil, fmt.Errorf("unexpected data in legacy RelayedMessage: %d bytes", len(l.Data))
		}
		out.Source = l.Topics[1].Big()
		out.Nonce = l.Topics[2].Big()
		out.MessageHash = l.Topics[3]
		out.Legacy = true
	default:
		return nil, ErrNotRelayedMessage
	}
	return out, nil
}

// RelayedMessagesFromReceipt returns every RelayedMessage the receipt carries.
func RelayedMessagesFromReceipt(receipt *coreTypes.Receipt) ([]*RelayedMessage, error) {
	return RelayedMessagesFromLogs(receipt.Logs)
}

// RelayedMessagesFromFilterLogs decodes the result of an eth_getLogs query.
func RelayedMessagesFromFilterLogs(logs []coreTypes.Log) ([]*RelayedMessage, error) {
	ptrs := make([]*coreTypes.Log, len(logs))
	for i := range logs {
		ptrs[i] = &logs[i]
	}
	return RelayedMessagesFromLogs(ptrs)
}

func RelayedMessagesFromLogs(logs []*coreTypes.Log) ([]*RelayedMessage, error) {
	var out []*RelayedMessage
	for _, l := range logs {
		msg, err := RelayedMessageFromLog(l)
		if errors.Is(err, ErrNotRelayedMessage) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}
