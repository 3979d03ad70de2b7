package interop

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/ethereum-optimism/xchain-flashloan/contracts/bindings"
)

var errLogIndexTooLarge = errors.New("log index too large")

// Identifier locates an initiating log: emitter, block, log index, block time and chain.
// ChainID is held by value so identifiers compare with == and work as map keys.
type Identifier struct {
	Origin      common.Address
	BlockNumber uint64
	LogIndex    uint32
	Timestamp   uint64
	ChainID     uint256.Int
}

// jsonIdentifier is the RPC form, with quantities hex-encoded.
type jsonIdentifier struct {
	Origin      common.Address `json:"origin"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	LogIndex    hexutil.Uint64 `json:"logIndex"`
	Timestamp   hexutil.Uint64 `json:"timestamp"`
	ChainID     hexutil.U256   `json:"chainID"`
}

func (id Identifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonIdentifier{
		Origin:      id.Origin,
		BlockNumber: hexutil.Uint64(id.BlockNumber),
		LogIndex:    hexutil.Uint64(id.LogIndex),
		Timestamp:   hexutil.Uint64(id.Timestamp),
		ChainID:     hexutil.U256(id.ChainID),
	})
}

func (id *Identifier) UnmarshalJSON(data []byte) error {
	var v jsonIdentifier
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.LogIndex > math.MaxUint32 {
		return fmt.Errorf("%w: %d", errLogIndexTooLarge, v.LogIndex)
	}
	*id = Identifier{
		Origin:      v.Origin,
		BlockNumber: uint64(v.BlockNumber),
		LogIndex:    uint32(v.LogIndex),
		Timestamp:   uint64(v.Timestamp),
		ChainID:     uint256.Int(v.ChainID),
	}
	return nil
}

func (id Identifier) ChainIDBig() *big.Int {
	return id.ChainID.ToBig()
}

// Binding is the identifier as the messenger ABI takes it.
func (id Identifier) Binding() bindings.Identifier {
	u := func(v uint64) *big.Int { return new(big.Int).SetUint64(v) }
	return bindings.Identifier{
		Origin:      id.Origin,
		BlockNumber: u(id.BlockNumber),
		LogIndex:    u(uint64(id.LogIndex)),
		Timestamp:   u(id.Timestamp),
		ChainId:     id.ChainID.ToBig(),
	}
}

// IdentifierFromBinding converts an ABI-decoded identifier, rejecting out-of-range fields.
func IdentifierFromBinding(b bindings.Identifier) (Identifier, error) {
	switch {
	case !b.BlockNumber.IsUint64():
		return Identifier{}, fmt.Errorf("identifier block number %s out of range", b.BlockNumber)
	case !b.Timestamp.IsUint64():
		return Identifier{}, fmt.Errorf("identifier timestamp %s out of range", b.Timestamp)
	case !b.LogIndex.IsUint64() || b.LogIndex.Uint64() > math.MaxUint32:
		return Identifier{}, fmt.Errorf("%w: %s", errLogIndexTooLarge, b.LogIndex)
	}
	id := Identifier{
		Origin:      b.Origin,
		BlockNumber: b.BlockNumber.Uint64(),
		LogIndex:    uint32(b.LogIndex.Uint64()),
		Timestamp:   b.Timestamp.Uint64(),
	}
	if id.ChainID.SetFromBig(b.ChainId) {
		return Identifier{}, fmt.Errorf("identifier chain ID %s overflows uint256", b.ChainId)
	}
	return id, nil
}

// Message references an initiating log by identifier and payload hash.
type Message struct {
	Identifier  Identifier  `json:"identifier"`
	PayloadHash common.Hash `json:"payloadHash"`
}

// LogHash is keccak256(origin ++ payloadHash).
func (m *Message) LogHash() common.Hash {
	return crypto.Keccak256Hash(m.Identifier.Origin.Bytes(), m.PayloadHash.Bytes())
}

// Checksum commits to the log hash, the log position and the source chain:
//
//	idHash   = keccak256(logHash ++ zero(12) ++ block(8) ++ time(8) ++ logIndex(4))
//	checksum = keccak256(idHash ++ chainID(32)), first byte replaced by the checksum kind
func (m *Message) Checksum() MessageChecksum {
	id := m.Identifier
	var packed [32]byte
	binary.BigEndian.PutUint64(packed[12:], id.BlockNumber)
	binary.BigEndian.PutUint64(packed[20:], id.Timestamp)
	binary.BigEndian.PutUint32(packed[28:], id.LogIndex)
	logHash := m.LogHash()
	idHash := crypto.Keccak256Hash(logHash[:], packed[:])
	chainID := id.ChainID.Bytes32()
	sum := crypto.Keccak256Hash(idHash[:], chainID[:])
	sum[0] = PrefixChecksum
	return MessageChecksum(sum)
}

// Access is the access-list declaration for executing m.
func (m *Message) Access() Access {
	return Access{
		BlockNumber: m.Identifier.BlockNumber,
		Timestamp:   m.Identifier.Timestamp,
		LogIndex:    m.Identifier.LogIndex,
		ChainID:     m.Identifier.ChainID,
		Checksum:    m.Checksum(),
	}
}

// LogToMessagePayload concatenates the log topics and data.
func LogToMessagePayload(l *coreTypes.Log) []byte {
	out := make([]byte, 0, len(l.Topics)*common.HashLength+len(l.Data))
	for _, topic := range l.Topics {
		out = append(out, topic[:]...)
	}
	return append(out, l.Data...)
}
