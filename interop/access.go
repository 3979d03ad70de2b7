package interop

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/ethereum-optimism/xchain-flashloan/contracts/constants"
)

// Storage-key kinds in a CrossL2Inbox access list, stored in the first byte.
const (
	PrefixLookup           = 1
	PrefixChainIDExtension = 2
	PrefixChecksum         = 3
)

var (
	errExpectedEntry       = errors.New("expected entry")
	errMalformedEntry      = errors.New("malformed entry")
	errUnexpectedEntryType = errors.New("unexpected entry type")
)

// MessageChecksum is the checksum storage key committing to one executing message.
type MessageChecksum common.Hash

func (mc MessageChecksum) String() string {
	return common.Hash(mc).String()
}

// Access is one executing message as declared in an access list.
type Access struct {
	BlockNumber uint64
	Timestamp   uint64
	LogIndex    uint32
	ChainID     uint256.Int
	Checksum    MessageChecksum
}

// Entries encodes the access as storage keys: a lookup key, an extension key
// when the chain ID exceeds 64 bits, then the checksum.
// Layout of the lookup key: kind(1) zero(3) chainID(8) block(8) time(8) logIndex(4).
func (acc Access) Entries() []common.Hash {
	if acc.Checksum[0] != PrefixChecksum {
		panic(fmt.Sprintf("access checksum %s has kind %d", acc.Checksum, acc.Checksum[0]))
	}
	lookup := common.Hash{0: PrefixLookup}
	binary.BigEndian.PutUint64(lookup[4:], acc.ChainID.Uint64())
	binary.BigEndian.PutUint64(lookup[12:], acc.BlockNumber)
	binary.BigEndian.PutUint64(lookup[20:], acc.Timestamp)
	binary.BigEndian.PutUint32(lookup[28:], acc.LogIndex)
	out := []common.Hash{lookup}
	if !acc.ChainID.IsUint64() {
		ext := common.Hash{0: PrefixChainIDExtension}
		full := acc.ChainID.Bytes32()
		copy(ext[8:], full[:24])
		out = append(out, ext)
	}
	return append(out, common.Hash(acc.Checksum))
}

func EncodeAccessList(accesses []Access) []common.Hash {
	out := make([]common.Hash, 0, len(accesses)*2)
	for _, acc := range accesses {
		out = append(out, acc.Entries()...)
	}
	return out
}

// CrossL2InboxAccessList declares the accesses against the CrossL2Inbox predeploy.
func CrossL2InboxAccessList(accesses ...Access) coreTypes.AccessList {
	return coreTypes.AccessList{{
		Address:     constants.CrossL2Inbox,
		StorageKeys: EncodeAccessList(accesses),
	}}
}

// entryReader walks storage keys one at a time.
type entryReader []common.Hash

func (r *entryReader) next(want byte, zeroTo int) (common.Hash, error) {
	if len(*r) == 0 {
		return common.Hash{}, errExpectedEntry
	}
	e := (*r)[0]
	if e[0] != want {
		return common.Hash{}, fmt.Errorf("expected %s, got entry type %d: %w", kindName(want), e[0], errUnexpectedEntryType)
	}
	for _, b := range e[1:zeroTo] {
		if b != 0 {
			return common.Hash{}, fmt.Errorf("%s entry has non-zero padding: %w", kindName(want), errMalformedEntry)
		}
	}
	*r = (*r)[1:]
	return e, nil
}

func (r entryReader) peek() byte {
	if len(r) == 0 {
		return 0
	}
	return r[0][0]
}

func kindName(kind byte) string {
	switch kind {
	case PrefixLookup:
		return "lookup"
	case PrefixChainIDExtension:
		return "chain ID extension"
	case PrefixChecksum:
		return "checksum"
	}
	return fmt.Sprintf("kind %d", kind)
}

// ParseAccess decodes the first access in entries and returns the entries after it.
func ParseAccess(entries []common.Hash) ([]common.Hash, Access, error) {
	r := entryReader(entries)
	lookup, err := r.next(PrefixLookup, 4)
	if err != nil {
		return nil, Access{}, err
	}
	acc := Access{
		BlockNumber: binary.BigEndian.Uint64(lookup[12:20]),
		Timestamp:   binary.BigEndian.Uint64(lookup[20:28]),
		LogIndex:    binary.BigEndian.Uint32(lookup[28:32]),
	}
	var chainID [32]byte
	copy(chainID[24:], lookup[4:12])
	if r.peek() == PrefixChainIDExtension {
		ext, err := r.next(PrefixChainIDExtension, 8)
		if err != nil {
			return nil, Access{}, err
		}
		copy(chainID[:24], ext[8:])
	}
	acc.ChainID.SetBytes32(chainID[:])
	checksum, err := r.next(PrefixChecksum, 1)
	if err != nil {
		return nil, Access{}, err
	}
	acc.Checksum = MessageChecksum(checksum)
	return r, acc, nil
}

// ParseAccessList decodes every access in entries.
func ParseAccessList(entries []common.Hash) ([]Access, error) {
	var out []Access
	for len(entries) > 0 {
		rest, acc, err := ParseAccess(entries)
		if err != nil {
			return nil, fmt.Errorf("access %d: %w", len(out), err)
		}
		out = append(out, acc)
		entries = rest
	}
	return out, nil
}
