package bindings

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

// ErrPoolCallbackFailed is returned when a call reverted with Pool_CallbackFailed().
var ErrPoolCallbackFailed = errors.New("Pool_CallbackFailed")

// RevertError is a decoded custom error from one of the known contracts.
type RevertError struct {
	Contract string
	Name     string
	Args     []any
}

func (e *RevertError) Error() string {
	if len(e.Args) == 0 {
		return fmt.Sprintf("%s reverted: %s()", e.Contract, e.Name)
	}
	return fmt.Sprintf("%s reverted: %s%v", e.Contract, e.Name, e.Args)
}

// Is makes a decoded Pool_CallbackFailed match ErrPoolCallbackFailed.
func (e *RevertError) Is(target error) bool {
	return target == ErrPoolCallbackFailed && e.Contract == "Pool" && e.Name == "Pool_CallbackFailed"
}

var knownContracts = []struct {
	name string
	meta *bind.MetaData
}{
	{"Pool", PoolMetaData},
	{"SuperchainERC20", SuperchainERC20MetaData},
	{"L2ToL2CrossDomainMessenger", L2ToL2CrossDomainMessengerMetaData},
}

// ParsePoolError maps revert data of a Pool call onto ErrPoolCallbackFailed.
// It returns nil if the data is not a Pool error.
func ParsePoolError(revertData []byte) error {
	parsed, err := PoolMetaData.GetAbi()
	if err != nil {
		return err
	}
	if rerr := matchError("Pool", parsed, revertData); rerr != nil {
		return rerr
	}
	return nil
}

// DecodeRevert decodes revert data against every known contract ABI.
// Unknown data is reported as a generic revert, and string reasons are unpacked.
func DecodeRevert(revertData []byte) error {
	if len(revertData) == 0 {
		return nil
	}
	for _, c := range knownContracts {
		parsed, err := c.meta.GetAbi()
		if err != nil {
			return err
		}
		if rerr := matchError(c.name, parsed, revertData); rerr != nil {
			return rerr
		}
	}
	if reason, err := abi.UnpackRevert(revertData); err == nil {
		return fmt.Errorf("execution reverted: %s", reason)
	}
	return fmt.Errorf("execution reverted with unknown data 0x%x", revertData)
}

func matchError(contract string, parsed *abi.ABI, data []byte) *RevertError {
	if len(data) < 4 {
		return nil
	}
	for name, abiErr := range parsed.Errors {
		if !bytes.Equal(abiErr.ID[:4], data[:4]) {
			continue
		}
		args, err := abiErr.Inputs.Unpack(data[4:])
		if err != nil {
			continue
		}
		return &RevertError{Contract: contract, Name: name, Args: args}
	}
	return nil
}
