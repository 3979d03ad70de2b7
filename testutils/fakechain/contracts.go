package fakechain

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/lmittmann/w3"

	"github.com/ethereum-optimism/xchain-flashloan/contracts/bindings"
	"github.com/ethereum-optimism/xchain-flashloan/contracts/constants"
	"github.com/ethereum-optimism/xchain-flashloan/interop"
)

var messengerAddr = constants.L2ToL2CrossDomainMessenger

// Messages the pools exchange through the messenger. A loan takes three hops:
// the request to the lending pool, the loan back to the borrowing chain, and the repayment.
var (
	lendFunc         = w3.MustNewFunc("lend(address borrower, uint256 amount)", "")
	receiveLoanFunc  = w3.MustNewFunc("receiveLoan(address borrower, uint256 amount)", "")
	receiveRepayFunc = w3.MustNewFunc("receiveRepayment(uint256 amount)", "")
)

func isPoolMessage(input []byte) bool {
	sel := input[:4]
	return bytes.Equal(sel, lendFunc.Selector[:]) ||
		bytes.Equal(sel, receiveLoanFunc.Selector[:]) ||
		bytes.Equal(sel, receiveRepayFunc.Selector[:])
}

// pool emulates the Pool contract
func (f *frame) pool(from common.Address, method *abi.Method, args []any) ([]any, error) {
	cfg := f.net.cfg
	st := f.st
	switch method.Name {
	case "CALLBACK_SUCCESS":
		return []any{[32]byte(CallbackSuccess)}, nil
	case "CROSS_DOMAIN_MESSENGER":
		return []any{messengerAddr}, nil
	case "SUPERCHAIN_TOKEN_BRIDGE":
		return []any{constants.SuperchainTokenBridge}, nil
	case "token":
		return []any{cfg.Token}, nil
	case "depositsOf":
		return []any{get(st.deposits, args[0].(common.Address))}, nil
	case "flashFee":
		return []any{new(big.Int)}, nil
	case "maxFlashLoan":
		return []any{get(st.tokenBalances, cfg.Pool)}, nil
	case "deposit":
		amount := args[0].(*big.Int)
		if _, err := f.call(cfg.Pool, cfg.Token, mustPack(tokenABI, "transferFrom", from, cfg.Pool, amount)); err != nil {
			return nil, err
		}
		add(st.deposits, from, amount)
		return nil, nil
	case "withdraw":
		amount := args[0].(*big.Int)
		if get(st.deposits, from).Cmp(amount) < 0 {
			return nil, reasonError("insufficient deposit")
		}
		sub(st.deposits, from, amount)
		if err := f.transferToken(cfg.Pool, from, amount); err != nil {
			return nil, err
		}
		return nil, nil
	case "flashLoan":
		borrower, amount, chainID := args[0].(common.Address), args[1].(*big.Int), args[2].(*big.Int)
		if amount.Sign() <= 0 {
			return nil, reasonError("zero amount")
		}
		msg, err := lendFunc.EncodeArgs(borrower, amount)
		if err != nil {
			return nil, err
		}
		out, err := f.call(cfg.Pool, messengerAddr, mustPack(messengerABI, "sendMessage", chainID, cfg.Pool, msg))
		if err != nil {
			return nil, err
		}
		var id common.Hash
		copy(id[:], out)
		return []any{[32]byte(id), true}, nil
	}
	return nil, reasonError("unsupported pool method " + method.Name)
}

// poolMessage handles the cross-chain legs of a flash loan.
// They are only accepted from the messenger, on behalf of the pool on another chain.
func (f *frame) poolMessage(from common.Address, input []byte) error {
	cfg := f.net.cfg
	if from != messengerAddr || f.xSender == nil || *f.xSender != cfg.Pool {
		return reasonError("unauthorized pool message")
	}
	source := f.xSource
	switch {
	case bytes.Equal(input[:4], lendFunc.Selector[:]):
		var (
			borrower common.Address
			amount   big.Int
		)
		if err := lendFunc.DecodeArgs(input, &borrower, &amount); err != nil {
			return reasonError("bad lend message")
		}
		// liquidity leaves this chain, and is minted on the borrowing chain
		if err := f.burnToken(cfg.Pool, &amount); err != nil {
			return err
		}
		msg, err := receiveLoanFunc.EncodeArgs(borrower, &amount)
		if err != nil {
			return err
		}
		_, err = f.call(cfg.Pool, messengerAddr, mustPack(messengerABI, "sendMessage", source, cfg.Pool, msg))
		return err
	case bytes.Equal(input[:4], receiveLoanFunc.Selector[:]):
		var (
			borrower common.Address
			amount   big.Int
		)
		if err := receiveLoanFunc.DecodeArgs(input, &borrower, &amount); err != nil {
			return reasonError("bad loan message")
		}
		f.mintToken(borrower, &amount)
		if f.net.failCallback.Load() || borrower != cfg.FlashBorrower {
			return customError(poolABI, "Pool_CallbackFailed")
		}
		if err := f.burnToken(borrower, &amount); err != nil {
			return err
		}
		msg, err := receiveRepayFunc.EncodeArgs(&amount)
		if err != nil {
			return err
		}
		_, err = f.call(cfg.Pool, messengerAddr, mustPack(messengerABI, "sendMessage", source, cfg.Pool, msg))
		return err
	default:
		var amount big.Int
		if err := receiveRepayFunc.DecodeArgs(input, &amount); err != nil {
			return reasonError("bad repayment message")
		}
		f.mintToken(cfg.Pool, &amount)
		return nil
	}
}

// messenger emulates the L2ToL2CrossDomainMessenger predeploy
func (f *frame) messenger(from common.Address, method *abi.Method, args []any) ([]any, error) {
	st := f.st
	switch method.Name {
	case "messageNonce":
		return []any{st.messageNonce}, nil
	case "successfulMessages":
		return []any{st.successful[common.Hash(args[0].([32]byte))]}, nil
	case "crossDomainMessageSender":
		if f.xSender == nil {
			return nil, customError(messengerABI, "NotEntered")
		}
		return []any{*f.xSender}, nil
	case "crossDomainMessageSource":
		if f.xSource == nil {
			return nil, customError(messengerABI, "NotEntered")
		}
		return []any{f.xSource}, nil
	case "sendMessage":
		return f.sendMessage(from, args[0].(*big.Int), args[1].(common.Address), args[2].([]byte))
	case "relayMessage":
		id := *abi.ConvertType(args[0], new(bindings.Identifier)).(*bindings.Identifier)
		return f.relayMessage(id, args[1].([]byte))
	}
	return nil, reasonError("unsupported messenger method " + method.Name)
}

func (f *frame) sendMessage(sender common.Address, destination *big.Int, target common.Address, message []byte) ([]any, error) {
	if destination.Cmp(f.chain.id) == 0 {
		return nil, customError(messengerABI, "MessageDestinationSameChain")
	}
	if _, ok := f.net.chainByID(destination); !ok {
		return nil, customError(messengerABI, "MessageDestinationNotRelayChain")
	}
	nonce := f.st.messageNonce
	f.st.messageNonce = new(big.Int).Add(nonce, common.Big1)

	ev := messengerABI.Events["SentMessage"]
	data, err := ev.Inputs.NonIndexed().Pack(sender, message)
	if err != nil {
		return nil, err
	}
	f.emit(messengerAddr, []common.Hash{
		ev.ID,
		common.BigToHash(destination),
		common.BytesToHash(target.Bytes()),
		common.BigToHash(nonce),
	}, data)
	msgHash, err := interop.MessageHash(destination, f.chain.id, nonce, sender, target, message)
	if err != nil {
		return nil, err
	}
	return []any{[32]byte(msgHash)}, nil
}

func (f *frame) relayMessage(id bindings.Identifier, payload []byte) ([]any, error) {
	identifier, err := interop.IdentifierFromBinding(id)
	if err != nil {
		return nil, reasonError("invalid identifier")
	}
	// the executing message must be declared to the CrossL2Inbox
	expected := (&interop.Message{Identifier: identifier, PayloadHash: crypto.Keccak256Hash(payload)}).Access()
	if !f.declared(expected) {
		return nil, reasonError("message not in access list")
	}
	if identifier.Origin != messengerAddr {
		return nil, customError(messengerABI, "EventPayloadNotSentMessage")
	}
	source, ok := f.net.chainByID(identifier.ChainIDBig())
	if !ok {
		return nil, reasonError("unknown source chain")
	}
	sent, ok := source.initiatingMessage(identifier, payload)
	if !ok {
		return nil, reasonError("initiating message not found")
	}
	if sent.Destination.Cmp(f.chain.id) != 0 {
		return nil, customError(messengerABI, "MessageDestinationNotRelayChain")
	}
	if f.st.successful[sent.MessageHash] {
		return nil, customError(messengerABI, "MessageAlreadyRelayed")
	}
	if f.xSender != nil {
		return nil, customError(messengerABI, "ReentrantCall")
	}

	f.xSource, f.xSender = sent.Source(), &sent.Sender
	ret, err := f.call(messengerAddr, sent.Target, sent.Message)
	f.xSource, f.xSender = nil, nil
	if err != nil {
		return nil, err
	}
	f.st.successful[sent.MessageHash] = true

	if f.net.cfg.LegacyRelayedEvent {
		f.emit(messengerAddr, []common.Hash{
			interop.LegacyRelayedMessageEventSig,
			common.BigToHash(sent.Source()),
			common.BigToHash(sent.Nonce),
			sent.MessageHash,
		}, nil)
	} else {
		ev := messengerABI.Events["RelayedMessage"]
		data, err := ev.Inputs.NonIndexed().Pack([32]byte(crypto.Keccak256Hash(ret)))
		if err != nil {
			return nil, err
		}
		f.emit(messengerAddr, []common.Hash{
			ev.ID,
			common.BigToHash(sent.Source()),
			common.BigToHash(sent.Nonce),
			sent.MessageHash,
		}, data)
	}
	return []any{ret}, nil
}

// declared checks the CrossL2Inbox entries of the access list for the given access.
func (f *frame) declared(expected interop.Access) bool {
	for _, tuple := range f.accessList {
		if tuple.Address != constants.CrossL2Inbox {
			continue
		}
		accesses, err := interop.ParseAccessList(tuple.StorageKeys)
		if err != nil {
			continue
		}
		for _, acc := range accesses {
			if acc == expected {
				return true
			}
		}
	}
	return false
}

func mustPack(parsed *abi.ABI, method string, args ...any) []byte {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		panic(err)
	}
	return data
}
