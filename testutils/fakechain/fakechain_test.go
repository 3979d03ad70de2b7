package fakechain_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/xchain-flashloan/contracts/bindings"
	"github.com/ethereum-optimism/xchain-flashloan/contracts/constants"
	"github.com/ethereum-optimism/xchain-flashloan/interfaces"
	"github.com/ethereum-optimism/xchain-flashloan/interop"
	"github.com/ethereum-optimism/xchain-flashloan/system"
	"github.com/ethereum-optimism/xchain-flashloan/testlog"
	"github.com/ethereum-optimism/xchain-flashloan/testutils/fakechain"
	"github.com/ethereum-optimism/xchain-flashloan/types"
)

type env struct {
	net    *fakechain.Network
	sys    *system.System
	a, b   system.Chain
	minter map[string]system.Wallet
	user   map[string]system.Wallet
	key    types.Key
}

func setup(t *testing.T, cfg fakechain.Config) *env {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	lgr := testlog.Logger(t, log.LevelDebug)
	n := fakechain.NewTestNetwork(t, cfg)
	sys, err := system.NewSystem(ctx, lgr, n.ChainConfigs())
	require.NoError(t, err)
	t.Cleanup(sys.Close)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	e := &env{
		net:    n,
		sys:    sys,
		minter: make(map[string]system.Wallet),
		user:   make(map[string]system.Wallet),
		key:    key,
	}
	e.a, err = sys.Chain("supersimL2A")
	require.NoError(t, err)
	e.b, err = sys.Chain("supersimL2B")
	require.NoError(t, err)
	for _, c := range sys.Chains() {
		require.NoError(t, c.TestClient().ImpersonateAccount(ctx, cfg.Minter))
		e.minter[c.Name()] = system.NewImpersonatedWallet(cfg.Minter, c, lgr, nil)
		user := system.NewWallet(key, c, lgr, nil)
		require.NoError(t, c.TestClient().SetBalance(ctx, user.Address(), types.NewBalance(big.NewInt(params.Ether))))
		e.user[c.Name()] = user
	}
	return e
}

func (e *env) token(t *testing.T, c system.Chain) interfaces.SuperchainERC20 {
	token, err := c.ContractsRegistry().SuperchainERC20(e.net.Contracts().Token)
	require.NoError(t, err)
	return token
}

func TestChainBasics(t *testing.T) {
	cfg := fakechain.DefaultConfig()
	n := fakechain.NewTestNetwork(t, cfg)
	ctx := context.Background()

	client, err := ethclient.DialContext(ctx, n.Chain("supersimL2B").URL())
	require.NoError(t, err)
	defer client.Close()

	id, err := client.ChainID(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 902, id.Uint64())

	num, err := client.BlockNumber(ctx)
	require.NoError(t, err)
	require.Zero(t, num)

	header, err := client.HeaderByNumber(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, cfg.GenesisTime, header.Time)
	require.EqualValues(t, params.GWei, header.BaseFee.Int64())

	bal, err := client.BalanceAt(ctx, cfg.Minter, nil)
	require.NoError(t, err)
	require.Zero(t, cfg.Prefund[cfg.Minter].Cmp(bal))

	code, err := client.CodeAt(ctx, cfg.Pool, nil)
	require.NoError(t, err)
	require.NotEmpty(t, code)

	_, err = client.HeaderByNumber(ctx, big.NewInt(5))
	require.ErrorIs(t, err, ethereum.NotFound)
	_, err = client.TransactionReceipt(ctx, common.Hash{0x1})
	require.ErrorIs(t, err, ethereum.NotFound)
}

func TestTokenTransactions(t *testing.T) {
	cfg := fakechain.DefaultConfig()
	e := setup(t, cfg)
	ctx := context.Background()
	token := e.token(t, e.a)
	user := e.user[e.a.Name()]
	amount := types.NewBalance(big.NewInt(1000))

	_, err := system.SendAndWait(ctx, e.minter[e.a.Name()].Transact(token.MintTo(user.Address(), amount)))
	require.NoError(t, err)
	bal, err := token.BalanceOf(user.Address()).Call(ctx)
	require.NoError(t, err)
	require.True(t, amount.Equal(bal), "balance %s", bal)

	// the other chain is untouched
	other, err := e.token(t, e.b).BalanceOf(user.Address()).Call(ctx)
	require.NoError(t, err)
	require.True(t, other.IsZero())

	// only the minter can mint
	_, err = user.Transact(token.MintTo(user.Address(), amount)).Call(ctx)
	require.Error(t, err)
	var rerr *bindings.RevertError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "Unauthorized", rerr.Name)

	// reverts surface at gas estimation, decoded
	_, err = system.SendAndWait(ctx, user.Transact(token.Transfer(cfg.Pool, types.NewBalance(big.NewInt(5000)))))
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "InsufficientBalance", rerr.Name)

	receipt, err := system.SendAndWait(ctx, user.Transact(token.Approve(cfg.Pool, amount)))
	require.NoError(t, err)
	require.Len(t, receipt.Logs, 1)
	allowance, err := token.Allowance(user.Address(), cfg.Pool).Call(ctx)
	require.NoError(t, err)
	require.True(t, amount.Equal(allowance))
	require.Zero(t, amount.Big().Cmp(e.net.Chain("supersimL2A").TokenBalance(user.Address())))
}

func TestMinedRevert(t *testing.T) {
	cfg := fakechain.DefaultConfig()
	e := setup(t, cfg)
	ctx := context.Background()
	w := system.NewWallet(e.key, e.a, testlog.Logger(t, log.LevelInfo), nil)
	data, err := e.token(t, e.a).Transfer(cfg.Pool, types.NewBalance(big.NewInt(1))).EncodeInput()
	require.NoError(t, err)

	tx, err := system.NewTxBuilder(ctx, e.a).BuildTx(
		system.WithFrom(w.Address()),
		system.WithTo(cfg.Token),
		system.WithValue(new(big.Int)),
		system.WithData(data),
		system.WithGasLimit(50_000),
	)
	require.NoError(t, err)
	require.Equal(t, coreTypes.DynamicFeeTxType, int(tx.Type()))
	signed, err := w.Sign(tx)
	require.NoError(t, err)
	require.NoError(t, w.Send(ctx, signed))

	client, err := e.a.Client()
	require.NoError(t, err)
	receipt, err := system.WaitForReceipt(ctx, client, signed.Hash(), 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, coreTypes.ReceiptStatusFailed, receipt.Status)
	require.Empty(t, receipt.Logs)

	// the nonce is used even though the transaction reverted
	nonce, err := client.NonceAt(ctx, w.Address(), nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, nonce)
	require.ErrorContains(t, w.Send(ctx, signed), "nonce too low")
}

func TestImpersonationRequired(t *testing.T) {
	cfg := fakechain.DefaultConfig()
	e := setup(t, cfg)
	ctx := context.Background()
	require.NoError(t, e.a.TestClient().StopImpersonatingAccount(ctx, cfg.Minter))
	token := e.token(t, e.a)
	res := e.minter[e.a.Name()].Transact(token.MintTo(cfg.Minter, types.NewBalance(big.NewInt(1)))).Send(ctx)
	require.ErrorContains(t, res.Wait(ctx), "impersonate")
}

func TestSnapshotRevert(t *testing.T) {
	cfg := fakechain.DefaultConfig()
	e := setup(t, cfg)
	ctx := context.Background()
	tc := e.a.TestClient()
	token := e.token(t, e.a)
	user := e.user[e.a.Name()].Address()

	id, err := tc.Snapshot(ctx)
	require.NoError(t, err)
	_, err = system.SendAndWait(ctx, e.minter[e.a.Name()].Transact(token.MintTo(user, types.NewBalance(big.NewInt(7)))))
	require.NoError(t, err)
	require.NoError(t, tc.Mine(ctx, 3))
	require.EqualValues(t, 4, e.net.Chain("supersimL2A").BlockNumber())

	require.NoError(t, tc.Revert(ctx, id))
	require.Zero(t, e.net.Chain("supersimL2A").TokenBalance(user).Sign())
	require.ErrorIs(t, tc.Revert(ctx, id), system.ErrSnapshotNotFound)
}

func TestManualRelay(t *testing.T) {
	cfg := fakechain.DefaultConfig()
	cfg.Autorelay = false
	e := setup(t, cfg)
	ctx := context.Background()
	lgr := testlog.Logger(t, log.LevelInfo)

	msgr, err := e.a.ContractsRegistry().L2ToL2CrossDomainMessenger(constants.L2ToL2CrossDomainMessenger)
	require.NoError(t, err)
	target := common.HexToAddress("0x1234")
	receipt, err := system.SendAndWait(ctx, e.user[e.a.Name()].Transact(msgr.SendMessage(e.b.ID(), target, []byte("hello"))))
	require.NoError(t, err)

	client, err := e.a.Client()
	require.NoError(t, err)
	header, err := client.HeaderByNumber(ctx, receipt.BlockNumber)
	require.NoError(t, err)
	msgs, err := interop.SentMessagesFromReceipt(receipt, e.a.ID(), header.Time)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	msg := msgs[0]
	require.Equal(t, target, msg.Target)
	require.Equal(t, []byte("hello"), msg.Message)

	relayer := system.NewWallet(e.key, e.b, lgr, nil)
	// without the access list the messenger refuses to relay
	_, err = relayer.Transact(noAccessList{interop.NewRelayCall(msg)}).Call(ctx)
	require.ErrorContains(t, err, "access list")

	// a tampered identifier does not match the initiating message
	bad := *msg
	bad.Identifier.Timestamp++
	_, err = relayer.Transact(interop.NewRelayCall(&bad)).Call(ctx)
	require.ErrorContains(t, err, "initiating message not found")

	out, err := relayer.Transact(interop.NewRelayCall(msg)).Call(ctx)
	require.NoError(t, err)
	ret, err := interop.DecodeRelayReturnData(out)
	require.NoError(t, err)
	require.Empty(t, ret)

	relayReceipt, err := system.SendAndWait(ctx, relayer.Transact(interop.NewRelayCall(msg)))
	require.NoError(t, err)
	relayed, err := interop.RelayedMessagesFromReceipt(relayReceipt)
	require.NoError(t, err)
	require.Len(t, relayed, 1)
	require.Equal(t, msg.MessageHash, relayed[0].MessageHash)
	require.Equal(t, crypto.Keccak256Hash(nil), relayed[0].ReturnDataHash)
	require.True(t, e.net.Chain("supersimL2B").Relayed(msg.MessageHash))

	dstMsgr, err := e.b.ContractsRegistry().L2ToL2CrossDomainMessenger(constants.L2ToL2CrossDomainMessenger)
	require.NoError(t, err)
	ok, err := dstMsgr.SuccessfulMessages(msg.MessageHash).Call(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = relayer.Transact(interop.NewRelayCall(msg)).Call(ctx)
	var rerr *bindings.RevertError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "MessageAlreadyRelayed", rerr.Name)

	bClient, err := e.b.Client()
	require.NoError(t, err)
	logs, err := bClient.FilterLogs(ctx, ethereum.FilterQuery{
		Addresses: []common.Address{constants.L2ToL2CrossDomainMessenger},
		Topics:    [][]common.Hash{{interop.RelayedMessageEventSig}, nil, nil, {msg.MessageHash}},
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, relayReceipt.TxHash, logs[0].TxHash)
}

func TestSendMessageToSameChain(t *testing.T) {
	e := setup(t, fakechain.DefaultConfig())
	ctx := context.Background()
	msgr, err := e.a.ContractsRegistry().L2ToL2CrossDomainMessenger(constants.L2ToL2CrossDomainMessenger)
	require.NoError(t, err)
	_, err = e.user[e.a.Name()].Transact(msgr.SendMessage(e.a.ID(), common.Address{}, nil)).Call(ctx)
	var rerr *bindings.RevertError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "MessageDestinationSameChain", rerr.Name)
}

func TestLegacyRelayedEvent(t *testing.T) {
	cfg := fakechain.DefaultConfig()
	cfg.LegacyRelayedEvent = true
	e := setup(t, cfg)
	ctx := context.Background()
	msgr, err := e.a.ContractsRegistry().L2ToL2CrossDomainMessenger(constants.L2ToL2CrossDomainMessenger)
	require.NoError(t, err)
	receipt, err := system.SendAndWait(ctx, e.user[e.a.Name()].Transact(msgr.SendMessage(e.b.ID(), common.HexToAddress("0x99"), []byte{1})))
	require.NoError(t, err)
	require.Empty(t, e.net.AutorelayErrors())

	client, err := e.b.Client()
	require.NoError(t, err)
	logs, err := client.FilterLogs(ctx, ethereum.FilterQuery{
		Addresses: []common.Address{constants.L2ToL2CrossDomainMessenger},
		Topics:    [][]common.Hash{{interop.LegacyRelayedMessageEventSig}},
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	relayed, err := interop.RelayedMessagesFromFilterLogs(logs)
	require.NoError(t, err)
	require.True(t, relayed[0].Legacy)
	require.Equal(t, common.Hash{}, relayed[0].ReturnDataHash)
	require.Equal(t, coreTypes.ReceiptStatusSuccessful, receipt.Status)
}

// noAccessList drops the access list of the wrapped call.
type noAccessList struct {
	types.Call
}

func (c noAccessList) AccessList() (coreTypes.AccessList, error) {
	return nil, nil
}
