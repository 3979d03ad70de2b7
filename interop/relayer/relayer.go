// Package relayer executes L2-to-L2 messages on their destination chains, either by
// sending relayMessage itself or by waiting for supersim's autorelayer to do so.
package relayer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/ethereum-optimism/xchain-flashloan/config"
	"github.com/ethereum-optimism/xchain-flashloan/contracts/constants"
	"github.com/ethereum-optimism/xchain-flashloan/interop"
	"github.com/ethereum-optimism/xchain-flashloan/metrics"
	"github.com/ethereum-optimism/xchain-flashloan/system"
	"github.com/ethereum-optimism/xchain-flashloan/types"
)

const relayedCacheSize = 1024

var (
	ErrMessageNotRelayed = errors.New("message not relayed")
	ErrTooManyHops       = errors.New("too many message hops")
)

// Chains resolves message destinations. *system.System implements it.
type Chains interface {
	ChainByID(id types.ChainID) (system.Chain, error)
}

// WalletFunc returns the wallet that sends relay transactions on a chain.
type WalletFunc func(chain system.Chain) system.Wallet

// Result describes how one message was relayed.
type Result struct {
	Message *interop.SentMessage
	Relayed *interop.RelayedMessage
	// Hop is 1 for messages of the initial receipt, 2 for their replies, and so on.
	Hop int
	// Skipped messages were relayed earlier, by this relayer or by someone else.
	Skipped bool
}

type Relayer struct {
	log     log.Logger
	m       metrics.Metricer
	chains  Chains
	cfg     config.RelayConfig
	wallets WalletFunc

	relayed *lru.Cache[common.Hash, *interop.RelayedMessage]
}

func New(lgr log.Logger, m metrics.Metricer, chains Chains, cfg config.RelayConfig, wallets WalletFunc) (*Relayer, error) {
	if cfg.Mode == config.RelayModeManual && wallets == nil {
		return nil, errors.New("manual relaying requires a wallet")
	}
	if cfg.MaxHops < 1 {
		return nil, fmt.Errorf("max hops must be at least 1, got %d", cfg.MaxHops)
	}
	if m == nil {
		m = metrics.NoopMetrics{}
	}
	cache, err := lru.New[common.Hash, *interop.RelayedMessage](relayedCacheSize)
	if err != nil {
		return nil, err
	}
	return &Relayer{
		log:     lgr,
		m:       m,
		chains:  chains,
		cfg:     cfg,
		wallets: wallets,
		relayed: cache,
	}, nil
}

func (r *Relayer) Mode() config.RelayMode {
	return r.cfg.Mode
}

// RelayTx relays the messages sent by a mined transaction.
func (r *Relayer) RelayTx(ctx context.Context, source system.Chain, txHash common.Hash) ([]*Result, error) {
	client, err := source.Client()
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	receipt, err := client.TransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt of %s on %s: %w", txHash, source.Name(), err)
	}
	return r.RelayReceipt(ctx, source, receipt)
}

type pending struct {
	msg    *interop.SentMessage
	source system.Chain
}

// RelayReceipt relays every message in the receipt, then the messages those relays send,
// until no message is left or the hop limit is reached.
func (r *Relayer) RelayReceipt(ctx context.Context, source system.Chain, receipt *coreTypes.Receipt) ([]*Result, error) {
	queue, err := sentMessages(ctx, source, receipt)
	if err != nil {
		return nil, err
	}
	var results []*Result
	for hop := 1; len(queue) > 0; hop++ {
		if hop > r.cfg.MaxHops {
			return results, fmt.Errorf("%w: %d messages left after %d hops", ErrTooManyHops, len(queue), r.cfg.MaxHops)
		}
		var next []pending
		for _, p := range queue {
			dest, err := r.chains.ChainByID(p.msg.Destination)
			if err != nil {
				return results, fmt.Errorf("destination of %s: %w", p.msg, err)
			}
			res, relayReceipt, err := r.relay(ctx, p.source, dest, p.msg)
			if err != nil {
				return results, err
			}
			res.Hop = hop
			results = append(results, res)
			if relayReceipt == nil {
				continue
			}
			replies, err := sentMessages(ctx, dest, relayReceipt)
			if err != nil {
				return results, err
			}
			next = append(next, replies...)
		}
		queue = next
	}
	return results, nil
}

func sentMessages(ctx context.Context, chain system.Chain, receipt *coreTypes.Receipt) ([]pending, error) {
	client, err := chain.Client()
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	header, err := client.HeaderByNumber(ctx, receipt.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get block %s on %s: %w", receipt.BlockNumber, chain.Name(), err)
	}
	msgs, err := interop.SentMessagesFromReceipt(receipt, chain.ID(), header.Time)
	if err != nil {
		return nil, err
	}
	out := make([]pending, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, pending{msg: msg, source: chain})
	}
	return out, nil
}

func route(source, dest system.Chain) string {
	return source.Name() + "->" + dest.Name()
}

// relay returns the receipt of the relay transaction, unless the message was skipped.
func (r *Relayer) relay(ctx context.Context, source, dest system.Chain, msg *interop.SentMessage) (res *Result, receipt *coreTypes.Receipt, err error) {
	lgr := r.log.New("route", route(source, dest), "msg", msg.MessageHash, "nonce", msg.Nonce)
	if relayed, ok := r.relayed.Get(msg.MessageHash); ok {
		lgr.Debug("Message already relayed", "tx", relayed.TxHash)
		r.m.RecordRelaySkipped(route(source, dest))
		return &Result{Message: msg, Relayed: relayed, Skipped: true}, nil, nil
	}

	onDone := r.m.RecordRelay(route(source, dest), r.cfg.Mode.String())
	defer func() { onDone(err) }()

	switch r.cfg.Mode {
	case config.RelayModeManual:
		res, receipt, err = r.relayManual(ctx, lgr, dest, msg)
	case config.RelayModeAwait:
		res, receipt, err = r.await(ctx, lgr, dest, msg)
	default:
		err = fmt.Errorf("unknown relay mode %q", r.cfg.Mode)
	}
	if err != nil {
		return nil, nil, err
	}
	r.relayed.Add(msg.MessageHash, res.Relayed)
	lgr.Info("Relayed message", "tx", res.Relayed.TxHash, "block", res.Relayed.BlockNumber, "skipped", res.Skipped)
	return res, receipt, nil
}

func (r *Relayer) relayManual(ctx context.Context, lgr log.Logger, dest system.Chain, msg *interop.SentMessage) (*Result, *coreTypes.Receipt, error) {
	done, err := successful(ctx, dest, msg.MessageHash)
	if err != nil {
		return nil, nil, err
	}
	if done {
		// someone else relayed it, find their transaction to follow its replies
		lgr.Debug("Message relayed by another party")
		relayed, receipt, err := findRelayed(ctx, dest, msg.MessageHash)
		if err != nil {
			return nil, nil, err
		}
		if relayed == nil {
			return nil, nil, fmt.Errorf("%w: %s is marked successful but has no RelayedMessage event", ErrMessageNotRelayed, msg)
		}
		return &Result{Message: msg, Relayed: relayed, Skipped: true}, receipt, nil
	}

	inv := r.wallets(dest).Transact(interop.NewRelayCall(msg))
	if _, err := inv.Call(ctx); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrMessageNotRelayed, msg, err)
	}
	receipt, err := system.SendAndWait(ctx, inv)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrMessageNotRelayed, msg, err)
	}
	logs := make([]coreTypes.Log, len(receipt.Logs))
	for i, l := range receipt.Logs {
		logs[i] = *l
	}
	relayed, err := matchRelayed(logs, msg.MessageHash)
	if err != nil {
		return nil, nil, err
	}
	if relayed == nil {
		return nil, nil, fmt.Errorf("%w: no RelayedMessage event for %s in tx %s", ErrMessageNotRelayed, msg, receipt.TxHash)
	}
	return &Result{Message: msg, Relayed: relayed}, receipt, nil
}

// await polls the destination until the autorelayer executed the message.
func (r *Relayer) await(ctx context.Context, lgr log.Logger, dest system.Chain, msg *interop.SentMessage) (*Result, *coreTypes.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()
	limiter := rate.NewLimiter(rate.Every(r.cfg.PollInterval), 1)
	start := time.Now()
	for {
		if err := limiter.Wait(waitCtx); err != nil {
			break
		}
		relayed, receipt, err := findRelayed(waitCtx, dest, msg.MessageHash)
		if err != nil {
			if waitCtx.Err() != nil {
				break
			}
			return nil, nil, err
		}
		if relayed != nil {
			lgr.Debug("Found autorelayed message", "elapsed", time.Since(start))
			return &Result{Message: msg, Relayed: relayed}, receipt, nil
		}
	}
	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}
	err := fmt.Errorf("%w: %s not relayed on %s within %s", ErrMessageNotRelayed, msg, dest.Name(), r.cfg.Timeout)
	// the relay most likely reverts, simulating it recovers the reason
	if r.wallets != nil {
		if _, simErr := r.wallets(dest).Transact(interop.NewRelayCall(msg)).Call(ctx); simErr != nil {
			err = fmt.Errorf("%w: %w", err, simErr)
		}
	}
	return nil, nil, err
}

func successful(ctx context.Context, dest system.Chain, msgHash common.Hash) (bool, error) {
	msgr, err := dest.ContractsRegistry().L2ToL2CrossDomainMessenger(constants.L2ToL2CrossDomainMessenger)
	if err != nil {
		return false, err
	}
	done, err := msgr.SuccessfulMessages(msgHash).Call(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read successfulMessages on %s: %w", dest.Name(), err)
	}
	return done, nil
}

// findRelayed looks up the RelayedMessage event of a message, of either event version.
// It returns nil if the message was not relayed yet.
func findRelayed(ctx context.Context, dest system.Chain, msgHash common.Hash) (*interop.RelayedMessage, *coreTypes.Receipt, error) {
	client, err := dest.Client()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get client: %w", err)
	}
	logs, err := client.FilterLogs(ctx, ethereum.FilterQuery{
		Addresses: []common.Address{constants.L2ToL2CrossDomainMessenger},
		Topics: [][]common.Hash{
			{interop.RelayedMessageEventSig, interop.LegacyRelayedMessageEventSig},
			nil,
			nil,
			{msgHash},
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to filter logs on %s: %w", dest.Name(), err)
	}
	relayed, err := matchRelayed(logs, msgHash)
	if err != nil || relayed == nil {
		return nil, nil, err
	}
	receipt, err := client.TransactionReceipt(ctx, relayed.TxHash)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get relay receipt %s: %w", relayed.TxHash, err)
	}
	return relayed, receipt, nil
}

func matchRelayed(logs []coreTypes.Log, msgHash common.Hash) (*interop.RelayedMessage, error) {
	relayed, err := interop.RelayedMessagesFromFilterLogs(logs)
	if err != nil {
		return nil, err
	}
	for _, ev := range relayed {
		if ev.MessageHash == msgHash {
			return ev, nil
		}
	}
	return nil, nil
}
