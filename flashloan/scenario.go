// Package flashloan runs the cross-chain flash-loan scenario against a set of interop L2s:
// fund a test account, mint and deposit liquidity into every pool, then loan across every
// route and check that the borrowing pool ends where it started.
package flashloan

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/ethereum-optimism/xchain-flashloan/config"
	"github.com/ethereum-optimism/xchain-flashloan/interfaces"
	"github.com/ethereum-optimism/xchain-flashloan/interop/relayer"
	"github.com/ethereum-optimism/xchain-flashloan/metrics"
	"github.com/ethereum-optimism/xchain-flashloan/system"
	"github.com/ethereum-optimism/xchain-flashloan/types"
)

// Step names reported to the progress callback.
const (
	StepFund    = "fund"
	StepMint    = "mint"
	StepApprove = "approve"
	StepDeposit = "deposit"
)

// ProgressFunc is called after every completed setup step on a chain.
type ProgressFunc func(chain string, step string)

type Option func(*Scenario)

func WithProgress(fn ProgressFunc) Option {
	return func(s *Scenario) {
		s.progress = fn
	}
}

func WithRelayer(r *relayer.Relayer) Option {
	return func(s *Scenario) {
		s.relayer = r
	}
}

type Scenario struct {
	log       log.Logger
	m         metrics.Metricer
	sys       *system.System
	contracts config.Contracts
	amounts   config.Amounts
	relayer   *relayer.Relayer
	progress  ProgressFunc

	runID   uuid.UUID
	testKey types.Key

	mu       sync.Mutex
	wallets  map[string]system.Wallet
	decimals *uint8
}

func NewScenario(lgr log.Logger, m metrics.Metricer, sys *system.System, cfg *config.Config, opts ...Option) (*Scenario, error) {
	key, err := cfg.Key()
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.NoopMetrics{}
	}
	runID := uuid.New()
	s := &Scenario{
		log:       lgr.New("run", runID),
		m:         m,
		sys:       sys,
		contracts: cfg.Contracts,
		amounts:   cfg.Amounts,
		progress:  func(string, string) {},
		runID:     runID,
		testKey:   key,
		wallets:   make(map[string]system.Wallet),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.relayer == nil {
		s.relayer, err = relayer.New(s.log.New("role", "relayer"), m, sys, cfg.Relay, s.TestWallet)
		if err != nil {
			return nil, fmt.Errorf("failed to create relayer: %w", err)
		}
	}
	s.log.Info("Created flash loan scenario", "testAccount", s.TestAccount(), "relay", s.relayer.Mode())
	return s, nil
}

func (s *Scenario) RunID() uuid.UUID {
	return s.runID
}

func (s *Scenario) System() *system.System {
	return s.sys
}

func (s *Scenario) Relayer() *relayer.Relayer {
	return s.relayer
}

// TestAccount is the account that holds and deposits the liquidity.
func (s *Scenario) TestAccount() types.Address {
	return crypto.PubkeyToAddress(s.testKey.PublicKey)
}

// TestWallet returns the keyed wallet of the test account on a chain.
func (s *Scenario) TestWallet(chain system.Chain) system.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.wallets[chain.Name()]; ok {
		return w
	}
	w := system.NewWallet(s.testKey, chain, s.log, s.m)
	s.wallets[chain.Name()] = w
	return w
}

// MinterWallet sends as the token minter, which must be impersonated on the chain.
func (s *Scenario) MinterWallet(chain system.Chain) system.Wallet {
	return system.NewImpersonatedWallet(s.contracts.Minter, chain, s.log, s.m)
}

func (s *Scenario) token(chain system.Chain) (interfaces.SuperchainERC20, error) {
	return chain.ContractsRegistry().SuperchainERC20(s.contracts.Token)
}

func (s *Scenario) pool(chain system.Chain) (interfaces.Pool, error) {
	return chain.ContractsRegistry().Pool(s.contracts.Pool)
}

// Decimals reads the token decimals from the first chain. The token is the same
// SuperchainERC20 on every chain, so one read serves all of them.
func (s *Scenario) Decimals(ctx context.Context) (uint8, error) {
	s.mu.Lock()
	cached := s.decimals
	s.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}
	chain := s.sys.Chains()[0]
	token, err := s.token(chain)
	if err != nil {
		return 0, err
	}
	decimals, err := token.Decimals().Call(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read token decimals on %s: %w", chain.Name(), err)
	}
	s.mu.Lock()
	s.decimals = &decimals
	s.mu.Unlock()
	return decimals, nil
}

func (s *Scenario) units(ctx context.Context, amount string) (types.Balance, error) {
	decimals, err := s.Decimals(ctx)
	if err != nil {
		return types.Balance{}, err
	}
	return types.ParseUnits(amount, decimals)
}

// Fund sets the ETH balance of the test account on every chain.
func (s *Scenario) Fund(ctx context.Context) error {
	value, err := types.ParseEther(s.amounts.FundETH)
	if err != nil {
		return fmt.Errorf("invalid fund amount: %w", err)
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, chain := range s.sys.Chains() {
		g.Go(func() error {
			if err := chain.TestClient().SetBalance(gctx, s.TestAccount(), value); err != nil {
				return fmt.Errorf("failed to fund test account on %s: %w", chain.Name(), err)
			}
			s.log.Info("Funded test account", "chain", chain.Name(), "value", value.Ether())
			s.progress(chain.Name(), StepFund)
			return nil
		})
	}
	return g.Wait()
}

// EnsureFunded funds the test account on the chains where it holds less than
// half of the fund amount. Relaying by hand needs gas even when Setup did not
// run with this account.
func (s *Scenario) EnsureFunded(ctx context.Context) error {
	value, err := types.ParseEther(s.amounts.FundETH)
	if err != nil {
		return fmt.Errorf("invalid fund amount: %w", err)
	}
	low := value.Mul(0.5)
	g, gctx := errgroup.WithContext(ctx)
	for _, chain := range s.sys.Chains() {
		g.Go(func() error {
			client, err := chain.Client()
			if err != nil {
				return fmt.Errorf("failed to get client: %w", err)
			}
			have, err := client.BalanceAt(gctx, s.TestAccount(), nil)
			if err != nil {
				return fmt.Errorf("failed to read test account balance on %s: %w", chain.Name(), err)
			}
			if !types.NewBalance(have).LessThan(low) {
				return nil
			}
			if err := chain.TestClient().SetBalance(gctx, s.TestAccount(), value); err != nil {
				return fmt.Errorf("failed to fund test account on %s: %w", chain.Name(), err)
			}
			s.log.Info("Topped up test account", "chain", chain.Name(), "had", types.NewBalance(have).Ether(), "value", value.Ether())
			return nil
		})
	}
	return g.Wait()
}

// Prepare mints the deposit to the test account and deposits it into the pool, on every chain.
func (s *Scenario) Prepare(ctx context.Context) error {
	amount, err := s.units(ctx, s.amounts.Deposit)
	if err != nil {
		return fmt.Errorf("invalid deposit amount: %w", err)
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, chain := range s.sys.Chains() {
		g.Go(func() error {
			if err := s.prepareChain(gctx, chain, amount); err != nil {
				return fmt.Errorf("failed to prepare %s: %w", chain.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Scenario) prepareChain(ctx context.Context, chain system.Chain, amount types.Balance) error {
	lgr := s.log.New("chain", chain.Name())
	token, err := s.token(chain)
	if err != nil {
		return err
	}
	pool, err := s.pool(chain)
	if err != nil {
		return err
	}
	tc := chain.TestClient()
	test := s.TestWallet(chain)

	if err := tc.ImpersonateAccount(ctx, s.contracts.Minter); err != nil {
		return err
	}
	if _, err := system.SendAndWait(ctx, s.MinterWallet(chain).Transact(token.MintTo(test.Address(), amount))); err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	s.progress(chain.Name(), StepMint)

	// the test account signs locally, impersonating it keeps node-side signing available too
	if err := tc.ImpersonateAccount(ctx, test.Address()); err != nil {
		return err
	}
	if _, err := system.SendAndWait(ctx, test.Transact(token.Approve(pool.Address(), amount))); err != nil {
		return fmt.Errorf("approve: %w", err)
	}
	s.progress(chain.Name(), StepApprove)

	if _, err := system.SendAndWait(ctx, test.Transact(pool.Deposit(amount))); err != nil {
		return fmt.Errorf("deposit: %w", err)
	}
	s.progress(chain.Name(), StepDeposit)
	lgr.Info("Deposited liquidity", "amount", amount, "pool", pool.Address())
	return nil
}

// Setup funds the test account and prepares every pool.
func (s *Scenario) Setup(ctx context.Context) error {
	if err := s.Fund(ctx); err != nil {
		return err
	}
	return s.Prepare(ctx)
}

func (s *Scenario) poolBalances(ctx context.Context, route Route) (src, dst types.Balance, err error) {
	for i, chain := range []system.Chain{route.Source, route.Destination} {
		token, err := s.token(chain)
		if err != nil {
			return src, dst, err
		}
		bal, err := token.BalanceOf(s.contracts.Pool).Call(ctx)
		if err != nil {
			return src, dst, fmt.Errorf("failed to read pool balance on %s: %w", chain.Name(), err)
		}
		if i == 0 {
			src = bal
		} else {
			dst = bal
		}
	}
	return src, dst, nil
}

// Loan takes a flash loan on the route's source, relays the resulting messages,
// and checks the source pool balance is unchanged.
func (s *Scenario) Loan(ctx context.Context, route Route) (res *LoanResult, err error) {
	onDone := s.m.RecordLoan(route.String())
	defer func() { onDone(err) }()
	lgr := s.log.New("route", route.String())

	decimals, err := s.Decimals(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := types.ParseUnits(s.amounts.Loan, decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid loan amount: %w", err)
	}
	pool, err := s.pool(route.Source)
	if err != nil {
		return nil, err
	}
	fee, err := pool.FlashFee(amount).Call(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read flash fee: %w", err)
	}
	res = &LoanResult{Route: route, Amount: amount, Fee: fee, Decimals: decimals}
	if res.SourceBefore, res.DestinationBefore, err = s.poolBalances(ctx, route); err != nil {
		return nil, err
	}

	if err := route.Source.TestClient().ImpersonateAccount(ctx, s.contracts.Minter); err != nil {
		return nil, err
	}
	lgr.Info("Requesting flash loan", "amount", amount.Units(decimals), "borrower", s.contracts.FlashBorrower, "fee", fee)
	call := pool.FlashLoan(s.contracts.FlashBorrower, amount, route.Destination.ID())
	receipt, err := system.SendAndWait(ctx, s.MinterWallet(route.Source).Transact(call))
	if err != nil {
		return nil, fmt.Errorf("flash loan on %s: %w", route.Source.Name(), err)
	}
	res.TxHash = receipt.TxHash

	res.Relays, err = s.relayer.RelayReceipt(ctx, route.Source, receipt)
	if err != nil {
		return res, fmt.Errorf("relaying flash loan messages: %w", err)
	}

	if res.SourceAfter, res.DestinationAfter, err = s.poolBalances(ctx, route); err != nil {
		return res, err
	}
	s.m.RecordPoolBalance(route.Source.ID(), res.SourceAfter, decimals)
	s.m.RecordPoolBalance(route.Destination.ID(), res.DestinationAfter, decimals)
	lgr.Info("Flash loan completed", "tx", res.TxHash, "relays", len(res.Relays),
		"sourceBefore", res.SourceBefore, "sourceAfter", res.SourceAfter,
		"destinationBefore", res.DestinationBefore, "destinationAfter", res.DestinationAfter)
	return res, res.Check()
}

// Run sets up the chains and loans across every route. Routes run one after the other,
// and a failed route does not stop the others.
func (s *Scenario) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: s.runID}
	if err := s.Setup(ctx); err != nil {
		return report, fmt.Errorf("setup: %w", err)
	}
	var result *multierror.Error
	for _, route := range Routes(s.sys.Chains()) {
		res, err := s.Loan(ctx, route)
		report.Routes = append(report.Routes, RouteReport{Route: route, Result: res, Err: err})
		if err != nil {
			s.log.Error("Flash loan failed", "route", route, "err", err)
			result = multierror.Append(result, fmt.Errorf("%s: %w", route, err))
		}
	}
	return report, result.ErrorOrNil()
}
