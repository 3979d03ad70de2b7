package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ethereum-optimism/xchain-flashloan/contracts/constants"
	xlog "github.com/ethereum-optimism/xchain-flashloan/log"
	"github.com/ethereum-optimism/xchain-flashloan/metrics"
	"github.com/ethereum-optimism/xchain-flashloan/types"
)

const (
	DefaultConfigYaml = "config.yaml"
	DefaultEnvFile    = ".env"
)

// RelayMode selects how cross-domain messages reach their destination.
type RelayMode string

const (
	// RelayModeAwait waits for an external relayer, such as supersim autorelay.
	RelayModeAwait RelayMode = "await"
	// RelayModeManual sends relayMessage transactions from the test account.
	RelayModeManual RelayMode = "manual"
)

func (m RelayMode) String() string {
	return string(m)
}

func (m *RelayMode) UnmarshalText(text []byte) error {
	switch mode := RelayMode(strings.ToLower(string(text))); mode {
	case RelayModeAwait, RelayModeManual:
		*m = mode
		return nil
	default:
		return fmt.Errorf("unknown relay mode %q", string(text))
	}
}

type ChainConfig struct {
	Name string `yaml:"name" toml:"name"`
	RPC  string `yaml:"rpc" toml:"rpc"`
	// ChainID is used to sanity-check the RPC points at the expected chain. Zero skips the check.
	ChainID uint64 `yaml:"chain_id,omitempty" toml:"chain_id,omitempty"`
}

type Contracts struct {
	Token         common.Address `yaml:"token" toml:"token"`
	Pool          common.Address `yaml:"pool" toml:"pool"`
	Minter        common.Address `yaml:"minter" toml:"minter"`
	FlashBorrower common.Address `yaml:"flash_borrower" toml:"flash_borrower"`
}

// Amounts are decimal strings, in whole ETH or whole tokens.
// Token amounts are scaled by the token decimals once those are known.
type Amounts struct {
	FundETH string `yaml:"fund_eth" toml:"fund_eth"`
	Deposit string `yaml:"deposit" toml:"deposit"`
	Loan    string `yaml:"loan" toml:"loan"`
}

type RelayConfig struct {
	Mode         RelayMode     `yaml:"mode" toml:"mode"`
	Timeout      time.Duration `yaml:"timeout" toml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval" toml:"poll_interval"`
	// MaxHops bounds how many times replies to replies are followed.
	MaxHops int `yaml:"max_hops" toml:"max_hops"`
}

type Config struct {
	Version string `yaml:"-" toml:"-"`

	LogConfig     xlog.CLIConfig    `yaml:"-" toml:"-"`
	MetricsConfig metrics.CLIConfig `yaml:"-" toml:"-"`

	Chains    []ChainConfig `yaml:"chains" toml:"chains"`
	Contracts Contracts     `yaml:"contracts" toml:"contracts"`
	Amounts   Amounts       `yaml:"amounts" toml:"amounts"`
	Relay     RelayConfig   `yaml:"relay" toml:"relay"`

	// PrivateKey of the test account, hex encoded. A fresh key is generated when empty.
	PrivateKey string `yaml:"private_key,omitempty" toml:"private_key,omitempty"`
}

// DefaultConfig targets a local supersim with its two default L2s.
func DefaultConfig() *Config {
	return &Config{
		Version:       "dev",
		LogConfig:     xlog.DefaultCLIConfig(),
		MetricsConfig: metrics.DefaultCLIConfig(),
		Chains: []ChainConfig{
			{Name: "supersimL2A", RPC: "http://127.0.0.1:9545", ChainID: 901},
			{Name: "supersimL2B", RPC: "http://127.0.0.1:9546", ChainID: 902},
		},
		Amounts: Amounts{
			FundETH: constants.DefaultFundETH,
			Deposit: constants.DefaultDepositTokens,
			Loan:    constants.DefaultLoanTokens,
		},
		Relay: RelayConfig{
			Mode:         RelayModeAwait,
			Timeout:      30 * time.Second,
			PollInterval: 250 * time.Millisecond,
			MaxHops:      4,
		},
	}
}

var (
	ErrTooFewChains   = errors.New("at least two chains are required")
	ErrMissingAddress = errors.New("missing contract address")
)

func (c *Config) Check() error {
	var result error
	result = errors.Join(result, c.MetricsConfig.Check())
	result = errors.Join(result, c.checkChains())
	result = errors.Join(result, c.checkContracts())
	result = errors.Join(result, c.checkAmounts())
	result = errors.Join(result, c.checkRelay())
	if c.PrivateKey != "" {
		if _, err := c.Key(); err != nil {
			result = errors.Join(result, err)
		}
	}
	return result
}

func (c *Config) checkChains() error {
	if len(c.Chains) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewChains, len(c.Chains))
	}
	var result error
	names := make(map[string]struct{})
	for i, ch := range c.Chains {
		if ch.Name == "" {
			result = errors.Join(result, fmt.Errorf("chain %d: missing name", i))
		} else if _, ok := names[ch.Name]; ok {
			result = errors.Join(result, fmt.Errorf("chain %d: duplicate name %q", i, ch.Name))
		}
		names[ch.Name] = struct{}{}
		if ch.RPC == "" {
			result = errors.Join(result, fmt.Errorf("chain %q: missing rpc", ch.Name))
		}
	}
	return result
}

func (c *Config) checkContracts() error {
	var result error
	for name, addr := range map[string]common.Address{
		"token":          c.Contracts.Token,
		"pool":           c.Contracts.Pool,
		"minter":         c.Contracts.Minter,
		"flash borrower": c.Contracts.FlashBorrower,
	} {
		if addr == (common.Address{}) {
			result = errors.Join(result, fmt.Errorf("%w: %s", ErrMissingAddress, name))
		}
	}
	return result
}

func (c *Config) checkAmounts() error {
	var result error
	for name, v := range map[string]string{
		"fund_eth": c.Amounts.FundETH,
		"deposit":  c.Amounts.Deposit,
		"loan":     c.Amounts.Loan,
	} {
		// syntax only, the token decimals are not known yet
		b, err := types.ParseUnits(v, math.MaxUint8)
		if err != nil {
			result = errors.Join(result, fmt.Errorf("amount %s: %w", name, err))
		} else if b.Sign() <= 0 {
			result = errors.Join(result, fmt.Errorf("amount %s must be positive, got %q", name, v))
		}
	}
	return result
}

func (c *Config) checkRelay() error {
	var result error
	switch c.Relay.Mode {
	case RelayModeAwait, RelayModeManual:
	default:
		result = errors.Join(result, fmt.Errorf("unknown relay mode %q", c.Relay.Mode))
	}
	if c.Relay.Timeout <= 0 {
		result = errors.Join(result, errors.New("relay timeout must be positive"))
	}
	if c.Relay.PollInterval <= 0 {
		result = errors.Join(result, errors.New("relay poll interval must be positive"))
	}
	if c.Relay.MaxHops < 1 {
		result = errors.Join(result, errors.New("relay max hops must be at least 1"))
	}
	return result
}

// Key parses the configured private key, or generates a new one if none is set.
func (c *Config) Key() (types.Key, error) {
	if c.PrivateKey == "" {
		return crypto.GenerateKey()
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// Chain returns the chain config with the given name.
func (c *Config) Chain(name string) (ChainConfig, bool) {
	for _, ch := range c.Chains {
		if ch.Name == name {
			return ch, true
		}
	}
	return ChainConfig{}, false
}
