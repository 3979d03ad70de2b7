package flags

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ethereum-optimism/xchain-flashloan/config"
	xlog "github.com/ethereum-optimism/xchain-flashloan/log"
	"github.com/ethereum-optimism/xchain-flashloan/metrics"
	"github.com/ethereum-optimism/xchain-flashloan/service"
)

const EnvVarPrefix = "FLASHLOAN"

const (
	ConfigFlagName       = "config"
	EnvFileFlagName      = "env-file"
	ChainsFlagName       = "chains"
	TokenFlagName        = "token"
	PoolFlagName         = "pool"
	MinterFlagName       = "minter"
	BorrowerFlagName     = "borrower"
	FundFlagName         = "fund-eth"
	DepositFlagName      = "deposit"
	LoanFlagName         = "loan"
	RelayModeFlagName    = "relay.mode"
	RelayTimeoutFlagName = "relay.timeout"
	RelayPollFlagName    = "relay.poll-interval"
	RelayMaxHopsFlagName = "relay.max-hops"
	PrivateKeyFlagName   = "private-key"
)

// envVars lists the environment variables of each domain flag.
// The VITE_* names are the ones used by the frontend .env files.
var envVars = map[string][]string{
	ConfigFlagName:       prefixEnvVars(ConfigFlagName),
	EnvFileFlagName:      prefixEnvVars(EnvFileFlagName),
	ChainsFlagName:       prefixEnvVars(ChainsFlagName),
	TokenFlagName:        append(prefixEnvVars(TokenFlagName), "VITE_TOKEN_CONTRACT_ADDRESS"),
	PoolFlagName:         append(prefixEnvVars(PoolFlagName), "VITE_POOL_ADDRESS"),
	MinterFlagName:       append(prefixEnvVars(MinterFlagName), "VITE_TOKEN_MINTER_ADDRESS"),
	BorrowerFlagName:     append(prefixEnvVars(BorrowerFlagName), "VITE_FLASH_BORROWER"),
	FundFlagName:         prefixEnvVars(FundFlagName),
	DepositFlagName:      prefixEnvVars(DepositFlagName),
	LoanFlagName:         prefixEnvVars(LoanFlagName),
	RelayModeFlagName:    prefixEnvVars(RelayModeFlagName),
	RelayTimeoutFlagName: prefixEnvVars(RelayTimeoutFlagName),
	RelayPollFlagName:    prefixEnvVars(RelayPollFlagName),
	RelayMaxHopsFlagName: prefixEnvVars(RelayMaxHopsFlagName),
	PrivateKeyFlagName:   prefixEnvVars(PrivateKeyFlagName),
}

func prefixEnvVars(flagName string) []string {
	return service.PrefixEnvVar(EnvVarPrefix, service.EnvVarName(flagName))
}

func stringFlag(name, category, usage, value string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     name,
		Category: category,
		Usage:    usage,
		Value:    value,
		EnvVars:  envVars[name],
	}
}

// Flags creates the flag definitions of the binary.
// Flags hold their parsed values, so every app needs its own set.
func Flags() []cli.Flag {
	flags := []cli.Flag{
		stringFlag(ConfigFlagName, "CONFIG", "YAML or TOML (.toml) configuration file. Ignored if it does not exist, unless set explicitly", config.DefaultConfigYaml),
		stringFlag(EnvFileFlagName, "CONFIG", "Dotenv file with VITE_* contract addresses. Process environment takes precedence", config.DefaultEnvFile),
		&cli.StringSliceFlag{
			Name:     ChainsFlagName,
			Category: "CHAINS",
			Usage:    "Chains to run against, as name=rpc-url[@chain-id]. At least two are required",
			EnvVars:  envVars[ChainsFlagName],
		},
		stringFlag(TokenFlagName, "CONTRACTS", "L2NativeSuperchainERC20 token address", ""),
		stringFlag(PoolFlagName, "CONTRACTS", "Pool contract address", ""),
		stringFlag(MinterFlagName, "CONTRACTS", "Token minter, impersonated to mint test tokens", ""),
		stringFlag(BorrowerFlagName, "CONTRACTS", "Flash borrower contract address", ""),
		stringFlag(FundFlagName, "AMOUNTS", "ETH to fund the test account with on every chain", ""),
		stringFlag(DepositFlagName, "AMOUNTS", "Tokens to mint and deposit into every pool", ""),
		stringFlag(LoanFlagName, "AMOUNTS", "Tokens to borrow per flash loan", ""),
		stringFlag(RelayModeFlagName, "RELAY", "How messages are relayed: 'await' waits for autorelay, 'manual' sends relayMessage", ""),
		&cli.DurationFlag{
			Name:     RelayTimeoutFlagName,
			Category: "RELAY",
			Usage:    "Time to wait for a relayed message",
			EnvVars:  envVars[RelayTimeoutFlagName],
		},
		&cli.DurationFlag{
			Name:     RelayPollFlagName,
			Category: "RELAY",
			Usage:    "Interval between polls for relayed messages",
			EnvVars:  envVars[RelayPollFlagName],
		},
		&cli.IntFlag{
			Name:     RelayMaxHopsFlagName,
			Category: "RELAY",
			Usage:    "Maximum depth of reply messages to follow",
			EnvVars:  envVars[RelayMaxHopsFlagName],
		},
		stringFlag(PrivateKeyFlagName, "ACCOUNT", "Hex private key of the test account. A new key is generated if empty", ""),
	}
	flags = append(flags, xlog.CLIFlags(EnvVarPrefix)...)
	flags = append(flags, metrics.CLIFlags(EnvVarPrefix)...)
	return flags
}

// lookup returns the flag value if it was set on the command line or in the
// environment when the flags were parsed, and otherwise checks the environment
// again, to pick up variables loaded from the env file.
func lookup(ctx *cli.Context, name string) (string, bool) {
	if ctx.IsSet(name) {
		return ctx.String(name), true
	}
	for _, key := range envVars[name] {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// ConfigFromCLI builds the config from, lowest precedence first: defaults,
// the YAML file, the env file and environment, and the command line.
func ConfigFromCLI(ctx *cli.Context, version string) (*config.Config, error) {
	fs := afero.NewOsFs()
	if _, err := config.LoadDotEnv(fs, ctx.String(EnvFileFlagName)); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	path, explicit := lookup(ctx, ConfigFlagName)
	if !explicit {
		path = ctx.String(ConfigFlagName)
	}
	if exists, _ := afero.Exists(fs, path); exists || explicit {
		loaded, err := config.NewFileLoader(fs, path).Load(context.Background())
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.Version = version
	cfg.LogConfig = xlog.ReadCLIConfig(ctx)
	cfg.MetricsConfig = metrics.ReadCLIConfig(ctx)

	if err := apply(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func apply(ctx *cli.Context, cfg *config.Config) error {
	if ctx.IsSet(ChainsFlagName) {
		chains, err := ParseChains(ctx.StringSlice(ChainsFlagName))
		if err != nil {
			return err
		}
		cfg.Chains = chains
	} else if v, ok := lookup(ctx, ChainsFlagName); ok {
		chains, err := ParseChains(strings.Split(v, ","))
		if err != nil {
			return err
		}
		cfg.Chains = chains
	}

	for name, dst := range map[string]*common.Address{
		TokenFlagName:    &cfg.Contracts.Token,
		PoolFlagName:     &cfg.Contracts.Pool,
		MinterFlagName:   &cfg.Contracts.Minter,
		BorrowerFlagName: &cfg.Contracts.FlashBorrower,
	} {
		v, ok := lookup(ctx, name)
		if !ok {
			continue
		}
		if !common.IsHexAddress(v) {
			return fmt.Errorf("invalid %s address %q", name, v)
		}
		*dst = common.HexToAddress(v)
	}

	for name, dst := range map[string]*string{
		FundFlagName:       &cfg.Amounts.FundETH,
		DepositFlagName:    &cfg.Amounts.Deposit,
		LoanFlagName:       &cfg.Amounts.Loan,
		PrivateKeyFlagName: &cfg.PrivateKey,
	} {
		if v, ok := lookup(ctx, name); ok {
			*dst = v
		}
	}

	if v, ok := lookup(ctx, RelayModeFlagName); ok {
		if err := cfg.Relay.Mode.UnmarshalText([]byte(v)); err != nil {
			return err
		}
	}
	for name, dst := range map[string]*time.Duration{
		RelayTimeoutFlagName: &cfg.Relay.Timeout,
		RelayPollFlagName:    &cfg.Relay.PollInterval,
	} {
		if ctx.IsSet(name) {
			*dst = ctx.Duration(name)
		} else if v, ok := lookup(ctx, name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*dst = d
		}
	}
	if ctx.IsSet(RelayMaxHopsFlagName) {
		cfg.Relay.MaxHops = ctx.Int(RelayMaxHopsFlagName)
	} else if v, ok := lookup(ctx, RelayMaxHopsFlagName); ok {
		hops, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", RelayMaxHopsFlagName, err)
		}
		cfg.Relay.MaxHops = hops
	}
	return nil
}

// ParseChains parses name=rpc-url[@chain-id] entries.
func ParseChains(entries []string) ([]config.ChainConfig, error) {
	var out []config.ChainConfig
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, rpc, ok := strings.Cut(entry, "=")
		if !ok || name == "" || rpc == "" {
			return nil, fmt.Errorf("invalid chain %q, expected name=rpc-url[@chain-id]", entry)
		}
		ch := config.ChainConfig{Name: name, RPC: rpc}
		// a trailing @<digits> is the chain id, anything else is part of the URL
		if i := strings.LastIndex(rpc, "@"); i >= 0 {
			if id, err := strconv.ParseUint(rpc[i+1:], 10, 64); err == nil {
				ch.RPC, ch.ChainID = rpc[:i], id
			}
		}
		out = append(out, ch)
	}
	return out, nil
}
