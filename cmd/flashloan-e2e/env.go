package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/xchain-flashloan/config"
	"github.com/ethereum-optimism/xchain-flashloan/flags"
	"github.com/ethereum-optimism/xchain-flashloan/flashloan"
	xlog "github.com/ethereum-optimism/xchain-flashloan/log"
	"github.com/ethereum-optimism/xchain-flashloan/metrics"
	"github.com/ethereum-optimism/xchain-flashloan/system"
)

// env is what every command that talks to the chains needs.
type env struct {
	cfg      *config.Config
	log      log.Logger
	m        *metrics.Metrics
	sys      *system.System
	scenario *flashloan.Scenario

	metricsSrv *metrics.Server
}

func newEnv(cliCtx *cli.Context, opts ...flashloan.Option) (*env, error) {
	cfg, err := flags.ConfigFromCLI(cliCtx, cliCtx.App.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	lgr := xlog.NewLogger(cliCtx.App.ErrWriter, cfg.LogConfig)
	xlog.SetGlobalLogHandler(lgr.Handler())

	e := &env{cfg: cfg, log: lgr, m: metrics.NewMetrics("default")}
	if mc := cfg.MetricsConfig; mc.Enabled {
		e.metricsSrv, err = metrics.StartServer(e.m.Registry(), mc.ListenAddr, mc.ListenPort)
		if err != nil {
			return nil, fmt.Errorf("failed to start metrics server: %w", err)
		}
		lgr.Info("Started metrics server", "addr", e.metricsSrv.Addr())
	}
	e.m.RecordInfo(cfg.Version)
	e.m.RecordUp()

	e.sys, err = system.NewSystem(cliCtx.Context, lgr, cfg.Chains)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to connect to chains: %w", err), e.Close())
	}
	e.scenario, err = flashloan.NewScenario(lgr, e.m, e.sys, cfg, opts...)
	if err != nil {
		return nil, errors.Join(err, e.Close())
	}
	return e, nil
}

func (e *env) Close() error {
	if e.sys != nil {
		e.sys.Close()
	}
	if e.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.metricsSrv.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop metrics server: %w", err)
		}
	}
	return nil
}
