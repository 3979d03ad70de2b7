package log

import (
	"bytes"
	"log/slog"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/log"
)

func runFlags(t *testing.T, args ...string) CLIConfig {
	var cfg CLIConfig
	app := cli.NewApp()
	app.Flags = CLIFlags("TEST")
	app.Action = func(ctx *cli.Context) error {
		cfg = ReadCLIConfig(ctx)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"testapp"}, args...)))
	return cfg
}

func TestCLIConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := runFlags(t)
		require.Equal(t, log.LevelInfo, cfg.Level)
		require.Equal(t, FormatText, cfg.Format)
	})
	t.Run("flags", func(t *testing.T) {
		cfg := runFlags(t, "--log.level=DEBUG", "--log.format=json", "--log.color")
		require.Equal(t, log.LevelDebug, cfg.Level)
		require.Equal(t, FormatJSON, cfg.Format)
		require.True(t, cfg.Color)
	})
	t.Run("env", func(t *testing.T) {
		t.Setenv("TEST_LOG_LEVEL", "warn")
		t.Setenv("TEST_LOG_FORMAT", "logfmt")
		cfg := runFlags(t)
		require.Equal(t, log.LevelWarn, cfg.Level)
		require.Equal(t, FormatLogFmt, cfg.Format)
	})
	t.Run("invalid", func(t *testing.T) {
		app := cli.NewApp()
		app.Flags = CLIFlags("TEST")
		app.Action = func(ctx *cli.Context) error { return nil }
		require.ErrorContains(t, app.Run([]string{"testapp", "--log.format=xml"}), "unrecognized log-format")
	})
}

func TestLevelFromString(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"trace": log.LevelTrace,
		"DBUG":  log.LevelDebug,
		"info":  log.LevelInfo,
		"warn":  log.LevelWarn,
		"eror":  log.LevelError,
		"crit":  log.LevelCrit,
	} {
		got, err := LevelFromString(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := LevelFromString("loud")
	require.ErrorContains(t, err, "unknown level")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewLogger(&buf, CLIConfig{Level: log.LevelInfo, Format: FormatLogFmt})
	lgr.Debug("hidden")
	lgr.Info("loan sent", "amount", big.NewInt(1000), "chain", uint256.NewInt(901), "nilAmount", (*big.Int)(nil), "payload", []byte{0xca, 0xfe})
	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "lvl=info")
	require.Contains(t, out, "amount=1000")
	require.Contains(t, out, "chain=901")
	require.Contains(t, out, "nilAmount=<nil>")
	require.Contains(t, out, "payload=0xcafe")

	buf.Reset()
	lgr = NewLogger(&buf, CLIConfig{Level: log.LevelDebug, Format: FormatJSON})
	lgr.Debug("relayed", "source", big.NewInt(901))
	require.Contains(t, buf.String(), `"lvl":"debug"`)
	require.Contains(t, buf.String(), `"source":"901"`)
}

func TestFormatHandlerPanicsOnUnknown(t *testing.T) {
	require.Panics(t, func() { FormatHandler("xml", false) })
}

func TestFindHandler(t *testing.T) {
	inner := LogfmtMsHandlerWithLevel(new(bytes.Buffer), log.LevelInfo)
	wrapped := &unwrapper{Handler: inner}
	found, ok := FindHandler[*slog.TextHandler](wrapped)
	require.True(t, ok)
	require.Same(t, inner, found)

	_, ok = FindHandler[*slog.JSONHandler](wrapped)
	require.False(t, ok)
}

type unwrapper struct {
	slog.Handler
}

func (u *unwrapper) Unwrap() slog.Handler {
	return u.Handler
}
