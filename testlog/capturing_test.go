package testlog_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/xchain-flashloan/testlog"
)

func TestCaptureLogger(t *testing.T) {
	lgr, logs := testlog.CaptureLogger(t, log.LevelInfo)
	msg := "relayed message"
	lgr.Info(msg, "route", "901->902", "hops", 1)
	lgr.Debug("not captured")

	rec := logs.FindLog(testlog.NewMessageFilter(msg))
	require.NotNil(t, rec)
	require.Equal(t, msg, rec.Message)
	require.Equal(t, "901->902", rec.AttrValue("route"))
	require.EqualValues(t, 1, rec.AttrValue("hops"))
	require.Nil(t, logs.FindLog(testlog.NewMessageFilter("not captured")))

	lgr.With("chain", "901").Error("send failed", "err", errors.New("nonce too low"))
	rec = logs.FindLog(
		testlog.NewLevelFilter(log.LevelError),
		testlog.NewAttributesFilter("chain", "901"),
		testlog.NewErrContainsFilter("nonce"),
	)
	require.NotNil(t, rec)
	require.Equal(t, "send failed", rec.Message)

	require.Len(t, logs.FindLogs(testlog.NewMessageContainsFilter("ed")), 2)
	logs.Clear()
	require.Empty(t, logs.FindLogs())
}
