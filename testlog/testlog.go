// Copyright 2019 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package testlog provides a log handler for unit tests.
package testlog

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	xlog "github.com/ethereum-optimism/xchain-flashloan/log"
)

var useColorInTestLog = os.Getenv("FLASHLOAN_TESTLOG_DISABLE_COLOR") != "true"

// Testing is the subset of testing.TB the logger needs.
type Testing interface {
	Logf(format string, args ...any)
	Helper()
	FailNow()
	Name() string
	Cleanup(func())
}

// logger routes every record to t.Logf. Its methods are test helpers so that
// the reported file:line is the caller's.
type logger struct {
	t   Testing
	l   log.Logger
	mu  *sync.Mutex
	buf *lineBuffer
}

var _ log.Logger = (*logger)(nil)

// Logger returns a logger which logs to the unit test log of t.
func Logger(t Testing, level slog.Level) log.Logger {
	return LoggerWithHandlerMod(t, level)
}

func LoggerWithHandlerMod(t Testing, level slog.Level, handlerMods ...xlog.HandlerMod) log.Logger {
	l := &logger{t: t, mu: new(sync.Mutex), buf: new(lineBuffer)}

	var handler slog.Handler = log.NewTerminalHandlerWithLevel(l.buf, level, useColorInTestLog)
	for _, mod := range handlerMods {
		handler = mod(handler)
	}
	l.l = log.NewLogger(handler)
	return l
}

func (l *logger) Handler() slog.Handler {
	return l.l.Handler()
}

func (l *logger) SetContext(ctx context.Context) {}

// emit runs fn under the logger lock and flushes whatever it wrote to the test log.
func (l *logger) emit(fn func()) {
	l.t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
	l.flush()
}

func (l *logger) LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	l.t.Helper()
	l.emit(func() { l.l.LogAttrs(ctx, level, msg, attrs...) })
}

func (l *logger) TraceContext(ctx context.Context, msg string, args ...any) {
	l.t.Helper()
	l.emit(func() { l.l.TraceContext(ctx, msg, args...) })
}

func (l *logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.t.Helper()
	l.emit(func() { l.l.DebugContext(ctx, msg, args...) })
}

func (l *logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.t.Helper()
	l.emit(func() { l.l.InfoContext(ctx, msg, args...) })
}

func (l *logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.t.Helper()
	l.emit(func() { l.l.WarnContext(ctx, msg, args...) })
}

func (l *logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.t.Helper()
	l.emit(func() { l.l.ErrorContext(ctx, msg, args...) })
}

func (l *logger) Trace(msg string, ctx ...any) {
	l.t.Helper()
	l.emit(func() { l.l.Trace(msg, ctx...) })
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.t.Helper()
	l.emit(func() { l.l.Debug(msg, ctx...) })
}

func (l *logger) Info(msg string, ctx ...any) {
	l.t.Helper()
	l.emit(func() { l.l.Info(msg, ctx...) })
}

func (l *logger) Warn(msg string, ctx ...any) {
	l.t.Helper()
	l.emit(func() { l.l.Warn(msg, ctx...) })
}

func (l *logger) Error(msg string, ctx ...any) {
	l.t.Helper()
	l.emit(func() { l.l.Error(msg, ctx...) })
}

func (l *logger) Crit(msg string, ctx ...any) {
	l.t.Helper()
	// l.l.Crit would exit the process before the buffer is flushed.
	l.emit(func() { l.l.Write(log.LevelCrit, msg, ctx...) })
	l.t.FailNow()
}

func (l *logger) Log(level slog.Level, msg string, ctx ...any) {
	l.t.Helper()
	l.emit(func() { l.l.Log(level, msg, ctx...) })
}

func (l *logger) Write(level slog.Level, msg string, ctx ...any) {
	l.t.Helper()
	l.emit(func() { l.l.Log(level, msg, ctx...) })
}

func (l *logger) WriteCtx(ctx context.Context, level slog.Level, msg string, args ...interface{}) {
	l.t.Helper()
	l.emit(func() { l.l.WriteCtx(ctx, level, msg, args...) })
}

func (l *logger) New(ctx ...any) log.Logger {
	return &logger{l.t, l.l.New(ctx...), l.mu, l.buf}
}

func (l *logger) With(ctx ...any) log.Logger {
	return l.New(ctx...)
}

func (l *logger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.l.Enabled(ctx, level)
}

// flush forwards every complete line written so far to the test log.
func (l *logger) flush() {
	l.t.Helper()
	for _, line := range l.buf.drain() {
		l.logf(line)
	}
}

func (l *logger) logf(line string) {
	// t.Logf panics once the test has finished, e.g. for late goroutine output.
	defer func() {
		if r := recover(); r != nil {
			log.Warn("testlog: dropped line after test end", "test", l.t.Name(), "line", line)
		}
	}()
	l.t.Helper()
	l.t.Logf("%s", line)
}

// lineBuffer collects handler output until the logger flushes it.
// Handlers obtained through Handler() may write to it concurrently.
type lineBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lineBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lineBuffer) drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	text := strings.TrimRight(b.buf.String(), "\n")
	b.buf.Reset()
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
