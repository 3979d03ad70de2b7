package testlog

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	xlog "github.com/ethereum-optimism/xchain-flashloan/log"
)

// Record is a captured log line with the attributes of the record and of
// every With() call on the way to it, innermost first.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   []slog.Attr
}

// AttrValue returns the value of the innermost attribute named key, or nil.
func (r *Record) AttrValue(key string) any {
	i := slices.IndexFunc(r.Attrs, func(a slog.Attr) bool { return a.Key == key })
	if i < 0 {
		return nil
	}
	return r.Attrs[i].Value.Any()
}

type recordLog struct {
	mu      sync.Mutex
	records []*Record
}

// CapturingHandler keeps every record it handles before passing it on.
// Handlers derived with WithAttrs share the same log.
type CapturingHandler struct {
	next  slog.Handler
	log   *recordLog
	attrs []slog.Attr
}

var _ xlog.Handler = (*CapturingHandler)(nil)

func WrapCaptureLogger(h slog.Handler) slog.Handler {
	return &CapturingHandler{next: h, log: new(recordLog)}
}

// CaptureLogger returns a test logger and the handler holding what it logged.
func CaptureLogger(t Testing, level slog.Level) (log.Logger, *CapturingHandler) {
	logger := LoggerWithHandlerMod(t, level, WrapCaptureLogger)
	h, ok := xlog.FindHandler[*CapturingHandler](logger.Handler())
	if !ok {
		t.Logf("capturing handler missing from %T", logger.Handler())
		t.FailNow()
	}
	return logger, h
}

func (c *CapturingHandler) Unwrap() slog.Handler {
	return c.next
}

func (c *CapturingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return c.next.Enabled(ctx, level)
}

func (c *CapturingHandler) Handle(ctx context.Context, r slog.Record) error {
	rec := &Record{Level: r.Level, Message: r.Message, Attrs: make([]slog.Attr, 0, r.NumAttrs()+len(c.attrs))}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs = append(rec.Attrs, a)
		return true
	})
	rec.Attrs = append(rec.Attrs, c.attrs...)
	c.log.mu.Lock()
	c.log.records = append(c.log.records, rec)
	c.log.mu.Unlock()
	return c.next.Handle(ctx, r)
}

func (c *CapturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CapturingHandler{
		next:  c.next.WithAttrs(attrs),
		log:   c.log,
		attrs: append(slices.Clone(attrs), c.attrs...),
	}
}

// WithGroup keeps capturing but attributes inside the group are not inspected.
func (c *CapturingHandler) WithGroup(name string) slog.Handler {
	return &CapturingHandler{next: c.next.WithGroup(name), log: c.log}
}

func (c *CapturingHandler) Clear() {
	c.log.mu.Lock()
	defer c.log.mu.Unlock()
	c.log.records = nil
}

// FindLog returns the first record matching all filters, or nil.
func (c *CapturingHandler) FindLog(filters ...LogFilter) *Record {
	if found := c.FindLogs(filters...); len(found) > 0 {
		return found[0]
	}
	return nil
}

func (c *CapturingHandler) FindLogs(filters ...LogFilter) []*Record {
	c.log.mu.Lock()
	defer c.log.mu.Unlock()
	var out []*Record
	for _, r := range c.log.records {
		if matchAll(r, filters) {
			out = append(out, r)
		}
	}
	return out
}

func matchAll(r *Record, filters []LogFilter) bool {
	for _, f := range filters {
		if !f(r) {
			return false
		}
	}
	return true
}

type LogFilter func(*Record) bool

func NewLevelFilter(level slog.Level) LogFilter {
	return func(r *Record) bool { return r.Level == level }
}

func NewMessageFilter(msg string) LogFilter {
	return func(r *Record) bool { return r.Message == msg }
}

func NewMessageContainsFilter(part string) LogFilter {
	return func(r *Record) bool { return strings.Contains(r.Message, part) }
}

// NewAttributesFilter matches records with an attribute key whose value renders as value.
func NewAttributesFilter(key, value string) LogFilter {
	return func(r *Record) bool {
		return slices.ContainsFunc(r.Attrs, func(a slog.Attr) bool {
			return a.Key == key && a.Value.String() == value
		})
	}
}

func NewErrContainsFilter(part string) LogFilter {
	return func(r *Record) bool {
		err, ok := r.AttrValue("err").(error)
		return ok && strings.Contains(err.Error(), part)
	}
}
