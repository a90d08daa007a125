package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"grimm.is/rtlink/internal/brand"
)

// ConsoleHandler writes one line per record:
//
//	2006-01-02T15:04:05Z07:00 rtlink[PID]: [warn] registry: dummy0#6: message key=value
//
// The component and link attributes are lifted out of the key=value tail
// into the header.
type ConsoleHandler struct {
	level slog.Leveler
	out   io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr
}

// NewConsoleHandler creates a ConsoleHandler. A nil opts logs at info.
func NewConsoleHandler(out io.Writer, opts *slog.HandlerOptions) *ConsoleHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &ConsoleHandler{level: level, out: out, mu: &sync.Mutex{}}
}

// Enabled reports whether the handler is enabled for this level.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// header collects the lifted attributes; record values override bound ones.
type header struct {
	component string
	ifname    string
	ifindex   string
}

func (hd *header) take(a slog.Attr) bool {
	switch a.Key {
	case KeyComponent:
		hd.component = strings.ToLower(a.Value.String())
	case KeyIfName:
		hd.ifname = a.Value.String()
	case KeyIfIndex:
		hd.ifindex = a.Value.String()
	default:
		return false
	}
	return true
}

func (hd header) link() string {
	switch {
	case hd.ifname != "" && hd.ifindex != "":
		return hd.ifname + "#" + hd.ifindex
	case hd.ifindex != "":
		return "#" + hd.ifindex
	}
	return hd.ifname
}

// Handle formats and writes r.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var hd header
	var rest []slog.Attr
	for _, a := range h.attrs {
		if !hd.take(a) {
			rest = append(rest, a)
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		if !hd.take(a) {
			rest = append(rest, a)
		}
		return true
	})

	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}

	var b strings.Builder
	b.WriteString(t.Format(time.RFC3339))
	fmt.Fprintf(&b, " %s[%d]: [%s] ", brand.LowerName, os.Getpid(), strings.ToLower(r.Level.String()))
	if hd.component != "" {
		b.WriteString(hd.component)
		b.WriteString(": ")
	}
	if l := hd.link(); l != "" {
		b.WriteString(l)
		b.WriteString(": ")
	}
	b.WriteString(r.Message)
	for _, a := range rest {
		b.WriteByte(' ')
		writeAttr(&b, a)
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func writeAttr(b *strings.Builder, a slog.Attr) {
	b.WriteString(a.Key)
	b.WriteByte('=')
	val := a.Value.Resolve().String()
	if val == "" || strings.ContainsAny(val, " \t\n\"=") {
		b.WriteString(strconv.Quote(val))
		return
	}
	b.WriteString(val)
}

// WithAttrs returns a new handler with the given attributes bound.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &ConsoleHandler{level: h.level, out: h.out, mu: h.mu, attrs: merged}
}

// WithGroup returns h unchanged; console output is flat.
func (h *ConsoleHandler) WithGroup(string) slog.Handler {
	return h
}
