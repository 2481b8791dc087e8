package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

// consoleHandler writes one headline per record:
//
//	2026-03-14 15:09:00 WARN  resultcache: cache not persisted (cache_save_failed) run=1a2b3c4d programa=7 error="disk full"
//	    impact: results will not survive this session
//	    hint: check free space in the state directory
//
// Correlation fields lead the key/value list. Impact and hint go on their own
// indented lines.
type consoleHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	level  slog.Level
	prefix string
	attrs  []slog.Attr
}

func newConsoleHandler(w io.Writer, level slog.Level) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, out: w, level: level}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, attr := range attrs {
		attr.Key = h.prefix + attr.Key
		next.attrs = append(next.attrs, attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// consoleRecord is a record split into the parts the console layout places.
type consoleRecord struct {
	component string
	eventType string
	impact    string
	hint      string
	runID     string
	programa  string
	operation string
	fields    []string
}

func (r *consoleRecord) add(key string, value slog.Value) {
	value = value.Resolve()
	if value.Kind() == slog.KindGroup {
		for _, attr := range value.Group() {
			sub := attr.Key
			if key != "" {
				sub = key + "." + attr.Key
			}
			r.add(sub, attr.Value)
		}
		return
	}
	switch key {
	case "":
	case FieldComponent:
		r.component = plain(value)
	case FieldEventType:
		r.eventType = plain(value)
	case FieldImpact:
		r.impact = plain(value)
	case FieldErrorHint:
		r.hint = plain(value)
	case FieldRunID:
		r.runID = shortID(plain(value))
	case FieldProgramaID:
		r.programa = plain(value)
	case FieldOperation:
		r.operation = plain(value)
	case FieldCorrelationID:
		// Runs reuse their id as request id; print only other ids.
		if id := plain(value); shortID(id) != r.runID {
			r.fields = append(r.fields, "request="+quoted(id))
		}
	default:
		r.fields = append(r.fields, key+"="+quoted(plain(value)))
	}
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	var rec consoleRecord
	for _, attr := range h.attrs {
		rec.add(attr.Key, attr.Value)
	}
	record.Attrs(func(attr slog.Attr) bool {
		rec.add(h.prefix+attr.Key, attr.Value)
		return true
	})

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	b.WriteString(ts.Format(consoleTimeLayout))
	fmt.Fprintf(&b, " %-5s ", levelLabel(record.Level))
	if rec.component != "" {
		b.WriteString(rec.component)
		b.WriteString(": ")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(msg)
	if rec.eventType != "" {
		b.WriteString(" (" + rec.eventType + ")")
	}
	if h.level <= slog.LevelDebug && record.PC != 0 {
		if src := record.Source(); src != nil {
			b.WriteString(" [" + sourceLabel(src) + "]")
		}
	}

	leading := make([]string, 0, 3)
	if rec.runID != "" {
		leading = append(leading, "run="+rec.runID)
	}
	if rec.programa != "" {
		leading = append(leading, "programa="+rec.programa)
	}
	if rec.operation != "" {
		leading = append(leading, "op="+rec.operation)
	}
	for _, field := range append(leading, rec.fields...) {
		b.WriteByte(' ')
		b.WriteString(field)
	}
	b.WriteByte('\n')
	if rec.impact != "" {
		b.WriteString("    impact: " + rec.impact + "\n")
	}
	if rec.hint != "" {
		b.WriteString("    hint: " + rec.hint + "\n")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}

// shortID keeps the first block of a uuid.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func plain(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return v.String()
}

func quoted(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\r\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
