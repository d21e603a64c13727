// Package diag carries the diagnostic event stream emitted while a query runs.
package diag

import (
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Kind identifies a diagnostic event
type Kind string

const (
	// KindParseAmbiguity is emitted when the SELECT clause cannot be located
	KindParseAmbiguity Kind = "parse-ambiguity"
	// KindLimitClamped is emitted when a requested LIMIT exceeds the row ceiling
	KindLimitClamped Kind = "limit-clamped"
	// KindPredicateFailOpen is emitted when a WHERE leaf cannot be evaluated and is treated as satisfied
	KindPredicateFailOpen Kind = "predicate-fail-open"
	// KindGroupCount reports the number of groups produced by aggregation
	KindGroupCount Kind = "group-count"
	// KindDegenerateTimeSeries is emitted when date bucketing yields one bucket or only NULL buckets
	KindDegenerateTimeSeries Kind = "degenerate-time-series-warning"
	// KindOrderByResolved reports which output column a post-aggregation ORDER BY resolved to
	KindOrderByResolved Kind = "order-by-resolved"
	// KindFallbackPrefix is emitted when the raw table prefix is returned instead of a result
	KindFallbackPrefix Kind = "fallback-prefix"
	// KindReadRetry is emitted when the primary read fails and the fallback read is attempted
	KindReadRetry Kind = "read-retry"
	// KindStrictGroupByRejected is emitted when the strict GROUP BY policy rejects a query
	KindStrictGroupByRejected Kind = "strict-group-by-rejected"
)

// IsWarning reports whether the kind signals degraded results
func (k Kind) IsWarning() bool {
	switch k {
	case KindParseAmbiguity, KindPredicateFailOpen, KindDegenerateTimeSeries,
		KindFallbackPrefix, KindReadRetry, KindStrictGroupByRejected, KindLimitClamped:
		return true
	default:
		return false
	}
}

// Event is one diagnostic observation
type Event struct {
	Kind    Kind
	Message string
	// KeyVals are extra key/value pairs in go-kit log order
	KeyVals []any
}

// NewEvent creates an event
func NewEvent(kind Kind, msg string, keyvals ...any) Event {
	return Event{Kind: kind, Message: msg, KeyVals: keyvals}
}

// Sink receives diagnostic events. Implementations must be safe for concurrent use.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(Event)

// Emit calls f(e)
func (f SinkFunc) Emit(e Event) {
	f(e)
}

// Nop discards every event
var Nop Sink = SinkFunc(func(Event) {})

type multi []Sink

func (m multi) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

// Multi fans events out to every non-nil sink
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

type logSink struct {
	logger log.Logger
}

// NewLogSink logs events as logfmt-style key/value pairs.
// Warnings are logged at warn level, everything else at debug.
func NewLogSink(logger log.Logger) Sink {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &logSink{logger: logger}
}

func (s *logSink) Emit(e Event) {
	keyvals := append([]any{"msg", e.Message, "event", string(e.Kind)}, e.KeyVals...)
	if e.Kind.IsWarning() {
		level.Warn(s.logger).Log(keyvals...)
		return
	}
	level.Debug(s.logger).Log(keyvals...)
}

// Recorder keeps every event in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit records e
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the recorded event kinds in order
func (r *Recorder) Kinds() []Kind {
	events := r.Events()
	kinds := make([]Kind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Has reports whether an event of kind k was recorded
func (r *Recorder) Has(k Kind) bool {
	for _, e := range r.Events() {
		if e.Kind == k {
			return true
		}
	}
	return false
}
