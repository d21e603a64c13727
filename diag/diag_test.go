package diag

import (
	"bytes"
	"sync"
	"testing"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Emit(NewEvent(KindGroupCount, "groups", "count", 1))
		}()
	}
	wg.Wait()
	r.Emit(NewEvent(KindLimitClamped, "clamped"))

	assert.Len(t, r.Events(), 11)
	assert.True(t, r.Has(KindLimitClamped))
	assert.False(t, r.Has(KindFallbackPrefix))
	assert.Equal(t, KindLimitClamped, r.Kinds()[10])
}

func TestLogSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.NewLogfmtLogger(&buf)

	sink := NewLogSink(logger)
	sink.Emit(NewEvent(KindPredicateFailOpen, "treating leaf as satisfied", "leaf", "x ~ 1"))
	assert.Contains(t, buf.String(), "level=warn")
	assert.Contains(t, buf.String(), "event=predicate-fail-open")
	assert.Contains(t, buf.String(), `leaf="x ~ 1"`)

	buf.Reset()
	filtered := NewLogSink(level.NewFilter(logger, level.AllowInfo()))
	filtered.Emit(NewEvent(KindGroupCount, "aggregation finished", "groups", 3))
	assert.Empty(t, buf.String(), "debug events are filtered at info level")
}

func TestMulti(t *testing.T) {
	t.Parallel()

	a, b := NewRecorder(), NewRecorder()
	sink := Multi(a, nil, b)
	sink.Emit(NewEvent(KindReadRetry, "retrying"))

	assert.Equal(t, []Kind{KindReadRetry}, a.Kinds())
	assert.Equal(t, []Kind{KindReadRetry}, b.Kinds())
	assert.Same(t, a, Multi(a))
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Emit(NewEvent(KindFallbackPrefix, "fallback"))
	m.Emit(NewEvent(KindFallbackPrefix, "fallback"))
	m.QueriesTotal.WithLabelValues("flat").Inc()

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues(string(KindFallbackPrefix))), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("flat")), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "filequery_diagnostic_events_total")
	assert.Contains(t, names, "filequery_queries_total")

	// unregistered collectors still work
	NewMetrics(nil).Emit(NewEvent(KindGroupCount, "groups"))
}
