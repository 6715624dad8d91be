package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusToolCalls(t *testing.T) {
	t.Parallel()
	p := NewPrometheus(prometheus.NewRegistry())

	p.ObserveToolCall("query", true, 20*time.Millisecond)
	p.ObserveToolCall("query", true, 30*time.Millisecond)
	p.ObserveToolCall("query", false, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(p.toolTotal.WithLabelValues("query", "true")))
	require.Equal(t, 1.0, testutil.ToFloat64(p.toolTotal.WithLabelValues("query", "false")))
	require.Equal(t, 0.0, testutil.ToFloat64(p.toolTotal.WithLabelValues("server_info", "true")))
}

func TestPrometheusConnects(t *testing.T) {
	t.Parallel()
	p := NewPrometheus(prometheus.NewRegistry())

	p.IncConnectAttempt(false)
	p.IncConnectAttempt(true)
	p.IncReconnect()

	require.Equal(t, 1.0, testutil.ToFloat64(p.connectAttempts.WithLabelValues("true")))
	require.Equal(t, 1.0, testutil.ToFloat64(p.connectAttempts.WithLabelValues("false")))
	require.Equal(t, 1.0, testutil.ToFloat64(p.reconnects))
}

func TestPrometheusRegistersOnce(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	NewPrometheus(reg)
	require.Panics(t, func() { NewPrometheus(reg) })
}

func TestNoop(t *testing.T) {
	t.Parallel()
	r := Noop()
	require.NotPanics(t, func() {
		r.ObserveToolCall("query", true, time.Second)
		r.IncConnectAttempt(true)
		r.IncReconnect()
	})
}
