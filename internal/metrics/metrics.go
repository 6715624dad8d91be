// Package metrics records tool and session activity. The engine only sees the
// Recorder interface; the CLI decides whether a Prometheus registry backs it.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the instrumentation surface used by the engine.
type Recorder interface {
	ObserveToolCall(tool string, success bool, d time.Duration)
	IncConnectAttempt(success bool)
	IncReconnect()
}

type noopRecorder struct{}

func (noopRecorder) ObserveToolCall(string, bool, time.Duration) {}
func (noopRecorder) IncConnectAttempt(bool)                      {}
func (noopRecorder) IncReconnect()                               {}

// Noop returns a Recorder that discards everything.
func Noop() Recorder {
	return noopRecorder{}
}

// Prometheus is a Recorder backed by Prometheus collectors.
type Prometheus struct {
	toolTotal       *prometheus.CounterVec
	toolSeconds     *prometheus.HistogramVec
	connectAttempts *prometheus.CounterVec
	reconnects      prometheus.Counter
}

// NewPrometheus creates the collectors and registers them on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		toolTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gomssqlmcp",
			Name:      "tool_calls_total",
			Help:      "Total number of tool calls.",
		}, []string{"tool", "success"}),
		toolSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gomssqlmcp",
			Name:      "tool_call_seconds",
			Help:      "Tool call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool", "success"}),
		connectAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gomssqlmcp",
			Name:      "connect_attempts_total",
			Help:      "Total number of SQL Server connect attempts.",
		}, []string{"success"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gomssqlmcp",
			Name:      "forced_reconnects_total",
			Help:      "Total number of forced reconnects after a failed acquire.",
		}),
	}
	reg.MustRegister(p.toolTotal, p.toolSeconds, p.connectAttempts, p.reconnects)
	return p
}

func (p *Prometheus) ObserveToolCall(tool string, success bool, d time.Duration) {
	label := strconv.FormatBool(success)
	p.toolTotal.WithLabelValues(tool, label).Inc()
	p.toolSeconds.WithLabelValues(tool, label).Observe(d.Seconds())
}

func (p *Prometheus) IncConnectAttempt(success bool) {
	p.connectAttempts.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func (p *Prometheus) IncReconnect() {
	p.reconnects.Inc()
}
