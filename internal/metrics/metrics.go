// Package metrics exposes the dashboard's Prometheus counters on a private
// registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry implements service.Observer.
type Registry struct {
	reg                  *prometheus.Registry
	PollTicks            prometheus.Counter
	Fetches              *prometheus.CounterVec
	FetchLatencySec      *prometheus.HistogramVec
	Actions              *prometheus.CounterVec
	SessionInvalidations *prometheus.CounterVec
	WSClients            prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	pollTicks := prometheus.NewCounter(prometheus.CounterOpts{Name: "dashboard_poll_ticks_total"})
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_order_fetches_total",
	}, []string{"mode", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_order_fetch_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_order_actions_total",
	}, []string{"action", "outcome"})
	invalidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_session_invalidations_total",
	}, []string{"reason"})
	wsClients := prometheus.NewGauge(prometheus.GaugeOpts{Name: "dashboard_ws_clients"})

	r.MustRegister(pollTicks, fetches, latency, actions, invalidations, wsClients)
	return &Registry{
		reg:                  r,
		PollTicks:            pollTicks,
		Fetches:              fetches,
		FetchLatencySec:      latency,
		Actions:              actions,
		SessionInvalidations: invalidations,
		WSClients:            wsClients,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

func (r *Registry) FetchCompleted(loud bool, d time.Duration, err error) {
	mode := "silent"
	if loud {
		mode = "loud"
	}
	r.Fetches.WithLabelValues(mode, outcome(err)).Inc()
	r.FetchLatencySec.WithLabelValues(mode).Observe(d.Seconds())
}

func (r *Registry) PollTicked() { r.PollTicks.Inc() }

func (r *Registry) ActionDispatched(action string, err error) {
	r.Actions.WithLabelValues(action, outcome(err)).Inc()
}

// SessionInvalidated counts a cleared session by reason.
func (r *Registry) SessionInvalidated(reason string) {
	r.SessionInvalidations.WithLabelValues(reason).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
