package twitch

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttvgate_upstream_requests_total",
		Help: "Upstream pipeline requests by stage and outcome",
	}, []string{
		"stage",   // token|playlist
		"outcome", // success|timeout|transport|rejected|decode
	})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ttvgate_upstream_request_duration_seconds",
		Help:    "Upstream request latency by stage",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 7, 10},
	}, []string{"stage"})

	upstreamInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ttvgate_upstream_inflight_requests",
		Help: "Upstream requests currently in flight",
	}, []string{"stage"})
)

func observeStageStart(stage Stage) {
	upstreamInFlight.WithLabelValues(string(stage)).Inc()
}

func observeStageDone(stage Stage, start time.Time, err error) {
	upstreamInFlight.WithLabelValues(string(stage)).Dec()
	upstreamRequestDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
	upstreamRequestsTotal.WithLabelValues(string(stage), outcomeLabel(err)).Inc()
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUpstreamRejected):
		return "rejected"
	case errors.Is(err, ErrUpstreamBadResponse):
		return "decode"
	default:
		return "transport"
	}
}
