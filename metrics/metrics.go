// Package metrics exposes the prometheus collectors of the replay server
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replay_transport_ticks_total",
		Help: "Total number of transport clock ticks received",
	})
	TicksIgnoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replay_transport_ticks_ignored_total",
		Help: "Ticks dropped because a scrub gesture was in progress",
	})
	TicksCoalescedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replay_transport_ticks_coalesced_total",
		Help: "Ticks deferred to the next animation frame",
	})
	FramesPublishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replay_frames_published_total",
		Help: "Positions recomputed and handed to renderers",
	})
	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "replay_sessions_active",
		Help: "Open player websocket sessions",
	})
	ViewersActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "replay_viewers_active",
		Help: "Open passive viewer websocket connections",
	})
	WaveformRendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_waveform_renders_total",
		Help: "Waveform requests by outcome",
	}, []string{"status"})
	ExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_exports_total",
		Help: "Timeline exports by format",
	}, []string{"format"})
)

func init() {
	prometheus.MustRegister(TicksTotal)
	prometheus.MustRegister(TicksIgnoredTotal)
	prometheus.MustRegister(TicksCoalescedTotal)
	prometheus.MustRegister(FramesPublishedTotal)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(ViewersActive)
	prometheus.MustRegister(WaveformRendersTotal)
	prometheus.MustRegister(ExportsTotal)
}

// Handler returns the prometheus scrape handler, mounted at /metrics
func Handler() http.Handler { return promhttp.Handler() }
