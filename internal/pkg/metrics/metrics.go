// Package metrics provides Prometheus metrics for the converter.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Vodeneev/betcode/internal/parser/slip"
)

// ConverterMetrics collects conversion, resolution and chat metrics on a private registry.
type ConverterMetrics struct {
	registry *prometheus.Registry

	ConversionsTotal   *prometheus.CounterVec
	ResolutionsTotal   *prometheus.CounterVec
	ResolveDuration    *prometheus.HistogramVec
	ResolveURLsTried   *prometheus.HistogramVec
	LegsResolved       *prometheus.CounterVec
	RateLimited        prometheus.Counter
	ChatPeers          prometheus.Gauge
	ChatMessagesTotal  prometheus.Counter
	ChatDroppedPeers   prometheus.Counter
	NotificationsTotal *prometheus.CounterVec
}

func NewConverterMetrics() *ConverterMetrics {
	registry := prometheus.NewRegistry()

	m := &ConverterMetrics{
		registry: registry,

		ConversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betcode_conversions_total",
				Help: "Conversion requests by platform pair and outcome",
			},
			[]string{"from", "to", "result"},
		),
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betcode_resolutions_total",
				Help: "Slip resolutions by platform and winning strategy",
			},
			[]string{"platform", "strategy"},
		),
		ResolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "betcode_resolve_duration_seconds",
				Help:    "Wall time of one slip resolution",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
			},
			[]string{"platform"},
		),
		ResolveURLsTried: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "betcode_resolve_urls_tried",
				Help:    "Candidate URLs navigated per resolution",
				Buckets: []float64{0, 1, 2, 3, 4, 6, 8},
			},
			[]string{"platform"},
		),
		LegsResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betcode_legs_resolved_total",
				Help: "Legs extracted from resolved slips",
			},
			[]string{"platform"},
		),
		RateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "betcode_convert_rate_limited_total",
				Help: "Conversion requests rejected by the rate limiter",
			},
		),
		ChatPeers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "betcode_chat_peers",
				Help: "Currently connected chat peers",
			},
		),
		ChatMessagesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "betcode_chat_messages_total",
				Help: "Chat messages broadcast",
			},
		),
		ChatDroppedPeers: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "betcode_chat_dropped_peers_total",
				Help: "Chat peers removed after a failed send",
			},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betcode_notifications_total",
				Help: "Unresolved-code notifications by outcome",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.ConversionsTotal,
		m.ResolutionsTotal,
		m.ResolveDuration,
		m.ResolveURLsTried,
		m.LegsResolved,
		m.RateLimited,
		m.ChatPeers,
		m.ChatMessagesTotal,
		m.ChatDroppedPeers,
		m.NotificationsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the prometheus registry.
func (m *ConverterMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordResolution implements slip.Recorder.
func (m *ConverterMetrics) RecordResolution(r slip.Resolution) {
	m.ResolutionsTotal.WithLabelValues(r.Platform, r.Strategy).Inc()
	m.ResolveDuration.WithLabelValues(r.Platform).Observe(r.Duration.Seconds())
	m.ResolveURLsTried.WithLabelValues(r.Platform).Observe(float64(r.URLsTried))
	if r.Success() {
		m.LegsResolved.WithLabelValues(r.Platform).Add(float64(r.Legs))
	}
}

// RecordConversion counts one conversion outcome. result is "ok" or a short failure reason.
func (m *ConverterMetrics) RecordConversion(from, to, result string) {
	m.ConversionsTotal.WithLabelValues(from, to, result).Inc()
}

func (m *ConverterMetrics) RecordRateLimited() {
	m.RateLimited.Inc()
}

// SetChatPeers updates the connected peer gauge.
func (m *ConverterMetrics) SetChatPeers(n int) {
	m.ChatPeers.Set(float64(n))
}

func (m *ConverterMetrics) RecordChatMessage() {
	m.ChatMessagesTotal.Inc()
}

func (m *ConverterMetrics) RecordChatDrop() {
	m.ChatDroppedPeers.Inc()
}

func (m *ConverterMetrics) RecordNotification(result string) {
	m.NotificationsTotal.WithLabelValues(result).Inc()
}
