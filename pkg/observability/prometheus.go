package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements every hook interface on top of Prometheus collectors.
type Metrics struct {
	treeBuilds    *prometheus.CounterVec
	treeNodes     prometheus.Histogram
	siteLayouts   *prometheus.CounterVec
	siteDuration  prometheus.Histogram
	siteCells     *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	httpInflight  prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		treeBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cellmap", Name: "tree_builds_total",
			Help: "Clonal trees built, by outcome.",
		}, []string{"outcome"}),
		treeNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cellmap", Name: "tree_nodes",
			Help:    "Number of nodes in built trees.",
			Buckets: prometheus.ExponentialBuckets(2, 2, 10),
		}),
		siteLayouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cellmap", Name: "site_layouts_total",
			Help: "Site layouts generated, by outcome.",
		}, []string{"outcome"}),
		siteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cellmap", Name: "site_layout_duration_seconds",
			Help:    "Time to lay out one site.",
			Buckets: prometheus.DefBuckets,
		}),
		siteCells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cellmap", Name: "cells_total",
			Help: "Sampled cells, by kind.",
		}, []string{"kind"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cellmap", Name: "cache_lookups_total",
			Help: "Cache lookups, by key type and result.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cellmap", Name: "cache_written_bytes_total",
			Help: "Bytes written to the cache, by key type.",
		}, []string{"key_type"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cellmap", Name: "http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cellmap", Name: "http_requests_total",
			Help: "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cellmap", Name: "http_request_duration_seconds",
			Help:    "HTTP request latency, by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.treeBuilds, m.treeNodes,
		m.siteLayouts, m.siteDuration, m.siteCells,
		m.cacheLookups, m.cacheBytes,
		m.httpInflight, m.httpRequests, m.httpDurations,
	)
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnTreeStart(context.Context, int) {}

func (m *Metrics) OnTreeComplete(_ context.Context, nodeCount int, _ time.Duration, err error) {
	m.treeBuilds.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.treeNodes.Observe(float64(nodeCount))
	}
}

func (m *Metrics) OnSiteStart(context.Context, string) {}

func (m *Metrics) OnSiteComplete(_ context.Context, _ string, realCells, fakeCells int, d time.Duration, err error) {
	m.siteLayouts.WithLabelValues(outcome(err)).Inc()
	m.siteDuration.Observe(d.Seconds())
	if err == nil {
		m.siteCells.WithLabelValues("real").Add(float64(realCells))
		m.siteCells.WithLabelValues("fake").Add(float64(fakeCells))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) { m.httpInflight.Inc() }

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpInflight.Dec()
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDurations.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
	_ HTTPHooks     = (*Metrics)(nil)
)
