// Package metrics 提供推荐服务的 Prometheus 指标。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 缓存查询结果
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultError   = "error"
	ResultCorrupt = "corrupt"
)

// Metrics 汇总推荐链路上的指标。
// 使用 New(reg) 创建；reg 为 nil 时指标不注册（测试场景）。
type Metrics struct {
	CacheLookups    *prometheus.CounterVec
	CacheWrites     *prometheus.CounterVec
	ComputeDuration prometheus.Histogram
	TierRuns        *prometheus.CounterVec
	ListSize        prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shoprec_cache_lookups_total",
				Help: "Recommendation cache lookups by result",
			},
			[]string{"result"}, // hit / miss / error / corrupt
		),
		CacheWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shoprec_cache_writes_total",
				Help: "Recommendation cache writes by outcome",
			},
			[]string{"outcome"}, // ok / error
		),
		ComputeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shoprec_compute_duration_seconds",
				Help:    "Duration of recommendation computation on cache miss",
				Buckets: prometheus.DefBuckets,
			},
		),
		TierRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shoprec_tier_runs_total",
				Help: "Number of times each recommendation tier ran",
			},
			[]string{"tier"},
		),
		ListSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shoprec_recommendation_list_size",
				Help:    "Number of products in computed recommendation lists",
				Buckets: []float64{0, 1, 2, 3, 5, 8, 10},
			},
		),
	}
}
