// Package metrics 提供定价服务的 Prometheus 指标
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标集合
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 定价引擎求值次数 (method, option_type)
	EvaluationsTotal *prometheus.CounterVec
	// 定价请求耗时 (method, operation)
	EvaluationDuration *prometheus.HistogramVec
	// 定价失败次数 (method, reason)
	PricingErrorsTotal *prometheus.CounterVec
	// 美式请求被降级为欧式的次数 (method)
	ExerciseDowngradesTotal *prometheus.CounterVec
	// 蒙特卡洛抽样总数
	SimulatedPathsTotal prometheus.Counter
}

// New 创建指标实例并注册到独立的 Registry
func New(serviceName string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricing",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pricing",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricing",
			Subsystem: serviceName,
			Name:      "engine_evaluations_total",
			Help:      "Total price and Greeks evaluation rounds",
		}, []string{"method", "option_type"}),
		EvaluationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pricing",
			Subsystem: serviceName,
			Name:      "evaluation_duration_seconds",
			Help:      "Pricing request duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}, []string{"method", "operation"}),
		PricingErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricing",
			Subsystem: serviceName,
			Name:      "errors_total",
			Help:      "Total failed pricing requests",
		}, []string{"method", "reason"}),
		ExerciseDowngradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricing",
			Subsystem: serviceName,
			Name:      "exercise_downgrades_total",
			Help:      "American requests priced as European",
		}, []string{"method"}),
		SimulatedPathsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pricing",
			Subsystem: serviceName,
			Name:      "simulated_paths_total",
			Help:      "Monte Carlo paths requested for price evaluations",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.PricingErrorsTotal,
		m.ExerciseDowngradesTotal,
		m.SimulatedPathsTotal,
	)
	return m
}

// Registry 返回底层 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 Prometheus 抓取端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveEvaluation 记录一次定价请求耗时
func (m *Metrics) ObserveEvaluation(method, operation string, start time.Time) {
	m.EvaluationDuration.WithLabelValues(method, operation).Observe(time.Since(start).Seconds())
}
