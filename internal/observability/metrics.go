package observability

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

// Metrics holds the Prometheus collectors exported on /metrics.
//
// All methods are nil-safe so callers can use Current() unconditionally.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	llmRequests *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec

	reflections      *prometheus.CounterVec
	analyses         *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec

	workerTasks   *prometheus.CounterVec
	workerQueue   prometheus.Gauge
	busPublished  *prometheus.CounterVec
	pgStats       *prometheus.GaugeVec
	redisUp       prometheus.Gauge
	redisPingSecs prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return true
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func Current() *Metrics {
	return instance
}

// Init registers the process-wide collectors once. It returns nil when
// METRICS_ENABLED is off.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		if !Enabled() {
			if log != nil {
				log.Info("metrics disabled")
			}
			return
		}
		instance = NewMetrics(prometheus.NewRegistry())
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

// NewMetrics builds a collector set on reg without touching the global instance.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "api_requests_inflight",
			Help: "HTTP requests currently being served",
		}),
		llmRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Language model calls by provider, model and status",
		}, []string{"provider", "model", "status"}),
		llmLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Language model call latency including retries",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"provider", "model", "status"}),
		reflections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reflections_submitted_total",
			Help: "Daily reflection submissions by outcome",
		}, []string{"outcome"}),
		analyses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Background analysis runs by outcome and parse mode",
		}, []string{"outcome", "parse_mode"}),
		analysisDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "End to end background analysis duration",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"outcome"}),
		workerTasks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_tasks_total",
			Help: "Background tasks by kind and status",
		}, []string{"kind", "status"}),
		workerQueue: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Tasks waiting for a worker",
		}),
		busPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_events_published_total",
			Help: "Realtime events published by event type",
		}, []string{"event"}),
		pgStats: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "postgres_pool",
			Help: "database/sql pool statistics",
		}, []string{"stat"}),
		redisUp: f.NewGauge(prometheus.GaugeOpts{
			Name: "redis_up",
			Help: "1 when the last redis ping succeeded",
		}),
		redisPingSecs: f.NewGauge(prometheus.GaugeOpts{
			Name: "redis_ping_seconds",
			Help: "Latency of the last redis ping",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLMRequest(provider, model, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if model = strings.TrimSpace(model); model == "" {
		model = "unknown"
	}
	if status = strings.TrimSpace(status); status == "" {
		status = "0"
	}
	m.llmRequests.WithLabelValues(provider, model, status).Inc()
	if dur > 0 {
		m.llmLatency.WithLabelValues(provider, model, status).Observe(dur.Seconds())
	}
}

func (m *Metrics) IncReflection(outcome string) {
	if m == nil {
		return
	}
	m.reflections.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveAnalysis(outcome, parseMode string, dur time.Duration) {
	if m == nil {
		return
	}
	if parseMode == "" {
		parseMode = "none"
	}
	m.analyses.WithLabelValues(outcome, parseMode).Inc()
	m.analysisDuration.WithLabelValues(outcome).Observe(dur.Seconds())
}

func (m *Metrics) IncWorkerTask(kind, status string) {
	if m == nil {
		return
	}
	m.workerTasks.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) SetWorkerQueueDepth(n int) {
	if m == nil {
		return
	}
	m.workerQueue.Set(float64(n))
}

func (m *Metrics) IncPublished(event string) {
	if m == nil {
		return
	}
	m.busPublished.WithLabelValues(event).Inc()
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("postgres collector disabled", "error", err)
		}
		return
	}
	go func() {
		ticker := time.NewTicker(scrapeInterval())
		defer ticker.Stop()
		for {
			st := sqlDB.Stats()
			m.pgStats.WithLabelValues("open").Set(float64(st.OpenConnections))
			m.pgStats.WithLabelValues("in_use").Set(float64(st.InUse))
			m.pgStats.WithLabelValues("idle").Set(float64(st.Idle))
			m.pgStats.WithLabelValues("wait_count").Set(float64(st.WaitCount))
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(scrapeInterval())
		defer ticker.Stop()
		for {
			start := time.Now()
			pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := rdb.Ping(pctx).Err()
			cancel()
			if err != nil {
				m.redisUp.Set(0)
				if log != nil && ctx.Err() == nil {
					log.Debug("redis ping failed", "error", err)
				}
			} else {
				m.redisUp.Set(1)
				m.redisPingSecs.Set(time.Since(start).Seconds())
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func scrapeInterval() time.Duration {
	v := strings.TrimSpace(os.Getenv("METRICS_SCRAPE_INTERVAL_SECONDS"))
	if v == "" {
		return 15 * time.Second
	}
	d, err := time.ParseDuration(v + "s")
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}
