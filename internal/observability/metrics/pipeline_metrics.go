// Package metrics exposes pipeline health signals over a prometheus
// registry: run outcomes, stage latency and rows written per table.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/smallbiznis/insight/internal/config"
	"go.uber.org/fx"
)

// Pipeline stage labels.
const (
	StageClean    = "clean"
	StageDerive   = "derive"
	StageFacts    = "facts"
	StageInsights = "insights"
	StageWrite    = "write"
)

// Run outcome labels.
const (
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// Module provides the registry and pipeline instruments.
var Module = fx.Module("observability.metrics",
	fx.Provide(NewRegistry),
	fx.Provide(provideConfig),
	fx.Provide(New),
)

type Config struct {
	ServiceName string
	Environment string
}

func provideConfig(cfg config.Config) Config {
	return Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	}
}

// NewRegistry builds the process-wide registry served at /metrics.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// PipelineMetrics captures transformation pipeline health signals.
type PipelineMetrics struct {
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	stageDuration *prometheus.HistogramVec
	rowsWritten   *prometheus.GaugeVec
}

func New(registry *prometheus.Registry, cfg Config) (*PipelineMetrics, error) {
	return newPipelineMetrics(registry, cfg)
}

func newPipelineMetrics(registerer prometheus.Registerer, cfg Config) (*PipelineMetrics, error) {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "insight"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "insight_pipeline_runs_total",
		Help:        "Pipeline runs by outcome.",
		ConstLabels: constLabels,
	}, []string{"status"})
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "insight_pipeline_run_duration_seconds",
		Help:        "End-to-end pipeline run latency.",
		Buckets:     []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		ConstLabels: constLabels,
	})
	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "insight_pipeline_stage_duration_seconds",
		Help:        "Per-stage pipeline latency.",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		ConstLabels: constLabels,
	}, []string{"stage"})
	rowsWritten := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "insight_pipeline_rows_written",
		Help:        "Rows written per table by the most recent run.",
		ConstLabels: constLabels,
	}, []string{"table"})

	for _, collector := range []prometheus.Collector{runs, runDuration, stageDuration, rowsWritten} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}

	return &PipelineMetrics{
		runs:          runs,
		runDuration:   runDuration,
		stageDuration: stageDuration,
		rowsWritten:   rowsWritten,
	}, nil
}

func (m *PipelineMetrics) RecordRun(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
	m.runDuration.Observe(elapsed.Seconds())
}

func (m *PipelineMetrics) ObserveStage(stage string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (m *PipelineMetrics) SetRowsWritten(table string, rows int) {
	if m == nil {
		return
	}
	m.rowsWritten.WithLabelValues(table).Set(float64(rows))
}
