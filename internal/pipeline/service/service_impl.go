// Package service orchestrates the staged pipeline run: clean, derive,
// build facts and metrics, then replace the warehouse tables. Stages run
// strictly in order; each consumes a complete snapshot produced by the
// previous one, never a partially-built table.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	cleanerservice "github.com/smallbiznis/insight/internal/cleaner/service"
	"github.com/smallbiznis/insight/internal/clock"
	"github.com/smallbiznis/insight/internal/config"
	deriveservice "github.com/smallbiznis/insight/internal/derive/service"
	factsservice "github.com/smallbiznis/insight/internal/facts/service"
	insightsservice "github.com/smallbiznis/insight/internal/insights/service"
	obsmetrics "github.com/smallbiznis/insight/internal/observability/metrics"
	"github.com/smallbiznis/insight/internal/pipeline/domain"
	warehousedomain "github.com/smallbiznis/insight/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	PipelineCfg *config.PipelineConfigHolder
	Cleaner     *cleanerservice.Service
	Derive      *deriveservice.Service
	Facts       *factsservice.Service
	Insights    *insightsservice.Service
	Store       warehousedomain.Store
	Metrics     *obsmetrics.PipelineMetrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	pipelineCfg *config.PipelineConfigHolder
	cleaner     *cleanerservice.Service
	derive      *deriveservice.Service
	facts       *factsservice.Service
	insights    *insightsservice.Service
	store       warehousedomain.Store
	metrics     *obsmetrics.PipelineMetrics
}

func NewService(p ServiceParam) domain.Runner {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("pipeline.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		pipelineCfg: p.PipelineCfg,
		cleaner:     p.Cleaner,
		derive:      p.Derive,
		facts:       p.Facts,
		insights:    p.Insights,
		store:       p.Store,
		metrics:     p.Metrics,
	}
}

// Run executes one whole-table recompute and records it in pipeline_runs.
// Transformation stages cannot fail on bad data; only storage errors or an
// invalid predicate date abort a run.
func (s *Service) Run(ctx context.Context) (domain.PipelineRun, error) {
	started := s.clock.Now()
	wallStart := time.Now()
	run := domain.PipelineRun{
		ID:            s.genID.Generate(),
		CorrelationID: ulid.Make().String(),
		StartedAt:     started,
		Status:        domain.RunStatusRunning,
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return run, fmt.Errorf("create run log entry: %w", err)
	}

	log := s.log.With(zap.String("correlation_id", run.CorrelationID))
	log.Info("pipeline run started")

	counts, err := s.execute(ctx, log)
	elapsed := time.Since(wallStart)

	if err != nil {
		run.Status = domain.RunStatusFailed
		run.ErrorType = classifyError(err)
		run.ErrorMessage = err.Error()
		s.finishRun(ctx, &run)
		s.metrics.RecordRun(obsmetrics.RunStatusFailed, elapsed)
		log.Error("pipeline run failed", zap.Error(err), zap.String("error_type", run.ErrorType))
		return run, err
	}

	run.Status = domain.RunStatusSucceeded
	run.TableCounts = counts
	s.finishRun(ctx, &run)
	s.metrics.RecordRun(obsmetrics.RunStatusSucceeded, elapsed)
	log.Info("pipeline run succeeded", zap.Duration("elapsed", elapsed))
	return run, nil
}

func (s *Service) execute(ctx context.Context, log *zap.Logger) (datatypes.JSONMap, error) {
	stageStart := time.Now()
	cleanSnapshot, err := s.cleaner.Clean(ctx)
	if err != nil {
		return nil, fmt.Errorf("clean stage: %w", err)
	}
	s.metrics.ObserveStage(obsmetrics.StageClean, time.Since(stageStart))

	stageStart = time.Now()
	s.derive.Apply(&cleanSnapshot)
	s.metrics.ObserveStage(obsmetrics.StageDerive, time.Since(stageStart))

	stageStart = time.Now()
	factSnapshot := s.facts.Build(cleanSnapshot)
	s.metrics.ObserveStage(obsmetrics.StageFacts, time.Since(stageStart))

	activeAsOf, err := s.pipelineCfg.Current().ActiveAsOfDate(s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("resolve active-as-of date: %w", err)
	}

	stageStart = time.Now()
	metricSnapshot := s.insights.Build(cleanSnapshot, activeAsOf)
	factSnapshot.MonthlyChurn = metricSnapshot.MonthlyChurn
	factSnapshot.MrrByPlan = metricSnapshot.MrrByPlan
	factSnapshot.ChurnDuration = metricSnapshot.ChurnDuration
	factSnapshot.SupportVsChurn = metricSnapshot.SupportVsChurn
	factSnapshot.FeatureVolatility = metricSnapshot.FeatureVolatility
	s.metrics.ObserveStage(obsmetrics.StageInsights, time.Since(stageStart))

	stageStart = time.Now()
	if err := s.store.ReplaceClean(ctx, cleanSnapshot); err != nil {
		return nil, fmt.Errorf("write clean layer: %w", err)
	}
	if err := s.store.ReplaceFacts(ctx, factSnapshot); err != nil {
		return nil, fmt.Errorf("write fact layer: %w", err)
	}
	s.metrics.ObserveStage(obsmetrics.StageWrite, time.Since(stageStart))

	counts := datatypes.JSONMap{}
	for table, rows := range cleanSnapshot.TableCounts() {
		counts[table] = rows
		s.metrics.SetRowsWritten(table, rows)
	}
	for table, rows := range factSnapshot.TableCounts() {
		counts[table] = rows
		s.metrics.SetRowsWritten(table, rows)
	}

	log.Info("tables replaced", zap.Int("tables", len(counts)))
	return counts, nil
}

func (s *Service) finishRun(ctx context.Context, run *domain.PipelineRun) {
	now := s.clock.Now()
	run.FinishedAt = &now
	if err := s.db.WithContext(ctx).Save(run).Error; err != nil {
		s.log.Warn("failed to update run log entry", zap.Error(err))
	}
}

func (s *Service) ListRuns(ctx context.Context, limit int) ([]domain.PipelineRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []domain.PipelineRun
	err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
