package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/insight/internal/cleaner"
	"github.com/smallbiznis/insight/internal/clock"
	"github.com/smallbiznis/insight/internal/config"
	"github.com/smallbiznis/insight/internal/derive"
	"github.com/smallbiznis/insight/internal/facts"
	"github.com/smallbiznis/insight/internal/insights"
	"github.com/smallbiznis/insight/internal/migration"
	obsmetrics "github.com/smallbiznis/insight/internal/observability/metrics"
	"github.com/smallbiznis/insight/internal/pipeline"
	pipelinedomain "github.com/smallbiznis/insight/internal/pipeline/domain"
	"github.com/smallbiznis/insight/internal/rawstore"
	"github.com/smallbiznis/insight/internal/server"
	"github.com/smallbiznis/insight/internal/validator"
	validatorservice "github.com/smallbiznis/insight/internal/validator/service"
	"github.com/smallbiznis/insight/internal/warehouse"
	"github.com/smallbiznis/insight/pkg/db"
	"github.com/smallbiznis/insight/pkg/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	options := []fx.Option{
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		obsmetrics.Module,
		migration.Module,

		rawstore.Module,
		warehouse.Module,
		cleaner.Module,
		derive.Module,
		facts.Module,
		insights.Module,
		validator.Module,
		pipeline.Module,
	}

	if cfg.IsServe() {
		options = append(options, server.Module)
	} else {
		options = append(options, fx.Invoke(RunOnce))
	}

	fx.New(options...).Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

// RunOnce executes a single whole-table recompute, prints the validation
// report to the log and exits.
func RunOnce(lc fx.Lifecycle, shutdowner fx.Shutdowner, runner pipelinedomain.Runner, vld *validatorservice.Service, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() { _ = shutdowner.Shutdown() }()

				run, err := runner.Run(context.Background())
				if err != nil {
					logger.Error("pipeline run failed", zap.Error(err))
					return
				}

				report, err := vld.Validate(context.Background())
				if err != nil {
					logger.Error("validation failed", zap.Error(err))
					return
				}
				logger.Info("run complete",
					zap.String("correlation_id", run.CorrelationID),
					zap.Bool("healthy", report.Healthy()),
					zap.Int("discrepancies", len(report.Discrepancies)),
				)
			}()
			return nil
		},
	})
}
