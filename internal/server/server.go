// Package server exposes the read-only health surface: table listings, the
// validation report and run history. Dashboards and BI tools read the fact
// tables directly from the database; this API exists for orchestrators and
// operators, not for reporting.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/insight/internal/config"
	pipelinedomain "github.com/smallbiznis/insight/internal/pipeline/domain"
	rawdomain "github.com/smallbiznis/insight/internal/rawstore/domain"
	validatorservice "github.com/smallbiznis/insight/internal/validator/service"
	warehousedomain "github.com/smallbiznis/insight/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	Log       *zap.Logger
	Store     warehousedomain.Store
	Validator *validatorservice.Service
	Runner    pipelinedomain.Runner
}

type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	log       *zap.Logger
	store     warehousedomain.Store
	validator *validatorservice.Service
	runner    pipelinedomain.Runner
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:    p.Gin,
		cfg:       p.Cfg,
		log:       p.Log.Named("http.server"),
		store:     p.Store,
		validator: p.Validator,
		runner:    p.Runner,
	}
}

func registerRoutes(s *Server) {
	v1 := s.engine.Group("/v1")
	v1.GET("/tables", s.listTables)
	v1.GET("/validation", s.validation)
	v1.GET("/runs", s.listRuns)
	v1.POST("/runs", s.triggerRun)
}

func (s *Server) listTables(c *gin.Context) {
	expected := rawdomain.Tables()
	expected = append(expected, warehousedomain.CleanTables()...)
	expected = append(expected, warehousedomain.FactTables()...)

	statuses, err := s.store.ListTables(c.Request.Context(), expected)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": statuses})
}

func (s *Server) validation(c *gin.Context) {
	report, err := s.validator.Validate(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) listRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := s.runner.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// triggerRun kicks off a whole-table recompute. The scheduler owning the
// cadence lives outside this repo; this is its hook.
func (s *Server) triggerRun(c *gin.Context) {
	run, err := s.runner.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "run": run})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run})
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, logger *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
