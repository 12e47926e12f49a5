// Package domain holds the pipeline run audit log. One row per run records
// what happened and how many rows each table received, so the orchestrator
// and the read API can tell a failed or partial run from a healthy one.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Classified failure causes for the run log.
const (
	ErrorTypeTimeout         = "deadline_exceeded"
	ErrorTypeSerialization   = "serialization_failure"
	ErrorTypeUniqueViolation = "unique_violation"
	ErrorTypeLockTimeout     = "db_lock_timeout"
	ErrorTypeUnknown         = "unknown"
)

type PipelineRun struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	CorrelationID string            `gorm:"index" json:"correlation_id"`
	StartedAt     time.Time         `gorm:"not null" json:"started_at"`
	FinishedAt    *time.Time        `json:"finished_at"`
	Status        RunStatus         `gorm:"type:text;not null" json:"status"`
	TableCounts   datatypes.JSONMap `gorm:"type:jsonb" json:"table_counts"`
	ErrorType     string            `json:"error_type,omitempty"`
	ErrorMessage  string            `json:"error_message,omitempty"`
}

func (PipelineRun) TableName() string { return "pipeline_runs" }

// Runner executes one full pipeline run and records it.
type Runner interface {
	Run(ctx context.Context) (PipelineRun, error)
	ListRuns(ctx context.Context, limit int) ([]PipelineRun, error)
}
