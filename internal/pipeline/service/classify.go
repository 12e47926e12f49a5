package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smallbiznis/insight/internal/pipeline/domain"
)

// classifyError buckets a run failure for the run log. Postgres error codes
// are inspected when available; everything else is unknown.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrorTypeTimeout
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001":
			return domain.ErrorTypeSerialization
		case "23505":
			return domain.ErrorTypeUniqueViolation
		case "55P03":
			return domain.ErrorTypeLockTimeout
		}
	}
	return domain.ErrorTypeUnknown
}
