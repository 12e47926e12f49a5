// Package migration ensures every pipeline table exists at startup so a
// fresh database is usable out of the box. There is no versioned migration
// surface; the schema is derived from the models.
package migration

import (
	pipelinedomain "github.com/smallbiznis/insight/internal/pipeline/domain"
	rawdomain "github.com/smallbiznis/insight/internal/rawstore/domain"
	warehousedomain "github.com/smallbiznis/insight/internal/warehouse/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		return AutoMigrate(conn)
	}),
)

// AutoMigrate creates or updates every raw, clean, fact and audit table.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&rawdomain.RawAccount{},
		&rawdomain.RawSubscription{},
		&rawdomain.RawFeatureUsageEvent{},
		&rawdomain.RawSupportTicket{},
		&rawdomain.RawChurnEvent{},

		&warehousedomain.Account{},
		&warehousedomain.Subscription{},
		&warehousedomain.FeatureUsageEvent{},
		&warehousedomain.SupportTicket{},
		&warehousedomain.ChurnEvent{},

		&warehousedomain.AccountFact{},
		&warehousedomain.SupportFact{},
		&warehousedomain.FeatureUsageFact{},
		&warehousedomain.MonthlyChurnFact{},
		&warehousedomain.MrrByPlanFact{},
		&warehousedomain.ChurnDurationFact{},
		&warehousedomain.SupportVsChurnFact{},
		&warehousedomain.FeatureVolatilityFact{},

		&pipelinedomain.PipelineRun{},
	)
}
