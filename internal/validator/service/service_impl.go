// Package service implements the read-only validation surface: table
// presence and row counts across the raw, clean and fact layers. It detects
// failed or partial pipeline runs; it never transforms or repairs data.
package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/insight/internal/clock"
	rawdomain "github.com/smallbiznis/insight/internal/rawstore/domain"
	"github.com/smallbiznis/insight/internal/validator/domain"
	warehousedomain "github.com/smallbiznis/insight/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// cleanFromRaw pairs each clean table with the raw table it is projected
// from. The cleaner preserves row arity, so counts must match.
var cleanFromRaw = map[string]string{
	warehousedomain.Account{}.TableName():           rawdomain.RawAccount{}.TableName(),
	warehousedomain.Subscription{}.TableName():      rawdomain.RawSubscription{}.TableName(),
	warehousedomain.FeatureUsageEvent{}.TableName(): rawdomain.RawFeatureUsageEvent{}.TableName(),
	warehousedomain.SupportTicket{}.TableName():     rawdomain.RawSupportTicket{}.TableName(),
	warehousedomain.ChurnEvent{}.TableName():        rawdomain.RawChurnEvent{}.TableName(),
}

type ServiceParam struct {
	fx.In

	Store warehousedomain.Store
	Clock clock.Clock
	Log   *zap.Logger
}

type Service struct {
	store warehousedomain.Store
	clock clock.Clock
	log   *zap.Logger
}

func NewService(p ServiceParam) *Service {
	return &Service{
		store: p.Store,
		clock: p.Clock,
		log:   p.Log.Named("validator.service"),
	}
}

// Validate reports on every expected table. Missing tables and raw/clean row
// count mismatches become discrepancies; nothing is corrected.
func (s *Service) Validate(ctx context.Context) (domain.Report, error) {
	expected := rawdomain.Tables()
	expected = append(expected, warehousedomain.CleanTables()...)
	expected = append(expected, warehousedomain.FactTables()...)

	statuses, err := s.store.ListTables(ctx, expected)
	if err != nil {
		return domain.Report{}, err
	}

	report := domain.Report{
		GeneratedAt: s.clock.Now(),
		Tables:      statuses,
	}

	rows := make(map[string]int64, len(statuses))
	present := make(map[string]bool, len(statuses))
	for _, status := range statuses {
		rows[status.Name] = status.Rows
		present[status.Name] = status.Present
		if !status.Present {
			report.Discrepancies = append(report.Discrepancies, domain.Discrepancy{
				Table:  status.Name,
				Detail: "table missing",
			})
		}
	}

	for _, cleanTable := range warehousedomain.CleanTables() {
		rawTable := cleanFromRaw[cleanTable]
		if !present[cleanTable] || !present[rawTable] {
			continue
		}
		if rows[cleanTable] != rows[rawTable] {
			report.Discrepancies = append(report.Discrepancies, domain.Discrepancy{
				Table:  cleanTable,
				Detail: fmt.Sprintf("row count %d does not match %s (%d)", rows[cleanTable], rawTable, rows[rawTable]),
			})
		}
	}

	if !report.Healthy() {
		s.log.Warn("validation found discrepancies", zap.Int("count", len(report.Discrepancies)))
	}
	return report, nil
}
