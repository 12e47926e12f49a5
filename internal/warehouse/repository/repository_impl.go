package repository

import (
	"context"
	"fmt"

	"github.com/smallbiznis/insight/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const insertBatchSize = 500

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type store struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStore(p Params) domain.Store {
	return &store{
		db:  p.DB,
		log: p.Log.Named("warehouse.store"),
	}
}

// ReplaceClean swaps out the clean layer one table at a time. Each table is
// replaced inside its own transaction: a run is atomic per table, not across
// tables.
func (s *store) ReplaceClean(ctx context.Context, snapshot domain.CleanSnapshot) error {
	if err := replaceTable(ctx, s.db, snapshot.Accounts); err != nil {
		return err
	}
	if err := replaceTable(ctx, s.db, snapshot.Subscriptions); err != nil {
		return err
	}
	if err := replaceTable(ctx, s.db, snapshot.FeatureUsage); err != nil {
		return err
	}
	if err := replaceTable(ctx, s.db, snapshot.SupportTickets); err != nil {
		return err
	}
	return replaceTable(ctx, s.db, snapshot.ChurnEvents)
}

func (s *store) ReplaceFacts(ctx context.Context, snapshot domain.FactSnapshot) error {
	if err := replaceTable(ctx, s.db, snapshot.AccountFacts); err != nil {
		return err
	}
	if err := replaceTable(ctx, s.db, snapshot.SupportFacts); err != nil {
		return err
	}
	if err := replaceTable(ctx, s.db, snapshot.FeatureUsageFacts); err != nil {
		return err
	}
	if err := replaceTable(ctx, s.db, snapshot.MonthlyChurn); err != nil {
		return err
	}
	if err := replaceTable(ctx, s.db, snapshot.MrrByPlan); err != nil {
		return err
	}
	if err := replaceTable(ctx, s.db, snapshot.ChurnDuration); err != nil {
		return err
	}
	if err := replaceTable(ctx, s.db, snapshot.SupportVsChurn); err != nil {
		return err
	}
	return replaceTable(ctx, s.db, snapshot.FeatureVolatility)
}

func (s *store) Accounts(ctx context.Context) ([]domain.Account, error) {
	var rows []domain.Account
	err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (s *store) AccountFacts(ctx context.Context) ([]domain.AccountFact, error) {
	var rows []domain.AccountFact
	err := s.db.WithContext(ctx).Order("account_id ASC").Find(&rows).Error
	return rows, err
}

func (s *store) RowCount(ctx context.Context, table string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Table(table).Count(&count).Error
	return count, err
}

func (s *store) ListTables(ctx context.Context, tables []string) ([]domain.TableStatus, error) {
	statuses := make([]domain.TableStatus, 0, len(tables))
	for _, name := range tables {
		status := domain.TableStatus{Name: name}
		if s.db.WithContext(ctx).Migrator().HasTable(name) {
			status.Present = true
			count, err := s.RowCount(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("count %s: %w", name, err)
			}
			status.Rows = count
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func replaceTable[T any](ctx context.Context, db *gorm.DB, rows []T) error {
	var model T
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model).Error; err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		return nil
	})
}
