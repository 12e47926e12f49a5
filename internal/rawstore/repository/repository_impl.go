package repository

import (
	"context"

	"github.com/smallbiznis/insight/internal/rawstore/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB *gorm.DB
}

type store struct {
	db *gorm.DB
}

func NewStore(p Params) domain.Store {
	return &store{db: p.DB}
}

func (s *store) Accounts(ctx context.Context) ([]domain.RawAccount, error) {
	var rows []domain.RawAccount
	err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (s *store) Subscriptions(ctx context.Context) ([]domain.RawSubscription, error) {
	var rows []domain.RawSubscription
	err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (s *store) FeatureUsage(ctx context.Context) ([]domain.RawFeatureUsageEvent, error) {
	var rows []domain.RawFeatureUsageEvent
	err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (s *store) SupportTickets(ctx context.Context) ([]domain.RawSupportTicket, error) {
	var rows []domain.RawSupportTicket
	err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (s *store) ChurnEvents(ctx context.Context) ([]domain.RawChurnEvent, error) {
	var rows []domain.RawChurnEvent
	err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}
