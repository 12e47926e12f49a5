// Package service implements the cleaning stage: the raw, string-typed layer
// is projected into the typed clean layer. Cleaning never rejects a row and
// never aborts the pipeline; unparseable values degrade to null (nullable
// fields) or the zero value (required fields), preserving row arity.
package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/insight/internal/config"
	rawdomain "github.com/smallbiznis/insight/internal/rawstore/domain"
	"github.com/smallbiznis/insight/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ServiceParam struct {
	fx.In

	Raw         rawdomain.Store
	Log         *zap.Logger
	PipelineCfg *config.PipelineConfigHolder
}

type Service struct {
	raw         rawdomain.Store
	log         *zap.Logger
	pipelineCfg *config.PipelineConfigHolder
}

func NewService(p ServiceParam) *Service {
	return &Service{
		raw:         p.Raw,
		log:         p.Log.Named("cleaner.service"),
		pipelineCfg: p.PipelineCfg,
	}
}

// Clean reads the full raw layer and produces the clean snapshot. The five
// entity collections share no state, so they are cleaned concurrently; the
// stage as a whole still completes before any downstream stage starts.
func (s *Service) Clean(ctx context.Context) (domain.CleanSnapshot, error) {
	var snapshot domain.CleanSnapshot

	g, gctx := errgroup.WithContext(ctx)
	if limit := s.pipelineCfg.Current().CleanConcurrency; limit > 0 {
		g.SetLimit(limit)
	}

	g.Go(func() error {
		rows, err := s.raw.Accounts(gctx)
		if err != nil {
			return err
		}
		snapshot.Accounts = cleanAccounts(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := s.raw.Subscriptions(gctx)
		if err != nil {
			return err
		}
		snapshot.Subscriptions = cleanSubscriptions(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := s.raw.FeatureUsage(gctx)
		if err != nil {
			return err
		}
		snapshot.FeatureUsage = cleanFeatureUsage(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := s.raw.SupportTickets(gctx)
		if err != nil {
			return err
		}
		snapshot.SupportTickets = cleanSupportTickets(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := s.raw.ChurnEvents(gctx)
		if err != nil {
			return err
		}
		snapshot.ChurnEvents = cleanChurnEvents(rows)
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.CleanSnapshot{}, err
	}

	s.log.Info("clean stage complete",
		zap.Int("accounts", len(snapshot.Accounts)),
		zap.Int("subscriptions", len(snapshot.Subscriptions)),
		zap.Int("feature_usage_events", len(snapshot.FeatureUsage)),
		zap.Int("support_tickets", len(snapshot.SupportTickets)),
		zap.Int("churn_events", len(snapshot.ChurnEvents)),
	)
	return snapshot, nil
}

func cleanAccounts(rows []rawdomain.RawAccount) []domain.Account {
	out := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Account{
			ID:             strings.TrimSpace(row.ID),
			Name:           blankToNil(row.Name),
			Industry:       strings.TrimSpace(row.Industry),
			Country:        strings.TrimSpace(row.Country),
			SignupDate:     parseDate(row.SignupDate),
			ReferralSource: blankToNil(row.ReferralSource),
			PlanTier:       upperOrNil(row.PlanTier),
			Seats:          parseInt(row.Seats),
			IsTrial:        parseBool(row.IsTrial),
			ChurnFlag:      parseBool(row.ChurnFlag),
		})
	}
	return out
}

func cleanSubscriptions(rows []rawdomain.RawSubscription) []domain.Subscription {
	out := make([]domain.Subscription, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Subscription{
			ID:                      strings.TrimSpace(row.ID),
			AccountID:               strings.TrimSpace(row.AccountID),
			PlanName:                strings.ToUpper(strings.TrimSpace(row.PlanName)),
			StartDate:               parseDate(row.StartDate),
			EndDate:                 parseDate(row.EndDate),
			MonthlyRecurringRevenue: parseFloat(row.MonthlyRecurringRevenue),
		})
	}
	return out
}

func cleanFeatureUsage(rows []rawdomain.RawFeatureUsageEvent) []domain.FeatureUsageEvent {
	out := make([]domain.FeatureUsageEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.FeatureUsageEvent{
			ID:          strings.TrimSpace(row.ID),
			UsageDate:   parseDate(row.UsageDate),
			FeatureName: strings.TrimSpace(row.FeatureName),
			UsageCount:  parseInt(row.UsageCount),
		})
	}
	return out
}

func cleanSupportTickets(rows []rawdomain.RawSupportTicket) []domain.SupportTicket {
	out := make([]domain.SupportTicket, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.SupportTicket{
			ID:                strings.TrimSpace(row.ID),
			AccountID:         strings.TrimSpace(row.AccountID),
			CreatedDate:       parseDate(row.CreatedDate),
			ResolvedDate:      parseDate(row.ResolvedDate),
			SatisfactionScore: parseIntPtr(row.SatisfactionScore),
			Priority:          parsePriority(row.Priority),
		})
	}
	return out
}

func cleanChurnEvents(rows []rawdomain.RawChurnEvent) []domain.ChurnEvent {
	out := make([]domain.ChurnEvent, 0, len(rows))
	for i, row := range rows {
		out = append(out, domain.ChurnEvent{
			ID:              int64(i + 1),
			AccountID:       strings.TrimSpace(row.AccountID),
			ChurnDate:       parseDate(row.ChurnDate),
			ReasonCode:      strings.TrimSpace(row.ReasonCode),
			RefundAmountUSD: parseFloat(row.RefundAmountUSD),
		})
	}
	return out
}
