// Package service implements the metrics stage: five independent
// cross-cutting tables derived from the clean layer. Each is a pure
// aggregation; none reads the others' output.
package service

import (
	"sort"
	"time"

	"github.com/smallbiznis/insight/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log *zap.Logger
}

type Service struct {
	log *zap.Logger
}

func NewService(p ServiceParam) *Service {
	return &Service{log: p.Log.Named("insights.service")}
}

// Build computes the five metric tables. activeAsOf parameterizes the
// active-subscription predicate for MRR by plan (see config.PipelineConfig);
// derived fields must already be applied to the snapshot.
func (s *Service) Build(snapshot domain.CleanSnapshot, activeAsOf time.Time) domain.FactSnapshot {
	accounts := make(map[string]domain.Account, len(snapshot.Accounts))
	for _, account := range snapshot.Accounts {
		accounts[account.ID] = account
	}

	metrics := domain.FactSnapshot{
		MonthlyChurn:      s.buildMonthlyChurn(snapshot.ChurnEvents),
		MrrByPlan:         s.buildMrrByPlan(snapshot.Subscriptions, accounts, activeAsOf),
		ChurnDuration:     s.buildChurnDuration(snapshot.Subscriptions, accounts),
		SupportVsChurn:    s.buildSupportVsChurn(snapshot.Accounts, snapshot.SupportTickets),
		FeatureVolatility: s.buildFeatureVolatility(snapshot.FeatureUsage),
	}

	s.log.Info("metrics stage complete",
		zap.Int("monthly_churn_rows", len(metrics.MonthlyChurn)),
		zap.Int("mrr_by_plan_rows", len(metrics.MrrByPlan)),
		zap.Int("churn_duration_rows", len(metrics.ChurnDuration)),
		zap.Int("feature_volatility_rows", len(metrics.FeatureVolatility)),
		zap.Time("active_as_of", activeAsOf),
	)
	return metrics
}

// buildMonthlyChurn counts distinct churned accounts per year-month. Events
// without a parseable churn date have no month to group under and are
// excluded.
func (s *Service) buildMonthlyChurn(events []domain.ChurnEvent) []domain.MonthlyChurnFact {
	months := make(map[string]map[string]struct{})
	for _, event := range events {
		if event.ChurnDate == nil {
			continue
		}
		month := event.ChurnDate.Format("2006-01")
		if months[month] == nil {
			months[month] = make(map[string]struct{})
		}
		months[month][event.AccountID] = struct{}{}
	}

	facts := make([]domain.MonthlyChurnFact, 0, len(months))
	for month, accounts := range months {
		facts = append(facts, domain.MonthlyChurnFact{
			Month:           month,
			ChurnedAccounts: len(accounts),
		})
	}
	sort.Slice(facts, func(i, j int) bool { return facts[i].Month < facts[j].Month })
	return facts
}

// buildMrrByPlan sums MRR of active subscriptions per account plan tier.
// A subscription is active iff its end date is null or not before activeAsOf.
// Orphan subscriptions and accounts without a plan tier have no group key and
// are skipped.
func (s *Service) buildMrrByPlan(subscriptions []domain.Subscription, accounts map[string]domain.Account, activeAsOf time.Time) []domain.MrrByPlanFact {
	totals := make(map[string]float64)
	for _, sub := range subscriptions {
		if sub.EndDate != nil && sub.EndDate.Before(activeAsOf) {
			continue
		}
		account, ok := accounts[sub.AccountID]
		if !ok || account.PlanTier == nil {
			continue
		}
		totals[*account.PlanTier] += sub.MonthlyRecurringRevenue
	}

	facts := make([]domain.MrrByPlanFact, 0, len(totals))
	for tier, total := range totals {
		facts = append(facts, domain.MrrByPlanFact{PlanTier: tier, TotalMRR: total})
	}
	sort.Slice(facts, func(i, j int) bool { return facts[i].PlanTier < facts[j].PlanTier })
	return facts
}

// buildChurnDuration averages subscription duration per plan tier across
// churned accounts, using only subscriptions with a known duration.
func (s *Service) buildChurnDuration(subscriptions []domain.Subscription, accounts map[string]domain.Account) []domain.ChurnDurationFact {
	type accumulator struct {
		sum   int
		count int
	}

	groups := make(map[string]*accumulator)
	for _, sub := range subscriptions {
		if sub.SubscriptionDays == nil {
			continue
		}
		account, ok := accounts[sub.AccountID]
		if !ok || !account.ChurnFlagCalc || account.PlanTier == nil {
			continue
		}
		acc := groups[*account.PlanTier]
		if acc == nil {
			acc = &accumulator{}
			groups[*account.PlanTier] = acc
		}
		acc.sum += *sub.SubscriptionDays
		acc.count++
	}

	facts := make([]domain.ChurnDurationFact, 0, len(groups))
	for tier, acc := range groups {
		facts = append(facts, domain.ChurnDurationFact{
			PlanTier:           tier,
			AvgDaysBeforeChurn: float64(acc.sum) / float64(acc.count),
		})
	}
	sort.Slice(facts, func(i, j int) bool { return facts[i].PlanTier < facts[j].PlanTier })
	return facts
}

// buildSupportVsChurn left-joins accounts to their tickets and groups by the
// recomputed churn flag. Both groups are always emitted, even when empty, so
// the table shape is stable for dashboards.
func (s *Service) buildSupportVsChurn(accounts []domain.Account, tickets []domain.SupportTicket) []domain.SupportVsChurnFact {
	churnedByAccount := make(map[string]bool, len(accounts))
	for _, account := range accounts {
		churnedByAccount[account.ID] = account.ChurnFlagCalc
	}

	type accumulator struct {
		tickets        int
		resolutionDays []float64
		satisfaction   []float64
	}
	groups := map[bool]*accumulator{
		false: {},
		true:  {},
	}

	for _, ticket := range tickets {
		churned, ok := churnedByAccount[ticket.AccountID]
		if !ok {
			// Orphan ticket: no account on the left side of the join.
			continue
		}
		acc := groups[churned]
		acc.tickets++
		if ticket.ResolutionDays != nil {
			acc.resolutionDays = append(acc.resolutionDays, float64(*ticket.ResolutionDays))
		}
		if ticket.SatisfactionScore != nil {
			acc.satisfaction = append(acc.satisfaction, float64(*ticket.SatisfactionScore))
		}
	}

	facts := make([]domain.SupportVsChurnFact, 0, 2)
	for _, churned := range []bool{false, true} {
		acc := groups[churned]
		fact := domain.SupportVsChurnFact{
			Churned:      churned,
			TotalTickets: acc.tickets,
		}
		if len(acc.resolutionDays) > 0 {
			avg := mean(acc.resolutionDays)
			fact.AvgResolutionDays = &avg
		}
		if len(acc.satisfaction) > 0 {
			avg := mean(acc.satisfaction)
			fact.AvgSatisfaction = &avg
		}
		facts = append(facts, fact)
	}
	return facts
}

// buildFeatureVolatility reports mean and sample standard deviation of usage
// counts per feature. Volatility stays null under two observations rather
// than degrading to zero.
func (s *Service) buildFeatureVolatility(events []domain.FeatureUsageEvent) []domain.FeatureVolatilityFact {
	counts := make(map[string][]float64)
	for _, event := range events {
		counts[event.FeatureName] = append(counts[event.FeatureName], float64(event.UsageCount))
	}

	facts := make([]domain.FeatureVolatilityFact, 0, len(counts))
	for feature, observations := range counts {
		facts = append(facts, domain.FeatureVolatilityFact{
			FeatureName:     feature,
			AvgDailyUsage:   mean(observations),
			UsageVolatility: sampleStdDev(observations),
		})
	}
	sort.Slice(facts, func(i, j int) bool { return facts[i].FeatureName < facts[j].FeatureName })
	return facts
}
