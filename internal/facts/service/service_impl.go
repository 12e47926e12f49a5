// Package service implements the fact-building stage: grouped joins over the
// clean layer into per-account and per-feature fact tables. All reductions
// are commutative, and outputs are sorted by group key so repeated runs over
// unchanged input produce identical tables.
package service

import (
	"sort"

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
	return &Service{log: p.Log.Named("facts.service")}
}

// Build produces the three core fact tables from a complete clean snapshot.
func (s *Service) Build(snapshot domain.CleanSnapshot) domain.FactSnapshot {
	facts := domain.FactSnapshot{
		AccountFacts:      s.buildAccountFacts(snapshot),
		SupportFacts:      s.buildSupportFacts(snapshot),
		FeatureUsageFacts: s.buildFeatureUsageFacts(snapshot),
	}

	s.log.Info("fact stage complete",
		zap.Int("account_facts", len(facts.AccountFacts)),
		zap.Int("support_facts", len(facts.SupportFacts)),
		zap.Int("feature_usage_facts", len(facts.FeatureUsageFacts)),
	)
	return facts
}

// buildAccountFacts left-joins accounts to their subscriptions. Every account
// keeps a row: zero subscriptions means count 0, MRR 0 and a null average.
func (s *Service) buildAccountFacts(snapshot domain.CleanSnapshot) []domain.AccountFact {
	byAccount := make(map[string][]domain.Subscription, len(snapshot.Accounts))
	for _, sub := range snapshot.Subscriptions {
		byAccount[sub.AccountID] = append(byAccount[sub.AccountID], sub)
	}

	facts := make([]domain.AccountFact, 0, len(snapshot.Accounts))
	for _, account := range snapshot.Accounts {
		subs := byAccount[account.ID]

		fact := domain.AccountFact{
			AccountID:          account.ID,
			TotalSubscriptions: len(subs),
		}

		var daySum int
		var dayCount int
		for _, sub := range subs {
			fact.TotalMRR += sub.MonthlyRecurringRevenue
			if sub.SubscriptionDays != nil {
				daySum += *sub.SubscriptionDays
				dayCount++
			}
		}
		if dayCount > 0 {
			avg := float64(daySum) / float64(dayCount)
			fact.AvgSubscriptionDays = &avg
		}

		facts = append(facts, fact)
	}

	sort.Slice(facts, func(i, j int) bool { return facts[i].AccountID < facts[j].AccountID })
	return facts
}

// buildSupportFacts groups tickets by account. Only accounts with at least
// one ticket appear; averages skip null observations and stay null over an
// empty set.
func (s *Service) buildSupportFacts(snapshot domain.CleanSnapshot) []domain.SupportFact {
	type accumulator struct {
		tickets           int
		resolutionSum     int
		resolutionCount   int
		satisfactionSum   int
		satisfactionObs   int
		high, medium, low int
	}

	groups := make(map[string]*accumulator)
	for _, ticket := range snapshot.SupportTickets {
		acc := groups[ticket.AccountID]
		if acc == nil {
			acc = &accumulator{}
			groups[ticket.AccountID] = acc
		}
		acc.tickets++
		if ticket.ResolutionDays != nil {
			acc.resolutionSum += *ticket.ResolutionDays
			acc.resolutionCount++
		}
		if ticket.SatisfactionScore != nil {
			acc.satisfactionSum += *ticket.SatisfactionScore
			acc.satisfactionObs++
		}
		if ticket.Priority != nil {
			switch *ticket.Priority {
			case domain.PriorityHigh:
				acc.high++
			case domain.PriorityMedium:
				acc.medium++
			case domain.PriorityLow:
				acc.low++
			}
		}
	}

	facts := make([]domain.SupportFact, 0, len(groups))
	for accountID, acc := range groups {
		fact := domain.SupportFact{
			AccountID:             accountID,
			TotalTickets:          acc.tickets,
			HighPriorityTickets:   acc.high,
			MediumPriorityTickets: acc.medium,
			LowPriorityTickets:    acc.low,
		}
		if acc.resolutionCount > 0 {
			avg := float64(acc.resolutionSum) / float64(acc.resolutionCount)
			fact.AvgResolutionDays = &avg
		}
		if acc.satisfactionObs > 0 {
			avg := float64(acc.satisfactionSum) / float64(acc.satisfactionObs)
			fact.AvgSatisfactionScore = &avg
		}
		facts = append(facts, fact)
	}

	sort.Slice(facts, func(i, j int) bool { return facts[i].AccountID < facts[j].AccountID })
	return facts
}

func (s *Service) buildFeatureUsageFacts(snapshot domain.CleanSnapshot) []domain.FeatureUsageFact {
	type groupKey struct {
		feature string
		day     string
	}

	totals := make(map[groupKey]*domain.FeatureUsageFact)
	for _, event := range snapshot.FeatureUsage {
		if event.UsageDate == nil {
			continue
		}
		key := groupKey{feature: event.FeatureName, day: event.UsageDate.Format("2006-01-02")}
		fact := totals[key]
		if fact == nil {
			fact = &domain.FeatureUsageFact{
				FeatureName: event.FeatureName,
				UsageDate:   *event.UsageDate,
			}
			totals[key] = fact
		}
		fact.TotalUsage += event.UsageCount
	}

	facts := make([]domain.FeatureUsageFact, 0, len(totals))
	for _, fact := range totals {
		facts = append(facts, *fact)
	}
	sort.Slice(facts, func(i, j int) bool {
		if facts[i].FeatureName != facts[j].FeatureName {
			return facts[i].FeatureName < facts[j].FeatureName
		}
		return facts[i].UsageDate.Before(facts[j].UsageDate)
	})
	return facts
}
