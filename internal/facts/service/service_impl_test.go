package service

import (
	"testing"
	"time"

	"github.com/smallbiznis/insight/internal/warehouse/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func intPtr(v int) *int { return &v }

func priorityPtr(p domain.Priority) *domain.Priority { return &p }

func TestBuildAccountFacts_LeftJoin(t *testing.T) {
	svc := NewService(ServiceParam{Log: zap.NewNop()})

	snapshot := domain.CleanSnapshot{
		Accounts: []domain.Account{
			{ID: "A1"},
			{ID: "A2"},
		},
		Subscriptions: []domain.Subscription{
			{ID: "S1", AccountID: "A1", MonthlyRecurringRevenue: 100, SubscriptionDays: intPtr(30)},
			{ID: "S2", AccountID: "A1", MonthlyRecurringRevenue: 50, SubscriptionDays: intPtr(60)},
		},
	}
	facts := svc.Build(snapshot)

	require.Len(t, facts.AccountFacts, 2)

	a1 := facts.AccountFacts[0]
	assert.Equal(t, "A1", a1.AccountID)
	assert.Equal(t, 2, a1.TotalSubscriptions)
	assert.InDelta(t, 150, a1.TotalMRR, 1e-9)
	require.NotNil(t, a1.AvgSubscriptionDays)
	assert.InDelta(t, 45, *a1.AvgSubscriptionDays, 1e-9)

	// No subscriptions still yields a row, with a null average.
	a2 := facts.AccountFacts[1]
	assert.Equal(t, "A2", a2.AccountID)
	assert.Zero(t, a2.TotalSubscriptions)
	assert.Zero(t, a2.TotalMRR)
	assert.Nil(t, a2.AvgSubscriptionDays)
}

func TestBuildAccountFacts_AverageSkipsNullDurations(t *testing.T) {
	svc := NewService(ServiceParam{Log: zap.NewNop()})

	snapshot := domain.CleanSnapshot{
		Accounts: []domain.Account{{ID: "A1"}},
		Subscriptions: []domain.Subscription{
			{ID: "S1", AccountID: "A1", SubscriptionDays: intPtr(10)},
			{ID: "S2", AccountID: "A1", SubscriptionDays: nil},
		},
	}
	facts := svc.Build(snapshot)

	require.Len(t, facts.AccountFacts, 1)
	fact := facts.AccountFacts[0]
	assert.Equal(t, 2, fact.TotalSubscriptions)
	require.NotNil(t, fact.AvgSubscriptionDays)
	assert.InDelta(t, 10, *fact.AvgSubscriptionDays, 1e-9)
}

func TestBuildSupportFacts_PriorityBuckets(t *testing.T) {
	svc := NewService(ServiceParam{Log: zap.NewNop()})

	snapshot := domain.CleanSnapshot{
		SupportTickets: []domain.SupportTicket{
			{ID: "T1", AccountID: "A1", Priority: priorityPtr(domain.PriorityHigh), ResolutionDays: intPtr(2), SatisfactionScore: intPtr(5)},
			{ID: "T2", AccountID: "A1", Priority: priorityPtr(domain.PriorityHigh), ResolutionDays: intPtr(4)},
			{ID: "T3", AccountID: "A1", Priority: nil},
		},
	}
	facts := svc.Build(snapshot)

	require.Len(t, facts.SupportFacts, 1)
	fact := facts.SupportFacts[0]
	assert.Equal(t, "A1", fact.AccountID)
	assert.Equal(t, 3, fact.TotalTickets)
	assert.Equal(t, 2, fact.HighPriorityTickets)
	assert.Zero(t, fact.MediumPriorityTickets)
	assert.Zero(t, fact.LowPriorityTickets)
	require.NotNil(t, fact.AvgResolutionDays)
	assert.InDelta(t, 3, *fact.AvgResolutionDays, 1e-9)
	require.NotNil(t, fact.AvgSatisfactionScore)
	assert.InDelta(t, 5, *fact.AvgSatisfactionScore, 1e-9)
}

func TestBuildSupportFacts_OnlyAccountsWithTickets(t *testing.T) {
	svc := NewService(ServiceParam{Log: zap.NewNop()})

	snapshot := domain.CleanSnapshot{
		Accounts: []domain.Account{{ID: "A1"}, {ID: "A2"}},
		SupportTickets: []domain.SupportTicket{
			{ID: "T1", AccountID: "A2"},
		},
	}
	facts := svc.Build(snapshot)

	require.Len(t, facts.SupportFacts, 1)
	assert.Equal(t, "A2", facts.SupportFacts[0].AccountID)
	assert.Nil(t, facts.SupportFacts[0].AvgResolutionDays)
	assert.Nil(t, facts.SupportFacts[0].AvgSatisfactionScore)
}

func TestBuildFeatureUsageFacts_GroupsByFeatureAndDay(t *testing.T) {
	svc := NewService(ServiceParam{Log: zap.NewNop()})

	snapshot := domain.CleanSnapshot{
		FeatureUsage: []domain.FeatureUsageEvent{
			{ID: "U1", FeatureName: "export", UsageDate: date(2025, 5, 1), UsageCount: 3},
			{ID: "U2", FeatureName: "export", UsageDate: date(2025, 5, 1), UsageCount: 7},
			{ID: "U3", FeatureName: "export", UsageDate: date(2025, 5, 2), UsageCount: 1},
			{ID: "U4", FeatureName: "api", UsageDate: date(2025, 5, 1), UsageCount: 2},
			{ID: "U5", FeatureName: "api", UsageDate: nil, UsageCount: 99},
		},
	}
	facts := svc.Build(snapshot)

	require.Len(t, facts.FeatureUsageFacts, 3)
	assert.Equal(t, "api", facts.FeatureUsageFacts[0].FeatureName)
	assert.Equal(t, 2, facts.FeatureUsageFacts[0].TotalUsage)
	assert.Equal(t, "export", facts.FeatureUsageFacts[1].FeatureName)
	assert.Equal(t, 10, facts.FeatureUsageFacts[1].TotalUsage)
	assert.Equal(t, 1, facts.FeatureUsageFacts[2].TotalUsage)
}
