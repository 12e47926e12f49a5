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

func TestApply_SubscriptionDays(t *testing.T) {
	svc := NewService(ServiceParam{Log: zap.NewNop()})

	snapshot := domain.CleanSnapshot{
		Subscriptions: []domain.Subscription{
			{ID: "S1", StartDate: date(2025, 1, 1), EndDate: date(2025, 1, 31)},
			{ID: "S2", StartDate: date(2025, 1, 1), EndDate: nil},
			{ID: "S3", StartDate: nil, EndDate: date(2025, 1, 31)},
			// End before start: the negative duration is kept as-is.
			{ID: "S4", StartDate: date(2025, 2, 10), EndDate: date(2025, 2, 1)},
		},
	}
	svc.Apply(&snapshot)

	require.NotNil(t, snapshot.Subscriptions[0].SubscriptionDays)
	assert.Equal(t, 30, *snapshot.Subscriptions[0].SubscriptionDays)
	assert.Nil(t, snapshot.Subscriptions[1].SubscriptionDays)
	assert.Nil(t, snapshot.Subscriptions[2].SubscriptionDays)
	require.NotNil(t, snapshot.Subscriptions[3].SubscriptionDays)
	assert.Equal(t, -9, *snapshot.Subscriptions[3].SubscriptionDays)
}

func TestApply_ResolutionDays(t *testing.T) {
	svc := NewService(ServiceParam{Log: zap.NewNop()})

	snapshot := domain.CleanSnapshot{
		SupportTickets: []domain.SupportTicket{
			{ID: "T1", CreatedDate: date(2025, 3, 1), ResolvedDate: date(2025, 3, 4)},
			{ID: "T2", CreatedDate: date(2025, 3, 1), ResolvedDate: nil},
		},
	}
	svc.Apply(&snapshot)

	require.NotNil(t, snapshot.SupportTickets[0].ResolutionDays)
	assert.Equal(t, 3, *snapshot.SupportTickets[0].ResolutionDays)
	assert.Nil(t, snapshot.SupportTickets[1].ResolutionDays)
}

func TestApply_ChurnFlagRecomputedFromEvents(t *testing.T) {
	svc := NewService(ServiceParam{Log: zap.NewNop()})

	snapshot := domain.CleanSnapshot{
		Accounts: []domain.Account{
			// Source flag says churned but no event backs it up.
			{ID: "A1", ChurnFlag: true},
			{ID: "A2", ChurnFlag: false},
		},
		ChurnEvents: []domain.ChurnEvent{
			{ID: 1, AccountID: "A2", ChurnDate: date(2025, 4, 1)},
		},
	}
	index := svc.Apply(&snapshot)

	assert.False(t, snapshot.Accounts[0].ChurnFlagCalc)
	assert.True(t, snapshot.Accounts[0].ChurnFlag)
	assert.True(t, snapshot.Accounts[1].ChurnFlagCalc)
	assert.True(t, index.Contains("A2"))
	assert.False(t, index.Contains("A1"))
}

func TestApply_ChurnFlagFlipsWhenEventAppears(t *testing.T) {
	svc := NewService(ServiceParam{Log: zap.NewNop()})

	snapshot := domain.CleanSnapshot{
		Accounts: []domain.Account{{ID: "A1"}},
	}
	svc.Apply(&snapshot)
	assert.False(t, snapshot.Accounts[0].ChurnFlagCalc)

	snapshot.ChurnEvents = []domain.ChurnEvent{{ID: 1, AccountID: "A1"}}
	svc.Apply(&snapshot)
	assert.True(t, snapshot.Accounts[0].ChurnFlagCalc)
}

func TestApply_EventDateDoesNotGateMembership(t *testing.T) {
	svc := NewService(ServiceParam{Log: zap.NewNop()})

	snapshot := domain.CleanSnapshot{
		Accounts:    []domain.Account{{ID: "A1"}},
		ChurnEvents: []domain.ChurnEvent{{ID: 1, AccountID: "A1", ChurnDate: nil}},
	}
	svc.Apply(&snapshot)

	assert.True(t, snapshot.Accounts[0].ChurnFlagCalc)
}
