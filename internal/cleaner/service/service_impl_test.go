package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/insight/internal/config"
	rawdomain "github.com/smallbiznis/insight/internal/rawstore/domain"
	rawrepository "github.com/smallbiznis/insight/internal/rawstore/repository"
	"github.com/smallbiznis/insight/internal/warehouse/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCleaner(t *testing.T, name string) (*Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&rawdomain.RawAccount{},
		&rawdomain.RawSubscription{},
		&rawdomain.RawFeatureUsageEvent{},
		&rawdomain.RawSupportTicket{},
		&rawdomain.RawChurnEvent{},
	))

	holder, err := config.NewPipelineConfigHolder()
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		Raw:         rawrepository.NewStore(rawrepository.Params{DB: conn}),
		Log:         zap.NewNop(),
		PipelineCfg: holder,
	})
	return svc, conn
}

func TestClean_PreservesArityAndDegradesBadValues(t *testing.T) {
	svc, conn := setupCleaner(t, "cleaner_arity")

	require.NoError(t, conn.Create(&[]rawdomain.RawAccount{
		{ID: "A1", Name: "Acme", SignupDate: "2025-01-15", PlanTier: "pro", Seats: "10", IsTrial: "false", ChurnFlag: "true"},
		{ID: "A2", Name: "", SignupDate: "not-a-date", PlanTier: "", Seats: "lots", IsTrial: "yes", ChurnFlag: ""},
	}).Error)

	snapshot, err := svc.Clean(context.Background())
	require.NoError(t, err)

	require.Len(t, snapshot.Accounts, 2)

	a1 := snapshot.Accounts[0]
	assert.Equal(t, "A1", a1.ID)
	require.NotNil(t, a1.SignupDate)
	require.NotNil(t, a1.PlanTier)
	assert.Equal(t, "PRO", *a1.PlanTier)
	assert.Equal(t, 10, a1.Seats)
	assert.True(t, a1.ChurnFlag)

	a2 := snapshot.Accounts[1]
	assert.Nil(t, a2.Name)
	assert.Nil(t, a2.SignupDate)
	assert.Nil(t, a2.PlanTier)
	assert.Zero(t, a2.Seats)
	assert.True(t, a2.IsTrial)
	assert.False(t, a2.ChurnFlag)
}

func TestClean_NormalizesCategoricalCase(t *testing.T) {
	svc, conn := setupCleaner(t, "cleaner_case")

	require.NoError(t, conn.Create(&[]rawdomain.RawSubscription{
		{ID: "S1", AccountID: "A1", PlanName: "premium", StartDate: "2025-01-01", EndDate: "2025-06-01", MonthlyRecurringRevenue: "100"},
		{ID: "S2", AccountID: "A1", PlanName: "Premium", StartDate: "2025-01-01", EndDate: "", MonthlyRecurringRevenue: "50.5"},
	}).Error)
	require.NoError(t, conn.Create(&[]rawdomain.RawSupportTicket{
		{ID: "T1", AccountID: "A1", CreatedDate: "2025-02-01", ResolvedDate: "2025-02-03", SatisfactionScore: "4", Priority: "High"},
		{ID: "T2", AccountID: "A1", CreatedDate: "2025-02-02", ResolvedDate: "", SatisfactionScore: "", Priority: ""},
	}).Error)

	snapshot, err := svc.Clean(context.Background())
	require.NoError(t, err)

	require.Len(t, snapshot.Subscriptions, 2)
	assert.Equal(t, "PREMIUM", snapshot.Subscriptions[0].PlanName)
	assert.Equal(t, "PREMIUM", snapshot.Subscriptions[1].PlanName)
	assert.Nil(t, snapshot.Subscriptions[1].EndDate)
	assert.InDelta(t, 50.5, snapshot.Subscriptions[1].MonthlyRecurringRevenue, 1e-9)

	require.Len(t, snapshot.SupportTickets, 2)
	require.NotNil(t, snapshot.SupportTickets[0].Priority)
	assert.Equal(t, domain.PriorityHigh, *snapshot.SupportTickets[0].Priority)
	assert.Nil(t, snapshot.SupportTickets[1].Priority)
	assert.Nil(t, snapshot.SupportTickets[1].SatisfactionScore)
	assert.Nil(t, snapshot.SupportTickets[1].ResolvedDate)
}

func TestClean_AssignsDeterministicChurnEventIDs(t *testing.T) {
	svc, conn := setupCleaner(t, "cleaner_churn_ids")

	require.NoError(t, conn.Create(&[]rawdomain.RawChurnEvent{
		{AccountID: "A3", ChurnDate: "2025-03-01", ReasonCode: "price", RefundAmountUSD: "12.50"},
		{AccountID: "A1", ChurnDate: "bad-date", ReasonCode: "support", RefundAmountUSD: ""},
	}).Error)

	first, err := svc.Clean(context.Background())
	require.NoError(t, err)
	second, err := svc.Clean(context.Background())
	require.NoError(t, err)

	require.Len(t, first.ChurnEvents, 2)
	assert.Equal(t, int64(1), first.ChurnEvents[0].ID)
	assert.Equal(t, int64(2), first.ChurnEvents[1].ID)
	assert.Nil(t, first.ChurnEvents[1].ChurnDate)
	assert.Equal(t, first.ChurnEvents, second.ChurnEvents)
}
