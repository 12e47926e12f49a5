package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/insight/internal/clock"
	"github.com/smallbiznis/insight/internal/migration"
	rawdomain "github.com/smallbiznis/insight/internal/rawstore/domain"
	warehousedomain "github.com/smallbiznis/insight/internal/warehouse/domain"
	warehouserepository "github.com/smallbiznis/insight/internal/warehouse/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var validatedAt = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func setupValidator(t *testing.T, name string, migrate bool) (*Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	if migrate {
		require.NoError(t, migration.AutoMigrate(conn))
	}

	svc := NewService(ServiceParam{
		Store: warehouserepository.NewStore(warehouserepository.Params{DB: conn, Log: zap.NewNop()}),
		Clock: clock.NewFakeClock(validatedAt),
		Log:   zap.NewNop(),
	})
	return svc, conn
}

func TestValidate_HealthyOnFullyMigratedEmptyDatabase(t *testing.T) {
	svc, _ := setupValidator(t, "validator_healthy", true)

	report, err := svc.Validate(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Healthy())
	assert.Empty(t, report.Discrepancies)
	assert.Equal(t, validatedAt, report.GeneratedAt)
	assert.Len(t, report.Tables, 18)
}

func TestValidate_ReportsMissingTables(t *testing.T) {
	svc, conn := setupValidator(t, "validator_missing", false)
	require.NoError(t, conn.AutoMigrate(&rawdomain.RawAccount{}))

	report, err := svc.Validate(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Healthy())
	// Everything except raw_accounts is missing.
	assert.Len(t, report.Discrepancies, 17)
	for _, d := range report.Discrepancies {
		assert.Equal(t, "table missing", d.Detail)
		assert.NotEqual(t, rawdomain.RawAccount{}.TableName(), d.Table)
	}
}

func TestValidate_ReportsRawCleanCountMismatch(t *testing.T) {
	svc, conn := setupValidator(t, "validator_counts", true)

	require.NoError(t, conn.Create(&[]rawdomain.RawAccount{
		{ID: "A1"},
		{ID: "A2"},
	}).Error)
	require.NoError(t, conn.Create(&warehousedomain.Account{ID: "A1"}).Error)

	report, err := svc.Validate(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Healthy())
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, warehousedomain.Account{}.TableName(), report.Discrepancies[0].Table)
	assert.Contains(t, report.Discrepancies[0].Detail, "does not match raw_accounts")
}

func TestValidate_MatchingCountsProduceNoDiscrepancy(t *testing.T) {
	svc, conn := setupValidator(t, "validator_match", true)

	require.NoError(t, conn.Create(&rawdomain.RawAccount{ID: "A1"}).Error)
	require.NoError(t, conn.Create(&warehousedomain.Account{ID: "A1"}).Error)

	report, err := svc.Validate(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Healthy())
}
