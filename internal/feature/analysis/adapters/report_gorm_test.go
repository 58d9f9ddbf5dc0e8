package adapters

import (
	"context"
	"testing"
	"time"

	"tradedesk_backend/internal/feature/analysis/domain/entity"
	"tradedesk_backend/internal/feature/analysis/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB はテスト用のインメモリSQLiteデータベースを準備します。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&ReportModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

// seedReport はテスト用のレポートをデータベースに作成します。
func seedReport(t *testing.T, repo usecase.ReportRepository, instrumentKey string, generatedAt time.Time) *entity.Report {
	t.Helper()

	report := &entity.Report{
		ID:              uuid.NewString(),
		InstrumentKey:   instrumentKey,
		Narrative:       "narrative for " + instrumentKey,
		LTP:             100.5,
		SMA20:           98.2,
		SMA50:           95.1,
		PeriodHigh:      110,
		PeriodLow:       90,
		PeriodChangePct: 4.2,
		DayCount:        60,
		GeneratedAt:     generatedAt,
	}
	err := repo.Save(context.Background(), report)
	require.NoError(t, err, "failed to seed report")

	return report
}

// TestNewReportRepository はNewReportRepositoryコンストラクタが正しくインスタンスを生成することを検証します。
func TestNewReportRepository(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewReportRepository(db)

	assert.NotNil(t, repo, "repository should not be nil")
	assert.NotNil(t, repo.db, "database connection should not be nil")
}

// TestReportGorm_SaveAndFindLatest はSaveとFindLatestByInstrumentの往復を検証します。
func TestReportGorm_SaveAndFindLatest(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewReportRepository(db)

	now := time.Now().UTC().Truncate(time.Second)
	older := seedReport(t, repo, "NSE_EQ|INE002A01018", now.Add(-2*time.Hour))
	newest := seedReport(t, repo, "NSE_EQ|INE002A01018", now)
	// 他銘柄のレポートは結果に混ざらない
	seedReport(t, repo, "NSE_EQ|INE467B01029", now.Add(time.Hour))

	found, err := repo.FindLatestByInstrument(context.Background(), "NSE_EQ|INE002A01018")
	require.NoError(t, err)
	assert.Equal(t, newest.ID, found.ID)
	assert.NotEqual(t, older.ID, found.ID)

	// 全フィールドの往復を検証
	assert.Equal(t, newest.InstrumentKey, found.InstrumentKey)
	assert.Equal(t, newest.Narrative, found.Narrative)
	assert.Equal(t, newest.LTP, found.LTP)
	assert.Equal(t, newest.SMA20, found.SMA20)
	assert.Equal(t, newest.SMA50, found.SMA50)
	assert.Equal(t, newest.PeriodHigh, found.PeriodHigh)
	assert.Equal(t, newest.PeriodLow, found.PeriodLow)
	assert.Equal(t, newest.PeriodChangePct, found.PeriodChangePct)
	assert.Equal(t, newest.DayCount, found.DayCount)
	assert.WithinDuration(t, newest.GeneratedAt, found.GeneratedAt, time.Second)
}

// TestReportGorm_FindLatestByInstrument_NotFound は未登録銘柄でErrReportNotFoundが返ることを検証します。
func TestReportGorm_FindLatestByInstrument_NotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewReportRepository(db)

	found, err := repo.FindLatestByInstrument(context.Background(), "NSE_EQ|UNKNOWN")
	assert.ErrorIs(t, err, usecase.ErrReportNotFound)
	assert.Nil(t, found)
}

// TestReportGorm_ListByInstrument はListByInstrumentの並び順と件数制限を検証します。
func TestReportGorm_ListByInstrument(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewReportRepository(db)

	now := time.Now().UTC().Truncate(time.Second)
	first := seedReport(t, repo, "NSE_EQ|INE002A01018", now.Add(-2*time.Hour))
	second := seedReport(t, repo, "NSE_EQ|INE002A01018", now.Add(-1*time.Hour))
	third := seedReport(t, repo, "NSE_EQ|INE002A01018", now)
	seedReport(t, repo, "NSE_EQ|INE467B01029", now)

	t.Run("returns reports newest first", func(t *testing.T) {
		reports, err := repo.ListByInstrument(context.Background(), "NSE_EQ|INE002A01018", 10)
		require.NoError(t, err)
		require.Len(t, reports, 3)
		assert.Equal(t, third.ID, reports[0].ID)
		assert.Equal(t, second.ID, reports[1].ID)
		assert.Equal(t, first.ID, reports[2].ID)
	})

	t.Run("limit caps the result", func(t *testing.T) {
		reports, err := repo.ListByInstrument(context.Background(), "NSE_EQ|INE002A01018", 2)
		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, third.ID, reports[0].ID)
		assert.Equal(t, second.ID, reports[1].ID)
	})

	t.Run("unknown instrument returns empty list", func(t *testing.T) {
		reports, err := repo.ListByInstrument(context.Background(), "NSE_EQ|UNKNOWN", 10)
		require.NoError(t, err)
		assert.Empty(t, reports)
	})
}
