// Package adapters はanalysisフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"tradedesk_backend/internal/feature/analysis/domain/entity"
	"tradedesk_backend/internal/feature/analysis/usecase"

	"gorm.io/gorm"
)

// ReportModel はreportsテーブルのGORMモデルです。
type ReportModel struct {
	ID              string    `gorm:"size:36;primaryKey"`
	InstrumentKey   string    `gorm:"size:64;not null;index:idx_reports_instrument_generated,priority:1"`
	Narrative       string    `gorm:"type:text;not null"`
	LTP             float64   `gorm:"not null"`
	SMA20           float64   `gorm:"not null;default:0"`
	SMA50           float64   `gorm:"not null;default:0"`
	PeriodHigh      float64   `gorm:"not null"`
	PeriodLow       float64   `gorm:"not null"`
	PeriodChangePct float64   `gorm:"not null"`
	DayCount        int       `gorm:"not null"`
	GeneratedAt     time.Time `gorm:"not null;index:idx_reports_instrument_generated,priority:2"`
}

// TableName はGORMが使用するテーブル名を返します。
func (ReportModel) TableName() string {
	return "reports"
}

// toModel はエンティティをGORMモデルに変換します。
func toModel(r *entity.Report) ReportModel {
	return ReportModel{
		ID:              r.ID,
		InstrumentKey:   r.InstrumentKey,
		Narrative:       r.Narrative,
		LTP:             r.LTP,
		SMA20:           r.SMA20,
		SMA50:           r.SMA50,
		PeriodHigh:      r.PeriodHigh,
		PeriodLow:       r.PeriodLow,
		PeriodChangePct: r.PeriodChangePct,
		DayCount:        r.DayCount,
		GeneratedAt:     r.GeneratedAt,
	}
}

// toEntity はGORMモデルをエンティティに変換します。
func toEntity(m ReportModel) entity.Report {
	return entity.Report{
		ID:              m.ID,
		InstrumentKey:   m.InstrumentKey,
		Narrative:       m.Narrative,
		LTP:             m.LTP,
		SMA20:           m.SMA20,
		SMA50:           m.SMA50,
		PeriodHigh:      m.PeriodHigh,
		PeriodLow:       m.PeriodLow,
		PeriodChangePct: m.PeriodChangePct,
		DayCount:        m.DayCount,
		GeneratedAt:     m.GeneratedAt,
	}
}

// reportGorm はReportRepositoryインターフェースのGORM実装です。
type reportGorm struct {
	db *gorm.DB
}

var _ usecase.ReportRepository = (*reportGorm)(nil)

// NewReportRepository は指定されたDB接続でreportGormリポジトリの新しいインスタンスを生成します。
func NewReportRepository(db *gorm.DB) *reportGorm {
	return &reportGorm{db: db}
}

// Save はレポートを永続化します。
func (r *reportGorm) Save(ctx context.Context, report *entity.Report) error {
	m := toModel(report)
	return r.db.WithContext(ctx).Create(&m).Error
}

// FindLatestByInstrument は指定銘柄の最新レポートを返します。
func (r *reportGorm) FindLatestByInstrument(ctx context.Context, instrumentKey string) (*entity.Report, error) {
	var m ReportModel
	if err := r.db.WithContext(ctx).
		Where("instrument_key = ?", instrumentKey).
		Order("generated_at DESC").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrReportNotFound
		}
		return nil, err
	}
	report := toEntity(m)
	return &report, nil
}

// ListByInstrument は指定銘柄のレポートを新しい順に最大limit件返します。
func (r *reportGorm) ListByInstrument(ctx context.Context, instrumentKey string, limit int) ([]entity.Report, error) {
	var rows []ReportModel
	q := r.db.WithContext(ctx).
		Where("instrument_key = ?", instrumentKey).
		Order("generated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Report, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
