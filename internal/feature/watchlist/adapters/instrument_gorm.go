// Package adapters はwatchlistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"tradedesk_backend/internal/feature/watchlist/domain/entity"
	"tradedesk_backend/internal/feature/watchlist/usecase"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation はPostgreSQLの一意制約違反のエラーコードです。
const pgUniqueViolation = "23505"

// instrumentGorm はInstrumentRepositoryインターフェースのGORM実装です。
type instrumentGorm struct {
	db *gorm.DB
}

var _ usecase.InstrumentRepository = (*instrumentGorm)(nil)

// NewInstrumentRepository は指定されたDB接続でinstrumentGormリポジトリの新しいインスタンスを生成します。
func NewInstrumentRepository(db *gorm.DB) *instrumentGorm {
	return &instrumentGorm{db: db}
}

// ListActive はsort_key順にすべてのアクティブな銘柄を返します。
func (r *instrumentGorm) ListActive(ctx context.Context) ([]entity.Instrument, error) {
	var instruments []entity.Instrument
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Find(&instruments).Error; err != nil {
		return nil, err
	}
	return instruments, nil
}

// ListActiveKeys はsort_key順にアクティブな銘柄のinstrument_keyのみを返します。
func (r *instrumentGorm) ListActiveKeys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := r.db.WithContext(ctx).
		Model(&entity.Instrument{}).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Pluck("instrument_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// Create は銘柄を新規登録します。キーが重複している場合はErrDuplicateInstrumentを返します。
func (r *instrumentGorm) Create(ctx context.Context, instrument *entity.Instrument) error {
	if err := r.db.WithContext(ctx).Create(instrument).Error; err != nil {
		if isDuplicateKey(err) {
			return usecase.ErrDuplicateInstrument
		}
		return err
	}
	return nil
}

// FindByKey はinstrument_keyで銘柄を検索します。
func (r *instrumentGorm) FindByKey(ctx context.Context, instrumentKey string) (*entity.Instrument, error) {
	var instrument entity.Instrument
	if err := r.db.WithContext(ctx).
		Where("instrument_key = ?", instrumentKey).
		First(&instrument).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrInstrumentNotFound
		}
		return nil, err
	}
	return &instrument, nil
}

// Reactivate は非アクティブな銘柄をアクティブに戻します。
// 非アクティブな行が存在しない場合はErrInstrumentNotFoundを返します。
func (r *instrumentGorm) Reactivate(ctx context.Context, instrumentKey string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Instrument{}).
		Where("instrument_key = ? AND is_active = ?", instrumentKey, false).
		Update("is_active", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrInstrumentNotFound
	}
	return nil
}

// Deactivate はアクティブな銘柄を非アクティブにします。
// アクティブな行が存在しない場合はErrInstrumentNotFoundを返します。
func (r *instrumentGorm) Deactivate(ctx context.Context, instrumentKey string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Instrument{}).
		Where("instrument_key = ? AND is_active = ?", instrumentKey, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrInstrumentNotFound
	}
	return nil
}

// isDuplicateKey は一意制約違反かどうかを判定します。
// GORMの翻訳済みエラーに加え、ドライバー固有のエラーコードもフォールバックとして確認します。
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	return false
}
