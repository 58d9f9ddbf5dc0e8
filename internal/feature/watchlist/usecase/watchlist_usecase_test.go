package usecase_test

import (
	"context"
	"errors"
	"testing"

	"tradedesk_backend/internal/feature/watchlist/domain/entity"
	"tradedesk_backend/internal/feature/watchlist/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockInstrumentRepository はInstrumentRepositoryインターフェースのモック実装です。
type mockInstrumentRepository struct {
	ListActiveFunc     func(ctx context.Context) ([]entity.Instrument, error)
	ListActiveKeysFunc func(ctx context.Context) ([]string, error)
	CreateFunc         func(ctx context.Context, instrument *entity.Instrument) error
	FindByKeyFunc      func(ctx context.Context, instrumentKey string) (*entity.Instrument, error)
	ReactivateFunc     func(ctx context.Context, instrumentKey string) error
	DeactivateFunc     func(ctx context.Context, instrumentKey string) error

	CreateCalls     int
	ReactivateCalls int
	DeactivateCalls int
}

func (m *mockInstrumentRepository) ListActive(ctx context.Context) ([]entity.Instrument, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

func (m *mockInstrumentRepository) ListActiveKeys(ctx context.Context) ([]string, error) {
	if m.ListActiveKeysFunc != nil {
		return m.ListActiveKeysFunc(ctx)
	}
	return nil, nil
}

func (m *mockInstrumentRepository) Create(ctx context.Context, instrument *entity.Instrument) error {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, instrument)
	}
	return nil
}

func (m *mockInstrumentRepository) FindByKey(ctx context.Context, instrumentKey string) (*entity.Instrument, error) {
	if m.FindByKeyFunc != nil {
		return m.FindByKeyFunc(ctx, instrumentKey)
	}
	return nil, usecase.ErrInstrumentNotFound
}

func (m *mockInstrumentRepository) Reactivate(ctx context.Context, instrumentKey string) error {
	m.ReactivateCalls++
	if m.ReactivateFunc != nil {
		return m.ReactivateFunc(ctx, instrumentKey)
	}
	return nil
}

func (m *mockInstrumentRepository) Deactivate(ctx context.Context, instrumentKey string) error {
	m.DeactivateCalls++
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, instrumentKey)
	}
	return nil
}

// TestNewWatchlistUsecase はNewWatchlistUsecaseコンストラクタが正しくインスタンスを生成することを検証します。
func TestNewWatchlistUsecase(t *testing.T) {
	t.Parallel()

	mockRepo := &mockInstrumentRepository{}
	uc := usecase.NewWatchlistUsecase(mockRepo)

	assert.NotNil(t, uc, "usecase should not be nil")
}

// TestWatchlistUsecase_ListActiveInstruments はListActiveInstrumentsメソッドの各種シナリオを検証します。
func TestWatchlistUsecase_ListActiveInstruments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		mockListActive func(ctx context.Context) ([]entity.Instrument, error)
		expected       []entity.Instrument
		wantErr        bool
		errMsg         string
	}{
		{
			name: "success: returns list of active instruments",
			mockListActive: func(ctx context.Context) ([]entity.Instrument, error) {
				return []entity.Instrument{
					{ID: 1, InstrumentKey: "NSE_EQ|INE002A01018", Symbol: "RELIANCE", Name: "Reliance Industries", Exchange: "NSE_EQ", IsActive: true, SortKey: 1},
					{ID: 2, InstrumentKey: "NSE_EQ|INE467B01029", Symbol: "TCS", Name: "Tata Consultancy Services", Exchange: "NSE_EQ", IsActive: true, SortKey: 2},
				}, nil
			},
			expected: []entity.Instrument{
				{ID: 1, InstrumentKey: "NSE_EQ|INE002A01018", Symbol: "RELIANCE", Name: "Reliance Industries", Exchange: "NSE_EQ", IsActive: true, SortKey: 1},
				{ID: 2, InstrumentKey: "NSE_EQ|INE467B01029", Symbol: "TCS", Name: "Tata Consultancy Services", Exchange: "NSE_EQ", IsActive: true, SortKey: 2},
			},
			wantErr: false,
		},
		{
			name: "success: returns empty list when no instruments",
			mockListActive: func(ctx context.Context) ([]entity.Instrument, error) {
				return []entity.Instrument{}, nil
			},
			expected: []entity.Instrument{},
			wantErr:  false,
		},
		{
			name: "failure: repository returns error",
			mockListActive: func(ctx context.Context) ([]entity.Instrument, error) {
				return nil, errors.New("database connection failed")
			},
			expected: nil,
			wantErr:  true,
			errMsg:   "database connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockRepo := &mockInstrumentRepository{ListActiveFunc: tt.mockListActive}
			uc := usecase.NewWatchlistUsecase(mockRepo)

			instruments, err := uc.ListActiveInstruments(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.EqualError(t, err, tt.errMsg)
				}
				assert.Nil(t, instruments)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, instruments)
			}
		})
	}
}

// TestWatchlistUsecase_ListActiveKeys はListActiveKeysメソッドがリポジトリの結果をそのまま返すことを検証します。
func TestWatchlistUsecase_ListActiveKeys(t *testing.T) {
	t.Parallel()

	t.Run("success: returns keys", func(t *testing.T) {
		t.Parallel()

		mockRepo := &mockInstrumentRepository{
			ListActiveKeysFunc: func(ctx context.Context) ([]string, error) {
				return []string{"NSE_EQ|INE002A01018", "NSE_EQ|INE467B01029"}, nil
			},
		}
		uc := usecase.NewWatchlistUsecase(mockRepo)

		keys, err := uc.ListActiveKeys(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, []string{"NSE_EQ|INE002A01018", "NSE_EQ|INE467B01029"}, keys)
	})

	t.Run("failure: repository returns error", func(t *testing.T) {
		t.Parallel()

		mockRepo := &mockInstrumentRepository{
			ListActiveKeysFunc: func(ctx context.Context) ([]string, error) {
				return nil, errors.New("database connection failed")
			},
		}
		uc := usecase.NewWatchlistUsecase(mockRepo)

		keys, err := uc.ListActiveKeys(context.Background())
		assert.Error(t, err)
		assert.Nil(t, keys)
	})
}

// TestWatchlistUsecase_AddInstrument はAddInstrumentメソッドの各種シナリオを検証します。
func TestWatchlistUsecase_AddInstrument(t *testing.T) {
	t.Parallel()

	t.Run("success: creates instrument with derived fields", func(t *testing.T) {
		t.Parallel()

		var created *entity.Instrument
		mockRepo := &mockInstrumentRepository{
			CreateFunc: func(ctx context.Context, instrument *entity.Instrument) error {
				created = instrument
				return nil
			},
		}
		uc := usecase.NewWatchlistUsecase(mockRepo)

		got, err := uc.AddInstrument(context.Background(), usecase.AddInstrumentInput{
			InstrumentKey: "  NSE_EQ|INE002A01018  ",
			Symbol:        "RELIANCE",
			SortKey:       3,
		})

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "NSE_EQ|INE002A01018", created.InstrumentKey, "key should be trimmed")
		assert.Equal(t, "RELIANCE", created.Symbol)
		assert.Equal(t, "RELIANCE", created.Name, "name should default to symbol")
		assert.Equal(t, "NSE_EQ", created.Exchange, "exchange should be derived from the key")
		assert.True(t, created.IsActive)
		assert.Equal(t, 3, created.SortKey)
		assert.Equal(t, created, got)
	})

	t.Run("success: explicit name and exchange are kept", func(t *testing.T) {
		t.Parallel()

		mockRepo := &mockInstrumentRepository{}
		uc := usecase.NewWatchlistUsecase(mockRepo)

		got, err := uc.AddInstrument(context.Background(), usecase.AddInstrumentInput{
			InstrumentKey: "NSE_EQ|INE002A01018",
			Symbol:        "RELIANCE",
			Name:          "Reliance Industries",
			Exchange:      "NSE",
		})

		require.NoError(t, err)
		assert.Equal(t, "Reliance Industries", got.Name)
		assert.Equal(t, "NSE", got.Exchange)
	})

	t.Run("failure: empty instrument key", func(t *testing.T) {
		t.Parallel()

		mockRepo := &mockInstrumentRepository{}
		uc := usecase.NewWatchlistUsecase(mockRepo)

		got, err := uc.AddInstrument(context.Background(), usecase.AddInstrumentInput{
			InstrumentKey: "   ",
			Symbol:        "RELIANCE",
		})

		assert.Error(t, err)
		assert.Nil(t, got)
		assert.Equal(t, 0, mockRepo.CreateCalls, "repository should not be called")
	})

	t.Run("failure: key referencing multiple instruments", func(t *testing.T) {
		t.Parallel()

		mockRepo := &mockInstrumentRepository{}
		uc := usecase.NewWatchlistUsecase(mockRepo)

		got, err := uc.AddInstrument(context.Background(), usecase.AddInstrumentInput{
			InstrumentKey: "NSE_EQ|INE002A01018,NSE_EQ|INE467B01029",
			Symbol:        "RELIANCE",
		})

		assert.Error(t, err)
		assert.Nil(t, got)
		assert.Equal(t, 0, mockRepo.CreateCalls)
	})

	t.Run("failure: empty symbol", func(t *testing.T) {
		t.Parallel()

		mockRepo := &mockInstrumentRepository{}
		uc := usecase.NewWatchlistUsecase(mockRepo)

		got, err := uc.AddInstrument(context.Background(), usecase.AddInstrumentInput{
			InstrumentKey: "NSE_EQ|INE002A01018",
		})

		assert.Error(t, err)
		assert.Nil(t, got)
		assert.Equal(t, 0, mockRepo.CreateCalls)
	})

	t.Run("success: inactive duplicate is reactivated", func(t *testing.T) {
		t.Parallel()

		revived := &entity.Instrument{
			ID:            7,
			InstrumentKey: "NSE_EQ|INE002A01018",
			Symbol:        "RELIANCE",
			Name:          "Reliance Industries",
			Exchange:      "NSE_EQ",
			IsActive:      true,
			SortKey:       1,
		}
		mockRepo := &mockInstrumentRepository{
			CreateFunc: func(ctx context.Context, instrument *entity.Instrument) error {
				return usecase.ErrDuplicateInstrument
			},
			FindByKeyFunc: func(ctx context.Context, instrumentKey string) (*entity.Instrument, error) {
				return revived, nil
			},
		}
		uc := usecase.NewWatchlistUsecase(mockRepo)

		got, err := uc.AddInstrument(context.Background(), usecase.AddInstrumentInput{
			InstrumentKey: "NSE_EQ|INE002A01018",
			Symbol:        "RELIANCE",
		})

		require.NoError(t, err)
		assert.Equal(t, revived, got)
		assert.Equal(t, 1, mockRepo.ReactivateCalls)
	})

	t.Run("failure: active duplicate", func(t *testing.T) {
		t.Parallel()

		mockRepo := &mockInstrumentRepository{
			CreateFunc: func(ctx context.Context, instrument *entity.Instrument) error {
				return usecase.ErrDuplicateInstrument
			},
			ReactivateFunc: func(ctx context.Context, instrumentKey string) error {
				return usecase.ErrInstrumentNotFound
			},
		}
		uc := usecase.NewWatchlistUsecase(mockRepo)

		got, err := uc.AddInstrument(context.Background(), usecase.AddInstrumentInput{
			InstrumentKey: "NSE_EQ|INE002A01018",
			Symbol:        "RELIANCE",
		})

		assert.ErrorIs(t, err, usecase.ErrDuplicateInstrument)
		assert.Nil(t, got)
	})

	t.Run("failure: repository error is passed through", func(t *testing.T) {
		t.Parallel()

		mockRepo := &mockInstrumentRepository{
			CreateFunc: func(ctx context.Context, instrument *entity.Instrument) error {
				return errors.New("database connection failed")
			},
		}
		uc := usecase.NewWatchlistUsecase(mockRepo)

		got, err := uc.AddInstrument(context.Background(), usecase.AddInstrumentInput{
			InstrumentKey: "NSE_EQ|INE002A01018",
			Symbol:        "RELIANCE",
		})

		assert.EqualError(t, err, "database connection failed")
		assert.Nil(t, got)
		assert.Equal(t, 0, mockRepo.ReactivateCalls, "reactivate should only run on duplicates")
	})
}

// TestWatchlistUsecase_RemoveInstrument はRemoveInstrumentメソッドの各種シナリオを検証します。
func TestWatchlistUsecase_RemoveInstrument(t *testing.T) {
	t.Parallel()

	t.Run("success: deactivates by key", func(t *testing.T) {
		t.Parallel()

		var deactivated string
		mockRepo := &mockInstrumentRepository{
			DeactivateFunc: func(ctx context.Context, instrumentKey string) error {
				deactivated = instrumentKey
				return nil
			},
		}
		uc := usecase.NewWatchlistUsecase(mockRepo)

		err := uc.RemoveInstrument(context.Background(), " NSE_EQ|INE002A01018 ")
		assert.NoError(t, err)
		assert.Equal(t, "NSE_EQ|INE002A01018", deactivated, "key should be trimmed")
	})

	t.Run("failure: empty key", func(t *testing.T) {
		t.Parallel()

		mockRepo := &mockInstrumentRepository{}
		uc := usecase.NewWatchlistUsecase(mockRepo)

		err := uc.RemoveInstrument(context.Background(), "  ")
		assert.Error(t, err)
		assert.Equal(t, 0, mockRepo.DeactivateCalls)
	})

	t.Run("failure: not found is passed through", func(t *testing.T) {
		t.Parallel()

		mockRepo := &mockInstrumentRepository{
			DeactivateFunc: func(ctx context.Context, instrumentKey string) error {
				return usecase.ErrInstrumentNotFound
			},
		}
		uc := usecase.NewWatchlistUsecase(mockRepo)

		err := uc.RemoveInstrument(context.Background(), "NSE_EQ|INE002A01018")
		assert.ErrorIs(t, err, usecase.ErrInstrumentNotFound)
	})
}
