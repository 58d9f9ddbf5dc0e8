package usecase

import (
	"fmt"
	"sync"
)

// Factory はアクセストークンから上流リポジトリを構築します。
// 実体の組み立てはDI層が担い、usecase層は構築方法を知りません。
type Factory func(accessToken string) (MarketRepository, error)

// Lifecycle は市場データクライアントの明示的なライフサイクルを管理します。
// グローバル状態を持たず、composition rootが唯一の所有者です。
type Lifecycle struct {
	mu      sync.Mutex
	factory Factory
	market  *MarketDataUsecase
}

// NewLifecycle は未構成状態のLifecycleを生成します。
func NewLifecycle(factory Factory) *Lifecycle {
	return &Lifecycle{factory: factory}
}

// Configure は新しいクライアントを構築して差し替えます。既存のクライアントが
// あればそのキャッシュを破棄してから置き換えます。
func (l *Lifecycle) Configure(accessToken string) (*MarketDataUsecase, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	repo, err := l.factory(accessToken)
	if err != nil {
		return nil, err
	}
	m := NewMarketDataUsecase(repo, 0, 0)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.market != nil {
		l.market.Reset()
	}
	l.market = m
	return m, nil
}

// Get は構成済みのクライアントを返します。未構成の場合はErrNotConfiguredを返します。
func (l *Lifecycle) Get() (*MarketDataUsecase, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.market == nil {
		return nil, ErrNotConfigured
	}
	return l.market, nil
}

// Clear は現在のクライアントを破棄します。保持していたキャッシュは失効し、
// 以降のGetはErrNotConfiguredを返します。進行中の取得は破棄されたインスタンスに
// 対して完了しますが、その結果が再利用されることはありません。
func (l *Lifecycle) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.market != nil {
		l.market.Reset()
		l.market = nil
	}
}
