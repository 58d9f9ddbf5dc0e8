// Package di provides dependency injection factories for creating application components.
package di

import (
	"tradedesk_backend/internal/feature/marketdata/adapters/upstox"
	mdusecase "tradedesk_backend/internal/feature/marketdata/usecase"
	platformhttp "tradedesk_backend/internal/platform/http"
)

// NewMarketLifecycle creates the market data client lifecycle backed by an
// Upstox factory. The lifecycle starts unconfigured; a client is built once
// an access token is supplied via Configure.
func NewMarketLifecycle() *mdusecase.Lifecycle {
	return mdusecase.NewLifecycle(func(accessToken string) (mdusecase.MarketRepository, error) {
		cfg := upstox.LoadConfig()
		cfg.AccessToken = accessToken
		httpClient := platformhttp.NewHTTPClient(cfg.Timeout)
		return upstox.NewClient(cfg, httpClient), nil
	})
}
