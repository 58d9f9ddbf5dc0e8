package usecase

import "errors"

var (
	// ErrNotConfigured は上流の認証情報が未設定のまま市場データを要求した場合に返されます。
	ErrNotConfigured = errors.New("market data client is not configured")

	// ErrNoQuoteData は上流の気配値APIが対象銘柄のデータを返さなかった場合に返されます。
	ErrNoQuoteData = errors.New("no quote data for instrument")

	// ErrInvalidInstrumentKey は空または複数銘柄を含むキーが渡された場合に返されます。
	ErrInvalidInstrumentKey = errors.New("invalid instrument key")
)
