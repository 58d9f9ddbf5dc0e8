// Package usecase implements the business logic for watchlist operations.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tradedesk_backend/internal/feature/watchlist/domain/entity"
)

// ErrDuplicateInstrument is returned when the instrument is already on the
// watchlist and active.
var ErrDuplicateInstrument = errors.New("instrument already on watchlist")

// ErrInstrumentNotFound is returned when no matching instrument exists.
var ErrInstrumentNotFound = errors.New("instrument not found")

// InstrumentRepository abstracts the persistence layer for watchlist entries.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type InstrumentRepository interface {
	ListActive(ctx context.Context) ([]entity.Instrument, error)
	ListActiveKeys(ctx context.Context) ([]string, error)
	Create(ctx context.Context, instrument *entity.Instrument) error
	FindByKey(ctx context.Context, instrumentKey string) (*entity.Instrument, error)
	Reactivate(ctx context.Context, instrumentKey string) error
	Deactivate(ctx context.Context, instrumentKey string) error
}

// AddInstrumentInput carries the fields needed to register an instrument.
type AddInstrumentInput struct {
	InstrumentKey string
	Symbol        string
	Name          string
	Exchange      string
	SortKey       int
}

// WatchlistUsecase provides business logic for watchlist operations.
type WatchlistUsecase struct {
	repo InstrumentRepository
}

// NewWatchlistUsecase creates a new WatchlistUsecase with the given repository.
func NewWatchlistUsecase(r InstrumentRepository) *WatchlistUsecase {
	return &WatchlistUsecase{repo: r}
}

// ListActiveInstruments returns all active instruments ordered by sort key.
func (u *WatchlistUsecase) ListActiveInstruments(ctx context.Context) ([]entity.Instrument, error) {
	return u.repo.ListActive(ctx)
}

// ListActiveKeys returns the instrument keys of all active entries. Batch
// jobs use this to decide which instruments to process.
func (u *WatchlistUsecase) ListActiveKeys(ctx context.Context) ([]string, error) {
	return u.repo.ListActiveKeys(ctx)
}

// AddInstrument registers an instrument on the watchlist. If the same key
// exists as an inactive row it is reactivated instead; an active duplicate
// returns ErrDuplicateInstrument.
func (u *WatchlistUsecase) AddInstrument(ctx context.Context, in AddInstrumentInput) (*entity.Instrument, error) {
	key := strings.TrimSpace(in.InstrumentKey)
	if key == "" {
		return nil, fmt.Errorf("instrument key is required")
	}
	if strings.Contains(key, ",") {
		return nil, fmt.Errorf("instrument key %q must reference a single instrument", key)
	}
	symbol := strings.TrimSpace(in.Symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = symbol
	}
	exchange := strings.TrimSpace(in.Exchange)
	if exchange == "" {
		// The exchange segment is the part of the key before the "|".
		if i := strings.IndexByte(key, '|'); i > 0 {
			exchange = key[:i]
		}
	}

	instrument := &entity.Instrument{
		InstrumentKey: key,
		Symbol:        symbol,
		Name:          name,
		Exchange:      exchange,
		IsActive:      true,
		SortKey:       in.SortKey,
	}

	err := u.repo.Create(ctx, instrument)
	if err == nil {
		return instrument, nil
	}
	if !errors.Is(err, ErrDuplicateInstrument) {
		return nil, err
	}

	// The key already exists. Revive it if it was deactivated earlier.
	if rerr := u.repo.Reactivate(ctx, key); rerr != nil {
		if errors.Is(rerr, ErrInstrumentNotFound) {
			// Row exists and is active.
			return nil, ErrDuplicateInstrument
		}
		return nil, rerr
	}
	return u.repo.FindByKey(ctx, key)
}

// RemoveInstrument deactivates an instrument by key.
func (u *WatchlistUsecase) RemoveInstrument(ctx context.Context, instrumentKey string) error {
	key := strings.TrimSpace(instrumentKey)
	if key == "" {
		return fmt.Errorf("instrument key is required")
	}
	return u.repo.Deactivate(ctx, key)
}
