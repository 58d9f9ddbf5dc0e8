// Package entity defines the domain models for the watchlist feature.
package entity

import "time"

// Instrument represents a tradable instrument on the shared watchlist.
// InstrumentKey is the upstream identifier ("NSE_EQ|INE002A01018"); Symbol
// and Name are what the dashboard displays. Removed instruments are kept
// as inactive rows so they can be restored with their sort position.
type Instrument struct {
	ID            uint      `gorm:"primaryKey"`
	InstrumentKey string    `gorm:"size:64;not null;uniqueIndex"`
	Symbol        string    `gorm:"size:32;not null"`
	Name          string    `gorm:"size:255;not null"`
	Exchange      string    `gorm:"size:32;not null"`
	IsActive      bool      `gorm:"not null;default:true"`
	SortKey       int       `gorm:"not null;default:0"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}
