// Package tradingcal provides weekday-based trading day calculations for
// exchanges that close on weekends. Market holidays are not modeled.
package tradingcal

import (
	"fmt"
	"time"
)

// Range is a span of trading days. Start and End are midnight dates in the
// exchange timezone, and both always fall on a weekday.
type Range struct {
	Start time.Time
	End   time.Time
}

// exchangeZone returns the exchange-local timezone used for date math.
// Instrument keys served by the upstream API belong to Indian exchanges.
func exchangeZone() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsTradingDay reports whether t falls on a weekday.
func IsTradingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// LastTradingDays computes the most recent window of dayCount trading days.
//
// End is today moved back by skipDays trading days; when that still lands on
// a weekend (possible only with skipDays == 0) it is normalized back to the
// previous weekday. Start is End moved back by dayCount further trading days,
// so the window holds exactly dayCount weekdays counting Start and excluding
// End. dayCount == 0 yields Start == End.
func LastTradingDays(dayCount, skipDays int) (Range, error) {
	return lastTradingDaysFrom(time.Now().In(exchangeZone()), dayCount, skipDays)
}

func lastTradingDaysFrom(now time.Time, dayCount, skipDays int) (Range, error) {
	if dayCount < 0 {
		return Range{}, fmt.Errorf("day count must not be negative, got %d", dayCount)
	}
	if skipDays < 0 {
		return Range{}, fmt.Errorf("skip days must not be negative, got %d", skipDays)
	}

	end := truncateToDate(now)
	for remaining := skipDays; remaining > 0; {
		end = end.AddDate(0, 0, -1)
		if IsTradingDay(end) {
			remaining--
		}
	}
	for !IsTradingDay(end) {
		end = end.AddDate(0, 0, -1)
	}

	start := end
	for remaining := dayCount; remaining > 0; {
		start = start.AddDate(0, 0, -1)
		if IsTradingDay(start) {
			remaining--
		}
	}

	return Range{Start: start, End: end}, nil
}

// truncateToDate drops the clock portion of t, keeping its location.
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
