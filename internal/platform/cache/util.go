package cache

import (
	"time"
)

// TimeUntilNextSessionOpen は次の取引セッション開始時刻（インド時間09:15）までの期間を返します。
func TimeUntilNextSessionOpen() time.Duration {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	now := time.Now().In(loc)

	// 次のセッション開始時刻を計算
	nextOpen := time.Date(now.Year(), now.Month(), now.Day(), 9, 15, 0, 0, loc)

	// 今日の開始時刻が既に過ぎている場合は翌日を使用
	if now.After(nextOpen) {
		nextOpen = nextOpen.Add(24 * time.Hour)
	}

	return nextOpen.Sub(now)
}
