// Package entity はanalysisフィーチャーのドメインモデルを定義します。
package entity

import "time"

// Report は1銘柄のテクニカル分析レポートを表します。
// 指標はレポート生成時点の値で固定され、以後変化しません。
type Report struct {
	ID              string  // UUID
	InstrumentKey   string  // 分析対象の銘柄キー
	Narrative       string  // AI生成の分析ナラティブ
	LTP             float64 // 生成時点の直近約定価格
	SMA20           float64 // 20営業日単純移動平均（データ不足時は0）
	SMA50           float64 // 50営業日単純移動平均（データ不足時は0）
	PeriodHigh      float64 // 対象期間の最高値
	PeriodLow       float64 // 対象期間の最安値
	PeriodChangePct float64 // 期間初日終値に対する変化率（%）
	DayCount        int     // 対象期間の営業日数
	GeneratedAt     time.Time
}
