package usecase

import "errors"

// ErrReportNotFound は対象銘柄のレポートが存在しない場合に返されます。
var ErrReportNotFound = errors.New("report not found")

// ErrNoCandleData は指標計算に必要な日足が1本も得られなかった場合に返されます。
var ErrNoCandleData = errors.New("no candle data for analysis")

// ErrInvalidInstrumentKey は空または複数銘柄を含むキーが渡された場合に返されます。
var ErrInvalidInstrumentKey = errors.New("invalid instrument key")
