package ta

import (
	"github.com/khanhlinhdang/atkcore/pkg/types"
)

// MACD computes moving average convergence divergence.
//
// Channels: [macd, histogram, signal], in that fixed order.
// Warm-up: slow+signal-1 input rows.
func MACD(tbl types.KLineTable, source types.Source, fast, slow, signal int, mamode MAMode) (Frame, error) {
	if slow < fast {
		fast, slow = slow, fast
	}
	n := tbl.Len()
	if fast <= 0 || slow <= 0 || signal <= 0 || n < slow+signal-1 {
		return Frame{}, ErrInsufficientData
	}

	prices := tbl.Prices(source)
	fastMA := MA(mamode, prices, fast)
	slowMA := MA(mamode, prices, slow)

	// both are right-aligned to the price tail; trim the fast leg
	macd := fastMA.Tail(len(slowMA)).Sub(slowMA)
	signalMA := MA(mamode, macd, signal)
	histogram := macd.Tail(len(signalMA)).Sub(signalMA)

	return newFrame(tbl, macd, histogram, signalMA)
}
