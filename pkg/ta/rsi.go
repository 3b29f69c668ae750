package ta

import (
	"github.com/khanhlinhdang/atkcore/pkg/datatype/floats"
	"github.com/khanhlinhdang/atkcore/pkg/types"
)

// RSI computes the Relative Strength Index over the selected price column.
//
// Channels: [rsi]. Warm-up: length+1 input rows for the first value, so the
// frame holds n-length rows.
func RSI(tbl types.KLineTable, source types.Source, length int, mamode MAMode) (Frame, error) {
	n := tbl.Len()
	if length <= 0 || n < length+1 {
		return Frame{}, ErrInsufficientData
	}

	prices := tbl.Prices(source)
	gains := make(floats.Slice, 0, n-1)
	losses := make(floats.Slice, 0, n-1)
	for i := 1; i < n; i++ {
		change := prices[i] - prices[i-1]
		if change >= 0 {
			gains.Push(change)
			losses.Push(0)
		} else {
			gains.Push(0)
			losses.Push(-change)
		}
	}

	avgGain := MA(mamode, gains, length)
	avgLoss := MA(mamode, losses, length)

	rsi := make(floats.Slice, 0, len(avgGain))
	for i := range avgGain {
		denom := avgGain[i] + avgLoss[i]
		if denom == 0 {
			// flat window, no directional movement
			rsi.Push(50.0)
			continue
		}
		rsi.Push(100.0 * avgGain[i] / denom)
	}

	return newFrame(tbl, rsi)
}
