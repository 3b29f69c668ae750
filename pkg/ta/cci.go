package ta

import (
	"math"

	"github.com/khanhlinhdang/atkcore/pkg/datatype/floats"
	"github.com/khanhlinhdang/atkcore/pkg/types"
)

// CCI computes the Commodity Channel Index over the typical price (hlc3).
//
// Channels: [cci]. Warm-up: length input rows.
func CCI(tbl types.KLineTable, length int) (Frame, error) {
	n := tbl.Len()
	if length <= 0 || n < length {
		return Frame{}, ErrInsufficientData
	}

	tp := tbl.Prices(types.SourceHLC3)
	sma := SMA(tp, length)

	out := make(floats.Slice, 0, len(sma))
	for i := range sma {
		// window of typical prices ending at input row i+length-1
		win := tp[i : i+length]
		mad := 0.0
		for _, v := range win {
			mad += math.Abs(v - sma[i])
		}
		mad /= float64(length)
		if mad == 0 {
			out.Push(0)
			continue
		}
		out.Push((win[length-1] - sma[i]) / (0.015 * mad))
	}

	return newFrame(tbl, out)
}
