package ta

import (
	"math"

	"github.com/khanhlinhdang/atkcore/pkg/datatype/floats"
	"github.com/khanhlinhdang/atkcore/pkg/types"
)

// Keltner computes Keltner Channels: an EMA basis with true-range bands.
//
// Channels: [basis, upper, lower]. Warm-up: max(length, atrLength) input rows.
func Keltner(tbl types.KLineTable, length, atrLength int, multiplier float64) (Frame, error) {
	n := tbl.Len()
	if length <= 0 || atrLength <= 0 || n < length || n < atrLength {
		return Frame{}, ErrInsufficientData
	}
	if multiplier <= 0 {
		multiplier = 2.0
	}

	basis := EMA(tbl.Closes(), length)
	atr := RMA(trueRanges(tbl), atrLength)

	size := len(basis)
	if len(atr) < size {
		size = len(atr)
	}
	basis = basis.Tail(size)
	atr = atr.Tail(size)

	upper := make(floats.Slice, size)
	lower := make(floats.Slice, size)
	for i := 0; i < size; i++ {
		upper[i] = basis[i] + multiplier*atr[i]
		lower[i] = basis[i] - multiplier*atr[i]
	}

	return newFrame(tbl, basis, upper, lower)
}

// trueRanges returns the true-range series; the first row has no previous
// close and degrades to high-low.
func trueRanges(tbl types.KLineTable) floats.Slice {
	out := make(floats.Slice, 0, tbl.Len())
	for i, row := range tbl.Rows {
		tr := row.High - row.Low
		if i > 0 {
			prevClose := tbl.Rows[i-1].Close
			tr = math.Max(tr, math.Max(math.Abs(row.High-prevClose), math.Abs(row.Low-prevClose)))
		}
		out.Push(tr)
	}
	return out
}
