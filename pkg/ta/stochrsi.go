package ta

import (
	"github.com/khanhlinhdang/atkcore/pkg/datatype/floats"
	"github.com/khanhlinhdang/atkcore/pkg/types"
)

// StochRSI computes the stochastic oscillator of the RSI series (RSI-of-RSI,
// a windowed dependency: the stochastic window slides over already-derived
// RSI values).
//
// Channels: [k, d]. Warm-up: rsiLength+stochLength+smoothK+smoothD-2 rows.
func StochRSI(tbl types.KLineTable, source types.Source, rsiLength, stochLength, smoothK, smoothD int, mamode MAMode) (Frame, error) {
	if rsiLength <= 0 || stochLength <= 0 || smoothK <= 0 || smoothD <= 0 {
		return Frame{}, ErrInsufficientData
	}

	rsiFrame, err := RSI(tbl, source, rsiLength, mamode)
	if err != nil {
		return Frame{}, err
	}

	raw := stoch(rsiFrame.Channels[0], stochLength)
	k := SMA(raw, smoothK)
	d := SMA(k, smoothD)
	if len(d) == 0 {
		return Frame{}, ErrInsufficientData
	}

	return newFrame(tbl, k, d)
}

// stoch maps each value to its position within the rolling min/max window,
// scaled to 0..100. Valid values only.
func stoch(values floats.Slice, window int) floats.Slice {
	if window <= 0 || len(values) < window {
		return nil
	}

	out := make(floats.Slice, 0, len(values)-window+1)
	for i := window - 1; i < len(values); i++ {
		win := values[i-window+1 : i+1]
		lowest := win.Min()
		highest := win.Max()
		if highest == lowest {
			out.Push(0)
			continue
		}
		out.Push(100.0 * (values[i] - lowest) / (highest - lowest))
	}
	return out
}
