package ta

import "github.com/khanhlinhdang/atkcore/pkg/datatype/floats"

// MAMode selects the smoothing kernel of a calculation.
type MAMode string

const (
	MASimple MAMode = "sma"
	MAExp    MAMode = "ema"
	MAWilder MAMode = "rma"
)

// Normalize maps unknown modes to the given default.
func (m MAMode) Normalize(def MAMode) MAMode {
	switch m {
	case MASimple, MAExp, MAWilder:
		return m
	}
	return def
}

// SMA computes the simple moving average. The output holds only valid values:
// out[i] covers values[i .. i+length-1], so len(out) = len(values)-length+1.
func SMA(values floats.Slice, length int) floats.Slice {
	if length <= 0 || len(values) < length {
		return nil
	}

	out := make(floats.Slice, 0, len(values)-length+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= length {
			sum -= values[i-length]
		}
		if i >= length-1 {
			out.Push(sum / float64(length))
		}
	}
	return out
}

// EMA computes the exponential moving average seeded with the SMA of the
// first window, the common charting convention. Valid values only, aligned
// like SMA.
func EMA(values floats.Slice, length int) floats.Slice {
	return ewma(values, length, 2.0/(float64(length)+1.0))
}

// RMA computes Wilder's smoothed moving average (the RSI kernel).
func RMA(values floats.Slice, length int) floats.Slice {
	return ewma(values, length, 1.0/float64(length))
}

func ewma(values floats.Slice, length int, alpha float64) floats.Slice {
	if length <= 0 || len(values) < length {
		return nil
	}

	out := make(floats.Slice, 0, len(values)-length+1)
	prev := values[:length].Mean()
	out.Push(prev)
	for _, v := range values[length:] {
		prev = alpha*v + (1.0-alpha)*prev
		out.Push(prev)
	}
	return out
}

// MA dispatches on mode; unknown modes use Wilder smoothing.
func MA(mode MAMode, values floats.Slice, length int) floats.Slice {
	switch mode {
	case MASimple:
		return SMA(values, length)
	case MAExp:
		return EMA(values, length)
	}
	return RMA(values, length)
}
