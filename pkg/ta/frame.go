package ta

import (
	"errors"

	"github.com/khanhlinhdang/atkcore/pkg/datatype/floats"
	"github.com/khanhlinhdang/atkcore/pkg/types"
)

// ErrInsufficientData is returned when the input table is shorter than the
// calculation's warm-up window. Callers treat it as "nothing to merge", not
// as a failure.
var ErrInsufficientData = errors.New("ta: insufficient data for warm-up window")

// RoundDigits is the fixed output precision applied to every channel, so
// repeated recomputation of overlapping windows yields byte-stable values.
const RoundDigits = 6

// Frame is the result of one calculation: an index column plus one or more
// value channels. Channel order is fixed per calculation function and
// documented there; consumers never identify channels by name.
type Frame struct {
	Index    floats.Slice
	Channels []floats.Slice
}

func (f Frame) Len() int {
	return len(f.Index)
}

func (f Frame) Empty() bool {
	return len(f.Index) == 0
}

// newFrame aligns the given channels to their shortest valid length, rounds
// them, and attaches the matching tail of the table's index column. Channels
// computed with different warm-up windows are right-aligned, the same way a
// dropna() trims a sparse table to its fully-valid rows.
func newFrame(tbl types.KLineTable, channels ...floats.Slice) (Frame, error) {
	size := -1
	for _, ch := range channels {
		if size < 0 || len(ch) < size {
			size = len(ch)
		}
	}
	if size <= 0 {
		return Frame{}, ErrInsufficientData
	}

	out := Frame{
		Index:    tbl.Indexes().Tail(size),
		Channels: make([]floats.Slice, 0, len(channels)),
	}
	for _, ch := range channels {
		out.Channels = append(out.Channels, ch.Tail(size).Round(RoundDigits))
	}
	return out, nil
}
