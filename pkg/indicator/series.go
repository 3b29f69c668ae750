package indicator

import "github.com/khanhlinhdang/atkcore/pkg/datatype/floats"

// Series is a detached snapshot of an engine's derived arrays: the index
// column plus one slice per channel, all of equal length.
type Series struct {
	Index    floats.Slice
	Channels []floats.Slice
}

func (s Series) Len() int {
	return len(s.Index)
}

// Series returns a window of the derived series. 0 means "open end" on either
// side, negative positions count from the tail.
//
//	Series(0, 0)  full range
//	Series(0, s)  head up to s
//	Series(a, 0)  tail from a
//	Series(a, s)  bounded window
func (e *Engine) Series(start, stop int) Series {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := len(e.index)
	if start < 0 {
		start += n
	}
	if stop <= 0 {
		stop += n
	}
	start = clamp(start, 0, n)
	stop = clamp(stop, 0, n)
	if stop < start {
		stop = start
	}

	return e.snapshotRange(start, stop)
}

// Table returns the tail n rows of the derived series, or everything for
// n <= 0.
func (e *Engine) Table(n int) Series {
	e.mu.RLock()
	defer e.mu.RUnlock()

	start := 0
	if n > 0 && n < len(e.index) {
		start = len(e.index) - n
	}
	return e.snapshotRange(start, len(e.index))
}

// Last returns the tip row: its index and one value per channel.
func (e *Engine) Last() (int64, []float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.index) == 0 {
		return 0, nil, false
	}
	values := make([]float64, len(e.channels))
	for i, ch := range e.channels {
		values[i] = ch.Last()
	}
	return int64(e.index.Last()), values, true
}

// Channel returns one output channel as a copy. Out-of-range channels return
// an empty slice.
func (e *Engine) Channel(i int) floats.Slice {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if i < 0 || i >= len(e.channels) {
		return nil
	}
	return e.channels[i].Copy()
}

// snapshotRange copies [start, stop) of every array. Caller holds e.mu.
func (e *Engine) snapshotRange(start, stop int) Series {
	out := Series{
		Index:    e.index[start:stop].Copy(),
		Channels: make([]floats.Slice, len(e.channels)),
	}
	for i, ch := range e.channels {
		out.Channels[i] = ch[start:stop].Copy()
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
