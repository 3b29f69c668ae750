package types

import "github.com/khanhlinhdang/atkcore/pkg/datatype/floats"

// KLineTable is a detached snapshot of a candle sequence. Calculations run
// over tables, never over the live store, so a table stays stable for the
// whole duration of a computation job.
type KLineTable struct {
	Rows []OHLCV
}

func NewKLineTable(rows []OHLCV) KLineTable {
	out := make([]OHLCV, len(rows))
	copy(out, rows)
	return KLineTable{Rows: out}
}

func (t KLineTable) Len() int {
	return len(t.Rows)
}

func (t KLineTable) Last() (OHLCV, bool) {
	if len(t.Rows) == 0 {
		return OHLCV{}, false
	}
	return t.Rows[len(t.Rows)-1], true
}

// Tail returns the last n rows. n <= 0 or n >= Len returns the whole table.
func (t KLineTable) Tail(n int) KLineTable {
	if n <= 0 || n >= len(t.Rows) {
		return t
	}
	return KLineTable{Rows: t.Rows[len(t.Rows)-n:]}
}

// Head returns the first n rows.
func (t KLineTable) Head(n int) KLineTable {
	if n <= 0 {
		return KLineTable{}
	}
	if n >= len(t.Rows) {
		return t
	}
	return KLineTable{Rows: t.Rows[:n]}
}

// HeadTrim returns all rows except the last n, the counterpart of a pandas
// head(-n) slice used when loading historic candles in front of an existing
// series.
func (t KLineTable) HeadTrim(n int) KLineTable {
	if n <= 0 {
		return t
	}
	if n >= len(t.Rows) {
		return KLineTable{}
	}
	return KLineTable{Rows: t.Rows[:len(t.Rows)-n]}
}

// Indexes extracts the index column.
func (t KLineTable) Indexes() floats.Slice {
	out := make(floats.Slice, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = float64(r.Index)
	}
	return out
}

// Prices extracts one price column by source selector.
func (t KLineTable) Prices(source Source) floats.Slice {
	out := make(floats.Slice, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = source.Price(r)
	}
	return out
}

func (t KLineTable) Highs() floats.Slice  { return t.Prices(SourceHigh) }
func (t KLineTable) Lows() floats.Slice   { return t.Prices(SourceLow) }
func (t KLineTable) Closes() floats.Slice { return t.Prices(SourceClose) }
