package indicator

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhlinhdang/atkcore/pkg/candles"
	"github.com/khanhlinhdang/atkcore/pkg/datatype/floats"
	"github.com/khanhlinhdang/atkcore/pkg/ta"
	"github.com/khanhlinhdang/atkcore/pkg/types"
	"github.com/khanhlinhdang/atkcore/pkg/worker"
)

// manualExecutor queues tasks until drained, so tests can observe the engine
// between submission and completion.
type manualExecutor struct {
	tasks []func()
}

func (m *manualExecutor) Submit(fn func()) {
	m.tasks = append(m.tasks, fn)
}

func (m *manualExecutor) drain() {
	for len(m.tasks) > 0 {
		fn := m.tasks[0]
		m.tasks = m.tasks[1:]
		fn()
	}
}

func testCandles(start, n int) []types.OHLCV {
	r := rand.New(rand.NewSource(42 + int64(start)))
	rows := make([]types.OHLCV, 0, n)
	price := 100.0
	for i := 0; i < n; i++ {
		open := price
		price += r.Float64()*4 - 2
		high := open + r.Float64()*2
		low := open - r.Float64()*2
		rows = append(rows, types.OHLCV{
			Index:  int64(start + i),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 10 + r.Float64(),
		})
	}
	return rows
}

func newReadyRSI(t *testing.T, n int) (*candles.Store, *RSI) {
	t.Helper()
	store := candles.NewStore()
	store.Reset(testCandles(0, n))

	inc := NewRSI(store, worker.Synchronous{}, RSIParams{Length: 14})
	require.Equal(t, StateReady, inc.State())
	return store, inc
}

func assertSeriesInvariants(t *testing.T, s Series) {
	t.Helper()
	for i := 1; i < len(s.Index); i++ {
		assert.Less(t, s.Index[i-1], s.Index[i], "index array must be strictly increasing")
	}
	for c, ch := range s.Channels {
		assert.Len(t, ch, len(s.Index), "channel %d length must match index", c)
	}
}

func TestEngine_FullGeneration(t *testing.T) {
	store, inc := newReadyRSI(t, 100)

	// RSI(14) over 100 candles leaves 100-14 valid rows
	assert.Equal(t, 86, inc.Length())

	s := inc.Series(0, 0)
	assertSeriesInvariants(t, s)
	last, _ := store.Last()
	assert.Equal(t, float64(last.Index), s.Index.Last())
}

func TestEngine_AppendExtendsByOneRow(t *testing.T) {
	store, inc := newReadyRSI(t, 100)

	var appended int
	inc.OnAppended(func() { appended++ })

	rows := testCandles(100, 1)
	store.Append(rows[0])

	assert.Equal(t, 87, inc.Length())
	assert.Equal(t, 1, appended)

	idx, values, ok := inc.Last()
	require.True(t, ok)
	assert.Equal(t, int64(100), idx)
	assert.Len(t, values, 1)

	assertSeriesInvariants(t, inc.Series(0, 0))
}

func TestEngine_AmendKeepsLength(t *testing.T) {
	store, inc := newReadyRSI(t, 100)

	var updated int
	inc.OnUpdated(func() { updated++ })

	last, _ := store.Last()
	last.Close += 5
	store.AmendLast(last)

	assert.Equal(t, 86, inc.Length())
	assert.Equal(t, 1, updated)
	assertSeriesInvariants(t, inc.Series(0, 0))
}

func TestEngine_HistoricPrepend(t *testing.T) {
	store, inc := newReadyRSI(t, 100)

	before := inc.Series(0, 0)
	prevHead := before.Index[0]

	var historic []int
	inc.OnHistoric(func(count int) { historic = append(historic, count) })

	store.Prepend(testCandles(-20, 20))

	// the engine computes over the 34 candles older than its coverage
	// (20 prepended + 14 warm-up rows it never produced output for) and
	// RSI(14) yields exactly 20 new rows
	assert.Equal(t, 106, inc.Length())
	require.Len(t, historic, 1)
	assert.Equal(t, 20, historic[0])

	after := inc.Series(0, 0)
	assertSeriesInvariants(t, after)
	for i := 0; i < historic[0]; i++ {
		assert.Less(t, after.Index[i], prevHead)
	}
}

func TestEngine_ResetReplacesFully(t *testing.T) {
	store, inc := newReadyRSI(t, 100)

	var resets int
	inc.OnReset(func() { resets++ })

	store.Reset(testCandles(0, 50))

	assert.Equal(t, StateReady, inc.State())
	assert.Equal(t, 36, inc.Length(), "no stale rows survive a reset")
	assert.Equal(t, 1, resets)
	assertSeriesInvariants(t, inc.Series(0, 0))
}

func TestEngine_SingleFlight(t *testing.T) {
	store := candles.NewStore()
	store.Reset(testCandles(0, 100))

	exec := &manualExecutor{}
	inc := NewRSI(store, exec, RSIParams{Length: 14})
	require.Len(t, exec.tasks, 1, "construction submits the initial full generation")
	exec.drain()
	require.Equal(t, StateReady, inc.State())

	// first append schedules one job, the second is dropped while in flight
	store.Append(testCandles(100, 1)[0])
	assert.Len(t, exec.tasks, 1)
	store.Append(testCandles(101, 1)[0])
	assert.Len(t, exec.tasks, 1, "no second job while one is in flight")

	exec.drain()
	assert.Equal(t, 87, inc.Length(), "the dropped append is lost, not replayed")
}

func TestEngine_AppendDroppedWhileGenerating(t *testing.T) {
	store := candles.NewStore()
	store.Reset(testCandles(0, 100))

	exec := &manualExecutor{}
	inc := NewRSI(store, exec, RSIParams{Length: 14})

	var appended int
	inc.OnAppended(func() { appended++ })

	// reset re-arms the pending full generation; the append that follows
	// has no consistent base and is dropped
	store.Reset(testCandles(0, 100))
	store.Append(testCandles(100, 1)[0])
	assert.Len(t, exec.tasks, 1)

	exec.drain()
	assert.Equal(t, StateReady, inc.State())
	assert.Equal(t, 86, inc.Length())
	assert.Zero(t, appended)
}

func TestEngine_DuplicateTipAppendIgnored(t *testing.T) {
	_, inc := newReadyRSI(t, 100)

	s := inc.Series(0, 0)
	frame := ta.Frame{
		Index:    floats.New(s.Index.Last()),
		Channels: []floats.Slice{floats.New(55.0)},
	}

	// a stale append result carrying the current tip index must not grow
	// the series
	inc.complete(jobAppend, frame, nil)
	assert.Equal(t, 86, inc.Length())
	assertSeriesInvariants(t, inc.Series(0, 0))
}

func TestEngine_Replay(t *testing.T) {
	store := candles.NewStore()
	store.Reset(testCandles(0, 100))

	exec := &manualExecutor{}
	inc := NewRSI(store, exec, RSIParams{Length: 14}, WithReplay())
	exec.drain()
	require.Equal(t, StateReady, inc.State())

	store.Append(testCandles(100, 1)[0])
	store.Append(testCandles(101, 1)[0]) // dropped, becomes pending
	require.Len(t, exec.tasks, 1)

	exec.drain()

	// the pending append was replayed after the first merge
	assert.Equal(t, 88, inc.Length())
	assertSeriesInvariants(t, inc.Series(0, 0))
}

func TestEngine_FailedFullGenerationFallsBack(t *testing.T) {
	store := candles.NewStore()
	store.Reset(testCandles(0, 100))

	def := Definition{
		Kind:     "broken",
		Name:     "broken",
		Warmup:   10,
		Channels: 1,
		Compute: func(tbl types.KLineTable) (ta.Frame, error) {
			return ta.Frame{}, errors.New("malformed input")
		},
	}

	var failures []error
	eng := New(store, worker.Synchronous{}, def)
	eng.OnError(func(err error) { failures = append(failures, err) })

	store.Reset(testCandles(0, 100))

	assert.Equal(t, StateUninitialized, eng.State(), "a failed full generation must not stay stuck generating")
	assert.Zero(t, eng.Length())
	assert.Len(t, failures, 1)
}

func TestEngine_InsufficientDataIsNoFailure(t *testing.T) {
	store := candles.NewStore()
	store.Reset(testCandles(0, 5))

	var resets, failures int
	inc := NewRSI(store, worker.Synchronous{}, RSIParams{Length: 14})
	inc.OnReset(func() { resets++ })
	inc.OnError(func(error) { failures++ })

	store.Reset(testCandles(0, 5))

	assert.Equal(t, StateReady, inc.State())
	assert.Zero(t, inc.Length())
	assert.Equal(t, 1, resets)
	assert.Zero(t, failures)

	// the series starts producing once enough candles accumulate
	store.Reset(testCandles(0, 30))
	assert.Equal(t, 16, inc.Length())
}

func TestEngine_Rebind(t *testing.T) {
	storeA := candles.NewStore()
	storeA.Reset(testCandles(0, 100))
	storeB := candles.NewStore()
	storeB.Reset(testCandles(0, 50))

	inc := NewRSI(storeA, worker.Synchronous{}, RSIParams{Length: 14})
	require.Equal(t, 86, inc.Length())

	inc.ChangeSource(storeB)
	assert.Equal(t, 36, inc.Length())

	// events from the old store no longer reach the engine
	storeA.Append(testCandles(100, 1)[0])
	assert.Equal(t, 36, inc.Length())

	storeB.Append(testCandles(50, 1)[0])
	assert.Equal(t, 37, inc.Length())
}

func TestEngine_ChangeParamsRegenerates(t *testing.T) {
	store := candles.NewStore()
	store.Reset(testCandles(0, 100))

	inc := NewRSI(store, worker.Synchronous{}, RSIParams{Length: 14})
	require.Equal(t, 86, inc.Length())

	inc.ChangeParams(RSIParams{Length: 28})
	assert.Equal(t, 72, inc.Length())
	assert.Equal(t, 28, inc.Params.Length)
}

func TestEngine_UnbindIdempotent(t *testing.T) {
	store, inc := newReadyRSI(t, 100)

	inc.Unbind()
	inc.Unbind()

	store.Append(testCandles(100, 1)[0])
	assert.Equal(t, 86, inc.Length())
}

func TestEngine_SeriesSlicing(t *testing.T) {
	_, inc := newReadyRSI(t, 100)

	full := inc.Series(0, 0)
	require.Equal(t, 86, full.Len())

	head := inc.Series(0, 10)
	assert.Equal(t, 10, head.Len())
	assert.Equal(t, full.Index[:10], head.Index)

	tail := inc.Series(80, 0)
	assert.Equal(t, 6, tail.Len())
	assert.Equal(t, full.Index[80:], tail.Index)

	window := inc.Series(10, 20)
	assert.Equal(t, 10, window.Len())

	lastFive := inc.Series(-5, 0)
	assert.Equal(t, 5, lastFive.Len())
	assert.Equal(t, full.Index.Last(), lastFive.Index.Last())

	tbl := inc.Table(10)
	assert.Equal(t, 10, tbl.Len())
	assert.Equal(t, full.Index.Last(), tbl.Index.Last())
}

func TestEngine_SeriesSnapshotDetached(t *testing.T) {
	store, inc := newReadyRSI(t, 100)

	s := inc.Series(0, 0)
	before := s.Index.Copy()

	store.Append(testCandles(100, 1)[0])
	assert.Equal(t, before, s.Index, "a handed-out snapshot never mutates")
}

func TestEngine_EventStorm(t *testing.T) {
	store := candles.NewStore()
	store.Reset(testCandles(0, 120))

	inc := NewMACD(store, worker.Synchronous{}, MACDParams{})
	require.Equal(t, StateReady, inc.State())

	next := 120
	for i := 0; i < 40; i++ {
		switch i % 4 {
		case 0, 1:
			store.Append(testCandles(next, 1)[0])
			next++
		case 2:
			last, _ := store.Last()
			last.Close += 1.5
			store.AmendLast(last)
		case 3:
			head := store.Table().Rows[0]
			store.Prepend([]types.OHLCV{{
				Index: head.Index - 1,
				Open:  head.Open, High: head.High, Low: head.Low,
				Close: head.Close, Volume: head.Volume,
			}})
		}
		assertSeriesInvariants(t, inc.Series(0, 0))
	}
}
