package candles

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/khanhlinhdang/atkcore/pkg/metrics"
	"github.com/khanhlinhdang/atkcore/pkg/types"
)

var log = logrus.WithField("component", "candles")

// Store maintains the live candle sequence of one chart. It is append-mostly:
// new bars are appended at the tail, the in-progress bar is amended in place,
// and older bars may be prepended when deeper history is loaded.
//
// Subscribers receive change events after the mutation is applied. Emission
// happens outside the store lock so a handler may call back into the snapshot
// readers.
type Store struct {
	mu   sync.RWMutex
	rows []types.OHLCV

	subs subscriberSet
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *Store) Last() (types.OHLCV, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.rows) == 0 {
		return types.OHLCV{}, false
	}
	return s.rows[len(s.rows)-1], true
}

// NextIndex returns the index the next appended bar should carry.
func (s *Store) NextIndex() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.rows) == 0 {
		return 0
	}
	return s.rows[len(s.rows)-1].Index + 1
}

// Table returns a detached snapshot of the full candle history.
func (s *Store) Table() types.KLineTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.NewKLineTable(s.rows)
}

// TailTable returns a detached snapshot of the last n rows. n <= 0 returns the
// full history.
func (s *Store) TailTable(n int) types.KLineTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n >= len(s.rows) {
		return types.NewKLineTable(s.rows)
	}
	return types.NewKLineTable(s.rows[len(s.rows)-n:])
}

// Reset replaces the whole sequence and emits a reset event.
func (s *Store) Reset(rows []types.OHLCV) {
	s.mu.Lock()
	s.rows = make([]types.OHLCV, len(rows))
	copy(s.rows, rows)
	s.mu.Unlock()

	metrics.CandleEventsTotal.WithLabelValues("reset").Inc()
	s.subs.emitReset()
}

// Append adds one bar at the tail. A bar whose index does not advance the tail
// index is ignored.
func (s *Store) Append(row types.OHLCV) {
	s.mu.Lock()
	if n := len(s.rows); n > 0 && row.Index <= s.rows[n-1].Index {
		tail := s.rows[n-1].Index
		s.mu.Unlock()
		log.Warnf("append rejected: index %d does not advance tail %d", row.Index, tail)
		return
	}
	s.rows = append(s.rows, row)
	s.mu.Unlock()

	metrics.CandleEventsTotal.WithLabelValues("append").Inc()
	s.subs.emitAppend(row)
}

// AmendLast overwrites the in-progress tail bar. The row must carry the tail
// index; amending an empty store is ignored.
func (s *Store) AmendLast(row types.OHLCV) {
	s.mu.Lock()
	n := len(s.rows)
	if n == 0 || s.rows[n-1].Index != row.Index {
		s.mu.Unlock()
		log.Warnf("amend rejected: index %d is not the tail bar", row.Index)
		return
	}
	s.rows[n-1] = row
	s.mu.Unlock()

	metrics.CandleEventsTotal.WithLabelValues("amend").Inc()
	s.subs.emitAmend(row)
}

// Prepend inserts older bars in front of the sequence and emits a historic
// event carrying the number of inserted rows. Every prepended index must stay
// strictly below the current head index.
func (s *Store) Prepend(rows []types.OHLCV) {
	if len(rows) == 0 {
		return
	}

	s.mu.Lock()
	if len(s.rows) > 0 && rows[len(rows)-1].Index >= s.rows[0].Index {
		s.mu.Unlock()
		log.Warnf("prepend rejected: index %d overlaps head %d", rows[len(rows)-1].Index, s.rows[0].Index)
		return
	}
	merged := make([]types.OHLCV, 0, len(rows)+len(s.rows))
	merged = append(merged, rows...)
	merged = append(merged, s.rows...)
	s.rows = merged
	s.mu.Unlock()

	metrics.CandleEventsTotal.WithLabelValues("historic").Inc()
	s.subs.emitHistoric(len(rows))
}

func (s *Store) OnReset(cb func()) Subscription             { return s.subs.onReset(cb) }
func (s *Store) OnAppend(cb func(types.OHLCV)) Subscription { return s.subs.onAppend(cb) }
func (s *Store) OnAmend(cb func(types.OHLCV)) Subscription  { return s.subs.onAmend(cb) }
func (s *Store) OnHistoric(cb func(int)) Subscription       { return s.subs.onHistoric(cb) }

// Unsubscribe detaches a handler. Unknown or already-removed subscriptions are
// a no-op.
func (s *Store) Unsubscribe(sub Subscription) { s.subs.unsubscribe(sub) }
