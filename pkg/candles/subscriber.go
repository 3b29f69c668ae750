package candles

import (
	"sync"

	"github.com/khanhlinhdang/atkcore/pkg/types"
)

// Subscription identifies one registered handler so it can be detached again.
type Subscription uint64

type resetSub struct {
	id Subscription
	fn func()
}

type candleSub struct {
	id Subscription
	fn func(types.OHLCV)
}

type historicSub struct {
	id Subscription
	fn func(int)
}

// subscriberSet keeps the four event handler lists of a store. Handlers fire
// in registration order. Removal is idempotent.
type subscriberSet struct {
	mu     sync.Mutex
	nextID Subscription

	resetSubs    []resetSub
	appendSubs   []candleSub
	amendSubs    []candleSub
	historicSubs []historicSub
}

func (s *subscriberSet) next() Subscription {
	s.nextID++
	return s.nextID
}

func (s *subscriberSet) onReset(cb func()) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next()
	s.resetSubs = append(s.resetSubs, resetSub{id: id, fn: cb})
	return id
}

func (s *subscriberSet) onAppend(cb func(types.OHLCV)) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next()
	s.appendSubs = append(s.appendSubs, candleSub{id: id, fn: cb})
	return id
}

func (s *subscriberSet) onAmend(cb func(types.OHLCV)) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next()
	s.amendSubs = append(s.amendSubs, candleSub{id: id, fn: cb})
	return id
}

func (s *subscriberSet) onHistoric(cb func(int)) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next()
	s.historicSubs = append(s.historicSubs, historicSub{id: id, fn: cb})
	return id
}

func (s *subscriberSet) unsubscribe(id Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.resetSubs {
		if sub.id == id {
			s.resetSubs = append(s.resetSubs[:i], s.resetSubs[i+1:]...)
			return
		}
	}
	for i, sub := range s.appendSubs {
		if sub.id == id {
			s.appendSubs = append(s.appendSubs[:i], s.appendSubs[i+1:]...)
			return
		}
	}
	for i, sub := range s.amendSubs {
		if sub.id == id {
			s.amendSubs = append(s.amendSubs[:i], s.amendSubs[i+1:]...)
			return
		}
	}
	for i, sub := range s.historicSubs {
		if sub.id == id {
			s.historicSubs = append(s.historicSubs[:i], s.historicSubs[i+1:]...)
			return
		}
	}
}

func (s *subscriberSet) emitReset() {
	s.mu.Lock()
	subs := make([]resetSub, len(s.resetSubs))
	copy(subs, s.resetSubs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

func (s *subscriberSet) emitAppend(row types.OHLCV) {
	s.mu.Lock()
	subs := make([]candleSub, len(s.appendSubs))
	copy(subs, s.appendSubs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(row)
	}
}

func (s *subscriberSet) emitAmend(row types.OHLCV) {
	s.mu.Lock()
	subs := make([]candleSub, len(s.amendSubs))
	copy(subs, s.amendSubs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(row)
	}
}

func (s *subscriberSet) emitHistoric(count int) {
	s.mu.Lock()
	subs := make([]historicSub, len(s.historicSubs))
	copy(subs, s.historicSubs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(count)
	}
}
