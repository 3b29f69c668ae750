package indicator

import "sync"

// Subscription identifies one registered notification handler.
type Subscription uint64

type plainSub struct {
	id Subscription
	fn func()
}

type countSub struct {
	id Subscription
	fn func(int)
}

type errorSub struct {
	id Subscription
	fn func(error)
}

// subscriberSet keeps the engine's outbound notification handlers: reset,
// appended, updated, historic-loaded and engine-health errors. Same shape as
// the candle store's set; removal is idempotent.
type subscriberSet struct {
	mu     sync.Mutex
	nextID Subscription

	resetSubs    []plainSub
	appendedSubs []plainSub
	updatedSubs  []plainSub
	historicSubs []countSub
	errorSubs    []errorSub
}

func (s *subscriberSet) next() Subscription {
	s.nextID++
	return s.nextID
}

func (e *Engine) OnReset(cb func()) Subscription {
	s := &e.subs
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next()
	s.resetSubs = append(s.resetSubs, plainSub{id: id, fn: cb})
	return id
}

func (e *Engine) OnAppended(cb func()) Subscription {
	s := &e.subs
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next()
	s.appendedSubs = append(s.appendedSubs, plainSub{id: id, fn: cb})
	return id
}

func (e *Engine) OnUpdated(cb func()) Subscription {
	s := &e.subs
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next()
	s.updatedSubs = append(s.updatedSubs, plainSub{id: id, fn: cb})
	return id
}

func (e *Engine) OnHistoric(cb func(count int)) Subscription {
	s := &e.subs
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next()
	s.historicSubs = append(s.historicSubs, countSub{id: id, fn: cb})
	return id
}

// OnError delivers calculation failures that the engine absorbed. The engine
// never propagates them to callers any other way.
func (e *Engine) OnError(cb func(err error)) Subscription {
	s := &e.subs
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next()
	s.errorSubs = append(s.errorSubs, errorSub{id: id, fn: cb})
	return id
}

// Unsubscribe detaches one handler; unknown ids are a no-op.
func (e *Engine) Unsubscribe(id Subscription) {
	s := &e.subs
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.resetSubs {
		if sub.id == id {
			s.resetSubs = append(s.resetSubs[:i], s.resetSubs[i+1:]...)
			return
		}
	}
	for i, sub := range s.appendedSubs {
		if sub.id == id {
			s.appendedSubs = append(s.appendedSubs[:i], s.appendedSubs[i+1:]...)
			return
		}
	}
	for i, sub := range s.updatedSubs {
		if sub.id == id {
			s.updatedSubs = append(s.updatedSubs[:i], s.updatedSubs[i+1:]...)
			return
		}
	}
	for i, sub := range s.historicSubs {
		if sub.id == id {
			s.historicSubs = append(s.historicSubs[:i], s.historicSubs[i+1:]...)
			return
		}
	}
	for i, sub := range s.errorSubs {
		if sub.id == id {
			s.errorSubs = append(s.errorSubs[:i], s.errorSubs[i+1:]...)
			return
		}
	}
}

func (s *subscriberSet) emitReset() {
	s.mu.Lock()
	subs := make([]plainSub, len(s.resetSubs))
	copy(subs, s.resetSubs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

func (s *subscriberSet) emitAppended() {
	s.mu.Lock()
	subs := make([]plainSub, len(s.appendedSubs))
	copy(subs, s.appendedSubs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

func (s *subscriberSet) emitUpdated() {
	s.mu.Lock()
	subs := make([]plainSub, len(s.updatedSubs))
	copy(subs, s.updatedSubs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

func (s *subscriberSet) emitHistoric(count int) {
	s.mu.Lock()
	subs := make([]countSub, len(s.historicSubs))
	copy(subs, s.historicSubs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(count)
	}
}

func (s *subscriberSet) emitError(err error) {
	s.mu.Lock()
	subs := make([]errorSub, len(s.errorSubs))
	copy(subs, s.errorSubs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(err)
	}
}
