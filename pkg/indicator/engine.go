package indicator

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/khanhlinhdang/atkcore/pkg/candles"
	"github.com/khanhlinhdang/atkcore/pkg/datatype/floats"
	"github.com/khanhlinhdang/atkcore/pkg/metrics"
	"github.com/khanhlinhdang/atkcore/pkg/ta"
	"github.com/khanhlinhdang/atkcore/pkg/types"
	"github.com/khanhlinhdang/atkcore/pkg/worker"
)

var log = logrus.WithField("component", "indicator")

// State is the generation state of one engine instance.
type State int

const (
	StateUninitialized State = iota
	StateGenerating
	StateReady
)

func (s State) String() string {
	switch s {
	case StateGenerating:
		return "generating"
	case StateReady:
		return "ready"
	}
	return "uninitialized"
}

// Compute is a pure calculation function: snapshot table in, derived frame
// out. It runs on a worker goroutine and must not touch shared state.
type Compute func(tbl types.KLineTable) (ta.Frame, error)

// Definition describes one indicator kind bound to an engine: its channel
// layout, its warm-up window and the calculation closure built from the
// normalized parameters.
type Definition struct {
	// Kind is a short machine name ("rsi", "macd").
	Kind string

	// Name is the display name shown on chart legends.
	Name string

	// Warmup is the minimum input length the calculation needs for one
	// output row, covering its slowest smoothing stage.
	Warmup int

	// Channels is the number of output channels the calculation returns.
	Channels int

	Compute Compute
}

// DefaultTrailingMultiplier sizes the trailing recompute slice for append and
// amend events: the engine re-reads the last multiplier*Warmup candles so the
// smoothing stages saturate before the tip value is extracted.
const DefaultTrailingMultiplier = 5

type jobKind int

const (
	jobNone jobKind = iota
	jobFull
	jobHistoric
	jobAppend
	jobAmend
)

func (j jobKind) String() string {
	switch j {
	case jobFull:
		return "full"
	case jobHistoric:
		return "historic"
	case jobAppend:
		return "append"
	case jobAmend:
		return "amend"
	}
	return "none"
}

// Engine keeps one derived series synchronized with a live candle store.
//
// All heavy computation is offloaded to the injected executor; at most one
// job per engine is in flight at any time. Append and amend events arriving
// while a job is running are dropped (optionally replayed, see WithReplay).
// Merges are serialized on mergeMu, giving the instance a single logical
// merge point; the series itself sits behind an RWMutex so consumers can read
// it from any goroutine.
type Engine struct {
	def  Definition
	exec worker.Executor

	trailingMultiplier int
	replay             bool

	// mergeMu serializes merge+notify of job completions.
	mergeMu sync.Mutex

	mu         sync.RWMutex
	source     *candles.Store
	sourceSubs []candles.Subscription

	state    State
	firstGen bool
	inflight jobKind
	rearm    bool    // a reset arrived while a job was in flight
	pending  jobKind // newest dropped trailing event, replay mode only

	index    floats.Slice
	channels []floats.Slice

	subs subscriberSet
}

// Option configures an engine at construction.
type Option func(*Engine)

// WithReplay re-arms the newest append/amend event that was dropped while a
// job was in flight, once that job completes. Off by default: the stock
// behavior is to lose intermediate events.
func WithReplay() Option {
	return func(e *Engine) { e.replay = true }
}

// WithTrailingMultiplier overrides the trailing slice sizing factor.
func WithTrailingMultiplier(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.trailingMultiplier = k
		}
	}
}

// New binds an engine to a candle store and schedules the initial full
// generation.
func New(source *candles.Store, exec worker.Executor, def Definition, opts ...Option) *Engine {
	e := &Engine{
		def:                def,
		exec:               exec,
		trailingMultiplier: DefaultTrailingMultiplier,
		source:             source,
		channels:           make([]floats.Slice, def.Channels),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.bindSource()
	e.scheduleFull()
	return e
}

func (e *Engine) Kind() string { return e.def.Kind }
func (e *Engine) Name() string { return e.def.Name }

func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) Length() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.index)
}

// bindSource subscribes the engine to its current store. Caller must not hold
// e.mu for writes on the same goroutine that delivers store events.
func (e *Engine) bindSource() {
	e.mu.Lock()
	src := e.source
	e.mu.Unlock()
	if src == nil {
		return
	}

	subs := []candles.Subscription{
		src.OnReset(e.handleReset),
		src.OnAppend(e.handleAppend),
		src.OnAmend(e.handleAmend),
		src.OnHistoric(e.handleHistoric),
	}

	e.mu.Lock()
	e.sourceSubs = subs
	e.mu.Unlock()
}

// Unbind detaches the engine from its store. Safe to call repeatedly.
func (e *Engine) Unbind() {
	e.mu.Lock()
	src := e.source
	subs := e.sourceSubs
	e.sourceSubs = nil
	e.mu.Unlock()

	if src == nil {
		return
	}
	for _, sub := range subs {
		src.Unsubscribe(sub)
	}
}

// ChangeSource rebinds the engine to another store and forces a full
// regeneration.
func (e *Engine) ChangeSource(source *candles.Store) {
	e.Rebind(source, nil)
}

// Rebind swaps the candle store and/or the indicator definition, then forces
// a full regeneration. A nil argument keeps the current value.
func (e *Engine) Rebind(source *candles.Store, def *Definition) {
	e.Unbind()

	e.mu.Lock()
	if source != nil {
		e.source = source
	}
	if def != nil {
		e.def = *def
		e.channels = make([]floats.Slice, def.Channels)
		e.index = nil
	}
	e.firstGen = false
	e.mu.Unlock()

	e.bindSource()
	e.scheduleFull()
}

func (e *Engine) handleReset() {
	e.scheduleFull()
}

func (e *Engine) handleAppend(types.OHLCV) {
	e.scheduleTrailing(jobAppend)
}

func (e *Engine) handleAmend(types.OHLCV) {
	e.scheduleTrailing(jobAmend)
}

func (e *Engine) handleHistoric(int) {
	e.scheduleHistoric()
}

// scheduleFull clears the derived series logically (the swap happens on merge)
// and submits a whole-history computation. If a job is already in flight the
// regeneration is re-armed and submitted right after that job's result is
// discarded, so a reset is never lost and single-flight is preserved.
func (e *Engine) scheduleFull() {
	e.mu.Lock()
	e.state = StateGenerating
	e.pending = jobNone
	if e.inflight != jobNone {
		e.rearm = true
		e.mu.Unlock()
		return
	}
	e.inflight = jobFull
	compute := e.def.Compute
	tbl := e.source.Table()
	e.mu.Unlock()

	e.submit(jobFull, compute, tbl)
}

// scheduleTrailing services append and amend events once the engine has a
// consistent base. Events arriving before the first generation completed, or
// while any job is in flight, are dropped.
func (e *Engine) scheduleTrailing(kind jobKind) {
	e.mu.Lock()
	name, kindLabel := e.def.Name, e.def.Kind
	if e.state != StateReady || !e.firstGen {
		state := e.state
		e.mu.Unlock()
		metrics.IndicatorDroppedEventsTotal.WithLabelValues(kindLabel, kind.String()).Inc()
		log.Debugf("%s: %s event dropped while %s", name, kind, state)
		return
	}
	if e.inflight != jobNone {
		if e.replay {
			e.pending = kind
		}
		e.mu.Unlock()
		metrics.IndicatorDroppedEventsTotal.WithLabelValues(kindLabel, kind.String()).Inc()
		log.Debugf("%s: %s event dropped, job in flight", name, kind)
		return
	}
	e.inflight = kind
	compute := e.def.Compute
	tbl := e.source.TailTable(e.trailingMultiplier * e.def.Warmup)
	e.mu.Unlock()

	e.submit(kind, compute, tbl)
}

// scheduleHistoric computes over the candles strictly older than the current
// series coverage and prepends the result.
func (e *Engine) scheduleHistoric() {
	e.mu.Lock()
	if e.state != StateReady || !e.firstGen || e.inflight != jobNone {
		name, kindLabel := e.def.Name, e.def.Kind
		e.mu.Unlock()
		metrics.IndicatorDroppedEventsTotal.WithLabelValues(kindLabel, jobHistoric.String()).Inc()
		log.Debugf("%s: historic event dropped while busy", name)
		return
	}
	e.state = StateGenerating
	e.inflight = jobHistoric
	compute := e.def.Compute
	curLen := len(e.index)
	tbl := e.source.Table().HeadTrim(curLen)
	e.mu.Unlock()

	e.submit(jobHistoric, compute, tbl)
}

func (e *Engine) submit(kind jobKind, compute Compute, tbl types.KLineTable) {
	metrics.IndicatorJobsTotal.WithLabelValues(e.def.Kind, kind.String()).Inc()
	metrics.IndicatorInflight.WithLabelValues(e.def.Kind).Inc()

	e.exec.Submit(func() {
		frame, err := compute(tbl)
		e.complete(kind, frame, err)
	})
}

// complete is the engine's merge point. Exactly one completion arrives per
// submitted job; mergeMu keeps merge and notification of consecutive jobs in
// submission order.
func (e *Engine) complete(kind jobKind, frame ta.Frame, err error) {
	metrics.IndicatorInflight.WithLabelValues(e.def.Kind).Dec()

	e.mergeMu.Lock()
	defer e.mergeMu.Unlock()

	e.mu.Lock()
	e.inflight = jobNone

	if e.rearm {
		// a reset superseded this job; discard the stale result
		e.rearm = false
		e.pending = jobNone
		e.state = StateGenerating
		e.inflight = jobFull
		compute := e.def.Compute
		tbl := e.source.Table()
		e.mu.Unlock()

		e.submit(jobFull, compute, tbl)
		return
	}

	var notify func()
	switch kind {
	case jobFull:
		notify = e.mergeFull(frame, err)
	case jobHistoric:
		notify = e.mergeHistoric(frame, err)
	case jobAppend, jobAmend:
		notify = e.mergeTrailing(kind, frame, err)
	}

	pending := e.pending
	e.pending = jobNone
	e.mu.Unlock()

	if notify != nil {
		notify()
	}
	if pending != jobNone {
		e.scheduleTrailing(pending)
	}
}

// mergeFull replaces the series. Called with e.mu held; returns the
// notification to fire after unlock.
func (e *Engine) mergeFull(frame ta.Frame, err error) func() {
	if err != nil && !errors.Is(err, ta.ErrInsufficientData) {
		// failed initial generation falls back to uninitialized so a
		// later reset or rebind can retry
		metrics.IndicatorJobErrorsTotal.WithLabelValues(e.def.Kind, jobFull.String()).Inc()
		e.state = StateUninitialized
		log.WithError(err).Errorf("%s: full generation failed", e.def.Name)
		return func() { e.subs.emitError(errors.Wrap(err, "full generation failed")) }
	}

	if err != nil {
		// not enough candles yet: the series is legitimately empty
		e.index = nil
		e.channels = make([]floats.Slice, e.def.Channels)
	} else {
		e.index = frame.Index
		e.channels = frame.Channels
	}
	e.state = StateReady
	e.firstGen = true
	return e.subs.emitReset
}

// mergeHistoric prepends the frame. Called with e.mu held.
func (e *Engine) mergeHistoric(frame ta.Frame, err error) func() {
	e.state = StateReady
	if err != nil {
		if !errors.Is(err, ta.ErrInsufficientData) {
			metrics.IndicatorJobErrorsTotal.WithLabelValues(e.def.Kind, jobHistoric.String()).Inc()
			log.WithError(err).Errorf("%s: historic generation failed", e.def.Name)
			return func() { e.subs.emitError(errors.Wrap(err, "historic generation failed")) }
		}
		return nil
	}
	if len(frame.Channels) != len(e.channels) {
		log.Errorf("%s: historic result carries %d channels, want %d", e.def.Name, len(frame.Channels), len(e.channels))
		return nil
	}
	if len(e.index) > 0 && frame.Index.Last() >= e.index[0] {
		log.Errorf("%s: historic result overlaps series head, dropped", e.def.Name)
		return nil
	}

	e.index = append(frame.Index, e.index...)
	for i := range e.channels {
		e.channels[i] = append(frame.Channels[i], e.channels[i]...)
	}

	count := frame.Len()
	return func() { e.subs.emitHistoric(count) }
}

// mergeTrailing extracts the tip row of the recompute and appends it or
// overwrites the current tip. Called with e.mu held.
func (e *Engine) mergeTrailing(kind jobKind, frame ta.Frame, err error) func() {
	if err != nil {
		if !errors.Is(err, ta.ErrInsufficientData) {
			metrics.IndicatorJobErrorsTotal.WithLabelValues(e.def.Kind, kind.String()).Inc()
			log.WithError(err).Errorf("%s: %s recompute failed", e.def.Name, kind)
			return func() { e.subs.emitError(errors.Wrapf(err, "%s recompute failed", kind)) }
		}
		return nil
	}
	if frame.Empty() || len(frame.Channels) != len(e.channels) {
		return nil
	}

	tipIndex := frame.Index.Last()

	switch kind {
	case jobAppend:
		if len(e.index) > 0 && tipIndex <= e.index.Last() {
			// upstream re-announced the same bar; keep the series tip unique
			return nil
		}
		e.index.Push(tipIndex)
		for i := range e.channels {
			e.channels[i].Push(frame.Channels[i].Last())
		}
		return e.subs.emitAppended

	case jobAmend:
		if len(e.index) == 0 {
			return nil
		}
		last := len(e.index) - 1
		e.index[last] = tipIndex
		for i := range e.channels {
			e.channels[i][len(e.channels[i])-1] = frame.Channels[i].Last()
		}
		return e.subs.emitUpdated
	}
	return nil
}
