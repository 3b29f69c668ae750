package worker

// Executor runs a unit of work off the caller's goroutine and is injected
// into every indicator engine explicitly, so tests can swap in a synchronous
// implementation.
type Executor interface {
	Submit(fn func())
}

// Synchronous runs submitted work inline. It exists for deterministic tests
// and for callers that want the whole pipeline on one goroutine.
type Synchronous struct{}

func (Synchronous) Submit(fn func()) {
	fn()
}
