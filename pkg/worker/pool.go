package worker

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "worker")

// Pool is a fixed-size goroutine pool shared by many indicator engines.
// Submit never blocks the caller for longer than the queue takes to accept
// the task, and a panicking task never takes a worker down.
type Pool struct {
	queue chan func()

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
	wg        sync.WaitGroup

	numWorkers int
}

func NewPool(numWorkers, queueSize int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pool{
		queue:      make(chan func(), queueSize),
		done:       make(chan struct{}),
		numWorkers: numWorkers,
	}
}

func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.numWorkers; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case fn := <-p.queue:
			p.run(fn)
		}
	}
}

func (p *Pool) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("task panic recovered: %v", r)
		}
	}()
	fn()
}

// Submit enqueues a task. Tasks submitted after shutdown are discarded.
func (p *Pool) Submit(fn func()) {
	select {
	case <-p.done:
		log.Warn("submit after shutdown, task discarded")
	case p.queue <- fn:
	}
}

// Shutdown stops the workers and waits for the running tasks to finish, or
// for the context to expire.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() {
		close(p.done)
	})

	stopped := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-stopped:
		return nil
	}
}
