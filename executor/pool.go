package executor

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrRejected is returned by Execute when a task cannot be accepted: the
// pool is shut down, or the queue is full and the pool is at its maximum
// size.
var ErrRejected = errors.New("executor: task rejected")

// RejectionPolicy decides what happens to a task the pool cannot accept.
type RejectionPolicy interface {
	RejectTask(task func())
}

// AbortPolicy drops the rejected task; Execute reports ErrRejected.
type AbortPolicy struct{}

// RejectTask implements RejectionPolicy.
func (AbortPolicy) RejectTask(func()) {}

// CallerRunsPolicy executes the rejected task on the submitting goroutine,
// applying backpressure to producers.
type CallerRunsPolicy struct{}

// RejectTask implements RejectionPolicy.
func (CallerRunsPolicy) RejectTask(task func()) { task() }

// WorkerFactory starts worker goroutines. Custom factories can pin, name or
// otherwise decorate workers.
type WorkerFactory interface {
	Spawn(fn func())
}

// GoroutineFactory is the default WorkerFactory: a plain goroutine.
type GoroutineFactory struct{}

// Spawn implements WorkerFactory.
func (GoroutineFactory) Spawn(fn func()) { go fn() }

// WorkerPool is a bounded task executor with a core set of permanent
// workers, overflow workers up to a maximum that retire after an idle
// keep-alive period, and a bounded queue. It implements Introspectable, so
// Monitor publishes its full live metric set.
type WorkerPool struct {
	core      int
	max       int
	keepAlive time.Duration
	factory   WorkerFactory
	rejection RejectionPolicy

	queue chan func()

	active    int64
	completed int64
	scheduled int64

	mtx      sync.Mutex
	workers  int
	largest  int
	shutdown bool

	termOnce sync.Once
	term     chan struct{}
}

var _ Introspectable = (*WorkerPool)(nil)

// NewWorkerPool returns an idle pool. Workers start on demand, up to core
// permanent workers and max total. factory and rejection may be nil for the
// defaults (plain goroutines, abort).
func NewWorkerPool(core, max int, keepAlive time.Duration, queueCap int, factory WorkerFactory, rejection RejectionPolicy) *WorkerPool {
	if core < 1 {
		core = 1
	}
	if max < core {
		max = core
	}
	if queueCap < 0 {
		queueCap = 0
	}
	if factory == nil {
		factory = GoroutineFactory{}
	}
	if rejection == nil {
		rejection = AbortPolicy{}
	}
	return &WorkerPool{
		core:      core,
		max:       max,
		keepAlive: keepAlive,
		factory:   factory,
		rejection: rejection,
		queue:     make(chan func(), queueCap),
		term:      make(chan struct{}),
	}
}

// Execute submits a task. When the queue is full and the pool is at its
// maximum size the rejection policy runs and ErrRejected is returned.
func (p *WorkerPool) Execute(task func()) error {
	p.mtx.Lock()
	if p.shutdown {
		p.mtx.Unlock()
		p.rejection.RejectTask(task)
		return ErrRejected
	}
	atomic.AddInt64(&p.scheduled, 1)

	// A new worker takes the task directly; queue handoff is only for
	// workers that already exist.
	if p.workers < p.core {
		p.startWorkerLocked(false, task)
		p.mtx.Unlock()
		return nil
	}
	select {
	case p.queue <- task:
		p.mtx.Unlock()
		return nil
	default:
	}
	if p.workers < p.max {
		p.startWorkerLocked(true, task)
		p.mtx.Unlock()
		return nil
	}
	p.mtx.Unlock()

	p.rejection.RejectTask(task)
	return ErrRejected
}

// Shutdown stops task intake. Queued tasks still run; the pool terminates
// once every worker has drained and exited.
func (p *WorkerPool) Shutdown() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.shutdown {
		return
	}
	p.shutdown = true
	close(p.queue)
	if p.workers == 0 {
		p.terminate()
	}
}

// AwaitTermination blocks until the pool has terminated or the timeout
// elapses, reporting whether it terminated.
func (p *WorkerPool) AwaitTermination(timeout time.Duration) bool {
	select {
	case <-p.term:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (p *WorkerPool) startWorkerLocked(temporary bool, first func()) {
	p.workers++
	if p.workers > p.largest {
		p.largest = p.workers
	}
	p.factory.Spawn(func() { p.work(temporary, first) })
}

func (p *WorkerPool) work(temporary bool, first func()) {
	defer p.workerExit()
	if first != nil {
		p.run(first)
	}
	for {
		if temporary {
			select {
			case task, ok := <-p.queue:
				if !ok {
					return
				}
				p.run(task)
			case <-time.After(p.keepAlive):
				return
			}
		} else {
			task, ok := <-p.queue
			if !ok {
				return
			}
			p.run(task)
		}
	}
}

func (p *WorkerPool) run(task func()) {
	atomic.AddInt64(&p.active, 1)
	defer func() {
		atomic.AddInt64(&p.active, -1)
		atomic.AddInt64(&p.completed, 1)
	}()
	task()
}

func (p *WorkerPool) workerExit() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.workers--
	if p.shutdown && p.workers == 0 {
		p.terminate()
	}
}

func (p *WorkerPool) terminate() {
	p.termOnce.Do(func() { close(p.term) })
}

// ActiveCount implements Introspectable.
func (p *WorkerPool) ActiveCount() int64 { return atomic.LoadInt64(&p.active) }

// CompletedTaskCount implements Introspectable.
func (p *WorkerPool) CompletedTaskCount() int64 { return atomic.LoadInt64(&p.completed) }

// CorePoolSize implements Introspectable.
func (p *WorkerPool) CorePoolSize() int64 { return int64(p.core) }

// MaximumPoolSize implements Introspectable.
func (p *WorkerPool) MaximumPoolSize() int64 { return int64(p.max) }

// PoolSize implements Introspectable.
func (p *WorkerPool) PoolSize() int64 {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return int64(p.workers)
}

// LargestPoolSize implements Introspectable.
func (p *WorkerPool) LargestPoolSize() int64 {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return int64(p.largest)
}

// TaskCount implements Introspectable.
func (p *WorkerPool) TaskCount() int64 { return atomic.LoadInt64(&p.scheduled) }

// QueueSize implements Introspectable.
func (p *WorkerPool) QueueSize() int64 { return int64(len(p.queue)) }

// KeepAliveTime implements Introspectable.
func (p *WorkerPool) KeepAliveTime() time.Duration { return p.keepAlive }

// IsShutdown implements Pool.
func (p *WorkerPool) IsShutdown() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.shutdown
}

// IsTerminated implements Pool.
func (p *WorkerPool) IsTerminated() bool {
	select {
	case <-p.term:
		return true
	default:
		return false
	}
}

// IsTerminating implements Introspectable.
func (p *WorkerPool) IsTerminating() bool {
	return p.IsShutdown() && !p.IsTerminated()
}

// RejectionHandlerName implements Introspectable.
func (p *WorkerPool) RejectionHandlerName() string {
	return fmt.Sprintf("%T", p.rejection)
}

// WorkerFactoryName implements Introspectable.
func (p *WorkerPool) WorkerFactoryName() string {
	return fmt.Sprintf("%T", p.factory)
}
