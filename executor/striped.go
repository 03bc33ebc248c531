package executor

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
)

// ErrStripedShutdown is returned by StripedExecutor.Execute after Shutdown.
var ErrStripedShutdown = errors.New("executor: striped executor is shut down")

// StripedExecutor runs tasks on a fixed set of independent stripes. Each
// stripe owns one worker goroutine and one FIFO queue; tasks routed to the
// same stripe execute in submission order, so per-stripe ordering is free of
// cross-stripe contention. It implements Striped, so MonitorStriped
// publishes totals and per-stripe arrays.
type StripedExecutor struct {
	stripes []*stripe

	shutdown int32
	wg       sync.WaitGroup

	// Per-stripe completed counts at the previous starvation check.
	starveMtx     sync.Mutex
	lastCompleted []int64
}

var _ Striped = (*StripedExecutor)(nil)

// NewStripedExecutor returns a running executor with the given stripe
// count.
func NewStripedExecutor(stripes int) *StripedExecutor {
	if stripes < 1 {
		stripes = 1
	}
	e := &StripedExecutor{
		stripes:       make([]*stripe, stripes),
		lastCompleted: make([]int64, stripes),
	}
	for i := range e.stripes {
		s := newStripe()
		e.stripes[i] = s
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			s.loop()
		}()
	}
	return e
}

// Execute queues a task on the stripe chosen by idx; idx is reduced modulo
// the stripe count, so any routing key works.
func (e *StripedExecutor) Execute(idx int, task func()) error {
	if atomic.LoadInt32(&e.shutdown) != 0 {
		return ErrStripedShutdown
	}
	if idx < 0 {
		idx = -idx
	}
	return e.stripes[idx%len(e.stripes)].add(task)
}

// Shutdown stops task intake; queued tasks still run. Terminated once every
// stripe has drained.
func (e *StripedExecutor) Shutdown() {
	if !atomic.CompareAndSwapInt32(&e.shutdown, 0, 1) {
		return
	}
	for _, s := range e.stripes {
		s.close()
	}
}

// AwaitTermination blocks until all stripes have stopped.
func (e *StripedExecutor) AwaitTermination() {
	e.wg.Wait()
}

// IsShutdown implements Striped.
func (e *StripedExecutor) IsShutdown() bool {
	return atomic.LoadInt32(&e.shutdown) != 0
}

// IsTerminated implements Striped.
func (e *StripedExecutor) IsTerminated() bool {
	if !e.IsShutdown() {
		return false
	}
	for _, s := range e.stripes {
		if !s.stopped() {
			return false
		}
	}
	return true
}

// Stripes implements Striped.
func (e *StripedExecutor) Stripes() int64 { return int64(len(e.stripes)) }

// ActiveStripesCount implements Striped.
func (e *StripedExecutor) ActiveStripesCount() int64 {
	var n int64
	for _, s := range e.stripes {
		if s.isActive() {
			n++
		}
	}
	return n
}

// QueueSize implements Striped.
func (e *StripedExecutor) QueueSize() int64 {
	var n int64
	for _, s := range e.stripes {
		n += s.queueSize()
	}
	return n
}

// CompletedTasks implements Striped.
func (e *StripedExecutor) CompletedTasks() int64 {
	var n int64
	for _, s := range e.stripes {
		n += s.completedCount()
	}
	return n
}

// StripesCompletedTasks implements Striped.
func (e *StripedExecutor) StripesCompletedTasks() []int64 {
	counts := make([]int64, len(e.stripes))
	for i, s := range e.stripes {
		counts[i] = s.completedCount()
	}
	return counts
}

// StripesActiveStatuses implements Striped.
func (e *StripedExecutor) StripesActiveStatuses() []bool {
	statuses := make([]bool, len(e.stripes))
	for i, s := range e.stripes {
		statuses[i] = s.isActive()
	}
	return statuses
}

// StripesQueueSizes implements Striped.
func (e *StripedExecutor) StripesQueueSizes() []int64 {
	sizes := make([]int64, len(e.stripes))
	for i, s := range e.stripes {
		sizes[i] = s.queueSize()
	}
	return sizes
}

// DetectStarvation implements Striped: a stripe is starved when it has
// queued tasks but its completed count has not moved since the previous
// check.
func (e *StripedExecutor) DetectStarvation() bool {
	e.starveMtx.Lock()
	defer e.starveMtx.Unlock()

	starved := false
	for i, s := range e.stripes {
		completed := s.completedCount()
		if s.queueSize() > 0 && completed == e.lastCompleted[i] {
			starved = true
		}
		e.lastCompleted[i] = completed
	}
	return starved
}

// stripe is one worker with its own FIFO queue. The queue is guarded by the
// mutex; the worker parks on the cond when it runs dry.
type stripe struct {
	mtx    sync.Mutex
	cond   *sync.Cond
	tasks  *queue.Queue
	closed bool

	active    int32
	completed int64
	done      chan struct{}
}

func newStripe() *stripe {
	s := &stripe{
		tasks: queue.New(),
		done:  make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mtx)
	return s
}

func (s *stripe) add(task func()) error {
	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		return ErrStripedShutdown
	}
	s.tasks.Add(task)
	s.mtx.Unlock()
	s.cond.Signal()
	return nil
}

func (s *stripe) close() {
	s.mtx.Lock()
	s.closed = true
	s.mtx.Unlock()
	s.cond.Signal()
}

func (s *stripe) loop() {
	defer close(s.done)
	for {
		s.mtx.Lock()
		for s.tasks.Length() == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.tasks.Length() == 0 {
			s.mtx.Unlock()
			return
		}
		task := s.tasks.Remove().(func())
		s.mtx.Unlock()

		atomic.StoreInt32(&s.active, 1)
		task()
		atomic.StoreInt32(&s.active, 0)
		atomic.AddInt64(&s.completed, 1)
	}
}

func (s *stripe) isActive() bool { return atomic.LoadInt32(&s.active) != 0 }

func (s *stripe) completedCount() int64 { return atomic.LoadInt64(&s.completed) }

func (s *stripe) queueSize() int64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return int64(s.tasks.Length())
}

func (s *stripe) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
