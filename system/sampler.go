package system

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/comphead/ignite/metrics"
)

// Sampler lifecycle states. Once cancelled a sampler never restarts.
const (
	samplerIdle = iota
	samplerScheduled
	samplerCancelled
)

// memoryMetrics is one heap or non-heap snapshot spread over four long
// metrics.
type memoryMetrics struct {
	init      *metrics.Long
	used      *metrics.Long
	committed *metrics.Long
	max       *metrics.Long
}

func newMemoryMetrics(reg *metrics.Registry, prefix string) (*memoryMetrics, error) {
	mm := &memoryMetrics{}
	var errs []error
	assign := func(dst **metrics.Long, leaf string) {
		m, err := reg.Long(metrics.MetricName(prefix, leaf), "")
		if err != nil {
			errs = append(errs, err)
			return
		}
		*dst = m
	}
	assign(&mm.init, "init")
	assign(&mm.used, "used")
	assign(&mm.committed, "committed")
	assign(&mm.max, "max")
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return mm, nil
}

func (mm *memoryMetrics) update(u MemoryUsage) {
	mm.init.SetValue(u.Init)
	mm.used.SetValue(u.Used)
	mm.committed.SetValue(u.Committed)
	mm.max.SetValue(u.Max)
}

// Sampler recomputes derived metrics on a fixed period: heap and non-heap
// memory snapshots, GC CPU load and process CPU load, all in the "sys"
// group. Loads are deltas of cumulative counters against the previous
// cycle, so the very first cycle reports 0.
//
// The sampler is the sole writer of its metrics and its delta state. Any
// single-cycle counter failure degrades that metric to a sentinel value for
// the cycle; it never stops the sampler.
type Sampler struct {
	info   Info
	logger log.Logger
	period time.Duration

	heap      *memoryMetrics
	nonHeap   *memoryMetrics
	gcCPULoad *metrics.Double
	cpuLoad   *metrics.Double

	// Delta state, touched only from the sampling goroutine.
	prevGCTime  int64
	prevCPUTime int64

	mtx   sync.Mutex
	state int
	quit  chan struct{}
	done  chan struct{}
}

// NewSampler creates the sampler's metrics in mgr's "sys" group and primes
// the memory snapshots once. The sampler is idle until Start.
func NewSampler(mgr *metrics.Manager, info Info, period time.Duration, logger log.Logger) (*Sampler, error) {
	if period <= 0 {
		period = DefaultSamplingPeriod
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	reg := mgr.Registry(SysMetrics)

	heap, err := newMemoryMetrics(reg, metrics.MetricName("memory", "heap"))
	if err != nil {
		return nil, err
	}
	nonHeap, err := newMemoryMetrics(reg, metrics.MetricName("memory", "nonheap"))
	if err != nil {
		return nil, err
	}
	gcCPULoad, err := reg.Double(GCCPULoad, "GC CPU load.")
	if err != nil {
		return nil, err
	}
	cpuLoad, err := reg.Double(CPULoad, "CPU load.")
	if err != nil {
		return nil, err
	}

	s := &Sampler{
		info:        info,
		logger:      logger,
		period:      period,
		heap:        heap,
		nonHeap:     nonHeap,
		gcCPULoad:   gcCPULoad,
		cpuLoad:     cpuLoad,
		prevGCTime:  -1,
		prevCPUTime: -1,
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	s.heap.update(s.heapMemoryUsage())
	s.nonHeap.update(s.nonHeapMemoryUsage())

	return s, nil
}

// Start arms the sampling timer. Starting a scheduled or cancelled sampler
// is a no-op.
func (s *Sampler) Start() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.state != samplerIdle {
		return
	}
	s.state = samplerScheduled
	go s.loop()
}

// Stop disarms the timer and waits for an in-flight cycle to complete. A
// stopped sampler never restarts.
func (s *Sampler) Stop() {
	s.mtx.Lock()
	prev := s.state
	s.state = samplerCancelled
	s.mtx.Unlock()

	switch prev {
	case samplerScheduled:
		close(s.quit)
		<-s.done
	case samplerIdle:
		close(s.quit)
		close(s.done)
	}
}

func (s *Sampler) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sample()
		case <-s.quit:
			return
		}
	}
}

// sample runs one cycle. Each derived metric is computed independently so
// one counter's failure leaves the others updating.
func (s *Sampler) sample() {
	s.heap.update(s.heapMemoryUsage())
	s.nonHeap.update(s.nonHeapMemoryUsage())

	s.gcCPULoad.SetValue(s.gcLoad())
	s.cpuLoad.SetValue(s.processLoad())
}

// heapMemoryUsage substitutes an all-zero snapshot on failure: some
// platforms transiently report inconsistent committed/used bounds and the
// sampler must outlive them.
func (s *Sampler) heapMemoryUsage() MemoryUsage {
	u, err := s.info.HeapMemoryUsage()
	if err != nil {
		level.Debug(s.logger).Log("msg", "heap memory usage unavailable", "err", err)
		return MemoryUsage{}
	}
	return u
}

func (s *Sampler) nonHeapMemoryUsage() MemoryUsage {
	u, err := s.info.NonHeapMemoryUsage()
	if err != nil {
		level.Debug(s.logger).Log("msg", "non-heap memory usage unavailable", "err", err)
		return MemoryUsage{}
	}
	return u
}

// gcLoad reports the share of one processor spent on garbage collection
// since the previous cycle.
func (s *Sampler) gcLoad() float64 {
	gcTime := s.info.GCCollectionTime() / int64(s.info.AvailableProcessors())

	var load float64
	if s.prevGCTime > 0 {
		load = float64(gcTime-s.prevGCTime) / float64(s.period.Milliseconds())
	}
	s.prevGCTime = gcTime

	return load
}

// processLoad reports the share of one processor consumed by the process
// since the previous cycle, clamped to 1.0: the delta measurement itself
// takes time, so raw ratios can transiently exceed 100%.
func (s *Sampler) processLoad() float64 {
	cpuTimeNanos, err := s.info.ProcessCPUTime()
	if err != nil {
		// Leave the previous sample in place so the next successful
		// cycle deltas against real data.
		level.Debug(s.logger).Log("msg", "process cpu time unavailable", "err", err)
		return -1
	}

	// Counter covers all processors in nanoseconds; normalize to
	// milliseconds on one processor.
	cpuTime := cpuTimeNanos / (1e6 * int64(s.info.AvailableProcessors()))

	var load float64
	if s.prevCPUTime > 0 {
		load = math.Min(1.0, float64(cpuTime-s.prevCPUTime)/float64(s.period.Milliseconds()))
	}
	s.prevCPUTime = cpuTime

	return load
}
