package system

import (
	"errors"
	"testing"
	"time"

	"github.com/go-kit/log"

	"github.com/comphead/ignite/metrics"
)

// fakeInfo is a deterministic Info for driving sampler cycles by hand.
type fakeInfo struct {
	totalMemory    int64
	totalMemoryErr error
	heap           MemoryUsage
	heapErr        error
	nonHeap        MemoryUsage
	nonHeapErr     error
	gcTime         int64
	cpuTime        int64
	cpuTimeErr     error
	processors     int
	upTime         int64
	threads        int64
	loadAverage    float64
}

func (f *fakeInfo) TotalPhysicalMemory() (int64, error)   { return f.totalMemory, f.totalMemoryErr }
func (f *fakeInfo) HeapMemoryUsage() (MemoryUsage, error) { return f.heap, f.heapErr }
func (f *fakeInfo) NonHeapMemoryUsage() (MemoryUsage, error) {
	return f.nonHeap, f.nonHeapErr
}
func (f *fakeInfo) GCCollectionTime() int64        { return f.gcTime }
func (f *fakeInfo) ProcessCPUTime() (int64, error) { return f.cpuTime, f.cpuTimeErr }
func (f *fakeInfo) AvailableProcessors() int       { return f.processors }
func (f *fakeInfo) UpTime() int64                  { return f.upTime }
func (f *fakeInfo) ThreadCount() int64             { return f.threads }
func (f *fakeInfo) PeakThreadCount() int64         { return f.threads }
func (f *fakeInfo) TotalStartedThreadCount() int64 { return -1 }
func (f *fakeInfo) DaemonThreadCount() int64       { return -1 }
func (f *fakeInfo) SystemLoadAverage() float64     { return f.loadAverage }
func (f *fakeInfo) CurrentThreadCPUTime() int64    { return -1 }
func (f *fakeInfo) CurrentThreadUserTime() int64   { return -1 }

func newTestSampler(t *testing.T, info *fakeInfo) (*Sampler, *metrics.Manager) {
	t.Helper()
	mgr := metrics.NewManager(log.NewNopLogger())
	s, err := NewSampler(mgr, info, 1000*time.Millisecond, log.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	return s, mgr
}

func TestSamplerFirstCycleReportsZeroLoads(t *testing.T) {
	info := &fakeInfo{gcTime: 500, cpuTime: 7e9, processors: 1}
	s, _ := newTestSampler(t, info)

	s.sample()

	if want, have := 0.0, s.gcCPULoad.Value(); want != have {
		t.Errorf("gc load: want %f, have %f", want, have)
	}
	if want, have := 0.0, s.cpuLoad.Value(); want != have {
		t.Errorf("cpu load: want %f, have %f", want, have)
	}
}

func TestSamplerGCLoadDelta(t *testing.T) {
	info := &fakeInfo{gcTime: 1000, cpuTime: 1e9, processors: 2}
	s, _ := newTestSampler(t, info)

	s.sample()

	// +400 ms of GC across 2 processors over a 1000 ms period.
	info.gcTime = 1800
	s.sample()

	if want, have := 0.4, s.gcCPULoad.Value(); want != have {
		t.Errorf("gc load: want %f, have %f", want, have)
	}
}

func TestSamplerCPULoadClamped(t *testing.T) {
	info := &fakeInfo{cpuTime: 1e9, processors: 1}
	s, _ := newTestSampler(t, info)

	s.sample()

	// 5 s of CPU in a 1 s period: raw ratio 5.0, clamped to 1.0.
	info.cpuTime = 6e9
	s.sample()

	if want, have := 1.0, s.cpuLoad.Value(); want != have {
		t.Errorf("cpu load: want %f, have %f", want, have)
	}
}

func TestSamplerCPUTimeFailure(t *testing.T) {
	info := &fakeInfo{cpuTime: 2e9, processors: 1}
	s, _ := newTestSampler(t, info)

	s.sample()

	info.cpuTimeErr = errors.New("no such counter")
	s.sample()
	if want, have := -1.0, s.cpuLoad.Value(); want != have {
		t.Errorf("cpu load: want %f, have %f", want, have)
	}

	// The failed cycle left the previous sample untouched: the next
	// successful cycle deltas against the last good reading.
	info.cpuTimeErr = nil
	info.cpuTime = 2e9 + 5e8 // +500 ms over two 1000 ms periods
	s.sample()
	if want, have := 0.5, s.cpuLoad.Value(); want != have {
		t.Errorf("cpu load: want %f, have %f", want, have)
	}
}

func TestSamplerMemoryFailureZeroSnapshot(t *testing.T) {
	info := &fakeInfo{
		heap:       MemoryUsage{Init: 1, Used: 2, Committed: 3, Max: 4},
		nonHeap:    MemoryUsage{Init: 5, Used: 6, Committed: 7, Max: 8},
		processors: 1,
	}
	s, _ := newTestSampler(t, info)

	s.sample()
	if want, have := int64(2), s.heap.used.Value(); want != have {
		t.Errorf("heap used: want %d, have %d", want, have)
	}

	info.heapErr = errors.New("committed should be < max")
	s.sample()
	if want, have := int64(0), s.heap.used.Value(); want != have {
		t.Errorf("heap used after failure: want %d, have %d", want, have)
	}
	if want, have := int64(0), s.heap.committed.Value(); want != have {
		t.Errorf("heap committed after failure: want %d, have %d", want, have)
	}
	// Non-heap still updated in the same cycle.
	if want, have := int64(6), s.nonHeap.used.Value(); want != have {
		t.Errorf("nonheap used: want %d, have %d", want, have)
	}
}

func TestSamplerMetricNames(t *testing.T) {
	info := &fakeInfo{processors: 1}
	_, mgr := newTestSampler(t, info)

	names := map[string]bool{}
	mgr.Registry(SysMetrics).Walk(func(m metrics.Metric) { names[m.Name()] = true })

	for _, want := range []string{
		"sys.memory.heap.init",
		"sys.memory.heap.used",
		"sys.memory.heap.committed",
		"sys.memory.heap.max",
		"sys.memory.nonheap.used",
		"sys.GcCpuLoad",
		"sys.CpuLoad",
	} {
		if !names[want] {
			t.Errorf("metric %q not registered", want)
		}
	}
}

func TestSamplerLifecycle(t *testing.T) {
	info := &fakeInfo{processors: 1}
	mgr := metrics.NewManager(log.NewNopLogger())
	s, err := NewSampler(mgr, info, 10*time.Millisecond, log.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}

	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	// Stop is terminal; neither Stop nor Start may panic or rearm.
	s.Start()
	select {
	case <-s.done:
	default:
		t.Error("sampler loop still live after Stop")
	}
}

func TestSamplerStopWithoutStart(t *testing.T) {
	info := &fakeInfo{processors: 1}
	s, _ := newTestSampler(t, info)
	s.Stop()
	s.Start()
	select {
	case <-s.done:
	default:
		t.Error("cancelled sampler restarted")
	}
}
