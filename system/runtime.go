package system

import (
	"runtime"
	"sync/atomic"
	"time"
)

// RuntimeInfo is the production Info implementation, built from the Go
// runtime plus OS-specific syscalls where the platform supports them (see
// os_linux.go). Counters the platform cannot report degrade to errors or -1.
type RuntimeInfo struct {
	start time.Time
	peak  int64
}

var _ Info = (*RuntimeInfo)(nil)

// NewRuntimeInfo returns an Info backed by the live process.
func NewRuntimeInfo() *RuntimeInfo {
	return &RuntimeInfo{start: time.Now()}
}

// TotalPhysicalMemory implements Info. Platform-specific, see os_linux.go.
func (i *RuntimeInfo) TotalPhysicalMemory() (int64, error) {
	return totalPhysicalMemory()
}

// HeapMemoryUsage implements Info. Init and Max are -1: the Go heap has no
// configured initial or maximum size.
func (i *RuntimeInfo) HeapMemoryUsage() (MemoryUsage, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryUsage{
		Init:      -1,
		Used:      int64(m.HeapAlloc),
		Committed: int64(m.HeapSys - m.HeapReleased),
		Max:       -1,
	}, nil
}

// NonHeapMemoryUsage implements Info. Covers runtime-owned memory outside
// the heap: stacks, metadata, GC structures.
func (i *RuntimeInfo) NonHeapMemoryUsage() (MemoryUsage, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryUsage{
		Init:      -1,
		Used:      int64(m.Sys - m.HeapSys),
		Committed: int64(m.Sys - m.HeapSys),
		Max:       -1,
	}, nil
}

// GCCollectionTime implements Info, reporting cumulative stop-the-world
// pause time in milliseconds.
func (i *RuntimeInfo) GCCollectionTime() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.PauseTotalNs / 1e6)
}

// ProcessCPUTime implements Info. Platform-specific, see os_linux.go.
func (i *RuntimeInfo) ProcessCPUTime() (int64, error) {
	return processCPUTime()
}

// AvailableProcessors implements Info.
func (i *RuntimeInfo) AvailableProcessors() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}

// UpTime implements Info.
func (i *RuntimeInfo) UpTime() int64 {
	return time.Since(i.start).Milliseconds()
}

// ThreadCount implements Info, reporting live goroutines.
func (i *RuntimeInfo) ThreadCount() int64 {
	n := int64(runtime.NumGoroutine())
	for {
		peak := atomic.LoadInt64(&i.peak)
		if n <= peak || atomic.CompareAndSwapInt64(&i.peak, peak, n) {
			break
		}
	}
	return n
}

// PeakThreadCount implements Info. The peak is tracked across ThreadCount
// reads, so it is only as fresh as the last sample.
func (i *RuntimeInfo) PeakThreadCount() int64 {
	i.ThreadCount()
	return atomic.LoadInt64(&i.peak)
}

// TotalStartedThreadCount implements Info. The runtime does not count
// goroutines ever started.
func (i *RuntimeInfo) TotalStartedThreadCount() int64 { return -1 }

// DaemonThreadCount implements Info. The runtime draws no daemon
// distinction.
func (i *RuntimeInfo) DaemonThreadCount() int64 { return -1 }

// SystemLoadAverage implements Info. Platform-specific, see os_linux.go.
func (i *RuntimeInfo) SystemLoadAverage() float64 {
	return systemLoadAverage()
}

// CurrentThreadCPUTime implements Info. Platform-specific, see os_linux.go.
func (i *RuntimeInfo) CurrentThreadCPUTime() int64 {
	return currentThreadCPUTime()
}

// CurrentThreadUserTime implements Info. Platform-specific, see os_linux.go.
func (i *RuntimeInfo) CurrentThreadUserTime() int64 {
	return currentThreadUserTime()
}
