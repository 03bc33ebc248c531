// Package system publishes OS and runtime derived metrics: a one-shot
// bootstrap of live pull metrics and a periodic sampler that derives CPU,
// GC and memory load figures from cumulative counters.
//
// All counter access goes through the Info interface so that samplers can be
// driven by a fake provider in tests, and so that a flaky or partial OS
// surface degrades to sentinel values instead of failures.
package system

import "time"

// MemoryUsage is a point-in-time snapshot of one memory area. Fields that the
// platform cannot report are -1.
type MemoryUsage struct {
	Init      int64
	Used      int64
	Committed int64
	Max       int64
}

// Info provides the OS and runtime counters the bootstrap and sampler read.
// Implementations must be safe for concurrent use; individual calls must not
// block. Methods returning an error may fail on platforms that do not expose
// the counter; callers treat that as a best-effort degradation.
type Info interface {
	// TotalPhysicalMemory returns the total physical memory in bytes.
	TotalPhysicalMemory() (int64, error)

	// HeapMemoryUsage returns the current heap usage snapshot.
	HeapMemoryUsage() (MemoryUsage, error)

	// NonHeapMemoryUsage returns the current non-heap usage snapshot.
	NonHeapMemoryUsage() (MemoryUsage, error)

	// GCCollectionTime returns the cumulative time spent in garbage
	// collection, in milliseconds, summed across collectors.
	GCCollectionTime() int64

	// ProcessCPUTime returns the cumulative CPU time consumed by the
	// process, in nanoseconds, across all processors.
	ProcessCPUTime() (int64, error)

	// AvailableProcessors returns the number of processors available to
	// the process. Always at least 1.
	AvailableProcessors() int

	// UpTime returns the process uptime in milliseconds.
	UpTime() int64

	// ThreadCount returns the current number of live workers.
	ThreadCount() int64

	// PeakThreadCount returns the highest observed live worker count.
	PeakThreadCount() int64

	// TotalStartedThreadCount returns the number of workers ever started,
	// or -1 if the platform does not track it.
	TotalStartedThreadCount() int64

	// DaemonThreadCount returns the number of background workers, or -1
	// if the platform does not track it.
	DaemonThreadCount() int64

	// SystemLoadAverage returns the one-minute system load average, or a
	// negative value if unavailable.
	SystemLoadAverage() float64

	// CurrentThreadCPUTime returns the CPU time consumed by the calling
	// thread in nanoseconds, or -1 if unavailable.
	CurrentThreadCPUTime() int64

	// CurrentThreadUserTime returns the user-mode CPU time consumed by
	// the calling thread in nanoseconds, or -1 if unavailable.
	CurrentThreadUserTime() int64
}

// Attributes is the node-attribute side channel. The bootstrap performs a
// single write into it; ownership stays with the caller.
type Attributes interface {
	Set(name string, value interface{})
}

// AttrPhysicalRAM is the node attribute carrying the total physical memory
// of the host, in bytes, or -1 when it could not be determined.
const AttrPhysicalRAM = "sys.phy.ram"

// DefaultSamplingPeriod is the interval between derived metric
// recomputations.
const DefaultSamplingPeriod = 3000 * time.Millisecond
