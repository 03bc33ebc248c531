package system

import (
	"errors"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/comphead/ignite/metrics"
)

// Metric group and name constants. Exporters rely on these staying stable.
const (
	// SysMetrics is the group name for system-scope metrics.
	SysMetrics = "sys"

	// GCCPULoad is the GC CPU load metric name.
	GCCPULoad = "GcCpuLoad"

	// CPULoad is the process CPU load metric name.
	CPULoad = "CpuLoad"

	// UpTime is the process uptime metric name.
	UpTime = "UpTime"

	// ThreadCount is the live worker count metric name.
	ThreadCount = "ThreadCount"

	// PeakThreadCount is the peak worker count metric name.
	PeakThreadCount = "PeakThreadCount"

	// TotalStartedThreadCount is the started worker count metric name.
	TotalStartedThreadCount = "TotalStartedThreadCount"

	// DaemonThreadCount is the background worker count metric name.
	DaemonThreadCount = "DaemonThreadCount"
)

// Bootstrap wires the fixed system metric set into mgr: it pushes the total
// physical memory into attrs as a one-shot node attribute and registers pull
// metrics bound directly to info, so every read observes the live counter.
//
// A failing physical-memory probe records -1 instead of failing: this is
// best-effort telemetry, not a startup precondition.
func Bootstrap(mgr *metrics.Manager, info Info, attrs Attributes, logger log.Logger) error {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	total, err := info.TotalPhysicalMemory()
	if err != nil {
		level.Debug(logger).Log("msg", "total physical memory unavailable", "err", err)
		total = -1
	}
	if attrs != nil {
		attrs.Set(AttrPhysicalRAM, total)
	}

	reg := mgr.Registry(SysMetrics)

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	_, err = reg.LongFunc(UpTime, info.UpTime, "Process uptime in milliseconds.")
	collect(err)
	_, err = reg.LongFunc(ThreadCount, info.ThreadCount, "Current number of live workers.")
	collect(err)
	_, err = reg.LongFunc(PeakThreadCount, info.PeakThreadCount, "Peak live worker count.")
	collect(err)
	_, err = reg.LongFunc(TotalStartedThreadCount, info.TotalStartedThreadCount, "Total number of workers started.")
	collect(err)
	_, err = reg.LongFunc(DaemonThreadCount, info.DaemonThreadCount, "Current number of background workers.")
	collect(err)
	_, err = reg.DoubleFunc("SystemLoadAverage", info.SystemLoadAverage, "System load average for the last minute.")
	collect(err)
	_, err = reg.LongFunc("CurrentThreadCpuTime", info.CurrentThreadCPUTime, "CPU time consumed by the reading thread, in nanoseconds.")
	collect(err)
	_, err = reg.LongFunc("CurrentThreadUserTime", info.CurrentThreadUserTime, "User-mode CPU time consumed by the reading thread, in nanoseconds.")
	collect(err)

	return errors.Join(errs...)
}
