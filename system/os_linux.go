//go:build linux

package system

import (
	"golang.org/x/sys/unix"
)

// loadShift converts the fixed-point load averages reported by Sysinfo.
const loadShift = 1 << 16

func totalPhysicalMemory() (int64, error) {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return -1, err
	}
	return int64(si.Totalram) * int64(si.Unit), nil
}

func processCPUTime() (int64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return -1, err
	}
	return timevalNanos(ru.Utime) + timevalNanos(ru.Stime), nil
}

func systemLoadAverage() float64 {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return -1
	}
	return float64(si.Loads[0]) / loadShift
}

func currentThreadCPUTime() int64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_THREAD, &ru); err != nil {
		return -1
	}
	return timevalNanos(ru.Utime) + timevalNanos(ru.Stime)
}

func currentThreadUserTime() int64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_THREAD, &ru); err != nil {
		return -1
	}
	return timevalNanos(ru.Utime)
}

func timevalNanos(tv unix.Timeval) int64 {
	return int64(tv.Sec)*1e9 + int64(tv.Usec)*1e3
}
