//go:build !linux

package system

import "errors"

var errUnsupported = errors.New("system: counter not supported on this platform")

func totalPhysicalMemory() (int64, error) { return -1, errUnsupported }

func processCPUTime() (int64, error) { return -1, errUnsupported }

func systemLoadAverage() float64 { return -1 }

func currentThreadCPUTime() int64 { return -1 }

func currentThreadUserTime() int64 { return -1 }
