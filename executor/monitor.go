package executor

import (
	"errors"

	"github.com/comphead/ignite/metrics"
)

// ThreadPools is the metric group prefix for all monitored pools.
const ThreadPools = "threadPools"

// Descriptions of the standard pool metric vocabulary.
const (
	activeCountDesc   = "Approximate number of threads that are actively executing tasks."
	completedTaskDesc = "Approximate total number of tasks that have completed execution."
	coreSizeDesc      = "The core number of threads."
	largestSizeDesc   = "Largest number of threads that have ever simultaneously been in the pool."
	maxSizeDesc       = "The maximum allowed number of threads."
	poolSizeDesc      = "Current number of threads in the pool."
	taskCountDesc     = "Approximate total number of tasks that have been scheduled for execution."
	queueSizeDesc     = "Current size of the execution queue."
	keepAliveTimeDesc = "Thread keep-alive time, which is the amount of time which threads in excess of " +
		"the core pool size may remain idle before being terminated."
	isShutdownDesc    = "True if this executor has been shut down."
	isTerminatedDesc  = "True if all tasks have completed following shut down."
	isTerminatingDesc = "True if terminating but not yet terminated."
	rejHndDesc        = "Class name of current rejection handler."
	thrdFactoryDesc   = "Class name of thread factory used to create new threads."
)

// Monitor publishes the standard metric set for a pool under the
// threadPools group. A pool exposing the Introspectable capability gets
// every metric bound as a live pull accessor; an opaque pool gets
// zero-valued numerics, live shutdown flags and empty identifying strings.
func Monitor(mgr *metrics.Manager, name string, pool Pool) error {
	reg := mgr.Registry(metrics.MetricName(ThreadPools, name))

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if p, ok := pool.(Introspectable); ok {
		_, err := reg.LongFunc("ActiveCount", p.ActiveCount, activeCountDesc)
		collect(err)
		_, err = reg.LongFunc("CompletedTaskCount", p.CompletedTaskCount, completedTaskDesc)
		collect(err)
		_, err = reg.LongFunc("CorePoolSize", p.CorePoolSize, coreSizeDesc)
		collect(err)
		_, err = reg.LongFunc("LargestPoolSize", p.LargestPoolSize, largestSizeDesc)
		collect(err)
		_, err = reg.LongFunc("MaximumPoolSize", p.MaximumPoolSize, maxSizeDesc)
		collect(err)
		_, err = reg.LongFunc("PoolSize", p.PoolSize, poolSizeDesc)
		collect(err)
		_, err = reg.LongFunc("TaskCount", p.TaskCount, taskCountDesc)
		collect(err)
		_, err = reg.LongFunc("QueueSize", p.QueueSize, queueSizeDesc)
		collect(err)
		_, err = reg.LongFunc("KeepAliveTime", func() int64 {
			return p.KeepAliveTime().Milliseconds()
		}, keepAliveTimeDesc)
		collect(err)
		_, err = reg.BoolFunc("Shutdown", p.IsShutdown, isShutdownDesc)
		collect(err)
		_, err = reg.BoolFunc("Terminated", p.IsTerminated, isTerminatedDesc)
		collect(err)
		_, err = reg.BoolFunc("Terminating", p.IsTerminating, isTerminatingDesc)
		collect(err)
		_, err = reg.ObjectFunc("RejectedExecutionHandlerClass", func() interface{} {
			return p.RejectionHandlerName()
		}, rejHndDesc)
		collect(err)
		_, err = reg.ObjectFunc("ThreadFactoryClass", func() interface{} {
			return p.WorkerFactoryName()
		}, thrdFactoryDesc)
		collect(err)
		return errors.Join(errs...)
	}

	// Opaque pool: numerics pin to zero, lifecycle flags stay live, and
	// identifying strings default to empty.
	for _, m := range []struct{ name, desc string }{
		{"ActiveCount", activeCountDesc},
		{"CompletedTaskCount", completedTaskDesc},
		{"CorePoolSize", coreSizeDesc},
		{"LargestPoolSize", largestSizeDesc},
		{"MaximumPoolSize", maxSizeDesc},
		{"PoolSize", poolSizeDesc},
		{"TaskCount", taskCountDesc},
		{"QueueSize", queueSizeDesc},
		{"KeepAliveTime", keepAliveTimeDesc},
	} {
		l, err := reg.Long(m.name, m.desc)
		if err != nil {
			collect(err)
			continue
		}
		l.SetValue(0)
	}
	_, err := reg.BoolFunc("Shutdown", pool.IsShutdown, isShutdownDesc)
	collect(err)
	_, err = reg.BoolFunc("Terminated", pool.IsTerminated, isTerminatedDesc)
	collect(err)
	if l, err := reg.Long("Terminating", isTerminatingDesc); err != nil {
		collect(err)
	} else {
		l.SetValue(0)
	}
	if o, err := reg.Object("RejectedExecutionHandlerClass", rejHndDesc); err != nil {
		collect(err)
	} else {
		o.SetValue("")
	}
	if o, err := reg.Object("ThreadFactoryClass", thrdFactoryDesc); err != nil {
		collect(err)
	} else {
		o.SetValue("")
	}
	return errors.Join(errs...)
}

// MonitorStriped publishes the striped pool metric set: aggregate totals,
// per-stripe arrays and the starvation flag, under
// threadPools.StripedExecutor.
func MonitorStriped(mgr *metrics.Manager, svc Striped) error {
	return MonitorStripedNamed(mgr, "StripedExecutor", svc)
}

// MonitorStripedNamed is MonitorStriped with an explicit pool name, for
// processes running more than one striped executor.
func MonitorStripedNamed(mgr *metrics.Manager, name string, svc Striped) error {
	reg := mgr.Registry(metrics.MetricName(ThreadPools, name))

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	_, err := reg.BoolFunc("DetectStarvation", svc.DetectStarvation,
		"True if possible starvation in striped pool is detected.")
	collect(err)
	_, err = reg.LongFunc("StripesCount", svc.Stripes,
		"Stripes count.")
	collect(err)
	_, err = reg.BoolFunc("Shutdown", svc.IsShutdown, isShutdownDesc)
	collect(err)
	_, err = reg.BoolFunc("Terminated", svc.IsTerminated, isTerminatedDesc)
	collect(err)
	_, err = reg.LongFunc("TotalQueueSize", svc.QueueSize,
		"Total queue size of all stripes.")
	collect(err)
	_, err = reg.LongFunc("TotalCompletedTasksCount", svc.CompletedTasks,
		"Completed tasks count of all stripes.")
	collect(err)
	_, err = reg.ObjectFunc("StripesCompletedTasksCounts", func() interface{} {
		return svc.StripesCompletedTasks()
	}, "Number of completed tasks per stripe.")
	collect(err)
	_, err = reg.LongFunc("ActiveCount", svc.ActiveStripesCount,
		"Number of active tasks of all stripes.")
	collect(err)
	_, err = reg.ObjectFunc("StripesActiveStatuses", func() interface{} {
		return svc.StripesActiveStatuses()
	}, "Number of active tasks per stripe.")
	collect(err)
	_, err = reg.ObjectFunc("StripesQueueSizes", func() interface{} {
		return svc.StripesQueueSizes()
	}, "Size of queue per stripe.")
	collect(err)

	return errors.Join(errs...)
}
