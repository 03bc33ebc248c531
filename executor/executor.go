// Package executor provides task-executing worker pools and the adapter
// that publishes their internal state as metrics. Pools are dispatched by
// capability: a pool exposing full introspection gets live pull metrics, an
// opaque pool gets a zero-valued fallback set, and striped pools get
// per-stripe aggregates.
package executor

import "time"

// Pool is the minimal surface every executor exposes. Opaque pools that
// implement nothing beyond it still get their lifecycle flags published.
type Pool interface {
	// IsShutdown reports whether the pool has been shut down.
	IsShutdown() bool

	// IsTerminated reports whether all tasks have completed following
	// shutdown.
	IsTerminated() bool
}

// Introspectable is the rich capability set. A pool implementing it gets
// every metric bound as a live pull accessor.
type Introspectable interface {
	Pool

	// ActiveCount returns the approximate number of workers actively
	// executing tasks.
	ActiveCount() int64

	// CompletedTaskCount returns the approximate total number of tasks
	// that have completed execution.
	CompletedTaskCount() int64

	// CorePoolSize returns the core number of workers.
	CorePoolSize() int64

	// MaximumPoolSize returns the maximum allowed number of workers.
	MaximumPoolSize() int64

	// PoolSize returns the current number of workers in the pool.
	PoolSize() int64

	// LargestPoolSize returns the largest number of workers that have
	// ever simultaneously been in the pool.
	LargestPoolSize() int64

	// TaskCount returns the approximate total number of tasks that have
	// been scheduled for execution.
	TaskCount() int64

	// QueueSize returns the current size of the execution queue.
	QueueSize() int64

	// KeepAliveTime returns how long workers in excess of the core size
	// may stay idle before being terminated.
	KeepAliveTime() time.Duration

	// IsTerminating reports whether the pool is shutting down but not
	// yet terminated.
	IsTerminating() bool

	// RejectionHandlerName identifies the policy applied to rejected
	// tasks.
	RejectionHandlerName() string

	// WorkerFactoryName identifies the factory used to start new
	// workers.
	WorkerFactoryName() string
}

// Striped is the capability set of pools organized into independent
// stripes, each with its own queue and worker.
type Striped interface {
	// IsShutdown reports whether the executor has been shut down.
	IsShutdown() bool

	// IsTerminated reports whether all stripes have stopped following
	// shutdown.
	IsTerminated() bool

	// Stripes returns the stripe count.
	Stripes() int64

	// ActiveStripesCount returns the number of stripes currently
	// executing a task.
	ActiveStripesCount() int64

	// QueueSize returns the total queued task count across all stripes.
	QueueSize() int64

	// CompletedTasks returns the total completed task count across all
	// stripes.
	CompletedTasks() int64

	// StripesCompletedTasks returns the completed task count per stripe.
	StripesCompletedTasks() []int64

	// StripesActiveStatuses reports per stripe whether a task is
	// executing.
	StripesActiveStatuses() []bool

	// StripesQueueSizes returns the queued task count per stripe.
	StripesQueueSizes() []int64

	// DetectStarvation reports whether any stripe with queued tasks made
	// no progress since the previous check.
	DetectStarvation() bool
}
