package executor_test

import (
	"testing"
	"time"

	"github.com/go-kit/log"

	"github.com/comphead/ignite/executor"
	"github.com/comphead/ignite/metrics"
)

// opaquePool implements only the minimal Pool surface.
type opaquePool struct {
	shutdown   bool
	terminated bool
}

func (p *opaquePool) IsShutdown() bool   { return p.shutdown }
func (p *opaquePool) IsTerminated() bool { return p.terminated }

// fakeStriped reports fixed per-stripe figures.
type fakeStriped struct {
	queueSizes []int64
	completed  []int64
	active     []bool
	starved    bool
}

func (f *fakeStriped) IsShutdown() bool   { return false }
func (f *fakeStriped) IsTerminated() bool { return false }
func (f *fakeStriped) Stripes() int64     { return int64(len(f.queueSizes)) }
func (f *fakeStriped) ActiveStripesCount() int64 {
	var n int64
	for _, a := range f.active {
		if a {
			n++
		}
	}
	return n
}
func (f *fakeStriped) QueueSize() int64 {
	var n int64
	for _, q := range f.queueSizes {
		n += q
	}
	return n
}
func (f *fakeStriped) CompletedTasks() int64 {
	var n int64
	for _, c := range f.completed {
		n += c
	}
	return n
}
func (f *fakeStriped) StripesCompletedTasks() []int64 { return f.completed }
func (f *fakeStriped) StripesActiveStatuses() []bool  { return f.active }
func (f *fakeStriped) StripesQueueSizes() []int64     { return f.queueSizes }
func (f *fakeStriped) DetectStarvation() bool         { return f.starved }

func longValue(t *testing.T, reg *metrics.Registry, name string) int64 {
	t.Helper()
	m, err := reg.LongFunc(name, nil, "")
	if err != nil {
		// Fallback metrics register as push cells.
		l, lerr := reg.Long(name, "")
		if lerr != nil {
			t.Fatalf("metric %q: %v / %v", name, err, lerr)
		}
		return l.Value()
	}
	return m.Value()
}

func TestMonitorIntrospectablePool(t *testing.T) {
	mgr := metrics.NewManager(log.NewNopLogger())
	p := executor.NewWorkerPool(2, 4, 30*time.Second, 8, nil, nil)

	if err := executor.Monitor(mgr, "GridExecutionExecutor", p); err != nil {
		t.Fatal(err)
	}
	reg := mgr.Registry(metrics.MetricName(executor.ThreadPools, "GridExecutionExecutor"))

	if want, have := int64(2), longValue(t, reg, "CorePoolSize"); want != have {
		t.Errorf("CorePoolSize: want %d, have %d", want, have)
	}
	if want, have := int64(4), longValue(t, reg, "MaximumPoolSize"); want != have {
		t.Errorf("MaximumPoolSize: want %d, have %d", want, have)
	}
	if want, have := int64(30000), longValue(t, reg, "KeepAliveTime"); want != have {
		t.Errorf("KeepAliveTime: want %d, have %d", want, have)
	}

	// Live pull semantics: completing work moves the metric.
	done := make(chan struct{})
	if err := p.Execute(func() { close(done) }); err != nil {
		t.Fatal(err)
	}
	<-done
	deadline := time.Now().Add(5 * time.Second)
	for longValue(t, reg, "CompletedTaskCount") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("CompletedTaskCount never moved")
		}
		time.Sleep(time.Millisecond)
	}

	rej, err := reg.ObjectFunc("RejectedExecutionHandlerClass", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if want, have := "executor.AbortPolicy", rej.Value(); want != have {
		t.Errorf("RejectedExecutionHandlerClass: want %q, have %v", want, have)
	}
}

func TestMonitorOpaquePoolFallback(t *testing.T) {
	mgr := metrics.NewManager(log.NewNopLogger())
	pool := &opaquePool{shutdown: true, terminated: false}

	if err := executor.Monitor(mgr, "Opaque", pool); err != nil {
		t.Fatal(err)
	}
	reg := mgr.Registry(metrics.MetricName(executor.ThreadPools, "Opaque"))

	for _, name := range []string{"ActiveCount", "CorePoolSize", "QueueSize", "Terminating"} {
		if want, have := int64(0), longValue(t, reg, name); want != have {
			t.Errorf("%s: want %d, have %d", name, want, have)
		}
	}

	// Lifecycle flags stay live even for opaque pools.
	shutdown, err := reg.BoolFunc("Shutdown", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if want, have := true, shutdown.Value(); want != have {
		t.Errorf("Shutdown: want %v, have %v", want, have)
	}
	terminated, err := reg.BoolFunc("Terminated", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if want, have := false, terminated.Value(); want != have {
		t.Errorf("Terminated: want %v, have %v", want, have)
	}

	rej, err := reg.Object("RejectedExecutionHandlerClass", "")
	if err != nil {
		t.Fatal(err)
	}
	if want, have := "", rej.Value(); want != have {
		t.Errorf("RejectedExecutionHandlerClass: want %q, have %v", want, have)
	}
	tf, err := reg.Object("ThreadFactoryClass", "")
	if err != nil {
		t.Fatal(err)
	}
	if want, have := "", tf.Value(); want != have {
		t.Errorf("ThreadFactoryClass: want %q, have %v", want, have)
	}
}

func TestMonitorStripedAggregates(t *testing.T) {
	mgr := metrics.NewManager(log.NewNopLogger())
	svc := &fakeStriped{
		queueSizes: []int64{1, 2, 3, 4},
		completed:  []int64{10, 20, 30, 40},
		active:     []bool{true, false, true, false},
	}

	if err := executor.MonitorStriped(mgr, svc); err != nil {
		t.Fatal(err)
	}
	reg := mgr.Registry(metrics.MetricName(executor.ThreadPools, "StripedExecutor"))

	if want, have := int64(10), longValue(t, reg, "TotalQueueSize"); want != have {
		t.Errorf("TotalQueueSize: want %d, have %d", want, have)
	}
	if want, have := int64(100), longValue(t, reg, "TotalCompletedTasksCount"); want != have {
		t.Errorf("TotalCompletedTasksCount: want %d, have %d", want, have)
	}
	if want, have := int64(4), longValue(t, reg, "StripesCount"); want != have {
		t.Errorf("StripesCount: want %d, have %d", want, have)
	}
	if want, have := int64(2), longValue(t, reg, "ActiveCount"); want != have {
		t.Errorf("ActiveCount: want %d, have %d", want, have)
	}

	sizes, err := reg.ObjectFunc("StripesQueueSizes", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	have, ok := sizes.Value().([]int64)
	if !ok {
		t.Fatalf("StripesQueueSizes: want []int64, have %T", sizes.Value())
	}
	for i, want := range []int64{1, 2, 3, 4} {
		if want != have[i] {
			t.Errorf("stripe %d: want %d, have %d", i, want, have[i])
		}
	}

	starve, err := reg.BoolFunc("DetectStarvation", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if starve.Value() {
		t.Error("want no starvation")
	}
	svc.starved = true
	if !starve.Value() {
		t.Error("want starvation after flag flips")
	}
}
