package metrics_test

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/comphead/ignite/metrics"
)

func TestLong(t *testing.T) {
	m := metrics.NewLong("my_long", "")
	if want, have := "my_long", m.Name(); want != have {
		t.Errorf("Name: want %q, have %q", want, have)
	}
	m.Add(40)
	m.Inc()
	m.Inc()
	if want, have := int64(42), m.Value(); want != have {
		t.Errorf("want %d, have %d", want, have)
	}
	m.SetValue(-7)
	if want, have := int64(-7), m.Value(); want != have {
		t.Errorf("want %d, have %d", want, have)
	}
}

func TestLongConcurrentAdd(t *testing.T) {
	var (
		m           = metrics.NewLong("concurrent_long", "")
		concurrency = 50
		operations  = 1000
		wg          sync.WaitGroup
	)
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < operations; j++ {
				m.Inc()
			}
		}()
	}
	wg.Wait()
	if want, have := int64(concurrency*operations), m.Value(); want != have {
		t.Errorf("want %d, have %d", want, have)
	}
}

func TestDouble(t *testing.T) {
	m := metrics.NewDouble("my_double", "")
	m.SetValue(3.5)
	if want, have := 3.5, m.Value(); want != have {
		t.Errorf("want %f, have %f", want, have)
	}
	m.Add(0.25)
	if want, have := 3.75, m.Value(); want != have {
		t.Errorf("want %f, have %f", want, have)
	}
	m.SetValue(math.Inf(1))
	if !math.IsInf(m.Value(), 1) {
		t.Errorf("want +Inf, have %f", m.Value())
	}
}

func TestBool(t *testing.T) {
	m := metrics.NewBool("my_bool", "")
	if want, have := false, m.Value(); want != have {
		t.Errorf("want %v, have %v", want, have)
	}
	m.SetValue(true)
	if want, have := true, m.Value(); want != have {
		t.Errorf("want %v, have %v", want, have)
	}
}

func TestObject(t *testing.T) {
	m := metrics.NewObject("my_object", "")
	if m.Value() != nil {
		t.Errorf("want nil, have %v", m.Value())
	}
	m.SetValue("first")
	m.SetValue("second")
	if want, have := "second", m.Value(); want != have {
		t.Errorf("want %q, have %v", want, have)
	}
}

func TestHistogramQuantile(t *testing.T) {
	m := metrics.NewHistogram("my_histogram", 50, "")
	for i := 0; i < 10000; i++ {
		m.Observe(float64(i % 100))
	}
	if q := m.Quantile(0.50); q < 40 || q > 60 {
		t.Errorf("p50: want ~50, have %f", q)
	}
}

func TestHistogramConcurrentObserve(t *testing.T) {
	var (
		m           = metrics.NewHistogram("dont_panic", 50, "")
		concurrency = 100
		operations  = 1000
		wg          sync.WaitGroup
	)
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < operations; j++ {
				m.Observe(rand.Float64())
			}
		}()
	}
	wg.Wait()
}

func TestMetricName(t *testing.T) {
	if want, have := "threadPools.GridExecutionExecutor.ActiveCount",
		metrics.MetricName("threadPools", "GridExecutionExecutor", "ActiveCount"); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
	if want, have := "sys.memory.heap", metrics.MetricName("", "sys", "memory", "heap"); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
	segs := metrics.SplitName("sys.memory.heap")
	if want, have := 3, len(segs); want != have {
		t.Fatalf("want %d segments, have %d", want, have)
	}
	if want, have := "memory", segs[1]; want != have {
		t.Errorf("want %q, have %q", want, have)
	}
}
