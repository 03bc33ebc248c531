package metrics

import (
	"math"
	"sync/atomic"
)

// Long is a push metric holding an int64 counter or gauge value.
type Long struct {
	name string
	desc string
	v    int64
}

// NewLong returns a new, usable Long metric.
func NewLong(name, desc string) *Long {
	return &Long{name: name, desc: desc}
}

// Name implements Metric.
func (m *Long) Name() string { return m.name }

// Description implements Metric.
func (m *Long) Description() string { return m.desc }

// Add atomically adds delta to the current value.
func (m *Long) Add(delta int64) {
	atomic.AddInt64(&m.v, delta)
}

// Inc atomically increments the current value by one.
func (m *Long) Inc() {
	atomic.AddInt64(&m.v, 1)
}

// SetValue atomically replaces the current value.
func (m *Long) SetValue(v int64) {
	atomic.StoreInt64(&m.v, v)
}

// Value returns the current value.
func (m *Long) Value() int64 {
	return atomic.LoadInt64(&m.v)
}

// Double is a push metric holding a float64 value. Updates and reads go
// through the float bit pattern so they are atomic without a lock.
type Double struct {
	name string
	desc string
	bits uint64
}

// NewDouble returns a new, usable Double metric.
func NewDouble(name, desc string) *Double {
	return &Double{name: name, desc: desc}
}

// Name implements Metric.
func (m *Double) Name() string { return m.name }

// Description implements Metric.
func (m *Double) Description() string { return m.desc }

// SetValue atomically replaces the current value.
func (m *Double) SetValue(v float64) {
	atomic.StoreUint64(&m.bits, math.Float64bits(v))
}

// Add atomically adds delta to the current value.
func (m *Double) Add(delta float64) {
	for {
		old := atomic.LoadUint64(&m.bits)
		new := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64(&m.bits, old, new) {
			return
		}
	}
}

// Value returns the current value.
func (m *Double) Value() float64 {
	return math.Float64frombits(atomic.LoadUint64(&m.bits))
}

// Bool is a push metric holding a boolean flag.
type Bool struct {
	name string
	desc string
	v    int32
}

// NewBool returns a new, usable Bool metric.
func NewBool(name, desc string) *Bool {
	return &Bool{name: name, desc: desc}
}

// Name implements Metric.
func (m *Bool) Name() string { return m.name }

// Description implements Metric.
func (m *Bool) Description() string { return m.desc }

// SetValue atomically replaces the current value.
func (m *Bool) SetValue(v bool) {
	var i int32
	if v {
		i = 1
	}
	atomic.StoreInt32(&m.v, i)
}

// Value returns the current value.
func (m *Bool) Value() bool {
	return atomic.LoadInt32(&m.v) != 0
}

// Object is a push metric holding an arbitrary value. All values stored over
// the metric's lifetime must share one concrete type; atomic.Value enforces
// this at runtime.
type Object struct {
	name string
	desc string
	v    atomic.Value
}

// NewObject returns a new, usable Object metric.
func NewObject(name, desc string) *Object {
	return &Object{name: name, desc: desc}
}

// Name implements Metric.
func (m *Object) Name() string { return m.name }

// Description implements Metric.
func (m *Object) Description() string { return m.desc }

// SetValue atomically replaces the current value.
func (m *Object) SetValue(v interface{}) {
	m.v.Store(v)
}

// Value returns the current value, or nil if none was ever set.
func (m *Object) Value() interface{} {
	return m.v.Load()
}
