package metrics

// Pull metrics bind a supplier that is invoked synchronously on every Value
// call. There is no caching: each read observes the live source. A supplier
// failure (panic) propagates to the reader; suppression, if any, belongs to
// the caller.

// LongFunc is a pull metric producing an int64.
type LongFunc struct {
	name string
	desc string
	fn   func() int64
}

// NewLongFunc returns a Long pull metric bound to fn.
func NewLongFunc(name string, fn func() int64, desc string) *LongFunc {
	return &LongFunc{name: name, desc: desc, fn: fn}
}

// Name implements Metric.
func (m *LongFunc) Name() string { return m.name }

// Description implements Metric.
func (m *LongFunc) Description() string { return m.desc }

// Value invokes the bound supplier and returns its result.
func (m *LongFunc) Value() int64 { return m.fn() }

// DoubleFunc is a pull metric producing a float64.
type DoubleFunc struct {
	name string
	desc string
	fn   func() float64
}

// NewDoubleFunc returns a Double pull metric bound to fn.
func NewDoubleFunc(name string, fn func() float64, desc string) *DoubleFunc {
	return &DoubleFunc{name: name, desc: desc, fn: fn}
}

// Name implements Metric.
func (m *DoubleFunc) Name() string { return m.name }

// Description implements Metric.
func (m *DoubleFunc) Description() string { return m.desc }

// Value invokes the bound supplier and returns its result.
func (m *DoubleFunc) Value() float64 { return m.fn() }

// BoolFunc is a pull metric producing a bool.
type BoolFunc struct {
	name string
	desc string
	fn   func() bool
}

// NewBoolFunc returns a Bool pull metric bound to fn.
func NewBoolFunc(name string, fn func() bool, desc string) *BoolFunc {
	return &BoolFunc{name: name, desc: desc, fn: fn}
}

// Name implements Metric.
func (m *BoolFunc) Name() string { return m.name }

// Description implements Metric.
func (m *BoolFunc) Description() string { return m.desc }

// Value invokes the bound supplier and returns its result.
func (m *BoolFunc) Value() bool { return m.fn() }

// ObjectFunc is a pull metric producing an arbitrary value, typically an
// identifying string or a per-stripe array.
type ObjectFunc struct {
	name string
	desc string
	fn   func() interface{}
}

// NewObjectFunc returns an Object pull metric bound to fn.
func NewObjectFunc(name string, fn func() interface{}, desc string) *ObjectFunc {
	return &ObjectFunc{name: name, desc: desc, fn: fn}
}

// Name implements Metric.
func (m *ObjectFunc) Name() string { return m.name }

// Description implements Metric.
func (m *ObjectFunc) Description() string { return m.desc }

// Value invokes the bound supplier and returns its result.
func (m *ObjectFunc) Value() interface{} { return m.fn() }
