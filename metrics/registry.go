package metrics

import (
	"fmt"
	"sync"
)

// Registry is a named group of metrics keyed by local name. Registration is
// get-or-create: concurrent requests for the same name converge on a single
// metric instance. Requesting a name that already exists with a different
// kind is a configuration error and is returned to the caller.
//
// Registries are owned by a Manager and obtained through Manager.Registry.
type Registry struct {
	name string

	mtx     sync.RWMutex
	metrics map[string]Metric
}

func newRegistry(name string) *Registry {
	return &Registry{
		name:    name,
		metrics: make(map[string]Metric),
	}
}

// Name returns the group name.
func (r *Registry) Name() string { return r.name }

// getOrCreate returns the metric registered under name, creating it with
// create when absent. Creation happens at most once per name.
func (r *Registry) getOrCreate(name string, create func(fullName string) Metric) Metric {
	r.mtx.RLock()
	m, ok := r.metrics[name]
	r.mtx.RUnlock()
	if ok {
		return m
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()
	if m, ok := r.metrics[name]; ok {
		return m
	}
	m = create(MetricName(r.name, name))
	r.metrics[name] = m
	return m
}

func kindError(r *Registry, name string, want string, have Metric) error {
	return fmt.Errorf("metrics: %q already registered in group %q as %T, not %s",
		name, r.name, have, want)
}

// Long returns the int64 push metric registered under name, creating it when
// absent.
func (r *Registry) Long(name, desc string) (*Long, error) {
	m := r.getOrCreate(name, func(full string) Metric { return NewLong(full, desc) })
	l, ok := m.(*Long)
	if !ok {
		return nil, kindError(r, name, "a long metric", m)
	}
	return l, nil
}

// Double returns the float64 push metric registered under name, creating it
// when absent.
func (r *Registry) Double(name, desc string) (*Double, error) {
	m := r.getOrCreate(name, func(full string) Metric { return NewDouble(full, desc) })
	d, ok := m.(*Double)
	if !ok {
		return nil, kindError(r, name, "a double metric", m)
	}
	return d, nil
}

// Bool returns the boolean push metric registered under name, creating it
// when absent.
func (r *Registry) Bool(name, desc string) (*Bool, error) {
	m := r.getOrCreate(name, func(full string) Metric { return NewBool(full, desc) })
	b, ok := m.(*Bool)
	if !ok {
		return nil, kindError(r, name, "a bool metric", m)
	}
	return b, nil
}

// Object returns the arbitrary-valued push metric registered under name,
// creating it when absent.
func (r *Registry) Object(name, desc string) (*Object, error) {
	m := r.getOrCreate(name, func(full string) Metric { return NewObject(full, desc) })
	o, ok := m.(*Object)
	if !ok {
		return nil, kindError(r, name, "an object metric", m)
	}
	return o, nil
}

// Histogram returns the streaming histogram registered under name, creating
// it with the given bucket count when absent.
func (r *Registry) Histogram(name string, buckets int, desc string) (*Histogram, error) {
	m := r.getOrCreate(name, func(full string) Metric { return NewHistogram(full, buckets, desc) })
	h, ok := m.(*Histogram)
	if !ok {
		return nil, kindError(r, name, "a histogram metric", m)
	}
	return h, nil
}

// LongFunc registers a pull metric bound to fn under name. If name is already
// registered as a long pull metric the existing metric is returned and fn is
// discarded.
func (r *Registry) LongFunc(name string, fn func() int64, desc string) (*LongFunc, error) {
	m := r.getOrCreate(name, func(full string) Metric { return NewLongFunc(full, fn, desc) })
	f, ok := m.(*LongFunc)
	if !ok {
		return nil, kindError(r, name, "a long pull metric", m)
	}
	return f, nil
}

// DoubleFunc registers a pull metric bound to fn under name.
func (r *Registry) DoubleFunc(name string, fn func() float64, desc string) (*DoubleFunc, error) {
	m := r.getOrCreate(name, func(full string) Metric { return NewDoubleFunc(full, fn, desc) })
	f, ok := m.(*DoubleFunc)
	if !ok {
		return nil, kindError(r, name, "a double pull metric", m)
	}
	return f, nil
}

// BoolFunc registers a pull metric bound to fn under name.
func (r *Registry) BoolFunc(name string, fn func() bool, desc string) (*BoolFunc, error) {
	m := r.getOrCreate(name, func(full string) Metric { return NewBoolFunc(full, fn, desc) })
	f, ok := m.(*BoolFunc)
	if !ok {
		return nil, kindError(r, name, "a bool pull metric", m)
	}
	return f, nil
}

// ObjectFunc registers a pull metric bound to fn under name.
func (r *Registry) ObjectFunc(name string, fn func() interface{}, desc string) (*ObjectFunc, error) {
	m := r.getOrCreate(name, func(full string) Metric { return NewObjectFunc(full, fn, desc) })
	f, ok := m.(*ObjectFunc)
	if !ok {
		return nil, kindError(r, name, "an object pull metric", m)
	}
	return f, nil
}

// Remove deletes the metric registered under name. References already held
// by callers stay readable and writable; they are simply no longer reachable
// through iteration.
func (r *Registry) Remove(name string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	delete(r.metrics, name)
}

// Walk calls fn for every registered metric. It iterates a snapshot, so it
// is safe against concurrent registration and removal.
func (r *Registry) Walk(fn func(Metric)) {
	for _, m := range r.Metrics() {
		fn(m)
	}
}

// Metrics returns a snapshot of the registered metrics.
func (r *Registry) Metrics() []Metric {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	ms := make([]Metric, 0, len(r.metrics))
	for _, m := range r.metrics {
		ms = append(ms, m)
	}
	return ms
}
