package metrics

import (
	"sync"

	"github.com/VividCortex/gohistogram"
)

// Histogram is a streaming histogram metric based on VividCortex/gohistogram.
// It dynamically computes quantiles, so it's not suitable for aggregation
// across processes.
type Histogram struct {
	name string
	desc string

	mtx sync.Mutex
	h   gohistogram.Histogram
}

// NewHistogram returns a streaming histogram with the given max bucket count.
// A good default value for buckets is 50.
func NewHistogram(name string, buckets int, desc string) *Histogram {
	return &Histogram{
		name: name,
		desc: desc,
		h:    gohistogram.NewHistogram(buckets),
	}
}

// Name implements Metric.
func (m *Histogram) Name() string { return m.name }

// Description implements Metric.
func (m *Histogram) Description() string { return m.desc }

// Observe records a single observation.
func (m *Histogram) Observe(value float64) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.h.Add(value)
}

// Quantile returns the value of the quantile q, 0.0 < q < 1.0.
func (m *Histogram) Quantile(q float64) float64 {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.h.Quantile(q)
}
