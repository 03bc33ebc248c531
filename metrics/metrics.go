// Package metrics provides the process-wide metric registry: named groups of
// typed metric cells, created on first use and safe for concurrent use.
// Subsystems publish values either by pushing into atomic cells or by
// registering pull suppliers that are invoked on every read. Exporters drain
// the registry through the read-only Manager surface on their own schedule.
package metrics

import "strings"

// Separator joins name segments into fully qualified metric names.
const Separator = "."

// Metric is a single named observable value with a fixed kind. The kind is
// chosen at registration time and never changes for the lifetime of the
// metric.
type Metric interface {
	// Name returns the fully qualified metric name.
	Name() string

	// Description returns the human-readable description. May be empty.
	Description() string
}

// MetricName builds a fully qualified name from ordered segments. Empty
// segments are dropped so callers can pass optional prefixes directly.
func MetricName(segments ...string) string {
	parts := segments[:0:0]
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, Separator)
}

// SplitName splits a fully qualified name back into its segments. It is the
// inverse of MetricName and is intended for exporters that reconstruct
// hierarchical paths.
func SplitName(name string) []string {
	return strings.Split(name, Separator)
}
