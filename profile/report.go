package profile

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// Entry is one bucket of a Report.
type Entry struct {
	Key   string
	Count int
}

// Report is a sorted view of primitive counts.
type Report struct {
	Entries   []Entry
	Total     int
	Uncounted []string
}

// NewReport builds a report from a count map. Entries are sorted by key.
func NewReport(counts map[string]int, uncounted []string) *Report {
	r := &Report{Uncounted: slices.Clone(uncounted)}
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		r.Entries = append(r.Entries, Entry{Key: k, Count: counts[k]})
		r.Total += counts[k]
	}
	return r
}

// Get returns the count for key, or 0.
func (r *Report) Get(key string) int {
	for _, e := range r.Entries {
		if e.Key == key {
			return e.Count
		}
	}
	return 0
}

// Counts returns the report as a map.
func (r *Report) Counts() map[string]int {
	m := make(map[string]int, len(r.Entries))
	for _, e := range r.Entries {
		m[e.Key] = e.Count
	}
	return m
}

// String formats the report one "key: count" line per entry.
func (r *Report) String() string {
	var sb strings.Builder
	for _, e := range r.Entries {
		fmt.Fprintf(&sb, "%s: %d\n", e.Key, e.Count)
	}
	return sb.String()
}

// WriteTo writes the formatted report to w.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}
