// Package profile counts primitive operations in an operation trace.
package profile

import (
	"fmt"
	"maps"
	"slices"

	"github.com/chazu/qtrace/trace"
)

// DefaultAliases maps applied names of primitive operations to the bucket
// they are counted under.
func DefaultAliases() map[string]string {
	return map[string]string{
		"InitAnd": "CCZ",
		"CCZ":     "CCZ",
		"CCZ^-1":  "CCZ",
		"CCX":     "CCZ",
		"CCX^-1":  "CCZ",
		"R1Frac":  "R",

		"InitAnd^-1":    "C",
		"XorEqualConst": "C",
		"CNOT^-1":       "C",
		"H":             "C",
		"CNOT":          "C",
		"CX":            "C",
		"X":             "C",
		"Measure":       "C",
		"Reset":         "C",
	}
}

// Profiler is a trace.Listener that counts each outermost call of a
// primitive operation exactly once.
//
// An operation is primitive when its applied name is a key of the alias
// table. Everything a primitive calls internally is ignored, including
// further primitives. Top-level calls that finish without ever reaching a
// primitive are recorded separately as uncounted.
type Profiler struct {
	aliases map[string]string

	collecting bool
	suppressed int      // depth inside the current primitive
	stack      []string // applied names of open calls

	counts    map[string]int
	uncounted map[string]int
}

// NewProfiler creates a profiler over the given alias table. A nil table
// uses DefaultAliases.
func NewProfiler(aliases map[string]string) *Profiler {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Profiler{
		aliases:    maps.Clone(aliases),
		collecting: true,
		counts:     make(map[string]int),
		uncounted:  make(map[string]int),
	}
}

// IsPrimitive reports whether an applied name is counted.
func (p *Profiler) IsPrimitive(applied string) bool {
	_, ok := p.aliases[applied]
	return ok
}

// OnEnter opens a call.
func (p *Profiler) OnEnter(op trace.Operation, arg trace.Value) error {
	name, err := op.AppliedName(arg)
	if err != nil {
		// Keep the frame, as a non-primitive, so the matching exit still
		// pops and the suppression depth stays balanced.
		p.push(op.Name, false)
		return fmt.Errorf("profile %s: %w", op, err)
	}
	p.push(name, p.IsPrimitive(name))
	return nil
}

func (p *Profiler) push(name string, primitive bool) {
	p.stack = append(p.stack, name)
	if p.suppressed == 0 {
		p.collecting = true
	}
	if p.suppressed > 0 || primitive {
		p.suppressed++
	}
}

// OnExit closes the innermost open call.
func (p *Profiler) OnExit(op trace.Operation, _ trace.Value) error {
	if len(p.stack) == 0 {
		return fmt.Errorf("profile %s: %w: exit without enter", op, trace.ErrUnbalanced)
	}
	name := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	if p.suppressed == 0 && p.collecting {
		p.uncounted[name]++
		return nil
	}
	if p.suppressed > 0 {
		p.suppressed--
	}
	if p.suppressed == 0 {
		if p.collecting {
			key := name
			if alias, ok := p.aliases[name]; ok {
				key = alias
			}
			p.counts[key]++
		}
		p.collecting = false
	}
	return nil
}

// Counts returns a copy of the primitive counts.
func (p *Profiler) Counts() map[string]int {
	return maps.Clone(p.counts)
}

// Uncounted returns the sorted applied names of top-level calls that never
// reached a primitive.
func (p *Profiler) Uncounted() []string {
	return slices.Sorted(maps.Keys(p.uncounted))
}

// Depth returns the number of open calls.
func (p *Profiler) Depth() int {
	return len(p.stack)
}

// Report returns a sorted snapshot of the counts.
func (p *Profiler) Report() *Report {
	return NewReport(p.counts, p.Uncounted())
}

// Reset clears all counts and call state, keeping the alias table.
func (p *Profiler) Reset() {
	p.collecting = true
	p.suppressed = 0
	p.stack = p.stack[:0]
	clear(p.counts)
	clear(p.uncounted)
}

var _ trace.Listener = (*Profiler)(nil)
