package decompile

import (
	"strings"
)

// allocation is one live named qubit group.
type allocation struct {
	name    string
	offsets []int
}

// Allocations tracks live named qubit groups.
//
// Names are short lowercase identifiers handed out in order (a, b, ..., z,
// aa, ab, ...). A released name becomes available again, and Alloc always
// picks the first name not currently live, so the table stays compact.
type Allocations struct {
	entries []allocation
}

// NewAllocations creates an empty allocation table.
func NewAllocations() *Allocations {
	return &Allocations{}
}

// AllocationName returns the n-th generated name (0 -> "a", 25 -> "z",
// 26 -> "aa").
func AllocationName(n int) string {
	var buf []byte
	for n++; n > 0; n = (n - 1) / 26 {
		buf = append(buf, byte('a'+(n-1)%26))
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// Alloc names the given offsets and returns the name. Allocating a set that
// is already live returns the existing name.
func (a *Allocations) Alloc(offsets []int) string {
	if i := a.indexOfSet(offsets); i >= 0 {
		return a.entries[i].name
	}
	for n := 0; ; n++ {
		name := AllocationName(n)
		if a.indexOfName(name) < 0 {
			a.entries = append(a.entries, allocation{
				name:    name,
				offsets: append([]int(nil), offsets...),
			})
			return name
		}
	}
}

// Release drops the allocation whose offsets are set-equal to the given
// ones. It reports the freed name, or false if nothing matched.
func (a *Allocations) Release(offsets []int) (string, bool) {
	i := a.indexOfSet(offsets)
	if i < 0 {
		return "", false
	}
	name := a.entries[i].name
	a.entries = append(a.entries[:i], a.entries[i+1:]...)
	return name, true
}

// Lookup returns the offsets held by a live name.
func (a *Allocations) Lookup(name string) ([]int, bool) {
	i := a.indexOfName(name)
	if i < 0 {
		return nil, false
	}
	return append([]int(nil), a.entries[i].offsets...), true
}

// Len returns the number of live allocations.
func (a *Allocations) Len() int {
	return len(a.entries)
}

// Names returns the live names in allocation order.
func (a *Allocations) Names() []string {
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.name
	}
	return names
}

// Resolve rewrites a register in terms of the first live allocation that
// contains all of its offsets. The result is tagged TagNamed and carries
// the allocation's name and offsets relative to it; Whole is set when those
// cover the allocation exactly in order. Registers that are empty, already
// named, or not contained in any allocation are returned unchanged.
func (a *Allocations) Resolve(reg Register) Register {
	if reg.Name != "" || len(reg.Offsets) == 0 {
		return reg
	}
	for _, e := range a.entries {
		local, ok := positions(e.offsets, reg.Offsets)
		if !ok {
			continue
		}
		whole := len(local) == len(e.offsets)
		for i, p := range local {
			if p != i {
				whole = false
				break
			}
		}
		return Register{Offsets: local, Tag: TagNamed, Name: e.name, Whole: whole}
	}
	return reg
}

// Render resolves a register and formats it: a whole allocation renders as
// its bare name, anything else as tag, name and compressed offsets, e.g.
// "a", "reg[0:1]", "a[1]".
func (a *Allocations) Render(reg Register) string {
	r := a.Resolve(reg)
	if r.Whole {
		return r.Name
	}
	var sb strings.Builder
	sb.WriteString(r.Tag)
	sb.WriteString(r.Name)
	sb.WriteString(DescribeRange(r.Offsets))
	return sb.String()
}

func (a *Allocations) indexOfName(name string) int {
	for i, e := range a.entries {
		if e.name == name {
			return i
		}
	}
	return -1
}

func (a *Allocations) indexOfSet(offsets []int) int {
	for i, e := range a.entries {
		if sameSet(e.offsets, offsets) {
			return i
		}
	}
	return -1
}

// positions maps each of sub's offsets to its index within set. It fails
// if any offset is missing.
func positions(set, sub []int) ([]int, bool) {
	index := make(map[int]int, len(set))
	for i, off := range set {
		if _, seen := index[off]; !seen {
			index[off] = i
		}
	}
	local := make([]int, len(sub))
	for i, off := range sub {
		p, ok := index[off]
		if !ok {
			return nil, false
		}
		local[i] = p
	}
	return local, true
}

func sameSet(x, y []int) bool {
	xs := make(map[int]struct{}, len(x))
	for _, v := range x {
		xs[v] = struct{}{}
	}
	ys := make(map[int]struct{}, len(y))
	for _, v := range y {
		if _, ok := xs[v]; !ok {
			return false
		}
		ys[v] = struct{}{}
	}
	return len(xs) == len(ys)
}
