package decompile

import (
	"slices"
	"testing"
)

func TestAllocationName(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "a"},
		{1, "b"},
		{25, "z"},
		{26, "aa"},
		{27, "ab"},
		{51, "az"},
		{52, "ba"},
		{701, "zz"},
		{702, "aaa"},
	}
	for _, tc := range tests {
		if got := AllocationName(tc.n); got != tc.want {
			t.Errorf("AllocationName(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestAllocNamesAreDeterministic(t *testing.T) {
	a := NewAllocations()
	names := []string{
		a.Alloc([]int{0, 1}),
		a.Alloc([]int{2, 3}),
		a.Alloc([]int{4}),
	}
	if want := []string{"a", "b", "c"}; !slices.Equal(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}

	name, ok := a.Release([]int{3, 2})
	if !ok || name != "b" {
		t.Fatalf("Release = (%q, %v), want (\"b\", true)", name, ok)
	}
	if got := a.Alloc([]int{7, 8}); got != "b" {
		t.Errorf("Alloc after release = %q, want recycled \"b\"", got)
	}
	if got := a.Alloc([]int{9}); got != "d" {
		t.Errorf("next Alloc = %q, want \"d\"", got)
	}
	if got := a.Names(); !slices.Equal(got, []string{"a", "c", "b", "d"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestAllocExistingSetReturnsSameName(t *testing.T) {
	a := NewAllocations()
	first := a.Alloc([]int{4, 5})
	if again := a.Alloc([]int{5, 4}); again != first {
		t.Errorf("Alloc of live set = %q, want %q", again, first)
	}
	if a.Len() != 1 {
		t.Errorf("Len() = %d, want 1", a.Len())
	}
}

func TestReleaseWithoutMatch(t *testing.T) {
	a := NewAllocations()
	a.Alloc([]int{0, 1, 2})
	if name, ok := a.Release([]int{0, 1}); ok {
		t.Errorf("Release of a subset = (%q, true), want no match", name)
	}
	if a.Len() != 1 {
		t.Errorf("Len() = %d, want 1", a.Len())
	}
}

func TestAllocCopiesOffsets(t *testing.T) {
	a := NewAllocations()
	offsets := []int{3, 4}
	name := a.Alloc(offsets)
	offsets[0] = 99

	got, ok := a.Lookup(name)
	if !ok || !slices.Equal(got, []int{3, 4}) {
		t.Errorf("Lookup(%q) = %v, %v; want [3 4]", name, got, ok)
	}
}

func TestResolveSubset(t *testing.T) {
	a := NewAllocations()
	a.Alloc([]int{10, 11, 12, 13, 14})
	a.Alloc([]int{20, 21})

	tests := []struct {
		reg  Register
		want Register
		text string
	}{
		{
			Register{Offsets: []int{11, 12, 13}, Tag: TagReg},
			Register{Offsets: []int{1, 2, 3}, Tag: TagNamed, Name: "a"},
			"a[1:3]",
		},
		{
			Register{Offsets: []int{10, 11, 12, 13, 14}, Tag: TagInt},
			Register{Offsets: []int{0, 1, 2, 3, 4}, Tag: TagNamed, Name: "a", Whole: true},
			"a",
		},
		{
			Register{Offsets: []int{21, 20}, Tag: TagReg},
			Register{Offsets: []int{1, 0}, Tag: TagNamed, Name: "b"},
			"b[1:0:-1]",
		},
		{
			Register{Offsets: []int{21}, Tag: TagQubit},
			Register{Offsets: []int{1}, Tag: TagNamed, Name: "b"},
			"b[1]",
		},
		{
			Register{Offsets: []int{14, 20}, Tag: TagReg},
			Register{Offsets: []int{14, 20}, Tag: TagReg},
			"reg[14]+[20]",
		},
		{
			Register{Tag: TagReg},
			Register{Tag: TagReg},
			"reg[]",
		},
	}

	for _, tc := range tests {
		got := a.Resolve(tc.reg)
		if got.Name != tc.want.Name || got.Tag != tc.want.Tag || got.Whole != tc.want.Whole ||
			!slices.Equal(got.Offsets, tc.want.Offsets) {
			t.Errorf("Resolve(%v) = %+v, want %+v", tc.reg.Offsets, got, tc.want)
		}
		if text := a.Render(tc.reg); text != tc.text {
			t.Errorf("Render(%v) = %q, want %q", tc.reg.Offsets, text, tc.text)
		}
	}
}

func TestRenderDropsSourceTag(t *testing.T) {
	a := NewAllocations()
	a.Alloc([]int{6, 7})

	tests := []struct {
		reg  Register
		want string
	}{
		{Register{Offsets: []int{7}, Tag: TagQubit}, "a[1]"},
		{Register{Offsets: []int{6}, Tag: TagInt}, "a[0]"},
		{Register{Offsets: []int{7, 6}, Tag: TagCoset}, "a[1:0:-1]"},
		{Register{Offsets: []int{6, 7}, Tag: TagReg}, "a"},
	}
	for _, tc := range tests {
		if got := a.Render(tc.reg); got != tc.want {
			t.Errorf("Render(%s%v) = %q, want %q", tc.reg.Tag, tc.reg.Offsets, got, tc.want)
		}
	}
}

func TestResolveIsStable(t *testing.T) {
	a := NewAllocations()
	a.Alloc([]int{0, 1, 2})
	once := a.Resolve(Register{Offsets: []int{1, 2}, Tag: TagReg})
	twice := a.Resolve(once)
	if !slices.Equal(once.Offsets, twice.Offsets) || once.Name != twice.Name {
		t.Errorf("Resolve(Resolve(r)) = %+v, want %+v", twice, once)
	}
}
