package decompile

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/qtrace/trace"
)

// ErrControlShape reports a controlled operation whose normalized argument
// is not empty and not a (controls, target) pair.
var ErrControlShape = errors.New("controlled argument must be () or (controls, target)")

// Instruction is one decompiled operation call.
type Instruction struct {
	Name     string
	Adjoint  bool
	Controls Register // no offsets when uncontrolled
	Args     []Value
}

// Decompiler turns operation calls into pseudocode lines. It owns the
// allocation table and remembers the last lookup table it emitted.
type Decompiler struct {
	Conventions Conventions

	allocs    *Allocations
	lastTable Table
	log       commonlog.Logger
}

// NewDecompiler creates a decompiler with an empty allocation table.
func NewDecompiler(conv Conventions) *Decompiler {
	return &Decompiler{
		Conventions: conv,
		allocs:      NewAllocations(),
		log:         commonlog.GetLogger("qtrace.decompile"),
	}
}

// Allocations returns the decompiler's live allocation table.
func (d *Decompiler) Allocations() *Allocations {
	return d.allocs
}

// SetLogger replaces the logger used for allocation diagnostics.
func (d *Decompiler) SetLogger(log commonlog.Logger) {
	d.log = log
}

// Decompile normalizes an argument and splits off the control register of
// a controlled operation.
func (d *Decompiler) Decompile(op trace.Operation, arg trace.Value) (Instruction, error) {
	v, err := Normalize(arg)
	if err != nil {
		return Instruction{}, fmt.Errorf("decompile %s: %w", op, err)
	}

	ins := Instruction{Name: op.Name, Adjoint: op.IsAdjoint()}

	if op.IsControlled() {
		seq, ok := v.(Sequence)
		switch {
		case ok && len(seq) == 0:
			v = Sequence{}
		case ok && len(seq) == 2:
			ctl, ok := seq[0].(Register)
			if !ok {
				return Instruction{}, fmt.Errorf("decompile %s: %w: controls are %s", op, ErrControlShape, d.render(seq[0]))
			}
			ins.Controls = ctl
			v = seq[1]
		default:
			return Instruction{}, fmt.Errorf("decompile %s: %w: got %s", op, ErrControlShape, d.render(v))
		}
	}

	if seq, ok := v.(Sequence); ok {
		ins.Args = []Value(seq)
	} else {
		ins.Args = []Value{v}
	}
	return ins, nil
}

// Describe decompiles an operation call and renders it, updating the
// allocation table as a side effect. The result may span several lines:
// an allocation preamble ("a := [0:2]"), a table preamble ("tab = [..]")
// and the instruction itself.
func (d *Decompiler) Describe(op trace.Operation, arg trace.Value) (string, error) {
	ins, err := d.Decompile(op, arg)
	if err != nil {
		return "", err
	}

	var lines []string
	args := slices.Clone(ins.Args)

	if target, ok := firstRegister(args); ok && !ins.Adjoint && d.Conventions.Allocates(ins.Name) {
		name := d.allocs.Alloc(target.Offsets)
		d.log.Debug("allocate", "name", name, "op", ins.Name, "offsets", target.Offsets)
		lines = append(lines, name+" := "+DescribeRange(target.Offsets))
	}

	for i, a := range args {
		tab, ok := asTable(a)
		if !ok {
			continue
		}
		args[i] = tab
		if !slices.Equal(tab, d.lastTable) {
			d.lastTable = tab
			lines = append(lines, "tab = "+formatTable(tab))
		}
		break
	}

	var sb strings.Builder
	if ins.Controls.Len() > 0 {
		sb.WriteString("if ")
		sb.WriteString(d.allocs.Render(ins.Controls))
		sb.WriteString(" then ")
	}
	if ins.Adjoint {
		sb.WriteString("undo ")
	}
	sb.WriteString(ins.Name)
	sb.WriteByte('(')
	d.renderList(&sb, args)
	sb.WriteByte(')')
	lines = append(lines, sb.String())

	if target, ok := firstRegister(args); ok && !ins.Adjoint && d.Conventions.Releases(ins.Name) {
		if name, ok := d.allocs.Release(target.Offsets); ok {
			d.log.Debug("release", "name", name, "op", ins.Name)
		}
	}

	return strings.Join(lines, "\n"), nil
}

func firstRegister(args []Value) (Register, bool) {
	if len(args) == 0 {
		return Register{}, false
	}
	reg, ok := args[0].(Register)
	return reg, ok
}

// asTable recognises a non-empty sequence made only of integers.
func asTable(v Value) (Table, bool) {
	seq, ok := v.(Sequence)
	if !ok || len(seq) == 0 {
		return nil, false
	}
	tab := make(Table, len(seq))
	for i, e := range seq {
		n, ok := e.(Int)
		if !ok {
			return nil, false
		}
		tab[i] = int64(n)
	}
	return tab, true
}

func formatTable(tab Table) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, n := range tab {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatInt(n, 10))
	}
	sb.WriteByte(']')
	return sb.String()
}

func (d *Decompiler) render(v Value) string {
	var sb strings.Builder
	d.renderValue(&sb, v)
	return sb.String()
}

func (d *Decompiler) renderValue(sb *strings.Builder, v Value) {
	switch x := v.(type) {
	case Register:
		sb.WriteString(d.allocs.Render(x))
	case Table:
		sb.WriteString("tab")
	case Sequence:
		sb.WriteByte('[')
		d.renderList(sb, x)
		sb.WriteByte(']')
	case Int:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case Label:
		sb.WriteString(string(x))
	}
}

func (d *Decompiler) renderList(sb *strings.Builder, vs []Value) {
	for i, v := range vs {
		if i > 0 {
			sb.WriteString(", ")
		}
		d.renderValue(sb, v)
	}
}
