package decompile

import (
	"bytes"
	"io"
	"strings"

	"github.com/chazu/qtrace/trace"
)

// Printer defaults.
const (
	DefaultMaxDepth = 5
	DefaultIndent   = 4
)

// DefaultTerminal lists operations whose callees are never printed.
var DefaultTerminal = []string{
	"MeasureInteger", "XorEqualConst", "PlusEqual", "MResetX",
	"XorEqual", "ResetAll", "H", "MResetZ", "R1Frac",
}

// Printer is a trace.Listener that writes an indented listing of the
// operations it is told about.
//
// An instruction is printed when its nesting depth is below MaxDepth and it
// is not inside a terminal operation. Terminal operations themselves are
// printed; everything beneath them is not.
type Printer struct {
	// MaxDepth is the first nesting depth that is no longer printed.
	MaxDepth int
	// Indent is the number of spaces per nesting level.
	Indent int
	// Terminal holds the plain names of terminal operations.
	Terminal map[string]bool

	out           io.Writer
	dec           *Decompiler
	depth         int
	terminalDepth int
	printed       int
}

// NewPrinter creates a printer writing to out with default limits and
// terminal set.
func NewPrinter(out io.Writer, dec *Decompiler) *Printer {
	return &Printer{
		MaxDepth: DefaultMaxDepth,
		Indent:   DefaultIndent,
		Terminal: TerminalSet(DefaultTerminal...),
		out:      out,
		dec:      dec,
	}
}

// TerminalSet builds a terminal-name set.
func TerminalSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Decompiler returns the printer's decompiler.
func (p *Printer) Decompiler() *Decompiler {
	return p.dec
}

// Depth returns the current nesting depth.
func (p *Printer) Depth() int {
	return p.depth
}

// Printed returns how many instructions have been written.
func (p *Printer) Printed() int {
	return p.printed
}

// OnEnter prints the instruction if it is visible and descends one level.
// The depth counters advance even when decompiling fails, so the exit
// event that follows still balances.
func (p *Printer) OnEnter(op trace.Operation, arg trace.Value) error {
	var err error
	if p.depth < p.MaxDepth && p.terminalDepth == 0 {
		err = p.print(op, arg)
	}
	p.depth++
	if p.Terminal[op.Name] {
		p.terminalDepth++
	}
	return err
}

// OnExit ascends one level.
func (p *Printer) OnExit(op trace.Operation, _ trace.Value) error {
	p.depth--
	if p.Terminal[op.Name] {
		p.terminalDepth--
	}
	return nil
}

func (p *Printer) print(op trace.Operation, arg trace.Value) error {
	text, err := p.dec.Describe(op, arg)
	if err != nil {
		return err
	}

	pad := strings.Repeat(" ", p.Indent*p.depth)
	var buf bytes.Buffer
	for _, line := range strings.Split(text, "\n") {
		buf.WriteString(pad)
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if _, err := p.out.Write(buf.Bytes()); err != nil {
		return err
	}
	p.printed++
	return nil
}

var _ trace.Listener = (*Printer)(nil)
