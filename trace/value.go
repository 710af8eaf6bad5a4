package trace

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Value: raw argument trees as delivered by the simulator
// ---------------------------------------------------------------------------

// Value is a raw operation argument. The set of implementations is closed.
type Value interface {
	traceValue()
}

// Void is the empty argument.
type Void struct{}

// Tuple is an n-ary argument tuple.
type Tuple []Value

// Array is a homogeneous array argument.
type Array []Value

// Qubit is a single qubit handle.
type Qubit struct {
	ID int
}

// LittleEndian is an integer register stored least significant qubit first.
type LittleEndian struct {
	Qubits []Qubit
}

// CosetLittleEndian is a coset-encoded integer register.
type CosetLittleEndian struct {
	Qubits []Qubit
}

// Int is an integer argument.
type Int int64

// Controlled wraps the arguments of an operation applied with controls.
type Controlled struct {
	Inner Value
}

// Pauli is a basis-axis label.
type Pauli uint8

const (
	PauliI Pauli = iota
	PauliX
	PauliY
	PauliZ
)

var pauliNames = map[Pauli]string{
	PauliI: "PauliI",
	PauliX: "PauliX",
	PauliY: "PauliY",
	PauliZ: "PauliZ",
}

func (p Pauli) String() string {
	if s, ok := pauliNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Pauli(%d)", uint8(p))
}

// ParsePauli parses PauliI, PauliX, PauliY or PauliZ.
func ParsePauli(s string) (Pauli, bool) {
	for k, v := range pauliNames {
		if v == s {
			return k, true
		}
	}
	return 0, false
}

func (Void) traceValue()              {}
func (Tuple) traceValue()             {}
func (Array) traceValue()             {}
func (Qubit) traceValue()             {}
func (LittleEndian) traceValue()      {}
func (CosetLittleEndian) traceValue() {}
func (Int) traceValue()               {}
func (Controlled) traceValue()        {}
func (Pauli) traceValue()             {}

// Qubits builds an Array of qubit handles.
func Qubits(ids ...int) Array {
	arr := make(Array, len(ids))
	for i, id := range ids {
		arr[i] = Qubit{ID: id}
	}
	return arr
}

// Ints builds an Array of integers.
func Ints(vs ...int64) Array {
	arr := make(Array, len(vs))
	for i, v := range vs {
		arr[i] = Int(v)
	}
	return arr
}

// QubitIDs returns the identifiers of a slice of handles.
func QubitIDs(qs []Qubit) []int {
	ids := make([]int, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}

// ---------------------------------------------------------------------------
// Text rendering
// ---------------------------------------------------------------------------

// FormatValue renders v in the syntax accepted by ParseValue.
func FormatValue(v Value) string {
	var sb strings.Builder
	writeValue(&sb, v)
	return sb.String()
}

func writeValue(sb *strings.Builder, v Value) {
	switch x := v.(type) {
	case nil, Void:
		sb.WriteString("()")
	case Tuple:
		writeList(sb, "(", ")", x)
	case Array:
		writeList(sb, "[", "]", x)
	case Qubit:
		sb.WriteString("q")
		sb.WriteString(strconv.Itoa(x.ID))
	case LittleEndian:
		sb.WriteString("le")
		writeQubits(sb, x.Qubits)
	case CosetLittleEndian:
		sb.WriteString("coset")
		writeQubits(sb, x.Qubits)
	case Int:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case Controlled:
		sb.WriteString("ctl(")
		writeValue(sb, x.Inner)
		sb.WriteString(")")
	case Pauli:
		sb.WriteString(x.String())
	default:
		fmt.Fprintf(sb, "<%T>", v)
	}
}

func writeList(sb *strings.Builder, open, close string, items []Value) {
	sb.WriteString(open)
	for i, e := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeValue(sb, e)
	}
	sb.WriteString(close)
}

func writeQubits(sb *strings.Builder, qs []Qubit) {
	sb.WriteString("[")
	for i, q := range qs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("q")
		sb.WriteString(strconv.Itoa(q.ID))
	}
	sb.WriteString("]")
}
