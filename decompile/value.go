package decompile

// Value is a canonical argument: Int, Label, Register, Sequence or Table.
type Value interface {
	canonical()
}

// Int is an integer scalar.
type Int int64

// Label is a discrete basis-axis tag such as PauliX.
type Label string

// Register tags.
const (
	TagReg   = "reg"
	TagQubit = "qubit"
	TagInt   = "int"
	TagCoset = "coset"

	// TagNamed marks a register resolved against an allocation; its
	// offsets are local to that allocation.
	TagNamed = ""
)

// Register is an ordered group of qubit offsets.
//
// Offsets keep the caller's order. Name is set once the register has been
// resolved against an allocation, in which case Offsets are positions local
// to that allocation and Whole reports that they cover it exactly.
type Register struct {
	Offsets []int
	Tag     string
	Name    string
	Whole   bool
}

// Len returns the number of qubits in the register.
func (r Register) Len() int {
	return len(r.Offsets)
}

// Sequence is an ordered list of canonical values.
type Sequence []Value

// Table is an integer list recognised as a lookup table. It renders as the
// token "tab".
type Table []int64

func (Int) canonical()      {}
func (Label) canonical()    {}
func (Register) canonical() {}
func (Sequence) canonical() {}
func (Table) canonical()    {}
