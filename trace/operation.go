package trace

import (
	"errors"
	"fmt"
	"strings"
)

// ErrControlShape reports a controlled operation whose argument does not
// start with a control register.
var ErrControlShape = errors.New("control register shape")

// Functor identifies which variant of an operation was applied.
type Functor uint8

const (
	FunctorBody Functor = iota
	FunctorAdjoint
	FunctorControlled
	FunctorControlledAdjoint
)

var functorNames = map[Functor]string{
	FunctorBody:              "body",
	FunctorAdjoint:           "adjoint",
	FunctorControlled:        "controlled",
	FunctorControlledAdjoint: "controlled-adjoint",
}

func (f Functor) String() string {
	v, ok := functorNames[f]
	if !ok {
		return fmt.Sprintf("invalid(%d)", f)
	}
	return v
}

// UnmarshalText for setting values with configs, CLI, etc.
func (f *Functor) UnmarshalText(rawtext []byte) error {
	text := string(rawtext)
	for k, v := range functorNames {
		if v == text {
			*f = k
			return nil
		}
	}
	return fmt.Errorf("unknown functor %q", text)
}

// Operation describes the callable an event refers to.
type Operation struct {
	Name    string
	Functor Functor
}

// Op is the body variant of the named operation.
func Op(name string) Operation { return Operation{Name: name} }

// Adj is the adjoint variant of the named operation.
func Adj(name string) Operation { return Operation{Name: name, Functor: FunctorAdjoint} }

// Ctl is the controlled variant of the named operation.
func Ctl(name string) Operation { return Operation{Name: name, Functor: FunctorControlled} }

// CtlAdj is the controlled adjoint variant of the named operation.
func CtlAdj(name string) Operation {
	return Operation{Name: name, Functor: FunctorControlledAdjoint}
}

// IsControlled reports whether op is a controlled variant.
func (op Operation) IsControlled() bool {
	return op.Functor == FunctorControlled || op.Functor == FunctorControlledAdjoint
}

// IsAdjoint reports whether op is an adjoint variant.
func (op Operation) IsAdjoint() bool {
	return op.Functor == FunctorAdjoint || op.Functor == FunctorControlledAdjoint
}

// String renders op with its functor words, e.g. "Controlled Adjoint Add".
func (op Operation) String() string {
	var sb strings.Builder
	if op.IsControlled() {
		sb.WriteString("Controlled ")
	}
	if op.IsAdjoint() {
		sb.WriteString("Adjoint ")
	}
	sb.WriteString(op.Name)
	return sb.String()
}

// Controls returns the control qubits of an application of op.
// Uncontrolled operations have no controls.
func (op Operation) Controls(arg Value) ([]Qubit, error) {
	if !op.IsControlled() {
		return nil, nil
	}
	for {
		w, ok := arg.(Controlled)
		if !ok {
			break
		}
		arg = w.Inner
	}
	switch x := arg.(type) {
	case nil, Void:
		return nil, nil
	case Tuple:
		if len(x) == 0 {
			return nil, nil
		}
		return controlQubits(x[0])
	}
	return nil, fmt.Errorf("%w: %s has argument %s", ErrControlShape, op, FormatValue(arg))
}

func controlQubits(v Value) ([]Qubit, error) {
	switch x := v.(type) {
	case Qubit:
		return []Qubit{x}, nil
	case Array:
		qs := make([]Qubit, len(x))
		for i, e := range x {
			q, ok := e.(Qubit)
			if !ok {
				return nil, fmt.Errorf("%w: control %s is not a qubit", ErrControlShape, FormatValue(e))
			}
			qs[i] = q
		}
		return qs, nil
	}
	return nil, fmt.Errorf("%w: controls %s", ErrControlShape, FormatValue(v))
}

// AppliedName describes an application as [CCC...]Name[^-1], one C per
// control qubit.
func (op Operation) AppliedName(arg Value) (string, error) {
	ctrls, err := op.Controls(arg)
	if err != nil {
		return "", err
	}
	name := strings.Repeat("C", len(ctrls)) + op.Name
	if op.IsAdjoint() {
		name += "^-1"
	}
	return name, nil
}
