package trace

import (
	"errors"
	"testing"
)

func TestOperationVariants(t *testing.T) {
	tests := []struct {
		op         Operation
		controlled bool
		adjoint    bool
		str        string
	}{
		{Op("H"), false, false, "H"},
		{Adj("Add"), false, true, "Adjoint Add"},
		{Ctl("Z"), true, false, "Controlled Z"},
		{CtlAdj("Add"), true, true, "Controlled Adjoint Add"},
	}

	for _, tc := range tests {
		if got := tc.op.IsControlled(); got != tc.controlled {
			t.Errorf("%v.IsControlled() = %v, want %v", tc.op, got, tc.controlled)
		}
		if got := tc.op.IsAdjoint(); got != tc.adjoint {
			t.Errorf("%v.IsAdjoint() = %v, want %v", tc.op, got, tc.adjoint)
		}
		if got := tc.op.String(); got != tc.str {
			t.Errorf("String() = %q, want %q", got, tc.str)
		}
	}
}

func TestAppliedName(t *testing.T) {
	tests := []struct {
		op   Operation
		arg  Value
		want string
	}{
		{Op("H"), Qubit{ID: 3}, "H"},
		{Adj("InitAnd"), Tuple{Qubit{ID: 0}, Qubit{ID: 1}, Qubit{ID: 2}}, "InitAnd^-1"},
		{Ctl("Z"), Tuple{Qubits(0, 1), Qubit{ID: 2}}, "CCZ"},
		{Ctl("X"), Tuple{Qubit{ID: 4}, Qubit{ID: 5}}, "CX"},
		{CtlAdj("Add"), Tuple{Qubits(7), Tuple{Int(3), Qubits(1, 2)}}, "CAdd^-1"},
		{Ctl("Z"), Controlled{Inner: Tuple{Qubits(0, 1, 2), Qubit{ID: 9}}}, "CCCZ"},
		{Ctl("Z"), Void{}, "Z"},
		{Ctl("Z"), Tuple{Qubits(), Qubit{ID: 1}}, "Z"},
	}

	for _, tc := range tests {
		got, err := tc.op.AppliedName(tc.arg)
		if err != nil {
			t.Errorf("AppliedName(%v, %s): %v", tc.op, FormatValue(tc.arg), err)
			continue
		}
		if got != tc.want {
			t.Errorf("AppliedName(%v, %s) = %q, want %q", tc.op, FormatValue(tc.arg), got, tc.want)
		}
	}
}

func TestAppliedNameBadControls(t *testing.T) {
	bad := []Value{
		Int(3),
		Tuple{Int(3), Qubit{ID: 1}},
		Tuple{Array{Qubit{ID: 0}, Int(1)}, Qubit{ID: 1}},
	}
	for _, arg := range bad {
		_, err := Ctl("Z").AppliedName(arg)
		if !errors.Is(err, ErrControlShape) {
			t.Errorf("AppliedName(Ctl Z, %s) error = %v, want ErrControlShape", FormatValue(arg), err)
		}
	}
}

func TestFunctorUnmarshalText(t *testing.T) {
	var f Functor
	if err := f.UnmarshalText([]byte("controlled-adjoint")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if f != FunctorControlledAdjoint {
		t.Errorf("functor = %v, want controlled-adjoint", f)
	}
	if err := f.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("expected error for unknown functor")
	}
}
