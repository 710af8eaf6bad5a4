package decompile

import (
	"errors"
	"fmt"

	"github.com/chazu/qtrace/trace"
)

// ErrUnrecognizedShape reports an argument that matches no normalization
// rule. It means the trace carries a shape this package does not know, not
// a recoverable runtime condition.
var ErrUnrecognizedShape = errors.New("unrecognized argument shape")

// maxTupleArity is the widest tuple the normalizer unpacks.
const maxTupleArity = 4

// rawSeq is an unwrapped sequence whose elements still need normalizing.
type rawSeq []trace.Value

// Normalize converts a raw argument tree (a trace.Value) or an already
// canonical Value into canonical form.
//
// Rules are applied one step at a time until the value stops changing;
// only then are the elements of a resulting sequence normalized. Unwrapping
// can change the shape class (a wrapper may hold a tuple, a tuple becomes a
// sequence), so children are never visited before their parent is stable.
func Normalize(v any) (Value, error) {
	cur := v
	for {
		next, err := unwrapOnce(cur)
		if err != nil {
			return nil, err
		}
		switch n := next.(type) {
		case rawSeq:
			out := make(Sequence, 0, len(n))
			for i, e := range n {
				c, err := Normalize(e)
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				out = append(out, c)
			}
			return out, nil
		case Value:
			return n, nil
		default:
			cur = n
		}
	}
}

// unwrapOnce applies the first matching rule. The result is a canonical
// Value (a fixed point), a rawSeq, or another raw value to unwrap again.
func unwrapOnce(v any) (any, error) {
	switch x := v.(type) {
	case nil, trace.Void:
		return rawSeq{}, nil

	case trace.Controlled:
		return x.Inner, nil

	case trace.Tuple:
		if len(x) == 0 || len(x) > maxTupleArity {
			return nil, fmt.Errorf("%w: %d-tuple %s", ErrUnrecognizedShape, len(x), trace.FormatValue(x))
		}
		return rawSeq(x), nil

	case trace.Array:
		if ids, ok := qubitArray(x); ok {
			return Register{Offsets: ids, Tag: TagReg}, nil
		}
		return rawSeq(x), nil

	case trace.LittleEndian:
		return Register{Offsets: trace.QubitIDs(x.Qubits), Tag: TagInt}, nil

	case trace.CosetLittleEndian:
		return Register{Offsets: trace.QubitIDs(x.Qubits), Tag: TagCoset}, nil

	case trace.Qubit:
		return Register{Offsets: []int{x.ID}, Tag: TagQubit}, nil

	case trace.Int:
		return Int(x), nil

	case trace.Pauli:
		return Label(x.String()), nil

	// Already canonical.
	case Register, Int, Label, Table:
		return x, nil

	case Sequence:
		return x, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnrecognizedShape, v)
}

// qubitArray reports whether every element is a qubit handle. An empty
// array counts as a (zero-width) qubit register.
func qubitArray(arr trace.Array) ([]int, bool) {
	ids := make([]int, len(arr))
	for i, e := range arr {
		q, ok := e.(trace.Qubit)
		if !ok {
			return nil, false
		}
		ids[i] = q.ID
	}
	return ids, true
}
