package trace

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// CBOR codec for recorded traces
// ---------------------------------------------------------------------------

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("trace: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// wire kinds for values; zero is reserved so a missing field is detectable.
const (
	wireVoid uint8 = iota + 1
	wireTuple
	wireArray
	wireQubit
	wireLittleEndian
	wireCoset
	wireInt
	wireControlled
	wirePauli
)

type wireValue struct {
	Kind  uint8       `cbor:"1,keyasint"`
	Int   int64       `cbor:"2,keyasint,omitempty"`
	Items []wireValue `cbor:"3,keyasint,omitempty"`
}

type wireEvent struct {
	Kind    uint8     `cbor:"1,keyasint"`
	Name    string    `cbor:"2,keyasint"`
	Functor uint8     `cbor:"3,keyasint,omitempty"`
	Arg     wireValue `cbor:"4,keyasint"`
}

type wireTrace struct {
	Version int         `cbor:"1,keyasint"`
	Events  []wireEvent `cbor:"2,keyasint"`
}

const wireVersion = 1

// MarshalEvents serializes an event stream to canonical CBOR bytes.
func MarshalEvents(events []Event) ([]byte, error) {
	wt := wireTrace{Version: wireVersion, Events: make([]wireEvent, len(events))}
	for i, ev := range events {
		arg, err := toWire(ev.Arg)
		if err != nil {
			return nil, fmt.Errorf("trace: marshal event %d: %w", i, err)
		}
		wt.Events[i] = wireEvent{
			Kind:    uint8(ev.Kind),
			Name:    ev.Op.Name,
			Functor: uint8(ev.Op.Functor),
			Arg:     arg,
		}
	}
	return cborEncMode.Marshal(&wt)
}

// UnmarshalEvents deserializes an event stream from CBOR bytes.
func UnmarshalEvents(data []byte) ([]Event, error) {
	var wt wireTrace
	if err := cbor.Unmarshal(data, &wt); err != nil {
		return nil, fmt.Errorf("trace: unmarshal events: %w", err)
	}
	if wt.Version != wireVersion {
		return nil, fmt.Errorf("trace: unsupported wire version %d", wt.Version)
	}
	events := make([]Event, len(wt.Events))
	for i, we := range wt.Events {
		kind := Kind(we.Kind)
		if kind != Enter && kind != Exit {
			return nil, fmt.Errorf("trace: event %d: invalid kind %d", i, we.Kind)
		}
		functor := Functor(we.Functor)
		if _, ok := functorNames[functor]; !ok {
			return nil, fmt.Errorf("trace: event %d: invalid functor %d", i, we.Functor)
		}
		arg, err := fromWire(we.Arg)
		if err != nil {
			return nil, fmt.Errorf("trace: event %d: %w", i, err)
		}
		events[i] = Event{Kind: kind, Op: Operation{Name: we.Name, Functor: functor}, Arg: arg}
	}
	return events, nil
}

func toWire(v Value) (wireValue, error) {
	switch x := v.(type) {
	case nil, Void:
		return wireValue{Kind: wireVoid}, nil
	case Tuple:
		items, err := toWireList(x)
		return wireValue{Kind: wireTuple, Items: items}, err
	case Array:
		items, err := toWireList(x)
		return wireValue{Kind: wireArray, Items: items}, err
	case Qubit:
		return wireValue{Kind: wireQubit, Int: int64(x.ID)}, nil
	case LittleEndian:
		return wireValue{Kind: wireLittleEndian, Items: qubitsToWire(x.Qubits)}, nil
	case CosetLittleEndian:
		return wireValue{Kind: wireCoset, Items: qubitsToWire(x.Qubits)}, nil
	case Int:
		return wireValue{Kind: wireInt, Int: int64(x)}, nil
	case Controlled:
		inner, err := toWire(x.Inner)
		return wireValue{Kind: wireControlled, Items: []wireValue{inner}}, err
	case Pauli:
		return wireValue{Kind: wirePauli, Int: int64(x)}, nil
	}
	return wireValue{}, fmt.Errorf("unsupported value %T", v)
}

func toWireList(vs []Value) ([]wireValue, error) {
	items := make([]wireValue, len(vs))
	for i, e := range vs {
		w, err := toWire(e)
		if err != nil {
			return nil, err
		}
		items[i] = w
	}
	return items, nil
}

func qubitsToWire(qs []Qubit) []wireValue {
	items := make([]wireValue, len(qs))
	for i, q := range qs {
		items[i] = wireValue{Kind: wireQubit, Int: int64(q.ID)}
	}
	return items
}

func fromWire(w wireValue) (Value, error) {
	switch w.Kind {
	case wireVoid:
		return Void{}, nil
	case wireTuple:
		items, err := fromWireList(w.Items)
		return Tuple(items), err
	case wireArray:
		items, err := fromWireList(w.Items)
		return Array(items), err
	case wireQubit:
		return Qubit{ID: int(w.Int)}, nil
	case wireLittleEndian:
		qs, err := qubitsFromWire(w.Items)
		return LittleEndian{Qubits: qs}, err
	case wireCoset:
		qs, err := qubitsFromWire(w.Items)
		return CosetLittleEndian{Qubits: qs}, err
	case wireInt:
		return Int(w.Int), nil
	case wireControlled:
		if len(w.Items) != 1 {
			return nil, fmt.Errorf("controlled value has %d items", len(w.Items))
		}
		inner, err := fromWire(w.Items[0])
		return Controlled{Inner: inner}, err
	case wirePauli:
		if w.Int < int64(PauliI) || w.Int > int64(PauliZ) {
			return nil, fmt.Errorf("invalid pauli %d", w.Int)
		}
		return Pauli(w.Int), nil
	}
	return nil, fmt.Errorf("unknown value kind %d", w.Kind)
}

func fromWireList(ws []wireValue) ([]Value, error) {
	items := make([]Value, len(ws))
	for i, w := range ws {
		v, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return items, nil
}

func qubitsFromWire(ws []wireValue) ([]Qubit, error) {
	qs := make([]Qubit, len(ws))
	for i, w := range ws {
		if w.Kind != wireQubit {
			return nil, fmt.Errorf("register element kind %d is not a qubit", w.Kind)
		}
		qs[i] = Qubit{ID: int(w.Int)}
	}
	return qs, nil
}
