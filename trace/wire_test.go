package trace

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
)

func TestEvents_CBORRoundTrip(t *testing.T) {
	events := NewScript().
		Call(Op("LetAnd"), Tuple{Qubit{ID: 4}, LittleEndian{Qubits: []Qubit{{ID: 1}, {ID: 2}}}}, func(s *Script) {
			s.Call(Ctl("Z"), Controlled{Inner: Tuple{Qubits(0, 1), Qubit{ID: 2}}}, nil)
			s.Call(Adj("Lookup"), Tuple{Ints(3, -1, 4), CosetLittleEndian{Qubits: []Qubit{{ID: 9}}}}, nil)
			s.Call(Op("Measure"), Tuple{Array{PauliZ, PauliX}, Qubits(3, 4)}, nil)
		}).
		Events()

	data, err := MarshalEvents(events)
	if err != nil {
		t.Fatalf("MarshalEvents: %v", err)
	}

	got, err := UnmarshalEvents(data)
	if err != nil {
		t.Fatalf("UnmarshalEvents: %v", err)
	}

	if diff := cmp.Diff(events, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEvents_CBORDeterministic(t *testing.T) {
	events := NewScript().Call(Op("H"), Qubit{ID: 1}, nil).Events()
	a, err := MarshalEvents(events)
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalEvents(events)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("encoding is not deterministic")
	}
}

func TestUnmarshalEventsRejectsBadInput(t *testing.T) {
	if _, err := UnmarshalEvents([]byte{0xff, 0x00}); err == nil {
		t.Error("expected error for garbage input")
	}

	wrongVersion, err := cbor.Marshal(wireTrace{Version: 99})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalEvents(wrongVersion); err == nil {
		t.Error("expected error for unknown version")
	}

	badKind, err := cbor.Marshal(wireTrace{
		Version: wireVersion,
		Events:  []wireEvent{{Kind: 7, Name: "H", Arg: wireValue{Kind: wireVoid}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalEvents(badKind); err == nil {
		t.Error("expected error for invalid event kind")
	}

	badPauli, err := cbor.Marshal(wireTrace{
		Version: wireVersion,
		Events:  []wireEvent{{Kind: uint8(Enter), Name: "H", Arg: wireValue{Kind: wirePauli, Int: 300}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalEvents(badPauli); err == nil {
		t.Error("expected error for out-of-range pauli")
	}
}
