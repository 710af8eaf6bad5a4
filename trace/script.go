package trace

// Script builds a well-nested synthetic event stream.
//
//	s := NewScript()
//	s.Call(Op("InitAnd"), Qubit{ID: 2}, func(s *Script) {
//		s.Call(Ctl("Z"), Tuple{Qubits(0, 1), Qubit{ID: 2}}, nil)
//	})
//	events := s.Events()
type Script struct {
	events []Event
	open   []Event
}

// NewScript creates an empty script.
func NewScript() *Script {
	return &Script{}
}

// Enter opens a call.
func (s *Script) Enter(op Operation, arg Value) *Script {
	ev := Event{Kind: Enter, Op: op, Arg: arg}
	s.events = append(s.events, ev)
	s.open = append(s.open, ev)
	return s
}

// Exit closes the innermost open call, repeating its argument as the
// simulator does. Exit on an empty script is a no-op.
func (s *Script) Exit() *Script {
	if len(s.open) == 0 {
		return s
	}
	top := s.open[len(s.open)-1]
	s.open = s.open[:len(s.open)-1]
	s.events = append(s.events, Event{Kind: Exit, Op: top.Op, Arg: top.Arg})
	return s
}

// Call opens a call, runs body (which may be nil) and closes the call.
func (s *Script) Call(op Operation, arg Value, body func(*Script)) *Script {
	s.Enter(op, arg)
	if body != nil {
		body(s)
	}
	return s.Exit()
}

// Depth returns the number of open calls.
func (s *Script) Depth() int {
	return len(s.open)
}

// Events returns the recorded stream, closing any calls left open.
func (s *Script) Events() []Event {
	for len(s.open) > 0 {
		s.Exit()
	}
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
