package trace

import (
	"errors"
	"fmt"
)

// ErrUnbalanced reports an event stream whose enters and exits do not nest.
var ErrUnbalanced = errors.New("unbalanced event stream")

// Kind distinguishes operation-enter from operation-exit events.
type Kind uint8

const (
	kindInvalid Kind = iota
	Enter
	Exit
)

func (k Kind) String() string {
	switch k {
	case Enter:
		return "enter"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("unknown-kind(%d)", k)
	}
}

// Event is one callback from the simulator.
type Event struct {
	Kind Kind
	Op   Operation
	Arg  Value
}

// String renders ev as one line of the text trace format.
func (ev Event) String() string {
	mark := "+"
	if ev.Kind == Exit {
		mark = "-"
	}
	s := mark + " " + ev.Op.String()
	if _, void := ev.Arg.(Void); ev.Arg != nil && !void {
		s += " " + FormatValue(ev.Arg)
	}
	return s
}

// Listener consumes a strictly nested stream of enter/exit callbacks.
// Every OnEnter is matched by exactly one OnExit, LIFO.
type Listener interface {
	OnEnter(op Operation, arg Value) error
	OnExit(op Operation, arg Value) error
}

// Dispatch delivers a single event to l.
func Dispatch(l Listener, ev Event) error {
	switch ev.Kind {
	case Enter:
		return l.OnEnter(ev.Op, ev.Arg)
	case Exit:
		return l.OnExit(ev.Op, ev.Arg)
	}
	return fmt.Errorf("dispatch: invalid event kind %s", ev.Kind)
}

// ---------------------------------------------------------------------------
// Bus: fan-out to several listeners
// ---------------------------------------------------------------------------

// Bus forwards every callback to its listeners in attachment order.
// All listeners see every event even when one of them fails, so their
// nesting state stays consistent.
type Bus struct {
	listeners []Listener
}

// NewBus creates a bus with the given listeners attached.
func NewBus(listeners ...Listener) *Bus {
	return &Bus{listeners: listeners}
}

// Attach adds a listener.
func (b *Bus) Attach(l Listener) {
	b.listeners = append(b.listeners, l)
}

// Len returns the number of attached listeners.
func (b *Bus) Len() int {
	return len(b.listeners)
}

// OnEnter implements Listener.
func (b *Bus) OnEnter(op Operation, arg Value) error {
	var errs []error
	for _, l := range b.listeners {
		if err := l.OnEnter(op, arg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OnExit implements Listener.
func (b *Bus) OnExit(op Operation, arg Value) error {
	var errs []error
	for _, l := range b.listeners {
		if err := l.OnExit(op, arg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ---------------------------------------------------------------------------
// Replay of recorded streams
// ---------------------------------------------------------------------------

// Validate checks that events nest: each exit closes the most recent open
// enter of the same operation, and nothing is left open at the end.
func Validate(events []Event) error {
	var open []Operation
	for i, ev := range events {
		switch ev.Kind {
		case Enter:
			open = append(open, ev.Op)
		case Exit:
			if len(open) == 0 {
				return fmt.Errorf("%w: event %d: exit %s without enter", ErrUnbalanced, i, ev.Op)
			}
			top := open[len(open)-1]
			if top != ev.Op {
				return fmt.Errorf("%w: event %d: exit %s closes %s", ErrUnbalanced, i, ev.Op, top)
			}
			open = open[:len(open)-1]
		default:
			return fmt.Errorf("%w: event %d: invalid kind %s", ErrUnbalanced, i, ev.Kind)
		}
	}
	if len(open) > 0 {
		return fmt.Errorf("%w: %d operations still open, innermost %s", ErrUnbalanced, len(open), open[len(open)-1])
	}
	return nil
}

// Replay validates events and then delivers them to l in order. It stops
// at the first listener error.
func Replay(events []Event, l Listener) error {
	if err := Validate(events); err != nil {
		return err
	}
	for i, ev := range events {
		if err := Dispatch(l, ev); err != nil {
			return fmt.Errorf("event %d (%s): %w", i, ev, err)
		}
	}
	return nil
}
