// Package session ties one trace to its own listing printer, primitive
// profiler and event bus.
package session

import (
	"io"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/qtrace/decompile"
	"github.com/chazu/qtrace/manifest"
	"github.com/chazu/qtrace/profile"
	"github.com/chazu/qtrace/trace"
)

// Config configures a session.
type Config struct {
	// Manifest supplies printer limits, naming conventions and aliases.
	// Nil means manifest.Default().
	Manifest *manifest.Manifest
	// Quiet disables the listing; only counts are collected.
	Quiet bool
}

// Session is the state of one trace. Sessions share nothing, so separate
// traces may run concurrently in separate sessions, but a single session
// must only be fed from one goroutine.
type Session struct {
	ID uuid.UUID

	printer  *decompile.Printer
	profiler *profile.Profiler
	bus      *trace.Bus
	log      commonlog.Logger
}

// New creates a session writing its listing to out.
func New(cfg Config, out io.Writer) *Session {
	m := cfg.Manifest
	if m == nil {
		m = manifest.Default()
	}

	id := uuid.New()
	s := &Session{
		ID:  id,
		log: commonlog.NewKeyValueLogger(commonlog.GetLogger("qtrace.session"), "session", id.String()),
	}

	s.profiler = profile.NewProfiler(m.Aliases())
	s.bus = trace.NewBus()

	if !cfg.Quiet {
		dec := decompile.NewDecompiler(m.Conventions())
		dec.SetLogger(commonlog.NewKeyValueLogger(commonlog.GetLogger("qtrace.decompile"), "session", id.String()))

		s.printer = decompile.NewPrinter(out, dec)
		s.printer.MaxDepth = m.Printer.MaxDepth
		s.printer.Indent = m.Printer.Indent
		s.printer.Terminal = m.TerminalSet()
		s.bus.Attach(s.printer)
	}
	s.bus.Attach(s.profiler)

	return s
}

// Listener returns the session's event sink for live event sources.
func (s *Session) Listener() trace.Listener {
	return s.bus
}

// Printer returns the listing printer, or nil for a quiet session.
func (s *Session) Printer() *decompile.Printer {
	return s.printer
}

// Profiler returns the primitive profiler.
func (s *Session) Profiler() *profile.Profiler {
	return s.profiler
}

// Run replays a recorded trace through the session and returns the
// primitive counts. On error the listing written so far is kept and the
// counts gathered up to the failing event are still available from Report.
func (s *Session) Run(events []trace.Event) (*profile.Report, error) {
	s.log.Info("replaying trace", "events", len(events))

	if err := trace.Replay(events, s.bus); err != nil {
		s.log.Error("replay failed", "error", err)
		return nil, err
	}

	r := s.Report()
	if len(r.Uncounted) > 0 {
		s.log.Warning("top-level calls reached no primitive", "ops", r.Uncounted)
	}
	s.log.Info("trace done", "primitives", r.Total)
	return r, nil
}

// Report returns the current primitive counts.
func (s *Session) Report() *profile.Report {
	return s.profiler.Report()
}
