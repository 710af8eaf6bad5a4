// qtrace - decompiles recorded operation traces into pseudocode listings
// and counts the primitive operations they execute.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tliron/commonlog"

	"github.com/chazu/qtrace/manifest"
	"github.com/chazu/qtrace/profile"
	"github.com/chazu/qtrace/session"
	"github.com/chazu/qtrace/tally"
	"github.com/chazu/qtrace/trace"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("qtrace")

// verbosity is a repeatable -v flag: "-v -v" and "-v=2" both mean 2.
type verbosity int

func (v *verbosity) String() string { return strconv.Itoa(int(*v)) }

func (v *verbosity) Set(s string) error {
	if s == "true" {
		*v++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("verbosity must be a number: %q", s)
	}
	*v = verbosity(n)
	return nil
}

func (v *verbosity) IsBoolFlag() bool { return true }

type options struct {
	config  string
	quiet   bool
	counts  bool
	db      string
	label   string
	pace    time.Duration
	output  string
	init    bool
	history bool
	verbose verbosity
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("qtrace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.config, "c", "", "Config file (default: nearest "+manifest.FileName+", else built-in defaults)")
	fs.BoolVar(&opts.quiet, "q", false, "Suppress the listing")
	fs.BoolVar(&opts.counts, "counts", true, "Print primitive counts")
	fs.StringVar(&opts.db, "db", "", "SQLite file to record counts in")
	fs.StringVar(&opts.label, "label", "", "Run label for -db (default: trace file name)")
	fs.DurationVar(&opts.pace, "pace", 10*time.Millisecond, "Delay between listing lines on a terminal")
	fs.StringVar(&opts.output, "o", "", "Re-encode the trace to this file (.cbor for binary, otherwise text)")
	fs.BoolVar(&opts.init, "init", false, "Write a default "+manifest.FileName+" to the current directory")
	fs.BoolVar(&opts.history, "history", false, "List the runs stored in -db")
	fs.Var(&opts.verbose, "v", "Verbose logging (repeat or use -v=N for more)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: qtrace [options] trace-file...\n\n")
		fmt.Fprintf(stderr, "Prints a pseudocode listing of each recorded trace and its primitive counts.\n")
		fmt.Fprintf(stderr, "Trace files ending in .cbor are binary; anything else is text (- reads stdin).\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  qtrace adder.trace               # Listing and counts\n")
		fmt.Fprintf(stderr, "  qtrace -q -db runs.db shor.cbor  # Record counts only\n")
		fmt.Fprintf(stderr, "  qtrace -db runs.db -history      # Show recorded runs\n")
		fmt.Fprintf(stderr, "  qtrace -o adder.cbor adder.trace # Convert text to binary\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	commonlog.Configure(int(opts.verbose), nil)

	if err := execute(ctx, opts, fs.Args(), stdout); err != nil {
		fmt.Fprintf(stderr, "qtrace: %v\n", err)
		return 1
	}
	return 0
}

func execute(ctx context.Context, opts options, files []string, stdout io.Writer) error {
	if opts.init {
		return writeDefaultConfig(manifest.FileName)
	}

	var store *tally.Store
	if opts.db != "" {
		var err error
		if store, err = tally.Open(ctx, opts.db); err != nil {
			return err
		}
		defer store.Close()
	}

	if opts.history {
		if store == nil {
			return errors.New("-history needs -db")
		}
		return printHistory(ctx, store, stdout)
	}

	if len(files) == 0 {
		return errors.New("no trace files given (see -h)")
	}
	if opts.output != "" && len(files) != 1 {
		return errors.New("-o takes exactly one trace file")
	}

	m, err := loadConfig(opts.config)
	if err != nil {
		return err
	}

	listing := pacedOutput(stdout, opts.pace)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(files) > 1 {
			fmt.Fprintf(stdout, "# %s\n", file)
		}

		events, err := readTrace(file)
		if err != nil {
			return err
		}
		if opts.output != "" {
			if err := writeTrace(opts.output, events); err != nil {
				return err
			}
			log.Info("wrote trace", "path", opts.output, "events", len(events))
		}

		s := session.New(session.Config{Manifest: m, Quiet: opts.quiet}, listing)
		report, err := s.Run(events)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if opts.counts {
			if _, err := report.WriteTo(stdout); err != nil {
				return err
			}
		}

		if store != nil {
			label := opts.label
			if label == "" {
				label = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
			}
			if err := record(ctx, store, label, report, stdout); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadConfig reads an explicit config file, else the nearest qtrace.toml
// above the working directory, else the defaults.
func loadConfig(path string) (*manifest.Manifest, error) {
	if path != "" {
		return manifest.LoadFile(path)
	}
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if m == nil {
		log.Debug("no config file, using defaults")
		return manifest.Default(), nil
	}
	log.Debug("loaded config", "path", m.Path)
	return m, nil
}

func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	return manifest.Default().WriteFile(path)
}

// record stores a report and prints how it differs from the previous run
// with the same label.
func record(ctx context.Context, store *tally.Store, label string, report *profile.Report, stdout io.Writer) error {
	counts := report.Counts()

	prev, err := store.Latest(ctx, label)
	switch {
	case errors.Is(err, tally.ErrUnknownRun):
	case err != nil:
		return err
	default:
		before, err := store.Counts(ctx, prev.ID)
		if err != nil {
			return err
		}
		for _, c := range tally.Diff(before, counts) {
			fmt.Fprintf(stdout, "%s: %d -> %d (%+d)\n", c.Key, c.Before, c.After, c.Delta())
		}
	}

	id, err := store.SaveRun(ctx, label, counts)
	if err != nil {
		return err
	}
	log.Info("recorded run", "id", id.String(), "label", label)
	return nil
}

func printHistory(ctx context.Context, store *tally.Store, stdout io.Writer) error {
	runs, err := store.Runs(ctx)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(stdout, "%s  %-20s  %s  %d\n", r.ID, r.Label, r.CreatedAt.Format(time.DateTime), r.Total)
	}
	return nil
}

// readTrace loads a recorded trace. ".cbor" files are binary; anything
// else, including "-" for stdin, is text.
func readTrace(path string) ([]trace.Event, error) {
	if path == "-" {
		return trace.ReadText(os.Stdin)
	}
	if filepath.Ext(path) == ".cbor" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		events, err := trace.UnmarshalEvents(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return events, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	events, err := trace.ReadText(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

func writeTrace(path string, events []trace.Event) error {
	if filepath.Ext(path) == ".cbor" {
		data, err := trace.MarshalEvents(events)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	}

	var sb strings.Builder
	for _, ev := range events {
		sb.WriteString(ev.String())
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}
