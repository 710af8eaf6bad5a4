// Package manifest handles qtrace.toml configuration.
package manifest

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/chazu/qtrace/decompile"
	"github.com/chazu/qtrace/profile"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "qtrace.toml"

// Manifest represents a qtrace.toml configuration.
type Manifest struct {
	Printer  Printer  `toml:"printer"`
	Naming   Naming   `toml:"naming"`
	Profiler Profiler `toml:"profiler"`

	// Path is the file the manifest was loaded from (empty for defaults).
	Path string `toml:"-"`
}

// Printer configures the listing.
type Printer struct {
	MaxDepth int      `toml:"max-depth"`
	Indent   int      `toml:"indent"`
	Terminal []string `toml:"terminal"`
}

// Naming configures which operations allocate and release registers.
type Naming struct {
	AllocatePrefixes []string `toml:"allocate-prefixes"`
	AllocateSuffixes []string `toml:"allocate-suffixes"`
	ReleasePrefixes  []string `toml:"release-prefixes"`
	ReleaseSuffixes  []string `toml:"release-suffixes"`
}

// Profiler configures primitive counting.
type Profiler struct {
	Aliases map[string]string `toml:"aliases"`
}

// Default returns the built-in configuration.
func Default() *Manifest {
	conv := decompile.DefaultConventions()
	return &Manifest{
		Printer: Printer{
			MaxDepth: decompile.DefaultMaxDepth,
			Indent:   decompile.DefaultIndent,
			Terminal: slices.Clone(decompile.DefaultTerminal),
		},
		Naming: Naming{
			AllocatePrefixes: conv.AllocatePrefixes,
			AllocateSuffixes: conv.AllocateSuffixes,
			ReleasePrefixes:  conv.ReleasePrefixes,
			ReleaseSuffixes:  conv.ReleaseSuffixes,
		},
		Profiler: Profiler{Aliases: profile.DefaultAliases()},
	}
}

// Load parses the qtrace.toml file in the given directory.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses a configuration file at an explicit path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return m, nil
}

// Parse validates and decodes a configuration document. Keys the document
// leaves out keep their defaults; keys it sets replace them entirely, so an
// explicit empty list or table really is empty.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	def := Default()
	if !md.IsDefined("printer", "max-depth") {
		m.Printer.MaxDepth = def.Printer.MaxDepth
	}
	if !md.IsDefined("printer", "indent") {
		m.Printer.Indent = def.Printer.Indent
	}
	if !md.IsDefined("printer", "terminal") {
		m.Printer.Terminal = def.Printer.Terminal
	}
	if !md.IsDefined("naming", "allocate-prefixes") {
		m.Naming.AllocatePrefixes = def.Naming.AllocatePrefixes
	}
	if !md.IsDefined("naming", "allocate-suffixes") {
		m.Naming.AllocateSuffixes = def.Naming.AllocateSuffixes
	}
	if !md.IsDefined("naming", "release-prefixes") {
		m.Naming.ReleasePrefixes = def.Naming.ReleasePrefixes
	}
	if !md.IsDefined("naming", "release-suffixes") {
		m.Naming.ReleaseSuffixes = def.Naming.ReleaseSuffixes
	}
	if !md.IsDefined("profiler", "aliases") {
		m.Profiler.Aliases = def.Profiler.Aliases
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a qtrace.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// WriteFile encodes the manifest as TOML at path.
func (m *Manifest) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// TerminalSet returns the printer's terminal operations as a set.
func (m *Manifest) TerminalSet() map[string]bool {
	return decompile.TerminalSet(m.Printer.Terminal...)
}

// Conventions returns the naming rules for the decompiler.
func (m *Manifest) Conventions() decompile.Conventions {
	return decompile.Conventions{
		AllocatePrefixes: slices.Clone(m.Naming.AllocatePrefixes),
		AllocateSuffixes: slices.Clone(m.Naming.AllocateSuffixes),
		ReleasePrefixes:  slices.Clone(m.Naming.ReleasePrefixes),
		ReleaseSuffixes:  slices.Clone(m.Naming.ReleaseSuffixes),
	}
}

// Aliases returns a copy of the profiler alias table.
func (m *Manifest) Aliases() map[string]string {
	return maps.Clone(m.Profiler.Aliases)
}
