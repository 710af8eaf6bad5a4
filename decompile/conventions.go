package decompile

import "strings"

// Conventions decide from an operation's plain name whether it allocates
// or releases the qubit register passed as its first argument.
type Conventions struct {
	AllocatePrefixes []string
	AllocateSuffixes []string
	ReleasePrefixes  []string
	ReleaseSuffixes  []string
}

// DefaultConventions returns the stock naming rules: Let*, Init* and *Init
// allocate; Del* releases.
func DefaultConventions() Conventions {
	return Conventions{
		AllocatePrefixes: []string{"Let", "Init"},
		AllocateSuffixes: []string{"Init"},
		ReleasePrefixes:  []string{"Del"},
	}
}

// Allocates reports whether name follows an allocation pattern.
func (c Conventions) Allocates(name string) bool {
	return matchAffix(name, c.AllocatePrefixes, c.AllocateSuffixes)
}

// Releases reports whether name follows a release pattern.
func (c Conventions) Releases(name string) bool {
	return matchAffix(name, c.ReleasePrefixes, c.ReleaseSuffixes)
}

func matchAffix(name string, prefixes, suffixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
