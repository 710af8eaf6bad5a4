package manifest

import (
	_ "embed"
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// ErrInvalid reports a configuration document that does not match the
// schema.
var ErrInvalid = errors.New("invalid configuration")

//go:embed schema.cue
var schemaSource string

// Validate checks a decoded TOML document against the configuration
// schema. Unknown keys and mistyped values are reported with their path.
func Validate(doc map[string]any) error {
	ctx := cuecontext.New()
	s := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Manifest"))
	if err := s.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	v := s.Unify(ctx.Encode(doc))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, cueerrors.Details(err, nil))
	}
	return nil
}
