// Package identifier implements the validated symbol names (§3.3) used
// for variables, parameters, and data-dictionary keys.
package identifier

import (
	"regexp"

	"github.com/sarchlab/tmdl/modelerr"
)

var pattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Identifier is a non-empty string matching [A-Za-z][A-Za-z0-9_]*.
type Identifier struct {
	s string
}

// IsValid reports whether s would be accepted by New.
func IsValid(s string) bool {
	return pattern.MatchString(s)
}

// New validates s and constructs an Identifier, or fails with
// InvalidIdentifier.
func New(s string) (Identifier, error) {
	if !IsValid(s) {
		return Identifier{}, modelerr.New(modelerr.InvalidIdentifier,
			"identifier %q must match [A-Za-z][A-Za-z0-9_]*", s)
	}
	return Identifier{s: s}, nil
}

// MustNew is New but panics on invalid input; intended for literals known
// to be valid at compile time (block-internal constant identifiers).
func MustNew(s string) Identifier {
	id, err := New(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the underlying text.
func (id Identifier) String() string { return id.s }

// Set re-validates s and replaces the identifier's value.
func (id *Identifier) Set(s string) error {
	if !IsValid(s) {
		return modelerr.New(modelerr.InvalidIdentifier,
			"identifier %q must match [A-Za-z][A-Za-z0-9_]*", s)
	}
	id.s = s
	return nil
}

// Equal reports byte-equality between two identifiers.
func (id Identifier) Equal(other Identifier) bool { return id.s == other.s }
