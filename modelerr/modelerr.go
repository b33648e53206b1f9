// Package modelerr defines the typed error kinds shared across the
// simulation engine (spec §7 ERROR HANDLING DESIGN).
package modelerr

import "fmt"

// Kind enumerates the error taxonomy from §7. Names are descriptive,
// not bindings to any host exception type.
type Kind int

const (
	InvalidIdentifier Kind = iota
	ParseError
	TypeMismatch
	OutOfRange
	Duplicate
	DuplicateConnection
	NotFound
	NullInput
	Unconnected
	TypePropagationDivergent
	UnresolvableCycle
	CompileError
	UnsupportedType
	UnknownBlock
	UnsupportedLanguage
	IoError
)

var kindNames = map[Kind]string{
	InvalidIdentifier:        "InvalidIdentifier",
	ParseError:               "ParseError",
	TypeMismatch:             "TypeMismatch",
	OutOfRange:               "OutOfRange",
	Duplicate:                "Duplicate",
	DuplicateConnection:      "DuplicateConnection",
	NotFound:                 "NotFound",
	NullInput:                "NullInput",
	Unconnected:              "Unconnected",
	TypePropagationDivergent: "TypePropagationDivergent",
	UnresolvableCycle:        "UnresolvableCycle",
	CompileError:             "CompileError",
	UnsupportedType:          "UnsupportedType",
	UnknownBlock:             "UnknownBlock",
	UnsupportedLanguage:      "UnsupportedLanguage",
	IoError:                 "IoError",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the concrete error type returned across the engine. Block-level
// errors additionally carry the offending block id via HasBlockID/BlockID.
type Error struct {
	Kind    Kind
	Message string

	hasBlockID bool
	blockID    uint64
}

func (e *Error) Error() string {
	if e.hasBlockID {
		return fmt.Sprintf("%s: %s (block %d)", e.Kind, e.Message, e.blockID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// BlockID returns the offending block id and whether one was attached.
func (e *Error) BlockID() (uint64, bool) { return e.blockID, e.hasBlockID }

// New constructs an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithBlockID attaches a block id to an Error, returning a new Error value.
func WithBlockID(kind Kind, blockID uint64, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), hasBlockID: true, blockID: blockID}
}

// Is reports whether err is a *Error of the given kind, supporting
// errors.Is-style matching.
func Is(err error, kind Kind) bool {
	me, ok := err.(*Error)
	return ok && me.Kind == kind
}
