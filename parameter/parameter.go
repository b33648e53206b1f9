// Package parameter implements the named, typed, optionally-disabled
// knobs attached to blocks (§3.4).
package parameter

import (
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/identifier"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
)

// Kind distinguishes the parameter variants.
type Kind int

const (
	// DataTypeKind parameters hold a datatype.DataType tag.
	DataTypeKind Kind = iota
	// ScalarKind parameters hold a value.Value.
	ScalarKind
	// IdentifierKind parameters hold an identifier.Identifier.
	IdentifierKind
	// ArrayKind parameters hold a value.ValueArray.
	ArrayKind
)

// Parameter is a named, typed, optionally-disabled knob attached to a
// block. Its id is immutable after construction.
type Parameter struct {
	id      identifier.Identifier
	name    string
	enabled bool
	kind    Kind

	dtypeVal datatype.DataType
	scalar   value.Value
	ident    identifier.Identifier
	array    value.ValueArray
}

// ID returns the parameter's immutable identifier.
func (p *Parameter) ID() identifier.Identifier { return p.id }

// Name returns the mutable human-readable name.
func (p *Parameter) Name() string { return p.name }

// SetName changes the human-readable name.
func (p *Parameter) SetName(name string) { p.name = name }

// Enabled reports whether the parameter is currently active.
func (p *Parameter) Enabled() bool { return p.enabled }

// SetEnabled toggles the parameter.
func (p *Parameter) SetEnabled(enabled bool) { p.enabled = enabled }

// Kind reports which variant this parameter is.
func (p *Parameter) Kind() Kind { return p.kind }

// NewDataType constructs a DataType-valued parameter.
func NewDataType(id identifier.Identifier, name string, dt datatype.DataType) *Parameter {
	return &Parameter{id: id, name: name, enabled: true, kind: DataTypeKind, dtypeVal: dt}
}

// NewScalar constructs a scalar-value parameter.
func NewScalar(id identifier.Identifier, name string, v value.Value) *Parameter {
	return &Parameter{id: id, name: name, enabled: true, kind: ScalarKind, scalar: v}
}

// NewIdentifier constructs an identifier-valued parameter.
func NewIdentifier(id identifier.Identifier, name string, v identifier.Identifier) *Parameter {
	return &Parameter{id: id, name: name, enabled: true, kind: IdentifierKind, ident: v}
}

// NewArray constructs an array-valued parameter.
func NewArray(id identifier.Identifier, name string, v value.ValueArray) *Parameter {
	return &Parameter{id: id, name: name, enabled: true, kind: ArrayKind, array: v}
}

// DataTypeValue returns the held DataType; valid only when Kind() == DataTypeKind.
func (p *Parameter) DataTypeValue() datatype.DataType { return p.dtypeVal }

// SetDataTypeValue sets the held DataType; valid only when Kind() == DataTypeKind.
func (p *Parameter) SetDataTypeValue(dt datatype.DataType) { p.dtypeVal = dt }

// ScalarValue returns the held Value; valid only when Kind() == ScalarKind.
func (p *Parameter) ScalarValue() value.Value { return p.scalar }

// IdentifierValue returns the held Identifier; valid only when
// Kind() == IdentifierKind.
func (p *Parameter) IdentifierValue() identifier.Identifier { return p.ident }

// ArrayValue returns the held ValueArray; valid only when Kind() == ArrayKind.
func (p *Parameter) ArrayValue() value.ValueArray { return p.array }

// GetString renders the current value as a string.
func (p *Parameter) GetString() string {
	switch p.kind {
	case DataTypeKind:
		return p.dtypeVal.String()
	case ScalarKind:
		return p.scalar.String()
	case IdentifierKind:
		return p.ident.String()
	case ArrayKind:
		return p.array.String()
	default:
		return ""
	}
}

// SetString parses s using the parameter's existing declared type and
// replaces the held value.
func (p *Parameter) SetString(s string) error {
	switch p.kind {
	case DataTypeKind:
		dt, ok := datatype.Parse(s)
		if !ok {
			return modelerr.New(modelerr.ParseError, "unknown data type name %q", s)
		}
		p.dtypeVal = dt
		return nil
	case ScalarKind:
		v, err := value.ParseString(s, p.scalar.DataType())
		if err != nil {
			return err
		}
		p.scalar = v
		return nil
	case IdentifierKind:
		id, err := identifier.New(s)
		if err != nil {
			return err
		}
		p.ident = id
		return nil
	case ArrayKind:
		a, err := value.ParseArray(s, p.array.DataType())
		if err != nil {
			return err
		}
		p.array = a
		return nil
	default:
		return modelerr.New(modelerr.UnsupportedType, "unknown parameter kind")
	}
}

// ConvertType tries to reinterpret the current scalar value in the new
// type, falling back to the default of t on failure. Valid only for
// ScalarKind parameters.
func (p *Parameter) ConvertType(t datatype.DataType) {
	if p.kind != ScalarKind {
		return
	}
	if v, err := p.scalar.Convert(t); err == nil {
		p.scalar = v
		return
	}
	p.scalar = value.MustDefault(t)
}

// SetDataType converts the array's element type in place. Valid only for
// ArrayKind parameters.
func (p *Parameter) SetArrayDataType(t datatype.DataType) error {
	if p.kind != ArrayKind {
		return modelerr.New(modelerr.UnsupportedType, "SetArrayDataType requires an array parameter")
	}
	a, err := p.array.ChangeType(t)
	if err != nil {
		return err
	}
	p.array = a
	return nil
}

// Resize reshapes an array parameter's value. Valid only for ArrayKind
// parameters.
func (p *Parameter) Resize(rows, cols int) error {
	if p.kind != ArrayKind {
		return modelerr.New(modelerr.UnsupportedType, "Resize requires an array parameter")
	}
	a, err := p.array.Resize(rows, cols)
	if err != nil {
		return err
	}
	p.array = a
	return nil
}

// Clone returns a deep-enough copy of p (Parameter has no shared mutable
// reference fields beyond value types, so this is a value copy).
func (p *Parameter) Clone() *Parameter {
	cp := *p
	return &cp
}
