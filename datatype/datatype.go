// Package datatype defines the closed enumeration of data types that a
// Value or block port can carry.
package datatype

import "fmt"

// DataType is a tag identifying the native storage kind of a Value.
type DataType int

// The closed set of data types. NONE means "not yet determined" and is
// never executable.
const (
	NONE DataType = iota
	BOOL
	U8
	I8
	U16
	I16
	U32
	I32
	U64
	I64
	F32
	F64
)

type meta struct {
	name       string
	isNumeric  bool
	isIntegral bool
	isFloat    bool
	isSigned   bool
}

var table = map[DataType]meta{
	NONE: {name: "NONE"},
	BOOL: {name: "BOOL"},
	U8:   {name: "U8", isNumeric: true, isIntegral: true, isSigned: false},
	I8:   {name: "I8", isNumeric: true, isIntegral: true, isSigned: true},
	U16:  {name: "U16", isNumeric: true, isIntegral: true, isSigned: false},
	I16:  {name: "I16", isNumeric: true, isIntegral: true, isSigned: true},
	U32:  {name: "U32", isNumeric: true, isIntegral: true, isSigned: false},
	I32:  {name: "I32", isNumeric: true, isIntegral: true, isSigned: true},
	U64:  {name: "U64", isNumeric: true, isIntegral: true, isSigned: false},
	I64:  {name: "I64", isNumeric: true, isIntegral: true, isSigned: true},
	F32:  {name: "F32", isNumeric: true, isFloat: true, isSigned: true},
	F64:  {name: "F64", isNumeric: true, isFloat: true, isSigned: true},
}

var nameToType = func() map[string]DataType {
	m := make(map[string]DataType, len(table))
	for dt, info := range table {
		m[info.name] = dt
	}
	return m
}()

// String returns the stable textual name of dt.
func (dt DataType) String() string {
	if info, ok := table[dt]; ok {
		return info.name
	}
	return fmt.Sprintf("DataType(%d)", int(dt))
}

// IsValid reports whether dt is a recognized tag.
func (dt DataType) IsValid() bool {
	_, ok := table[dt]
	return ok
}

// IsNumeric reports whether dt supports arithmetic.
func (dt DataType) IsNumeric() bool { return table[dt].isNumeric }

// IsIntegral reports whether dt is one of the fixed-width integer types.
func (dt DataType) IsIntegral() bool { return table[dt].isIntegral }

// IsFloat reports whether dt is F32 or F64.
func (dt DataType) IsFloat() bool { return table[dt].isFloat }

// IsSigned reports whether dt is a signed numeric type.
func (dt DataType) IsSigned() bool { return table[dt].isSigned }

// Parse resolves a type name (as produced by String) back to a DataType.
func Parse(name string) (DataType, bool) {
	dt, ok := nameToType[name]
	return dt, ok
}

// All returns every recognized data type, in ascending tag order.
func All() []DataType {
	out := make([]DataType, 0, len(table))
	for dt := NONE; dt <= F64; dt++ {
		out = append(out, dt)
	}
	return out
}
