// Package value implements the tagged scalar Value and the 2D
// ValueArray (§3.2) over the closed datatype.DataType enumeration.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/modelerr"
)

// Value is a tagged box: a DataType plus the corresponding native
// storage. Only the field matching dt is meaningful.
type Value struct {
	dt   datatype.DataType
	b    bool
	i    int64
	u    uint64
	f32  float32
	f64  float64
}

// DataType returns the value's tag.
func (v Value) DataType() datatype.DataType { return v.dt }

// Default constructs a zero Value of dt.
func Default(dt datatype.DataType) (Value, error) {
	if !dt.IsValid() {
		return Value{}, modelerr.New(modelerr.UnsupportedType, "unknown data type tag %d", int(dt))
	}
	return Value{dt: dt}, nil
}

// MustDefault is Default but panics on an invalid tag.
func MustDefault(dt datatype.DataType) Value {
	v, err := Default(dt)
	if err != nil {
		panic(err)
	}
	return v
}

// Bool constructs a BOOL value.
func Bool(b bool) Value { return Value{dt: datatype.BOOL, b: b} }

// Int constructs a signed-integer value for one of I8/I16/I32/I64.
func Int(dt datatype.DataType, i int64) Value { return Value{dt: dt, i: i} }

// Uint constructs an unsigned-integer value for one of U8/U16/U32/U64.
func Uint(dt datatype.DataType, u uint64) Value { return Value{dt: dt, u: u} }

// F32 constructs an F32 value.
func F32(f float32) Value { return Value{dt: datatype.F32, f32: f} }

// F64 constructs an F64 value.
func F64(f float64) Value { return Value{dt: datatype.F64, f64: f} }

// AsBool returns the stored bool (meaningful only when DataType() == BOOL).
func (v Value) AsBool() bool { return v.b }

// AsInt returns the stored value widened to int64 (meaningful for signed
// integer and bool types).
func (v Value) AsInt() int64 {
	switch v.dt {
	case datatype.BOOL:
		if v.b {
			return 1
		}
		return 0
	case datatype.U8, datatype.U16, datatype.U32, datatype.U64:
		return int64(v.u)
	case datatype.F32:
		return int64(v.f32)
	case datatype.F64:
		return int64(v.f64)
	default:
		return v.i
	}
}

// AsUint returns the stored value widened to uint64.
func (v Value) AsUint() uint64 {
	switch v.dt {
	case datatype.BOOL:
		if v.b {
			return 1
		}
		return 0
	case datatype.I8, datatype.I16, datatype.I32, datatype.I64:
		return uint64(v.i)
	case datatype.F32:
		return uint64(v.f32)
	case datatype.F64:
		return uint64(v.f64)
	default:
		return v.u
	}
}

// AsF32 returns the stored value widened/narrowed to float32.
func (v Value) AsF32() float32 {
	switch v.dt {
	case datatype.F64:
		return float32(v.f64)
	case datatype.F32:
		return v.f32
	case datatype.BOOL:
		if v.b {
			return 1
		}
		return 0
	case datatype.I8, datatype.I16, datatype.I32, datatype.I64:
		return float32(v.i)
	default:
		return float32(v.u)
	}
}

// AsF64 returns the stored value widened to float64.
func (v Value) AsF64() float64 {
	switch v.dt {
	case datatype.F64:
		return v.f64
	case datatype.F32:
		return float64(v.f32)
	case datatype.BOOL:
		if v.b {
			return 1
		}
		return 0
	case datatype.I8, datatype.I16, datatype.I32, datatype.I64:
		return float64(v.i)
	default:
		return float64(v.u)
	}
}

// ParseString parses s as a value of type dt. Integer types parse decimal
// literals, floats parse decimal-with-optional-exponent, and bool parses
// any non-zero integer as true. Failures are reported as ParseError.
func ParseString(s string, dt datatype.DataType) (Value, error) {
	switch dt {
	case datatype.BOOL:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, parseErr(s, err)
		}
		return Bool(n != 0), nil
	case datatype.I8:
		n, err := strconv.ParseInt(s, 10, 8)
		if err != nil {
			return Value{}, parseErr(s, err)
		}
		return Int(dt, n), nil
	case datatype.I16:
		n, err := strconv.ParseInt(s, 10, 16)
		if err != nil {
			return Value{}, parseErr(s, err)
		}
		return Int(dt, n), nil
	case datatype.I32:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return Value{}, parseErr(s, err)
		}
		return Int(dt, n), nil
	case datatype.I64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, parseErr(s, err)
		}
		return Int(dt, n), nil
	case datatype.U8:
		n, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return Value{}, parseErr(s, err)
		}
		return Uint(dt, n), nil
	case datatype.U16:
		n, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return Value{}, parseErr(s, err)
		}
		return Uint(dt, n), nil
	case datatype.U32:
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return Value{}, parseErr(s, err)
		}
		return Uint(dt, n), nil
	case datatype.U64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Value{}, parseErr(s, err)
		}
		return Uint(dt, n), nil
	case datatype.F32:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return Value{}, parseErr(s, err)
		}
		return F32(float32(f)), nil
	case datatype.F64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, parseErr(s, err)
		}
		return F64(f), nil
	case datatype.NONE:
		return Value{dt: datatype.NONE}, nil
	default:
		return Value{}, modelerr.New(modelerr.UnsupportedType, "unknown parse type %d", int(dt))
	}
}

func parseErr(s string, err error) error {
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return modelerr.New(modelerr.ParseError, "value %q out of range: %s", s, err)
	}
	return modelerr.New(modelerr.ParseError, "invalid value %q: %s", s, err)
}

// String renders v in a form that round-trips through ParseString for
// integer and boolean types, and at full precision for floats.
func (v Value) String() string {
	switch v.dt {
	case datatype.BOOL:
		if v.b {
			return "1"
		}
		return "0"
	case datatype.I8, datatype.I16, datatype.I32, datatype.I64:
		return strconv.FormatInt(v.i, 10)
	case datatype.U8, datatype.U16, datatype.U32, datatype.U64:
		return strconv.FormatUint(v.u, 10)
	case datatype.F32:
		return strconv.FormatFloat(float64(v.f32), 'g', -1, 32)
	case datatype.F64:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case datatype.NONE:
		return ""
	default:
		return fmt.Sprintf("<invalid:%d>", int(v.dt))
	}
}

// Clone returns a copy of v. Value has no reference fields, so this is
// equivalent to assignment; provided for parity with the spec's API.
func (v Value) Clone() Value { return v }

// CopyFrom replaces v's contents with other's, failing with TypeMismatch
// if the data types differ.
func (v *Value) CopyFrom(other Value) error {
	if v.dt != other.dt {
		return modelerr.New(modelerr.TypeMismatch, "cannot copy %s into %s", other.dt, v.dt)
	}
	*v = other
	return nil
}

// Convert reinterprets v as dt, following the host language's standard
// numeric conversion rules: bool->numeric is 0/1, numeric->bool is
// "not equal to zero", and widening/narrowing between numeric types use
// Go's native truncating conversion.
func (v Value) Convert(dt datatype.DataType) (Value, error) {
	if !dt.IsValid() {
		return Value{}, modelerr.New(modelerr.UnsupportedType, "unknown data type tag %d", int(dt))
	}

	switch dt {
	case datatype.BOOL:
		switch v.dt {
		case datatype.BOOL:
			return v, nil
		case datatype.F32:
			return Bool(v.f32 != 0), nil
		case datatype.F64:
			return Bool(v.f64 != 0), nil
		case datatype.I8, datatype.I16, datatype.I32, datatype.I64:
			return Bool(v.i != 0), nil
		default:
			return Bool(v.u != 0), nil
		}
	case datatype.I8:
		return Int(dt, int64(int8(v.AsInt()))), nil
	case datatype.I16:
		return Int(dt, int64(int16(v.AsInt()))), nil
	case datatype.I32:
		return Int(dt, int64(int32(v.AsInt()))), nil
	case datatype.I64:
		return Int(dt, v.AsInt()), nil
	case datatype.U8:
		return Uint(dt, uint64(uint8(v.AsUint()))), nil
	case datatype.U16:
		return Uint(dt, uint64(uint16(v.AsUint()))), nil
	case datatype.U32:
		return Uint(dt, uint64(uint32(v.AsUint()))), nil
	case datatype.U64:
		return Uint(dt, v.AsUint()), nil
	case datatype.F32:
		return F32(v.AsF32()), nil
	case datatype.F64:
		return F64(v.AsF64()), nil
	case datatype.NONE:
		return Value{dt: datatype.NONE}, nil
	default:
		return Value{}, modelerr.New(modelerr.UnsupportedType, "unsupported data type provided")
	}
}

// trimSpace mirrors the original parser's "trim only within array
// parsing" rule: ParseString above never trims, ValueArray parsing does.
func trimSpace(s string) string { return strings.TrimSpace(s) }
