package value

import (
	"strings"

	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/modelerr"
)

// ValueArray is a column-major 2D grid of same-typed Values.
type ValueArray struct {
	dt   datatype.DataType
	rows int
	cols int
	// data is stored column-major: data[col*rows+row].
	data []Value
}

// NewArray constructs a rows x cols array of default values of dt.
func NewArray(dt datatype.DataType, rows, cols int) (ValueArray, error) {
	if rows < 0 || cols < 0 {
		return ValueArray{}, modelerr.New(modelerr.OutOfRange, "negative array dimension %dx%d", rows, cols)
	}
	def, err := Default(dt)
	if err != nil {
		return ValueArray{}, err
	}
	data := make([]Value, rows*cols)
	for i := range data {
		data[i] = def
	}
	return ValueArray{dt: dt, rows: rows, cols: cols, data: data}, nil
}

// DataType returns the element type.
func (a ValueArray) DataType() datatype.DataType { return a.dt }

// Rows returns the number of rows.
func (a ValueArray) Rows() int { return a.rows }

// Cols returns the number of columns.
func (a ValueArray) Cols() int { return a.cols }

// At returns the element at (row, col).
func (a ValueArray) At(row, col int) (Value, error) {
	if row < 0 || row >= a.rows || col < 0 || col >= a.cols {
		return Value{}, modelerr.New(modelerr.OutOfRange, "index (%d,%d) out of range for %dx%d array", row, col, a.rows, a.cols)
	}
	return a.data[col*a.rows+row], nil
}

// Set writes the element at (row, col).
func (a *ValueArray) Set(row, col int, v Value) error {
	if row < 0 || row >= a.rows || col < 0 || col >= a.cols {
		return modelerr.New(modelerr.OutOfRange, "index (%d,%d) out of range for %dx%d array", row, col, a.rows, a.cols)
	}
	a.data[col*a.rows+row] = v
	return nil
}

// ParseArray parses a bracketed string literal "[a,b,c;d,e,f]": commas
// separate row entries within a column segment, semicolons separate
// column segments; "[]" is the empty 0x0 array. Every column must have
// the same number of row entries.
func ParseArray(s string, dt datatype.DataType) (ValueArray, error) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return ValueArray{}, modelerr.New(modelerr.ParseError, "array literal %q missing opening bracket", s)
	}

	var values []Value
	rows, cols := 0, 0
	currentRow := 0
	current := start + 1
	foundEnd := false

	for !foundEnd {
		next := strings.IndexAny(s[current:], ";,]")
		if next < 0 {
			return ValueArray{}, modelerr.New(modelerr.ParseError, "array literal %q missing closing bracket", s)
		}
		next += current

		raw := trimSpace(s[current:next])

		sep := s[next]
		if sep == ']' && rows == 0 && cols == 0 && raw == "" {
			foundEnd = true
			break
		}

		v, err := ParseString(raw, dt)
		if err != nil {
			return ValueArray{}, err
		}
		values = append(values, v)

		switch sep {
		case ',':
			currentRow++
			if cols == 0 {
				rows = currentRow
			}
		case ';', ']':
			currentRow++
			if cols == 0 {
				rows = currentRow
			} else if currentRow != rows {
				return ValueArray{}, modelerr.New(modelerr.ParseError, "each row must have the same number of values")
			}
			cols++
			currentRow = 0
			if sep == ']' {
				foundEnd = true
			}
		}

		current = next + 1
	}

	if rows*cols != len(values) {
		return ValueArray{}, modelerr.New(modelerr.ParseError, "mismatch between declared shape and parsed element count")
	}

	return ValueArray{dt: dt, rows: rows, cols: cols, data: values}, nil
}

// ChangeType converts every element to dt, element-wise.
func (a ValueArray) ChangeType(dt datatype.DataType) (ValueArray, error) {
	out := ValueArray{dt: dt, rows: a.rows, cols: a.cols, data: make([]Value, len(a.data))}
	for i, v := range a.data {
		cv, err := v.Convert(dt)
		if err != nil {
			return ValueArray{}, err
		}
		out.data[i] = cv
	}
	return out, nil
}

// Resize changes the array's shape, preserving row-major traversal
// semantics: elements are read out in row-major order from the old
// shape and written back in row-major order into the new shape,
// truncating or zero-filling with defaults of dt as needed.
func (a ValueArray) Resize(rows, cols int) (ValueArray, error) {
	out, err := NewArray(a.dt, rows, cols)
	if err != nil {
		return ValueArray{}, err
	}

	old := a.rowMajor()
	total := rows * cols
	if total > len(old) {
		total = len(old)
	}
	for idx := 0; idx < total; idx++ {
		r := idx / cols
		c := idx % cols
		out.data[c*rows+r] = old[idx]
	}
	return out, nil
}

func (a ValueArray) rowMajor() []Value {
	out := make([]Value, 0, len(a.data))
	for r := 0; r < a.rows; r++ {
		for c := 0; c < a.cols; c++ {
			out = append(out, a.data[c*a.rows+r])
		}
	}
	return out
}

// String renders the array in the canonical bracketed form.
func (a ValueArray) String() string {
	if a.rows == 0 && a.cols == 0 {
		return "[]"
	}

	var b strings.Builder
	b.WriteByte('[')
	for c := 0; c < a.cols; c++ {
		if c > 0 {
			b.WriteString("; ")
		}
		for r := 0; r < a.rows; r++ {
			if r > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.data[c*a.rows+r].String())
		}
	}
	b.WriteByte(']')
	return b.String()
}
