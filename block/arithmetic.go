package block

import (
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/identifier"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/parameter"
	"github.com/sarchlab/tmdl/value"
	"github.com/sarchlab/tmdl/variable"
)

// ArithOp is one of the four arithmetic block operators (§4.6.2).
type ArithOp int

const (
	ADD ArithOp = iota
	SUB
	MUL
	DIV
)

func (op ArithOp) String() string {
	switch op {
	case ADD:
		return "ADD"
	case SUB:
		return "SUB"
	case MUL:
		return "MUL"
	case DIV:
		return "DIV"
	default:
		return "ADD"
	}
}

// kernel folds b into a for one numeric data type. Integer kernels mask
// the result back to dt's width via Value.Convert; division by zero is
// not special-cased and propagates the host's native behavior.
type kernel func(a, b value.Value) value.Value

func kernelFor(op ArithOp, dt datatype.DataType) kernel {
	if dt == datatype.F32 {
		switch op {
		case ADD:
			return func(a, b value.Value) value.Value { return value.F32(a.AsF32() + b.AsF32()) }
		case SUB:
			return func(a, b value.Value) value.Value { return value.F32(a.AsF32() - b.AsF32()) }
		case MUL:
			return func(a, b value.Value) value.Value { return value.F32(a.AsF32() * b.AsF32()) }
		default:
			return func(a, b value.Value) value.Value { return value.F32(a.AsF32() / b.AsF32()) }
		}
	}
	if dt == datatype.F64 {
		switch op {
		case ADD:
			return func(a, b value.Value) value.Value { return value.F64(a.AsF64() + b.AsF64()) }
		case SUB:
			return func(a, b value.Value) value.Value { return value.F64(a.AsF64() - b.AsF64()) }
		case MUL:
			return func(a, b value.Value) value.Value { return value.F64(a.AsF64() * b.AsF64()) }
		default:
			return func(a, b value.Value) value.Value { return value.F64(a.AsF64() / b.AsF64()) }
		}
	}
	if dt.IsSigned() {
		switch op {
		case ADD:
			return func(a, b value.Value) value.Value { v, _ := value.Int(dt, a.AsInt()+b.AsInt()).Convert(dt); return v }
		case SUB:
			return func(a, b value.Value) value.Value { v, _ := value.Int(dt, a.AsInt()-b.AsInt()).Convert(dt); return v }
		case MUL:
			return func(a, b value.Value) value.Value { v, _ := value.Int(dt, a.AsInt()*b.AsInt()).Convert(dt); return v }
		default:
			return func(a, b value.Value) value.Value { v, _ := value.Int(dt, a.AsInt()/b.AsInt()).Convert(dt); return v }
		}
	}
	switch op {
	case ADD:
		return func(a, b value.Value) value.Value { v, _ := value.Uint(dt, a.AsUint()+b.AsUint()).Convert(dt); return v }
	case SUB:
		return func(a, b value.Value) value.Value { v, _ := value.Uint(dt, a.AsUint()-b.AsUint()).Convert(dt); return v }
	case MUL:
		return func(a, b value.Value) value.Value { v, _ := value.Uint(dt, a.AsUint()*b.AsUint()).Convert(dt); return v }
	default:
		return func(a, b value.Value) value.Value { v, _ := value.Uint(dt, a.AsUint()/b.AsUint()).Convert(dt); return v }
	}
}

// Arithmetic implements ADD/SUB/MUL/DIV over a dynamic number of
// same-typed numeric inputs (§4.6.2).
type Arithmetic struct {
	Base

	op           ArithOp
	numInputs    *parameter.Parameter
	inputTypes   []datatype.DataType
	outputType   datatype.DataType
}

// NewArithmetic constructs an arithmetic block with the default 2 inputs.
func NewArithmetic(op ArithOp) *Arithmetic {
	numInputs := parameter.NewScalar(identifier.MustNew("num_inputs"), "Number of Inputs", value.Uint(datatype.U32, 2))
	a := &Arithmetic{
		Base:      NewBase("stdlib", op.paletteName(), []*parameter.Parameter{numInputs}),
		op:        op,
		numInputs: numInputs,
	}
	a.resizeInputs()
	return a
}

// paletteName is the literal name library.NewStandardLibrary registers
// op's block under, distinct from the op.String() used in error
// messages.
func (op ArithOp) paletteName() string {
	switch op {
	case ADD:
		return "add"
	case SUB:
		return "sub"
	case MUL:
		return "mul"
	case DIV:
		return "div"
	default:
		return "add"
	}
}

func (a *Arithmetic) resizeInputs() {
	n := int(a.numInputs.ScalarValue().AsUint())
	if n < 2 {
		n = 2
	}
	for len(a.inputTypes) < n {
		a.inputTypes = append(a.inputTypes, datatype.NONE)
	}
	a.inputTypes = a.inputTypes[:n]
}

func (a *Arithmetic) NumInputs() int  { a.resizeInputs(); return len(a.inputTypes) }
func (a *Arithmetic) NumOutputs() int { return 1 }

func (a *Arithmetic) SetInputType(port int, dt datatype.DataType) error {
	a.resizeInputs()
	if port < 0 || port >= len(a.inputTypes) {
		return modelerr.WithBlockID(modelerr.OutOfRange, a.ID(), "input port %d out of range", port)
	}
	a.inputTypes[port] = dt
	return nil
}

func (a *Arithmetic) GetOutputType(port int) (datatype.DataType, error) {
	if port != 0 {
		return datatype.NONE, modelerr.WithBlockID(modelerr.OutOfRange, a.ID(), "%s has 1 output, got port %d", a.op, port)
	}
	return a.outputType, nil
}

func (a *Arithmetic) UpdateBlock() (bool, error) {
	before := a.outputType
	beforeLen := len(a.inputTypes)
	a.resizeInputs()

	if len(a.inputTypes) >= 2 && a.allInputsAgree() {
		a.outputType = a.inputTypes[0]
	} else {
		a.outputType = datatype.NONE
	}

	changed := before != a.outputType || beforeLen != len(a.inputTypes)
	return changed, nil
}

func (a *Arithmetic) allInputsAgree() bool {
	first := a.inputTypes[0]
	if first == datatype.NONE || first == datatype.BOOL || !first.IsNumeric() {
		return false
	}
	for _, t := range a.inputTypes[1:] {
		if t != first {
			return false
		}
	}
	return true
}

func (a *Arithmetic) HasError() error {
	if len(a.inputTypes) < 2 {
		return modelerr.WithBlockID(modelerr.UnsupportedType, a.ID(), "%s requires at least 2 inputs", a.op)
	}
	for i, t := range a.inputTypes {
		if t == datatype.NONE {
			return modelerr.WithBlockID(modelerr.UnsupportedType, a.ID(), "input %d type is not determined", i)
		}
		if t == datatype.BOOL || !t.IsNumeric() {
			return modelerr.WithBlockID(modelerr.UnsupportedType, a.ID(), "input %d type %s is not numeric", i, t)
		}
	}
	if !a.allInputsAgree() {
		return modelerr.WithBlockID(modelerr.TypeMismatch, a.ID(), "%s inputs do not share a common type", a.op)
	}
	return nil
}

func (a *Arithmetic) OutputsAreDelayed() bool { return false }

func (a *Arithmetic) GetCompiled(info ModelInfo) (CompiledBlock, error) {
	if err := requireNoError(a.ID(), a.HasError()); err != nil {
		return nil, err
	}
	return &compiledArithmetic{
		id:         a.ID(),
		op:         a.op,
		numInputs:  len(a.inputTypes),
		outputType: a.outputType,
	}, nil
}

type compiledArithmetic struct {
	id         uint64
	op         ArithOp
	numInputs  int
	outputType datatype.DataType
}

func (cc *compiledArithmetic) Executor(conns *connection.Manager, vars *variable.Manager) (Executor, error) {
	inputs, err := ResolveInputCells(cc.id, cc.numInputs, conns, vars)
	if err != nil {
		return nil, err
	}
	out, err := ResolveOutputCells(cc.id, 1, vars)
	if err != nil {
		return nil, err
	}
	return &arithmeticExecutor{
		inputs: inputs,
		output: out[0],
		fold:   kernelFor(cc.op, cc.outputType),
	}, nil
}

func (cc *compiledArithmetic) CodegenSelf() CodeComponent {
	return CodeComponent{
		NameBase: "arith",
		Module:   "tmdl_blocks",
		TypeName: "arith_block<" + cc.outputType.String() + ", " + cc.op.String() + ">",
		Funcs:    map[Phase]string{ResetPhase: "reset", StepPhase: "step"},
	}
}

func (cc *compiledArithmetic) CodegenOther() []CodeComponent { return nil }

// arithmeticExecutor starts with the first input's value and folds the
// operator over the rest every step.
type arithmeticExecutor struct {
	inputs  []*variable.Cell
	sampled []value.Value
	output  *variable.Cell
	fold    kernel
}

func (e *arithmeticExecutor) Pull() {
	if e.sampled == nil {
		e.sampled = make([]value.Value, len(e.inputs))
	}
	for i, c := range e.inputs {
		e.sampled[i] = c.V
	}
}

func (e *arithmeticExecutor) compute() value.Value {
	acc := e.sampled[0]
	for _, v := range e.sampled[1:] {
		acc = e.fold(acc, v)
	}
	return acc
}

func (e *arithmeticExecutor) ResetCompute() {}
func (e *arithmeticExecutor) StepCompute()  {}
func (e *arithmeticExecutor) Push()         { e.output.V = e.compute() }
