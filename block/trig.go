package block

import (
	"math"

	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
	"github.com/sarchlab/tmdl/variable"
)

// TrigOp names the trig block's operation (§4.6.4).
type TrigOp int

const (
	SIN TrigOp = iota
	COS
	ATAN2
)

func (op TrigOp) String() string {
	switch op {
	case SIN:
		return "SIN"
	case COS:
		return "COS"
	default:
		return "ATAN2"
	}
}

func (op TrigOp) binary() bool { return op == ATAN2 }

// Trig implements the unary (SIN, COS) and binary (ATAN2) trig blocks
// over F32/F64 operands (§4.6.4).
type Trig struct {
	Base

	op         TrigOp
	inputTypes [2]datatype.DataType
	outputType datatype.DataType
}

// NewTrig constructs a trig block.
func NewTrig(op TrigOp) *Trig {
	return &Trig{Base: NewBase("stdlib", op.paletteName(), nil), op: op}
}

// paletteName is the literal name library.NewStandardLibrary registers
// op's block under, distinct from the op.String() used in error
// messages.
func (op TrigOp) paletteName() string {
	switch op {
	case SIN:
		return "sin"
	case COS:
		return "cos"
	default:
		return "atan2"
	}
}

func (t *Trig) NumInputs() int {
	if t.op.binary() {
		return 2
	}
	return 1
}
func (t *Trig) NumOutputs() int { return 1 }

func (t *Trig) SetInputType(port int, dt datatype.DataType) error {
	if port < 0 || port >= t.NumInputs() {
		return modelerr.WithBlockID(modelerr.OutOfRange, t.ID(), "%s input port %d out of range", t.op, port)
	}
	t.inputTypes[port] = dt
	return nil
}

func (t *Trig) GetOutputType(port int) (datatype.DataType, error) {
	if port != 0 {
		return datatype.NONE, modelerr.WithBlockID(modelerr.OutOfRange, t.ID(), "%s has 1 output, got port %d", t.op, port)
	}
	return t.outputType, nil
}

func (t *Trig) UpdateBlock() (bool, error) {
	before := t.outputType
	if t.valid() {
		t.outputType = t.inputTypes[0]
	} else {
		t.outputType = datatype.NONE
	}
	return before != t.outputType, nil
}

func (t *Trig) valid() bool {
	first := t.inputTypes[0]
	if first != datatype.F32 && first != datatype.F64 {
		return false
	}
	if t.op.binary() && t.inputTypes[1] != first {
		return false
	}
	return true
}

func (t *Trig) HasError() error {
	first := t.inputTypes[0]
	if first == datatype.NONE {
		return modelerr.WithBlockID(modelerr.UnsupportedType, t.ID(), "%s input type is not determined", t.op)
	}
	if first != datatype.F32 && first != datatype.F64 {
		return modelerr.WithBlockID(modelerr.UnsupportedType, t.ID(), "%s requires a floating-point input", t.op)
	}
	if t.op.binary() && t.inputTypes[1] != first {
		return modelerr.WithBlockID(modelerr.TypeMismatch, t.ID(), "%s inputs must share a type", t.op)
	}
	return nil
}

func (t *Trig) OutputsAreDelayed() bool { return false }

func (t *Trig) GetCompiled(info ModelInfo) (CompiledBlock, error) {
	if err := requireNoError(t.ID(), t.HasError()); err != nil {
		return nil, err
	}
	return &compiledTrig{id: t.ID(), op: t.op, dt: t.outputType}, nil
}

type compiledTrig struct {
	id uint64
	op TrigOp
	dt datatype.DataType
}

func (cc *compiledTrig) Executor(conns *connection.Manager, vars *variable.Manager) (Executor, error) {
	n := 1
	if cc.op.binary() {
		n = 2
	}
	inputs, err := ResolveInputCells(cc.id, n, conns, vars)
	if err != nil {
		return nil, err
	}
	out, err := ResolveOutputCells(cc.id, 1, vars)
	if err != nil {
		return nil, err
	}
	e := &trigExecutor{inputs: inputs, output: out[0], op: cc.op, f32: cc.dt == datatype.F32}
	return e, nil
}

func (cc *compiledTrig) CodegenSelf() CodeComponent {
	return CodeComponent{
		NameBase: "trig",
		Module:   "tmdl_blocks",
		TypeName: "trig_block<" + cc.dt.String() + ", " + cc.op.String() + ">",
		Funcs:    map[Phase]string{ResetPhase: "reset", StepPhase: "step"},
	}
}

func (cc *compiledTrig) CodegenOther() []CodeComponent { return nil }

type trigExecutor struct {
	inputs  []*variable.Cell
	sampled []value.Value
	output  *variable.Cell
	op      TrigOp
	f32     bool
}

func (e *trigExecutor) Pull() {
	if e.sampled == nil {
		e.sampled = make([]value.Value, len(e.inputs))
	}
	for i, c := range e.inputs {
		e.sampled[i] = c.V
	}
}

func (e *trigExecutor) compute() value.Value {
	switch e.op {
	case SIN:
		if e.f32 {
			return value.F32(float32(math.Sin(float64(e.sampled[0].AsF32()))))
		}
		return value.F64(math.Sin(e.sampled[0].AsF64()))
	case COS:
		if e.f32 {
			return value.F32(float32(math.Cos(float64(e.sampled[0].AsF32()))))
		}
		return value.F64(math.Cos(e.sampled[0].AsF64()))
	default:
		if e.f32 {
			return value.F32(float32(math.Atan2(float64(e.sampled[0].AsF32()), float64(e.sampled[1].AsF32()))))
		}
		return value.F64(math.Atan2(e.sampled[0].AsF64(), e.sampled[1].AsF64()))
	}
}

func (e *trigExecutor) ResetCompute() {}
func (e *trigExecutor) StepCompute()  {}
func (e *trigExecutor) Push()         { e.output.V = e.compute() }
