package block

import (
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
	"github.com/sarchlab/tmdl/variable"
)

// Derivative computes a backward-difference approximation of its input's
// rate of change: value (F32/F64), reset-flag (BOOL) -> same type output
// (§4.6.7).
type Derivative struct {
	Base

	valueType datatype.DataType
}

// NewDerivative constructs a Derivative block.
func NewDerivative() *Derivative {
	return &Derivative{Base: NewBase("stdlib", "derivative", nil)}
}

func (b *Derivative) NumInputs() int  { return 2 }
func (b *Derivative) NumOutputs() int { return 1 }

func (b *Derivative) SetInputType(port int, dt datatype.DataType) error {
	switch port {
	case 0:
		b.valueType = dt
	case 1:
	default:
		return modelerr.WithBlockID(modelerr.OutOfRange, b.ID(), "Derivative has 2 inputs, got port %d", port)
	}
	return nil
}

func (b *Derivative) GetOutputType(port int) (datatype.DataType, error) {
	if port != 0 {
		return datatype.NONE, modelerr.WithBlockID(modelerr.OutOfRange, b.ID(), "Derivative has 1 output, got port %d", port)
	}
	return b.valueType, nil
}

func (b *Derivative) UpdateBlock() (bool, error) { return false, nil }

func (b *Derivative) HasError() error {
	if b.valueType != datatype.F32 && b.valueType != datatype.F64 {
		return modelerr.WithBlockID(modelerr.UnsupportedType, b.ID(), "Derivative requires an F32/F64 value input")
	}
	return nil
}

func (b *Derivative) OutputsAreDelayed() bool { return false }

func (b *Derivative) GetCompiled(info ModelInfo) (CompiledBlock, error) {
	if err := requireNoError(b.ID(), b.HasError()); err != nil {
		return nil, err
	}
	return &compiledDerivative{id: b.ID(), dt: info.DT, valueType: b.valueType}, nil
}

type compiledDerivative struct {
	id        uint64
	dt        float64
	valueType datatype.DataType
}

func (cc *compiledDerivative) Executor(conns *connection.Manager, vars *variable.Manager) (Executor, error) {
	inputs, err := ResolveInputCells(cc.id, 2, conns, vars)
	if err != nil {
		return nil, err
	}
	out, err := ResolveOutputCells(cc.id, 1, vars)
	if err != nil {
		return nil, err
	}
	return &derivativeExecutor{value: inputs[0], resetFlag: inputs[1], output: out[0], dt: cc.dt, last: value.MustDefault(cc.valueType)}, nil
}

func (cc *compiledDerivative) CodegenSelf() CodeComponent {
	return CodeComponent{
		NameBase: "derivative",
		Module:   "tmdl_blocks",
		TypeName: "derivative_block<" + cc.valueType.String() + ">",
		Funcs:    map[Phase]string{ResetPhase: "reset", StepPhase: "step"},
	}
}

func (cc *compiledDerivative) CodegenOther() []CodeComponent { return nil }

type derivativeExecutor struct {
	value, resetFlag *variable.Cell
	output           *variable.Cell
	dt               float64

	in, flag value.Value
	last     value.Value
	out      value.Value
}

func (e *derivativeExecutor) Pull() { e.in, e.flag = e.value.V, e.resetFlag.V }

func (e *derivativeExecutor) ResetCompute() {
	e.last = e.in
	e.out = value.MustDefault(e.in.DataType())
}

func (e *derivativeExecutor) StepCompute() {
	if e.flag.AsBool() {
		e.last = e.in
		e.out = value.MustDefault(e.in.DataType())
		return
	}
	if e.in.DataType() == datatype.F32 {
		e.out = value.F32((e.in.AsF32() - e.last.AsF32()) / float32(e.dt))
	} else {
		e.out = value.F64((e.in.AsF64() - e.last.AsF64()) / e.dt)
	}
	e.last = e.in
}

func (e *derivativeExecutor) Push() { e.output.V = e.out }
