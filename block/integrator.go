package block

import (
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
	"github.com/sarchlab/tmdl/variable"
)

// Integrator performs forward-Euler integration: value (F32/F64),
// reset-flag (BOOL), reset-value (same type as value) -> same type
// output. It can produce its step-k output without reading its step-k
// inputs, so OutputsAreDelayed is true (§4.6.6).
type Integrator struct {
	Base

	valueType datatype.DataType
}

// NewIntegrator constructs an Integrator block.
func NewIntegrator() *Integrator {
	return &Integrator{Base: NewBase("stdlib", "integrator", nil)}
}

func (b *Integrator) NumInputs() int  { return 3 }
func (b *Integrator) NumOutputs() int { return 1 }

// Input ports: 0=value, 1=reset-flag, 2=reset-value.
func (b *Integrator) SetInputType(port int, dt datatype.DataType) error {
	switch port {
	case 0:
		b.valueType = dt
	case 1, 2:
		// reset-flag and reset-value types are not recorded; HasError
		// checks only the value type.
	default:
		return modelerr.WithBlockID(modelerr.OutOfRange, b.ID(), "Integrator has 3 inputs, got port %d", port)
	}
	return nil
}

func (b *Integrator) GetOutputType(port int) (datatype.DataType, error) {
	if port != 0 {
		return datatype.NONE, modelerr.WithBlockID(modelerr.OutOfRange, b.ID(), "Integrator has 1 output, got port %d", port)
	}
	return b.valueType, nil
}

func (b *Integrator) UpdateBlock() (bool, error) { return false, nil }

func (b *Integrator) HasError() error {
	if b.valueType != datatype.F32 && b.valueType != datatype.F64 {
		return modelerr.WithBlockID(modelerr.UnsupportedType, b.ID(), "Integrator requires an F32/F64 value input")
	}
	return nil
}

func (b *Integrator) OutputsAreDelayed() bool { return true }

func (b *Integrator) GetCompiled(info ModelInfo) (CompiledBlock, error) {
	if err := requireNoError(b.ID(), b.HasError()); err != nil {
		return nil, err
	}
	return &compiledIntegrator{id: b.ID(), dt: info.DT, valueType: b.valueType}, nil
}

type compiledIntegrator struct {
	id        uint64
	dt        float64
	valueType datatype.DataType
}

func (cc *compiledIntegrator) Executor(conns *connection.Manager, vars *variable.Manager) (Executor, error) {
	inputs, err := ResolveInputCells(cc.id, 3, conns, vars)
	if err != nil {
		return nil, err
	}
	out, err := ResolveOutputCells(cc.id, 1, vars)
	if err != nil {
		return nil, err
	}
	return &integratorExecutor{
		value: inputs[0], resetFlag: inputs[1], resetValue: inputs[2],
		output: out[0], dt: cc.dt,
	}, nil
}

func (cc *compiledIntegrator) CodegenSelf() CodeComponent {
	return CodeComponent{
		NameBase: "integrator",
		Module:   "tmdl_blocks",
		TypeName: "integrator_block<" + cc.valueType.String() + ">",
		Funcs:    map[Phase]string{ResetPhase: "reset", StepPhase: "step"},
	}
}

func (cc *compiledIntegrator) CodegenOther() []CodeComponent { return nil }

type integratorExecutor struct {
	value, resetFlag, resetValue *variable.Cell
	output                       *variable.Cell
	dt                           float64

	in, flag, rst value.Value
	out           value.Value
}

func (e *integratorExecutor) Pull() {
	e.in, e.flag, e.rst = e.value.V, e.resetFlag.V, e.resetValue.V
}

func (e *integratorExecutor) ResetCompute() { e.out = e.rst }

func (e *integratorExecutor) StepCompute() {
	if e.flag.AsBool() {
		e.out = e.rst
		return
	}
	if e.out.DataType() == datatype.F32 {
		e.out = value.F32(e.out.AsF32() + e.in.AsF32()*float32(e.dt))
		return
	}
	e.out = value.F64(e.out.AsF64() + e.in.AsF64()*e.dt)
}

func (e *integratorExecutor) Push() { e.output.V = e.out }
