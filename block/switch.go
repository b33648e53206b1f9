package block

import (
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
	"github.com/sarchlab/tmdl/variable"
)

// Switch selects between two same-typed inputs under a boolean flag:
// flag (BOOL), a, b (same type, any) -> a when flag else b (§4.6.10).
type Switch struct {
	Base

	valueType datatype.DataType
}

// NewSwitch constructs a Switch block.
func NewSwitch() *Switch {
	return &Switch{Base: NewBase("stdlib", "switch", nil)}
}

func (b *Switch) NumInputs() int  { return 3 }
func (b *Switch) NumOutputs() int { return 1 }

// Input ports: 0=flag, 1=a, 2=b.
func (b *Switch) SetInputType(port int, dt datatype.DataType) error {
	switch port {
	case 0:
	case 1, 2:
		b.valueType = dt
	default:
		return modelerr.WithBlockID(modelerr.OutOfRange, b.ID(), "Switch has 3 inputs, got port %d", port)
	}
	return nil
}

func (b *Switch) GetOutputType(port int) (datatype.DataType, error) {
	if port != 0 {
		return datatype.NONE, modelerr.WithBlockID(modelerr.OutOfRange, b.ID(), "Switch has 1 output, got port %d", port)
	}
	return b.valueType, nil
}

func (b *Switch) UpdateBlock() (bool, error) { return false, nil }

func (b *Switch) HasError() error {
	if b.valueType == datatype.NONE {
		return modelerr.WithBlockID(modelerr.UnsupportedType, b.ID(), "Switch operand type is not determined")
	}
	return nil
}

func (b *Switch) OutputsAreDelayed() bool { return false }

func (b *Switch) GetCompiled(info ModelInfo) (CompiledBlock, error) {
	if err := requireNoError(b.ID(), b.HasError()); err != nil {
		return nil, err
	}
	return &compiledSwitch{id: b.ID(), valueType: b.valueType}, nil
}

type compiledSwitch struct {
	id        uint64
	valueType datatype.DataType
}

func (cc *compiledSwitch) Executor(conns *connection.Manager, vars *variable.Manager) (Executor, error) {
	inputs, err := ResolveInputCells(cc.id, 3, conns, vars)
	if err != nil {
		return nil, err
	}
	out, err := ResolveOutputCells(cc.id, 1, vars)
	if err != nil {
		return nil, err
	}
	return &switchExecutor{flag: inputs[0], a: inputs[1], b: inputs[2], output: out[0]}, nil
}

func (cc *compiledSwitch) CodegenSelf() CodeComponent {
	return CodeComponent{
		NameBase: "switch",
		Module:   "tmdl_blocks",
		TypeName: "switch_block<" + cc.valueType.String() + ">",
		Funcs:    map[Phase]string{ResetPhase: "reset", StepPhase: "step"},
	}
}

func (cc *compiledSwitch) CodegenOther() []CodeComponent { return nil }

type switchExecutor struct {
	flag, a, b *variable.Cell
	output     *variable.Cell

	flagVal value.Value
	aVal    value.Value
	bVal    value.Value
}

func (e *switchExecutor) Pull() {
	e.flagVal, e.aVal, e.bVal = e.flag.V, e.a.V, e.b.V
}

func (e *switchExecutor) compute() value.Value {
	if e.flagVal.AsBool() {
		return e.aVal
	}
	return e.bVal
}

func (e *switchExecutor) ResetCompute() {}
func (e *switchExecutor) StepCompute()  {}
func (e *switchExecutor) Push()         { e.output.V = e.compute() }
