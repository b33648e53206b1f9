package block

import (
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
	"github.com/sarchlab/tmdl/variable"
)

// Delay is a unit delay: value, reset-flag (BOOL), reset-value (same
// type as value) -> same type output. It emits its pre-tick internal
// state before sampling the current input, so OutputsAreDelayed is true
// (§4.6.8).
type Delay struct {
	Base

	valueType datatype.DataType
	resetType datatype.DataType
	reported  datatype.DataType
}

// NewDelay constructs a unit-Delay block.
func NewDelay() *Delay {
	return &Delay{Base: NewBase("stdlib", "delay", nil)}
}

func (b *Delay) NumInputs() int  { return 3 }
func (b *Delay) NumOutputs() int { return 1 }

// Input ports: 0=value, 1=reset-flag, 2=reset-value.
func (b *Delay) SetInputType(port int, dt datatype.DataType) error {
	switch port {
	case 0:
		b.valueType = dt
	case 1:
	case 2:
		b.resetType = dt
	default:
		return modelerr.WithBlockID(modelerr.OutOfRange, b.ID(), "UnitDelay has 3 inputs, got port %d", port)
	}
	return nil
}

func (b *Delay) GetOutputType(port int) (datatype.DataType, error) {
	if port != 0 {
		return datatype.NONE, modelerr.WithBlockID(modelerr.OutOfRange, b.ID(), "UnitDelay has 1 output, got port %d", port)
	}
	if b.valueType == datatype.NONE {
		return b.resetType, nil
	}
	return b.valueType, nil
}

// UpdateBlock reports whether the output type differs from the one it
// last reported. While the value input is untyped the output takes the
// reset-value's type, so a feedback loop through the delay can resolve.
func (b *Delay) UpdateBlock() (bool, error) {
	dt, _ := b.GetOutputType(0)
	changed := dt != b.reported
	b.reported = dt
	return changed, nil
}

func (b *Delay) HasError() error {
	if b.valueType == datatype.NONE {
		return modelerr.WithBlockID(modelerr.UnsupportedType, b.ID(), "UnitDelay value type is not determined")
	}
	return nil
}

func (b *Delay) OutputsAreDelayed() bool { return true }

func (b *Delay) GetCompiled(info ModelInfo) (CompiledBlock, error) {
	if err := requireNoError(b.ID(), b.HasError()); err != nil {
		return nil, err
	}
	return &compiledDelay{id: b.ID(), valueType: b.valueType}, nil
}

type compiledDelay struct {
	id        uint64
	valueType datatype.DataType
}

func (cc *compiledDelay) Executor(conns *connection.Manager, vars *variable.Manager) (Executor, error) {
	inputs, err := ResolveInputCells(cc.id, 3, conns, vars)
	if err != nil {
		return nil, err
	}
	out, err := ResolveOutputCells(cc.id, 1, vars)
	if err != nil {
		return nil, err
	}
	return &delayExecutor{value: inputs[0], resetFlag: inputs[1], resetValue: inputs[2], output: out[0]}, nil
}

func (cc *compiledDelay) CodegenSelf() CodeComponent {
	return CodeComponent{
		NameBase: "unit_delay",
		Module:   "tmdl_blocks",
		TypeName: "delay_block<" + cc.valueType.String() + ">",
		Funcs:    map[Phase]string{ResetPhase: "reset", StepPhase: "step"},
	}
}

func (cc *compiledDelay) CodegenOther() []CodeComponent { return nil }

type delayExecutor struct {
	value, resetFlag, resetValue *variable.Cell
	output                       *variable.Cell

	in, flag, rst value.Value
	next          value.Value
	advance       bool
}

func (e *delayExecutor) Pull() {
	e.in, e.flag, e.rst = e.value.V, e.resetFlag.V, e.resetValue.V
}

func (e *delayExecutor) ResetCompute() {
	e.next = e.rst
	e.advance = false
}

func (e *delayExecutor) StepCompute() {
	if e.flag.AsBool() {
		e.next = e.rst
	}
	e.advance = true
}

// Push emits the pre-tick state; on a step (not a reset) it then
// advances the internal state from the freshly sampled input — the
// delay's defining behavior.
func (e *delayExecutor) Push() {
	e.output.V = e.next
	if e.advance {
		e.next = e.in
	}
}
