package block

import (
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/identifier"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/parameter"
	"github.com/sarchlab/tmdl/variable"
)

// InputPort has zero inputs and one output whose type is taken from its
// data_type parameter. Its executor is a no-op: the cell is written by
// the enclosing ModelBlock wrapper or by the simulation harness
// (§4.6.11).
type InputPort struct {
	Base

	dtypeParam *parameter.Parameter
}

// NewInputPort constructs an InputPort block of the given type.
func NewInputPort(dt datatype.DataType) *InputPort {
	p := parameter.NewDataType(identifier.MustNew("data_type"), "Data Type", dt)
	return &InputPort{Base: NewBase("stdlib", "input", []*parameter.Parameter{p}), dtypeParam: p}
}

// SetDataType changes the port's declared type directly (used by a
// ModelBlock wrapper to propagate the outer input type inward).
func (p *InputPort) SetDataType(dt datatype.DataType) { p.dtypeParam.SetDataTypeValue(dt) }

func (p *InputPort) NumInputs() int  { return 0 }
func (p *InputPort) NumOutputs() int { return 1 }

func (p *InputPort) SetInputType(port int, dt datatype.DataType) error {
	return modelerr.WithBlockID(modelerr.OutOfRange, p.ID(), "InputPort has no inputs, got port %d", port)
}

func (p *InputPort) GetOutputType(port int) (datatype.DataType, error) {
	if port != 0 {
		return datatype.NONE, modelerr.WithBlockID(modelerr.OutOfRange, p.ID(), "InputPort has 1 output, got port %d", port)
	}
	return p.dtypeParam.DataTypeValue(), nil
}

func (p *InputPort) UpdateBlock() (bool, error) { return false, nil }

func (p *InputPort) HasError() error {
	if p.dtypeParam.DataTypeValue() == datatype.NONE {
		return modelerr.WithBlockID(modelerr.UnsupportedType, p.ID(), "InputPort data_type is not set")
	}
	return nil
}

func (p *InputPort) OutputsAreDelayed() bool { return false }

func (p *InputPort) GetCompiled(info ModelInfo) (CompiledBlock, error) {
	if err := requireNoError(p.ID(), p.HasError()); err != nil {
		return nil, err
	}
	return &compiledInputPort{id: p.ID(), dt: p.dtypeParam.DataTypeValue()}, nil
}

type compiledInputPort struct {
	id uint64
	dt datatype.DataType
}

func (cc *compiledInputPort) Executor(conns *connection.Manager, vars *variable.Manager) (Executor, error) {
	if _, err := ResolveOutputCells(cc.id, 1, vars); err != nil {
		return nil, err
	}
	return &noopExecutor{}, nil
}

func (cc *compiledInputPort) CodegenSelf() CodeComponent {
	return CodeComponent{
		IsVirtual:       true,
		NameBase:        "input_port",
		TypeName:        "input_port<" + cc.dt.String() + ">",
		OutputInterface: []Field{{Name: "out", Type: cc.dt.String()}},
	}
}

func (cc *compiledInputPort) CodegenOther() []CodeComponent { return nil }

// noopExecutor performs no work in any phase; used by port blocks whose
// cells are written externally.
type noopExecutor struct{}

func (noopExecutor) Pull()         {}
func (noopExecutor) ResetCompute() {}
func (noopExecutor) StepCompute()  {}
func (noopExecutor) Push()         {}

// OutputPort has one input and zero outputs; it stores the input's type
// for the enclosing model to observe but otherwise performs no work of
// its own — the value itself is read by way of the connection feeding
// it (§4.6.11).
type OutputPort struct {
	Base

	inputType datatype.DataType
}

// NewOutputPort constructs an OutputPort block.
func NewOutputPort() *OutputPort {
	return &OutputPort{Base: NewBase("stdlib", "output", nil)}
}

func (p *OutputPort) NumInputs() int  { return 1 }
func (p *OutputPort) NumOutputs() int { return 0 }

func (p *OutputPort) SetInputType(port int, dt datatype.DataType) error {
	if port != 0 {
		return modelerr.WithBlockID(modelerr.OutOfRange, p.ID(), "OutputPort has 1 input, got port %d", port)
	}
	p.inputType = dt
	return nil
}

func (p *OutputPort) GetOutputType(port int) (datatype.DataType, error) {
	return datatype.NONE, modelerr.WithBlockID(modelerr.OutOfRange, p.ID(), "OutputPort has no outputs, got port %d", port)
}

// InputType returns the type the port currently observes.
func (p *OutputPort) InputType() datatype.DataType { return p.inputType }

func (p *OutputPort) UpdateBlock() (bool, error) { return false, nil }

func (p *OutputPort) HasError() error {
	if p.inputType == datatype.NONE {
		return modelerr.WithBlockID(modelerr.UnsupportedType, p.ID(), "OutputPort input type is not determined")
	}
	return nil
}

func (p *OutputPort) OutputsAreDelayed() bool { return false }

func (p *OutputPort) GetCompiled(info ModelInfo) (CompiledBlock, error) {
	if err := requireNoError(p.ID(), p.HasError()); err != nil {
		return nil, err
	}
	return &compiledOutputPort{id: p.ID(), dt: p.inputType}, nil
}

type compiledOutputPort struct {
	id uint64
	dt datatype.DataType
}

func (cc *compiledOutputPort) Executor(conns *connection.Manager, vars *variable.Manager) (Executor, error) {
	if _, err := ResolveInputCells(cc.id, 1, conns, vars); err != nil {
		return nil, err
	}
	return &noopExecutor{}, nil
}

func (cc *compiledOutputPort) CodegenSelf() CodeComponent {
	return CodeComponent{
		IsVirtual:      true,
		NameBase:       "output_port",
		TypeName:       "output_port<" + cc.dt.String() + ">",
		InputInterface: []Field{{Name: "in", Type: cc.dt.String()}},
	}
}

func (cc *compiledOutputPort) CodegenOther() []CodeComponent { return nil }
