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

// Constant is a zero-input, one-output block whose output tracks its
// dtype parameter; the value parameter is converted to dtype on update
// (§4.6.1).
type Constant struct {
	Base

	dtypeParam *parameter.Parameter
	valueParam *parameter.Parameter
	outputType datatype.DataType
}

// NewConstant constructs a Constant block with the given initial type
// and value.
func NewConstant(dt datatype.DataType, v value.Value) *Constant {
	dtypeParam := parameter.NewDataType(identifier.MustNew("dtype"), "Data Type", dt)
	valueParam := parameter.NewScalar(identifier.MustNew("value"), "Value", v)
	return &Constant{
		Base:       NewBase("stdlib", "constant", []*parameter.Parameter{dtypeParam, valueParam}),
		dtypeParam: dtypeParam,
		valueParam: valueParam,
		outputType: datatype.NONE,
	}
}

func (c *Constant) NumInputs() int  { return 0 }
func (c *Constant) NumOutputs() int { return 1 }

func (c *Constant) SetInputType(port int, dt datatype.DataType) error {
	return modelerr.WithBlockID(modelerr.OutOfRange, c.ID(), "Constant has no inputs, got port %d", port)
}

func (c *Constant) GetOutputType(port int) (datatype.DataType, error) {
	if port != 0 {
		return datatype.NONE, modelerr.WithBlockID(modelerr.OutOfRange, c.ID(), "Constant has 1 output, got port %d", port)
	}
	return c.outputType, nil
}

func (c *Constant) UpdateBlock() (bool, error) {
	dt := c.dtypeParam.DataTypeValue()
	changed := c.outputType != dt
	c.outputType = dt

	if c.valueParam.ScalarValue().DataType() != dt {
		c.valueParam.ConvertType(dt)
	}
	return changed, nil
}

func (c *Constant) HasError() error {
	if c.outputType == datatype.NONE {
		return modelerr.WithBlockID(modelerr.UnsupportedType, c.ID(), "Constant output type is not determined")
	}
	if c.valueParam.ScalarValue().DataType() != c.outputType {
		return modelerr.WithBlockID(modelerr.TypeMismatch, c.ID(), "Constant value type does not match dtype")
	}
	return nil
}

func (c *Constant) OutputsAreDelayed() bool { return false }

func (c *Constant) GetCompiled(info ModelInfo) (CompiledBlock, error) {
	if err := requireNoError(c.ID(), c.HasError()); err != nil {
		return nil, err
	}
	return &compiledConstant{id: c.ID(), value: c.valueParam.ScalarValue(), outputType: c.outputType}, nil
}

type compiledConstant struct {
	id         uint64
	value      value.Value
	outputType datatype.DataType
}

func (cc *compiledConstant) Executor(conns *connection.Manager, vars *variable.Manager) (Executor, error) {
	out, err := ResolveOutputCells(cc.id, 1, vars)
	if err != nil {
		return nil, err
	}
	return &constantExecutor{value: cc.value, output: out[0]}, nil
}

func (cc *compiledConstant) CodegenSelf() CodeComponent {
	return CodeComponent{
		NameBase:        "constant",
		Module:          "tmdl_blocks",
		TypeName:        "const_block<" + cc.outputType.String() + ">",
		OutputInterface: []Field{{Name: "out", Type: cc.outputType.String()}},
		Funcs:           map[Phase]string{ResetPhase: "reset", StepPhase: "step"},
		CtorArgs:        []string{cc.value.String()},
	}
}

func (cc *compiledConstant) CodegenOther() []CodeComponent { return nil }

// constantExecutor writes its value once at reset and never changes it.
type constantExecutor struct {
	value  value.Value
	output *variable.Cell
}

func (e *constantExecutor) Pull()         {}
func (e *constantExecutor) ResetCompute() {}
func (e *constantExecutor) StepCompute()  {}
func (e *constantExecutor) Push()         { e.output.V = e.value }
