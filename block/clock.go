package block

import (
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
	"github.com/sarchlab/tmdl/variable"
)

// Clock has zero inputs and one F64 output that accumulates elapsed
// simulated time (§4.6.5).
type Clock struct {
	Base
}

// NewClock constructs a Clock block.
func NewClock() *Clock {
	return &Clock{Base: NewBase("stdlib", "clock", nil)}
}

func (c *Clock) NumInputs() int  { return 0 }
func (c *Clock) NumOutputs() int { return 1 }

func (c *Clock) SetInputType(port int, dt datatype.DataType) error {
	return modelerr.WithBlockID(modelerr.OutOfRange, c.ID(), "Clock has no inputs, got port %d", port)
}

func (c *Clock) GetOutputType(port int) (datatype.DataType, error) {
	if port != 0 {
		return datatype.NONE, modelerr.WithBlockID(modelerr.OutOfRange, c.ID(), "Clock has 1 output, got port %d", port)
	}
	return datatype.F64, nil
}

func (c *Clock) UpdateBlock() (bool, error)  { return false, nil }
func (c *Clock) HasError() error             { return nil }
func (c *Clock) OutputsAreDelayed() bool     { return false }

func (c *Clock) GetCompiled(info ModelInfo) (CompiledBlock, error) {
	return &compiledClock{id: c.ID(), dt: info.DT}, nil
}

type compiledClock struct {
	id uint64
	dt float64
}

func (cc *compiledClock) Executor(conns *connection.Manager, vars *variable.Manager) (Executor, error) {
	out, err := ResolveOutputCells(cc.id, 1, vars)
	if err != nil {
		return nil, err
	}
	return &clockExecutor{output: out[0], dt: cc.dt}, nil
}

func (cc *compiledClock) CodegenSelf() CodeComponent {
	return CodeComponent{
		NameBase:        "clock",
		Module:          "tmdl_blocks",
		TypeName:        "clock_block",
		OutputInterface: []Field{{Name: "out", Type: "F64"}},
		Funcs:           map[Phase]string{ResetPhase: "reset", StepPhase: "step"},
	}
}

func (cc *compiledClock) CodegenOther() []CodeComponent { return nil }

type clockExecutor struct {
	output *variable.Cell
	dt     float64
	t      float64
}

func (e *clockExecutor) Pull() {}

func (e *clockExecutor) ResetCompute() { e.t = 0 }
func (e *clockExecutor) StepCompute()  { e.t += e.dt }
func (e *clockExecutor) Push()         { e.output.V = value.F64(e.t) }
