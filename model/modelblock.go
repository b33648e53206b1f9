package model

import (
	"github.com/sarchlab/tmdl/block"
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/scheduler"
	"github.com/sarchlab/tmdl/variable"
)

// ModelBlock wraps a compiled sub-Model so it can be placed as an
// ordinary block inside an enclosing Model (§3.7, §4.6.12). The inner
// model is compiled once, at GetCompiled time, and executed as a
// single opaque unit inside the wrapper's own Pull/Compute/Push
// phases: the outer scheduler never sees the sub-model's blocks, only
// this one slot. This keeps scheduler.Compile's signature the same
// whether it is compiling a top-level model or one nested inside
// another (§4.9 steps 2-3, folded into the wrapper instead of the
// generic compile pass).
type ModelBlock struct {
	block.Base

	inner *Model

	lastOutputTypes []datatype.DataType
}

// NewModelBlock wraps inner under the given instance name.
func NewModelBlock(name string, inner *Model) *ModelBlock {
	return &ModelBlock{Base: block.NewBase("models", name, nil), inner: inner}
}

// Inner returns the wrapped sub-model.
func (b *ModelBlock) Inner() *Model { return b.inner }

func (b *ModelBlock) NumInputs() int  { return len(b.inner.Inputs()) }
func (b *ModelBlock) NumOutputs() int { return len(b.inner.Outputs()) }

// SetInputType forwards dt to the inner model's port-th InputPort
// block's data_type parameter.
func (b *ModelBlock) SetInputType(port int, dt datatype.DataType) error {
	ids := b.inner.Inputs()
	if port < 0 || port >= len(ids) {
		return modelerr.WithBlockID(modelerr.OutOfRange, b.ID(),
			"%s has %d inputs, got port %d", b.inner.Name(), len(ids), port)
	}
	blk, ok := b.inner.Block(ids[port])
	if !ok {
		return modelerr.WithBlockID(modelerr.NotFound, b.ID(), "inner input port %d is missing", port)
	}
	ip, ok := blk.(*block.InputPort)
	if !ok {
		return modelerr.WithBlockID(modelerr.CompileError, b.ID(), "inner input port %d is not an InputPort", port)
	}
	ip.SetDataType(dt)
	return nil
}

// GetOutputType reads the type currently observed by the inner
// model's port-th OutputPort block.
func (b *ModelBlock) GetOutputType(port int) (datatype.DataType, error) {
	ids := b.inner.Outputs()
	if port < 0 || port >= len(ids) {
		return datatype.NONE, modelerr.WithBlockID(modelerr.OutOfRange, b.ID(),
			"%s has %d outputs, got port %d", b.inner.Name(), len(ids), port)
	}
	blk, ok := b.inner.Block(ids[port])
	if !ok {
		return datatype.NONE, modelerr.WithBlockID(modelerr.NotFound, b.ID(), "inner output port %d is missing", port)
	}
	op, ok := blk.(*block.OutputPort)
	if !ok {
		return datatype.NONE, modelerr.WithBlockID(modelerr.CompileError, b.ID(), "inner output port %d is not an OutputPort", port)
	}
	return op.InputType(), nil
}

// UpdateBlock runs the inner model's own type-propagation fixpoint and
// reports whether any externally visible output type changed, so the
// enclosing model's fixpoint keeps making progress across the
// boundary.
func (b *ModelBlock) UpdateBlock() (bool, error) {
	if err := b.inner.UpdateBlock(); err != nil {
		return false, err
	}

	current := make([]datatype.DataType, len(b.inner.Outputs()))
	for i := range current {
		dt, err := b.GetOutputType(i)
		if err != nil {
			return false, err
		}
		current[i] = dt
	}

	changed := !sameTypes(b.lastOutputTypes, current)
	b.lastOutputTypes = current
	return changed, nil
}

func sameTypes(a, b []datatype.DataType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (b *ModelBlock) HasError() error {
	if err := b.inner.HasError(); err != nil {
		return modelerr.WithBlockID(modelerr.CompileError, b.ID(),
			"sub-model %q has an unresolved error: %s", b.inner.Name(), err)
	}
	return nil
}

// OutputsAreDelayed conservatively reports false: a ModelBlock is
// scheduled like any combinational block, so a cycle that passes
// through one still needs an explicit Delay/Integrator inside or
// outside it to resolve.
func (b *ModelBlock) OutputsAreDelayed() bool { return false }

func (b *ModelBlock) GetCompiled(info block.ModelInfo) (block.CompiledBlock, error) {
	if err := b.HasError(); err != nil {
		return nil, modelerr.WithBlockID(modelerr.CompileError, b.ID(), "cannot compile block with unresolved error: %s", err)
	}

	compiledInner, err := b.inner.GetExecutionInterface()
	if err != nil {
		return nil, err
	}

	self, err := b.inner.GetCodegenComponent(info)
	if err != nil {
		return nil, err
	}
	others, err := b.inner.GetAllSubComponents(info)
	if err != nil {
		return nil, err
	}

	inputIDs := append([]uint64(nil), b.inner.Inputs()...)
	outputIDs := append([]uint64(nil), b.inner.Outputs()...)

	innerIn := make([]*variable.Cell, len(inputIDs))
	for i, id := range inputIDs {
		cell, err := compiledInner.Vars.Get(variable.ID{BlockID: id, Port: 0})
		if err != nil {
			return nil, err
		}
		innerIn[i] = cell
	}

	innerOut := make([]*variable.Cell, len(outputIDs))
	for i, id := range outputIDs {
		conn, err := b.inner.Connections().ConnectionTo(id, 0)
		if err != nil {
			return nil, modelerr.WithBlockID(modelerr.Unconnected, id, "output port is not connected")
		}
		cell, err := compiledInner.Vars.GetForConnection(conn)
		if err != nil {
			return nil, err
		}
		innerOut[i] = cell
	}

	return &compiledModelBlock{
		id:       b.ID(),
		inner:    compiledInner,
		innerIn:  innerIn,
		innerOut: innerOut,
		self:     self,
		others:   others,
	}, nil
}

type compiledModelBlock struct {
	id uint64

	inner    *scheduler.Compiled
	innerIn  []*variable.Cell
	innerOut []*variable.Cell

	self   block.CodeComponent
	others []block.CodeComponent
}

func (cc *compiledModelBlock) Executor(conns *connection.Manager, vars *variable.Manager) (block.Executor, error) {
	outerIn, err := block.ResolveInputCells(cc.id, len(cc.innerIn), conns, vars)
	if err != nil {
		return nil, err
	}
	outerOut, err := block.ResolveOutputCells(cc.id, len(cc.innerOut), vars)
	if err != nil {
		return nil, err
	}
	return &modelBlockExecutor{
		outerIn: outerIn, outerOut: outerOut,
		innerIn: cc.innerIn, innerOut: cc.innerOut,
		inner: cc.inner,
	}, nil
}

func (cc *compiledModelBlock) CodegenSelf() block.CodeComponent    { return cc.self }
func (cc *compiledModelBlock) CodegenOther() []block.CodeComponent { return cc.others }

// modelBlockExecutor runs the wrapped model's compiled schedule
// entirely within one slot of the enclosing schedule: Pull copies
// outer input cells into the inner model's input-port cells, Compute
// runs the inner schedule's reset/step, Push copies the inner
// output-port cells back out.
type modelBlockExecutor struct {
	outerIn, outerOut []*variable.Cell
	innerIn, innerOut []*variable.Cell
	inner             *scheduler.Compiled
}

func (e *modelBlockExecutor) Pull() {
	for i, c := range e.outerIn {
		e.innerIn[i].V = c.V
	}
}

func (e *modelBlockExecutor) ResetCompute() { e.inner.Reset() }
func (e *modelBlockExecutor) StepCompute()  { e.inner.Step() }

func (e *modelBlockExecutor) Push() {
	for i, c := range e.outerOut {
		c.V = e.innerOut[i].V
	}
}
