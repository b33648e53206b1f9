// Package block defines the polymorphic block contract (§3.5, §4.6) and
// the built-in block variants. Rather than the deep inheritance plus
// downcasts of the reference implementation, each block kind is a
// concrete struct embedding Base for the shared id/parameter/location
// bookkeeping and implementing Block for its port and compile behavior
// (DESIGN NOTES §9: "tagged variant... no dynamic downcasts needed at
// step time").
package block

import (
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/identifier"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/parameter"
	"github.com/sarchlab/tmdl/variable"
)

// Language tags a code-generation target. CPP is the only target this
// engine implements; the tag exists so additional backends are additive
// (DESIGN NOTES §9).
type Language int

const (
	CPP Language = iota
)

// ModelInfo carries compile-time context passed into GetCompiled.
type ModelInfo struct {
	DT       float64
	Language Language
}

// Block is the capability contract every block variant implements.
type Block interface {
	ID() uint64
	SetID(id uint64)
	LibraryName() string
	TypeName() string
	Location() (x, y int64)
	SetLocation(x, y int64)
	Inverted() bool
	SetInverted(inverted bool)
	Parameters() []*parameter.Parameter
	Parameter(id identifier.Identifier) (*parameter.Parameter, bool)

	NumInputs() int
	NumOutputs() int
	SetInputType(port int, dt datatype.DataType) error
	GetOutputType(port int) (datatype.DataType, error)

	// UpdateBlock runs the block's own fixpoint over its parameters and
	// port types, reporting whether its externally visible interface
	// (port count or port types) changed.
	UpdateBlock() (changed bool, err error)

	// HasError returns nil when the block is internally consistent, or a
	// human-readable reason otherwise.
	HasError() error

	// GetCompiled requires HasError() == nil; otherwise it fails with
	// CompileError.
	GetCompiled(info ModelInfo) (CompiledBlock, error)

	// OutputsAreDelayed reports whether the block can produce its step-k
	// output without reading its step-k inputs.
	OutputsAreDelayed() bool
}

// Executor performs the pull/compute/push cycle for one compiled block
// (§4.9). Reset runs Pull; ResetCompute; Push. Step runs Pull;
// StepCompute; Push.
type Executor interface {
	Pull()
	ResetCompute()
	StepCompute()
	Push()
}

// RunReset sequences an Executor's reset phases.
func RunReset(e Executor) {
	e.Pull()
	e.ResetCompute()
	e.Push()
}

// RunStep sequences an Executor's step phases.
func RunStep(e Executor) {
	e.Pull()
	e.StepCompute()
	e.Push()
}

// Phase names the code-generated functions a CodeComponent may expose.
type Phase int

const (
	ResetPhase Phase = iota
	StepPhase
)

// Field is a named, typed struct field in a generated input/output
// interface.
type Field struct {
	Name string
	Type string
}

// CodeComponent describes a block's source-level shape (§4.10).
type CodeComponent struct {
	IsVirtual       bool
	NameBase        string
	Module          string
	TypeName        string
	InputInterface  []Field
	OutputInterface []Field
	Funcs           map[Phase]string
	CtorArgs        []string
	Includes        []string
}

// CompiledBlock is the product of Block.GetCompiled: a runtime Executor
// bound to cells, plus the CodeComponent describing the block's
// source-level shape and any sub-components it references.
type CompiledBlock interface {
	Executor(conns *connection.Manager, vars *variable.Manager) (Executor, error)
	CodegenSelf() CodeComponent
	CodegenOther() []CodeComponent
}

// Base holds the bookkeeping shared by every block variant: the id
// assigned by the owning Model, the library/type names used to resolve
// it, editor-only location and inversion, and its parameter list.
type Base struct {
	id         uint64
	library    string
	typeName   string
	locX, locY int64
	inverted   bool
	params     []*parameter.Parameter
}

// NewBase constructs a Base for a block of the given library/type.
func NewBase(library, typeName string, params []*parameter.Parameter) Base {
	return Base{library: library, typeName: typeName, params: params}
}

// ID returns the block's id, as assigned by the owning Model.
func (b *Base) ID() uint64 { return b.id }

// SetID is called by the owning Model when the block is added.
func (b *Base) SetID(id uint64) { b.id = id }

// LibraryName returns the name of the library this block was created from.
func (b *Base) LibraryName() string { return b.library }

// TypeName returns the block-type name within its library.
func (b *Base) TypeName() string { return b.typeName }

// Location returns the editor-only placement coordinates.
func (b *Base) Location() (int64, int64) { return b.locX, b.locY }

// SetLocation sets the editor-only placement coordinates.
func (b *Base) SetLocation(x, y int64) { b.locX, b.locY = x, y }

// Inverted returns the editor-only inverted flag.
func (b *Base) Inverted() bool { return b.inverted }

// SetInverted sets the editor-only inverted flag.
func (b *Base) SetInverted(inverted bool) { b.inverted = inverted }

// Parameters returns the block's parameters in declaration order.
func (b *Base) Parameters() []*parameter.Parameter { return b.params }

// Parameter looks up a parameter by id.
func (b *Base) Parameter(id identifier.Identifier) (*parameter.Parameter, bool) {
	for _, p := range b.params {
		if p.ID().Equal(id) {
			return p, true
		}
	}
	return nil, false
}

// ResolveInputCells looks up, for each of numInputs input ports of block
// id, the cell driving it through conns/vars. Fails with Unconnected if
// any port has no incoming connection.
func ResolveInputCells(id uint64, numInputs int, conns *connection.Manager, vars *variable.Manager) ([]*variable.Cell, error) {
	cells := make([]*variable.Cell, numInputs)
	for port := 0; port < numInputs; port++ {
		c, err := conns.ConnectionTo(id, port)
		if err != nil {
			return nil, modelerr.WithBlockID(modelerr.Unconnected, id, "input port %d is not connected", port)
		}
		cell, err := vars.GetForConnection(c)
		if err != nil {
			return nil, err
		}
		cells[port] = cell
	}
	return cells, nil
}

// ResolveOutputCells looks up the output cell for each of numOutputs
// output ports of block id.
func ResolveOutputCells(id uint64, numOutputs int, vars *variable.Manager) ([]*variable.Cell, error) {
	cells := make([]*variable.Cell, numOutputs)
	for port := 0; port < numOutputs; port++ {
		cell, err := vars.Get(variable.ID{BlockID: id, Port: port})
		if err != nil {
			return nil, err
		}
		cells[port] = cell
	}
	return cells, nil
}

func requireNoError(id uint64, hasErr error) error {
	if hasErr != nil {
		return modelerr.WithBlockID(modelerr.CompileError, id, "cannot compile block with unresolved error: %s", hasErr)
	}
	return nil
}
