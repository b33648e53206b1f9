package block

import (
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
	"github.com/sarchlab/tmdl/variable"
)

// RelOp is one of the six relational block operators (§4.6.3).
type RelOp int

const (
	EQ RelOp = iota
	NEQ
	LT
	LEQ
	GT
	GEQ
)

func (op RelOp) String() string {
	switch op {
	case EQ:
		return "EQ"
	case NEQ:
		return "NEQ"
	case LT:
		return "LT"
	case LEQ:
		return "LEQ"
	case GT:
		return "GT"
	default:
		return "GEQ"
	}
}

func (op RelOp) ordered() bool { return op != EQ && op != NEQ }

// Relational compares two same-typed inputs and outputs a BOOL (§4.6.3).
type Relational struct {
	Base

	op         RelOp
	inputTypes [2]datatype.DataType
	resolved   bool
}

// NewRelational constructs a relational block.
func NewRelational(op RelOp) *Relational {
	return &Relational{Base: NewBase("stdlib", op.paletteName(), nil), op: op, inputTypes: [2]datatype.DataType{datatype.NONE, datatype.NONE}}
}

// paletteName is the literal name library.NewStandardLibrary registers
// op's block under, distinct from the op.String() used in error
// messages.
func (op RelOp) paletteName() string {
	switch op {
	case EQ:
		return "=="
	case NEQ:
		return "!="
	case LT:
		return "<"
	case LEQ:
		return "<="
	case GT:
		return ">"
	default:
		return ">="
	}
}

func (r *Relational) NumInputs() int  { return 2 }
func (r *Relational) NumOutputs() int { return 1 }

func (r *Relational) SetInputType(port int, dt datatype.DataType) error {
	if port < 0 || port > 1 {
		return modelerr.WithBlockID(modelerr.OutOfRange, r.ID(), "%s has 2 inputs, got port %d", r.op, port)
	}
	r.inputTypes[port] = dt
	return nil
}

func (r *Relational) GetOutputType(port int) (datatype.DataType, error) {
	if port != 0 {
		return datatype.NONE, modelerr.WithBlockID(modelerr.OutOfRange, r.ID(), "%s has 1 output, got port %d", r.op, port)
	}
	return datatype.BOOL, nil
}

func (r *Relational) UpdateBlock() (bool, error) {
	before := r.resolved
	r.resolved = r.inputTypes[0] != datatype.NONE && r.inputTypes[0] == r.inputTypes[1]
	return before != r.resolved, nil
}

func (r *Relational) HasError() error {
	if r.inputTypes[0] == datatype.NONE || r.inputTypes[1] == datatype.NONE {
		return modelerr.WithBlockID(modelerr.UnsupportedType, r.ID(), "%s input type is not determined", r.op)
	}
	if r.inputTypes[0] != r.inputTypes[1] {
		return modelerr.WithBlockID(modelerr.TypeMismatch, r.ID(), "%s inputs must share a type", r.op)
	}
	if r.op.ordered() && r.inputTypes[0] == datatype.BOOL {
		return modelerr.WithBlockID(modelerr.UnsupportedType, r.ID(), "%s does not accept BOOL operands", r.op)
	}
	return nil
}

func (r *Relational) OutputsAreDelayed() bool { return false }

func (r *Relational) GetCompiled(info ModelInfo) (CompiledBlock, error) {
	if err := requireNoError(r.ID(), r.HasError()); err != nil {
		return nil, err
	}
	return &compiledRelational{id: r.ID(), op: r.op, inputType: r.inputTypes[0]}, nil
}

type compiledRelational struct {
	id        uint64
	op        RelOp
	inputType datatype.DataType
}

func (cc *compiledRelational) Executor(conns *connection.Manager, vars *variable.Manager) (Executor, error) {
	inputs, err := ResolveInputCells(cc.id, 2, conns, vars)
	if err != nil {
		return nil, err
	}
	out, err := ResolveOutputCells(cc.id, 1, vars)
	if err != nil {
		return nil, err
	}
	return &relationalExecutor{a: inputs[0], b: inputs[1], output: out[0], op: cc.op, floaty: cc.inputType.IsFloat()}, nil
}

func (cc *compiledRelational) CodegenSelf() CodeComponent {
	return CodeComponent{
		NameBase: "rel",
		Module:   "tmdl_blocks",
		TypeName: "rel_block<" + cc.inputType.String() + ", " + cc.op.String() + ">",
		Funcs:    map[Phase]string{ResetPhase: "reset", StepPhase: "step"},
	}
}

func (cc *compiledRelational) CodegenOther() []CodeComponent { return nil }

type relationalExecutor struct {
	a, b     *variable.Cell
	output   *variable.Cell
	op       RelOp
	floaty   bool
	va, vb   value.Value
}

func (e *relationalExecutor) Pull() { e.va, e.vb = e.a.V, e.b.V }

func (e *relationalExecutor) compute() bool {
	if e.va.DataType() == datatype.BOOL {
		eq := e.va.AsBool() == e.vb.AsBool()
		if e.op == EQ {
			return eq
		}
		return !eq
	}

	var cmp int
	if e.floaty {
		af, bf := e.va.AsF64(), e.vb.AsF64()
		switch {
		case af < bf:
			cmp = -1
		case af > bf:
			cmp = 1
		}
	} else if e.va.DataType().IsSigned() {
		ai, bi := e.va.AsInt(), e.vb.AsInt()
		switch {
		case ai < bi:
			cmp = -1
		case ai > bi:
			cmp = 1
		}
	} else {
		au, bu := e.va.AsUint(), e.vb.AsUint()
		switch {
		case au < bu:
			cmp = -1
		case au > bu:
			cmp = 1
		}
	}

	switch e.op {
	case EQ:
		return cmp == 0
	case NEQ:
		return cmp != 0
	case LT:
		return cmp < 0
	case LEQ:
		return cmp <= 0
	case GT:
		return cmp > 0
	default:
		return cmp >= 0
	}
}

func (e *relationalExecutor) ResetCompute() {}
func (e *relationalExecutor) StepCompute()  {}
func (e *relationalExecutor) Push()         { e.output.V = value.Bool(e.compute()) }
