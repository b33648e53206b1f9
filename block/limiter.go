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

// Limiter clamps its input to [min, max]. When dynamic_limiter is false
// the bounds come from the min/max parameters (typed to match the
// input); when true, two extra input ports supply the bounds (§4.6.9).
type Limiter struct {
	Base

	dynamicParam *parameter.Parameter
	minParam     *parameter.Parameter
	maxParam     *parameter.Parameter

	inputType       datatype.DataType
	dynMinType      datatype.DataType
	dynMaxType      datatype.DataType
}

// NewLimiter constructs a static Limiter with the given initial bounds.
func NewLimiter(min, max value.Value) *Limiter {
	dyn := parameter.NewScalar(identifier.MustNew("dynamic_limiter"), "Dynamic Limiter", value.Bool(false))
	minP := parameter.NewScalar(identifier.MustNew("min"), "Minimum", min)
	maxP := parameter.NewScalar(identifier.MustNew("max"), "Maximum", max)
	return &Limiter{
		Base:         NewBase("stdlib", "limiter", []*parameter.Parameter{dyn, minP, maxP}),
		dynamicParam: dyn,
		minParam:     minP,
		maxParam:     maxP,
	}
}

func (b *Limiter) dynamic() bool { return b.dynamicParam.ScalarValue().AsBool() }

func (b *Limiter) NumInputs() int {
	if b.dynamic() {
		return 3
	}
	return 1
}
func (b *Limiter) NumOutputs() int { return 1 }

// Input ports in dynamic mode: 0=value, 1=min, 2=max.
func (b *Limiter) SetInputType(port int, dt datatype.DataType) error {
	if port < 0 || port >= b.NumInputs() {
		return modelerr.WithBlockID(modelerr.OutOfRange, b.ID(), "Limiter input port %d out of range", port)
	}
	switch port {
	case 0:
		b.inputType = dt
	case 1:
		b.dynMinType = dt
	case 2:
		b.dynMaxType = dt
	}
	return nil
}

func (b *Limiter) GetOutputType(port int) (datatype.DataType, error) {
	if port != 0 {
		return datatype.NONE, modelerr.WithBlockID(modelerr.OutOfRange, b.ID(), "Limiter has 1 output, got port %d", port)
	}
	return b.inputType, nil
}

func (b *Limiter) UpdateBlock() (bool, error) {
	changed := false
	if !b.dynamic() {
		if b.minParam.ScalarValue().DataType() != b.inputType && b.inputType != datatype.NONE {
			b.minParam.ConvertType(b.inputType)
			b.maxParam.ConvertType(b.inputType)
			changed = true
		}
	}
	return changed, nil
}

func (b *Limiter) HasError() error {
	if b.inputType == datatype.NONE || !b.inputType.IsNumeric() {
		return modelerr.WithBlockID(modelerr.UnsupportedType, b.ID(), "Limiter requires a numeric input")
	}
	if b.dynamic() {
		if b.dynMinType != b.inputType || b.dynMaxType != b.inputType {
			return modelerr.WithBlockID(modelerr.TypeMismatch, b.ID(), "Limiter dynamic bounds must match the primary input type")
		}
	} else if b.minParam.ScalarValue().DataType() != b.inputType {
		return modelerr.WithBlockID(modelerr.TypeMismatch, b.ID(), "Limiter bounds do not match the input type")
	}
	return nil
}

func (b *Limiter) OutputsAreDelayed() bool { return false }

func (b *Limiter) GetCompiled(info ModelInfo) (CompiledBlock, error) {
	if err := requireNoError(b.ID(), b.HasError()); err != nil {
		return nil, err
	}
	return &compiledLimiter{
		id: b.ID(), dynamic: b.dynamic(), dt: b.inputType,
		min: b.minParam.ScalarValue(), max: b.maxParam.ScalarValue(),
	}, nil
}

type compiledLimiter struct {
	id      uint64
	dynamic bool
	dt      datatype.DataType
	min, max value.Value
}

func (cc *compiledLimiter) Executor(conns *connection.Manager, vars *variable.Manager) (Executor, error) {
	n := 1
	if cc.dynamic {
		n = 3
	}
	inputs, err := ResolveInputCells(cc.id, n, conns, vars)
	if err != nil {
		return nil, err
	}
	out, err := ResolveOutputCells(cc.id, 1, vars)
	if err != nil {
		return nil, err
	}
	e := &limiterExecutor{inputs: inputs, output: out[0], dt: cc.dt}
	if !cc.dynamic {
		e.min, e.max = cc.min, cc.max
	}
	return e, nil
}

func (cc *compiledLimiter) CodegenSelf() CodeComponent {
	return CodeComponent{
		NameBase: "limiter",
		Module:   "tmdl_blocks",
		TypeName: "limiter_block<" + cc.dt.String() + ">",
		Funcs:    map[Phase]string{ResetPhase: "reset", StepPhase: "step"},
		CtorArgs: []string{cc.min.String(), cc.max.String()},
	}
}

func (cc *compiledLimiter) CodegenOther() []CodeComponent { return nil }

type limiterExecutor struct {
	inputs   []*variable.Cell
	output   *variable.Cell
	dt       datatype.DataType
	min, max value.Value

	in value.Value
}

func (e *limiterExecutor) Pull() {
	e.in = e.inputs[0].V
	if len(e.inputs) == 3 {
		e.min, e.max = e.inputs[1].V, e.inputs[2].V
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampUint(v, lo, hi uint64) uint64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (e *limiterExecutor) compute() value.Value {
	switch {
	case e.dt.IsFloat():
		if e.dt == datatype.F32 {
			return value.F32(float32(clampFloat(float64(e.in.AsF32()), float64(e.min.AsF32()), float64(e.max.AsF32()))))
		}
		return value.F64(clampFloat(e.in.AsF64(), e.min.AsF64(), e.max.AsF64()))
	case e.dt.IsSigned():
		return value.Int(e.dt, clampInt(e.in.AsInt(), e.min.AsInt(), e.max.AsInt()))
	default:
		return value.Uint(e.dt, clampUint(e.in.AsUint(), e.min.AsUint(), e.max.AsUint()))
	}
}

func (e *limiterExecutor) ResetCompute() {}
func (e *limiterExecutor) StepCompute()  {}
func (e *limiterExecutor) Push()         { e.output.V = e.compute() }
