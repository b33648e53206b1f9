package block

import (
	"testing"

	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
	"github.com/sarchlab/tmdl/variable"
)

func TestNewConstantShape(t *testing.T) {
	c := NewConstant(datatype.F64, value.F64(3.5))
	if c.NumInputs() != 0 || c.NumOutputs() != 1 {
		t.Fatalf("shape = (%d,%d), want (0,1)", c.NumInputs(), c.NumOutputs())
	}
	if err := c.SetInputType(0, datatype.F64); !modelerr.Is(err, modelerr.OutOfRange) {
		t.Fatalf("SetInputType err = %v, want OutOfRange", err)
	}
}

func TestConstantUpdateBlockConvertsValueToDtype(t *testing.T) {
	c := NewConstant(datatype.NONE, value.F64(3.5))
	if err := c.dtypeParam.SetString("I32"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	changed, err := c.UpdateBlock()
	if err != nil {
		t.Fatalf("UpdateBlock: %v", err)
	}
	if !changed {
		t.Fatalf("UpdateBlock() changed = false, want true")
	}
	dt, _ := c.GetOutputType(0)
	if dt != datatype.I32 {
		t.Fatalf("GetOutputType(0) = %v, want I32", dt)
	}
	if c.valueParam.ScalarValue().DataType() != datatype.I32 {
		t.Fatalf("value param type = %v, want I32", c.valueParam.ScalarValue().DataType())
	}
	if c.valueParam.ScalarValue().AsInt() != 3 {
		t.Fatalf("value param = %v, want 3 (truncated from 3.5)", c.valueParam.ScalarValue().AsInt())
	}

	changed, err = c.UpdateBlock()
	if err != nil {
		t.Fatalf("UpdateBlock (stable): %v", err)
	}
	if changed {
		t.Fatalf("UpdateBlock() changed = true on a stable call, want false")
	}
}

func TestConstantHasError(t *testing.T) {
	c := NewConstant(datatype.NONE, value.F64(1))
	if err := c.HasError(); !modelerr.Is(err, modelerr.UnsupportedType) {
		t.Fatalf("HasError() = %v, want UnsupportedType before resolution", err)
	}
	_, _ = c.UpdateBlock()
	if err := c.HasError(); !modelerr.Is(err, modelerr.UnsupportedType) {
		t.Fatalf("HasError() = %v, want UnsupportedType while dtype stays NONE", err)
	}

	c2 := NewConstant(datatype.F64, value.F64(1))
	_, _ = c2.UpdateBlock()
	if err := c2.HasError(); err != nil {
		t.Fatalf("HasError() = %v, want nil once resolved", err)
	}
}

func TestConstantExecutorAlwaysPushesItsValue(t *testing.T) {
	e := &constantExecutor{value: value.F64(42), output: variable.NewCell(value.F64(0))}
	e.Pull()
	e.ResetCompute()
	e.Push()
	if got := e.output.V.AsF64(); got != 42 {
		t.Fatalf("Push() wrote %v, want 42", got)
	}
	e.StepCompute()
	e.Push()
	if got := e.output.V.AsF64(); got != 42 {
		t.Fatalf("Push() after step wrote %v, want 42 (constant)", got)
	}
}
