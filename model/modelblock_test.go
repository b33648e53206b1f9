package model_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tmdl/block"
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/model"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
	"github.com/sarchlab/tmdl/variable"
)

// innerDoubler builds a sub-model that doubles its single input:
// in -> add(in, in) -> out.
func innerDoubler() *model.Model {
	inner := model.New("doubler", "doubles its input", 0.1)
	inID := inner.AddBlock(block.NewInputPort(datatype.F64))
	addID := inner.AddBlock(block.NewArithmetic(block.ADD))
	outID := inner.AddBlock(block.NewOutputPort())

	Expect(inner.AddConnection(connection.New(inID, 0, addID, 0))).To(Succeed())
	Expect(inner.AddConnection(connection.New(inID, 0, addID, 1))).To(Succeed())
	Expect(inner.AddConnection(connection.New(addID, 0, outID, 0))).To(Succeed())
	return inner
}

var _ = Describe("ModelBlock", func() {
	It("forwards NumInputs/NumOutputs from the wrapped model's ports", func() {
		mb := model.NewModelBlock("doubler", innerDoubler())
		Expect(mb.NumInputs()).To(Equal(1))
		Expect(mb.NumOutputs()).To(Equal(1))
	})

	It("propagates an outer input type into the inner InputPort", func() {
		mb := model.NewModelBlock("doubler", innerDoubler())
		Expect(mb.SetInputType(0, datatype.F64)).To(Succeed())

		_, err := mb.UpdateBlock()
		Expect(err).NotTo(HaveOccurred())
		Expect(mb.HasError()).NotTo(HaveOccurred())

		dt, err := mb.GetOutputType(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(dt).To(Equal(datatype.F64))
	})

	It("rejects an out-of-range input port", func() {
		mb := model.NewModelBlock("doubler", innerDoubler())
		err := mb.SetInputType(5, datatype.F64)
		Expect(modelerr.Is(err, modelerr.OutOfRange)).To(BeTrue())
	})

	It("rejects an out-of-range output port", func() {
		mb := model.NewModelBlock("doubler", innerDoubler())
		_, err := mb.GetOutputType(5)
		Expect(modelerr.Is(err, modelerr.OutOfRange)).To(BeTrue())
	})

	It("reports UpdateBlock changed=true only while the inner type is still settling", func() {
		mb := model.NewModelBlock("doubler", innerDoubler())
		Expect(mb.SetInputType(0, datatype.F64)).To(Succeed())

		changed, err := mb.UpdateBlock()
		Expect(err).NotTo(HaveOccurred())
		Expect(changed).To(BeTrue())

		changed, err = mb.UpdateBlock()
		Expect(err).NotTo(HaveOccurred())
		Expect(changed).To(BeFalse())
	})

	It("reports HasError when the inner model has an unresolved block", func() {
		mb := model.NewModelBlock("doubler", innerDoubler())
		Expect(modelerr.Is(mb.HasError(), modelerr.CompileError)).To(BeTrue())
	})

	It("always reports OutputsAreDelayed as false", func() {
		mb := model.NewModelBlock("doubler", innerDoubler())
		Expect(mb.OutputsAreDelayed()).To(BeFalse())
	})

	It("compiles and executes as a single opaque unit", func() {
		mb := model.NewModelBlock("doubler", innerDoubler())
		mb.SetID(7)
		Expect(mb.SetInputType(0, datatype.F64)).To(Succeed())
		_, err := mb.UpdateBlock()
		Expect(err).NotTo(HaveOccurred())

		compiledBlock, err := mb.GetCompiled(block.ModelInfo{DT: 0.1, Language: block.CPP})
		Expect(err).NotTo(HaveOccurred())

		const driverID uint64 = 100

		conns := connection.NewManager()
		Expect(conns.Add(connection.New(driverID, 0, mb.ID(), 0))).To(Succeed())

		vars := variable.NewManager()
		driverCell := variable.NewCell(value.F64(3))
		Expect(vars.Add(variable.ID{BlockID: driverID, Port: 0}, driverCell)).To(Succeed())
		outCell := variable.NewCell(value.F64(0))
		Expect(vars.Add(variable.ID{BlockID: mb.ID(), Port: 0}, outCell)).To(Succeed())

		exec, err := compiledBlock.Executor(conns, vars)
		Expect(err).NotTo(HaveOccurred())

		block.RunReset(exec)
		block.RunStep(exec)

		Expect(outCell.V.AsF64()).To(Equal(6.0))
	})

	It("fails to compile while the inner model still has an error", func() {
		mb := model.NewModelBlock("doubler", innerDoubler())
		_, err := mb.GetCompiled(block.ModelInfo{DT: 0.1})
		Expect(modelerr.Is(err, modelerr.CompileError)).To(BeTrue())
	})
})
