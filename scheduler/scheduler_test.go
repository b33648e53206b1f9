package scheduler_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tmdl/block"
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/scheduler"
	"github.com/sarchlab/tmdl/value"
	"github.com/sarchlab/tmdl/variable"
)

func withID(id uint64, b block.Block) block.Block {
	b.SetID(id)
	return b
}

var _ = Describe("Compile", func() {
	var conns *connection.Manager

	BeforeEach(func() {
		conns = connection.NewManager()
	})

	It("schedules a simple acyclic chain in dependency order", func() {
		in := withID(1, block.NewInputPort(datatype.F64))
		c := withID(2, block.NewConstant(datatype.F64, value.F64(1)))
		add := withID(3, block.NewArithmetic(block.ADD))
		out := withID(4, block.NewOutputPort())

		Expect(add.SetInputType(0, datatype.F64)).To(Succeed())
		Expect(add.SetInputType(1, datatype.F64)).To(Succeed())
		_, err := add.UpdateBlock()
		Expect(err).NotTo(HaveOccurred())
		_, err = c.UpdateBlock()
		Expect(err).NotTo(HaveOccurred())
		Expect(out.SetInputType(0, datatype.F64)).To(Succeed())

		Expect(conns.Add(connection.New(in.ID(), 0, add.ID(), 0))).To(Succeed())
		Expect(conns.Add(connection.New(c.ID(), 0, add.ID(), 1))).To(Succeed())
		Expect(conns.Add(connection.New(add.ID(), 0, out.ID(), 0))).To(Succeed())

		blocks := map[uint64]block.Block{in.ID(): in, c.ID(): c, add.ID(): add, out.ID(): out}
		compiled, err := scheduler.Compile(blocks, []uint64{in.ID()}, conns, block.ModelInfo{DT: 0.1})
		Expect(err).NotTo(HaveOccurred())
		Expect(compiled.Order).To(HaveLen(4))

		pos := make(map[uint64]int, len(compiled.Order))
		for i, id := range compiled.Order {
			pos[id] = i
		}
		Expect(pos[in.ID()]).To(BeNumerically("<", pos[add.ID()]))
		Expect(pos[c.ID()]).To(BeNumerically("<", pos[add.ID()]))
		Expect(pos[add.ID()]).To(BeNumerically("<", pos[out.ID()]))

		cell, err := compiled.Vars.Get(variable.ID{BlockID: add.ID(), Port: 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(cell).NotTo(BeNil())
	})

	It("fails with UnresolvableCycle when a cycle has no delayed edge", func() {
		a := withID(1, block.NewArithmetic(block.ADD))
		b := withID(2, block.NewArithmetic(block.ADD))
		Expect(conns.Add(connection.New(a.ID(), 0, b.ID(), 0))).To(Succeed())
		Expect(conns.Add(connection.New(b.ID(), 0, a.ID(), 0))).To(Succeed())

		blocks := map[uint64]block.Block{a.ID(): a, b.ID(): b}
		_, err := scheduler.Compile(blocks, nil, conns, block.ModelInfo{})
		Expect(err).To(HaveOccurred())
	})

	It("breaks a cycle through a block whose outputs are delayed", func() {
		delay := withID(1, block.NewDelay())
		add := withID(2, block.NewArithmetic(block.ADD))
		flagSrc := withID(3, block.NewConstant(datatype.BOOL, value.Bool(false)))
		rstSrc := withID(4, block.NewConstant(datatype.F64, value.F64(0)))
		constSrc := withID(5, block.NewConstant(datatype.F64, value.F64(1)))

		Expect(delay.SetInputType(0, datatype.F64)).To(Succeed())
		Expect(add.SetInputType(0, datatype.F64)).To(Succeed())
		Expect(add.SetInputType(1, datatype.F64)).To(Succeed())
		_, err := add.UpdateBlock()
		Expect(err).NotTo(HaveOccurred())
		_, err = flagSrc.UpdateBlock()
		Expect(err).NotTo(HaveOccurred())
		_, err = rstSrc.UpdateBlock()
		Expect(err).NotTo(HaveOccurred())
		_, err = constSrc.UpdateBlock()
		Expect(err).NotTo(HaveOccurred())

		// delay's output feeds back into add, and add feeds delay's value
		// input: a cycle, broken because delay's outputs are delayed.
		Expect(conns.Add(connection.New(delay.ID(), 0, add.ID(), 0))).To(Succeed())
		Expect(conns.Add(connection.New(constSrc.ID(), 0, add.ID(), 1))).To(Succeed())
		Expect(conns.Add(connection.New(add.ID(), 0, delay.ID(), 0))).To(Succeed())
		Expect(conns.Add(connection.New(flagSrc.ID(), 0, delay.ID(), 1))).To(Succeed())
		Expect(conns.Add(connection.New(rstSrc.ID(), 0, delay.ID(), 2))).To(Succeed())

		blocks := map[uint64]block.Block{
			delay.ID(): delay, add.ID(): add,
			flagSrc.ID(): flagSrc, rstSrc.ID(): rstSrc, constSrc.ID(): constSrc,
		}
		compiled, err := scheduler.Compile(blocks, nil, conns, block.ModelInfo{DT: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(compiled.Order).To(HaveLen(5))
	})

	It("runs reset and step across every executor in order", func() {
		clk := withID(1, block.NewClock())
		out := withID(2, block.NewOutputPort())
		Expect(out.SetInputType(0, datatype.F64)).To(Succeed())
		Expect(conns.Add(connection.New(clk.ID(), 0, out.ID(), 0))).To(Succeed())

		blocks := map[uint64]block.Block{clk.ID(): clk, out.ID(): out}
		compiled, err := scheduler.Compile(blocks, nil, conns, block.ModelInfo{DT: 1})
		Expect(err).NotTo(HaveOccurred())

		compiled.Reset()
		cell, err := compiled.Vars.Get(variable.ID{BlockID: clk.ID(), Port: 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(cell.V.AsF64()).To(Equal(0.0))

		compiled.Step()
		Expect(cell.V.AsF64()).To(Equal(1.0))
	})
})
