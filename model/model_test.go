package model_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tmdl/block"
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/library"
	"github.com/sarchlab/tmdl/model"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
)

// wireChain builds in -> add(in, const) -> out and returns the ids.
func wireChain(m *model.Model) (inID, constID, addID, outID uint64) {
	inID = m.AddBlock(block.NewInputPort(datatype.NONE))
	constID = m.AddBlock(block.NewConstant(datatype.F64, value.F64(1)))
	addID = m.AddBlock(block.NewArithmetic(block.ADD))
	outID = m.AddBlock(block.NewOutputPort())

	Expect(m.AddConnection(connection.New(inID, 0, addID, 0))).To(Succeed())
	Expect(m.AddConnection(connection.New(constID, 0, addID, 1))).To(Succeed())
	Expect(m.AddConnection(connection.New(addID, 0, outID, 0))).To(Succeed())
	return
}

var _ = Describe("Model", func() {
	var m *model.Model

	BeforeEach(func() {
		m = model.New("demo", "a demo model", 0.1)
	})

	Describe("AddBlock and RemoveBlock", func() {
		It("assigns the smallest free id and classifies port blocks", func() {
			in := m.AddBlock(block.NewInputPort(datatype.F64))
			Expect(in).To(BeEquivalentTo(0))
			Expect(m.Inputs()).To(ConsistOf(in))

			out := m.AddBlock(block.NewOutputPort())
			Expect(out).To(BeEquivalentTo(1))
			Expect(m.Outputs()).To(ConsistOf(out))
		})

		It("reuses a freed id", func() {
			a := m.AddBlock(block.NewArithmetic(block.ADD))
			b := m.AddBlock(block.NewArithmetic(block.ADD))
			Expect(m.RemoveBlock(a)).To(Succeed())
			c := m.AddBlock(block.NewArithmetic(block.ADD))
			Expect(c).To(Equal(a))
			_, ok := m.Block(b)
			Expect(ok).To(BeTrue())
		})

		It("fails to remove a missing block", func() {
			err := m.RemoveBlock(99)
			Expect(modelerr.Is(err, modelerr.NotFound)).To(BeTrue())
		})

		It("sweeps incident connections when a block is removed", func() {
			inID, _, addID, _ := wireChain(m)
			Expect(m.RemoveBlock(inID)).To(Succeed())
			_, err := m.Connections().ConnectionTo(addID, 0)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("AddConnection", func() {
		It("rejects a connection to a missing block", func() {
			a := m.AddBlock(block.NewArithmetic(block.ADD))
			err := m.AddConnection(connection.New(a, 0, 999, 0))
			Expect(modelerr.Is(err, modelerr.NotFound)).To(BeTrue())
		})

		It("rejects an out-of-range port", func() {
			a := m.AddBlock(block.NewArithmetic(block.ADD))
			b := m.AddBlock(block.NewArithmetic(block.ADD))
			err := m.AddConnection(connection.New(a, 5, b, 0))
			Expect(modelerr.Is(err, modelerr.OutOfRange)).To(BeTrue())
		})
	})

	Describe("UpdateBlock", func() {
		It("propagates types to a fixpoint across a chain", func() {
			inID, constID, addID, outID := wireChain(m)
			in, _ := m.Block(inID)
			inPort := in.(*block.InputPort)
			inPort.SetDataType(datatype.F64)

			Expect(m.UpdateBlock()).To(Succeed())
			Expect(m.HasError()).NotTo(HaveOccurred())

			add, _ := m.Block(addID)
			dt, err := add.GetOutputType(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(dt).To(Equal(datatype.F64))

			out, _ := m.Block(outID)
			Expect(out.(*block.OutputPort).InputType()).To(Equal(datatype.F64))

			_ = constID
		})

		It("reports unresolvable type disagreement via HasError after convergence", func() {
			a := m.AddBlock(block.NewConstant(datatype.BOOL, value.Bool(true)))
			b := m.AddBlock(block.NewConstant(datatype.F64, value.F64(1)))
			add := m.AddBlock(block.NewArithmetic(block.ADD))
			Expect(m.AddConnection(connection.New(a, 0, add, 0))).To(Succeed())
			Expect(m.AddConnection(connection.New(b, 0, add, 1))).To(Succeed())

			Expect(m.UpdateBlock()).To(Succeed())
			errs := m.GetAllErrors()
			Expect(errs).NotTo(BeEmpty())
		})
	})

	Describe("GetAllErrors", func() {
		It("reports unconnected input ports", func() {
			m.AddBlock(block.NewArithmetic(block.ADD))
			errs := m.GetAllErrors()
			found := false
			for _, e := range errs {
				if modelerr.Is(e, modelerr.Unconnected) {
					found = true
				}
			}
			Expect(found).To(BeTrue())
		})
	})

	Describe("GetExecutionInterface", func() {
		It("compiles a fully-resolved model into a runnable schedule", func() {
			inID, _, _, outID := wireChain(m)
			in, _ := m.Block(inID)
			in.(*block.InputPort).SetDataType(datatype.F64)
			Expect(m.UpdateBlock()).To(Succeed())

			compiled, err := m.GetExecutionInterface()
			Expect(err).NotTo(HaveOccurred())
			Expect(compiled.Order).To(HaveLen(4))
			_ = outID
		})

		It("fails with UnresolvableCycle on an unbroken feedback loop", func() {
			a := m.AddBlock(block.NewArithmetic(block.ADD))
			b := m.AddBlock(block.NewArithmetic(block.ADD))
			Expect(m.AddConnection(connection.New(a, 0, b, 0))).To(Succeed())
			Expect(m.AddConnection(connection.New(b, 0, a, 0))).To(Succeed())

			_, err := m.GetExecutionInterface()
			Expect(err).To(HaveOccurred())
		})

		It("schedules a cycle broken by a Delay block", func() {
			delay := m.AddBlock(block.NewDelay())
			add := m.AddBlock(block.NewArithmetic(block.ADD))
			flagSrc := m.AddBlock(block.NewConstant(datatype.BOOL, value.Bool(false)))
			rstSrc := m.AddBlock(block.NewConstant(datatype.F64, value.F64(0)))
			constSrc := m.AddBlock(block.NewConstant(datatype.F64, value.F64(1)))

			Expect(m.AddConnection(connection.New(delay, 0, add, 0))).To(Succeed())
			Expect(m.AddConnection(connection.New(constSrc, 0, add, 1))).To(Succeed())
			Expect(m.AddConnection(connection.New(add, 0, delay, 0))).To(Succeed())
			Expect(m.AddConnection(connection.New(flagSrc, 0, delay, 1))).To(Succeed())
			Expect(m.AddConnection(connection.New(rstSrc, 0, delay, 2))).To(Succeed())

			Expect(m.UpdateBlock()).To(Succeed())
			Expect(m.HasError()).NotTo(HaveOccurred())

			compiled, err := m.GetExecutionInterface()
			Expect(err).NotTo(HaveOccurred())
			Expect(compiled.Order).To(HaveLen(5))
		})
	})

	Describe("GetCodegenComponent and CompiledBlocks", func() {
		It("describes the model's I/O interface and compiles every block", func() {
			inID, _, _, _ := wireChain(m)
			in, _ := m.Block(inID)
			in.(*block.InputPort).SetDataType(datatype.F64)
			Expect(m.UpdateBlock()).To(Succeed())

			info := block.ModelInfo{DT: m.Dt(), Language: block.CPP}
			comp, err := m.GetCodegenComponent(info)
			Expect(err).NotTo(HaveOccurred())
			Expect(comp.InputInterface).To(HaveLen(1))
			Expect(comp.OutputInterface).To(HaveLen(1))

			compiledBlocks, err := m.CompiledBlocks(info)
			Expect(err).NotTo(HaveOccurred())
			Expect(compiledBlocks).To(HaveLen(4))

			sub, err := m.GetAllSubComponents(info)
			Expect(err).NotTo(HaveOccurred())
			Expect(sub).NotTo(BeEmpty())
		})
	})

	Describe("SaveModelTo and LoadModel", func() {
		It("round-trips a model through the on-disk dialect", func() {
			inID, _, _, _ := wireChain(m)
			in, _ := m.Block(inID)
			in.(*block.InputPort).SetDataType(datatype.F64)
			Expect(m.UpdateBlock()).To(Succeed())

			path := filepath.Join(GinkgoT().TempDir(), "demo.json")
			Expect(m.SaveModelTo(path)).To(Succeed())

			libs := library.NewManager()
			Expect(libs.RegisterLibrary(library.NewStandardLibrary())).To(Succeed())

			loaded, err := model.LoadModel(path, libs)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Name()).To(Equal(m.Name()))
			Expect(loaded.Dt()).To(Equal(m.Dt()))
			Expect(loaded.Blocks()).To(HaveLen(len(m.Blocks())))
			Expect(loaded.Inputs()).To(Equal(m.Inputs()))
			Expect(loaded.Outputs()).To(Equal(m.Outputs()))

			p, ok := loaded.Path()
			Expect(ok).To(BeTrue())
			Expect(p).To(Equal(path))
		})

		It("fails to save without an associated path", func() {
			err := m.SaveModel()
			Expect(modelerr.Is(err, modelerr.IoError)).To(BeTrue())
		})
	})
})
