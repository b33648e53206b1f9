package compiled_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tmdl/block"
	"github.com/sarchlab/tmdl/compiled"
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/scheduler"
	"github.com/sarchlab/tmdl/value"
	"github.com/sarchlab/tmdl/variable"
)

type countingExecutor struct {
	resets, steps int
}

func (e *countingExecutor) Pull()         {}
func (e *countingExecutor) ResetCompute() { e.resets++ }
func (e *countingExecutor) StepCompute()  { e.steps++ }
func (e *countingExecutor) Push()         {}

func newCompiledFixture() (*scheduler.Compiled, *countingExecutor, *variable.Cell) {
	vars := variable.NewManager()
	cell := variable.NewCell(value.F64(0))
	id := variable.ID{BlockID: 1, Port: 0}
	_ = vars.Add(id, cell)
	exec := &countingExecutor{}
	return &scheduler.Compiled{Vars: vars, Order: []uint64{1}, Executors: []block.Executor{exec}}, exec, cell
}

var _ = Describe("ExecutionState", func() {
	It("runs reset and counts iterations across steps", func() {
		c, exec, _ := newCompiledFixture()
		state := compiled.New(c, sim.VTimeInSec(0.1))
		state.Init()
		Expect(exec.resets).To(Equal(1))
		Expect(state.Iterations()).To(BeEquivalentTo(0))

		state.Step()
		state.Step()
		Expect(exec.steps).To(Equal(2))
		Expect(state.Iterations()).To(BeEquivalentTo(2))
		Expect(float64(state.CurrentTime())).To(BeNumerically("~", 0.2, 1e-9))
	})

	It("resets the iteration count on Reset", func() {
		c, _, _ := newCompiledFixture()
		state := compiled.New(c, sim.VTimeInSec(1))
		state.Step()
		state.Step()
		Expect(state.Iterations()).To(BeEquivalentTo(2))
		state.Reset()
		Expect(state.Iterations()).To(BeEquivalentTo(0))
	})

	It("computes Frequency as the reciprocal of dt", func() {
		c, _, _ := newCompiledFixture()
		state := compiled.New(c, sim.VTimeInSec(0.01))
		Expect(float64(state.Frequency())).To(BeNumerically("~", 100, 1e-9))
	})

	It("stamps a distinct RunID per ExecutionState", func() {
		c1, _, _ := newCompiledFixture()
		c2, _, _ := newCompiledFixture()
		s1 := compiled.New(c1, sim.VTimeInSec(1))
		s2 := compiled.New(c2, sim.VTimeInSec(1))
		Expect(s1.RunID()).NotTo(Equal(s2.RunID()))
	})

	It("binds and looks up variables by name", func() {
		c, _, cell := newCompiledFixture()
		state := compiled.New(c, sim.VTimeInSec(1))

		Expect(state.AddNameToVariable("x", variable.ID{BlockID: 1, Port: 0})).To(Succeed())
		got, err := state.VariableForName("x")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeIdenticalTo(cell))

		Expect(state.VariableNames()).To(Equal([]string{"x"}))

		v, err := state.ValueForName("x")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.AsF64()).To(Equal(0.0))
	})

	It("fails to bind a duplicate name", func() {
		c, _, _ := newCompiledFixture()
		state := compiled.New(c, sim.VTimeInSec(1))
		Expect(state.AddNameToVariable("x", variable.ID{BlockID: 1, Port: 0})).To(Succeed())
		err := state.AddNameToVariable("x", variable.ID{BlockID: 1, Port: 0})
		Expect(err).To(HaveOccurred())
	})

	It("fails VariableForName on an unbound name", func() {
		c, _, _ := newCompiledFixture()
		state := compiled.New(c, sim.VTimeInSec(1))
		_, err := state.VariableForName("ghost")
		Expect(err).To(HaveOccurred())
	})

	It("binds a name via a connection's source port", func() {
		c, _, cell := newCompiledFixture()
		state := compiled.New(c, sim.VTimeInSec(1))
		conn := connection.New(1, 0, 2, 0)
		Expect(state.AddNameToVariableForConnection("sig", conn)).To(Succeed())
		got, err := state.VariableForName("sig")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeIdenticalTo(cell))
	})
})
