package library_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tmdl/block"
	"github.com/sarchlab/tmdl/library"
)

var _ = Describe("MapLibrary", func() {
	var lib *library.MapLibrary

	BeforeEach(func() {
		lib = library.NewMapLibrary("mine")
		lib.Register("thing", func() block.Block { return block.NewClock() })
	})

	It("reports its name", func() {
		Expect(lib.Name()).To(Equal("mine"))
	})

	It("reports registered blocks via HasBlock/BlockNames", func() {
		Expect(lib.HasBlock("thing")).To(BeTrue())
		Expect(lib.HasBlock("missing")).To(BeFalse())
		Expect(lib.BlockNames()).To(Equal([]string{"thing"}))
	})

	It("creates a fresh block instance each call", func() {
		a, err := lib.CreateBlock("thing")
		Expect(err).NotTo(HaveOccurred())
		b, err := lib.CreateBlock("thing")
		Expect(err).NotTo(HaveOccurred())
		Expect(a).NotTo(BeIdenticalTo(b))
	})

	It("fails CreateBlock for an unregistered name", func() {
		_, err := lib.CreateBlock("nope")
		Expect(err).To(HaveOccurred())
	})

	It("reports ok=false from TryCreateBlock on miss", func() {
		_, ok := lib.TryCreateBlock("nope")
		Expect(ok).To(BeFalse())
	})

	It("BlockNames is sorted", func() {
		lib.Register("aaa", func() block.Block { return block.NewClock() })
		lib.Register("zzz", func() block.Block { return block.NewClock() })
		Expect(lib.BlockNames()).To(Equal([]string{"aaa", "thing", "zzz"}))
	})
})

var _ = Describe("NewStandardLibrary", func() {
	It("registers every standard block under its literal name", func() {
		stdlib := library.NewStandardLibrary()
		names := []string{
			"input", "output", "add", "sub", "mul", "div",
			"==", "!=", "<", "<=", ">", ">=",
			"sin", "cos", "atan2",
			"clock", "integrator", "derivative", "delay", "switch", "limiter", "constant",
		}
		for _, n := range names {
			Expect(stdlib.HasBlock(n)).To(BeTrue(), "expected stdlib to register %q", n)
		}
	})

	It("names itself stdlib", func() {
		Expect(library.NewStandardLibrary().Name()).To(Equal("stdlib"))
	})
})

var _ = Describe("Manager", func() {
	var mgr *library.Manager

	BeforeEach(func() {
		mgr = library.NewManager()
	})

	It("registers and retrieves libraries by name", func() {
		lib := library.NewMapLibrary("a")
		Expect(mgr.RegisterLibrary(lib)).To(Succeed())
		got, err := mgr.GetLibrary("a")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeIdenticalTo(library.Library(lib)))
	})

	It("fails to register a duplicate library name", func() {
		Expect(mgr.RegisterLibrary(library.NewMapLibrary("a"))).To(Succeed())
		err := mgr.RegisterLibrary(library.NewMapLibrary("a"))
		Expect(err).To(HaveOccurred())
	})

	It("tracks registration order in LibraryNames", func() {
		Expect(mgr.RegisterLibrary(library.NewMapLibrary("b"))).To(Succeed())
		Expect(mgr.RegisterLibrary(library.NewMapLibrary("a"))).To(Succeed())
		Expect(mgr.LibraryNames()).To(Equal([]string{"b", "a"}))
	})

	It("deregisters a library", func() {
		Expect(mgr.RegisterLibrary(library.NewMapLibrary("a"))).To(Succeed())
		Expect(mgr.DeregisterLibrary("a")).To(Succeed())
		_, err := mgr.GetLibrary("a")
		Expect(err).To(HaveOccurred())
	})

	It("fails to deregister an unknown library", func() {
		Expect(mgr.DeregisterLibrary("ghost")).To(HaveOccurred())
	})

	Describe("Resolve", func() {
		BeforeEach(func() {
			a := library.NewMapLibrary("a")
			a.Register("thing", func() block.Block { return block.NewClock() })
			b := library.NewMapLibrary("b")
			b.Register("other", func() block.Block { return block.NewSwitch() })
			Expect(mgr.RegisterLibrary(a)).To(Succeed())
			Expect(mgr.RegisterLibrary(b)).To(Succeed())
		})

		It("resolves a fully-qualified name", func() {
			blk, err := mgr.Resolve("a::thing")
			Expect(err).NotTo(HaveOccurred())
			Expect(blk).NotTo(BeNil())
		})

		It("fails a fully-qualified name whose library does not exist", func() {
			_, err := mgr.Resolve("ghost::thing")
			Expect(err).To(HaveOccurred())
		})

		It("resolves a bare name by searching registration order", func() {
			blk, err := mgr.Resolve("other")
			Expect(err).NotTo(HaveOccurred())
			Expect(blk).NotTo(BeNil())
		})

		It("fails a bare name no library provides", func() {
			_, err := mgr.Resolve("nonexistent")
			Expect(err).To(HaveOccurred())
		})
	})
})
