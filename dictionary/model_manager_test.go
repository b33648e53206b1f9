package dictionary_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tmdl/block"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/dictionary"
	"github.com/sarchlab/tmdl/model"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
)

var _ = Describe("ModelManager", func() {
	It("seeds the standard library and an empty models library", func() {
		mm := dictionary.NewModelManager()
		Expect(mm.Libraries().LibraryNames()).To(Equal([]string{"stdlib", "models"}))
		Expect(mm.ModelLibrary().Name()).To(Equal("models"))
		Expect(mm.ModelLibrary().BlockNames()).To(BeEmpty())
	})

	It("registers and retrieves named dictionaries", func() {
		mm := dictionary.NewModelManager()
		d := dictionary.New("params")
		Expect(mm.RegisterDictionary(d)).To(Succeed())

		got, err := mm.Dictionary("params")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeIdenticalTo(d))

		Expect(mm.DictionaryNames()).To(Equal([]string{"params"}))
	})

	It("fails to register a duplicate dictionary name", func() {
		mm := dictionary.NewModelManager()
		Expect(mm.RegisterDictionary(dictionary.New("params"))).To(Succeed())
		err := mm.RegisterDictionary(dictionary.New("params"))
		Expect(modelerr.Is(err, modelerr.Duplicate)).To(BeTrue())
	})

	It("fails to look up or deregister an unregistered dictionary", func() {
		mm := dictionary.NewModelManager()
		_, err := mm.Dictionary("ghost")
		Expect(modelerr.Is(err, modelerr.NotFound)).To(BeTrue())

		err = mm.DeregisterDictionary("ghost")
		Expect(modelerr.Is(err, modelerr.NotFound)).To(BeTrue())
	})

	It("deregisters a previously registered dictionary", func() {
		mm := dictionary.NewModelManager()
		Expect(mm.RegisterDictionary(dictionary.New("params"))).To(Succeed())
		Expect(mm.DeregisterDictionary("params")).To(Succeed())
		_, err := mm.Dictionary("params")
		Expect(modelerr.Is(err, modelerr.NotFound)).To(BeTrue())
	})

	It("memoizes LoadModel by absolute path until Forget is called", func() {
		mm := dictionary.NewModelManager()

		m := model.New("single", "", 0.1)
		m.AddBlock(block.NewConstant(datatype.F64, value.F64(1)))

		path := filepath.Join(GinkgoT().TempDir(), "single.json")
		Expect(m.SaveModelTo(path)).To(Succeed())

		first, err := mm.LoadModel(path)
		Expect(err).NotTo(HaveOccurred())

		second, err := mm.LoadModel(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(BeIdenticalTo(first))

		mm.Forget(path)
		third, err := mm.LoadModel(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(third).NotTo(BeIdenticalTo(first))
	})
})
