package dictionary_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tmdl/dictionary"
	"github.com/sarchlab/tmdl/identifier"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
)

var _ = Describe("DataDictionary", func() {
	It("binds, looks up, and removes values by identifier", func() {
		d := dictionary.New("params")
		gain := identifier.MustNew("gain")

		_, ok := d.Get(gain)
		Expect(ok).To(BeFalse())

		d.Add(gain, value.F64(2.5))
		v, ok := d.Get(gain)
		Expect(ok).To(BeTrue())
		Expect(v.AsF64()).To(Equal(2.5))

		d.Remove(gain)
		_, ok = d.Get(gain)
		Expect(ok).To(BeFalse())
	})

	It("overwrites an existing binding", func() {
		d := dictionary.New("params")
		gain := identifier.MustNew("gain")
		d.Add(gain, value.F64(1))
		d.Add(gain, value.F64(9))
		v, _ := d.Get(gain)
		Expect(v.AsF64()).To(Equal(9.0))
	})

	It("enumerates bound names in sorted order", func() {
		d := dictionary.New("params")
		d.Add(identifier.MustNew("zeta"), value.F64(1))
		d.Add(identifier.MustNew("alpha"), value.F64(2))
		Expect(d.Names()).To(Equal([]string{"alpha", "zeta"}))
	})

	It("fails to Save without an associated path", func() {
		d := dictionary.New("params")
		err := d.Save()
		Expect(modelerr.Is(err, modelerr.IoError)).To(BeTrue())
	})

	It("round-trips through SaveTo/Load", func() {
		d := dictionary.New("params")
		d.Add(identifier.MustNew("gain"), value.F64(2.5))
		d.Add(identifier.MustNew("enabled"), value.Bool(true))

		path := filepath.Join(GinkgoT().TempDir(), "dict.json")
		Expect(d.SaveTo(path)).To(Succeed())

		p, ok := d.Path()
		Expect(ok).To(BeTrue())
		Expect(p).To(Equal(path))

		loaded, err := dictionary.Load("params", path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Name()).To(Equal("params"))

		gain, ok := loaded.Get(identifier.MustNew("gain"))
		Expect(ok).To(BeTrue())
		Expect(gain.AsF64()).To(Equal(2.5))

		enabled, ok := loaded.Get(identifier.MustNew("enabled"))
		Expect(ok).To(BeTrue())
		Expect(enabled.AsBool()).To(BeTrue())
	})

	It("fails to load a missing file", func() {
		_, err := dictionary.Load("params", filepath.Join(GinkgoT().TempDir(), "missing.json"))
		Expect(err).To(HaveOccurred())
	})
})
