// Package engineconfig collects simulation-wide knobs behind a
// chainable value-receiver Builder, mirroring the teacher's
// config.DeviceBuilder/api.DriverBuilder shape.
package engineconfig

import "github.com/sarchlab/tmdl/block"

const (
	defaultDT                 = 0.01
	defaultTypePropagationCap = 1000
)

// Config is the resolved set of simulation-wide knobs.
type Config struct {
	DT                 float64
	TypePropagationCap int
	CodegenLanguage    block.Language
}

// Builder accumulates engine-wide knobs; Build applies defaults for
// anything left unset.
type Builder struct {
	dt       float64
	capIters int
	lang     block.Language
}

// WithDT sets the step size; Build substitutes the default for a
// non-positive value.
func (b Builder) WithDT(dt float64) Builder {
	b.dt = dt
	return b
}

// WithTypePropagationCap sets Config.TypePropagationCap.
// model.Model.UpdateBlock applies its own fixed ceiling and does not
// read this value.
func (b Builder) WithTypePropagationCap(n int) Builder {
	b.capIters = n
	return b
}

// WithCodegenLanguage sets the target language for code generation.
func (b Builder) WithCodegenLanguage(lang block.Language) Builder {
	b.lang = lang
	return b
}

// Build resolves the accumulated knobs into a Config, substituting
// defaults for anything left at its zero value.
func (b Builder) Build() Config {
	dt := b.dt
	if dt <= 0 {
		dt = defaultDT
	}
	cap := b.capIters
	if cap <= 0 {
		cap = defaultTypePropagationCap
	}
	return Config{DT: dt, TypePropagationCap: cap, CodegenLanguage: b.lang}
}
