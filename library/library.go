// Package library implements the Library/LibraryManager block-name
// registry (§4.7): a named factory for blocks, resolved either
// fully-qualified ("lib::block") or by bare-name search across every
// registered library in registration order.
package library

import (
	"sort"
	"strings"

	"github.com/sarchlab/tmdl/block"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
)

// Factory constructs a fresh Block instance.
type Factory func() block.Block

// Library is a named, sorted-enumerable set of block factories.
type Library interface {
	Name() string
	HasBlock(name string) bool
	BlockNames() []string
	CreateBlock(name string) (block.Block, error)
	TryCreateBlock(name string) (block.Block, bool)
}

// MapLibrary is the concrete Library backing both the standard library
// and any model library: a name plus a map of factories.
type MapLibrary struct {
	name     string
	block_fn map[string]Factory
}

// NewMapLibrary constructs an empty MapLibrary under name.
func NewMapLibrary(name string) *MapLibrary {
	return &MapLibrary{name: name, block_fn: make(map[string]Factory)}
}

// Register adds or replaces the factory for name.
func (l *MapLibrary) Register(name string, fn Factory) { l.block_fn[name] = fn }

func (l *MapLibrary) Name() string { return l.name }

func (l *MapLibrary) HasBlock(name string) bool {
	_, ok := l.block_fn[name]
	return ok
}

func (l *MapLibrary) BlockNames() []string {
	names := make([]string, 0, len(l.block_fn))
	for n := range l.block_fn {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (l *MapLibrary) CreateBlock(name string) (block.Block, error) {
	fn, ok := l.block_fn[name]
	if !ok {
		return nil, modelerr.New(modelerr.UnknownBlock, "library %q has no block %q", l.name, name)
	}
	return fn(), nil
}

func (l *MapLibrary) TryCreateBlock(name string) (block.Block, bool) {
	fn, ok := l.block_fn[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// NewStandardLibrary constructs the built-in block library, named
// "stdlib" and registering every block variant under the exact
// literal names used by the engine's reference implementation
// (stdlib.cpp's block_map), plus "delay"/"derivative"/"switch"/"atan2"
// supplemented from the newer blocks/*.cpp get_name() overrides.
func NewStandardLibrary() *MapLibrary {
	l := NewMapLibrary("stdlib")

	l.Register("input", func() block.Block { return block.NewInputPort(datatype.F64) })
	l.Register("output", func() block.Block { return block.NewOutputPort() })

	l.Register("add", func() block.Block { return block.NewArithmetic(block.ADD) })
	l.Register("sub", func() block.Block { return block.NewArithmetic(block.SUB) })
	l.Register("mul", func() block.Block { return block.NewArithmetic(block.MUL) })
	l.Register("div", func() block.Block { return block.NewArithmetic(block.DIV) })

	l.Register("==", func() block.Block { return block.NewRelational(block.EQ) })
	l.Register("!=", func() block.Block { return block.NewRelational(block.NEQ) })
	l.Register("<", func() block.Block { return block.NewRelational(block.LT) })
	l.Register("<=", func() block.Block { return block.NewRelational(block.LEQ) })
	l.Register(">", func() block.Block { return block.NewRelational(block.GT) })
	l.Register(">=", func() block.Block { return block.NewRelational(block.GEQ) })

	l.Register("sin", func() block.Block { return block.NewTrig(block.SIN) })
	l.Register("cos", func() block.Block { return block.NewTrig(block.COS) })
	l.Register("atan2", func() block.Block { return block.NewTrig(block.ATAN2) })

	l.Register("clock", func() block.Block { return block.NewClock() })
	l.Register("integrator", func() block.Block { return block.NewIntegrator() })
	l.Register("derivative", func() block.Block { return block.NewDerivative() })
	l.Register("delay", func() block.Block { return block.NewDelay() })
	l.Register("switch", func() block.Block { return block.NewSwitch() })
	l.Register("limiter", func() block.Block {
		return block.NewLimiter(value.F64(-1), value.F64(1))
	})
	l.Register("constant", func() block.Block {
		return block.NewConstant(datatype.F64, value.F64(0))
	})

	return l
}

// Manager is the process-wide registry of named libraries (§4.7). It
// is not thread-safe; concurrent access must be guarded by the
// embedder per §5.
type Manager struct {
	order []string
	byName map[string]Library
}

// NewManager constructs an empty LibraryManager.
func NewManager() *Manager {
	return &Manager{byName: make(map[string]Library)}
}

// RegisterLibrary adds lib, failing with Duplicate if its name is
// already registered.
func (m *Manager) RegisterLibrary(lib Library) error {
	if _, ok := m.byName[lib.Name()]; ok {
		return modelerr.New(modelerr.Duplicate, "library %q already registered", lib.Name())
	}
	m.byName[lib.Name()] = lib
	m.order = append(m.order, lib.Name())
	return nil
}

// DeregisterLibrary removes the library registered under name, failing
// with NotFound if absent.
func (m *Manager) DeregisterLibrary(name string) error {
	if _, ok := m.byName[name]; !ok {
		return modelerr.New(modelerr.NotFound, "library %q is not registered", name)
	}
	delete(m.byName, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// GetLibrary returns the library registered under name.
func (m *Manager) GetLibrary(name string) (Library, error) {
	lib, ok := m.byName[name]
	if !ok {
		return nil, modelerr.New(modelerr.NotFound, "library %q is not registered", name)
	}
	return lib, nil
}

// LibraryNames returns every registered library name in registration
// order.
func (m *Manager) LibraryNames() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Resolve creates a block from a name that is either fully-qualified
// ("lib::block") — binding directly to that library — or bare,
// searching every registered library in registration order and
// returning the first hit.
func (m *Manager) Resolve(name string) (block.Block, error) {
	if lib, blockName, ok := strings.Cut(name, "::"); ok {
		l, err := m.GetLibrary(lib)
		if err != nil {
			return nil, err
		}
		return l.CreateBlock(blockName)
	}

	for _, libName := range m.order {
		if b, ok := m.byName[libName].TryCreateBlock(name); ok {
			return b, nil
		}
	}
	return nil, modelerr.New(modelerr.UnknownBlock, "no registered library provides block %q", name)
}
