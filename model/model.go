// Package model implements the Model container (§3.7, §4.8): blocks,
// connections, the type-propagation fixpoint, validity checks, the
// compile/codegen entry points, and save/load. The convergence-bound
// fixpoint loop reuses the teacher's verify/funcsim.go progress-loop
// idiom ("for step... { progress := false; ...; if !progress { break
// } }"), and AddBlock mirrors the teacher's
// config.DeviceBuilder.Build shape of "own a collection, mutate it via
// methods".
package model

import (
	"sort"
	"strconv"

	"github.com/sarchlab/tmdl/block"
	"github.com/sarchlab/tmdl/codegen"
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/identifier"
	"github.com/sarchlab/tmdl/library"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/modelfile"
	"github.com/sarchlab/tmdl/parameter"
	"github.com/sarchlab/tmdl/scheduler"
)

// Model is a container of blocks, connections, and metadata (§3.7).
type Model struct {
	name        string
	description string
	dt          float64
	path        string
	hasPath     bool

	blocks  map[uint64]block.Block
	conns   *connection.Manager
	inputs  []uint64
	outputs []uint64
}

// New constructs an empty Model.
func New(name, description string, dt float64) *Model {
	return &Model{
		name:        name,
		description: description,
		dt:          dt,
		blocks:      make(map[uint64]block.Block),
		conns:       connection.NewManager(),
	}
}

// Name returns the model's name.
func (m *Model) Name() string { return m.name }

// SetName changes the model's name.
func (m *Model) SetName(name string) { m.name = name }

// Description returns the model's free-text description.
func (m *Model) Description() string { return m.description }

// SetDescription changes the model's free-text description.
func (m *Model) SetDescription(d string) { m.description = d }

// Dt returns the model's step size.
func (m *Model) Dt() float64 { return m.dt }

// SetDt changes the model's step size.
func (m *Model) SetDt(dt float64) { m.dt = dt }

// Path returns the file path the model was last saved to or loaded
// from, if any.
func (m *Model) Path() (string, bool) { return m.path, m.hasPath }

// Blocks returns every block keyed by id. The caller must not mutate
// the returned map.
func (m *Model) Blocks() map[uint64]block.Block { return m.blocks }

// Block looks up a block by id.
func (m *Model) Block(id uint64) (block.Block, bool) {
	b, ok := m.blocks[id]
	return b, ok
}

// Connections returns the model's ConnectionManager.
func (m *Model) Connections() *connection.Manager { return m.conns }

// Inputs returns the ids of input-port blocks in port order.
func (m *Model) Inputs() []uint64 { return m.inputs }

// Outputs returns the ids of output-port blocks in port order.
func (m *Model) Outputs() []uint64 { return m.outputs }

func (m *Model) smallestFreeID() uint64 {
	for id := uint64(0); ; id++ {
		if _, ok := m.blocks[id]; !ok {
			return id
		}
	}
}

// AddBlock assigns b the smallest free id, stores it, and classifies
// it into Inputs/Outputs if it is a port block.
func (m *Model) AddBlock(b block.Block) uint64 {
	id := m.smallestFreeID()
	b.SetID(id)
	m.blocks[id] = b

	switch b.(type) {
	case *block.InputPort:
		m.inputs = append(m.inputs, id)
	case *block.OutputPort:
		m.outputs = append(m.outputs, id)
	}
	return id
}

// RemoveBlock removes the block, its port classification, and every
// incident connection.
func (m *Model) RemoveBlock(id uint64) error {
	if _, ok := m.blocks[id]; !ok {
		return modelerr.New(modelerr.NotFound, "no block with id %d", id)
	}
	delete(m.blocks, id)
	m.conns.RemoveBlock(id)
	m.inputs = removeID(m.inputs, id)
	m.outputs = removeID(m.outputs, id)
	return nil
}

func removeID(ids []uint64, id uint64) []uint64 {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// AddConnection validates that both endpoints exist and their port
// indices are in range, then delegates to the ConnectionManager.
func (m *Model) AddConnection(c *connection.Connection) error {
	from, ok := m.blocks[c.FromID]
	if !ok {
		return modelerr.New(modelerr.NotFound, "no block with id %d", c.FromID)
	}
	to, ok := m.blocks[c.ToID]
	if !ok {
		return modelerr.New(modelerr.NotFound, "no block with id %d", c.ToID)
	}
	if c.FromPort < 0 || c.FromPort >= from.NumOutputs() {
		return modelerr.WithBlockID(modelerr.OutOfRange, c.FromID, "output port %d out of range", c.FromPort)
	}
	if c.ToPort < 0 || c.ToPort >= to.NumInputs() {
		return modelerr.WithBlockID(modelerr.OutOfRange, c.ToID, "input port %d out of range", c.ToPort)
	}
	return m.conns.Add(c)
}

// sortedIDs returns every block id in ascending order.
func (m *Model) sortedIDs() []uint64 {
	ids := make([]uint64, 0, len(m.blocks))
	for id := range m.blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// UpdateBlock runs the type-propagation fixpoint (§4.8): repeat at
// most N = len(blocks)*10 (capped at 1000) iterations, for each block
// in stable id order pushing each input connection's source type into
// set_input_type then calling update_block, stopping when no block
// reports change. Fails with TypePropagationDivergent if unconverged.
func (m *Model) UpdateBlock() error {
	ids := m.sortedIDs()

	limit := len(ids) * 10
	if limit > 1000 {
		limit = 1000
	}
	if limit == 0 {
		return nil
	}

	for iter := 0; iter < limit; iter++ {
		progress := false

		for _, id := range ids {
			b := m.blocks[id]

			for port := 0; port < b.NumInputs(); port++ {
				c, err := m.conns.ConnectionTo(id, port)
				if err != nil {
					continue
				}
				src, ok := m.blocks[c.FromID]
				if !ok {
					continue
				}
				dt, err := src.GetOutputType(c.FromPort)
				if err != nil {
					continue
				}
				if err := b.SetInputType(port, dt); err != nil {
					return err
				}
			}

			changed, err := b.UpdateBlock()
			if err != nil {
				return err
			}
			if changed {
				progress = true
			}
		}

		if !progress {
			return nil
		}
	}

	return modelerr.New(modelerr.TypePropagationDivergent,
		"type propagation did not converge within %d iterations", limit)
}

// HasError returns the first error found across every block and
// structural check, or nil.
func (m *Model) HasError() error {
	errs := m.GetAllErrors()
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

// GetAllErrors collects every block error plus unconnected input
// ports. Type agreement at each edge is checked inside the fixpoint
// (SetInputType feeds the source's declared type into the consumer)
// and surfaces through that block's own HasError.
func (m *Model) GetAllErrors() []error {
	var errs []error

	for _, id := range m.sortedIDs() {
		b := m.blocks[id]
		if err := b.HasError(); err != nil {
			errs = append(errs, err)
		}

		for port := 0; port < b.NumInputs(); port++ {
			if _, err := m.conns.ConnectionTo(id, port); err != nil {
				errs = append(errs, modelerr.WithBlockID(modelerr.Unconnected, id,
					"input port %d is not connected", port))
			}
		}
	}
	return errs
}

// CompileInfo carries the context a block's GetCompiled needs.
type CompileInfo = block.ModelInfo

// GetExecutionInterface compiles the model into a runtime-executable
// schedule (§4.9).
func (m *Model) GetExecutionInterface() (*scheduler.Compiled, error) {
	return scheduler.Compile(m.blocks, m.inputs, m.conns, block.ModelInfo{DT: m.dt, Language: block.CPP})
}

// GetCodegenComponent returns the model viewed as a single black-box
// CodeComponent, for use by a wrapping ModelBlock's own CodegenSelf.
func (m *Model) GetCodegenComponent(info block.ModelInfo) (block.CodeComponent, error) {
	in := make([]block.Field, 0, len(m.inputs))
	for i, id := range m.inputs {
		b, ok := m.blocks[id].(*block.InputPort)
		if !ok {
			continue
		}
		dt, err := b.GetOutputType(0)
		if err != nil {
			return block.CodeComponent{}, err
		}
		in = append(in, block.Field{Name: namedPort("in", i), Type: dt.String()})
	}

	out := make([]block.Field, 0, len(m.outputs))
	for i, id := range m.outputs {
		b, ok := m.blocks[id].(*block.OutputPort)
		if !ok {
			continue
		}
		out = append(out, block.Field{Name: namedPort("out", i), Type: b.InputType().String()})
	}

	return block.CodeComponent{
		NameBase:        m.name,
		Module:          "tmdl_models",
		TypeName:        "model_block<" + m.name + ">",
		InputInterface:  in,
		OutputInterface: out,
		Funcs:           map[block.Phase]string{block.ResetPhase: "reset", block.StepPhase: "step"},
	}, nil
}

func namedPort(prefix string, i int) string {
	return prefix + "_" + strconv.Itoa(i)
}

// CompiledBlocks compiles every block in id order, for feeding into
// codegen.Generator.WriteInFolder.
func (m *Model) CompiledBlocks(info block.ModelInfo) ([]block.CompiledBlock, error) {
	compiledBlocks := make([]block.CompiledBlock, 0, len(m.blocks))
	for _, id := range m.sortedIDs() {
		cb, err := m.blocks[id].GetCompiled(info)
		if err != nil {
			return nil, err
		}
		compiledBlocks = append(compiledBlocks, cb)
	}
	return compiledBlocks, nil
}

// GetAllSubComponents compiles every block and returns the
// deduplicated CodeComponent tree (§4.10).
func (m *Model) GetAllSubComponents(info block.ModelInfo) ([]block.CodeComponent, error) {
	compiledBlocks, err := m.CompiledBlocks(info)
	if err != nil {
		return nil, err
	}
	return codegen.Collect(compiledBlocks), nil
}

// SaveModel saves to the path the model was last loaded from or saved
// to, failing with IoError if none is set.
func (m *Model) SaveModel() error {
	if !m.hasPath {
		return modelerr.New(modelerr.IoError, "model has no associated file path")
	}
	return m.SaveModelTo(m.path)
}

// SaveModelTo serializes the model to path in the §6.1 JSON dialect.
func (m *Model) SaveModelTo(path string) error {
	mf := modelfile.Model{
		Name:        m.name,
		Description: m.description,
		Dt:          m.dt,
		Inputs:      append([]uint64(nil), m.inputs...),
		Outputs:     append([]uint64(nil), m.outputs...),
	}

	for _, id := range m.sortedIDs() {
		b := m.blocks[id]
		x, y := b.Location()

		params := make(map[string]modelfile.Parameter, len(b.Parameters()))
		for _, p := range b.Parameters() {
			params[p.ID().String()] = modelfile.Parameter{Value: p.GetString(), DType: paramTypeName(p)}
		}

		mf.Blocks = append(mf.Blocks, modelfile.Block{
			ID:         id,
			Library:    b.LibraryName(),
			Type:       b.TypeName(),
			Loc:        modelfile.Loc{X: x, Y: y},
			Inverted:   b.Inverted(),
			Parameters: params,
		})
	}

	for _, c := range m.conns.All() {
		fc := modelfile.Connection{
			FromBlock: c.FromID,
			FromPort:  uint64(c.FromPort),
			ToBlock:   c.ToID,
			ToPort:    uint64(c.ToPort),
		}
		if name, ok := c.Name(); ok {
			fc.Name = name.String()
		}
		mf.Connections = append(mf.Connections, fc)
	}

	if err := modelfile.WriteFile(path, mf); err != nil {
		return err
	}
	m.path = path
	m.hasPath = true
	return nil
}

func paramTypeName(p *parameter.Parameter) string {
	switch p.Kind() {
	case parameter.ScalarKind:
		return p.ScalarValue().DataType().String()
	case parameter.DataTypeKind:
		return "NONE"
	case parameter.IdentifierKind:
		return "NONE"
	default:
		return p.ArrayValue().DataType().String()
	}
}

// LoadModel deserializes the model file at path, resolving each
// block's type via libs.
func LoadModel(path string, libs *library.Manager) (*Model, error) {
	mf, err := modelfile.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m := New(mf.Name, mf.Description, mf.Dt)
	m.path = path
	m.hasPath = true

	for _, fb := range mf.Blocks {
		b, err := libs.Resolve(fb.Library + "::" + fb.Type)
		if err != nil {
			return nil, err
		}
		b.SetID(fb.ID)
		b.SetLocation(fb.Loc.X, fb.Loc.Y)
		b.SetInverted(fb.Inverted)

		for _, p := range b.Parameters() {
			fp, ok := fb.Parameters[p.ID().String()]
			if !ok {
				continue
			}
			if p.Kind() == parameter.ScalarKind {
				if dt, ok := datatype.Parse(fp.DType); ok {
					p.ConvertType(dt)
				}
			}
			if err := p.SetString(fp.Value); err != nil {
				return nil, err
			}
		}

		m.blocks[fb.ID] = b
		switch b.(type) {
		case *block.InputPort:
			m.inputs = append(m.inputs, fb.ID)
		case *block.OutputPort:
			m.outputs = append(m.outputs, fb.ID)
		}
	}
	m.inputs = mf.Inputs
	m.outputs = mf.Outputs

	for _, fc := range mf.Connections {
		c := connection.New(fc.FromBlock, int(fc.FromPort), fc.ToBlock, int(fc.ToPort))
		if fc.Name != "" {
			id, err := identifier.New(fc.Name)
			if err != nil {
				return nil, err
			}
			c.SetName(id)
		}
		if err := m.conns.Add(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

