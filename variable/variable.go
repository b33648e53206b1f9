// Package variable implements the VariableManager (§3.8, §4.5): a map
// from (block-id, output-port) to a shared mutable Value cell.
package variable

import (
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
)

// ID identifies a variable cell by its producing block and output port.
type ID struct {
	BlockID uint64
	Port    int
}

// Cell is a shared mutable Value storage location. Connections and
// executors hold references to the same Cell so that writes in the
// push phase are visible wherever the cell is read.
type Cell struct {
	V value.Value
}

// NewCell allocates a cell holding v.
func NewCell(v value.Value) *Cell { return &Cell{V: v} }

// Manager maps VariableIdentifiers to shared Cells.
type Manager struct {
	cells map[ID]*Cell
}

// NewManager constructs an empty VariableManager.
func NewManager() *Manager {
	return &Manager{cells: make(map[ID]*Cell)}
}

// Add registers cell under id, failing with Duplicate if already present
// or NullInput if cell is nil.
func (m *Manager) Add(id ID, cell *Cell) error {
	if cell == nil {
		return modelerr.New(modelerr.NullInput, "cell must not be nil")
	}
	if _, ok := m.cells[id]; ok {
		return modelerr.New(modelerr.Duplicate, "variable %v already registered", id)
	}
	m.cells[id] = cell
	return nil
}

// Get returns the cell registered under id, failing with NotFound if
// absent.
func (m *Manager) Get(id ID) (*Cell, error) {
	cell, ok := m.cells[id]
	if !ok {
		return nil, modelerr.New(modelerr.NotFound, "no variable for %v", id)
	}
	return cell, nil
}

// GetForConnection returns the cell that a Connection's source port
// writes to: the connection's (FromID, FromPort) mapped to ID.
func (m *Manager) GetForConnection(c *connection.Connection) (*Cell, error) {
	return m.Get(ID{BlockID: c.FromID, Port: c.FromPort})
}

// Len returns the number of registered cells.
func (m *Manager) Len() int { return len(m.cells) }

// All returns every (ID, Cell) pair. Order is unspecified.
func (m *Manager) All() map[ID]*Cell { return m.cells }
