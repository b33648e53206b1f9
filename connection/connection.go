// Package connection implements directed edges between block ports
// (§3.6) and the ConnectionManager that enforces single-driver inputs
// (§4.4).
package connection

import (
	"github.com/sarchlab/tmdl/identifier"
	"github.com/sarchlab/tmdl/modelerr"
)

// Connection is a directed edge from (FromID, FromPort) to (ToID, ToPort),
// with an optional display name.
type Connection struct {
	FromID   uint64
	FromPort int
	ToID     uint64
	ToPort   int

	hasName bool
	name    identifier.Identifier
}

// New constructs a Connection with no display name.
func New(fromID uint64, fromPort int, toID uint64, toPort int) *Connection {
	return &Connection{FromID: fromID, FromPort: fromPort, ToID: toID, ToPort: toPort}
}

// Name returns the connection's display name and whether one is set.
func (c *Connection) Name() (identifier.Identifier, bool) { return c.name, c.hasName }

// SetName attaches a display name to the connection.
func (c *Connection) SetName(name identifier.Identifier) {
	c.name = name
	c.hasName = true
}

// ClearName removes the connection's display name.
func (c *Connection) ClearName() {
	c.name = identifier.Identifier{}
	c.hasName = false
}

type toKey struct {
	id   uint64
	port int
}

// Manager owns a set of Connections and enforces that inputs are
// single-driver: at most one connection may target a given
// (ToID, ToPort) pair.
type Manager struct {
	order []*Connection
	byTo  map[toKey]*Connection
}

// NewManager constructs an empty ConnectionManager.
func NewManager() *Manager {
	return &Manager{byTo: make(map[toKey]*Connection)}
}

// Add registers c, failing with NullInput if c is nil or
// DuplicateConnection if a connection to the same (ToID, ToPort) exists.
func (m *Manager) Add(c *Connection) error {
	if c == nil {
		return modelerr.New(modelerr.NullInput, "connection must not be nil")
	}
	key := toKey{c.ToID, c.ToPort}
	if _, ok := m.byTo[key]; ok {
		return modelerr.New(modelerr.DuplicateConnection,
			"input (%d,%d) already has a driver", c.ToID, c.ToPort)
	}
	m.byTo[key] = c
	m.order = append(m.order, c)
	return nil
}

// RemoveBlock removes every connection touching blockID (as either
// endpoint), in a single linear sweep, preserving the relative order of
// the survivors.
func (m *Manager) RemoveBlock(blockID uint64) {
	kept := m.order[:0:0]
	for _, c := range m.order {
		if c.FromID == blockID || c.ToID == blockID {
			delete(m.byTo, toKey{c.ToID, c.ToPort})
			continue
		}
		kept = append(kept, c)
	}
	m.order = kept
}

// Remove deletes the connection targeting (toID, toPort), failing with
// NotFound if absent.
func (m *Manager) Remove(toID uint64, toPort int) error {
	key := toKey{toID, toPort}
	if _, ok := m.byTo[key]; !ok {
		return modelerr.New(modelerr.NotFound, "no connection to (%d,%d)", toID, toPort)
	}
	delete(m.byTo, key)
	for i, c := range m.order {
		if c.ToID == toID && c.ToPort == toPort {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// ConnectionTo returns the unique connection targeting (toID, toPort),
// failing with NotFound if absent.
func (m *Manager) ConnectionTo(toID uint64, toPort int) (*Connection, error) {
	c, ok := m.byTo[toKey{toID, toPort}]
	if !ok {
		return nil, modelerr.New(modelerr.NotFound, "no connection to (%d,%d)", toID, toPort)
	}
	return c, nil
}

// All returns every connection in insertion order. The returned slice
// must not be mutated by the caller.
func (m *Manager) All() []*Connection {
	return m.order
}

// Len returns the number of registered connections.
func (m *Manager) Len() int { return len(m.order) }
