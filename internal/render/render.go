// Package render formats a Model's blocks, connections, and errors as
// go-pretty tables for terminal display, grounded on the teacher's
// core/util.go PrintState (table.NewWriter/AppendHeader/AppendRow/
// Render usage).
package render

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/tmdl/model"
)

func sortedBlockIDs(m *model.Model) []uint64 {
	blocks := m.Blocks()
	ids := make([]uint64, 0, len(blocks))
	for id := range blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DumpBlocks renders one row per block: id, library/type, port counts,
// and its own HasError message (if any).
func DumpBlocks(m *model.Model) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Blocks: %s", m.Name()))
	t.AppendHeader(table.Row{"ID", "Library", "Type", "Inputs", "Outputs", "Error"})

	blocks := m.Blocks()
	for _, id := range sortedBlockIDs(m) {
		b := blocks[id]
		errStr := ""
		if err := b.HasError(); err != nil {
			errStr = err.Error()
		}
		t.AppendRow(table.Row{id, b.LibraryName(), b.TypeName(), b.NumInputs(), b.NumOutputs(), errStr})
	}

	return t.Render()
}

// DumpConnections renders one row per connection: endpoints and
// optional display name.
func DumpConnections(m *model.Model) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Connections: %s", m.Name()))
	t.AppendHeader(table.Row{"From", "FromPort", "To", "ToPort", "Name"})

	for _, c := range m.Connections().All() {
		name := ""
		if n, ok := c.Name(); ok {
			name = n.String()
		}
		t.AppendRow(table.Row{c.FromID, c.FromPort, c.ToID, c.ToPort, name})
	}

	return t.Render()
}

// DumpErrors renders every error GetAllErrors reports, or a single
// "none" row when the model is clean.
func DumpErrors(m *model.Model) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Errors: %s", m.Name()))
	t.AppendHeader(table.Row{"#", "Error"})

	errs := m.GetAllErrors()
	if len(errs) == 0 {
		t.AppendRow(table.Row{"-", "none"})
		return t.Render()
	}
	for i, err := range errs {
		t.AppendRow(table.Row{i + 1, err.Error()})
	}

	return t.Render()
}
