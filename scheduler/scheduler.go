// Package scheduler implements the compile-order pass (§4.9): allocate
// a VariableManager cell for every block output, determine a
// topological execution order honoring delayed outputs, and bind each
// block's CompiledBlock to a runtime Executor.
//
// The ordering idiom — repeatedly pick a block whose dependencies are
// already scheduled, fail when no block is ready — is the same
// progress-loop shape as the teacher's verify/funcsim.go readiness
// loop (`canExecuteOp`/`executeOp`/progress flag), adapted from
// per-operation readiness to per-block, non-delayed-edge readiness.
package scheduler

import (
	"sort"

	"github.com/sarchlab/tmdl/block"
	"github.com/sarchlab/tmdl/connection"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/value"
	"github.com/sarchlab/tmdl/variable"
)

// Compiled is the product of a compile pass: the variable manager
// backing every block output cell, the execution order, and each
// block's bound Executor in that order.
type Compiled struct {
	Vars      *variable.Manager
	Order     []uint64
	Executors []block.Executor
}

// Reset runs every executor's reset phase in order.
func (c *Compiled) Reset() {
	for _, e := range c.Executors {
		block.RunReset(e)
	}
}

// Step runs every executor's step phase in order.
func (c *Compiled) Step() {
	for _, e := range c.Executors {
		block.RunStep(e)
	}
}

// Compile allocates cells, schedules blocksByID (keyed by id) into a
// dependency-respecting order seeded by inputIDs, and binds each
// block's compiled Executor.
func Compile(blocksByID map[uint64]block.Block, inputIDs []uint64, conns *connection.Manager, info block.ModelInfo) (*Compiled, error) {
	vars := variable.NewManager()

	ids := sortedIDs(blocksByID)
	for _, id := range ids {
		b := blocksByID[id]
		for port := 0; port < b.NumOutputs(); port++ {
			dt, err := b.GetOutputType(port)
			if err != nil {
				return nil, err
			}
			v, err := value.Default(dt)
			if err != nil {
				return nil, err
			}
			if err := vars.Add(variable.ID{BlockID: id, Port: port}, variable.NewCell(v)); err != nil {
				return nil, err
			}
		}
	}

	order, err := scheduleOrder(blocksByID, ids, inputIDs, conns)
	if err != nil {
		return nil, err
	}

	executors := make([]block.Executor, len(order))
	for i, id := range order {
		b := blocksByID[id]
		compiled, err := b.GetCompiled(info)
		if err != nil {
			return nil, err
		}
		ex, err := compiled.Executor(conns, vars)
		if err != nil {
			return nil, err
		}
		executors[i] = ex
	}

	return &Compiled{Vars: vars, Order: order, Executors: executors}, nil
}

func sortedIDs(blocksByID map[uint64]block.Block) []uint64 {
	ids := make([]uint64, 0, len(blocksByID))
	for id := range blocksByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func scheduleOrder(blocksByID map[uint64]block.Block, allIDs []uint64, inputIDs []uint64, conns *connection.Manager) ([]uint64, error) {
	scheduled := make(map[uint64]bool, len(allIDs))
	order := make([]uint64, 0, len(allIDs))

	for _, id := range inputIDs {
		if scheduled[id] {
			continue
		}
		order = append(order, id)
		scheduled[id] = true
	}

	remaining := make(map[uint64]bool, len(allIDs))
	for _, id := range allIDs {
		if !scheduled[id] {
			remaining[id] = true
		}
	}

	for len(remaining) > 0 {
		readyIDs := make([]uint64, 0)
		for id := range remaining {
			if blockReady(blocksByID, conns, id, scheduled) {
				readyIDs = append(readyIDs, id)
			}
		}
		if len(readyIDs) == 0 {
			return nil, modelerr.New(modelerr.UnresolvableCycle,
				"%d block(s) form a cycle with no delayed edge to break it", len(remaining))
		}
		sort.Slice(readyIDs, func(i, j int) bool { return readyIDs[i] < readyIDs[j] })
		for _, id := range readyIDs {
			order = append(order, id)
			scheduled[id] = true
			delete(remaining, id)
		}
	}

	return order, nil
}

// blockReady reports whether every non-delayed input port of id has a
// driver already in scheduled. A delayed driver (source block's
// OutputsAreDelayed() true) never blocks readiness.
func blockReady(blocksByID map[uint64]block.Block, conns *connection.Manager, id uint64, scheduled map[uint64]bool) bool {
	b := blocksByID[id]
	for port := 0; port < b.NumInputs(); port++ {
		c, err := conns.ConnectionTo(id, port)
		if err != nil {
			return false
		}
		src, ok := blocksByID[c.FromID]
		if !ok {
			return false
		}
		if src.OutputsAreDelayed() {
			continue
		}
		if !scheduled[c.FromID] {
			return false
		}
	}
	return true
}
