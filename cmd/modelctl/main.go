// Command modelctl is a thin driver over the model engine: load a
// model file, dump its structure, run it for a number of steps, or
// generate its C++ source components. Grounded on the teacher's
// samples/*/main.go shape (build via a builder, run, print, exit via
// atexit).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/tmdl/block"
	"github.com/sarchlab/tmdl/codegen"
	"github.com/sarchlab/tmdl/compiled"
	"github.com/sarchlab/tmdl/dictionary"
	"github.com/sarchlab/tmdl/internal/engineconfig"
	"github.com/sarchlab/tmdl/internal/render"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		atexit.Exit(1)
		return
	}

	mm := dictionary.NewModelManager()

	switch os.Args[1] {
	case "dump":
		runDump(mm, os.Args[2:])
	case "run":
		runRun(mm, os.Args[2:])
	case "codegen":
		runCodegen(mm, os.Args[2:])
	default:
		usage()
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: modelctl <dump|run|codegen> <model.json> [flags]")
}

func die(err error) {
	fmt.Fprintln(os.Stderr, err)
	atexit.Exit(1)
}

func runDump(mm *dictionary.ModelManager, args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		usage()
		atexit.Exit(1)
		return
	}

	m, err := mm.LoadModel(fs.Arg(0))
	if err != nil {
		die(err)
		return
	}
	if err := m.UpdateBlock(); err != nil {
		die(err)
		return
	}

	fmt.Println(render.DumpBlocks(m))
	fmt.Println(render.DumpConnections(m))
	fmt.Println(render.DumpErrors(m))
}

func runRun(mm *dictionary.ModelManager, args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	steps := fs.Int("steps", 10, "number of steps to run")
	dtFlag := fs.Float64("dt", 0, "override the model's step size (0 keeps the model file's own dt)")
	fs.Parse(args)
	if fs.NArg() < 1 {
		usage()
		atexit.Exit(1)
		return
	}

	m, err := mm.LoadModel(fs.Arg(0))
	if err != nil {
		die(err)
		return
	}
	if err := m.UpdateBlock(); err != nil {
		die(err)
		return
	}
	if err := m.HasError(); err != nil {
		die(err)
		return
	}

	execIface, err := m.GetExecutionInterface()
	if err != nil {
		die(err)
		return
	}

	cfg := engineconfig.Builder{}.WithDT(*dtFlag).Build()
	dt := m.Dt()
	if *dtFlag > 0 {
		dt = cfg.DT
	}

	state := compiled.New(execIface, sim.VTimeInSec(dt))
	state.Init()
	for i := 0; i < *steps; i++ {
		state.Step()
	}

	fmt.Printf("ran %d steps, t=%g s\n", state.Iterations(), float64(state.CurrentTime()))
}

func runCodegen(mm *dictionary.ModelManager, args []string) {
	fs := flag.NewFlagSet("codegen", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 2 {
		usage()
		atexit.Exit(1)
		return
	}

	m, err := mm.LoadModel(fs.Arg(0))
	if err != nil {
		die(err)
		return
	}
	if err := m.UpdateBlock(); err != nil {
		die(err)
		return
	}
	if err := m.HasError(); err != nil {
		die(err)
		return
	}

	info := block.ModelInfo{DT: m.Dt(), Language: block.CPP}
	compiledBlocks, err := m.CompiledBlocks(info)
	if err != nil {
		die(err)
		return
	}

	gen := codegen.NewGenerator(block.CPP)
	if err := gen.WriteInFolder(fs.Arg(1), compiledBlocks); err != nil {
		die(err)
		return
	}

	fmt.Printf("wrote generated sources for %q to %s\n", m.Name(), fs.Arg(1))
}
