// Package codegen implements CodeGenerator.write_in_folder (§4.10):
// collect every compiled block's CodeComponent plus its referenced
// sub-components, deduplicate by NameBase (first occurrence wins,
// virtuals dropped), and render one declaration file per surviving
// component plus a definition file for each component that has
// functions.
package codegen

import (
	"os"
	"path/filepath"
	"text/template"

	"github.com/sarchlab/tmdl/block"
	"github.com/sarchlab/tmdl/modelerr"
)

const declTemplate = `// Generated declaration for {{.NameBase}}.
#pragma once

{{range .Includes}}#include "{{.}}"
{{end}}
struct {{.TypeName}} {
{{- range .InputInterface}}
    {{.Type}} {{.Name}};
{{- end}}
{{- range .OutputInterface}}
    {{.Type}} {{.Name}};
{{- end}}

    {{.TypeName}}({{range $i, $a := .CtorArgs}}{{if $i}}, {{end}}decltype({{$a}}) arg{{$i}}{{end}});
{{- range $phase, $fn := .Funcs}}
    void {{$fn}}();
{{- end}}
};
`

const defTemplate = `// Generated definition for {{.NameBase}}.
#include "{{.NameBase}}.hpp"

{{range $phase, $fn := .Funcs}}
void {{$.TypeName}}::{{$fn}}() {
    // {{$.Module}}::{{$.TypeName}}
}
{{end}}
`

var (
	declTmpl = template.Must(template.New("decl").Parse(declTemplate))
	defTmpl  = template.Must(template.New("def").Parse(defTemplate))
)

// Generator renders CodeComponents for a single target Language.
type Generator struct {
	Language block.Language
}

// NewGenerator constructs a Generator targeting lang.
func NewGenerator(lang block.Language) *Generator {
	return &Generator{Language: lang}
}

// WriteInFolder collects every compiled block's own CodeComponent plus
// its referenced sub-components, deduplicates by NameBase, and writes
// a declaration and (if it has any phase function) definition file
// per surviving component into path.
func (g *Generator) WriteInFolder(path string, compiled []block.CompiledBlock) error {
	if g.Language != block.CPP {
		return modelerr.New(modelerr.UnsupportedLanguage, "codegen target %d is not supported", int(g.Language))
	}

	components := Collect(compiled)

	if err := os.MkdirAll(path, 0o755); err != nil {
		return modelerr.New(modelerr.IoError, "create output folder %s: %s", path, err)
	}

	for _, c := range components {
		if err := writeComponent(path, c); err != nil {
			return err
		}
	}
	return nil
}

// Collect gathers every compiled block's CodegenSelf plus its
// CodegenOther sub-components, in encounter order, dropping virtuals
// and keeping only the first component seen for each NameBase.
func Collect(compiled []block.CompiledBlock) []block.CodeComponent {
	seen := make(map[string]bool)
	var out []block.CodeComponent

	add := func(c block.CodeComponent) {
		if c.IsVirtual {
			return
		}
		if seen[c.NameBase] {
			return
		}
		seen[c.NameBase] = true
		out = append(out, c)
	}

	for _, cb := range compiled {
		add(cb.CodegenSelf())
		for _, other := range cb.CodegenOther() {
			add(other)
		}
	}
	return out
}

func writeComponent(dir string, c block.CodeComponent) error {
	declPath := filepath.Join(dir, c.NameBase+".hpp")
	f, err := os.Create(declPath)
	if err != nil {
		return modelerr.New(modelerr.IoError, "create %s: %s", declPath, err)
	}
	err = declTmpl.Execute(f, c)
	closeErr := f.Close()
	if err != nil {
		return modelerr.New(modelerr.IoError, "render %s: %s", declPath, err)
	}
	if closeErr != nil {
		return modelerr.New(modelerr.IoError, "close %s: %s", declPath, closeErr)
	}

	if len(c.Funcs) == 0 {
		return nil
	}

	defPath := filepath.Join(dir, c.NameBase+".cpp")
	f2, err := os.Create(defPath)
	if err != nil {
		return modelerr.New(modelerr.IoError, "create %s: %s", defPath, err)
	}
	err = defTmpl.Execute(f2, c)
	closeErr = f2.Close()
	if err != nil {
		return modelerr.New(modelerr.IoError, "render %s: %s", defPath, err)
	}
	if closeErr != nil {
		return modelerr.New(modelerr.IoError, "close %s: %s", defPath, closeErr)
	}
	return nil
}
