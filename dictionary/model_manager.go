package dictionary

import (
	"path/filepath"
	"sort"

	"github.com/sarchlab/tmdl/library"
	"github.com/sarchlab/tmdl/model"
	"github.com/sarchlab/tmdl/modelerr"
)

// ModelManager is the process-wide registry (§4.12): block libraries
// (seeded with the standard library and an initially-empty model
// library for user-defined sub-models) plus a set of named
// DataDictionaries. It also memoizes LoadModel by absolute path, per
// the reference implementation's model_manager.cpp, so repeatedly
// opening the same file does not re-parse or re-resolve it.
type ModelManager struct {
	libs     *library.Manager
	modelLib *library.MapLibrary

	dicts map[string]*DataDictionary

	loaded map[string]*model.Model
}

// NewModelManager constructs a ModelManager with the standard library
// and an empty "models" library already registered.
func NewModelManager() *ModelManager {
	libs := library.NewManager()
	stdlib := library.NewStandardLibrary()
	modelLib := library.NewMapLibrary("models")

	// Registration cannot fail here: both names are freshly constructed
	// and libs starts empty.
	_ = libs.RegisterLibrary(stdlib)
	_ = libs.RegisterLibrary(modelLib)

	return &ModelManager{
		libs:     libs,
		modelLib: modelLib,
		dicts:    make(map[string]*DataDictionary),
		loaded:   make(map[string]*model.Model),
	}
}

// Libraries returns the underlying LibraryManager.
func (mm *ModelManager) Libraries() *library.Manager { return mm.libs }

// ModelLibrary returns the library that user-defined model blocks
// register themselves into.
func (mm *ModelManager) ModelLibrary() *library.MapLibrary { return mm.modelLib }

// RegisterDictionary adds d, failing with Duplicate if its name is
// already registered.
func (mm *ModelManager) RegisterDictionary(d *DataDictionary) error {
	if _, ok := mm.dicts[d.Name()]; ok {
		return modelerr.New(modelerr.Duplicate, "dictionary %q already registered", d.Name())
	}
	mm.dicts[d.Name()] = d
	return nil
}

// DeregisterDictionary removes the dictionary registered under name,
// failing with NotFound if absent.
func (mm *ModelManager) DeregisterDictionary(name string) error {
	if _, ok := mm.dicts[name]; !ok {
		return modelerr.New(modelerr.NotFound, "dictionary %q is not registered", name)
	}
	delete(mm.dicts, name)
	return nil
}

// Dictionary returns the dictionary registered under name, failing
// with NotFound if absent.
func (mm *ModelManager) Dictionary(name string) (*DataDictionary, error) {
	d, ok := mm.dicts[name]
	if !ok {
		return nil, modelerr.New(modelerr.NotFound, "dictionary %q is not registered", name)
	}
	return d, nil
}

// DictionaryNames returns every registered dictionary name, sorted.
func (mm *ModelManager) DictionaryNames() []string {
	names := make([]string, 0, len(mm.dicts))
	for n := range mm.dicts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadModel loads the model file at path, resolving blocks against
// mm.Libraries(). A second call for the same (absolute) path returns
// the model already loaded instead of re-parsing the file.
func (mm *ModelManager) LoadModel(path string) (*model.Model, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, modelerr.New(modelerr.IoError, "resolve path %s: %s", path, err)
	}
	if m, ok := mm.loaded[abs]; ok {
		return m, nil
	}

	m, err := model.LoadModel(path, mm.libs)
	if err != nil {
		return nil, err
	}
	mm.loaded[abs] = m
	return m, nil
}

// Forget evicts path from the load memo, so the next LoadModel call
// re-reads it from disk.
func (mm *ModelManager) Forget(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	delete(mm.loaded, abs)
}
