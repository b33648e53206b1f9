// Package dictionary implements DataDictionary and ModelManager
// (§4.12): a named map of identifiers to Values with save/load in the
// §6 model-file JSON dialect, and a process-wide registry of block
// libraries plus named dictionaries.
package dictionary

import (
	"sort"

	"github.com/sarchlab/tmdl/datatype"
	"github.com/sarchlab/tmdl/identifier"
	"github.com/sarchlab/tmdl/modelerr"
	"github.com/sarchlab/tmdl/modelfile"
	"github.com/sarchlab/tmdl/value"
)

// DataDictionary maps identifiers to Values, with optional on-disk
// persistence.
type DataDictionary struct {
	name string
	path string
	hasPath bool

	values map[string]value.Value
}

// New constructs an empty DataDictionary under name.
func New(name string) *DataDictionary {
	return &DataDictionary{name: name, values: make(map[string]value.Value)}
}

// Name returns the dictionary's registry name.
func (d *DataDictionary) Name() string { return d.name }

// Path returns the file the dictionary was last loaded from or saved
// to, if any.
func (d *DataDictionary) Path() (string, bool) { return d.path, d.hasPath }

// Add binds id to v, overwriting any existing value for the same id.
func (d *DataDictionary) Add(id identifier.Identifier, v value.Value) {
	d.values[id.String()] = v
}

// Get returns the value bound to id, or (zero-Value, false) on miss
// ("null on miss" per §4.12).
func (d *DataDictionary) Get(id identifier.Identifier) (value.Value, bool) {
	v, ok := d.values[id.String()]
	return v, ok
}

// Remove unbinds id, if present.
func (d *DataDictionary) Remove(id identifier.Identifier) {
	delete(d.values, id.String())
}

// Names enumerates every bound identifier in sorted order.
func (d *DataDictionary) Names() []string {
	names := make([]string, 0, len(d.values))
	for n := range d.values {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Save writes the dictionary back to the path it was last loaded from
// or saved to, failing with IoError if none is set.
func (d *DataDictionary) Save() error {
	if !d.hasPath {
		return modelerr.New(modelerr.IoError, "dictionary %q has no associated file path", d.name)
	}
	return d.SaveTo(d.path)
}

// SaveTo serializes the dictionary to path in the §6.1 JSON dialect.
func (d *DataDictionary) SaveTo(path string) error {
	mf := modelfile.Dictionary{}
	mf.Dict.Parameters = make(map[string]modelfile.Parameter, len(d.values))
	for name, v := range d.values {
		mf.Dict.Parameters[name] = modelfile.Parameter{Value: v.String(), DType: v.DataType().String()}
	}

	if err := modelfile.WriteDictionaryFile(path, mf); err != nil {
		return err
	}
	d.path = path
	d.hasPath = true
	return nil
}

// Load deserializes the dictionary file at path under the given
// registry name.
func Load(name, path string) (*DataDictionary, error) {
	mf, err := modelfile.ReadDictionaryFile(path)
	if err != nil {
		return nil, err
	}

	d := New(name)
	d.path = path
	d.hasPath = true

	for key, p := range mf.Dict.Parameters {
		id, err := identifier.New(key)
		if err != nil {
			return nil, err
		}
		dt, ok := datatype.Parse(p.DType)
		if !ok {
			return nil, modelerr.New(modelerr.ParseError, "unknown data type name %q for dictionary key %q", p.DType, key)
		}
		v, err := value.ParseString(p.Value, dt)
		if err != nil {
			return nil, err
		}
		d.values[id.String()] = v
	}

	return d, nil
}
