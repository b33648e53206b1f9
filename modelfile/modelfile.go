// Package modelfile defines the UTF-8 JSON model-file dialect (§6.1):
// plain serializable structs plus (de)serialization helpers. It holds
// no reference to package model so that model can import it to
// implement save/load without an import cycle.
package modelfile

import (
	"encoding/json"
	"os"

	"github.com/sarchlab/tmdl/modelerr"
)

// Loc is a block's editor-only placement.
type Loc struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

// Parameter is the on-disk form of one parameter value: its rendered
// string plus the declared data-type name (§3.1 names).
type Parameter struct {
	Value string `json:"value"`
	DType string `json:"dtype"`
}

// Block is the on-disk form of one block.
type Block struct {
	ID         uint64               `json:"id"`
	Library    string               `json:"library"`
	Type       string               `json:"type"`
	Loc        Loc                  `json:"loc"`
	Inverted   bool                 `json:"inverted"`
	Parameters map[string]Parameter `json:"parameters"`
}

// Connection is the on-disk form of one connection. Name is omitted
// when the connection has no display name.
type Connection struct {
	FromBlock uint64 `json:"from_block"`
	FromPort  uint64 `json:"from_port"`
	ToBlock   uint64 `json:"to_block"`
	ToPort    uint64 `json:"to_port"`
	Name      string `json:"name,omitempty"`
}

// Model is the on-disk form of a whole model (§6.1).
type Model struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Dt          float64      `json:"dt"`
	Blocks      []Block      `json:"blocks"`
	Connections []Connection `json:"connections"`
	Inputs      []uint64     `json:"inputs"`
	Outputs     []uint64     `json:"outputs"`
}

// Dictionary is the on-disk form of a DataDictionary (§4.12, §6.1).
type Dictionary struct {
	Dict struct {
		Parameters map[string]Parameter `json:"parameters"`
	} `json:"dict"`
}

// Marshal renders m as indented JSON.
func Marshal(m Model) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, modelerr.New(modelerr.IoError, "encode model: %s", err)
	}
	return data, nil
}

// Unmarshal parses data as a Model.
func Unmarshal(data []byte) (Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return Model{}, modelerr.New(modelerr.ParseError, "decode model: %s", err)
	}
	return m, nil
}

// WriteFile writes m to path, always closing the file before
// returning (including on error paths, per §5 resource discipline).
func WriteFile(path string, m Model) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return modelerr.New(modelerr.IoError, "create %s: %s", path, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return modelerr.New(modelerr.IoError, "write %s: %s", path, err)
	}
	return nil
}

// ReadFile reads and parses the model at path.
func ReadFile(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Model{}, modelerr.New(modelerr.IoError, "read %s: %s", path, err)
	}
	m, err := Unmarshal(data)
	if err != nil {
		return Model{}, modelerr.New(modelerr.IoError, "load %s: %s", path, err)
	}
	return m, nil
}

// MarshalDictionary renders d as indented JSON.
func MarshalDictionary(d Dictionary) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, modelerr.New(modelerr.IoError, "encode dictionary: %s", err)
	}
	return data, nil
}

// UnmarshalDictionary parses data as a Dictionary.
func UnmarshalDictionary(data []byte) (Dictionary, error) {
	var d Dictionary
	if err := json.Unmarshal(data, &d); err != nil {
		return Dictionary{}, modelerr.New(modelerr.ParseError, "decode dictionary: %s", err)
	}
	return d, nil
}

// WriteDictionaryFile writes d to path.
func WriteDictionaryFile(path string, d Dictionary) error {
	data, err := MarshalDictionary(d)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return modelerr.New(modelerr.IoError, "create %s: %s", path, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return modelerr.New(modelerr.IoError, "write %s: %s", path, err)
	}
	return nil
}

// ReadDictionaryFile reads and parses the dictionary at path.
func ReadDictionaryFile(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dictionary{}, modelerr.New(modelerr.IoError, "read %s: %s", path, err)
	}
	d, err := UnmarshalDictionary(data)
	if err != nil {
		return Dictionary{}, modelerr.New(modelerr.IoError, "load %s: %s", path, err)
	}
	return d, nil
}
