// Package export reads and writes .kitex files: the msgpack-encoded
// public surface of a checked unit. A dependent unit loads the file
// and materializes its declarations into the symbol table instead of
// re-checking the library's source.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// SchemaVersion is bumped whenever the File layout changes; a reader
// refuses files written under any other version.
const SchemaVersion uint16 = 1

// File is the on-disk schema of one exported unit surface.
type File struct {
	Schema  uint16
	Unit    string
	BuildID uuid.UUID

	ADTs       []ADT
	Aliases    []Alias
	Interfaces []Interface
	Impls      []Implementation
	Functions  []Function

	// Specializations summarizes what the unit's own check already
	// materialized. Informational: nothing is re-instantiated from it.
	Specializations []Specialization
}

// ADT is one exported algebraic data type.
type ADT struct {
	Name     string
	Params   []TypeParam
	Variants []Variant
	Derives  []string
}

// Variant is one constructor of an exported ADT.
type Variant struct {
	Tag     string
	Payload []TypeExpr
}

// Alias is one exported nominal alias.
type Alias struct {
	Name string
	Type TypeExpr
}

// Interface is one exported interface declaration.
type Interface struct {
	Name    string
	Param   TypeParam
	Methods []Method
}

// Method is one interface method signature.
type Method struct {
	Name string
	Sig  TypeExpr
}

// Implementation is one exported (interface, head) registration.
type Implementation struct {
	Interface string
	Head      string
	Bindings  []Binding
}

// Binding maps one method to the function implementing it.
type Binding struct {
	Method   string
	Function string
	Builtin  bool
}

// Function is one exported unit-level function signature.
type Function struct {
	Name       string
	TypeParams []TypeParam
	Sig        TypeExpr
}

// TypeParam is one constrained type parameter. KindArity 0 is a value
// parameter (*); n > 0 is an n-ary constructor parameter.
type TypeParam struct {
	Name        string
	KindArity   uint8
	Constraints []string
}

// Specialization is one materialized instantiation of a generic
// function, recorded under the id the check assigned it.
type Specialization struct {
	ID       uuid.UUID
	Name     string
	Origin   string
	TypeArgs []TypeExpr
}

// Write serializes a File next to its unit, atomically: the payload
// lands in a temp file first and is renamed over the target.
func Write(path string, f *File) error {
	if f == nil {
		return fmt.Errorf("nil export file")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "kitex-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op once the rename lands

	enc := msgpack.NewEncoder(tmp)
	if err := enc.Encode(f); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding export %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads a .kitex file and validates its schema version.
func Load(path string) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading export %s: %w", path, err)
	}
	defer r.Close()

	var f File
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding export %s: %w", path, err)
	}
	if f.Schema != SchemaVersion {
		return nil, fmt.Errorf(
			"export %s has schema %d; this build reads schema %d (re-export the library)",
			path, f.Schema, SchemaVersion)
	}
	return &f, nil
}
