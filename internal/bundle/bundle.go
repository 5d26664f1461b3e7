// Package bundle reads and writes .kiteb files: one gob-serialized
// ast.Unit framed by a magic number and a format version byte.
package bundle

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/typesystem"
)

func init() {
	// Register every concrete node type that travels behind one of the
	// AST interfaces (Declaration, Statement, Expression, Pattern, Type).
	gob.Register(&ast.TypeDeclaration{})
	gob.Register(&ast.InterfaceDeclaration{})
	gob.Register(&ast.ImplementationDeclaration{})
	gob.Register(&ast.FunctionDeclaration{})

	gob.Register(&ast.LetStatement{})
	gob.Register(&ast.AssignStatement{})
	gob.Register(&ast.ReturnStatement{})
	gob.Register(&ast.ExpressionStatement{})

	gob.Register(&ast.Identifier{})
	gob.Register(&ast.IntegerLiteral{})
	gob.Register(&ast.FloatLiteral{})
	gob.Register(&ast.BooleanLiteral{})
	gob.Register(&ast.StringLiteral{})
	gob.Register(&ast.UnitLiteral{})
	gob.Register(&ast.ArrayLiteral{})
	gob.Register(&ast.RecordLiteral{})
	gob.Register(&ast.CallExpression{})
	gob.Register(&ast.MemberExpression{})
	gob.Register(&ast.IndexExpression{})
	gob.Register(&ast.InfixExpression{})
	gob.Register(&ast.PrefixExpression{})
	gob.Register(&ast.BlockExpression{})
	gob.Register(&ast.IfExpression{})
	gob.Register(&ast.MatchExpression{})
	gob.Register(&ast.FunctionLiteral{})
	gob.Register(&ast.TypeTestExpression{})

	gob.Register(&ast.WildcardPattern{})
	gob.Register(&ast.IdentifierPattern{})
	gob.Register(&ast.LiteralPattern{})
	gob.Register(&ast.ConstructorPattern{})
	gob.Register(&ast.RecordPattern{})

	gob.Register(&ast.NamedType{})
	gob.Register(&ast.ArrayType{})
	gob.Register(&ast.RecordType{})
	gob.Register(&ast.FunctionType{})
	gob.Register(&ast.UnionType{})

	// TypeParam.Kind is an interface; higher-kinded parameters carry
	// arrow kinds through it.
	gob.Register(typesystem.KStar{})
	gob.Register(typesystem.KArrow{})
}

// formatVersion constants
const (
	formatVersionV1 byte = 0x01 // gob-encoded ast.Unit
)

// Serialize converts a unit to binary format.
// Format:
// - Magic number (4 bytes): "KITB"
// - Version (1 byte): 0x01
// - Gob-encoded ast.Unit data
func Serialize(unit *ast.Unit) ([]byte, error) {
	if err := Validate(unit); err != nil {
		return nil, fmt.Errorf("refusing to serialize: %w", err)
	}

	buf := new(bytes.Buffer)

	// Magic number
	buf.Write([]byte{0x4B, 0x49, 0x54, 0x42}) // "KITB"

	// Version
	buf.WriteByte(formatVersionV1)

	enc := gob.NewEncoder(buf)
	if err := enc.Encode(unit); err != nil {
		return nil, fmt.Errorf("unit gob encoding failed: %w", err)
	}

	return buf.Bytes(), nil
}

// Deserialize reads .kiteb data back into a unit.
func Deserialize(data []byte) (*ast.Unit, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("bundle data too short")
	}

	// Check magic number
	if data[0] != 0x4B || data[1] != 0x49 || data[2] != 0x54 || data[3] != 0x42 {
		return nil, fmt.Errorf("invalid magic number, expected KITB")
	}

	version := data[4]
	payload := data[5:]

	switch version {
	case formatVersionV1:
		dec := gob.NewDecoder(bytes.NewReader(payload))
		var unit ast.Unit
		if err := dec.Decode(&unit); err != nil {
			return nil, fmt.Errorf("unit gob decoding failed: %w", err)
		}
		if err := Validate(&unit); err != nil {
			return nil, fmt.Errorf("unit validation failed: %w", err)
		}
		return &unit, nil

	default:
		return nil, fmt.Errorf(
			"unsupported bundle version: %d (this build reads version %d; rebuild the bundle with a matching kitec)",
			version, formatVersionV1)
	}
}

// Validate checks the structural integrity of a unit before writing or
// after reading. Declarations may be empty; a unit name may not, since
// specialized symbol ids are derived from it.
func Validate(unit *ast.Unit) error {
	if unit == nil {
		return fmt.Errorf("nil unit")
	}
	if unit.Name == "" {
		return fmt.Errorf("unit has no name")
	}
	for i, d := range unit.Declarations {
		if d == nil {
			return fmt.Errorf("unit %s: declaration %d is nil", unit.Name, i)
		}
	}
	return nil
}
