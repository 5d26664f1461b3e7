package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/mono"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/token"
	"github.com/kitelang/kite/internal/typesystem"
)

// libraryTable builds the table state a clean check of this library
// would leave behind:
//
//	type Option<T> = Some(T) | None derives (Eq)
//	interface Show<T> { fun show(x: T) -> String }
//	implement Show for Int { show = showInt }
//	fun head<T>(xs: Array<T>) -> Option<T>
//	fun showInt(x: Int) -> String
func libraryTable(t *testing.T) (*ast.Unit, *symbols.SymbolTable) {
	t.Helper()
	table := symbols.NewEmptySymbolTable()

	tv := typesystem.TVar{Name: "T"}
	optionRef := typesystem.TADT{Name: "Option", Args: []typesystem.Type{tv}}
	info := &symbols.ADTInfo{
		Name:   "Option",
		Params: []symbols.ConstrainedParam{{Name: "T"}},
		Variants: []symbols.Variant{
			{Tag: "Some", Payload: []typesystem.Type{tv}},
			{Tag: "None"},
		},
		Derives: []string{"Eq"},
	}
	if !table.DefineADT(info) {
		t.Fatal("DefineADT failed")
	}
	table.DefineConstructor("Some",
		typesystem.TFunc{Params: []typesystem.Type{tv}, ReturnType: optionRef},
		"Option", info.Params)
	table.DefineConstructor("None", optionRef, "Option", info.Params)

	if err := table.RegisterImplementation(&symbols.Implementation{
		Interface: "Eq",
		Head:      "Option",
		Bindings: []symbols.MethodBinding{
			{Method: "eq", Ref: symbols.FunctionRef{Name: "eq$Option", Builtin: true}},
		},
	}); err != nil {
		t.Fatalf("RegisterImplementation: %v", err)
	}

	table.DefineInterface(&symbols.InterfaceInfo{
		Name:  "Show",
		Param: symbols.ConstrainedParam{Name: "T"},
		Methods: []symbols.MethodSig{{
			Name: "show",
			Type: typesystem.TFunc{Params: []typesystem.Type{tv}, ReturnType: typesystem.StringType},
		}},
	})
	if err := table.RegisterImplementation(&symbols.Implementation{
		Interface: "Show",
		Head:      "Int",
		Bindings: []symbols.MethodBinding{
			{Method: "show", Ref: symbols.FunctionRef{Name: "showInt"}},
		},
	}); err != nil {
		t.Fatalf("RegisterImplementation: %v", err)
	}

	table.DefineSymbol(symbols.Symbol{
		Name: "head",
		Type: typesystem.TFunc{
			Params:     []typesystem.Type{typesystem.TArray{Elem: tv}},
			ReturnType: optionRef,
		},
		Kind:       symbols.VariableSymbol,
		IsConstant: true,
		TypeParams: []symbols.ConstrainedParam{{Name: "T"}},
	})
	table.DefineSymbol(symbols.Symbol{
		Name: "showInt",
		Type: typesystem.TFunc{
			Params:     []typesystem.Type{typesystem.IntType},
			ReturnType: typesystem.StringType,
		},
		Kind:       symbols.VariableSymbol,
		IsConstant: true,
	})

	ident := func(v string) *ast.Identifier {
		return &ast.Identifier{Token: token.New(v, 1, 1), Value: v}
	}
	unit := &ast.Unit{
		Name: "optlib",
		Declarations: []ast.Declaration{
			&ast.TypeDeclaration{Name: ident("Option"), Derives: []*ast.Identifier{ident("Eq")}},
			&ast.InterfaceDeclaration{Name: ident("Show")},
			&ast.ImplementationDeclaration{
				InterfaceName: ident("Show"),
				Target:        &ast.NamedType{Token: token.New("Int", 1, 1), Name: ident("Int")},
			},
			&ast.FunctionDeclaration{Name: ident("head")},
			&ast.FunctionDeclaration{Name: ident("showInt")},
		},
	}
	return unit, table
}

func TestBuildWriteLoadMaterialize(t *testing.T) {
	unit, table := libraryTable(t)

	specs := []*mono.SpecializedSymbol{{
		ID:       uuid.New(),
		Name:     "head$Int",
		Origin:   "head",
		TypeArgs: []typesystem.Type{typesystem.IntType},
	}}

	f, err := Build(unit, table, specs)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if f.Schema != SchemaVersion {
		t.Errorf("Schema: got %d, want %d", f.Schema, SchemaVersion)
	}
	if f.Unit != "optlib" {
		t.Errorf("Unit: got %q, want %q", f.Unit, "optlib")
	}
	if len(f.ADTs) != 1 || len(f.Interfaces) != 1 || len(f.Functions) != 2 {
		t.Fatalf("surface counts: %d ADTs, %d interfaces, %d functions",
			len(f.ADTs), len(f.Interfaces), len(f.Functions))
	}
	// Eq for Option is derived, Show for Int declared; both travel.
	if len(f.Impls) != 2 {
		t.Fatalf("impl count: got %d, want 2", len(f.Impls))
	}
	if len(f.Specializations) != 1 || f.Specializations[0].Name != "head$Int" {
		t.Errorf("specializations did not build: %+v", f.Specializations)
	}

	path := filepath.Join(t.TempDir(), "optlib.kitex")
	if err := Write(path, f); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.BuildID != f.BuildID {
		t.Errorf("BuildID: got %v, want %v", loaded.BuildID, f.BuildID)
	}

	dest := symbols.NewEmptySymbolTable()
	if err := Materialize(loaded, dest); err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	info, ok := dest.FindADT("Option")
	if !ok {
		t.Fatal("Option did not materialize")
	}
	if len(info.Variants) != 2 || info.Variants[0].Tag != "Some" {
		t.Errorf("variants: %+v", info.Variants)
	}
	if k, ok := dest.KindOf("Option"); !ok || typesystem.KindArity(k) != 1 {
		t.Errorf("Option kind: got %v", k)
	}

	some, ok := dest.Find("Some")
	if !ok || some.Kind != symbols.ConstructorSymbol || some.ADT != "Option" {
		t.Errorf("Some symbol: %+v", some)
	}
	if !some.IsGeneric() {
		t.Error("Some lost its type parameters")
	}

	if _, ok := dest.FindInterface("Show"); !ok {
		t.Error("Show did not materialize")
	}
	ref, err := dest.ResolveMethod("Eq", typesystem.TADT{Name: "Option", Args: []typesystem.Type{typesystem.IntType}}, "eq")
	if err != nil {
		t.Fatalf("ResolveMethod(Eq, Option): %v", err)
	}
	if ref.Name != "eq$Option" || !ref.Builtin {
		t.Errorf("eq binding: %+v", ref)
	}

	head, ok := dest.Find("head")
	if !ok {
		t.Fatal("head did not materialize")
	}
	if !head.IsGeneric() {
		t.Error("head lost its type parameters")
	}
	want := "(Array<T>) -> Option<T>"
	if head.Type.String() != want {
		t.Errorf("head signature: got %s, want %s", head.Type, want)
	}

	// A second import of the same surface collides.
	if err := Materialize(loaded, dest); err == nil {
		t.Error("expected collision error on duplicate import")
	}
}

func TestTypeExprRoundtrip(t *testing.T) {
	fKind := typesystem.MakeArrow(typesystem.Star, typesystem.Star)
	tests := []typesystem.Type{
		typesystem.IntType,
		typesystem.TVar{Name: "a"},
		typesystem.TConVar{Name: "F", KindVal: fKind},
		typesystem.TADT{Name: "Option", Args: []typesystem.Type{typesystem.StringType}},
		typesystem.TArray{Elem: typesystem.TVar{Name: "a"}},
		typesystem.TRecord{Fields: []typesystem.RecordField{
			{Name: "x", Type: typesystem.IntType},
			{Name: "y", Type: typesystem.BoolType},
		}},
		typesystem.TUnion{Types: []typesystem.Type{typesystem.IntType, typesystem.StringType}},
		typesystem.TApp{
			Head: typesystem.TConVar{Name: "F", KindVal: fKind},
			Args: []typesystem.Type{typesystem.TVar{Name: "a"}},
		},
		typesystem.TFunc{
			Params: []typesystem.Type{
				typesystem.TApp{Head: typesystem.TConVar{Name: "F", KindVal: fKind}, Args: []typesystem.Type{typesystem.TVar{Name: "a"}}},
				typesystem.TFunc{Params: []typesystem.Type{typesystem.TVar{Name: "a"}}, ReturnType: typesystem.TVar{Name: "b"}},
			},
			ReturnType: typesystem.TApp{Head: typesystem.TConVar{Name: "F", KindVal: fKind}, Args: []typesystem.Type{typesystem.TVar{Name: "b"}}},
		},
		typesystem.TFunc{
			Params:      []typesystem.Type{typesystem.StringType},
			ReturnType:  typesystem.UnitType,
			Interaction: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.String(), func(t *testing.T) {
			e, err := EncodeType(tt)
			if err != nil {
				t.Fatalf("EncodeType failed: %v", err)
			}
			back, err := DecodeType(e)
			if err != nil {
				t.Fatalf("DecodeType failed: %v", err)
			}
			if back.String() != tt.String() {
				t.Errorf("roundtrip: got %s, want %s", back, tt)
			}
			if !back.Kind().Equal(tt.Kind()) {
				t.Errorf("kind drifted: got %s, want %s", back.Kind(), tt.Kind())
			}
		})
	}
}

func TestEncodeType_Nil(t *testing.T) {
	if _, err := EncodeType(nil); err == nil {
		t.Error("expected error for nil type")
	}
}

func TestDecodeType_BadNodes(t *testing.T) {
	tests := []struct {
		name string
		e    TypeExpr
	}{
		{"unknown tag", TypeExpr{Tag: 99}},
		{"array without element", TypeExpr{Tag: tagArray}},
		{"record name/type mismatch", TypeExpr{Tag: tagRecord, Fields: []string{"x"}}},
		{"function without return", TypeExpr{Tag: tagFunc}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeType(tt.e); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoad_SchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.kitex")
	if err := Write(path, &File{Schema: SchemaVersion + 1, Unit: "old"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected schema error")
	}
	if !strings.Contains(err.Error(), "schema") {
		t.Errorf("expected 'schema' in error, got: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.kitex")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.kitex")
	if err := Write(path, &File{Schema: SchemaVersion, Unit: "lib"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "lib.kitex" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("directory contents: %v", names)
	}
}
