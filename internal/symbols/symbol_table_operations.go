package symbols

import (
	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/typesystem"
)

// SymbolTable is one lexical scope. The root scope additionally owns
// the unit-global registries.
type SymbolTable struct {
	store     map[string]Symbol
	outer     *SymbolTable
	scopeType ScopeType

	// Root-only registries; nil on enclosed scopes.
	adts       map[string]*ADTInfo
	adtOrder   []string
	aliases    map[string]typesystem.Type
	kinds      map[string]typesystem.Kind
	interfaces map[string]*InterfaceInfo
	impls      map[string]map[string]*Implementation
	implOrder  []*Implementation
}

func NewEmptySymbolTable() *SymbolTable {
	return &SymbolTable{
		store:      make(map[string]Symbol),
		scopeType:  ScopeGlobal,
		adts:       make(map[string]*ADTInfo),
		aliases:    make(map[string]typesystem.Type),
		kinds:      make(map[string]typesystem.Kind),
		interfaces: make(map[string]*InterfaceInfo),
		impls:      make(map[string]map[string]*Implementation),
	}
}

func NewEnclosedSymbolTable(outer *SymbolTable, scopeType ScopeType) *SymbolTable {
	return &SymbolTable{
		store:     make(map[string]Symbol),
		outer:     outer,
		scopeType: scopeType,
	}
}

// Outer returns the outer scope symbol table.
func (s *SymbolTable) Outer() *SymbolTable {
	return s.outer
}

// Root returns the unit-global scope that owns the registries.
func (s *SymbolTable) Root() *SymbolTable {
	r := s
	for r.outer != nil {
		r = r.outer
	}
	return r
}

// IsFunctionScope returns true if this scope belongs to a function body.
func (s *SymbolTable) IsFunctionScope() bool {
	return s.scopeType == ScopeFunction
}

func (s *SymbolTable) Define(name string, t typesystem.Type) {
	s.store[name] = Symbol{Name: name, Type: t, Kind: VariableSymbol}
}

func (s *SymbolTable) DefineConstant(name string, t typesystem.Type) {
	s.store[name] = Symbol{Name: name, Type: t, Kind: VariableSymbol, IsConstant: true}
}

func (s *SymbolTable) DefineType(name string, t typesystem.Type) {
	s.store[name] = Symbol{Name: name, Type: t, Kind: TypeSymbol}
}

func (s *SymbolTable) DefineConstructor(name string, t typesystem.Type, adt string, params []ConstrainedParam) {
	s.store[name] = Symbol{
		Name:       name,
		Type:       t,
		Kind:       ConstructorSymbol,
		IsConstant: true,
		ADT:        adt,
		TypeParams: params,
	}
}

// DefineSymbol stores a fully populated symbol, for generic functions
// and prelude entries.
func (s *SymbolTable) DefineSymbol(sym Symbol) {
	s.store[sym.Name] = sym
}

// SetDefinitionNode updates the DefinitionNode for an existing symbol
// in the current scope.
func (s *SymbolTable) SetDefinitionNode(name string, node ast.Node) {
	if sym, ok := s.store[name]; ok {
		sym.DefinitionNode = node
		s.store[name] = sym
	}
}

// FindWithScope returns the symbol and the scope where it was defined.
func (s *SymbolTable) FindWithScope(name string) (Symbol, *SymbolTable, bool) {
	sym, ok := s.store[name]
	if ok {
		return sym, s, true
	}
	if s.outer != nil {
		return s.outer.FindWithScope(name)
	}
	return Symbol{}, nil, false
}

func (s *SymbolTable) Find(name string) (Symbol, bool) {
	sym, _, ok := s.FindWithScope(name)
	return sym, ok
}

func (s *SymbolTable) IsDefined(name string) bool {
	_, ok := s.Find(name)
	return ok
}

// IsDefinedLocally checks the current scope only.
func (s *SymbolTable) IsDefinedLocally(name string) bool {
	_, ok := s.store[name]
	return ok
}

// Update replaces the type of an existing symbol wherever it was
// defined. Narrowing uses this on block-scoped shadows, never on the
// original symbol.
func (s *SymbolTable) Update(name string, t typesystem.Type) bool {
	if sym, ok := s.store[name]; ok {
		sym.Type = t
		s.store[name] = sym
		return true
	}
	if s.outer != nil {
		return s.outer.Update(name, t)
	}
	return false
}
