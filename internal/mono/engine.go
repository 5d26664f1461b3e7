// Package mono materializes generic declarations into specialized
// symbols, one per distinct tuple of concrete type arguments.
//
// Requests are memoized by instantiation key: a repeated request
// returns the already materialized symbol without touching the body
// again. Specializing a body that itself calls generics enqueues the
// transitive instantiations, and Run drains that worklist to a fixed
// point. A chain whose type arguments keep growing trips the depth
// bound instead of diverging.
package mono

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kitelang/kite/internal/ast"
	"github.com/kitelang/kite/internal/diagnostics"
	"github.com/kitelang/kite/internal/symbols"
	"github.com/kitelang/kite/internal/token"
	"github.com/kitelang/kite/internal/typesystem"
)

// DefaultDepthBound caps transitive instantiation chains.
const DefaultDepthBound = 64

type Options struct {
	DepthBound int // <=0 means DefaultDepthBound
}

// Key identifies one instantiation of a generic symbol.
type Key struct {
	Sym  string
	Args string
}

func (k Key) String() string {
	if k.Args == "" {
		return k.Sym
	}
	return k.Sym + "<" + k.Args + ">"
}

// NewKey builds the canonical key for a symbol and argument tuple.
func NewKey(sym string, args []typesystem.Type) Key {
	return Key{Sym: sym, Args: argsKey(args)}
}

func argsKey(args []typesystem.Type) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// SpecializedSymbol is one materialized instantiation of a generic
// function. Decl still points at the original declaration; Subst maps
// its type parameters to the concrete arguments, and Rewrites maps
// each generic call site inside the body to the name of the
// specialization that site resolves to under Subst.
type SpecializedSymbol struct {
	ID       uuid.UUID
	Key      Key
	Name     string
	Origin   string
	TypeArgs []typesystem.Type
	Sig      typesystem.TFunc
	Subst    typesystem.Subst
	Decl     *ast.FunctionDeclaration
	Rewrites map[ast.Node]string
}

// SpecializedType is one materialized instantiation of a generic ADT,
// with the variant payloads substituted to concrete types.
type SpecializedType struct {
	Key      Key
	Origin   string
	TypeArgs []typesystem.Type
	Type     typesystem.TADT
	Variants []symbols.Variant
}

// CallSite records the generic callee and the inferred type arguments
// at one call site, as the checker saw them inside the enclosing
// declaration. The site is usually a call expression, but desugared
// operators record their infix node the same way. Arguments may
// mention the enclosing declaration's own type parameters; they
// become concrete under an instantiation's substitution.
type CallSite struct {
	Callee string
	Args   []typesystem.Type
}

type pending struct {
	callee string
	args   []typesystem.Type
	site   token.Token
	stack  []Key
}

// Engine owns the instantiation cache and worklist for one
// compilation unit.
type Engine struct {
	table *symbols.SymbolTable
	calls map[ast.Node]CallSite
	diags *diagnostics.List
	opt   Options

	funcs     map[Key]*SpecializedSymbol
	order     []*SpecializedSymbol
	types     map[Key]*SpecializedType
	typeOrder []*SpecializedType
	worklist  []pending
}

// NewEngine wires the engine to the unit's symbol table, the
// checker's generic call-site record and the shared diagnostic list.
func NewEngine(table *symbols.SymbolTable, calls map[ast.Node]CallSite, diags *diagnostics.List, opt Options) *Engine {
	if opt.DepthBound <= 0 {
		opt.DepthBound = DefaultDepthBound
	}
	return &Engine{
		table: table,
		calls: calls,
		diags: diags,
		opt:   opt,
		funcs: make(map[Key]*SpecializedSymbol),
		types: make(map[Key]*SpecializedType),
	}
}

// Ensure materializes one instantiation and returns its handle. A key
// already in the cache comes back as the same handle without the body
// being processed again. A failed constraint check reports at site
// and materializes nothing; the failure is not cached, so a later
// request after registering the implementation succeeds.
func (e *Engine) Ensure(callee string, args []typesystem.Type, site token.Token) *SpecializedSymbol {
	return e.ensure(callee, args, site, nil)
}

// Run drains the transitive worklist to a fixed point.
func (e *Engine) Run() {
	for len(e.worklist) > 0 {
		p := e.worklist[0]
		e.worklist = e.worklist[1:]
		e.ensure(p.callee, p.args, p.site, p.stack)
	}
}

// Specialized returns every materialized function specialization in
// materialization order.
func (e *Engine) Specialized() []*SpecializedSymbol {
	return e.order
}

// SpecializedTypes returns every materialized ADT specialization in
// materialization order.
func (e *Engine) SpecializedTypes() []*SpecializedType {
	return e.typeOrder
}

// Lookup finds a cached specialization.
func (e *Engine) Lookup(key Key) (*SpecializedSymbol, bool) {
	s, ok := e.funcs[key]
	return s, ok
}

func (e *Engine) ensure(callee string, args []typesystem.Type, site token.Token, stack []Key) *SpecializedSymbol {
	key := NewKey(callee, args)
	if existing, ok := e.funcs[key]; ok {
		return existing
	}
	if !concrete(args) {
		// The checker already reported whatever kept inference from
		// pinning these arguments down.
		return nil
	}
	if len(stack) >= e.opt.DepthBound {
		e.overflow(key, site)
		return nil
	}

	sym, ok := e.table.Find(callee)
	if !ok || !sym.IsGeneric() {
		return nil
	}
	if len(args) != len(sym.TypeParams) {
		e.report(diagnostics.ErrArityMismatch, site,
			fmt.Sprintf("%s expects %d type arguments, got %d", callee, len(sym.TypeParams), len(args)))
		return nil
	}
	if !e.checkConstraints(callee, sym.TypeParams, args, site) {
		return nil
	}

	subst := make(typesystem.Subst, len(args))
	for i, p := range sym.TypeParams {
		subst[p.Name] = args[i]
	}

	spec := &SpecializedSymbol{
		ID:       uuid.New(),
		Key:      key,
		Name:     Mangle(callee, args),
		Origin:   callee,
		TypeArgs: args,
		Subst:    subst,
	}
	if sig, ok := sym.Type.(typesystem.TFunc); ok {
		if applied, ok := sig.Apply(subst).(typesystem.TFunc); ok {
			spec.Sig = applied
		}
	}
	if decl, ok := sym.DefinitionNode.(*ast.FunctionDeclaration); ok {
		spec.Decl = decl
	}

	// Cache before walking the body: a self-recursive call with the
	// same arguments lands back on this entry instead of looping.
	e.funcs[key] = spec
	e.order = append(e.order, spec)

	next := appendKey(stack, key)
	for _, arg := range args {
		e.ensureType(arg, site, next)
	}
	for _, pt := range spec.Sig.Params {
		e.ensureType(pt, site, next)
	}
	e.ensureType(spec.Sig.ReturnType, site, next)

	if spec.Decl != nil {
		e.scanBody(spec, next)
	}
	return spec
}

// scanBody enqueues the instantiations a specialized body needs:
// every recorded generic call whose type arguments become concrete
// under this specialization's substitution.
func (e *Engine) scanBody(spec *SpecializedSymbol, stack []Key) {
	collectCalls(spec.Decl.Body, func(site ast.Expression) {
		cs, ok := e.calls[site]
		if !ok {
			return
		}
		inst := make([]typesystem.Type, len(cs.Args))
		for i, a := range cs.Args {
			inst[i] = a.Apply(spec.Subst)
		}
		if !concrete(inst) {
			return
		}
		if spec.Rewrites == nil {
			spec.Rewrites = make(map[ast.Node]string)
		}
		spec.Rewrites[site] = Mangle(cs.Callee, inst)
		e.worklist = append(e.worklist, pending{
			callee: cs.Callee,
			args:   inst,
			site:   site.GetToken(),
			stack:  stack,
		})
	})
}

// checkConstraints resolves each required interface against the
// concrete argument. Failures are attributed to the call site that
// triggered the instantiation, not to the generic's declaration.
func (e *Engine) checkConstraints(callee string, params []symbols.ConstrainedParam, args []typesystem.Type, site token.Token) bool {
	ok := true
	for i, p := range params {
		if typesystem.KindArity(p.ParamKind()) > 0 {
			if !e.checkHeadKind(callee, p, args[i], site) {
				ok = false
				continue
			}
		}
		for _, iface := range p.Interfaces {
			if e.table.HasImplementation(iface, args[i]) {
				continue
			}
			ok = false
			e.report(diagnostics.ErrMissingImplementation, site,
				fmt.Sprintf("no implementation of %s for %s, required by %s of %s", iface, args[i], p.Name, callee))
		}
	}
	return ok
}

// checkHeadKind validates the argument bound to a higher-kinded
// parameter: it must be a bare constructor head of the declared kind.
func (e *Engine) checkHeadKind(callee string, p symbols.ConstrainedParam, arg typesystem.Type, site token.Token) bool {
	adt, ok := arg.(typesystem.TADT)
	if !ok || len(adt.Args) > 0 {
		e.report(diagnostics.ErrKindMismatch, site,
			fmt.Sprintf("%s is not a type constructor, required by %s of %s", arg, p.Name, callee))
		return false
	}
	k, found := e.table.KindOf(adt.Name)
	if !found || !k.Equal(p.ParamKind()) {
		e.report(diagnostics.ErrKindMismatch, site,
			fmt.Sprintf("%s has kind %s, but %s of %s requires %s", adt.Name, kindString(k), p.Name, callee, p.ParamKind()))
		return false
	}
	return true
}

// EnsureType materializes the generic ADT instantiations a concrete
// type mentions, recursively through variant payloads. Memoization
// terminates self-referential types; payloads whose arguments grow at
// each step trip the depth bound.
func (e *Engine) EnsureType(t typesystem.Type, site token.Token) {
	e.ensureType(t, site, nil)
}

func (e *Engine) ensureType(t typesystem.Type, site token.Token, stack []Key) {
	switch tt := t.(type) {
	case typesystem.TADT:
		e.ensureADT(tt, site, stack)
	case typesystem.TArray:
		e.ensureType(tt.Elem, site, stack)
	case typesystem.TRecord:
		for _, f := range tt.Fields {
			e.ensureType(f.Type, site, stack)
		}
	case typesystem.TFunc:
		for _, p := range tt.Params {
			e.ensureType(p, site, stack)
		}
		e.ensureType(tt.ReturnType, site, stack)
	case typesystem.TUnion:
		for _, m := range tt.Types {
			e.ensureType(m, site, stack)
		}
	}
}

func (e *Engine) ensureADT(t typesystem.TADT, site token.Token, stack []Key) {
	if len(t.Args) == 0 || !concrete(t.Args) {
		return
	}
	info, ok := e.table.FindADT(t.Name)
	if !ok {
		return
	}
	key := NewKey(t.Name, t.Args)
	if _, ok := e.types[key]; ok {
		return
	}
	if len(stack) >= e.opt.DepthBound {
		e.overflow(key, site)
		return
	}
	sub, err := info.ParamSubst(t.Args)
	if err != nil {
		e.report(diagnostics.ErrArityMismatch, site, err.Error())
		return
	}

	st := &SpecializedType{
		Key:      key,
		Origin:   t.Name,
		TypeArgs: t.Args,
		Type:     t,
	}
	e.types[key] = st
	e.typeOrder = append(e.typeOrder, st)

	next := appendKey(stack, key)
	for _, v := range info.Variants {
		sv := symbols.Variant{Tag: v.Tag}
		if len(v.Payload) > 0 {
			sv.Payload = make([]typesystem.Type, len(v.Payload))
			for i, pt := range v.Payload {
				sv.Payload[i] = pt.Apply(sub)
				e.ensureType(sv.Payload[i], site, next)
			}
		}
		st.Variants = append(st.Variants, sv)
	}
}

// Mangle derives the flat symbol name of a specialization.
func Mangle(callee string, args []typesystem.Type) string {
	if len(args) == 0 {
		return callee
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, callee)
	for _, a := range args {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, "$")
}

func (e *Engine) overflow(key Key, site token.Token) {
	d := diagnostics.NewError(diagnostics.ErrInstantiationOverflow, site,
		fmt.Sprintf("instantiation of %s exceeds depth bound %d", key, e.opt.DepthBound))
	d.Bound = e.opt.DepthBound
	e.diags.Add(d)
}

func (e *Engine) report(code diagnostics.ErrorCode, site token.Token, msg string) {
	e.diags.Add(diagnostics.NewError(code, site, msg))
}

func concrete(args []typesystem.Type) bool {
	for _, a := range args {
		if a == nil || len(a.FreeTypeVariables()) > 0 {
			return false
		}
	}
	return true
}

func appendKey(stack []Key, key Key) []Key {
	next := make([]Key, 0, len(stack)+1)
	next = append(next, stack...)
	return append(next, key)
}

func kindString(k typesystem.Kind) string {
	if k == nil {
		return "unknown"
	}
	return k.String()
}
