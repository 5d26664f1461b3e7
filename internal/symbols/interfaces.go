package symbols

import (
	"fmt"

	"github.com/kitelang/kite/internal/typesystem"
)

// MethodSig is one method of an interface, as declared.
type MethodSig struct {
	Name string
	Type typesystem.TFunc
}

// InterfaceInfo is the registered form of one interface declaration.
// The single type parameter may be higher-kinded (Functor<F: * -> *>).
type InterfaceInfo struct {
	Name    string
	Param   ConstrainedParam
	Methods []MethodSig // ordered as declared
}

// Method returns the named method signature.
func (i *InterfaceInfo) Method(name string) (MethodSig, bool) {
	for _, m := range i.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodSig{}, false
}

// FunctionRef names the unit-level function an interface call site
// dispatches to. Builtin refs point into the prelude's runtime.
type FunctionRef struct {
	Name    string
	Builtin bool
}

// MethodBinding maps one interface method to its implementation.
type MethodBinding struct {
	Method string
	Ref    FunctionRef
}

// Implementation is one registered (interface, head) entry. Arguments
// of the target type play no part in the key: Eq for Option covers
// Option<Int> and Option<String> alike.
type Implementation struct {
	Interface string
	Head      string
	Bindings  []MethodBinding
}

// Binding returns the implementation of a method.
func (im *Implementation) Binding(method string) (FunctionRef, bool) {
	for _, b := range im.Bindings {
		if b.Method == method {
			return b.Ref, true
		}
	}
	return FunctionRef{}, false
}

// DuplicateImplementationError reports a second implementation of the
// same interface for the same type head.
type DuplicateImplementationError struct {
	Interface string
	Head      string
}

func (e *DuplicateImplementationError) Error() string {
	return fmt.Sprintf("duplicate implementation of %s for %s", e.Interface, e.Head)
}

// MissingImplementationError reports that no implementation of an
// interface is registered for a type.
type MissingImplementationError struct {
	Interface string
	Type      typesystem.Type
}

func (e *MissingImplementationError) Error() string {
	return fmt.Sprintf("no implementation of %s for %s", e.Interface, e.Type)
}

// DefineInterface registers an interface declaration. Returns false
// when the name is taken.
func (s *SymbolTable) DefineInterface(info *InterfaceInfo) bool {
	root := s.Root()
	if _, exists := root.interfaces[info.Name]; exists {
		return false
	}
	root.interfaces[info.Name] = info
	root.store[info.Name] = Symbol{Name: info.Name, Kind: InterfaceSymbol}
	return true
}

// FindInterface resolves a registered interface by name.
func (s *SymbolTable) FindInterface(name string) (*InterfaceInfo, bool) {
	info, ok := s.Root().interfaces[name]
	return info, ok
}

// RegisterImplementation adds an (interface, head) entry. Built-in
// and user implementations go through the same path, so a user
// implementation colliding with a prelude one is rejected just like
// any other duplicate.
func (s *SymbolTable) RegisterImplementation(impl *Implementation) error {
	root := s.Root()
	byHead, ok := root.impls[impl.Interface]
	if !ok {
		byHead = make(map[string]*Implementation)
		root.impls[impl.Interface] = byHead
	}
	if _, exists := byHead[impl.Head]; exists {
		return &DuplicateImplementationError{Interface: impl.Interface, Head: impl.Head}
	}
	byHead[impl.Head] = impl
	root.implOrder = append(root.implOrder, impl)
	return nil
}

// ResolveImplementation finds the implementation of an interface for
// a concrete type by stripping the type to its head constructor.
func (s *SymbolTable) ResolveImplementation(iface string, t typesystem.Type) (*Implementation, error) {
	head := HeadName(t)
	if head == "" {
		return nil, &MissingImplementationError{Interface: iface, Type: t}
	}
	if byHead, ok := s.Root().impls[iface]; ok {
		if impl, ok := byHead[head]; ok {
			return impl, nil
		}
	}
	return nil, &MissingImplementationError{Interface: iface, Type: t}
}

// ResolveMethod resolves one interface method for a concrete type to
// the function implementing it.
func (s *SymbolTable) ResolveMethod(iface string, t typesystem.Type, method string) (FunctionRef, error) {
	impl, err := s.ResolveImplementation(iface, t)
	if err != nil {
		return FunctionRef{}, err
	}
	ref, ok := impl.Binding(method)
	if !ok {
		return FunctionRef{}, fmt.Errorf("implementation of %s for %s has no method %s", iface, impl.Head, method)
	}
	return ref, nil
}

// HasImplementation reports whether the (interface, head) pair is
// registered.
func (s *SymbolTable) HasImplementation(iface string, t typesystem.Type) bool {
	_, err := s.ResolveImplementation(iface, t)
	return err == nil
}

// Implementations returns every registered implementation in
// registration order.
func (s *SymbolTable) Implementations() []*Implementation {
	return s.Root().implOrder
}

// HeadName strips a type to its nominal head constructor name. Types
// with no nominal head (records, functions, unions, variables) have
// no implementations.
func HeadName(t typesystem.Type) string {
	switch tt := t.(type) {
	case typesystem.TPrim:
		return tt.Name
	case typesystem.TADT:
		return tt.Name
	case typesystem.TArray:
		return "Array"
	default:
		return ""
	}
}
