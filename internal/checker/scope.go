package checker

import "fmt"

// SymbolKind is the namespace a declared symbol lives in. A long name, a
// short alias and a dest never clash with each other, only within a kind.
type SymbolKind int

const (
	SymName SymbolKind = iota
	SymShort
	SymDest
)

// String returns the string representation of the symbol kind
func (sk SymbolKind) String() string {
	switch sk {
	case SymName:
		return "name"
	case SymShort:
		return "short"
	case SymDest:
		return "dest"
	default:
		return "unknown"
	}
}

// Symbol is one name claimed by a declaration.
type Symbol struct {
	Name string
	Kind SymbolKind
	Arg  int // 1-based declaration index; 0 for names the generated code reserves
}

// Scope is a symbol table with an optional parent. The root scope holds the
// names every generated parser reserves for itself.
type Scope struct {
	parent  *Scope
	symbols map[SymbolKind]map[string]*Symbol
}

// NewScope creates a new scope with an optional parent
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		symbols: make(map[SymbolKind]map[string]*Symbol),
	}
}

// reservedScope returns the scope holding the built-in help option.
func reservedScope() *Scope {
	s := NewScope(nil)
	_ = s.Define(&Symbol{Name: "--help", Kind: SymName})
	_ = s.Define(&Symbol{Name: "-h", Kind: SymShort})
	return s
}

// Define adds a symbol to the current scope.
// Returns an error if the name is already claimed here or in a parent scope.
func (s *Scope) Define(sym *Symbol) error {
	if prev := s.Resolve(sym.Kind, sym.Name); prev != nil {
		if prev.Arg == 0 {
			return fmt.Errorf("%s %q is reserved for the help option", sym.Kind, sym.Name)
		}
		return fmt.Errorf("%s %q already used by arguments[%d]", sym.Kind, sym.Name, prev.Arg)
	}
	table, ok := s.symbols[sym.Kind]
	if !ok {
		table = make(map[string]*Symbol)
		s.symbols[sym.Kind] = table
	}
	table[sym.Name] = sym
	return nil
}

// Resolve looks up a symbol in the current scope and parent scopes
// Returns nil if the symbol is not found
func (s *Scope) Resolve(kind SymbolKind, name string) *Symbol {
	if sym := s.ResolveLocal(kind, name); sym != nil {
		return sym
	}
	if s.parent != nil {
		return s.parent.Resolve(kind, name)
	}
	return nil
}

// ResolveLocal looks up a symbol only in the current scope (not parent scopes)
func (s *Scope) ResolveLocal(kind SymbolKind, name string) *Symbol {
	return s.symbols[kind][name]
}
