package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"rivet/internal/source"
	"rivet/internal/types"
)

type SymbolID uint32

const NoSymbolID SymbolID = 0

func (id SymbolID) IsValid() bool { return id != NoSymbolID }

type ScopeID uint32

const NoScopeID ScopeID = 0

func (id ScopeID) IsValid() bool { return id != NoScopeID }

type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolFunction
	SymbolType
	SymbolLet
	SymbolParam
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolType:
		return "type"
	case SymbolLet:
		return "binding"
	case SymbolParam:
		return "parameter"
	}
	return "invalid"
}

type SymbolFlags uint8

const (
	// FlagMutable — binding объявлен как 'let mut' или 'mut' параметр.
	FlagMutable SymbolFlags = 1 << iota
)

func (f SymbolFlags) Has(flag SymbolFlags) bool { return f&flag != 0 }

type Symbol struct {
	Kind  SymbolKind
	Name  source.StringID
	Span  source.Span
	Flags SymbolFlags
	Type  types.TypeID
	Scope ScopeID
}

type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeFile
	ScopeFunction
	ScopeBlock
)

type scope struct {
	kind   ScopeKind
	parent ScopeID
	names  map[source.StringID]SymbolID
}

// Table хранит все scopes и symbols одного файла.
type Table struct {
	scopes  []scope
	symbols []Symbol
	current ScopeID
}

func NewTable() *Table {
	t := &Table{
		scopes:  make([]scope, 1), // [0] — NoScopeID
		symbols: make([]Symbol, 1),
	}
	t.current = t.pushScope(ScopeFile, NoScopeID)
	return t
}

func (t *Table) pushScope(kind ScopeKind, parent ScopeID) ScopeID {
	id, err := safecast.Conv[ScopeID](len(t.scopes))
	if err != nil {
		panic(fmt.Errorf("symbols: scope overflow: %w", err))
	}
	t.scopes = append(t.scopes, scope{
		kind:   kind,
		parent: parent,
		names:  make(map[source.StringID]SymbolID),
	})
	return id
}

// EnterScope opens a nested scope and makes it current.
func (t *Table) EnterScope(kind ScopeKind) ScopeID {
	t.current = t.pushScope(kind, t.current)
	return t.current
}

// LeaveScope restores the parent scope; names declared inside stay in the
// table (diagnostics may still point at them) but stop resolving.
func (t *Table) LeaveScope() {
	parent := t.scopes[t.current].parent
	if !parent.IsValid() {
		panic(fmt.Errorf("symbols: LeaveScope past the file scope"))
	}
	t.current = parent
}

func (t *Table) CurrentScope() ScopeID { return t.current }

func (t *Table) ScopeKind(id ScopeID) ScopeKind { return t.scopes[id].kind }

func (t *Table) ScopeParent(id ScopeID) ScopeID { return t.scopes[id].parent }

// Declare вводит имя в текущий scope. Повторное объявление в том же scope
// возвращает прежний символ и false; shadowing во вложенном scope — новый
// символ как обычно.
func (t *Table) Declare(kind SymbolKind, name source.StringID, span source.Span, flags SymbolFlags, typ types.TypeID) (SymbolID, bool) {
	sc := &t.scopes[t.current]
	if prev, ok := sc.names[name]; ok {
		return prev, false
	}
	id, err := safecast.Conv[SymbolID](len(t.symbols))
	if err != nil {
		panic(fmt.Errorf("symbols: symbol overflow: %w", err))
	}
	t.symbols = append(t.symbols, Symbol{
		Kind:  kind,
		Name:  name,
		Span:  span,
		Flags: flags,
		Type:  typ,
		Scope: t.current,
	})
	sc.names[name] = id
	return id, true
}

// Resolve ищет имя от текущего scope вверх до файла.
func (t *Table) Resolve(name source.StringID) SymbolID {
	for sc := t.current; sc.IsValid(); sc = t.scopes[sc].parent {
		if id, ok := t.scopes[sc].names[name]; ok {
			return id
		}
	}
	return NoSymbolID
}

func (t *Table) Get(id SymbolID) Symbol {
	if !id.IsValid() || int(id) >= len(t.symbols) {
		panic(fmt.Errorf("symbols: invalid SymbolID %d", id))
	}
	return t.symbols[id]
}

// SetType дозаполняет тип символа после вывода.
func (t *Table) SetType(id SymbolID, typ types.TypeID) {
	if !id.IsValid() || int(id) >= len(t.symbols) {
		panic(fmt.Errorf("symbols: invalid SymbolID %d", id))
	}
	t.symbols[id].Type = typ
}

func (t *Table) Len() int { return len(t.symbols) - 1 }
