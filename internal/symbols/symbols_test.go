package symbols

import (
	"testing"

	"rivet/internal/source"
	"rivet/internal/types"
)

func TestDeclareAndResolve(t *testing.T) {
	strs := source.NewInterner()
	tab := NewTable()

	name := strs.Intern("x")
	id, fresh := tab.Declare(SymbolLet, name, source.Span{}, FlagMutable, types.NoTypeID)
	if !fresh || !id.IsValid() {
		t.Fatalf("declare: id=%d fresh=%v", id, fresh)
	}
	if got := tab.Resolve(name); got != id {
		t.Fatalf("resolve = %d, want %d", got, id)
	}
	if !tab.Get(id).Flags.Has(FlagMutable) {
		t.Fatal("mutability flag lost")
	}
}

func TestDuplicateInSameScope(t *testing.T) {
	strs := source.NewInterner()
	tab := NewTable()

	name := strs.Intern("x")
	first, _ := tab.Declare(SymbolLet, name, source.Span{}, 0, types.NoTypeID)
	prev, fresh := tab.Declare(SymbolLet, name, source.Span{}, 0, types.NoTypeID)
	if fresh {
		t.Fatal("redeclaration in the same scope should not be fresh")
	}
	if prev != first {
		t.Fatalf("redeclaration returned %d, want prior %d", prev, first)
	}
}

func TestShadowingInNestedScope(t *testing.T) {
	strs := source.NewInterner()
	tab := NewTable()

	name := strs.Intern("x")
	outer, _ := tab.Declare(SymbolLet, name, source.Span{}, 0, types.NoTypeID)

	tab.EnterScope(ScopeBlock)
	inner, fresh := tab.Declare(SymbolLet, name, source.Span{}, FlagMutable, types.NoTypeID)
	if !fresh || inner == outer {
		t.Fatalf("shadowing should mint a new symbol: inner=%d outer=%d", inner, outer)
	}
	if got := tab.Resolve(name); got != inner {
		t.Fatalf("inside block resolve = %d, want inner %d", got, inner)
	}
	tab.LeaveScope()
	if got := tab.Resolve(name); got != outer {
		t.Fatalf("after block resolve = %d, want outer %d", got, outer)
	}
}

func TestResolveUnknownName(t *testing.T) {
	strs := source.NewInterner()
	tab := NewTable()
	if id := tab.Resolve(strs.Intern("nope")); id.IsValid() {
		t.Fatalf("unknown name resolved to %d", id)
	}
}

func TestScopeKinds(t *testing.T) {
	tab := NewTable()
	if tab.ScopeKind(tab.CurrentScope()) != ScopeFile {
		t.Fatal("root scope should be the file scope")
	}
	fn := tab.EnterScope(ScopeFunction)
	blk := tab.EnterScope(ScopeBlock)
	if tab.ScopeParent(blk) != fn {
		t.Fatal("block parent should be the function scope")
	}
	tab.LeaveScope()
	tab.LeaveScope()
	if tab.ScopeKind(tab.CurrentScope()) != ScopeFile {
		t.Fatal("should be back at the file scope")
	}
}
