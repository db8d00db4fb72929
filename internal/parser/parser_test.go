package parser

import (
	"testing"

	"rivet/internal/ast"
	"rivet/internal/diag"
	"rivet/internal/source"
)

func parseSnippet(t *testing.T, src string) (*ast.Builder, ast.FileID, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rv", []byte(src))
	builder := ast.NewBuilder(ast.Hints{}, nil)
	bag := diag.NewBag(16)
	p := New(fs.Get(id), builder, Options{Reporter: diag.BagReporter{Bag: bag}})
	file := p.ParseFile()
	return builder, file, bag
}

func TestParseFnWithParamsAndBody(t *testing.T) {
	builder, file, bag := parseSnippet(t, `
fn add(a: int, mut b: int) -> int {
	let c = a + b;
	return c;
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	items := builder.Files.Get(file).Items
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	fn, ok := builder.Items.Fn(items[0])
	if !ok {
		t.Fatal("expected fn item")
	}
	if got := builder.StringsInterner.MustLookup(fn.Name); got != "add" {
		t.Fatalf("name = %q", got)
	}
	if len(fn.Params) != 2 || fn.Params[0].Mut || !fn.Params[1].Mut {
		t.Fatalf("params = %+v", fn.Params)
	}
	if !fn.Result.IsValid() {
		t.Fatal("expected result type")
	}
	block, ok := builder.Stmts.Block(fn.Body)
	if !ok || len(block.Stmts) != 2 {
		t.Fatalf("body stmts = %v", block)
	}
}

func TestParseTypeDeclWithAttrs(t *testing.T) {
	builder, file, bag := parseSnippet(t, `
@drop
type Buffer = {
	data: [int],
	len: int,
};
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	items := builder.Files.Get(file).Items
	decl, ok := builder.Items.Type(items[0])
	if !ok {
		t.Fatal("expected type item")
	}
	if !decl.HasDrop || decl.HasCopy {
		t.Fatalf("attrs: drop=%v copy=%v", decl.HasDrop, decl.HasCopy)
	}
	if len(decl.Fields) != 2 {
		t.Fatalf("fields = %d", len(decl.Fields))
	}
	arr, ok := builder.Types.Array(decl.Fields[0].Type)
	if !ok || arr.HasCount {
		t.Fatalf("first field should be a vector type, got %+v", arr)
	}
}

func TestParseBorrowExpressions(t *testing.T) {
	builder, file, bag := parseSnippet(t, `
fn main() {
	let mut x = 0;
	let r = &mut x;
	*r = 1;
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	fn, _ := builder.Items.Fn(builder.Files.Get(file).Items[0])
	block, _ := builder.Stmts.Block(fn.Body)

	letR, ok := builder.Stmts.Let(block.Stmts[1])
	if !ok {
		t.Fatal("expected let")
	}
	unary, ok := builder.Exprs.Unary(letR.Init)
	if !ok || unary.Op != ast.ExprUnaryRefMut {
		t.Fatalf("init = %+v", unary)
	}

	assignStmt, _ := builder.Stmts.Expr(block.Stmts[2])
	bin, ok := builder.Exprs.Binary(assignStmt.Expr)
	if !ok || bin.Op != ast.ExprBinaryAssign {
		t.Fatalf("expected assignment, got %+v", bin)
	}
	deref, ok := builder.Exprs.Unary(bin.Left)
	if !ok || deref.Op != ast.ExprUnaryDeref {
		t.Fatalf("expected deref lhs, got %+v", deref)
	}
}

func TestParsePrecedence(t *testing.T) {
	builder, file, bag := parseSnippet(t, `
fn f() {
	let a = 1 + 2 * 3;
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	fn, _ := builder.Items.Fn(builder.Files.Get(file).Items[0])
	block, _ := builder.Stmts.Block(fn.Body)
	let, _ := builder.Stmts.Let(block.Stmts[0])
	add, ok := builder.Exprs.Binary(let.Init)
	if !ok || add.Op != ast.ExprBinaryAdd {
		t.Fatalf("top op = %+v, want add", add)
	}
	mul, ok := builder.Exprs.Binary(add.Right)
	if !ok || mul.Op != ast.ExprBinaryMul {
		t.Fatalf("right op = %+v, want mul", mul)
	}
}

func TestParseTupleVsGroup(t *testing.T) {
	builder, file, bag := parseSnippet(t, `
fn f() {
	let g = (1);
	let t = (1, 2);
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	fn, _ := builder.Items.Fn(builder.Files.Get(file).Items[0])
	block, _ := builder.Stmts.Block(fn.Body)
	letG, _ := builder.Stmts.Let(block.Stmts[0])
	if _, ok := builder.Exprs.Group(letG.Init); !ok {
		t.Fatal("expected group")
	}
	letT, _ := builder.Stmts.Let(block.Stmts[1])
	tuple, ok := builder.Exprs.Tuple(letT.Init)
	if !ok || len(tuple.Elements) != 2 {
		t.Fatalf("expected 2-tuple, got %+v", tuple)
	}
}

func TestParseMissingSemicolonReported(t *testing.T) {
	_, _, bag := parseSnippet(t, `
fn f() {
	let a = 1
}
`)
	if !bag.HasErrors() {
		t.Fatal("expected diagnostics")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.SynExpectSemicolon {
			found = true
		}
	}
	if !found {
		t.Fatalf("no SynExpectSemicolon in %v", bag.Items())
	}
}

func TestParseRecoversAtItemBoundary(t *testing.T) {
	builder, file, bag := parseSnippet(t, `
fn broken( {
fn ok() {
	return;
}
`)
	if !bag.HasErrors() {
		t.Fatal("expected diagnostics")
	}
	items := builder.Files.Get(file).Items
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 recovered fn", len(items))
	}
	fn, ok := builder.Items.Fn(items[0])
	if !ok || builder.StringsInterner.MustLookup(fn.Name) != "ok" {
		t.Fatal("recovery did not reach second fn")
	}
}
