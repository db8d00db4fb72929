package verify

import (
	"testing"

	"rivet/internal/ast"
	"rivet/internal/diag"
	"rivet/internal/parser"
	"rivet/internal/source"
)

func runVerify(t *testing.T, src string) *diag.Bag {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rv", []byte(src))
	builder := ast.NewBuilder(ast.Hints{}, nil)
	parseBag := diag.NewBag(32)
	p := parser.New(fs.Get(id), builder, parser.Options{Reporter: diag.BagReporter{Bag: parseBag}})
	file := p.ParseFile()
	if parseBag.HasErrors() {
		t.Fatalf("parse errors: %v", parseBag.Items())
	}
	bag := diag.NewBag(64)
	Check(builder, file, diag.BagReporter{Bag: bag})
	return bag
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func diagCodes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func expectOnly(t *testing.T, bag *diag.Bag, code diag.Code) {
	t.Helper()
	if !hasCode(bag, code) {
		t.Fatalf("expected %s, got %v", code.ID(), diagCodes(bag))
	}
	if bag.Len() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", diagCodes(bag))
	}
}

func expectClean(t *testing.T, bag *diag.Bag) {
	t.Helper()
	if bag.Len() != 0 {
		t.Fatalf("expected no diagnostics, got %v", diagCodes(bag))
	}
}

func TestUseAfterMove(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let s = "hello";
	let t = s;
	let u = s;
}
`)
	expectOnly(t, bag, diag.OwnUseAfterMove)
}

func TestCopyTypesDoNotMove(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let a = 1;
	let b = a;
	let c = a;
	let d = a + b + c;
}
`)
	expectClean(t, bag)
}

func TestReassignmentRevivesBinding(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let mut s = "one";
	let t = s;
	s = "two";
	let u = s;
}
`)
	expectClean(t, bag)
}

func TestPartialMoveThenWholeUse(t *testing.T) {
	bag := runVerify(t, `
type Pair = {
	name: string,
	score: int,
};

fn make() -> Pair {
	return;
}

fn main() {
	let p = make();
	let n = p.name;
	let q = p;
}
`)
	expectOnly(t, bag, diag.OwnPartialUse)
}

func TestPartialMoveTwiceSameField(t *testing.T) {
	bag := runVerify(t, `
type Pair = {
	name: string,
	score: int,
};

fn make() -> Pair {
	return;
}

fn main() {
	let p = make();
	let a = p.name;
	let b = p.name;
}
`)
	expectOnly(t, bag, diag.OwnUseAfterMove)
}

func TestPartialMoveLeavesSiblingAlive(t *testing.T) {
	bag := runVerify(t, `
type Pair = {
	name: string,
	tag: string,
};

fn make() -> Pair {
	return;
}

fn main() {
	let p = make();
	let a = p.name;
	let b = p.tag;
}
`)
	expectClean(t, bag)
}

func TestMoveFromDropType(t *testing.T) {
	bag := runVerify(t, `
@drop
type File = {
	path: string,
	fd: int,
};

fn open() -> File {
	return;
}

fn main() {
	let f = open();
	let p = f.path;
}
`)
	expectOnly(t, bag, diag.OwnMoveFromDropType)
}

func TestCopyDropConflict(t *testing.T) {
	bag := runVerify(t, `
@copy
@drop
type Handle = {
	fd: int,
};
`)
	expectOnly(t, bag, diag.OwnCopyDropConflict)
}

func TestMoveFromVectorIndex(t *testing.T) {
	bag := runVerify(t, `
fn names() -> [string] {
	return;
}

fn main() {
	let v = names();
	let s = v[0];
}
`)
	expectOnly(t, bag, diag.OwnMoveFromIndex)
}

func TestMoveFromFixedArrayConstIndex(t *testing.T) {
	bag := runVerify(t, `
fn pair() -> [string; 2] {
	return;
}

fn main() {
	let a = pair();
	let s = a[0];
	let t = a[1];
}
`)
	expectClean(t, bag)
}

func TestCopyElementIndexDoesNotMove(t *testing.T) {
	bag := runVerify(t, `
fn nums() -> [int] {
	return;
}

fn main() {
	let v = nums();
	let a = v[0];
	let b = v[1];
}
`)
	expectClean(t, bag)
}

func TestTwoMutableBorrowsConflict(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let mut x = 0;
	let r1 = &mut x;
	let r2 = &mut x;
	*r1 = 1;
}
`)
	expectOnly(t, bag, diag.OwnBorrowConflict)
}

func TestSharedBorrowsCoexist(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let x = 0;
	let r1 = &x;
	let r2 = &x;
	let y = *r1 + *r2;
}
`)
	expectClean(t, bag)
}

func TestMutateWhileShared(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let mut x = 0;
	let r = &x;
	x = 1;
	let y = *r;
}
`)
	expectOnly(t, bag, diag.OwnMutateWhileShared)
}

func TestAssignWhileMutablyBorrowed(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let mut x = 0;
	let r = &mut x;
	x = 1;
	*r = 2;
}
`)
	expectOnly(t, bag, diag.OwnMutateWhileBorrowed)
}

func TestNonLexicalBorrowEnds(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let mut x = 0;
	let r = &mut x;
	*r = 1;
	let s = &mut x;
	*s = 2;
	x = 3;
}
`)
	expectClean(t, bag)
}

func TestMoveWhileBorrowed(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let s = "hello";
	let r = &s;
	let t = s;
	let same = *r == "hello";
}
`)
	expectOnly(t, bag, diag.OwnMoveWhileBorrowed)
}

func TestMoveOutOfReference(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let s = "hello";
	let r = &s;
	let u = *r;
}
`)
	expectOnly(t, bag, diag.OwnMoveWhileBorrowed)
}

func TestMoveWhileBorrowedThenMoveOutOfReference(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let s = "hello";
	let r = &s;
	let t = s;
	let u = *r;
}
`)
	codes := diagCodes(bag)
	if len(codes) != 2 {
		t.Fatalf("expected two diagnostics, got %v", codes)
	}
	for _, code := range codes {
		if code != diag.OwnMoveWhileBorrowed {
			t.Fatalf("expected only %s, got %v", diag.OwnMoveWhileBorrowed.ID(), codes)
		}
	}
}

func TestWriteThroughMutableReference(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let mut x = 0;
	let r = &mut x;
	*r = 5;
	let y = x;
}
`)
	expectClean(t, bag)
}

func TestAssignThroughSharedReference(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let mut x = 0;
	let r = &x;
	*r = 1;
}
`)
	expectOnly(t, bag, diag.OwnAssignImmutable)
}

func TestMutableReborrowThroughShared(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let mut x = 0;
	let r = &x;
	let q = &mut *r;
}
`)
	expectOnly(t, bag, diag.OwnBorrowImmutable)
}

func TestMutableReborrowChain(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let mut x = 0;
	let r = &mut x;
	let q = &mut *r;
	*q = 7;
}
`)
	expectClean(t, bag)
}

func TestBorrowImmutableBinding(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let x = 0;
	let r = &mut x;
}
`)
	expectOnly(t, bag, diag.OwnBorrowImmutable)
}

func TestAssignToImmutableBinding(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let x = 0;
	x = 1;
}
`)
	expectOnly(t, bag, diag.OwnAssignImmutable)
	d := bag.Items()[0]
	if len(d.Fixes) == 0 {
		t.Fatal("expected a suggested fix inserting 'mut'")
	}
}

func TestBorrowTemporary(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let r = &(1 + 2);
}
`)
	expectOnly(t, bag, diag.OwnNonAddressable)
}

func TestReturnReferenceToLocal(t *testing.T) {
	bag := runVerify(t, `
fn leak() -> &int {
	let a = 1;
	return &a;
}
`)
	expectOnly(t, bag, diag.OwnDanglingRef)
}

func TestReturnReborrowOfParamIsFine(t *testing.T) {
	bag := runVerify(t, `
fn pass(r: &mut int) -> &mut int {
	return &mut *r;
}
`)
	expectClean(t, bag)
}

func TestReferenceEscapesBlock(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let x = 1;
	let mut r = &x;
	{
		let y = 2;
		r = &y;
	}
	let z = *r;
}
`)
	expectOnly(t, bag, diag.OwnDanglingRef)
}

func TestBorrowDiesWithBlockCleanly(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let mut x = 0;
	{
		let r = &mut x;
		*r = 1;
	}
	x = 2;
}
`)
	expectClean(t, bag)
}

func TestBorrowPinnedAcrossLoop(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let mut x = 0;
	let r = &x;
	while x < 10 {
		x = x + 1;
		let y = *r;
	}
}
`)
	if !hasCode(bag, diag.OwnMutateWhileShared) {
		t.Fatalf("expected OwnMutateWhileShared, got %v", diagCodes(bag))
	}
}

func TestBorrowExpiredBeforeLoop(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let mut x = 0;
	let r = &x;
	let y = *r;
	while x < 3 {
		x = x + 1;
	}
}
`)
	expectClean(t, bag)
}

func TestMoveInsideLoop(t *testing.T) {
	bag := runVerify(t, `
fn sink(s: string) {
	return;
}

fn check() -> bool {
	return true;
}

fn main() {
	let s = "hello";
	while check() {
		sink(s);
	}
}
`)
	expectOnly(t, bag, diag.OwnUseAfterMove)
}

func TestMoveInLoopWithReinit(t *testing.T) {
	bag := runVerify(t, `
fn sink(s: string) {
	return;
}

fn check() -> bool {
	return true;
}

fn main() {
	let mut s = "hello";
	while check() {
		sink(s);
		s = "again";
	}
}
`)
	expectClean(t, bag)
}

func TestMoveInBothBranches(t *testing.T) {
	bag := runVerify(t, `
fn check() -> bool {
	return true;
}

fn sink(s: string) {
	return;
}

fn main() {
	let s = "hello";
	if check() {
		sink(s);
	} else {
		sink(s);
	}
}
`)
	expectClean(t, bag)
}

func TestMoveInOneBranchPoisonsJoin(t *testing.T) {
	bag := runVerify(t, `
fn check() -> bool {
	return true;
}

fn sink(s: string) {
	return;
}

fn main() {
	let s = "hello";
	if check() {
		sink(s);
	}
	let t = s;
}
`)
	expectOnly(t, bag, diag.OwnUseAfterMove)
}

func TestConflictingBorrowArguments(t *testing.T) {
	bag := runVerify(t, `
fn both(a: &mut int, b: &mut int) {
	return;
}

fn main() {
	let mut x = 0;
	both(&mut x, &mut x);
}
`)
	expectOnly(t, bag, diag.OwnBorrowConflict)
}

func TestTemporaryBorrowsExpireBetweenCalls(t *testing.T) {
	bag := runVerify(t, `
fn bump(v: &mut int) {
	return;
}

fn main() {
	let mut x = 0;
	bump(&mut x);
	bump(&mut x);
}
`)
	expectClean(t, bag)
}

func TestUnresolvedName(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let x = y;
}
`)
	expectOnly(t, bag, diag.OwnUnresolvedName)
}

func TestDuplicateBindingSameScope(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let x = 1;
	let x = 2;
}
`)
	expectOnly(t, bag, diag.OwnDuplicateName)
}

func TestShadowingInNestedScope(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let x = "outer";
	{
		let x = 1;
		let y = x + 1;
	}
	let z = x;
}
`)
	expectClean(t, bag)
}

func TestUnknownTypeAnnotation(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let x: Mystery = 0;
}
`)
	expectOnly(t, bag, diag.OwnUnknownType)
}

func TestSharedReferenceIsCopy(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let x = 0;
	let r = &x;
	let a = r;
	let b = r;
	let y = *a + *b;
}
`)
	expectClean(t, bag)
}

func TestMutableReferenceMoves(t *testing.T) {
	bag := runVerify(t, `
fn main() {
	let mut x = 0;
	let r = &mut x;
	let a = r;
	let b = r;
}
`)
	expectOnly(t, bag, diag.OwnUseAfterMove)
}
