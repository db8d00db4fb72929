package types

import (
	"testing"

	"rivet/internal/source"
)

func newTestInterner() (*Interner, *source.Interner) {
	strs := source.NewInterner()
	return NewInterner(strs), strs
}

func TestScalarsAreCopy(t *testing.T) {
	in, _ := newTestInterner()
	for _, id := range []TypeID{in.Builtins.Int, in.Builtins.Uint, in.Builtins.Float, in.Builtins.Bool} {
		if !in.IsCopy(id) {
			t.Errorf("%s should be copy", in.String(id))
		}
	}
	if in.IsCopy(in.Builtins.String) {
		t.Error("string should be move")
	}
	if in.IsCopy(in.Builtins.Unknown) {
		t.Error("unknown should classify as move")
	}
}

func TestReferenceCopyability(t *testing.T) {
	in, _ := newTestInterner()
	shared := in.MakeRef(in.Builtins.Int, false)
	exclusive := in.MakeRef(in.Builtins.Int, true)
	if !in.IsCopy(shared) {
		t.Error("&int should be copy")
	}
	if in.IsCopy(exclusive) {
		t.Error("&mut int should be move")
	}
}

func TestCompositesCloseOverComponents(t *testing.T) {
	in, _ := newTestInterner()

	allScalar := in.MakeTuple([]TypeID{in.Builtins.Int, in.Builtins.Bool})
	if !in.IsCopy(allScalar) {
		t.Error("(int, bool) should be copy")
	}
	withString := in.MakeTuple([]TypeID{in.Builtins.Int, in.Builtins.String})
	if in.IsCopy(withString) {
		t.Error("(int, string) should be move")
	}

	fixedInts := in.MakeArray(in.Builtins.Int, 4)
	if !in.IsCopy(fixedInts) {
		t.Error("[int; 4] should be copy")
	}
	fixedStrings := in.MakeArray(in.Builtins.String, 2)
	if in.IsCopy(fixedStrings) {
		t.Error("[string; 2] should be move")
	}
	vec := in.MakeVector(in.Builtins.Int)
	if in.IsCopy(vec) {
		t.Error("[int] should be move")
	}
}

func TestRecordCopyRequiresOptIn(t *testing.T) {
	in, strs := newTestInterner()

	plain := in.DeclareRecord(strs.Intern("Point"), false, false)
	in.SetRecordFields(plain, []Field{
		{Name: strs.Intern("x"), Type: in.Builtins.Int},
		{Name: strs.Intern("y"), Type: in.Builtins.Int},
	})
	if in.IsCopy(plain) {
		t.Error("record without @copy should be move")
	}

	opted := in.DeclareRecord(strs.Intern("Pixel"), false, true)
	in.SetRecordFields(opted, []Field{
		{Name: strs.Intern("x"), Type: in.Builtins.Int},
	})
	if !in.IsCopy(opted) {
		t.Error("@copy record with scalar fields should be copy")
	}

	heavy := in.DeclareRecord(strs.Intern("Named"), false, true)
	in.SetRecordFields(heavy, []Field{
		{Name: strs.Intern("name"), Type: in.Builtins.String},
	})
	if in.IsCopy(heavy) {
		t.Error("@copy record with a move field should still be move")
	}
}

func TestDropForbidsCopy(t *testing.T) {
	in, strs := newTestInterner()

	conflicted := in.DeclareRecord(strs.Intern("Handle"), true, true)
	in.SetRecordFields(conflicted, []Field{
		{Name: strs.Intern("fd"), Type: in.Builtins.Int},
	})
	if !in.CopyDropConflict(conflicted) {
		t.Error("@copy @drop should report a conflict")
	}
	if in.IsCopy(conflicted) {
		t.Error("conflicted record must never classify as copy")
	}

	dropped := in.DeclareRecord(strs.Intern("File"), true, false)
	in.SetRecordFields(dropped, []Field{
		{Name: strs.Intern("fd"), Type: in.Builtins.Int},
	})
	if in.CopyDropConflict(dropped) {
		t.Error("@drop alone is not a conflict")
	}
	if in.IsCopy(dropped) {
		t.Error("@drop record should be move")
	}
	if !in.HasDrop(dropped) {
		t.Error("HasDrop should see the destructor")
	}
}

func TestInterningDeduplicates(t *testing.T) {
	in, _ := newTestInterner()
	a := in.MakeRef(in.Builtins.Int, true)
	b := in.MakeRef(in.Builtins.Int, true)
	if a != b {
		t.Fatalf("same shape interned twice: %d vs %d", a, b)
	}
	if in.MakeTuple(nil) != in.Builtins.Unit {
		t.Fatal("empty tuple should intern to unit")
	}
}
