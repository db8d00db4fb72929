package diag

import (
	"testing"

	"rivet/internal/source"
)

func TestBagRespectsLimit(t *testing.T) {
	bag := NewBag(2)
	for i := 0; i < 3; i++ {
		ok := bag.Add(Diagnostic{Severity: SevError, Code: OwnUseAfterMove})
		if i < 2 && !ok {
			t.Fatalf("add %d rejected below cap", i)
		}
		if i == 2 && ok {
			t.Fatal("add above cap accepted")
		}
	}
	if bag.Len() != 2 {
		t.Fatalf("len = %d, want 2", bag.Len())
	}
}

func TestBagSortIsDeterministic(t *testing.T) {
	bag := NewBag(8)
	spanAt := func(start uint32) source.Span {
		return source.Span{File: 1, Start: start, End: start + 1}
	}
	bag.Add(Diagnostic{Severity: SevWarning, Code: OwnPartialUse, Primary: spanAt(9)})
	bag.Add(Diagnostic{Severity: SevError, Code: OwnUseAfterMove, Primary: spanAt(4)})
	bag.Add(Diagnostic{Severity: SevError, Code: OwnBorrowConflict, Primary: spanAt(4)})
	bag.Sort()

	items := bag.Items()
	if items[0].Primary.Start != 4 || items[2].Primary.Start != 9 {
		t.Fatalf("unexpected order after sort: %v", items)
	}
	// одинаковые span и severity — порядок по коду
	if items[0].Code > items[1].Code {
		t.Fatalf("codes out of order: %v before %v", items[0].Code, items[1].Code)
	}
}

func TestBagDedup(t *testing.T) {
	bag := NewBag(8)
	d := Diagnostic{Severity: SevError, Code: OwnUseAfterMove, Primary: source.Span{File: 1, Start: 2, End: 3}}
	bag.Add(d)
	bag.Add(d)
	bag.Add(Diagnostic{Severity: SevError, Code: OwnUseAfterMove, Primary: source.Span{File: 1, Start: 5, End: 6}})
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("len after dedup = %d, want 2", bag.Len())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(4)
	b := ReportError(BagReporter{Bag: bag}, OwnBorrowConflict, source.Span{}, "conflicting borrow of 'x'").
		WithNote(source.Span{}, "previous borrow is here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("len = %d, want 1", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("notes = %d, want 1", len(bag.Items()[0].Notes))
	}
}

func TestCodeIDRoundTrip(t *testing.T) {
	if OwnUseAfterMove.ID() != "OWN3004" {
		t.Fatalf("ID = %q", OwnUseAfterMove.ID())
	}
	code, ok := ParseCodeID("OWN3004")
	if !ok || code != OwnUseAfterMove {
		t.Fatalf("ParseCodeID = %v, %v", code, ok)
	}
	if _, ok := ParseCodeID("OWN9999"); ok {
		t.Fatal("expected miss for unknown ID")
	}
}
