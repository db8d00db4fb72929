package verify

import (
	"fmt"
	"strings"

	"rivet/internal/symbols"
)

// SegmentKind различает шаги пути внутри владельца.
type SegmentKind uint8

const (
	SegField SegmentKind = iota
	SegIndex
	// SegDeref — шаг через ссылку с неизвестным источником (ref-параметр,
	// ссылка из вызова): раскрыть её в место-владельца нельзя.
	SegDeref
)

// Segment is one projection step: a record field (by position) or a
// constant index into a fixed array.
type Segment struct {
	Kind  SegmentKind
	Index uint32
}

// Place — корневой символ плюс путь проекций. Два place пересекаются,
// если путь одного является префиксом пути другого.
type Place struct {
	Base symbols.SymbolID
	Segs []Segment
}

func (p Place) IsValid() bool { return p.Base.IsValid() }

// segKey — канонический ключ пути (для per-symbol масок частичных moves).
func segKey(segs []Segment) string {
	var sb strings.Builder
	for _, seg := range segs {
		switch seg.Kind {
		case SegField:
			fmt.Fprintf(&sb, ".%d", seg.Index)
		case SegIndex:
			fmt.Fprintf(&sb, "[%d]", seg.Index)
		case SegDeref:
			sb.WriteString(".*")
		}
	}
	return sb.String()
}

func (p Place) child(seg Segment) Place {
	segs := make([]Segment, len(p.Segs)+1)
	copy(segs, p.Segs)
	segs[len(p.Segs)] = seg
	return Place{Base: p.Base, Segs: segs}
}

// overlaps reports whether borrowing or mutating p disturbs q.
func (p Place) overlaps(q Place) bool {
	if p.Base != q.Base {
		return false
	}
	n := len(p.Segs)
	if len(q.Segs) < n {
		n = len(q.Segs)
	}
	for i := 0; i < n; i++ {
		if p.Segs[i] != q.Segs[i] {
			return false
		}
	}
	return true
}

// contains reports whether q lies inside p (p prefix of q).
func (p Place) contains(q Place) bool {
	if p.Base != q.Base || len(p.Segs) > len(q.Segs) {
		return false
	}
	for i := range p.Segs {
		if p.Segs[i] != q.Segs[i] {
			return false
		}
	}
	return true
}
