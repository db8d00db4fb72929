package ast

import (
	"rivet/internal/source"
)

// TypeKind enumerates syntactic type expressions.
type TypeKind uint8

const (
	TypeInvalid TypeKind = iota
	TypePath             // именованный тип: int, string, Point
	TypeRef              // &T или &mut T
	TypeTuple            // (T1, T2, ...)
	TypeArray            // [T; N] фиксированный, [T] — вектор
)

type TypeExpr struct {
	Kind    TypeKind
	Span    source.Span
	Payload PayloadID
}

type TypePathData struct {
	Name source.StringID
}

type TypeRefData struct {
	Mut  bool
	Elem TypeID
}

type TypeTupleData struct {
	Elements []TypeID
}

type TypeArrayData struct {
	Elem TypeID
	// Count — длина фиксированного массива; HasCount=false означает вектор [T].
	Count    uint32
	HasCount bool
}

// Types manages allocation of syntactic type expressions.
type Types struct {
	Arena  *Arena[TypeExpr]
	Paths  *Arena[TypePathData]
	Refs   *Arena[TypeRefData]
	Tuples *Arena[TypeTupleData]
	Arrays *Arena[TypeArrayData]
}

func NewTypes(capHint uint) *Types {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Types{
		Arena:  NewArena[TypeExpr](capHint),
		Paths:  NewArena[TypePathData](capHint),
		Refs:   NewArena[TypeRefData](capHint),
		Tuples: NewArena[TypeTupleData](capHint),
		Arrays: NewArena[TypeArrayData](capHint),
	}
}

func (t *Types) new(kind TypeKind, span source.Span, payload PayloadID) TypeID {
	return TypeID(t.Arena.Allocate(TypeExpr{Kind: kind, Span: span, Payload: payload}))
}

func (t *Types) Get(id TypeID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}

func (t *Types) NewPath(span source.Span, name source.StringID) TypeID {
	payload := t.Paths.Allocate(TypePathData{Name: name})
	return t.new(TypePath, span, PayloadID(payload))
}

func (t *Types) Path(id TypeID) (*TypePathData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypePath {
		return nil, false
	}
	return t.Paths.Get(uint32(te.Payload)), true
}

func (t *Types) NewRef(span source.Span, mut bool, elem TypeID) TypeID {
	payload := t.Refs.Allocate(TypeRefData{Mut: mut, Elem: elem})
	return t.new(TypeRef, span, PayloadID(payload))
}

func (t *Types) Ref(id TypeID) (*TypeRefData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypeRef {
		return nil, false
	}
	return t.Refs.Get(uint32(te.Payload)), true
}

func (t *Types) NewTuple(span source.Span, elements []TypeID) TypeID {
	payload := t.Tuples.Allocate(TypeTupleData{Elements: elements})
	return t.new(TypeTuple, span, PayloadID(payload))
}

func (t *Types) Tuple(id TypeID) (*TypeTupleData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypeTuple {
		return nil, false
	}
	return t.Tuples.Get(uint32(te.Payload)), true
}

func (t *Types) NewArray(span source.Span, elem TypeID, count uint32, hasCount bool) TypeID {
	payload := t.Arrays.Allocate(TypeArrayData{Elem: elem, Count: count, HasCount: hasCount})
	return t.new(TypeArray, span, PayloadID(payload))
}

func (t *Types) Array(id TypeID) (*TypeArrayData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypeArray {
		return nil, false
	}
	return t.Arrays.Get(uint32(te.Payload)), true
}
