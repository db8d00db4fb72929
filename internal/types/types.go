package types

import (
	"rivet/internal/source"
)

// TypeID identifies an interned semantic type.
type TypeID uint32

const NoTypeID TypeID = 0

func (id TypeID) IsValid() bool { return id != NoTypeID }

// Kind enumerates semantic type shapes.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindUint
	KindFloat
	KindBool
	// KindString владеет памятью в куче: move-тип.
	KindString
	KindRef
	KindTuple
	// KindArray — фиксированный [T; N], раскладка известна на компиляции.
	KindArray
	// KindVector — динамический [T], владеет буфером в куче.
	KindVector
	KindRecord
	// KindUnknown — неразрешённый тип; классифицируется как move.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindRef:
		return "reference"
	case KindTuple:
		return "tuple"
	case KindArray:
		return "array"
	case KindVector:
		return "vector"
	case KindRecord:
		return "record"
	case KindUnknown:
		return "unknown"
	}
	return "invalid"
}

// Field is one named part of a record type.
type Field struct {
	Name source.StringID
	Type TypeID
}

// Type is the interned representation; unused members stay zero.
type Type struct {
	Kind Kind
	// Name заполняется для records.
	Name source.StringID
	// Elem — для ссылок, массивов и векторов.
	Elem TypeID
	// Mutable — для &mut.
	Mutable bool
	// Count — длина фиксированного массива.
	Count uint32
	// Elems — для кортежей.
	Elems []TypeID
	// Fields — для records.
	Fields []Field
	// HasDrop — тип определяет деструктор (@drop).
	HasDrop bool
	// HasCopy — тип запросил побитовую копируемость (@copy).
	HasCopy bool
}
