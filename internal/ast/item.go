package ast

import (
	"rivet/internal/source"
)

type ItemKind uint8

const (
	ItemInvalid ItemKind = iota
	ItemFn
	ItemType
)

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload PayloadID
}

// FnParam is a single function parameter.
type FnParam struct {
	Name source.StringID
	Mut  bool
	Type TypeID
	Span source.Span
}

type ItemFnData struct {
	Name     source.StringID
	NameSpan source.Span
	Params   []FnParam
	Result   TypeID // NoTypeID для функций без результата
	Body     StmtID // блок
}

// TypeField is one field of a record declaration.
type TypeField struct {
	Name source.StringID
	Type TypeID
	Span source.Span
}

type ItemTypeData struct {
	Name     source.StringID
	NameSpan source.Span
	Fields   []TypeField
	// HasDrop отмечает @drop: тип владеет ресурсом и имеет деструктор.
	HasDrop bool
	// HasCopy отмечает @copy: запрошена побитовая копируемость.
	HasCopy bool
}

// Items manages allocation of top-level items.
type Items struct {
	Arena *Arena[Item]
	Fns   *Arena[ItemFnData]
	Types *Arena[ItemTypeData]
}

func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Items{
		Arena: NewArena[Item](capHint),
		Fns:   NewArena[ItemFnData](capHint),
		Types: NewArena[ItemTypeData](capHint),
	}
}

func (it *Items) new(kind ItemKind, span source.Span, payload PayloadID) ItemID {
	return ItemID(it.Arena.Allocate(Item{Kind: kind, Span: span, Payload: payload}))
}

func (it *Items) Get(id ItemID) *Item {
	return it.Arena.Get(uint32(id))
}

func (it *Items) NewFn(span source.Span, name source.StringID, nameSpan source.Span, params []FnParam, result TypeID, body StmtID) ItemID {
	payload := it.Fns.Allocate(ItemFnData{Name: name, NameSpan: nameSpan, Params: params, Result: result, Body: body})
	return it.new(ItemFn, span, PayloadID(payload))
}

func (it *Items) Fn(id ItemID) (*ItemFnData, bool) {
	item := it.Get(id)
	if item == nil || item.Kind != ItemFn {
		return nil, false
	}
	return it.Fns.Get(uint32(item.Payload)), true
}

func (it *Items) NewType(span source.Span, name source.StringID, nameSpan source.Span, fields []TypeField, hasDrop, hasCopy bool) ItemID {
	payload := it.Types.Allocate(ItemTypeData{Name: name, NameSpan: nameSpan, Fields: fields, HasDrop: hasDrop, HasCopy: hasCopy})
	return it.new(ItemType, span, PayloadID(payload))
}

func (it *Items) Type(id ItemID) (*ItemTypeData, bool) {
	item := it.Get(id)
	if item == nil || item.Kind != ItemType {
		return nil, false
	}
	return it.Types.Get(uint32(item.Payload)), true
}
