package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"rivet/internal/source"
)

// Builtins exposes the pre-interned scalar types.
type Builtins struct {
	Int     TypeID
	Uint    TypeID
	Float   TypeID
	Bool    TypeID
	String  TypeID
	Unit    TypeID
	Unknown TypeID
}

// Interner хранит канонические типы; одинаковые shapes получают один TypeID.
type Interner struct {
	byID []Type
	// lookup по структурному ключу; records канонизируются по имени.
	byKey    map[string]TypeID
	Builtins Builtins

	// copyMemo кэширует ответы классификатора.
	copyMemo map[TypeID]bool

	strings *source.Interner
}

func NewInterner(strings *source.Interner) *Interner {
	in := &Interner{
		byID:     make([]Type, 1), // [0] зарезервирован под NoTypeID
		byKey:    make(map[string]TypeID),
		copyMemo: make(map[TypeID]bool),
		strings:  strings,
	}
	in.Builtins = Builtins{
		Int:     in.intern(Type{Kind: KindInt}, "int"),
		Uint:    in.intern(Type{Kind: KindUint}, "uint"),
		Float:   in.intern(Type{Kind: KindFloat}, "float"),
		Bool:    in.intern(Type{Kind: KindBool}, "bool"),
		String:  in.intern(Type{Kind: KindString}, "string"),
		Unit:    in.intern(Type{Kind: KindTuple}, "()"),
		Unknown: in.intern(Type{Kind: KindUnknown}, "?"),
	}
	return in
}

func (in *Interner) intern(t Type, key string) TypeID {
	if id, ok := in.byKey[key]; ok {
		return id
	}
	id, err := safecast.Conv[TypeID](len(in.byID))
	if err != nil {
		panic(fmt.Errorf("types: interner overflow: %w", err))
	}
	in.byID = append(in.byID, t)
	in.byKey[key] = id
	return id
}

// Get возвращает тип по ID; паникует на невалидном ID.
func (in *Interner) Get(id TypeID) Type {
	if id == NoTypeID || int(id) >= len(in.byID) {
		panic(fmt.Errorf("types: invalid TypeID %d", id))
	}
	return in.byID[id]
}

func (in *Interner) Len() int { return len(in.byID) - 1 }

// LookupBuiltin resolves a source-level type name to a builtin scalar.
func (in *Interner) LookupBuiltin(name string) (TypeID, bool) {
	switch name {
	case "int":
		return in.Builtins.Int, true
	case "uint":
		return in.Builtins.Uint, true
	case "float":
		return in.Builtins.Float, true
	case "bool":
		return in.Builtins.Bool, true
	case "string":
		return in.Builtins.String, true
	}
	return NoTypeID, false
}

func (in *Interner) MakeRef(elem TypeID, mutable bool) TypeID {
	key := fmt.Sprintf("&%v:%d", mutable, elem)
	return in.intern(Type{Kind: KindRef, Elem: elem, Mutable: mutable}, key)
}

func (in *Interner) MakeTuple(elems []TypeID) TypeID {
	if len(elems) == 0 {
		return in.Builtins.Unit
	}
	var sb strings.Builder
	sb.WriteString("tup")
	for _, e := range elems {
		fmt.Fprintf(&sb, ":%d", e)
	}
	return in.intern(Type{Kind: KindTuple, Elems: elems}, sb.String())
}

func (in *Interner) MakeArray(elem TypeID, count uint32) TypeID {
	key := fmt.Sprintf("arr:%d;%d", elem, count)
	return in.intern(Type{Kind: KindArray, Elem: elem, Count: count}, key)
}

func (in *Interner) MakeVector(elem TypeID) TypeID {
	key := fmt.Sprintf("vec:%d", elem)
	return in.intern(Type{Kind: KindVector, Elem: elem}, key)
}

// DeclareRecord регистрирует именованный record; поля могут быть дозаполнены
// позже через SetRecordFields (двухфазная регистрация для взаимных ссылок).
func (in *Interner) DeclareRecord(name source.StringID, hasDrop, hasCopy bool) TypeID {
	key := "rec:" + in.strings.MustLookup(name)
	id := in.intern(Type{Kind: KindRecord, Name: name, HasDrop: hasDrop, HasCopy: hasCopy}, key)
	return id
}

func (in *Interner) SetRecordFields(id TypeID, fields []Field) {
	t := in.Get(id)
	if t.Kind != KindRecord {
		panic(fmt.Errorf("types: SetRecordFields on %s", t.Kind))
	}
	in.byID[id].Fields = fields
	// поля могли поменять ответ классификатора
	in.copyMemo = make(map[TypeID]bool)
}

// RecordByName ищет ранее объявленный record.
func (in *Interner) RecordByName(name string) (TypeID, bool) {
	id, ok := in.byKey["rec:"+name]
	return id, ok
}

// FieldIndex возвращает позицию поля в record или -1.
func (in *Interner) FieldIndex(id TypeID, name source.StringID) int {
	t := in.Get(id)
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// String renders a type for diagnostics.
func (in *Interner) String(id TypeID) string {
	if id == NoTypeID {
		return "<none>"
	}
	t := in.Get(id)
	switch t.Kind {
	case KindRef:
		if t.Mutable {
			return "&mut " + in.String(t.Elem)
		}
		return "&" + in.String(t.Elem)
	case KindTuple:
		if len(t.Elems) == 0 {
			return "()"
		}
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = in.String(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindArray:
		return fmt.Sprintf("[%s; %d]", in.String(t.Elem), t.Count)
	case KindVector:
		return "[" + in.String(t.Elem) + "]"
	case KindRecord:
		return in.strings.MustLookup(t.Name)
	case KindUnknown:
		return "?"
	default:
		return t.Kind.String()
	}
}
