package types

// IsCopy решает, дублируется ли значение типа при присваивании и передаче
// в вызов, или исходное имя после этого становится мёртвым (move).
//
// Правила:
//   - скалярные builtins (int, uint, float, bool) — copy;
//   - string и векторы владеют памятью в куче — move;
//   - &T — copy, &mut T — move (эксклюзивность не дублируется);
//   - кортежи и фиксированные массивы copy тогда и только тогда, когда
//     copy все компоненты;
//   - record copy только при явном @copy, при всех copy-полях и без @drop;
//   - неизвестный тип консервативно считается move.
func (in *Interner) IsCopy(id TypeID) bool {
	if !id.IsValid() {
		return false
	}
	if memo, ok := in.copyMemo[id]; ok {
		return memo
	}
	// рекурсивные records: пока считаем move, пересчёт после SetRecordFields
	in.copyMemo[id] = false
	result := in.computeCopy(id)
	in.copyMemo[id] = result
	return result
}

func (in *Interner) computeCopy(id TypeID) bool {
	t := in.Get(id)
	switch t.Kind {
	case KindInt, KindUint, KindFloat, KindBool:
		return true
	case KindString, KindVector, KindUnknown:
		return false
	case KindRef:
		return !t.Mutable
	case KindTuple:
		for _, e := range t.Elems {
			if !in.IsCopy(e) {
				return false
			}
		}
		return true
	case KindArray:
		return in.IsCopy(t.Elem)
	case KindRecord:
		if !t.HasCopy || t.HasDrop {
			return false
		}
		for _, f := range t.Fields {
			if !in.IsCopy(f.Type) {
				return false
			}
		}
		return true
	}
	return false
}

// CopyDropConflict reports whether the type claims both bitwise
// copyability and a destructor; such a declaration is rejected outright
// instead of silently preferring one of the two.
func (in *Interner) CopyDropConflict(id TypeID) bool {
	if !id.IsValid() {
		return false
	}
	t := in.Get(id)
	return t.Kind == KindRecord && t.HasCopy && t.HasDrop
}

// HasDrop reports whether dropping a value of this type runs user code,
// which forbids moving out of its fields.
func (in *Interner) HasDrop(id TypeID) bool {
	if !id.IsValid() {
		return false
	}
	return in.Get(id).HasDrop
}
