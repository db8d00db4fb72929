package verify

import (
	"strings"

	"rivet/internal/source"
	"rivet/internal/symbols"
)

// moveSet хранит, какие места уже отданы: целиком перемещённые bindings и
// маски частичных moves (по полям и константным индексам).
type moveSet struct {
	whole   map[symbols.SymbolID]source.Span
	partial map[symbols.SymbolID]map[string]source.Span
}

func newMoveSet() *moveSet {
	return &moveSet{
		whole:   make(map[symbols.SymbolID]source.Span),
		partial: make(map[symbols.SymbolID]map[string]source.Span),
	}
}

func (ms *moveSet) markMoved(place Place, span source.Span) {
	if len(place.Segs) == 0 {
		ms.whole[place.Base] = span
		return
	}
	m := ms.partial[place.Base]
	if m == nil {
		m = make(map[string]source.Span)
		ms.partial[place.Base] = m
	}
	m[segKey(place.Segs)] = span
}

// keyHasPrefix сравнивает пути по границам сегментов: ".1" не префикс ".10".
func keyHasPrefix(key, prefix string) bool {
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	if len(key) == len(prefix) {
		return true
	}
	c := key[len(prefix)]
	return c == '.' || c == '['
}

// movedPrefix возвращает span move, делающего place мёртвым: сам binding
// перемещён целиком, либо перемещён какой-то префикс пути place.
func (ms *moveSet) movedPrefix(place Place) (source.Span, bool) {
	if span, ok := ms.whole[place.Base]; ok {
		return span, true
	}
	key := segKey(place.Segs)
	for moved, span := range ms.partial[place.Base] {
		if keyHasPrefix(key, moved) {
			return span, true
		}
	}
	return source.Span{}, false
}

// movedWithin возвращает span частичного move строго внутри place: целое
// значение нельзя использовать, пока из него вынуты части.
func (ms *moveSet) movedWithin(place Place) (source.Span, bool) {
	key := segKey(place.Segs)
	for moved, span := range ms.partial[place.Base] {
		if len(moved) > len(key) && keyHasPrefix(moved, key) {
			return span, true
		}
	}
	return source.Span{}, false
}

// clone снимает копию состояния для ветвления потока управления.
func (ms *moveSet) clone() *moveSet {
	out := newMoveSet()
	for sym, span := range ms.whole {
		out.whole[sym] = span
	}
	for sym, segs := range ms.partial {
		m := make(map[string]source.Span, len(segs))
		for k, v := range segs {
			m[k] = v
		}
		out.partial[sym] = m
	}
	return out
}

// union вливает moves другой ветки: после слияния веток значение считается
// перемещённым, если его переместила хотя бы одна из них.
func (ms *moveSet) union(other *moveSet) {
	for sym, span := range other.whole {
		if _, ok := ms.whole[sym]; !ok {
			ms.whole[sym] = span
		}
	}
	for sym, segs := range other.partial {
		m := ms.partial[sym]
		if m == nil {
			m = make(map[string]source.Span, len(segs))
			ms.partial[sym] = m
		}
		for k, v := range segs {
			if _, ok := m[k]; !ok {
				m[k] = v
			}
		}
	}
}

// clear восстанавливает place после переинициализации присваиванием.
func (ms *moveSet) clear(place Place) {
	if len(place.Segs) == 0 {
		delete(ms.whole, place.Base)
		delete(ms.partial, place.Base)
		return
	}
	key := segKey(place.Segs)
	m := ms.partial[place.Base]
	for moved := range m {
		if keyHasPrefix(moved, key) {
			delete(m, moved)
		}
	}
	if len(m) == 0 {
		delete(ms.partial, place.Base)
	}
}
