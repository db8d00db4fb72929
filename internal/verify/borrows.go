package verify

import (
	"fmt"

	"fortio.org/safecast"

	"rivet/internal/source"
	"rivet/internal/symbols"
)

type BorrowID uint32

const NoBorrowID BorrowID = 0

func (id BorrowID) IsValid() bool { return id != NoBorrowID }

type BorrowKind uint8

const (
	BorrowShared BorrowKind = iota
	BorrowMut
)

func (k BorrowKind) String() string {
	if k == BorrowMut {
		return "mutable"
	}
	return "shared"
}

type borrowInfo struct {
	Kind  BorrowKind
	Place Place
	// Span указывает на выражение заимствования.
	Span source.Span
	// Holder — binding, в котором живёт ссылка; NoSymbolID для временных
	// (аргумент вызова, операнд) — те умирают в конце своего statement.
	Holder symbols.SymbolID
	// ExpiresAt — ordinal последнего использования holder; после него
	// заимствование снимается (non-lexical).
	ExpiresAt uint32
	// ThroughShared — цепочка reborrow прошла через shared звено:
	// запись через такую ссылку запрещена даже если она сама &mut.
	ThroughShared bool
	// External — место за неотслеживаемой ссылкой (ref-параметр):
	// конфликты считаем, но владелец живёт у вызывающего.
	External bool
}

// borrowTable отслеживает активные заимствования одной функции.
type borrowTable struct {
	infos  []borrowInfo
	active map[BorrowID]struct{}
	// bindingBorrow связывает 'let r = &x' с его заимствованием,
	// чтобы разворачивать '*r' обратно в x.
	bindingBorrow map[symbols.SymbolID]BorrowID
}

func newBorrowTable() *borrowTable {
	return &borrowTable{
		infos:         make([]borrowInfo, 1),
		active:        make(map[BorrowID]struct{}),
		bindingBorrow: make(map[symbols.SymbolID]BorrowID),
	}
}

func (bt *borrowTable) begin(kind BorrowKind, place Place, span source.Span, holder symbols.SymbolID, expiresAt uint32, throughShared bool) BorrowID {
	id, err := safecast.Conv[BorrowID](len(bt.infos))
	if err != nil {
		panic(fmt.Errorf("verify: borrow overflow: %w", err))
	}
	bt.infos = append(bt.infos, borrowInfo{
		Kind:          kind,
		Place:         place,
		Span:          span,
		Holder:        holder,
		ExpiresAt:     expiresAt,
		ThroughShared: throughShared,
	})
	bt.active[id] = struct{}{}
	if holder.IsValid() {
		bt.bindingBorrow[holder] = id
	}
	return id
}

func (bt *borrowTable) info(id BorrowID) borrowInfo { return bt.infos[id] }

func (bt *borrowTable) end(id BorrowID) {
	delete(bt.active, id)
}

// expire снимает заимствования, чей держатель больше не используется.
func (bt *borrowTable) expire(ord uint32) {
	for id := range bt.active {
		if bt.infos[id].ExpiresAt < ord {
			delete(bt.active, id)
		}
	}
}

// adopt переселяет заимствование к новому держателю: эксклюзивное
// переходит (вместе со сроком), shared добавляет держателя и продлевается.
func (bt *borrowTable) adopt(id BorrowID, holder symbols.SymbolID, expiresAt uint32) {
	info := &bt.infos[id]
	if info.Kind == BorrowMut {
		info.Holder = holder
		info.ExpiresAt = expiresAt
	} else if expiresAt > info.ExpiresAt {
		info.ExpiresAt = expiresAt
	}
	bt.bindingBorrow[holder] = id
}

func (bt *borrowTable) markExternal(id BorrowID) {
	bt.infos[id].External = true
}

func (bt *borrowTable) borrowFor(binding symbols.SymbolID) (BorrowID, bool) {
	id, ok := bt.bindingBorrow[binding]
	if !ok {
		return NoBorrowID, false
	}
	if _, live := bt.active[id]; !live {
		return NoBorrowID, false
	}
	return id, true
}

// conflicting возвращает первое живое заимствование, нарушающее XOR с новым
// заимствованием kind места place. exclude исключает саму разворачиваемую
// цепочку (reborrow не конфликтует со своим источником).
func (bt *borrowTable) conflicting(kind BorrowKind, place Place, exclude BorrowID) (BorrowID, bool) {
	best := NoBorrowID
	for id := range bt.active {
		if id == exclude {
			continue
		}
		info := bt.infos[id]
		if !info.Place.overlaps(place) {
			continue
		}
		if kind == BorrowShared && info.Kind == BorrowShared {
			continue
		}
		if !best.IsValid() || id < best {
			best = id
		}
	}
	return best, best.IsValid()
}

// mutBlocker возвращает живое эксклюзивное заимствование place (для чтений
// и moves мимо заимствования).
func (bt *borrowTable) mutBlocker(place Place, exclude BorrowID) (BorrowID, bool) {
	best := NoBorrowID
	for id := range bt.active {
		if id == exclude {
			continue
		}
		info := bt.infos[id]
		if info.Kind != BorrowMut || !info.Place.overlaps(place) {
			continue
		}
		if !best.IsValid() || id < best {
			best = id
		}
	}
	return best, best.IsValid()
}

// anyBlocker возвращает любое живое заимствование, пересекающееся с place:
// и запись, и move конфликтуют как с shared, так и с эксклюзивным.
func (bt *borrowTable) anyBlocker(place Place, exclude BorrowID) (BorrowID, bool) {
	return bt.conflicting(BorrowMut, place, exclude)
}

// borrowsOf перечисляет живые заимствования, чьё место лежит внутри root.
func (bt *borrowTable) borrowsOf(root Place) []BorrowID {
	var out []BorrowID
	for id := range bt.active {
		if root.contains(bt.infos[id].Place) {
			out = append(out, id)
		}
	}
	return out
}
