package verify

import (
	"fmt"
	"strconv"

	"rivet/internal/ast"
	"rivet/internal/diag"
	"rivet/internal/source"
	"rivet/internal/symbols"
	"rivet/internal/types"
)

// useContext различает чтение места и забор значения из него.
type useContext uint8

const (
	// useRead — операнд, условие, индекс: значение читается на месте.
	useRead useContext = iota
	// useValue — инициализатор, аргумент, правая часть присваивания,
	// возврат: значение уходит из места (copy или move по типу).
	useValue
)

// placeInfo — результат разрешения place-выражения.
type placeInfo struct {
	place Place
	typ   types.TypeID
	// chainBorrow — заимствование, через которое раскрыт deref;
	// исключается из проверок конфликтов.
	chainBorrow BorrowID
	// viaDeref — путь прошёл хотя бы через одну ссылку.
	viaDeref bool
	// viaShared — в цепочке встретилось shared звено: запись запрещена.
	viaShared bool
	// external — источник ссылки не отслеживается (ref-параметр).
	external bool
	// parentHasDrop — какой-то префикс пути имеет тип с деструктором.
	parentHasDrop bool
	// runtimeIndex — индекс не константа либо контейнер — вектор;
	// place при этом консервативно накрывает весь контейнер.
	runtimeIndex bool
}

// fnChecker — состояние второго прохода по одной функции.
type fnChecker struct {
	c          *Checker
	bt         *borrowTable
	ms         *moveSet
	ord        uint32
	lastBorrow BorrowID
}

func (fc *fnChecker) verifyStmt(id ast.StmtID) {
	fc.ord = fc.c.stmtOrd[id]
	fc.bt.expire(fc.ord)

	switch fc.c.builder.Stmts.Get(id).Kind {
	case ast.StmtLet:
		fc.verifyLet(id)

	case ast.StmtExpr:
		stmt, _ := fc.c.builder.Stmts.Expr(id)
		fc.verifyExpr(stmt.Expr, useValue)

	case ast.StmtBlock:
		block, _ := fc.c.builder.Stmts.Block(id)
		for _, s := range block.Stmts {
			fc.verifyStmt(s)
		}
		fc.ord = fc.c.blockEnd[id]
		fc.exitBlock(id)

	case ast.StmtIf:
		stmt, _ := fc.c.builder.Stmts.If(id)
		fc.verifyExpr(stmt.Cond, useRead)
		// ветки проверяются на независимых копиях состояния moves;
		// после слияния действует объединение (move хотя бы в одной ветке)
		before := fc.ms.clone()
		fc.verifyStmt(stmt.Then)
		afterThen := fc.ms
		fc.ms = before
		if stmt.Else.IsValid() {
			fc.verifyStmt(stmt.Else)
		}
		fc.ms.union(afterThen)

	case ast.StmtWhile:
		fc.verifyWhile(id)

	case ast.StmtReturn:
		stmt, _ := fc.c.builder.Stmts.Return(id)
		if stmt.Value.IsValid() {
			fc.verifyExpr(stmt.Value, useValue)
			fc.checkReturnEscape(stmt.Value)
		}
	}
}

func (fc *fnChecker) verifyLet(id ast.StmtID) {
	let, _ := fc.c.builder.Stmts.Let(id)
	sym := fc.c.letSymbol[id]

	declared := types.NoTypeID
	if let.Type.IsValid() {
		declared = fc.c.resolveTypeSyntax(let.Type)
	}
	initType := fc.verifyInit(let.Init, sym)

	typ := initType
	if declared.IsValid() && declared != fc.c.types.Builtins.Unknown {
		typ = declared
	}
	if !typ.IsValid() {
		typ = fc.c.types.Builtins.Unknown
	}
	if sym.IsValid() {
		fc.c.table.SetType(sym, typ)
	}
}

// verifyInit обрабатывает выражение, чьё значение оседает в binding holder:
// заимствование в правой части привязывается к holder и живёт до его
// последнего использования.
func (fc *fnChecker) verifyInit(id ast.ExprID, holder symbols.SymbolID) types.TypeID {
	if !id.IsValid() {
		return fc.c.types.Builtins.Unknown
	}
	expr := fc.c.builder.Exprs.Get(id)

	if expr.Kind == ast.ExprGroup {
		group, _ := fc.c.builder.Exprs.Group(id)
		return fc.verifyInit(group.Inner, holder)
	}
	if expr.Kind == ast.ExprUnary {
		unary, _ := fc.c.builder.Exprs.Unary(id)
		if unary.Op == ast.ExprUnaryRef || unary.Op == ast.ExprUnaryRefMut {
			return fc.borrowExpr(id, holder)
		}
	}

	typ := fc.verifyExpr(id, useValue)

	// 'let r2 = r;' для ссылки переносит (или разделяет) заимствование
	if holder.IsValid() && expr.Kind == ast.ExprIdent {
		if src, ok := fc.c.resolutions[id]; ok {
			if b, live := fc.bt.borrowFor(src); live {
				fc.bt.adopt(b, holder, fc.c.lastUse[holder])
			}
		}
	}
	return typ
}

func (fc *fnChecker) verifyExpr(id ast.ExprID, ctx useContext) types.TypeID {
	if !id.IsValid() {
		return fc.c.types.Builtins.Unknown
	}
	c := fc.c
	expr := c.builder.Exprs.Get(id)

	switch expr.Kind {
	case ast.ExprIdent, ast.ExprMember, ast.ExprIndex:
		pi, ok := fc.resolvePlace(id)
		if ok {
			fc.placeUse(pi, expr.Span, ctx)
		}
		return pi.typ

	case ast.ExprLit:
		lit, _ := c.builder.Exprs.Literal(id)
		switch lit.Kind {
		case ast.ExprLitInt:
			return c.types.Builtins.Int
		case ast.ExprLitFloat:
			return c.types.Builtins.Float
		case ast.ExprLitString:
			return c.types.Builtins.String
		default:
			return c.types.Builtins.Bool
		}

	case ast.ExprUnary:
		unary, _ := c.builder.Exprs.Unary(id)
		switch unary.Op {
		case ast.ExprUnaryRef, ast.ExprUnaryRefMut:
			return fc.borrowExpr(id, symbols.NoSymbolID)
		case ast.ExprUnaryDeref:
			pi, ok := fc.resolvePlace(id)
			if ok {
				fc.placeUse(pi, expr.Span, ctx)
			}
			return pi.typ
		case ast.ExprUnaryNot:
			fc.verifyExpr(unary.Operand, useRead)
			return c.types.Builtins.Bool
		default:
			return fc.verifyExpr(unary.Operand, useRead)
		}

	case ast.ExprBinary:
		bin, _ := c.builder.Exprs.Binary(id)
		if bin.Op == ast.ExprBinaryAssign {
			return fc.verifyAssign(bin)
		}
		left := fc.verifyExpr(bin.Left, useRead)
		right := fc.verifyExpr(bin.Right, useRead)
		switch bin.Op {
		case ast.ExprBinaryEq, ast.ExprBinaryNotEq, ast.ExprBinaryLt, ast.ExprBinaryLtEq,
			ast.ExprBinaryGt, ast.ExprBinaryGtEq, ast.ExprBinaryAnd, ast.ExprBinaryOr:
			return c.types.Builtins.Bool
		}
		if left.IsValid() && left != c.types.Builtins.Unknown {
			return left
		}
		return right

	case ast.ExprCall:
		return fc.verifyCall(id)

	case ast.ExprGroup:
		group, _ := c.builder.Exprs.Group(id)
		return fc.verifyExpr(group.Inner, ctx)

	case ast.ExprTuple:
		tuple, _ := c.builder.Exprs.Tuple(id)
		elems := make([]types.TypeID, 0, len(tuple.Elements))
		for _, e := range tuple.Elements {
			elems = append(elems, fc.verifyExpr(e, useValue))
		}
		return c.types.MakeTuple(elems)

	case ast.ExprArray:
		array, _ := c.builder.Exprs.Array(id)
		elem := c.types.Builtins.Unknown
		for i, e := range array.Elements {
			t := fc.verifyExpr(e, useValue)
			if i == 0 {
				elem = t
			}
		}
		return c.types.MakeArray(elem, uint32(len(array.Elements)))
	}
	return c.types.Builtins.Unknown
}

func (fc *fnChecker) verifyCall(id ast.ExprID) types.TypeID {
	c := fc.c
	call, _ := c.builder.Exprs.Call(id)

	var sig *fnSig
	target := call.Target
	for {
		if group, ok := c.builder.Exprs.Group(target); ok {
			target = group.Inner
			continue
		}
		break
	}
	if ident, ok := c.builder.Exprs.Ident(target); ok {
		if sym, resolved := c.resolutions[target]; resolved && c.table.Get(sym).Kind == symbols.SymbolFunction {
			sig = c.sigs[ident.Name]
		}
	}
	if sig == nil {
		fc.verifyExpr(call.Target, useRead)
	}

	for _, arg := range call.Args {
		fc.verifyExpr(arg, useValue)
	}
	if sig != nil {
		return sig.result
	}
	return c.types.Builtins.Unknown
}

func (fc *fnChecker) verifyAssign(bin *ast.ExprBinaryData) types.TypeID {
	c := fc.c
	lhsSpan := c.builder.Exprs.Get(bin.Left).Span

	pi, ok := fc.resolvePlace(bin.Left)

	holder := symbols.NoSymbolID
	if ok && len(pi.place.Segs) == 0 && !pi.viaDeref {
		holder = pi.place.Base
		// перезапись binding снимает прежнее заимствование, которое он держал
		if old, live := fc.bt.borrowFor(holder); live {
			fc.bt.end(old)
		}
	}
	fc.verifyInit(bin.Right, holder)

	if !ok {
		c.reportError(diag.OwnNonAddressable, lhsSpan, "cannot assign to this expression").Emit()
		return c.types.Builtins.Unit
	}
	name := c.placeString(pi.place)

	if pi.viaDeref && pi.viaShared {
		c.reportError(diag.OwnAssignImmutable, lhsSpan,
			"cannot assign to '%s' through a shared reference", name).Emit()
		return c.types.Builtins.Unit
	}
	if !pi.viaDeref {
		base := c.table.Get(pi.place.Base)
		if !base.Flags.Has(symbols.FlagMutable) {
			c.reportError(diag.OwnAssignImmutable, lhsSpan,
				"cannot assign to '%s': binding is not declared 'mut'", name).
				WithNote(base.Span, "declared immutable here").
				WithFix("declare the binding as mutable", diag.FixEdit{
					Span:    source.Span{File: base.Span.File, Start: base.Span.Start, End: base.Span.Start},
					NewText: "mut ",
				}).Emit()
			return c.types.Builtins.Unit
		}
	}

	// запись в часть уже перемещённого значения
	if len(pi.place.Segs) > 0 {
		parent := Place{Base: pi.place.Base, Segs: pi.place.Segs[:len(pi.place.Segs)-1]}
		if mspan, moved := fc.ms.movedPrefix(parent); moved {
			c.reportError(diag.OwnUseAfterMove, lhsSpan,
				"cannot assign to part of moved value '%s'", c.placeString(parent)).
				WithNote(mspan, "value moved here").Emit()
			return c.types.Builtins.Unit
		}
	}

	if b, blocked := fc.bt.anyBlocker(pi.place, pi.chainBorrow); blocked {
		info := fc.bt.info(b)
		if info.Kind == BorrowShared {
			c.reportError(diag.OwnMutateWhileShared, lhsSpan,
				"cannot assign to '%s' while it is borrowed as shared", name).
				WithNote(info.Span, "shared borrow occurs here").Emit()
		} else {
			c.reportError(diag.OwnMutateWhileBorrowed, lhsSpan,
				"cannot assign to '%s' while it is mutably borrowed", name).
				WithNote(info.Span, "mutable borrow occurs here").Emit()
		}
		return c.types.Builtins.Unit
	}

	fc.ms.clear(pi.place)
	return c.types.Builtins.Unit
}

// borrowExpr создаёт заимствование '&e' / '&mut e'. holder — binding, в
// который ссылка попадает; для временных ссылок NoSymbolID.
func (fc *fnChecker) borrowExpr(id ast.ExprID, holder symbols.SymbolID) types.TypeID {
	c := fc.c
	fc.lastBorrow = NoBorrowID
	unary, _ := c.builder.Exprs.Unary(id)
	mut := unary.Op == ast.ExprUnaryRefMut
	span := c.builder.Exprs.Get(id).Span

	pi, ok := fc.resolvePlace(unary.Operand)
	refType := c.types.MakeRef(pi.typ, mut)
	if !ok {
		if pi.typ != c.types.Builtins.Unknown {
			c.reportError(diag.OwnNonAddressable, span,
				"cannot borrow a temporary value").Emit()
		}
		return refType
	}
	name := c.placeString(pi.place)

	if mspan, moved := fc.ms.movedPrefix(pi.place); moved {
		c.reportError(diag.OwnUseAfterMove, span,
			"cannot borrow moved value '%s'", name).
			WithNote(mspan, "value moved here").Emit()
		return refType
	}
	if mspan, moved := fc.ms.movedWithin(pi.place); moved {
		c.reportError(diag.OwnPartialUse, span,
			"cannot borrow partially moved value '%s'", name).
			WithNote(mspan, "part of the value moved here").Emit()
		return refType
	}

	if mut {
		if pi.viaDeref && pi.viaShared {
			c.reportError(diag.OwnBorrowImmutable, span,
				"cannot reborrow '%s' mutably through a shared reference", name).Emit()
			return refType
		}
		if !pi.viaDeref {
			base := c.table.Get(pi.place.Base)
			if !base.Flags.Has(symbols.FlagMutable) {
				c.reportError(diag.OwnBorrowImmutable, span,
					"cannot mutably borrow '%s': binding is not declared 'mut'", name).
					WithNote(base.Span, "declared immutable here").
					WithFix("declare the binding as mutable", diag.FixEdit{
						Span:    source.Span{File: base.Span.File, Start: base.Span.Start, End: base.Span.Start},
						NewText: "mut ",
					}).Emit()
				return refType
			}
		}
	}

	kind := BorrowShared
	if mut {
		kind = BorrowMut
	}
	if b, conflict := fc.bt.conflicting(kind, pi.place, pi.chainBorrow); conflict {
		info := fc.bt.info(b)
		c.reportError(diag.OwnBorrowConflict, span,
			"cannot borrow '%s' as %s while a %s borrow is alive", name, kind, info.Kind).
			WithNote(info.Span, "earlier borrow occurs here").Emit()
		return refType
	}

	expires := fc.ord
	if holder.IsValid() {
		expires = c.lastUse[holder]
	}
	fc.lastBorrow = fc.bt.begin(kind, pi.place, span, holder, expires, pi.viaShared)
	if pi.external {
		fc.bt.markExternal(fc.lastBorrow)
	}
	return refType
}

// placeUse проверяет чтение либо забор значения из place и помечает move.
func (fc *fnChecker) placeUse(pi placeInfo, span source.Span, ctx useContext) {
	c := fc.c
	name := c.placeString(pi.place)

	if mspan, moved := fc.ms.movedPrefix(pi.place); moved {
		c.reportError(diag.OwnUseAfterMove, span,
			"use of moved value '%s'", name).
			WithNote(mspan, "value moved here").Emit()
		return
	}
	if ctx == useValue {
		if mspan, moved := fc.ms.movedWithin(pi.place); moved {
			c.reportError(diag.OwnPartialUse, span,
				"use of partially moved value '%s'", name).
				WithNote(mspan, "part of the value moved here").Emit()
			return
		}
	}
	if b, blocked := fc.bt.mutBlocker(pi.place, pi.chainBorrow); blocked {
		info := fc.bt.info(b)
		c.reportError(diag.OwnBorrowConflict, span,
			"cannot use '%s' while it is mutably borrowed", name).
			WithNote(info.Span, "mutable borrow occurs here").Emit()
		return
	}

	if ctx != useValue || c.types.IsCopy(pi.typ) {
		return
	}

	// значение уходит: move
	if pi.runtimeIndex {
		c.reportError(diag.OwnMoveFromIndex, span,
			"cannot move out of an index of '%s'", name).Emit()
		return
	}
	if pi.viaDeref {
		c.reportError(diag.OwnMoveWhileBorrowed, span,
			"cannot move '%s' out of a reference", name).Emit()
		return
	}
	if pi.parentHasDrop && len(pi.place.Segs) > 0 {
		c.reportError(diag.OwnMoveFromDropType, span,
			"cannot move '%s' out of a value with a destructor", name).Emit()
		return
	}
	if b, blocked := fc.bt.anyBlocker(pi.place, pi.chainBorrow); blocked {
		info := fc.bt.info(b)
		c.reportError(diag.OwnMoveWhileBorrowed, span,
			"cannot move '%s' while it is borrowed", name).
			WithNote(info.Span, fmt.Sprintf("%s borrow occurs here", info.Kind)).Emit()
		return
	}
	fc.ms.markMoved(pi.place, span)
}

// resolvePlace разворачивает place-выражение; ok=false означает, что
// выражение — временное значение (его поддерево уже проверено).
func (fc *fnChecker) resolvePlace(id ast.ExprID) (placeInfo, bool) {
	c := fc.c
	expr := c.builder.Exprs.Get(id)

	switch expr.Kind {
	case ast.ExprIdent:
		sym, resolved := c.resolutions[id]
		if !resolved {
			return placeInfo{typ: c.types.Builtins.Unknown}, false
		}
		s := c.table.Get(sym)
		if s.Kind != symbols.SymbolLet && s.Kind != symbols.SymbolParam {
			return placeInfo{typ: c.types.Builtins.Unknown}, false
		}
		typ := s.Type
		if !typ.IsValid() {
			typ = c.types.Builtins.Unknown
		}
		return placeInfo{place: Place{Base: sym}, typ: typ}, true

	case ast.ExprGroup:
		group, _ := c.builder.Exprs.Group(id)
		return fc.resolvePlace(group.Inner)

	case ast.ExprMember:
		member, _ := c.builder.Exprs.Member(id)
		pi, ok := fc.resolvePlace(member.Target)
		baseType := c.types.Get(pi.typ)
		if pi.typ == c.types.Builtins.Unknown {
			return placeInfo{typ: c.types.Builtins.Unknown}, false
		}
		if baseType.Kind != types.KindRecord {
			c.reportError(diag.OwnUnknownType, expr.Span,
				"type '%s' has no fields", c.types.String(pi.typ)).Emit()
			return placeInfo{typ: c.types.Builtins.Unknown}, false
		}
		idx := c.types.FieldIndex(pi.typ, member.Field)
		if idx < 0 {
			c.reportError(diag.OwnUnresolvedName, expr.Span,
				"type '%s' has no field '%s'", c.types.String(pi.typ), c.strings.MustLookup(member.Field)).Emit()
			return placeInfo{typ: c.types.Builtins.Unknown}, false
		}
		fieldType := baseType.Fields[idx].Type
		if !ok {
			return placeInfo{typ: fieldType}, false
		}
		pi.parentHasDrop = pi.parentHasDrop || baseType.HasDrop
		pi.place = pi.place.child(Segment{Kind: SegField, Index: uint32(idx)})
		pi.typ = fieldType
		return pi, true

	case ast.ExprIndex:
		index, _ := c.builder.Exprs.Index(id)
		pi, ok := fc.resolvePlace(index.Target)
		fc.verifyExpr(index.Index, useRead)

		baseType := c.types.Get(pi.typ)
		elem := c.types.Builtins.Unknown
		if baseType.Kind == types.KindArray || baseType.Kind == types.KindVector {
			elem = baseType.Elem
		}
		if !ok {
			return placeInfo{typ: elem}, false
		}
		if baseType.Kind == types.KindArray {
			if n, constant := constIndex(c, index.Index); constant {
				pi.place = pi.place.child(Segment{Kind: SegIndex, Index: n})
				pi.typ = elem
				return pi, true
			}
		}
		// вектор или вычисляемый индекс: place остаётся контейнером
		pi.runtimeIndex = true
		pi.typ = elem
		return pi, true

	case ast.ExprUnary:
		unary, _ := c.builder.Exprs.Unary(id)
		if unary.Op != ast.ExprUnaryDeref {
			break
		}
		opPI, opOK := fc.resolvePlace(unary.Operand)
		opType := c.types.Get(opPI.typ)
		if opType.Kind != types.KindRef {
			if opPI.typ != c.types.Builtins.Unknown {
				c.reportError(diag.OwnNonAddressable, expr.Span,
					"cannot dereference a value of type '%s'", c.types.String(opPI.typ)).Emit()
			}
			return placeInfo{typ: c.types.Builtins.Unknown}, false
		}
		if !opOK {
			return placeInfo{typ: opType.Elem}, false
		}
		// чтение самой ссылки
		fc.placeUse(opPI, c.builder.Exprs.Get(unary.Operand).Span, useRead)

		// отслеживаемая цепочка reborrow раскрывается до владельца
		if len(opPI.place.Segs) == 0 && !opPI.viaDeref {
			if b, live := fc.bt.borrowFor(opPI.place.Base); live {
				info := fc.bt.info(b)
				return placeInfo{
					place:       info.Place,
					typ:         opType.Elem,
					chainBorrow: b,
					viaDeref:    true,
					viaShared:   info.Kind == BorrowShared || info.ThroughShared,
					external:    info.External,
				}, true
			}
		}
		// источник неизвестен: место за ссылкой
		pi := opPI
		pi.place = pi.place.child(Segment{Kind: SegDeref})
		pi.typ = opType.Elem
		pi.viaDeref = true
		pi.external = true
		pi.viaShared = opPI.viaShared || !opType.Mutable
		return pi, true
	}

	typ := fc.verifyExpr(id, useRead)
	return placeInfo{typ: typ}, false
}

// constIndex распознаёт константный индекс: целочисленный литерал.
func constIndex(c *Checker, id ast.ExprID) (uint32, bool) {
	for {
		if group, ok := c.builder.Exprs.Group(id); ok {
			id = group.Inner
			continue
		}
		break
	}
	lit, ok := c.builder.Exprs.Literal(id)
	if !ok || lit.Kind != ast.ExprLitInt {
		return 0, false
	}
	text := c.strings.MustLookup(lit.Value)
	n, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// verifyWhile проверяет тело цикла и ловит moves, которые следующая
// итерация увидела бы уже мёртвыми.
func (fc *fnChecker) verifyWhile(id ast.StmtID) {
	c := fc.c
	stmt, _ := c.builder.Stmts.While(id)
	whileOrd := c.stmtOrd[id]

	wholeBefore := make(map[symbols.SymbolID]struct{}, len(fc.ms.whole))
	for sym := range fc.ms.whole {
		wholeBefore[sym] = struct{}{}
	}
	partialBefore := make(map[symbols.SymbolID]map[string]struct{}, len(fc.ms.partial))
	for sym, segs := range fc.ms.partial {
		keys := make(map[string]struct{}, len(segs))
		for k := range segs {
			keys[k] = struct{}{}
		}
		partialBefore[sym] = keys
	}

	fc.verifyExpr(stmt.Cond, useRead)
	fc.verifyStmt(stmt.Body)

	for sym, span := range fc.ms.whole {
		if _, had := wholeBefore[sym]; had {
			continue
		}
		if c.declOrd[sym] >= whileOrd {
			continue
		}
		c.reportError(diag.OwnUseAfterMove, span,
			"value '%s' is moved inside a loop: the next iteration would find it gone",
			c.strings.MustLookup(c.table.Get(sym).Name)).
			WithNote(c.table.Get(sym).Span, "declared outside the loop here").Emit()
	}
	for sym, segs := range fc.ms.partial {
		if c.declOrd[sym] >= whileOrd {
			continue
		}
		for key, span := range segs {
			if before, had := partialBefore[sym]; had {
				if _, existed := before[key]; existed {
					continue
				}
			}
			c.reportError(diag.OwnUseAfterMove, span,
				"part of '%s' is moved inside a loop: the next iteration would find it gone",
				c.strings.MustLookup(c.table.Get(sym).Name)).
				WithNote(c.table.Get(sym).Span, "declared outside the loop here").Emit()
		}
	}
}

// exitBlock завершает scope: ссылки на умирающие locals, пережившие блок,
// становятся висячими.
func (fc *fnChecker) exitBlock(id ast.StmtID) {
	c := fc.c
	blockOrd := c.stmtOrd[id]
	for _, local := range c.blockLocals[id] {
		root := Place{Base: local}
		for _, b := range fc.bt.borrowsOf(root) {
			info := fc.bt.info(b)
			if info.Holder.IsValid() && c.declOrd[info.Holder] < blockOrd && c.lastUse[info.Holder] > fc.ord {
				localName := c.strings.MustLookup(c.table.Get(local).Name)
				c.reportError(diag.OwnDanglingRef, info.Span,
					"'%s' does not live long enough", localName).
					WithNote(c.table.Get(local).Span,
						fmt.Sprintf("'%s' is dropped at the end of this block while still borrowed", localName)).Emit()
			}
			fc.bt.end(b)
		}
	}
}

// checkReturnEscape ловит возврат ссылки на local текущей функции.
func (fc *fnChecker) checkReturnEscape(id ast.ExprID) {
	c := fc.c
	for {
		if group, ok := c.builder.Exprs.Group(id); ok {
			id = group.Inner
			continue
		}
		break
	}
	expr := c.builder.Exprs.Get(id)

	var b BorrowID
	switch expr.Kind {
	case ast.ExprUnary:
		unary, _ := c.builder.Exprs.Unary(id)
		if unary.Op != ast.ExprUnaryRef && unary.Op != ast.ExprUnaryRefMut {
			return
		}
		b = fc.lastBorrow
	case ast.ExprIdent:
		sym, resolved := c.resolutions[id]
		if !resolved {
			return
		}
		if live, ok := fc.bt.borrowFor(sym); ok {
			b = live
		}
	default:
		return
	}
	if !b.IsValid() {
		return
	}
	info := fc.bt.info(b)
	if info.External {
		return
	}
	base := info.Place.Base
	if _, local := c.declOrd[base]; !local {
		return
	}
	name := c.strings.MustLookup(c.table.Get(base).Name)
	c.reportError(diag.OwnDanglingRef, expr.Span,
		"returning a reference to '%s', which is dropped when the function returns", name).
		WithNote(c.table.Get(base).Span, "declared here").Emit()
}
