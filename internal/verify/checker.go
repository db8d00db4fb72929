// Package verify implements the ownership and borrow checker: move/copy
// classification, partial moves, aliasing-xor-mutability and non-lexical
// lifetimes over resolved function bodies.
package verify

import (
	"fmt"

	"rivet/internal/ast"
	"rivet/internal/diag"
	"rivet/internal/source"
	"rivet/internal/symbols"
	"rivet/internal/types"
)

type paramSig struct {
	typ types.TypeID
	mut bool
}

type fnSig struct {
	params []paramSig
	result types.TypeID
}

// Checker ведёт проверку одного файла: разрешение имён, классификация
// move/copy и верификация владений/заимствований.
type Checker struct {
	builder  *ast.Builder
	strings  *source.Interner
	reporter diag.Reporter
	types    *types.Interner
	table    *symbols.Table

	sigs map[source.StringID]*fnSig

	// продукты первого прохода (resolve.go); ExprID/StmtID уникальны
	// в пределах файла, так что карты общие для всех функций
	resolutions map[ast.ExprID]symbols.SymbolID
	stmtOrd     map[ast.StmtID]uint32
	blockEnd    map[ast.StmtID]uint32
	lastUse     map[symbols.SymbolID]uint32
	declOrd     map[symbols.SymbolID]uint32
	letSymbol   map[ast.StmtID]symbols.SymbolID
	blockLocals map[ast.StmtID][]symbols.SymbolID
	blockStack  []ast.StmtID
	ord         uint32
}

// Check верифицирует файл и шлёт найденные нарушения в reporter.
func Check(builder *ast.Builder, file ast.FileID, reporter diag.Reporter) {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	c := &Checker{
		builder:     builder,
		strings:     builder.StringsInterner,
		reporter:    reporter,
		types:       types.NewInterner(builder.StringsInterner),
		table:       symbols.NewTable(),
		sigs:        make(map[source.StringID]*fnSig),
		resolutions: make(map[ast.ExprID]symbols.SymbolID),
		stmtOrd:     make(map[ast.StmtID]uint32),
		blockEnd:    make(map[ast.StmtID]uint32),
		lastUse:     make(map[symbols.SymbolID]uint32),
		declOrd:     make(map[symbols.SymbolID]uint32),
		letSymbol:   make(map[ast.StmtID]symbols.SymbolID),
		blockLocals: make(map[ast.StmtID][]symbols.SymbolID),
	}

	items := builder.Files.Get(file).Items
	c.collectTypes(items)
	c.collectFns(items)

	for _, id := range items {
		if fn, ok := builder.Items.Fn(id); ok {
			if c.sigs[fn.Name] == nil {
				continue
			}
			c.checkFn(fn)
		}
	}
}

func (c *Checker) reportError(code diag.Code, span source.Span, format string, args ...any) *diag.ReportBuilder {
	return diag.ReportError(c.reporter, code, span, fmt.Sprintf(format, args...))
}

// collectTypes объявляет records в две фазы, чтобы поля могли ссылаться
// на типы, объявленные ниже по файлу.
func (c *Checker) collectTypes(items []ast.ItemID) {
	declared := make([]struct {
		item *ast.ItemTypeData
		id   types.TypeID
	}, 0, len(items))

	for _, id := range items {
		decl, ok := c.builder.Items.Type(id)
		if !ok {
			continue
		}
		if _, fresh := c.table.Declare(symbols.SymbolType, decl.Name, decl.NameSpan, 0, 0); !fresh {
			c.reportError(diag.OwnDuplicateName, decl.NameSpan,
				"type '%s' is declared twice", c.strings.MustLookup(decl.Name)).Emit()
			continue
		}
		typeID := c.types.DeclareRecord(decl.Name, decl.HasDrop, decl.HasCopy)
		if c.types.CopyDropConflict(typeID) {
			c.reportError(diag.OwnCopyDropConflict, decl.NameSpan,
				"type '%s' cannot be both @copy and @drop", c.strings.MustLookup(decl.Name)).
				WithNote(decl.NameSpan, "a destructor takes ownership on drop, which bitwise copies would duplicate").Emit()
		}
		declared = append(declared, struct {
			item *ast.ItemTypeData
			id   types.TypeID
		}{decl, typeID})
	}

	for _, d := range declared {
		fields := make([]types.Field, 0, len(d.item.Fields))
		for _, f := range d.item.Fields {
			fields = append(fields, types.Field{
				Name: f.Name,
				Type: c.resolveTypeSyntax(f.Type),
			})
		}
		c.types.SetRecordFields(d.id, fields)
	}
}

func (c *Checker) collectFns(items []ast.ItemID) {
	for _, id := range items {
		fn, ok := c.builder.Items.Fn(id)
		if !ok {
			continue
		}
		sym, fresh := c.table.Declare(symbols.SymbolFunction, fn.Name, fn.NameSpan, 0, 0)
		if !fresh {
			prev := c.table.Get(sym)
			c.reportError(diag.OwnDuplicateName, fn.NameSpan,
				"function '%s' is declared twice", c.strings.MustLookup(fn.Name)).
				WithNote(prev.Span, "first declared here").Emit()
			continue
		}
		sig := &fnSig{result: c.types.Builtins.Unit}
		for _, p := range fn.Params {
			sig.params = append(sig.params, paramSig{
				typ: c.resolveTypeSyntax(p.Type),
				mut: p.Mut,
			})
		}
		if fn.Result.IsValid() {
			sig.result = c.resolveTypeSyntax(fn.Result)
		}
		c.sigs[fn.Name] = sig
	}
}

// resolveTypeSyntax переводит синтаксический тип в семантический.
func (c *Checker) resolveTypeSyntax(id ast.TypeID) types.TypeID {
	if !id.IsValid() {
		return c.types.Builtins.Unknown
	}
	te := c.builder.Types.Get(id)
	switch te.Kind {
	case ast.TypePath:
		path, _ := c.builder.Types.Path(id)
		name := c.strings.MustLookup(path.Name)
		if builtin, ok := c.types.LookupBuiltin(name); ok {
			return builtin
		}
		if rec, ok := c.types.RecordByName(name); ok {
			return rec
		}
		c.reportError(diag.OwnUnknownType, te.Span, "unknown type '%s'", name).Emit()
		return c.types.Builtins.Unknown

	case ast.TypeRef:
		ref, _ := c.builder.Types.Ref(id)
		return c.types.MakeRef(c.resolveTypeSyntax(ref.Elem), ref.Mut)

	case ast.TypeTuple:
		tuple, _ := c.builder.Types.Tuple(id)
		elems := make([]types.TypeID, 0, len(tuple.Elements))
		for _, e := range tuple.Elements {
			elems = append(elems, c.resolveTypeSyntax(e))
		}
		return c.types.MakeTuple(elems)

	case ast.TypeArray:
		arr, _ := c.builder.Types.Array(id)
		elem := c.resolveTypeSyntax(arr.Elem)
		if arr.HasCount {
			return c.types.MakeArray(elem, arr.Count)
		}
		return c.types.MakeVector(elem)
	}
	return c.types.Builtins.Unknown
}

func (c *Checker) checkFn(fn *ast.ItemFnData) {
	c.resolveFn(fn)

	fc := &fnChecker{
		c:  c,
		bt: newBorrowTable(),
		ms: newMoveSet(),
	}
	fc.verifyStmt(fn.Body)
}

// placeString рендерит place для сообщений: имя базы плюс путь по полям.
func (c *Checker) placeString(p Place) string {
	sym := c.table.Get(p.Base)
	out := c.strings.MustLookup(sym.Name)
	typ := sym.Type
	for _, seg := range p.Segs {
		switch seg.Kind {
		case SegField:
			t := c.types.Get(typ)
			if t.Kind == types.KindRecord && int(seg.Index) < len(t.Fields) {
				out += "." + c.strings.MustLookup(t.Fields[seg.Index].Name)
				typ = t.Fields[seg.Index].Type
			} else {
				out += fmt.Sprintf(".%d", seg.Index)
				typ = types.NoTypeID
			}
		case SegIndex:
			out += fmt.Sprintf("[%d]", seg.Index)
			if typ.IsValid() {
				typ = c.types.Get(typ).Elem
			}
		case SegDeref:
			out = "*" + out
			if typ.IsValid() {
				typ = c.types.Get(typ).Elem
			}
		}
	}
	return out
}
