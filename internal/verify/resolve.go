package verify

import (
	"rivet/internal/ast"
	"rivet/internal/diag"
	"rivet/internal/symbols"
)

// Первый проход по телу функции: раздаёт statement'ам ordinals, связывает
// идентификаторы с символами и вычисляет последний ordinal использования
// каждого binding. Второй проход (verify) расставляет по этим данным
// не-лексические сроки жизни заимствований.

func (c *Checker) resolveFn(fn *ast.ItemFnData) {
	c.table.EnterScope(symbols.ScopeFunction)
	defer c.table.LeaveScope()

	sig := c.sigs[fn.Name]
	for i, p := range fn.Params {
		var flags symbols.SymbolFlags
		if p.Mut {
			flags |= symbols.FlagMutable
		}
		typ := c.types.Builtins.Unknown
		if i < len(sig.params) {
			typ = sig.params[i].typ
		}
		id, fresh := c.table.Declare(symbols.SymbolParam, p.Name, p.Span, flags, typ)
		if !fresh {
			prev := c.table.Get(id)
			c.reportError(diag.OwnDuplicateName, p.Span,
				"parameter '%s' is declared twice", c.strings.MustLookup(p.Name)).
				WithNote(prev.Span, "first declared here").Emit()
			continue
		}
		c.declOrd[id] = 0
		c.lastUse[id] = 0
	}

	c.resolveStmt(fn.Body)
}

func (c *Checker) resolveStmt(id ast.StmtID) {
	c.ord++
	c.stmtOrd[id] = c.ord

	switch c.builder.Stmts.Get(id).Kind {
	case ast.StmtLet:
		let, _ := c.builder.Stmts.Let(id)
		c.resolveExpr(let.Init)
		var flags symbols.SymbolFlags
		if let.Mut {
			flags |= symbols.FlagMutable
		}
		sym, fresh := c.table.Declare(symbols.SymbolLet, let.Name, let.NameSpan, flags, 0)
		if !fresh {
			prev := c.table.Get(sym)
			c.reportError(diag.OwnDuplicateName, let.NameSpan,
				"'%s' is already declared in this scope", c.strings.MustLookup(let.Name)).
				WithNote(prev.Span, "previous declaration here").Emit()
			return
		}
		c.letSymbol[id] = sym
		c.declOrd[sym] = c.ord
		c.lastUse[sym] = c.ord
		if n := len(c.blockStack); n > 0 {
			block := c.blockStack[n-1]
			c.blockLocals[block] = append(c.blockLocals[block], sym)
		}

	case ast.StmtExpr:
		stmt, _ := c.builder.Stmts.Expr(id)
		c.resolveExpr(stmt.Expr)

	case ast.StmtBlock:
		block, _ := c.builder.Stmts.Block(id)
		c.table.EnterScope(symbols.ScopeBlock)
		c.blockStack = append(c.blockStack, id)
		for _, s := range block.Stmts {
			c.resolveStmt(s)
		}
		c.blockStack = c.blockStack[:len(c.blockStack)-1]
		c.table.LeaveScope()
		c.blockEnd[id] = c.ord

	case ast.StmtIf:
		stmt, _ := c.builder.Stmts.If(id)
		c.resolveExpr(stmt.Cond)
		c.resolveStmt(stmt.Then)
		if stmt.Else.IsValid() {
			c.resolveStmt(stmt.Else)
		}

	case ast.StmtWhile:
		stmt, _ := c.builder.Stmts.While(id)
		whileOrd := c.ord
		c.resolveExpr(stmt.Cond)
		c.resolveStmt(stmt.Body)
		end := c.ord
		// binding, живущий снаружи цикла и используемый внутри, должен
		// дожить до конца цикла: каждая итерация использует его заново
		for sym, use := range c.lastUse {
			if use >= whileOrd && use < end && c.declOrd[sym] < whileOrd {
				c.lastUse[sym] = end
			}
		}

	case ast.StmtReturn:
		stmt, _ := c.builder.Stmts.Return(id)
		if stmt.Value.IsValid() {
			c.resolveExpr(stmt.Value)
		}
	}
}

func (c *Checker) resolveExpr(id ast.ExprID) {
	if !id.IsValid() {
		return
	}
	switch c.builder.Exprs.Get(id).Kind {
	case ast.ExprIdent:
		ident, _ := c.builder.Exprs.Ident(id)
		sym := c.table.Resolve(ident.Name)
		if !sym.IsValid() {
			c.reportError(diag.OwnUnresolvedName, c.builder.Exprs.Get(id).Span,
				"cannot find '%s' in this scope", c.strings.MustLookup(ident.Name)).Emit()
			return
		}
		c.resolutions[id] = sym
		if c.ord > c.lastUse[sym] {
			c.lastUse[sym] = c.ord
		}

	case ast.ExprUnary:
		unary, _ := c.builder.Exprs.Unary(id)
		c.resolveExpr(unary.Operand)

	case ast.ExprBinary:
		bin, _ := c.builder.Exprs.Binary(id)
		c.resolveExpr(bin.Left)
		c.resolveExpr(bin.Right)

	case ast.ExprCall:
		call, _ := c.builder.Exprs.Call(id)
		c.resolveExpr(call.Target)
		for _, arg := range call.Args {
			c.resolveExpr(arg)
		}

	case ast.ExprMember:
		member, _ := c.builder.Exprs.Member(id)
		c.resolveExpr(member.Target)

	case ast.ExprIndex:
		index, _ := c.builder.Exprs.Index(id)
		c.resolveExpr(index.Target)
		c.resolveExpr(index.Index)

	case ast.ExprGroup:
		group, _ := c.builder.Exprs.Group(id)
		c.resolveExpr(group.Inner)

	case ast.ExprTuple:
		tuple, _ := c.builder.Exprs.Tuple(id)
		for _, e := range tuple.Elements {
			c.resolveExpr(e)
		}

	case ast.ExprArray:
		array, _ := c.builder.Exprs.Array(id)
		for _, e := range array.Elements {
			c.resolveExpr(e)
		}
	}
}
