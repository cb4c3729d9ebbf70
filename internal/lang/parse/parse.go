// Package parse is the language's LALR-in-spirit (here: hand-rolled
// recursive-descent) parser driver. Spec.md §1 names the parser as an
// out-of-scope external collaborator; this package is deliberately small.
package parse

import (
	"fmt"
	"go/token"
	"strconv"

	"github.com/panaflexx/gel2/internal/lang/ast"
	"github.com/panaflexx/gel2/internal/lang/lex"
)

type Parser struct {
	fset    *token.FileSet
	sc      *lex.Scanner
	tok     lex.Token
	errs    []error
	imports []string
}

// ParseFile parses a single source file into an *ast.File.
func ParseFile(fset *token.FileSet, filename string, src []byte) (*ast.File, []error) {
	p := &Parser{fset: fset}
	p.sc = lex.NewScanner(fset, filename, src, p.scanErr)
	p.next()

	f := &ast.File{Name: filename}
	for p.tok.Kind == lex.KEYWORD && p.tok.Value == "import" {
		p.next()
		if p.tok.Kind == lex.STRING {
			f.Imports = append(f.Imports, p.tok.Value)
			p.next()
		}
		p.expectOp(";")
	}
	for p.tok.Kind != lex.EOF {
		c := p.parseClass()
		if c == nil {
			break
		}
		f.Classes = append(f.Classes, c)
	}
	return f, p.errs
}

func (p *Parser) scanErr(pos token.Pos, msg string) {
	p.errs = append(p.errs, fmt.Errorf("%s: %s", p.fset.Position(pos), msg))
}

func (p *Parser) next() { p.tok = p.sc.Scan() }

// parserMark is a saved (scanner position, current token) pair used for
// bounded lookahead where the grammar is locally ambiguous (constructor
// vs. field/method, cast vs. parenthesized expression).
type parserMark struct {
	scanMark int
	tok      lex.Token
}

func (p *Parser) mark() parserMark { return parserMark{scanMark: p.sc.Mark(), tok: p.tok} }

func (p *Parser) restore(m parserMark) {
	p.sc.Reset(m.scanMark)
	p.tok = m.tok
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errs = append(p.errs, fmt.Errorf("%s: %s", p.fset.Position(p.tok.Pos), fmt.Sprintf(format, args...)))
}

func (p *Parser) isOp(v string) bool { return p.tok.Kind == lex.OP && p.tok.Value == v }
func (p *Parser) isKw(v string) bool { return p.tok.Kind == lex.KEYWORD && p.tok.Value == v }

func (p *Parser) expectOp(v string) token.Pos {
	pos := p.tok.Pos
	if !p.isOp(v) {
		p.errorf("expected %q, got %q", v, p.tok.Value)
		return pos
	}
	p.next()
	return pos
}

func (p *Parser) expectIdent() (string, token.Pos) {
	if p.tok.Kind != lex.IDENT {
		p.errorf("expected identifier, got %q", p.tok.Value)
		return "<error>", p.tok.Pos
	}
	name, pos := p.tok.Value, p.tok.Pos
	p.next()
	return name, pos
}

// ---------- modifiers & types ----------

var modKeywords = map[string]ast.Modifier{
	"public": ast.ModPublic, "protected": ast.ModProtected, "private": ast.ModPrivate,
	"abstract": ast.ModAbstract, "extern": ast.ModExtern, "static": ast.ModStatic,
	"virtual": ast.ModVirtual, "override": ast.ModOverride, "const": ast.ModConst,
}

func (p *Parser) parseMods() ast.Modifier {
	var m ast.Modifier
	for p.tok.Kind == lex.KEYWORD {
		if bit, ok := modKeywords[p.tok.Value]; ok {
			m |= bit
			p.next()
			continue
		}
		break
	}
	return m
}

var builtinTypeNames = map[string]bool{
	"void": true, "bool": true, "char": true, "int": true,
	"float": true, "double": true, "string": true,
}

// parseType parses a type expression: Name, Name^, Name[], Name[]^, etc.
func (p *Parser) parseType() *ast.TypeExpr {
	pos := p.tok.Pos
	var name string
	switch {
	case p.tok.Kind == lex.KEYWORD && builtinTypeNames[p.tok.Value]:
		name = p.tok.Value
		p.next()
	case p.tok.Kind == lex.IDENT:
		name = p.tok.Value
		p.next()
	default:
		p.errorf("expected type, got %q", p.tok.Value)
		name = "<error>"
	}
	t := &ast.TypeExpr{NamePos: pos, Name: name}
	for p.isOp("[") {
		p.next()
		p.expectOp("]")
		t = &ast.TypeExpr{NamePos: pos, IsArray: true, Elem: t}
	}
	if p.isOp("^") {
		p.next()
		t.Owning = true
	}
	return t
}

// ---------- class & members ----------

func (p *Parser) parseClass() *ast.ClassDecl {
	mods := p.parseMods()
	if !p.isKw("class") {
		if p.tok.Kind == lex.EOF {
			return nil
		}
		p.errorf("expected 'class', got %q", p.tok.Value)
		p.next()
		return nil
	}
	pos := p.tok.Pos
	p.next()
	name, _ := p.expectIdent()
	c := &ast.ClassDecl{NamePos: pos, Name: name, Mods: mods}
	if p.isOp(":") {
		p.next()
		c.Parent, _ = p.expectIdent()
	}
	p.expectOp("{")
	for !p.isOp("}") && p.tok.Kind != lex.EOF {
		p.parseMember(c)
	}
	p.expectOp("}")
	return c
}

func (p *Parser) parseMember(c *ast.ClassDecl) {
	mods := p.parseMods()

	// Constructor: identifier matching the class name, followed by '('.
	if p.tok.Kind == lex.IDENT && p.tok.Value == c.Name {
		save := p.mark()
		ctorPos := p.tok.Pos
		p.next()
		if p.isOp("(") {
			p.parseCtor(c, mods, ctorPos)
			return
		}
		p.restore(save)
	}

	typ := p.parseType()

	// Indexer: Type this [ Type key ] { ... }
	if p.isKw("this") {
		ixPos := p.tok.Pos
		p.next()
		p.expectOp("[")
		keyType := p.parseType()
		keyName, keyPos := p.expectIdent()
		p.expectOp("]")
		ix := &ast.IndexerDecl{NamePos: ixPos, Type: typ, Mods: mods,
			Key: &ast.Param{NamePos: keyPos, Name: keyName, Type: keyType}}
		p.parseAccessors(&ix.Get, &ix.Set)
		c.Indexers = append(c.Indexers, ix)
		return
	}

	name, namePos := p.expectIdent()

	switch {
	case p.isOp("("):
		m := &ast.MethodDecl{NamePos: namePos, Name: name, Mods: mods, Result: typ}
		m.Params = p.parseParams()
		if p.isOp("{") {
			m.Body = p.parseBlock()
		} else {
			p.expectOp(";") // extern method, no body
		}
		c.Methods = append(c.Methods, m)

	case p.isOp("{"):
		prop := &ast.PropertyDecl{NamePos: namePos, Name: name, Type: typ, Mods: mods}
		p.parseAccessors(&prop.Get, &prop.Set)
		c.Props = append(c.Props, prop)

	case mods.Has(ast.ModConst):
		cf := &ast.ConstFieldDecl{NamePos: namePos, Name: name, Type: typ, Mods: mods}
		p.expectOp("=")
		cf.Value = p.parseExpr()
		p.expectOp(";")
		c.Consts = append(c.Consts, cf)

	default:
		f := &ast.FieldDecl{NamePos: namePos, Name: name, Type: typ, Mods: mods}
		c.Fields = append(c.Fields, f)
		if p.isOp("=") {
			p.next()
			p.parseExpr() // the initializer is parsed and discarded: FieldDecl keeps no initializer, so nothing lowers it
		}
		p.expectOp(";")
	}
}

func (p *Parser) parseAccessors(get, set **ast.BlockStmt) {
	p.expectOp("{")
	for !p.isOp("}") && p.tok.Kind != lex.EOF {
		switch {
		case p.isKw("get"):
			p.next()
			*get = p.parseBlock()
		case p.isKw("set"):
			p.next()
			*set = p.parseBlock()
		default:
			p.errorf("expected 'get' or 'set', got %q", p.tok.Value)
			p.next()
		}
	}
	p.expectOp("}")
}

func (p *Parser) parseCtor(c *ast.ClassDecl, mods ast.Modifier, pos token.Pos) {
	ctor := &ast.CtorDecl{NamePos: pos, Mods: mods}
	ctor.Params = p.parseParams()
	if p.isOp(":") {
		p.next()
		switch {
		case p.isKw("this"):
			p.next()
			ctor.ThisArgs, _ = p.parseArgs()
		case p.isKw("base"):
			p.next()
			ctor.BaseArgs, _ = p.parseArgs()
		default:
			p.errorf("expected 'this' or 'base' after ':'")
		}
	}
	ctor.Body = p.parseBlock()
	c.Ctors = append(c.Ctors, ctor)
}

func (p *Parser) parseParams() []*ast.Param {
	p.expectOp("(")
	var params []*ast.Param
	for !p.isOp(")") && p.tok.Kind != lex.EOF {
		mode := ast.ModeIn
		if p.isKw("ref") {
			mode = ast.ModeRef
			p.next()
		} else if p.isKw("out") {
			mode = ast.ModeOut
			p.next()
		}
		t := p.parseType()
		name, namePos := p.expectIdent()
		params = append(params, &ast.Param{NamePos: namePos, Name: name, Type: t, Mode: mode})
		if p.isOp(",") {
			p.next()
			continue
		}
		break
	}
	p.expectOp(")")
	return params
}

// parseArgs parses a parenthesized argument list, recognizing a leading
// ref/out keyword per argument the same way parseParams does for
// parameters (spec §3 invariant (d)/(e)). modes[i] is ast.ModeIn for a
// plain argument; callers that don't care about ref/out (this(...)/
// base(...) delegation, new T(...) construction) simply ignore it.
func (p *Parser) parseArgs() (args []ast.Expr, modes []ast.ParamMode) {
	p.expectOp("(")
	for !p.isOp(")") && p.tok.Kind != lex.EOF {
		mode := ast.ModeIn
		if p.isKw("ref") {
			mode = ast.ModeRef
			p.next()
		} else if p.isKw("out") {
			mode = ast.ModeOut
			p.next()
		}
		args = append(args, p.parseExpr())
		modes = append(modes, mode)
		if p.isOp(",") {
			p.next()
			continue
		}
		break
	}
	p.expectOp(")")
	return args, modes
}

// ---------- statements ----------

func (p *Parser) parseBlock() *ast.BlockStmt {
	pos := p.expectOp("{")
	b := &ast.BlockStmt{LBrace: pos}
	for !p.isOp("}") && p.tok.Kind != lex.EOF {
		b.List = append(b.List, p.parseStmt())
	}
	p.expectOp("}")
	return b
}

func (p *Parser) looksLikeDecl() bool {
	if p.tok.Kind == lex.KEYWORD && builtinTypeNames[p.tok.Value] {
		return true
	}
	if p.tok.Kind != lex.IDENT {
		return false
	}
	save := p.mark()
	savedErrs := len(p.errs)
	p.parseType()
	looksDecl := p.tok.Kind == lex.IDENT
	p.restore(save)
	p.errs = p.errs[:savedErrs]
	return looksDecl
}

func (p *Parser) parseStmt() ast.Stmt {
	switch {
	case p.isOp("{"):
		return p.parseBlock()
	case p.isKw("if"):
		return p.parseIf()
	case p.isKw("while"):
		return p.parseWhile()
	case p.isKw("do"):
		return p.parseDo()
	case p.isKw("for"):
		return p.parseFor()
	case p.isKw("foreach"):
		return p.parseForeach()
	case p.isKw("switch"):
		return p.parseSwitch()
	case p.isKw("return"):
		return p.parseReturn()
	case p.isKw("break"):
		pos := p.tok.Pos
		p.next()
		p.expectOp(";")
		return &ast.BranchStmt{KwPos: pos, Kind: ast.Break}
	case p.isKw("continue"):
		pos := p.tok.Pos
		p.next()
		p.expectOp(";")
		return &ast.BranchStmt{KwPos: pos, Kind: ast.Continue}
	case p.looksLikeDecl():
		return p.parseDecl()
	default:
		return p.parseSimpleStmt(true)
	}
}

func (p *Parser) parseDecl() ast.Stmt {
	pos := p.tok.Pos
	t := p.parseType()
	d := &ast.DeclStmt{DeclPos: pos, Type: t}
	for {
		name, namePos := p.expectIdent()
		d.Names = append(d.Names, name)
		d.NamePos = append(d.NamePos, namePos)
		var init ast.Expr
		if p.isOp("=") {
			p.next()
			init = p.parseExpr()
		}
		d.Inits = append(d.Inits, init)
		if p.isOp(",") {
			p.next()
			continue
		}
		break
	}
	p.expectOp(";")
	return d
}

func (p *Parser) parseSimpleStmt(semi bool) ast.Stmt {
	x := p.parseExpr()
	var s ast.Stmt
	switch {
	case p.isOp("=") || isCompoundAssignOp(p.tok):
		op := p.tok.Value
		p.next()
		rhs := p.parseExpr()
		s = &ast.AssignStmt{OpPos: x.Pos(), Lhs: x, Op: op, Rhs: rhs}
	case p.isOp("++") || p.isOp("--"):
		op := p.tok.Value
		pos := p.tok.Pos
		p.next()
		s = &ast.IncDecStmt{OpPos: pos, X: x, Op: op}
	default:
		s = &ast.ExprStmt{X: x}
	}
	if semi {
		p.expectOp(";")
	}
	return s
}

func isCompoundAssignOp(t lex.Token) bool {
	if t.Kind != lex.OP {
		return false
	}
	switch t.Value {
	case "+=", "-=", "*=", "/=", "%=":
		return true
	}
	return false
}

func (p *Parser) parseIf() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	p.expectOp("(")
	cond := p.parseExpr()
	p.expectOp(")")
	body := p.parseBlock()
	s := &ast.IfStmt{IfPos: pos, Cond: cond, Body: body}
	if p.isKw("else") {
		p.next()
		if p.isKw("if") {
			s.Else = p.parseIf()
		} else {
			s.Else = p.parseBlock()
		}
	}
	return s
}

func (p *Parser) parseWhile() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	p.expectOp("(")
	cond := p.parseExpr()
	p.expectOp(")")
	body := p.parseBlock()
	return &ast.WhileStmt{KwPos: pos, Cond: cond, Body: body}
}

func (p *Parser) parseDo() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	body := p.parseBlock()
	if !p.isKw("while") {
		p.errorf("expected 'while' after do-block")
	} else {
		p.next()
	}
	p.expectOp("(")
	cond := p.parseExpr()
	p.expectOp(")")
	p.expectOp(";")
	return &ast.DoStmt{KwPos: pos, Body: body, Cond: cond}
}

func (p *Parser) parseFor() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	p.expectOp("(")
	s := &ast.ForStmt{KwPos: pos}
	if !p.isOp(";") {
		if p.looksLikeDecl() {
			s.Init = p.parseDecl()
		} else {
			s.Init = p.parseSimpleStmt(true)
		}
	} else {
		p.expectOp(";")
	}
	if !p.isOp(";") {
		s.Cond = p.parseExpr()
	}
	p.expectOp(";")
	if !p.isOp(")") {
		s.Post = p.parseSimpleStmt(false)
	}
	p.expectOp(")")
	s.Body = p.parseBlock()
	return s
}

func (p *Parser) parseForeach() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	p.expectOp("(")
	vt := p.parseType()
	name, namePos := p.expectIdent()
	if !p.isKw("in") {
		p.errorf("expected 'in' in foreach")
	} else {
		p.next()
	}
	coll := p.parseExpr()
	p.expectOp(")")
	body := p.parseBlock()
	return &ast.ForeachStmt{KwPos: pos, VarName: name, VarPos: namePos, VarType: vt, Coll: coll, Body: body}
}

func (p *Parser) parseSwitch() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	p.expectOp("(")
	tag := p.parseExpr()
	p.expectOp(")")
	p.expectOp("{")
	s := &ast.SwitchStmt{KwPos: pos, Tag: tag}
	for !p.isOp("}") && p.tok.Kind != lex.EOF {
		casePos := p.tok.Pos
		cc := &ast.CaseClause{CasePos: casePos}
		if p.isKw("case") {
			p.next()
			cc.Values = append(cc.Values, p.parseExpr())
			for p.isOp(",") {
				p.next()
				cc.Values = append(cc.Values, p.parseExpr())
			}
		} else if p.isKw("default") {
			p.next()
		} else {
			p.errorf("expected 'case' or 'default'")
			p.next()
			continue
		}
		p.expectOp(":")
		for !p.isKw("case") && !p.isKw("default") && !p.isOp("}") && p.tok.Kind != lex.EOF {
			cc.Body = append(cc.Body, p.parseStmt())
		}
		s.Cases = append(s.Cases, cc)
	}
	p.expectOp("}")
	return s
}

func (p *Parser) parseReturn() ast.Stmt {
	pos := p.tok.Pos
	p.next()
	var result ast.Expr
	if !p.isOp(";") {
		result = p.parseExpr()
	}
	p.expectOp(";")
	return &ast.ReturnStmt{RetPos: pos, Result: result}
}

// ---------- expressions ----------
// Precedence climbing, lowest to highest:
//   ?:  ||  &&  == !=  < <= > >=  + -  * / %  unary  postfix  primary

func (p *Parser) parseExpr() ast.Expr { return p.parseTernary() }

func (p *Parser) parseTernary() ast.Expr {
	x := p.parseLogicalOr()
	if p.isOp("?") {
		pos := p.tok.Pos
		p.next()
		a := p.parseExpr()
		p.expectOp(":")
		b := p.parseExpr()
		return &ast.CondExpr{QPos: pos, Cond: x, X: a, Y: b}
	}
	return x
}

func (p *Parser) parseLogicalOr() ast.Expr {
	x := p.parseLogicalAnd()
	for p.isOp("||") {
		pos := p.tok.Pos
		p.next()
		y := p.parseLogicalAnd()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: "||", Y: y}
	}
	return x
}

func (p *Parser) parseLogicalAnd() ast.Expr {
	x := p.parseEquality()
	for p.isOp("&&") {
		pos := p.tok.Pos
		p.next()
		y := p.parseEquality()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: "&&", Y: y}
	}
	return x
}

func (p *Parser) parseEquality() ast.Expr {
	x := p.parseRelational()
	for p.isOp("==") || p.isOp("!=") {
		op, pos := p.tok.Value, p.tok.Pos
		p.next()
		y := p.parseRelational()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *Parser) parseRelational() ast.Expr {
	x := p.parseAdditive()
	for p.isOp("<") || p.isOp("<=") || p.isOp(">") || p.isOp(">=") {
		op, pos := p.tok.Value, p.tok.Pos
		p.next()
		y := p.parseAdditive()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *Parser) parseAdditive() ast.Expr {
	x := p.parseMultiplicative()
	for p.isOp("+") || p.isOp("-") {
		op, pos := p.tok.Value, p.tok.Pos
		p.next()
		y := p.parseMultiplicative()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *Parser) parseMultiplicative() ast.Expr {
	x := p.parseUnary()
	for p.isOp("*") || p.isOp("/") || p.isOp("%") {
		op, pos := p.tok.Value, p.tok.Pos
		p.next()
		y := p.parseUnary()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *Parser) parseUnary() ast.Expr {
	switch {
	case p.isOp("-") || p.isOp("!") || p.isOp("+"):
		op, pos := p.tok.Value, p.tok.Pos
		p.next()
		x := p.parseUnary()
		return &ast.UnaryExpr{OpPos: pos, Op: op, X: x}
	case p.isKw("take"):
		pos := p.tok.Pos
		p.next()
		x := p.parseUnary()
		return &ast.TakeExpr{KwPos: pos, X: x}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		switch {
		case p.isOp("."):
			p.next()
			sel, selPos := p.expectIdent()
			x = &ast.SelectorExpr{X: x, Sel: sel, SelPos: selPos}
		case p.isOp("["):
			p.next()
			idx := p.parseExpr()
			p.expectOp("]")
			x = &ast.IndexExpr{X: x, Index: idx}
		case p.isOp("("):
			args, modes := p.parseArgs()
			x = &ast.CallExpr{Fun: x, Args: args, ArgModes: modes}
		default:
			return x
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	switch {
	case p.isOp("("):
		// Could be a parenthesized expression or a cast "(T)x".
		save := p.mark()
		savedErrs := len(p.errs)
		lparen := p.tok.Pos
		p.next()
		if p.tok.Kind == lex.IDENT || (p.tok.Kind == lex.KEYWORD && builtinTypeNames[p.tok.Value]) {
			t := p.parseType()
			if p.isOp(")") {
				p.next()
				// Heuristic: a cast is followed by a unary-expression start.
				if p.canStartUnary() {
					x := p.parseUnary()
					return &ast.CastExpr{LParen: lparen, Type: t, X: x}
				}
			}
		}
		p.restore(save)
		p.errs = p.errs[:savedErrs]
		p.next() // consume '('
		x := p.parseExpr()
		p.expectOp(")")
		return &ast.ParenExpr{LParen: lparen, X: x}

	case p.tok.Kind == lex.IDENT:
		name, pos := p.tok.Value, p.tok.Pos
		p.next()
		return &ast.Ident{NamePos: pos, Name: name}

	case p.isKw("this"):
		pos := p.tok.Pos
		p.next()
		return &ast.ThisExpr{KwPos: pos}

	case p.isKw("true"), p.isKw("false"):
		pos, v := p.tok.Pos, p.tok.Value
		p.next()
		return &ast.BasicLit{ValPos: pos, Kind: ast.LitBool, Value: v}

	case p.isKw("null"):
		pos := p.tok.Pos
		p.next()
		return &ast.BasicLit{ValPos: pos, Kind: ast.LitNull}

	case p.tok.Kind == lex.INT:
		pos, v := p.tok.Pos, p.tok.Value
		p.next()
		return &ast.BasicLit{ValPos: pos, Kind: ast.LitInt, Value: v}

	case p.tok.Kind == lex.FLOAT:
		pos, v := p.tok.Pos, p.tok.Value
		p.next()
		return &ast.BasicLit{ValPos: pos, Kind: ast.LitFloat, Value: v}

	case p.tok.Kind == lex.STRING:
		pos, v := p.tok.Pos, p.tok.Value
		p.next()
		uq, err := strconv.Unquote(v)
		if err != nil {
			uq = v
		}
		return &ast.BasicLit{ValPos: pos, Kind: ast.LitString, Value: uq}

	case p.tok.Kind == lex.CHAR:
		pos, v := p.tok.Pos, p.tok.Value
		p.next()
		return &ast.BasicLit{ValPos: pos, Kind: ast.LitChar, Value: v}

	case p.isKw("new"):
		return p.parseNew()

	default:
		p.errorf("unexpected token %q in expression", p.tok.Value)
		pos := p.tok.Pos
		p.next()
		return &ast.Ident{NamePos: pos, Name: "<error>"}
	}
}

func (p *Parser) canStartUnary() bool {
	switch p.tok.Kind {
	case lex.IDENT, lex.INT, lex.FLOAT, lex.STRING, lex.CHAR:
		return true
	case lex.KEYWORD:
		switch p.tok.Value {
		case "this", "true", "false", "null", "new", "take":
			return true
		}
		return false
	case lex.OP:
		return p.tok.Value == "(" || p.tok.Value == "-" || p.tok.Value == "!"
	}
	return false
}

func (p *Parser) parseNew() ast.Expr {
	pos := p.tok.Pos
	p.next()
	t := p.parseType()
	if p.isOp("[") {
		p.next()
		size := p.parseExpr()
		p.expectOp("]")
		return &ast.NewArrayExpr{NewPos: pos, Elem: t, Size: size}
	}
	e := &ast.NewExpr{NewPos: pos, Type: t}
	if p.isOp("(") {
		e.Args, _ = p.parseArgs()
	}
	if p.isKw("in") {
		p.next()
		e.Pool = p.parseExpr()
	}
	return e
}
