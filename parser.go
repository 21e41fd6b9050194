// Recursive-descent parser driven by the token arrays lexer.go produces.
// Each grammar rule below corresponds to one production the generated
// table-driven parser would compile into a Ctl byte string; the shapes
// (argument slot counts, repetition pools for statement/parameter lists)
// mirror that layout even though the dispatch here is hand-written
// recursion instead of a generated jump table, since this front end
// skips the separate generator step and simply builds the same AST
// shapes the generator's output would.
package main

// Parser consumes a Lexer's parallel output arrays and builds ast.go's
// typed node tree directly: identifiers always come out as a plain Aid
// (never Avar -- binding.go resolves each Aid to a declaration or
// introduces one, per spec.md §4.6.2).
type Parser struct {
	lx    *Lexer
	a     *AST
	ec    *ErrorCollector
	i     int
	depth int
}

func NewParser(lx *Lexer, a *AST, ec *ErrorCollector) *Parser {
	return &Parser{lx: lx, a: a, ec: ec}
}

func (p *Parser) cur() Token     { return p.lx.Toks[p.i] }
func (p *Parser) curAttr() byte  { return p.lx.Attrs[p.i] }
func (p *Parser) curPos() Pos    { return p.lx.Poss[p.i] }

func (p *Parser) peek(n int) Token {
	j := p.i + n
	if j >= len(p.lx.Toks) {
		return Teof
	}
	return p.lx.Toks[j]
}

func (p *Parser) advance() {
	if p.i < len(p.lx.Toks)-1 {
		p.i++
	}
}

func (p *Parser) loc() SourceLocation {
	line, col := 0, 0
	if p.lx.pre != nil {
		line, col = p.lx.pre.LineCol(p.curPos().Offset())
	}
	return SourceLocation{Line: line, Column: col}
}

// expect consumes tok, or records a SyntaxError and leaves the cursor in
// place for the statement-list loop's resync handling.
func (p *Parser) expect(tok Token) error {
	if p.cur() != tok {
		err := UnexpectedTokenError(tok.String(), p.cur().String(), p.loc())
		p.ec.AddError(err)
		return err
	}
	p.advance()
	return nil
}

// ParseProgram parses a full statement list and wraps it in a block, so
// binding.go's scope stack (which requires at least one enclosing Ablk)
// is satisfied even for top-level assignments.
func (p *Parser) ParseProgram() (Node, error) {
	pos := p.curPos()
	body, err := p.parseStmtList(Teof)
	if err != nil && p.ec.ShouldStop() {
		return 0, err
	}
	root := p.a.NewBlk(body, 0, pos)
	p.a.SetRoot(root)
	return root, nil
}

// parseStmtList parses statements up to (not including) one of stop, or
// end of file, resynchronizing at a statement boundary after an error
// the way lexer.go's own error recovery already does for lexical errors.
func (p *Parser) parseStmtList(stop ...Token) (Node, error) {
	pos := p.curPos()
	var items []Node
	var lastErr error
	for {
		if p.ec.Resyncing() {
			p.skipToBoundary(stop)
			p.ec.Resynced()
		}
		if p.cur() == Teof || p.atStop(stop) {
			break
		}
		if p.cur() == Tsepa {
			p.advance()
			continue
		}
		stmt, err := p.parseStmt()
		if err != nil {
			lastErr = err
			if p.ec.ShouldStop() {
				break
			}
			continue
		}
		items = append(items, p.a.NewStmt(stmt, pos))
	}
	rpos, cnt := p.a.PushRep(items...)
	return p.a.NewStmtlst(rpos, uint32(cnt), pos), lastErr
}

func (p *Parser) atStop(stop []Token) bool {
	for _, s := range stop {
		if p.cur() == s {
			return true
		}
	}
	return false
}

func (p *Parser) skipToBoundary(stop []Token) {
	for {
		if p.cur() == Teof || p.cur() == Tsepa || p.atStop(stop) {
			return
		}
		p.advance()
	}
}

// parseStmt dispatches on the current token to one statement form. A
// bare identifier followed by '=' is an assignment; anything else that
// starts an expression is parsed as an expression-statement (spec.md §8
// scenario 2: a lone identifier is a complete, if inert, statement).
func (p *Parser) parseStmt() (Node, error) {
	switch p.cur() {
	case Tif:
		return p.parseIf()
	case Twhile:
		return p.parseWhile()
	case Tfunction:
		return p.parseFunctionDef()
	case Tso:
		return p.parseBlock()
	case Tlocal:
		// A local declaration behaves exactly like a plain assignment
		// here: DeclareOrAssign (binding.go) already introduces a fresh
		// binding whenever none is visible, which is what 'local' asks
		// for at the point it's written.
		p.advance()
		return p.parseAssign()
	default:
		if p.cur() == Tid && p.peek(1) == Tdas {
			return p.parseAssign()
		}
		return p.parseExprNode()
	}
}

func (p *Parser) parseAssign() (Node, error) {
	pos := p.curPos()
	if p.cur() != Tid {
		err := UnexpectedTokenError(Tid.String(), p.cur().String(), p.loc())
		p.ec.AddError(err)
		return 0, err
	}
	id := p.lx.Idents[p.i]
	tgt := p.a.NewIdent(id, 0, pos)
	p.advance()
	if err := p.expect(Tdas); err != nil {
		return 0, err
	}
	rhs, err := p.parseExprNode()
	if err != nil {
		return 0, err
	}
	return p.a.NewAsgnst(tgt, rhs, pos), nil
}

func (p *Parser) parseIf() (Node, error) {
	pos := p.curPos()
	p.advance() // 'if'
	return p.parseIfBody(pos)
}

// parseIfBody parses `Expr then StmtList (elseif ...)* (else StmtList)?
// end`, consuming the trailing 'end' itself -- an elseif chain is built
// as nested Aif nodes, each one owning the 'end' that closes the whole
// chain only at its innermost link.
func (p *Parser) parseIfBody(pos Pos) (Node, error) {
	cond, err := p.parseExprNode()
	if err != nil {
		return 0, err
	}
	if err := p.expect(Tthen); err != nil {
		return 0, err
	}
	thenBody, err := p.parseStmtList(Telseif, Telse, Tend)
	if err != nil {
		return 0, err
	}
	var elseBody Node
	switch p.cur() {
	case Telseif:
		epos := p.curPos()
		p.advance()
		elseBody, err = p.parseIfBody(epos)
		if err != nil {
			return 0, err
		}
	case Telse:
		p.advance()
		elseBody, err = p.parseStmtList(Tend)
		if err != nil {
			return 0, err
		}
		if err := p.expect(Tend); err != nil {
			return 0, err
		}
	default:
		if err := p.expect(Tend); err != nil {
			return 0, err
		}
	}
	return p.a.NewIf(cond, thenBody, elseBody, pos), nil
}

func (p *Parser) parseWhile() (Node, error) {
	pos := p.curPos()
	p.advance() // 'while'
	cond, err := p.parseExprNode()
	if err != nil {
		return 0, err
	}
	if err := p.expect(Tdo); err != nil {
		return 0, err
	}
	body, err := p.parseStmtList(Tend)
	if err != nil {
		return 0, err
	}
	if err := p.expect(Tend); err != nil {
		return 0, err
	}
	return p.a.NewWhile(cond, body, pos), nil
}

func (p *Parser) parseBlock() (Node, error) {
	pos := p.curPos()
	p.advance() // '{'
	p.depth++
	lvl := p.depth
	body, err := p.parseStmtList(Tsc)
	p.depth--
	if err != nil {
		return 0, err
	}
	if err := p.expect(Tsc); err != nil {
		return 0, err
	}
	return p.a.NewBlk(body, uint16(lvl), pos), nil
}

// parseFunctionDef builds an Afndef/Aparam tree per spec.md §4.6.3. The
// demonstration VM has no call instruction (spec.md §4.7: "Ctret: not
// implemented"), so a function body is bound like any other block and
// irgen.go rejects an Afndef statement as unsupported -- it exists for
// AST-level inspection and pretty-printing only.
func (p *Parser) parseFunctionDef() (Node, error) {
	pos := p.curPos()
	p.advance() // 'function'
	if p.cur() != Tid {
		err := UnexpectedTokenError(Tid.String(), p.cur().String(), p.loc())
		p.ec.AddError(err)
		return 0, err
	}
	nameID := p.lx.Idents[p.i]
	namePos := p.curPos()
	name := p.a.NewIdent(nameID, 0, namePos)
	p.advance()

	parlst, err := p.parseParamList()
	if err != nil {
		return 0, err
	}
	p.depth++
	body, err := p.parseStmtList(Tend)
	p.depth--
	if err != nil {
		return 0, err
	}
	if err := p.expect(Tend); err != nil {
		return 0, err
	}
	blk := p.a.NewBlk(body, uint16(p.depth+1), pos)
	return p.a.NewFndef(name, parlst, blk, pos), nil
}

func (p *Parser) parseParamList() (Node, error) {
	pos := p.curPos()
	if err := p.expect(Tco); err != nil {
		return 0, err
	}
	var items []Node
	for p.cur() != Tcc {
		if p.cur() != Tid {
			err := UnexpectedTokenError(Tid.String(), p.cur().String(), p.loc())
			p.ec.AddError(err)
			return 0, err
		}
		ppos := p.curPos()
		id := p.lx.Idents[p.i]
		idNode := p.a.NewIdent(id, 0, ppos)
		p.advance()
		items = append(items, p.a.NewParam(idNode, 0, 0, ppos))
		if p.cur() == Tcomma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(Tcc); err != nil {
		return 0, err
	}
	rpos, cnt := p.a.PushRep(items...)
	return p.a.NewPrmlst(rpos, cnt, pos), nil
}

// parseExprNode parses `operand (op operand)*` into a flat token stream
// and hands it to precedence.go's shunting-yard rewrite, the way the
// parser's raw Apexplst output feeds the AST post-processor in spec.md
// §4.6.1. Unary operators bind into the operand itself before the flat
// stream is built, so the precedence table never needs to know about
// them.
func (p *Parser) parseExprNode() (Node, error) {
	pos := p.curPos()
	operand, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	toks := []exprTok{{node: operand}}
	for p.isBinOp(p.cur()) {
		op := p.binOpFor(p.cur(), p.curAttr())
		p.advance()
		rhs, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		toks = append(toks, exprTok{isOp: true, op: op}, exprTok{node: rhs})
	}
	node, _, err := precedenceRewrite(p.a, toks, pos)
	return node, err
}

func (p *Parser) isBinOp(tok Token) bool {
	return tok == Top || tok == Tao || tok == Tac
}

func (p *Parser) binOpFor(tok Token, attr byte) Bop {
	switch tok {
	case Tao:
		return Olt
	case Tac:
		return Ogt
	default:
		return Bop(attr)
	}
}

func (p *Parser) parseUnary() (Node, error) {
	pos := p.curPos()
	switch {
	case p.cur() == Tnot:
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return p.a.NewUexp(Onot, e, pos), nil
	case p.cur() == Top && Bop(p.curAttr()) == Osub:
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return p.a.NewUexp(Oumin, e, pos), nil
	case p.cur() == Top && Bop(p.curAttr()) == Oadd:
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return p.a.NewUexp(Oupls, e, pos), nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (Node, error) {
	pos := p.curPos()
	switch p.cur() {
	case Tid:
		id := p.lx.Idents[p.i]
		p.advance()
		return p.a.NewIdent(id, 0, pos), nil
	case Tnlit:
		if p.curAttr() == attrInt {
			v := p.lx.IVals[p.i]
			p.advance()
			return p.a.NewIlit(v, pos), nil
		}
		v := p.lx.FVals[p.i]
		p.advance()
		return p.a.NewFlit(v, pos), nil
	case Tslit:
		b := p.lx.SLits[p.i]
		off := p.a.AppendSlitBytes(b)
		p.advance()
		return p.a.NewSlit(off, uint32(len(b)), pos), nil
	case Ttrue:
		p.advance()
		return p.a.NewIlit(1, pos), nil
	case Tfalse, Tnil:
		p.advance()
		return p.a.NewIlit(0, pos), nil
	case Tco:
		p.advance()
		e, err := p.parseExprNode()
		if err != nil {
			return 0, err
		}
		if err := p.expect(Tcc); err != nil {
			return 0, err
		}
		return p.a.NewPexp(0, e, pos), nil
	default:
		err := UnexpectedTokenError("expression", p.cur().String(), p.loc())
		p.ec.AddError(err)
		return 0, err
	}
}
