package main

import "testing"

func parseSrc(t *testing.T, src string) (*AST, *Parser, *ErrorCollector) {
	t.Helper()
	b := []byte(src)
	pre, err := NewPrelex(b)
	if err != nil {
		t.Fatalf("NewPrelex: %v", err)
	}
	ec := NewErrorCollector(40)
	ids := NewIdentMap(8)
	lx := NewLexer(b, pre, ids, ec)
	if err := lx.Run(); err != nil && ec.ErrorCount() == 0 {
		t.Fatalf("lexer Run: %v", err)
	}
	a := NewAST()
	p := NewParser(lx, a, ec)
	return a, p, ec
}

func TestParserAssignment(t *testing.T) {
	a, p, ec := parseSrc(t, "x = 1")
	root, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	blk := a.Blk(root)
	stmtlst := blk.s
	if stmtlst.Type() != Astmtlst {
		t.Fatalf("block body should be a statement list, got %s", stmtlst.Type())
	}
}

func TestParserIfElse(t *testing.T) {
	a, p, ec := parseSrc(t, "if x then y = 1 else y = 2 end")
	root, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	stmts := firstStmtNode(t, a, root)
	if stmts.Type() != Aif {
		t.Fatalf("expected an if statement, got %s", stmts.Type())
	}
	ifn := a.If(stmts)
	if ifn.elseBody.IsNil() {
		t.Fatal("else branch should be present")
	}
}

func TestParserWhile(t *testing.T) {
	a, p, ec := parseSrc(t, "while x do x = 0 end")
	root, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	stmts := firstStmtNode(t, a, root)
	if stmts.Type() != Awhile {
		t.Fatalf("expected a while statement, got %s", stmts.Type())
	}
	w := a.While(stmts)
	if w.cond.Type() != Aid {
		t.Fatalf("while condition should be the bare identifier x, got %s", w.cond.Type())
	}
}

func TestParserFunctionDef(t *testing.T) {
	a, p, ec := parseSrc(t, "function f(a, b) x = a end")
	root, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	stmts := firstStmtNode(t, a, root)
	if stmts.Type() != Afndef {
		t.Fatalf("expected a function definition, got %s", stmts.Type())
	}
}

func TestParserParenthesizedExpr(t *testing.T) {
	a, p, ec := parseSrc(t, "x = (1 + 2) * 3")
	root, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	stmts := firstStmtNode(t, a, root)
	if stmts.Type() != Aasgnst {
		t.Fatalf("expected an assignment, got %s", stmts.Type())
	}
	asg := a.Asgnst(stmts)
	if asg.e.Type() != Abexp {
		t.Fatalf("rhs should be a binary expression, got %s", asg.e.Type())
	}
	top := a.Bexp(asg.e)
	if top.op != Omul {
		t.Fatalf("root operator should be * (parens override +), got %v", top.op)
	}
	if top.l.Type() != Apexp {
		t.Fatalf("left operand should be the parenthesized 1+2, got %s", top.l.Type())
	}
}

func TestParserUnaryMinus(t *testing.T) {
	a, p, ec := parseSrc(t, "x = -1")
	root, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	stmts := firstStmtNode(t, a, root)
	asg := a.Asgnst(stmts)
	if asg.e.Type() != Auexp {
		t.Fatalf("rhs should be a unary expression, got %s", asg.e.Type())
	}
}

// firstStmtNode unwraps root's Ablk -> Astmtlst -> first Astmt -> inner
// node, the shape every parseStmt call produces through ParseProgram.
func firstStmtNode(t *testing.T, a *AST, root Node) Node {
	t.Helper()
	blk := a.Blk(root)
	lst := a.Stmtlst(blk.s)
	items := a.Rep(lst.pos, uint16(lst.cnt))
	if len(items) == 0 {
		t.Fatal("statement list is empty")
	}
	stmt := a.Stmt(items[0])
	return stmt.s
}
