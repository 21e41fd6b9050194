package main

import "testing"

// TestFoldArithmeticPrecedence covers spec.md §8 scenario 3: "y = 1 + 2 * 3"
// folds entirely down to a single Ailit carrying 7, respecting the same
// precedence the parser already rewrote into the tree shape.
func TestFoldArithmeticPrecedence(t *testing.T) {
	a, p, ec := parseSrc(t, "y = 1 + 2 * 3")
	root, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if ec.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", ec.Report(false))
	}
	binder := NewBinder(a, ec)
	if err := binder.Bind(root, func(Ident) string { return "" }); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	fo := NewFolder(a, ec)
	if err := fo.Fold(root); err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if ec.HasErrors() {
		t.Fatalf("unexpected folding errors: %v", ec.Report(false))
	}

	stmt := firstStmtNode(t, a, root)
	asg := a.Asgnst(stmt)
	folded := a.Resolve(asg.e)
	if folded.Type() != Ailit {
		t.Fatalf("expression should fold to a literal, got %s", folded.Type())
	}
	if v := a.Ilit(folded); v != 7 {
		t.Fatalf("folded value = %d, want 7", v)
	}
}

// TestFoldIdempotent covers the constant-folding idempotence invariant from
// spec.md §8: folding an already-folded tree a second time must yield the
// same result.
func TestFoldIdempotent(t *testing.T) {
	a, p, ec := parseSrc(t, "y = 2 * 3 + 4")
	root, _ := p.ParseProgram()
	binder := NewBinder(a, ec)
	binder.Bind(root, func(Ident) string { return "" })
	fo := NewFolder(a, ec)
	if err := fo.Fold(root); err != nil {
		t.Fatalf("first Fold: %v", err)
	}
	stmt := firstStmtNode(t, a, root)
	asg := a.Asgnst(stmt)
	first := a.Ilit(a.Resolve(asg.e))

	if err := fo.Fold(root); err != nil {
		t.Fatalf("second Fold: %v", err)
	}
	second := a.Ilit(a.Resolve(asg.e))
	if first != second || first != 10 {
		t.Fatalf("fold is not idempotent: first=%d second=%d, want 10 both times", first, second)
	}
}

func TestFoldDivByZero(t *testing.T) {
	a, p, ec := parseSrc(t, "y = 1 / 0")
	root, _ := p.ParseProgram()
	binder := NewBinder(a, ec)
	binder.Bind(root, func(Ident) string { return "" })
	fo := NewFolder(a, ec)
	fo.Fold(root)
	if !ec.HasErrors() {
		t.Fatal("expected a division-by-zero error when folding 1/0")
	}
}

func TestFoldLeavesNonConstant(t *testing.T) {
	a, p, ec := parseSrc(t, "x = 0 y = x + 1")
	root, _ := p.ParseProgram()
	binder := NewBinder(a, ec)
	binder.Bind(root, func(Ident) string { return "x" })
	if ec.HasErrors() {
		t.Fatalf("unexpected binding errors: %v", ec.Report(false))
	}
	fo := NewFolder(a, ec)
	if err := fo.Fold(root); err != nil {
		t.Fatalf("Fold: %v", err)
	}
	stmt := stmtNodeAt(t, a, root, 1)
	asg := a.Asgnst(stmt)
	if a.Resolve(asg.e).Type() != Abexp {
		t.Fatal("an expression referencing a variable must not be folded away")
	}
}

// stmtNodeAt returns the i-th top-level statement's inner node.
func stmtNodeAt(t *testing.T, a *AST, root Node, i int) Node {
	t.Helper()
	blk := a.Blk(root)
	lst := a.Stmtlst(blk.s)
	items := a.Rep(lst.pos, uint16(lst.cnt))
	if i >= len(items) {
		t.Fatalf("statement list has %d items, want at least %d", len(items), i+1)
	}
	return a.Stmt(items[i]).s
}
