package main

import "testing"

func tok(n Node) exprTok    { return exprTok{node: n} }
func opTok(op Bop) exprTok { return exprTok{isOp: true, op: op} }

// TestPrecedenceSingleOperand covers Open Question 3 (spec.md §9/§4.6.1):
// a single-operand expression list short-circuits rather than entering the
// climbing loop.
func TestPrecedenceSingleOperand(t *testing.T) {
	a := NewAST()
	lit := a.NewIlit(5, 0)
	node, hit, err := precedenceRewrite(a, []exprTok{tok(lit)}, 0)
	if err != nil {
		t.Fatalf("precedenceRewrite: %v", err)
	}
	if node != lit {
		t.Fatalf("single-operand rewrite should return the operand unchanged")
	}
	if hit != 1 {
		t.Fatalf("hit = %d, want 1", hit)
	}
}

// TestPrecedenceClimbing covers spec.md §8's precedence-rewrite invariant:
// length(ops) == 2n+1 (expressed here as the resulting tree shape) with
// higher-precedence operators binding tighter. 1 + 2 * 3 must parse as
// 1 + (2 * 3), not (1 + 2) * 3.
func TestPrecedenceClimbing(t *testing.T) {
	a := NewAST()
	e1 := a.NewIlit(1, 0)
	e2 := a.NewIlit(2, 0)
	e3 := a.NewIlit(3, 0)
	toks := []exprTok{tok(e1), opTok(Oadd), tok(e2), opTok(Omul), tok(e3)}
	node, hit, err := precedenceRewrite(a, toks, 0)
	if err != nil {
		t.Fatalf("precedenceRewrite: %v", err)
	}
	if node.Type() != Abexp {
		t.Fatalf("root should be a binary expression, got %s", node.Type())
	}
	top := a.Bexp(node)
	if top.op != Oadd {
		t.Fatalf("root operator = %v, want Oadd (lowest precedence binds loosest)", top.op)
	}
	if top.l != e1 {
		t.Fatalf("left operand of the root should be the literal 1")
	}
	if top.r.Type() != Abexp {
		t.Fatalf("right operand should be the 2*3 subexpression, got %s", top.r.Type())
	}
	inner := a.Bexp(top.r)
	if inner.op != Omul || inner.l != e2 || inner.r != e3 {
		t.Fatalf("inner expression is not 2*3: %+v", inner)
	}
	if hit < 2 {
		t.Fatalf("hit = %d, want at least 2 live operands tracked", hit)
	}
}

func TestPrecedenceLeftAssociative(t *testing.T) {
	a := NewAST()
	e1 := a.NewIlit(1, 0)
	e2 := a.NewIlit(2, 0)
	e3 := a.NewIlit(3, 0)
	// 1 - 2 - 3 must parse as (1 - 2) - 3, not 1 - (2 - 3).
	toks := []exprTok{tok(e1), opTok(Osub), tok(e2), opTok(Osub), tok(e3)}
	node, _, err := precedenceRewrite(a, toks, 0)
	if err != nil {
		t.Fatalf("precedenceRewrite: %v", err)
	}
	top := a.Bexp(node)
	if top.op != Osub || top.r != e3 {
		t.Fatalf("root should be (1-2)-3, got op=%v r=%v", top.op, top.r)
	}
	if top.l.Type() != Abexp {
		t.Fatalf("left operand should be the 1-2 subexpression")
	}
	left := a.Bexp(top.l)
	if left.l != e1 || left.r != e2 || left.op != Osub {
		t.Fatalf("left subexpression is not 1-2: %+v", left)
	}
}

// TestPrecedenceDepthLimit drives climb directly past its recursion bound.
// The table of distinct precedence tiers is too shallow for any real operand
// stream to reach depth 16 through climbing alone, so the guard is exercised
// directly rather than through a constructed expression.
func TestPrecedenceDepthLimit(t *testing.T) {
	a := NewAST()
	toks := []exprTok{tok(a.NewIlit(1, 0)), opTok(Oadd), tok(a.NewIlit(2, 0))}
	pos := 0
	hit := uint8(0)
	if _, err := climb(a, toks, &pos, 0, 0, &hit, expDepth+1); err == nil {
		t.Fatal("expected an error once depth exceeds expDepth")
	}
}
