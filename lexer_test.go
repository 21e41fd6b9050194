package main

import "testing"

func lexSrc(t *testing.T, src string) (*Lexer, *ErrorCollector) {
	t.Helper()
	b := []byte(src)
	pre, _ := NewPrelex(b)
	ec := NewErrorCollector(40)
	lx := NewLexer(b, pre, NewIdentMap(8), ec)
	if err := lx.Run(); err != nil && ec.ErrorCount() == 0 {
		t.Fatalf("Run returned %v but recorded no errors", err)
	}
	return lx, ec
}

// TestLexerEmptyInput covers spec.md §8 scenario 1: "" yields no content
// tokens, only the trailing end-of-file sentinel.
func TestLexerEmptyInput(t *testing.T) {
	lx, ec := lexSrc(t, "")
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	if len(lx.Toks) != 1 || lx.Toks[0] != Teof {
		t.Fatalf("Toks = %v, want exactly [Teof]", lx.Toks)
	}
}

// TestLexerLoneIdentifier covers spec.md §8 scenario 2: "x" yields one
// identifier token with id 1 at position 0.
func TestLexerLoneIdentifier(t *testing.T) {
	lx, ec := lexSrc(t, "x")
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	if len(lx.Toks) != 2 || lx.Toks[0] != Tid || lx.Toks[1] != Teof {
		t.Fatalf("Toks = %v, want [Tid Teof]", lx.Toks)
	}
	if lx.Idents[0] != 1 {
		t.Fatalf("Idents[0] = %d, want 1", lx.Idents[0])
	}
	if lx.Poss[0].Offset() != 0 {
		t.Fatalf("Poss[0].Offset() = %d, want 0", lx.Poss[0].Offset())
	}
}

func TestLexerKeywords(t *testing.T) {
	lx, ec := lexSrc(t, "if while end")
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	want := []Token{Tif, Twhile, Tend, Teof}
	if len(lx.Toks) != len(want) {
		t.Fatalf("Toks = %v, want %v", lx.Toks, want)
	}
	for i, w := range want {
		if lx.Toks[i] != w {
			t.Errorf("Toks[%d] = %v, want %v", i, lx.Toks[i], w)
		}
	}
}

func TestLexerIntegerLiteral(t *testing.T) {
	lx, ec := lexSrc(t, "42")
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	if lx.Toks[0] != Tnlit || lx.Attrs[0] != attrInt {
		t.Fatalf("want an integer literal token, got %v/%d", lx.Toks[0], lx.Attrs[0])
	}
	if lx.IVals[0] != 42 {
		t.Fatalf("IVals[0] = %d, want 42", lx.IVals[0])
	}
}

func TestLexerFloatLiteral(t *testing.T) {
	lx, ec := lexSrc(t, "3.5")
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	if lx.Toks[0] != Tnlit || lx.Attrs[0] != attrFloat {
		t.Fatalf("want a float literal token, got %v/%d", lx.Toks[0], lx.Attrs[0])
	}
	if lx.FVals[0] != 3.5 {
		t.Fatalf("FVals[0] = %v, want 3.5", lx.FVals[0])
	}
}

func TestLexerHexLiteral(t *testing.T) {
	lx, ec := lexSrc(t, "0x1F")
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	if lx.IVals[0] != 31 {
		t.Fatalf("IVals[0] = %d, want 31", lx.IVals[0])
	}
}

func TestLexerStringLiteral(t *testing.T) {
	lx, ec := lexSrc(t, `"hi\nthere"`)
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	if lx.Toks[0] != Tslit {
		t.Fatalf("want a string literal token, got %v", lx.Toks[0])
	}
	if string(lx.SLits[0]) != "hi\nthere" {
		t.Fatalf("SLits[0] = %q, want %q", lx.SLits[0], "hi\nthere")
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	_, ec := lexSrc(t, `"never closed`)
	if !ec.HasErrors() {
		t.Fatal("expected an unterminated-string error")
	}
}

func TestLexerComment(t *testing.T) {
	lx, ec := lexSrc(t, "-- a comment\nx")
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	if len(lx.Toks) != 2 || lx.Toks[0] != Tid {
		t.Fatalf("Toks = %v, want [Tid Teof] (comment skipped)", lx.Toks)
	}
}

func TestLexerOperators(t *testing.T) {
	lx, ec := lexSrc(t, "== ~= <= >= + - * / %")
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	wantOps := []Bop{Oeq, One, Ole, Oge, Oadd, Osub, Omul, Odiv, Omod}
	if len(lx.Toks)-1 != len(wantOps) {
		t.Fatalf("got %d tokens (excluding eof), want %d", len(lx.Toks)-1, len(wantOps))
	}
	for i, w := range wantOps {
		if lx.Toks[i] != Top {
			t.Fatalf("Toks[%d] = %v, want Top", i, lx.Toks[i])
		}
		if Bop(lx.Attrs[i]) != w {
			t.Errorf("Attrs[%d] = %v, want %v", i, Bop(lx.Attrs[i]), w)
		}
	}
}

// TestLexerPositionMonotonicity covers spec.md §8's position-monotonicity
// invariant: pos(tok[i]) <= pos(tok[i+1]) for every i.
func TestLexerPositionMonotonicity(t *testing.T) {
	lx, ec := lexSrc(t, "aa = 1 + bb * 22 - \"str\"")
	if ec.HasErrors() {
		t.Fatalf("unexpected errors: %v", ec.Report(false))
	}
	for i := 0; i+1 < len(lx.Poss); i++ {
		if lx.Poss[i].Offset() > lx.Poss[i+1].Offset() {
			t.Fatalf("position went backward at %d: %d > %d", i, lx.Poss[i].Offset(), lx.Poss[i+1].Offset())
		}
	}
}
