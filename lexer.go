package main

// Lexer turns prelexed source bytes into parallel token/position/literal
// arrays: the table-driven character classifier in chr.go picks the
// branch, identmap.go interns names, token.go recognizes keywords. The
// output is columnar (one slice per field) rather than a slice of
// lexeme structs, mirroring the reference tokenizer's own parallel
// output arrays (tok/atr/bit/dfp0/dfp1) -- here toks/attrs/poss plus the
// per-kind value slices stand in for atr/bit/dfp0/dfp1.
//
// Top carries its concrete operator in the parallel Attrs slice (a Bop
// value) rather than minting one token kind per punctuation mark; Tnlit
// likewise uses Attrs to say whether IVals or FVals holds the value.
type Lexer struct {
	src []byte
	pre *Prelex
	ids *IdentMap
	ec  *ErrorCollector

	pos int

	Toks   []Token
	Attrs  []byte
	Poss   []Pos
	Idents []Ident   // valid only where Toks[i] == Tid
	IVals  []uint64  // valid only where Toks[i] == Tnlit, Attrs[i] == 0
	FVals  []float64 // valid only where Toks[i] == Tnlit, Attrs[i] == 1
	SLits  [][]byte  // valid only where Toks[i] == Tslit
}

const (
	attrInt   byte = 0
	attrFloat byte = 1
)

func NewLexer(src []byte, pre *Prelex, ids *IdentMap, ec *ErrorCollector) *Lexer {
	return &Lexer{src: src, pre: pre, ids: ids, ec: ec}
}

// Run tokenizes the full source, appending Teof at the end. It keeps
// going after a recoverable error (bad character, unterminated literal)
// so later lexical errors in the same file are still reported, mirroring
// ErrorCollector's statement-boundary resync model for the parser.
func (l *Lexer) Run() error {
	var firstErr error
	for {
		tok, err := l.next()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if tok == Teof {
			break
		}
	}
	return firstErr
}

func (l *Lexer) emit(tok Token, attr byte, p Pos) {
	l.Toks = append(l.Toks, tok)
	l.Attrs = append(l.Attrs, attr)
	l.Poss = append(l.Poss, p)
	l.Idents = append(l.Idents, 0)
	l.IVals = append(l.IVals, 0)
	l.FVals = append(l.FVals, 0)
	l.SLits = append(l.SLits, nil)
}

func (l *Lexer) setIdent(id Ident) { l.Idents[len(l.Idents)-1] = id }
func (l *Lexer) setIVal(v uint64)  { l.IVals[len(l.IVals)-1] = v }
func (l *Lexer) setFVal(v float64) { l.FVals[len(l.FVals)-1] = v }
func (l *Lexer) setSLit(b []byte)  { l.SLits[len(l.SLits)-1] = b }

func (l *Lexer) loc() SourceLocation {
	line, col := 0, 0
	if l.pre != nil {
		line, col = l.pre.LineCol(uint32(l.pos))
	}
	return SourceLocation{Line: line, Column: col}
}

// next scans and emits exactly one token (skipping whitespace and
// comments first), returning the token kind emitted or an error if the
// input at the current position is malformed.
func (l *Lexer) next() (Token, error) {
	n := len(l.src)
	for l.pos < n {
		c := l.src[l.pos]
		switch {
		case isSpace(c) || isNL(c):
			l.pos++
		case c == '-' && l.pos+1 < n && l.src[l.pos+1] == '-':
			l.skipComment()
		default:
			goto scan
		}
	}
scan:
	if l.pos >= n {
		l.emit(Teof, 0, makePos(uint32(l.pos), 0))
		return Teof, nil
	}

	start := l.pos
	p := makePos(uint32(start), 0)
	c := l.src[l.pos]

	switch {
	case isIdentStart(c):
		return l.scanIdentOrKeyword(p)
	case isNum(c):
		return l.scanNumber(p)
	case c == '"' || c == '\'':
		return l.scanString(p, c)
	case c == '[' && l.pos+1 < n && (l.src[l.pos+1] == '[' || l.src[l.pos+1] == '='):
		return l.scanLongString(p)
	default:
		return l.scanOperator(p)
	}
}

func (l *Lexer) skipComment() {
	n := len(l.src)
	if l.pos+2 < n && l.src[l.pos+2] == '[' {
		save := l.pos
		l.pos += 2
		if l.skipLongBracket() {
			return
		}
		l.pos = save
	}
	for l.pos < n && l.src[l.pos] != '\n' {
		l.pos++
	}
}

func (l *Lexer) skipLongBracket() bool {
	n := len(l.src)
	i := l.pos + 1
	level := 0
	for i < n && l.src[i] == '=' {
		level++
		i++
	}
	if i >= n || l.src[i] != '[' {
		return false
	}
	i++
	for i < n {
		if l.src[i] == ']' {
			j := i + 1
			lvl := 0
			for j < n && l.src[j] == '=' {
				lvl++
				j++
			}
			if lvl == level && j < n && l.src[j] == ']' {
				l.pos = j + 1
				return true
			}
		}
		i++
	}
	l.pos = n
	return true
}

func (l *Lexer) scanIdentOrKeyword(p Pos) (Token, error) {
	start := l.pos
	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	word := l.src[start:l.pos]
	if kw, ok := lookupKeyword(word); ok {
		l.emit(kw, 0, p)
		return kw, nil
	}
	id := l.ids.GetAdd(word)
	l.emit(Tid, 0, p)
	l.setIdent(id)
	return Tid, nil
}

func (l *Lexer) scanNumber(p Pos) (Token, error) {
	start := l.pos
	n := len(l.src)
	isFloat := false
	if l.src[l.pos] == '0' && l.pos+1 < n && (l.src[l.pos+1] == 'x' || l.src[l.pos+1] == 'X') {
		l.pos += 2
		for l.pos < n && isHexDigit(l.src[l.pos]) {
			l.pos++
		}
		v := parseHexUint(l.src[start+2 : l.pos])
		l.emit(Tnlit, attrInt, p)
		l.setIVal(v)
		return Tnlit, nil
	}
	for l.pos < n && isNum(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < n && l.src[l.pos] == '.' {
		isFloat = true
		l.pos++
		for l.pos < n && isNum(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < n && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		isFloat = true
		l.pos++
		if l.pos < n && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		for l.pos < n && isNum(l.src[l.pos]) {
			l.pos++
		}
	}
	text := l.src[start:l.pos]
	if isFloat {
		v := parseFloat(text)
		l.emit(Tnlit, attrFloat, p)
		l.setFVal(v)
		return Tnlit, nil
	}
	v := parseDecUint(text)
	l.emit(Tnlit, attrInt, p)
	l.setIVal(v)
	return Tnlit, nil
}

func (l *Lexer) scanString(p Pos, quote byte) (Token, error) {
	l.pos++
	n := len(l.src)
	var buf []byte
	for {
		if l.pos >= n || l.src[l.pos] == '\n' {
			err := SyntaxError("unterminated string literal", l.loc())
			l.ec.AddError(err)
			return 0, err
		}
		c := l.src[l.pos]
		if c == quote {
			l.pos++
			break
		}
		if c == '\\' && l.pos+1 < n {
			buf = append(buf, unescape(l.src[l.pos+1]))
			l.pos += 2
			continue
		}
		buf = append(buf, c)
		l.pos++
	}
	l.emit(Tslit, 0, p)
	l.setSLit(buf)
	return Tslit, nil
}

func (l *Lexer) scanLongString(p Pos) (Token, error) {
	start := l.pos
	if !l.skipLongBracket() {
		// not actually a long bracket -- fall back to operator scanning,
		// which will tokenize the lone '['.
		l.pos = start
		return l.scanOperator(p)
	}
	level := 0
	for i := start + 1; i < len(l.src) && l.src[i] == '='; i++ {
		level++
	}
	inner := l.src[start+2+level : l.pos-2-level]
	l.emit(Tslit, 0, p)
	l.setSLit(inner)
	return Tslit, nil
}

// scanOperator recognizes punctuation. Comparison/arithmetic operators
// collapse onto Top with their Bop code carried in Attrs, except bare '<'
// and '>', which get Tao/Tac (the parser maps them to Olt/Ogt); everything
// with its own grammatical role (parens, braces, separators, the single
// assignment operator, label/member-access punctuation) gets its own
// token kind per token.go.
func (l *Lexer) scanOperator(p Pos) (Token, error) {
	n := len(l.src)
	c := l.src[l.pos]
	two := byte(0)
	if l.pos+1 < n {
		two = l.src[l.pos+1]
	}

	emitOp := func(op Bop, adv int) (Token, error) {
		l.pos += adv
		l.emit(Top, byte(op), p)
		return Top, nil
	}

	switch {
	case c == '=' && two == '=':
		return emitOp(Oeq, 2)
	case c == '~' && two == '=':
		return emitOp(One, 2)
	case c == '<' && two == '=':
		return emitOp(Ole, 2)
	case c == '>' && two == '=':
		return emitOp(Oge, 2)
	case c == '.' && two == '.':
		if l.pos+2 < n && l.src[l.pos+2] == '.' {
			l.pos += 3
			l.emit(Tell, 0, p)
			return Tell, nil
		}
		// string concatenation has no dedicated Bop; this front end's
		// arithmetic IR cannot evaluate it at constant-fold or codegen
		// time, so the lexer reports it as an unsupported-operator
		// error instead of a silent no-op.
		l.pos += 2
		err := SyntaxError("string concatenation is not supported by this front end's numeric IR", l.loc())
		l.ec.AddError(err)
		return 0, err
	case c == '=':
		l.pos++
		l.emit(Tdas, 0, p)
		return Tdas, nil
	case c == '<':
		l.pos++
		l.emit(Tao, 0, p)
		return Tao, nil
	case c == '>':
		l.pos++
		l.emit(Tac, 0, p)
		return Tac, nil
	case c == '+':
		return emitOp(Oadd, 1)
	case c == '-':
		return emitOp(Osub, 1)
	case c == '*':
		return emitOp(Omul, 1)
	case c == '/':
		return emitOp(Odiv, 1)
	case c == '%':
		return emitOp(Omod, 1)
	case c == '(':
		l.pos++
		l.emit(Tco, 0, p)
		return Tco, nil
	case c == ')':
		l.pos++
		l.emit(Tcc, 0, p)
		return Tcc, nil
	case c == '{':
		l.pos++
		l.emit(Tso, 0, p)
		return Tso, nil
	case c == '}':
		l.pos++
		l.emit(Tsc, 0, p)
		return Tsc, nil
	case c == '[':
		l.pos++
		l.emit(Tro, 0, p)
		return Tro, nil
	case c == ']':
		l.pos++
		l.emit(Trc, 0, p)
		return Trc, nil
	case c == ',':
		l.pos++
		l.emit(Tcomma, 0, p)
		return Tcomma, nil
	case c == ';':
		l.pos++
		l.emit(Tsepa, 0, p)
		return Tsepa, nil
	case c == ':' && two == ':':
		l.pos += 2
		l.emit(Tdcol, 0, p)
		return Tdcol, nil
	case c == ':':
		l.pos++
		l.emit(Tcolon, 0, p)
		return Tcolon, nil
	case c == '.':
		l.pos++
		l.emit(Tdot, 0, p)
		return Tdot, nil
	default:
		err := SyntaxError("unexpected character "+chrPrint(c), l.loc())
		l.ec.AddError(err)
		l.pos++
		return 0, err
	}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '\\', '"', '\'':
		return c
	default:
		return c
	}
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func parseHexUint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint64(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint64(c-'A') + 10
		}
	}
	return v
}

func parseDecUint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v*10 + uint64(c-'0')
	}
	return v
}

func parseFloat(b []byte) float64 {
	var whole, frac, fracDiv float64
	fracDiv = 1
	i := 0
	neg := false
	if i < len(b) && b[i] == '-' {
		neg = true
		i++
	}
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		whole = whole*10 + float64(b[i]-'0')
		i++
	}
	if i < len(b) && b[i] == '.' {
		i++
		for i < len(b) && b[i] >= '0' && b[i] <= '9' {
			frac = frac*10 + float64(b[i]-'0')
			fracDiv *= 10
			i++
		}
	}
	v := whole + frac/fracDiv
	if neg {
		v = -v
	}
	return v
}
