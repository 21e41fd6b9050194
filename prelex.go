package main

// Pre-lexer: one pass over the raw source bytes ahead of tokenizing,
// building the newline offset table the error reporter uses to turn a
// byte offset into line/column, counting comments and string literals, and
// reporting unterminated ones. It records no per-span flags or nesting
// levels; the tokenizer scans long brackets again itself. Grounded on the
// reference prelex pass (struct prelex) and the long-string level
// encoding in lsa.h.
type Prelex struct {
	src []byte

	lntab []uint32 // byte offset of the start of each line
	cmtCount uint32
	slitCount uint32
}

// NewPrelex runs the pre-lex pass over src. Every lookahead is checked
// against len(src), so src needs no padding past its logical end.
func NewPrelex(src []byte) (*Prelex, error) {
	p := &Prelex{src: src, lntab: []uint32{0}}
	if err := p.scan(); err != nil {
		return p, err
	}
	return p, nil
}

func (p *Prelex) scan() error {
	i := 0
	n := len(p.src)
	for i < n {
		c := p.src[i]
		switch {
		case c == '\n':
			p.lntab = append(p.lntab, uint32(i+1))
			i++
		case c == '-' && i+1 < n && p.src[i+1] == '-':
			adv, err := p.scanComment(i)
			if err != nil {
				return err
			}
			i = adv
		case c == '[' && i+1 < n && (p.src[i+1] == '[' || p.src[i+1] == '='):
			if adv, ok, err := p.tryLongBracket(i); err != nil {
				return err
			} else if ok {
				i = adv
				continue
			}
			i++
		case c == '"' || c == '\'':
			adv, err := p.scanShortString(i, c)
			if err != nil {
				return err
			}
			i = adv
		default:
			i++
		}
	}
	return nil
}

// scanComment consumes a "--" line comment or, if followed by a long
// bracket, a block comment; returns the index just past it.
func (p *Prelex) scanComment(start int) (int, error) {
	i := start + 2
	n := len(p.src)
	if i < n && p.src[i] == '[' {
		if adv, ok, err := p.tryLongBracket(i); err != nil {
			return 0, err
		} else if ok {
			p.cmtCount++
			return adv, nil
		}
	}
	for i < n && p.src[i] != '\n' {
		i++
	}
	p.cmtCount++
	return i, nil
}

// tryLongBracket attempts to parse a Lua long-bracket span [=*[ ... ]=*]
// starting at src[start]=='['. It returns ok=false without error if
// start does not actually begin a long bracket (a plain '[').
func (p *Prelex) tryLongBracket(start int) (int, bool, error) {
	n := len(p.src)
	i := start + 1
	level := 0
	for i < n && p.src[i] == '=' {
		level++
		i++
	}
	if i >= n || p.src[i] != '[' {
		return 0, false, nil
	}
	i++
	openLine := p.lineAt(start)
	for {
		if i >= n {
			return 0, false, unterminatedErr(openLine, "unterminated long bracket")
		}
		if p.src[i] == '\n' {
			p.lntab = append(p.lntab, uint32(i+1))
		}
		if p.src[i] == ']' {
			j := i + 1
			lvl := 0
			for j < n && p.src[j] == '=' {
				lvl++
				j++
			}
			if lvl == level && j < n && p.src[j] == ']' {
				p.slitCount++
				return j + 1, true, nil
			}
		}
		i++
	}
}

func (p *Prelex) scanShortString(start int, quote byte) (int, error) {
	n := len(p.src)
	i := start + 1
	openLine := p.lineAt(start)
	for {
		if i >= n || p.src[i] == '\n' {
			return 0, unterminatedErr(openLine, "unterminated string literal")
		}
		if p.src[i] == '\\' && i+1 < n {
			i += 2
			continue
		}
		if p.src[i] == quote {
			p.slitCount++
			return i + 1, nil
		}
		i++
	}
}

func (p *Prelex) lineAt(offset int) int {
	lo, hi := 0, len(p.lntab)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if int(p.lntab[mid]) <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}

// LineCol converts a byte offset into a 1-based (line, column) pair
// using the newline table built during scan.
func (p *Prelex) LineCol(offset uint32) (line, col int) {
	line = p.lineAt(int(offset))
	col = int(offset) - int(p.lntab[line-1]) + 1
	return line, col
}

func unterminatedErr(line int, msg string) error {
	return SyntaxError(msg, SourceLocation{Line: line})
}
