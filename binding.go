package main

// Scoped variable binding. Walks the block/statement tree maintaining one
// lexical scope per nested block, resolving identifier references to the
// declaration that introduced them and assigning each declaration a
// small dense per-level id (vid) used later by irgen.go to pick a memory
// slot.
//
// Open Question 1 (block nesting cap): the original indexes a per-level
// "declared" bitset by nesting level and silently wraps past its native
// width. Here nesting is capped at maxBlockDepth; exceeding it raises an
// Internal error instead of wrapping into an unrelated level's bits.
//
// Open Question 2 (idvars indexing): the original table is described as
// idvars[lvl*uid], a multiplied linear index that aliases distinct
// variables once uid grows past the per-level stride. This binder keeps
// a genuine (lvl, uid) pair-keyed table instead, so no two distinct
// variables can ever collide.
const maxBlockDepth = 16

type scopeVar struct {
	vid uint32
	n   Node // the Avar declaration node
}

type scope struct {
	vars map[Ident]scopeVar
}

// varKey is the (lvl, uid) pair identifying one bound variable, per the
// resolved Open Question 2 above.
type varKey struct {
	lvl uint8
	uid uint32
}

// Binder performs scoped variable binding over an AST already produced by
// the parser and precedence rewrite.
type Binder struct {
	a       *AST
	scopes  []scope
	nextVid []uint32 // next vid to hand out, indexed by nesting level
	table   map[varKey]Node
	resolved map[Node]varKey // Aid node -> the (lvl, uid) it was bound to
	ec      *ErrorCollector
}

func NewBinder(a *AST, ec *ErrorCollector) *Binder {
	return &Binder{
		a:        a,
		nextVid:  make([]uint32, maxBlockDepth),
		table:    make(map[varKey]Node),
		resolved: make(map[Node]varKey),
		ec:       ec,
	}
}

// ResolvedKey returns the (lvl, uid) pair an Aid reference node was bound
// to during Bind, for use by irgen.go when emitting loads/stores.
func (b *Binder) ResolvedKey(idNode Node) (varKey, bool) {
	k, ok := b.resolved[idNode]
	return k, ok
}

func (b *Binder) level() uint8 { return uint8(len(b.scopes)) }

// Enter pushes a new lexical scope, corresponding to one Ablk node.
func (b *Binder) Enter(loc SourceLocation) error {
	if len(b.scopes) >= maxBlockDepth {
		err := InternalError("block nesting exceeds the 16-level cap", loc)
		b.ec.AddError(err)
		return err
	}
	b.scopes = append(b.scopes, scope{vars: make(map[Ident]scopeVar)})
	return nil
}

// Leave pops the innermost lexical scope.
func (b *Binder) Leave() {
	b.scopes = b.scopes[:len(b.scopes)-1]
}

// Declare introduces a new variable named id in the current scope,
// assigning it a dense vid local to the current nesting level, and
// records its (lvl, uid) binding. Redeclaring the same name in the same
// scope is a semantic error.
func (b *Binder) Declare(id Ident, n Node, loc SourceLocation, name string) (uint32, error) {
	if len(b.scopes) == 0 {
		err := InternalError("variable declared outside any block", loc)
		b.ec.AddError(err)
		return 0, err
	}
	top := &b.scopes[len(b.scopes)-1]
	if _, dup := top.vars[id]; dup {
		err := SemanticError("variable \""+name+"\" redeclared in the same block", loc)
		b.ec.AddError(err)
		return 0, err
	}
	lvl := b.level() - 1
	vid := b.nextVid[lvl]
	b.nextVid[lvl]++
	top.vars[id] = scopeVar{vid: vid, n: n}
	b.table[varKey{lvl: lvl, uid: vid}] = n
	return vid, nil
}

// Resolve searches the scope stack from innermost to outermost for id,
// returning the declaring node, its nesting level, and its vid.
func (b *Binder) Resolve(id Ident, name string, loc SourceLocation) (Node, uint8, uint32, error) {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if v, ok := b.scopes[i].vars[id]; ok {
			return v.n, uint8(i), v.vid, nil
		}
	}
	err := UndefinedVariableError(name, loc)
	b.ec.AddError(err)
	return 0, 0, 0, err
}

// DeclareOrAssign implements spec.md §4.6.2's target-position rule for a
// bare identifier written to by an assignment: if id already names a
// visible binding *in the current scope*, n rebinds to it; if the only
// visible binding lives in an enclosing scope, n shadows it with a fresh
// declaration at the current level (spec.md §8 scenario 4); if nothing is
// visible at all, n introduces a fresh declaration in the current scope.
// Either way n's resolution is recorded in the same table Aid references
// use, so irgen.go's lvalueSlot handles both paths identically.
func (b *Binder) DeclareOrAssign(id Ident, n Node, name string) error {
	if len(b.scopes) > 0 {
		top := len(b.scopes) - 1
		if v, ok := b.scopes[top].vars[id]; ok {
			b.resolved[n] = varKey{lvl: uint8(top), uid: v.vid}
			return nil
		}
	}
	vid, err := b.Declare(id, n, SourceLocation{}, name)
	if err != nil {
		return err
	}
	b.resolved[n] = varKey{lvl: b.level() - 1, uid: vid}
	return nil
}

// Lookup returns the declaration node bound to (lvl, uid), the pair-keyed
// table described above.
func (b *Binder) Lookup(lvl uint8, uid uint32) (Node, bool) {
	n, ok := b.table[varKey{lvl: lvl, uid: uid}]
	return n, ok
}

// Bind walks the full statement tree rooted at root, entering/leaving
// scopes at each Ablk and binding every Aid/Avar occurrence it finds,
// using the iterative walk stack from ast.go rather than recursion.
func (b *Binder) Bind(root Node, names func(Ident) string) error {
	st := newWalkStack()
	st.push(root, passEnter)

	var firstErr error
	for {
		f, ok := st.pop()
		if !ok {
			break
		}
		n := f.node
		if n.IsNil() {
			continue
		}

		switch n.Type() {
		case Afndef:
			// The parameter list is consumed once to bind each parameter
			// identifier as a variable in the function's own frame
			// (spec.md §4.6.3), a scope pushed here and popped on leave;
			// the body block pushes its own nested scope on top as usual.
			fn := b.a.Fndef(n)
			if f.pass == passEnter {
				if err := b.Enter(SourceLocation{}); err != nil && firstErr == nil {
					firstErr = err
				}
				for _, prm := range paramsOf(b.a, fn.parlst) {
					pr := b.a.Param(prm)
					if pr.id.Type() == Aid {
						idn := b.a.Ident(pr.id)
						if _, err := b.Declare(idn.id, pr.id, SourceLocation{}, names(idn.id)); err != nil && firstErr == nil {
							firstErr = err
						}
					}
				}
				st.push(n, passLeave)
				st.push(fn.blk, passEnter)
			} else {
				b.Leave()
			}
			continue
		case Ablk:
			blk := b.a.Blk(n)
			if f.pass == passEnter {
				if err := b.Enter(SourceLocation{}); err != nil && firstErr == nil {
					firstErr = err
				}
				st.push(n, passLeave)
				st.push(blk.s, passEnter)
			} else {
				b.Leave()
			}
			continue
		case Aasgnst:
			// The parser always emits a plain Aid for an assignment
			// target (spec.md §3: Avar is the *resolved* form, minted by
			// this post-processor, never by the parser). A target Aid
			// that already names a binding of the current scope is a
			// rebind of that binding; otherwise it introduces a new
			// variable in the current scope, shadowing any binding of the
			// same name in an enclosing scope -- spec.md §4.6.2.
			as := b.a.Asgnst(n)
			if f.pass == passEnter {
				if as.tgt.Type() == Aid {
					idn := b.a.Ident(as.tgt)
					if err := b.DeclareOrAssign(idn.id, as.tgt, names(idn.id)); err != nil && firstErr == nil {
						firstErr = err
					}
				}
				st.push(n, passLeave)
				st.push(as.e, passEnter)
			}
			continue
		case Avar:
			if f.pass == passEnter {
				v := b.a.Var(n)
				name := names(v.id)
				if _, err := b.Declare(v.id, n, SourceLocation{}, name); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			continue
		case Aid:
			if f.pass == passEnter {
				idn := b.a.Ident(n)
				name := names(idn.id)
				_, lvl, vid, err := b.Resolve(idn.id, name, SourceLocation{})
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
				} else {
					b.resolved[n] = varKey{lvl: lvl, uid: vid}
				}
			}
			continue
		}

		if f.pass != passEnter {
			continue
		}
		// The walk stack is LIFO; push in reverse so children pop in
		// source order (matters for Astmtlst, whose statements must be
		// bound in the order they declare/use variables).
		children := childrenOf(b.a, n)
		for i := len(children) - 1; i >= 0; i-- {
			if child := children[i]; !child.IsNil() {
				st.push(child, passEnter)
			}
		}
	}
	return firstErr
}

// paramsOf returns the Aparam nodes held by a function's parameter list.
func paramsOf(a *AST, parlst Node) []Node {
	if parlst.IsNil() {
		return nil
	}
	pl := a.Prmlst(parlst)
	return a.Rep(pl.pos, pl.cnt)
}

// childrenOf returns the direct AST children of n that binding must
// recurse into, in evaluation order.
func childrenOf(a *AST, n Node) []Node {
	switch n.Type() {
	case Ablk:
		return []Node{a.Blk(n).s}
	case Astmtlst:
		sl := a.Stmtlst(n)
		out := make([]Node, 0, sl.cnt)
		for _, r := range a.repool[sl.pos : sl.pos+sl.cnt] {
			out = append(out, r)
		}
		return out
	case Astmt:
		return []Node{a.Stmt(n).s}
	case Aif:
		v := a.If(n)
		return []Node{v.cond, v.thenBody, v.elseBody}
	case Awhile:
		v := a.While(n)
		return []Node{v.cond, v.body}
	case Aasgnst:
		v := a.Asgnst(n)
		return []Node{v.tgt, v.e}
	case Abexp:
		v := a.Bexp(n)
		return []Node{v.l, v.r}
	case Auexp:
		return []Node{a.Uexp(n).e}
	case Apexp:
		return []Node{a.Pexp(n).e}
	case Aaexp:
		v := a.Aexp(n)
		return []Node{v.id, v.e}
	case Afndef:
		v := a.Fndef(n)
		return []Node{v.parlst, v.blk}
	case Aparam:
		v := a.Param(n)
		return []Node{v.typ, v.def}
	default:
		return nil
	}
}
