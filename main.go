// main.go - the compiler front end's entry point: wires the command line
// to the prelex -> lex -> parse -> bind -> fold -> irgen -> run pipeline.
package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func main() {
	ctx, code := ParseCLI(os.Args[1:])
	if ctx == exitHandled {
		os.Exit(0)
	}
	if ctx == nil {
		os.Exit(code)
	}
	os.Exit(runCompile(ctx))
}

// runCompile drives one compilation unit end to end and returns the
// process exit code: 0 on a clean compile (and run), 1 if any stage
// reported an error or the VM halted on a fatal condition.
func runCompile(ctx *CommandContext) int {
	opts := ctx.Options
	cs := NewCompilerState(opts, 40)
	cs.ec.SetSourceCode(string(ctx.Source))
	cs.ec.SetSidecar(newSidecarClient(versionString))

	if cs.ShouldStop() { // --until cmd: halt right after the command line is parsed
		return finish(cs)
	}

	if err := cs.TransitionPhase(StagePrelex); err != nil {
		return ice(cs, err)
	}
	pre, err := NewPrelex(ctx.Source)
	cs.pre = pre
	if err != nil {
		if ce, ok := err.(CompilerError); ok {
			cs.ec.AddError(ce)
		}
	}
	if cs.ShouldStop() {
		return finish(cs)
	}

	if err := cs.TransitionPhase(StageLex); err != nil {
		return ice(cs, err)
	}
	lx := NewLexer(ctx.Source, pre, cs.idents, cs.ec)
	cs.lex = lx
	_ = lx.Run() // lexical errors are already recorded on cs.ec
	if opts.EmitPass == "lex" || opts.TracePass == "lex" {
		dumpTokens(lx)
	}
	if cs.ShouldStop() {
		return finish(cs)
	}

	if err := cs.TransitionPhase(StageParse); err != nil {
		return ice(cs, err)
	}
	p := NewParser(lx, cs.ast, cs.ec)
	root, _ := p.ParseProgram()
	if opts.EmitPass == "syn" {
		fmt.Fprintf(os.Stderr, "parse tree root: %s\n", root)
	}
	if cs.ShouldStop() {
		return finish(cs)
	}

	if err := cs.TransitionPhase(StageBind); err != nil {
		return ice(cs, err)
	}
	binder := NewBinder(cs.ast, cs.ec)
	cs.binder = binder
	_ = binder.Bind(root, func(id Ident) string { return string(cs.idents.Name(id)) })
	if opts.EmitPass == "sem" {
		fmt.Fprintf(os.Stderr, "bound %d identifier(s)\n", cs.idents.Count())
	}

	if err := cs.TransitionPhase(StageFold); err != nil {
		return ice(cs, err)
	}
	folder := NewFolder(cs.ast, cs.ec)
	_ = folder.Fold(root)

	if err := cs.TransitionPhase(StageIRGen); err != nil {
		return ice(cs, err)
	}
	gen := NewIRGen(cs.ast, binder, cs.ec)
	cs.irgen = gen
	if cs.ec.HasFatalError() || cs.ec.ErrorCount() > 0 {
		return finish(cs)
	}
	if err := gen.Emit(root); err != nil {
		cs.ec.AddError(InternalError(err.Error(), SourceLocation{File: ctx.Path}))
		return finish(cs)
	}
	if opts.Pretty {
		pr := NewPrinter(cs.ast, cs.idents)
		pr.Print(root)
		fmt.Println(pr.String())
	}
	if opts.EmitPass == "ast" {
		fmt.Fprintf(os.Stderr, "emitted %d IR word(s), %d slot(s)\n", len(gen.Program()), gen.SlotCount())
	}
	if cs.ShouldStop() {
		return finish(cs)
	}

	if err := cs.TransitionPhase(StageComplete); err != nil {
		return ice(cs, err)
	}

	vm := NewVM(int(gen.SlotCount()) + 1)
	if err := vm.Run(gen.Program()); err != nil {
		fmt.Fprintf(os.Stderr, "lnc: %v\n", err)
		finish(cs)
		return 1
	}

	if opts.Report {
		reportUsage()
	}
	return finish(cs)
}

// ice records a pipeline-sequencing failure (an internal invariant, not
// a user-facing diagnostic) and returns the exit code for it.
func ice(cs *CompilerState, err error) int {
	cs.ec.AddError(InternalError(err.Error(), SourceLocation{}))
	return finish(cs)
}

// finish prints the accumulated diagnostics (under -q, only when there is
// an error to report) and derives the process exit code from the error
// collector's final state.
func finish(cs *CompilerState) int {
	if !cs.options.Quiet || cs.ec.HasErrors() || cs.ec.HasFatalError() {
		if r := cs.ec.Report(false); r != "" {
			fmt.Fprint(os.Stderr, r)
		}
	}
	if cs.ec.HasErrors() || cs.ec.HasFatalError() {
		return 1
	}
	return 0
}

func dumpTokens(lx *Lexer) {
	for i, t := range lx.Toks {
		fmt.Fprintf(os.Stderr, "%4d %-10s attr=%-3d pos=%d\n", i, t, lx.Attrs[i], lx.Poss[i].Offset())
	}
}

// reportUsage prints peak resident memory for the -r flag, the VM-usage
// report spec.md §6 calls for, read the way the rest of this front end
// reads OS-level sizing facts (arena.go's page-size probe uses the same
// package for the analogous purpose).
func reportUsage() {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return
	}
	fmt.Fprintf(os.Stderr, "peak RSS: %d KB\n", ru.Maxrss)
}
