// compiler_state.go - central state management for compilation
package main

import (
	"fmt"
)

// CompileOptions mirrors the CLI surface in cli.go.
type CompileOptions struct {
	Source      string // file path, or the literal source text when FromString is set
	FromString  bool
	Until       string // internal stage name to stop after, translated by cli.go from the external name (cmd/prelex/lex/syn/ast)
	EmitPass    string // pass name to dump: pass/lex/syn/ast/sem
	TracePass   string // pass name to trace as it runs
	Pretty      bool   // -P: print the reconstructed source after IR emission
	IncludeDirs []string
	VerboseLvl  int
	Quiet       bool
	Report      bool // -r: report peak VM usage on exit
}

// CompilerState owns one compilation unit's state across the whole
// pipeline: the interned identifier table, the AST arena, the error
// collector and the pipeline stage tracker. One CompilerState is created
// per source file compiled.
type CompilerState struct {
	options  CompileOptions
	pipeline *CompilationPipeline

	idents *IdentMap
	ast    *AST
	ec     *ErrorCollector

	pre    *Prelex
	lex    *Lexer
	binder *Binder
	irgen  *IRGen
}

func NewCompilerState(options CompileOptions, maxErrors int) *CompilerState {
	ec := NewErrorCollector(maxErrors)
	return &CompilerState{
		options:  options,
		pipeline: NewCompilationPipeline(options.VerboseLvl > 0),
		idents:   NewIdentMap(256),
		ast:      NewAST(),
		ec:       ec,
	}
}

func (cs *CompilerState) CurrentPhase() CompilationStage { return cs.pipeline.CurrentStage() }

func (cs *CompilerState) TransitionPhase(stage CompilationStage) error {
	if err := cs.pipeline.AdvanceTo(stage); err != nil {
		return fmt.Errorf("compiler state: %w", err)
	}
	return nil
}

// ShouldStop reports whether the pipeline has reached the stage named by
// options.Until, for cli.go's --until handling.
func (cs *CompilerState) ShouldStop() bool {
	if cs.options.Until == "" {
		return false
	}
	target, ok := stageByName(cs.options.Until)
	if !ok {
		return false
	}
	return cs.pipeline.Reached(target)
}

func (cs *CompilerState) GetSummary() string {
	return fmt.Sprintf("CompilerState:\n  Phase: %s\n  Errors: %d\n",
		cs.pipeline.CurrentStage(), cs.ec.ErrorCount())
}
