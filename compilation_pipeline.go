// compilation_pipeline.go - explicit compilation stages with validation
package main

import (
	"fmt"
	"os"
)

// CompilationStage names one stage of the front end's pipeline, in the
// order they must run. The --until flag (cli.go) names one of these to
// stop the pipeline early and dump its intermediate state.
type CompilationStage int

const (
	StageInit CompilationStage = iota
	StagePrelex
	StageLex
	StageParse
	StagePrecedence
	StageBind
	StageFold
	StageIRGen
	StageComplete
)

func (s CompilationStage) String() string {
	switch s {
	case StageInit:
		return "init"
	case StagePrelex:
		return "prelex"
	case StageLex:
		return "lex"
	case StageParse:
		return "parse"
	case StagePrecedence:
		return "precedence"
	case StageBind:
		return "bind"
	case StageFold:
		return "fold"
	case StageIRGen:
		return "irgen"
	case StageComplete:
		return "complete"
	default:
		return fmt.Sprintf("unknown stage %d", int(s))
	}
}

// stageByName resolves an internal stage name (CompileOptions.Until) to
// its stage, for CompilerState.ShouldStop.
func stageByName(name string) (CompilationStage, bool) {
	stages := []CompilationStage{
		StageInit, StagePrelex, StageLex, StageParse,
		StagePrecedence, StageBind, StageFold, StageIRGen, StageComplete,
	}
	for _, s := range stages {
		if s.String() == name {
			return s, true
		}
	}
	return StageInit, false
}

// CompilationPipeline tracks the current stage and enforces that stages
// only ever advance in declaration order -- a compiler front end never
// returns to an earlier stage.
type CompilationPipeline struct {
	currentStage CompilationStage
	history      []CompilationStage
	verbose      bool
}

func NewCompilationPipeline(verbose bool) *CompilationPipeline {
	return &CompilationPipeline{
		currentStage: StageInit,
		history:      []CompilationStage{StageInit},
		verbose:      verbose,
	}
}

func (cp *CompilationPipeline) AdvanceTo(stage CompilationStage) error {
	if stage <= cp.currentStage {
		return fmt.Errorf("invalid stage transition: %s -> %s", cp.currentStage, stage)
	}
	cp.currentStage = stage
	cp.history = append(cp.history, stage)
	if cp.verbose {
		fmt.Fprintf(os.Stderr, "pipeline: advanced to stage %s\n", stage)
	}
	return nil
}

func (cp *CompilationPipeline) CurrentStage() CompilationStage { return cp.currentStage }

// Reached reports whether the pipeline has advanced at least as far as
// stage, used to decide whether --until should stop execution here.
func (cp *CompilationPipeline) Reached(stage CompilationStage) bool {
	return cp.currentStage >= stage
}

func (cp *CompilationPipeline) Checkpoint(name string) {
	if cp.verbose {
		fmt.Fprintf(os.Stderr, "pipeline checkpoint: %s at stage %s\n", name, cp.currentStage)
	}
}
