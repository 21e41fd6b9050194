// cli.go - command-line flag handling
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/xyproto/env/v2"
)

const versionString = "lnc 0.1.0"

// externalPhase translates the --until flag's external vocabulary, the
// one a user types (cmd/prelex/lex/syn/ast), to the pipeline's own
// internal stage names (compilation_pipeline.go): the CLI groups
// precedence rewriting under "syn" and IR generation under "ast" since
// neither is a separate concept a caller needs to name.
var externalPhase = map[string]string{
	"cmd":    "init",
	"prelex": "prelex",
	"lex":    "lex",
	"syn":    "parse",
	"ast":    "irgen",
}

// maxIncludeDirs bounds the number of -I flags accepted in one
// invocation.
const maxIncludeDirs = 64

// CommandContext is everything main.go needs to drive one compilation:
// the parsed options plus the source text and its display name.
type CommandContext struct {
	Options CompileOptions
	Source  []byte
	Path    string
}

// exitHandled is returned by ParseCLI in place of a CommandContext when
// the flag itself already produced all the output it needs (-V, -L, or
// -h) and main.go should exit 0 without compiling anything.
var exitHandled = &CommandContext{}

// ParseCLI parses args (os.Args[1:]) into a CommandContext, or returns a
// nonzero exit code if the command line itself is invalid.
func ParseCLI(args []string) (*CommandContext, int) {
	fs := flag.NewFlagSet("lnc", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	inline := fs.String("c", "", "compile the given source string instead of a file")
	until := fs.String("until", "", "halt after phase: cmd, prelex, lex, syn, ast")
	emit := fs.String("emit", "", "dump a pass's output: pass, lex, syn, ast, sem")
	trace := fs.String("trace", "", "trace a pass as it runs: pass, lex, syn, ast, sem")
	pretty := fs.Bool("P", false, "pretty-print the source reconstructed from the AST after IR emission")
	verboseFlag := fs.Int("v", -1, "verbosity level (env LUANOVA_VERBOSE)")
	quiet := fs.Bool("q", false, "suppress non-error output")
	showVersion := fs.Bool("V", false, "print version and exit")
	listPasses := fs.Bool("L", false, "list pipeline stages and exit")
	report := fs.Bool("r", false, "report peak resource usage on exit")

	var includeDirs stringList
	fs.Var(&includeDirs, "I", "add an include search directory, up to 64 uses")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitHandled, 0
		}
		return nil, 2
	}

	if *showVersion {
		fmt.Println(versionString)
		return exitHandled, 0
	}
	if *listPasses {
		for _, s := range []CompilationStage{
			StageInit, StagePrelex, StageLex, StageParse,
			StagePrecedence, StageBind, StageFold, StageIRGen, StageComplete,
		} {
			fmt.Println(s)
		}
		return exitHandled, 0
	}

	dirs := []string(includeDirs)
	if len(dirs) == 0 {
		if d := env.Str("LUANOVA_INCLUDE_DIR", ""); d != "" {
			dirs = append(dirs, d)
		}
	}
	if len(dirs) > maxIncludeDirs {
		fmt.Fprintf(os.Stderr, "lnc: too many -I directories (max %d)\n", maxIncludeDirs)
		return nil, 1
	}

	verbose := *verboseFlag
	if verbose < 0 {
		if env.Bool("LUANOVA_VERBOSE") {
			verbose = 1
		} else {
			verbose = 0
		}
	}

	opts := CompileOptions{
		Until:       externalPhase[*until],
		EmitPass:    *emit,
		TracePass:   *trace,
		Pretty:      *pretty,
		IncludeDirs: dirs,
		VerboseLvl:  verbose,
		Quiet:       *quiet,
		Report:      *report,
	}

	if *inline != "" {
		opts.FromString = true
		opts.Source = *inline
		return &CommandContext{Options: opts, Source: []byte(*inline), Path: "<string>"}, 0
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "lnc: no input file (use -c to compile a string, -h for help)")
		return nil, 1
	}
	path := rest[0]
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lnc: %v\n", err)
		return nil, 1
	}
	opts.Source = path
	return &CommandContext{Options: opts, Source: data, Path: path}, 0
}

// stringList accumulates repeated -I occurrences in order, the shape
// flag.Var expects of anything bound to a multi-use flag.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint([]string(*s)) }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
