// Completion: 100% - Error handling complete, clear and helpful messages
package main

import (
	"fmt"
	"strings"
)

// ErrorLevel indicates the severity of an error.
type ErrorLevel int

const (
	LevelWarning ErrorLevel = iota
	LevelError
	LevelFatal
)

func (l ErrorLevel) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal error"
	default:
		return "unknown"
	}
}

// ErrorCategory classifies an error along the taxonomy this front end
// diagnoses against: bad input text (Syntax), input that parses but
// violates a binding/typing rule (Semantic), an allocation or nesting
// limit exceeded (Resource), or a compiler-internal invariant failure
// (Internal).
type ErrorCategory int

const (
	CategorySyntax ErrorCategory = iota
	CategorySemantic
	CategoryResource
	CategoryInternal
)

func (c ErrorCategory) String() string {
	switch c {
	case CategorySyntax:
		return "syntax"
	case CategorySemantic:
		return "semantic"
	case CategoryResource:
		return "resource"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// SourceLocation represents a position in source code.
type SourceLocation struct {
	File   string
	Line   int
	Column int
	Length int
}

func (loc SourceLocation) String() string {
	if loc.File == "" {
		return fmt.Sprintf("%d:%d", loc.Line, loc.Column)
	}
	return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Column)
}

// ErrorContext provides additional context for an error.
type ErrorContext struct {
	SourceLine string
	Suggestion string
	HelpText   string
}

// CompilerError represents a single compilation diagnostic.
type CompilerError struct {
	Level    ErrorLevel
	Category ErrorCategory
	Message  string
	Location SourceLocation
	Context  ErrorContext
}

func (e CompilerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// Format returns a nicely formatted error message with context.
func (e CompilerError) Format(useColor bool) string {
	var sb strings.Builder

	if useColor {
		sb.WriteString("\033[1;31m")
	}
	sb.WriteString(e.Level.String())
	sb.WriteString(": ")
	if useColor {
		sb.WriteString("\033[0m")
	}
	sb.WriteString(e.Message)
	sb.WriteString("\n")

	if useColor {
		sb.WriteString("\033[1;34m")
	}
	sb.WriteString("  --> ")
	sb.WriteString(e.Location.String())
	if useColor {
		sb.WriteString("\033[0m")
	}
	sb.WriteString("\n")

	if e.Context.SourceLine != "" {
		lineNum := fmt.Sprintf("%d", e.Location.Line)
		padding := strings.Repeat(" ", len(lineNum)+1)

		sb.WriteString(padding)
		sb.WriteString("|\n")
		sb.WriteString(lineNum)
		sb.WriteString(" | ")
		sb.WriteString(e.Context.SourceLine)
		sb.WriteString("\n")
		sb.WriteString(padding)
		sb.WriteString("| ")

		if e.Location.Column > 0 {
			sb.WriteString(underline(e.Context.SourceLine, e.Location.Column-1))
			sb.WriteString("\n")
		}
	}

	if e.Context.Suggestion != "" {
		if useColor {
			sb.WriteString("\033[1;32m")
		}
		sb.WriteString("   help: ")
		if useColor {
			sb.WriteString("\033[0m")
		}
		sb.WriteString(e.Context.Suggestion)
		sb.WriteString("\n")
	}

	if e.Context.HelpText != "" {
		if useColor {
			sb.WriteString("\033[1;36m")
		}
		sb.WriteString("   note: ")
		if useColor {
			sb.WriteString("\033[0m")
		}
		sb.WriteString(e.Context.HelpText)
		sb.WriteString("\n")
	}

	return sb.String()
}

// ErrorCollector accumulates diagnostics during compilation and drives
// statement-boundary resynchronization: after a syntax error, the parser
// consults Resyncing to know it should skip to the next statement
// boundary rather than cascade further errors from the same spot.
type ErrorCollector struct {
	errors     []CompilerError
	warnings   []CompilerError
	maxErrors  int
	sourceCode string
	resyncing  bool
	sidecar    *sidecarClient
}

// NewErrorCollector creates a new error collector. maxErrors <= 0 means
// stop after 10 errors.
func NewErrorCollector(maxErrors int) *ErrorCollector {
	if maxErrors <= 0 {
		maxErrors = 10
	}
	return &ErrorCollector{
		errors:    make([]CompilerError, 0),
		warnings:  make([]CompilerError, 0),
		maxErrors: maxErrors,
	}
}

func (ec *ErrorCollector) SetSourceCode(source string) { ec.sourceCode = source }

// SetSidecar wires a best-effort bug-report sidecar invoked on Fatal
// errors; absence (nil) is valid and simply skips the report.
func (ec *ErrorCollector) SetSidecar(sc *sidecarClient) { ec.sidecar = sc }

func (ec *ErrorCollector) AddError(err CompilerError) {
	if err.Context.SourceLine == "" && ec.sourceCode != "" {
		err.Context.SourceLine = ec.getSourceLine(err.Location.Line)
	}

	if err.Level == LevelFatal || err.Level == LevelError {
		ec.errors = append(ec.errors, err)
	} else {
		ec.warnings = append(ec.warnings, err)
	}

	if err.Category == CategorySyntax {
		ec.resyncing = true
	}
	if err.Level == LevelFatal && ec.sidecar != nil {
		ec.sidecar.report(err.Category.String(), err.Message)
	}
}

func (ec *ErrorCollector) AddWarning(warn CompilerError) {
	warn.Level = LevelWarning
	if warn.Context.SourceLine == "" && ec.sourceCode != "" {
		warn.Context.SourceLine = ec.getSourceLine(warn.Location.Line)
	}
	ec.warnings = append(ec.warnings, warn)
}

// Resyncing reports whether the parser is mid-recovery from a syntax
// error and should discard tokens up to the next statement boundary.
func (ec *ErrorCollector) Resyncing() bool { return ec.resyncing }

// Resynced clears the recovery flag once a statement boundary is found.
func (ec *ErrorCollector) Resynced() { ec.resyncing = false }

func (ec *ErrorCollector) getSourceLine(lineNum int) string {
	if ec.sourceCode == "" || lineNum <= 0 {
		return ""
	}
	lines := strings.Split(ec.sourceCode, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

func (ec *ErrorCollector) HasErrors() bool { return len(ec.errors) > 0 }

func (ec *ErrorCollector) HasFatalError() bool {
	for _, err := range ec.errors {
		if err.Level == LevelFatal {
			return true
		}
	}
	return false
}

func (ec *ErrorCollector) ErrorCount() int   { return len(ec.errors) }
func (ec *ErrorCollector) WarningCount() int { return len(ec.warnings) }
func (ec *ErrorCollector) ShouldStop() bool  { return len(ec.errors) >= ec.maxErrors }

// Report formats all errors and warnings for display.
func (ec *ErrorCollector) Report(useColor bool) string {
	var sb strings.Builder

	for i, err := range ec.errors {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(err.Format(useColor))
	}

	for i, warn := range ec.warnings {
		if i > 0 || len(ec.errors) > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(warn.Format(useColor))
	}

	if len(ec.errors) > 0 || len(ec.warnings) > 0 {
		sb.WriteString("\n")
		if len(ec.errors) > 0 {
			if useColor {
				sb.WriteString("\033[1;31m")
			}
			sb.WriteString(fmt.Sprintf("%d error(s)", len(ec.errors)))
			if useColor {
				sb.WriteString("\033[0m")
			}
		}
		if len(ec.warnings) > 0 {
			if len(ec.errors) > 0 {
				sb.WriteString(", ")
			}
			if useColor {
				sb.WriteString("\033[1;33m")
			}
			sb.WriteString(fmt.Sprintf("%d warning(s)", len(ec.warnings)))
			if useColor {
				sb.WriteString("\033[0m")
			}
		}
		sb.WriteString(" found\n")
	}

	return sb.String()
}

func (ec *ErrorCollector) Clear() {
	ec.errors = ec.errors[:0]
	ec.warnings = ec.warnings[:0]
	ec.resyncing = false
}

// Helper constructors for the diagnostic taxonomy.

func SyntaxError(message string, loc SourceLocation) CompilerError {
	return CompilerError{Level: LevelError, Category: CategorySyntax, Message: message, Location: loc}
}

func SemanticError(message string, loc SourceLocation) CompilerError {
	return CompilerError{Level: LevelError, Category: CategorySemantic, Message: message, Location: loc}
}

func ResourceError(message string, loc SourceLocation) CompilerError {
	return CompilerError{
		Level: LevelError, Category: CategoryResource, Message: message, Location: loc,
		Context: ErrorContext{HelpText: "a compile-time resource limit was exceeded"},
	}
}

func UnexpectedTokenError(expected, got string, loc SourceLocation) CompilerError {
	return CompilerError{
		Level: LevelError, Category: CategorySyntax,
		Message: fmt.Sprintf("expected %s, got %s", expected, got), Location: loc,
	}
}

func UndefinedVariableError(name string, loc SourceLocation) CompilerError {
	return CompilerError{
		Level: LevelError, Category: CategorySemantic,
		Message: fmt.Sprintf("undefined variable '%s'", name), Location: loc,
		Context: ErrorContext{HelpText: "variables must be bound before use"},
	}
}

// InternalError creates a compiler-internal (ICE) diagnostic marking a
// broken invariant rather than ordinary resource exhaustion.
func InternalError(message string, loc SourceLocation) CompilerError {
	return CompilerError{
		Level: LevelFatal, Category: CategoryInternal, Message: message, Location: loc,
		Context: ErrorContext{HelpText: "this is an internal compiler error"},
	}
}

func FatalError(message string, loc SourceLocation) CompilerError {
	return CompilerError{Level: LevelFatal, Category: CategoryInternal, Message: message, Location: loc}
}
