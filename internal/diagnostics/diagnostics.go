// Package diagnostics implements a source-excerpt-plus-caret reporter
// and the severity logger backing the language's logging functions.
package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/puppetlabs/go-puppet/internal/token"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is one reported problem: severity, source location, and a
// message, with enough context to render a caret-pointed excerpt.
type Diagnostic struct {
	Severity Severity
	Path     string
	Range    token.Range
	Message  string
	source   string // the full file text, for excerpt rendering
}

// Render formats the diagnostic as "severity: path:line:col: message",
// followed by a source excerpt with a caret under the offending column
// when the source text is available.
func (d Diagnostic) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s:%d:%d: %s", d.Severity, d.Path, d.Range.Start.Line, d.Range.Start.Column, d.Message)
	if d.source != "" {
		if line := sourceLine(d.source, d.Range.Start.Line); line != "" {
			sb.WriteString("\n  " + line)
			sb.WriteString("\n  " + strings.Repeat(" ", max(0, d.Range.Start.Column-1)) + "^")
		}
	}
	return sb.String()
}

func sourceLine(source string, line int) string {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Reporter accumulates diagnostics for a compilation and counts errors
// and warnings separately.
type Reporter struct {
	diagnostics []Diagnostic
	errorCount  int
	warnCount   int
}

func NewReporter() *Reporter { return &Reporter{} }

// Add records one diagnostic, attaching source text for excerpt rendering.
func (r *Reporter) Add(sev Severity, path string, rng token.Range, source, message string) {
	d := Diagnostic{Severity: sev, Path: path, Range: rng, Message: message, source: source}
	r.diagnostics = append(r.diagnostics, d)
	if sev == SeverityError {
		r.errorCount++
	} else {
		r.warnCount++
	}
}

func (r *Reporter) Errorf(path string, rng token.Range, source, format string, args ...interface{}) {
	r.Add(SeverityError, path, rng, source, fmt.Sprintf(format, args...))
}

func (r *Reporter) Warnf(path string, rng token.Range, source, format string, args ...interface{}) {
	r.Add(SeverityWarning, path, rng, source, fmt.Sprintf(format, args...))
}

// Diagnostics returns every recorded diagnostic in report order.
func (r *Reporter) Diagnostics() []Diagnostic { return r.diagnostics }

// ErrorCount and WarningCount return the running totals.
func (r *Reporter) ErrorCount() int   { return r.errorCount }
func (r *Reporter) WarningCount() int { return r.warnCount }

// HasErrors reports whether any error-severity diagnostic was recorded.
func (r *Reporter) HasErrors() bool { return r.errorCount > 0 }

// Reset clears all recorded diagnostics and counters.
func (r *Reporter) Reset() {
	r.diagnostics = nil
	r.errorCount = 0
	r.warnCount = 0
}

// Logger implements the severity-leveled output of the language's
// logging functions: alert, emerg, err, info, notice,
// warning, debug, crit. It colorizes the severity prefix when Out is a
// terminal, gating ANSI escapes on isatty.IsTerminal/IsCygwinTerminal
// before writing them.
type Logger struct {
	Out   io.Writer
	Debug bool // debug-level messages are suppressed unless set
	color bool
}

// NewLogger builds a Logger writing to out, auto-detecting color support.
func NewLogger(out io.Writer) *Logger {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Logger{Out: out, color: color}
}

var levelColor = map[string]string{
	"debug": "\x1b[2m", "info": "\x1b[36m", "notice": "\x1b[0m",
	"warning": "\x1b[33m", "err": "\x1b[31m", "alert": "\x1b[31;1m",
	"emerg": "\x1b[31;1m", "crit": "\x1b[31;1m",
}

const colorReset = "\x1b[0m"

// Log writes one leveled line "<level>: <scope>: <message>", matching
// real Puppet's log-line shape.
func (l *Logger) Log(level, scopeName, message string) {
	if level == "debug" && !l.Debug {
		return
	}
	prefix := level + ": "
	if scopeName != "" {
		prefix += scopeName + ": "
	}
	if l.color {
		if c, ok := levelColor[level]; ok {
			fmt.Fprintf(l.Out, "%s%s%s%s\n", c, prefix, message, colorReset)
			return
		}
	}
	fmt.Fprintf(l.Out, "%s%s\n", prefix, message)
}
