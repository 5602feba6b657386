// Package diagnostic carries non-fatal problems found while compiling
// resource schemas. No diagnostic ever stops processing.
package diagnostic

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Category classifies diagnostics for filtering.
type Category string

const (
	CategoryShape     Category = "shape-ambiguity"
	CategoryReference Category = "reference"
	CategoryMerge     Category = "merge-conflict"
	CategoryAttribute Category = "attribute"
	CategoryConfig    Category = "config-invalid"
)

// Location points into a resource schema document.
type Location struct {
	TypeName string // e.g. "AWS::S3::Bucket"
	Path     string // JSON pointer, e.g. "#/definitions/Rule/properties/Id"
}

func (l Location) String() string {
	switch {
	case l.TypeName == "":
		return l.Path
	case l.Path == "":
		return l.TypeName
	default:
		return l.TypeName + " " + l.Path
	}
}

// Diagnostic represents a structured diagnostic message.
type Diagnostic struct {
	Severity Severity
	Category Category
	Location Location
	Message  string
}

// String formats the diagnostic for display.
func (d Diagnostic) String() string {
	var sb strings.Builder

	if loc := d.Location.String(); loc != "" {
		sb.WriteString(loc)
		sb.WriteString(" - ")
	}

	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")

	if d.Category != "" {
		sb.WriteString("[")
		sb.WriteString(string(d.Category))
		sb.WriteString("] ")
	}

	sb.WriteString(d.Message)
	return sb.String()
}

// Reporter receives diagnostics. Implementations must be safe for
// concurrent use; documents may be compiled in parallel.
type Reporter interface {
	Report(d Diagnostic)
}

// Warn reports a warning through r. A nil reporter discards it.
func Warn(r Reporter, category Category, loc Location, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(Diagnostic{
		Severity: SeverityWarning,
		Category: category,
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Collector silently collects diagnostics for programmatic inspection.
type Collector struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
	strict      bool // if true, warnings become errors
	quiet       bool // if true, suppress warnings
}

// NewCollector creates a new diagnostic collector.
func NewCollector(strict, quiet bool) *Collector {
	return &Collector{
		strict: strict,
		quiet:  quiet,
	}
}

// Report implements Reporter.
func (c *Collector) Report(d Diagnostic) {
	if c == nil {
		return
	}
	if c.quiet && d.Severity != SeverityError {
		return
	}
	if c.strict && d.Severity == SeverityWarning {
		d.Severity = SeverityError
	}
	c.mu.Lock()
	c.diagnostics = append(c.diagnostics, d)
	c.mu.Unlock()
}

// Diagnostics returns all collected diagnostics.
func (c *Collector) Diagnostics() []Diagnostic {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// Messages returns the message text of every collected diagnostic.
func (c *Collector) Messages() []string {
	var out []string
	for _, d := range c.Diagnostics() {
		out = append(out, d.Message)
	}
	return out
}

// HasErrors returns true if any error-level diagnostics exist.
func (c *Collector) HasErrors() bool {
	return c.ErrorCount() > 0
}

// ErrorCount returns the number of error diagnostics.
func (c *Collector) ErrorCount() int {
	return c.count(SeverityError)
}

// WarningCount returns the number of warning diagnostics.
func (c *Collector) WarningCount() int {
	return c.count(SeverityWarning)
}

func (c *Collector) count(sev Severity) int {
	count := 0
	for _, d := range c.Diagnostics() {
		if d.Severity == sev {
			count++
		}
	}
	return count
}

// FormatAll formats all diagnostics as a multi-line string.
func (c *Collector) FormatAll() string {
	diags := c.Diagnostics()
	if len(diags) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, d := range diags {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Summary returns a summary line like "2 warning(s), 1 error(s)".
func (c *Collector) Summary() string {
	if c == nil {
		return ""
	}
	warnings := c.WarningCount()
	errors := c.ErrorCount()

	parts := []string{}
	if errors > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", errors))
	}
	if warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", warnings))
	}
	if len(parts) == 0 {
		return "no issues"
	}
	return strings.Join(parts, ", ")
}

// LogReporter logs each distinct diagnostic once and forwards it to an
// optional Collector for the end-of-run summary.
type LogReporter struct {
	logger *slog.Logger
	next   *Collector

	mu   sync.Mutex
	seen map[string]bool
}

// NewLogReporter creates a reporter logging through logger. next may be nil.
func NewLogReporter(logger *slog.Logger, next *Collector) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{
		logger: logger,
		next:   next,
		seen:   make(map[string]bool),
	}
}

// Report implements Reporter. Identical diagnostics are logged once.
func (r *LogReporter) Report(d Diagnostic) {
	key := d.String()
	r.mu.Lock()
	dup := r.seen[key]
	r.seen[key] = true
	r.mu.Unlock()
	if dup {
		return
	}

	attrs := []any{
		"type", d.Location.TypeName,
		"path", d.Location.Path,
		"category", string(d.Category),
	}
	switch d.Severity {
	case SeverityError:
		r.logger.Error(d.Message, attrs...)
	case SeverityInfo:
		r.logger.Info(d.Message, attrs...)
	default:
		r.logger.Warn(d.Message, attrs...)
	}
	r.next.Report(d)
}
