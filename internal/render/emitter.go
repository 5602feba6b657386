package render

import (
	"fmt"
	"strings"
)

// Emitter builds TypeScript source with two-space indentation.
type Emitter struct {
	buf    strings.Builder
	indent int
}

// NewEmitter creates an emitter starting at the given indentation level.
func NewEmitter(level int) *Emitter {
	return &Emitter{indent: level}
}

// Line writes a single line at the current indentation level.
func (e *Emitter) Line(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if line == "" {
		e.buf.WriteByte('\n')
		return
	}
	e.writeIndent()
	e.buf.WriteString(line)
	e.buf.WriteByte('\n')
}

// Lines writes each element of lines with Line.
func (e *Emitter) Lines(lines []string) {
	for _, l := range lines {
		e.Line("%s", l)
	}
}

// Blank writes an empty line.
func (e *Emitter) Blank() {
	e.buf.WriteByte('\n')
}

// Block opens a block: appends " {" to the line and increases indent.
func (e *Emitter) Block(format string, args ...any) {
	e.writeIndent()
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteString(" {\n")
	e.indent++
}

// EndBlock closes a block opened with Block.
func (e *Emitter) EndBlock() {
	e.EndBlockSuffix("")
}

// EndBlockSuffix closes a block with a suffix, e.g. "};".
func (e *Emitter) EndBlockSuffix(suffix string) {
	if e.indent > 0 {
		e.indent--
	}
	e.writeIndent()
	e.buf.WriteString("}")
	e.buf.WriteString(suffix)
	e.buf.WriteByte('\n')
}

// Level returns the current indentation level.
func (e *Emitter) Level() int {
	return e.indent
}

// String returns the accumulated source.
func (e *Emitter) String() string {
	return e.buf.String()
}

func (e *Emitter) writeIndent() {
	for i := 0; i < e.indent; i++ {
		e.buf.WriteString("  ")
	}
}

func indentString(level int) string {
	return strings.Repeat("  ", level)
}
