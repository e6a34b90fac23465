// Package wrap implements the column-limited line wrapper used by the
// renderer.
//
// Text is accumulated per physical line as a list of segments. A soft-wrap
// space starts a new segment; the brackets '(' and ')' become segments of
// their own, glued to their neighbours. Nothing is written until the line is
// flushed by a hard newline or Close, at which point breaks are inserted only
// where the column limit requires them.
package wrap

import (
	"io"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"

	"kpoet/internal/diag"
)

const (
	opener = '('
	closer = ')'
)

// Continuation lines are indented this many levels past the base level.
const continuationLevels = 2

// unsafeLineStart matches a segment that would read as a unary operator if a
// line started with it.
var unsafeLineStart = regexp.MustCompile(`^\s*[-+]([^>=]|$)`)

type segment struct {
	text  string
	glued bool // joined to the previous segment without a space
	level int  // base level recorded by the soft-wrap that started it
	open  bool
	close bool
	match int // index of the matching bracket segment, -1 if none
}

// Wrapper writes wrapped lines to an io.Writer.
type Wrapper struct {
	out         io.Writer
	indent      string
	columnLimit int

	segments  []segment
	lineLevel int
	brackets  int
	closed    bool
	err       error
}

// New returns a wrapper that indents with indent and keeps lines within
// columnLimit display cells where possible.
func New(out io.Writer, indent string, columnLimit int) *Wrapper {
	return &Wrapper{
		out:         out,
		indent:      indent,
		columnLimit: columnLimit,
		segments:    []segment{{match: -1}},
	}
}

// Err returns the first error returned by the underlying writer.
func (w *Wrapper) Err() error {
	return w.err
}

// HasPendingSegments reports whether the current line holds unflushed text.
func (w *Wrapper) HasPendingSegments() bool {
	return len(w.segments) != 1 || w.segments[0].text != ""
}

// AppendIndent writes level indent units to the current line and records
// level as the line's own indentation.
func (w *Wrapper) AppendIndent(level int) {
	w.checkOpen()
	w.lineLevel = level
	w.last().text += strings.Repeat(w.indent, level)
}

// Append adds wrappable text. Newlines flush the line; brackets are tracked.
func (w *Wrapper) Append(s string) {
	w.checkOpen()
	for len(s) > 0 {
		i := strings.IndexAny(s, "\n()")
		if i < 0 {
			w.last().text += s
			return
		}
		w.last().text += s[:i]
		switch s[i] {
		case '\n':
			w.Newline()
		case opener:
			w.pushOpener()
		case closer:
			w.pushCloser()
		}
		s = s[i+1:]
	}
}

// AppendNonWrapping adds text that is never split and whose brackets are not
// tracked, such as string literals and comment prefixes.
func (w *Wrapper) AppendNonWrapping(s string) {
	w.checkOpen()
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			w.last().text += s
			return
		}
		w.last().text += s[:i]
		w.Newline()
		s = s[i+1:]
	}
}

// WrappingSpace is a space that becomes a line break when the line does not
// fit. Continuation lines are indented baseLevel+2 levels.
func (w *Wrapper) WrappingSpace(baseLevel int) {
	w.checkOpen()
	if last := w.last(); last.text == "" && !last.open && !last.close {
		last.level = baseLevel
		return
	}
	w.segments = append(w.segments, segment{level: baseLevel, match: -1})
}

// Newline flushes the current line and writes a hard line break.
func (w *Wrapper) Newline() {
	w.checkOpen()
	w.flush()
	w.write("\n")
}

// Close flushes pending text. The wrapper must not be used afterwards.
func (w *Wrapper) Close() error {
	if w.closed {
		return w.err
	}
	if w.HasPendingSegments() {
		w.flush()
	}
	w.closed = true
	return w.err
}

func (w *Wrapper) checkOpen() {
	if w.closed {
		panic(diag.Errorf(diag.StrWriterClosed, "line wrapper is closed"))
	}
}

func (w *Wrapper) last() *segment {
	return &w.segments[len(w.segments)-1]
}

func (w *Wrapper) pushOpener() {
	w.brackets++
	last := w.last()
	if last.text == "" && !last.open && !last.close && len(w.segments) > 1 {
		last.text = string(opener)
		last.open = true
	} else {
		w.segments = append(w.segments, segment{text: string(opener), glued: true, open: true, match: -1})
	}
	w.segments = append(w.segments, segment{glued: true, match: -1})
}

func (w *Wrapper) pushCloser() {
	if w.brackets == 0 {
		w.last().text += string(closer)
		return
	}
	w.brackets--
	if last := w.last(); last.text == "" && last.glued && !last.open && !last.close {
		last.text = string(closer)
		last.close = true
		return
	}
	w.segments = append(w.segments, segment{text: string(closer), glued: true, close: true, match: -1})
}

func (w *Wrapper) write(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.out, s)
}

func (w *Wrapper) reset() {
	w.segments = w.segments[:0]
	w.segments = append(w.segments, segment{match: -1})
	w.lineLevel = 0
	w.brackets = 0
}

func width(s string) int {
	return runewidth.StringWidth(s)
}
