package emit

import (
	"strings"

	"kpoet/internal/diag"
)

// continuation is the extra indentation applied to the lines of a statement
// after its first line break.
type continuation uint8

const (
	continueExpression continuation = iota
	continueRawLiteral
	continueNone
)

func (c continuation) levels() int {
	switch c {
	case continueRawLiteral:
		return 1
	case continueNone:
		return 0
	default:
		return 2
	}
}

func (c continuation) String() string {
	switch c {
	case continueRawLiteral:
		return "raw-literal"
	case continueNone:
		return "none"
	default:
		return "expression"
	}
}

// chooseContinuation picks the strategy from the statement's first line.
func chooseContinuation(line string) continuation {
	line = strings.TrimRight(line, " \t")
	switch {
	case strings.HasSuffix(line, `"""`):
		return continueRawLiteral
	case strings.HasSuffix(line, "{"), strings.HasSuffix(line, "->"):
		return continueNone
	default:
		return continueExpression
	}
}

// statement is the state of the open %[ ... %] pair.
type statement struct {
	strategy continuation
	lines    int
}

func (w *writer) beginStatement() {
	if w.stmt != nil {
		panic(diag.Errorf(diag.StrNestedStatement, "statement enter %%[ followed by statement enter %%["))
	}
	w.stmt = &statement{}
}

func (w *writer) endStatement() {
	if w.stmt == nil {
		panic(diag.Errorf(diag.StrUnmatchedStatement, "statement exit %%] has no matching statement enter %%["))
	}
	if w.stmt.lines > 0 {
		w.unindent(w.stmt.strategy.levels())
	}
	w.stmt = nil
}

// statementBreak is called for every hard line break. line is the text of
// the line that just ended.
func (w *writer) statementBreak(line string) {
	if w.stmt == nil {
		return
	}
	if w.stmt.lines == 0 {
		w.stmt.strategy = chooseContinuation(line)
		w.indent(w.stmt.strategy.levels())
	}
	w.stmt.lines++
}
