package diag

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// FormatShortDiagnostics prints one diagnostic per line, sorted, without
// touching items:
//
//	error TPL1003 units/a.kp.yaml:12 index 3 for '%3L' not in range (received 2 arguments)
func FormatShortDiagnostics(items []Diagnostic) string {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, compare)

	lines := make([]string, len(sorted))
	for i, d := range sorted {
		where := cleanPath(d.Path)
		if where == "" {
			where = "<unit>"
		}
		if d.Line > 0 {
			where = fmt.Sprintf("%s:%d", where, d.Line)
		}
		lines[i] = fmt.Sprintf("%s %s %s %s", d.Severity, d.Code.ID(), where, oneLine(d.Message))
	}
	return strings.Join(lines, "\n")
}

func cleanPath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}

func oneLine(msg string) string {
	return strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(msg))
}
