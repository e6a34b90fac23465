package diag

// Severity orders diagnostics; higher is worse.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{SevInfo: "info", SevWarning: "warning", SevError: "error"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "unknown"
}

// Diagnostic is a single finding reported while loading, rendering or writing
// a unit. Path and Line point into the unit description when known.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Path     string
	Line     int
}

func New(sev Severity, code Code, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Message: msg}
}

func NewError(code Code, msg string) Diagnostic {
	return New(SevError, code, msg)
}

// At returns a copy of d located at path:line.
func (d Diagnostic) At(path string, line int) Diagnostic {
	d.Path, d.Line = path, line
	return d
}

// compare orders by location first, then puts errors before warnings.
func compare(a, b Diagnostic) int {
	if pa, pb := cleanPath(a.Path), cleanPath(b.Path); pa != pb {
		if pa < pb {
			return -1
		}
		return 1
	}
	switch {
	case a.Line != b.Line:
		return a.Line - b.Line
	case a.Severity != b.Severity:
		return int(b.Severity) - int(a.Severity)
	}
	return int(a.Code) - int(b.Code)
}
