package trace

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the type of an event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindHeartbeat:
		return "heartbeat"
	}
	return "unknown"
}

// Scope is the granularity of a span. Coarser scopes have lower values.
type Scope uint8

const (
	// ScopeDriver covers a whole render batch.
	ScopeDriver Scope = iota + 1
	// ScopePass covers a phase of a batch (listing, rendering units).
	ScopePass
	// ScopeUnit covers one unit.
	ScopeUnit
	// ScopeDecl covers a single declaration.
	ScopeDecl
)

var scopeNames = [...]string{ScopeDriver: "driver", ScopePass: "pass", ScopeUnit: "unit", ScopeDecl: "decl"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Level controls which scopes are recorded.
type Level uint8

const (
	LevelOff Level = iota
	// LevelError records nothing while running; ring tracers still dump on close.
	LevelError
	LevelPhase  // driver and pass spans
	LevelDetail // plus units
	LevelDebug  // plus declarations
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a level name, in any case, to a Level.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether spans of scope are recorded at l.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopePass
	case LevelDetail:
		return scope <= ScopeUnit
	case LevelDebug:
		return true
	}
	return false
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	Name     string // "render", "unit:api.kp.yaml", "decl:Foo"
	Detail   string
	Extra    map[string]string
}
