package diag

import (
	"slices"

	"fortio.org/safecast"
)

// Bag collects the diagnostics of one unit. Once the limit is reached further
// diagnostics are dropped.
type Bag struct {
	items []Diagnostic
	limit uint16
}

// NewBag returns a bag holding at most limit diagnostics; limit <= 0 or above
// 65535 means no practical limit.
func NewBag(limit int) *Bag {
	n, err := safecast.Conv[uint16](limit)
	if err != nil || n == 0 {
		n = ^uint16(0)
	}
	return &Bag{limit: n}
}

// Add reports whether d was kept.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.limit) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Len() int { return len(b.items) }

// Items returns the backing slice; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= SevError })
}

// Merge appends the diagnostics of other. The limit grows to fit them so a
// merged report never loses findings that each unit kept.
func (b *Bag) Merge(other *Bag) {
	if other == nil || len(other.items) == 0 {
		return
	}
	if n, err := safecast.Conv[uint16](len(b.items) + len(other.items)); err == nil {
		b.limit = max(b.limit, n)
	}
	b.items = append(b.items, other.items...)
}

// Sort orders by path, line, severity (errors first) and code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, compare)
}

// Dedup drops diagnostics that repeat an earlier one exactly.
func (b *Bag) Dedup() {
	seen := make(map[Diagnostic]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		if _, dup := seen[d]; dup {
			return true
		}
		seen[d] = struct{}{}
		return false
	})
}
