package wrap

import "strings"

// flusher lays out one line worth of segments.
type flusher struct {
	w       *Wrapper
	segs    []segment
	b       strings.Builder
	col     int
	level   int
	atStart bool
}

func (w *Wrapper) flush() {
	w.foldUnsafeBreaks()
	w.matchBrackets()
	f := flusher{w: w, segs: w.segments, level: w.lineLevel, atStart: true}
	f.run(0, len(f.segs))
	w.write(f.b.String())
	w.reset()
}

// foldUnsafeBreaks merges segments that start with a unary sign into their
// predecessor so no break is ever placed in front of them.
func (w *Wrapper) foldUnsafeBreaks() {
	out := w.segments[:1]
	for _, s := range w.segments[1:] {
		if !s.glued && !s.open && !s.close && unsafeLineStart.MatchString(s.text) {
			prev := &out[len(out)-1]
			if prev.text == "" {
				prev.text = s.text
			} else {
				prev.text += " " + s.text
			}
			continue
		}
		out = append(out, s)
	}
	w.segments = out
}

func (w *Wrapper) matchBrackets() {
	var stack []int
	for i := range w.segments {
		s := &w.segments[i]
		s.match = -1
		switch {
		case s.open:
			stack = append(stack, i)
		case s.close && len(stack) > 0:
			o := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			s.match = o
			w.segments[o].match = i
		}
	}
}

func (f *flusher) run(from, to int) {
	for i := from; i < to; {
		s := &f.segs[i]
		if s.open && s.match > i && s.match < to {
			j := s.match
			if f.fits(i, j) || !f.hasInterior(i, j) {
				f.putRange(i, j+1)
			} else {
				f.explode(i, j)
			}
			i = j + 1
			continue
		}
		if s.text != "" && !f.atStart && !s.glued && f.col+1+width(s.text) > f.w.columnLimit {
			f.breakLine(s.level + continuationLevels)
		}
		f.put(s)
		i++
	}
}

// fits reports whether segments i..j fit flat on the current line.
func (f *flusher) fits(i, j int) bool {
	col := f.col
	for k := i; k <= j; k++ {
		s := &f.segs[k]
		if s.text == "" {
			continue
		}
		if !s.glued && !(k == i && f.atStart) {
			col++
		}
		col += width(s.text)
	}
	return col <= f.w.columnLimit
}

func (f *flusher) hasInterior(i, j int) bool {
	for k := i + 1; k < j; k++ {
		if f.segs[k].text != "" {
			return true
		}
	}
	return false
}

// explode writes the group i..j with one top-level interior segment per line.
// Nested groups inside the interior stay flat.
func (f *flusher) explode(i, j int) {
	base := f.level
	f.put(&f.segs[i])

	start := -1
	depth := 0
	for k := i + 1; k < j; k++ {
		s := &f.segs[k]
		if depth == 0 && s.text != "" && (start < 0 || !s.glued) {
			if start >= 0 {
				f.breakLine(base + continuationLevels)
				f.putRange(start, k)
			}
			start = k
		}
		switch {
		case s.open && s.match > k:
			depth++
		case s.close && s.match >= 0 && s.match < k:
			depth--
		}
	}
	if start >= 0 {
		f.breakLine(base + continuationLevels)
		f.putRange(start, j)
	}

	f.breakLine(base)
	f.put(&f.segs[j])
}

func (f *flusher) putRange(from, to int) {
	for k := from; k < to; k++ {
		f.put(&f.segs[k])
	}
}

func (f *flusher) put(s *segment) {
	if s.text == "" {
		return
	}
	if !f.atStart && !s.glued {
		f.b.WriteByte(' ')
		f.col++
	}
	f.b.WriteString(s.text)
	f.col += width(s.text)
	f.atStart = false
}

func (f *flusher) breakLine(level int) {
	f.b.WriteByte('\n')
	pad := strings.Repeat(f.w.indent, level)
	f.b.WriteString(pad)
	f.col = width(pad)
	f.level = level
	f.atStart = true
}
