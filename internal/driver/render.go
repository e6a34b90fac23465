// Package driver renders batches of unit descriptions to Kotlin files.
package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"kpoet/internal/diag"
	"kpoet/internal/emit"
	"kpoet/internal/observ"
	"kpoet/internal/project"
	"kpoet/internal/trace"
	"kpoet/internal/unit"
)

// Mode selects what happens to rendered text.
type Mode uint8

const (
	// ModeWrite writes output files whose content changed.
	ModeWrite Mode = iota
	// ModeCheck compares with existing output files and writes nothing.
	ModeCheck
	// ModePrint only returns the text.
	ModePrint
)

// Outcome is the final state of one unit.
type Outcome string

const (
	OutcomeWritten   Outcome = "written"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeStale     Outcome = "stale"
	OutcomeRendered  Outcome = "rendered"
	OutcomeFailed    Outcome = "failed"
)

// Options configures RenderPaths.
type Options struct {
	Indent             string
	ColumnLimit        int
	ImplicitNamespaces []string

	Mode           Mode
	Jobs           int // 0 selects GOMAXPROCS
	MaxDiagnostics int
	Cache          *DiskCache // nil disables caching
	Progress       ProgressSink
}

// OptionsFromSettings copies the render settings of a project.
func OptionsFromSettings(s project.Settings) Options {
	return Options{
		Indent:             s.Indent,
		ColumnLimit:        s.ColumnLimit,
		ImplicitNamespaces: s.ImplicitNamespaces,
		Jobs:               s.Jobs,
	}
}

// UnitResult is the result of rendering one unit.
type UnitResult struct {
	Path    string
	Output  string // path of the output file, empty when loading failed
	Text    string
	Outcome Outcome
	Cached  bool
	Bag     *diag.Bag
	Timing  observ.Report
}

// Result is the result of a batch, with units in ListUnits order.
type Result struct {
	Units  []UnitResult
	Timing observ.Report
}

// Diagnostics merges the diagnostics of every unit, sorted and deduplicated.
func (r *Result) Diagnostics() *diag.Bag {
	bag := diag.NewBag(0)
	for i := range r.Units {
		bag.Merge(r.Units[i].Bag)
	}
	bag.Sort()
	bag.Dedup()
	return bag
}

// Count returns how many units ended with outcome.
func (r *Result) Count(outcome Outcome) int {
	n := 0
	for i := range r.Units {
		if r.Units[i].Outcome == outcome {
			n++
		}
	}
	return n
}

// RenderPaths renders every unit found under paths in parallel. Unit failures
// are reported in the unit's Bag; the returned error is reserved for listing
// failures and cancellation.
func RenderPaths(ctx context.Context, paths []string, opts Options) (*Result, error) {
	if opts.Indent == "" {
		opts.Indent = emit.DefaultIndent
	}
	if opts.ColumnLimit <= 0 {
		opts.ColumnLimit = emit.DefaultColumnLimit
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "render", 0)
	defer span.End("")

	timer := observ.NewTimer()
	idx := timer.Begin("list")
	phase := trace.Begin(tracer, trace.ScopePass, "list", span.ID())
	files, err := ListUnits(paths)
	phase.End("")
	timer.End(idx, fmt.Sprintf("%d units", len(files)))
	if err != nil {
		return nil, err
	}
	span.WithExtra("units", fmt.Sprint(len(files)))

	result := &Result{Units: make([]UnitResult, len(files))}
	if len(files) == 0 {
		result.Timing = timer.Report()
		return result, nil
	}
	for _, path := range files {
		notify(opts.Progress, Event{File: path, Status: StatusQueued})
	}

	renderer := emit.New(emit.Options{
		Indent:             opts.Indent,
		ColumnLimit:        opts.ColumnLimit,
		ImplicitNamespaces: opts.ImplicitNamespaces,
		Tracer:             tracer,
	})
	optsHash := optionsDigest(&opts)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	idx = timer.Begin("units")
	phase = trace.Begin(tracer, trace.ScopePass, "units", span.ID())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	parent := phase.ID()
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// Each goroutine owns result.Units[i].
			result.Units[i] = renderUnit(renderer, path, &opts, optsHash, parent)
			return nil
		})
	}
	err = g.Wait()
	phase.WithExtra("jobs", fmt.Sprint(jobs)).End("")
	timer.End(idx, fmt.Sprintf("jobs=%d", jobs))
	result.Timing = timer.Report()
	if err != nil {
		return result, err
	}
	notify(opts.Progress, Event{Stage: StageWrite, Status: StatusDone})
	return result, nil
}

func renderUnit(r *emit.Renderer, path string, opts *Options, optsHash project.Digest, parent uint64) (res UnitResult) {
	res = UnitResult{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics)}
	span := trace.Begin(r.Options().Tracer, trace.ScopeUnit, "unit:"+path, parent)
	timer := observ.NewTimer()
	start := time.Now()
	defer func() {
		res.Timing = timer.Report()
		span.WithExtra("outcome", string(res.Outcome))
		span.End("")
		status := StatusDone
		if res.Outcome == OutcomeFailed {
			status = StatusError
		}
		notify(opts.Progress, Event{File: path, Stage: StageWrite, Status: status, Elapsed: time.Since(start)})
	}()

	fail := func(stage Stage, err error, fallback diag.Code) UnitResult {
		d := diag.AsDiagnostic(err, fallback)
		if d.Path == "" {
			d.Path = path
		}
		res.Bag.Add(d)
		res.Outcome = OutcomeFailed
		notify(opts.Progress, Event{File: path, Stage: stage, Status: StatusError, Err: err})
		return res
	}
	warn := func(err error) {
		res.Bag.Add(diag.New(diag.SevWarning, diag.IOCache, err.Error()).At(path, 0))
	}

	notify(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	idx := timer.Begin("load")
	data, err := os.ReadFile(path)
	if err != nil {
		timer.End(idx, "")
		return fail(StageLoad, diag.Wrap(diag.IOLoadUnit, err, "failed to load unit"), diag.IOLoadUnit)
	}
	key := project.Combine(project.Sum(data), optsHash)

	var payload DiskPayload
	hit, err := opts.Cache.Get(key, &payload)
	if err != nil {
		warn(fmt.Errorf("cache read failed: %w", err))
	}
	if hit {
		timer.End(idx, "cached")
		res.Cached = true
		res.Output = filepath.Join(filepath.Dir(path), payload.Output)
		res.Text = payload.Text
	} else {
		u, err := unit.Decode(data, path)
		timer.End(idx, "")
		if err != nil {
			return fail(StageLoad, err, diag.UntInvalid)
		}
		res.Output = filepath.Join(filepath.Dir(path), u.Output)

		notify(opts.Progress, Event{File: path, Stage: StageRender, Status: StatusWorking})
		idx = timer.Begin("render")
		text, err := r.Render(u.File)
		timer.End(idx, "")
		if err != nil {
			return fail(StageRender, err, diag.StrMalformedDeclaration)
		}
		res.Text = text
		payload = DiskPayload{Unit: path, Output: u.Output, Text: text, ContentHash: project.Sum(data), OptionsHash: optsHash}
		if err := opts.Cache.Put(key, &payload); err != nil {
			warn(fmt.Errorf("cache write failed: %w", err))
		}
	}

	if opts.Mode == ModePrint {
		res.Outcome = OutcomeRendered
		return res
	}

	notify(opts.Progress, Event{File: path, Stage: StageWrite, Status: StatusWorking})
	idx = timer.Begin("write")
	defer timer.End(idx, "")
	existing, err := os.ReadFile(res.Output)
	switch {
	case err == nil && bytes.Equal(existing, []byte(res.Text)):
		res.Outcome = OutcomeUnchanged
		return res
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return fail(StageWrite, diag.Wrap(diag.IOWriteOutput, err, "failed to read existing output %s", res.Output), diag.IOWriteOutput)
	}
	if opts.Mode == ModeCheck {
		res.Outcome = OutcomeStale
		return res
	}
	if err := writeFileAtomic(res.Output, []byte(res.Text)); err != nil {
		return fail(StageWrite, diag.Wrap(diag.IOWriteOutput, err, "failed to write %s", res.Output), diag.IOWriteOutput)
	}
	res.Outcome = OutcomeWritten
	return res
}

// writeFileAtomic replaces path with data through a temporary file in the
// same directory.
func writeFileAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".kpoet-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
