package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"kpoet/internal/diag"
	"kpoet/internal/driver"
	"kpoet/internal/observ"
	"kpoet/internal/project"
)

var renderCmd = &cobra.Command{
	Use:   "render [paths...]",
	Short: "Render unit descriptions to Kotlin files",
	Long: `Render every *.kp.yaml unit found under the given paths (default: the
current directory). Each unit is written next to its description.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().Bool("check", false, "report outputs that differ from the rendered text without writing")
	renderCmd.Flags().Bool("stdout", false, "print rendered text instead of writing files")
	renderCmd.Flags().String("format", "text", "report format (text|json)")
	renderCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	renderCmd.Flags().Int("jobs", 0, "max parallel workers (0=config or auto)")
	renderCmd.Flags().Bool("no-cache", false, "disable the render cache")
}

type renderFlags struct {
	check, stdout, noCache bool
	quiet, timings         bool
	format                 string
	ui                     uiMode
	maxDiagnostics         int
}

func readRenderFlags(cmd *cobra.Command) (renderFlags, error) {
	var f renderFlags
	var err error
	if f.check, err = cmd.Flags().GetBool("check"); err != nil {
		return f, fmt.Errorf("failed to get check flag: %w", err)
	}
	if f.stdout, err = cmd.Flags().GetBool("stdout"); err != nil {
		return f, fmt.Errorf("failed to get stdout flag: %w", err)
	}
	if f.noCache, err = cmd.Flags().GetBool("no-cache"); err != nil {
		return f, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if f.format, err = cmd.Flags().GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = readUIMode(uiValue); err != nil {
		return f, err
	}
	root := cmd.Root().PersistentFlags()
	if f.quiet, err = root.GetBool("quiet"); err != nil {
		return f, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if f.timings, err = root.GetBool("timings"); err != nil {
		return f, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if f.maxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
		return f, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	f.format = strings.ToLower(strings.TrimSpace(f.format))
	if f.format != "text" && f.format != "json" {
		return f, fmt.Errorf("unsupported format %q (must be text or json)", f.format)
	}
	if f.check && f.stdout {
		return f, fmt.Errorf("--check and --stdout are mutually exclusive")
	}
	return f, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	flags, err := readRenderFlags(cmd)
	if err != nil {
		return err
	}
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	settings, _, err := project.Load(configStartDir(paths[0]))
	if err != nil {
		return err
	}
	opts := driver.OptionsFromSettings(settings)
	opts.MaxDiagnostics = flags.maxDiagnostics
	if cmd.Flags().Changed("jobs") {
		if opts.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	switch {
	case flags.check:
		opts.Mode = driver.ModeCheck
	case flags.stdout:
		opts.Mode = driver.ModePrint
	default:
		opts.Mode = driver.ModeWrite
	}
	if settings.CacheEnabled && !flags.noCache {
		cache, err := driver.OpenDiskCache(settings.CacheDir, "kpoet")
		if err != nil {
			if !flags.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s render cache disabled: %v\n", color.YellowString("warning:"), err)
			}
		} else {
			opts.Cache = cache
		}
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var res *driver.Result
	if !flags.stdout && !flags.quiet && flags.format == "text" && shouldUseTUI(flags.ui) {
		files, err := driver.ListUnits(paths)
		if err != nil {
			return err
		}
		res, err = renderWithUI(cmd.Context(), "kpoet render", paths, files, opts)
		if err != nil {
			return err
		}
	} else {
		res, err = driver.RenderPaths(cmd.Context(), paths, opts)
		if err != nil {
			return err
		}
	}

	bag := res.Diagnostics()
	if flags.format == "json" {
		if err := writeRenderJSON(cmd.OutOrStdout(), res, bag, flags); err != nil {
			return err
		}
	} else {
		writeRenderText(cmd.OutOrStdout(), cmd.ErrOrStderr(), res, bag, flags)
	}

	if failed := res.Count(driver.OutcomeFailed); failed > 0 {
		return fmt.Errorf("%d of %d units failed", failed, len(res.Units))
	}
	if stale := res.Count(driver.OutcomeStale); stale > 0 {
		return fmt.Errorf("%d of %d outputs are stale", stale, len(res.Units))
	}
	return nil
}

// configStartDir is where the kpoet.toml search begins for path.
func configStartDir(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}

func limitDiagnostics(items []diag.Diagnostic, limit int) []diag.Diagnostic {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func writeRenderText(out, errOut io.Writer, res *driver.Result, bag *diag.Bag, flags renderFlags) {
	if flags.stdout {
		for i, u := range res.Units {
			if u.Outcome != driver.OutcomeRendered {
				continue
			}
			if len(res.Units) > 1 {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "// %s\n", u.Output)
			}
			fmt.Fprint(out, u.Text)
		}
	} else if !flags.quiet {
		for _, u := range res.Units {
			switch u.Outcome {
			case driver.OutcomeWritten:
				fmt.Fprintf(out, "%s %s\n", color.GreenString("wrote"), u.Output)
			case driver.OutcomeStale:
				fmt.Fprintf(out, "%s %s\n", color.YellowString("stale"), u.Output)
			}
		}
	}

	if items := limitDiagnostics(bag.Items(), flags.maxDiagnostics); len(items) > 0 {
		fmt.Fprintln(errOut, diag.FormatShortDiagnostics(items))
	}
	if !flags.quiet && !flags.stdout {
		fmt.Fprintln(errOut, summaryLine(res))
	}
	if flags.timings {
		fmt.Fprint(errOut, res.Timing.Summary())
		fmt.Fprint(errOut, unitTimings(res).Summary())
	}
}

func summaryLine(res *driver.Result) string {
	parts := []string{fmt.Sprintf("%d units", len(res.Units))}
	for _, o := range []driver.Outcome{driver.OutcomeWritten, driver.OutcomeUnchanged, driver.OutcomeStale, driver.OutcomeFailed} {
		if n := res.Count(o); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, o))
		}
	}
	line := strings.Join(parts, ", ")
	if res.Count(driver.OutcomeFailed) > 0 {
		return color.RedString(line)
	}
	return line
}

func unitTimings(res *driver.Result) observ.Report {
	reports := make([]observ.Report, 0, len(res.Units))
	for i := range res.Units {
		reports = append(reports, res.Units[i].Timing)
	}
	return observ.Sum(reports...)
}

type jsonUnit struct {
	Path    string `json:"path"`
	Output  string `json:"output,omitempty"`
	Outcome string `json:"outcome"`
	Cached  bool   `json:"cached,omitempty"`
	Text    string `json:"text,omitempty"`
}

type jsonDiagnostic struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Path     string `json:"path,omitempty"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message"`
}

type jsonReport struct {
	Units       []jsonUnit       `json:"units"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
	Timings     *observ.Report   `json:"timings,omitempty"`
	UnitTimings *observ.Report   `json:"unit_timings,omitempty"`
}

func writeRenderJSON(out io.Writer, res *driver.Result, bag *diag.Bag, flags renderFlags) error {
	report := jsonReport{
		Units:       make([]jsonUnit, 0, len(res.Units)),
		Diagnostics: []jsonDiagnostic{},
	}
	for _, u := range res.Units {
		ju := jsonUnit{Path: u.Path, Output: u.Output, Outcome: string(u.Outcome), Cached: u.Cached}
		if flags.stdout {
			ju.Text = u.Text
		}
		report.Units = append(report.Units, ju)
	}
	for _, d := range limitDiagnostics(bag.Items(), flags.maxDiagnostics) {
		report.Diagnostics = append(report.Diagnostics, jsonDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Path:     filepath.ToSlash(d.Path),
			Line:     d.Line,
			Message:  d.Message,
		})
	}
	if flags.timings {
		total, units := res.Timing, unitTimings(res)
		report.Timings, report.UnitTimings = &total, &units
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
