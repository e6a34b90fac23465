package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kpoet/internal/driver"
)

const answerUnit = `namespace: app
members:
  - property: answer
    type: kotlin.Int
    init: "42"
`

func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		for _, cmd := range []*cobra.Command{renderCmd, versionCmd} {
			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRenderCommandJSON(t *testing.T) {
	dir := t.TempDir()
	unitPath := filepath.Join(dir, "answer.kp.yaml")
	if err := os.WriteFile(unitPath, []byte(answerUnit), 0o600); err != nil {
		t.Fatalf("write unit: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "kpoet.toml"), []byte("[render]\nimplicit_namespaces = [\"kotlin\"]\n[cache]\nenabled = false\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	stdout, _, err := executeRoot(t, "render", "--ui", "off", "--format", "json", "--color", "off", dir)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var report jsonReport
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, stdout)
	}
	if len(report.Units) != 1 || report.Units[0].Outcome != string(driver.OutcomeWritten) {
		t.Fatalf("unexpected units: %+v", report.Units)
	}
	data, err := os.ReadFile(filepath.Join(dir, "Answer.kt"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got, want := string(data), "package app\n\nval answer: Int = 42\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}

	_, _, err = executeRoot(t, "render", "--ui", "off", "--check", "--color", "off", dir)
	if err != nil {
		t.Fatalf("check after write: %v", err)
	}
}

func TestRenderCommandReportsFailures(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.kp.yaml"), []byte("members:\n  - doc: x\n"), 0o600); err != nil {
		t.Fatalf("write unit: %v", err)
	}

	_, stderr, err := executeRoot(t, "render", "--ui", "off", "--no-cache", "--color", "off", dir)
	if err == nil || !strings.Contains(err.Error(), "1 of 1 units failed") {
		t.Fatalf("expected failure, got %v", err)
	}
	if !strings.Contains(stderr, "error UNT6002") || !strings.Contains(stderr, "bad.kp.yaml:2") {
		t.Fatalf("diagnostic not printed:\n%s", stderr)
	}
}

func TestRenderFlagConflicts(t *testing.T) {
	_, _, err := executeRoot(t, "render", "--check", "--stdout", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := readUIMode("maybe"); err == nil {
		t.Errorf("expected error for invalid mode")
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := executeRoot(t, "version", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout)
	}
	if payload.Tool != "kpoet" || payload.Version == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}
