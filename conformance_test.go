package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/baila-lang/baila/internal/testutil"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/baila-lang/baila/pkg/runtime"
	"github.com/baila-lang/baila/pkg/value"
)

func init() {
	color.NoColor = true
}

// outcome is what a scenario command produced.
type outcome struct {
	exitCode int
	stdout   string
	value    value.Value
	diags    []diagnostics.Diagnostic
	stderr   string
}

func TestConformance(t *testing.T) {
	dirs, err := testutil.ListScenarios(testutil.ScenariosDir)
	if err != nil {
		t.Fatalf("list scenarios: %v", err)
	}
	if len(dirs) == 0 {
		t.Fatal("no scenarios found")
	}
	for _, dir := range dirs {
		dir := dir
		t.Run(filepath.Base(dir), func(t *testing.T) {
			scenario, err := testutil.LoadScenario(dir)
			if err != nil {
				t.Fatalf("failed to load scenario: %v", err)
			}
			source, filename, err := testutil.ReadProgramFile(dir, scenario.Cmd)
			if err != nil {
				t.Fatalf("failed to read program file: %v", err)
			}

			var out outcome
			switch cmd := scenario.Cmd[0]; cmd {
			case "run":
				out = runScenario(scenario, source, filename)
			case "check":
				out = checkScenario(scenario, source, filename)
			case "fmt":
				out = fmtScenario(source, filename)
			default:
				t.Skipf("unsupported command: %s", cmd)
			}
			if len(out.diags) > 0 {
				out.stderr = diagnostics.RenderAll(out.diags, source)
			}
			compareOutcome(t, scenario, out)
		})
	}
}

func newRuntime(scenario *testutil.Scenario, stdout *bytes.Buffer) *runtime.Runtime {
	opts := []runtime.Option{runtime.WithOutput(stdout), runtime.WithRunID("test")}
	if scenario.TypeCheck != nil {
		opts = append(opts, runtime.WithTypeCheck(*scenario.TypeCheck))
	}
	return runtime.New(opts...)
}

func runScenario(scenario *testutil.Scenario, source, filename string) outcome {
	var stdout bytes.Buffer
	rt := newRuntime(scenario, &stdout)
	prog, err := rt.Compile(source, filename)
	if err != nil {
		return outcome{exitCode: runtime.ExitCode(err), diags: diagnostics.FromError(err)}
	}
	v, err := prog.Execute(context.Background())
	return outcome{
		exitCode: runtime.ExitCode(err),
		stdout:   stdout.String(),
		value:    v,
		diags:    diagnostics.FromError(err),
	}
}

func checkScenario(scenario *testutil.Scenario, source, filename string) outcome {
	var stdout bytes.Buffer
	diags := newRuntime(scenario, &stdout).Check(source, filename)
	if len(diags) > 0 {
		return outcome{exitCode: runtime.ExitDiagnostics, diags: diags}
	}
	return outcome{}
}

func fmtScenario(source, filename string) outcome {
	formatted, err := runtime.New().Format(source, filename)
	return outcome{exitCode: runtime.ExitCode(err), stdout: formatted, diags: diagnostics.FromError(err)}
}

func compareOutcome(t *testing.T, scenario *testutil.Scenario, out outcome) {
	t.Helper()
	want := scenario.Expect

	if out.exitCode != want.ExitCode {
		t.Errorf("exit code: got %d, want %d\n%s", out.exitCode, want.ExitCode, out.stderr)
	}
	if want.Stdout != nil && out.stdout != *want.Stdout {
		t.Errorf("stdout:\n  got:  %q\n  want: %q", out.stdout, *want.Stdout)
	}
	if want.StdoutContains != "" && !strings.Contains(out.stdout, want.StdoutContains) {
		t.Errorf("stdout should contain %q, got: %q", want.StdoutContains, out.stdout)
	}
	if want.Value != nil {
		if got := value.Display(out.value); got != *want.Value {
			t.Errorf("value: got %q, want %q", got, *want.Value)
		}
	}
	if want.StderrContains != "" && !strings.Contains(out.stderr, want.StderrContains) {
		t.Errorf("stderr should contain %q, got:\n%s", want.StderrContains, out.stderr)
	}
	for _, expected := range want.Diagnostics {
		if !hasDiagnostic(out.diags, expected) {
			t.Errorf("diagnostic %+v not found in:\n%s", expected, out.stderr)
		}
	}
}

func hasDiagnostic(diags []diagnostics.Diagnostic, want testutil.ExpectedDiagnostic) bool {
	for _, d := range diags {
		if d.Code != want.Code {
			continue
		}
		if want.Contains != "" && !strings.Contains(d.Message, want.Contains) {
			continue
		}
		if want.Line != 0 && (d.Span == nil || d.Span.StartLine != want.Line) {
			continue
		}
		if want.Col != 0 && (d.Span == nil || d.Span.StartCol != want.Col) {
			continue
		}
		return true
	}
	return false
}

// Verify scenarios directory exists
func TestScenariosExist(t *testing.T) {
	info, err := os.Stat(testutil.ScenariosDir)
	if err != nil {
		t.Fatalf("scenarios directory not found: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("scenarios path is not a directory: %s", testutil.ScenariosDir)
	}
}
