// Package testutil provides shared test helpers for Baila Go tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ScenariosDir is the path of the scenario corpus relative to the module root.
const ScenariosDir = "testdata/scenarios"

// Scenario represents a test scenario loaded from a scenario.yaml file.
type Scenario struct {
	// Cmd is the command and its program file, e.g. [run, main.baila].
	Cmd []string `yaml:"cmd"`
	// TypeCheck disables the static pass when set to false.
	TypeCheck *bool          `yaml:"typecheck,omitempty"`
	Meta      *ScenarioMeta  `yaml:"meta,omitempty"`
	Expect    ExpectedResult `yaml:"expect"`
}

// ScenarioMeta holds optional scenario metadata.
type ScenarioMeta struct {
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// ExpectedResult describes the expected outcome of running a scenario.
// Nil pointer fields are not checked.
type ExpectedResult struct {
	ExitCode       int                  `yaml:"exitCode"`
	Stdout         *string              `yaml:"stdout,omitempty"`
	StdoutContains string               `yaml:"stdoutContains,omitempty"`
	Value          *string              `yaml:"value,omitempty"`
	StderrContains string               `yaml:"stderrContains,omitempty"`
	Diagnostics    []ExpectedDiagnostic `yaml:"diagnostics,omitempty"`
}

// ExpectedDiagnostic matches a diagnostic by code and, when set, by start
// position and message fragment.
type ExpectedDiagnostic struct {
	Code     string `yaml:"code"`
	Line     int    `yaml:"line,omitempty"`
	Col      int    `yaml:"col,omitempty"`
	Contains string `yaml:"contains,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.yaml.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.yaml"))
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	if len(s.Cmd) == 0 {
		return nil, fmt.Errorf("%s: scenario has no cmd", dir)
	}
	return &s, nil
}

// ListScenarios returns all scenario directories under the given root, sorted.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			scenarioPath := filepath.Join(root, e.Name(), "scenario.yaml")
			if _, err := os.Stat(scenarioPath); err == nil {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ReadProgramFile reads the program file referenced by the scenario cmd.
func ReadProgramFile(scenarioDir string, cmd []string) (string, string, error) {
	if len(cmd) < 2 {
		return "", "", fmt.Errorf("%s: cmd names no program file", scenarioDir)
	}
	filename := cmd[1]
	source, err := os.ReadFile(filepath.Join(scenarioDir, filename))
	if err != nil {
		return "", "", err
	}
	return string(source), filename, nil
}
