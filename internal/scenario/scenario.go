package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is one declarative harness chain.
type Scenario struct {
	// Name identifies the scenario and its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Route is the initial location. Defaults to "/".
	Route string `yaml:"route,omitempty"`

	// RestoreSession is passed to the harness. Defaults to true.
	RestoreSession *bool `yaml:"restore_session,omitempty"`

	// Login installs a mock session before mounting.
	Login bool `yaml:"login,omitempty"`

	// ThroughLogin routes to this location via the login form instead of
	// mounting at Route.
	ThroughLogin string `yaml:"through_login,omitempty"`

	Steps  []Step `yaml:"steps,omitempty"`
	Expect Expect `yaml:"expect,omitempty"`

	// File is the path the scenario was loaded from.
	File string `yaml:"-"`
}

// Step is exactly one of its fields.
type Step struct {
	Respond *Respond `yaml:"respond,omitempty"`
	Click   string   `yaml:"click,omitempty"`
	Push    string   `yaml:"push,omitempty"`
	Fill    []Field  `yaml:"fill,omitempty"`
	Submit  string   `yaml:"submit,omitempty"`
}

// Field is one control of a fill step. Fields are filled in the order
// listed.
type Field struct {
	Selector string `yaml:"selector"`
	Value    string `yaml:"value"`
}

// Respond declares one response. Fixture, Error and Status select the
// fixture, rejection and problem forms; otherwise Data is the body.
type Respond struct {
	Data    any    `yaml:"data,omitempty"`
	Fixture string `yaml:"fixture,omitempty"`
	Count   int    `yaml:"count,omitempty"`
	Error   string `yaml:"error,omitempty"`
	Status  int    `yaml:"status,omitempty"`
	Message string `yaml:"message,omitempty"`
}

// Expect is checked against the settled instance.
type Expect struct {
	Path  string            `yaml:"path,omitempty"`
	Count map[string]int    `yaml:"count,omitempty"`
	Text  map[string]string `yaml:"text,omitempty"`

	// Error is the harness error code the chain must fail with.
	Error string `yaml:"error,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.File = path
	return s, nil
}

// Parse decodes and validates scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateSchema(doc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// validateScenario checks the rules the schema cannot express.
func validateScenario(s *Scenario) error {
	if s.ThroughLogin != "" {
		if s.Login {
			return errors.New("through_login requires a logged-out start; drop login")
		}
		if s.Route != "" {
			return errors.New("through_login and route are exclusive")
		}
		if s.RestoreSession != nil {
			return errors.New("through_login always starts logged out; drop restore_session")
		}
	}
	return nil
}

// Discover finds .yaml and .yml files under dir. A non-empty filter is a
// glob matched against each file's base name without extension.
func Discover(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			if ok, _ := filepath.Match(filter, name); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// GoldenPath returns where the golden trace of a scenario file lives:
// a golden directory next to the file.
func GoldenPath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}
