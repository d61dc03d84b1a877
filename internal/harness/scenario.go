package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/jeason0813/dblinq2007/internal/pieces"
)

// Scenario defines one translation test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Mapping is the path of the CUE or SQLite mapping.
	// Relative paths are resolved against the scenario file location.
	Mapping string `yaml:"mapping"`

	// TranslationID is an optional fixed translation ID.
	// If empty, defaults to "test-translation".
	TranslationID string `yaml:"translation_id,omitempty"`

	// Expression is the expression document to translate.
	Expression yaml.Node `yaml:"expression"`

	// Expect specifies the expected outcome.
	Expect Expect `yaml:"expect"`
}

// Expect specifies the expected outcome of a translation.
//
// Error excludes every other field. Unset fields are not checked; an
// empty list checks for no entries.
type Expect struct {
	// Error is the expected error kind, e.g. "UNMAPPED_COLUMN".
	Error string `yaml:"error,omitempty"`

	// Where lists the rendered filter predicates, in order.
	Where []string `yaml:"where,omitempty"`

	// Select is the rendered projection.
	Select string `yaml:"select,omitempty"`

	// Result is the rendered piece returned for the root expression.
	Result string `yaml:"result,omitempty"`

	// Columns lists the registered column names, in registration order.
	Columns []string `yaml:"columns,omitempty"`

	// Tables lists the registered table names, in registration order.
	Tables []string `yaml:"tables,omitempty"`

	// Parameters lists the registered external parameter names, in order.
	Parameters []string `yaml:"parameters,omitempty"`
}

// errorKinds lists the kinds an expect.error may name.
var errorKinds = []pieces.ErrorKind{
	pieces.ErrUnsupportedExpression,
	pieces.ErrUnsupportedMethod,
	pieces.ErrUnboundParameter,
	pieces.ErrArityMismatch,
	pieces.ErrUnmappedColumn,
	pieces.ErrUnresolvableExternalParameter,
	pieces.ErrInvalidArgumentShape,
	pieces.ErrMissingProjection,
}

// LoadScenario reads and parses a scenario YAML file, resolving the
// mapping path relative to the file.
//
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Mapping != "" && !filepath.IsAbs(scenario.Mapping) {
		scenario.Mapping = filepath.Join(filepath.Dir(path), scenario.Mapping)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml scenario in dir, sorted by
// file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var scenarios []*Scenario
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		s, err := LoadScenario(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Mapping == "" {
		return fmt.Errorf("mapping is required")
	}
	if _, err := os.Stat(s.Mapping); os.IsNotExist(err) {
		return fmt.Errorf("mapping file not found: %s", s.Mapping)
	}

	if s.Expression.Kind == 0 {
		return fmt.Errorf("expression is required")
	}

	return validateExpect(&s.Expect)
}

func validateExpect(e *Expect) error {
	if e.Error == "" {
		return nil
	}

	if !slices.Contains(errorKinds, pieces.ErrorKind(e.Error)) {
		return fmt.Errorf("expect.error: unknown error kind %q", e.Error)
	}
	if e.Where != nil || e.Select != "" || e.Result != "" || e.Columns != nil || e.Tables != nil || e.Parameters != nil {
		return fmt.Errorf("expect.error excludes every other expectation")
	}
	return nil
}
