package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios validate the generated method surface by constructing instances
// from declared classes and asserting on the results.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Defs is an inline CUE source with class definitions.
	// Exactly one of Defs or DefFiles must be set.
	Defs string `yaml:"defs,omitempty"`

	// DefFiles lists paths to CUE definition files.
	// Paths are relative to the scenario file location.
	DefFiles []string `yaml:"def_files,omitempty"`

	// Steps contains the construction sequence. Each step builds one
	// instance, optionally binding it to a name for later reference.
	Steps []Step `yaml:"steps"`

	// Assertions validate the constructed instances.
	Assertions []Assertion `yaml:"assertions"`
}

// Step constructs one instance of a declared class.
//
// Argument values may reference previously constructed instances with the
// "$name" syntax; a literal leading dollar sign is escaped as "$$".
type Step struct {
	// Construct is the class name to instantiate.
	Construct string `yaml:"construct"`

	// As binds the constructed instance to a name for later steps and
	// assertions. Optional when the step only checks an expected error.
	As string `yaml:"as,omitempty"`

	// Args contains positional constructor arguments.
	Args []interface{} `yaml:"args,omitempty"`

	// Kwargs contains keyword constructor arguments.
	Kwargs map[string]interface{} `yaml:"kwargs,omitempty"`

	// ExpectError, when set, requires construction to fail with an error
	// containing this substring. The step then binds nothing.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates one property of constructed instances.
type Assertion struct {
	// Type specifies the assertion type:
	// - "repr": Target's repr equals Expect
	// - "equal" / "not_equal": Target compared to Other
	// - "less" / "greater": Target ordered against Other
	// - "unorderable": ordering Target against Other fails
	// - "hash_equal" / "hash_not_equal": hash of Target vs Other
	// - "unhashable": hashing Target fails
	// - "attr": Target's attribute Attr holds Value
	Type string `yaml:"type"`

	// Target is the "$name" reference this assertion examines.
	Target string `yaml:"target"`

	// Other is the second "$name" reference for binary assertions.
	Other string `yaml:"other,omitempty"`

	// Expect is the expected repr text (used by repr).
	Expect string `yaml:"expect,omitempty"`

	// Attr is the attribute name (used by attr).
	Attr string `yaml:"attr,omitempty"`

	// Value is the expected attribute value (used by attr).
	Value interface{} `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertRepr         = "repr"
	AssertEqual        = "equal"
	AssertNotEqual     = "not_equal"
	AssertLess         = "less"
	AssertGreater      = "greater"
	AssertUnorderable  = "unorderable"
	AssertHashEqual    = "hash_equal"
	AssertHashNotEqual = "hash_not_equal"
	AssertUnhashable   = "unhashable"
	AssertAttr         = "attr"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := parseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve definition file paths relative to the scenario location.
	base := filepath.Dir(path)
	for i, defPath := range scenario.DefFiles {
		if !filepath.IsAbs(defPath) {
			scenario.DefFiles[i] = filepath.Join(base, defPath)
		}
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML from memory. Definition file paths are
// taken as-is; callers using def_files should prefer LoadScenario.
func ParseScenario(data []byte) (*Scenario, error) {
	scenario, err := parseScenario(data)
	if err != nil {
		return nil, err
	}
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

func parseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Defs == "" && len(s.DefFiles) == 0 {
		return fmt.Errorf("either defs or def_files is required")
	}
	if s.Defs != "" && len(s.DefFiles) > 0 {
		return fmt.Errorf("defs and def_files are mutually exclusive")
	}
	for _, defPath := range s.DefFiles {
		if _, err := os.Stat(defPath); os.IsNotExist(err) {
			return fmt.Errorf("definition file not found: %s", defPath)
		}
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	names := make(map[string]bool)
	for i, step := range s.Steps {
		if step.Construct == "" {
			return fmt.Errorf("steps[%d]: construct is required", i)
		}
		if step.As == "" && step.ExpectError == "" {
			return fmt.Errorf("steps[%d]: as is required unless expect_error is set", i)
		}
		if step.As != "" && step.ExpectError != "" {
			return fmt.Errorf("steps[%d]: as and expect_error are mutually exclusive", i)
		}
		if step.As != "" {
			if names[step.As] {
				return fmt.Errorf("steps[%d]: duplicate binding %q", i, step.As)
			}
			names[step.As] = true
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, names); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, names map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	checkRef := func(field, ref string) error {
		name, ok := refName(ref)
		if !ok {
			return fmt.Errorf("assertions[%d]: %s must be a $name reference, got %q", index, field, ref)
		}
		if !names[name] {
			return fmt.Errorf("assertions[%d]: %s references unbound name %q", index, field, name)
		}
		return nil
	}

	if err := checkRef("target", a.Target); err != nil {
		return err
	}

	switch a.Type {
	case AssertRepr:
		if a.Expect == "" {
			return fmt.Errorf("assertions[%d]: expect is required for repr", index)
		}
	case AssertEqual, AssertNotEqual, AssertLess, AssertGreater,
		AssertUnorderable, AssertHashEqual, AssertHashNotEqual:
		if err := checkRef("other", a.Other); err != nil {
			return err
		}
	case AssertUnhashable:
		// Target only.
	case AssertAttr:
		if a.Attr == "" {
			return fmt.Errorf("assertions[%d]: attr is required for attr", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// refName extracts the binding name from a "$name" reference.
// "$$" escapes a literal dollar sign and is not a reference.
func refName(s string) (string, bool) {
	if len(s) < 2 || s[0] != '$' || s[1] == '$' {
		return "", false
	}
	return s[1:], true
}
