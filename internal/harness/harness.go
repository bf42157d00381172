package harness

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"declmap/internal/loader"
	"declmap/internal/model"
	"declmap/internal/runtime"
)

// TraceEvent records the outcome of one construction step.
type TraceEvent struct {
	Step      int    `json:"step"`
	Construct string `json:"construct"`
	As        string `json:"as,omitempty"`
	Repr      string `json:"repr,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every step and assertion succeeded.
	Pass bool `json:"pass"`

	// Trace records each construction step in order.
	// Used for golden comparison.
	Trace []TraceEvent `json:"trace"`

	// Errors contains step and assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// sequenceGenerator issues sequential hex identities so instance reprs and
// traces are stable across runs.
type sequenceGenerator struct {
	mu sync.Mutex
	n  uint64
}

func (g *sequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%012x", g.n)
}

// Harness executes one scenario against a fresh registry.
type Harness struct {
	classes   map[string]*runtime.Class
	instances map[string]*model.Instance
	identity  runtime.IdentityGenerator
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh registry for isolation, with
// deterministic sequential instance identities.
//
// Execution flow:
// 1. Load class definitions (inline CUE or definition files)
// 2. Resolve and bind every declared class
// 3. Execute construction steps, validating expected errors
// 4. Evaluate assertions against the bound instances
func Run(scenario *Scenario) (*Result, error) {
	var (
		reg  loaderRegistry
		defs []loader.ClassDef
		err  error
	)
	if scenario.Defs != "" {
		reg, defs, err = loader.LoadString(scenario.Defs)
	} else {
		reg, defs, err = loadFiles(scenario.DefFiles)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load definitions: %w", err)
	}

	h := &Harness{
		classes:   make(map[string]*runtime.Class, len(defs)),
		instances: make(map[string]*model.Instance),
		identity:  &sequenceGenerator{},
	}
	for _, def := range defs {
		contract, err := reg.Resolve(def.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve class %s: %w", def.Name, err)
		}
		h.classes[def.Name] = runtime.Bind(contract,
			runtime.WithIdentityGenerator(h.identity))
	}

	result := NewResult()
	if err := h.executeSteps(scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	for _, msg := range h.evaluateAssertions(scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// RunFile loads a scenario from disk and executes it.
func RunFile(path string) (*Result, error) {
	scenario, err := LoadScenario(path)
	if err != nil {
		return nil, err
	}
	return Run(scenario)
}

// loaderRegistry is the subset of the resolver registry the harness needs.
type loaderRegistry interface {
	Resolve(class string) (*model.ResolvedClassContract, error)
}

// loadFiles merges several definition files into one registry. Top-level
// declarations across files unify, so one file may declare subclasses of
// classes declared in another.
func loadFiles(paths []string) (loaderRegistry, []loader.ClassDef, error) {
	var src strings.Builder
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read definition file: %w", err)
		}
		src.Write(data)
		src.WriteByte('\n')
	}
	return loader.LoadString(src.String())
}

// executeSteps runs all construction steps.
//
// A step with expect_error must fail with a matching message; any other
// failure marks the result failed but execution continues so the trace
// stays complete.
func (h *Harness) executeSteps(steps []Step, result *Result) error {
	for i, step := range steps {
		event := TraceEvent{Step: i, Construct: step.Construct, As: step.As}

		class, ok := h.classes[step.Construct]
		if !ok {
			return fmt.Errorf("step %d: unknown class %q", i, step.Construct)
		}

		args, kwargs, err := h.convertStepArgs(step)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		inst, err := class.New(args, kwargs)
		switch {
		case step.ExpectError != "":
			if err == nil {
				result.AddError(fmt.Sprintf(
					"step %d: expected error containing %q, construction succeeded",
					i, step.ExpectError))
			} else if !strings.Contains(err.Error(), step.ExpectError) {
				result.AddError(fmt.Sprintf(
					"step %d: expected error containing %q, got %q",
					i, step.ExpectError, err.Error()))
			}
			if err != nil {
				event.Error = err.Error()
			}
		case err != nil:
			result.AddError(fmt.Sprintf("step %d: construct %s: %v", i, step.Construct, err))
			event.Error = err.Error()
		default:
			h.instances[step.As] = inst
			event.Repr = class.Repr(inst)
		}

		result.Trace = append(result.Trace, event)
	}
	return nil
}

func (h *Harness) convertStepArgs(step Step) ([]model.Value, map[string]model.Value, error) {
	var args []model.Value
	for i, raw := range step.Args {
		v, err := h.convertValue(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("args[%d]: %w", i, err)
		}
		args = append(args, v)
	}

	var kwargs map[string]model.Value
	if len(step.Kwargs) > 0 {
		kwargs = make(map[string]model.Value, len(step.Kwargs))
		for key, raw := range step.Kwargs {
			v, err := h.convertValue(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("kwargs[%s]: %w", key, err)
			}
			kwargs[key] = v
		}
	}
	return args, kwargs, nil
}

// convertValue converts a YAML-parsed value to a runtime value.
// Strings starting with "$" reference bound instances; "$$" escapes a
// literal dollar sign.
func (h *Harness) convertValue(raw interface{}) (model.Value, error) {
	switch v := raw.(type) {
	case nil:
		return model.Null{}, nil
	case string:
		if name, ok := refName(v); ok {
			inst, ok := h.instances[name]
			if !ok {
				return nil, fmt.Errorf("reference to unbound name %q", name)
			}
			return inst, nil
		}
		if len(v) >= 2 && v[0] == '$' && v[1] == '$' {
			return model.String(v[1:]), nil
		}
		return model.String(v), nil
	case int:
		return model.Int(int64(v)), nil
	case int64:
		return model.Int(v), nil
	case bool:
		return model.Bool(v), nil
	case float64:
		// YAML may hand back float64 for numeric literals.
		if v == float64(int64(v)) {
			return model.Int(int64(v)), nil
		}
		return nil, fmt.Errorf("float values are not supported: %v", v)
	case []interface{}:
		list := make(model.List, len(v))
		for i, elem := range v {
			ev, err := h.convertValue(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = ev
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", raw)
	}
}
