// Package loader parses CUE class definition files into a resolver.Registry.
//
// A definition file declares mapped classes under a top-level "class" struct:
//
//	class: User: {
//		qualified: "app.User"
//		table:     "users"
//		options: {init: true, repr: true}
//		attributes: [
//			{name: "id", kind: "column", primary_key: true, init: false},
//			{name: "name", kind: "column"},
//			{name: "nick", kind: "column", default: null},
//		]
//	}
//
// Attribute order in the list is declaration order. Options parsed from
// files go through the registry's checked path, so unrecognized option keys
// fail with the fixed "are not accepted" configuration error.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"declmap/internal/model"
	"declmap/internal/resolver"
)

// ClassDef is one parsed class definition, prior to registration.
type ClassDef struct {
	Name       string
	Qualified  string
	Table      string
	Base       string
	Dataclass  bool
	HasOptions bool
	Options    map[string]any
	Attributes []AttributeDef
}

// AttributeDef is one parsed attribute declaration.
type AttributeDef struct {
	Spec model.AttributeSpec
}

// ParseError represents a definition parse error with source position.
type ParseError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ParseError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadDir loads every CUE file in dir, parses the class definitions, and
// returns a populated registry. Registration order follows base
// dependencies, root classes first.
func LoadDir(dir string) (*resolver.Registry, []ClassDef, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("definitions directory not found: %s", dir)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("accessing definitions directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("not a directory: %s", dir)
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("scanning directory: %w", err)
	}
	if len(cueFiles) == 0 {
		return nil, nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, nil, fmt.Errorf("no CUE instances loaded")
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, nil, fmt.Errorf("building CUE value: %w", err)
	}

	return LoadValue(value)
}

// LoadString parses class definitions from a single CUE source string.
// Used by tests and the scenario harness.
func LoadString(src string) (*resolver.Registry, []ClassDef, error) {
	ctx := cuecontext.New()
	value := ctx.CompileString(src)
	if err := value.Err(); err != nil {
		return nil, nil, fmt.Errorf("compiling CUE source: %w", err)
	}
	return LoadValue(value)
}

// LoadValue parses class definitions from a built CUE value and registers
// them into a fresh registry.
func LoadValue(v cue.Value) (*resolver.Registry, []ClassDef, error) {
	defs, err := parseClasses(v)
	if err != nil {
		return nil, nil, err
	}

	reg := resolver.NewRegistry()
	if err := Populate(reg, defs); err != nil {
		return nil, nil, err
	}
	return reg, defs, nil
}

// Populate registers parsed definitions into reg, ordering registration so
// every base precedes its subclasses.
func Populate(reg *resolver.Registry, defs []ClassDef) error {
	ordered, err := sortByBase(defs)
	if err != nil {
		return err
	}

	for _, def := range ordered {
		info := resolver.ClassInfo{
			Name:          def.Name,
			QualifiedName: def.Qualified,
			Table:         def.Table,
			Base:          def.Base,
		}
		if err := reg.RegisterClass(info); err != nil {
			return err
		}
		if def.HasOptions {
			if err := reg.SetOptionsChecked(def.Name, def.Options); err != nil {
				return err
			}
		} else if def.Dataclass {
			if err := reg.MarkDataclass(def.Name); err != nil {
				return err
			}
		}
		for _, attr := range def.Attributes {
			if err := reg.RegisterAttribute(def.Name, attr.Spec); err != nil {
				return err
			}
		}
	}
	return nil
}

// sortByBase orders definitions so bases come before subclasses.
// Unknown bases are left for the registry to report; cycles fail here.
func sortByBase(defs []ClassDef) ([]ClassDef, error) {
	byName := make(map[string]ClassDef, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}

	var ordered []ClassDef
	placed := make(map[string]bool)
	var place func(d ClassDef, trail map[string]bool) error
	place = func(d ClassDef, trail map[string]bool) error {
		if placed[d.Name] {
			return nil
		}
		if trail[d.Name] {
			return fmt.Errorf("class %q: base chain contains a cycle", d.Name)
		}
		trail[d.Name] = true
		if d.Base != "" {
			if base, ok := byName[d.Base]; ok {
				if err := place(base, trail); err != nil {
					return err
				}
			}
		}
		placed[d.Name] = true
		ordered = append(ordered, d)
		return nil
	}
	for _, d := range defs {
		if err := place(d, map[string]bool{}); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

func findCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".cue") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
