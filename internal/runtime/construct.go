package runtime

import (
	"fmt"

	"declmap/internal/model"
)

// New runs the generated initializer: positional arguments fill parameters
// in merged declaration order, keyword arguments fill by name, and optional
// parameters fall back to their default or default factory. Attributes
// excluded from the initializer receive their declared default (or Null).
//
// When the class resolved init=false or never opted in to generation, New
// accepts keyword arguments only and behaves like NewKwargs; positional
// arguments fail with a TOO_MANY_ARGUMENTS error.
func (c *Class) New(args []model.Value, kwargs map[string]model.Value) (*model.Instance, error) {
	contract := c.contract

	if !contract.Generate || !contract.Options.Init {
		if len(args) > 0 {
			return nil, &RuntimeError{
				Code:    ErrCodeTooManyArguments,
				Message: "constructor takes no positional arguments",
				Class:   contract.QualifiedName,
			}
		}
		return c.NewKwargs(kwargs)
	}

	params := contract.Params
	if len(args) > len(params) {
		return nil, &RuntimeError{
			Code: ErrCodeTooManyArguments,
			Message: fmt.Sprintf("constructor takes %d argument(s) but %d were given",
				len(params), len(args)),
			Class: contract.QualifiedName,
		}
	}

	assigned := make(map[string]model.Value, len(params))
	for i, v := range args {
		assigned[params[i].Name] = v
	}
	for name, v := range kwargs {
		if !hasParam(params, name) {
			return nil, &RuntimeError{
				Code:      ErrCodeUnexpectedArgument,
				Message:   fmt.Sprintf("unexpected keyword argument %q", name),
				Class:     contract.QualifiedName,
				Attribute: name,
			}
		}
		if _, dup := assigned[name]; dup {
			return nil, &RuntimeError{
				Code:      ErrCodeUnexpectedArgument,
				Message:   fmt.Sprintf("got multiple values for argument %q", name),
				Class:     contract.QualifiedName,
				Attribute: name,
			}
		}
		assigned[name] = v
	}

	inst := model.NewInstance(contract, c.identity.Generate())
	for _, attr := range contract.Attributes {
		if !attr.Init {
			v, err := attributeDefault(attr)
			if err != nil {
				return nil, err
			}
			inst.Set(attr.Name, v)
			continue
		}

		v, ok := assigned[attr.Name]
		if !ok {
			if !attr.Optional() {
				return nil, &RuntimeError{
					Code:      ErrCodeMissingArgument,
					Message:   fmt.Sprintf("missing required argument %q", attr.Name),
					Class:     contract.QualifiedName,
					Attribute: attr.Name,
				}
			}
			var err error
			v, err = attributeDefault(attr)
			if err != nil {
				return nil, err
			}
		}
		if err := checkCollection(attr, v); err != nil {
			return nil, err
		}
		inst.Set(attr.Name, v)
	}

	if c.postInit != nil {
		if err := c.postInit(inst); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// NewKwargs is the fallback constructor for classes without a generated
// initializer. Provided keyword values are assigned; every other attribute
// reads as Null. Declared defaults are NOT applied on this path.
func (c *Class) NewKwargs(kwargs map[string]model.Value) (*model.Instance, error) {
	contract := c.contract
	inst := model.NewInstance(contract, c.identity.Generate())
	for name, v := range kwargs {
		if _, ok := contract.Attribute(name); !ok {
			return nil, &RuntimeError{
				Code:      ErrCodeUnexpectedArgument,
				Message:   fmt.Sprintf("unexpected keyword argument %q", name),
				Class:     contract.QualifiedName,
				Attribute: name,
			}
		}
		inst.Set(name, v)
	}

	if c.postInit != nil {
		if err := c.postInit(inst); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// attributeDefault produces the attribute's default value: the static
// default, the factory result (shape-checked against the declared
// collection), or Null.
func attributeDefault(attr model.ResolvedAttribute) (model.Value, error) {
	if attr.HasDefault {
		return attr.Default, nil
	}
	if attr.HasFactory {
		v := attr.Factory()
		if err := checkCollection(attr, v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return model.Null{}, nil
}

func hasParam(params []model.Param, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}
