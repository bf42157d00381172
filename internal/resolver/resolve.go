package resolver

import (
	"fmt"

	"declmap/internal/model"
)

// Resolve computes the class's resolved contract, merging options and
// attributes along the ancestor chain. The contract is computed once and
// cached; subsequent calls return the cached value. All failures are
// synchronous and nothing is cached on error.
func (r *Registry) Resolve(class string) (*model.ResolvedClassContract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.entry(class)
	if err != nil {
		return nil, err
	}
	if entry.contract != nil {
		return entry.contract, nil
	}

	chain, err := r.chain(entry)
	if err != nil {
		return nil, err
	}

	// Attributes declared with dataclass arguments at a level that never
	// opted in to generation are a definition-time conflict regardless of
	// what the rest of the chain does.
	for _, level := range chain {
		if level.dataclass {
			continue
		}
		for _, attr := range level.attrs {
			if attr.HasDataclassArgs() {
				return nil, &ConfigError{
					Class: level.info.Name,
					Field: attr.Name,
					Message: fmt.Sprintf(
						"attribute includes dataclass argument(s): %s but class %q does not specify a dataclass generation configuration",
						quoteKeys(attr.DeclaredArgs()), level.info.Name),
					Code: ErrUnconsumedArguments,
				}
			}
		}
	}

	generate := false
	for _, level := range chain {
		if level.dataclass {
			generate = true
			break
		}
	}

	contract := &model.ResolvedClassContract{
		ClassName:     entry.info.Name,
		QualifiedName: entry.info.QualifiedName,
		Table:         entry.info.Table,
		Generate:      generate,
		Options:       model.DefaultOptions,
	}

	if generate {
		opts, err := mergeOptions(chain)
		if err != nil {
			return nil, err
		}
		contract.Options = opts

		contract.Attributes = mergeAttributes(chain)

		params, err := buildParams(entry.info.Name, contract.Attributes)
		if err != nil {
			return nil, err
		}
		contract.Params = params
	} else {
		contract.Attributes = mergeAttributes(chain)
	}

	entry.contract = contract
	return contract, nil
}

// mergeOptions collapses the tri-state options along the chain: each flag
// takes the nearest explicitly-set value scanning leaf to root, and unset
// flags fall through to the global defaults table.
func mergeOptions(chain []*classEntry) (model.ResolvedOptions, error) {
	resolved := model.DefaultOptions
	for _, name := range model.OptionNames {
		state := model.OptionUnset
		for i := len(chain) - 1; i >= 0; i-- {
			s, _ := chain[i].options.ByName(name)
			if s.IsSet() {
				state = s
				break
			}
		}
		if !state.IsSet() {
			continue
		}
		switch name {
		case "init":
			resolved.Init = state.Bool()
		case "repr":
			resolved.Repr = state.Bool()
		case "eq":
			resolved.Eq = state.Bool()
		case "order":
			resolved.Order = state.Bool()
		case "unsafe_hash":
			resolved.UnsafeHash = state.Bool()
		}
	}

	// eq defaults to true, so a false here is always an explicit override.
	if resolved.Order && !resolved.Eq {
		return resolved, &ConfigError{
			Class:   chain[len(chain)-1].info.Name,
			Field:   "order",
			Message: "order implies eq",
			Code:    ErrOrderWithoutEq,
		}
	}
	return resolved, nil
}

// mergeAttributes walks the chain root to leaf, appending each
// dataclass-enabled level's declarations in order. A redeclared name
// replaces the ancestor's spec in place, keeping the original position.
// Levels that never opted in do not contribute to the generated surface
// unless no level opted in at all (the plain-mapping case).
func mergeAttributes(chain []*classEntry) []model.ResolvedAttribute {
	generate := false
	for _, level := range chain {
		if level.dataclass {
			generate = true
			break
		}
	}

	var merged []model.ResolvedAttribute
	index := make(map[string]int)
	for _, level := range chain {
		if generate && !level.dataclass {
			continue
		}
		for _, attr := range level.attrs {
			ra := resolveAttribute(attr)
			if i, ok := index[attr.Name]; ok {
				merged[i] = ra
			} else {
				index[attr.Name] = len(merged)
				merged = append(merged, ra)
			}
		}
	}
	return merged
}

// resolveAttribute collapses an attribute's tri-state flags; unset
// participation flags default to true.
func resolveAttribute(attr model.AttributeSpec) model.ResolvedAttribute {
	boolOr := func(s model.OptionState, fallback bool) bool {
		if s.IsSet() {
			return s.Bool()
		}
		return fallback
	}
	return model.ResolvedAttribute{
		Name:       attr.Name,
		Kind:       attr.Kind,
		Collection: attr.Collection,
		PrimaryKey: attr.PrimaryKey,
		Nullable:   attr.Nullable,
		Init:       boolOr(attr.Init, true),
		Repr:       boolOr(attr.Repr, true),
		Compare:    boolOr(attr.Compare, true),
		HasDefault: attr.HasDefault(),
		HasFactory: attr.DefaultFactory != nil,
		Default:    attr.Default,
		Factory:    attr.DefaultFactory,
	}
}

// buildParams assembles the initializer parameter list from init-eligible
// attributes in merged order. Required parameters must precede optional
// ones; an inheritance order that violates this fails rather than being
// silently reordered.
func buildParams(class string, attrs []model.ResolvedAttribute) ([]model.Param, error) {
	var params []model.Param
	lastOptional := ""
	for _, attr := range attrs {
		if !attr.Init {
			continue
		}
		optional := attr.Optional()
		if !optional && lastOptional != "" {
			return nil, &ConfigError{
				Class: class,
				Field: attr.Name,
				Message: fmt.Sprintf(
					"required parameter %q follows optional parameter %q", attr.Name, lastOptional),
				Code: ErrRequiredAfterOptional,
			}
		}
		if optional {
			lastOptional = attr.Name
		}
		params = append(params, model.Param{Name: attr.Name, Optional: optional})
	}
	return params, nil
}
