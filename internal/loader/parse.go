package loader

import (
	"fmt"

	"cuelang.org/go/cue"

	"declmap/internal/model"
)

// parseClasses extracts every class definition under the top-level "class"
// struct.
func parseClasses(v cue.Value) ([]ClassDef, error) {
	classVal := v.LookupPath(cue.ParsePath("class"))
	if !classVal.Exists() {
		return nil, &ParseError{
			Field:   "class",
			Message: "no class definitions found",
			Pos:     v.Pos(),
		}
	}

	iter, err := classVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterating class definitions: %w", err)
	}

	var defs []ClassDef
	for iter.Next() {
		def, err := parseClass(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return nil, &ParseError{
			Field:   "class",
			Message: "at least one class definition is required",
			Pos:     classVal.Pos(),
		}
	}
	return defs, nil
}

func parseClass(name string, v cue.Value) (ClassDef, error) {
	def := ClassDef{Name: name, Qualified: name}

	if qv := v.LookupPath(cue.ParsePath("qualified")); qv.Exists() {
		q, err := qv.String()
		if err != nil {
			return def, &ParseError{Field: name + ".qualified", Message: err.Error(), Pos: qv.Pos()}
		}
		def.Qualified = q
	}
	if tv := v.LookupPath(cue.ParsePath("table")); tv.Exists() {
		t, err := tv.String()
		if err != nil {
			return def, &ParseError{Field: name + ".table", Message: err.Error(), Pos: tv.Pos()}
		}
		def.Table = t
	}
	if bv := v.LookupPath(cue.ParsePath("base")); bv.Exists() {
		b, err := bv.String()
		if err != nil {
			return def, &ParseError{Field: name + ".base", Message: err.Error(), Pos: bv.Pos()}
		}
		def.Base = b
	}
	if dv := v.LookupPath(cue.ParsePath("dataclass")); dv.Exists() {
		d, err := dv.Bool()
		if err != nil {
			return def, &ParseError{Field: name + ".dataclass", Message: err.Error(), Pos: dv.Pos()}
		}
		def.Dataclass = d
	}

	if ov := v.LookupPath(cue.ParsePath("options")); ov.Exists() {
		opts, err := parseOptions(name, ov)
		if err != nil {
			return def, err
		}
		def.HasOptions = true
		def.Options = opts
	}

	attrs, err := parseAttributes(name, v)
	if err != nil {
		return def, err
	}
	def.Attributes = attrs
	return def, nil
}

// parseOptions reads the options struct as raw key/value pairs. Key
// validation is deferred to the registry's checked path so unrecognized
// keys produce the configuration error, not a parse error.
func parseOptions(class string, v cue.Value) (map[string]any, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, &ParseError{Field: class + ".options", Message: err.Error(), Pos: v.Pos()}
	}

	opts := make(map[string]any)
	for iter.Next() {
		key := iter.Label()
		if b, err := iter.Value().Bool(); err == nil {
			opts[key] = b
		} else {
			// Preserve the raw value; the registry rejects non-bool options.
			opts[key] = fmt.Sprint(iter.Value())
		}
	}
	return opts, nil
}

func parseAttributes(class string, v cue.Value) ([]AttributeDef, error) {
	av := v.LookupPath(cue.ParsePath("attributes"))
	if !av.Exists() {
		return nil, nil
	}

	iter, err := av.List()
	if err != nil {
		return nil, &ParseError{Field: class + ".attributes", Message: "attributes must be a list", Pos: av.Pos()}
	}

	var attrs []AttributeDef
	for iter.Next() {
		attr, err := parseAttribute(class, iter.Value())
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func parseAttribute(class string, v cue.Value) (AttributeDef, error) {
	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return AttributeDef{}, &ParseError{
			Field:   class + ".attributes",
			Message: "attribute name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return AttributeDef{}, &ParseError{Field: class + ".attributes.name", Message: err.Error(), Pos: nameVal.Pos()}
	}
	field := fmt.Sprintf("%s.%s", class, name)

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return AttributeDef{}, &ParseError{Field: field, Message: "attribute kind is required", Pos: v.Pos()}
	}
	kind, err := kindVal.String()
	if err != nil {
		return AttributeDef{}, &ParseError{Field: field + ".kind", Message: err.Error(), Pos: kindVal.Pos()}
	}

	spec := model.NewAttribute(name, model.Kind(kind))

	boolField := func(key string) (bool, bool, error) {
		fv := v.LookupPath(cue.ParsePath(key))
		if !fv.Exists() {
			return false, false, nil
		}
		b, err := fv.Bool()
		if err != nil {
			return false, false, &ParseError{Field: field + "." + key, Message: err.Error(), Pos: fv.Pos()}
		}
		return b, true, nil
	}

	if b, ok, err := boolField("init"); err != nil {
		return AttributeDef{}, err
	} else if ok {
		spec = spec.WithInit(b)
	}
	if b, ok, err := boolField("repr"); err != nil {
		return AttributeDef{}, err
	} else if ok {
		spec = spec.WithRepr(b)
	}
	if b, ok, err := boolField("compare"); err != nil {
		return AttributeDef{}, err
	} else if ok {
		spec = spec.WithCompare(b)
	}
	if b, ok, err := boolField("primary_key"); err != nil {
		return AttributeDef{}, err
	} else if ok && b {
		spec = spec.WithPrimaryKey()
	}
	if b, ok, err := boolField("nullable"); err != nil {
		return AttributeDef{}, err
	} else if ok && b {
		spec = spec.WithNullable()
	}

	if cv := v.LookupPath(cue.ParsePath("collection")); cv.Exists() {
		c, err := cv.String()
		if err != nil {
			return AttributeDef{}, &ParseError{Field: field + ".collection", Message: err.Error(), Pos: cv.Pos()}
		}
		spec = spec.WithCollection(model.CollectionKind(c))
	}

	if dv := v.LookupPath(cue.ParsePath("default")); dv.Exists() {
		val, err := parseValue(field+".default", dv, model.CollectionNone)
		if err != nil {
			return AttributeDef{}, err
		}
		spec = spec.WithDefault(val)
	}

	if fv := v.LookupPath(cue.ParsePath("default_factory")); fv.Exists() {
		shape := model.CollectionList
		if sv := v.LookupPath(cue.ParsePath("factory_kind")); sv.Exists() {
			s, err := sv.String()
			if err != nil {
				return AttributeDef{}, &ParseError{Field: field + ".factory_kind", Message: err.Error(), Pos: sv.Pos()}
			}
			shape = model.CollectionKind(s)
		}
		template, err := parseValue(field+".default_factory", fv, shape)
		if err != nil {
			return AttributeDef{}, err
		}
		// The factory clones the literal template per instance, so
		// mutable defaults are never shared.
		spec = spec.WithDefaultFactory(func() model.Value {
			return cloneValue(template)
		})
	}

	return AttributeDef{Spec: spec}, nil
}

// parseValue converts a concrete CUE value into a runtime value. List
// literals become sets when shape is CollectionSet.
func parseValue(field string, v cue.Value, shape model.CollectionKind) (model.Value, error) {
	switch v.Kind() {
	case cue.NullKind:
		return model.Null{}, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, &ParseError{Field: field, Message: err.Error(), Pos: v.Pos()}
		}
		return model.String(s), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, &ParseError{Field: field, Message: err.Error(), Pos: v.Pos()}
		}
		return model.Int(n), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, &ParseError{Field: field, Message: err.Error(), Pos: v.Pos()}
		}
		return model.Bool(b), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, &ParseError{Field: field, Message: err.Error(), Pos: v.Pos()}
		}
		var elems []model.Value
		for iter.Next() {
			e, err := parseValue(field, iter.Value(), model.CollectionNone)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		if shape == model.CollectionSet {
			return model.Set(elems), nil
		}
		return model.List(elems), nil
	case cue.FloatKind, cue.NumberKind:
		return nil, &ParseError{
			Field:   field,
			Message: "float values are not supported, use int instead",
			Pos:     v.Pos(),
		}
	default:
		return nil, &ParseError{
			Field:   field,
			Message: fmt.Sprintf("unsupported value kind: %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

// cloneValue deep-copies container values so factory results are never
// shared across instances.
func cloneValue(v model.Value) model.Value {
	switch tv := v.(type) {
	case model.List:
		out := make(model.List, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	case model.Set:
		out := make(model.Set, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
