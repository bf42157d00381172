package model

import (
	"fmt"
	"strings"
)

// Repr renders a runtime value in diagnostic form.
//
// Instances of classes with repr enabled render as
// QualifiedName(attr1=val1, attr2=val2, ...), enumerating repr-eligible
// attributes in merged declaration order with nested values rendered
// recursively. Classes with repr disabled (or no generation contract) fall
// back to the identity form <QualifiedName object at 0xIDENTITY>.
func Repr(v Value) string {
	switch tv := v.(type) {
	case Null:
		return "None"
	case String:
		return reprString(string(tv))
	case Int:
		return fmt.Sprintf("%d", int64(tv))
	case Bool:
		if tv {
			return "True"
		}
		return "False"
	case List:
		parts := make([]string, len(tv))
		for i, e := range tv {
			parts[i] = Repr(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Set:
		parts := make([]string, len(tv))
		for i, e := range tv {
			parts[i] = Repr(e)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Instance:
		return instanceRepr(tv)
	default:
		return fmt.Sprintf("<unknown %T>", v)
	}
}

func reprString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

func instanceRepr(inst *Instance) string {
	c := inst.Contract()
	if !c.Generate || !c.Options.Repr {
		return fmt.Sprintf("<%s object at 0x%s>", c.QualifiedName, inst.Identity())
	}

	var b strings.Builder
	b.WriteString(c.QualifiedName)
	b.WriteByte('(')
	first := true
	for _, attr := range c.Attributes {
		if !attr.Repr {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(attr.Name)
		b.WriteByte('=')
		b.WriteString(Repr(inst.Get(attr.Name)))
	}
	b.WriteByte(')')
	return b.String()
}
