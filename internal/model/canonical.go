package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces a deterministic encoding of a value for
// content-addressed hashing. This is the ONLY serialization that should be
// used for hash computation.
//
// Determinism rules:
//  1. Strings are NFC normalized and encoded without HTML escaping
//  2. Set elements are sorted by their encoded bytes (membership order
//     carries no meaning)
//  3. Instances encode their qualified class name plus compare-eligible
//     attribute values in merged declaration order
//  4. Instances of classes without unsafe_hash are rejected
func MarshalCanonical(v Value) ([]byte, error) {
	switch tv := v.(type) {
	case Null:
		return []byte("null"), nil
	case String:
		return canonicalString(string(tv))
	case Int:
		return []byte(fmt.Sprintf("%d", int64(tv))), nil
	case Bool:
		if tv {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case List:
		return canonicalElements('[', ']', tv, false)
	case Set:
		return canonicalElements('{', '}', tv, true)
	case *Instance:
		return canonicalInstance(tv)
	default:
		return nil, fmt.Errorf("unknown value type: %T", v)
	}
}

func canonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	// Encoder appends a newline.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func canonicalElements(open, close byte, elems []Value, sorted bool) ([]byte, error) {
	encoded := make([][]byte, len(elems))
	for i, e := range elems {
		b, err := MarshalCanonical(e)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		encoded[i] = b
	}
	if sorted {
		sort.Slice(encoded, func(i, j int) bool {
			return bytes.Compare(encoded[i], encoded[j]) < 0
		})
	}
	var buf bytes.Buffer
	buf.WriteByte(open)
	for i, b := range encoded {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(b)
	}
	buf.WriteByte(close)
	return buf.Bytes(), nil
}

func canonicalInstance(inst *Instance) ([]byte, error) {
	c := inst.Contract()
	if !c.Generate || !c.Options.UnsafeHash {
		return nil, fmt.Errorf("unhashable type: %q", c.QualifiedName)
	}

	var buf bytes.Buffer
	buf.WriteByte('(')
	name, err := canonicalString(c.QualifiedName)
	if err != nil {
		return nil, err
	}
	buf.Write(name)
	for _, attr := range c.Attributes {
		if !attr.Compare {
			continue
		}
		b, err := MarshalCanonical(inst.Get(attr.Name))
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", attr.Name, err)
		}
		buf.WriteByte(',')
		buf.Write(b)
	}
	buf.WriteByte(')')
	return buf.Bytes(), nil
}
