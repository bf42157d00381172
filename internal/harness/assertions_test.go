package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pointScenarioDefs = `
class: Point: {
    options: {order: true, unsafe_hash: true}
    attributes: [
        {name: "x", kind: "column"},
        {name: "y", kind: "column"},
    ]
}
`

func TestAssertOrderingAndHashing(t *testing.T) {
	result := runYAML(t, `
name: ordering
description: Ordering and hashing assertions over generated comparisons.
defs: |`+indentDefs(pointScenarioDefs)+`
steps:
  - construct: Point
    as: a
    args: [1, 2]
  - construct: Point
    as: b
    args: [1, 3]
  - construct: Point
    as: a2
    args: [1, 2]
assertions:
  - {type: equal, target: $a, other: $a2}
  - {type: less, target: $a, other: $b}
  - {type: greater, target: $b, other: $a}
  - {type: hash_equal, target: $a, other: $a2}
  - {type: hash_not_equal, target: $a, other: $b}
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestAssertUnorderableAndUnhashable(t *testing.T) {
	result := runYAML(t, `
name: plain
description: Default options leave classes unordered and unhashable.
defs: |
  class: Plain: {
      dataclass: true
      attributes: [{name: "x", kind: "column"}]
  }
steps:
  - construct: Plain
    as: a
    args: [1]
  - construct: Plain
    as: b
    args: [2]
assertions:
  - {type: unorderable, target: $a, other: $b}
  - {type: unhashable, target: $a}
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestAssertFailuresAreReported(t *testing.T) {
	result := runYAML(t, `
name: failures
description: Failed assertions collect indexed messages.
defs: |`+indentDefs(pointScenarioDefs)+`
steps:
  - construct: Point
    as: a
    args: [1, 2]
  - construct: Point
    as: b
    args: [1, 3]
assertions:
  - {type: repr, target: $a, expect: "Point(x=9, y=9)"}
  - {type: equal, target: $a, other: $b}
  - {type: greater, target: $a, other: $b}
`)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "assertions[0]")
	assert.Contains(t, result.Errors[0], "Point(x=9, y=9)")
	assert.Contains(t, result.Errors[1], "instances not equal")
	assert.Contains(t, result.Errors[2], "not greater")
}

func TestAssertionErrorFormat(t *testing.T) {
	err := &AssertionError{
		Type:     AssertRepr,
		Expected: "Point(x=1, y=2)",
		Actual:   "Point(x=1, y=3)",
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: repr")
	assert.Contains(t, msg, "Expected: Point(x=1, y=2)")
	assert.Contains(t, msg, "Actual: Point(x=1, y=3)")
}

func TestAssertAttrMismatch(t *testing.T) {
	result := runYAML(t, `
name: attr-mismatch
description: Attribute assertions report the runtime repr of both sides.
defs: |`+indentDefs(pointScenarioDefs)+`
steps:
  - construct: Point
    as: a
    args: [1, 2]
assertions:
  - {type: attr, target: $a, attr: x, value: 7}
`)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "$a.x = 7")
	assert.Contains(t, result.Errors[0], "Actual: 1")
}
