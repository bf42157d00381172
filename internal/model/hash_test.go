package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashableContract() *ResolvedClassContract {
	opts := DefaultOptions
	opts.UnsafeHash = true
	return testContract("Point", opts,
		eligible("x", KindColumn),
		eligible("y", KindColumn),
	)
}

func TestHashValueDeterminism(t *testing.T) {
	contract := hashableContract()
	a := testInstance(contract, "a", map[string]Value{"x": Int(1), "y": Int(2)})
	b := testInstance(contract, "b", map[string]Value{"x": Int(1), "y": Int(2)})

	h1, err := HashValue(a)
	require.NoError(t, err)
	h2, err := HashValue(b)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "equal field values must hash alike")
}

func TestHashValueChangesWithInput(t *testing.T) {
	contract := hashableContract()
	a := testInstance(contract, "a", map[string]Value{"x": Int(1), "y": Int(2)})
	b := testInstance(contract, "b", map[string]Value{"x": Int(1), "y": Int(3)})

	h1 := MustHashValue(a)
	h2 := MustHashValue(b)

	assert.NotEqual(t, h1, h2, "different field values should produce different hashes")
}

func TestHashValueIncludesClassName(t *testing.T) {
	opts := DefaultOptions
	opts.UnsafeHash = true
	left := testContract("A", opts, eligible("x", KindColumn))
	right := testContract("B", opts, eligible("x", KindColumn))

	a := testInstance(left, "a", map[string]Value{"x": Int(1)})
	b := testInstance(right, "b", map[string]Value{"x": Int(1)})

	assert.NotEqual(t, MustHashValue(a), MustHashValue(b),
		"same shape under different classes hashes differently")
}

func TestHashValueUnhashableInstance(t *testing.T) {
	contract := testContract("User", DefaultOptions, eligible("name", KindColumn))
	inst := testInstance(contract, "a", map[string]Value{"name": String("ed")})

	_, err := HashValue(inst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unhashable type")
}

func TestHashValuePrimitives(t *testing.T) {
	assert.Equal(t, MustHashValue(String("x")), MustHashValue(String("x")))
	assert.NotEqual(t, MustHashValue(String("x")), MustHashValue(String("y")))
	assert.NotEqual(t, MustHashValue(Int(1)), MustHashValue(String("1")),
		"canonical encodings of different types differ")
}
