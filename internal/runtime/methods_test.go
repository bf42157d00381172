package runtime

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"declmap/internal/model"
)

func mustNew(t *testing.T, class *Class, args ...model.Value) *model.Instance {
	t.Helper()
	inst, err := class.New(args, nil)
	require.NoError(t, err)
	return inst
}

func pointSpecs() []model.AttributeSpec {
	return []model.AttributeSpec{
		model.NewAttribute("x", model.KindColumn),
		model.NewAttribute("y", model.KindColumn),
	}
}

func TestReprGenerated(t *testing.T) {
	class := buildClass(t, "User", nil, userSpecs())
	inst := mustNew(t, class, model.String("ed"))

	assert.Equal(t, "User(id=None, name='ed', nick=None)", class.Repr(inst))
}

func TestReprDisabledUsesIdentityForm(t *testing.T) {
	class := buildClass(t, "User", map[string]bool{"repr": false}, userSpecs())
	inst := mustNew(t, class, model.String("ed"))

	assert.Equal(t, "<User object at 0x000000000001>", class.Repr(inst))
}

func TestEqualAndNotEqual(t *testing.T) {
	class := buildClass(t, "Point", nil, pointSpecs())

	a := mustNew(t, class, model.Int(1), model.Int(2))
	b := mustNew(t, class, model.Int(1), model.Int(2))
	c := mustNew(t, class, model.Int(1), model.Int(3))

	assert.True(t, class.Equal(a, b))
	assert.False(t, class.Equal(a, c))
}

func TestEqualDisabledIsIdentity(t *testing.T) {
	class := buildClass(t, "Point", map[string]bool{"eq": false}, pointSpecs())

	a := mustNew(t, class, model.Int(1), model.Int(2))
	b := mustNew(t, class, model.Int(1), model.Int(2))

	assert.True(t, class.Equal(a, a))
	assert.False(t, class.Equal(a, b))
}

func TestOrderingOperators(t *testing.T) {
	class := buildClass(t, "Point", map[string]bool{"order": true}, pointSpecs())

	p12 := mustNew(t, class, model.Int(1), model.Int(2))
	p13 := mustNew(t, class, model.Int(1), model.Int(3))
	p12b := mustNew(t, class, model.Int(1), model.Int(2))

	less, err := class.Less(p12, p13)
	require.NoError(t, err)
	assert.True(t, less)

	le, err := class.LessEqual(p12, p12b)
	require.NoError(t, err)
	assert.True(t, le)

	greater, err := class.Greater(p13, p12)
	require.NoError(t, err)
	assert.True(t, greater)

	ge, err := class.GreaterEqual(p12, p13)
	require.NoError(t, err)
	assert.False(t, ge)
}

func TestOrderingSortsInstances(t *testing.T) {
	class := buildClass(t, "Point", map[string]bool{"order": true}, pointSpecs())

	insts := []*model.Instance{
		mustNew(t, class, model.Int(2), model.Int(0)),
		mustNew(t, class, model.Int(1), model.Int(9)),
		mustNew(t, class, model.Int(1), model.Int(1)),
	}
	sort.Slice(insts, func(i, j int) bool {
		less, err := class.Less(insts[i], insts[j])
		require.NoError(t, err)
		return less
	})

	assert.Equal(t, "Point(x=1, y=1)", class.Repr(insts[0]))
	assert.Equal(t, "Point(x=1, y=9)", class.Repr(insts[1]))
	assert.Equal(t, "Point(x=2, y=0)", class.Repr(insts[2]))
}

func TestOrderingDisabled(t *testing.T) {
	class := buildClass(t, "Point", nil, pointSpecs())

	a := mustNew(t, class, model.Int(1), model.Int(2))
	b := mustNew(t, class, model.Int(1), model.Int(3))

	_, err := class.Less(a, b)
	require.Error(t, err)
	assert.True(t, IsUnorderable(err))
}

func TestOrderingCrossClass(t *testing.T) {
	left := buildClass(t, "A", map[string]bool{"order": true}, pointSpecs())
	right := buildClass(t, "B", map[string]bool{"order": true}, pointSpecs())

	a := mustNew(t, left, model.Int(1), model.Int(2))
	b := mustNew(t, right, model.Int(1), model.Int(2))

	_, err := left.Less(a, b)
	require.Error(t, err)
	assert.True(t, IsUnorderable(err))

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeCrossClass, re.Code)
	assert.Contains(t, re.Message, "cannot compare instances of A and B")
}

func TestHashEnabled(t *testing.T) {
	class := buildClass(t, "Point", map[string]bool{"unsafe_hash": true}, pointSpecs())

	a := mustNew(t, class, model.Int(1), model.Int(2))
	b := mustNew(t, class, model.Int(1), model.Int(2))
	c := mustNew(t, class, model.Int(9), model.Int(2))

	ha, err := class.Hash(a)
	require.NoError(t, err)
	hb, err := class.Hash(b)
	require.NoError(t, err)
	hc, err := class.Hash(c)
	require.NoError(t, err)

	assert.Equal(t, ha, hb, "equal instances hash alike")
	assert.NotEqual(t, ha, hc)
}

func TestHashDisabled(t *testing.T) {
	class := buildClass(t, "Point", nil, pointSpecs())
	inst := mustNew(t, class, model.Int(1), model.Int(2))

	_, err := class.Hash(inst)
	require.Error(t, err)
	assert.True(t, IsUnhashable(err))
	assert.Contains(t, err.Error(), `unhashable type: "Point"`)
}

func TestHashDisabledEvenWithEq(t *testing.T) {
	class := buildClass(t, "Point", map[string]bool{"eq": true}, pointSpecs())
	inst := mustNew(t, class, model.Int(1), model.Int(2))

	_, err := class.Hash(inst)
	require.Error(t, err)
	assert.True(t, IsUnhashable(err), "eq alone does not make the class hashable")
}

func TestReplace(t *testing.T) {
	class := buildClass(t, "User", nil, userSpecs())
	orig := mustNew(t, class, model.String("ed"))

	repl, err := class.Replace(orig, map[string]model.Value{"nick": model.String("e")})
	require.NoError(t, err)

	assert.Equal(t, model.String("ed"), repl.Get("name"))
	assert.Equal(t, model.String("e"), repl.Get("nick"))
	assert.Equal(t, model.Null{}, orig.Get("nick"), "the source instance is untouched")
	assert.NotEqual(t, orig.Identity(), repl.Identity())
}

func TestReplaceUnknownOverride(t *testing.T) {
	class := buildClass(t, "User", nil, userSpecs())
	orig := mustNew(t, class, model.String("ed"))

	_, err := class.Replace(orig, map[string]model.Value{"id": model.Int(1)})
	require.Error(t, err)

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeUnexpectedArgument, re.Code, "init=false attributes cannot be overridden")
}

func TestAsMapAndAsTuple(t *testing.T) {
	class := buildClass(t, "User", nil, userSpecs())
	inst := mustNew(t, class, model.String("ed"))

	m := class.AsMap(inst)
	assert.Equal(t, model.Null{}, m["id"])
	assert.Equal(t, model.String("ed"), m["name"])
	assert.Equal(t, model.Null{}, m["nick"])

	tuple := class.AsTuple(inst)
	assert.Equal(t, []model.Value{model.Null{}, model.String("ed"), model.Null{}}, tuple)
}
