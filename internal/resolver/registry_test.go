package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"declmap/internal/model"
)

func TestRegisterClassDuplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterClass(ClassInfo{Name: "User"}))

	err := reg.RegisterClass(ClassInfo{Name: "User"})
	require.Error(t, err)
	assert.True(t, IsConfigError(err, ErrDuplicateClass))
}

func TestRegisterClassUnknownBase(t *testing.T) {
	reg := NewRegistry()

	err := reg.RegisterClass(ClassInfo{Name: "Manager", Base: "Person"})
	require.Error(t, err)
	assert.True(t, IsConfigError(err, ErrUnknownBase))
	assert.Contains(t, err.Error(), `base class "Person" is not registered`)
}

func TestRegisterClassQualifiedNameDefaults(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterClass(ClassInfo{Name: "User"}))
	require.NoError(t, reg.MarkDataclass("User"))

	contract, err := reg.Resolve("User")
	require.NoError(t, err)
	assert.Equal(t, "User", contract.QualifiedName)
}

func TestSetOptionsUnknownKey(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterClass(ClassInfo{Name: "User"}))

	err := reg.SetOptions("User", map[string]bool{"init": true, "slots": true, "unknown": false})
	require.Error(t, err)

	var argErr *UnsupportedArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "unexpected dataclass argument(s): 'slots', 'unknown'", err.Error())
}

func TestSetOptionsCheckedUnknownKey(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterClass(ClassInfo{Name: "User"}))

	err := reg.SetOptionsChecked("User", map[string]any{"slots": true, "unknown": true})
	require.Error(t, err)
	assert.True(t, IsConfigError(err, ErrUnknownOption))
	assert.Contains(t, err.Error(), "dataclass argument(s) 'slots', 'unknown' are not accepted")
}

func TestSetOptionsCheckedRejectsNonBool(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterClass(ClassInfo{Name: "User"}))

	err := reg.SetOptionsChecked("User", map[string]any{"init": "yes"})
	require.Error(t, err)
	assert.True(t, IsConfigError(err, ErrUnknownOption))
}

func TestSetOptionsUnknownClass(t *testing.T) {
	reg := NewRegistry()

	err := reg.SetOptions("Ghost", map[string]bool{"init": true})
	require.Error(t, err)
	assert.True(t, IsConfigError(err, ErrUnknownClass))
}

func TestRegisterAttributeDuplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterClass(ClassInfo{Name: "User"}))
	require.NoError(t, reg.RegisterAttribute("User", model.NewAttribute("name", model.KindColumn)))

	err := reg.RegisterAttribute("User", model.NewAttribute("name", model.KindColumn))
	require.Error(t, err)
	assert.True(t, IsConfigError(err, ErrDuplicateAttribute))
	assert.Contains(t, err.Error(), "[E104] User.name:")
}

func TestRegisterAttributeInvalidKind(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterClass(ClassInfo{Name: "User"}))

	err := reg.RegisterAttribute("User", model.NewAttribute("name", model.Kind("widget")))
	require.Error(t, err)
	assert.True(t, IsConfigError(err, ErrInvalidKind))
}

func TestRegisterAttributeDefaultConflict(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterClass(ClassInfo{Name: "User"}))

	spec := model.NewAttribute("tags", model.KindColumn).
		WithDefault(model.Null{}).
		WithDefaultFactory(func() model.Value { return model.List{} })
	err := reg.RegisterAttribute("User", spec)
	require.Error(t, err)
	assert.True(t, IsConfigError(err, ErrDefaultConflict))
	assert.Contains(t, err.Error(), "cannot specify both default and default_factory")
}

func TestRegisterAttributeAfterResolve(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterClass(ClassInfo{Name: "User"}))
	require.NoError(t, reg.MarkDataclass("User"))
	require.NoError(t, reg.RegisterAttribute("User", model.NewAttribute("name", model.KindColumn)))

	_, err := reg.Resolve("User")
	require.NoError(t, err)

	// Plain attributes may still be added late.
	require.NoError(t, reg.RegisterAttribute("User", model.NewAttribute("note", model.KindColumn)))

	// Dataclass arguments on a resolved class are rejected.
	err = reg.RegisterAttribute("User", model.NewAttribute("age", model.KindColumn).WithInit(false))
	require.Error(t, err)
	assert.True(t, IsConfigError(err, ErrAlreadyResolved))
	assert.Contains(t, err.Error(), "dataclass argument(s): 'init'")
}

func TestRegisterAttributeOnBaseAfterSubclassResolve(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterClass(ClassInfo{Name: "Base"}))
	require.NoError(t, reg.RegisterClass(ClassInfo{Name: "Sub", Base: "Base"}))
	require.NoError(t, reg.MarkDataclass("Sub"))
	require.NoError(t, reg.RegisterAttribute("Sub", model.NewAttribute("name", model.KindColumn)))

	_, err := reg.Resolve("Sub")
	require.NoError(t, err)

	// A dataclass-argument attribute on the base would leave the cached
	// subclass contract stale, so it is rejected like a late attribute on
	// the resolved class itself.
	err = reg.RegisterAttribute("Base", model.NewAttribute("extra", model.KindColumn).WithRepr(false))
	require.Error(t, err)
	assert.True(t, IsConfigError(err, ErrAlreadyResolved))
	assert.Contains(t, err.Error(), `subclass "Sub" is already resolved`)

	// Plain attributes on the base stay allowed.
	require.NoError(t, reg.RegisterAttribute("Base", model.NewAttribute("note", model.KindColumn)))
}

func TestClassesListsRegisteredNames(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterClass(ClassInfo{Name: "A"}))
	require.NoError(t, reg.RegisterClass(ClassInfo{Name: "B", Base: "A"}))

	assert.ElementsMatch(t, []string{"A", "B"}, reg.Classes())
}
