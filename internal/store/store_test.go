package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"declmap/internal/loader"
	"declmap/internal/model"
	"declmap/internal/runtime"
)

const userDefs = `
class: User: {
	qualified: "app.User"
	table:     "users"
	dataclass: true
	attributes: [
		{name: "id", kind: "column", primary_key: true, init: false},
		{name: "name", kind: "column"},
		{name: "nick", kind: "column", nullable: true, default: null},
		{name: "addresses", kind: "relationship", collection: "list", default: null},
	]
}
`

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func userContract(t *testing.T) *model.ResolvedClassContract {
	t.Helper()
	reg, _, err := loader.LoadString(userDefs)
	require.NoError(t, err)
	contract, err := reg.Resolve("User")
	require.NoError(t, err)
	return contract
}

func TestOpenAppliesPragmas(t *testing.T) {
	st := openTestStore(t)

	assert.NoError(t, st.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, st.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, st.verifyPragma("busy_timeout", "5000"))
}

func TestCreateTableIdempotent(t *testing.T) {
	st := openTestStore(t)
	contract := userContract(t)
	ctx := context.Background()

	require.NoError(t, st.CreateTable(ctx, contract))
	require.NoError(t, st.CreateTable(ctx, contract), "second run is a no-op")

	metas, err := st.Classes(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "app.User", metas[0].QualifiedName)
	assert.Equal(t, "users", metas[0].TableName)
	assert.NotEmpty(t, metas[0].CreatedAt)
}

func TestCreateTableNoColumns(t *testing.T) {
	st := openTestStore(t)
	reg, _, err := loader.LoadString(`
class: Rel: {
	dataclass: true
	attributes: [{name: "links", kind: "relationship", collection: "list", default: null}]
}
`)
	require.NoError(t, err)
	contract, err := reg.Resolve("Rel")
	require.NoError(t, err)

	err = st.CreateTable(context.Background(), contract)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no column attributes")
}

func TestInsertAssignsPrimaryKey(t *testing.T) {
	st := openTestStore(t)
	contract := userContract(t)
	ctx := context.Background()
	require.NoError(t, st.CreateTable(ctx, contract))

	class := runtime.Bind(contract)
	inst, err := class.New([]model.Value{model.String("ed")}, nil)
	require.NoError(t, err)
	require.Equal(t, model.Null{}, inst.Get("id"))

	require.NoError(t, st.Insert(ctx, inst))
	assert.Equal(t, model.Int(1), inst.Get("id"), "generated key is written back")

	second, err := class.New([]model.Value{model.String("wendy")}, nil)
	require.NoError(t, err)
	require.NoError(t, st.Insert(ctx, second))
	assert.Equal(t, model.Int(2), second.Get("id"))
}

func TestInsertKeepsExplicitPrimaryKey(t *testing.T) {
	st := openTestStore(t)
	contract := userContract(t)
	ctx := context.Background()
	require.NoError(t, st.CreateTable(ctx, contract))

	class := runtime.Bind(contract)
	inst, err := class.NewKwargs(map[string]model.Value{
		"id":   model.Int(42),
		"name": model.String("ed"),
	})
	require.NoError(t, err)

	require.NoError(t, st.Insert(ctx, inst))
	assert.Equal(t, model.Int(42), inst.Get("id"))
}

func TestSelectAllRoundTrip(t *testing.T) {
	st := openTestStore(t)
	contract := userContract(t)
	ctx := context.Background()
	require.NoError(t, st.CreateTable(ctx, contract))

	class := runtime.Bind(contract)
	for _, name := range []string{"ed", "wendy", "fred"} {
		inst, err := class.New([]model.Value{model.String(name)}, nil)
		require.NoError(t, err)
		require.NoError(t, st.Insert(ctx, inst))
	}

	rows, err := st.SelectAll(ctx, contract)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, model.Int(1), rows[0]["id"])
	assert.Equal(t, model.String("ed"), rows[0]["name"])
	assert.Equal(t, model.Null{}, rows[0]["nick"])
	assert.Equal(t, model.String("wendy"), rows[1]["name"])
	assert.Equal(t, model.String("fred"), rows[2]["name"])

	n, err := st.Count(ctx, contract)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestInsertRejectsContainerValues(t *testing.T) {
	st := openTestStore(t)
	reg, _, err := loader.LoadString(`
class: Doc: {
	dataclass: true
	table: "docs"
	attributes: [
		{name: "id", kind: "column", primary_key: true, init: false},
		{name: "tags", kind: "column"},
	]
}
`)
	require.NoError(t, err)
	contract, err := reg.Resolve("Doc")
	require.NoError(t, err)
	require.NoError(t, st.CreateTable(context.Background(), contract))

	class := runtime.Bind(contract)
	inst, err := class.New([]model.Value{model.List{model.String("a")}}, nil)
	require.NoError(t, err)

	err = st.Insert(context.Background(), inst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be stored")
}

func TestRejectsHostileTableName(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	evil := &model.ResolvedClassContract{
		ClassName:     "Evil",
		QualifiedName: "Evil",
		Table:         "evil (x TEXT); DROP TABLE declmap_classes; --",
		Attributes: []model.ResolvedAttribute{
			{Name: "x", Kind: model.KindColumn, Init: true, Repr: true, Compare: true},
		},
	}

	err := st.CreateTable(ctx, evil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")

	metas, err := st.Classes(ctx)
	require.NoError(t, err, "the metadata table survives untouched")
	assert.Empty(t, metas)

	inst := model.NewInstance(evil, "000000000001")
	inst.Set("x", model.String("v"))
	err = st.Insert(ctx, inst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")

	_, err = st.SelectAll(ctx, evil)
	require.Error(t, err)
	_, err = st.Count(ctx, evil)
	require.Error(t, err)
}

func TestRejectsHostileColumnName(t *testing.T) {
	st := openTestStore(t)

	bad := &model.ResolvedClassContract{
		ClassName: "Doc",
		Table:     "docs",
		Attributes: []model.ResolvedAttribute{
			{Name: "body, extra TEXT); DROP TABLE docs; --", Kind: model.KindColumn},
		},
	}

	err := st.CreateTable(context.Background(), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid column name")
}

func TestTableNameFallback(t *testing.T) {
	contract := &model.ResolvedClassContract{ClassName: "OrderLine"}
	assert.Equal(t, "orderline", tableName(contract))

	contract.Table = "order_lines"
	assert.Equal(t, "order_lines", tableName(contract))
}
