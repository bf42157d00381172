package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"declmap/internal/model"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
// This prevents SQL injection via identifier interpolation.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// checkIdentifiers validates the contract's table and column names before
// they are interpolated into SQL. Identifiers can't be parameterized, so
// anything outside the pattern is rejected.
func checkIdentifiers(contract *model.ResolvedClassContract) error {
	table := tableName(contract)
	if !validIdentifier.MatchString(table) {
		return fmt.Errorf("invalid table name %q: must match pattern %s", table, validIdentifier.String())
	}
	for _, attr := range columnAttributes(contract) {
		if !validIdentifier.MatchString(attr.Name) {
			return fmt.Errorf("invalid column name %q: must match pattern %s", attr.Name, validIdentifier.String())
		}
	}
	return nil
}

// CreateTable materializes the table backing a resolved class contract.
// Only column attributes are persisted; relationships, composites, and
// synonyms are runtime-only surfaces. The primary key column is declared
// INTEGER PRIMARY KEY AUTOINCREMENT so inserts without an explicit key
// receive one from SQLite.
//
// Uses CREATE TABLE IF NOT EXISTS and ON CONFLICT DO NOTHING on the
// metadata row, so calling it twice for the same contract is safe.
func (s *Store) CreateTable(ctx context.Context, contract *model.ResolvedClassContract) error {
	if err := checkIdentifiers(contract); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	table := tableName(contract)
	cols := columnAttributes(contract)
	if len(cols) == 0 {
		return fmt.Errorf("create table %s: contract has no column attributes", table)
	}

	defs := make([]string, 0, len(cols))
	names := make([]string, 0, len(cols))
	for _, attr := range cols {
		defs = append(defs, columnDef(attr))
		names = append(names, attr.Name)
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	colsJSON, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("create table %s: marshal columns: %w", table, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO declmap_classes (qualified_name, table_name, columns)
		VALUES (?, ?, ?)
		ON CONFLICT(qualified_name) DO NOTHING
	`, contract.QualifiedName, table, string(colsJSON))
	if err != nil {
		return fmt.Errorf("create table %s: record metadata: %w", table, err)
	}

	return nil
}

// Insert persists an instance's column attributes as one row. When the
// primary key column is unset (null), SQLite assigns it and the generated
// value is written back into the instance.
func (s *Store) Insert(ctx context.Context, inst *model.Instance) error {
	contract := inst.Contract()
	if err := checkIdentifiers(contract); err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	table := tableName(contract)

	var (
		names        []string
		placeholders []string
		args         []any
		pkAttr       string
	)
	for _, attr := range columnAttributes(contract) {
		v := inst.Get(attr.Name)
		if attr.PrimaryKey {
			pkAttr = attr.Name
			if _, unset := v.(model.Null); unset {
				continue
			}
		}
		sqlVal, err := toSQLValue(v)
		if err != nil {
			return fmt.Errorf("insert into %s: column %s: %w", table, attr.Name, err)
		}
		names = append(names, attr.Name)
		placeholders = append(placeholders, "?")
		args = append(args, sqlVal)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(names, ", "), strings.Join(placeholders, ", "),
	)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}

	if pkAttr != "" {
		if _, unset := inst.Get(pkAttr).(model.Null); unset {
			id, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("insert into %s: last insert id: %w", table, err)
			}
			inst.Set(pkAttr, model.Int(id))
		}
	}

	return nil
}

// tableName resolves the contract's table, falling back to the lowercased
// class name when no table was declared.
func tableName(contract *model.ResolvedClassContract) string {
	if contract.Table != "" {
		return contract.Table
	}
	return strings.ToLower(contract.ClassName)
}

func columnAttributes(contract *model.ResolvedClassContract) []model.ResolvedAttribute {
	var cols []model.ResolvedAttribute
	for _, attr := range contract.Attributes {
		if attr.Kind == model.KindColumn {
			cols = append(cols, attr)
		}
	}
	return cols
}

func columnDef(attr model.ResolvedAttribute) string {
	if attr.PrimaryKey {
		return attr.Name + " INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	var b strings.Builder
	b.WriteString(attr.Name)
	b.WriteString(" TEXT")
	if !attr.Nullable {
		b.WriteString(" NOT NULL")
	}
	return b.String()
}

// toSQLValue converts a runtime value into a driver-compatible value.
// Containers and instances are not persistable.
func toSQLValue(v model.Value) (any, error) {
	switch tv := v.(type) {
	case model.Null:
		return nil, nil
	case model.String:
		return string(tv), nil
	case model.Int:
		return int64(tv), nil
	case model.Bool:
		return bool(tv), nil
	default:
		return nil, fmt.Errorf("value of type %T cannot be stored", v)
	}
}
