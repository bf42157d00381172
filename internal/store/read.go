package store

import (
	"context"
	"fmt"
	"strings"

	"declmap/internal/model"
)

// ClassMeta is one row of the materialization metadata table.
type ClassMeta struct {
	QualifiedName string
	TableName     string
	CreatedAt     string
}

// SelectAll reads every persisted row for a contract, ordered by rowid so
// insertion order is stable. Each row maps column attribute names to
// runtime values.
func (s *Store) SelectAll(ctx context.Context, contract *model.ResolvedClassContract) ([]map[string]model.Value, error) {
	if err := checkIdentifiers(contract); err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	table := tableName(contract)
	cols := columnAttributes(contract)
	names := make([]string, len(cols))
	for i, attr := range cols {
		names[i] = attr.Name
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY rowid",
		strings.Join(names, ", "), table,
	)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	defer rows.Close()

	var out []map[string]model.Value
	for rows.Next() {
		raw := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("select from %s: scan: %w", table, err)
		}

		row := make(map[string]model.Value, len(names))
		for i, name := range names {
			v, err := fromSQLValue(raw[i])
			if err != nil {
				return nil, fmt.Errorf("select from %s: column %s: %w", table, name, err)
			}
			row[name] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}

	return out, nil
}

// Count returns the number of persisted rows for a contract.
func (s *Store) Count(ctx context.Context, contract *model.ResolvedClassContract) (int64, error) {
	if err := checkIdentifiers(contract); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	table := tableName(contract)
	var n int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Classes lists contracts that have been materialized, ordered by name.
func (s *Store) Classes(ctx context.Context) ([]ClassMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT qualified_name, table_name, created_at
		FROM declmap_classes
		ORDER BY qualified_name
	`)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	defer rows.Close()

	var out []ClassMeta
	for rows.Next() {
		var m ClassMeta
		if err := rows.Scan(&m.QualifiedName, &m.TableName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("list classes: scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return out, nil
}

// fromSQLValue converts a scanned driver value back into a runtime value.
func fromSQLValue(raw any) (model.Value, error) {
	switch tv := raw.(type) {
	case nil:
		return model.Null{}, nil
	case int64:
		return model.Int(tv), nil
	case string:
		return model.String(tv), nil
	case []byte:
		return model.String(tv), nil
	case bool:
		return model.Bool(tv), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", raw)
	}
}
