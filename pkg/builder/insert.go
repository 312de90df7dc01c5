package builder

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// Values sets the values to insert (single or multiple rows).
func (q *InsertQuery[T]) Values(values ...T) *InsertQuery[T] {
	q.values = append(q.values, values...)
	return q
}

// Returning specifies columns to return after insert.
func (q *InsertQuery[T]) Returning(columns ...string) *InsertQuery[T] {
	q.returning = columns
	return q
}

// ToSQL generates the INSERT SQL and arguments.
func (q *InsertQuery[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if len(q.values) == 0 {
		return "", nil, fmt.Errorf("no values to insert")
	}

	models := make([]reflect.Value, len(q.values))
	for i := range q.values {
		models[i] = reflect.ValueOf(q.values[i])
	}
	columns, rows, useDefault, err := insertRows(models, q.table)
	if err != nil {
		return "", nil, fmt.Errorf("failed to extract values: %w", err)
	}

	var sql strings.Builder
	var args []any
	paramNum := 1

	sql.WriteString("INSERT INTO ")
	sql.WriteString(ident(q.table.Name))

	if len(columns) == 0 {
		if len(rows) > 1 {
			return "", nil, fmt.Errorf("multi-row insert into %s with no explicit columns", q.table.Name)
		}
		sql.WriteString(" DEFAULT VALUES")
	} else {
		sql.WriteString(" (")
		sql.WriteString(identList(columns))
		sql.WriteString(") VALUES ")

		valueClauses := make([]string, len(rows))
		for i, row := range rows {
			placeholders := make([]string, len(row))
			for j, value := range row {
				if useDefault[i][j] {
					placeholders[j] = "DEFAULT"
					continue
				}
				placeholders[j] = fmt.Sprintf("$%d", paramNum)
				paramNum++
				args = append(args, value)
			}
			valueClauses[i] = "(" + strings.Join(placeholders, ", ") + ")"
		}
		sql.WriteString(strings.Join(valueClauses, ", "))
	}

	if len(q.returning) > 0 {
		sql.WriteString(" RETURNING ")
		sql.WriteString(identList(q.returning))
	}

	return sql.String(), args, nil
}

// Exec executes the INSERT query and returns the number of inserted rows.
func (q *InsertQuery[T]) Exec(ctx context.Context) (int64, error) {
	sql, args, err := q.ToSQL()
	if err != nil {
		return 0, err
	}
	db, err := q.db.querier()
	if err != nil {
		return 0, err
	}

	if len(q.returning) == 0 {
		return db.Exec(ctx, sql, args...)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return countRows(rows, sql)
}

// ExecReturning executes the INSERT and returns the inserted rows with
// database-generated values filled in.
func (q *InsertQuery[T]) ExecReturning(ctx context.Context) ([]T, error) {
	if len(q.returning) == 0 {
		q.Returning("*")
	}

	sql, args, err := q.ToSQL()
	if err != nil {
		return nil, err
	}
	db, err := q.db.querier()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collectRows[T](rows, sql, q.table)
}
