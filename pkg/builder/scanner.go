package builder

import (
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/marshallshelly/starfaves/pkg/runtime"
	"github.com/marshallshelly/starfaves/pkg/schema"
)

// scanIntoStruct scans the current row into dest, matching result columns
// to struct fields by column name. Unknown result columns are discarded.
func scanIntoStruct(rows pgx.Rows, dest any, table *schema.TableMetadata) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Pointer || destValue.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a pointer to struct")
	}
	destValue = destValue.Elem()

	fieldDescriptions := rows.FieldDescriptions()
	columnMap := make(map[string]int, len(fieldDescriptions))
	for i, fd := range fieldDescriptions {
		columnMap[fd.Name] = i
	}

	scanTargets := make([]any, len(fieldDescriptions))
	for _, col := range table.Columns {
		idx, ok := columnMap[col.Name]
		if !ok {
			continue
		}
		field := destValue.FieldByName(col.GoField)
		if !field.IsValid() || !field.CanSet() {
			continue
		}
		scanTargets[idx] = field.Addr().Interface()
	}

	for i := range scanTargets {
		if scanTargets[i] == nil {
			var discard any
			scanTargets[i] = &discard
		}
	}

	if err := rows.Scan(scanTargets...); err != nil {
		return fmt.Errorf("failed to scan row: %w", err)
	}
	return nil
}

// collectRows scans every row into a new T and closes rows.
func collectRows[T any](rows pgx.Rows, sql string, table *schema.TableMetadata) ([]T, error) {
	defer rows.Close()

	var results []T
	for rows.Next() {
		var item T
		if err := scanIntoStruct(rows, &item, table); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, rowsError(sql, err)
	}
	return results, nil
}

// countRows drains rows and returns how many there were.
func countRows(rows pgx.Rows, sql string) (int64, error) {
	defer rows.Close()

	var count int64
	for rows.Next() {
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, rowsError(sql, err)
	}
	return count, nil
}

// rowsError wraps an error surfaced while iterating rows. pgx reports
// statement failures there rather than from Query.
func rowsError(sql string, err error) error {
	return &runtime.QueryError{Query: sql, Err: runtime.TranslateError(err)}
}

// omitWhenUnset reports whether an INSERT may leave col to the database:
// auto-increment keys and columns with a DEFAULT whose field is still the
// zero value. false is a real value for booleans and is always written.
func omitWhenUnset(col schema.ColumnMetadata, field reflect.Value) bool {
	if !col.AutoIncrement && col.Default == nil {
		return false
	}
	if field.Kind() == reflect.Bool {
		return false
	}
	return field.IsZero()
}

// insertRows extracts the columns and per-row values of an INSERT. A column
// is written when any row sets it; rows that leave it unset get DEFAULT,
// flagged in the returned mask.
func insertRows(models []reflect.Value, table *schema.TableMetadata) ([]string, [][]any, [][]bool, error) {
	fields := make([][]reflect.Value, len(models))
	for i, model := range models {
		for model.Kind() == reflect.Pointer {
			model = model.Elem()
		}
		if model.Kind() != reflect.Struct {
			return nil, nil, nil, fmt.Errorf("model must be a struct")
		}
		row := make([]reflect.Value, len(table.Columns))
		for j, col := range table.Columns {
			row[j] = model.FieldByName(col.GoField)
		}
		fields[i] = row
	}

	var columns []string
	var included []int
	for j, col := range table.Columns {
		for _, row := range fields {
			if row[j].IsValid() && !omitWhenUnset(col, row[j]) {
				columns = append(columns, col.Name)
				included = append(included, j)
				break
			}
		}
	}

	values := make([][]any, len(fields))
	useDefault := make([][]bool, len(fields))
	for i, row := range fields {
		values[i] = make([]any, len(included))
		useDefault[i] = make([]bool, len(included))
		for k, j := range included {
			if omitWhenUnset(table.Columns[j], row[j]) {
				useDefault[i][k] = true
				continue
			}
			values[i][k] = row[j].Interface()
		}
	}

	return columns, values, useDefault, nil
}
