package builder

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/marshallshelly/starfaves/pkg/schema"
)

// preload loads the relationship paths for items, which must be addressable
// struct values of table's model type. Each path is loaded with one query
// per relationship level, however many items there are.
func (d *DB) preload(ctx context.Context, table *schema.TableMetadata, items []reflect.Value, paths []string) error {
	heads, nested := splitPaths(paths)

	for _, head := range heads {
		rel := table.GetRelationship(head)
		if rel == nil {
			return fmt.Errorf("relationship %s not found on %s", head, table.Name)
		}

		target, err := d.reg.Get(rel.TargetType)
		if err != nil {
			return fmt.Errorf("target table %s not registered: %w", rel.TargetTable, err)
		}

		switch rel.Type {
		case schema.BelongsTo:
			err = d.loadBelongsTo(ctx, table, target, items, rel)
		case schema.HasMany:
			err = d.loadHasMany(ctx, table, target, items, rel)
		default:
			err = fmt.Errorf("unsupported relationship type: %s", rel.Type)
		}
		if err != nil {
			return fmt.Errorf("failed to load relationship %s: %w", head, err)
		}

		if rest := nested[head]; len(rest) > 0 {
			children := relatedItems(items, rel)
			if len(children) == 0 {
				continue
			}
			if err := d.preload(ctx, target, children, rest); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadBelongsTo loads belongsTo relationships.
// Example: Favorite belongsTo Planet (favorite.planet_id -> planet.id)
func (d *DB) loadBelongsTo(ctx context.Context, source, target *schema.TableMetadata, items []reflect.Value, rel *schema.RelationshipMetadata) error {
	fkCol := source.Column(rel.ForeignKey)
	if fkCol == nil {
		return fmt.Errorf("foreign key column %s not found on %s", rel.ForeignKey, source.Name)
	}
	refCol := target.Column(rel.References)
	if refCol == nil {
		return fmt.Errorf("referenced column %s not found on %s", rel.References, target.Name)
	}

	keys, owners := collectKeys(items, fkCol.GoField)
	if len(owners) == 0 {
		return nil
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = ANY($1)", ident(target.Name), ident(refCol.Name))
	return d.eachRelated(ctx, sql, keys, target, func(related reflect.Value) {
		key, ok := keyOf(related.Elem().FieldByName(refCol.GoField))
		if !ok {
			return
		}
		for _, idx := range owners[key] {
			field := items[idx].FieldByName(rel.SourceField)
			if !field.IsValid() || !field.CanSet() {
				continue
			}
			if field.Kind() == reflect.Pointer {
				field.Set(related)
			} else {
				field.Set(related.Elem())
			}
		}
	})
}

// loadHasMany loads hasMany relationships. Every item ends up with a
// non-nil slice, empty when nothing references it.
// Example: User hasMany Favorites (favorite.user_id -> user.id)
func (d *DB) loadHasMany(ctx context.Context, source, target *schema.TableMetadata, items []reflect.Value, rel *schema.RelationshipMetadata) error {
	refCol := source.Column(rel.References)
	if refCol == nil {
		return fmt.Errorf("referenced column %s not found on %s", rel.References, source.Name)
	}
	fkCol := target.Column(rel.ForeignKey)
	if fkCol == nil {
		return fmt.Errorf("foreign key column %s not found on %s", rel.ForeignKey, target.Name)
	}

	for _, item := range items {
		field := item.FieldByName(rel.SourceField)
		if field.IsValid() && field.CanSet() {
			field.Set(reflect.MakeSlice(field.Type(), 0, 0))
		}
	}

	keys, owners := collectKeys(items, refCol.GoField)
	if len(owners) == 0 {
		return nil
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = ANY($1)", ident(target.Name), ident(fkCol.Name))
	if target.PrimaryKey != nil {
		sql += " ORDER BY " + identList(target.PrimaryKey.Columns)
	}

	return d.eachRelated(ctx, sql, keys, target, func(related reflect.Value) {
		key, ok := keyOf(related.Elem().FieldByName(fkCol.GoField))
		if !ok {
			return
		}
		for _, idx := range owners[key] {
			field := items[idx].FieldByName(rel.SourceField)
			if !field.IsValid() || !field.CanSet() {
				continue
			}
			elem := related.Elem()
			if field.Type().Elem().Kind() == reflect.Pointer {
				elem = related
			}
			field.Set(reflect.Append(field, elem))
		}
	})
}

// eachRelated runs sql with keys as $1 and hands every scanned row, as a
// pointer to a new target model, to fn.
func (d *DB) eachRelated(ctx context.Context, sql string, keys reflect.Value, target *schema.TableMetadata, fn func(related reflect.Value)) error {
	db, err := d.querier()
	if err != nil {
		return err
	}

	rows, err := db.Query(ctx, sql, keys.Interface())
	if err != nil {
		return fmt.Errorf("failed to query related records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		related := reflect.New(target.GoType)
		if err := scanIntoStruct(rows, related.Interface(), target); err != nil {
			return fmt.Errorf("failed to scan related record: %w", err)
		}
		fn(related)
	}
	if err := rows.Err(); err != nil {
		return rowsError(sql, err)
	}
	return nil
}

// collectKeys gathers the distinct non-null values of field across items as
// a typed slice, and the item indexes holding each value.
func collectKeys(items []reflect.Value, field string) (reflect.Value, map[any][]int) {
	owners := make(map[any][]int)
	var keys reflect.Value

	for i, item := range items {
		value := item.FieldByName(field)
		key, ok := keyOf(value)
		if !ok {
			continue
		}
		if _, seen := owners[key]; !seen {
			for value.Kind() == reflect.Pointer {
				value = value.Elem()
			}
			if !keys.IsValid() {
				keys = reflect.MakeSlice(reflect.SliceOf(value.Type()), 0, len(items))
			}
			keys = reflect.Append(keys, value)
		}
		owners[key] = append(owners[key], i)
	}
	return keys, owners
}

// keyOf normalises a key field for map lookups so that, for example, an int
// foreign key matches an int64 primary key. Nil pointers and zero values
// have no key.
func keyOf(value reflect.Value) (any, bool) {
	if !value.IsValid() {
		return nil, false
	}
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, false
		}
		value = value.Elem()
	}
	if value.IsZero() {
		return nil, false
	}

	switch value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(value.Uint()), true
	default:
		return value.Interface(), true
	}
}

// relatedItems returns the loaded targets of rel across items as addressable
// struct values, ready for the next preload level.
func relatedItems(items []reflect.Value, rel *schema.RelationshipMetadata) []reflect.Value {
	var children []reflect.Value
	for _, item := range items {
		field := item.FieldByName(rel.SourceField)
		if !field.IsValid() {
			continue
		}
		switch field.Kind() {
		case reflect.Pointer:
			if !field.IsNil() {
				children = append(children, field.Elem())
			}
		case reflect.Slice:
			for j := 0; j < field.Len(); j++ {
				elem := field.Index(j)
				if elem.Kind() == reflect.Pointer {
					if elem.IsNil() {
						continue
					}
					elem = elem.Elem()
				}
				children = append(children, elem)
			}
		}
	}
	return children
}

// splitPaths groups dotted preload paths by their first segment, keeping
// first-seen order.
func splitPaths(paths []string) ([]string, map[string][]string) {
	var heads []string
	nested := make(map[string][]string)
	seen := make(map[string]bool)

	for _, path := range paths {
		head, rest, _ := strings.Cut(path, ".")
		if !seen[head] {
			seen[head] = true
			heads = append(heads, head)
		}
		if rest != "" {
			nested[head] = append(nested[head], rest)
		}
	}
	return heads, nested
}
