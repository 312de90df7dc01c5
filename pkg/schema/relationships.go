package schema

import (
	"fmt"
	"reflect"
)

// parseRelationship parses a relationship from a struct field.
func (p *Parser) parseRelationship(field reflect.StructField, opts *TagOptions, sourceTable *TableMetadata) (*RelationshipMetadata, error) {
	rel := &RelationshipMetadata{
		SourceTable: sourceTable.Name,
		SourceField: field.Name,
		ForeignKey:  opts.Get("foreignKey"),
		References:  opts.Get("references"),
	}

	fieldType := field.Type
	switch {
	case opts.Has(string(BelongsTo)):
		rel.Type = BelongsTo
		if fieldType.Kind() != reflect.Pointer {
			return nil, fmt.Errorf("belongsTo field must be a pointer to struct, got %s", fieldType)
		}
	case opts.Has(string(HasMany)):
		rel.Type = HasMany
		if fieldType.Kind() != reflect.Slice {
			return nil, fmt.Errorf("hasMany field must be a slice, got %s", fieldType)
		}
		fieldType = fieldType.Elem()
	default:
		return nil, fmt.Errorf("unknown relationship type")
	}

	for fieldType.Kind() == reflect.Pointer {
		fieldType = fieldType.Elem()
	}
	if fieldType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("relationship target must be a struct, got %s", fieldType)
	}

	rel.TargetType = fieldType
	rel.TargetTable = TableNameOf(fieldType)

	if rel.ForeignKey == "" {
		switch rel.Type {
		case BelongsTo:
			// favorite.character_id for Favorite.Character
			rel.ForeignKey = ToSnakeCase(fieldType.Name()) + "_id"
		case HasMany:
			// favorite.user_id for User.Favorites
			rel.ForeignKey = ToSnakeCase(sourceTable.GoType.Name()) + "_id"
		}
	}
	if rel.References == "" {
		rel.References = "id"
	}

	return rel, nil
}

// GetRelationship returns a relationship by source field name.
func (t *TableMetadata) GetRelationship(fieldName string) *RelationshipMetadata {
	for i := range t.Relationships {
		if t.Relationships[i].SourceField == fieldName {
			return &t.Relationships[i]
		}
	}
	return nil
}

// GetRelationshipsByType returns all relationships of a specific type.
func (t *TableMetadata) GetRelationshipsByType(relType RelationType) []RelationshipMetadata {
	var result []RelationshipMetadata
	for _, rel := range t.Relationships {
		if rel.Type == relType {
			result = append(result, rel)
		}
	}
	return result
}

// HasRelationships checks if the table has any relationships.
func (t *TableMetadata) HasRelationships() bool {
	return len(t.Relationships) > 0
}
