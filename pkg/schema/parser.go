package schema

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

const (
	// StructTagKey is the key used in struct tags (e.g., `po:"..."`).
	StructTagKey = "po"
)

// TableNamer is implemented by models whose table name is not the
// snake_case form of the struct name.
type TableNamer interface {
	TableName() string
}

// Check is a named table-level CHECK constraint.
type Check struct {
	Name       string
	Expression string
}

// Checker is implemented by models that declare table-level CHECK
// constraints spanning several columns.
type Checker interface {
	Checks() []Check
}

// Parser parses struct definitions to extract table metadata.
type Parser struct {
	typeMapper *TypeMapper
	cache      map[reflect.Type]*TableMetadata
}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{
		typeMapper: NewTypeMapper(),
		cache:      make(map[reflect.Type]*TableMetadata),
	}
}

// TypeMapper returns the parser's type mapper so callers can register
// custom Go to PostgreSQL mappings before parsing.
func (p *Parser) TypeMapper() *TypeMapper {
	return p.typeMapper
}

// Parse extracts TableMetadata from a Go struct type.
func (p *Parser) Parse(modelType reflect.Type) (*TableMetadata, error) {
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", modelType.Kind())
	}
	if cached, ok := p.cache[modelType]; ok {
		return cached, nil
	}

	table := &TableMetadata{
		Name:        TableNameOf(modelType),
		GoType:      modelType,
		Columns:     make([]ColumnMetadata, 0),
		ForeignKeys: make([]ForeignKeyMetadata, 0),
		Indexes:     make([]IndexMetadata, 0),
		Constraints: make([]ConstraintMetadata, 0),
	}

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		if !field.IsExported() {
			continue
		}
		tagValue := field.Tag.Get(StructTagKey)
		if tagValue == "" || tagValue == "-" {
			continue
		}
		opts, err := ParseTag(tagValue)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tag for field %s: %w", field.Name, err)
		}
		if opts.IsRelationship() {
			rel, err := p.parseRelationship(field, opts, table)
			if err != nil {
				return nil, fmt.Errorf("failed to parse relationship for field %s: %w", field.Name, err)
			}
			table.Relationships = append(table.Relationships, *rel)
			continue
		}

		column, err := p.createColumnMetadata(field, opts, i)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		if opts.Has("primaryKey") {
			if table.PrimaryKey == nil {
				table.PrimaryKey = &PrimaryKeyMetadata{
					Columns: []string{column.Name},
					Name:    table.Name + "_pkey",
				}
			} else {
				table.PrimaryKey.Columns = append(table.PrimaryKey.Columns, column.Name)
			}
		}

		if fk, ok, err := parseForeignKey(table.Name, column.Name, opts); err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		} else if ok {
			table.ForeignKeys = append(table.ForeignKeys, fk)
		}

		// UNIQUE columns get an implicit index in PostgreSQL.
		if opts.Has("index") && !column.Unique {
			table.Indexes = append(table.Indexes, IndexMetadata{
				Name:    fmt.Sprintf("idx_%s_%s", table.Name, column.Name),
				Columns: []string{column.Name},
			})
		}

		table.Columns = append(table.Columns, column)
	}

	if checker, ok := reflect.New(modelType).Interface().(Checker); ok {
		for _, c := range checker.Checks() {
			table.Constraints = append(table.Constraints, ConstraintMetadata{
				Name:       c.Name,
				Type:       CheckConstraint,
				Expression: c.Expression,
			})
		}
	}

	p.cache[modelType] = table
	return table, nil
}

// TableNameOf returns the table name for a model type: its TableName method
// when it has one, the snake_case struct name otherwise.
func TableNameOf(modelType reflect.Type) string {
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}
	if namer, ok := reflect.New(modelType).Interface().(TableNamer); ok {
		return namer.TableName()
	}
	return ToSnakeCase(modelType.Name())
}

// createColumnMetadata creates a ColumnMetadata from a struct field.
func (p *Parser) createColumnMetadata(field reflect.StructField, opts *TagOptions, position int) (ColumnMetadata, error) {
	column := ColumnMetadata{
		Name:     opts.Name,
		GoField:  field.Name,
		GoType:   field.Type,
		Position: position,
	}

	column.AutoIncrement = opts.Has("autoIncrement") || opts.Has("serial")

	switch {
	case opts.SQLType() != "":
		column.SQLType = opts.SQLType()
	case column.AutoIncrement:
		column.SQLType = "serial"
		if field.Type.Kind() == reflect.Int64 {
			column.SQLType = "bigserial"
		}
	default:
		column.SQLType = p.typeMapper.GoTypeToPostgreSQL(field.Type)
	}
	if column.SQLType == "" {
		return column, fmt.Errorf("no PostgreSQL type for Go type %s", field.Type)
	}

	column.Nullable = !opts.Has("notNull") && !opts.Has("primaryKey")
	if opts.Has("notNull") && IsNullable(field.Type) {
		return column, fmt.Errorf("column %s is notNull but Go type %s is nullable", column.Name, field.Type)
	}

	if opts.Has("default") {
		defaultVal := opts.Get("default")
		if err := ValidateDefaultValue(defaultVal); err != nil {
			return column, err
		}
		column.Default = &defaultVal
	}

	column.Unique = opts.Has("unique")

	return column, nil
}

// parseForeignKey builds FK metadata from fk:table.column (or
// fk:table(column)) and the optional onDelete / onUpdate actions.
func parseForeignKey(tableName, columnName string, opts *TagOptions) (ForeignKeyMetadata, bool, error) {
	fkStr := opts.Get("fk")
	if fkStr == "" {
		if opts.Has("onDelete") || opts.Has("onUpdate") {
			return ForeignKeyMetadata{}, false, fmt.Errorf("onDelete/onUpdate on %s without fk", columnName)
		}
		return ForeignKeyMetadata{}, false, nil
	}

	var refTable, refColumn string
	if before, after, ok := strings.Cut(fkStr, "."); ok {
		refTable, refColumn = before, after
	} else if idx := strings.Index(fkStr, "("); idx > 0 && strings.HasSuffix(fkStr, ")") {
		refTable = fkStr[:idx]
		refColumn = fkStr[idx+1 : len(fkStr)-1]
	}
	if refTable == "" || refColumn == "" {
		return ForeignKeyMetadata{}, false, fmt.Errorf("invalid fk reference %q, want table.column", fkStr)
	}

	onDelete, err := ParseReferenceAction(opts.Get("onDelete"))
	if err != nil {
		return ForeignKeyMetadata{}, false, err
	}
	onUpdate, err := ParseReferenceAction(opts.Get("onUpdate"))
	if err != nil {
		return ForeignKeyMetadata{}, false, err
	}

	return ForeignKeyMetadata{
		Name:              fmt.Sprintf("fk_%s_%s_%s", tableName, columnName, refTable),
		Columns:           []string{columnName},
		ReferencedTable:   refTable,
		ReferencedColumns: []string{refColumn},
		OnDelete:          onDelete,
		OnUpdate:          onUpdate,
	}, true, nil
}

// ParseReferenceAction converts a tag value to a ReferenceAction.
// The empty string means NO ACTION.
func ParseReferenceAction(action string) (ReferenceAction, error) {
	switch strings.ToUpper(strings.TrimSpace(action)) {
	case "", "NOACTION", "NO ACTION":
		return NoAction, nil
	case "CASCADE":
		return Cascade, nil
	case "RESTRICT":
		return Restrict, nil
	case "SETNULL", "SET NULL":
		return SetNull, nil
	case "SETDEFAULT", "SET DEFAULT":
		return SetDefault, nil
	default:
		return "", fmt.Errorf("unknown reference action %q", action)
	}
}

// TagOptions represents parsed tag options.
type TagOptions struct {
	Name    string            // Column name (first element)
	Options map[string]string // Other options
}

// ParseTag parses a struct tag value into TagOptions.
// Format: "column_name,option1,option2(value),option3:value"
func ParseTag(tag string) (*TagOptions, error) {
	parts := splitTag(tag)
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("empty tag value")
	}
	opts := &TagOptions{
		Name:    parts[0],
		Options: make(map[string]string),
	}
	for _, opt := range parts[1:] {
		parenIdx := strings.Index(opt, "(")
		colonIdx := strings.Index(opt, ":")
		switch {
		case parenIdx != -1 && (colonIdx == -1 || parenIdx < colonIdx):
			if !strings.HasSuffix(opt, ")") {
				return nil, fmt.Errorf("invalid option format: %s", opt)
			}
			opts.Options[opt[:parenIdx]] = opt[parenIdx+1 : len(opt)-1]
		case colonIdx != -1:
			opts.Options[opt[:colonIdx]] = opt[colonIdx+1:]
		default:
			opts.Options[opt] = ""
		}
	}
	return opts, nil
}

// Has checks if an option exists.
func (t *TagOptions) Has(key string) bool {
	_, ok := t.Options[key]
	return ok
}

// Get returns the value of an option.
func (t *TagOptions) Get(key string) string {
	return t.Options[key]
}

// IsRelationship reports whether the tag marks a relationship field.
func (t *TagOptions) IsRelationship() bool {
	return t.Has(string(BelongsTo)) || t.Has(string(HasMany))
}

// sqlTypes are the PostgreSQL types that may be named directly in a tag.
var sqlTypes = []string{
	"varchar", "text", "char",
	"smallint", "integer", "bigint",
	"numeric", "decimal", "real", "double precision",
	"boolean",
	"date", "timestamp", "timestamptz",
	"bytea",
}

// SQLType returns the SQL type named in the tag options, if any.
func (t *TagOptions) SQLType() string {
	for _, pgType := range sqlTypes {
		if !t.Has(pgType) {
			continue
		}
		if value := t.Get(pgType); value != "" {
			return fmt.Sprintf("%s(%s)", pgType, value)
		}
		return pgType
	}
	return ""
}

// splitTag splits a tag value by commas, handling nested parentheses.
func splitTag(tag string) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	for _, ch := range tag {
		switch ch {
		case '(':
			depth++
			current.WriteRune(ch)
		case ')':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(current.String()))
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, strings.TrimSpace(current.String()))
	}
	return parts
}

// ToSnakeCase converts PascalCase to snake_case, keeping acronyms together
// (UserID -> user_id, HTTPServer -> http_server).
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var result strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}
