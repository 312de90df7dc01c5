package migration

import (
	"fmt"
	"strings"

	"github.com/marshallshelly/starfaves/pkg/schema"
)

// PlannerOptions configures migration generation behavior.
type PlannerOptions struct {
	// IfNotExists adds IF NOT EXISTS to CREATE TABLE and CREATE INDEX, and
	// IF EXISTS to DROP TABLE. Default: true
	IfNotExists bool
}

// Planner generates DDL for a set of tables.
type Planner struct {
	options PlannerOptions
}

// NewPlanner creates a new migration planner with default options.
func NewPlanner() *Planner {
	return &Planner{
		options: PlannerOptions{
			IfNotExists: true,
		},
	}
}

// NewPlannerWithOptions creates a new migration planner with custom options.
func NewPlannerWithOptions(opts PlannerOptions) *Planner {
	return &Planner{
		options: opts,
	}
}

// CreateSchema generates up and down SQL for creating tables. tables must
// be ordered parents first (see registry.Ordered); the down SQL drops them
// in reverse.
func (p *Planner) CreateSchema(tables []*schema.TableMetadata) (upSQL, downSQL string) {
	upStatements := make([]string, 0, len(tables))
	for _, table := range tables {
		upStatements = append(upStatements, p.generateCreateTable(table))
	}
	return strings.Join(upStatements, "\n\n") + "\n", p.DropSchema(tables)
}

// DropSchema generates DROP TABLE statements for tables in reverse order.
func (p *Planner) DropSchema(tables []*schema.TableMetadata) string {
	downStatements := make([]string, 0, len(tables))
	for i := len(tables) - 1; i >= 0; i-- {
		downStatements = append(downStatements, p.generateDropTable(tables[i].Name))
	}
	return strings.Join(downStatements, "\n") + "\n"
}

// generateCreateTable generates a CREATE TABLE statement followed by the
// table's CREATE INDEX statements.
func (p *Planner) generateCreateTable(table *schema.TableMetadata) string {
	var parts []string

	var singlePKColumn string
	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) == 1 {
		singlePKColumn = table.PrimaryKey.Columns[0]
	}

	for _, col := range table.Columns {
		colDef := p.generateColumnDefinition(col)
		if col.Name == singlePKColumn {
			colDef += " PRIMARY KEY"
		}
		parts = append(parts, "    "+colDef)
	}

	// Composite keys only; a single column key is declared inline.
	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) > 1 {
		parts = append(parts, fmt.Sprintf("    CONSTRAINT %s PRIMARY KEY (%s)",
			schema.QuoteIdent(table.PrimaryKey.Name), quoteList(table.PrimaryKey.Columns)))
	}

	for _, fk := range table.ForeignKeys {
		parts = append(parts, "    "+p.generateForeignKeyDefinition(fk))
	}

	for _, constraint := range table.Constraints {
		switch constraint.Type {
		case schema.CheckConstraint:
			parts = append(parts, fmt.Sprintf("    CONSTRAINT %s CHECK (%s)",
				schema.QuoteIdent(constraint.Name), constraint.Expression))
		case schema.UniqueConstraint:
			parts = append(parts, fmt.Sprintf("    CONSTRAINT %s UNIQUE (%s)",
				schema.QuoteIdent(constraint.Name), quoteList(constraint.Columns)))
		}
	}

	createClause := "CREATE TABLE"
	if p.options.IfNotExists {
		createClause = "CREATE TABLE IF NOT EXISTS"
	}
	sql := fmt.Sprintf("%s %s (\n%s\n);", createClause, schema.QuoteIdent(table.Name), strings.Join(parts, ",\n"))

	var indexStatements []string
	for _, idx := range table.Indexes {
		indexStatements = append(indexStatements, p.generateCreateIndex(table.Name, idx))
	}
	if len(indexStatements) > 0 {
		sql += "\n\n" + strings.Join(indexStatements, "\n")
	}

	return sql
}

// generateColumnDefinition generates a column definition for CREATE TABLE.
func (p *Planner) generateColumnDefinition(col schema.ColumnMetadata) string {
	parts := []string{schema.QuoteIdent(col.Name), col.SQLType}

	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.Default != nil {
		parts = append(parts, "DEFAULT", *col.Default)
	}
	if col.Unique {
		parts = append(parts, "UNIQUE")
	}

	return strings.Join(parts, " ")
}

// generateForeignKeyDefinition generates a FOREIGN KEY constraint.
func (p *Planner) generateForeignKeyDefinition(fk schema.ForeignKeyMetadata) string {
	parts := []string{
		fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s)", schema.QuoteIdent(fk.Name), quoteList(fk.Columns)),
		fmt.Sprintf("REFERENCES %s (%s)", schema.QuoteIdent(fk.ReferencedTable), quoteList(fk.ReferencedColumns)),
	}

	if fk.OnDelete != schema.NoAction && fk.OnDelete != "" {
		parts = append(parts, "ON DELETE "+string(fk.OnDelete))
	}
	if fk.OnUpdate != schema.NoAction && fk.OnUpdate != "" {
		parts = append(parts, "ON UPDATE "+string(fk.OnUpdate))
	}

	return strings.Join(parts, " ")
}

// generateCreateIndex generates a CREATE INDEX statement.
func (p *Planner) generateCreateIndex(tableName string, idx schema.IndexMetadata) string {
	parts := []string{"CREATE INDEX"}
	if idx.Unique {
		parts = []string{"CREATE UNIQUE INDEX"}
	}
	if p.options.IfNotExists {
		parts = append(parts, "IF NOT EXISTS")
	}
	parts = append(parts,
		schema.QuoteIdent(idx.Name),
		"ON", schema.QuoteIdent(tableName),
		fmt.Sprintf("(%s)", quoteList(idx.Columns)),
	)
	return strings.Join(parts, " ") + ";"
}

// generateDropTable generates a DROP TABLE statement.
func (p *Planner) generateDropTable(tableName string) string {
	if p.options.IfNotExists {
		return fmt.Sprintf("DROP TABLE IF EXISTS %s;", schema.QuoteIdent(tableName))
	}
	return fmt.Sprintf("DROP TABLE %s;", schema.QuoteIdent(tableName))
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = schema.QuoteIdent(name)
	}
	return strings.Join(quoted, ", ")
}
