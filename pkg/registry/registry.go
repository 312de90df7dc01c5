// Package registry provides the schema catalog that models register into.
//
// There is no process-wide registry: callers create one with NewRegistry at
// startup, register their models into it, and hand it to the query builder
// and migration planner.
package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/marshallshelly/starfaves/pkg/schema"
)

// Registry is a thread-safe catalog of table metadata.
type Registry struct {
	mu     sync.RWMutex
	parser *schema.Parser
	tables map[reflect.Type]*schema.TableMetadata
	names  map[string]*schema.TableMetadata
	order  []string // registration order, for stable output
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		parser: schema.NewParser(),
		tables: make(map[reflect.Type]*schema.TableMetadata),
		names:  make(map[string]*schema.TableMetadata),
	}
}

// Register parses and registers one or more model types. Registering the
// same type twice is a no-op; two types mapping to one table name is an
// error.
func (r *Registry) Register(models ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, model := range models {
		if err := r.register(model); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) register(model any) error {
	if model == nil {
		return fmt.Errorf("model must be a struct, got nil")
	}
	modelType := reflect.TypeOf(model)
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return fmt.Errorf("model must be a struct, got %s", modelType.Kind())
	}

	if _, ok := r.tables[modelType]; ok {
		return nil
	}

	table, err := r.parser.Parse(modelType)
	if err != nil {
		return fmt.Errorf("failed to parse model %s: %w", modelType.Name(), err)
	}

	if existing, ok := r.names[table.Name]; ok {
		return fmt.Errorf("table %s already registered by %s", table.Name, existing.GoType)
	}

	r.tables[modelType] = table
	r.names[table.Name] = table
	r.order = append(r.order, table.Name)

	return nil
}

// Get retrieves TableMetadata by Go type.
func (r *Registry) Get(modelType reflect.Type) (*schema.TableMetadata, error) {
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}

	r.mu.RLock()
	table, ok := r.tables[modelType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("model type %s not registered", modelType.Name())
	}
	return table, nil
}

// GetByName retrieves TableMetadata by table name.
func (r *Registry) GetByName(tableName string) (*schema.TableMetadata, error) {
	r.mu.RLock()
	table, ok := r.names[tableName]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("table %s not registered", tableName)
	}
	return table, nil
}

// Has checks if a model type is registered.
func (r *Registry) Has(modelType reflect.Type) bool {
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}

	r.mu.RLock()
	_, ok := r.tables[modelType]
	r.mu.RUnlock()

	return ok
}

// HasTable checks if a table name is registered.
func (r *Registry) HasTable(tableName string) bool {
	r.mu.RLock()
	_, ok := r.names[tableName]
	r.mu.RUnlock()

	return ok
}

// All returns all registered tables in registration order.
func (r *Registry) All() []*schema.TableMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tables := make([]*schema.TableMetadata, 0, len(r.order))
	for _, name := range r.order {
		tables = append(tables, r.names[name])
	}
	return tables
}

// Resolve checks that every foreign key and relationship points at a
// registered table and column.
func (r *Registry) Resolve() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		table := r.names[name]
		for _, fk := range table.ForeignKeys {
			target, ok := r.names[fk.ReferencedTable]
			if !ok {
				return fmt.Errorf("%s.%s references unregistered table %s",
					table.Name, fk.Name, fk.ReferencedTable)
			}
			for _, col := range fk.ReferencedColumns {
				if target.Column(col) == nil {
					return fmt.Errorf("%s.%s references unknown column %s.%s",
						table.Name, fk.Name, target.Name, col)
				}
			}
		}
		for _, rel := range table.Relationships {
			if _, ok := r.tables[rel.TargetType]; !ok {
				return fmt.Errorf("%s.%s targets unregistered model %s",
					table.Name, rel.SourceField, rel.TargetType)
			}
		}
	}
	return nil
}

// Ordered returns all tables with every referenced table before the tables
// that reference it, so CREATE TABLE statements can run in sequence. Ties
// keep registration order. Self references are ignored; cycles are an error.
func (r *Registry) Ordered() ([]*schema.TableMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	position := make(map[string]int, len(r.order))
	for i, name := range r.order {
		position[name] = i
	}

	indegree := make(map[string]int, len(r.order))
	dependents := make(map[string][]string)
	for _, name := range r.order {
		seen := make(map[string]bool)
		for _, fk := range r.names[name].ForeignKeys {
			parent := fk.ReferencedTable
			if parent == name || seen[parent] {
				continue
			}
			if _, ok := r.names[parent]; !ok {
				continue
			}
			seen[parent] = true
			indegree[name]++
			dependents[parent] = append(dependents[parent], name)
		}
	}

	var ready []string
	for _, name := range r.order {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}

	ordered := make([]*schema.TableMetadata, 0, len(r.order))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		ordered = append(ordered, r.names[name])

		for _, child := range dependents[name] {
			indegree[child]--
			if indegree[child] == 0 {
				ready = append(ready, child)
			}
		}
		sort.SliceStable(ready, func(i, j int) bool {
			return position[ready[i]] < position[ready[j]]
		})
	}

	if len(ordered) != len(r.order) {
		return nil, fmt.Errorf("foreign key cycle between registered tables")
	}
	return ordered, nil
}
