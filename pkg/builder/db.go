package builder

import (
	"context"
	"errors"
	"reflect"

	"github.com/marshallshelly/starfaves/pkg/registry"
	"github.com/marshallshelly/starfaves/pkg/runtime"
	"github.com/marshallshelly/starfaves/pkg/schema"
)

// DB binds a connection (pool or transaction) to the registry that
// describes its tables.
type DB struct {
	q   runtime.Querier
	rt  *runtime.DB
	reg *registry.Registry
}

// New creates a query builder DB. A nil runtime DB yields a builder that can
// render SQL but not execute it.
func New(db *runtime.DB, reg *registry.Registry) *DB {
	d := &DB{rt: db, reg: reg}
	if db != nil {
		d.q = db
	}
	return d
}

// Runtime returns the underlying runtime.DB, or nil inside a transaction.
func (d *DB) Runtime() *runtime.DB {
	return d.rt
}

// Registry returns the registry the builder resolves models against.
func (d *DB) Registry() *registry.Registry {
	return d.reg
}

// InTx runs fn with a DB bound to a new transaction. Called on a DB that is
// already inside a transaction, fn joins it.
func (d *DB) InTx(ctx context.Context, fn func(tx *DB) error) error {
	if d.rt == nil {
		if d.q == nil {
			return runtime.ErrNoConnection
		}
		return fn(d)
	}
	return d.rt.InTx(ctx, func(tx *runtime.Tx) error {
		return fn(&DB{q: tx, reg: d.reg})
	})
}

func (d *DB) querier() (runtime.Querier, error) {
	if d.q == nil {
		return nil, runtime.ErrNoConnection
	}
	return d.q, nil
}

func (d *DB) table(model any) (*schema.TableMetadata, error) {
	if d.reg == nil {
		return nil, errors.New("builder has no registry")
	}
	return d.reg.Get(reflect.TypeOf(model))
}

// Select creates a new type-safe SELECT query.
// Usage: builder.Select[models.User](db).Where(builder.Eq("id", 1)).First(ctx)
func Select[T any](d *DB) *SelectQuery[T] {
	var model T
	table, err := d.table(model)
	return &SelectQuery[T]{
		db:    d,
		table: table,
		err:   err,
	}
}

// Insert creates a new type-safe INSERT query.
// Usage: builder.Insert[models.Planet](db).Values(p).ExecReturning(ctx)
func Insert[T any](d *DB) *InsertQuery[T] {
	var model T
	table, err := d.table(model)
	return &InsertQuery[T]{
		db:    d,
		table: table,
		err:   err,
	}
}

// Update creates a new type-safe UPDATE query.
// Usage: builder.Update[models.User](db).Set("email", e).Where(builder.Eq("id", 1)).Exec(ctx)
func Update[T any](d *DB) *UpdateQuery[T] {
	var model T
	table, err := d.table(model)
	return &UpdateQuery[T]{
		db:    d,
		table: table,
		err:   err,
	}
}

// Delete creates a new type-safe DELETE query.
// Usage: builder.Delete[models.Favorite](db).Where(builder.Eq("id", 1)).Exec(ctx)
func Delete[T any](d *DB) *DeleteQuery[T] {
	var model T
	table, err := d.table(model)
	return &DeleteQuery[T]{
		db:    d,
		table: table,
		err:   err,
	}
}
