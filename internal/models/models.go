// Package models defines the favorites data model: users, the characters,
// planets and vehicles they can favorite, and the favorites joining them.
package models

import "github.com/marshallshelly/starfaves/pkg/registry"

// Register adds every entity to reg and checks that all references
// resolve.
func Register(reg *registry.Registry) error {
	if err := reg.Register(User{}, Character{}, Planet{}, Vehicle{}, Favorite{}); err != nil {
		return err
	}
	return reg.Resolve()
}

// NewRegistry returns a registry holding the favorites data model.
func NewRegistry() (*registry.Registry, error) {
	reg := registry.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
