package favorites

import (
	"context"
	"fmt"
	"strings"

	"github.com/marshallshelly/starfaves/internal/models"
	"github.com/marshallshelly/starfaves/pkg/builder"
)

// CreateCharacter inserts c and returns it with its id.
func (s *Store) CreateCharacter(ctx context.Context, c models.Character) (*models.Character, error) {
	if err := validateName(c.Name); err != nil {
		return nil, err
	}
	created, err := create(ctx, s.db, c)
	if err != nil {
		return nil, fmt.Errorf("create character %q: %w", c.Name, err)
	}
	return created, nil
}

func (s *Store) GetCharacter(ctx context.Context, id int) (*models.Character, error) {
	return get[models.Character](ctx, s.db, id)
}

// UpdateCharacter replaces every stored attribute of character id with c.
func (s *Store) UpdateCharacter(ctx context.Context, id int, c models.Character) (*models.Character, error) {
	if err := validateName(c.Name); err != nil {
		return nil, err
	}
	return replace(ctx, s.db, id, c)
}

// DeleteCharacter deletes a character and returns how many favorites went
// with it.
func (s *Store) DeleteCharacter(ctx context.Context, id int) (int64, error) {
	return deleteCascading[models.Character](ctx, s, models.KindCharacter.Column(), id)
}

func (s *Store) ListCharacters(ctx context.Context) ([]models.Character, error) {
	return list[models.Character](ctx, s.db)
}

// SearchCharacters returns the characters whose name contains term.
func (s *Store) SearchCharacters(ctx context.Context, term string) ([]models.Character, error) {
	return list[models.Character](ctx, s.db, nameContains(term))
}

// CreatePlanet inserts p and returns it with its id.
func (s *Store) CreatePlanet(ctx context.Context, p models.Planet) (*models.Planet, error) {
	if err := validateName(p.Name); err != nil {
		return nil, err
	}
	created, err := create(ctx, s.db, p)
	if err != nil {
		return nil, fmt.Errorf("create planet %q: %w", p.Name, err)
	}
	return created, nil
}

func (s *Store) GetPlanet(ctx context.Context, id int) (*models.Planet, error) {
	return get[models.Planet](ctx, s.db, id)
}

// UpdatePlanet replaces every stored attribute of planet id with p.
func (s *Store) UpdatePlanet(ctx context.Context, id int, p models.Planet) (*models.Planet, error) {
	if err := validateName(p.Name); err != nil {
		return nil, err
	}
	return replace(ctx, s.db, id, p)
}

// DeletePlanet deletes a planet and returns how many favorites went with it.
func (s *Store) DeletePlanet(ctx context.Context, id int) (int64, error) {
	return deleteCascading[models.Planet](ctx, s, models.KindPlanet.Column(), id)
}

func (s *Store) ListPlanets(ctx context.Context) ([]models.Planet, error) {
	return list[models.Planet](ctx, s.db)
}

// SearchPlanets returns the planets whose name contains term.
func (s *Store) SearchPlanets(ctx context.Context, term string) ([]models.Planet, error) {
	return list[models.Planet](ctx, s.db, nameContains(term))
}

// CreateVehicle inserts v and returns it with its id.
func (s *Store) CreateVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error) {
	if err := validateName(v.Name); err != nil {
		return nil, err
	}
	created, err := create(ctx, s.db, v)
	if err != nil {
		return nil, fmt.Errorf("create vehicle %q: %w", v.Name, err)
	}
	return created, nil
}

func (s *Store) GetVehicle(ctx context.Context, id int) (*models.Vehicle, error) {
	return get[models.Vehicle](ctx, s.db, id)
}

// UpdateVehicle replaces every stored attribute of vehicle id with v.
func (s *Store) UpdateVehicle(ctx context.Context, id int, v models.Vehicle) (*models.Vehicle, error) {
	if err := validateName(v.Name); err != nil {
		return nil, err
	}
	return replace(ctx, s.db, id, v)
}

// DeleteVehicle deletes a vehicle and returns how many favorites went with
// it.
func (s *Store) DeleteVehicle(ctx context.Context, id int) (int64, error) {
	return deleteCascading[models.Vehicle](ctx, s, models.KindVehicle.Column(), id)
}

func (s *Store) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	return list[models.Vehicle](ctx, s.db)
}

// SearchVehicles returns the vehicles whose name contains term.
func (s *Store) SearchVehicles(ctx context.Context, term string) ([]models.Vehicle, error) {
	return list[models.Vehicle](ctx, s.db, nameContains(term))
}

// FindTarget resolves the entity of the given kind by exact name. Names are
// not unique; the lowest id wins.
func (s *Store) FindTarget(ctx context.Context, kind models.TargetKind, name string) (models.Target, error) {
	name = strings.TrimSpace(name)
	var (
		id  int
		err error
	)
	switch kind {
	case models.KindCharacter:
		id, err = idByName(ctx, s.db, name, func(c *models.Character) int { return c.ID })
	case models.KindPlanet:
		id, err = idByName(ctx, s.db, name, func(p *models.Planet) int { return p.ID })
	case models.KindVehicle:
		id, err = idByName(ctx, s.db, name, func(v *models.Vehicle) int { return v.ID })
	default:
		return models.Target{}, fmt.Errorf("%w: unknown kind %q", models.ErrInvalidTarget, kind)
	}
	if err != nil {
		return models.Target{}, fmt.Errorf("%s %q: %w", kind, name, err)
	}
	return models.Target{Kind: kind, ID: id}, nil
}

func idByName[T any](ctx context.Context, db *builder.DB, name string, idOf func(*T) int) (int, error) {
	row, err := builder.Select[T](db).
		Columns("id").
		Where(builder.Eq("name", name)).
		OrderByAsc("id").
		First(ctx)
	if err != nil {
		return 0, err
	}
	return idOf(row), nil
}
