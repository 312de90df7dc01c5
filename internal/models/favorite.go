package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/marshallshelly/starfaves/pkg/runtime"
	"github.com/marshallshelly/starfaves/pkg/schema"
)

// ErrInvalidTarget is returned when a favorite points at zero or several
// entities, or at an unknown kind.
var ErrInvalidTarget = errors.New("invalid favorite target")

// TargetKind names the entity a favorite points at.
type TargetKind string

const (
	KindCharacter TargetKind = "character"
	KindPlanet    TargetKind = "planet"
	KindVehicle   TargetKind = "vehicle"
)

// TargetKinds lists every kind in column order.
var TargetKinds = []TargetKind{KindCharacter, KindPlanet, KindVehicle}

// Column returns the favorite column holding a reference of this kind.
func (k TargetKind) Column() string {
	return string(k) + "_id"
}

// Target is the one entity a favorite points at.
type Target struct {
	Kind TargetKind
	ID   int
}

// CharacterTarget points a favorite at character id.
func CharacterTarget(id int) Target { return Target{Kind: KindCharacter, ID: id} }

// PlanetTarget points a favorite at planet id.
func PlanetTarget(id int) Target { return Target{Kind: KindPlanet, ID: id} }

// VehicleTarget points a favorite at vehicle id.
func VehicleTarget(id int) Target { return Target{Kind: KindVehicle, ID: id} }

// ParseTarget builds a Target from a kind name such as "planet".
func ParseTarget(kind string, id int) (Target, error) {
	t := Target{Kind: TargetKind(strings.ToLower(strings.TrimSpace(kind))), ID: id}
	if err := t.Validate(); err != nil {
		return Target{}, err
	}
	return t, nil
}

// Validate checks the kind is known and the id is a positive key.
func (t Target) Validate() error {
	switch t.Kind {
	case KindCharacter, KindPlanet, KindVehicle:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTarget, t.Kind)
	}
	if t.ID <= 0 {
		return fmt.Errorf("%w: %s id must be positive, got %d", ErrInvalidTarget, t.Kind, t.ID)
	}
	return nil
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}

// Favorite links a user to exactly one character, planet or vehicle. The
// three reference columns form a tagged union: use SetTarget and Target
// rather than writing them directly.
type Favorite struct {
	ID          int  `po:"id,primaryKey,serial"`
	UserID      int  `po:"user_id,notNull,fk:user.id,onDelete:cascade,index"`
	CharacterID *int `po:"character_id,fk:character.id,onDelete:cascade,index"`
	PlanetID    *int `po:"planet_id,fk:planet.id,onDelete:cascade,index"`
	VehicleID   *int `po:"vehicle_id,fk:vehicle.id,onDelete:cascade,index"`

	User      *User      `po:"user,belongsTo,foreignKey(user_id)"`
	Character *Character `po:"character,belongsTo,foreignKey(character_id)"`
	Planet    *Planet    `po:"planet,belongsTo,foreignKey(planet_id)"`
	Vehicle   *Vehicle   `po:"vehicle,belongsTo,foreignKey(vehicle_id)"`
}

func (Favorite) TableName() string { return "favorite" }

// Checks declares the database side of the target union.
func (Favorite) Checks() []schema.Check {
	return []schema.Check{{
		Name:       "favorite_one_target",
		Expression: "num_nonnulls(character_id, planet_id, vehicle_id) = 1",
	}}
}

// SetTarget points the favorite at t and clears the other references.
func (f *Favorite) SetTarget(t Target) error {
	if err := t.Validate(); err != nil {
		return err
	}
	f.CharacterID, f.PlanetID, f.VehicleID = nil, nil, nil
	id := t.ID
	switch t.Kind {
	case KindCharacter:
		f.CharacterID = &id
	case KindPlanet:
		f.PlanetID = &id
	case KindVehicle:
		f.VehicleID = &id
	}
	return nil
}

// Target returns the entity the favorite points at.
func (f Favorite) Target() (Target, error) {
	var targets []Target
	if f.CharacterID != nil {
		targets = append(targets, CharacterTarget(*f.CharacterID))
	}
	if f.PlanetID != nil {
		targets = append(targets, PlanetTarget(*f.PlanetID))
	}
	if f.VehicleID != nil {
		targets = append(targets, VehicleTarget(*f.VehicleID))
	}

	switch len(targets) {
	case 0:
		return Target{}, fmt.Errorf("%w: favorite %d has no target", ErrInvalidTarget, f.ID)
	case 1:
		return targets[0], targets[0].Validate()
	default:
		return Target{}, fmt.Errorf("%w: favorite %d has %d targets", ErrInvalidTarget, f.ID, len(targets))
	}
}

// Validate checks the favorite can be written.
func (f Favorite) Validate() error {
	if f.UserID <= 0 {
		return &runtime.ValidationError{Field: "user_id", Message: "must reference a user"}
	}
	_, err := f.Target()
	return err
}

// TargetName returns the name of the loaded target, or "" when it has not
// been preloaded.
func (f Favorite) TargetName() string {
	switch {
	case f.Character != nil:
		return f.Character.Name
	case f.Planet != nil:
		return f.Planet.Name
	case f.Vehicle != nil:
		return f.Vehicle.Name
	}
	return ""
}

// Serialize returns the favorite with the projections of its loaded
// targets; targets that are not loaded are nil.
func (f Favorite) Serialize() map[string]any {
	out := map[string]any{
		"id":        f.ID,
		"user_id":   f.UserID,
		"character": nil,
		"planet":    nil,
		"vehicle":   nil,
	}
	if f.Character != nil {
		out["character"] = f.Character.Serialize()
	}
	if f.Planet != nil {
		out["planet"] = f.Planet.Serialize()
	}
	if f.Vehicle != nil {
		out["vehicle"] = f.Vehicle.Serialize()
	}
	return out
}
