// Package seed loads YAML seed files into the favorites store.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/marshallshelly/starfaves/internal/favorites"
	"github.com/marshallshelly/starfaves/internal/models"
	"gopkg.in/yaml.v3"
)

// Document is the content of a seed file.
type Document struct {
	Users      []User             `yaml:"users"`
	Characters []models.Character `yaml:"characters"`
	Planets    []models.Planet    `yaml:"planets"`
	Vehicles   []models.Vehicle   `yaml:"vehicles"`
	Favorites  []Favorite         `yaml:"favorites"`
}

// User is a seeded user. IsActive defaults to true.
type User struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	IsActive *bool  `yaml:"is_active,omitempty"`
}

// Favorite names its user by email and its target by name. Exactly one of
// Character, Planet and Vehicle must be set.
type Favorite struct {
	User      string `yaml:"user"`
	Character string `yaml:"character,omitempty"`
	Planet    string `yaml:"planet,omitempty"`
	Vehicle   string `yaml:"vehicle,omitempty"`
}

// Email returns the email of the favorite's user without surrounding space.
func (f Favorite) Email() string {
	return strings.TrimSpace(f.User)
}

// Target returns the kind and name of the favorite's target.
func (f Favorite) Target() (models.TargetKind, string, error) {
	var kinds []models.TargetKind
	var name string
	for _, c := range []struct {
		kind models.TargetKind
		name string
	}{
		{models.KindCharacter, f.Character},
		{models.KindPlanet, f.Planet},
		{models.KindVehicle, f.Vehicle},
	} {
		if c.name != "" {
			kinds = append(kinds, c.kind)
			name = c.name
		}
	}
	if len(kinds) != 1 {
		return "", "", fmt.Errorf("%w: favorite of %s names %d targets, want 1", models.ErrInvalidTarget, f.Email(), len(kinds))
	}
	return kinds[0], name, nil
}

// Counts reports how many rows of each kind a seed inserted.
type Counts struct {
	Users      int `json:"users"`
	Characters int `json:"characters"`
	Planets    int `json:"planets"`
	Vehicles   int `json:"vehicles"`
	Favorites  int `json:"favorites"`
}

// Load reads and validates a seed file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a seed document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks what can be checked without a database.
func (d *Document) Validate() error {
	for i, u := range d.Users {
		if u.Email == "" {
			return fmt.Errorf("users[%d]: missing email", i)
		}
	}
	for i, f := range d.Favorites {
		if f.Email() == "" {
			return fmt.Errorf("favorites[%d]: missing user", i)
		}
		if _, _, err := f.Target(); err != nil {
			return fmt.Errorf("favorites[%d]: %w", i, err)
		}
	}
	return nil
}

// Apply inserts the document in one transaction. Favorites may name users
// and targets from the document or already stored; anything unknown rolls
// the whole seed back.
func Apply(ctx context.Context, store *favorites.Store, doc *Document) (Counts, error) {
	if err := doc.Validate(); err != nil {
		return Counts{}, err
	}

	var counts Counts
	err := store.InTx(ctx, func(tx *favorites.Store) error {
		counts = Counts{}
		users := make(map[string]int, len(doc.Users))

		for _, u := range doc.Users {
			created, err := tx.CreateUser(ctx, u.Email, u.Password)
			if err != nil {
				return err
			}
			if u.IsActive != nil && !*u.IsActive {
				if _, err := tx.UpdateUser(ctx, created.ID, models.UserPatch{IsActive: u.IsActive}); err != nil {
					return err
				}
			}
			users[created.Email] = created.ID
			counts.Users++
		}
		for _, c := range doc.Characters {
			if _, err := tx.CreateCharacter(ctx, c); err != nil {
				return err
			}
			counts.Characters++
		}
		for _, p := range doc.Planets {
			if _, err := tx.CreatePlanet(ctx, p); err != nil {
				return err
			}
			counts.Planets++
		}
		for _, v := range doc.Vehicles {
			if _, err := tx.CreateVehicle(ctx, v); err != nil {
				return err
			}
			counts.Vehicles++
		}

		for i, f := range doc.Favorites {
			email := f.Email()
			userID, ok := users[email]
			if !ok {
				user, err := tx.GetUserByEmail(ctx, email)
				if err != nil {
					return fmt.Errorf("favorites[%d]: user %s: %w", i, email, err)
				}
				userID = user.ID
			}

			kind, name, err := f.Target()
			if err != nil {
				return fmt.Errorf("favorites[%d]: %w", i, err)
			}
			target, err := tx.FindTarget(ctx, kind, name)
			if err != nil {
				return fmt.Errorf("favorites[%d]: %w", i, err)
			}
			if _, err := tx.AddFavorite(ctx, userID, target); err != nil {
				return fmt.Errorf("favorites[%d]: %w", i, err)
			}
			counts.Favorites++
		}
		return nil
	})
	if err != nil {
		return Counts{}, fmt.Errorf("seed aborted: %w", err)
	}
	return counts, nil
}
