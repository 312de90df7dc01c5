package builder

import (
	"testing"

	"github.com/marshallshelly/starfaves/pkg/registry"
)

type testUser struct {
	ID        int            `po:"id,primaryKey,serial"`
	Email     string         `po:"email,varchar(120),unique,notNull"`
	IsActive  bool           `po:"is_active,boolean,notNull,default(true)"`
	Favorites []testFavorite `po:"favorites,hasMany,foreignKey(user_id)"`
}

func (testUser) TableName() string { return "user" }

type testPlanet struct {
	ID         int      `po:"id,primaryKey,serial"`
	Name       string   `po:"name,varchar(100),notNull"`
	Climate    string   `po:"climate,varchar(100),default('unknown')"`
	Population *float64 `po:"population"`
}

func (testPlanet) TableName() string { return "planet" }

type testFavorite struct {
	ID       int         `po:"id,primaryKey,serial"`
	UserID   int         `po:"user_id,integer,notNull,fk:user.id,onDelete:cascade"`
	PlanetID *int        `po:"planet_id,integer,fk:planet.id,onDelete:cascade"`
	Planet   *testPlanet `po:"planet,belongsTo,foreignKey(planet_id)"`
}

func (testFavorite) TableName() string { return "favorite" }

type testCounter struct {
	ID int `po:"id,primaryKey,serial"`
}

// newTestDB returns a builder with no connection, for SQL generation tests.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	reg := registry.NewRegistry()
	if err := reg.Register(testUser{}, testPlanet{}, testFavorite{}, testCounter{}); err != nil {
		t.Fatalf("Failed to register models: %v", err)
	}
	return New(nil, reg)
}

func intPtr(v int) *int { return &v }
