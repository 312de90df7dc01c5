package seed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/marshallshelly/starfaves/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
users:
  - email: luke@rebels.org
    password: tatooine
  - email: vader@empire.gov
    password: anakin
    is_active: false
characters:
  - name: Luke Skywalker
    height: 172
    hair_color: blond
planets:
  - name: Tatooine
    climate: arid
    population: 200000
vehicles:
  - name: Sand Crawler
    crew: "46"
favorites:
  - user: luke@rebels.org
    planet: Tatooine
  - user: vader@empire.gov
    character: Luke Skywalker
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	require.Len(t, doc.Users, 2)
	assert.Nil(t, doc.Users[0].IsActive)
	require.NotNil(t, doc.Users[1].IsActive)
	assert.False(t, *doc.Users[1].IsActive)

	require.Len(t, doc.Characters, 1)
	require.NotNil(t, doc.Characters[0].Height)
	assert.Equal(t, 172.0, *doc.Characters[0].Height)
	assert.Nil(t, doc.Characters[0].Mass)

	require.Len(t, doc.Planets, 1)
	assert.Equal(t, "arid", *doc.Planets[0].Climate)
	require.Len(t, doc.Vehicles, 1)
	assert.Equal(t, "46", *doc.Vehicles[0].Crew)

	require.Len(t, doc.Favorites, 2)
	kind, name, err := doc.Favorites[1].Target()
	require.NoError(t, err)
	assert.Equal(t, models.KindCharacter, kind)
	assert.Equal(t, "Luke Skywalker", name)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantTarget bool
	}{
		{name: "unknown key", input: "planets:\n  - name: Hoth\n    moons: 3\n"},
		{name: "id is not seedable", input: "planets:\n  - id: 4\n    name: Hoth\n"},
		{name: "user without email", input: "users:\n  - password: x\n"},
		{name: "favorite without user", input: "favorites:\n  - planet: Hoth\n"},
		{name: "favorite with blank user", input: "favorites:\n  - user: \"  \"\n    planet: Hoth\n"},
		{name: "favorite without target", input: "favorites:\n  - user: a@b.c\n", wantTarget: true},
		{name: "favorite with two targets", input: "favorites:\n  - user: a@b.c\n    planet: Hoth\n    vehicle: AT-AT\n", wantTarget: true},
		{name: "not yaml", input: "users: [", wantTarget: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Equal(t, tt.wantTarget, errors.Is(err, models.ErrInvalidTarget))
		})
	}
}

func TestFavoriteEmail(t *testing.T) {
	doc, err := Parse([]byte("favorites:\n  - user: \"  luke@rebels.org \"\n    planet: Tatooine\n"))
	require.NoError(t, err)
	require.Len(t, doc.Favorites, 1)
	assert.Equal(t, "luke@rebels.org", doc.Favorites[0].Email())
}

func TestParseEmpty(t *testing.T) {
	doc, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Users)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, doc.Favorites, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
