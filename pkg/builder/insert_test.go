package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertQuery_ToSQL(t *testing.T) {
	db := newTestDB(t)

	t.Run("auto-increment key is omitted", func(t *testing.T) {
		sql, args, err := Insert[testUser](db).
			Values(testUser{Email: "luke@rebels.org", IsActive: true}).
			ToSQL()
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "user" ("email", "is_active") VALUES ($1, $2)`, sql)
		assert.Equal(t, []any{"luke@rebels.org", true}, args)
	})

	t.Run("false boolean is written despite its default", func(t *testing.T) {
		sql, args, err := Insert[testUser](db).
			Values(testUser{Email: "vader@empire.gov"}).
			ToSQL()
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "user" ("email", "is_active") VALUES ($1, $2)`, sql)
		assert.Equal(t, false, args[1])
	})

	t.Run("explicit key is written", func(t *testing.T) {
		sql, args, err := Insert[testUser](db).
			Values(testUser{ID: 7, Email: "han@falcon.net", IsActive: true}).
			ToSQL()
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "user" ("id", "email", "is_active") VALUES ($1, $2, $3)`, sql)
		assert.Len(t, args, 3)
	})

	t.Run("unset default column is left to the database", func(t *testing.T) {
		sql, args, err := Insert[testPlanet](db).
			Values(testPlanet{Name: "Hoth"}).
			ToSQL()
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "planet" ("name", "population") VALUES ($1, $2)`, sql)
		assert.Len(t, args, 2)
	})

	t.Run("multi-row insert uses DEFAULT per row", func(t *testing.T) {
		sql, args, err := Insert[testPlanet](db).
			Values(testPlanet{Name: "Hoth"}, testPlanet{Name: "Tatooine", Climate: "arid"}).
			ToSQL()
		require.NoError(t, err)
		assert.Equal(t,
			`INSERT INTO "planet" ("name", "climate", "population") VALUES ($1, DEFAULT, $2), ($3, $4, $5)`,
			sql)
		assert.Len(t, args, 5)
		assert.Equal(t, "arid", args[3])
	})

	t.Run("returning", func(t *testing.T) {
		sql, _, err := Insert[testFavorite](db).
			Values(testFavorite{UserID: 1, PlanetID: intPtr(2)}).
			Returning("*").
			ToSQL()
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "favorite" ("user_id", "planet_id") VALUES ($1, $2) RETURNING *`, sql)
	})

	t.Run("nothing but defaults", func(t *testing.T) {
		sql, args, err := Insert[testCounter](db).Values(testCounter{}).ToSQL()
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "test_counter" DEFAULT VALUES`, sql)
		assert.Empty(t, args)

		_, _, err = Insert[testCounter](db).Values(testCounter{}, testCounter{}).ToSQL()
		assert.Error(t, err)
	})

	t.Run("no values", func(t *testing.T) {
		_, _, err := Insert[testUser](db).ToSQL()
		assert.Error(t, err)
	})
}
