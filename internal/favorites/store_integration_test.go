//go:build integration

package favorites_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/marshallshelly/starfaves/internal/favorites"
	"github.com/marshallshelly/starfaves/internal/models"
	"github.com/marshallshelly/starfaves/internal/seed"
	"github.com/marshallshelly/starfaves/pkg/builder"
	"github.com/marshallshelly/starfaves/pkg/migration"
	"github.com/marshallshelly/starfaves/pkg/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var connStr string

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("starfaves"),
		postgres.WithUsername("starfaves"),
		postgres.WithPassword("starfaves"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		panic("failed to start PostgreSQL container: " + err.Error())
	}

	connStr, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic("failed to get connection string: " + err.Error())
	}

	code := m.Run()

	_ = pgContainer.Terminate(ctx)
	os.Exit(code)
}

// setupStore connects, creates the schema through a migration, and empties
// every table so each test starts clean.
func setupStore(t *testing.T) *favorites.Store {
	t.Helper()
	ctx := context.Background()

	db, err := runtime.ConnectWithURL(ctx, connStr, 5)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	reg, err := models.NewRegistry()
	require.NoError(t, err)
	tables, err := reg.Ordered()
	require.NoError(t, err)

	up, _ := migration.NewPlanner().CreateSchema(tables)
	executor, err := migration.NewExecutor(db)
	require.NoError(t, err)
	require.NoError(t, executor.Initialize(ctx))
	_, err = executor.ApplyAll(ctx, []migration.Migration{{Version: "20240101000000", Name: "create_schema", UpSQL: up}}, false)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `TRUNCATE "favorite", "user", "character", "planet", "vehicle" RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return favorites.NewStore(builder.New(db, reg), nil)
}

func ptr[T any](v T) *T { return &v }

func TestUserLifecycle(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "luke@rebels.org", "tatooine")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := store.CreateUser(ctx, "luke@rebels.org", "other")
		require.Error(t, err)
		assert.True(t, errors.Is(err, runtime.ErrDuplicateKey), "got %v", err)

		var ce *runtime.ConstraintError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "user", ce.Table)
	})

	t.Run("update", func(t *testing.T) {
		updated, err := store.UpdateUser(ctx, user.ID, models.UserPatch{IsActive: ptr(false)})
		require.NoError(t, err)
		assert.False(t, updated.IsActive)
		assert.Equal(t, "luke@rebels.org", updated.Email)

		_, err = store.UpdateUser(ctx, 9999, models.UserPatch{IsActive: ptr(true)})
		assert.True(t, errors.Is(err, runtime.ErrNotFound))
	})

	t.Run("lookup by email", func(t *testing.T) {
		found, err := store.GetUserByEmail(ctx, "luke@rebels.org")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.NotNil(t, found.Favorites)

		_, err = store.GetUserByEmail(ctx, "vader@empire.gov")
		assert.True(t, errors.Is(err, runtime.ErrNotFound))
	})

	t.Run("projections carry favorites and targets", func(t *testing.T) {
		tatooine, err := store.CreatePlanet(ctx, models.Planet{Name: "Tatooine"})
		require.NoError(t, err)
		_, err = store.AddFavorite(ctx, user.ID, models.PlanetTarget(tatooine.ID))
		require.NoError(t, err)

		updated, err := store.UpdateUser(ctx, user.ID, models.UserPatch{IsActive: ptr(true)})
		require.NoError(t, err)
		favs := updated.Serialize()["favorites"].([]map[string]any)
		require.Len(t, favs, 1)
		assert.Equal(t, tatooine.Serialize(), favs[0]["planet"])

		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		favs = users[0].Serialize()["favorites"].([]map[string]any)
		require.Len(t, favs, 1)
		assert.Equal(t, tatooine.Serialize(), favs[0]["planet"])
		assert.Nil(t, favs[0]["character"])
		assert.Nil(t, favs[0]["vehicle"])
	})
}

func TestFavoriteWithMissingUser(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	planet, err := store.CreatePlanet(ctx, models.Planet{Name: "Tatooine"})
	require.NoError(t, err)

	_, err = store.AddFavorite(ctx, 4242, models.PlanetTarget(planet.ID))
	require.Error(t, err)
	assert.True(t, errors.Is(err, runtime.ErrForeignKeyViolation), "got %v", err)

	_, err = store.AddFavorite(ctx, 1, models.VehicleTarget(777))
	assert.True(t, errors.Is(err, runtime.ErrForeignKeyViolation), "got %v", err)
}

func TestCheckConstraintRejectsBrokenUnion(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "leia@rebels.org", "alderaan")
	require.NoError(t, err)
	planet, err := store.CreatePlanet(ctx, models.Planet{Name: "Alderaan"})
	require.NoError(t, err)
	vehicle, err := store.CreateVehicle(ctx, models.Vehicle{Name: "Tantive IV"})
	require.NoError(t, err)

	reg, err := models.NewRegistry()
	require.NoError(t, err)
	db, err := runtime.ConnectWithURL(ctx, connStr, 2)
	require.NoError(t, err)
	defer db.Close()
	raw := builder.New(db, reg)

	tests := []struct {
		name string
		fav  models.Favorite
	}{
		{"no target", models.Favorite{UserID: user.ID}},
		{"two targets", models.Favorite{UserID: user.ID, PlanetID: &planet.ID, VehicleID: &vehicle.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.fav.Validate())
			_, err := builder.Insert[models.Favorite](raw).Values(tt.fav).Exec(ctx)
			assert.True(t, errors.Is(err, runtime.ErrCheckViolation), "got %v", err)
		})
	}
}

func TestGetUserLoadsFavoriteTargets(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "han@falcon.net", "kessel")
	require.NoError(t, err)
	luke, err := store.CreateCharacter(ctx, models.Character{Name: "Luke Skywalker", Height: ptr(172.0)})
	require.NoError(t, err)
	falcon, err := store.CreateVehicle(ctx, models.Vehicle{Name: "Millennium Falcon", Crew: ptr("4")})
	require.NoError(t, err)

	_, err = store.AddFavorite(ctx, user.ID, models.CharacterTarget(luke.ID))
	require.NoError(t, err)
	added, err := store.AddFavorite(ctx, user.ID, models.VehicleTarget(falcon.ID))
	require.NoError(t, err)
	require.NotNil(t, added.Vehicle)
	assert.Equal(t, "Millennium Falcon", added.Vehicle.Name)

	loaded, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Favorites, 2)
	require.NotNil(t, loaded.Favorites[0].Character)
	assert.Equal(t, 172.0, *loaded.Favorites[0].Character.Height)
	assert.Nil(t, loaded.Favorites[0].Vehicle)
	require.NotNil(t, loaded.Favorites[1].Vehicle)

	projected := loaded.Serialize()["favorites"].([]map[string]any)
	require.Len(t, projected, 2)
	assert.Equal(t, luke.Serialize(), projected[0]["character"])
	assert.Nil(t, projected[0]["planet"])

	count, err := store.CountFavorites(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// Favoriting the same target twice is allowed.
	_, err = store.AddFavorite(ctx, user.ID, models.CharacterTarget(luke.ID))
	assert.NoError(t, err)

	listed, err := store.ListFavorites(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 3)

	_, err = store.ListFavorites(ctx, 9999)
	assert.True(t, errors.Is(err, runtime.ErrNotFound))

	require.NoError(t, store.RemoveFavorite(ctx, added.ID))
	assert.True(t, errors.Is(store.RemoveFavorite(ctx, added.ID), runtime.ErrNotFound))
}

func TestCascadeDeletes(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	han, err := store.CreateUser(ctx, "han@falcon.net", "kessel")
	require.NoError(t, err)
	leia, err := store.CreateUser(ctx, "leia@rebels.org", "alderaan")
	require.NoError(t, err)
	hoth, err := store.CreatePlanet(ctx, models.Planet{Name: "Hoth"})
	require.NoError(t, err)
	endor, err := store.CreatePlanet(ctx, models.Planet{Name: "Endor"})
	require.NoError(t, err)
	chewie, err := store.CreateCharacter(ctx, models.Character{Name: "Chewbacca"})
	require.NoError(t, err)
	speeder, err := store.CreateVehicle(ctx, models.Vehicle{Name: "Speeder bike"})
	require.NoError(t, err)

	for _, add := range []struct {
		user   int
		target models.Target
	}{
		{han.ID, models.PlanetTarget(hoth.ID)},
		{han.ID, models.PlanetTarget(endor.ID)},
		{han.ID, models.CharacterTarget(chewie.ID)},
		{leia.ID, models.PlanetTarget(hoth.ID)},
		{leia.ID, models.VehicleTarget(speeder.ID)},
	} {
		_, err := store.AddFavorite(ctx, add.user, add.target)
		require.NoError(t, err)
	}

	t.Run("planet", func(t *testing.T) {
		cascaded, err := store.DeletePlanet(ctx, hoth.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, cascaded)

		_, err = store.GetPlanet(ctx, hoth.ID)
		assert.True(t, errors.Is(err, runtime.ErrNotFound))
	})

	t.Run("vehicle", func(t *testing.T) {
		cascaded, err := store.DeleteVehicle(ctx, speeder.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, cascaded)

		count, err := store.CountFavorites(ctx, leia.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("user", func(t *testing.T) {
		cascaded, err := store.DeleteUser(ctx, han.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, cascaded)

		count, err := store.CountFavorites(ctx, han.ID)
		require.NoError(t, err)
		assert.Zero(t, count)

		// The character survives; only favorites cascade.
		_, err = store.GetCharacter(ctx, chewie.ID)
		assert.NoError(t, err)
	})

	t.Run("character without favorites", func(t *testing.T) {
		cascaded, err := store.DeleteCharacter(ctx, chewie.ID)
		require.NoError(t, err)
		assert.Zero(t, cascaded)
	})

	t.Run("missing row", func(t *testing.T) {
		_, err := store.DeleteUser(ctx, han.ID)
		assert.True(t, errors.Is(err, runtime.ErrNotFound))
	})
}

func TestReplaceEntity(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	planet, err := store.CreatePlanet(ctx, models.Planet{Name: "Kamino", Climate: ptr("temperate"), Population: ptr(1e9)})
	require.NoError(t, err)

	updated, err := store.UpdatePlanet(ctx, planet.ID, models.Planet{Name: "Kamino", Terrain: ptr("ocean")})
	require.NoError(t, err)
	assert.Nil(t, updated.Climate)
	assert.Nil(t, updated.Population)
	require.NotNil(t, updated.Terrain)
	assert.Equal(t, "ocean", *updated.Terrain)

	target, err := store.FindTarget(ctx, models.KindPlanet, "Kamino")
	require.NoError(t, err)
	assert.Equal(t, models.PlanetTarget(planet.ID), target)

	_, err = store.FindTarget(ctx, models.KindPlanet, "Kashyyyk")
	assert.True(t, errors.Is(err, runtime.ErrNotFound))

	planets, err := store.ListPlanets(ctx)
	require.NoError(t, err)
	assert.Len(t, planets, 1)

	_, err = store.CreatePlanet(ctx, models.Planet{Name: "Kamino_2"})
	require.NoError(t, err)

	found, err := store.SearchPlanets(ctx, "kam")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = store.SearchPlanets(ctx, "o_")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Kamino_2", found[0].Name)
}

func TestSeedApply(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	doc, err := seed.Parse([]byte(`
users:
  - email: luke@rebels.org
    password: tatooine
  - email: vader@empire.gov
    password: anakin
    is_active: false
characters:
  - name: Luke Skywalker
planets:
  - name: Tatooine
favorites:
  - user: "  luke@rebels.org "
    planet: Tatooine
  - user: vader@empire.gov
    character: Luke Skywalker
`))
	require.NoError(t, err)

	counts, err := seed.Apply(ctx, store, doc)
	require.NoError(t, err)
	assert.Equal(t, seed.Counts{Users: 2, Characters: 1, Planets: 1, Favorites: 2}, counts)

	vader, err := store.GetUserByEmail(ctx, "vader@empire.gov")
	require.NoError(t, err)
	assert.False(t, vader.IsActive)
	require.Len(t, vader.Favorites, 1)
	require.NotNil(t, vader.Favorites[0].Character)
	assert.Equal(t, "Luke Skywalker", vader.Favorites[0].Character.Name)

	luke, err := store.GetUserByEmail(ctx, "luke@rebels.org")
	require.NoError(t, err)
	require.Len(t, luke.Favorites, 1)
	require.NotNil(t, luke.Favorites[0].Planet)
	assert.Equal(t, "Tatooine", luke.Favorites[0].Planet.Name)

	t.Run("unknown target rolls everything back", func(t *testing.T) {
		doc, err := seed.Parse([]byte(`
users:
  - email: han@falcon.net
    password: kessel
favorites:
  - user: han@falcon.net
    vehicle: Millennium Falcon
`))
		require.NoError(t, err)

		_, err = seed.Apply(ctx, store, doc)
		require.Error(t, err)
		assert.True(t, errors.Is(err, runtime.ErrNotFound), "got %v", err)

		_, err = store.GetUserByEmail(ctx, "han@falcon.net")
		assert.True(t, errors.Is(err, runtime.ErrNotFound))
	})
}
