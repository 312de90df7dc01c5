package registry

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type User struct {
	ID    int    `po:"id,primaryKey,serial"`
	Email string `po:"email,varchar(120),unique,notNull"`
}

func (User) TableName() string { return "user" }

type Planet struct {
	ID   int    `po:"id,primaryKey,serial"`
	Name string `po:"name,varchar(100),notNull"`
}

type Favorite struct {
	ID       int     `po:"id,primaryKey,serial"`
	UserID   int     `po:"user_id,integer,notNull,fk:user.id,onDelete:cascade"`
	PlanetID *int    `po:"planet_id,integer,fk:planet.id,onDelete:cascade"`
	Planet   *Planet `po:"planet,belongsTo"`
}

type Orphan struct {
	ID      int  `po:"id,primaryKey,serial"`
	GhostID *int `po:"ghost_id,integer,fk:ghost.id"`
}

type Impostor struct {
	ID int `po:"id,primaryKey,serial"`
}

func (Impostor) TableName() string { return "planet" }

type Egg struct {
	ID        int  `po:"id,primaryKey,serial"`
	ChickenID *int `po:"chicken_id,integer,fk:chicken.id"`
}

type Chicken struct {
	ID    int  `po:"id,primaryKey,serial"`
	EggID *int `po:"egg_id,integer,fk:egg.id"`
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	t.Run("register new model", func(t *testing.T) {
		require.NoError(t, registry.Register(User{}))
		assert.True(t, registry.Has(reflect.TypeOf(User{})))
		assert.True(t, registry.HasTable("user"))
	})

	t.Run("register duplicate model", func(t *testing.T) {
		require.NoError(t, registry.Register(User{}))
		require.NoError(t, registry.Register(&User{}))
		assert.Len(t, registry.All(), 1)
	})

	t.Run("register invalid type", func(t *testing.T) {
		assert.Error(t, registry.Register("not a struct"))
		assert.Error(t, registry.Register(nil))
	})

	t.Run("two models for one table", func(t *testing.T) {
		require.NoError(t, registry.Register(Planet{}))
		err := registry.Register(Impostor{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(User{}, Planet{}))

	table, err := registry.Get(reflect.TypeOf(&Planet{}))
	require.NoError(t, err)
	assert.Equal(t, "planet", table.Name)

	byName, err := registry.GetByName("planet")
	require.NoError(t, err)
	assert.Same(t, table, byName)

	_, err = registry.Get(reflect.TypeOf(Favorite{}))
	assert.Error(t, err)

	_, err = registry.GetByName("vehicle")
	assert.Error(t, err)
}

func TestRegistry_All(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(Planet{}, User{}))

	var names []string
	for _, table := range registry.All() {
		names = append(names, table.Name)
	}
	assert.Equal(t, []string{"planet", "user"}, names)
}

func TestRegistry_Resolve(t *testing.T) {
	t.Run("all references registered", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(User{}, Planet{}, Favorite{}))
		assert.NoError(t, registry.Resolve())
	})

	t.Run("missing referenced table", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(Orphan{}))
		err := registry.Resolve()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghost")
	})

	t.Run("missing relationship target", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(Favorite{}))
		assert.Error(t, registry.Resolve())
	})
}

func TestRegistry_Ordered(t *testing.T) {
	t.Run("parents first", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(Favorite{}, Planet{}, User{}))

		ordered, err := registry.Ordered()
		require.NoError(t, err)

		var names []string
		for _, table := range ordered {
			names = append(names, table.Name)
		}
		assert.Equal(t, []string{"planet", "user", "favorite"}, names)
	})

	t.Run("cycle", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(Egg{}, Chicken{}))

		_, err := registry.Ordered()
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "cycle"))
	})
}
