package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/marshallshelly/starfaves/pkg/runtime"
)

func TestSelectQuery_ToSQL(t *testing.T) {
	db := newTestDB(t)

	tests := []struct {
		name       string
		setupQuery func() *SelectQuery[testUser]
		wantSQL    string
		wantArgLen int
	}{
		{
			name: "simple select all",
			setupQuery: func() *SelectQuery[testUser] {
				return Select[testUser](db)
			},
			wantSQL: `SELECT * FROM "user"`,
		},
		{
			name: "select specific columns",
			setupQuery: func() *SelectQuery[testUser] {
				return Select[testUser](db).Columns("id", "email")
			},
			wantSQL: `SELECT "id", "email" FROM "user"`,
		},
		{
			name: "select with WHERE",
			setupQuery: func() *SelectQuery[testUser] {
				return Select[testUser](db).Where(Eq("email", "luke@rebels.org"))
			},
			wantSQL:    `SELECT * FROM "user" WHERE "email" = $1`,
			wantArgLen: 1,
		},
		{
			name: "select with AND and OR",
			setupQuery: func() *SelectQuery[testUser] {
				return Select[testUser](db).
					Where(Eq("is_active", true)).
					And(Gt("id", 10)).
					Or(Eq("email", "leia@rebels.org"))
			},
			wantSQL:    `SELECT * FROM "user" WHERE "is_active" = $1 AND "id" > $2 OR "email" = $3`,
			wantArgLen: 3,
		},
		{
			name: "select with IN",
			setupQuery: func() *SelectQuery[testUser] {
				return Select[testUser](db).Where(In("id", 1, 2, 3))
			},
			wantSQL:    `SELECT * FROM "user" WHERE "id" IN ($1, $2, $3)`,
			wantArgLen: 3,
		},
		{
			name: "select with ORDER BY, LIMIT and OFFSET",
			setupQuery: func() *SelectQuery[testUser] {
				return Select[testUser](db).OrderByDesc("id").OrderByAsc("email").Limit(10).Offset(5)
			},
			wantSQL: `SELECT * FROM "user" ORDER BY "id" DESC, "email" ASC LIMIT 10 OFFSET 5`,
		},
		{
			name: "select for update",
			setupQuery: func() *SelectQuery[testUser] {
				return Select[testUser](db).Where(Eq("id", 1)).ForUpdate()
			},
			wantSQL:    `SELECT * FROM "user" WHERE "id" = $1 FOR UPDATE`,
			wantArgLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.setupQuery().ToSQL()
			if err != nil {
				t.Fatalf("ToSQL() error = %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("ToSQL() sql =\n%s\nwant\n%s", sql, tt.wantSQL)
			}
			if len(args) != tt.wantArgLen {
				t.Errorf("ToSQL() got %d args, want %d", len(args), tt.wantArgLen)
			}
		})
	}
}

func TestSelectQuery_Grouped(t *testing.T) {
	db := newTestDB(t)

	sql, args, err := Select[testFavorite](db).
		Where(Eq("user_id", 1)).
		And(Group(IsNotNull("planet_id"), Or(Eq("id", 9)))).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL() error = %v", err)
	}

	want := `SELECT * FROM "favorite" WHERE "user_id" = $1 AND ("planet_id" IS NOT NULL OR "id" = $2)`
	if sql != want {
		t.Errorf("ToSQL() sql =\n%s\nwant\n%s", sql, want)
	}
	if len(args) != 2 || args[0] != 1 || args[1] != 9 {
		t.Errorf("unexpected args %v", args)
	}
}

func TestSelectQuery_UnregisteredModel(t *testing.T) {
	type stranger struct {
		ID int `po:"id,primaryKey,serial"`
	}

	db := newTestDB(t)
	if _, _, err := Select[stranger](db).ToSQL(); err == nil {
		t.Error("expected error for unregistered model")
	}
	if _, err := Select[stranger](db).Count(context.Background()); err == nil {
		t.Error("expected Count to report the registration error")
	}
}

func TestSelectQuery_NoConnection(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := Select[testUser](db).All(ctx); !errors.Is(err, runtime.ErrNoConnection) {
		t.Errorf("All() error = %v, want ErrNoConnection", err)
	}
	if _, err := Select[testUser](db).First(ctx); !errors.Is(err, runtime.ErrNoConnection) {
		t.Errorf("First() error = %v, want ErrNoConnection", err)
	}
	if _, err := Select[testUser](db).Exists(ctx); !errors.Is(err, runtime.ErrNoConnection) {
		t.Errorf("Exists() error = %v, want ErrNoConnection", err)
	}

	err := db.InTx(ctx, func(tx *DB) error { return nil })
	if !errors.Is(err, runtime.ErrNoConnection) {
		t.Errorf("InTx() error = %v, want ErrNoConnection", err)
	}
}

func TestSelectQuery_Preload(t *testing.T) {
	db := newTestDB(t)

	query := Select[testUser](db).Preload("Favorites").Preload("Favorites.Planet")
	if len(query.preloads) != 2 {
		t.Fatalf("expected 2 preload paths, got %v", query.preloads)
	}

	// Preloading does not change the primary query.
	sql, _, err := query.ToSQL()
	if err != nil {
		t.Fatalf("ToSQL() error = %v", err)
	}
	if sql != `SELECT * FROM "user"` {
		t.Errorf("unexpected sql %s", sql)
	}
}
