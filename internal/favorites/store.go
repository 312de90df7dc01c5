// Package favorites is the persistence layer of the favorites data model.
package favorites

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/marshallshelly/starfaves/internal/models"
	"github.com/marshallshelly/starfaves/pkg/builder"
	"github.com/marshallshelly/starfaves/pkg/runtime"
)

// targetPreloads loads the entity behind each favorite.
var targetPreloads = []string{"Character", "Planet", "Vehicle"}

// Store reads and writes the favorites data model. A Store created inside
// InTx shares that transaction.
type Store struct {
	db     *builder.DB
	logger *slog.Logger
}

// NewStore creates a Store on db. A nil logger discards log output.
func NewStore(db *builder.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{db: db, logger: logger}
}

// InTx runs fn with a Store bound to one transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.InTx(ctx, func(tx *builder.DB) error {
		return fn(&Store{db: tx, logger: s.logger})
	})
}

// CreateUser inserts a user. The password is stored as given.
func (s *Store) CreateUser(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, &runtime.ValidationError{Field: "password", Message: "is required"}
	}

	user, err := create(ctx, s.db, models.User{Email: email, Password: password, IsActive: true})
	if err != nil {
		return nil, fmt.Errorf("create user %s: %w", email, err)
	}
	user.Favorites = []models.Favorite{}
	return user, nil
}

// GetUser returns the user with its favorites and their targets loaded.
func (s *Store) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.userWhere(ctx, builder.Eq("id", id))
}

// GetUserByEmail is GetUser keyed by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userWhere(ctx, builder.Eq("email", strings.TrimSpace(email)))
}

func (s *Store) userWhere(ctx context.Context, cond builder.Condition) (*models.User, error) {
	return builder.Select[models.User](s.db).
		Where(cond).
		Preload(userPreloads()...).
		First(ctx)
}

func userPreloads() []string {
	paths := make([]string, 0, len(targetPreloads))
	for _, p := range targetPreloads {
		paths = append(paths, "Favorites."+p)
	}
	return paths
}

// UpdateUser applies the non-nil fields of patch and returns the user as
// GetUser would.
func (s *Store) UpdateUser(ctx context.Context, id int, patch models.UserPatch) (*models.User, error) {
	if patch.Empty() {
		return nil, &runtime.ValidationError{Field: "patch", Message: "nothing to update"}
	}

	type assignment struct {
		column string
		value  any
	}
	var sets []assignment
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		sets = append(sets, assignment{"email", email})
	}
	if patch.Password != nil {
		if *patch.Password == "" {
			return nil, &runtime.ValidationError{Field: "password", Message: "is required"}
		}
		sets = append(sets, assignment{"password", *patch.Password})
	}
	if patch.IsActive != nil {
		sets = append(sets, assignment{"is_active", *patch.IsActive})
	}

	var user *models.User
	err := s.InTx(ctx, func(tx *Store) error {
		q := builder.Update[models.User](tx.db)
		for _, a := range sets {
			q.Set(a.column, a.value)
		}
		n, err := q.Where(builder.Eq("id", id)).Exec(ctx)
		if err != nil {
			return fmt.Errorf("update user %d: %w", id, err)
		}
		if n == 0 {
			return runtime.ErrNotFound
		}
		user, err = tx.GetUser(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser deletes a user and returns how many favorites went with it.
func (s *Store) DeleteUser(ctx context.Context, id int) (int64, error) {
	return deleteCascading[models.User](ctx, s, "user_id", id)
}

// ListUsers returns all users ordered by id, with their favorites and the
// favorites' targets loaded.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	return builder.Select[models.User](s.db).
		OrderByAsc("id").
		Preload(userPreloads()...).
		All(ctx)
}

func validateEmail(email string) error {
	switch {
	case email == "":
		return &runtime.ValidationError{Field: "email", Message: "is required"}
	case utf8.RuneCountInString(email) > 120:
		return &runtime.ValidationError{Field: "email", Message: "must be at most 120 characters"}
	case !strings.Contains(email, "@"):
		return &runtime.ValidationError{Field: "email", Message: "must contain @"}
	}
	return nil
}

func validateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &runtime.ValidationError{Field: "name", Message: "is required"}
	case utf8.RuneCountInString(name) > 100:
		return &runtime.ValidationError{Field: "name", Message: "must be at most 100 characters"}
	}
	return nil
}

func create[T any](ctx context.Context, db *builder.DB, model T) (*T, error) {
	rows, err := builder.Insert[T](db).Values(model).ExecReturning(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert returned no row")
	}
	return &rows[0], nil
}

func get[T any](ctx context.Context, db *builder.DB, id int) (*T, error) {
	return builder.Select[T](db).Where(builder.Eq("id", id)).First(ctx)
}

func list[T any](ctx context.Context, db *builder.DB, conditions ...builder.Condition) ([]T, error) {
	q := builder.Select[T](db)
	for _, c := range conditions {
		q.Where(c)
	}
	return q.OrderByAsc("id").All(ctx)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// nameContains matches names containing term, ignoring case. Wildcards in
// term match literally.
func nameContains(term string) builder.Condition {
	return builder.ILike("name", "%"+likeEscaper.Replace(strings.TrimSpace(term))+"%")
}

func replace[T any](ctx context.Context, db *builder.DB, id int, model T) (*T, error) {
	rows, err := builder.Update[T](db).
		SetModel(model).
		Where(builder.Eq("id", id)).
		ExecReturning(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, runtime.ErrNotFound
	}
	return &rows[0], nil
}

// deleteCascading deletes the parent row id of T in one transaction and
// returns the number of favorites whose column referenced it. The parent
// is locked first so no favorite can be added between count and delete.
func deleteCascading[T any](ctx context.Context, s *Store, column string, id int) (int64, error) {
	var cascaded int64
	err := s.db.InTx(ctx, func(tx *builder.DB) error {
		if _, err := builder.Select[T](tx).Columns("id").Where(builder.Eq("id", id)).ForUpdate().First(ctx); err != nil {
			return err
		}

		n, err := builder.Select[models.Favorite](tx).Where(builder.Eq(column, id)).Count(ctx)
		if err != nil {
			return err
		}

		deleted, err := builder.Delete[T](tx).Where(builder.Eq("id", id)).Exec(ctx)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return runtime.ErrNotFound
		}
		cascaded = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("deleted with cascade",
		slog.String("reference", column),
		slog.Int("id", id),
		slog.Int64("favorites", cascaded),
	)
	return cascaded, nil
}
